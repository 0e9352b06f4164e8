package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TagName is one of the fixed menu tags.
type TagName string

const (
	TagSpicy      TagName = "spicy"
	TagVegan      TagName = "vegan"
	TagBestseller TagName = "bestseller"
	TagNew        TagName = "new"
)

// Valid reports whether t is one of the known tags.
func (t TagName) Valid() bool {
	switch t {
	case TagSpicy, TagVegan, TagBestseller, TagNew:
		return true
	}
	return false
}

// Tag labels a menu item.
type Tag struct {
	ID   int64   `json:"id" db:"id"`
	Name TagName `json:"name" db:"name"`
}

// Category groups menu items.
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`
	IsActive    bool   `json:"isActive" db:"is_active"`
	Position    int    `json:"position" db:"position"`
	ItemCount   int    `json:"itemCount" db:"-"`
}

// AddOn is an optional extra for a menu item.
type AddOn struct {
	ID              int64           `json:"id" db:"id"`
	MenuItemID      int64           `json:"menuItemId" db:"menu_item_id"`
	Name            string          `json:"name" db:"name"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice" db:"additional_price"`
}

// MenuItem is a dish on the menu.
type MenuItem struct {
	ID            int64           `json:"id" db:"id"`
	CategoryID    int64           `json:"categoryId" db:"category_id"`
	CategoryName  string          `json:"categoryName,omitempty" db:"-"`
	Name          string          `json:"name" db:"name"`
	Slug          string          `json:"slug" db:"slug"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	ImageURL      string          `json:"imageUrl,omitempty" db:"image_url"`
	ImagePublicID string          `json:"-" db:"image_public_id"`
	IsAvailable   bool            `json:"isAvailable" db:"is_available"`
	IsFeatured    bool            `json:"isFeatured" db:"is_featured"`
	Tags          []Tag           `json:"tags"`
	AddOns        []AddOn         `json:"addOns"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// AddOnByID returns the add-on with the given ID if it belongs to this item.
func (m *MenuItem) AddOnByID(id int64) (*AddOn, bool) {
	for i := range m.AddOns {
		if m.AddOns[i].ID == id {
			return &m.AddOns[i], true
		}
	}
	return nil, false
}

// CategoryMenu is a public menu section.
type CategoryMenu struct {
	Category
	Items []MenuItem `json:"items"`
}

// MenuItemInput carries the editable fields of a menu item.
type MenuItemInput struct {
	Name        string          `json:"name" validate:"required,max=150"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  int64           `json:"categoryId" validate:"required"`
	IsAvailable bool            `json:"isAvailable"`
	IsFeatured  bool            `json:"isFeatured"`
	TagIDs      []int64         `json:"tagIds"`
}

// MenuFilter narrows the dashboard menu list.
type MenuFilter struct {
	CategoryID int64
	Search     string
	// Available is nil for all items.
	Available *bool
}

// MenuListing is the dashboard view of the menu.
type MenuListing struct {
	Items          []MenuItem `json:"items"`
	Categories     []Category `json:"categories"`
	TotalItems     int        `json:"totalItems"`
	AvailableItems int        `json:"availableItems"`
	HiddenItems    int        `json:"hiddenItems"`
}

// MenuImportRow is one parsed row from a menu CSV upload.
type MenuImportRow struct {
	Name        string
	Category    string
	Price       decimal.Decimal
	Description string
	IsAvailable bool
	IsFeatured  bool
	Tags        []string
	AddOns      []AddOnImport
	ImageURL    string
}

// AddOnImport is a name/price pair from the addons column.
type AddOnImport struct {
	Name  string
	Price decimal.Decimal
}

// MenuImportResult summarises a CSV import.
type MenuImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// CategoryRequest adds a category.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Position    int    `json:"position" validate:"min=0"`
}

// CategoryDelete removes a category, moving its items to ReassignTo.
type CategoryDelete struct {
	ReassignTo *int64 `json:"reassignTo"`
}

// AddOnRequest adds an add-on to a menu item.
type AddOnRequest struct {
	Name            string          `json:"name" validate:"required,max=100"`
	AdditionalPrice decimal.Decimal `json:"additionalPrice"`
}
