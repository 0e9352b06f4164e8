package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// MinLineQuantity and MaxLineQuantity bound a quantity added in one step.
	MinLineQuantity = 1
	MaxLineQuantity = 20
)

// CartLineKey identifies a cart line by item and optional add-on.
func CartLineKey(itemID int64, addOnID *int64) string {
	if addOnID == nil {
		return fmt.Sprintf("%d", itemID)
	}
	return fmt.Sprintf("%d_addon_%d", itemID, *addOnID)
}

// CartLine is one stored line of a cart.
type CartLine struct {
	Key        string          `json:"key"`
	MenuItemID int64           `json:"menuItemId"`
	AddOnID    *int64          `json:"addOnId,omitempty"`
	Name       string          `json:"name"`
	AddOnName  string          `json:"addOnName,omitempty"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	ImageURL   string          `json:"imageUrl,omitempty"`
}

// DisplayName is the snapshot name used on order items.
func (l CartLine) DisplayName() string {
	if l.AddOnName == "" {
		return l.Name
	}
	return l.Name + " + " + l.AddOnName
}

// LineTotal is unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the stored session state. Lines keep insertion order.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	PromoCode string     `json:"promoCode,omitempty"`
}

// Line returns the line with the given key.
func (c *Cart) Line(key string) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].Key == key {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// RemoveLine deletes the line with the given key and reports whether it existed.
func (c *Cart) RemoveLine(key string) bool {
	for i := range c.Lines {
		if c.Lines[i].Key == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// CartSummaryLine is a priced cart line.
type CartSummaryLine struct {
	CartLine
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// CartSummary is the priced view of a cart.
type CartSummary struct {
	Lines           []CartSummaryLine `json:"lines"`
	ItemCount       int               `json:"itemCount"`
	Subtotal        decimal.Decimal   `json:"subtotal"`
	Discount        decimal.Decimal   `json:"discount"`
	Total           decimal.Decimal   `json:"total"`
	PromoCode       string            `json:"promoCode,omitempty"`
	DiscountPercent int               `json:"discountPercent,omitempty"`
}

// AddToCartRequest adds a menu item to the cart.
type AddToCartRequest struct {
	MenuItemID int64  `json:"menuItemId" validate:"required"`
	Quantity   int    `json:"quantity"`
	AddOnID    *int64 `json:"addOnId"`
}

// UpdateCartRequest sets the quantity of a line.
type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

// ApplyPromoRequest applies a promo code to the cart.
type ApplyPromoRequest struct {
	Code string `json:"code" validate:"required"`
}
