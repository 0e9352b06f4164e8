package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"bistro/internal/media"
	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// menuService implements MenuService.
type menuService struct {
	menuRepo repository.MenuRepository
	images   media.ImageStore
	logger   zerolog.Logger
}

// NewMenuService creates a new menu service.
func NewMenuService(menuRepo repository.MenuRepository, images media.ImageStore, logger zerolog.Logger) MenuService {
	return &menuService{
		menuRepo: menuRepo,
		images:   images,
		logger:   logger.With().Str("service", "menu").Logger(),
	}
}

func (s *menuService) ListMenu(ctx context.Context) ([]model.CategoryMenu, error) {
	categories, err := s.menuRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	items, err := s.menuRepo.ListAvailableItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}

	byCategory := make(map[int64][]model.MenuItem)
	for _, item := range items {
		byCategory[item.CategoryID] = append(byCategory[item.CategoryID], item)
	}

	menu := make([]model.CategoryMenu, 0, len(categories))
	for _, c := range categories {
		if !c.IsActive {
			continue
		}
		sectionItems := byCategory[c.ID]
		if sectionItems == nil {
			sectionItems = []model.MenuItem{}
		}
		menu = append(menu, model.CategoryMenu{Category: c, Items: sectionItems})
	}

	return menu, nil
}

func (s *menuService) GetDish(ctx context.Context, slug string) (*model.MenuItem, error) {
	item, err := s.menuRepo.GetItemBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil || !item.IsAvailable {
		return nil, model.ErrMenuItemNotFound
	}
	return item, nil
}

func (s *menuService) ListItems(ctx context.Context, filter model.MenuFilter) (*model.MenuListing, error) {
	items, err := s.menuRepo.ListItems(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}

	categories, err := s.menuRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	total, available, err := s.menuRepo.CountItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count menu items: %w", err)
	}

	return &model.MenuListing{
		Items:          items,
		Categories:     categories,
		TotalItems:     total,
		AvailableItems: available,
		HiddenItems:    total - available,
	}, nil
}

func (s *menuService) GetItem(ctx context.Context, id int64) (*model.MenuItem, error) {
	item, err := s.menuRepo.GetItemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil {
		return nil, model.ErrMenuItemNotFound
	}
	return item, nil
}

// validateInput checks the fields the menu form requires.
func (s *menuService) validateInput(ctx context.Context, in *model.MenuItemInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if in.Name == "" || in.CategoryID == 0 {
		return model.NewValidationError("Name, price, and category are required")
	}
	if in.Price.IsNegative() {
		return model.NewValidationError("Price cannot be negative")
	}

	category, err := s.menuRepo.GetCategoryByID(ctx, in.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return model.ErrCategoryNotFound
	}
	return nil
}

// uniqueItemSlug derives a slug from name, adding a numeric suffix on collision.
func (s *menuService) uniqueItemSlug(ctx context.Context, name string, excludeID int64) (string, error) {
	base := slugify(name)
	if base == "" {
		base = "item"
	}

	slug := base
	for n := 2; ; n++ {
		exists, err := s.menuRepo.ItemSlugExists(ctx, slug, excludeID)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *menuService) CreateItem(ctx context.Context, in *model.MenuItemInput) (*model.MenuItem, error) {
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	slug, err := s.uniqueItemSlug(ctx, in.Name, 0)
	if err != nil {
		return nil, err
	}

	item := &model.MenuItem{
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		Price:       in.Price.Round(2),
		IsAvailable: in.IsAvailable,
		IsFeatured:  in.IsFeatured,
	}

	if err := s.menuRepo.CreateItem(ctx, item, in.TagIDs); err != nil {
		s.logger.Error().Err(err).Str("name", in.Name).Msg("failed to create menu item")
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	s.logger.Info().Int64("item_id", item.ID).Str("name", item.Name).Msg("menu item created")
	return s.GetItem(ctx, item.ID)
}

func (s *menuService) UpdateItem(ctx context.Context, id int64, in *model.MenuItemInput) (*model.MenuItem, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	if !strings.EqualFold(item.Name, in.Name) {
		if item.Slug, err = s.uniqueItemSlug(ctx, in.Name, id); err != nil {
			return nil, err
		}
	}

	item.CategoryID = in.CategoryID
	item.Name = in.Name
	item.Description = in.Description
	item.Price = in.Price.Round(2)
	item.IsAvailable = in.IsAvailable
	item.IsFeatured = in.IsFeatured

	tagIDs := in.TagIDs
	if tagIDs == nil {
		tagIDs = []int64{}
	}

	if err := s.menuRepo.UpdateItem(ctx, item, tagIDs); err != nil {
		s.logger.Error().Err(err).Int64("item_id", id).Msg("failed to update menu item")
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}

	return s.GetItem(ctx, id)
}

func (s *menuService) DeleteItem(ctx context.Context, id int64) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	if err := s.menuRepo.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	if err := s.images.Delete(ctx, item.ImagePublicID); err != nil {
		s.logger.Warn().Err(err).Int64("item_id", id).Msg("failed to remove image of deleted item")
	}

	s.logger.Info().Int64("item_id", id).Str("name", item.Name).Msg("menu item deleted")
	return nil
}

func (s *menuService) ToggleAvailability(ctx context.Context, id int64) (*model.MenuItem, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.menuRepo.SetAvailability(ctx, id, !item.IsAvailable); err != nil {
		return nil, fmt.Errorf("failed to toggle availability: %w", err)
	}

	item.IsAvailable = !item.IsAvailable
	return item, nil
}

func (s *menuService) UploadImage(ctx context.Context, id int64, r io.Reader, filename string, size int64) (*model.MenuItem, error) {
	if err := media.ValidateImage(filename, size); err != nil {
		return nil, err
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	url, publicID, err := s.images.Upload(ctx, r, filename)
	if err != nil {
		return nil, err
	}

	if err := s.menuRepo.SetImage(ctx, id, url, publicID); err != nil {
		if delErr := s.images.Delete(ctx, publicID); delErr != nil {
			s.logger.Warn().Err(delErr).Str("public_id", publicID).Msg("failed to remove orphaned image")
		}
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	if old := item.ImagePublicID; old != "" && old != publicID {
		if err := s.images.Delete(ctx, old); err != nil {
			s.logger.Warn().Err(err).Str("public_id", old).Msg("failed to remove previous image")
		}
	}

	item.ImageURL, item.ImagePublicID = url, publicID
	return item, nil
}

func (s *menuService) AddAddOn(ctx context.Context, itemID int64, req *model.AddOnRequest) (*model.AddOn, error) {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.NewValidationError("Add-on name is required")
	}
	if req.AdditionalPrice.IsNegative() {
		return nil, model.NewValidationError("Add-on price cannot be negative")
	}

	addOn := &model.AddOn{MenuItemID: itemID, Name: name, AdditionalPrice: req.AdditionalPrice.Round(2)}
	if err := s.menuRepo.CreateAddOn(ctx, addOn); err != nil {
		return nil, fmt.Errorf("failed to create add-on: %w", err)
	}
	return addOn, nil
}

func (s *menuService) RemoveAddOn(ctx context.Context, itemID, addOnID int64) error {
	removed, err := s.menuRepo.DeleteAddOn(ctx, itemID, addOnID)
	if err != nil {
		return fmt.Errorf("failed to delete add-on: %w", err)
	}
	if !removed {
		return model.ErrAddOnNotFound
	}
	return nil
}

func (s *menuService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.menuRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// uniqueCategorySlug derives a slug from name, adding a numeric suffix on collision.
func (s *menuService) uniqueCategorySlug(ctx context.Context, name string) (string, error) {
	base := slugify(name)
	if base == "" {
		base = "category"
	}

	slug := base
	for n := 2; ; n++ {
		exists, err := s.menuRepo.CategorySlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *menuService) CreateCategory(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.NewValidationError("Category name is required")
	}

	slug, err := s.uniqueCategorySlug(ctx, name)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
		Position:    req.Position,
	}
	if err := s.menuRepo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().Int64("category_id", category.ID).Str("name", name).Msg("category created")
	return category, nil
}

func (s *menuService) DeleteCategory(ctx context.Context, id int64, reassignTo *int64) error {
	category, err := s.menuRepo.GetCategoryByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return model.ErrCategoryNotFound
	}

	if category.ItemCount == 0 {
		reassignTo = nil
	} else {
		if reassignTo == nil || *reassignTo == id {
			return model.ErrCategoryHasItems
		}
		target, err := s.menuRepo.GetCategoryByID(ctx, *reassignTo)
		if err != nil {
			return fmt.Errorf("failed to get category: %w", err)
		}
		if target == nil {
			return model.NewDomainError(model.ErrCodeNotFound, "Target category not found")
		}
	}

	if err := s.menuRepo.DeleteCategory(ctx, id, reassignTo); err != nil {
		s.logger.Error().Err(err).Int64("category_id", id).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info().Int64("category_id", id).Int("moved_items", category.ItemCount).Msg("category deleted")
	return nil
}

func (s *menuService) ListTags(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.menuRepo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

var csvColumns = []string{"name", "category", "price", "description", "is_available", "is_featured", "tags", "addons", "image"}

var csvTemplateRows = [][]string{
	{"Lobster Bisque", "Chef Specials", "24.99", "Rich creamy bisque with fresh lobster", "true", "true", "bestseller|spicy", "Extra Bread:1.50", ""},
	{"Grilled Ribeye", "Main Course", "32.00", "12oz ribeye with herb butter", "true", "false", "bestseller", "Extra Sauce:2.00|Upgrade to Wagyu:15.00", ""},
	{"Spring Rolls", "Appetizers", "8.50", "Crispy veggie spring rolls", "true", "false", "vegan", "", ""},
	{"Spaghetti Carbonara", "Pasta", "14.99", "Classic carbonara with pancetta", "true", "false", "", "Extra Parmesan:1.00", ""},
	{"Chocolate Lava Cake", "Desserts", "9.00", "Warm chocolate cake with vanilla ice cream", "true", "false", "new", "", ""},
	{"Mango Shake", "Beverages", "5.50", "Fresh mango blended with milk", "true", "false", "", "", ""},
}

func (s *menuService) WriteCSVTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	if err := cw.WriteAll(csvTemplateRows); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}

func parseFlag(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return fallback
	case "true", "1", "yes":
		return true
	}
	return false
}

// parseImportRow reads one CSV record keyed by header position.
func parseImportRow(record []string, index map[string]int) (*model.MenuImportRow, error) {
	get := func(col string) string {
		if i, ok := index[col]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	row := &model.MenuImportRow{
		Name:        get("name"),
		Category:    get("category"),
		Description: get("description"),
		IsAvailable: parseFlag(get("is_available"), true),
		IsFeatured:  parseFlag(get("is_featured"), false),
		ImageURL:    get("image"),
	}

	if row.Name == "" {
		return nil, &rowError{msg: "name is required"}
	}

	rawPrice := get("price")
	if rawPrice == "" {
		return nil, rowErrorf("price is required for %q", row.Name)
	}
	if row.Category == "" {
		return nil, rowErrorf("category is required for %q", row.Name)
	}

	price, err := decimal.NewFromString(rawPrice)
	if err != nil || price.IsNegative() {
		return nil, rowErrorf("invalid price %q for %q", rawPrice, row.Name)
	}
	row.Price = price.Round(2)

	for _, t := range strings.Split(get("tags"), "|") {
		if t = strings.TrimSpace(t); t != "" {
			row.Tags = append(row.Tags, strings.ToLower(t))
		}
	}

	for _, part := range strings.Split(get("addons"), "|") {
		name, rawAddOnPrice, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		addOnPrice, err := decimal.NewFromString(strings.TrimSpace(rawAddOnPrice))
		if err != nil || addOnPrice.IsNegative() {
			return nil, rowErrorf("invalid add-on price %q", strings.TrimSpace(rawAddOnPrice))
		}
		row.AddOns = append(row.AddOns, model.AddOnImport{Name: strings.TrimSpace(name), Price: addOnPrice.Round(2)})
	}

	return row, nil
}

func (s *menuService) ImportCSV(ctx context.Context, r io.Reader) (*model.MenuImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, model.NewValidationError(fmt.Sprintf("Failed to read CSV: %v", err))
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))] = i
	}

	tags, err := s.menuRepo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	tagIDs := make(map[string]int64, len(tags))
	for _, t := range tags {
		tagIDs[string(t.Name)] = t.ID
	}

	result := &model.MenuImportResult{Errors: []string{}}
	for rowNum := 2; ; rowNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read import row %d: %w", rowNum, err)
		}

		row, err := parseImportRow(record, index)
		if err == nil {
			var created bool
			created, err = s.importRow(ctx, row, tagIDs)
			if err == nil {
				if created {
					result.Created++
				} else {
					result.Updated++
				}
				continue
			}
		}

		if _, ok := model.AsDomainError(err); !ok && !isRowError(err) {
			s.logger.Error().Err(err).Int("row", rowNum).Msg("failed to import menu row")
		}
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", rowNum, err.Error()))
	}

	s.logger.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("errors", len(result.Errors)).
		Msg("menu import finished")

	return result, nil
}

// rowError marks a problem with a single import row.
type rowError struct{ msg string }

func (e *rowError) Error() string { return e.msg }

func rowErrorf(format string, args ...any) error {
	return &rowError{msg: fmt.Sprintf(format, args...)}
}

func isRowError(err error) bool {
	var re *rowError
	return errors.As(err, &re)
}

// importRow upserts one item by case-insensitive name and reports whether it was created.
func (s *menuService) importRow(ctx context.Context, row *model.MenuImportRow, tagIDs map[string]int64) (bool, error) {
	var ids []int64
	if len(row.Tags) > 0 {
		ids = make([]int64, 0, len(row.Tags))
		for _, name := range row.Tags {
			id, ok := tagIDs[name]
			if !ok {
				return false, rowErrorf("unknown tag %q", name)
			}
			ids = append(ids, id)
		}
	}

	category, err := s.menuRepo.GetCategoryByName(ctx, row.Category)
	if err != nil {
		return false, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		if category, err = s.CreateCategory(ctx, &model.CategoryRequest{Name: row.Category}); err != nil {
			return false, err
		}
	}

	item, err := s.menuRepo.GetItemByName(ctx, row.Name)
	if err != nil {
		return false, fmt.Errorf("failed to get menu item: %w", err)
	}

	created := item == nil
	if created {
		slug, err := s.uniqueItemSlug(ctx, row.Name, 0)
		if err != nil {
			return false, err
		}
		item = &model.MenuItem{Slug: slug}
	}

	item.Name = row.Name
	item.CategoryID = category.ID
	item.Description = row.Description
	item.Price = row.Price
	item.IsAvailable = row.IsAvailable
	item.IsFeatured = row.IsFeatured

	if created {
		item.ImageURL = row.ImageURL
		err = s.menuRepo.CreateItem(ctx, item, ids)
	} else {
		err = s.menuRepo.UpdateItem(ctx, item, ids)
		if err == nil && row.ImageURL != "" && row.ImageURL != item.ImageURL {
			err = s.menuRepo.SetImage(ctx, item.ID, row.ImageURL, "")
		}
	}
	if err != nil {
		return false, fmt.Errorf("failed to save menu item %q: %w", row.Name, err)
	}

	for _, a := range row.AddOns {
		existing, err := s.menuRepo.GetAddOnByName(ctx, item.ID, a.Name)
		if err != nil {
			return false, fmt.Errorf("failed to get add-on: %w", err)
		}
		if existing != nil {
			continue
		}
		if err := s.menuRepo.CreateAddOn(ctx, &model.AddOn{MenuItemID: item.ID, Name: a.Name, AdditionalPrice: a.Price}); err != nil {
			return false, fmt.Errorf("failed to create add-on %q: %w", a.Name, err)
		}
	}

	return created, nil
}
