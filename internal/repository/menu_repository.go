package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bistro/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// menuRepository implements MenuRepository using PostgreSQL.
type menuRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMenuRepository creates a new PostgreSQL-backed menu repository.
func NewMenuRepository(pool *pgxpool.Pool, logger zerolog.Logger) MenuRepository {
	return &menuRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "menu").Logger(),
	}
}

const itemColumns = `
	i.id, i.category_id, c.name, i.name, i.slug, i.description, i.price,
	i.image_url, i.image_public_id, i.is_available, i.is_featured, i.created_at, i.updated_at`

func (r *menuRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.is_active, c.position,
		       (SELECT COUNT(*) FROM menu_items i WHERE i.category_id = c.id)
		FROM categories c
		ORDER BY c.position, c.name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.Position, &c.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *menuRepository) getCategory(ctx context.Context, where string, arg any) (*model.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.is_active, c.position,
		       (SELECT COUNT(*) FROM menu_items i WHERE i.category_id = c.id)
		FROM categories c
		WHERE ` + where + `
		LIMIT 1
	`

	var c model.Category
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.Position, &c.ItemCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &c, nil
}

func (r *menuRepository) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	return r.getCategory(ctx, "c.id = $1", id)
}

func (r *menuRepository) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	return r.getCategory(ctx, "LOWER(c.name) = LOWER($1)", name)
}

func (r *menuRepository) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category slug: %w", err)
	}
	return exists, nil
}

func (r *menuRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	query := `
		INSERT INTO categories (name, slug, description, is_active, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		category.Name, category.Slug, category.Description, category.IsActive, category.Position,
	).Scan(&category.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("name", category.Name).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

func (r *menuRepository) DeleteCategory(ctx context.Context, id int64, reassignTo *int64) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if reassignTo != nil {
			moved, err := tx.Exec(ctx,
				`UPDATE menu_items SET category_id = $2, updated_at = NOW() WHERE category_id = $1`,
				id, *reassignTo,
			)
			if err != nil {
				return fmt.Errorf("failed to reassign items: %w", err)
			}
			r.logger.Info().
				Int64("category_id", id).
				Int64("reassign_to", *reassignTo).
				Int64("moved", moved.RowsAffected()).
				Msg("category items reassigned")
		}

		if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
			r.logger.Error().Err(err).Int64("category_id", id).Msg("failed to delete category")
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return nil
	})
}

func (r *menuRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := make([]model.Tag, 0, 4)
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

func (r *menuRepository) ListItems(ctx context.Context, filter model.MenuFilter) ([]model.MenuItem, error) {
	var (
		args       argList
		conditions []string
	)

	if filter.CategoryID != 0 {
		conditions = append(conditions, "i.category_id = "+args.add(filter.CategoryID))
	}
	if filter.Search != "" {
		p := args.add(containsPattern(filter.Search))
		conditions = append(conditions, fmt.Sprintf("(i.name ILIKE %s OR i.description ILIKE %s)", p, p))
	}
	if filter.Available != nil {
		conditions = append(conditions, "i.is_available = "+args.add(*filter.Available))
	}

	query := `SELECT ` + itemColumns + `
		FROM menu_items i
		JOIN categories c ON c.id = i.category_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.position, i.name"

	return r.queryItems(ctx, query, args...)
}

func (r *menuRepository) ListAvailableItems(ctx context.Context) ([]model.MenuItem, error) {
	query := `SELECT ` + itemColumns + `
		FROM menu_items i
		JOIN categories c ON c.id = i.category_id
		WHERE i.is_available AND c.is_active
		ORDER BY c.position, c.name, i.name`

	return r.queryItems(ctx, query)
}

func (r *menuRepository) CountItems(ctx context.Context) (int, int, error) {
	var total, available int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_available) FROM menu_items`,
	).Scan(&total, &available)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	return total, available, nil
}

func (r *menuRepository) getItem(ctx context.Context, where string, arg any) (*model.MenuItem, error) {
	query := `SELECT ` + itemColumns + `
		FROM menu_items i
		JOIN categories c ON c.id = i.category_id
		WHERE ` + where + `
		LIMIT 1`

	items, err := r.queryItems(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *menuRepository) GetItemByID(ctx context.Context, id int64) (*model.MenuItem, error) {
	return r.getItem(ctx, "i.id = $1", id)
}

func (r *menuRepository) GetItemBySlug(ctx context.Context, slug string) (*model.MenuItem, error) {
	return r.getItem(ctx, "i.slug = $1", slug)
}

func (r *menuRepository) GetItemByName(ctx context.Context, name string) (*model.MenuItem, error) {
	return r.getItem(ctx, "LOWER(i.name) = LOWER($1)", name)
}

func (r *menuRepository) ItemSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM menu_items WHERE slug = $1 AND id <> $2)`, slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check item slug: %w", err)
	}
	return exists, nil
}

func (r *menuRepository) CreateItem(ctx context.Context, item *model.MenuItem, tagIDs []int64) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO menu_items (category_id, name, slug, description, price, image_url,
			                        image_public_id, is_available, is_featured)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at, updated_at
		`

		err := tx.QueryRow(ctx, query,
			item.CategoryID, item.Name, item.Slug, item.Description, item.Price,
			item.ImageURL, item.ImagePublicID, item.IsAvailable, item.IsFeatured,
		).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			r.logger.Error().Err(err).Str("name", item.Name).Msg("failed to create menu item")
			return fmt.Errorf("failed to create menu item: %w", err)
		}

		return r.replaceTags(ctx, tx, item.ID, tagIDs)
	})
}

func (r *menuRepository) UpdateItem(ctx context.Context, item *model.MenuItem, tagIDs []int64) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			UPDATE menu_items
			SET category_id = $2, name = $3, slug = $4, description = $5, price = $6,
			    is_available = $7, is_featured = $8, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`

		err := tx.QueryRow(ctx, query,
			item.ID, item.CategoryID, item.Name, item.Slug, item.Description, item.Price,
			item.IsAvailable, item.IsFeatured,
		).Scan(&item.UpdatedAt)
		if err != nil {
			r.logger.Error().Err(err).Int64("item_id", item.ID).Msg("failed to update menu item")
			return fmt.Errorf("failed to update menu item: %w", err)
		}

		if tagIDs == nil {
			return nil
		}
		return r.replaceTags(ctx, tx, item.ID, tagIDs)
	})
}

// replaceTags sets the item's tags to exactly tagIDs.
func (r *menuRepository) replaceTags(ctx context.Context, tx pgx.Tx, itemID int64, tagIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM menu_item_tags WHERE menu_item_id = $1`, itemID); err != nil {
		return fmt.Errorf("failed to clear item tags: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, tagID := range tagIDs {
		batch.Queue(
			`INSERT INTO menu_item_tags (menu_item_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			itemID, tagID,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range tagIDs {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Int64("item_id", itemID).Msg("failed to link tag")
			return fmt.Errorf("failed to link tag: %w", err)
		}
	}

	return nil
}

func (r *menuRepository) DeleteItem(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Int64("item_id", id).Msg("failed to delete menu item")
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	return nil
}

func (r *menuRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE menu_items SET is_available = $2, updated_at = NOW() WHERE id = $1`, id, available,
	)
	if err != nil {
		return fmt.Errorf("failed to set availability: %w", err)
	}
	return nil
}

func (r *menuRepository) SetImage(ctx context.Context, id int64, url, publicID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE menu_items SET image_url = $2, image_public_id = $3, updated_at = NOW() WHERE id = $1`,
		id, url, publicID,
	)
	if err != nil {
		return fmt.Errorf("failed to set image: %w", err)
	}
	return nil
}

func (r *menuRepository) CreateAddOn(ctx context.Context, addOn *model.AddOn) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO addons (menu_item_id, name, additional_price) VALUES ($1, $2, $3) RETURNING id`,
		addOn.MenuItemID, addOn.Name, addOn.AdditionalPrice,
	).Scan(&addOn.ID)
	if err != nil {
		r.logger.Error().Err(err).Int64("item_id", addOn.MenuItemID).Msg("failed to create add-on")
		return fmt.Errorf("failed to create add-on: %w", err)
	}
	return nil
}

func (r *menuRepository) GetAddOnByName(ctx context.Context, itemID int64, name string) (*model.AddOn, error) {
	var a model.AddOn
	err := r.pool.QueryRow(ctx,
		`SELECT id, menu_item_id, name, additional_price FROM addons
		 WHERE menu_item_id = $1 AND LOWER(name) = LOWER($2) LIMIT 1`,
		itemID, name,
	).Scan(&a.ID, &a.MenuItemID, &a.Name, &a.AdditionalPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query add-on: %w", err)
	}
	return &a, nil
}

func (r *menuRepository) DeleteAddOn(ctx context.Context, itemID, addOnID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM addons WHERE id = $1 AND menu_item_id = $2`, addOnID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to delete add-on: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// queryItems runs an item query and loads tags and add-ons for the result.
func (r *menuRepository) queryItems(ctx context.Context, query string, args ...any) ([]model.MenuItem, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query menu items")
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := make([]model.MenuItem, 0)
	for rows.Next() {
		var it model.MenuItem
		err := rows.Scan(
			&it.ID, &it.CategoryID, &it.CategoryName, &it.Name, &it.Slug, &it.Description, &it.Price,
			&it.ImageURL, &it.ImagePublicID, &it.IsAvailable, &it.IsFeatured, &it.CreatedAt, &it.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan menu item row")
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		it.Tags = []model.Tag{}
		it.AddOns = []model.AddOn{}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating menu items: %w", err)
	}

	if err := r.attachDetails(ctx, items); err != nil {
		return nil, err
	}

	return items, nil
}

// attachDetails fills Tags and AddOns for items.
func (r *menuRepository) attachDetails(ctx context.Context, items []model.MenuItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, len(items))
	index := make(map[int64]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
		index[it.ID] = i
	}

	tagRows, err := r.pool.Query(ctx, `
		SELECT mt.menu_item_id, t.id, t.name
		FROM menu_item_tags mt
		JOIN tags t ON t.id = mt.tag_id
		WHERE mt.menu_item_id = ANY($1)
		ORDER BY t.name`, ids)
	if err != nil {
		return fmt.Errorf("failed to query item tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var itemID int64
		var t model.Tag
		if err := tagRows.Scan(&itemID, &t.ID, &t.Name); err != nil {
			return fmt.Errorf("failed to scan item tag: %w", err)
		}
		i := index[itemID]
		items[i].Tags = append(items[i].Tags, t)
	}
	if err := tagRows.Err(); err != nil {
		return fmt.Errorf("error iterating item tags: %w", err)
	}

	addOnRows, err := r.pool.Query(ctx, `
		SELECT id, menu_item_id, name, additional_price
		FROM addons
		WHERE menu_item_id = ANY($1)
		ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to query add-ons: %w", err)
	}
	defer addOnRows.Close()

	for addOnRows.Next() {
		var a model.AddOn
		if err := addOnRows.Scan(&a.ID, &a.MenuItemID, &a.Name, &a.AdditionalPrice); err != nil {
			return fmt.Errorf("failed to scan add-on: %w", err)
		}
		i := index[a.MenuItemID]
		items[i].AddOns = append(items[i].AddOns, a)
	}

	return addOnRows.Err()
}
