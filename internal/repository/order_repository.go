package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `
	o.id, o.order_number, o.account_id, o.name, o.email, o.phone, o.pickup_time, o.notes,
	o.subtotal, o.discount_amount, o.total, o.promo_code_id, COALESCE(p.code, ''), o.status,
	o.payment_session_id, o.payment_intent_id, o.paid_at, o.created_at, o.updated_at`

const orderFrom = `
	FROM orders o
	LEFT JOIN promo_codes p ON p.id = o.promo_code_id`

func paidStatuses() []string {
	statuses := make([]string, len(model.PaidOrderStatuses))
	for i, s := range model.PaidOrderStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, order_number, account_id, name, email, phone, pickup_time, notes,
		                    subtotal, discount_amount, total, promo_code_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.OrderNumber, order.AccountID, order.Name, order.Email, order.Phone,
		order.PickupTime, order.Notes, order.Subtotal, order.DiscountAmount, order.Total,
		order.PromoCodeID, order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, menu_item_id, addon_id, name, price, quantity, item_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.MenuItemID, item.AddOnID,
			item.Name, item.Price, item.Quantity, item.ItemTotal,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("item", items[i].Name).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getOne(ctx, "o.id = $1", id)
}

func (r *orderRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	return r.getOne(ctx, "o.payment_session_id = $1", sessionID)
}

func (r *orderRepository) getOne(ctx context.Context, where string, arg any) (*model.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE ` + where

	order, err := scanOrder(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Interface("key", arg).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Interface("key", arg).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	orders := []model.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

func (r *orderRepository) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_session_id = $2, updated_at = NOW() WHERE id = $1`, id, sessionID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to store payment session")
		return fmt.Errorf("failed to store payment session: %w", err)
	}
	return nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paymentIntentID string, paidAt time.Time) (bool, error) {
	var intent *string
	if paymentIntentID != "" {
		intent = &paymentIntentID
	}

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $2, payment_intent_id = COALESCE($3, payment_intent_id), paid_at = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5`,
		id, model.OrderStatusConfirmed, intent, paidAt, model.OrderStatusPending,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to mark order paid")
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepository) ListByAccount(ctx context.Context, accountID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + `
		WHERE o.account_id = $1
		ORDER BY o.created_at DESC`
	return r.queryOrders(ctx, query, accountID)
}

func (r *orderRepository) ListByEmail(ctx context.Context, email string) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + `
		WHERE LOWER(o.email) = LOWER($1)
		ORDER BY o.created_at DESC`
	return r.queryOrders(ctx, query, email)
}

func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var (
		args       argList
		conditions []string
	)

	if filter.Status != "" {
		conditions = append(conditions, "o.status = "+args.add(filter.Status))
	}
	if filter.Date != nil {
		start, end := dayRange(*filter.Date)
		conditions = append(conditions, fmt.Sprintf("o.created_at >= %s AND o.created_at < %s", args.add(start), args.add(end)))
	}
	if filter.Search != "" {
		p := args.add(containsPattern(filter.Search))
		conditions = append(conditions,
			fmt.Sprintf("(o.name ILIKE %s OR o.email ILIKE %s OR o.order_number::text ILIKE %s)", p, p, p))
	}

	query := `SELECT ` + orderColumns + orderFrom
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY o.created_at DESC"

	return r.queryOrders(ctx, query, args...)
}

func (r *orderRepository) ListRecent(ctx context.Context, statuses []model.OrderStatus, limit int) ([]model.Order, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	query := `SELECT ` + orderColumns + orderFrom + `
		WHERE o.status = ANY($1)
		ORDER BY o.created_at DESC
		LIMIT $2`
	return r.queryOrders(ctx, query, names, limit)
}

func (r *orderRepository) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.OrderStatus]int)
	for rows.Next() {
		var status model.OrderStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan order count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

func (r *orderRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE created_at >= $1 AND created_at < $2`, from, to,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

func (r *orderRepository) PaidTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	var (
		args       argList
		conditions = []string{"status = ANY(" + args.add(paidStatuses()) + ")"}
	)
	if !from.IsZero() {
		conditions = append(conditions, "created_at >= "+args.add(from))
	}
	if !to.IsZero() {
		conditions = append(conditions, "created_at < "+args.add(to))
	}

	query := `SELECT COALESCE(SUM(total), 0), COUNT(*) FROM orders WHERE ` + strings.Join(conditions, " AND ")

	var total decimal.Decimal
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total, &count); err != nil {
		r.logger.Error().Err(err).Msg("failed to sum paid orders")
		return decimal.Zero, 0, fmt.Errorf("failed to sum paid orders: %w", err)
	}

	return total, count, nil
}

func (r *orderRepository) DailyPaidRevenue(ctx context.Context, from time.Time) (map[string]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM-DD'), SUM(total)
		FROM orders
		WHERE status = ANY($1) AND created_at >= $2
		GROUP BY 1`,
		paidStatuses(), from,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily revenue: %w", err)
	}
	defer rows.Close()

	revenue := make(map[string]decimal.Decimal)
	for rows.Next() {
		var day string
		var total decimal.Decimal
		if err := rows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("failed to scan daily revenue: %w", err)
		}
		revenue[day] = total
	}

	return revenue, rows.Err()
}

// paymentConditions builds the WHERE clause shared by the payments list and export.
func paymentConditions(filter model.PaymentFilter, args *argList, withOrderNumber bool) []string {
	var conditions []string

	if filter.Search != "" {
		p := args.add(containsPattern(filter.Search))
		clause := fmt.Sprintf("o.name ILIKE %s OR o.email ILIKE %s", p, p)
		if withOrderNumber {
			clause += fmt.Sprintf(" OR o.order_number::text ILIKE %s", p)
		}
		conditions = append(conditions, "("+clause+")")
	}

	switch filter.Status {
	case "paid":
		conditions = append(conditions, "o.status = ANY("+args.add(paidStatuses())+")")
	case "pending":
		conditions = append(conditions, "o.status = "+args.add(model.OrderStatusPending))
	case "cancelled":
		conditions = append(conditions, "o.status = "+args.add(model.OrderStatusCancelled))
	}

	if filter.Date != nil {
		start, end := dayRange(*filter.Date)
		conditions = append(conditions, fmt.Sprintf("o.created_at >= %s AND o.created_at < %s", args.add(start), args.add(end)))
	}

	return conditions
}

func (r *orderRepository) ListPayments(ctx context.Context, filter model.PaymentFilter, limit, offset int) ([]model.Order, int, error) {
	var args argList
	conditions := paymentConditions(filter, &args, true)

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	query := `SELECT ` + orderColumns + orderFrom + where +
		fmt.Sprintf(" ORDER BY o.created_at DESC LIMIT %s OFFSET %s", args.add(limit), args.add(offset))

	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) ListForExport(ctx context.Context, filter model.PaymentFilter) ([]model.Order, error) {
	var args argList
	exportable := append(paidStatuses(), string(model.OrderStatusCancelled))
	conditions := []string{"o.status = ANY(" + args.add(exportable) + ")"}

	// Export ignores the status tab and does not search order numbers.
	filter.Status = ""
	conditions = append(conditions, paymentConditions(filter, &args, false)...)

	query := `SELECT ` + orderColumns + orderFrom +
		" WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY o.created_at DESC"

	return r.queryOrders(ctx, query, args...)
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.AccountID, &o.Name, &o.Email, &o.Phone, &o.PickupTime, &o.Notes,
		&o.Subtotal, &o.DiscountAmount, &o.Total, &o.PromoCodeID, &o.PromoCode, &o.Status,
		&o.PaymentSessionID, &o.PaymentIntentID, &o.PaidAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Items = []model.OrderItem{}
	return &o, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachItems loads the items of every order in one query.
func (r *orderRepository) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, menu_item_id, addon_id, name, price, quantity, item_total
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY name`, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.AddOnID,
			&item.Name, &item.Price, &item.Quantity, &item.ItemTotal)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}
