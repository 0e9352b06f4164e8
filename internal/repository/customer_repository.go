package repository

import (
	"context"
	"fmt"

	"bistro/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a repository that aggregates customers from orders.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

var customerSortClauses = map[model.CustomerSort]string{
	model.SortLastOrderDesc:  "last_order DESC",
	model.SortLastOrderAsc:   "last_order ASC",
	model.SortTotalSpentDesc: "total_spent DESC",
	model.SortTotalSpentAsc:  "total_spent ASC",
	model.SortOrderCountDesc: "order_count DESC",
	model.SortName:           "name ASC",
}

// customerAggregate groups paid orders by email. $1 is the paid statuses, $2 an optional search pattern.
const customerAggregate = `
	SELECT LOWER(o.email) AS email,
	       MAX(o.name) AS name,
	       MAX(o.phone) AS phone,
	       SUM(o.total) AS total_spent,
	       COUNT(*) AS order_count,
	       MAX(o.created_at) AS last_order
	FROM orders o
	WHERE o.status = ANY($1)
	GROUP BY LOWER(o.email)
	HAVING $2::text = '' OR LOWER(o.email) ILIKE $2 OR MAX(o.name) ILIKE $2`

func searchPattern(search string) string {
	if search == "" {
		return ""
	}
	return containsPattern(search)
}

func (r *customerRepository) List(ctx context.Context, query model.CustomerQuery, limit, offset int) ([]model.CustomerSummary, error) {
	order, ok := customerSortClauses[query.Sort]
	if !ok {
		order = customerSortClauses[model.SortLastOrderDesc]
	}

	sql := `
		SELECT c.email, c.name, c.phone, c.total_spent, c.order_count, c.last_order,
		       EXISTS(SELECT 1 FROM blocked_customers b WHERE LOWER(b.email) = c.email)
		FROM (` + customerAggregate + `) c
		ORDER BY ` + order + `, c.email
		LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, sql, paidStatuses(), searchPattern(query.Search), limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query customers")
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]model.CustomerSummary, 0)
	for rows.Next() {
		var c model.CustomerSummary
		if err := rows.Scan(&c.Email, &c.Name, &c.Phone, &c.TotalSpent, &c.OrderCount, &c.LastOrder, &c.IsBlocked); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

func (r *customerRepository) Totals(ctx context.Context, search string) (int, decimal.Decimal, int, error) {
	sql := `
		SELECT COUNT(*), COALESCE(SUM(c.total_spent), 0), COUNT(*) FILTER (WHERE c.order_count > 1)
		FROM (` + customerAggregate + `) c`

	var (
		customers int
		revenue   decimal.Decimal
		repeat    int
	)
	if err := r.pool.QueryRow(ctx, sql, paidStatuses(), searchPattern(search)).Scan(&customers, &revenue, &repeat); err != nil {
		r.logger.Error().Err(err).Msg("failed to aggregate customers")
		return 0, decimal.Zero, 0, fmt.Errorf("failed to aggregate customers: %w", err)
	}

	return customers, revenue, repeat, nil
}
