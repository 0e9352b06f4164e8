package service

import (
	"context"
	"fmt"
	"strings"

	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// customerService implements CustomerService.
type customerService struct {
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
	resRepo      repository.ReservationRepository
	accountRepo  repository.AccountRepository
	logger       zerolog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
	resRepo repository.ReservationRepository,
	accountRepo repository.AccountRepository,
	logger zerolog.Logger,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		resRepo:      resRepo,
		accountRepo:  accountRepo,
		logger:       logger.With().Str("service", "customer").Logger(),
	}
}

func (s *customerService) List(ctx context.Context, query model.CustomerQuery) (*model.CustomerListing, error) {
	query.Search = strings.TrimSpace(query.Search)
	if !query.Sort.Valid() {
		query.Sort = model.SortLastOrderDesc
	}

	total, revenue, repeat, err := s.customerRepo.Totals(ctx, query.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to total customers: %w", err)
	}

	page, pages, offset := paginate(total, model.CustomersPerPage, query.Page)
	query.Page = page

	customers, err := s.customerRepo.List(ctx, query, model.CustomersPerPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return &model.CustomerListing{
		Customers:       customers,
		Page:            page,
		TotalPages:      pages,
		TotalCustomers:  total,
		TotalRevenue:    revenue,
		RepeatCustomers: repeat,
	}, nil
}

func (s *customerService) Detail(ctx context.Context, email string) (*model.CustomerDetail, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, model.ErrCustomerNotFound
	}

	orders, err := s.orderRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer orders: %w", err)
	}
	reservations, err := s.resRepo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer reservations: %w", err)
	}
	if len(orders) == 0 && len(reservations) == 0 {
		return nil, model.ErrCustomerNotFound
	}

	blocked, err := s.accountRepo.GetBlocked(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check blocked customers: %w", err)
	}

	detail := &model.CustomerDetail{
		Email:        email,
		Orders:       orders,
		Reservations: reservations,
		Stats:        customerStats(orders),
		Blocked:      blocked,
	}

	// Both lists are newest first; prefer the latest order's contact details.
	switch {
	case len(orders) > 0:
		detail.Name, detail.Phone = orders[0].Name, orders[0].Phone
	default:
		detail.Name, detail.Phone = reservations[0].Name, reservations[0].Phone
	}

	return detail, nil
}

func customerStats(orders []model.Order) model.CustomerStats {
	stats := model.CustomerStats{TotalSpent: decimal.Zero, AvgOrder: decimal.Zero}
	for i := range orders {
		o := &orders[i]
		if !o.Status.IsPaid() {
			continue
		}
		stats.TotalSpent = stats.TotalSpent.Add(o.Total)
		stats.OrderCount++

		created := o.CreatedAt
		if stats.FirstOrder == nil || created.Before(*stats.FirstOrder) {
			stats.FirstOrder = &created
		}
		if stats.LastOrder == nil || created.After(*stats.LastOrder) {
			stats.LastOrder = &created
		}
	}
	if stats.OrderCount > 0 {
		stats.AvgOrder = stats.TotalSpent.Div(decimal.NewFromInt(int64(stats.OrderCount))).Round(2)
	}
	return stats
}

func (s *customerService) Block(ctx context.Context, req *model.BlockRequest, blockedBy int64) (bool, error) {
	b := &model.BlockedCustomer{
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Reason: strings.TrimSpace(req.Reason),
	}
	if blockedBy != 0 {
		b.BlockedBy = &blockedBy
	}

	created, err := s.accountRepo.Block(ctx, b)
	if err != nil {
		return false, fmt.Errorf("failed to block customer: %w", err)
	}

	s.logger.Info().Str("email", b.Email).Bool("created", created).Int64("blocked_by", blockedBy).Msg("customer blocked")
	return created, nil
}

func (s *customerService) Unblock(ctx context.Context, email string) error {
	if err := s.accountRepo.Unblock(ctx, strings.TrimSpace(email)); err != nil {
		return fmt.Errorf("failed to unblock customer: %w", err)
	}
	s.logger.Info().Str("email", email).Msg("customer unblocked")
	return nil
}
