package service

import (
	"context"
	"fmt"
	"time"

	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	recentOrdersLimit      = 8
	todayReservationsLimit = 6
	chartDays              = 7
)

// dashboardService implements DashboardService.
type dashboardService struct {
	orderRepo repository.OrderRepository
	resRepo   repository.ReservationRepository
	logger    zerolog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(orderRepo repository.OrderRepository, resRepo repository.ReservationRepository, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		orderRepo: orderRepo,
		resRepo:   resRepo,
		logger:    logger.With().Str("service", "dashboard").Logger(),
	}
}

func (s *dashboardService) period(ctx context.Context, from, to time.Time) (model.PeriodTotals, error) {
	revenue, count, err := s.orderRepo.PaidTotals(ctx, from, to)
	if err != nil {
		return model.PeriodTotals{}, fmt.Errorf("failed to total revenue: %w", err)
	}
	return model.PeriodTotals{Revenue: revenue, Count: count}, nil
}

func (s *dashboardService) Summary(ctx context.Context, now time.Time) (*model.DashboardSummary, error) {
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	var (
		summary model.DashboardSummary
		err     error
	)
	if summary.Today, err = s.period(ctx, today, tomorrow); err != nil {
		return nil, err
	}
	if summary.Week, err = s.period(ctx, today.AddDate(0, 0, -7), tomorrow); err != nil {
		return nil, err
	}
	if summary.Month, err = s.period(ctx, today.AddDate(0, 0, -30), tomorrow); err != nil {
		return nil, err
	}

	orderCounts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	summary.PendingOrders = orderCounts[model.OrderStatusPending]

	resCounts, err := s.resRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count reservations: %w", err)
	}
	summary.PendingReservations = resCounts[model.ReservationPending]

	statuses := append([]model.OrderStatus{model.OrderStatusPending}, model.PaidOrderStatuses...)
	if summary.RecentOrders, err = s.orderRepo.ListRecent(ctx, statuses, recentOrdersLimit); err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}

	if summary.TodayReservations, err = s.resRepo.ListOnDate(ctx, today, todayReservationsLimit); err != nil {
		return nil, fmt.Errorf("failed to list today's reservations: %w", err)
	}

	if summary.RevenueChart, err = s.chart(ctx, today); err != nil {
		return nil, err
	}

	return &summary, nil
}

// chart returns paid revenue for the last seven days ending today, oldest first.
func (s *dashboardService) chart(ctx context.Context, today time.Time) ([]model.RevenuePoint, error) {
	start := today.AddDate(0, 0, -(chartDays - 1))
	daily, err := s.orderRepo.DailyPaidRevenue(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue chart: %w", err)
	}

	points := make([]model.RevenuePoint, 0, chartDays)
	for i := 0; i < chartDays; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format("2006-01-02")
		revenue, ok := daily[key]
		if !ok {
			revenue = decimal.Zero
		}
		points = append(points, model.RevenuePoint{
			Label:   day.Format("Mon"),
			Date:    key,
			Revenue: revenue,
		})
	}
	return points, nil
}
