package service

import (
	"context"
	"fmt"
	"time"

	"bistro/internal/events"
	"bistro/internal/metrics"
	"bistro/internal/model"
	"bistro/internal/notify"
	"bistro/internal/payment"
	"bistro/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const refundSucceeded = "succeeded"

// paymentService implements PaymentService.
type paymentService struct {
	orderRepo repository.OrderRepository
	promoRepo repository.PromoRepository
	gateway   payment.Gateway
	notifier  notify.Notifier
	publisher events.Publisher
	now       func() time.Time
	logger    zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	orderRepo repository.OrderRepository,
	promoRepo repository.PromoRepository,
	gateway payment.Gateway,
	notifier notify.Notifier,
	publisher events.Publisher,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		orderRepo: orderRepo,
		promoRepo: promoRepo,
		gateway:   gateway,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.With().Str("service", "payment").Logger(),
	}
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rejected webhook")
		return err
	}

	if event.Type != payment.EventCheckoutCompleted || event.Session == nil {
		s.logger.Debug().Str("event_id", event.ID).Str("type", event.Type).Msg("ignoring webhook event")
		return nil
	}

	if event.Session.PaymentStatus != payment.SessionPaid {
		s.logger.Info().Str("session_id", event.Session.ID).Str("payment_status", event.Session.PaymentStatus).Msg("checkout completed without payment")
		return nil
	}

	order, err := s.orderForSession(ctx, event.Session)
	if err != nil {
		return err
	}

	_, err = s.ConfirmPayment(ctx, order.ID, event.Session.PaymentIntent)
	return err
}

func (s *paymentService) ReconcileSession(ctx context.Context, sessionID string) (*model.Order, error) {
	session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to fetch checkout session")
		return nil, model.ErrNoPaymentFound
	}

	order, err := s.orderForSession(ctx, session)
	if err != nil {
		return nil, err
	}

	if session.PaymentStatus != payment.SessionPaid {
		return order, nil
	}
	return s.ConfirmPayment(ctx, order.ID, session.PaymentIntent)
}

// orderForSession resolves the order a session was opened for, by metadata first.
func (s *paymentService) orderForSession(ctx context.Context, session *model.CheckoutSession) (*model.Order, error) {
	var (
		order *model.Order
		err   error
	)
	if session.OrderID != nil {
		order, err = s.orderRepo.GetByID(ctx, *session.OrderID)
	} else {
		order, err = s.orderRepo.GetBySessionID(ctx, session.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		s.logger.Warn().Str("session_id", session.ID).Msg("no order for checkout session")
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// ConfirmPayment marks a pending order paid, counts its promo use and sends notifications.
func (s *paymentService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	updated, err := s.markPaid(ctx, order, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if !updated {
		s.logger.Debug().Str("order_id", orderID.String()).Str("status", string(order.Status)).Msg("payment already processed")
		return order, nil
	}

	paidAt := s.now()
	order.Status = model.OrderStatusConfirmed
	order.PaidAt = &paidAt
	if paymentIntentID != "" {
		order.PaymentIntentID = &paymentIntentID
	}

	metrics.IncPaymentConfirmed()
	if err := s.publisher.Publish(ctx, events.KeyOrderPaid, events.NewOrderEvent(order)); err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID.String()).Msg("failed to publish order paid event")
	}

	if err := s.notifier.OrderConfirmed(ctx, order); err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID.String()).Msg("failed to send order confirmation")
	}
	if err := s.notifier.NewOrder(ctx, order); err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID.String()).Msg("failed to notify restaurant")
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("total", order.Total.StringFixed(2)).
		Msg("payment confirmed")

	return order, nil
}

// markPaid flips the order to confirmed and bumps promo usage in one transaction.
func (s *paymentService) markPaid(ctx context.Context, order *model.Order, paymentIntentID string) (updated bool, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to confirm payment: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	updated, err = s.orderRepo.MarkPaid(ctx, tx, order.ID, paymentIntentID, s.now())
	if err != nil {
		return false, fmt.Errorf("failed to confirm payment: %w", err)
	}
	if !updated {
		return false, nil
	}

	if order.PromoCodeID != nil {
		if err = s.promoRepo.IncrementUsage(ctx, tx, *order.PromoCodeID); err != nil {
			return false, fmt.Errorf("failed to confirm payment: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to confirm payment: %w", err)
	}
	committed = true

	return true, nil
}

func (s *paymentService) revenue(ctx context.Context) (model.RevenueStats, error) {
	today := startOfDay(s.now())
	tomorrow := today.AddDate(0, 0, 1)

	var (
		stats model.RevenueStats
		err   error
	)
	windows := []struct {
		from  time.Time
		total *decimal.Decimal
		count *int
	}{
		{today, &stats.Today, &stats.TodayCount},
		{today.AddDate(0, 0, -7), &stats.Week, &stats.WeekCount},
		{today.AddDate(0, 0, -30), &stats.Month, &stats.MonthCount},
	}
	for _, w := range windows {
		if *w.total, *w.count, err = s.orderRepo.PaidTotals(ctx, w.from, tomorrow); err != nil {
			return stats, fmt.Errorf("failed to total revenue: %w", err)
		}
	}

	if stats.AllTime, stats.PaidCount, err = s.orderRepo.PaidTotals(ctx, time.Time{}, time.Time{}); err != nil {
		return stats, fmt.Errorf("failed to total revenue: %w", err)
	}
	return stats, nil
}

func (s *paymentService) List(ctx context.Context, filter model.PaymentFilter) (*model.PaymentListing, error) {
	requested := filter.Page
	if requested < 1 {
		requested = 1
	}

	orders, total, err := s.orderRepo.ListPayments(ctx, filter, model.PaymentsPerPage, (requested-1)*model.PaymentsPerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	page, pages, offset := paginate(total, model.PaymentsPerPage, requested)
	if page != requested {
		// Past the last page: show the last one instead.
		if orders, _, err = s.orderRepo.ListPayments(ctx, filter, model.PaymentsPerPage, offset); err != nil {
			return nil, fmt.Errorf("failed to list payments: %w", err)
		}
	}

	stats, err := s.revenue(ctx)
	if err != nil {
		return nil, err
	}

	return &model.PaymentListing{
		Orders:     orders,
		Page:       page,
		TotalPages: pages,
		Revenue:    stats,
	}, nil
}

func (s *paymentService) getOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *paymentService) Detail(ctx context.Context, id uuid.UUID) (*model.PaymentDetail, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &model.PaymentDetail{
		Order:         order,
		PaymentStatus: model.PaymentStatusOf(order.Status),
	}

	if order.PaymentSessionID != nil {
		session, err := s.gateway.GetCheckoutSession(ctx, *order.PaymentSessionID)
		if err != nil {
			s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("failed to fetch checkout session")
		} else {
			detail.Session = session
		}
	}

	return detail, nil
}

func (s *paymentService) Refund(ctx context.Context, id uuid.UUID, req *model.RefundRequest) (*model.Refund, error) {
	order, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.PaymentIntentID == nil || *order.PaymentIntentID == "" {
		return nil, model.ErrNoPaymentFound
	}

	var amount *decimal.Decimal
	if req.Type == "partial" && req.Amount != nil {
		a := req.Amount.Round(2)
		if !a.IsPositive() || a.GreaterThan(order.Total) {
			return nil, model.ErrInvalidRefundAmount
		}
		amount = &a
	}

	refund, err := s.gateway.Refund(ctx, *order.PaymentIntentID, amount)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("refund failed")
		return nil, model.NewDomainError(model.ErrCodePaymentFailed, fmt.Sprintf("Refund failed: %v", err))
	}

	if refund.Status != refundSucceeded {
		s.logger.Warn().Str("order_id", id.String()).Str("refund_status", refund.Status).Msg("refund not settled")
		return refund, model.NewDomainError(model.ErrCodePaymentFailed, fmt.Sprintf("Refund status: %s. Check the payment dashboard", refund.Status))
	}

	metrics.IncRefund(refundKind(amount))

	if order.Status != model.OrderStatusCancelled {
		updated, err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, model.OrderStatusCancelled)
		if err != nil {
			return nil, fmt.Errorf("failed to cancel refunded order: %w", err)
		}
		if updated {
			order.Status = model.OrderStatusCancelled
			metrics.IncOrderTransition(string(model.OrderStatusCancelled))
			if err := s.publisher.Publish(ctx, events.OrderStatusKey(order.Status), events.NewOrderEvent(order)); err != nil {
				s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("failed to publish order event")
			}
		}
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("refund_id", refund.ID).
		Str("amount", refund.Amount.StringFixed(2)).
		Msg("refund processed")

	return refund, nil
}

// refundKind labels a refund by what the gateway was asked for. A partial
// request without an amount refunds the whole charge.
func refundKind(amount *decimal.Decimal) string {
	if amount == nil {
		return "full"
	}
	return "partial"
}

func (s *paymentService) Export(ctx context.Context, filter model.PaymentFilter) ([]model.Order, error) {
	orders, err := s.orderRepo.ListForExport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to export payments: %w", err)
	}
	return orders, nil
}
