package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bistro/internal/cart"
	"bistro/internal/config"
	"bistro/internal/events"
	"bistro/internal/metrics"
	"bistro/internal/model"
	"bistro/internal/payment"
	"bistro/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	accountRepo repository.AccountRepository
	promoRepo   repository.PromoRepository
	carts       cart.Store
	gateway     payment.Gateway
	publisher   events.Publisher
	restaurant  config.RestaurantConfig
	now         func() time.Time
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	accountRepo repository.AccountRepository,
	promoRepo repository.PromoRepository,
	carts cart.Store,
	gateway payment.Gateway,
	publisher events.Publisher,
	restaurant config.RestaurantConfig,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		accountRepo: accountRepo,
		promoRepo:   promoRepo,
		carts:       carts,
		gateway:     gateway,
		publisher:   publisher,
		restaurant:  restaurant,
		now:         time.Now,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Checkout creates a pending order from the session cart and opens a payment session.
func (s *orderService) Checkout(ctx context.Context, accountID int64, session string, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if accountID == 0 {
		return nil, model.ErrLoginRequired
	}

	c, err := s.carts.Get(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, model.ErrCartEmpty
	}

	now := s.now()
	if req.PickupTime.Before(now) {
		return nil, model.ErrPickupInPast
	}

	blocked, err := s.accountRepo.GetBlocked(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check blocked customers: %w", err)
	}
	if blocked != nil {
		s.logger.Warn().Str("email", req.Email).Msg("blocked customer attempted checkout")
		return nil, model.ErrCustomerBlocked
	}

	summary, promoCode, err := priceCart(ctx, s.promoRepo, c, now)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:             uuid.New(),
		OrderNumber:    uuid.New(),
		AccountID:      &accountID,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		PickupTime:     req.PickupTime,
		Notes:          strings.TrimSpace(req.Notes),
		Subtotal:       summary.Subtotal,
		DiscountAmount: summary.Discount,
		Total:          summary.Total,
		Status:         model.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if promoCode != nil {
		order.PromoCodeID = &promoCode.ID
		order.PromoCode = promoCode.Code
	}

	order.Items = make([]model.OrderItem, len(summary.Lines))
	for i, line := range summary.Lines {
		menuItemID := line.MenuItemID
		order.Items[i] = model.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MenuItemID: &menuItemID,
			AddOnID:    line.AddOnID,
			Name:       line.DisplayName(),
			Price:      line.UnitPrice,
			Quantity:   line.Quantity,
			ItemTotal:  line.LineTotal,
		}
	}

	if err := s.createOrder(ctx, order); err != nil {
		return nil, err
	}

	checkout, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		OrderID:    order.ID,
		Email:      order.Email,
		Currency:   s.restaurant.Currency,
		Lines:      payment.LineItemsFor(order),
		SuccessURL: s.restaurant.PublicBaseURL + "/api/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.restaurant.PublicBaseURL + "/api/orders/" + order.ID.String(),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create checkout session")
		return nil, model.NewDomainError(model.ErrCodePaymentFailed, "Could not start payment, please try again")
	}

	if err := s.orderRepo.SetPaymentSession(ctx, order.ID, checkout.ID); err != nil {
		return nil, fmt.Errorf("failed to store payment session: %w", err)
	}
	order.PaymentSessionID = &checkout.ID

	if err := s.carts.Delete(ctx, session); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to clear cart after checkout")
	}

	metrics.IncOrderCreated()
	s.publish(ctx, events.KeyOrderCreated, order)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(order.Items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order created successfully")

	return &model.CheckoutResponse{Order: order, CheckoutURL: checkout.URL}, nil
}

// createOrder writes the order and its items in one transaction.
func (s *orderService) createOrder(ctx context.Context, order *model.Order) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(order.Items)).
			Msg("failed to create order items")
		return fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

func (s *orderService) publish(ctx context.Context, key string, order *model.Order) {
	if err := s.publisher.Publish(ctx, key, events.NewOrderEvent(order)); err != nil {
		s.logger.Warn().Err(err).Str("routing_key", key).Str("order_id", order.ID.String()).Msg("failed to publish order event")
	}
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

func (s *orderService) History(ctx context.Context, accountID int64) ([]model.Order, error) {
	if accountID == 0 {
		return nil, model.ErrUnauthorised
	}

	orders, err := s.orderRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) List(ctx context.Context, filter model.OrderFilter) (*model.OrderListing, error) {
	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	byStatus, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	counts := map[string]int{"all": 0}
	for _, status := range model.OrderStatuses {
		counts[string(status)] = byStatus[status]
		counts["all"] += byStatus[status]
	}

	today := startOfDay(s.now())
	revenue, count, err := s.orderRepo.PaidTotals(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to total today's orders: %w", err)
	}

	return &model.OrderListing{
		Orders:       orders,
		Counts:       counts,
		TodayRevenue: revenue,
		TodayCount:   count,
		StatusLabels: model.StatusLabels(),
	}, nil
}

func (s *orderService) Detail(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &model.OrderDetail{Order: order}
	if next, ok := order.Status.Next(); ok {
		detail.NextStatus = next
		detail.NextStatusLabel = next.Label()
	}
	return detail, nil
}

// transition applies from -> to and fails when the order changed concurrently.
func (s *orderService) transition(ctx context.Context, order *model.Order, to model.OrderStatus, conflict error) (*model.Order, error) {
	from := order.Status
	updated, err := s.orderRepo.UpdateStatus(ctx, order.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !updated {
		return nil, conflict
	}

	order.Status = to
	order.UpdatedAt = s.now()

	metrics.IncOrderTransition(string(to))
	s.publish(ctx, events.OrderStatusKey(to), order)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("order status changed")

	return order, nil
}

func (s *orderService) Advance(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := order.Status.Next()
	if !ok {
		return nil, model.ErrCannotAdvanceOrder
	}
	return s.transition(ctx, order, next, model.ErrCannotAdvanceOrder)
}

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.Cancellable() {
		return nil, model.ErrCannotCancelOrder
	}
	return s.transition(ctx, order, model.OrderStatusCancelled, model.ErrCannotCancelOrder)
}

const receiptWidth = 40

func (s *orderService) Receipt(ctx context.Context, id uuid.UUID) (string, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	rule := strings.Repeat("-", receiptWidth) + "\n"
	line := func(label, amount string) {
		fmt.Fprintf(&b, "%-*s%*s\n", receiptWidth-12, label, 12, amount)
	}

	fmt.Fprintf(&b, "%s\n", s.restaurant.Name)
	b.WriteString(rule)
	fmt.Fprintf(&b, "Order #%s\n", order.ShortNumber())
	fmt.Fprintf(&b, "Placed:  %s\n", order.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Pickup:  %s\n", order.PickupTime.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Name:    %s\n", order.Name)
	fmt.Fprintf(&b, "Phone:   %s\n", order.Phone)
	b.WriteString(rule)

	for _, item := range order.Items {
		line(fmt.Sprintf("%dx %s", item.Quantity, truncate(item.Name, receiptWidth-16)), item.ItemTotal.StringFixed(2))
	}

	b.WriteString(rule)
	line("Subtotal", order.Subtotal.StringFixed(2))
	if order.DiscountAmount.IsPositive() {
		line("Discount", "-"+order.DiscountAmount.StringFixed(2))
	}
	line("Total", order.Total.StringFixed(2))
	b.WriteString(rule)
	fmt.Fprintf(&b, "Status:  %s\n", order.Status.Label())
	if order.Notes != "" {
		fmt.Fprintf(&b, "Notes:   %s\n", order.Notes)
	}

	return b.String(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
