// Package notify tells customers and the kitchen about orders and bookings.
package notify

import (
	"context"
	"time"

	"bistro/internal/model"

	"github.com/rs/zerolog"
)

// Notifier delivers order and reservation notifications.
type Notifier interface {
	// OrderConfirmed tells the customer their payment went through.
	OrderConfirmed(ctx context.Context, order *model.Order) error
	// NewOrder alerts the restaurant about a paid order.
	NewOrder(ctx context.Context, order *model.Order) error
	ReservationReceived(ctx context.Context, res *model.Reservation) error
}

const (
	pickupLayout = "January 2, 2006 at 03:04 PM"
	shortLayout  = "Jan 02 03:04 PM"
)

type itemView struct {
	Quantity int
	Name     string
	Total    string
}

type orderView struct {
	Restaurant string
	Number     string
	Name       string
	Email      string
	Phone      string
	Pickup     string
	Notes      string
	Items      []itemView
	Discount   string
	Total      string
}

func newOrderView(restaurant string, order *model.Order) orderView {
	v := orderView{
		Restaurant: restaurant,
		Number:     order.ShortNumber(),
		Name:       order.Name,
		Email:      order.Email,
		Phone:      order.Phone,
		Pickup:     order.PickupTime.Format(pickupLayout),
		Notes:      order.Notes,
		Total:      order.Total.StringFixed(2),
	}
	if order.DiscountAmount.IsPositive() {
		v.Discount = order.DiscountAmount.StringFixed(2)
	}
	for _, item := range order.Items {
		v.Items = append(v.Items, itemView{
			Quantity: item.Quantity,
			Name:     item.Name,
			Total:    item.ItemTotal.StringFixed(2),
		})
	}
	return v
}

type reservationView struct {
	Restaurant string
	Name       string
	Date       string
	Time       string
	Guests     int
	Occasion   string
	Confirmed  bool
}

func newReservationView(restaurant string, res *model.Reservation) reservationView {
	return reservationView{
		Restaurant: restaurant,
		Name:       res.Name,
		Date:       res.Date.Format("Monday, January 2, 2006"),
		Time:       res.Time,
		Guests:     res.Guests,
		Occasion:   string(res.Occasion),
		Confirmed:  res.Status == model.ReservationConfirmed,
	}
}

// multi fans out to every notifier. Failures are logged and never returned.
type multi struct {
	notifiers []Notifier
	logger    zerolog.Logger
}

// NewMulti combines notifiers.
func NewMulti(logger zerolog.Logger, notifiers ...Notifier) Notifier {
	return &multi{
		notifiers: notifiers,
		logger:    logger.With().Str("component", "notifier").Logger(),
	}
}

func (m *multi) each(kind string, fn func(Notifier) error) {
	for _, n := range m.notifiers {
		start := time.Now()
		if err := fn(n); err != nil {
			m.logger.Warn().
				Err(err).
				Str("notification", kind).
				Dur("elapsed", time.Since(start)).
				Msg("notification failed")
		}
	}
}

func (m *multi) OrderConfirmed(ctx context.Context, order *model.Order) error {
	m.each("order_confirmed", func(n Notifier) error { return n.OrderConfirmed(ctx, order) })
	return nil
}

func (m *multi) NewOrder(ctx context.Context, order *model.Order) error {
	m.each("new_order", func(n Notifier) error { return n.NewOrder(ctx, order) })
	return nil
}

func (m *multi) ReservationReceived(ctx context.Context, res *model.Reservation) error {
	m.each("reservation_received", func(n Notifier) error { return n.ReservationReceived(ctx, res) })
	return nil
}
