// Package events publishes order and reservation lifecycle events.
package events

import (
	"context"
	"time"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Routing keys on the topic exchange.
const (
	KeyOrderCreated = "order.created"
	KeyOrderPaid    = "order.paid"
)

// OrderStatusKey is the routing key for a status change, e.g. order.status.ready.
func OrderStatusKey(s model.OrderStatus) string {
	return "order.status." + string(s)
}

// ReservationKey is the routing key for a reservation in status s.
func ReservationKey(s model.ReservationStatus) string {
	return "reservation." + string(s)
}

// Publisher sends events to the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

// OrderEvent is the payload of every order event.
type OrderEvent struct {
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	Status      model.OrderStatus `json:"status"`
	Total       decimal.Decimal   `json:"total"`
	Email       string            `json:"email"`
	PickupTime  time.Time         `json:"pickupTime"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// NewOrderEvent snapshots order.
func NewOrderEvent(order *model.Order) OrderEvent {
	return OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.ShortNumber(),
		Status:      order.Status,
		Total:       order.Total,
		Email:       order.Email,
		PickupTime:  order.PickupTime,
		OccurredAt:  time.Now().UTC(),
	}
}

// ReservationEvent is the payload of reservation events.
type ReservationEvent struct {
	ReservationID int64                   `json:"reservationId"`
	Status        model.ReservationStatus `json:"status"`
	Date          string                  `json:"date"`
	Time          string                  `json:"time"`
	Guests        int                     `json:"guests"`
	OccurredAt    time.Time               `json:"occurredAt"`
}

// NewReservationEvent snapshots res.
func NewReservationEvent(res *model.Reservation) ReservationEvent {
	return ReservationEvent{
		ReservationID: res.ID,
		Status:        res.Status,
		Date:          res.Date.Format(time.DateOnly),
		Time:          res.Time,
		Guests:        res.Guests,
		OccurredAt:    time.Now().UTC(),
	}
}

// nopPublisher drops events when no broker is configured.
type nopPublisher struct {
	logger zerolog.Logger
}

// NewNopPublisher creates a Publisher that only logs at debug level.
func NewNopPublisher(logger zerolog.Logger) Publisher {
	return &nopPublisher{logger: logger.With().Str("component", "events").Logger()}
}

func (p *nopPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.logger.Debug().Str("routing_key", routingKey).Msg("event dropped, no broker configured")
	return nil
}

func (p *nopPublisher) Close() error { return nil }
