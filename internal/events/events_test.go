package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"bistro/internal/model"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingKeys(t *testing.T) {
	assert.Equal(t, "order.status.ready", OrderStatusKey(model.OrderStatusReady))
	assert.Equal(t, "reservation.pending", ReservationKey(model.ReservationPending))
}

func TestNewPublishing(t *testing.T) {
	order := &model.Order{
		ID:          uuid.New(),
		OrderNumber: uuid.MustParse("deadbeef-0000-0000-0000-000000000000"),
		Status:      model.OrderStatusConfirmed,
		Total:       decimal.RequireFromString("18.75"),
		Email:       "ada@example.com",
	}

	msg, err := newPublishing(NewOrderEvent(order))
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "DEADBEEF", decoded["orderNumber"])
	assert.Equal(t, "confirmed", decoded["status"])
	assert.Equal(t, "18.75", decoded["total"])
}

func TestNewReservationEvent(t *testing.T) {
	res := &model.Reservation{
		ID:     3,
		Status: model.ReservationConfirmed,
		Date:   time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC),
		Time:   "19:30",
		Guests: 2,
	}

	ev := NewReservationEvent(res)
	assert.Equal(t, "2025-07-04", ev.Date)
	assert.Equal(t, "19:30", ev.Time)
}

func TestNopPublisher(t *testing.T) {
	p := NewNopPublisher(zerolog.Nop())
	assert.NoError(t, p.Publish(context.Background(), KeyOrderPaid, struct{}{}))
	assert.NoError(t, p.Close())
}

// stubConfirmation answers WaitContext with a fixed ack, or blocks until ctx ends when pending.
type stubConfirmation struct {
	pending bool
	ack     bool
}

func (c stubConfirmation) WaitContext(ctx context.Context) (bool, error) {
	if c.pending {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return c.ack, nil
}

func TestRabbitPublisher_ConfirmsStayWithTheirMessage(t *testing.T) {
	confirms := []stubConfirmation{{pending: true}, {ack: false}, {ack: true}}
	var keys []string

	p := &rabbitPublisher{
		exchange: "bistro.events",
		logger:   zerolog.Nop(),
		publish: func(_ context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
			assert.Equal(t, "bistro.events", exchange)
			keys = append(keys, key)
			c := confirms[0]
			confirms = confirms[1:]
			return c, nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.Publish(ctx, KeyOrderPaid, struct{}{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = p.Publish(context.Background(), OrderStatusKey(model.OrderStatusReady), struct{}{})
	assert.ErrorIs(t, err, ErrNack)

	assert.NoError(t, p.Publish(context.Background(), ReservationKey(model.ReservationPending), struct{}{}))
	assert.Equal(t, []string{KeyOrderPaid, "order.status.ready", "reservation.pending"}, keys)
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	p := &rabbitPublisher{
		logger: zerolog.Nop(),
		publish: func(context.Context, string, string, amqp.Publishing) (confirmation, error) {
			return nil, amqp.ErrClosed
		},
	}

	err := p.Publish(context.Background(), KeyOrderPaid, struct{}{})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}
