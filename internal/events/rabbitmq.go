package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// ErrNack is returned when the broker refuses a message.
var ErrNack = errors.New("publish NACK from broker")

// confirmation is the broker's answer to a single publish.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type publishFunc func(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)

// rabbitPublisher publishes JSON messages to a topic exchange and waits for
// the broker to confirm each one.
type rabbitPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	publish  publishFunc
	exchange string
	logger   zerolog.Logger
}

// NewRabbitPublisher dials url, enables publisher confirms and declares the exchange.
func NewRabbitPublisher(url, exchange string, logger zerolog.Logger) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	logger = logger.With().Str("component", "rabbitmq-publisher").Logger()
	logger.Info().Str("exchange", exchange).Msg("event publisher connected")

	return &rabbitPublisher{
		conn:     conn,
		ch:       ch,
		publish:  channelPublish(ch),
		exchange: exchange,
		logger:   logger,
	}, nil
}

// channelPublish gives every message its own deferred confirmation.
func channelPublish(ch *amqp.Channel) publishFunc {
	return func(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
		dc, err := ch.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
		if err != nil {
			return nil, err
		}
		return dc, nil
	}
}

func newPublishing(payload any) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode event: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         body,
	}, nil
}

func (p *rabbitPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	msg, err := newPublishing(payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	conf, err := p.publish(ctx, p.exchange, routingKey, msg)
	if err != nil {
		p.logger.Error().Err(err).Str("routing_key", routingKey).Msg("failed to publish event")
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	acked, err := conf.WaitContext(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Str("routing_key", routingKey).Msg("gave up waiting for publish confirm")
		return fmt.Errorf("failed to confirm %s: %w", routingKey, err)
	}
	if !acked {
		return fmt.Errorf("publish %s: %w", routingKey, ErrNack)
	}

	p.logger.Debug().Str("routing_key", routingKey).Msg("event published")
	return nil
}

func (p *rabbitPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
