// Package cart keeps session carts in Redis and prices them.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bistro/internal/config"
	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "bistro:cart:"

// Store persists carts by session token.
type Store interface {
	// Get returns the cart for session, or an empty cart when none is stored.
	// Reading refreshes the expiry.
	Get(ctx context.Context, session string) (*model.Cart, error)
	Save(ctx context.Context, session string, cart *model.Cart) error
	Delete(ctx context.Context, session string) error
}

// NewSessionID issues a new cart session token.
func NewSessionID() string {
	return uuid.NewString()
}

// NewRedisClient connects using the URL when set and the address otherwise.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var opt *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Store whose carts expire after ttl of inactivity.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "cart-store").Logger(),
	}
}

func (s *redisStore) Get(ctx context.Context, session string) (*model.Cart, error) {
	raw, err := s.client.GetEx(ctx, keyPrefix+session, s.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &model.Cart{Lines: []model.CartLine{}}, nil
		}
		s.logger.Error().Err(err).Msg("failed to read cart")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		// A corrupt cart is dropped rather than blocking the session.
		s.logger.Warn().Err(err).Msg("discarding unreadable cart")
		return &model.Cart{Lines: []model.CartLine{}}, nil
	}
	if cart.Lines == nil {
		cart.Lines = []model.CartLine{}
	}

	return &cart, nil
}

func (s *redisStore) Save(ctx context.Context, session string, cart *model.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+session, raw, s.ttl).Err(); err != nil {
		s.logger.Error().Err(err).Msg("failed to save cart")
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, session string) error {
	if err := s.client.Del(ctx, keyPrefix+session).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
