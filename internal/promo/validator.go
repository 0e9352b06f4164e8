package promo

import (
	"context"
	"fmt"
	"time"

	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/rs/zerolog"
)

// storeValidator implements Validator against the promo repository.
type storeValidator struct {
	repo   repository.PromoRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewValidator creates a repository-backed promo validator.
func NewValidator(repo repository.PromoRepository, logger zerolog.Logger) Validator {
	return &storeValidator{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("component", "promo-validator").Logger(),
	}
}

func (v *storeValidator) Lookup(ctx context.Context, code string) (*model.PromoCode, error) {
	code = Normalize(code)
	if code == "" {
		return nil, model.ErrInvalidPromoCode
	}

	promo, err := v.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up promo code: %w", err)
	}
	if promo == nil {
		v.logger.Debug().Str("promo_code", code).Msg("promo code not found")
		return nil, model.ErrInvalidPromoCode
	}

	if !promo.IsValid(v.now()) {
		v.logger.Debug().
			Str("promo_code", code).
			Bool("active", promo.IsActive).
			Int("times_used", promo.TimesUsed).
			Msg("promo code no longer redeemable")
		return nil, model.ErrPromoExpired
	}

	return promo, nil
}
