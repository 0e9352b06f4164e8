package service

import (
	"context"
	"fmt"

	"bistro/internal/model"
	"bistro/internal/promo"
	"bistro/internal/repository"

	"github.com/rs/zerolog"
)

// DefaultPromoMaxUses applies when a code is created without a cap.
const DefaultPromoMaxUses = 100

type promoService struct {
	promoRepo repository.PromoRepository
	logger    zerolog.Logger
}

// NewPromoService creates a new promo code service.
func NewPromoService(promoRepo repository.PromoRepository, logger zerolog.Logger) PromoService {
	return &promoService{
		promoRepo: promoRepo,
		logger:    logger.With().Str("service", "promo").Logger(),
	}
}

func (s *promoService) List(ctx context.Context) ([]model.PromoCode, error) {
	codes, err := s.promoRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	return codes, nil
}

func (s *promoService) Create(ctx context.Context, req *model.PromoCodeRequest) (*model.PromoCode, error) {
	code := promo.Normalize(req.Code)
	if code == "" {
		return nil, model.NewValidationError("Code is required")
	}
	if req.DiscountPercent < 1 || req.DiscountPercent > 100 {
		return nil, model.NewValidationError("Discount must be between 1 and 100 percent")
	}

	maxUses := req.MaxUses
	if maxUses <= 0 {
		maxUses = DefaultPromoMaxUses
	}

	p := &model.PromoCode{
		Code:            code,
		DiscountPercent: req.DiscountPercent,
		IsActive:        true,
		MaxUses:         maxUses,
		ExpiresAt:       req.ExpiresAt,
	}
	if err := s.promoRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().Str("promo_code", code).Int("discount_percent", p.DiscountPercent).Msg("promo code created")
	return p, nil
}

func (s *promoService) ToggleActive(ctx context.Context, id int64) (*model.PromoCode, error) {
	p, err := s.promoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}
	if p == nil {
		return nil, model.ErrPromoNotFound
	}

	p.IsActive = !p.IsActive
	if err := s.promoRepo.SetActive(ctx, id, p.IsActive); err != nil {
		return nil, err
	}

	s.logger.Info().Str("promo_code", p.Code).Bool("active", p.IsActive).Msg("promo code toggled")
	return p, nil
}
