package promo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bistro/internal/model"
	"bistro/internal/repository"

	"github.com/rs/zerolog"
)

// ImportTemplate holds the settings shared by every imported code.
type ImportTemplate struct {
	DiscountPercent int
	MaxUses         int
	ExpiresAt       *time.Time
}

// Validate checks the template before anything is loaded.
func (t ImportTemplate) Validate() error {
	if t.DiscountPercent < 1 || t.DiscountPercent > 100 {
		return model.NewValidationError("discount percent must be between 1 and 100")
	}
	if t.MaxUses < 1 {
		return model.NewValidationError("max uses must be at least 1")
	}
	return nil
}

// Importer turns code lists into promo codes.
type Importer struct {
	loader Loader
	repo   repository.PromoRepository
	logger zerolog.Logger
}

// NewImporter creates an importer reading through loader.
func NewImporter(loader Loader, repo repository.PromoRepository, logger zerolog.Logger) *Importer {
	return &Importer{
		loader: loader,
		repo:   repo,
		logger: logger.With().Str("component", "promo-importer").Logger(),
	}
}

// Import loads every path concurrently, merges the codes and stores them.
// Codes that already exist are skipped.
func (im *Importer) Import(ctx context.Context, paths []string, tmpl ImportTemplate) (*model.PromoImportResult, error) {
	if len(paths) == 0 {
		return nil, model.NewValidationError("at least one code file is required")
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	type loadResult struct {
		set CodeSet
		err error
	}

	results := make([]loadResult, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			set, err := im.loader.Load(ctx, path)
			results[i] = loadResult{set: set, err: err}
		}(i, path)
	}
	wg.Wait()

	merged := NewCodeSet(0).(*mapCodeSet)
	for i, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("failed to load promo codes from %s: %w", paths[i], r.err)
		}
		merged.merge(r.set)
	}

	codes := merged.Codes()
	promos := make([]model.PromoCode, len(codes))
	for i, c := range codes {
		promos[i] = model.PromoCode{
			Code:            c,
			DiscountPercent: tmpl.DiscountPercent,
			IsActive:        true,
			MaxUses:         tmpl.MaxUses,
			ExpiresAt:       tmpl.ExpiresAt,
		}
	}

	created, err := im.repo.CreateBatch(ctx, promos)
	if err != nil {
		return nil, fmt.Errorf("failed to store promo codes: %w", err)
	}

	im.logger.Info().
		Int("files", len(paths)).
		Int("codes", len(codes)).
		Int("created", created).
		Msg("promo codes imported")

	return &model.PromoImportResult{Created: created, Skipped: len(codes) - created}, nil
}
