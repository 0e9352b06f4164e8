package repository

import (
	"context"
	"errors"
	"fmt"

	"bistro/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type promoRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPromoRepository creates a new PostgreSQL-backed promo code repository.
func NewPromoRepository(pool *pgxpool.Pool, logger zerolog.Logger) PromoRepository {
	return &promoRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "promo").Logger(),
	}
}

const promoColumns = `id, code, discount_percent, is_active, max_uses, times_used, expires_at, created_at`

func scanPromo(row pgx.Row) (*model.PromoCode, error) {
	var p model.PromoCode
	err := row.Scan(&p.ID, &p.Code, &p.DiscountPercent, &p.IsActive, &p.MaxUses, &p.TimesUsed, &p.ExpiresAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *promoRepository) get(ctx context.Context, where string, arg any) (*model.PromoCode, error) {
	p, err := scanPromo(r.pool.QueryRow(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query promo code")
		return nil, fmt.Errorf("failed to query promo code: %w", err)
	}
	return p, nil
}

func (r *promoRepository) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	return r.get(ctx, "code = $1", code)
}

func (r *promoRepository) GetByID(ctx context.Context, id int64) (*model.PromoCode, error) {
	return r.get(ctx, "id = $1", id)
}

func (r *promoRepository) List(ctx context.Context) ([]model.PromoCode, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+promoColumns+` FROM promo_codes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query promo codes: %w", err)
	}
	defer rows.Close()

	promos := make([]model.PromoCode, 0)
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo code: %w", err)
		}
		promos = append(promos, *p)
	}

	return promos, rows.Err()
}

func (r *promoRepository) Create(ctx context.Context, p *model.PromoCode) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO promo_codes (code, discount_percent, is_active, max_uses, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, times_used, created_at`,
		p.Code, p.DiscountPercent, p.IsActive, p.MaxUses, p.ExpiresAt,
	).Scan(&p.ID, &p.TimesUsed, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDomainError(model.ErrCodeConflict, fmt.Sprintf("promo code %s already exists", p.Code))
		}
		r.logger.Error().Err(err).Str("code", p.Code).Msg("failed to create promo code")
		return fmt.Errorf("failed to create promo code: %w", err)
	}
	return nil
}

func (r *promoRepository) CreateBatch(ctx context.Context, codes []model.PromoCode) (int, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	inserted := 0
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, p := range codes {
			batch.Queue(`
				INSERT INTO promo_codes (code, discount_percent, is_active, max_uses, expires_at)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (code) DO NOTHING`,
				p.Code, p.DiscountPercent, p.IsActive, p.MaxUses, p.ExpiresAt,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for range codes {
			tag, err := results.Exec()
			if err != nil {
				results.Close()
				return fmt.Errorf("failed to insert promo code: %w", err)
			}
			inserted += int(tag.RowsAffected())
		}
		return results.Close()
	})
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(codes)).Msg("failed to import promo codes")
		return 0, err
	}

	r.logger.Info().Int("requested", len(codes)).Int("inserted", inserted).Msg("promo codes imported")
	return inserted, nil
}

func (r *promoRepository) SetActive(ctx context.Context, id int64, active bool) error {
	if _, err := r.pool.Exec(ctx, `UPDATE promo_codes SET is_active = $2 WHERE id = $1`, id, active); err != nil {
		return fmt.Errorf("failed to update promo code: %w", err)
	}
	return nil
}

func (r *promoRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `UPDATE promo_codes SET times_used = times_used + 1 WHERE id = $1`, id); err != nil {
		r.logger.Error().Err(err).Int64("promo_id", id).Msg("failed to increment promo usage")
		return fmt.Errorf("failed to increment promo usage: %w", err)
	}
	return nil
}
