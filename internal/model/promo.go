package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromoCode is a percentage discount with a usage cap and optional expiry.
type PromoCode struct {
	ID              int64      `json:"id" db:"id"`
	Code            string     `json:"code" db:"code"`
	DiscountPercent int        `json:"discountPercent" db:"discount_percent"`
	IsActive        bool       `json:"isActive" db:"is_active"`
	MaxUses         int        `json:"maxUses" db:"max_uses"`
	TimesUsed       int        `json:"timesUsed" db:"times_used"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
}

// IsValid reports whether the code can be redeemed at now.
func (p *PromoCode) IsValid(now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.TimesUsed >= p.MaxUses {
		return false
	}
	if p.ExpiresAt != nil && p.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// Discount returns the discount this code grants on subtotal, rounded to cents.
func (p *PromoCode) Discount(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(int64(p.DiscountPercent))).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

// PromoCodeRequest creates a promo code from the dashboard.
type PromoCodeRequest struct {
	Code            string     `json:"code" validate:"required,max=50"`
	DiscountPercent int        `json:"discountPercent" validate:"required,min=1,max=100"`
	MaxUses         int        `json:"maxUses" validate:"min=0"`
	ExpiresAt       *time.Time `json:"expiresAt"`
}

// PromoImportResult summarises a batch import.
type PromoImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
