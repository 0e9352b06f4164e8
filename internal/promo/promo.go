// Package promo validates promo codes against the store and imports
// batches of codes from gzipped lists kept locally or in S3.
package promo

import (
	"context"

	"bistro/internal/model"
)

// Validator resolves a code to a redeemable promo.
type Validator interface {
	// Lookup returns the promo for code, or ErrInvalidPromoCode when it
	// does not exist and ErrPromoExpired when it can no longer be used.
	Lookup(ctx context.Context, code string) (*model.PromoCode, error)
}

// CodeSet is a set of normalised promo codes.
type CodeSet interface {
	Contains(code string) bool
	Size() int
	// Codes returns the members in ascending order.
	Codes() []string
}

// Loader reads a gzipped code list, one code per line.
type Loader interface {
	Load(ctx context.Context, path string) (CodeSet, error)
}
