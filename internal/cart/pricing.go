package cart

import (
	"time"

	"bistro/internal/model"

	"github.com/shopspring/decimal"
)

// Price builds the summary of c. The discount applies only when promo is
// non-nil and still valid at now.
func Price(c *model.Cart, promo *model.PromoCode, now time.Time) model.CartSummary {
	summary := model.CartSummary{
		Lines:    make([]model.CartSummaryLine, 0, len(c.Lines)),
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
	}

	for _, l := range c.Lines {
		total := l.LineTotal()
		summary.Lines = append(summary.Lines, model.CartSummaryLine{CartLine: l, LineTotal: total})
		summary.ItemCount += l.Quantity
		summary.Subtotal = summary.Subtotal.Add(total)
	}

	if promo != nil && promo.IsValid(now) {
		summary.PromoCode = promo.Code
		summary.DiscountPercent = promo.DiscountPercent
		summary.Discount = promo.Discount(summary.Subtotal)
	}

	summary.Total = decimal.Max(summary.Subtotal.Sub(summary.Discount), decimal.Zero)
	return summary
}
