// Package payment talks to the hosted checkout provider.
package payment

import (
	"context"
	"fmt"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventCheckoutCompleted is the webhook event that settles an order.
const EventCheckoutCompleted = "checkout.session.completed"

// SessionPaid is the payment status of a settled session.
const SessionPaid = "paid"

// MetadataOrderID links a session back to its order.
const MetadataOrderID = "order_id"

// Gateway is a hosted checkout provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*model.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*model.CheckoutSession, error)
	// ParseWebhook verifies the signature and decodes the event.
	// A bad signature yields model.ErrInvalidSignature.
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
	// Refund returns the full charge when amount is nil.
	Refund(ctx context.Context, paymentIntentID string, amount *decimal.Decimal) (*model.Refund, error)
}

// LineItem is one priced line on the hosted checkout page.
type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// CheckoutRequest describes the session to create for an order.
type CheckoutRequest struct {
	OrderID    uuid.UUID
	Email      string
	Currency   string
	Lines      []LineItem
	SuccessURL string
	CancelURL  string
}

// WebhookEvent is a verified gateway event. Session is set for checkout events.
type WebhookEvent struct {
	ID      string
	Type    string
	Session *model.CheckoutSession
}

// LineItemsFor lists the order's items, or a single summary line when a
// discount applies so the charged amount matches the order total.
func LineItemsFor(order *model.Order) []LineItem {
	if order.DiscountAmount.IsPositive() {
		return []LineItem{{
			Name:      fmt.Sprintf("Order #%s (discount applied)", order.ShortNumber()),
			UnitPrice: order.Total,
			Quantity:  1,
		}}
	}

	lines := make([]LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, LineItem{Name: item.Name, UnitPrice: item.Price, Quantity: item.Quantity})
	}
	return lines
}

// toMinorUnits converts an amount to cents.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
