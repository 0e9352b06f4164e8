package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentsPerPage is the page size of the payments list.
const PaymentsPerPage = 25

// PaymentStatus is the payment state derived from an order status.
type PaymentStatus string

const (
	PaymentPaid                PaymentStatus = "paid"
	PaymentPending             PaymentStatus = "pending"
	PaymentRefundedOrCancelled PaymentStatus = "refunded_or_cancelled"
)

// PaymentStatusOf derives the payment state of an order.
func PaymentStatusOf(s OrderStatus) PaymentStatus {
	switch s {
	case OrderStatusCancelled:
		return PaymentRefundedOrCancelled
	case OrderStatusPending:
		return PaymentPending
	default:
		return PaymentPaid
	}
}

// PaymentFilter narrows the payments list. Status is paid, pending or cancelled.
type PaymentFilter struct {
	Search string
	Status string
	Date   *time.Time
	Page   int
}

// RevenueStats totals paid orders over rolling windows.
type RevenueStats struct {
	Today      decimal.Decimal `json:"today"`
	Week       decimal.Decimal `json:"week"`
	Month      decimal.Decimal `json:"month"`
	AllTime    decimal.Decimal `json:"allTime"`
	PaidCount  int             `json:"paidCount"`
	TodayCount int             `json:"todayCount"`
	WeekCount  int             `json:"weekCount"`
	MonthCount int             `json:"monthCount"`
}

// PaymentListing is a page of payments with revenue stats.
type PaymentListing struct {
	Orders     []Order      `json:"orders"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	Revenue    RevenueStats `json:"revenue"`
}

// CheckoutSession is the gateway's view of a hosted checkout.
type CheckoutSession struct {
	ID            string          `json:"id"`
	URL           string          `json:"url,omitempty"`
	PaymentStatus string          `json:"paymentStatus"`
	PaymentIntent string          `json:"paymentIntent,omitempty"`
	AmountTotal   decimal.Decimal `json:"amountTotal"`
	Currency      string          `json:"currency"`
	OrderID       *uuid.UUID      `json:"orderId,omitempty"`
}

// PaymentDetail is a single order with its payment state.
type PaymentDetail struct {
	Order         *Order           `json:"order"`
	PaymentStatus PaymentStatus    `json:"paymentStatus"`
	Session       *CheckoutSession `json:"session,omitempty"`
}

// RefundRequest refunds an order fully, or partially when Amount is set.
type RefundRequest struct {
	Type   string           `json:"type" validate:"omitempty,oneof=full partial"`
	Amount *decimal.Decimal `json:"amount"`
}

// Refund is a completed gateway refund.
type Refund struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status"`
}
