package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of a pickup order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// PaidOrderStatuses are the statuses reached only after payment was confirmed.
var PaidOrderStatuses = []OrderStatus{
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCompleted,
}

var orderStatusFlow = map[OrderStatus]OrderStatus{
	OrderStatusPending:   OrderStatusConfirmed,
	OrderStatusConfirmed: OrderStatusPreparing,
	OrderStatusPreparing: OrderStatusReady,
	OrderStatusReady:     OrderStatusCompleted,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Pending",
	OrderStatusConfirmed: "Confirmed",
	OrderStatusPreparing: "Preparing",
	OrderStatusReady:     "Ready for Pickup",
	OrderStatusCompleted: "Completed",
	OrderStatusCancelled: "Cancelled",
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

// Label returns the human readable status.
func (s OrderStatus) Label() string {
	return orderStatusLabels[s]
}

// Next returns the status that follows s in the linear flow.
func (s OrderStatus) Next() (OrderStatus, bool) {
	next, ok := orderStatusFlow[s]
	return next, ok
}

// Cancellable reports whether an order in status s may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s != OrderStatusCompleted && s != OrderStatusCancelled
}

// IsPaid reports whether s implies a confirmed payment.
func (s OrderStatus) IsPaid() bool {
	for _, p := range PaidOrderStatuses {
		if s == p {
			return true
		}
	}
	return false
}

// Order represents a customer pickup order.
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	OrderNumber      uuid.UUID       `json:"orderNumber" db:"order_number"`
	AccountID        *int64          `json:"accountId,omitempty" db:"account_id"`
	Name             string          `json:"name" db:"name"`
	Email            string          `json:"email" db:"email"`
	Phone            string          `json:"phone" db:"phone"`
	PickupTime       time.Time       `json:"pickupTime" db:"pickup_time"`
	Notes            string          `json:"notes" db:"notes"`
	Subtotal         decimal.Decimal `json:"subtotal" db:"subtotal"`
	DiscountAmount   decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	Total            decimal.Decimal `json:"total" db:"total"`
	PromoCodeID      *int64          `json:"promoCodeId,omitempty" db:"promo_code_id"`
	PromoCode        string          `json:"promoCode,omitempty" db:"-"`
	Status           OrderStatus     `json:"status" db:"status"`
	PaymentSessionID *string         `json:"-" db:"payment_session_id"`
	PaymentIntentID  *string         `json:"-" db:"payment_intent_id"`
	PaidAt           *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	Items            []OrderItem     `json:"items"`
	CreatedAt        time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" db:"updated_at"`
}

// ShortNumber is the customer facing order reference.
func (o *Order) ShortNumber() string {
	return strings.ToUpper(o.OrderNumber.String()[:8])
}

// OrderItem is a price and quantity snapshot of a cart line.
type OrderItem struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	OrderID    uuid.UUID       `json:"-" db:"order_id"`
	MenuItemID *int64          `json:"menuItemId,omitempty" db:"menu_item_id"`
	AddOnID    *int64          `json:"addOnId,omitempty" db:"addon_id"`
	Name       string          `json:"name" db:"name"`
	Price      decimal.Decimal `json:"price" db:"price"`
	Quantity   int             `json:"quantity" db:"quantity"`
	ItemTotal  decimal.Decimal `json:"itemTotal" db:"item_total"`
}

// CheckoutRequest is the customer checkout form.
type CheckoutRequest struct {
	Name       string    `json:"name" validate:"required,max=150"`
	Email      string    `json:"email" validate:"required,email"`
	Phone      string    `json:"phone" validate:"required,max=20"`
	PickupTime time.Time `json:"pickupTime" validate:"required"`
	Notes      string    `json:"notes"`
}

// CheckoutResponse is returned after an order was placed.
type CheckoutResponse struct {
	Order       *Order `json:"order"`
	CheckoutURL string `json:"checkoutUrl"`
}

// OrderFilter narrows dashboard order lists.
type OrderFilter struct {
	Status OrderStatus
	// Date matches the creation date.
	Date   *time.Time
	Search string
}

// OrderListing is the dashboard view of orders.
type OrderListing struct {
	Orders       []Order                `json:"orders"`
	Counts       map[string]int         `json:"counts"`
	TodayRevenue decimal.Decimal        `json:"todayRevenue"`
	TodayCount   int                    `json:"todayCount"`
	StatusLabels map[OrderStatus]string `json:"statusLabels"`
}

// OrderDetail is a single order with its next possible status.
type OrderDetail struct {
	Order           *Order      `json:"order"`
	NextStatus      OrderStatus `json:"nextStatus,omitempty"`
	NextStatusLabel string      `json:"nextStatusLabel,omitempty"`
}

// StatusLabels returns a copy of the status label table.
func StatusLabels() map[OrderStatus]string {
	labels := make(map[OrderStatus]string, len(orderStatusLabels))
	for k, v := range orderStatusLabels {
		labels[k] = v
	}
	return labels
}
