package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomersPerPage is the page size of the customer list.
const CustomersPerPage = 20

// CustomerSort is an ordering of the customer list.
type CustomerSort string

const (
	SortLastOrderDesc  CustomerSort = "-last_order"
	SortLastOrderAsc   CustomerSort = "last_order"
	SortTotalSpentDesc CustomerSort = "-total_spent"
	SortTotalSpentAsc  CustomerSort = "total_spent"
	SortOrderCountDesc CustomerSort = "-order_count"
	SortName           CustomerSort = "name"
)

// Valid reports whether s is a supported sort.
func (s CustomerSort) Valid() bool {
	switch s {
	case SortLastOrderDesc, SortLastOrderAsc, SortTotalSpentDesc,
		SortTotalSpentAsc, SortOrderCountDesc, SortName:
		return true
	}
	return false
}

// CustomerSummary is a customer aggregated by email over paid orders.
type CustomerSummary struct {
	Email      string          `json:"email"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
	OrderCount int             `json:"orderCount"`
	LastOrder  time.Time       `json:"lastOrder"`
	IsBlocked  bool            `json:"isBlocked"`
}

// CustomerQuery narrows and orders the customer list.
type CustomerQuery struct {
	Search string
	Sort   CustomerSort
	Page   int
}

// CustomerListing is a page of customers with overall totals.
type CustomerListing struct {
	Customers       []CustomerSummary `json:"customers"`
	Page            int               `json:"page"`
	TotalPages      int               `json:"totalPages"`
	TotalCustomers  int               `json:"totalCustomers"`
	TotalRevenue    decimal.Decimal   `json:"totalRevenue"`
	RepeatCustomers int               `json:"repeatCustomers"`
}

// CustomerStats aggregates a single customer's paid orders.
type CustomerStats struct {
	TotalSpent decimal.Decimal `json:"totalSpent"`
	OrderCount int             `json:"orderCount"`
	AvgOrder   decimal.Decimal `json:"avgOrder"`
	FirstOrder *time.Time      `json:"firstOrder,omitempty"`
	LastOrder  *time.Time      `json:"lastOrder,omitempty"`
}

// CustomerDetail is everything known about a customer email.
type CustomerDetail struct {
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	Phone        string           `json:"phone"`
	Orders       []Order          `json:"orders"`
	Reservations []Reservation    `json:"reservations"`
	Stats        CustomerStats    `json:"stats"`
	Blocked      *BlockedCustomer `json:"blocked,omitempty"`
}

// BlockRequest blocks a customer email.
type BlockRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Reason string `json:"reason"`
}
