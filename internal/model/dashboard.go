package model

import "github.com/shopspring/decimal"

// RevenuePoint is one day of the revenue chart.
type RevenuePoint struct {
	Label   string          `json:"label"`
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// PeriodTotals is revenue and order count over a window.
type PeriodTotals struct {
	Revenue decimal.Decimal `json:"revenue"`
	Count   int             `json:"count"`
}

// DashboardSummary is the staff landing view.
type DashboardSummary struct {
	Today               PeriodTotals   `json:"today"`
	Week                PeriodTotals   `json:"week"`
	Month               PeriodTotals   `json:"month"`
	PendingOrders       int            `json:"pendingOrders"`
	PendingReservations int            `json:"pendingReservations"`
	RecentOrders        []Order        `json:"recentOrders"`
	TodayReservations   []Reservation  `json:"todayReservations"`
	RevenueChart        []RevenuePoint `json:"revenueChart"`
}
