package repository

import (
	"context"
	"time"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MenuRepository defines data access for categories, menu items, tags and add-ons.
type MenuRepository interface {
	// ListCategories returns every category with its item count, ordered by position then name.
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	// GetCategoryByName matches case-insensitively.
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CategorySlugExists(ctx context.Context, slug string) (bool, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	// DeleteCategory moves items to reassignTo (when set) and deletes the category in one transaction.
	DeleteCategory(ctx context.Context, id int64, reassignTo *int64) error

	ListTags(ctx context.Context) ([]model.Tag, error)

	// ListItems returns items with tags and add-ons loaded.
	ListItems(ctx context.Context, filter model.MenuFilter) ([]model.MenuItem, error)
	// ListAvailableItems returns available items of active categories.
	ListAvailableItems(ctx context.Context) ([]model.MenuItem, error)
	CountItems(ctx context.Context) (total int, available int, err error)
	GetItemByID(ctx context.Context, id int64) (*model.MenuItem, error)
	GetItemBySlug(ctx context.Context, slug string) (*model.MenuItem, error)
	// GetItemByName matches case-insensitively.
	GetItemByName(ctx context.Context, name string) (*model.MenuItem, error)
	ItemSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	// CreateItem inserts the item and links tagIDs.
	CreateItem(ctx context.Context, item *model.MenuItem, tagIDs []int64) error
	// UpdateItem saves the item. A nil tagIDs leaves tags untouched, otherwise they are replaced.
	UpdateItem(ctx context.Context, item *model.MenuItem, tagIDs []int64) error
	DeleteItem(ctx context.Context, id int64) error
	SetAvailability(ctx context.Context, id int64, available bool) error
	SetImage(ctx context.Context, id int64, url, publicID string) error

	CreateAddOn(ctx context.Context, addOn *model.AddOn) error
	// GetAddOnByName matches case-insensitively within one item.
	GetAddOnByName(ctx context.Context, itemID int64, name string) (*model.AddOn, error)
	DeleteAddOn(ctx context.Context, itemID, addOnID int64) (bool, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetBySessionID finds the order a hosted checkout session was created for.
	GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error)

	SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error

	// MarkPaid moves a pending order to confirmed within tx. It reports false when
	// the order was no longer pending.
	MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paymentIntentID string, paidAt time.Time) (bool, error)

	// UpdateStatus sets the status only while the order is still in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error)

	ListByAccount(ctx context.Context, accountID int64) ([]model.Order, error)
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)
	// ListRecent returns the newest orders in any of statuses.
	ListRecent(ctx context.Context, statuses []model.OrderStatus, limit int) ([]model.Order, error)
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error)
	// CountCreatedBetween counts orders of any status created in [from, to).
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	// PaidTotals sums paid orders created in [from, to). A zero from is unbounded.
	PaidTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error)
	// DailyPaidRevenue sums paid orders per creation date starting at from.
	DailyPaidRevenue(ctx context.Context, from time.Time) (map[string]decimal.Decimal, error)

	// ListPayments returns a page of orders for the payments screen and the total match count.
	ListPayments(ctx context.Context, filter model.PaymentFilter, limit, offset int) ([]model.Order, int, error)
	// ListForExport returns confirmed through cancelled orders matching filter.
	ListForExport(ctx context.Context, filter model.PaymentFilter) ([]model.Order, error)

	ListByEmail(ctx context.Context, email string) ([]model.Order, error)
}

// ReservationRepository defines data access for table bookings.
type ReservationRepository interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
	CountByStatus(ctx context.Context) (map[model.ReservationStatus]int, error)
	CountOnDate(ctx context.Context, day time.Time) (int, error)
	// CountUpcoming counts non-cancelled reservations after day.
	CountUpcoming(ctx context.Context, day time.Time) (int, error)
	ListOnDate(ctx context.Context, day time.Time, limit int) ([]model.Reservation, error)
	// UpdateStatus sets the status only while the reservation is in one of from.
	UpdateStatus(ctx context.Context, id int64, from []model.ReservationStatus, to model.ReservationStatus) (bool, error)
	SetStaffNote(ctx context.Context, id int64, note string) error
	ListByEmail(ctx context.Context, email string) ([]model.Reservation, error)
}

// PromoRepository defines data access for promo codes.
type PromoRepository interface {
	// GetByCode matches the stored upper-case code exactly.
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)
	GetByID(ctx context.Context, id int64) (*model.PromoCode, error)
	List(ctx context.Context) ([]model.PromoCode, error)
	Create(ctx context.Context, p *model.PromoCode) error
	// CreateBatch inserts codes and skips ones that already exist. It returns the number inserted.
	CreateBatch(ctx context.Context, codes []model.PromoCode) (int, error)
	SetActive(ctx context.Context, id int64, active bool) error
	// IncrementUsage bumps times_used within tx.
	IncrementUsage(ctx context.Context, tx pgx.Tx, id int64) error
}

// AccountRepository defines data access for accounts, staff profiles and blocked customers.
type AccountRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	CreateAccount(ctx context.Context, tx pgx.Tx, a *model.Account) error
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UpdateAccount(ctx context.Context, tx pgx.Tx, a *model.Account) error
	SetPassword(ctx context.Context, id int64, hash string) error
	DeleteAccount(ctx context.Context, id int64) error

	CreateStaffProfile(ctx context.Context, tx pgx.Tx, p *model.StaffProfile) error
	GetStaffProfile(ctx context.Context, accountID int64) (*model.StaffProfile, error)
	GetStaffMember(ctx context.Context, profileID int64) (*model.StaffMember, error)
	ListStaff(ctx context.Context) ([]model.StaffMember, error)
	UpdateStaffProfile(ctx context.Context, tx pgx.Tx, p *model.StaffProfile) error
	SetStaffActive(ctx context.Context, profileID int64, active bool) error
	CountOwners(ctx context.Context) (int, error)

	// GetBlocked matches the email case-insensitively.
	GetBlocked(ctx context.Context, email string) (*model.BlockedCustomer, error)
	// Block inserts a block unless one exists and reports whether it was created.
	Block(ctx context.Context, b *model.BlockedCustomer) (bool, error)
	Unblock(ctx context.Context, email string) error
}

// CustomerRepository aggregates customers from paid orders.
type CustomerRepository interface {
	List(ctx context.Context, query model.CustomerQuery, limit, offset int) ([]model.CustomerSummary, error)
	// Totals returns customers, revenue and repeat customers for a search.
	Totals(ctx context.Context, search string) (int, decimal.Decimal, int, error)
}
