package service

import (
	"context"
	"io"
	"time"

	"bistro/internal/model"

	"github.com/google/uuid"
)

// MenuService defines the public catalogue and menu management.
type MenuService interface {
	// ListMenu returns active categories with their available items.
	ListMenu(ctx context.Context) ([]model.CategoryMenu, error)

	// GetDish returns an available item by slug.
	GetDish(ctx context.Context, slug string) (*model.MenuItem, error)

	ListItems(ctx context.Context, filter model.MenuFilter) (*model.MenuListing, error)
	GetItem(ctx context.Context, id int64) (*model.MenuItem, error)
	CreateItem(ctx context.Context, in *model.MenuItemInput) (*model.MenuItem, error)
	UpdateItem(ctx context.Context, id int64, in *model.MenuItemInput) (*model.MenuItem, error)
	DeleteItem(ctx context.Context, id int64) error
	ToggleAvailability(ctx context.Context, id int64) (*model.MenuItem, error)

	// UploadImage stores a new image for the item and removes the previous one.
	UploadImage(ctx context.Context, id int64, r io.Reader, filename string, size int64) (*model.MenuItem, error)

	AddAddOn(ctx context.Context, itemID int64, req *model.AddOnRequest) (*model.AddOn, error)
	RemoveAddOn(ctx context.Context, itemID, addOnID int64) error

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)
	// DeleteCategory requires reassignTo when the category still has items.
	DeleteCategory(ctx context.Context, id int64, reassignTo *int64) error
	ListTags(ctx context.Context) ([]model.Tag, error)

	// ImportCSV upserts menu items from a CSV upload and collects per-row errors.
	ImportCSV(ctx context.Context, r io.Reader) (*model.MenuImportResult, error)
	WriteCSVTemplate(w io.Writer) error
}

// CartService defines operations on a session cart. Every call returns the priced cart.
type CartService interface {
	Get(ctx context.Context, session string) (*model.CartSummary, error)
	Add(ctx context.Context, session string, req *model.AddToCartRequest) (*model.CartSummary, error)
	// UpdateQuantity sets a line quantity. Zero or less removes the line.
	UpdateQuantity(ctx context.Context, session, key string, quantity int) (*model.CartSummary, error)
	Remove(ctx context.Context, session, key string) (*model.CartSummary, error)
	Clear(ctx context.Context, session string) error
	ApplyPromo(ctx context.Context, session, code string) (*model.CartSummary, error)
	RemovePromo(ctx context.Context, session string) (*model.CartSummary, error)
}

// OrderService defines checkout and order management.
type OrderService interface {
	// Checkout turns the session cart into a pending order and opens a hosted payment session.
	Checkout(ctx context.Context, accountID int64, session string, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// GetByID retrieves an order by its ID with all items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// History lists an account's orders, newest first.
	History(ctx context.Context, accountID int64) ([]model.Order, error)

	List(ctx context.Context, filter model.OrderFilter) (*model.OrderListing, error)
	Detail(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)

	// Advance moves the order one step along the status flow.
	Advance(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// Receipt renders a plain text receipt for printing.
	Receipt(ctx context.Context, id uuid.UUID) (string, error)
}

// PaymentService defines hosted checkout reconciliation and payment management.
type PaymentService interface {
	// HandleWebhook verifies and processes a gateway event.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	// ReconcileSession confirms the order behind a checkout session if it was paid.
	ReconcileSession(ctx context.Context, sessionID string) (*model.Order, error)

	// ConfirmPayment moves a pending order to confirmed. Repeated calls are no-ops.
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (*model.Order, error)

	List(ctx context.Context, filter model.PaymentFilter) (*model.PaymentListing, error)
	Detail(ctx context.Context, id uuid.UUID) (*model.PaymentDetail, error)

	// Refund refunds the order through the gateway and cancels it.
	Refund(ctx context.Context, id uuid.UUID, req *model.RefundRequest) (*model.Refund, error)

	// Export lists confirmed through cancelled orders for download.
	Export(ctx context.Context, filter model.PaymentFilter) ([]model.Order, error)
}

// ReservationService defines table booking operations.
type ReservationService interface {
	Create(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error)
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	List(ctx context.Context, filter model.ReservationFilter) (*model.ReservationListing, error)
	Approve(ctx context.Context, id int64) (*model.Reservation, error)
	Reject(ctx context.Context, id int64) (*model.Reservation, error)
	Cancel(ctx context.Context, id int64) (*model.Reservation, error)
	AddNote(ctx context.Context, id int64, note string) (*model.Reservation, error)
}

// CustomerService defines the customer directory.
type CustomerService interface {
	List(ctx context.Context, query model.CustomerQuery) (*model.CustomerListing, error)
	Detail(ctx context.Context, email string) (*model.CustomerDetail, error)
	// Block reports whether a new block was created.
	Block(ctx context.Context, req *model.BlockRequest, blockedBy int64) (bool, error)
	Unblock(ctx context.Context, email string) error
}

// AuthService defines customer and staff authentication.
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.LoginResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	// StaffLogin only admits accounts with an active staff profile.
	StaffLogin(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	// StaffRole returns the current role of an active staff account.
	StaffRole(ctx context.Context, accountID int64) (model.Role, error)
}

// StaffService defines owner-only staff management.
type StaffService interface {
	List(ctx context.Context) (*model.StaffListing, error)
	Add(ctx context.Context, req *model.StaffRequest) (*model.StaffMember, error)
	Edit(ctx context.Context, actorID, profileID int64, upd *model.StaffUpdate) (*model.StaffMember, error)
	ToggleActive(ctx context.Context, actorID, profileID int64) (*model.StaffMember, error)
	ResetPassword(ctx context.Context, profileID int64, req *model.PasswordReset) error
	Delete(ctx context.Context, actorID, profileID int64) error

	// BootstrapOwner grants owner access to username, creating the account when missing.
	BootstrapOwner(ctx context.Context, req *model.StaffRequest) (*model.StaffMember, error)
}

// DashboardService defines the staff landing summary.
type DashboardService interface {
	Summary(ctx context.Context, now time.Time) (*model.DashboardSummary, error)
}

// PromoService defines promo code management.
type PromoService interface {
	List(ctx context.Context) ([]model.PromoCode, error)
	Create(ctx context.Context, req *model.PromoCodeRequest) (*model.PromoCode, error)
	ToggleActive(ctx context.Context, id int64) (*model.PromoCode, error)
}
