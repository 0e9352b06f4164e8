package handler

import (
	"context"
	"io"
	"time"

	"bistro/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) summary(args mock.Arguments) (*model.CartSummary, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartSummary), args.Error(1)
}

func (m *MockCartService) Get(ctx context.Context, session string) (*model.CartSummary, error) {
	return m.summary(m.Called(ctx, session))
}

func (m *MockCartService) Add(ctx context.Context, session string, req *model.AddToCartRequest) (*model.CartSummary, error) {
	return m.summary(m.Called(ctx, session, req))
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, session, key string, quantity int) (*model.CartSummary, error) {
	return m.summary(m.Called(ctx, session, key, quantity))
}

func (m *MockCartService) Remove(ctx context.Context, session, key string) (*model.CartSummary, error) {
	return m.summary(m.Called(ctx, session, key))
}

func (m *MockCartService) Clear(ctx context.Context, session string) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockCartService) ApplyPromo(ctx context.Context, session, code string) (*model.CartSummary, error) {
	return m.summary(m.Called(ctx, session, code))
}

func (m *MockCartService) RemovePromo(ctx context.Context, session string) (*model.CartSummary, error) {
	return m.summary(m.Called(ctx, session))
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) order(args mock.Arguments) (*model.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Checkout(ctx context.Context, accountID int64, session string, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	args := m.Called(ctx, accountID, session, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResponse), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderService) History(ctx context.Context, accountID int64) ([]model.Order, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, filter model.OrderFilter) (*model.OrderListing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderListing), args.Error(1)
}

func (m *MockOrderService) Detail(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

func (m *MockOrderService) Advance(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderService) Cancel(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return m.order(m.Called(ctx, id))
}

func (m *MockOrderService) Receipt(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// MockPaymentService is a mock implementation of PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

func (m *MockPaymentService) ReconcileSession(ctx context.Context, sessionID string) (*model.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockPaymentService) ConfirmPayment(ctx context.Context, orderID uuid.UUID, paymentIntentID string) (*model.Order, error) {
	args := m.Called(ctx, orderID, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockPaymentService) List(ctx context.Context, filter model.PaymentFilter) (*model.PaymentListing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentListing), args.Error(1)
}

func (m *MockPaymentService) Detail(ctx context.Context, id uuid.UUID) (*model.PaymentDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentDetail), args.Error(1)
}

func (m *MockPaymentService) Refund(ctx context.Context, id uuid.UUID, req *model.RefundRequest) (*model.Refund, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Refund), args.Error(1)
}

func (m *MockPaymentService) Export(ctx context.Context, filter model.PaymentFilter) ([]model.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

// MockReservationService is a mock implementation of ReservationService.
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) reservation(args mock.Arguments) (*model.Reservation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationService) Create(ctx context.Context, req *model.ReservationRequest) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, req))
}

func (m *MockReservationService) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, id))
}

func (m *MockReservationService) List(ctx context.Context, filter model.ReservationFilter) (*model.ReservationListing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReservationListing), args.Error(1)
}

func (m *MockReservationService) Approve(ctx context.Context, id int64) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, id))
}

func (m *MockReservationService) Reject(ctx context.Context, id int64) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, id))
}

func (m *MockReservationService) Cancel(ctx context.Context, id int64) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, id))
}

func (m *MockReservationService) AddNote(ctx context.Context, id int64, note string) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, id, note))
}

// MockCustomerService is a mock implementation of CustomerService.
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) List(ctx context.Context, query model.CustomerQuery) (*model.CustomerListing, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerListing), args.Error(1)
}

func (m *MockCustomerService) Detail(ctx context.Context, email string) (*model.CustomerDetail, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerDetail), args.Error(1)
}

func (m *MockCustomerService) Block(ctx context.Context, req *model.BlockRequest, blockedBy int64) (bool, error) {
	args := m.Called(ctx, req, blockedBy)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerService) Unblock(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// MockMenuService is a mock implementation of MenuService.
type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) item(args mock.Arguments) (*model.MenuItem, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuService) ListMenu(ctx context.Context) ([]model.CategoryMenu, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CategoryMenu), args.Error(1)
}

func (m *MockMenuService) GetDish(ctx context.Context, slug string) (*model.MenuItem, error) {
	return m.item(m.Called(ctx, slug))
}

func (m *MockMenuService) ListItems(ctx context.Context, filter model.MenuFilter) (*model.MenuListing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuListing), args.Error(1)
}

func (m *MockMenuService) GetItem(ctx context.Context, id int64) (*model.MenuItem, error) {
	return m.item(m.Called(ctx, id))
}

func (m *MockMenuService) CreateItem(ctx context.Context, in *model.MenuItemInput) (*model.MenuItem, error) {
	return m.item(m.Called(ctx, in))
}

func (m *MockMenuService) UpdateItem(ctx context.Context, id int64, in *model.MenuItemInput) (*model.MenuItem, error) {
	return m.item(m.Called(ctx, id, in))
}

func (m *MockMenuService) DeleteItem(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMenuService) ToggleAvailability(ctx context.Context, id int64) (*model.MenuItem, error) {
	return m.item(m.Called(ctx, id))
}

func (m *MockMenuService) UploadImage(ctx context.Context, id int64, r io.Reader, filename string, size int64) (*model.MenuItem, error) {
	return m.item(m.Called(ctx, id, r, filename, size))
}

func (m *MockMenuService) AddAddOn(ctx context.Context, itemID int64, req *model.AddOnRequest) (*model.AddOn, error) {
	args := m.Called(ctx, itemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AddOn), args.Error(1)
}

func (m *MockMenuService) RemoveAddOn(ctx context.Context, itemID, addOnID int64) error {
	return m.Called(ctx, itemID, addOnID).Error(0)
}

func (m *MockMenuService) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockMenuService) CreateCategory(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockMenuService) DeleteCategory(ctx context.Context, id int64, reassignTo *int64) error {
	return m.Called(ctx, id, reassignTo).Error(0)
}

func (m *MockMenuService) ListTags(ctx context.Context) ([]model.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockMenuService) ImportCSV(ctx context.Context, r io.Reader) (*model.MenuImportResult, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuImportResult), args.Error(1)
}

func (m *MockMenuService) WriteCSVTemplate(w io.Writer) error {
	return m.Called(w).Error(0)
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) login(args mock.Arguments) (*model.LoginResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.LoginResponse, error) {
	return m.login(m.Called(ctx, req))
}

func (m *MockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	return m.login(m.Called(ctx, req))
}

func (m *MockAuthService) StaffLogin(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	return m.login(m.Called(ctx, req))
}

func (m *MockAuthService) StaffRole(ctx context.Context, accountID int64) (model.Role, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(model.Role), args.Error(1)
}

// MockStaffService is a mock implementation of StaffService.
type MockStaffService struct {
	mock.Mock
}

func (m *MockStaffService) member(args mock.Arguments) (*model.StaffMember, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StaffMember), args.Error(1)
}

func (m *MockStaffService) List(ctx context.Context) (*model.StaffListing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StaffListing), args.Error(1)
}

func (m *MockStaffService) Add(ctx context.Context, req *model.StaffRequest) (*model.StaffMember, error) {
	return m.member(m.Called(ctx, req))
}

func (m *MockStaffService) Edit(ctx context.Context, actorID, profileID int64, upd *model.StaffUpdate) (*model.StaffMember, error) {
	return m.member(m.Called(ctx, actorID, profileID, upd))
}

func (m *MockStaffService) ToggleActive(ctx context.Context, actorID, profileID int64) (*model.StaffMember, error) {
	return m.member(m.Called(ctx, actorID, profileID))
}

func (m *MockStaffService) ResetPassword(ctx context.Context, profileID int64, req *model.PasswordReset) error {
	return m.Called(ctx, profileID, req).Error(0)
}

func (m *MockStaffService) Delete(ctx context.Context, actorID, profileID int64) error {
	return m.Called(ctx, actorID, profileID).Error(0)
}

func (m *MockStaffService) BootstrapOwner(ctx context.Context, req *model.StaffRequest) (*model.StaffMember, error) {
	return m.member(m.Called(ctx, req))
}

// MockDashboardService is a mock implementation of DashboardService.
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context, now time.Time) (*model.DashboardSummary, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardSummary), args.Error(1)
}

// MockPromoService is a mock implementation of PromoService.
type MockPromoService struct {
	mock.Mock
}

func (m *MockPromoService) promo(args mock.Arguments) (*model.PromoCode, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

func (m *MockPromoService) List(ctx context.Context) ([]model.PromoCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromoCode), args.Error(1)
}

func (m *MockPromoService) Create(ctx context.Context, req *model.PromoCodeRequest) (*model.PromoCode, error) {
	return m.promo(m.Called(ctx, req))
}

func (m *MockPromoService) ToggleActive(ctx context.Context, id int64) (*model.PromoCode, error) {
	return m.promo(m.Called(ctx, id))
}
