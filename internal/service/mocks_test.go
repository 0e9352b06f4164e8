package service

import (
	"context"
	"io"
	"time"

	"bistro/internal/model"
	"bistro/internal/payment"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	args := m.Called(ctx, id, sessionID)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, tx pgx.Tx, id uuid.UUID, paymentIntentID string, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, tx, id, paymentIntentID, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ListByAccount(ctx context.Context, accountID int64) ([]model.Order, error) {
	args := m.Called(ctx, accountID)
	return orders(args.Get(0)), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, filter)
	return orders(args.Get(0)), args.Error(1)
}

func (m *MockOrderRepository) ListRecent(ctx context.Context, statuses []model.OrderStatus, limit int) ([]model.Order, error) {
	args := m.Called(ctx, statuses, limit)
	return orders(args.Get(0)), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.OrderStatus]int), args.Error(1)
}

func (m *MockOrderRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	args := m.Called(ctx, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) PaidTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) DailyPaidRevenue(ctx context.Context, from time.Time) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockOrderRepository) ListPayments(ctx context.Context, filter model.PaymentFilter, limit, offset int) ([]model.Order, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	return orders(args.Get(0)), args.Int(1), args.Error(2)
}

func (m *MockOrderRepository) ListForExport(ctx context.Context, filter model.PaymentFilter) ([]model.Order, error) {
	args := m.Called(ctx, filter)
	return orders(args.Get(0)), args.Error(1)
}

func (m *MockOrderRepository) ListByEmail(ctx context.Context, email string) ([]model.Order, error) {
	args := m.Called(ctx, email)
	return orders(args.Get(0)), args.Error(1)
}

func orders(v any) []model.Order {
	if v == nil {
		return nil
	}
	return v.([]model.Order)
}

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, tx pgx.Tx, a *model.Account) error {
	args := m.Called(ctx, tx, a)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, tx pgx.Tx, a *model.Account) error {
	args := m.Called(ctx, tx, a)
	return args.Error(0)
}

func (m *MockAccountRepository) SetPassword(ctx context.Context, id int64, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccount(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) CreateStaffProfile(ctx context.Context, tx pgx.Tx, p *model.StaffProfile) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockAccountRepository) GetStaffProfile(ctx context.Context, accountID int64) (*model.StaffProfile, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StaffProfile), args.Error(1)
}

func (m *MockAccountRepository) GetStaffMember(ctx context.Context, profileID int64) (*model.StaffMember, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StaffMember), args.Error(1)
}

func (m *MockAccountRepository) ListStaff(ctx context.Context) ([]model.StaffMember, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StaffMember), args.Error(1)
}

func (m *MockAccountRepository) UpdateStaffProfile(ctx context.Context, tx pgx.Tx, p *model.StaffProfile) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}

func (m *MockAccountRepository) SetStaffActive(ctx context.Context, profileID int64, active bool) error {
	args := m.Called(ctx, profileID, active)
	return args.Error(0)
}

func (m *MockAccountRepository) CountOwners(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockAccountRepository) GetBlocked(ctx context.Context, email string) (*model.BlockedCustomer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BlockedCustomer), args.Error(1)
}

func (m *MockAccountRepository) Block(ctx context.Context, b *model.BlockedCustomer) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Unblock(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockPromoRepository is a mock implementation of PromoRepository.
type MockPromoRepository struct {
	mock.Mock
}

func (m *MockPromoRepository) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

func (m *MockPromoRepository) GetByID(ctx context.Context, id int64) (*model.PromoCode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

func (m *MockPromoRepository) List(ctx context.Context) ([]model.PromoCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromoCode), args.Error(1)
}

func (m *MockPromoRepository) Create(ctx context.Context, p *model.PromoCode) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromoRepository) CreateBatch(ctx context.Context, codes []model.PromoCode) (int, error) {
	args := m.Called(ctx, codes)
	return args.Int(0), args.Error(1)
}

func (m *MockPromoRepository) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockPromoRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockReservationRepository is a mock implementation of ReservationRepository.
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, r *model.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationRepository) List(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	args := m.Called(ctx, filter)
	return reservations(args.Get(0)), args.Error(1)
}

func (m *MockReservationRepository) CountByStatus(ctx context.Context) (map[model.ReservationStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.ReservationStatus]int), args.Error(1)
}

func (m *MockReservationRepository) CountOnDate(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

func (m *MockReservationRepository) CountUpcoming(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

func (m *MockReservationRepository) ListOnDate(ctx context.Context, day time.Time, limit int) ([]model.Reservation, error) {
	args := m.Called(ctx, day, limit)
	return reservations(args.Get(0)), args.Error(1)
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, id int64, from []model.ReservationStatus, to model.ReservationStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) SetStaffNote(ctx context.Context, id int64, note string) error {
	args := m.Called(ctx, id, note)
	return args.Error(0)
}

func (m *MockReservationRepository) ListByEmail(ctx context.Context, email string) ([]model.Reservation, error) {
	args := m.Called(ctx, email)
	return reservations(args.Get(0)), args.Error(1)
}

func reservations(v any) []model.Reservation {
	if v == nil {
		return nil
	}
	return v.([]model.Reservation)
}

// MockCustomerRepository is a mock implementation of CustomerRepository.
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) List(ctx context.Context, query model.CustomerQuery, limit, offset int) ([]model.CustomerSummary, error) {
	args := m.Called(ctx, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CustomerSummary), args.Error(1)
}

func (m *MockCustomerRepository) Totals(ctx context.Context, search string) (int, decimal.Decimal, int, error) {
	args := m.Called(ctx, search)
	return args.Int(0), args.Get(1).(decimal.Decimal), args.Int(2), args.Error(3)
}

// MockMenuRepository is a mock implementation of MenuRepository.
type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockMenuRepository) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockMenuRepository) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockMenuRepository) CategorySlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockMenuRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockMenuRepository) DeleteCategory(ctx context.Context, id int64, reassignTo *int64) error {
	args := m.Called(ctx, id, reassignTo)
	return args.Error(0)
}

func (m *MockMenuRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tag), args.Error(1)
}

func (m *MockMenuRepository) ListItems(ctx context.Context, filter model.MenuFilter) ([]model.MenuItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) ListAvailableItems(ctx context.Context) ([]model.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) CountItems(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockMenuRepository) GetItemByID(ctx context.Context, id int64) (*model.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) GetItemBySlug(ctx context.Context, slug string) (*model.MenuItem, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) GetItemByName(ctx context.Context, name string) (*model.MenuItem, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) ItemSlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMenuRepository) CreateItem(ctx context.Context, item *model.MenuItem, tagIDs []int64) error {
	args := m.Called(ctx, item, tagIDs)
	return args.Error(0)
}

func (m *MockMenuRepository) UpdateItem(ctx context.Context, item *model.MenuItem, tagIDs []int64) error {
	args := m.Called(ctx, item, tagIDs)
	return args.Error(0)
}

func (m *MockMenuRepository) DeleteItem(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMenuRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}

func (m *MockMenuRepository) SetImage(ctx context.Context, id int64, url, publicID string) error {
	args := m.Called(ctx, id, url, publicID)
	return args.Error(0)
}

func (m *MockMenuRepository) CreateAddOn(ctx context.Context, addOn *model.AddOn) error {
	args := m.Called(ctx, addOn)
	return args.Error(0)
}

func (m *MockMenuRepository) GetAddOnByName(ctx context.Context, itemID int64, name string) (*model.AddOn, error) {
	args := m.Called(ctx, itemID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AddOn), args.Error(1)
}

func (m *MockMenuRepository) DeleteAddOn(ctx context.Context, itemID, addOnID int64) (bool, error) {
	args := m.Called(ctx, itemID, addOnID)
	return args.Bool(0), args.Error(1)
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*model.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutSession), args.Error(1)
}

func (m *MockGateway) GetCheckoutSession(ctx context.Context, id string) (*model.CheckoutSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutSession), args.Error(1)
}

func (m *MockGateway) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.WebhookEvent), args.Error(1)
}

func (m *MockGateway) Refund(ctx context.Context, paymentIntentID string, amount *decimal.Decimal) (*model.Refund, error) {
	args := m.Called(ctx, paymentIntentID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Refund), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderConfirmed(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockNotifier) NewOrder(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockNotifier) ReservationReceived(ctx context.Context, res *model.Reservation) error {
	return m.Called(ctx, res).Error(0)
}

// MockImageStore is a mock implementation of media.ImageStore.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Upload(ctx context.Context, r io.Reader, filename string) (string, string, error) {
	args := m.Called(ctx, r, filename)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockImageStore) Delete(ctx context.Context, publicID string) error {
	return m.Called(ctx, publicID).Error(0)
}

// MockValidator is a mock implementation of promo.Validator.
type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Lookup(ctx context.Context, code string) (*model.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoCode), args.Error(1)
}

// memoryCartStore keeps carts in a map.
type memoryCartStore struct {
	carts map[string]*model.Cart
}

func newMemoryCartStore() *memoryCartStore {
	return &memoryCartStore{carts: make(map[string]*model.Cart)}
}

func (s *memoryCartStore) Get(_ context.Context, session string) (*model.Cart, error) {
	c, ok := s.carts[session]
	if !ok {
		return &model.Cart{}, nil
	}
	cp := *c
	cp.Lines = append([]model.CartLine(nil), c.Lines...)
	return &cp, nil
}

func (s *memoryCartStore) Save(_ context.Context, session string, c *model.Cart) error {
	s.carts[session] = c
	return nil
}

func (s *memoryCartStore) Delete(_ context.Context, session string) error {
	delete(s.carts, session)
	return nil
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
