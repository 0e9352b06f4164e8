package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"bistro/internal/config"
	"bistro/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeMailer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeMailer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func raw(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

type fakeBot struct {
	texts []string
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.texts = append(f.texts, c.(tgbotapi.MessageConfig).Text)
	return tgbotapi.Message{}, nil
}

// MockNotifier is a mock implementation of Notifier.
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

func testOrder() *model.Order {
	return &model.Order{
		ID:             uuid.New(),
		OrderNumber:    uuid.MustParse("abcdef12-3456-7890-abcd-ef1234567890"),
		Name:           "Ada Lovelace",
		Email:          "ada@example.com",
		Phone:          "555-0100",
		PickupTime:     time.Date(2025, 5, 2, 18, 30, 0, 0, time.UTC),
		Notes:          "No onions",
		Subtotal:       decimal.RequireFromString("30.00"),
		DiscountAmount: decimal.RequireFromString("3.00"),
		Total:          decimal.RequireFromString("27.00"),
		Status:         model.OrderStatusConfirmed,
		Items: []model.OrderItem{
			{Name: "Margherita", Quantity: 2, ItemTotal: decimal.RequireFromString("30.00")},
		},
	}
}

var restaurant = config.RestaurantConfig{Name: "Warm Vibe Bistro", Email: "kitchen@bistro.test"}

func TestEmailNotifier_Orders(t *testing.T) {
	mailer := &fakeMailer{}
	n := newEmailNotifier(mailer, "orders@bistro.test", restaurant, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, n.OrderConfirmed(ctx, testOrder()))
	require.NoError(t, n.NewOrder(ctx, testOrder()))
	require.Len(t, mailer.sent, 2)

	customer := mailer.sent[0]
	assert.Equal(t, []string{"ada@example.com"}, customer.GetHeader("To"))
	assert.Equal(t, []string{"Order Confirmed - #ABCDEF12 | Warm Vibe Bistro"}, customer.GetHeader("Subject"))
	body := raw(t, customer)
	assert.Contains(t, body, "Order Number: #ABCDEF12")
	assert.Contains(t, body, "Discount: -3.00")
	assert.Contains(t, body, "text/html")

	kitchen := mailer.sent[1]
	assert.Equal(t, []string{"kitchen@bistro.test"}, kitchen.GetHeader("To"))
	assert.Equal(t, []string{"New Order #ABCDEF12 - 27.00 - Pickup: May 02 06:30 PM"}, kitchen.GetHeader("Subject"))
	assert.Contains(t, raw(t, kitchen), "Notes: No onions")
}

func TestEmailNotifier_Reservation(t *testing.T) {
	mailer := &fakeMailer{}
	n := newEmailNotifier(mailer, "orders@bistro.test", restaurant, zerolog.Nop())

	res := &model.Reservation{
		Name:   "Grace",
		Email:  "grace@example.com",
		Date:   time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC),
		Time:   "19:00",
		Guests: 6,
		Status: model.ReservationPending,
	}

	require.NoError(t, n.ReservationReceived(context.Background(), res))
	require.Len(t, mailer.sent, 1)

	body := raw(t, mailer.sent[0])
	assert.Contains(t, body, "We received your reservation request")
	assert.Contains(t, body, "Guests: 6")
	assert.NotContains(t, body, "text/html")
}

func TestEmailNotifier_SendError(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("connection refused")}
	n := newEmailNotifier(mailer, "orders@bistro.test", restaurant, zerolog.Nop())

	err := n.OrderConfirmed(context.Background(), testOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
}

func TestTelegramNotifier(t *testing.T) {
	bot := &fakeBot{}
	n := newTelegramNotifier(bot, 1234, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, n.OrderConfirmed(ctx, testOrder()))
	assert.Empty(t, bot.texts, "customers are not messaged")

	require.NoError(t, n.NewOrder(ctx, testOrder()))
	require.Len(t, bot.texts, 1)
	assert.Contains(t, bot.texts[0], "New order #ABCDEF12")
	assert.Contains(t, bot.texts[0], "2x Margherita")
	assert.Contains(t, bot.texts[0], "Notes: No onions")
	assert.Contains(t, bot.texts[0], "Total: 27.00")
}

func TestMulti_LogsAndContinues(t *testing.T) {
	failing := new(MockNotifier)
	failing.On("NewOrder", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	ok := new(MockNotifier)
	ok.On("NewOrder", mock.Anything, mock.Anything).Return(nil)

	n := NewMulti(zerolog.Nop(), failing, ok)

	assert.NoError(t, n.NewOrder(context.Background(), testOrder()))
	failing.AssertExpectations(t)
	ok.AssertExpectations(t)
}
