// Package integration runs the HTTP API against real Postgres and Redis containers.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bistro/internal/auth"
	"bistro/internal/cart"
	"bistro/internal/config"
	"bistro/internal/database"
	"bistro/internal/events"
	"bistro/internal/handler"
	"bistro/internal/media"
	"bistro/internal/model"
	"bistro/internal/notify"
	"bistro/internal/payment"
	"bistro/internal/promo"
	"bistro/internal/repository"
	"bistro/internal/router"
	"bistro/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestEnv holds the running containers and the assembled API.
type TestEnv struct {
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Gateway *fakeGateway
	Staff   service.StaffService
	Handler http.Handler
}

// SetupTestEnv starts Postgres and Redis, migrates the schema and wires the API the way cmd/api does.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	logger := zerolog.Nop()
	if err := database.Migrate(connStr, logger); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	// Create Redis container
	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	redisURL, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis connection string: %v", err)
	}
	redisClient, err := cart.NewRedisClient(ctx, config.RedisConfig{URL: redisURL})
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	restaurant := config.RestaurantConfig{
		Name:                 "Test Bistro",
		Currency:             "usd",
		PublicBaseURL:        "http://bistro.test",
		AutoConfirmMaxGuests: 4,
		MaxGuests:            50,
	}

	carts := cart.NewRedisStore(redisClient, time.Hour, logger)
	menuRepo := repository.NewMenuRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	promoRepo := repository.NewPromoRepository(pool, logger)
	reservationRepo := repository.NewReservationRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	accountRepo := repository.NewAccountRepository(pool, logger)

	gateway := newFakeGateway()
	notifier := notify.NewMulti(logger)
	publisher := events.NewNopPublisher(logger)
	tokens := auth.NewTokenManager("integration-secret", time.Hour)

	authService := service.NewAuthService(accountRepo, tokens, logger)
	staffService := service.NewStaffService(accountRepo, logger)
	paymentService := service.NewPaymentService(orderRepo, promoRepo, gateway, notifier, publisher, logger)

	handlers := router.Handlers{
		Menu:        handler.NewMenuHandler(service.NewMenuService(menuRepo, media.NewDisabledStore(), logger), logger),
		Cart:        handler.NewCartHandler(service.NewCartService(carts, menuRepo, promoRepo, promo.NewValidator(promoRepo, logger), logger), logger),
		Order:       handler.NewOrderHandler(service.NewOrderService(orderRepo, accountRepo, promoRepo, carts, gateway, publisher, restaurant, logger), logger),
		Payment:     handler.NewPaymentHandler(paymentService, logger),
		Reservation: handler.NewReservationHandler(service.NewReservationService(reservationRepo, accountRepo, notifier, publisher, restaurant, logger), logger),
		Customer:    handler.NewCustomerHandler(service.NewCustomerService(customerRepo, orderRepo, reservationRepo, accountRepo, logger), logger),
		Auth:        handler.NewAuthHandler(authService, logger),
		Staff:       handler.NewStaffHandler(staffService, logger),
		Dashboard:   handler.NewDashboardHandler(service.NewDashboardService(orderRepo, reservationRepo, logger), service.NewPromoService(promoRepo, logger), logger),
	}

	return &TestEnv{
		Pool:    pool,
		Redis:   redisClient,
		Gateway: gateway,
		Staff:   staffService,
		Handler: router.New(handlers, tokens, authService, logger),
	}
}

// fakeGateway stands in for the hosted checkout provider. Every session it opens is reported as paid.
type fakeGateway struct {
	mu       sync.Mutex
	sessions map[string]*model.CheckoutSession
}

var _ payment.Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: make(map[string]*model.CheckoutSession)}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*model.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	total := decimal.Zero
	for _, line := range req.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	orderID := req.OrderID
	s := &model.CheckoutSession{
		ID:            "cs_test_" + uuid.NewString(),
		PaymentStatus: payment.SessionPaid,
		PaymentIntent: "pi_test_" + orderID.String()[:8],
		AmountTotal:   total,
		Currency:      req.Currency,
		OrderID:       &orderID,
	}
	s.URL = "https://checkout.test/" + s.ID
	g.sessions[s.ID] = s
	return s, nil
}

func (g *fakeGateway) GetCheckoutSession(_ context.Context, id string) (*model.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such checkout session: %s", id)
	}
	return s, nil
}

func (g *fakeGateway) ParseWebhook([]byte, string) (*payment.WebhookEvent, error) {
	return nil, model.ErrInvalidSignature
}

func (g *fakeGateway) Refund(_ context.Context, paymentIntentID string, amount *decimal.Decimal) (*model.Refund, error) {
	refund := &model.Refund{ID: "re_" + paymentIntentID, Status: "succeeded"}
	if amount != nil {
		refund.Amount = *amount
	}
	return refund, nil
}

// Call sends a JSON request through the API and returns the recorded response.
func (e *TestEnv) Call(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()

	e.Handler.ServeHTTP(w, req)
	return w
}
