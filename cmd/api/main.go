package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bistro/internal/auth"
	"bistro/internal/cart"
	"bistro/internal/config"
	"bistro/internal/database"
	"bistro/internal/events"
	"bistro/internal/handler"
	"bistro/internal/media"
	"bistro/internal/metrics"
	"bistro/internal/notify"
	"bistro/internal/payment"
	"bistro/internal/promo"
	"bistro/internal/repository"
	"bistro/internal/router"
	"bistro/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting bistro API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Apply schema migrations before serving
	if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize cart store
	redisClient, err := cart.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	defer redisClient.Close()
	carts := cart.NewRedisStore(redisClient, cfg.Redis.CartTTL, logger)

	// Initialize repositories
	menuRepo := repository.NewMenuRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	promoRepo := repository.NewPromoRepository(pool, logger)
	reservationRepo := repository.NewReservationRepository(pool, logger)
	customerRepo := repository.NewCustomerRepository(pool, logger)
	accountRepo := repository.NewAccountRepository(pool, logger)

	// Initialize integrations
	gateway := payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, logger)
	notifier := newNotifier(cfg, logger)
	publisher := newPublisher(cfg.RabbitMQ, logger)
	defer publisher.Close()
	images := newImageStore(cfg.Cloudinary, logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize services
	menuService := service.NewMenuService(menuRepo, images, logger)
	cartService := service.NewCartService(carts, menuRepo, promoRepo, promo.NewValidator(promoRepo, logger), logger)
	orderService := service.NewOrderService(orderRepo, accountRepo, promoRepo, carts, gateway, publisher, cfg.Restaurant, logger)
	paymentService := service.NewPaymentService(orderRepo, promoRepo, gateway, notifier, publisher, logger)
	reservationService := service.NewReservationService(reservationRepo, accountRepo, notifier, publisher, cfg.Restaurant, logger)
	customerService := service.NewCustomerService(customerRepo, orderRepo, reservationRepo, accountRepo, logger)
	authService := service.NewAuthService(accountRepo, tokens, logger)
	staffService := service.NewStaffService(accountRepo, logger)
	dashboardService := service.NewDashboardService(orderRepo, reservationRepo, logger)
	promoService := service.NewPromoService(promoRepo, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Menu:        handler.NewMenuHandler(menuService, logger),
		Cart:        handler.NewCartHandler(cartService, logger),
		Order:       handler.NewOrderHandler(orderService, logger),
		Payment:     handler.NewPaymentHandler(paymentService, logger),
		Reservation: handler.NewReservationHandler(reservationService, logger),
		Customer:    handler.NewCustomerHandler(customerService, logger),
		Auth:        handler.NewAuthHandler(authService, logger),
		Staff:       handler.NewStaffHandler(staffService, logger),
		Dashboard:   handler.NewDashboardHandler(dashboardService, promoService, logger),
	}

	// Initialize router
	mux := router.New(handlers, tokens, authService, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the servers
	serverErrors := make(chan error, 2)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.Register()
		metricsMux := http.NewServeMux()
		metricsMux.Handle("GET /metrics", metrics.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Address(),
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().
				Str("address", cfg.Metrics.Address()).
				Msg("metrics server started")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrors <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("failed to shutdown metrics server")
			}
		}

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newNotifier fans out to every enabled channel. Disabled channels are skipped.
func newNotifier(cfg *config.Config, logger zerolog.Logger) notify.Notifier {
	var notifiers []notify.Notifier
	if cfg.SMTP.Enabled {
		notifiers = append(notifiers, notify.NewEmailNotifier(cfg.SMTP, cfg.Restaurant, logger))
	}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise telegram notifier, kitchen alerts disabled")
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	return notify.NewMulti(logger, notifiers...)
}

func newPublisher(cfg config.RabbitMQConfig, logger zerolog.Logger) events.Publisher {
	if !cfg.Enabled {
		logger.Info().Msg("order events disabled (RabbitMQ not enabled)")
		return events.NewNopPublisher(logger)
	}
	publisher, err := events.NewRabbitPublisher(cfg.URL, cfg.Exchange, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to connect to RabbitMQ, order events will be dropped")
		return events.NewNopPublisher(logger)
	}
	return publisher
}

func newImageStore(cfg config.CloudinaryConfig, logger zerolog.Logger) media.ImageStore {
	if !cfg.Enabled {
		return media.NewDisabledStore()
	}
	store, err := media.NewCloudinaryStore(cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise cloudinary, image uploads disabled")
		return media.NewDisabledStore()
	}
	return store
}
