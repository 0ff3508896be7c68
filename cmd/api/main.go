package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/navalhaclub/loyalty-api/internal/config"
	"github.com/navalhaclub/loyalty-api/internal/handler"
	"github.com/navalhaclub/loyalty-api/internal/repository"
	"github.com/navalhaclub/loyalty-api/internal/service"
	"github.com/navalhaclub/loyalty-api/internal/validator"
	"github.com/navalhaclub/loyalty-api/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Navalha Club Storefront API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB body limit
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	// Repositories
	profileRepo := repository.NewProfileRepository(pool)
	rewardRepo := repository.NewRewardRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)

	// Services
	loyaltyService := service.NewLoyaltyService(pool, profileRepo, rewardRepo,
		service.TierThresholds{
			Silver:   cfg.Loyalty.SilverMinPoints,
			Gold:     cfg.Loyalty.GoldMinPoints,
			Platinum: cfg.Loyalty.PlatinumMinPoints,
		},
		time.Duration(cfg.Loyalty.RedemptionValidityDays)*24*time.Hour)
	orderService := service.NewOrderService(pool, orderRepo, subscriptionRepo, loyaltyService,
		cfg.Checkout.ShippingFee, cfg.Subscription.DiscountPercent)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo,
		cfg.Subscription.MonthlyPrice, cfg.Subscription.YearlyPrice, cfg.Subscription.DiscountPercent)
	appointmentService := service.NewAppointmentService(appointmentRepo)

	// Handlers
	loyaltyHandler := handler.NewLoyaltyHandler(loyaltyService, validate)
	cartHandler := handler.NewCartHandler(validate)
	orderHandler := handler.NewOrderHandler(orderService, validate)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, validate)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService, validate)
	healthHandler := handler.NewHealthHandler(pool)

	app.Get("/health", healthHandler.Check)

	// Loyalty routes
	app.Get("/api/loyalty/:userId", loyaltyHandler.GetProfile)
	app.Get("/api/loyalty/:userId/next-tier", loyaltyHandler.GetNextTier)
	app.Post("/api/loyalty/:userId/points/earn", loyaltyHandler.EarnPoints)
	app.Post("/api/loyalty/:userId/points/spend", loyaltyHandler.SpendPoints)
	app.Post("/api/loyalty/:userId/rewards/:rewardId/redeem", loyaltyHandler.RedeemReward)
	app.Get("/api/rewards", loyaltyHandler.ListRewards)

	// Cart and order routes
	app.Post("/api/cart/pricing", cartHandler.Pricing)
	app.Post("/api/orders", orderHandler.CreateOrder)
	app.Get("/api/orders/:id", orderHandler.GetOrder)
	app.Get("/api/orders/:id/tracking", orderHandler.Track)
	app.Patch("/api/orders/:id/status", orderHandler.UpdateStatus)
	app.Get("/api/users/:userId/orders", orderHandler.ListByUser)

	// Subscription routes
	app.Post("/api/subscriptions", subscriptionHandler.Create)
	app.Get("/api/subscriptions/user/:userId", subscriptionHandler.GetByUser)
	app.Post("/api/subscriptions/:id/cancel", subscriptionHandler.Cancel)

	// Appointment routes
	app.Post("/api/appointments", appointmentHandler.Create)
	app.Get("/api/appointments/search", appointmentHandler.Search)
	app.Get("/api/appointments/user/:userId", appointmentHandler.ListByUser)
	app.Patch("/api/appointments/:id/status", appointmentHandler.UpdateStatus)
	app.Patch("/api/appointments/:id/rating", appointmentHandler.Rate)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
