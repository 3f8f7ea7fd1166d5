package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/alexispinzongalindo/islapos/internal/config"
	"github.com/alexispinzongalindo/islapos/internal/database"
	"github.com/alexispinzongalindo/islapos/internal/delivery"
	"github.com/alexispinzongalindo/islapos/internal/handlers"
	"github.com/alexispinzongalindo/islapos/internal/identity"
	"github.com/alexispinzongalindo/islapos/internal/logging"
	"github.com/alexispinzongalindo/islapos/internal/metrics"
	"github.com/alexispinzongalindo/islapos/internal/middleware"
	"github.com/alexispinzongalindo/islapos/internal/policy"
	"github.com/alexispinzongalindo/islapos/internal/routes"
	"github.com/alexispinzongalindo/islapos/internal/services"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	stdout := logging.Setup()

	cfg := config.Load()
	if missing := cfg.Validate(); missing != "" {
		slog.Error(missing + " environment variable is required")
		os.Exit(1)
	}

	registry, err := delivery.LoadFromFile(cfg.DeliveryProvidersPath)
	if err != nil {
		slog.Error("failed to load delivery providers", "path", cfg.DeliveryProvidersPath, "error", err)
		os.Exit(1)
	}
	slog.Info("delivery providers loaded", "providers", registry.IDs())

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records also go to system_logs.
	dbLogHandler := logging.NewDBHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	// One identity client per process, shared by every request.
	provider := identity.NewGoTrueClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey)
	resolver := tenant.NewResolver(db)
	authz := policy.NewAuthorizer(db)

	// Services
	floorService := services.NewFloorService(db)
	orderService := services.NewOrderService(db)
	staffService := services.NewStaffService(db, provider, resolver, authz, cfg.SystemOwnerEmail)
	wipeService := services.NewWipeService(db, provider, resolver, authz)
	clockService := services.NewTimeClockService(db)
	deliveryService := services.NewDeliveryService(db, registry)
	kdsService := services.NewKDSService(db)
	edgeService := services.NewEdgeService(db)
	agentService := services.NewAgentService(services.AgentConfig{
		APIURL:  cfg.AIAPIURL,
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	})
	if cfg.AIAPIKey == "" {
		slog.Warn("AI_API_KEY not set, assistant chat will fail")
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(metrics.Middleware())

	routes.Setup(app, routes.Deps{
		JWTSecret: cfg.SupabaseJWTSecret,
		Provider:  provider,
		Resolver:  resolver,
		Edge:      edgeService,

		Health:   handlers.NewHealthHandler(db, registry),
		Admin:    handlers.NewAdminHandler(authz, floorService, orderService, staffService, wipeService, kdsService, deliveryService),
		Agent:    handlers.NewAgentHandler(agentService),
		Delivery: handlers.NewDeliveryHandler(deliveryService),
		EdgeAPI:  handlers.NewEdgeHandler(edgeService, authz),
		KDS:      handlers.NewKDSHandler(kdsService),
		POS:      handlers.NewPOSHandler(staffService, clockService),

		RateLimit:       60,
		StrictRateLimit: 10,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// 5xx detail stays in the logs.
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "request_id", c.Locals("requestid"), "error", err.Error())
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
