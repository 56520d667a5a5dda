package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/appointments"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/dashboard"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/forum"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/apps/records"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Moderation gate: one provider for the lifetime of the process
	gate, err := moderation.NewGateFromConfig(context.Background(), cfg)
	if err != nil {
		slog.Error("moderation setup failed", "provider", cfg.ModerationProvider, "error", err)
		os.Exit(1)
	}
	slog.Info("moderation provider selected", "provider", gate.ProviderName())

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.MigrateShared(database.DB); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// DB log sink (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.NewJSONHandler(os.Stdout),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Services
	flaggedLogService := services.NewFlaggedLogService(database.DB)
	resetService := services.NewPasswordResetService(database.DB, cfg, mailer.New(cfg))

	forumPlugin := forum.New(gate, flaggedLogService)
	recordsPlugin := records.New(cfg.UploadDir)
	appointmentsPlugin := appointments.New()

	plugins := []apps.Plugin{
		forumPlugin,
		recordsPlugin,
		appointmentsPlugin,
		dashboard.New(),
	}

	for _, p := range plugins {
		if models := p.Models(); len(models) > 0 {
			if err := database.MigrateModels(database.DB, models); err != nil {
				slog.Error("plugin migration failed", "plugin", p.ID(), "error", err)
				os.Exit(1)
			}
			slog.Info("plugin migrated", "plugin", p.ID(), "models", len(models))
		}
	}

	authService := services.NewAuthService(database.DB, cfg, forumPlugin, recordsPlugin, appointmentsPlugin)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, resetService)
	healthHandler := handlers.NewHealthHandler(gate.ProviderName())
	moderationHandler := handlers.NewModerationHandler(flaggedLogService)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.MaxUploadSize + 64*1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.Metrics())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, authHandler, healthHandler, moderationHandler, plugins)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
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

	// Only client errors (4xx) expose their message.
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
		"level":   "danger",
	})
}
