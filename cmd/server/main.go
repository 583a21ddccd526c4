package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/config"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/database"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/email"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/events"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/logging"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/middleware"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/routes"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/tracing"
	schedulews "github.com/liangzixuan/ai-assisted-coding-kahunas/internal/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "kahunas-api"

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.SetupGlobalHandler(serviceName, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.EnableTracing {
		shutdownTracer, err := tracing.InitTracerProvider(serviceName, cfg.OtelEndpoint)
		if err != nil {
			fatal("failed to initialize OpenTelemetry", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				slog.Error("error shutting down tracer provider", "error", err)
			}
		}()
	}

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		fatal("DB_URL is required", nil)
	}
	if err := database.ConnectDB(ctx, cfg.DBUrl); err != nil {
		fatal("failed to connect to database", err)
	}
	defer database.CloseDB()

	// 3. Event sinks
	hub := schedulews.NewHub()
	go hub.Run(ctx)

	sinks := []events.Publisher{hub}
	if cfg.NatsURL != "" {
		natsPublisher, err := events.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			slog.Warn("NATS unavailable, schedule events stay local", "error", err)
		} else {
			defer natsPublisher.Close()
			sinks = append(sinks, natsPublisher)
			slog.Info("connected to NATS", "url", cfg.NatsURL)
		}
	}

	var mailer email.Sender = email.LogSender{}
	if cfg.EmailEnabled() {
		mailer = email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	}

	storage, err := services.NewStorageService(ctx, cfg)
	if err != nil {
		fatal("failed to configure storage", err)
	}

	// 4. Setup Fiber
	app := fiber.New(fiber.Config{AppName: serviceName})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New())
	if cfg.EnableTracing {
		app.Use(otelfiber.Middleware())
	}
	app.Use(middleware.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := database.DB.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	err = routes.RegisterRoutes(ctx, app, cfg, database.DB, routes.Dependencies{
		Hub:       hub,
		Publisher: events.NewFanout(sinks...),
		Mailer:    mailer,
		Storage:   storage,
	})
	if err != nil {
		fatal("failed to register routes", err)
	}

	// 5. Start Server
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
	if err := app.Listen(":" + cfg.Port); err != nil && !errors.Is(err, context.Canceled) {
		fatal("server failed to start", err)
	}
}

func fatal(msg string, err error) {
	if err != nil {
		slog.Error(msg, "error", err)
	} else {
		slog.Error(msg)
	}
	os.Exit(1)
}
