package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/aegis-safety/backend/internal/auth"
	"github.com/aegis-safety/backend/internal/config"
	"github.com/aegis-safety/backend/internal/database"
	"github.com/aegis-safety/backend/internal/httpapi"
	"github.com/aegis-safety/backend/internal/logging"
	"github.com/aegis-safety/backend/internal/mailer"
)

func main() {
	config.Load()

	cfg, err := config.LoadUserService()
	if err != nil {
		log.Fatalf("user-service: %v", err)
	}

	zlog, err := logging.New("user-service", config.Development())
	if err != nil {
		log.Fatalf("user-service: %v", err)
	}
	defer zlog.Sync()

	logger := logging.Adapt(zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Server.DatabaseDSN)
	if err != nil {
		zlog.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := auth.CreateAccountsSchema(ctx, db); err != nil {
		zlog.Fatalf("schema: %v", err)
	}

	var notifier auth.Notifier = &mailer.LogNotifier{Logger: logger}
	if cfg.SMTP.Addr != "" {
		notifier = mailer.NewSMTP(cfg.SMTP)
	}

	tokens := auth.NewTokenService(
		cfg.Auth.SigningKey,
		cfg.Auth.AccessTTL,
		cfg.Auth.RefreshTTL,
		cfg.Auth.Issuer,
		logger,
	)

	svc := auth.NewService(auth.NewAccountsRepository(db), tokens, auth.ServiceConfig{
		Lockout: auth.LockoutConfig{
			MaxAttempts:     cfg.Auth.MaxAttempts,
			LockoutDuration: cfg.Auth.LockoutDuration,
		},
		VerificationTTL: cfg.Auth.VerificationTTL,
	}).WithNotifier(notifier).WithLogger(logger)

	app := fiber.New(fiber.Config{
		AppName:               "user-service",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	httpapi.NewAuthController(svc, logger).RegisterRoutes(app.Group("/api/auth"))

	go func() {
		zlog.Infow("listening", "addr", cfg.Server.Listen)
		if err := app.Listen(cfg.Server.Listen); err != nil {
			zlog.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Errorf("shutdown: %v", err)
	}
}
