package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/aegis-safety/backend/internal/alert"
	"github.com/aegis-safety/backend/internal/config"
	"github.com/aegis-safety/backend/internal/database"
	"github.com/aegis-safety/backend/internal/httpapi"
	"github.com/aegis-safety/backend/internal/logging"
)

func main() {
	config.Load()

	cfg, err := config.LoadAlertService()
	if err != nil {
		log.Fatalf("alert-service: %v", err)
	}

	zlog, err := logging.New("alert-service", config.Development())
	if err != nil {
		log.Fatalf("alert-service: %v", err)
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

	if err := alert.CreateAlertsSchema(ctx, db); err != nil {
		zlog.Fatalf("schema: %v", err)
	}

	svc := alert.NewService(alert.NewAlertsRepository(db))

	app := fiber.New(fiber.Config{
		AppName:               "alert-service",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	httpapi.NewAlertController(svc, logger).RegisterRoutes(app.Group("/api/alerts"))

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
