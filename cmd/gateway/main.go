package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/aegis-safety/backend/internal/auth"
	"github.com/aegis-safety/backend/internal/config"
	"github.com/aegis-safety/backend/internal/gateway"
	"github.com/aegis-safety/backend/internal/logging"
)

func main() {
	config.Load()

	cfg, err := config.LoadGateway()
	if err != nil {
		log.Fatalf("gateway: %v", err)
	}

	zlog, err := logging.New("gateway", config.Development())
	if err != nil {
		log.Fatalf("gateway: %v", err)
	}
	defer zlog.Sync()

	logger := logging.Adapt(zlog)

	tokens := auth.NewTokenService(
		cfg.Auth.SigningKey,
		cfg.Auth.AccessTTL,
		cfg.Auth.RefreshTTL,
		cfg.Auth.Issuer,
		logger,
	)

	app := fiber.New(fiber.Config{
		AppName:               "gateway",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Use(gateway.NewFilter(gateway.FilterConfig{
		AllowPaths: cfg.AllowPaths,
		Tokens:     tokens,
		Logger:     logger,
	}))

	gateway.Register(app, gateway.Routes(cfg), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zlog.Infow("listening", "addr", cfg.Listen)
		if err := app.Listen(cfg.Listen); err != nil {
			zlog.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Errorf("shutdown: %v", err)
	}
}
