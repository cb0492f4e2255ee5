package gateway

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/proxy"

	"github.com/aegis-safety/backend/internal/auth"
	"github.com/aegis-safety/backend/internal/config"
)

// Route maps a path prefix to an upstream service.
type Route struct {
	Prefix   string
	Upstream string
}

// Routes builds the proxy table from configuration.
func Routes(cfg *config.Gateway) []Route {
	return []Route{
		{Prefix: "/api/auth", Upstream: cfg.UserServiceURL},
		{Prefix: "/api/users", Upstream: cfg.UserServiceURL},
		{Prefix: "/api/alerts", Upstream: cfg.AlertServiceURL},
	}
}

// Register mounts the proxy handlers and the fallback on the app. The
// authentication filter must already be installed.
func Register(app *fiber.App, routes []Route, logger auth.Logger) {
	for _, route := range routes {
		route := route
		app.All(route.Prefix+"/*", func(c *fiber.Ctx) error {
			target := strings.TrimRight(route.Upstream, "/") + c.OriginalURL()
			if err := proxy.Do(c, target); err != nil {
				logger.Error("upstream %s unreachable: %v", route.Upstream, err)
				return serviceUnavailable(c)
			}
			// The upstream response is authoritative; drop any hop
			// headers fiber carried over.
			c.Response().Header.Del(fiber.HeaderServer)
			return nil
		})
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":     "Not Found",
			"message":   "no route for " + c.Path(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
}

func serviceUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":     "Service Unavailable",
		"message":   "upstream service is not responding, please try again later",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
