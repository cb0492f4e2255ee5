// Package gateway implements the API gateway: the JWT authentication
// filter that guards every non-exempt route and the proxy table that
// forwards requests to the backend services.
package gateway

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aegis-safety/backend/internal/auth"
)

// Identity headers injected for downstream services. The filter is the
// sole trust boundary: downstream services trust these unconditionally,
// so inbound values are always stripped first.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUsername = "X-Username"
	HeaderUserRole = "X-User-Role"
)

// FilterConfig configures the authentication filter.
type FilterConfig struct {
	// AllowPaths are the exact path prefixes exempt from authentication.
	AllowPaths []string
	// Tokens validates bearer tokens.
	Tokens auth.TokenService
	Logger auth.Logger
}

type unauthorizedBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewFilter builds the fiber middleware enforcing bearer authentication.
func NewFilter(cfg FilterConfig) fiber.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()

		// Spoofed identity headers are dropped even on exempt paths.
		c.Request().Header.Del(HeaderUserID)
		c.Request().Header.Del(HeaderUsername)
		c.Request().Header.Del(HeaderUserRole)

		if allowed(path, cfg.AllowPaths) {
			return c.Next()
		}

		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			logger.Warn("missing or invalid Authorization header for path %s", path)
			return unauthorized(c, "Missing or invalid Authorization header")
		}

		claims, err := cfg.Tokens.Validate(raw)
		if err != nil {
			// Every validation failure collapses into the same response
			// so the caller learns nothing about which check failed.
			logger.Warn("invalid JWT token for path %s: %v", path, err)
			return unauthorized(c, "Invalid JWT token")
		}

		c.Request().Header.Set(HeaderUserID, claims.UserID())
		c.Request().Header.Set(HeaderUsername, claims.Username())
		c.Request().Header.Set(HeaderUserRole, claims.Role())

		return c.Next()
	}
}

func allowed(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func bearerToken(header string) (string, bool) {
	const scheme = "Bearer "
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}

	token := strings.TrimSpace(header[len(scheme):])
	return token, token != ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(unauthorizedBody{
		Error:     "Unauthorized",
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
