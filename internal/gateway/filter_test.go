package gateway_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegis-safety/backend/internal/auth"
	"github.com/aegis-safety/backend/internal/gateway"
)

var signingKey = []byte("test-signing-key-at-least-32-bytes!!")

type echoedHeaders struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// newTestApp wires the filter in front of a handler echoing the identity
// headers it received.
func newTestApp(allowPaths []string) (*fiber.App, auth.TokenService) {
	tokens := auth.NewTokenService(signingKey, time.Hour, 2*time.Hour, "aegis-test", nil)

	app := fiber.New()
	app.Use(gateway.NewFilter(gateway.FilterConfig{
		AllowPaths: allowPaths,
		Tokens:     tokens,
	}))
	app.All("/*", func(c *fiber.Ctx) error {
		return c.JSON(echoedHeaders{
			UserID:   c.Get(gateway.HeaderUserID),
			Username: c.Get(gateway.HeaderUsername),
			Role:     c.Get(gateway.HeaderUserRole),
		})
	})

	return app, tokens
}

func issueAccess(t *testing.T, tokens auth.TokenService, account *auth.Account) string {
	t.Helper()
	token, err := tokens.IssueAccess(account)
	require.NoError(t, err)
	return token
}

func decodeEcho(t *testing.T, resp *http.Response) echoedHeaders {
	t.Helper()
	var out echoedHeaders
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeUnauthorized(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestFilter(t *testing.T) {
	account := &auth.Account{
		ID:       uuid.New(),
		Username: "ada",
		Email:    "ada@example.com",
		Roles:    []string{auth.RoleAdmin},
	}

	t.Run("allow-listed paths pass without a token", func(t *testing.T) {
		app, _ := newTestApp([]string{"/api/auth/login"})

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("allow-list matches by prefix", func(t *testing.T) {
		app, _ := newTestApp([]string{"/api/auth"})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-email?token=x", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing header is rejected with the uniform body", func(t *testing.T) {
		app, _ := newTestApp(nil)

		req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		body := decodeUnauthorized(t, resp)
		assert.Equal(t, "Unauthorized", body["error"])
		assert.Equal(t, "Missing or invalid Authorization header", body["message"])
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		app, _ := newTestApp(nil)

		req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Basic dXNlcjpwdw==")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage tokens are rejected uniformly", func(t *testing.T) {
		app, _ := newTestApp(nil)

		req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-jwt")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		body := decodeUnauthorized(t, resp)
		assert.Equal(t, "Invalid JWT token", body["message"])
	})

	t.Run("expired tokens get the same response as invalid ones", func(t *testing.T) {
		app, _ := newTestApp(nil)

		stale := auth.NewTokenService(signingKey, time.Hour, 2*time.Hour, "aegis-test", nil).
			WithClock(func() time.Time { return time.Now().Add(-3 * time.Hour) })

		req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+issueAccess(t, stale, account))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		body := decodeUnauthorized(t, resp)
		assert.Equal(t, "Invalid JWT token", body["message"])
	})

	t.Run("valid token injects the identity headers", func(t *testing.T) {
		app, tokens := newTestApp(nil)

		req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+issueAccess(t, tokens, account))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		echo := decodeEcho(t, resp)
		assert.Equal(t, account.ID.String(), echo.UserID)
		assert.Equal(t, "ada", echo.Username)
		assert.Equal(t, auth.RoleAdmin, echo.Role)
	})

	t.Run("the bearer scheme is case-insensitive", func(t *testing.T) {
		app, tokens := newTestApp(nil)

		req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
		req.Header.Set(fiber.HeaderAuthorization, "bearer "+issueAccess(t, tokens, account))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("spoofed identity headers are stripped", func(t *testing.T) {
		app, _ := newTestApp([]string{"/api/auth"})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/health", nil)
		req.Header.Set(gateway.HeaderUserID, uuid.NewString())
		req.Header.Set(gateway.HeaderUserRole, auth.RoleAdmin)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		echo := decodeEcho(t, resp)
		assert.Empty(t, echo.UserID)
		assert.Empty(t, echo.Role)
	})

	t.Run("refresh tokens pass with the default role", func(t *testing.T) {
		app, tokens := newTestApp(nil)

		refresh, err := tokens.IssueRefresh(account)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+refresh)
		resp, err := app.Test(req)
		require.NoError(t, err)

		// the filter checks signature and expiry only; a refresh token
		// carries no role claim, so the injected role falls back to USER
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		echo := decodeEcho(t, resp)
		assert.Equal(t, auth.RoleUser, echo.Role)
	})
}
