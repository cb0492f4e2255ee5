// Package config loads the immutable process configuration from the
// environment. A .env file is honored in development; nothing reads the
// environment after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// Auth carries the token and lockout policy knobs consumed by the auth
// core.
type Auth struct {
	SigningKey      []byte
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	VerificationTTL time.Duration
	MaxAttempts     int
	LockoutDuration time.Duration
	Issuer          string
}

// Server configures one of the backend HTTP services.
type Server struct {
	Listen      string
	DatabaseDSN string
}

// SMTP configures the outbound mailer. An empty Addr selects the log-only
// notifier.
type SMTP struct {
	Addr    string
	From    string
	BaseURL string
}

// Gateway configures the API gateway binary. The gateway shares the auth
// signing configuration with the user service so it can verify the tokens
// the user service mints.
type Gateway struct {
	Auth            Auth
	Listen          string
	UserServiceURL  string
	AlertServiceURL string
	AllowPaths      []string
	CORSOrigins     string
}

// UserService is the full configuration of cmd/user-service.
type UserService struct {
	Auth   Auth
	Server Server
	SMTP   SMTP
}

// AlertService is the full configuration of cmd/alert-service.
type AlertService struct {
	Server Server
}

// defaultAllowPaths are the gateway paths reachable without a token.
var defaultAllowPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/refresh",
	"/api/auth/verify-email",
	"/api/auth/forgot-password",
	"/api/auth/reset-password",
	"/api/auth/health",
	"/health",
	"/docs",
}

// Load reads a .env file when present. Missing files are not an error;
// production supplies real environment variables.
func Load(files ...string) {
	_ = godotenv.Load(files...)
}

// Development reports whether the process runs outside production.
func Development() bool {
	return os.Getenv("APP_ENV") != "production"
}

// LoadUserService builds the user-service configuration.
func LoadUserService() (*UserService, error) {
	auth, err := loadAuth()
	if err != nil {
		return nil, err
	}

	return &UserService{
		Auth: *auth,
		Server: Server{
			Listen:      envString("USER_SERVICE_LISTEN", ":8081"),
			DatabaseDSN: envString("DATABASE_DSN", ""),
		},
		SMTP: SMTP{
			Addr:    envString("SMTP_ADDR", ""),
			From:    envString("SMTP_FROM", "no-reply@aegis-safety.io"),
			BaseURL: envString("PUBLIC_BASE_URL", "http://localhost:8080"),
		},
	}, nil
}

// LoadAlertService builds the alert-service configuration.
func LoadAlertService() (*AlertService, error) {
	return &AlertService{
		Server: Server{
			Listen:      envString("ALERT_SERVICE_LISTEN", ":8082"),
			DatabaseDSN: envString("DATABASE_DSN", ""),
		},
	}, nil
}

// LoadGateway builds the gateway configuration.
func LoadGateway() (*Gateway, error) {
	auth, err := loadAuth()
	if err != nil {
		return nil, err
	}

	return &Gateway{
		Auth:            *auth,
		Listen:          envString("GATEWAY_LISTEN", ":8080"),
		UserServiceURL:  envString("USER_SERVICE_URL", "http://localhost:8081"),
		AlertServiceURL: envString("ALERT_SERVICE_URL", "http://localhost:8082"),
		AllowPaths:      envList("GATEWAY_ALLOW_PATHS", defaultAllowPaths),
		CORSOrigins:     envString("CORS_ORIGINS", "*"),
	}, nil
}

// LoadAuth builds the token/lockout configuration shared by the gateway
// and the user service.
func LoadAuth() (*Auth, error) {
	return loadAuth()
}

func loadAuth() (*Auth, error) {
	key := os.Getenv("JWT_SIGNING_KEY")
	if len(key) < 32 {
		return nil, goerrors.New(
			"JWT_SIGNING_KEY must be set and at least 32 bytes",
			goerrors.CategoryValidation,
		)
	}

	cfg := &Auth{
		SigningKey:      []byte(key),
		AccessTTL:       envDuration("JWT_ACCESS_TTL", time.Hour),
		RefreshTTL:      envDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		VerificationTTL: envDuration("EMAIL_VERIFICATION_TTL", 24*time.Hour),
		MaxAttempts:     envInt("MAX_LOGIN_ATTEMPTS", 5),
		LockoutDuration: envDuration("LOCKOUT_DURATION", 30*time.Minute),
		Issuer:          envString("JWT_ISSUER", "aegis-safety"),
	}

	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, goerrors.New(
			fmt.Sprintf("JWT_REFRESH_TTL (%s) must exceed JWT_ACCESS_TTL (%s)", cfg.RefreshTTL, cfg.AccessTTL),
			goerrors.CategoryValidation,
		)
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return def
	}
	return out
}
