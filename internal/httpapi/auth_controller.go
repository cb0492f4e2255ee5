package httpapi

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"

	"github.com/aegis-safety/backend/internal/auth"
)

// AuthService is the orchestrator surface the controller consumes.
type AuthService interface {
	Register(ctx context.Context, input auth.RegisterInput) (*auth.AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*auth.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.AuthResult, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthController serves the /api/auth endpoints.
type AuthController struct {
	svc    AuthService
	logger auth.Logger
}

// NewAuthController builds the controller.
func NewAuthController(svc AuthService, logger auth.Logger) *AuthController {
	return &AuthController{svc: svc, logger: logger}
}

// RegisterRoutes mounts the auth endpoints on the router.
func (a *AuthController) RegisterRoutes(router fiber.Router) {
	router.Post("/register", a.Register)
	router.Post("/login", a.Login)
	router.Post("/refresh", a.Refresh)
	router.Get("/verify-email", a.VerifyEmail)
	router.Post("/forgot-password", a.ForgotPassword)
	router.Post("/reset-password", a.ResetPassword)
	router.Get("/health", a.Health)
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	DateOfBirth string `json:"date_of_birth"`
}

// Validate runs the transport-level validation rules. Password strength
// is the orchestrator's concern, only presence is checked here.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.DateOfBirth, validation.Date("2006-01-02")),
	)
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := RegisterRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return respondValidation(c, err)
	}

	if err := payload.Validate(); err != nil {
		return respondValidation(c, err)
	}

	input := auth.RegisterInput{
		Username:    payload.Username,
		Email:       payload.Email,
		Password:    payload.Password,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		PhoneNumber: payload.PhoneNumber,
	}

	if payload.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", payload.DateOfBirth)
		if err != nil {
			return respondValidation(c, err)
		}
		input.DateOfBirth = &dob
	}

	result, err := a.svc.Register(c.Context(), input)
	if err != nil {
		a.logger.Warn("registration failed for %q: %v", payload.Username, err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// LoginRequest is the login payload.
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

// Validate runs the transport-level validation rules.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UsernameOrEmail, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := LoginRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return respondValidation(c, err)
	}

	if err := payload.Validate(); err != nil {
		return respondValidation(c, err)
	}

	result, err := a.svc.Login(c.Context(), payload.UsernameOrEmail, payload.Password)
	if err != nil {
		a.logger.Warn("login failed for %q: %v", payload.UsernameOrEmail, err)
		return respondError(c, err)
	}

	return c.JSON(result)
}

// RefreshRequest is the token refresh payload.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate runs the transport-level validation rules.
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

func (a *AuthController) Refresh(c *fiber.Ctx) error {
	payload := RefreshRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return respondValidation(c, err)
	}

	if err := payload.Validate(); err != nil {
		return respondValidation(c, err)
	}

	result, err := a.svc.Refresh(c.Context(), payload.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

func (a *AuthController) VerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return respondValidation(c, errors.New("token: cannot be blank"))
	}

	if err := a.svc.VerifyEmail(c.Context(), token); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "email verified successfully",
		"status":  "success",
	})
}

// ForgotPasswordRequest is the reset-initiation payload.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate runs the transport-level validation rules.
func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	payload := ForgotPasswordRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return respondValidation(c, err)
	}

	if err := payload.Validate(); err != nil {
		return respondValidation(c, err)
	}

	if err := a.svc.ForgotPassword(c.Context(), payload.Email); err != nil {
		return respondError(c, err)
	}

	// The response is identical whether or not the email exists.
	return c.JSON(fiber.Map{
		"message": "password reset email sent if the account exists",
		"status":  "success",
	})
}

// ResetPasswordRequest is the reset-completion payload.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Validate runs the transport-level validation rules.
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required),
	)
}

func (a *AuthController) ResetPassword(c *fiber.Ctx) error {
	payload := ResetPasswordRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return respondValidation(c, err)
	}

	if err := payload.Validate(); err != nil {
		return respondValidation(c, err)
	}

	if err := a.svc.ResetPassword(c.Context(), payload.Token, payload.NewPassword); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "password reset successfully",
		"status":  "success",
	})
}

func (a *AuthController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "UP",
		"service":   "user-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
