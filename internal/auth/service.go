package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
)

// resetTokenTTL is the fixed password-reset window. It is independent of
// the configured email-verification window.
const resetTokenTTL = time.Hour

// ServiceConfig carries the orchestrator's policy knobs. It is built once
// at startup and passed in by parameter.
type ServiceConfig struct {
	Lockout         LockoutConfig
	VerificationTTL time.Duration
}

// RegisterInput is the registration payload after transport-level
// validation.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	DateOfBirth *time.Time
}

// AuthResult is returned by the flows that issue tokens.
type AuthResult struct {
	Tokens  *TokenPair     `json:"tokens"`
	Account *PublicAccount `json:"account"`
}

// Service is the auth orchestrator: it drives the register, login,
// refresh, verify-email, forgot-password and reset-password flows,
// composing the credential store, the lockout policy, the token service
// and the notifier.
type Service struct {
	store    Accounts
	tokens   TokenService
	notifier Notifier
	cfg      ServiceConfig
	logger   Logger
	now      func() time.Time
}

// NewService creates the auth orchestrator.
func NewService(store Accounts, tokens TokenService, cfg ServiceConfig) *Service {
	return &Service{
		store:    store,
		tokens:   tokens,
		notifier: noopNotifier{},
		cfg:      cfg,
		logger:   defLogger{},
		now:      time.Now,
	}
}

// WithNotifier configures the outbound email notifier.
func (s *Service) WithNotifier(n Notifier) *Service {
	if n != nil {
		s.notifier = n
	}
	return s
}

// WithLogger configures the service logger.
func (s *Service) WithLogger(l Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithClock overrides the time source, useful in tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Register creates a new unverified account, persists a one-time
// verification token and sends the verification email as a best-effort
// side effect. The new account receives the default USER role and a fresh
// token pair.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	s.logger.Info("attempting to register user %q", input.Username)

	if taken, err := s.store.ExistsByUsername(ctx, input.Username); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username")
	} else if taken {
		return nil, ErrDuplicateUsername
	}

	if taken, err := s.store.ExistsByEmail(ctx, input.Email); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email")
	} else if taken {
		return nil, ErrDuplicateEmail
	}

	if err := CheckPasswordStrength(input.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	phone, err := NormalizePhone(input.PhoneNumber)
	if err != nil {
		return nil, err
	}

	now := s.now()
	verificationExpiry := now.Add(s.cfg.VerificationTTL)

	account := &Account{
		Username:           input.Username,
		Email:              input.Email,
		PasswordHash:       hash,
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		PhoneNumber:        phone,
		DateOfBirth:        input.DateOfBirth,
		Active:             true,
		Verified:           false,
		Roles:              []string{RoleUser},
		VerificationToken:  uuid.NewString(),
		VerificationExpiry: &verificationExpiry,
	}

	if id, err := hashid.NewUUID(input.Email); err == nil {
		account.ID = id
	}

	account, err = s.store.Create(ctx, account)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
	}

	// Delivery failures must not undo the committed registration; the
	// user can request re-verification later.
	s.notify(ctx, "verification", account.Email, func(ctx context.Context) error {
		return s.notifier.SendVerificationEmail(ctx, account.Email, account.FirstName, account.VerificationToken)
	})

	s.logger.Info("user registered successfully: %q", account.Username)

	return s.issue(account)
}

// Login verifies credentials for the username-or-email identifier. Lookup
// misses and password mismatches are indistinguishable to the caller; a
// mismatch consumes a failed attempt, an open lockout window does not.
func (s *Service) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	account, err := s.store.FindByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	now := s.now()

	if Locked(account, now) {
		s.logger.Warn("login rejected, account locked: %q", account.Username)
		return nil, ErrAccountLocked
	}

	if !account.Active {
		return nil, ErrAccountDisabled
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		if !goerrors.Is(err, ErrInvalidCredentials) {
			return nil, err
		}

		s.cfg.Lockout.RecordFailure(account, now)
		if Locked(account, now) {
			s.logger.Warn("account locked after %d failed attempts: %q", account.FailedLoginAttempts, account.Username)
		}
		if _, err := s.store.Update(ctx, account); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to track login attempt")
		}

		return nil, ErrInvalidCredentials
	}

	ClearLock(account)
	account.LastLogin = &now
	if account, err = s.store.Update(ctx, account); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record login")
	}

	s.logger.Info("user logged in successfully: %q", account.Username)

	return s.issue(account)
}

// Refresh redeems a refresh token for a fresh access+refresh pair. Roles
// are re-resolved from the store; the old refresh token is not invalidated
// (stateless-token model).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		s.logger.Debug("refresh token rejected: %v", err)
		return nil, ErrInvalidToken
	}

	account, err := s.store.FindByUsername(ctx, claims.Username())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	if !account.Active {
		return nil, ErrAccountDisabled
	}

	return s.issue(account)
}

// VerifyEmail consumes a one-time verification token, marking the account
// verified and clearing the token and its expiry in the same update.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	account, err := s.store.FindByVerificationToken(ctx, token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidToken
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up verification token")
	}

	if account.VerificationExpiry == nil || account.VerificationExpiry.Before(s.now()) {
		return ErrTokenExpired
	}

	account.Verified = true
	account.VerificationToken = ""
	account.VerificationExpiry = nil

	if _, err := s.store.Update(ctx, account); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email verified")
	}

	s.logger.Info("email verified successfully for user %q", account.Username)
	return nil
}

// ForgotPassword starts the reset flow. A miss on the email succeeds
// silently so callers cannot enumerate accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Warn("password reset requested for unknown email")
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account")
	}

	resetExpiry := s.now().Add(resetTokenTTL)
	account.ResetToken = uuid.NewString()
	account.ResetExpiry = &resetExpiry

	if _, err := s.store.Update(ctx, account); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
	}

	s.notify(ctx, "password reset", account.Email, func(ctx context.Context) error {
		return s.notifier.SendPasswordResetEmail(ctx, account.Email, account.FirstName, account.ResetToken)
	})

	return nil
}

// ResetPassword consumes a one-time reset token, re-hashes the new
// password and clears the token and its expiry in the same update.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	account, err := s.store.FindByResetToken(ctx, token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidToken
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	if account.ResetExpiry == nil || account.ResetExpiry.Before(s.now()) {
		return ErrTokenExpired
	}

	if err := CheckPasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	account.PasswordHash = hash
	account.ResetToken = ""
	account.ResetExpiry = nil

	if _, err := s.store.Update(ctx, account); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store new password")
	}

	s.logger.Info("password reset successfully for user %q", account.Username)
	return nil
}

func (s *Service) issue(account *Account) (*AuthResult, error) {
	pair, err := s.tokens.IssuePair(account)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Tokens: pair, Account: account.PublicView()}, nil
}

// notify runs the notifier off the request path; the account mutation has
// already committed and must not be undone by a delivery failure.
func (s *Service) notify(ctx context.Context, kind, email string, send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			s.logger.Error("failed to send %s email to %s: %v", kind, email, err)
		}
	}()
}

// NormalizePhone parses an optional phone number and formats it as E.164.
// Numbers without a country prefix are rejected rather than guessed at.
func NormalizePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}

	parsed, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number").
			WithCode(goerrors.CodeBadRequest)
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", goerrors.New("invalid phone number", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
