package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeUsernameTaken   = "USERNAME_TAKEN"
	TextCodeEmailTaken      = "EMAIL_TAKEN"
	TextCodeWeakPassword    = "WEAK_PASSWORD"
	TextCodeInvalidCreds    = "INVALID_CREDENTIALS"
	TextCodeAccountLocked   = "ACCOUNT_LOCKED"
	TextCodeAccountDisabled = "ACCOUNT_DISABLED"
	TextCodeInvalidToken    = "INVALID_TOKEN"
	TextCodeTokenExpired    = "TOKEN_EXPIRED"
	TextCodeTokenMalformed  = "TOKEN_MALFORMED"
	TextCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
)

// ErrDuplicateUsername is returned when registering a username that already exists.
var ErrDuplicateUsername = goerrors.New("username already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeUsernameTaken).
	WithCode(goerrors.CodeConflict)

// ErrDuplicateEmail is returned when registering an email that already exists.
var ErrDuplicateEmail = goerrors.New("email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials covers both unknown identifiers and wrong passwords,
// so callers cannot probe which accounts exist.
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountLocked is returned while a lockout window is still open.
var ErrAccountLocked = goerrors.New("account is locked, please try again later", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeAccountLocked)

// ErrAccountDisabled is returned for deactivated accounts.
var ErrAccountDisabled = goerrors.New("account is deactivated", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidToken is returned for tokens that fail signature checks or for
// one-time tokens that match no account.
var ErrInvalidToken = goerrors.New("token is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned when a token's expiry has passed.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token string cannot be parsed at all.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountNotFound is returned when a refresh token references an account
// that no longer exists.
var ErrAccountNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(goerrors.CodeNotFound)

// WeakPasswordError builds an ErrWeakPassword-style failure naming the first
// unmet strength rule.
func WeakPasswordError(rule string) *goerrors.Error {
	return goerrors.New(rule, goerrors.CategoryValidation).
		WithTextCode(TextCodeWeakPassword).
		WithCode(goerrors.CodeBadRequest)
}

// IsTokenExpiredError reports whether err represents an expired token.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeTokenExpired
	}
	return false
}
