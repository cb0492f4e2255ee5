package auth

import (
	"strings"
	"unicode"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 14

// passwordSymbols is the set accepted as special characters.
const passwordSymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?~` + "`"

// HashPassword generates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", goerrors.New("password must not be empty", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash validates the given cleartext password against the
// stored hash. A mismatch surfaces as ErrInvalidCredentials so the caller
// never learns whether the account or the password was at fault.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if goerrors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to compare password hash")
	}
	return nil
}

// CheckPasswordStrength enforces the registration/reset password rules and
// names the first unmet rule. Login never applies it.
func CheckPasswordStrength(password string) error {
	if len(password) < 8 {
		return WeakPasswordError("password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	switch {
	case !hasUpper:
		return WeakPasswordError("password must contain at least one uppercase letter")
	case !hasLower:
		return WeakPasswordError("password must contain at least one lowercase letter")
	case !hasDigit:
		return WeakPasswordError("password must contain at least one digit")
	case !hasSymbol:
		return WeakPasswordError("password must contain at least one special character")
	}

	return nil
}
