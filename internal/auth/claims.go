package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshTokenType marks refresh tokens so an access token can never be
// replayed against the refresh endpoint.
const RefreshTokenType = "refresh"

// AccessClaims are the claims carried by access tokens. The subject is the
// username; everything a downstream service needs to act on the caller's
// behalf rides along.
type AccessClaims struct {
	jwt.RegisteredClaims
	UID      string   `json:"uid,omitempty"`
	Email    string   `json:"email,omitempty"`
	FullName string   `json:"full_name,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	UserRole string   `json:"role,omitempty"`
}

// UserID returns the account id, falling back to the subject.
func (c *AccessClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Username returns the token subject.
func (c *AccessClaims) Username() string {
	return c.RegisteredClaims.Subject
}

// Role returns the primary role claim.
func (c *AccessClaims) Role() string {
	if c.UserRole != "" {
		return c.UserRole
	}
	return RoleUser
}

// HasRole reports whether the role list carries the given role.
func (c *AccessClaims) HasRole(role string) bool {
	if c.UserRole == role {
		return true
	}
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Expires returns the expiry time, zero when absent.
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// RefreshClaims are the minimal claims on refresh tokens. Roles are
// deliberately absent: they are re-resolved from the store at refresh time.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"uid,omitempty"`
	TokenType string `json:"typ,omitempty"`
}

// UserID returns the account id, falling back to the subject.
func (c *RefreshClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Username returns the token subject.
func (c *RefreshClaims) Username() string {
	return c.RegisteredClaims.Subject
}
