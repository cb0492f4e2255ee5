package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role names attached to accounts and carried in access-token claims.
const (
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

// Account is the identity record backing every auth flow.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID           uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username     string    `bun:"username,notnull,unique" json:"username,omitempty"`
	Email        string    `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`

	FirstName         string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName          string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	PhoneNumber       string     `bun:"phone_number" json:"phone_number,omitempty"`
	DateOfBirth       *time.Time `bun:"date_of_birth,nullzero" json:"date_of_birth,omitempty"`
	ProfilePictureURL string     `bun:"profile_picture_url" json:"profile_picture_url,omitempty"`

	Verified bool `bun:"is_verified" json:"is_verified"`
	Active   bool `bun:"is_active" json:"is_active"`

	FailedLoginAttempts int        `bun:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `bun:"locked_until,nullzero" json:"-"`

	VerificationToken  string     `bun:"verification_token,nullzero" json:"-"`
	VerificationExpiry *time.Time `bun:"verification_expiry,nullzero" json:"-"`
	ResetToken         string     `bun:"reset_token,nullzero" json:"-"`
	ResetExpiry        *time.Time `bun:"reset_expiry,nullzero" json:"-"`

	LastLogin *time.Time `bun:"last_login,nullzero" json:"last_login,omitempty"`
	Roles     []string   `bun:"roles" json:"roles,omitempty"`

	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// FullName joins first and last name the way the notification templates
// and token claims expect it.
func (a *Account) FullName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// PrimaryRole is the first role on the account, USER when the set is empty.
func (a *Account) PrimaryRole() string {
	if len(a.Roles) == 0 {
		return RoleUser
	}
	return a.Roles[0]
}

// EnsureRoles backfills the default role set.
func (a *Account) EnsureRoles() {
	if len(a.Roles) == 0 {
		a.Roles = []string{RoleUser}
	}
}

// Touch refreshes the update timestamp; the store calls it on every mutation.
func (a *Account) Touch(now time.Time) {
	a.UpdatedAt = &now
}

// PublicAccount is the account view returned to callers. One-time tokens,
// the password hash and the lockout bookkeeping never leave the service.
type PublicAccount struct {
	ID                uuid.UUID  `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	PhoneNumber       string     `json:"phone_number,omitempty"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	ProfilePictureURL string     `json:"profile_picture_url,omitempty"`
	Verified          bool       `json:"is_verified"`
	Active            bool       `json:"is_active"`
	Roles             []string   `json:"roles"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// PublicView strips the sensitive fields from an account record.
func (a *Account) PublicView() *PublicAccount {
	roles := a.Roles
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}
	return &PublicAccount{
		ID:                a.ID,
		Username:          a.Username,
		Email:             a.Email,
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		PhoneNumber:       a.PhoneNumber,
		DateOfBirth:       a.DateOfBirth,
		ProfilePictureURL: a.ProfilePictureURL,
		Verified:          a.Verified,
		Active:            a.Active,
		Roles:             roles,
		LastLogin:         a.LastLogin,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// TokenPair is the issuance result for login, register and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
