package auth

import "context"

// Accounts is the credential store seam. It is the only shared mutable
// resource in the subsystem; implementations must apply each Update as a
// single per-record transaction so concurrent logins against the same
// account cannot lose a failed-attempt increment or double-clear a lock.
type Accounts interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*Account, error)
	FindByVerificationToken(ctx context.Context, token string) (*Account, error)
	FindByResetToken(ctx context.Context, token string) (*Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, account *Account) (*Account, error)
	Update(ctx context.Context, account *Account) (*Account, error)
}
