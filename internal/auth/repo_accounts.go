package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var _ Accounts = (*accounts)(nil)

// NewAccountsRepository builds the bun-backed credential store. Uniqueness
// of username and email is enforced by the table constraints.
func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return a.findOne(ctx, "username", username)
}

func (a *accounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return a.findOne(ctx, "email", email)
}

func (a *accounts) FindByUsernameOrEmail(ctx context.Context, identifier string) (*Account, error) {
	identifier = strings.TrimSpace(identifier)

	columns := []string{"username", "email"}
	if strings.Contains(identifier, "@") {
		columns = []string{"email", "username"}
	}

	for _, column := range columns {
		record, err := a.findOne(ctx, column, identifier)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}
		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{"identifier": identifier})
}

func (a *accounts) FindByVerificationToken(ctx context.Context, token string) (*Account, error) {
	return a.findOne(ctx, "verification_token", token)
}

func (a *accounts) FindByResetToken(ctx context.Context, token string) (*Account, error) {
	return a.findOne(ctx, "reset_token", token)
}

func (a *accounts) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return a.exists(ctx, "username", username)
}

func (a *accounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return a.exists(ctx, "email", email)
}

func (a *accounts) Create(ctx context.Context, record *Account) (*Account, error) {
	prepareAccountDefaults(record)
	return a.Repository.CreateTx(ctx, a.db, record)
}

// Update persists the whole record as a single statement, keyed by id, so
// a concurrent login against the same account cannot interleave with it.
func (a *accounts) Update(ctx context.Context, record *Account) (*Account, error) {
	record.Touch(time.Now())
	return a.Repository.UpdateTx(ctx, a.db, record, repository.UpdateByID(record.ID.String()))
}

func (a *accounts) findOne(ctx context.Context, column, value string) (*Account, error) {
	if value == "" {
		return nil, repository.NewRecordNotFound()
	}

	record := &Account{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{column: value})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) exists(ctx context.Context, column, value string) (bool, error) {
	return a.db.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias."+column+" = ?", value).
		Exists(ctx)
}

func prepareAccountDefaults(record *Account) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.EnsureRoles()
	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}
}

// CreateAccountsSchema creates the accounts table if needed. The services
// run it at startup; tests run it against in-memory SQLite.
func CreateAccountsSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*Account)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}
