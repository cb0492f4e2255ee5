package auth_test

import (
	"context"
	"sync"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	"github.com/aegis-safety/backend/internal/auth"
)

// memStore is an in-memory auth.Accounts used by the orchestrator tests.
// Records are stored by value so mutations only persist through Update,
// the same way a database round-trip behaves.
type memStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]auth.Account
	updates  int
}

func newMemStore() *memStore {
	return &memStore{accounts: map[uuid.UUID]auth.Account{}}
}

// notFound mirrors the bun store's miss error so the orchestrator is
// exercised against the same error type production produces.
func notFound(what string) error {
	return repository.NewRecordNotFound().
		WithMetadata(map[string]any{"lookup": what})
}

func (m *memStore) find(match func(auth.Account) bool) (*auth.Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acc := range m.accounts {
		if match(acc) {
			out := acc
			return &out, true
		}
	}
	return nil, false
}

func (m *memStore) FindByUsername(_ context.Context, username string) (*auth.Account, error) {
	if acc, ok := m.find(func(a auth.Account) bool { return a.Username == username }); ok {
		return acc, nil
	}
	return nil, notFound("username")
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	if acc, ok := m.find(func(a auth.Account) bool { return a.Email == email }); ok {
		return acc, nil
	}
	return nil, notFound("email")
}

func (m *memStore) FindByUsernameOrEmail(_ context.Context, identifier string) (*auth.Account, error) {
	if acc, ok := m.find(func(a auth.Account) bool {
		return a.Username == identifier || a.Email == identifier
	}); ok {
		return acc, nil
	}
	return nil, notFound("account")
}

func (m *memStore) FindByVerificationToken(_ context.Context, token string) (*auth.Account, error) {
	if acc, ok := m.find(func(a auth.Account) bool {
		return token != "" && a.VerificationToken == token
	}); ok {
		return acc, nil
	}
	return nil, notFound("verification token")
}

func (m *memStore) FindByResetToken(_ context.Context, token string) (*auth.Account, error) {
	if acc, ok := m.find(func(a auth.Account) bool {
		return token != "" && a.ResetToken == token
	}); ok {
		return acc, nil
	}
	return nil, notFound("reset token")
}

func (m *memStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.FindByUsername(ctx, username)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (m *memStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (m *memStore) Create(_ context.Context, account *auth.Account) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	m.accounts[account.ID] = *account

	out := *account
	return &out, nil
}

func (m *memStore) Update(_ context.Context, account *auth.Account) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.ID]; !ok {
		return nil, notFound("account")
	}
	m.accounts[account.ID] = *account
	m.updates++

	out := *account
	return &out, nil
}

// get returns the stored record for assertions.
func (m *memStore) get(id uuid.UUID) (auth.Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	return acc, ok
}

// chanNotifier records sends on buffered channels so tests can wait for
// the async notification goroutine.
type chanNotifier struct {
	verifications chan string
	resets        chan string
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{
		verifications: make(chan string, 4),
		resets:        make(chan string, 4),
	}
}

func (n *chanNotifier) SendVerificationEmail(_ context.Context, _, _, token string) error {
	n.verifications <- token
	return nil
}

func (n *chanNotifier) SendPasswordResetEmail(_ context.Context, _, _, token string) error {
	n.resets <- token
	return nil
}
