// Package testutil provides in-memory stand-ins for the local store and the
// legacy directory.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seaportal/apiserver/internal/store"
	"github.com/seaportal/apiserver/types"
)

// MemoryStore is an in-memory local user store with unique emails.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]types.User
	accounts map[string]types.Account

	// CreateErr, when set, fails CreateWithAccount without writing.
	CreateErr error

	creates        int
	accountUpdates int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]types.User),
		accounts: make(map[string]types.Account),
	}
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return s.withAccounts(user), nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (s *MemoryStore) CreateWithAccount(_ context.Context, user types.User, account types.Account) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return types.User{}, s.CreateErr
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	email := account.Email
	if email == "" {
		email = user.Email
	}
	for _, existing := range s.accounts {
		if existing.Email == email {
			return types.User{}, store.ErrDuplicate
		}
	}

	now := time.Now()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Accounts = nil

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.UserID = user.ID
	account.Email = email
	if account.Status == "" {
		account.Status = types.AccountActive
	}
	account.CreatedAt = now
	account.UpdatedAt = now

	s.users[user.ID] = user
	s.accounts[account.ID] = account
	s.creates++
	return s.withAccounts(user), nil
}

func (s *MemoryStore) Update(_ context.Context, user types.User) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	user.Accounts = nil
	s.users[user.ID] = user
	return s.withAccounts(user), nil
}

func (s *MemoryStore) UpdateAccount(_ context.Context, account types.Account) (types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; !ok {
		return types.Account{}, store.ErrNotFound
	}
	account.UpdatedAt = time.Now()
	s.accounts[account.ID] = account
	s.accountUpdates++
	return account, nil
}

func (s *MemoryStore) ListMigrated(_ context.Context) ([]types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]types.User, 0)
	for _, user := range s.users {
		if user.MigratedFromSupabase {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool {
		a, b := users[i].MigrationDate, users[j].MigrationDate
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	return users, nil
}

// Seed stores user and account directly, bypassing duplicate checks.
func (s *MemoryStore) Seed(user types.User, account types.Account) types.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	account.UserID = user.ID
	if account.Email == "" {
		account.Email = user.Email
	}
	if account.Status == "" {
		account.Status = types.AccountActive
	}
	user.Accounts = nil
	s.users[user.ID] = user
	s.accounts[account.ID] = account
	return s.withAccounts(user)
}

// Creates returns how many users CreateWithAccount has written.
func (s *MemoryStore) Creates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates
}

// AccountUpdates returns how many times UpdateAccount succeeded.
func (s *MemoryStore) AccountUpdates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accountUpdates
}

// Len returns the number of stored users.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *MemoryStore) withAccounts(user types.User) types.User {
	accounts := make([]types.Account, 0, 1)
	for _, account := range s.accounts {
		if account.UserID == user.ID {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.Before(accounts[j].CreatedAt) })
	user.Accounts = accounts
	return user
}
