// Package memory is a process-local AccountStore used for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hongminglow/accounts-be/internal/models"
	"github.com/hongminglow/accounts-be/internal/storage"
)

var _ storage.AccountStore = (*Store)(nil)

// Store keeps accounts in a map guarded by a RWMutex. Username and email
// uniqueness is case-sensitive, like the postgres unique indexes.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	accounts map[int64]models.Account
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[int64]models.Account),
		now:      time.Now,
	}
}

// Close is a no-op kept for parity with the postgres store.
func (s *Store) Close() {}

// CreateAccount assigns an id and stores the account.
func (s *Store) CreateAccount(_ context.Context, account models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(0, account.Username, account.Email); err != nil {
		return models.Account{}, err
	}
	s.nextID++
	now := s.now().UTC()
	account.ID = s.nextID
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.ID] = account
	return account, nil
}

// FindByID fetches an account by id.
func (s *Store) FindByID(_ context.Context, id int64) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return account, nil
}

// FindByUsername fetches an account by exact username.
func (s *Store) FindByUsername(_ context.Context, username string) (models.Account, error) {
	return s.find(func(a models.Account) bool { return a.Username == username })
}

// FindByEmail fetches an account by exact email.
func (s *Store) FindByEmail(_ context.Context, email string) (models.Account, error) {
	return s.find(func(a models.Account) bool { return a.Email == email })
}

// UpdateAccount applies changes to the stored account.
func (s *Store) UpdateAccount(_ context.Context, id int64, changes models.AccountChanges) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	updated := changes.Apply(current)
	if err := s.checkUnique(id, updated.Username, updated.Email); err != nil {
		return models.Account{}, err
	}
	updated.UpdatedAt = s.now().UTC()
	s.accounts[id] = updated
	return updated, nil
}

// DeleteAccount removes the account.
func (s *Store) DeleteAccount(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *Store) find(match func(models.Account) bool) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if match(account) {
			return account, nil
		}
	}
	return models.Account{}, storage.ErrNotFound
}

// checkUnique must be called with mu held.
func (s *Store) checkUnique(selfID int64, username, email string) error {
	for id, other := range s.accounts {
		if id == selfID {
			continue
		}
		if other.Username == username {
			return &storage.ConflictError{Field: "username"}
		}
		if other.Email == email {
			return &storage.ConflictError{Field: "email"}
		}
	}
	return nil
}
