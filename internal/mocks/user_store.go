package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/ALeexsd/jobChat/internal/domain"
	"github.com/ALeexsd/jobChat/internal/store"
)

// MockUserStore implements store.UserStore for testing. Without function
// fields it serves the users held in Users.
type MockUserStore struct {
	GetByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	GetByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	SetStatusFn     func(ctx context.Context, id int64, status domain.UserStatus, at time.Time) error

	mu    sync.Mutex
	Users map[int64]*domain.User
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a MockUserStore seeded with users.
func NewMockUserStore(users ...*domain.User) *MockUserStore {
	m := &MockUserStore{Users: make(map[int64]*domain.User)}
	for _, u := range users {
		m.Users[u.ID] = u
	}
	return m
}

// GetByID implements store.UserStore
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		return u, nil
	}
	return nil, store.ErrUserNotFound
}

// GetByUsername implements store.UserStore
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Username == username && u.IsActive {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// SetStatus implements store.UserStore
func (m *MockUserStore) SetStatus(ctx context.Context, id int64, status domain.UserStatus, at time.Time) error {
	if m.SetStatusFn != nil {
		return m.SetStatusFn(ctx, id, status, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.Status = status
	u.LastSeen = at
	return nil
}
