package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/ALeexsd/jobChat/internal/domain"
	"github.com/ALeexsd/jobChat/internal/store"
)

// MockMessageStore implements store.MessageStore for testing. Without
// function fields it keeps messages in memory.
type MockMessageStore struct {
	CreateFn        func(ctx context.Context, msg *domain.Message) error
	GetByIDFn       func(ctx context.Context, id int64) (*domain.Message, error)
	UpdateContentFn func(ctx context.Context, id int64, content string) (*domain.Message, error)
	DeleteFn        func(ctx context.Context, id int64) error

	mu       sync.Mutex
	Messages map[int64]*domain.Message
	nextID   int64
	// Now stamps created messages; defaults to time.Now.
	Now func() time.Time
}

var _ store.MessageStore = (*MockMessageStore)(nil)

// NewMockMessageStore creates a MockMessageStore seeded with msgs.
func NewMockMessageStore(msgs ...*domain.Message) *MockMessageStore {
	m := &MockMessageStore{Messages: make(map[int64]*domain.Message)}
	for _, msg := range msgs {
		m.Messages[msg.ID] = msg
		if msg.ID > m.nextID {
			m.nextID = msg.ID
		}
	}
	return m
}

func (m *MockMessageStore) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// Create implements store.MessageStore
func (m *MockMessageStore) Create(ctx context.Context, msg *domain.Message) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Messages == nil {
		m.Messages = make(map[int64]*domain.Message)
	}
	m.nextID++
	msg.ID = m.nextID
	msg.CreatedAt = m.now()
	msg.UpdatedAt = msg.CreatedAt
	stored := *msg
	m.Messages[msg.ID] = &stored
	return nil
}

// GetByID implements store.MessageStore
func (m *MockMessageStore) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.Messages[id]
	if !ok {
		return nil, store.ErrMessageNotFound
	}
	cp := *msg
	return &cp, nil
}

// UpdateContent implements store.MessageStore
func (m *MockMessageStore) UpdateContent(ctx context.Context, id int64, content string) (*domain.Message, error) {
	if m.UpdateContentFn != nil {
		return m.UpdateContentFn(ctx, id, content)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.Messages[id]
	if !ok {
		return nil, store.ErrMessageNotFound
	}
	msg.Content = content
	msg.IsEdited = true
	msg.UpdatedAt = m.now()
	cp := *msg
	return &cp, nil
}

// Delete implements store.MessageStore
func (m *MockMessageStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Messages[id]; !ok {
		return store.ErrMessageNotFound
	}
	delete(m.Messages, id)
	return nil
}
