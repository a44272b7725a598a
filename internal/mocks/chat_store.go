package mocks

import (
	"context"

	"github.com/ALeexsd/jobChat/internal/store"
)

// MockChatStore implements store.ChatStore for testing. Without function
// fields it answers from Members (chat id -> member user ids).
type MockChatStore struct {
	ListChatIDsForUserFn func(ctx context.Context, userID int64) ([]int64, error)
	IsMemberFn           func(ctx context.Context, chatID, userID int64) (bool, error)

	Members map[int64][]int64
}

var _ store.ChatStore = (*MockChatStore)(nil)

// ListChatIDsForUser implements store.ChatStore
func (m *MockChatStore) ListChatIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	if m.ListChatIDsForUserFn != nil {
		return m.ListChatIDsForUserFn(ctx, userID)
	}
	ids := []int64{}
	for chatID, members := range m.Members {
		for _, id := range members {
			if id == userID {
				ids = append(ids, chatID)
				break
			}
		}
	}
	return ids, nil
}

// IsMember implements store.ChatStore
func (m *MockChatStore) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	if m.IsMemberFn != nil {
		return m.IsMemberFn(ctx, chatID, userID)
	}
	members, ok := m.Members[chatID]
	if !ok {
		return false, store.ErrChatNotFound
	}
	for _, id := range members {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
