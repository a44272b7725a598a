package postgres

import (
	"context"
	"log/slog"

	"github.com/ALeexsd/jobChat/internal/platform/logger"
	"github.com/ALeexsd/jobChat/internal/store"
)

// PostgresChatStore implements the store.ChatStore interface.
type PostgresChatStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChatStore creates a new PostgreSQL implementation of the ChatStore interface.
func NewPostgresChatStore(db store.DBTX, logger *slog.Logger) *PostgresChatStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresChatStore{
		db:     db,
		logger: logger.With(slog.String("component", "chat_store")),
	}
}

var _ store.ChatStore = (*PostgresChatStore)(nil)

// ListChatIDsForUser implements store.ChatStore.ListChatIDsForUser
func (s *PostgresChatStore) ListChatIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id FROM chat_members WHERE user_id = $1 ORDER BY chat_id`, userID)
	if err != nil {
		log.Error("failed to list chats for user", slog.Int64("user_id", userID), slog.Any("error", err))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.Any("error", closeErr))
		}
	}()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return ids, nil
}

// ConversationIDs returns the chats the user belongs to. It lets the chat
// store seed the realtime membership index.
func (s *PostgresChatStore) ConversationIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.ListChatIDsForUser(ctx, userID)
}

// IsMember implements store.ChatStore.IsMember
func (s *PostgresChatStore) IsMember(ctx context.Context, chatID, userID int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var chatExists, member bool
	err := s.db.QueryRowContext(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM chats WHERE id = $1),
			EXISTS (SELECT 1 FROM chat_members WHERE chat_id = $1 AND user_id = $2)
	`, chatID, userID).Scan(&chatExists, &member)
	if err != nil {
		log.Error("failed to check chat membership",
			slog.Int64("chat_id", chatID),
			slog.Int64("user_id", userID),
			slog.Any("error", err))
		return false, MapError(err)
	}
	if !chatExists {
		return false, store.ErrChatNotFound
	}
	return member, nil
}
