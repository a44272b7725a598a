package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ALeexsd/jobChat/internal/domain"
	"github.com/ALeexsd/jobChat/internal/platform/logger"
	"github.com/ALeexsd/jobChat/internal/store"
)

const messageColumns = `id, chat_id, sender_id, content, message_type, reply_to_id,
	is_edited, created_at, updated_at`

// PostgresMessageStore implements the store.MessageStore interface.
type PostgresMessageStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMessageStore creates a new PostgreSQL implementation of the MessageStore interface.
func NewPostgresMessageStore(db store.DBTX, logger *slog.Logger) *PostgresMessageStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMessageStore{
		db:     db,
		logger: logger.With(slog.String("component", "message_store")),
	}
}

var _ store.MessageStore = (*PostgresMessageStore)(nil)

func scanMessage(row rowScanner) (*domain.Message, error) {
	var m domain.Message
	var msgType string
	var replyTo sql.NullInt64
	err := row.Scan(
		&m.ID,
		&m.ChatID,
		&m.SenderID,
		&m.Content,
		&msgType,
		&replyTo,
		&m.IsEdited,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Type = domain.MessageType(msgType)
	if replyTo.Valid {
		id := replyTo.Int64
		m.ReplyToID = &id
	}
	return &m, nil
}

// Create implements store.MessageStore.Create.
// Returns store.ErrInvalidEntity if the chat, sender or replied-to message
// does not exist.
func (s *PostgresMessageStore) Create(ctx context.Context, msg *domain.Message) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := msg.Validate(); err != nil {
		log.Warn("message validation failed during create", slog.Any("error", err))
		return err
	}

	var replyTo sql.NullInt64
	if msg.ReplyToID != nil {
		replyTo = sql.NullInt64{Int64: *msg.ReplyToID, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO messages (chat_id, sender_id, content, message_type, reply_to_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_edited, created_at, updated_at
	`, msg.ChatID, msg.SenderID, msg.Content, string(msg.Type), replyTo).
		Scan(&msg.ID, &msg.IsEdited, &msg.CreatedAt, &msg.UpdatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during message creation",
				slog.Int64("chat_id", msg.ChatID),
				slog.Int64("sender_id", msg.SenderID))
		} else {
			log.Error("failed to create message",
				slog.Int64("chat_id", msg.ChatID),
				slog.Any("error", err))
		}
		return MapError(err)
	}

	log.Debug("message created",
		slog.Int64("message_id", msg.ID),
		slog.Int64("chat_id", msg.ChatID))
	return nil
}

// GetByID implements store.MessageStore.GetByID
func (s *PostgresMessageStore) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMessageNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get message",
			slog.Int64("message_id", id), slog.Any("error", err))
		return nil, MapError(err)
	}
	return msg, nil
}

// UpdateContent implements store.MessageStore.UpdateContent
func (s *PostgresMessageStore) UpdateContent(ctx context.Context, id int64, content string) (*domain.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE messages
		SET content = $1, is_edited = TRUE, updated_at = NOW()
		WHERE id = $2
		RETURNING `+messageColumns, content, id)
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMessageNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update message",
			slog.Int64("message_id", id), slog.Any("error", err))
		return nil, MapError(err)
	}
	return msg, nil
}

// Delete implements store.MessageStore.Delete
func (s *PostgresMessageStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete message",
			slog.Int64("message_id", id), slog.Any("error", err))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrMessageNotFound); err != nil {
		return fmt.Errorf("delete message %d: %w", id, err)
	}
	return nil
}
