package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/ALeexsd/jobChat/internal/domain"
)

// DBTX is implemented by both *sql.DB and *sql.Tx, so stores can run either
// on the pool or inside a caller-managed transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UserStore defines persistence of employee accounts and their presence status.
type UserStore interface {
	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername returns ErrUserNotFound if no active user has that name.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// SetStatus records the user's presence status and stamps last_seen with at.
	// Returns ErrUserNotFound if the user does not exist.
	SetStatus(ctx context.Context, id int64, status domain.UserStatus, at time.Time) error
}

// ChatStore defines read access to chat membership.
type ChatStore interface {
	// ListChatIDsForUser returns the ids of every chat the user belongs to,
	// in ascending order. A user with no chats yields an empty slice.
	ListChatIDsForUser(ctx context.Context, userID int64) ([]int64, error)

	// IsMember reports whether the user belongs to the chat.
	// Returns ErrChatNotFound if the chat does not exist.
	IsMember(ctx context.Context, chatID, userID int64) (bool, error)
}

// MessageStore defines persistence of chat messages.
type MessageStore interface {
	// Create saves msg and fills in its ID and timestamps.
	Create(ctx context.Context, msg *domain.Message) error

	// GetByID returns ErrMessageNotFound if the message does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Message, error)

	// UpdateContent replaces the content, marks the message edited and
	// returns the updated row. Returns ErrMessageNotFound if it does not exist.
	UpdateContent(ctx context.Context, id int64, content string) (*domain.Message, error)

	// Delete removes the message. Returns ErrMessageNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

// TaskStore defines persistence of tasks and their assignees.
type TaskStore interface {
	// Create saves the task and its assignee rows atomically and fills in
	// ID and CreatedAt.
	Create(ctx context.Context, task *domain.Task) error
}

// RouteStore defines persistence of routes and their assignees.
type RouteStore interface {
	// Create saves the route and its assignee rows atomically and fills in
	// ID and CreatedAt.
	Create(ctx context.Context, route *domain.Route) error
}
