package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ALeexsd/jobChat/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// missingReference names the entity a foreign key points at, keyed by the
// default constraint names of the schema in migrations/.
var missingReference = map[string]error{
	"messages_chat_id_fkey":        store.ErrChatNotFound,
	"messages_sender_id_fkey":      store.ErrUserNotFound,
	"messages_reply_to_id_fkey":    store.ErrMessageNotFound,
	"chat_members_chat_id_fkey":    store.ErrChatNotFound,
	"chat_members_user_id_fkey":    store.ErrUserNotFound,
	"tasks_creator_id_fkey":        store.ErrUserNotFound,
	"task_assignees_user_id_fkey":  store.ErrUserNotFound,
	"routes_creator_id_fkey":       store.ErrUserNotFound,
	"route_assignees_user_id_fkey": store.ErrUserNotFound,
}

// MapError translates a database error into the store error vocabulary,
// keeping the driver error in the chain for logging.
//
// A foreign key violation on a known constraint matches both
// store.ErrInvalidEntity and the not-found error of the referenced entity,
// so a message to a deleted chat reads as ErrChatNotFound.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w (%s): %w", store.ErrDuplicate, pgErr.ConstraintName, err)
	case foreignKeyViolationCode:
		if ref, ok := missingReference[pgErr.ConstraintName]; ok {
			return fmt.Errorf("%w: %w: %w", store.ErrInvalidEntity, ref, err)
		}
		return fmt.Errorf("%w: foreign key violation (%s): %w", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case checkViolationCode:
		return fmt.Errorf("%w: check constraint violation (%s): %w", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: not null violation (%s): %w", store.ErrInvalidEntity, pgErr.ColumnName, err)
	}
	return err
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode
}

// CheckRowsAffected returns notFound when an UPDATE or DELETE touched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("nil result provided to CheckRowsAffected")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if notFound == nil {
		return store.ErrNotFound
	}
	return notFound
}
