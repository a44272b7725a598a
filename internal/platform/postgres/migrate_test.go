package postgres

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/ALeexsd/jobChat/internal/domain"
	"github.com/ALeexsd/jobChat/internal/store"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Len(t, files, 4)

	for _, f := range files {
		body, err := fs.ReadFile(migrationFS, f)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", f)
		assert.Contains(t, string(body), "-- +goose Down", f)
	}
}

func TestMigrateUnknownCommand(t *testing.T) {
	db, _ := newMock(t)
	err := Migrate(context.Background(), db, nil, "sideways")
	assert.ErrorContains(t, err, "unknown migration command")
}

// openTestDB connects to DATABASE_URL, applies the schema and truncates all
// tables. The test is skipped when no database is configured.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping PostgreSQL integration test")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, nil, "up"))
	_, err = db.ExecContext(ctx, `TRUNCATE route_assignees, routes, task_assignees, tasks,
		messages, chat_members, chats, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

func TestStoresAgainstPostgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var aliceID, bobID, chatID int64
	require.NoError(t, db.QueryRowContext(ctx,
		`INSERT INTO users (username, hashed_password, first_name) VALUES ('alice', 'x', 'Alice') RETURNING id`).
		Scan(&aliceID))
	require.NoError(t, db.QueryRowContext(ctx,
		`INSERT INTO users (username, hashed_password, first_name) VALUES ('bob', 'x', 'Bob') RETURNING id`).
		Scan(&bobID))
	require.NoError(t, db.QueryRowContext(ctx,
		`INSERT INTO chats (name) VALUES ('dispatch') RETURNING id`).Scan(&chatID))
	_, err := db.ExecContext(ctx,
		`INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2), ($1, $3)`, chatID, aliceID, bobID)
	require.NoError(t, err)

	users := NewPostgresUserStore(db, nil)
	chats := NewPostgresChatStore(db, nil)
	messages := NewPostgresMessageStore(db, nil)
	tasks := NewPostgresTaskStore(db, nil)

	seen := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, users.SetStatus(ctx, aliceID, domain.UserStatusOnline, seen))
	alice, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusOnline, alice.Status)
	assert.True(t, seen.Equal(alice.LastSeen))

	ids, err := chats.ListChatIDsForUser(ctx, bobID)
	require.NoError(t, err)
	assert.Equal(t, []int64{chatID}, ids)

	member, err := chats.IsMember(ctx, chatID, aliceID)
	require.NoError(t, err)
	assert.True(t, member)

	msg, err := domain.NewMessage(chatID, aliceID, "hello", "", nil)
	require.NoError(t, err)
	require.NoError(t, messages.Create(ctx, msg))
	assert.NotZero(t, msg.ID)

	updated, err := messages.UpdateContent(ctx, msg.ID, "hello again")
	require.NoError(t, err)
	assert.True(t, updated.IsEdited)

	require.NoError(t, messages.Delete(ctx, msg.ID))
	_, err = messages.GetByID(ctx, msg.ID)
	assert.ErrorIs(t, err, store.ErrMessageNotFound)

	task := &domain.Task{Title: "Unload truck", CreatorID: aliceID, AssigneeIDs: []int64{bobID}}
	require.NoError(t, tasks.Create(ctx, task))
	assert.NotZero(t, task.ID)
}
