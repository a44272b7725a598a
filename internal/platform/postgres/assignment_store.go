package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ALeexsd/jobChat/internal/domain"
	"github.com/ALeexsd/jobChat/internal/platform/logger"
	"github.com/ALeexsd/jobChat/internal/store"
	"github.com/samber/lo"
)

// assignmentTables names the parent and join tables of one assignment kind.
type assignmentTables struct {
	entity   string
	parent   string
	join     string
	fkColumn string
}

var (
	taskTables  = assignmentTables{entity: "task", parent: "tasks", join: "task_assignees", fkColumn: "task_id"}
	routeTables = assignmentTables{entity: "route", parent: "routes", join: "route_assignees", fkColumn: "route_id"}
)

// insertAssignment writes the parent row and one join row per distinct
// assignee inside a single transaction.
func insertAssignment(
	ctx context.Context,
	db *sql.DB,
	log *slog.Logger,
	t assignmentTables,
	title, description string,
	creatorID int64,
	assignees []int64,
) (int64, time.Time, error) {
	var id int64
	var createdAt time.Time
	assignees = lo.Uniq(assignees)

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (title, description, creator_id) VALUES ($1, $2, $3)
			RETURNING id, created_at`, t.parent),
			title, description, creatorID).Scan(&id, &createdAt)
		if err != nil {
			return MapError(err)
		}

		insert := fmt.Sprintf(`INSERT INTO %s (%s, user_id) VALUES ($1, $2)`, t.join, t.fkColumn)
		for _, userID := range assignees {
			if _, err := tx.ExecContext(ctx, insert, id, userID); err != nil {
				return MapError(err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create "+t.entity,
			slog.Int64("creator_id", creatorID),
			slog.Any("error", err))
		return 0, time.Time{}, err
	}

	log.Info(t.entity+" created",
		slog.Int64(t.entity+"_id", id),
		slog.Int("assignees", len(assignees)))
	return id, createdAt, nil
}

// PostgresTaskStore implements the store.TaskStore interface.
type PostgresTaskStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
func NewPostgresTaskStore(db *sql.DB, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	id, createdAt, err := insertAssignment(ctx, s.db, logger.FromContextOrDefault(ctx, s.logger),
		taskTables, task.Title, task.Description, task.CreatorID, task.AssigneeIDs)
	if err != nil {
		return err
	}
	task.ID = id
	task.CreatedAt = createdAt
	task.AssigneeIDs = lo.Uniq(task.AssigneeIDs)
	return nil
}

// PostgresRouteStore implements the store.RouteStore interface.
type PostgresRouteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresRouteStore creates a new PostgreSQL implementation of the RouteStore interface.
func NewPostgresRouteStore(db *sql.DB, logger *slog.Logger) *PostgresRouteStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRouteStore{
		db:     db,
		logger: logger.With(slog.String("component", "route_store")),
	}
}

var _ store.RouteStore = (*PostgresRouteStore)(nil)

// Create implements store.RouteStore.Create
func (s *PostgresRouteStore) Create(ctx context.Context, route *domain.Route) error {
	if err := route.Validate(); err != nil {
		return err
	}
	id, createdAt, err := insertAssignment(ctx, s.db, logger.FromContextOrDefault(ctx, s.logger),
		routeTables, route.Title, route.Description, route.CreatorID, route.AssigneeIDs)
	if err != nil {
		return err
	}
	route.ID = id
	route.CreatedAt = createdAt
	route.AssigneeIDs = lo.Uniq(route.AssigneeIDs)
	return nil
}
