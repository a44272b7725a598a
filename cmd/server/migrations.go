package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ALeexsd/jobChat/internal/config"
	"github.com/ALeexsd/jobChat/internal/platform/postgres"
)

// handleMigrations opens its own connection and runs one goose command
// against the embedded schema.
func handleMigrations(ctx context.Context, cfg *config.Config, l *slog.Logger, command string) error {
	db, err := setupAppDatabase(ctx, cfg.Database, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("error closing migration connection", "error", err)
		}
	}()

	l.Info("Executing migrations", "command", command)
	if err := postgres.Migrate(ctx, db, l, command); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
