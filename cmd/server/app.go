package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/ALeexsd/jobChat/internal/config"
	"github.com/ALeexsd/jobChat/internal/events"
	"github.com/ALeexsd/jobChat/internal/platform/postgres"
	"github.com/ALeexsd/jobChat/internal/realtime"
	"github.com/ALeexsd/jobChat/internal/service/auth"
	"github.com/ALeexsd/jobChat/internal/store"
)

// application holds the shared dependencies of the server so they can be
// wired once and released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore    store.UserStore
	chatStore    store.ChatStore
	messageStore store.MessageStore
	taskStore    store.TaskStore
	routeStore   store.RouteStore

	// memberships and statuses feed the realtime hub
	memberships realtime.MembershipSource
	statuses    realtime.StatusRecorder

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	eventEmitter *events.InMemoryEventEmitter
	registry     *realtime.Registry
	hub          *realtime.Hub
}

// newApplication creates the postgres stores over db and wires the rest of
// the application on top of them.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	users := postgres.NewPostgresUserStore(db, logger)
	chats := postgres.NewPostgresChatStore(db, logger)

	app := &application{
		config:       cfg,
		logger:       logger,
		db:           db,
		userStore:    users,
		chatStore:    chats,
		messageStore: postgres.NewPostgresMessageStore(db, logger),
		taskStore:    postgres.NewPostgresTaskStore(db, logger),
		routeStore:   postgres.NewPostgresRouteStore(db, logger),
		memberships:  chats,
		statuses:     users,
	}
	if err := app.wire(); err != nil {
		return nil, err
	}
	return app, nil
}

// wire builds the services, the event emitter and the realtime hub from
// the stores already set on app.
func (app *application) wire() error {
	if app.jwtService == nil {
		svc, err := auth.NewJWTService(app.config.Auth)
		if err != nil {
			return fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		app.jwtService = svc
		app.logger.Info("JWT authentication service initialized",
			"token_lifetime_minutes", app.config.Auth.TokenLifetimeMinutes)
	}
	if app.passwordVerifier == nil {
		app.passwordVerifier = auth.NewBcryptVerifier()
	}

	app.registry = realtime.NewRegistry(app.logger, app.config.Realtime.SendTimeout)
	app.hub = realtime.NewHub(
		app.registry,
		auth.NewVerifier(app.jwtService),
		app.memberships,
		app.statuses,
		app.config.Realtime,
		app.logger,
	)

	// REST handlers publish domain events; the bridge turns them into
	// websocket notifications.
	app.eventEmitter = events.NewInMemoryEventEmitter(app.logger)
	bridge := realtime.NewBridge(app.hub, app.logger)
	app.eventEmitter.RegisterHandler(bridge, bridge.EventTypes()...)
	return nil
}

// cleanup releases the resources owned by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
