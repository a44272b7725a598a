package main

import (
	"net/http"

	"github.com/ALeexsd/jobChat/internal/api"
	apiMiddleware "github.com/ALeexsd/jobChat/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	presenceHandler := api.NewPresenceHandler(app.registry)
	messageHandler := api.NewMessageHandler(app.chatStore, app.messageStore, app.eventEmitter, app.logger)
	assignmentHandler := api.NewAssignmentHandler(app.taskStore, app.routeStore, app.eventEmitter, app.logger)

	// The websocket authenticates with its token query parameter after the
	// upgrade, so it stays outside the Bearer-protected group.
	r.Handle("/ws", app.hub)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/online", presenceHandler.OnlineUsers)

			r.Post("/messages", messageHandler.Create)
			r.Put("/messages/{id}", messageHandler.Update)
			r.Delete("/messages/{id}", messageHandler.Delete)

			r.Post("/tasks", assignmentHandler.CreateTask)
			r.Post("/routes", assignmentHandler.CreateRoute)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
