package api

import (
	"log/slog"
	"net/http"

	"github.com/ALeexsd/jobChat/internal/api/shared"
	"github.com/ALeexsd/jobChat/internal/domain"
	"github.com/ALeexsd/jobChat/internal/events"
	"github.com/ALeexsd/jobChat/internal/platform/logger"
	"github.com/ALeexsd/jobChat/internal/redact"
	"github.com/ALeexsd/jobChat/internal/store"
)

// AssignmentHandler creates tasks and routes and notifies their assignees.
type AssignmentHandler struct {
	tasks   store.TaskStore
	routes  store.RouteStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewAssignmentHandler creates an AssignmentHandler.
func NewAssignmentHandler(
	tasks store.TaskStore,
	routes store.RouteStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *AssignmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentHandler{
		tasks:   tasks,
		routes:  routes,
		emitter: emitter,
		logger:  logger.With(slog.String("component", "assignment_handler")),
	}
}

// CreateTask handles POST /api/tasks.
func (h *AssignmentHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	var req CreateAssignmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   userID,
		AssigneeIDs: req.AssigneeIDs,
	}
	if err := h.tasks.Create(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	h.publish(r, log, events.TypeTaskAssigned, events.Assigned{
		ID:          task.ID,
		Title:       task.Title,
		AssignedBy:  userID,
		AssigneeIDs: task.AssigneeIDs,
	})
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// CreateRoute handles POST /api/routes.
func (h *AssignmentHandler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}
	var req CreateAssignmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	route := &domain.Route{
		Title:       req.Title,
		Description: req.Description,
		CreatorID:   userID,
		AssigneeIDs: req.AssigneeIDs,
	}
	if err := h.routes.Create(r.Context(), route); err != nil {
		HandleAPIError(w, r, err, "Failed to create route")
		return
	}

	h.publish(r, log, events.TypeRouteAssigned, events.Assigned{
		ID:          route.ID,
		Title:       route.Title,
		AssignedBy:  userID,
		AssigneeIDs: route.AssigneeIDs,
	})
	shared.RespondWithJSON(w, r, http.StatusCreated, route)
}

func (h *AssignmentHandler) publish(r *http.Request, log *slog.Logger, eventType string, payload events.Assigned) {
	if err := events.Emit(r.Context(), h.emitter, eventType, payload); err != nil {
		log.Warn("failed to publish event",
			slog.String("event_type", eventType),
			slog.Int64("id", payload.ID),
			slog.String("error", redact.Error(err)))
	}
}
