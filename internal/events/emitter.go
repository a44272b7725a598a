package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/ALeexsd/jobChat/internal/redact"
)

// InMemoryEventEmitter dispatches events synchronously to handlers
// subscribed to their type, and to handlers subscribed to every type.
type InMemoryEventEmitter struct {
	mu     sync.RWMutex
	all    []EventHandler
	byType map[string][]EventHandler
	logger *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no handlers.
// A nil logger falls back to the default logger.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		byType: make(map[string][]EventHandler),
		logger: logger.With("component", "event_emitter"),
	}
}

// RegisterHandler subscribes handler to the given event types, or to every
// event when no type is given.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler, eventTypes ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(eventTypes) == 0 {
		e.all = append(e.all, handler)
	}
	for _, t := range eventTypes {
		e.byType[t] = append(e.byType[t], handler)
	}
	e.logger.Debug("registered event handler", "event_types", eventTypes)
}

// HandlerCount reports how many handlers an event of eventType reaches.
func (e *InMemoryEventEmitter) HandlerCount(eventType string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.all) + len(e.byType[eventType])
}

// EmitEvent runs every handler for event in registration order, type
// subscribers after catch-all ones. A failing handler does not stop the
// rest; all failures are returned joined.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := make([]EventHandler, 0, len(e.all)+len(e.byType[event.Type]))
	handlers = append(handlers, e.all...)
	handlers = append(handlers, e.byType[event.Type]...)
	e.mu.RUnlock()

	log := e.logger.With("event_id", event.ID, "event_type", event.Type)
	if len(handlers) == 0 {
		log.Debug("no handlers subscribed to event")
		return nil
	}

	var errs []error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.Error("handler failed to process event",
				"handler_index", i,
				"error", redact.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
