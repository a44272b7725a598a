package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ALeexsd/jobChat/internal/events"
)

// Bridge turns domain events into realtime notifications.
type Bridge struct {
	hub    *Hub
	logger *slog.Logger
}

// NewBridge creates a bridge delivering through hub.
func NewBridge(hub *Hub, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{hub: hub, logger: logger.With("component", "realtime_bridge")}
}

var _ events.EventHandler = (*Bridge)(nil)

// EventTypes lists the event types the bridge fans out.
func (b *Bridge) EventTypes() []string {
	return []string{
		events.TypeMessageCreated,
		events.TypeMessageUpdated,
		events.TypeMessageDeleted,
		events.TypeTaskAssigned,
		events.TypeRouteAssigned,
	}
}

// HandleEvent implements events.EventHandler. Unrelated event types are ignored.
func (b *Bridge) HandleEvent(ctx context.Context, event *events.Event) error {
	var delivered int
	switch event.Type {
	case events.TypeMessageCreated:
		var p events.MessageCreated
		if err := event.UnmarshalPayload(&p); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Type, err)
		}
		delivered = b.hub.NotifyNewMessage(ctx, p.ChatID, MessageSummary{
			ID:          p.MessageID,
			Content:     p.Content,
			SenderID:    p.SenderID,
			CreatedAt:   p.CreatedAt.UTC(),
			MessageType: p.MessageType,
		})
	case events.TypeMessageUpdated:
		var p events.MessageUpdated
		if err := event.UnmarshalPayload(&p); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Type, err)
		}
		delivered = b.hub.NotifyMessageUpdated(ctx, p.ChatID, p.MessageID, p.Content)
	case events.TypeMessageDeleted:
		var p events.MessageDeleted
		if err := event.UnmarshalPayload(&p); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Type, err)
		}
		delivered = b.hub.NotifyMessageDeleted(ctx, p.ChatID, p.MessageID)
	case events.TypeTaskAssigned:
		var p events.Assigned
		if err := event.UnmarshalPayload(&p); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Type, err)
		}
		delivered = b.hub.NotifyTaskAssigned(ctx, p.ID, p.Title, p.AssignedBy, p.AssigneeIDs...)
	case events.TypeRouteAssigned:
		var p events.Assigned
		if err := event.UnmarshalPayload(&p); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Type, err)
		}
		delivered = b.hub.NotifyRouteAssigned(ctx, p.ID, p.Title, p.AssignedBy, p.AssigneeIDs...)
	default:
		return nil
	}

	b.logger.Debug("event fanned out",
		"event_id", event.ID,
		"event_type", event.Type,
		"delivered", delivered)
	return nil
}
