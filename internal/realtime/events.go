package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrMalformedEvent is returned for a client frame that is not a JSON
	// object with a type tag, or whose fields fail validation.
	ErrMalformedEvent = errors.New("malformed client event")

	// ErrUnknownEvent is returned for a client frame with an unrecognized type tag.
	ErrUnknownEvent = errors.New("unknown client event type")
)

// Server event tags.
const (
	TypeConnected      = "connected"
	TypePong           = "pong"
	TypeTyping         = "typing"
	TypeNewMessage     = "new_message"
	TypeMessageUpdated = "message_updated"
	TypeMessageDeleted = "message_deleted"
	TypeUserStatus     = "user_status"
	TypeUserOffline    = "user_offline"
	TypeTaskAssigned   = "task_assigned"
	TypeRouteAssigned  = "route_assigned"
	TypeMessagesRead   = "messages_read"
)

// Client event tags.
const (
	TypePing         = "ping"
	TypeJoinChat     = "join_chat"
	TypeLeaveChat    = "leave_chat"
	TypeStatus       = "status"
	TypeReadMessages = "read_messages"
)

// Timestamp formats t as the RFC 3339 UTC string carried by every server event.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ConnectedEvent confirms an authenticated connection to its owner.
type ConnectedEvent struct {
	Type      string `json:"type"`
	UserID    int64  `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// PongEvent answers a client ping.
type PongEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// TypingEvent relays a typing indicator to a chat.
type TypingEvent struct {
	Type      string `json:"type"`
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
	IsTyping  bool   `json:"is_typing"`
	Timestamp string `json:"timestamp"`
}

// MessageSummary is the message body embedded in NewMessageEvent.
type MessageSummary struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	SenderID    int64     `json:"sender_id"`
	CreatedAt   time.Time `json:"created_at"`
	MessageType string    `json:"message_type"`
}

// NewMessageEvent announces a persisted chat message.
type NewMessageEvent struct {
	Type      string         `json:"type"`
	ChatID    int64          `json:"chat_id"`
	Message   MessageSummary `json:"message"`
	Timestamp string         `json:"timestamp"`
}

// MessageUpdatedEvent announces an edited message.
type MessageUpdatedEvent struct {
	Type      string `json:"type"`
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// MessageDeletedEvent announces a deleted message.
type MessageDeletedEvent struct {
	Type      string `json:"type"`
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Timestamp string `json:"timestamp"`
}

// UserStatusEvent announces a presence status change.
type UserStatusEvent struct {
	Type      string `json:"type"`
	UserID    int64  `json:"user_id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// UserOfflineEvent announces that a user's last connection closed.
type UserOfflineEvent struct {
	Type      string `json:"type"`
	UserID    int64  `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// TaskAssignedEvent notifies an assignee of a new task.
type TaskAssignedEvent struct {
	Type       string `json:"type"`
	TaskID     int64  `json:"task_id"`
	TaskTitle  string `json:"task_title"`
	AssignedBy int64  `json:"assigned_by"`
	Timestamp  string `json:"timestamp"`
}

// RouteAssignedEvent notifies an assignee of a new route.
type RouteAssignedEvent struct {
	Type       string `json:"type"`
	RouteID    int64  `json:"route_id"`
	RouteTitle string `json:"route_title"`
	AssignedBy int64  `json:"assigned_by"`
	Timestamp  string `json:"timestamp"`
}

// MessagesReadEvent announces that a user read a chat.
type MessagesReadEvent struct {
	Type      string `json:"type"`
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// Encode serializes a server event.
func Encode(event any) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", event, err)
	}
	return payload, nil
}

// ClientEvent is one decoded client frame. The concrete type identifies the tag.
type ClientEvent interface {
	clientEvent()
}

// Ping asks for a pong.
type Ping struct{}

// Typing toggles the sender's typing indicator in a chat.
type Typing struct {
	ChatID int64 `json:"chat_id" validate:"required,gt=0"`
	// IsTyping defaults to true when absent.
	IsTyping *bool `json:"is_typing"`
}

// Active returns IsTyping with its default applied.
func (t Typing) Active() bool {
	return t.IsTyping == nil || *t.IsTyping
}

// JoinChat adds the sender to a chat's fan-out membership.
type JoinChat struct {
	ChatID int64 `json:"chat_id" validate:"required,gt=0"`
}

// LeaveChat removes the sender from a chat's fan-out membership.
type LeaveChat struct {
	ChatID int64 `json:"chat_id" validate:"required,gt=0"`
}

// StatusChange broadcasts a new presence status for the sender.
type StatusChange struct {
	Status string `json:"status" validate:"required,oneof=online offline away"`
}

// ReadMessages marks a chat as read by the sender.
type ReadMessages struct {
	ChatID int64 `json:"chat_id" validate:"required,gt=0"`
}

func (Ping) clientEvent()         {}
func (Typing) clientEvent()       {}
func (JoinChat) clientEvent()     {}
func (LeaveChat) clientEvent()    {}
func (StatusChange) clientEvent() {}
func (ReadMessages) clientEvent() {}

var validate = validator.New(validator.WithRequiredStructEnabled())

type envelope struct {
	Type string `json:"type"`
}

// DecodeClientEvent parses one client frame. It returns ErrMalformedEvent or
// ErrUnknownEvent (wrapped with detail) when the frame cannot be handled.
func DecodeClientEvent(data []byte) (ClientEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}

	var event ClientEvent
	switch env.Type {
	case TypePing:
		return Ping{}, nil
	case TypeTyping:
		var e Typing
		if err := decodeInto(data, &e); err != nil {
			return nil, err
		}
		event = e
	case TypeJoinChat:
		var e JoinChat
		if err := decodeInto(data, &e); err != nil {
			return nil, err
		}
		event = e
	case TypeLeaveChat:
		var e LeaveChat
		if err := decodeInto(data, &e); err != nil {
			return nil, err
		}
		event = e
	case TypeStatus:
		var e StatusChange
		if err := decodeInto(data, &e); err != nil {
			return nil, err
		}
		event = e
	case TypeReadMessages:
		var e ReadMessages
		if err := decodeInto(data, &e); err != nil {
			return nil, err
		}
		event = e
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
	return event, nil
}

func decodeInto(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}
