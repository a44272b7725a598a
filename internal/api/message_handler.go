package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ALeexsd/jobChat/internal/api/shared"
	"github.com/ALeexsd/jobChat/internal/domain"
	"github.com/ALeexsd/jobChat/internal/events"
	"github.com/ALeexsd/jobChat/internal/platform/logger"
	"github.com/ALeexsd/jobChat/internal/redact"
	"github.com/ALeexsd/jobChat/internal/store"
)

// MessageHandler handles chat message requests. Every change is published on
// the event emitter so connected clients are notified.
type MessageHandler struct {
	chats    store.ChatStore
	messages store.MessageStore
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(
	chats store.ChatStore,
	messages store.MessageStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *MessageHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageHandler{
		chats:    chats,
		messages: messages,
		emitter:  emitter,
		logger:   logger.With(slog.String("component", "message_handler")),
	}
}

// Create handles POST /api/messages.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	member, err := h.chats.IsMember(r.Context(), req.ChatID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to check chat membership")
		return
	}
	if !member {
		HandleAPIError(w, r, store.ErrNotChatMember, "")
		return
	}

	msg, err := domain.NewMessage(req.ChatID, userID, req.Content, domain.MessageType(req.MessageType), req.ReplyToID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := h.messages.Create(r.Context(), msg); err != nil {
		HandleAPIError(w, r, err, "Failed to create message")
		return
	}

	h.emit(r.Context(), log, events.TypeMessageCreated, events.MessageCreated{
		ChatID:      msg.ChatID,
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		Content:     msg.Content,
		MessageType: string(msg.Type),
		CreatedAt:   msg.CreatedAt,
	})

	log.Debug("message created",
		slog.Int64("chat_id", msg.ChatID),
		slog.Int64("message_id", msg.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, msg)
}

// Update handles PUT /api/messages/{id}. Only the sender may edit.
func (h *MessageHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, messageID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, ok := h.loadOwned(w, r, log, userID, messageID); !ok {
		return
	}

	updated, err := h.messages.UpdateContent(r.Context(), messageID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update message")
		return
	}

	h.emit(r.Context(), log, events.TypeMessageUpdated, events.MessageUpdated{
		ChatID:    updated.ChatID,
		MessageID: updated.ID,
		Content:   updated.Content,
	})
	shared.RespondWithJSON(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /api/messages/{id}. Only the sender may delete.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, messageID, ok := handleUserIDAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	msg, ok := h.loadOwned(w, r, log, userID, messageID)
	if !ok {
		return
	}

	if err := h.messages.Delete(r.Context(), messageID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete message")
		return
	}

	h.emit(r.Context(), log, events.TypeMessageDeleted, events.MessageDeleted{
		ChatID:    msg.ChatID,
		MessageID: msg.ID,
	})
	w.WriteHeader(http.StatusNoContent)
}

// loadOwned fetches the message and checks that userID sent it.
func (h *MessageHandler) loadOwned(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	userID, messageID int64,
) (*domain.Message, bool) {
	msg, err := h.messages.GetByID(r.Context(), messageID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load message")
		return nil, false
	}
	if msg.SenderID != userID {
		log.Warn("message change refused for non-sender",
			slog.Int64("message_id", messageID),
			slog.Int64("sender_id", msg.SenderID))
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return nil, false
	}
	return msg, true
}

// emit publishes an event. The change is already persisted, so a failure is
// logged and the request still succeeds.
func (h *MessageHandler) emit(ctx context.Context, log *slog.Logger, eventType string, payload interface{}) {
	if err := events.Emit(ctx, h.emitter, eventType, payload); err != nil {
		log.Warn("failed to publish event",
			slog.String("event_type", eventType),
			slog.String("error", redact.Error(err)))
	}
}
