package domain

import (
	"fmt"
	"strings"
	"time"
)

// MessageType classifies message content.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
	MessageTypeVoice MessageType = "voice"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeVoice:
		return true
	}
	return false
}

// Message is a chat message.
type Message struct {
	ID        int64       `json:"id"`
	ChatID    int64       `json:"chat_id"`
	SenderID  int64       `json:"sender_id"`
	Content   string      `json:"content"`
	Type      MessageType `json:"message_type"`
	ReplyToID *int64      `json:"reply_to_id,omitempty"`
	IsEdited  bool        `json:"is_edited"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewMessage builds a validated, unsaved message. An empty type defaults to text.
func NewMessage(chatID, senderID int64, content string, msgType MessageType, replyToID *int64) (*Message, error) {
	if msgType == "" {
		msgType = MessageTypeText
	}
	m := &Message{
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		Type:      msgType,
		ReplyToID: replyToID,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the message fields that do not need the database.
func (m *Message) Validate() error {
	if m.ChatID <= 0 {
		return fmt.Errorf("%w: chat id", ErrInvalidID)
	}
	if m.SenderID <= 0 {
		return fmt.Errorf("%w: sender id", ErrInvalidID)
	}
	if !m.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMessageType, m.Type)
	}
	if m.Type == MessageTypeText && strings.TrimSpace(m.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}
