package domain

import "time"

// ChatType distinguishes one-to-one conversations from group chats.
type ChatType string

const (
	ChatTypePrivate ChatType = "private"
	ChatTypeGroup   ChatType = "group"
)

// ChatMemberRole is a member's role inside one chat.
type ChatMemberRole string

const (
	ChatMemberOwner  ChatMemberRole = "owner"
	ChatMemberAdmin  ChatMemberRole = "admin"
	ChatMemberMember ChatMemberRole = "member"
)

// Chat is a conversation that scopes fan-out of typing, read and message events.
type Chat struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name,omitempty"`
	Type      ChatType  `json:"chat_type"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMember links a user to a chat.
type ChatMember struct {
	ChatID   int64          `json:"chat_id"`
	UserID   int64          `json:"user_id"`
	Role     ChatMemberRole `json:"role"`
	JoinedAt time.Time      `json:"joined_at"`
}
