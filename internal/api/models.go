package api

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

// AuthResponse defines the successful response of the login endpoint.
type AuthResponse struct {
	UserID int64 `json:"user_id"`

	// AccessToken is the JWT used both as the REST Bearer token and as the
	// websocket token query parameter.
	AccessToken string `json:"token"`

	// ExpiresAt is the RFC 3339 time the access token expires.
	ExpiresAt string `json:"expires_at"`
}

// OnlineUsersResponse lists the users with a live websocket connection.
type OnlineUsersResponse struct {
	UserIDs []int64 `json:"user_ids"`
}

// CreateMessageRequest defines the payload for posting a chat message.
type CreateMessageRequest struct {
	ChatID      int64  `json:"chat_id"      validate:"required,gt=0"`
	Content     string `json:"content"      validate:"max=10000"`
	MessageType string `json:"message_type" validate:"omitempty,oneof=text image file voice"`
	ReplyToID   *int64 `json:"reply_to_id"  validate:"omitempty,gt=0"`
}

// UpdateMessageRequest defines the payload for editing a chat message.
type UpdateMessageRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// CreateAssignmentRequest defines the payload for creating a task or a route.
type CreateAssignmentRequest struct {
	Title       string  `json:"title"        validate:"required,max=200"`
	Description string  `json:"description"  validate:"max=5000"`
	AssigneeIDs []int64 `json:"assignee_ids" validate:"required,min=1,dive,gt=0"`
}
