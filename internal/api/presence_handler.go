package api

import (
	"net/http"

	"github.com/ALeexsd/jobChat/internal/api/shared"
)

// OnlineLister reports the users with a live websocket connection.
type OnlineLister interface {
	OnlineUsers() []int64
}

// PresenceHandler serves presence queries.
type PresenceHandler struct {
	presence OnlineLister
}

// NewPresenceHandler creates a PresenceHandler reading from presence.
func NewPresenceHandler(presence OnlineLister) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

// OnlineUsers handles GET /api/users/online.
func (h *PresenceHandler) OnlineUsers(w http.ResponseWriter, r *http.Request) {
	ids := h.presence.OnlineUsers()
	if ids == nil {
		ids = []int64{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, OnlineUsersResponse{UserIDs: ids})
}
