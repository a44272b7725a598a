package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ALeexsd/jobChat/internal/config"
	"github.com/ALeexsd/jobChat/internal/domain"
	"github.com/gorilla/websocket"
)

// TokenVerifier resolves an access token to a user id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (int64, error)
}

// MembershipSource lists the conversations a user belongs to.
type MembershipSource interface {
	ConversationIDs(ctx context.Context, userID int64) ([]int64, error)
}

// StatusRecorder persists a user's presence status.
type StatusRecorder interface {
	SetUserStatus(ctx context.Context, userID int64, status domain.UserStatus) error
}

type noMemberships struct{}

func (noMemberships) ConversationIDs(context.Context, int64) ([]int64, error) { return nil, nil }

type noStatus struct{}

func (noStatus) SetUserStatus(context.Context, int64, domain.UserStatus) error { return nil }

// Hub accepts websocket connections at its HTTP handler, runs one Session
// per connection and exposes fan-out to the rest of the application.
type Hub struct {
	registry    *Registry
	verifier    TokenVerifier
	memberships MembershipSource
	status      StatusRecorder
	cfg         config.RealtimeConfig
	upgrader    websocket.Upgrader
	logger      *slog.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewHub wires a hub. A nil memberships source seeds no conversations and a
// nil status recorder persists nothing.
func NewHub(
	registry *Registry,
	verifier TokenVerifier,
	memberships MembershipSource,
	status StatusRecorder,
	cfg config.RealtimeConfig,
	logger *slog.Logger,
) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if memberships == nil {
		memberships = noMemberships{}
	}
	if status == nil {
		status = noStatus{}
	}
	return &Hub{
		registry:    registry,
		verifier:    verifier,
		memberships: memberships,
		status:      status,
		cfg:         cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients are served from other origins; the token
			// authenticates the connection.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:   logger.With("component", "realtime_hub"),
		now:      time.Now,
		sessions: make(map[*Session]struct{}),
	}
}

// Registry returns the registry the hub delivers through.
func (h *Hub) Registry() *Registry {
	return h.registry
}

func (h *Hub) timestamp() string {
	return Timestamp(h.now())
}

// ServeHTTP upgrades the request and runs the session protocol with the
// token query parameter. It returns when the session has closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.isClosed() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error response.
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	transport := newWSTransport(ws, h.cfg, h.logger)
	h.Serve(r.Context(), transport, r.URL.Query().Get("token"))
}

// Serve runs a session over an accepted transport. It is the entry point
// for transports other than the built-in websocket one.
func (h *Hub) Serve(ctx context.Context, transport Transport, token string) {
	s := newSession(h, transport)
	if !h.track(s) {
		_ = transport.Close(websocket.CloseGoingAway, "server shutting down")
		return
	}
	defer h.untrack(s)

	s.Run(ctx, token)
}

func (h *Hub) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *Hub) track(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Hub) untrack(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
	h.wg.Done()
}

// Shutdown stops accepting connections, closes every live session with
// 1001 going away and waits for their cleanup, or for ctx to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	h.logger.Info("shutting down realtime hub", "sessions", len(sessions))
	for _, s := range sessions {
		if err := s.transport.Close(websocket.CloseGoingAway, "server shutting down"); err != nil {
			h.logger.Debug("failed to close session", "conn_id", s.transport.ID(), "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("realtime hub stopped")
		return nil
	case <-ctx.Done():
		h.logger.Warn("realtime hub shutdown timed out")
		return ctx.Err()
	}
}

// broadcast encodes event and delivers it to target.
func (h *Hub) broadcast(ctx context.Context, event any, target Target) int {
	payload, err := Encode(event)
	if err != nil {
		h.logger.Error("failed to encode event", "error", err)
		return 0
	}
	return h.Notify(ctx, payload, target)
}

// broadcastMany delivers event once per member of the union of convs.
func (h *Hub) broadcastMany(ctx context.Context, event any, convs []int64, excludeUserID int64) int {
	if len(convs) == 0 {
		return 0
	}
	payload, err := Encode(event)
	if err != nil {
		h.logger.Error("failed to encode event", "error", err)
		return 0
	}
	return h.registry.BroadcastToConversations(ctx, payload, convs, excludeUserID)
}

// broadcastStatus announces a user's status to the members of convs other
// than the user.
func (h *Hub) broadcastStatus(ctx context.Context, userID int64, status string, convs []int64) int {
	return h.broadcastMany(ctx, UserStatusEvent{
		Type:      TypeUserStatus,
		UserID:    userID,
		Status:    status,
		Timestamp: h.timestamp(),
	}, convs, userID)
}
