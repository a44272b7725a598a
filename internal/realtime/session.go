package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/ALeexsd/jobChat/internal/domain"
	"github.com/ALeexsd/jobChat/internal/redact"
	"github.com/gorilla/websocket"
)

// State is the lifecycle position of one session.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticating
	StateActive
	StateClosing
	StateClosed
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateActive:
		return "ACTIVE"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	case StateRejected:
		return "REJECTED"
	}
	return "UNKNOWN"
}

// Close reasons sent with a policy violation.
const (
	ReasonNoToken      = "No token provided"
	ReasonInvalidToken = "Invalid token"
)

// Transport is the network side of one accepted connection. It is a Conn
// the registry can deliver to, plus the inbound frame stream.
type Transport interface {
	Conn

	// Receive blocks for the next inbound text frame. It returns an error
	// once the connection is closed from either side. Implementations may
	// ignore ctx; the hub stops pending reads through Close.
	Receive(ctx context.Context) ([]byte, error)

	// Close sends a close frame with code and reason and releases the
	// connection. Calls after the first are no-ops.
	Close(code int, reason string) error
}

// Session runs the protocol for one connection: authentication, presence
// registration, the ordered receive loop and cleanup.
type Session struct {
	hub       *Hub
	transport Transport
	state     atomic.Int32
	userID    atomic.Int64
	logger    *slog.Logger
}

func newSession(hub *Hub, transport Transport) *Session {
	s := &Session{
		hub:       hub,
		transport: transport,
		logger:    hub.logger.With("conn_id", transport.ID()),
	}
	s.state.Store(int32(StateConnecting))
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// UserID returns the authenticated user, or 0 before authentication.
func (s *Session) UserID() int64 {
	return s.userID.Load()
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	s.logger.Debug("session state changed", "state", st.String())
}

// Run authenticates token and, when accepted, serves the connection until it
// closes. It returns after cleanup has finished.
func (s *Session) Run(ctx context.Context, token string) {
	s.setState(StateAuthenticating)
	s.logger.Info("websocket connection attempt", "token", redact.TokenPreview(token))

	if token == "" {
		s.reject(ReasonNoToken)
		return
	}
	userID, err := s.hub.verifier.VerifyToken(ctx, token)
	if err != nil || userID <= 0 {
		s.logger.Warn("websocket token rejected", "error", redact.Error(err))
		s.reject(ReasonInvalidToken)
		return
	}

	s.userID.Store(userID)
	s.logger = s.logger.With("user_id", userID)

	s.activate(ctx)
	s.receiveLoop(ctx)
	s.cleanup(context.WithoutCancel(ctx))
}

func (s *Session) reject(reason string) {
	if err := s.transport.Close(websocket.ClosePolicyViolation, reason); err != nil {
		s.logger.Debug("failed to send close frame", "error", err)
	}
	s.setState(StateRejected)
}

func (s *Session) activate(ctx context.Context) {
	h, userID := s.hub, s.userID.Load()
	first := h.registry.Register(userID, s.transport)
	s.setState(StateActive)

	convs, err := h.memberships.ConversationIDs(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load conversations, continuing with none", "error", redact.Error(err))
		convs = nil
	}
	h.registry.JoinConversations(userID, convs...)

	if first {
		if err := h.status.SetUserStatus(ctx, userID, domain.UserStatusOnline); err != nil {
			s.logger.Warn("failed to record online status", "error", redact.Error(err))
		}
	}

	s.reply(ctx, ConnectedEvent{Type: TypeConnected, UserID: userID, Timestamp: h.timestamp()})

	if first {
		h.broadcastStatus(ctx, userID, string(domain.UserStatusOnline), h.registry.ConversationsOf(userID))
	}

	s.logger.Info("websocket session active",
		"first_connection", first,
		"conversations", len(convs))
}

// reply sends an event to this connection only.
func (s *Session) reply(ctx context.Context, event any) {
	payload, err := Encode(event)
	if err != nil {
		s.logger.Error("failed to encode event", "error", err)
		return
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.hub.registry.sendTimeout)
	defer cancel()
	if err := s.transport.Send(sendCtx, payload); err != nil {
		s.logger.Warn("failed to send to connection", "error", err)
	}
}

func (s *Session) receiveLoop(ctx context.Context) {
	for {
		data, err := s.transport.Receive(ctx)
		if err != nil {
			var closeErr *websocket.CloseError
			switch {
			case errors.Is(err, ErrConnClosed):
				s.logger.Debug("connection closed locally")
			case errors.As(err, &closeErr):
				s.logger.Debug("client closed connection", "code", closeErr.Code)
			default:
				s.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		s.handle(ctx, data)
	}
}

func (s *Session) handle(ctx context.Context, data []byte) {
	h, userID := s.hub, s.userID.Load()
	event, err := DecodeClientEvent(data)
	if err != nil {
		if errors.Is(err, ErrUnknownEvent) {
			s.logger.Warn("ignoring unknown client event", "error", err)
		} else {
			s.logger.Info("ignoring malformed client event", "error", err)
		}
		return
	}

	switch e := event.(type) {
	case Ping:
		s.reply(ctx, PongEvent{Type: TypePong, Timestamp: h.timestamp()})
	case Typing:
		h.broadcast(ctx, TypingEvent{
			Type:      TypeTyping,
			ChatID:    e.ChatID,
			UserID:    userID,
			IsTyping:  e.Active(),
			Timestamp: h.timestamp(),
		}, ToConversation(e.ChatID, userID))
	case JoinChat:
		h.registry.JoinConversation(userID, e.ChatID)
		s.logger.Info("joined chat", "chat_id", e.ChatID)
	case LeaveChat:
		h.registry.LeaveConversation(userID, e.ChatID)
		s.logger.Info("left chat", "chat_id", e.ChatID)
	case StatusChange:
		h.broadcastStatus(ctx, userID, e.Status, h.registry.ConversationsOf(userID))
	case ReadMessages:
		h.broadcast(ctx, MessagesReadEvent{
			Type:      TypeMessagesRead,
			ChatID:    e.ChatID,
			UserID:    userID,
			Timestamp: h.timestamp(),
		}, ToConversation(e.ChatID, 0))
	}
}

// cleanup deregisters the connection and, when it was the user's last one,
// records and announces the offline transition.
func (s *Session) cleanup(ctx context.Context) {
	s.setState(StateClosing)
	h, userID := s.hub, s.userID.Load()

	if err := s.transport.Close(websocket.CloseNormalClosure, ""); err != nil {
		s.logger.Debug("failed to close transport", "error", err)
	}

	departure := h.registry.Deregister(userID, s.transport)
	if departure.Offline {
		if err := h.status.SetUserStatus(ctx, userID, domain.UserStatusOffline); err != nil {
			s.logger.Warn("failed to record offline status", "error", redact.Error(err))
		}
		h.broadcastStatus(ctx, userID, string(domain.UserStatusOffline), departure.Conversations)
		h.broadcastMany(ctx, UserOfflineEvent{
			Type:      TypeUserOffline,
			UserID:    userID,
			Timestamp: h.timestamp(),
		}, departure.Conversations, 0)
	}

	s.setState(StateClosed)
	s.logger.Info("websocket session closed", "offline", departure.Offline)
}
