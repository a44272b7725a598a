package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ALeexsd/jobChat/internal/config"
	"github.com/ALeexsd/jobChat/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeConn records every payload delivered to it.
type fakeConn struct {
	id string

	mu       sync.Mutex
	payloads [][]byte
	attempts int
	err      error
	// block makes Send wait for ctx to expire.
	block bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	c.attempts++
	block, err := c.block, c.err
	c.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.payloads = append(c.payloads, payload)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) failWith(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func (c *fakeConn) sendAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// events decodes every received payload.
func (c *fakeConn) events() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.payloads))
	for _, p := range c.payloads {
		var m map[string]any
		if err := json.Unmarshal(p, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// eventsOfType returns the received events tagged typ.
func (c *fakeConn) eventsOfType(typ string) []map[string]any {
	var out []map[string]any
	for _, e := range c.events() {
		if e["type"] == typ {
			out = append(out, e)
		}
	}
	return out
}

func (c *fakeConn) countOf(typ string) int {
	return len(c.eventsOfType(typ))
}

// fakeTransport is a fakeConn with an inbound frame queue. Closing the
// inbox simulates the client hanging up.
type fakeTransport struct {
	*fakeConn

	inbox     chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	closeMu     sync.Mutex
	closeCode   int
	closeReason string
}

func newFakeTransport(id string) *fakeTransport {
	return &fakeTransport{
		fakeConn: newFakeConn(id),
		inbox:    make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
}

func (t *fakeTransport) Send(ctx context.Context, payload []byte) error {
	select {
	case <-t.closed:
		return ErrConnClosed
	default:
	}
	return t.fakeConn.Send(ctx, payload)
}

func (t *fakeTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case data, ok := <-t.inbox:
		if !ok {
			return nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
		}
		return data, nil
	case <-t.closed:
		return nil, ErrConnClosed
	}
}

func (t *fakeTransport) Close(code int, reason string) error {
	t.closeOnce.Do(func() {
		t.closeMu.Lock()
		t.closeCode, t.closeReason = code, reason
		t.closeMu.Unlock()
		close(t.closed)
	})
	return nil
}

func (t *fakeTransport) closeInfo() (int, string) {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()
	return t.closeCode, t.closeReason
}

func (t *fakeTransport) push(frame string) {
	t.inbox <- []byte(frame)
}

// hangUp simulates the client closing the connection.
func (t *fakeTransport) hangUp() {
	close(t.inbox)
}

var errBadToken = errors.New("bad token")

type fakeVerifier map[string]int64

func (v fakeVerifier) VerifyToken(_ context.Context, token string) (int64, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return 0, errBadToken
}

type fakeMemberships struct {
	byUser map[int64][]int64
	err    error
}

func (m *fakeMemberships) ConversationIDs(_ context.Context, userID int64) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byUser[userID], nil
}

type statusCall struct {
	userID int64
	status domain.UserStatus
}

type fakeStatus struct {
	mu    sync.Mutex
	calls []statusCall
	err   error
}

func (s *fakeStatus) SetUserStatus(_ context.Context, userID int64, status domain.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, statusCall{userID: userID, status: status})
	return s.err
}

func (s *fakeStatus) recorded() []statusCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]statusCall(nil), s.calls...)
}

var testClock = time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)

type hubFixture struct {
	hub         *Hub
	registry    *Registry
	memberships *fakeMemberships
	status      *fakeStatus
}

func newHubFixture(t *testing.T, tokens fakeVerifier, convs map[int64][]int64) *hubFixture {
	t.Helper()
	f := &hubFixture{
		registry:    NewRegistry(discardLogger(), time.Second),
		memberships: &fakeMemberships{byUser: convs},
		status:      &fakeStatus{},
	}
	f.hub = NewHub(f.registry, tokens, f.memberships, f.status, config.RealtimeConfig{}, discardLogger())
	f.hub.now = func() time.Time { return testClock }
	return f
}

// connect starts a session for token and waits until it is active.
func (f *hubFixture) connect(t *testing.T, id, token string) (*fakeTransport, <-chan struct{}) {
	t.Helper()
	tr := newFakeTransport(id)
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.hub.Serve(context.Background(), tr, token)
	}()
	require.Eventually(t, func() bool { return tr.countOf(TypeConnected) == 1 },
		time.Second, 5*time.Millisecond, "session %s never became active", id)
	return tr, done
}

func waitClosed(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish")
	}
}
