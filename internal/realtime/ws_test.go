package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ALeexsd/jobChat/internal/config"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, f *hubFixture) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f.hub)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return websocket.DefaultDialer.Dial(url, nil)
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event map[string]any
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func readCloseError(t *testing.T, conn *websocket.Conn) *websocket.CloseError {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, _, err := conn.ReadMessage()
		if err == nil {
			continue
		}
		var closeErr *websocket.CloseError
		require.True(t, errors.As(err, &closeErr), "expected close frame, got %v", err)
		return closeErr
	}
}

func TestWebSocket_EndToEnd(t *testing.T) {
	t.Parallel()

	f := newHubFixture(t, testTokens, map[int64][]int64{1: {1}, 2: {1}})
	srv := startServer(t, f)

	a, _, err := dial(t, srv, tokenA)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, TypeConnected, readEvent(t, a)["type"])

	b, _, err := dial(t, srv, tokenB)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, TypeConnected, readEvent(t, b)["type"])

	online := readEvent(t, a)
	assert.Equal(t, TypeUserStatus, online["type"])
	assert.Equal(t, float64(2), online["user_id"])

	require.NoError(t, b.WriteMessage(websocket.TextMessage, []byte(`{"type":"typing","chat_id":1}`)))
	typing := readEvent(t, a)
	assert.Equal(t, TypeTyping, typing["type"])
	assert.Equal(t, float64(2), typing["user_id"])

	require.NoError(t, a.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, TypePong, readEvent(t, a)["type"])

	require.NoError(t, b.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	require.Equal(t, TypeUserStatus, readEvent(t, a)["type"])
	offline := readEvent(t, a)
	assert.Equal(t, TypeUserOffline, offline["type"])
	assert.Equal(t, float64(2), offline["user_id"])
	assert.False(t, f.registry.IsOnline(2))
}

func TestWebSocket_RejectsBadTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token      string
		wantReason string
	}{
		{name: "missing", token: "", wantReason: ReasonNoToken},
		{name: "invalid", token: "nope", wantReason: ReasonInvalidToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newHubFixture(t, testTokens, nil)
			srv := startServer(t, f)

			conn, resp, err := dial(t, srv, tc.token)
			require.NoError(t, err, "the upgrade completes before authentication")
			defer conn.Close()
			assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

			closeErr := readCloseError(t, conn)
			assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
			assert.Equal(t, tc.wantReason, closeErr.Text)
			assert.Empty(t, f.registry.OnlineUsers())
		})
	}
}

func TestHub_Shutdown(t *testing.T) {
	t.Parallel()

	f := newHubFixture(t, testTokens, nil)
	srv := startServer(t, f)

	conn, _, err := dial(t, srv, tokenA)
	require.NoError(t, err)
	defer conn.Close()
	readEvent(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.hub.Shutdown(ctx))

	closeErr := readCloseError(t, conn)
	assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)
	assert.False(t, f.registry.IsOnline(1), "sessions are cleaned up before Shutdown returns")

	_, resp, err := dial(t, srv, tokenA)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHub_ServeAfterShutdown(t *testing.T) {
	t.Parallel()

	f := newHubFixture(t, testTokens, nil)
	require.NoError(t, f.hub.Shutdown(context.Background()))

	tr := newFakeTransport("late")
	f.hub.Serve(context.Background(), tr, tokenA)

	code, _ := tr.closeInfo()
	assert.Equal(t, websocket.CloseGoingAway, code)
	assert.False(t, f.registry.IsOnline(1))
}

func TestHub_ShutdownTimeout(t *testing.T) {
	t.Parallel()

	f := newHubFixture(t, testTokens, nil)
	// A transport whose Close does not unblock Receive keeps its session alive.
	tr := &stuckTransport{fakeTransport: newFakeTransport("stuck")}
	go f.hub.Serve(context.Background(), tr, tokenA)
	require.Eventually(t, func() bool { return f.registry.IsOnline(1) }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.hub.Shutdown(ctx), context.DeadlineExceeded)

	tr.hangUp()
}

type stuckTransport struct {
	*fakeTransport
}

func (t *stuckTransport) Receive(ctx context.Context) ([]byte, error) {
	data, ok := <-t.inbox
	if !ok {
		return nil, ErrConnClosed
	}
	return data, nil
}

func TestWSTransport_SendAfterClose(t *testing.T) {
	t.Parallel()

	accepted := make(chan *wsTransport, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{}
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- newWSTransport(ws, config.RealtimeConfig{SendBuffer: 4}, discardLogger())
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	tr := <-accepted
	assert.NotEmpty(t, tr.ID())

	require.NoError(t, tr.Send(context.Background(), []byte(`{"type":"pong"}`)))
	assert.Equal(t, TypePong, readEvent(t, client)["type"])

	require.NoError(t, tr.Close(websocket.CloseNormalClosure, "bye"))
	assert.ErrorIs(t, tr.Send(context.Background(), []byte(`{}`)), ErrConnClosed)
	assert.NoError(t, tr.Close(websocket.CloseNormalClosure, "again"), "second close is a no-op")

	_, err = tr.Receive(context.Background())
	assert.ErrorIs(t, err, ErrConnClosed)

	closeErr := readCloseError(t, client)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, "bye", closeErr.Text)
}

func TestDurationOr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Second, durationOr(0, time.Second))
	assert.Equal(t, time.Minute, durationOr(time.Minute, time.Second))
}

func TestWebSocket_NotifyWithCanceledContext(t *testing.T) {
	t.Parallel()

	f := newHubFixture(t, testTokens, map[int64][]int64{1: {1}})
	srv := startServer(t, f)

	conn, _, err := dial(t, srv, tokenA)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, TypeConnected, readEvent(t, conn)["type"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 1, f.hub.Notify(ctx, testPayload, ToConversation(1, 0)))
	assert.Equal(t, "test", readEvent(t, conn)["type"])
	assert.True(t, f.registry.IsOnline(1), "caller cancellation does not evict the socket")
	assert.Equal(t, 1, f.registry.ConnectionCount(1))

	assert.Equal(t, 1, f.hub.Notify(context.Background(), testPayload, ToUsers(1)))
	assert.Equal(t, "test", readEvent(t, conn)["type"])
}

func TestWSTransport_SendOnDoneContextCloses(t *testing.T) {
	t.Parallel()

	accepted := make(chan *wsTransport, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		up := websocket.Upgrader{}
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- newWSTransport(ws, config.RealtimeConfig{}, discardLogger())
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()
	tr := <-accepted

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	assert.ErrorIs(t, tr.Send(ctx, testPayload), context.DeadlineExceeded)
	assert.ErrorIs(t, tr.Send(context.Background(), testPayload), ErrConnClosed)

	closeErr := readCloseError(t, client)
	assert.Equal(t, websocket.CloseTryAgainLater, closeErr.Code)
}

func TestWebSocket_SlowConsumerRunsCleanup(t *testing.T) {
	t.Parallel()

	f := newHubFixture(t, testTokens, map[int64][]int64{1: {1}, 2: {1}})
	b, _ := f.connect(t, "b", tokenB)

	sessionDone := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(sessionDone)
		up := websocket.Upgrader{}
		ws, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// No write pump: the single queue slot is taken by the connected
		// event, so the next delivery overflows.
		tr := &wsTransport{
			id:        "stalled",
			conn:      ws,
			send:      make(chan []byte, 1),
			done:      make(chan struct{}),
			logger:    discardLogger(),
			writeWait: time.Second,
		}
		f.hub.Serve(r.Context(), tr, tokenA)
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()
	require.Eventually(t, func() bool { return b.countOf(TypeUserStatus) == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, f.hub.Notify(context.Background(), testPayload, ToConversation(1, 0)),
		"only the healthy connection receives it")

	closeErr := readCloseError(t, client)
	assert.Equal(t, websocket.CloseTryAgainLater, closeErr.Code)

	select {
	case <-sessionDone:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish")
	}
	assert.False(t, f.registry.IsOnline(1))
	require.Eventually(t, func() bool { return b.countOf(TypeUserOffline) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, f.registry.MembersOf(1))
}
