package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ALeexsd/jobChat/internal/config"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	// ErrConnClosed is returned by Send and Receive once the connection is closed.
	ErrConnClosed = errors.New("connection closed")

	// ErrSlowConsumer is returned by Send when the outbound queue is full.
	// The connection is closed as a side effect.
	ErrSlowConsumer = errors.New("connection outbound queue is full")
)

// Transport defaults used when a RealtimeConfig field is zero.
const (
	defaultSendBuffer = 256
	defaultPingPeriod = 54 * time.Second
	defaultPongWait   = 60 * time.Second
	defaultWriteWait  = 10 * time.Second
	defaultReadLimit  = 8192
)

// wsTransport adapts a gorilla websocket connection to Transport. Outbound
// frames go through a buffered queue drained by a single write pump, which
// also sends keepalive pings. Receive must be called from one goroutine.
type wsTransport struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger

	pingPeriod time.Duration
	pongWait   time.Duration
	writeWait  time.Duration
}

func newWSTransport(conn *websocket.Conn, cfg config.RealtimeConfig, logger *slog.Logger) *wsTransport {
	t := &wsTransport{
		id:         uuid.NewString(),
		conn:       conn,
		done:       make(chan struct{}),
		pingPeriod: durationOr(cfg.PingPeriod, defaultPingPeriod),
		pongWait:   durationOr(cfg.PongWait, defaultPongWait),
		writeWait:  durationOr(cfg.WriteWait, defaultWriteWait),
	}
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	t.send = make(chan []byte, buffer)
	t.logger = logger.With("conn_id", t.id)

	readLimit := cfg.ReadLimit
	if readLimit <= 0 {
		readLimit = defaultReadLimit
	}
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(t.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(t.pongWait))
	})

	go t.writePump()
	return t
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func (t *wsTransport) ID() string { return t.id }

// Send enqueues payload without blocking. A full queue marks the connection
// as a slow consumer and closes it. Every error return leaves the connection
// closed.
func (t *wsTransport) Send(ctx context.Context, payload []byte) error {
	select {
	case <-t.done:
		return ErrConnClosed
	case <-ctx.Done():
		t.logger.Debug("send context done, closing", "error", ctx.Err())
		_ = t.Close(websocket.CloseTryAgainLater, "send timed out")
		return ctx.Err()
	default:
	}

	select {
	case t.send <- payload:
		return nil
	case <-t.done:
		return ErrConnClosed
	default:
		t.logger.Warn("outbound queue full, closing slow consumer", "queued", len(t.send))
		_ = t.Close(websocket.CloseTryAgainLater, "slow consumer")
		return ErrSlowConsumer
	}
}

// Receive returns the next text frame. Binary frames are ignored. ctx is
// not consulted; Close unblocks a pending read.
func (t *wsTransport) Receive(ctx context.Context) ([]byte, error) {
	for {
		msgType, data, err := t.conn.ReadMessage()
		if err != nil {
			select {
			case <-t.done:
				return nil, ErrConnClosed
			default:
			}
			t.shutdown()
			return nil, err
		}
		if msgType == websocket.TextMessage {
			return data, nil
		}
	}
}

// Close sends a close frame and releases the socket. The write pump stops
// and queued frames are discarded.
func (t *wsTransport) Close(code int, reason string) error {
	var err error
	t.once.Do(func() {
		close(t.done)
		deadline := time.Now().Add(t.writeWait)
		err = t.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		if errors.Is(err, websocket.ErrCloseSent) {
			err = nil
		}
		if closeErr := t.conn.Close(); err == nil {
			err = closeErr
		}
	})
	return err
}

// shutdown releases the socket without a close frame.
func (t *wsTransport) shutdown() {
	t.once.Do(func() {
		close(t.done)
		_ = t.conn.Close()
	})
}

func (t *wsTransport) writePump() {
	ticker := time.NewTicker(t.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case payload := <-t.send:
			_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
			if err := t.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				t.logger.Debug("write failed", "error", err)
				t.shutdown()
				return
			}
		case <-ticker.C:
			_ = t.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
			if err := t.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.logger.Debug("ping failed", "error", err)
				t.shutdown()
				return
			}
		}
	}
}
