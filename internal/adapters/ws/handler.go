package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/isles/internal/app"
	"github.com/okian/isles/internal/domain/effects"
	"github.com/okian/isles/pkg/logger"
	"github.com/okian/isles/pkg/metrics"
)

const (
	defaultReadLimit  = 4096
	writeTimeout      = 5 * time.Second
	closeGrace        = time.Second
	sessionCloseLimit = 5 * time.Second
)

// Opener creates sessions for new connections.
type Opener interface {
	Open(ctx context.Context, collab effects.Collaborators, opts ...app.ExperienceOption) (*app.Session, error)
}

// Option applies a configuration option to the Handler.
type Option func(*Handler)

// WithReadLimit caps inbound frame size in bytes.
func WithReadLimit(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.readLimit = n
		}
	}
}

// WithLogger sets a custom logger for the handler.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithOutboundBuffer sets how many commands may wait for the writer.
func WithOutboundBuffer(n int) Option {
	return func(h *Handler) { h.outbound = n }
}

// WithCheckOrigin overrides the upgrader origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Handler) { h.upgrader.CheckOrigin = fn }
}

// Handler upgrades requests and runs one session per connection.
type Handler struct {
	sessions  Opener
	upgrader  websocket.Upgrader
	readLimit int64
	outbound  int
	logger    logger.Logger
}

// NewHandler creates a WebSocket handler backed by sessions.
func NewHandler(sessions Opener, opts ...Option) *Handler {
	h := &Handler{
		sessions:  sessions,
		readLimit: defaultReadLimit,
		outbound:  defaultOutboundBuffer,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.Named("ws")
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		h.logger.Warn(r.Context(), "upgrade failed", logger.Error(err))
		metrics.RecordError("ws", "upgrade")
		return
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	remote := NewRemote(h.outbound)
	sess, err := h.sessions.Open(ctx, remote)
	if err != nil {
		h.logger.Error(ctx, "open session", logger.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(closeGrace))
		return
	}
	log := h.logger.With(logger.String("session", sess.ID().String()))

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.write(ctx, conn, remote, ServerMessage{Op: OpHello, Session: sess.ID().String(), Assets: sess.Manifest()}, log)
	}()

	h.read(ctx, conn, sess, log)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), sessionCloseLimit)
	defer closeCancel()
	if err := sess.Close(closeCtx); err != nil {
		log.Warn(ctx, "session close", logger.Error(err))
	}
	remote.Close()
	<-writerDone
	if n := remote.Dropped(); n > 0 {
		log.Warn(ctx, "outbound commands dropped", logger.Int("dropped", int(n)))
	}
}

// read is the only reader. It decodes frames and enqueues them; it never
// touches the experience directly.
func (h *Handler) read(ctx context.Context, conn *websocket.Conn, sess *app.Session, log logger.Logger) {
	conn.SetReadLimit(h.readLimit)
	// Clear any deadline inherited from the http.Server.
	_ = conn.SetReadDeadline(time.Time{})
	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn(ctx, "read", logger.Error(err))
				metrics.RecordError("ws", "read")
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		in, err := Decode(data)
		if err != nil {
			log.Debug(ctx, "bad frame", logger.Error(err))
			metrics.RecordError("ws", "decode")
			continue
		}
		metrics.RecordWSMessage("in", in.Kind.String())
		if err := sess.Enqueue(ctx, in); err != nil {
			if errors.Is(err, app.ErrSessionClosed) {
				return
			}
			log.Debug(ctx, "input dropped", logger.Error(err))
		}
	}
}

// write is the only writer. It drains the remote until it is closed.
func (h *Handler) write(ctx context.Context, conn *websocket.Conn, remote *Remote, hello ServerMessage, log logger.Logger) {
	send := func(m ServerMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(m); err != nil {
			log.Debug(ctx, "write", logger.Error(err))
			// Unblocks the reader.
			_ = conn.Close()
			return false
		}
		return true
	}

	if !send(hello) {
		return
	}
	for {
		select {
		case m := <-remote.Out():
			if !send(m) {
				return
			}
		case <-remote.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(closeGrace))
			return
		}
	}
}
