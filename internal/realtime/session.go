package realtime

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
)

var (
	ErrSessionClosed        = errors.New("sse session closed")
	ErrSlowConsumer         = errors.New("sse outbound buffer full")
	ErrStreamingUnsupported = errors.New("streaming unsupported")
)

type SessionConfig struct {
	// Buffer is the number of frames queued before the consumer is
	// considered too slow and the session is closed.
	Buffer    int
	Heartbeat time.Duration
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.Buffer <= 0 {
		c.Buffer = 64
	}
	return c
}

// Session is one open text/event-stream response. Emit may be called from any
// goroutine; only Serve touches the underlying writer.
type Session struct {
	id        string
	userID    string
	createdAt time.Time

	w       io.Writer
	flusher http.Flusher

	registry  *ConnectionRegistry
	log       *logger.Logger
	heartbeat time.Duration

	mu       sync.RWMutex
	closed   bool
	outbound chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

// OpenSession prepares w for streaming and, when userID is set, registers the
// session so broadcasts for that user reach it.
func OpenSession(w http.ResponseWriter, userID string, registry *ConnectionRegistry, log *logger.Logger, cfg SessionConfig) (*Session, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	cfg = cfg.withDefaults()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s := &Session{
		id:        uuid.New().String(),
		userID:    userID,
		createdAt: time.Now(),
		w:         w,
		flusher:   flusher,
		registry:  registry,
		heartbeat: cfg.Heartbeat,
		outbound:  make(chan []byte, cfg.Buffer),
		done:      make(chan struct{}),
	}
	s.log = log.With("component", "SSESession", "conn_id", s.id, "user_id", userID)

	if userID != "" && registry != nil {
		registry.Register(userID, s)
	}
	return s, nil
}

func (s *Session) ID() string           { return s.id }
func (s *Session) UserID() string       { return s.userID }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Done is closed once the session stops accepting events.
func (s *Session) Done() <-chan struct{} { return s.done }

// Emit queues ev for delivery. A full queue closes the session.
func (s *Session) Emit(ev Event) error {
	frame, err := EncodeEvent(ev)
	if err != nil {
		return err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrSessionClosed
	}
	select {
	case s.outbound <- frame:
		s.mu.RUnlock()
		return nil
	default:
	}
	s.mu.RUnlock()

	s.log.Warn("SSE consumer too slow, closing session", "event", ev.Type)
	s.Close()
	return ErrSlowConsumer
}

// Close stops accepting events and unregisters the session. Frames already
// queued are still flushed by Serve. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
		if s.userID != "" && s.registry != nil {
			s.registry.Unregister(s.userID, s)
		}
	})
}

// Serve writes queued frames until ctx ends (client disconnect), the session
// is closed, or a write fails. It must run on the request goroutine.
func (s *Session) Serve(ctx context.Context) {
	defer s.Close()

	var heartbeat <-chan time.Time
	if s.heartbeat > 0 {
		t := time.NewTicker(s.heartbeat)
		defer t.Stop()
		heartbeat = t.C
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Debug("SSE client context done", "err", ctx.Err())
			return
		case frame := <-s.outbound:
			if err := s.write(frame); err != nil {
				s.log.Debug("SSE write failed, closing session", "error", err)
				return
			}
		case <-heartbeat:
			if err := s.write(heartbeatFrame); err != nil {
				s.log.Debug("SSE heartbeat failed, closing session", "error", err)
				return
			}
		case <-s.done:
			s.drain()
			return
		}
	}
}

// drain flushes whatever was queued before Close. No sender can enqueue once
// closed is set, so the queue only shrinks here.
func (s *Session) drain() {
	for {
		select {
		case frame := <-s.outbound:
			if err := s.write(frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (s *Session) write(frame []byte) error {
	if _, err := s.w.Write(frame); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
