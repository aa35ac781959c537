package realtime

import (
	"sync"
	"time"

	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
)

// Connection is one open stream that can receive events.
type Connection interface {
	ID() string
	CreatedAt() time.Time
	Emit(ev Event) error
	Close()
}

// ConnectionRegistry maps a user id to its open connections in connection
// order. A user id is present only while it has at least one connection.
type ConnectionRegistry struct {
	mu    sync.Mutex
	conns map[string][]Connection

	log *logger.Logger
	now func() time.Time
}

func NewConnectionRegistry(log *logger.Logger) *ConnectionRegistry {
	return &ConnectionRegistry{
		conns: make(map[string][]Connection),
		log:   log.With("component", "ConnectionRegistry"),
		now:   time.Now,
	}
}

func (r *ConnectionRegistry) Register(userID string, conn Connection) {
	if userID == "" || conn == nil {
		return
	}
	r.mu.Lock()
	r.conns[userID] = append(r.conns[userID], conn)
	n := len(r.conns[userID])
	r.mu.Unlock()

	r.log.Debug("SSE connection registered", "user_id", userID, "conn_id", conn.ID(), "user_connections", n)
}

// Unregister removes conn (by identity) from the user's list. It reports
// whether anything was removed; unknown pairs are a no-op.
func (r *ConnectionRegistry) Unregister(userID string, conn Connection) bool {
	if userID == "" || conn == nil {
		return false
	}
	r.mu.Lock()
	list, ok := r.conns[userID]
	if !ok {
		r.mu.Unlock()
		return false
	}
	idx := -1
	for i, c := range list {
		if c == conn {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return false
	}
	remaining := len(list) - 1
	if remaining == 0 {
		delete(r.conns, userID)
	} else {
		next := make([]Connection, 0, remaining)
		next = append(next, list[:idx]...)
		next = append(next, list[idx+1:]...)
		r.conns[userID] = next
	}
	r.mu.Unlock()

	r.log.Debug("SSE connection unregistered", "user_id", userID, "conn_id", conn.ID(), "user_connections", remaining)
	return true
}

// Connections returns a snapshot of the user's connections.
func (r *ConnectionRegistry) Connections(userID string) []Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.conns[userID]
	if len(list) == 0 {
		return nil
	}
	out := make([]Connection, len(list))
	copy(out, list)
	return out
}

func (r *ConnectionRegistry) Count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns[userID])
}

// Total is the number of open connections across all users.
func (r *ConnectionRegistry) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, list := range r.conns {
		total += len(list)
	}
	return total
}

// SweepStale drops connections older than maxAge and closes them. It is a
// safety net for transports that never reported their disconnect.
func (r *ConnectionRegistry) SweepStale(maxAge time.Duration) int {
	now := r.now()
	var evicted []Connection

	r.mu.Lock()
	for userID, list := range r.conns {
		kept := list[:0:0]
		for _, c := range list {
			if now.Sub(c.CreatedAt()) > maxAge {
				evicted = append(evicted, c)
				continue
			}
			kept = append(kept, c)
		}
		switch {
		case len(kept) == 0:
			delete(r.conns, userID)
		case len(kept) < len(list):
			r.conns[userID] = kept
		}
	}
	r.mu.Unlock()

	// Close outside the lock: sessions unregister themselves on close.
	for _, c := range evicted {
		c.Close()
	}
	if len(evicted) > 0 {
		r.log.Info("Swept stale SSE connections", "count", len(evicted), "max_age", maxAge.String())
	}
	return len(evicted)
}
