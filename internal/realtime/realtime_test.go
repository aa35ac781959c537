package realtime

import (
	"sync"
	"testing"
	"time"

	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

type fakeConn struct {
	id       string
	created  time.Time
	failWith error

	mu     sync.Mutex
	events []Event
	closes int
}

func newFakeConn(id string, created time.Time) *fakeConn {
	return &fakeConn{id: id, created: created}
}

func (c *fakeConn) ID() string           { return c.id }
func (c *fakeConn) CreatedAt() time.Time { return c.created }

func (c *fakeConn) Emit(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return c.failWith
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closes++
	c.mu.Unlock()
}

func (c *fakeConn) received() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}
