package realtime

import (
	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
)

// Broadcaster fans events out to every connection registered for a user.
type Broadcaster struct {
	registry *ConnectionRegistry
	log      *logger.Logger
}

func NewBroadcaster(log *logger.Logger, registry *ConnectionRegistry) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		log:      log.With("component", "Broadcaster"),
	}
}

// SendToUser writes the event to each of the user's connections. A failed
// write is logged and skipped. It returns false only when the user has no
// connection at all.
func (b *Broadcaster) SendToUser(userID string, eventType EventType, payload any) bool {
	return b.Send(userID, Event{Type: eventType, Data: payload})
}

func (b *Broadcaster) Send(userID string, ev Event) bool {
	conns := b.registry.Connections(userID)
	if len(conns) == 0 {
		b.log.Warn("No active SSE connection for user, dropping event", "user_id", userID, "event", ev.Type)
		return false
	}
	for i, c := range conns {
		if err := c.Emit(ev); err != nil {
			b.log.Warn("SSE delivery failed", "user_id", userID, "conn_id", c.ID(), "index", i, "event", ev.Type, "error", err)
		}
	}
	return true
}
