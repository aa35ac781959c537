package realtime

import (
	"encoding/json"
	"fmt"
)

type EventType string

const (
	EventStart        EventType = "start"
	EventProgress     EventType = "progress"
	EventStep         EventType = "step"
	EventUpdate       EventType = "update"
	EventPollingStart EventType = "polling_start"
	EventCompleted    EventType = "completed"
	EventError        EventType = "error"
)

// Terminal reports whether t ends a job's event sequence.
func (t EventType) Terminal() bool {
	return t == EventCompleted || t == EventError
}

type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// UserEvent is an event addressed to every connection of one user.
type UserEvent struct {
	UserID string `json:"user_id"`
	Origin string `json:"origin,omitempty"`
	Event  Event  `json:"event"`
}

var heartbeatFrame = []byte(": ping\n\n")

// EncodeEvent renders ev as a two-line text/event-stream frame:
//
//	event: <type>
//	data: <json>
func EncodeEvent(ev Event) ([]byte, error) {
	if ev.Type == "" {
		return nil, fmt.Errorf("event type required")
	}
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.Type, err)
	}
	frame := make([]byte, 0, len(ev.Type)+len(data)+16)
	frame = append(frame, "event: "...)
	frame = append(frame, ev.Type...)
	frame = append(frame, "\ndata: "...)
	frame = append(frame, data...)
	frame = append(frame, "\n\n"...)
	return frame, nil
}
