package services

import (
	"context"

	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/realtime"
	"github.com/Eddy007Saive/serverlog/internal/realtime/bus"
)

// SSEEmitter delivers events to every open connection of a user.
type SSEEmitter interface {
	EmitToUser(ctx context.Context, userID string, ev realtime.Event) bool
	// HasListener reports whether the user still has an open connection here.
	HasListener(userID string) bool
}

type HubEmitter struct {
	Broadcaster *realtime.Broadcaster
	Registry    *realtime.ConnectionRegistry
}

func (e *HubEmitter) EmitToUser(_ context.Context, userID string, ev realtime.Event) bool {
	return e.Broadcaster.Send(userID, ev)
}

func (e *HubEmitter) HasListener(userID string) bool {
	return e.Registry.Count(userID) > 0
}

// RedisEmitter delivers locally and republishes on the bus for connections
// held by other instances. Origin tags the publisher so its own forwarder
// skips the echo.
type RedisEmitter struct {
	Local  *HubEmitter
	Bus    bus.Bus
	Origin string
	Log    *logger.Logger
}

func (e *RedisEmitter) EmitToUser(ctx context.Context, userID string, ev realtime.Event) bool {
	delivered := e.Local.EmitToUser(ctx, userID, ev)
	err := e.Bus.Publish(ctx, realtime.UserEvent{UserID: userID, Origin: e.Origin, Event: ev})
	if err != nil && e.Log != nil {
		e.Log.Warn("SSE bus publish failed", "user_id", userID, "event", ev.Type, "error", err)
	}
	return delivered || err == nil
}

func (e *RedisEmitter) HasListener(userID string) bool {
	return e.Local.HasListener(userID)
}

// ForwardBusEvents relays events published by other instances to local
// connections.
func ForwardBusEvents(ctx context.Context, b bus.Bus, broadcaster *realtime.Broadcaster, origin string) error {
	return b.StartForwarder(ctx, func(m realtime.UserEvent) {
		if m.Origin == origin {
			return
		}
		broadcaster.Send(m.UserID, m.Event)
	})
}
