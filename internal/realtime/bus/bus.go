package bus

import (
	"context"

	"github.com/Eddy007Saive/serverlog/internal/realtime"
)

// Bus carries user events between service instances so a job running on one
// instance reaches tabs connected to another.
type Bus interface {
	Publish(ctx context.Context, msg realtime.UserEvent) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.UserEvent)) error
	Close() error
}
