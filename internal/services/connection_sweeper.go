package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/realtime"
)

// ConnectionSweeper periodically evicts connections older than maxAge.
type ConnectionSweeper struct {
	log      *logger.Logger
	registry *realtime.ConnectionRegistry
	maxAge   time.Duration
	c        *cron.Cron
}

func NewConnectionSweeper(log *logger.Logger, registry *realtime.ConnectionRegistry, schedule string, maxAge time.Duration) (*ConnectionSweeper, error) {
	if maxAge <= 0 {
		return nil, fmt.Errorf("sweep max age must be positive")
	}
	s := &ConnectionSweeper{
		log:      log.With("service", "ConnectionSweeper"),
		registry: registry,
		maxAge:   maxAge,
		c:        cron.New(),
	}
	if _, err := s.c.AddFunc(schedule, func() { s.Sweep() }); err != nil {
		return nil, fmt.Errorf("parse sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *ConnectionSweeper) Sweep() int {
	n := s.registry.SweepStale(s.maxAge)
	s.log.Debug("Stale connection sweep finished", "removed", n, "open", s.registry.Total())
	return n
}

func (s *ConnectionSweeper) Start() {
	s.c.Start()
}

// Stop halts scheduling and waits for a running sweep to finish or ctx to end.
func (s *ConnectionSweeper) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
	}
}
