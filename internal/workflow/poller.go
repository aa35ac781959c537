package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/realtime"
)

// EmitFunc receives the poller's progress events.
type EmitFunc func(eventType realtime.EventType, payload any)

type PollerConfig struct {
	// BaseURL is the engine address continuation references are re-rooted on.
	BaseURL  string
	Interval time.Duration
	// MaxDuration and MaxIterations bound a single poll loop; zero means no bound.
	MaxDuration   time.Duration
	MaxIterations int
}

type Poller struct {
	checker StatusChecker
	cfg     PollerConfig
	log     *logger.Logger
}

func NewPoller(log *logger.Logger, checker StatusChecker, cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Poller{
		checker: checker,
		cfg:     cfg,
		log:     log.With("component", "WorkflowPoller"),
	}
}

// Poll follows h until the engine reports it finished. Each iteration emits a
// step event before the status request and an update event carrying the new
// payload. The first failure emits a single error event and ends the loop;
// there are no retries. alive, when set, is checked before every request and
// stops the loop once it reports false.
func (p *Poller) Poll(ctx context.Context, h Handle, emit EmitFunc, alive func() bool) (Handle, error) {
	if p.cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.MaxDuration)
		defer cancel()
	}

	current := h
	fail := func(err error) (Handle, error) {
		p.log.Warn("Workflow polling stopped", "error", err)
		emit(realtime.EventError, map[string]any{
			"error":   err.Error(),
			"message": "Workflow status tracking failed",
		})
		return current, err
	}

	for i := 0; ; i++ {
		pending, ok := current.(Pending)
		if !ok {
			return current, nil
		}
		if err := ctx.Err(); err != nil {
			return fail(ctxError(err))
		}
		if alive != nil && !alive() {
			return fail(fmt.Errorf("%w: no active listener", ErrPollCancelled))
		}
		if p.cfg.MaxIterations > 0 && i >= p.cfg.MaxIterations {
			return fail(fmt.Errorf("%w: %d status checks", ErrPollLimit, i))
		}

		address, err := ResolveContinuation(p.cfg.BaseURL, pending.Continuation)
		if err != nil {
			return fail(fmt.Errorf("%w: %w", ErrPoll, err))
		}
		emit(realtime.EventStep, map[string]any{
			"message":      "Checking execution status...",
			"executionUrl": address,
		})

		next, err := p.checker.Status(ctx, address)
		if err != nil {
			if ctx.Err() != nil {
				return fail(ctxError(ctx.Err()))
			}
			return fail(fmt.Errorf("%w: %w", ErrPoll, err))
		}
		current = next
		emit(realtime.EventUpdate, map[string]any{"data": next.Payload()})

		if next.Done() {
			continue
		}
		t := time.NewTimer(p.cfg.Interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return fail(ctxError(ctx.Err()))
		case <-t.C:
		}
	}
}

func ctxError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrPollLimit, err)
	}
	return fmt.Errorf("%w: %w", ErrPollCancelled, err)
}
