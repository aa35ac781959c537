package services

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/realtime"
	"github.com/Eddy007Saive/serverlog/internal/workflow"
)

// JobRunner triggers a workflow job and streams its progress to the user.
type JobRunner interface {
	Run(ctx context.Context, userID string, spec workflow.JobSpec, req workflow.JobRequest, opts RunOptions) (workflow.Handle, error)
}

// JobStream is the response stream of the request that triggered a job.
// *realtime.Session satisfies it.
type JobStream interface {
	Emit(ev realtime.Event) error
	Close()
	Done() <-chan struct{}
}

type RunOptions struct {
	// JobID tags every event of the run; a uuid is generated when empty.
	JobID     string
	RequestID string
	// Stream, when set, receives the run's events directly and is closed
	// after the terminal one. It must not be registered for the user, or
	// it would also receive the events of the user's other jobs.
	Stream JobStream
}

type jobRunner struct {
	log     *logger.Logger
	engine  workflow.Submitter
	poller  *workflow.Poller
	emitter SSEEmitter
}

func NewJobRunner(log *logger.Logger, engine workflow.Submitter, poller *workflow.Poller, emitter SSEEmitter) JobRunner {
	return &jobRunner{
		log:     log.With("service", "JobRunner"),
		engine:  engine,
		poller:  poller,
		emitter: emitter,
	}
}

// Run emits start, submits, emits progress with the submission response and,
// when the engine handed back a continuation, polls it. The sequence always
// ends with exactly one completed or error event. Every payload carries
// "jobId" so listeners on the user's shared stream can tell concurrent jobs
// apart.
func (r *jobRunner) Run(ctx context.Context, userID string, spec workflow.JobSpec, req workflow.JobRequest, opts RunOptions) (workflow.Handle, error) {
	jobID := opts.JobID
	if jobID == "" {
		jobID = uuid.New().String()
	}
	log := r.log.With("job", spec.Type, "job_id", jobID, "user_id", userID, "record_id", req.ID)
	if opts.RequestID != "" {
		log = log.With("request_id", opts.RequestID)
	}

	stream := opts.Stream
	emit := func(et realtime.EventType, payload any) {
		ev := realtime.Event{Type: et, Data: tagJobID(payload, jobID)}
		if stream != nil {
			if err := stream.Emit(ev); err != nil {
				log.Debug("Job stream dropped event", "event", et, "error", err)
			}
			if et.Terminal() {
				stream.Close()
			}
		}
		r.emitter.EmitToUser(ctx, userID, ev)
	}

	log.Info("Workflow job started")
	start := map[string]any{"message": spec.StartMessage}
	if opts.RequestID != "" {
		start["requestId"] = opts.RequestID
	}
	emit(realtime.EventStart, start)

	h, err := r.engine.Submit(ctx, spec.Endpoint, spec.Body(req))
	if err != nil {
		err = fmt.Errorf("%w: %w", workflow.ErrSubmission, err)
		log.Warn("Workflow job submission failed", "error", err)
		emit(realtime.EventError, map[string]any{
			"error":   err.Error(),
			"message": spec.FailureMessage,
		})
		return nil, err
	}
	emit(realtime.EventProgress, map[string]any{"data": h.Payload()})

	if p, ok := h.(workflow.Pending); ok {
		emit(realtime.EventPollingStart, map[string]any{
			"message":      "Tracking workflow execution...",
			"executionUrl": p.Continuation,
		})
		alive := func() bool {
			return streamOpen(stream) || r.emitter.HasListener(userID)
		}
		h, err = r.poller.Poll(ctx, h, emit, alive)
		if err != nil {
			log.Warn("Workflow job failed while polling", "error", err)
			return h, err
		}
	}

	emit(realtime.EventCompleted, map[string]any{
		"message": spec.SuccessMessage,
		"result":  h.Payload(),
	})
	log.Info("Workflow job completed")
	return h, nil
}

func streamOpen(s JobStream) bool {
	if s == nil {
		return false
	}
	select {
	case <-s.Done():
		return false
	default:
		return true
	}
}

// tagJobID returns a copy of payload with "jobId" set. Non-map payloads are
// wrapped under "data".
func tagJobID(payload any, jobID string) map[string]any {
	m, ok := payload.(map[string]any)
	if !ok {
		return map[string]any{"jobId": jobID, "data": payload}
	}
	out := make(map[string]any, len(m)+1)
	maps.Copy(out, m)
	out["jobId"] = jobID
	return out
}
