package workflow

import "errors"

var (
	// ErrSubmission marks a failed initial request to the engine.
	ErrSubmission = errors.New("workflow submission failed")
	// ErrPoll marks a failed status request; it aborts the poll loop.
	ErrPoll = errors.New("workflow status check failed")
	// ErrPollCancelled is returned when nobody is listening anymore or the
	// caller's context ended.
	ErrPollCancelled = errors.New("workflow polling cancelled")
	// ErrPollLimit is returned when the configured duration or iteration
	// bound is reached before the engine finished.
	ErrPollLimit = errors.New("workflow polling limit reached")
	// ErrBadPayload is returned when the engine answers with a body that is
	// not JSON.
	ErrBadPayload = errors.New("workflow engine returned an unreadable payload")
)
