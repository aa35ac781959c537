package workflow

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Eddy007Saive/serverlog/internal/realtime"
)

func newTestPoller(t *testing.T, checker StatusChecker, cfg PollerConfig) *Poller {
	t.Helper()
	if cfg.Interval == 0 {
		cfg.Interval = time.Millisecond
	}
	return NewPoller(mustTestLogger(t), checker, cfg)
}

func TestPollFollowsContinuationUntilFinished(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{
		{handle: HandleFromPayload(map[string]any{"finished": false, "executionUrl": "http://engine/exec/1"})},
		{handle: HandleFromPayload(map[string]any{"finished": true, "result": "ok"})},
	}}
	rec := &eventRecorder{}
	p := newTestPoller(t, checker, PollerConfig{})

	final, err := p.Poll(context.Background(), Pending{Continuation: "http://engine/exec/1"}, rec.emit, nil)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}

	want := []realtime.EventType{realtime.EventStep, realtime.EventUpdate, realtime.EventStep, realtime.EventUpdate}
	if got := rec.types(); !equalTypes(got, want) {
		t.Fatalf("events: want=%v got=%v", want, got)
	}
	if !reflect.DeepEqual(final.Payload(), map[string]any{"finished": true, "result": "ok"}) {
		t.Fatalf("final handle: %#v", final)
	}
	if checker.callCount() != 2 {
		t.Fatalf("status calls: want=2 got=%d", checker.callCount())
	}
}

func TestPollStopsOnFirstError(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{{err: errors.New("connection refused")}}}
	rec := &eventRecorder{}
	p := newTestPoller(t, checker, PollerConfig{})

	start := Pending{Continuation: "http://engine/exec/1"}
	final, err := p.Poll(context.Background(), start, rec.emit, nil)
	if !errors.Is(err, ErrPoll) {
		t.Fatalf("want ErrPoll, got %v", err)
	}
	if checker.callCount() != 1 {
		t.Fatalf("poll must not retry: calls=%d", checker.callCount())
	}
	want := []realtime.EventType{realtime.EventStep, realtime.EventError}
	if got := rec.types(); !equalTypes(got, want) {
		t.Fatalf("events: want=%v got=%v", want, got)
	}
	payload := rec.events[1].Payload.(map[string]any)
	if msg, _ := payload["error"].(string); msg == "" {
		t.Fatalf("error event should carry the message: %#v", payload)
	}
	if !reflect.DeepEqual(final, Handle(start)) {
		t.Fatalf("final handle should be the last known one: %#v", final)
	}
}

func TestPollWithoutContinuationMakesNoRequests(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{{err: errors.New("unexpected")}}}
	rec := &eventRecorder{}
	p := newTestPoller(t, checker, PollerConfig{})

	initial := HandleFromPayload(map[string]any{"executionUrl": nil, "data": "x"})
	final, err := p.Poll(context.Background(), initial, rec.emit, nil)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if checker.callCount() != 0 {
		t.Fatalf("want zero requests, got %d", checker.callCount())
	}
	if len(rec.types()) != 0 {
		t.Fatalf("want no events, got %v", rec.types())
	}
	if !reflect.DeepEqual(final, initial) {
		t.Fatalf("initial handle should be returned unchanged: %#v", final)
	}
}

func TestPollRewritesContinuationOnBase(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{
		{handle: Finished{Result: map[string]any{"finished": true}}},
	}}
	rec := &eventRecorder{}
	p := newTestPoller(t, checker, PollerConfig{BaseURL: "https://n8n.example.com/"})

	if _, err := p.Poll(context.Background(), Pending{Continuation: "http://localhost:5678/webhook-waiting/7"}, rec.emit, nil); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if got := checker.calls[0]; got != "https://n8n.example.com/webhook-waiting/7" {
		t.Fatalf("status address: got %q", got)
	}
	step := rec.events[0].Payload.(map[string]any)
	if step["executionUrl"] != "https://n8n.example.com/webhook-waiting/7" {
		t.Fatalf("step event should describe the resolved address: %#v", step)
	}
}

func TestPollStopsWhenNoListenerRemains(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{
		{handle: Pending{Continuation: "http://engine/exec/1"}},
	}}
	rec := &eventRecorder{}
	p := newTestPoller(t, checker, PollerConfig{})

	checks := 0
	alive := func() bool {
		checks++
		return checks <= 2
	}
	_, err := p.Poll(context.Background(), Pending{Continuation: "http://engine/exec/1"}, rec.emit, alive)
	if !errors.Is(err, ErrPollCancelled) {
		t.Fatalf("want ErrPollCancelled, got %v", err)
	}
	if checker.callCount() != 2 {
		t.Fatalf("status calls: want=2 got=%d", checker.callCount())
	}
	types := rec.types()
	if types[len(types)-1] != realtime.EventError {
		t.Fatalf("last event should be error, got %v", types)
	}
}

func TestPollIterationLimit(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{
		{handle: Pending{Continuation: "http://engine/exec/1"}},
	}}
	rec := &eventRecorder{}
	p := newTestPoller(t, checker, PollerConfig{MaxIterations: 3})

	_, err := p.Poll(context.Background(), Pending{Continuation: "http://engine/exec/1"}, rec.emit, nil)
	if !errors.Is(err, ErrPollLimit) {
		t.Fatalf("want ErrPollLimit, got %v", err)
	}
	if checker.callCount() != 3 {
		t.Fatalf("status calls: want=3 got=%d", checker.callCount())
	}
}

func TestPollDurationLimit(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{
		{handle: Pending{Continuation: "http://engine/exec/1"}},
	}}
	rec := &eventRecorder{}
	p := newTestPoller(t, checker, PollerConfig{Interval: 10 * time.Millisecond, MaxDuration: 35 * time.Millisecond})

	_, err := p.Poll(context.Background(), Pending{Continuation: "http://engine/exec/1"}, rec.emit, nil)
	if !errors.Is(err, ErrPollLimit) {
		t.Fatalf("want ErrPollLimit, got %v", err)
	}
	errorEvents := 0
	for _, et := range rec.types() {
		if et == realtime.EventError {
			errorEvents++
		}
	}
	if errorEvents != 1 {
		t.Fatalf("want exactly one error event, got %d", errorEvents)
	}
}

func TestPollCancelledDuringInterval(t *testing.T) {
	checker := &scriptedChecker{script: []statusResult{
		{handle: Pending{Continuation: "http://engine/exec/1"}},
	}}
	rec := &eventRecorder{}
	p := newTestPoller(t, checker, PollerConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for checker.callCount() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	_, err := p.Poll(ctx, Pending{Continuation: "http://engine/exec/1"}, rec.emit, nil)
	if !errors.Is(err, ErrPollCancelled) {
		t.Fatalf("want ErrPollCancelled, got %v", err)
	}
	if checker.callCount() != 1 {
		t.Fatalf("status calls: want=1 got=%d", checker.callCount())
	}
}
