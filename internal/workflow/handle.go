package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Handle is the engine's view of a job after a submit or status call. It is
// either Pending (poll again at Continuation) or Finished.
type Handle interface {
	Payload() map[string]any
	Done() bool
}

type Pending struct {
	Continuation string
	Data         map[string]any
}

func (p Pending) Payload() map[string]any { return p.Data }
func (p Pending) Done() bool              { return false }

type Finished struct {
	Result map[string]any
}

func (f Finished) Payload() map[string]any { return f.Result }
func (f Finished) Done() bool              { return true }

// HandleFromPayload classifies an engine status payload. A payload is pending
// only when it is not flagged finished and carries a continuation reference.
func HandleFromPayload(payload map[string]any) Handle {
	if payload == nil {
		payload = map[string]any{}
	}
	finished, _ := payload["finished"].(bool)
	cont, _ := payload["executionUrl"].(string)
	cont = strings.TrimSpace(cont)
	if finished || cont == "" {
		return Finished{Result: payload}
	}
	return Pending{Continuation: cont, Data: payload}
}

// DecodeHandle parses a raw engine response body. Valid JSON that is not an
// object is wrapped as {"value": ...}; an empty body is an empty result.
func DecodeHandle(body []byte) (Handle, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Finished{Result: map[string]any{}}, nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if m, ok := v.(map[string]any); ok {
		return HandleFromPayload(m), nil
	}
	return Finished{Result: map[string]any{"value": v}}, nil
}
