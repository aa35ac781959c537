package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
)

// Submitter starts a job on the engine.
type Submitter interface {
	Submit(ctx context.Context, endpoint string, body map[string]any) (Handle, error)
}

// StatusChecker fetches the current state of a job.
type StatusChecker interface {
	Status(ctx context.Context, address string) (Handle, error)
}

// Engine is the external workflow engine as seen by job triggers.
type Engine interface {
	Submitter
	StatusChecker
	Execution(ctx context.Context, executionID string) (map[string]any, error)
}

type ClientConfig struct {
	// APIBaseURL is the engine's REST API root used for execution lookups.
	APIBaseURL string
	APIKey     string
	Timeout    time.Duration
}

type Client struct {
	http   *resty.Client
	cfg    ClientConfig
	log    *logger.Logger
	tracer trace.Tracer
}

// NewClient builds a resty-backed engine client. Requests are never retried:
// a failed submit or poll is reported to the caller as is.
func NewClient(log *logger.Logger, cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	hc := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{
		http:   hc,
		cfg:    cfg,
		log:    log.With("client", "WorkflowEngine"),
		tracer: otel.Tracer("github.com/Eddy007Saive/serverlog/internal/workflow"),
	}
}

func (c *Client) Submit(ctx context.Context, endpoint string, body map[string]any) (Handle, error) {
	ctx, span := c.tracer.Start(ctx, "workflow.submit", trace.WithAttributes(attribute.String("workflow.endpoint", endpoint)))
	defer span.End()

	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(endpoint)
	h, err := c.decode(resp, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn("Workflow submission failed", "endpoint", endpoint, "error", err)
		return nil, err
	}
	c.log.Debug("Workflow submitted", "endpoint", endpoint, "done", h.Done())
	return h, nil
}

func (c *Client) Status(ctx context.Context, address string) (Handle, error) {
	ctx, span := c.tracer.Start(ctx, "workflow.status", trace.WithAttributes(attribute.String("workflow.address", address)))
	defer span.End()

	resp, err := c.http.R().SetContext(ctx).Get(address)
	h, err := c.decode(resp, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Bool("workflow.finished", h.Done()))
	return h, nil
}

// Execution fetches an execution record from the engine's REST API.
func (c *Client) Execution(ctx context.Context, executionID string) (map[string]any, error) {
	executionID = strings.TrimSpace(executionID)
	if executionID == "" {
		return nil, fmt.Errorf("execution id required")
	}
	if strings.TrimSpace(c.cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("engine API base address not configured")
	}
	ctx, span := c.tracer.Start(ctx, "workflow.execution", trace.WithAttributes(attribute.String("workflow.execution_id", executionID)))
	defer span.End()

	req := c.http.R().SetContext(ctx).SetPathParam("id", executionID)
	if c.cfg.APIKey != "" {
		req.SetHeader("X-N8N-API-KEY", c.cfg.APIKey)
	}
	resp, err := req.Get(strings.TrimSuffix(c.cfg.APIBaseURL, "/") + "/executions/{id}")
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if resp.IsError() {
		err := fmt.Errorf("engine responded %s", resp.Status())
		span.RecordError(err)
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return out, nil
}

func (c *Client) decode(resp *resty.Response, err error) (Handle, error) {
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("engine responded %s", resp.Status())
	}
	return DecodeHandle(resp.Body())
}
