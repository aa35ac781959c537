package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/Eddy007Saive/serverlog/internal/platform/ctxutil"
	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"

	maxCorrelationIDLen = 128
)

// RequestLogger tags the request with a trace id and a request id, echoes
// both as response headers and logs one line once the handler returns. For
// SSE streams that is when the stream ends.
//
// The trace id comes from the active span when otelgin is installed, then
// from X-Trace-Id. Inbound ids that are empty or not header-safe are
// replaced with a fresh uuid, so job events and log lines can always be
// joined on them.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		td := correlationIDs(c)
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Set("trace_id", td.TraceID)
		c.Set("request_id", td.RequestID)
		c.Writer.Header().Set(HeaderTraceID, td.TraceID)
		c.Writer.Header().Set(HeaderRequestID, td.RequestID)

		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		rd := ctxutil.GetRequestData(c.Request.Context())

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"trace_id", td.TraceID,
			"request_id", td.RequestID,
		}
		if rd != nil && rd.UserID != "" {
			fields = append(fields, "user_id", rd.UserID)
		}
		if jobID := c.Writer.Header().Get("X-Job-Id"); jobID != "" {
			fields = append(fields, "job_id", jobID)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func correlationIDs(c *gin.Context) *ctxutil.TraceData {
	traceID := ""
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}
	if traceID == "" {
		traceID = sanitizeCorrelationID(c.GetHeader(HeaderTraceID))
	}
	if traceID == "" {
		traceID = uuid.New().String()
	}

	reqID := sanitizeCorrelationID(c.GetHeader(HeaderRequestID))
	if reqID == "" {
		reqID = uuid.New().String()
	}
	return &ctxutil.TraceData{TraceID: traceID, RequestID: reqID}
}

// sanitizeCorrelationID returns v trimmed, or "" when it is too long or holds
// anything but letters, digits, '.', '_' and '-'.
func sanitizeCorrelationID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxCorrelationIDLen {
		return ""
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return ""
		}
	}
	return v
}
