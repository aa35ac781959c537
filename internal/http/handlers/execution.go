package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Eddy007Saive/serverlog/internal/http/response"
	"github.com/Eddy007Saive/serverlog/internal/platform/apierr"
	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/realtime"
	"github.com/Eddy007Saive/serverlog/internal/workflow"
)

// ExecutionReader looks up an execution record on the engine.
type ExecutionReader interface {
	Execution(ctx context.Context, executionID string) (map[string]any, error)
}

type ExecutionHandler struct {
	log     *logger.Logger
	engine  ExecutionReader
	session realtime.SessionConfig
}

func NewExecutionHandler(log *logger.Logger, engine ExecutionReader, session realtime.SessionConfig) *ExecutionHandler {
	return &ExecutionHandler{
		log:     log.With("handler", "ExecutionHandler"),
		engine:  engine,
		session: session,
	}
}

// GET /api/execution/:executionId
// Streams the lookup to this response only; nothing is broadcast.
func (h *ExecutionHandler) GetExecution(c *gin.Context) {
	executionID := strings.TrimSpace(c.Param("executionId"))
	if executionID == "" {
		response.RespondErr(c, apierr.BadRequest("invalid_execution_id", fmt.Errorf("execution id required")))
		return
	}

	sess, err := realtime.OpenSession(c.Writer, "", nil, h.log, h.session)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "stream_unsupported", err)
		return
	}

	ctx := c.Request.Context()
	go func() {
		defer sess.Close()
		emit := func(et realtime.EventType, payload any) {
			_ = sess.Emit(realtime.Event{Type: et, Data: payload})
		}

		emit(realtime.EventStart, map[string]any{"message": fmt.Sprintf("Checking execution %s...", executionID)})
		emit(realtime.EventProgress, map[string]any{"message": "Fetching execution details..."})

		record, err := h.engine.Execution(ctx, executionID)
		if err != nil {
			h.log.Warn("Execution lookup failed", "execution_id", executionID, "error", err)
			emit(realtime.EventError, map[string]any{
				"success": false,
				"error":   err.Error(),
				"message": "Execution lookup failed",
			})
			return
		}
		emit(realtime.EventProgress, map[string]any{"message": "Execution details retrieved"})
		emit(realtime.EventCompleted, map[string]any{
			"success": true,
			"message": "Execution details retrieved successfully",
			"data":    record,
		})
	}()

	sess.Serve(ctx)
}

var _ ExecutionReader = (workflow.Engine)(nil)
