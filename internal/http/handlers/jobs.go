package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Eddy007Saive/serverlog/internal/http/response"
	apperrors "github.com/Eddy007Saive/serverlog/internal/pkg/errors"
	"github.com/Eddy007Saive/serverlog/internal/platform/apierr"
	"github.com/Eddy007Saive/serverlog/internal/platform/ctxutil"
	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/realtime"
	"github.com/Eddy007Saive/serverlog/internal/services"
	"github.com/Eddy007Saive/serverlog/internal/workflow"
)

// HeaderJobID names the job a trigger response streams.
const HeaderJobID = "X-Job-Id"

type JobHandler struct {
	log     *logger.Logger
	runner  services.JobRunner
	session realtime.SessionConfig
}

func NewJobHandler(log *logger.Logger, runner services.JobRunner, session realtime.SessionConfig) *JobHandler {
	return &JobHandler{
		log:     log.With("handler", "JobHandler"),
		runner:  runner,
		session: session,
	}
}

// Trigger returns the handler for one job type. The response streams this
// job's events only: the session is not registered for the user, the runner
// writes to it directly and closes it after the job's own terminal event.
// The user's other open streams receive the same events tagged with the job
// id. The job outlives the request and keeps running while any of the user's
// connections is open.
func (h *JobHandler) Trigger(spec workflow.JobSpec) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == "" {
			response.RespondErr(c, apperrors.ErrUnauthorized)
			return
		}

		var req workflow.JobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondErr(c, apierr.BadRequest("invalid_request", err))
			return
		}
		req.ID = strings.TrimSpace(req.ID)
		if req.ID == "" {
			response.RespondErr(c, apierr.BadRequest("invalid_request", errors.New("id is required")))
			return
		}

		jobID := uuid.New().String()
		c.Header(HeaderJobID, jobID)
		sess, err := realtime.OpenSession(c.Writer, "", nil, h.log, h.session)
		if err != nil {
			response.RespondError(c, http.StatusInternalServerError, "stream_unsupported", err)
			return
		}

		opts := services.RunOptions{JobID: jobID, Stream: sess}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			opts.RequestID = td.RequestID
		}
		userID := rd.UserID
		runCtx := context.WithoutCancel(c.Request.Context())
		go func() {
			defer sess.Close()
			if _, err := h.runner.Run(runCtx, userID, spec, req, opts); err != nil {
				h.log.Debug("Job ended with error", "job", spec.Type, "job_id", jobID, "user_id", userID, "error", err)
			}
		}()

		sess.Serve(c.Request.Context())
	}
}
