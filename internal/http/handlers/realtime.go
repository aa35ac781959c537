package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Eddy007Saive/serverlog/internal/http/response"
	apperrors "github.com/Eddy007Saive/serverlog/internal/pkg/errors"
	"github.com/Eddy007Saive/serverlog/internal/platform/ctxutil"
	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/realtime"
)

type RealtimeHandler struct {
	log      *logger.Logger
	registry *realtime.ConnectionRegistry
	session  realtime.SessionConfig
}

func NewRealtimeHandler(log *logger.Logger, registry *realtime.ConnectionRegistry, session realtime.SessionConfig) *RealtimeHandler {
	return &RealtimeHandler{
		log:      log.With("handler", "RealtimeHandler"),
		registry: registry,
		session:  session,
	}
}

// GET /api/sse/stream
// Opens a passive listener that receives every event sent to the user until
// the client goes away.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		response.RespondErr(c, apperrors.ErrUnauthorized)
		return
	}

	sess, err := realtime.OpenSession(c.Writer, rd.UserID, h.registry, h.log, h.session)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "stream_unsupported", err)
		return
	}
	h.log.Info("SSE stream open", "user_id", rd.UserID, "conn_id", sess.ID(), "user_conns", h.registry.Count(rd.UserID))

	sess.Serve(c.Request.Context())

	h.log.Info("SSE stream closed", "user_id", rd.UserID, "conn_id", sess.ID(), "user_conns", h.registry.Count(rd.UserID))
}

// GET /api/sse/connections
func (h *RealtimeHandler) Connections(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == "" {
		response.RespondErr(c, apperrors.ErrUnauthorized)
		return
	}
	out := gin.H{"user": h.registry.Count(rd.UserID)}
	if rd.HasPermission("admin") {
		out["total"] = h.registry.Total()
	}
	response.RespondOK(c, out)
}
