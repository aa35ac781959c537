package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Eddy007Saive/serverlog/internal/http/response"
	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/realtime"
	"github.com/Eddy007Saive/serverlog/internal/workflow"
)

// RouteInfo describes one endpoint in the public route listing.
type RouteInfo struct {
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Description string   `json:"description"`
	Auth        bool     `json:"auth"`
	Permissions []string `json:"permissions,omitempty"`
}

type WebhooksHandler struct {
	log     *logger.Logger
	routes  []RouteInfo
	session realtime.SessionConfig
}

func NewWebhooksHandler(log *logger.Logger, jobs *workflow.Catalog, session realtime.SessionConfig) *WebhooksHandler {
	return &WebhooksHandler{
		log:     log.With("handler", "WebhooksHandler"),
		routes:  ListRoutes(jobs),
		session: session,
	}
}

// ListRoutes returns every endpoint the router serves: each job under
// /webhook and /api, then the fixed routes.
func ListRoutes(jobs *workflow.Catalog) []RouteInfo {
	var specs []workflow.JobSpec
	if jobs != nil {
		specs = jobs.All()
	}
	out := make([]RouteInfo, 0, 2*len(specs)+6)
	for _, prefix := range []string{"/webhook/", "/api/"} {
		for _, spec := range specs {
			out = append(out, RouteInfo{
				Path:        prefix + spec.Path,
				Method:      http.MethodPost,
				Description: spec.Description,
				Auth:        true,
				Permissions: []string{spec.Permission},
			})
		}
	}
	return append(out,
		RouteInfo{Path: "/api/execution/:executionId", Method: http.MethodGet, Description: "Check an execution's state (SSE)", Auth: true, Permissions: []string{"read"}},
		RouteInfo{Path: "/api/sse/stream", Method: http.MethodGet, Description: "Receive the user's job events (SSE)", Auth: true},
		RouteInfo{Path: "/api/sse/connections", Method: http.MethodGet, Description: "Count open event streams", Auth: true},
		RouteInfo{Path: "/health", Method: http.MethodGet, Description: "Server health", Auth: false},
		RouteInfo{Path: "/api/health", Method: http.MethodGet, Description: "Server health", Auth: false},
		RouteInfo{Path: "/api/webhooks", Method: http.MethodGet, Description: "List available endpoints (SSE)", Auth: false},
	)
}

// GET /api/webhooks
func (h *WebhooksHandler) List(c *gin.Context) {
	sess, err := realtime.OpenSession(c.Writer, "", nil, h.log, h.session)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "stream_unsupported", err)
		return
	}

	go func() {
		defer sess.Close()
		_ = sess.Emit(realtime.Event{Type: realtime.EventStart, Data: map[string]any{"message": "Fetching the endpoint list..."}})
		_ = sess.Emit(realtime.Event{Type: realtime.EventProgress, Data: map[string]any{"message": "Endpoint list compiled"}})
		_ = sess.Emit(realtime.Event{Type: realtime.EventCompleted, Data: map[string]any{
			"success": true,
			"message": "Endpoint list retrieved successfully",
			"data": map[string]any{
				"webhooks": h.routes,
				"total":    len(h.routes),
				"note":     "Job and lookup endpoints stream their results as Server-Sent Events",
			},
		}})
	}()

	sess.Serve(c.Request.Context())
}
