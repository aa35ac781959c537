package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/Eddy007Saive/serverlog/internal/http/handlers"
	httpMW "github.com/Eddy007Saive/serverlog/internal/http/middleware"
	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/workflow"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	RealtimeHandler  *httpH.RealtimeHandler
	JobHandler       *httpH.JobHandler
	ExecutionHandler *httpH.ExecutionHandler
	HealthHandler    *httpH.HealthHandler
	WebhooksHandler  *httpH.WebhooksHandler

	Jobs *workflow.Catalog
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
		r.GET("/api/health", cfg.HealthHandler.HealthCheck)
	}

	// Route listing
	if cfg.WebhooksHandler != nil {
		r.GET("/api/webhooks", cfg.WebhooksHandler.List)
	}

	if cfg.AuthMiddleware == nil {
		return r
	}
	am := cfg.AuthMiddleware

	api := r.Group("/api")
	api.Use(am.RequireAuth())
	{
		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
			api.GET("/sse/connections", cfg.RealtimeHandler.Connections)
		}

		// Execution lookup
		if cfg.ExecutionHandler != nil {
			api.GET("/execution/:executionId", am.RequirePermission("read"), cfg.ExecutionHandler.GetExecution)
		}
	}

	// Jobs: each one is reachable under both /webhook/<path> and /api/<path>.
	if cfg.JobHandler != nil && cfg.Jobs != nil {
		webhook := r.Group("/webhook")
		webhook.Use(am.RequireAuth())
		for _, spec := range cfg.Jobs.All() {
			trigger := cfg.JobHandler.Trigger(spec)
			webhook.POST("/"+spec.Path, am.RequirePermission(spec.Permission), trigger)
			api.POST("/"+spec.Path, am.RequirePermission(spec.Permission), trigger)
		}
	}

	return r
}
