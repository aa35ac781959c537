package app

import (
	httpapi "github.com/Eddy007Saive/serverlog/internal/http"
	httpH "github.com/Eddy007Saive/serverlog/internal/http/handlers"
	httpMW "github.com/Eddy007Saive/serverlog/internal/http/middleware"
	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Realtime  *httpH.RealtimeHandler
	Job       *httpH.JobHandler
	Execution *httpH.ExecutionHandler
	Webhooks  *httpH.WebhooksHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	session := realtime.SessionConfig{Buffer: cfg.SessionBuffer, Heartbeat: cfg.Heartbeat}
	return Handlers{
		Health:    httpH.NewHealthHandler(services.Registry),
		Realtime:  httpH.NewRealtimeHandler(log, services.Registry, session),
		Job:       httpH.NewJobHandler(log, services.Runner, session),
		Execution: httpH.NewExecutionHandler(log, services.Engine, session),
		Webhooks:  httpH.NewWebhooksHandler(log, services.Catalog, session),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, services.Auth)}
}

func wireServer(log *logger.Logger, cfg Config, services Services, handlers Handlers, middleware Middleware) *httpapi.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return httpapi.NewServer(":"+cfg.Port, httpapi.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		CORSOrigins:      cfg.CORSOrigins,
		AuthMiddleware:   middleware.Auth,
		RealtimeHandler:  handlers.Realtime,
		JobHandler:       handlers.Job,
		ExecutionHandler: handlers.Execution,
		HealthHandler:    handlers.Health,
		WebhooksHandler:  handlers.Webhooks,
		Jobs:             services.Catalog,
	})
}
