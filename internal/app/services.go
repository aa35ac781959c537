package app

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/realtime"
	"github.com/Eddy007Saive/serverlog/internal/realtime/bus"
	"github.com/Eddy007Saive/serverlog/internal/services"
	"github.com/Eddy007Saive/serverlog/internal/workflow"
)

type Services struct {
	Registry    *realtime.ConnectionRegistry
	Broadcaster *realtime.Broadcaster
	Emitter     services.SSEEmitter
	Bus         bus.Bus

	// Origin identifies this instance on the bus.
	Origin string

	Engine  *workflow.Client
	Poller  *workflow.Poller
	Catalog *workflow.Catalog
	Runner  services.JobRunner
	Auth    services.AuthService
	Sweeper *services.ConnectionSweeper
}

func wireServices(log *logger.Logger, cfg Config) (Services, error) {
	log.Info("Wiring services...")

	registry := realtime.NewConnectionRegistry(log)
	broadcaster := realtime.NewBroadcaster(log, registry)
	hub := &services.HubEmitter{Broadcaster: broadcaster, Registry: registry}

	out := Services{
		Registry:    registry,
		Broadcaster: broadcaster,
		Emitter:     hub,
	}

	if cfg.RedisAddr != "" {
		b, err := bus.NewRedisBus(log, bus.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			return Services{}, fmt.Errorf("init redis bus: %w", err)
		}
		out.Bus = b
		out.Origin = uuid.New().String()
		out.Emitter = &services.RedisEmitter{Local: hub, Bus: b, Origin: out.Origin, Log: log}
		log.Info("Redis SSE bus enabled", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel, "origin", out.Origin)
	}

	out.Engine = workflow.NewClient(log, workflow.ClientConfig{
		APIBaseURL: cfg.EngineAPIURL,
		APIKey:     cfg.EngineAPIKey,
		Timeout:    cfg.EngineTimeout,
	})
	out.Poller = workflow.NewPoller(log, out.Engine, workflow.PollerConfig{
		BaseURL:       cfg.WebhookBaseURL,
		Interval:      cfg.PollInterval,
		MaxDuration:   cfg.PollMaxDuration,
		MaxIterations: cfg.PollMaxIterations,
	})
	out.Catalog = workflow.NewCatalog(cfg.WebhookBaseURL, cfg.EndpointOverride)
	out.Runner = services.NewJobRunner(log, out.Engine, out.Poller, out.Emitter)
	out.Auth = services.NewAuthService(log, cfg.JWTSecretKey)

	sweeper, err := services.NewConnectionSweeper(log, registry, cfg.SweepSchedule, cfg.StaleMaxAge)
	if err != nil {
		if out.Bus != nil {
			_ = out.Bus.Close()
		}
		return Services{}, err
	}
	out.Sweeper = sweeper
	return out, nil
}
