package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Eddy007Saive/serverlog/internal/observability"
	"github.com/Eddy007Saive/serverlog/internal/platform/envutil"
	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/workflow"
)

type Config struct {
	Port         string
	JWTSecretKey string
	CORSOrigins  []string

	WebhookBaseURL   string
	EngineAPIURL     string
	EngineAPIKey     string
	EngineTimeout    time.Duration
	EndpointOverride map[workflow.JobType]string

	PollInterval      time.Duration
	PollMaxDuration   time.Duration
	PollMaxIterations int

	StaleMaxAge   time.Duration
	SweepSchedule string
	Heartbeat     time.Duration
	SessionBuffer int

	RedisAddr     string
	RedisPassword string
	RedisChannel  string

	Otel observability.OtelConfig
}

// LoadEnvFile loads .env into the process environment. A missing file is not
// an error.
func LoadEnvFile(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:         envutil.String("PORT", "8080", log),
		JWTSecretKey: envutil.String("JWT_SECRET", "defaultsecret", log),
		CORSOrigins:  envutil.List("CORS_ALLOWED_ORIGINS", nil, log),

		WebhookBaseURL: envutil.String("N8N_WEBHOOK_URL", "http://localhost:5678/", log),
		EngineAPIURL:   envutil.String("N8N_API_URL", "http://localhost:5678/api/v1/", log),
		EngineAPIKey:   envutil.String("N8N_API_KEY", "", log),
		EngineTimeout:  envutil.Millis("WORKFLOW_HTTP_TIMEOUT_MS", 30*time.Second, log),

		PollInterval:      envutil.Millis("POLL_INTERVAL_MS", time.Second, log),
		PollMaxDuration:   envutil.Millis("POLL_MAX_DURATION_MS", 30*time.Minute, log),
		PollMaxIterations: envutil.Int("POLL_MAX_ITERATIONS", 0, log),

		StaleMaxAge:   envutil.Millis("SSE_STALE_MAX_AGE_MS", time.Hour, log),
		SweepSchedule: envutil.String("SSE_SWEEP_SCHEDULE", "@every 5m", log),
		Heartbeat:     envutil.Millis("SSE_HEARTBEAT_MS", 15*time.Second, log),
		SessionBuffer: envutil.Int("SSE_BUFFER", 64, log),

		RedisAddr:     envutil.String("REDIS_ADDR", "", log),
		RedisPassword: envutil.String("REDIS_PASSWORD", "", log),
		RedisChannel:  envutil.String("REDIS_CHANNEL", "sse", log),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "serverlog", log),
			Environment: envutil.String("APP_ENV", "development", log),
			Version:     envutil.String("APP_VERSION", "dev", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1, log),
		},
	}

	cfg.EndpointOverride = map[workflow.JobType]string{}
	for _, t := range []workflow.JobType{
		workflow.JobGenerateMessages,
		workflow.JobRegenerateMessages,
		workflow.JobEnrichContacts,
		workflow.JobDeleteRejectedContacts,
		workflow.JobSortProfiles,
		workflow.JobResortProfiles,
	} {
		name := "WORKFLOW_ENDPOINT_" + strings.ToUpper(string(t))
		if ep := envutil.String(name, "", log); ep != "" {
			cfg.EndpointOverride[t] = ep
		}
	}
	return cfg
}
