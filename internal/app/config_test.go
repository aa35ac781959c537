package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
	"github.com/Eddy007Saive/serverlog/internal/services"
	"github.com/Eddy007Saive/serverlog/internal/workflow"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(logger.NewNop())
	if cfg.Port != "8080" || cfg.PollInterval != time.Second || cfg.StaleMaxAge != time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PollMaxDuration != 30*time.Minute || cfg.PollMaxIterations != 0 {
		t.Fatalf("unexpected poll bounds: %s %d", cfg.PollMaxDuration, cfg.PollMaxIterations)
	}
	if len(cfg.EndpointOverride) != 0 {
		t.Fatalf("no overrides expected: %#v", cfg.EndpointOverride)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("POLL_INTERVAL_MS", "250")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test")
	t.Setenv("WORKFLOW_ENDPOINT_SORT_PROFILES", "http://engine/custom/sort")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.5")

	cfg := LoadConfig(logger.NewNop())
	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("poll interval: %s", cfg.PollInterval)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.test" {
		t.Fatalf("cors origins: %#v", cfg.CORSOrigins)
	}
	if cfg.EndpointOverride[workflow.JobSortProfiles] != "http://engine/custom/sort" {
		t.Fatalf("endpoint override: %#v", cfg.EndpointOverride)
	}
	if cfg.Otel.SampleRatio != 0.5 {
		t.Fatalf("sample ratio: %v", cfg.Otel.SampleRatio)
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SERVERLOG_ENVFILE_TEST=loaded\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("SERVERLOG_ENVFILE_TEST", "")
	os.Unsetenv("SERVERLOG_ENVFILE_TEST")
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv("SERVERLOG_ENVFILE_TEST"); got != "loaded" {
		t.Fatalf("env not loaded: %q", got)
	}
}

func TestWireServicesLocal(t *testing.T) {
	cfg := LoadConfig(logger.NewNop())
	svcs, err := wireServices(logger.NewNop(), cfg)
	if err != nil {
		t.Fatalf("wireServices: %v", err)
	}
	if svcs.Bus != nil {
		t.Fatal("bus should be off without REDIS_ADDR")
	}
	if _, ok := svcs.Emitter.(*services.HubEmitter); !ok {
		t.Fatalf("want local emitter, got %T", svcs.Emitter)
	}
	if len(svcs.Catalog.All()) != 6 {
		t.Fatalf("catalog size: %d", len(svcs.Catalog.All()))
	}
}

func TestWireServicesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", mr.Addr())

	svcs, err := wireServices(logger.NewNop(), LoadConfig(logger.NewNop()))
	if err != nil {
		t.Fatalf("wireServices: %v", err)
	}
	t.Cleanup(func() { _ = svcs.Bus.Close() })
	if _, ok := svcs.Emitter.(*services.RedisEmitter); !ok {
		t.Fatalf("want redis emitter, got %T", svcs.Emitter)
	}
	if svcs.Origin == "" {
		t.Fatal("origin must be set when the bus is on")
	}
}

func TestWireServicesBadSchedule(t *testing.T) {
	t.Setenv("SSE_SWEEP_SCHEDULE", "whenever")
	if _, err := wireServices(logger.NewNop(), LoadConfig(logger.NewNop())); err == nil {
		t.Fatal("expected error for invalid sweep schedule")
	}
}
