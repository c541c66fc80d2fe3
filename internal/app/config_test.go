package app

import (
	"testing"
	"time"

	"github.com/demandcast/forecast-backend/internal/platform/logger"
)

func TestLoadConfigDurationEnvOverrides(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	t.Setenv("REDIS_TTL", "2m")
	t.Setenv("JOB_POLL_INTERVAL", "45s")

	cfg, err := LoadConfig(log)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RedisTTL() != 2*time.Minute {
		t.Fatalf("expected 2m redis ttl, got %s", cfg.RedisTTL())
	}
	if cfg.JobPollInterval() != 45*time.Second {
		t.Fatalf("expected 45s poll interval, got %s", cfg.JobPollInterval())
	}
}

func TestLoadConfigBadDurationKeepsDefault(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	t.Setenv("JOB_POLL_INTERVAL", "soon")

	cfg, err := LoadConfig(log)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.JobPollInterval() != 10*time.Second {
		t.Fatalf("expected default poll interval, got %s", cfg.JobPollInterval())
	}
}
