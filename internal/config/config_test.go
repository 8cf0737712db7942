package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.PipePath != "/tmp/ems.pipe" {
		t.Fatalf("PipePath = %q", cfg.PipePath)
	}
	if cfg.SessionWorkers != 8 || cfg.QueueCapacity != 8 {
		t.Fatalf("pool sizing = %d/%d, want 8/8", cfg.SessionWorkers, cfg.QueueCapacity)
	}
	if cfg.StateAccessDelay != 0 {
		t.Fatalf("StateAccessDelay = %s, want 0", cfg.StateAccessDelay)
	}
	if cfg.PublishEnabled || cfg.ConsumerEnabled {
		t.Fatal("broker integration enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EMS_PIPE_PATH", "/run/reservations.pipe")
	t.Setenv("EMS_STATE_ACCESS_DELAY_US", "1500")
	t.Setenv("EMS_SESSION_WORKERS", "4")
	t.Setenv("EMS_QUEUE_CAPACITY", "16")
	t.Setenv("EMS_PUBLISH_CONFIRMED", "true")

	cfg := Load()
	if cfg.PipePath != "/run/reservations.pipe" {
		t.Fatalf("PipePath = %q", cfg.PipePath)
	}
	if cfg.StateAccessDelay != 1500*time.Microsecond {
		t.Fatalf("StateAccessDelay = %s, want 1.5ms", cfg.StateAccessDelay)
	}
	if cfg.SessionWorkers != 4 || cfg.QueueCapacity != 16 {
		t.Fatalf("pool sizing = %d/%d, want 4/16", cfg.SessionWorkers, cfg.QueueCapacity)
	}
	if !cfg.PublishEnabled {
		t.Fatal("PublishEnabled not picked up")
	}
}

func TestLoadCacheConfig(t *testing.T) {
	cfg := LoadCacheConfig()
	if !cfg.Enabled {
		t.Fatal("cache disabled by default")
	}
	if cfg.TTL != 5*time.Second {
		t.Fatalf("TTL = %s, want 5s", cfg.TTL)
	}
	if cfg.Prefix != "ems:cache" {
		t.Fatalf("Prefix = %q", cfg.Prefix)
	}

	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_TTL", "30s")
	cfg = LoadCacheConfig()
	if cfg.Enabled || cfg.TTL != 30*time.Second {
		t.Fatalf("cache config = %+v", cfg)
	}
}
