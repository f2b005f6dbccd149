package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.PollInterval != time.Hour {
		t.Errorf("expected default poll interval 1h, got %v", cfg.PollInterval)
	}
	if cfg.StateBackend != BackendFile {
		t.Errorf("expected file backend, got %q", cfg.StateBackend)
	}
	if cfg.StateFile != ".feedhook_state.json" {
		t.Errorf("unexpected state file %q", cfg.StateFile)
	}
	if cfg.ImageTimeout != 6*time.Second {
		t.Errorf("expected 6s image timeout, got %v", cfg.ImageTimeout)
	}
	if cfg.WebhookTimeout != 15*time.Second {
		t.Errorf("expected 15s webhook timeout, got %v", cfg.WebhookTimeout)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "120")
	t.Setenv("STATE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/state.db")
	t.Setenv("WEBHOOK_RATE_PER_MINUTE", "0")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PollInterval != 2*time.Minute {
		t.Errorf("expected 2m, got %v", cfg.PollInterval)
	}
	if cfg.StateBackend != BackendSQLite || cfg.SQLitePath != "/tmp/state.db" {
		t.Errorf("sqlite settings not applied: %+v", cfg)
	}
	if cfg.WebhookRatePerMin != 0 {
		t.Errorf("expected pacing disabled, got %d", cfg.WebhookRatePerMin)
	}
	if !cfg.Debug {
		t.Error("expected debug enabled")
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	base := Config{PollInterval: time.Minute, StateBackend: BackendFile, StateFile: "s.json"}

	cases := map[string]func(c *Config){
		"zero interval":        func(c *Config) { c.PollInterval = 0 },
		"unknown backend":      func(c *Config) { c.StateBackend = "etcd" },
		"postgres without url": func(c *Config) { c.StateBackend = BackendPostgres },
		"negative rate":        func(c *Config) { c.WebhookRatePerMin = -1 },
	}

	for name, mutate := range cases {
		c := base
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	if err := base.Validate(); err != nil {
		t.Errorf("base config should be valid: %v", err)
	}
}
