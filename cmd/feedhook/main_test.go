package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunReturnsConfigErrors(t *testing.T) {
	t.Setenv("STATE_BACKEND", "mongo")

	err := run()
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestRunReturnsFeedListErrors(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	t.Setenv("LOG_FILE", filepath.Join(dir, "feedhook.log"))
	t.Setenv("FEEDS_CONFIG_PATH", filepath.Join(dir, "missing.yaml"))

	err := run()
	if err == nil || !strings.Contains(err.Error(), "load feed list") {
		t.Errorf("expected feed list error, got %v", err)
	}
}
