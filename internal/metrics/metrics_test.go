package metrics

import (
	"testing"
	"time"
)

func TestCountersAndHealth(t *testing.T) {
	m := New()
	if !m.Healthy() {
		t.Fatal("new metrics should be healthy")
	}

	m.IncrementDelivered()
	m.IncrementDelivered()
	m.IncrementSkipped()
	m.IncrementDeliveryFailures()
	m.IncrementImagesDropped()
	m.RecordFeedError("boom")

	if m.Healthy() {
		t.Error("feed error should mark unhealthy")
	}

	stats := m.GetStats()
	if stats["entries_delivered"] != int64(2) || stats["entries_skipped"] != int64(1) {
		t.Errorf("unexpected stats %v", stats)
	}
	if stats["last_error"] != "boom" {
		t.Errorf("expected last error, got %v", stats["last_error"])
	}

	m.RecordCycle(2*time.Second, true)
	m.RecordCycle(4*time.Second, true)
	if !m.Healthy() {
		t.Error("clean cycle should restore health")
	}
	if m.AverageCycleDuration != 3*time.Second {
		t.Errorf("expected 3s average, got %v", m.AverageCycleDuration)
	}
}
