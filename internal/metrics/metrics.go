package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	Cycles           int64
	EntriesDelivered int64
	EntriesSkipped   int64
	DeliveryFailures int64
	ImagesDropped    int64
	FeedErrors       int64

	// Timings
	LastCycleDuration    time.Duration
	AverageCycleDuration time.Duration
	TotalCycleDuration   time.Duration

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) IncrementDelivered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesDelivered++
}

func (m *Metrics) IncrementSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesSkipped++
}

func (m *Metrics) IncrementDeliveryFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeliveryFailures++
}

func (m *Metrics) IncrementImagesDropped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImagesDropped++
}

// RecordFeedError counts a failed feed and marks the process unhealthy until
// the next clean cycle.
func (m *Metrics) RecordFeedError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedErrors++
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

// RecordCycle closes a poll cycle. healthy reports whether every feed in the
// cycle was processed without error.
func (m *Metrics) RecordCycle(duration time.Duration, healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Cycles++
	m.LastCycleDuration = duration
	m.TotalCycleDuration += duration
	m.AverageCycleDuration = m.TotalCycleDuration / time.Duration(m.Cycles)
	m.LastRunTime = time.Now()
	m.IsHealthy = healthy
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"cycles":                 m.Cycles,
		"entries_delivered":      m.EntriesDelivered,
		"entries_skipped":        m.EntriesSkipped,
		"delivery_failures":      m.DeliveryFailures,
		"images_dropped":         m.ImagesDropped,
		"feed_errors":            m.FeedErrors,
		"last_cycle_duration_ms": m.LastCycleDuration.Milliseconds(),
		"avg_cycle_duration_ms":  m.AverageCycleDuration.Milliseconds(),
		"last_run_time":          m.LastRunTime.Format(time.RFC3339),
		"last_error_time":        m.LastErrorTime.Format(time.RFC3339),
		"last_error":             m.LastError,
		"is_healthy":             m.IsHealthy,
	}
}
