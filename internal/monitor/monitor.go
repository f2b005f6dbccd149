package monitor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/feedhook/internal/metrics"
)

// StateCounter reports the number of seen links per feed.
type StateCounter interface {
	Counts() map[string]int
}

// NewRouter serves /health, /metrics and /state.
func NewRouter(m *metrics.Metrics, state StateCounter) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		stats := m.GetStats()

		status := "ok"
		code := http.StatusOK
		if !m.Healthy() {
			status = "error"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":     status,
			"last_run":   stats["last_run_time"],
			"last_error": stats["last_error"],
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, m.GetStats())
	})

	r.GET("/state", func(c *gin.Context) {
		counts := state.Counts()
		total := 0
		for _, n := range counts {
			total += n
		}
		c.JSON(http.StatusOK, gin.H{
			"feeds":       counts,
			"total_links": total,
		})
	})

	return r
}

// Serve runs the monitoring server on port until ctx is cancelled.
func Serve(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting monitoring server", "port", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
