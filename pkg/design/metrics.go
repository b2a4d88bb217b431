package design

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SnapAttempts counts snap searches by outcome: none, blocked,
	// preview, magnet or commit.
	SnapAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefab_snap_attempts_total",
			Help: "Snap searches by outcome",
		},
		[]string{"outcome"},
	)

	// Modules tracks the number of modules in the composition.
	Modules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "prefab_modules",
			Help: "Modules currently placed",
		},
	)

	// HistoryOperations counts undo and redo requests that changed state.
	HistoryOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefab_history_operations_total",
			Help: "Undo and redo operations applied",
		},
		[]string{"op"},
	)

	// Placements counts placement resolutions by outcome: clear, moved or
	// exhausted.
	Placements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prefab_placements_total",
			Help: "Placement resolutions by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(SnapAttempts)
	prometheus.MustRegister(Modules)
	prometheus.MustRegister(HistoryOperations)
	prometheus.MustRegister(Placements)
}

// MetricsHandler serves the registered collectors at /metrics.
func MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// ServeMetrics exposes MetricsHandler on addr until ctx is done.
func ServeMetrics(ctx context.Context, addr string, log *slog.Logger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      MetricsHandler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			return
		}
		errc <- nil
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("metrics: serve %s: %w", addr, err)
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("metrics stopping", "addr", addr)
	return srv.Shutdown(shutdown)
}
