package history

import (
	"context"
	"errors"
	"time"

	"github.com/veldtlab/hwscope/gpu"
	"github.com/veldtlab/hwscope/internal/circuitbreaker"
	"github.com/veldtlab/hwscope/internal/errorreporting"
	"github.com/veldtlab/hwscope/internal/logger"
	"github.com/veldtlab/hwscope/internal/metrics"
)

// Recorder periodically samples every device through the manager and
// writes the readings to the store, pruning old rows as it goes.
// A circuit breaker around the writes keeps a dead database from
// being hammered on every tick.
type Recorder struct {
	store     *Store
	manager   *gpu.Manager
	interval  time.Duration
	retention time.Duration
	breaker   *circuitbreaker.CircuitBreaker
	stop      chan struct{}
}

// NewRecorder creates a recorder sampling every interval and keeping
// samples for retention.
func NewRecorder(store *Store, manager *gpu.Manager, interval, retention time.Duration) *Recorder {
	return &Recorder{
		store:     store,
		manager:   manager,
		interval:  interval,
		retention: retention,
		breaker: circuitbreaker.New(circuitbreaker.Config{
			Name:             "history_db",
			FailureThreshold: 5,
			Timeout:          30 * time.Second,
		}),
		stop: make(chan struct{}),
	}
}

// Start runs the recording loop until Stop is called or ctx is
// cancelled.
func (r *Recorder) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Prune roughly hourly, not on every sample.
	prune := time.NewTicker(time.Hour)
	defer prune.Stop()

	for {
		select {
		case <-ticker.C:
			r.record(ctx)
		case <-prune.C:
			cutoff := time.Now().Add(-r.retention)
			if removed, err := r.store.PruneBefore(ctx, cutoff); err != nil {
				logger.Warn("pruning device samples failed", "error", err)
			} else if removed > 0 {
				logger.Info("pruned device samples", "removed", removed)
			}
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the recording loop.
func (r *Recorder) Stop() {
	close(r.stop)
}

func (r *Recorder) record(ctx context.Context) {
	for _, dev := range r.manager.Devices() {
		fresh, err := r.manager.DeviceCached(dev.Index)
		if err != nil {
			logger.Warn("skipping history sample", "index", dev.Index, "error", err)
			continue
		}
		err = r.breaker.Call(func() error {
			return r.store.InsertSample(ctx, fresh)
		})
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			// The database is down; skip the rest of this tick.
			logger.Debug("history writes suspended, circuit open")
			return
		}
		if err != nil {
			logger.Warn("recording device sample failed", "index", dev.Index, "error", err)
			metrics.HistoryRecordErrors.Inc()
			errorreporting.CaptureErrorWithContext(err,
				map[string]string{"component": "history"},
				map[string]interface{}{"deviceIndex": dev.Index})
			continue
		}
		metrics.HistorySamplesRecorded.Inc()
	}
}
