// internal/app/system/workers/retention.go
package workers

import (
	"context"
	"sync"
	"time"

	readingstore "github.com/dalemusser/devicehub/internal/app/store/readings"
	"github.com/dalemusser/devicehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ReadingsRetention is a background worker that deletes sensor readings
// older than a retention window.
type ReadingsRetention struct {
	stores    []*readingstore.Store
	log       *zap.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewReadingsRetention creates a retention worker.
//
// Parameters:
//   - stores: the sensor collections to prune
//   - logger: zap logger for logging
//   - interval: how often to prune (e.g., 1 hour)
//   - retention: how long readings are kept (e.g., 30 days)
func NewReadingsRetention(stores []*readingstore.Store, logger *zap.Logger, interval, retention time.Duration) *ReadingsRetention {
	return &ReadingsRetention{
		stores:    stores,
		log:       logger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background prune loop.
func (w *ReadingsRetention) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("readings retention worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *ReadingsRetention) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("readings retention worker stopped")
}

func (w *ReadingsRetention) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Prune(context.Background())
		}
	}
}

// Prune deletes expired readings from every store once. It returns the
// total deleted; per-collection failures are logged and skipped.
func (w *ReadingsRetention) Prune(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	cutoff := w.now().Add(-w.retention)
	var total int64
	for _, s := range w.stores {
		n, err := s.DeleteBefore(ctx, cutoff)
		if err != nil {
			w.log.Error("failed to prune readings",
				zap.String("collection", s.Collection()),
				zap.Error(err))
			continue
		}
		if n > 0 {
			w.log.Info("pruned readings",
				zap.String("collection", s.Collection()),
				zap.Int64("count", n),
				zap.Time("cutoff", cutoff))
		}
		total += n
	}
	return total
}
