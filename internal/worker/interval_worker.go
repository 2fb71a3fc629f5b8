// Package worker runs periodic background jobs: leaderboard reconciliation
// and event log retention cleanup.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/skillforge/xp-engine/internal/logger"
)

// Job is one unit of periodic work
type Job interface {
	Process(ctx context.Context) error
}

// IntervalWorker runs a job on a fixed interval until shutdown
type IntervalWorker struct {
	name     string
	interval time.Duration
	job      Job
	shutdown chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewIntervalWorker creates a worker running the job every interval
func NewIntervalWorker(name string, interval time.Duration, job Job) *IntervalWorker {
	return &IntervalWorker{
		name:     name,
		interval: interval,
		job:      job,
		shutdown: make(chan struct{}),
	}
}

// Start launches the worker loop. The first run happens after one interval,
// not immediately; startup state is assumed consistent.
func (w *IntervalWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx := logger.WithRequestID(context.Background(), logger.GenerateRequestID())
				if err := w.job.Process(ctx); err != nil {
					logger.FromContext(ctx).Error("Worker job failed",
						"worker", w.name, "error", err)
				}
			case <-w.shutdown:
				return
			}
		}
	}()
}

// Shutdown stops the loop and waits for an in-flight run to finish
func (w *IntervalWorker) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	w.once.Do(func() { close(w.shutdown) })

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgWorkerShutdownComplete, "worker", w.name)
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgWorkerShutdownTimeout, "worker", w.name)
		return ctx.Err()
	}
}
