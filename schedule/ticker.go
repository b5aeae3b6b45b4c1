package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chrond/chrond/errors"
)

// Ticker drives the scheduler loop. Each tick it selects due jobs and
// runs them to completion, one after another.
type Ticker struct {
	store    *Store
	runner   *Runner
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	logger   *zap.SugaredLogger

	mu              sync.Mutex
	lastTickAt      time.Time
	ticksSinceStart int64
	lastCountdown   string
}

// TickerConfig contains configuration for the scheduler ticker.
type TickerConfig struct {
	Interval time.Duration // how often to check for due jobs
}

// DefaultTickerConfig returns sensible defaults.
func DefaultTickerConfig() TickerConfig {
	return TickerConfig{
		Interval: 1 * time.Second,
	}
}

// NewTicker creates a scheduler ticker.
func NewTicker(store *Store, runner *Runner, cfg TickerConfig, logger *zap.SugaredLogger) *Ticker {
	return NewTickerWithContext(context.Background(), store, runner, cfg, logger)
}

// NewTickerWithContext creates a ticker with a parent context.
func NewTickerWithContext(ctx context.Context, store *Store, runner *Runner, cfg TickerConfig, logger *zap.SugaredLogger) *Ticker {
	tickerCtx, cancel := context.WithCancel(ctx)

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultTickerConfig().Interval
	}

	return &Ticker{
		store:    store,
		runner:   runner,
		interval: interval,
		ctx:      tickerCtx,
		cancel:   cancel,
		logger:   logger,
	}
}

// Start begins the ticker loop.
func (t *Ticker) Start() {
	t.wg.Add(1)
	go t.run()
	t.logger.Infow("Scheduler started", "interval", t.interval)
}

// Stop gracefully stops the ticker, waiting for an in-flight tick.
func (t *Ticker) Stop() {
	t.cancel()
	t.wg.Wait()
	t.logger.Infow("Scheduler stopped")
}

func (t *Ticker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case tickTime := <-ticker.C:
			t.mu.Lock()
			t.lastTickAt = tickTime
			t.ticksSinceStart++
			t.mu.Unlock()

			t.logCountdown(tickTime)

			if err := t.checkDueJobs(tickTime); err != nil {
				t.logger.Warnw("Scheduler tick error", "error", err, "tick", t.ticksSinceStart)
			}
		}
	}
}

// logCountdown logs the time until the next scheduled run, but only when
// the rounded countdown changes so the loop doesn't flood the log.
func (t *Ticker) logCountdown(now time.Time) {
	next, err := t.store.NextScheduled()
	if err != nil {
		t.logger.Warnw("Failed to get next scheduled job", "error", err)
		return
	}

	var msg string
	if next == nil {
		msg = "no scheduled runs"
	} else {
		msg = next.Name + " in " + next.TimeUntil(now)
	}

	t.mu.Lock()
	changed := msg != t.lastCountdown
	t.lastCountdown = msg
	t.mu.Unlock()

	if changed {
		t.logger.Debugw("Next run", "status", msg)
	}
}

// checkDueJobs runs every job whose next run has arrived. Jobs run
// sequentially; a failing job does not stop the rest of the batch.
func (t *Ticker) checkDueJobs(now time.Time) error {
	jobs, err := t.store.Due(now)
	if err != nil {
		return errors.Wrap(err, "failed to list due jobs")
	}

	for _, job := range jobs {
		select {
		case <-t.ctx.Done():
			return t.ctx.Err()
		default:
		}

		if err := t.runner.Run(t.ctx, job, true); err != nil {
			t.logger.Errorw("Failed to notify for job run",
				"job", job.Name,
				"error", err)
		}
	}

	return nil
}

// Stats returns loop counters for diagnostics.
func (t *Ticker) Stats() map[string]interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	return map[string]interface{}{
		"last_tick_at":      t.lastTickAt,
		"ticks_since_start": t.ticksSinceStart,
		"interval":          t.interval,
	}
}
