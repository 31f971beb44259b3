/*
watcher.go - Periodic eligibility re-evaluation

PURPOSE:
  Eligibility changes with the calendar even when no record does: tenure
  matures, a long trip slides out of the presence window, a recovery date
  passes. The watcher re-evaluates the stored records as of today on a
  ticker, records each run and logs when the verdict flips.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Evaluates through tracker.Service (same path as GET /api/eligibility)
  - Records every run in evaluation_runs for the history endpoint
  - Compares with the previous recorded run to detect a verdict change

CONFIGURATION:
  - CheckInterval: How often to evaluate (default: 24 hours)
  - Enabled: Whether the watcher is active (default: true)

USAGE:
  watcher := NewEligibilityWatcher(handler)
  watcher.Start()
  // ... later
  watcher.Stop()

SEE ALSO:
  - handlers.go: ListEvaluationRuns endpoint
  - store/sqlite/sqlite.go: EvaluationRun storage
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/naturalization-engine/calendar"
	"github.com/warp/naturalization-engine/eligibility"
	"github.com/warp/naturalization-engine/store/sqlite"
	"github.com/warp/naturalization-engine/tracker"
)

// DefaultCheckInterval is how often the watcher evaluates.
const DefaultCheckInterval = 24 * time.Hour

// EligibilityWatcher re-evaluates eligibility on a schedule.
type EligibilityWatcher struct {
	Service       *tracker.Service
	Store         *sqlite.Store
	Log           logrus.FieldLogger
	Now           func() time.Time
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewEligibilityWatcher creates a watcher sharing the handler's service,
// store, logger and clock.
func NewEligibilityWatcher(h *Handler) *EligibilityWatcher {
	return &EligibilityWatcher{
		Service:       h.Service,
		Store:         h.Store,
		Log:           h.Log,
		Now:           h.Now,
		CheckInterval: DefaultCheckInterval,
		Enabled:       true,
	}
}

// Start begins the watcher. It evaluates once immediately.
func (ew *EligibilityWatcher) Start() {
	ew.mu.Lock()
	defer ew.mu.Unlock()

	if !ew.Enabled {
		ew.Log.Info("eligibility watcher disabled, not starting")
		return
	}
	if ew.ticker != nil {
		return
	}

	ew.ticker = time.NewTicker(ew.CheckInterval)
	ew.stop = make(chan struct{})
	ew.wg.Add(1)

	go ew.run(ew.ticker, ew.stop)

	ew.Log.WithField("interval", ew.CheckInterval).Info("eligibility watcher started")
}

// Stop stops the watcher and waits for an in-flight evaluation.
func (ew *EligibilityWatcher) Stop() {
	ew.mu.Lock()
	defer ew.mu.Unlock()

	if ew.ticker == nil {
		return
	}
	ew.ticker.Stop()
	close(ew.stop)
	ew.wg.Wait()
	ew.ticker = nil
	ew.Log.Info("eligibility watcher stopped")
}

func (ew *EligibilityWatcher) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ew.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-stop
		cancel()
	}()

	ew.check(ctx)

	for {
		select {
		case <-ticker.C:
			ew.check(ctx)
		case <-stop:
			return
		}
	}
}

func (ew *EligibilityWatcher) check(ctx context.Context) {
	if _, err := ew.RunOnce(ctx); err != nil && ctx.Err() == nil {
		ew.Log.WithError(err).Error("eligibility check failed")
	}
}

// RunOnce evaluates as of today, records the run and returns it.
func (ew *EligibilityWatcher) RunOnce(ctx context.Context) (sqlite.EvaluationRun, error) {
	asOf := calendar.Today(ew.Now())

	previous, err := ew.Store.LatestEvaluationRun(ctx)
	if err != nil {
		return sqlite.EvaluationRun{}, fmt.Errorf("load previous run: %w", err)
	}

	result, err := ew.Service.Evaluate(ctx, asOf)
	if err != nil {
		return sqlite.EvaluationRun{}, fmt.Errorf("evaluate: %w", err)
	}

	run := sqlite.NewEvaluationRun(asOf, result)
	if err := ew.Store.SaveEvaluationRun(ctx, run); err != nil {
		return sqlite.EvaluationRun{}, fmt.Errorf("save run: %w", err)
	}

	log := ew.Log.WithFields(logrus.Fields{
		"as_of":    asOf.String(),
		"eligible": result.Eligible,
		"blockers": eligibility.Codes(result.Blockers),
	})
	if result.EarliestFilingDate != nil {
		log = log.WithField("earliest_filing_date", result.EarliestFilingDate.String())
	}

	switch {
	case previous == nil:
		log.Info("first eligibility evaluation recorded")
	case previous.Eligible != result.Eligible:
		log.WithField("previous_as_of", previous.AsOf.String()).Warn("eligibility verdict changed")
	default:
		log.Debug("eligibility unchanged")
	}

	return run, nil
}
