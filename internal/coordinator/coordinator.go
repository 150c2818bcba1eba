// Package coordinator drives the six named pipeline tasks of spec.md §4.6 at
// independent cadences from one tick loop, using internal/register for the
// shared last_run_at state and the per-task advisory lock. Grounded on
// services/jax-market/internal/ingester/ingester.go's Start(ctx)
// time.NewTicker + select-over-ctx.Done() loop, generalized from one fixed
// interval to N independently-cadenced named tasks.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"geopulse/internal/observability"
	"geopulse/internal/register"
)

// Task names, spec.md §4.6.
const (
	TaskEventIngest        = "event-ingest"
	TaskIndicatorIngest    = "indicator-ingest"
	TaskEventProcessing    = "event-processing"
	TaskFeatureEngineering = "feature-engineering"
	TaskRiskScoring        = "risk-scoring"
	TaskModelRetraining    = "model-retraining"
)

// TaskNames lists the six tasks in the order spec.md §4.6's table declares
// them; Tick evaluates them in this order each pass.
var TaskNames = []string{
	TaskEventIngest,
	TaskIndicatorIngest,
	TaskEventProcessing,
	TaskFeatureEngineering,
	TaskRiskScoring,
	TaskModelRetraining,
}

// DefaultIntervals are spec.md §4.6's stated per-task cadences.
var DefaultIntervals = map[string]time.Duration{
	TaskEventIngest:        6 * time.Hour,
	TaskIndicatorIngest:    168 * time.Hour,
	TaskEventProcessing:    1 * time.Hour,
	TaskFeatureEngineering: 24 * time.Hour,
	TaskRiskScoring:        24 * time.Hour,
	TaskModelRetraining:    168 * time.Hour,
}

// DefaultTickInterval is the coordinator's own loop cadence (spec.md §4.6
// "On each coordinator tick (default 1 h)").
const DefaultTickInterval = 1 * time.Hour

// lockTTL bounds how long a task may hold its advisory lock before a
// crashed holder's lock is reclaimed by the next tick.
const lockTTL = 10 * time.Minute

func lastRunKey(task string) string { return "scheduler:last_run_at:" + task }

// TaskFunc performs one task's unit of work for a single run.
type TaskFunc func(ctx context.Context) error

// Coordinator drives registered tasks at independent cadences, backed by a
// shared register.Register so last_run_at and the advisory lock are honored
// across every process (spec.md §5).
type Coordinator struct {
	register  register.Register
	metrics   *observability.PipelineMetrics
	tasks     map[string]TaskFunc
	intervals map[string]time.Duration
	tick      time.Duration
}

// New builds a Coordinator with spec.md §4.6's default intervals and tick
// cadence. Call Register for each task before Run or RunTask.
func New(reg register.Register, metrics *observability.PipelineMetrics) *Coordinator {
	intervals := make(map[string]time.Duration, len(DefaultIntervals))
	for k, v := range DefaultIntervals {
		intervals[k] = v
	}
	return &Coordinator{
		register:  reg,
		metrics:   metrics,
		tasks:     make(map[string]TaskFunc),
		intervals: intervals,
		tick:      DefaultTickInterval,
	}
}

// Register binds a task name to its implementation.
func (c *Coordinator) Register(name string, fn TaskFunc) {
	c.tasks[name] = fn
}

// SetInterval overrides one task's cadence.
func (c *Coordinator) SetInterval(name string, interval time.Duration) {
	c.intervals[name] = interval
}

// SetTickInterval overrides the coordinator's own loop cadence.
func (c *Coordinator) SetTickInterval(interval time.Duration) {
	c.tick = interval
}

// Status is one task's entry in the scheduler-status table.
type Status struct {
	Task      string
	Interval  time.Duration
	HasRun    bool
	LastRunAt time.Time
	NextDueAt time.Time
}

// Statuses returns the per-task state table for the scheduler-status CLI
// command, in TaskNames order.
func (c *Coordinator) Statuses(ctx context.Context) ([]Status, error) {
	out := make([]Status, 0, len(TaskNames))
	for _, name := range TaskNames {
		interval := c.intervals[name]
		last, err := c.register.GetTimestamp(ctx, lastRunKey(name))
		st := Status{Task: name, Interval: interval}
		switch {
		case err == nil:
			st.HasRun = true
			st.LastRunAt = last
			st.NextDueAt = last.Add(interval)
		case err == register.ErrNotFound:
			// never run; due immediately
		default:
			return nil, fmt.Errorf("coordinator: status %s: %w", name, err)
		}
		out = append(out, st)
	}
	return out, nil
}

// Tick runs one coordinator pass: every registered task whose interval has
// elapsed since its last successful run is executed under its advisory
// lock. Tasks not due, or already locked by a concurrent tick or manual
// trigger, are skipped without error.
func (c *Coordinator) Tick(ctx context.Context) error {
	tickStart := time.Now().UTC()
	for _, name := range TaskNames {
		fn, ok := c.tasks[name]
		if !ok {
			continue
		}
		due, err := c.isDue(ctx, name, tickStart)
		if err != nil {
			return fmt.Errorf("coordinator: check due %s: %w", name, err)
		}
		if !due {
			continue
		}
		if err := c.runLocked(ctx, name, fn, tickStart); err != nil {
			observability.LogEvent(ctx, "error", "task_failed", map[string]any{"task": name, "error": err})
		}
	}
	return nil
}

func (c *Coordinator) isDue(ctx context.Context, name string, asOf time.Time) (bool, error) {
	last, err := c.register.GetTimestamp(ctx, lastRunKey(name))
	if err != nil {
		if err == register.ErrNotFound {
			return true, nil
		}
		return false, err
	}
	return !asOf.Before(last.Add(c.intervals[name])), nil
}

// RunTask runs name out-of-band regardless of cadence — the manual-trigger
// entry point of spec.md §4.6 — updating last_run_at only on success.
func (c *Coordinator) RunTask(ctx context.Context, name string) error {
	fn, ok := c.tasks[name]
	if !ok {
		return fmt.Errorf("coordinator: unknown task %q", name)
	}
	return c.runLocked(ctx, name, fn, time.Now().UTC())
}

// runLocked acquires name's advisory lock so two instances of the same task
// never run concurrently (spec.md §4.6/§5), runs fn, and advances
// last_run_at to runAt only on success; a failed task leaves last_run_at
// untouched so the next tick retries it (spec.md §7).
func (c *Coordinator) runLocked(ctx context.Context, name string, fn TaskFunc, runAt time.Time) (err error) {
	release, err := c.register.TryLock(ctx, lastRunKey(name), lockTTL)
	if err != nil {
		if err == register.ErrLocked {
			observability.LogEvent(ctx, "info", "task_already_running", map[string]any{"task": name})
			return nil
		}
		return err
	}
	defer release(ctx)

	observability.LogTaskStart(ctx, name)
	start := time.Now()
	err = fn(ctx)
	duration := time.Since(start)
	observability.LogTaskEnd(ctx, name, duration, err)

	if c.metrics != nil {
		c.metrics.TaskDuration.ObserveDuration(duration, name)
	}
	if err != nil {
		return err
	}

	if setErr := c.register.SetTimestamp(ctx, lastRunKey(name), runAt, 0); setErr != nil {
		return setErr
	}
	if c.metrics != nil {
		c.metrics.TaskLastSuccessEpoch.Set(float64(runAt.Unix()), name)
	}
	return nil
}

// Run drives the coordinator loop: tick immediately, then every tick
// interval, until ctx is cancelled. A cancellation aborts after the
// in-flight tick's current task finishes — runLocked's defer always
// releases the lock, so no lock is left held on exit.
func (c *Coordinator) Run(ctx context.Context) error {
	if err := c.Tick(ctx); err != nil {
		observability.LogEvent(ctx, "error", "coordinator_tick_failed", map[string]any{"error": err})
	}

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Tick(ctx); err != nil {
				observability.LogEvent(ctx, "error", "coordinator_tick_failed", map[string]any{"error": err})
			}
		}
	}
}
