package coordinator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"geopulse/internal/register"
)

func TestTick_RunsDueTaskAndAdvancesLastRunAt(t *testing.T) {
	reg := register.NewMemoryRegister()
	t.Cleanup(func() { _ = reg.Close() })
	c := New(reg, nil)

	var calls int32
	c.Register(TaskEventProcessing, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	c.SetInterval(TaskEventProcessing, time.Hour)

	if err := c.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}

	// A second tick moments later must not re-run: last_run_at was advanced.
	if err := c.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls after second tick = %d, want 1 (not due yet)", got)
	}
}

func TestTick_FailedTaskDoesNotAdvanceLastRunAt(t *testing.T) {
	reg := register.NewMemoryRegister()
	t.Cleanup(func() { _ = reg.Close() })
	c := New(reg, nil)

	var calls int32
	c.Register(TaskRiskScoring, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	})
	c.SetInterval(TaskRiskScoring, time.Hour)

	if err := c.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if err := c.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls = %d, want 2 (failure must retry next tick)", got)
	}
}

func TestTick_UnregisteredTaskIsSkipped(t *testing.T) {
	reg := register.NewMemoryRegister()
	t.Cleanup(func() { _ = reg.Close() })
	c := New(reg, nil)

	if err := c.Tick(context.Background()); err != nil {
		t.Fatalf("tick with no tasks registered: %v", err)
	}
}

func TestRunTask_IgnoresCadenceAndAdvancesOnSuccess(t *testing.T) {
	reg := register.NewMemoryRegister()
	t.Cleanup(func() { _ = reg.Close() })
	c := New(reg, nil)

	var calls int32
	c.Register(TaskFeatureEngineering, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	c.SetInterval(TaskFeatureEngineering, 24*time.Hour)

	if err := c.RunTask(context.Background(), TaskFeatureEngineering); err != nil {
		t.Fatalf("run task: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}

	statuses, err := c.Statuses(context.Background())
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	found := false
	for _, s := range statuses {
		if s.Task == TaskFeatureEngineering {
			found = true
			if !s.HasRun {
				t.Fatalf("expected HasRun after manual trigger")
			}
		}
	}
	if !found {
		t.Fatalf("feature-engineering missing from statuses")
	}
}

func TestRunTask_UnknownTaskErrors(t *testing.T) {
	reg := register.NewMemoryRegister()
	t.Cleanup(func() { _ = reg.Close() })
	c := New(reg, nil)

	if err := c.RunTask(context.Background(), "not-a-task"); err == nil {
		t.Fatalf("expected error for unknown task")
	}
}

func TestRunLocked_ConcurrentSameTaskNeverOverlaps(t *testing.T) {
	reg := register.NewMemoryRegister()
	t.Cleanup(func() { _ = reg.Close() })
	c := New(reg, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var overlapped int32

	c.Register(TaskModelRetraining, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
			atomic.AddInt32(&overlapped, 1)
		}
		<-release
		return nil
	})

	done := make(chan error, 2)
	go func() { done <- c.RunTask(context.Background(), TaskModelRetraining) }()
	<-started
	go func() { done <- c.RunTask(context.Background(), TaskModelRetraining) }()

	time.Sleep(20 * time.Millisecond)
	close(release)
	<-done
	<-done

	if atomic.LoadInt32(&overlapped) != 0 {
		t.Fatalf("second invocation entered the task body concurrently")
	}
}

func TestStatuses_NeverRunHasZeroNextDue(t *testing.T) {
	reg := register.NewMemoryRegister()
	t.Cleanup(func() { _ = reg.Close() })
	c := New(reg, nil)

	statuses, err := c.Statuses(context.Background())
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if len(statuses) != len(TaskNames) {
		t.Fatalf("statuses len = %d, want %d", len(statuses), len(TaskNames))
	}
	for _, s := range statuses {
		if s.HasRun {
			t.Fatalf("task %s: HasRun = true on a fresh register", s.Task)
		}
		if !s.NextDueAt.IsZero() {
			t.Fatalf("task %s: NextDueAt = %v, want zero on a fresh register", s.Task, s.NextDueAt)
		}
	}
}
