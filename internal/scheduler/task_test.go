package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestTaskRunsRepeatedly(t *testing.T) {
	var task Task
	var runs atomic.Int32

	task.Start(context.Background(), 5*time.Millisecond, func(context.Context) { runs.Add(1) })
	waitFor(t, func() bool { return runs.Load() >= 3 })

	task.Stop()
	task.Wait()
	if task.Active() {
		t.Fatal("expected task to be inactive after Stop")
	}
}

func TestStopOnInactiveTaskIsNoop(t *testing.T) {
	var task Task
	task.Stop()
	task.Stop()
	if task.Active() {
		t.Fatal("zero task must be inactive")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	var task Task
	var first, second atomic.Int32

	task.Start(context.Background(), 5*time.Millisecond, func(context.Context) { first.Add(1) })
	task.Start(context.Background(), 5*time.Millisecond, func(context.Context) { second.Add(1) })
	waitFor(t, func() bool { return second.Load() >= 2 })

	before := first.Load()
	time.Sleep(20 * time.Millisecond)
	if first.Load() != before {
		t.Fatal("replaced loop kept running")
	}
	task.Stop()
	task.Wait()
}

func TestStopFromInsideJob(t *testing.T) {
	var task Task
	var runs atomic.Int32

	task.Start(context.Background(), 5*time.Millisecond, func(context.Context) {
		runs.Add(1)
		task.Stop()
	})
	waitFor(t, func() bool { return !task.Active() })
	task.Wait()

	if got := runs.Load(); got != 1 {
		t.Fatalf("expected exactly one run, got %d", got)
	}
}

func TestParentCancellationStopsLoop(t *testing.T) {
	var task Task
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32

	task.Start(ctx, 5*time.Millisecond, func(context.Context) { runs.Add(1) })
	cancel()
	task.Wait()

	n := runs.Load()
	time.Sleep(20 * time.Millisecond)
	if runs.Load() != n {
		t.Fatal("loop kept running after parent cancellation")
	}
}
