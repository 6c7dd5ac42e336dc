// Package scheduler runs a single repeating background job that can be
// started, restarted and stopped from any goroutine, including from inside
// the job itself.
package scheduler

import (
	"context"
	"sync"
	"time"
)

// Task is one repeating job. The zero value is inactive and ready to use.
type Task struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	runs   sync.WaitGroup
}

// Start runs fn every interval until Stop is called or parent is done. A
// running task is stopped first, so Start is idempotent. The first run
// happens one interval after Start.
func (t *Task) Start(parent context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 || fn == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel

	t.runs.Add(1)
	go func() {
		defer t.runs.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()
}

// Stop cancels the task. It never blocks and is a no-op on an inactive task.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Active reports whether the task has been started and not stopped.
func (t *Task) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Wait blocks until every loop started so far has returned. Call it after
// Stop, never from inside the job.
func (t *Task) Wait() {
	t.runs.Wait()
}
