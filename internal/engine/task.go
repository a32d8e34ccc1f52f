package engine

import (
	"context"
	"sync"
)

// TaskHandle tracks a non-blocking run dispatched off the caller's
// critical path. It supports later polling, explicit cancellation, and
// releases its resources even if never polled.
type TaskHandle struct {
	run    *Run
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// startTask dispatches fn for run in the background and returns its handle.
func startTask(ctx context.Context, run *Run, fn func(context.Context) error) *TaskHandle {
	taskCtx, cancel := context.WithCancel(ctx)
	h := &TaskHandle{
		run:    run,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(h.done)
		defer cancel()
		defer run.cleanup()
		err := fn(taskCtx)
		h.mu.Lock()
		h.err = err
		h.mu.Unlock()
	}()
	return h
}

// Done reports whether the task has finished without blocking.
func (h *TaskHandle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the task finishes and returns its error.
func (h *TaskHandle) Wait() error {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Cancel force-terminates the task. The task's own cleanup still runs.
func (h *TaskHandle) Cancel() {
	h.cancel()
}

// Run exposes the underlying run for status inspection.
func (h *TaskHandle) Run() *Run {
	return h.run
}
