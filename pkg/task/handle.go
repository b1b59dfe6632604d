package task

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
)

// DrainCeiling is the longest a run waits for its workers before completing.
const DrainCeiling = time.Hour

// Handle controls a run started in the background
type Handle struct {
	id        string
	cancelled atomic.Bool
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewHandle returns a handle with a fresh id.
func NewHandle() *Handle {
	return &Handle{
		id:   xid.New().String(),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Go runs fn on a coordinating goroutine and returns immediately.
// Cancelling ctx sets the handle's cancel flag.
func Go(ctx context.Context, fn func(h *Handle)) *Handle {
	h := NewHandle()
	go func() {
		select {
		case <-ctx.Done():
			h.Cancel()
		case <-h.done:
		}
	}()
	go func() {
		defer close(h.done)
		fn(h)
	}()
	return h
}

// ID returns the run id.
func (h *Handle) ID() string {
	return h.id
}

// Cancel asks the run to stop dispatching work. Probes already in flight complete.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
	h.stopOnce.Do(func() { close(h.stop) })
}

// Cancelled reports whether Cancel was called.
func (h *Handle) Cancelled() bool {
	return h.cancelled.Load()
}

// Stopping is closed by the first Cancel, so runs can abort waits.
func (h *Handle) Stopping() <-chan struct{} {
	return h.stop
}

// Done is closed after the terminal callback returned.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run is complete.
func (h *Handle) Wait() {
	<-h.done
}

// Waiter is satisfied by sync.WaitGroup and syncutil.AdaptiveWaitGroup.
type Waiter interface {
	Wait()
}

// Drain waits for wg, giving up after ceiling. It reports whether the
// pool drained in time.
func Drain(wg Waiter, ceiling time.Duration) bool {
	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	timer := time.NewTimer(ceiling)
	defer timer.Stop()

	select {
	case <-drained:
		return true
	case <-timer.C:
		return false
	}
}
