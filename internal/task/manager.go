// Package task runs and joins the long-lived goroutines of a link scheduler.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/go-packetlink/internal/pool"
	"github.com/arloliu/go-packetlink/logger"
)

// Func is one iteration of a task loop. It returns false to end the task.
type Func func(ctx context.Context) bool

// ErrStopped is returned by Start after Stop has been called.
var ErrStopped = errors.New("task: manager stopped")

const (
	startTimeout = 5 * time.Second

	// a task panicking on every iteration is restarted with a doubling delay
	minPanicDelay = 10 * time.Millisecond
	maxPanicDelay = time.Second
)

// Manager starts named goroutines that share one cancelable context.
//
//	mgr := task.NewManager(ctx, l)
//	_ = mgr.Start("sender", func(ctx context.Context) bool {
//	    // ... one iteration ...
//	    return true
//	})
//	mgr.Stop()
//	mgr.Wait()
type Manager struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger logger.Logger
	count  atomic.Int32
	mu     sync.Mutex // guards task creation against Wait
}

// NewManager returns a Manager whose tasks stop when ctx is done or Stop is called.
func NewManager(ctx context.Context, l logger.Logger) *Manager {
	mgr := &Manager{logger: l}
	mgr.ctx, mgr.cancel = context.WithCancel(ctx)

	return mgr
}

// Context returns the context shared by every task.
func (mgr *Manager) Context() context.Context {
	return mgr.ctx
}

// Start runs fn in a loop on a new goroutine until it returns false or the manager stops.
// It returns once the goroutine is running.
func (mgr *Manager) Start(name string, fn Func) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	if mgr.ctx.Err() != nil {
		return fmt.Errorf("%w: cannot start %s", ErrStopped, name)
	}

	mgr.logger.Debug("task: start", "name", name)

	started := make(chan struct{})
	mgr.wg.Add(1)
	go func() {
		defer mgr.wg.Done()

		mgr.count.Add(1)
		close(started)

		defer func() {
			mgr.count.Add(-1)
			mgr.logger.Debug("task: terminated", "name", name, "task_count", mgr.TaskCount())
		}()

		mgr.runLoop(name, fn)
	}()

	select {
	case <-started:
		return nil
	case <-time.After(startTimeout):
		return fmt.Errorf("task: timeout waiting for %s to start", name)
	}
}

// Stop signals every task to end.
func (mgr *Manager) Stop() {
	mgr.cancel()
}

// Wait blocks until every task has returned.
func (mgr *Manager) Wait() {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	mgr.wg.Wait()
}

// TaskCount returns the number of running tasks.
func (mgr *Manager) TaskCount() int {
	return int(mgr.count.Load())
}

func (mgr *Manager) runLoop(name string, fn Func) {
	var delay time.Duration
	for {
		select {
		case <-mgr.ctx.Done():
			return
		default:
		}

		cont, panicked := mgr.callWithRecover(name, fn)
		if !cont {
			return
		}
		if !panicked {
			delay = 0
			continue
		}

		delay = nextPanicDelay(delay)
		if pool.Wait(mgr.ctx, delay, nil) == pool.Canceled {
			return
		}
	}
}

func nextPanicDelay(d time.Duration) time.Duration {
	if d < minPanicDelay {
		return minPanicDelay
	}

	return min(d*2, maxPanicDelay)
}

// callWithRecover runs one iteration. A panicking iteration is logged and the loop continues.
func (mgr *Manager) callWithRecover(name string, fn Func) (cont, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			mgr.logger.Error("task: panic", "name", name, "panic", r)
			cont, panicked = true, true
		}
	}()

	return fn(mgr.ctx), false
}
