// Package pool holds pooled timers for the scheduler loops.
package pool

import (
	"context"
	"sync"
	"time"
)

var timerPool sync.Pool

// GetTimer returns a timer firing after d, reusing a pooled one when possible.
//
// Return the timer with PutTimer.
func GetTimer(d time.Duration) *time.Timer {
	if v := timerPool.Get(); v != nil {
		t, _ := v.(*time.Timer)
		if t.Reset(d) {
			select {
			case <-t.C:
			default:
			}
		}
		return t
	}

	return time.NewTimer(d)
}

// PutTimer returns t to the pool. t must not be used afterwards.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}

// WaitResult tells why Wait returned.
type WaitResult int

const (
	// Expired means the duration elapsed.
	Expired WaitResult = iota
	// Woken means the wake channel fired.
	Woken
	// Canceled means ctx is done.
	Canceled
)

// Wait blocks until d elapses, wake receives, or ctx is done.
// A negative d waits without a deadline.
func Wait(ctx context.Context, d time.Duration, wake <-chan struct{}) WaitResult {
	if d < 0 {
		select {
		case <-ctx.Done():
			return Canceled
		case <-wake:
			return Woken
		}
	}

	t := GetTimer(d)
	defer PutTimer(t)

	select {
	case <-ctx.Done():
		return Canceled
	case <-wake:
		return Woken
	case <-t.C:
		return Expired
	}
}
