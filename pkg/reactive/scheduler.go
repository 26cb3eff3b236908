package reactive

import (
	"sync/atomic"
	"time"
)

// Scheduler is the execution-context capability handed to any operator that
// needs to defer or hop work (Delay, Debounce, Throttle). The engine never
// reaches for a global queue itself; callers choose the scheduler.
type Scheduler interface {
	// Schedule runs fn, possibly asynchronously. The returned cancellable
	// prevents the run if it has not started yet.
	Schedule(fn func()) Cancellable
	// ScheduleAfter runs fn once the delay has elapsed.
	ScheduleAfter(delay time.Duration, fn func()) Cancellable
}

// ImmediateScheduler runs everything synchronously on the caller's
// goroutine, ignoring delays. Useful in tests and for purely synchronous
// pipelines; its cancellables are no-ops since the work has already run by
// the time Schedule returns.
type ImmediateScheduler struct{}

func (ImmediateScheduler) Schedule(fn func()) Cancellable {
	fn()
	return CancellableFunc(func() {})
}

func (ImmediateScheduler) ScheduleAfter(_ time.Duration, fn func()) Cancellable {
	fn()
	return CancellableFunc(func() {})
}

// AsyncScheduler runs work on fresh goroutines and delays on runtime timers.
type AsyncScheduler struct{}

func (AsyncScheduler) Schedule(fn func()) Cancellable {
	var cancelled atomic.Bool
	go func() {
		if !cancelled.Load() {
			fn()
		}
	}()
	return CancellableFunc(func() { cancelled.Store(true) })
}

func (AsyncScheduler) ScheduleAfter(delay time.Duration, fn func()) Cancellable {
	timer := time.AfterFunc(delay, fn)
	return CancellableFunc(func() { timer.Stop() })
}
