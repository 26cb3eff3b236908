package reactive

import (
	"sync"
	"time"
)

// Debounce emits a value only after due has elapsed without a newer one.
// The upstream is consumed eagerly (unlimited demand); downstream demand
// gates the deferred deliveries, and a firing that finds no demand drops its
// value.
//
// Known sharp edge, kept deliberately: when the upstream completes before
// due elapses, the last buffered value is lost — the completion is forwarded
// at once and the pending timer is discarded.
func Debounce[T any](source Publisher[T], due time.Duration, scheduler Scheduler) Publisher[T] {
	return &debouncePublisher[T]{source: source, due: due, scheduler: scheduler}
}

type debouncePublisher[T any] struct {
	source    Publisher[T]
	due       time.Duration
	scheduler Scheduler
}

func (p *debouncePublisher[T]) Subscribe(subscriber Subscriber[T]) {
	p.source.Subscribe(&debounceSubscriber[T]{
		downstream: subscriber,
		due:        p.due,
		scheduler:  p.scheduler,
	})
}

type debounceSubscriber[T any] struct {
	mu         sync.Mutex
	downstream Subscriber[T]
	due        time.Duration
	scheduler  Scheduler
	upstream   Subscription
	pending    Cancellable
	demand     Demand
	done       bool
	cancelled  bool
}

func (s *debounceSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(s)
	sub.Request(Unlimited())
}

func (s *debounceSubscriber[T]) OnNext(v T) Demand {
	s.mu.Lock()
	if s.done || s.cancelled {
		s.mu.Unlock()
		return None()
	}
	if s.pending != nil {
		s.pending.Cancel()
		s.pending = nil
	}
	s.mu.Unlock()

	// Scheduled outside the lock: an immediate scheduler runs the firing
	// inline, and the firing takes the lock itself.
	timer := s.scheduler.ScheduleAfter(s.due, func() { s.fire(v) })

	s.mu.Lock()
	if s.done || s.cancelled {
		s.mu.Unlock()
		timer.Cancel()
		return None()
	}
	s.pending = timer
	s.mu.Unlock()
	return None()
}

func (s *debounceSubscriber[T]) fire(v T) {
	s.mu.Lock()
	if s.done || s.cancelled {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	if s.demand.IsNone() {
		// No downstream capacity at firing time; the value is dropped.
		s.mu.Unlock()
		return
	}
	s.demand = s.demand.decrement()
	s.mu.Unlock()

	delta := s.downstream.OnNext(v)

	s.mu.Lock()
	if !s.done && !s.cancelled {
		s.demand = s.demand.Add(delta)
	}
	s.mu.Unlock()
}

func (s *debounceSubscriber[T]) OnComplete(c Completion) {
	s.mu.Lock()
	if s.done || s.cancelled {
		s.mu.Unlock()
		return
	}
	s.done = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if pending != nil {
		pending.Cancel()
	}
	s.downstream.OnComplete(c)
}

func (s *debounceSubscriber[T]) Request(d Demand) {
	s.mu.Lock()
	if !s.done && !s.cancelled {
		s.demand = s.demand.Add(d)
	}
	s.mu.Unlock()
}

func (s *debounceSubscriber[T]) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if pending != nil {
		pending.Cancel()
	}
	s.upstream.Cancel()
}

// Throttle emits at most one value per interval: the first value of each
// window when latest is false, the newest value of the window (emitted as
// the window closes) when latest is true.
//
// The same completion sharp edge as Debounce applies: a value still waiting
// for its window to close is lost when the upstream completes first.
func Throttle[T any](source Publisher[T], interval time.Duration, scheduler Scheduler, latest bool) Publisher[T] {
	return &throttlePublisher[T]{source: source, interval: interval, scheduler: scheduler, latest: latest}
}

type throttlePublisher[T any] struct {
	source    Publisher[T]
	interval  time.Duration
	scheduler Scheduler
	latest    bool
}

func (p *throttlePublisher[T]) Subscribe(subscriber Subscriber[T]) {
	p.source.Subscribe(&throttleSubscriber[T]{
		downstream: subscriber,
		interval:   p.interval,
		scheduler:  p.scheduler,
		latest:     p.latest,
	})
}

type throttleSubscriber[T any] struct {
	mu         sync.Mutex
	downstream Subscriber[T]
	interval   time.Duration
	scheduler  Scheduler
	latest     bool
	upstream   Subscription
	window     Cancellable
	windowOpen bool
	stash      *T
	demand     Demand
	done       bool
	cancelled  bool
}

func (s *throttleSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(s)
	sub.Request(Unlimited())
}

func (s *throttleSubscriber[T]) OnNext(v T) Demand {
	s.mu.Lock()
	if s.done || s.cancelled {
		s.mu.Unlock()
		return None()
	}
	if s.windowOpen {
		if s.latest {
			s.stash = &v
		}
		s.mu.Unlock()
		return None()
	}
	s.windowOpen = true
	if s.latest {
		s.stash = &v
	}
	s.mu.Unlock()

	// Same inline-scheduler consideration as in Debounce.
	w := s.scheduler.ScheduleAfter(s.interval, s.closeWindow)

	s.mu.Lock()
	if s.done || s.cancelled {
		s.mu.Unlock()
		w.Cancel()
		return None()
	}
	s.window = w
	if s.latest {
		s.mu.Unlock()
		return None()
	}
	s.emitLocked(v)
	return None()
}

func (s *throttleSubscriber[T]) closeWindow() {
	s.mu.Lock()
	if s.done || s.cancelled {
		s.mu.Unlock()
		return
	}
	s.windowOpen = false
	s.window = nil
	if s.latest && s.stash != nil {
		v := *s.stash
		s.stash = nil
		s.emitLocked(v)
		return
	}
	s.mu.Unlock()
}

// emitLocked delivers v if the downstream has demand; s.mu must be held and
// is released before the callback.
func (s *throttleSubscriber[T]) emitLocked(v T) {
	if s.demand.IsNone() {
		s.mu.Unlock()
		return
	}
	s.demand = s.demand.decrement()
	s.mu.Unlock()

	delta := s.downstream.OnNext(v)

	s.mu.Lock()
	if !s.done && !s.cancelled {
		s.demand = s.demand.Add(delta)
	}
	s.mu.Unlock()
}

func (s *throttleSubscriber[T]) OnComplete(c Completion) {
	s.mu.Lock()
	if s.done || s.cancelled {
		s.mu.Unlock()
		return
	}
	s.done = true
	window := s.window
	s.window = nil
	s.stash = nil
	s.mu.Unlock()

	if window != nil {
		window.Cancel()
	}
	s.downstream.OnComplete(c)
}

func (s *throttleSubscriber[T]) Request(d Demand) {
	s.mu.Lock()
	if !s.done && !s.cancelled {
		s.demand = s.demand.Add(d)
	}
	s.mu.Unlock()
}

func (s *throttleSubscriber[T]) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	window := s.window
	s.window = nil
	s.mu.Unlock()

	if window != nil {
		window.Cancel()
	}
	s.upstream.Cancel()
}
