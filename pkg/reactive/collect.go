package reactive

import "sync"

// Buffering operators. These request unbounded demand from their upstream
// regardless of downstream demand and emit a single aggregate at upstream
// completion. Memory use is therefore bounded only by the upstream; put a
// Take or a windowing stage in front of them for unbounded sources.

// Reduce folds every upstream value into an accumulator and publishes the
// final accumulator when the upstream finishes.
func Reduce[T, R any](source Publisher[T], initial R, fold func(R, T) R) Publisher[R] {
	return &reducePublisher[T, R]{source: source, initial: initial, fold: fold}
}

// Collect gathers every upstream value into a slice published at upstream
// completion.
func Collect[T any](source Publisher[T]) Publisher[[]T] {
	return Reduce(source, []T{}, func(acc []T, v T) []T { return append(acc, v) })
}

type reducePublisher[T, R any] struct {
	source  Publisher[T]
	initial R
	fold    func(R, T) R
}

func (p *reducePublisher[T, R]) Subscribe(subscriber Subscriber[R]) {
	s := &reduceSubscriber[T, R]{downstream: subscriber, acc: p.initial, fold: p.fold}
	p.source.Subscribe(s)
}

// reduceSubscriber doubles as the downstream's subscription: the aggregate
// is held until the downstream shows demand, and a downstream cancel stops
// the upstream.
type reduceSubscriber[T, R any] struct {
	mu         sync.Mutex
	downstream Subscriber[R]
	fold       func(R, T) R
	acc        R
	upstream   Subscription
	upDone     bool
	wantsValue bool
	delivered  bool
	cancelled  bool
}

func (s *reduceSubscriber[T, R]) OnSubscribe(sub Subscription) {
	s.mu.Lock()
	s.upstream = sub
	s.mu.Unlock()
	s.downstream.OnSubscribe(s)
	sub.Request(Unlimited())
}

func (s *reduceSubscriber[T, R]) OnNext(v T) Demand {
	s.mu.Lock()
	if !s.cancelled {
		s.acc = s.fold(s.acc, v)
	}
	s.mu.Unlock()
	return None()
}

func (s *reduceSubscriber[T, R]) OnComplete(c Completion) {
	s.mu.Lock()
	if s.upDone || s.cancelled {
		s.mu.Unlock()
		return
	}
	s.upDone = true
	if c.IsFailure() {
		s.delivered = true
		s.mu.Unlock()
		s.downstream.OnComplete(c)
		return
	}
	if !s.wantsValue {
		// Hold the aggregate until the downstream requests it.
		s.mu.Unlock()
		return
	}
	s.deliverLocked()
}

// Request opens the downstream gate. The aggregate is a single value, so any
// positive demand releases it (followed by the finish) as soon as the
// upstream has completed.
func (s *reduceSubscriber[T, R]) Request(d Demand) {
	s.mu.Lock()
	if s.cancelled || s.delivered || d.IsNone() {
		s.mu.Unlock()
		return
	}
	s.wantsValue = true
	if !s.upDone {
		s.mu.Unlock()
		return
	}
	s.deliverLocked()
}

// deliverLocked emits the aggregate and completion; s.mu must be held and is
// released before the subscriber callbacks run.
func (s *reduceSubscriber[T, R]) deliverLocked() {
	s.delivered = true
	out := s.acc
	s.mu.Unlock()
	s.downstream.OnNext(out)
	s.downstream.OnComplete(Finished())
}

func (s *reduceSubscriber[T, R]) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	up := s.upstream
	s.mu.Unlock()
	if up != nil {
		up.Cancel()
	}
}
