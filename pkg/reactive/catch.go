package reactive

import "sync"

// Catch recovers from an upstream failure by switching the downstream onto a
// substitute publisher built from the error. Values and a normal finish pass
// through untouched; the downstream handshake happens once, and unmet demand
// accumulated before the failure is re-requested from the substitute.
func Catch[T any](source Publisher[T], recover func(error) Publisher[T]) Publisher[T] {
	return &catchPublisher[T]{source: source, recover: recover}
}

type catchPublisher[T any] struct {
	source  Publisher[T]
	recover func(error) Publisher[T]
}

func (p *catchPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	s := &catchSubscriber[T]{downstream: subscriber, recover: p.recover}
	p.source.Subscribe(s)
}

// catchSubscriber is also the downstream's subscription: it tracks how much
// downstream demand is still unmet so the remainder can be requested from
// the substitute after a switch.
type catchSubscriber[T any] struct {
	mu         sync.Mutex
	downstream Subscriber[T]
	recover    func(error) Publisher[T]
	upstream   Subscription
	unmet      Demand
	handshook  bool
	recovered  bool
	cancelled  bool
	done       bool
}

func (s *catchSubscriber[T]) OnSubscribe(sub Subscription) {
	s.mu.Lock()
	s.upstream = sub
	first := !s.handshook
	s.handshook = true
	carried := s.unmet
	cancelled := s.cancelled
	s.mu.Unlock()

	if cancelled {
		sub.Cancel()
		return
	}
	if first {
		s.downstream.OnSubscribe(s)
		return
	}
	// Substitute attached: replay the demand the failed upstream never met.
	if !carried.IsNone() {
		sub.Request(carried)
	}
}

func (s *catchSubscriber[T]) OnNext(v T) Demand {
	s.mu.Lock()
	if s.done || s.cancelled {
		s.mu.Unlock()
		return None()
	}
	s.unmet = s.unmet.decrement()
	s.mu.Unlock()

	d := s.downstream.OnNext(v)

	s.mu.Lock()
	s.unmet = s.unmet.Add(d)
	s.mu.Unlock()
	return d
}

func (s *catchSubscriber[T]) OnComplete(c Completion) {
	s.mu.Lock()
	if s.done || s.cancelled {
		s.mu.Unlock()
		return
	}
	if !c.IsFailure() || s.recovered {
		// A failure from the substitute itself is not caught again.
		s.done = true
		s.mu.Unlock()
		s.downstream.OnComplete(c)
		return
	}
	s.recovered = true
	s.upstream = nil
	s.mu.Unlock()

	s.recover(c.Err()).Subscribe(s)
}

func (s *catchSubscriber[T]) Request(d Demand) {
	s.mu.Lock()
	if s.done || s.cancelled {
		s.mu.Unlock()
		return
	}
	s.unmet = s.unmet.Add(d)
	up := s.upstream
	s.mu.Unlock()
	if up != nil {
		up.Request(d)
	}
}

func (s *catchSubscriber[T]) Cancel() {
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
