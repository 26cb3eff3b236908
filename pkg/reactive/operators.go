package reactive

// Pass-through operators. Each operator is a Subscriber toward its upstream
// and a Publisher toward its downstream; downstream demand travels upstream
// through the shared subscription, and the demand returned from the
// downstream's OnNext rides back on the operator's own OnNext return value.

// Map transforms every upstream value with transform. Demand passes through
// unchanged: one downstream request pulls exactly one upstream value.
func Map[T, R any](source Publisher[T], transform func(T) R) Publisher[R] {
	return &mapPublisher[T, R]{source: source, transform: transform}
}

type mapPublisher[T, R any] struct {
	source    Publisher[T]
	transform func(T) R
}

func (p *mapPublisher[T, R]) Subscribe(subscriber Subscriber[R]) {
	p.source.Subscribe(&mapSubscriber[T, R]{downstream: subscriber, transform: p.transform})
}

type mapSubscriber[T, R any] struct {
	downstream Subscriber[R]
	transform  func(T) R
}

func (s *mapSubscriber[T, R]) OnSubscribe(sub Subscription) {
	s.downstream.OnSubscribe(sub)
}

func (s *mapSubscriber[T, R]) OnNext(v T) Demand {
	return s.downstream.OnNext(s.transform(v))
}

func (s *mapSubscriber[T, R]) OnComplete(c Completion) {
	s.downstream.OnComplete(c)
}

// Filter drops upstream values failing keep. Every dropped value is replaced
// by one extra unit of upstream demand, so downstream demand is always
// eventually satisfied by enough upstream pulls.
func Filter[T any](source Publisher[T], keep func(T) bool) Publisher[T] {
	return &filterPublisher[T]{source: source, keep: keep}
}

type filterPublisher[T any] struct {
	source Publisher[T]
	keep   func(T) bool
}

func (p *filterPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	p.source.Subscribe(&filterSubscriber[T]{downstream: subscriber, keep: p.keep})
}

type filterSubscriber[T any] struct {
	downstream Subscriber[T]
	keep       func(T) bool
}

func (s *filterSubscriber[T]) OnSubscribe(sub Subscription) {
	s.downstream.OnSubscribe(sub)
}

func (s *filterSubscriber[T]) OnNext(v T) Demand {
	if !s.keep(v) {
		return Max(1)
	}
	return s.downstream.OnNext(v)
}

func (s *filterSubscriber[T]) OnComplete(c Completion) {
	s.downstream.OnComplete(c)
}

// Take republishes the first n upstream values, then cancels the upstream
// and finishes.
func Take[T any](source Publisher[T], n int) Publisher[T] {
	return &takePublisher[T]{source: source, count: n}
}

type takePublisher[T any] struct {
	source Publisher[T]
	count  int
}

func (p *takePublisher[T]) Subscribe(subscriber Subscriber[T]) {
	p.source.Subscribe(&takeSubscriber[T]{downstream: subscriber, remaining: p.count})
}

type takeSubscriber[T any] struct {
	downstream Subscriber[T]
	remaining  int
	upstream   Subscription
	done       bool
}

func (s *takeSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(sub)
	if s.remaining <= 0 {
		s.done = true
		sub.Cancel()
		s.downstream.OnComplete(Finished())
	}
}

func (s *takeSubscriber[T]) OnNext(v T) Demand {
	if s.done {
		return None()
	}
	s.remaining--
	d := s.downstream.OnNext(v)
	if s.remaining == 0 {
		s.done = true
		s.upstream.Cancel()
		s.downstream.OnComplete(Finished())
		return None()
	}
	return d
}

func (s *takeSubscriber[T]) OnComplete(c Completion) {
	if s.done {
		return
	}
	s.done = true
	s.downstream.OnComplete(c)
}
