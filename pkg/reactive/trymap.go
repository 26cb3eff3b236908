package reactive

// TryMap transforms upstream values with a transform that can itself fail.
// A transform error is converted into a Failed completion at this boundary:
// the upstream subscription is cancelled so no further work is pulled, and
// the downstream sees the failure exactly once.
func TryMap[T, R any](source Publisher[T], transform func(T) (R, error)) Publisher[R] {
	return &tryMapPublisher[T, R]{source: source, transform: transform}
}

type tryMapPublisher[T, R any] struct {
	source    Publisher[T]
	transform func(T) (R, error)
}

func (p *tryMapPublisher[T, R]) Subscribe(subscriber Subscriber[R]) {
	p.source.Subscribe(&tryMapSubscriber[T, R]{downstream: subscriber, transform: p.transform})
}

type tryMapSubscriber[T, R any] struct {
	downstream Subscriber[R]
	transform  func(T) (R, error)
	upstream   Subscription
	done       bool
}

func (s *tryMapSubscriber[T, R]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(sub)
}

func (s *tryMapSubscriber[T, R]) OnNext(v T) Demand {
	if s.done {
		return None()
	}
	r, err := s.transform(v)
	if err != nil {
		s.done = true
		s.upstream.Cancel()
		s.downstream.OnComplete(Failed(err))
		return None()
	}
	return s.downstream.OnNext(r)
}

func (s *tryMapSubscriber[T, R]) OnComplete(c Completion) {
	if s.done {
		return
	}
	s.done = true
	s.downstream.OnComplete(c)
}
