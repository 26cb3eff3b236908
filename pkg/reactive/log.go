package reactive

import "go.uber.org/zap"

// Logged traces a stream's protocol events — subscribe, request, next,
// completion, cancel — through a zap logger without altering behavior.
// Useful while debugging demand problems in operator chains.
func Logged[T any](source Publisher[T], lg *zap.Logger, stream string) Publisher[T] {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &loggedPublisher[T]{source: source, lg: lg.With(zap.String("stream", stream))}
}

type loggedPublisher[T any] struct {
	source Publisher[T]
	lg     *zap.Logger
}

func (p *loggedPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	p.lg.Debug("subscribe")
	p.source.Subscribe(&loggedSubscriber[T]{downstream: subscriber, lg: p.lg})
}

type loggedSubscriber[T any] struct {
	downstream Subscriber[T]
	lg         *zap.Logger
}

func (s *loggedSubscriber[T]) OnSubscribe(sub Subscription) {
	s.downstream.OnSubscribe(&loggedSubscription[T]{inner: sub, lg: s.lg})
}

func (s *loggedSubscriber[T]) OnNext(v T) Demand {
	s.lg.Debug("next", zap.Any("value", v))
	d := s.downstream.OnNext(v)
	if !d.IsNone() {
		s.lg.Debug("next returned demand", zap.Stringer("demand", d))
	}
	return d
}

func (s *loggedSubscriber[T]) OnComplete(c Completion) {
	if c.IsFailure() {
		s.lg.Debug("completed", zap.Error(c.Err()))
	} else {
		s.lg.Debug("completed")
	}
	s.downstream.OnComplete(c)
}

type loggedSubscription[T any] struct {
	inner Subscription
	lg    *zap.Logger
}

func (s *loggedSubscription[T]) Request(d Demand) {
	s.lg.Debug("request", zap.Stringer("demand", d))
	s.inner.Request(d)
}

func (s *loggedSubscription[T]) Cancel() {
	s.lg.Debug("cancel")
	s.inner.Cancel()
}
