package reactive

import (
	"sync"
)

// testSubscriber records every signal it receives. The initial demand is
// requested during the handshake; perValue, when set, decides the demand
// returned from each OnNext.
type testSubscriber[T any] struct {
	initial  Demand
	perValue func(T) Demand

	mu          sync.Mutex
	sub         Subscription
	values      []T
	completions []Completion
}

func newTestSubscriber[T any](initial Demand) *testSubscriber[T] {
	return &testSubscriber[T]{initial: initial}
}

func (s *testSubscriber[T]) OnSubscribe(sub Subscription) {
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
	if !s.initial.IsNone() {
		sub.Request(s.initial)
	}
}

func (s *testSubscriber[T]) OnNext(v T) Demand {
	s.mu.Lock()
	s.values = append(s.values, v)
	f := s.perValue
	s.mu.Unlock()
	if f != nil {
		return f(v)
	}
	return None()
}

func (s *testSubscriber[T]) OnComplete(c Completion) {
	s.mu.Lock()
	s.completions = append(s.completions, c)
	s.mu.Unlock()
}

func (s *testSubscriber[T]) Values() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.values))
	copy(out, s.values)
	return out
}

func (s *testSubscriber[T]) Completions() []Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Completion, len(s.completions))
	copy(out, s.completions)
	return out
}

func (s *testSubscriber[T]) Subscription() Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sub
}

func (s *testSubscriber[T]) Finished() bool {
	c := s.Completions()
	return len(c) == 1 && !c[0].IsFailure()
}

func (s *testSubscriber[T]) FailedWith() error {
	c := s.Completions()
	if len(c) == 1 && c[0].IsFailure() {
		return c[0].Err()
	}
	return nil
}
