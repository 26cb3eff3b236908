package reactive

import "sync"

// A Subject is a publisher with an imperative entry point: external code —
// timers, network callbacks, UI handlers — injects values and completions
// into the reactive graph through Send. Subjects maintain a registry of
// attached subscribers ordered by subscription time and broadcast in that
// order. A subscriber with no outstanding demand at send time is skipped;
// the subject never holds values beyond a subscriber's outstanding demand.

// PassthroughSubject broadcasts sent values to current subscribers. After a
// terminal completion is sent the registry is dropped, later Send calls are
// no-ops, and late subscribers receive the handshake followed by the stored
// completion and nothing else.
type PassthroughSubject[T any] struct {
	mu       sync.Mutex
	conduits []*conduit[T]
	done     *Completion
}

// NewPassthroughSubject returns an empty subject for values of type T.
func NewPassthroughSubject[T any]() *PassthroughSubject[T] {
	return &PassthroughSubject[T]{}
}

func (s *PassthroughSubject[T]) Subscribe(subscriber Subscriber[T]) {
	c := newConduit(subscriber)
	c.onCancel = func() { s.forget(c) }

	s.mu.Lock()
	if s.done != nil {
		fin := *s.done
		s.mu.Unlock()
		subscriber.OnSubscribe(c)
		c.finish(fin)
		return
	}
	s.conduits = append(s.conduits, c)
	s.mu.Unlock()

	subscriber.OnSubscribe(c)
}

// Send delivers value to every attached subscriber with positive demand, in
// attachment order. A no-op once the subject has completed.
func (s *PassthroughSubject[T]) Send(value T) {
	for _, c := range s.snapshot() {
		c.send(value)
	}
}

// SendCompletion terminates the subject: the completion is broadcast, the
// registry is cleared, and all later sends are ignored.
func (s *PassthroughSubject[T]) SendCompletion(completion Completion) {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return
	}
	s.done = &completion
	conduits := s.conduits
	s.conduits = nil
	s.mu.Unlock()

	for _, c := range conduits {
		c.finish(completion)
	}
}

func (s *PassthroughSubject[T]) snapshot() []*conduit[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return nil
	}
	out := make([]*conduit[T], len(s.conduits))
	copy(out, s.conduits)
	return out
}

func (s *PassthroughSubject[T]) forget(c *conduit[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, other := range s.conduits {
		if other == c {
			s.conduits = append(s.conduits[:i], s.conduits[i+1:]...)
			return
		}
	}
}

// CurrentValueSubject is a subject that additionally owns a latest value,
// readable synchronously at any time. Every new subscriber receives the
// current value as its first emission once it has demand, before any values
// sent later.
type CurrentValueSubject[T any] struct {
	mu       sync.Mutex
	value    T
	conduits []*conduit[T]
	done     *Completion
}

// NewCurrentValueSubject returns a subject seeded with initial.
func NewCurrentValueSubject[T any](initial T) *CurrentValueSubject[T] {
	return &CurrentValueSubject[T]{value: initial}
}

func (s *CurrentValueSubject[T]) Subscribe(subscriber Subscriber[T]) {
	c := newConduit(subscriber)
	c.keepLatest = true
	c.onCancel = func() { s.forget(c) }

	s.mu.Lock()
	if s.done != nil {
		fin := *s.done
		s.mu.Unlock()
		subscriber.OnSubscribe(c)
		c.finish(fin)
		return
	}
	seed := s.value
	s.conduits = append(s.conduits, c)
	s.mu.Unlock()

	subscriber.OnSubscribe(c)
	// Seed the conduit as if the current value were freshly sent at
	// subscribe time; with zero demand it waits in the pending slot.
	c.send(seed)
}

// Value returns the latest value.
func (s *CurrentValueSubject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// SetValue stores value and broadcasts it, exactly as Send does.
func (s *CurrentValueSubject[T]) SetValue(value T) {
	s.Send(value)
}

// Send stores value as the new current value and delivers it to every
// attached subscriber. A subscriber without demand keeps only the newest
// undelivered value for its next request.
func (s *CurrentValueSubject[T]) Send(value T) {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return
	}
	s.value = value
	conduits := make([]*conduit[T], len(s.conduits))
	copy(conduits, s.conduits)
	s.mu.Unlock()

	for _, c := range conduits {
		c.send(value)
	}
}

// SendCompletion terminates the subject. The stored value survives for
// Value readers, but late subscribers only ever see the completion.
func (s *CurrentValueSubject[T]) SendCompletion(completion Completion) {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return
	}
	s.done = &completion
	conduits := s.conduits
	s.conduits = nil
	s.mu.Unlock()

	for _, c := range conduits {
		c.finish(completion)
	}
}

func (s *CurrentValueSubject[T]) forget(c *conduit[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, other := range s.conduits {
		if other == c {
			s.conduits = append(s.conduits[:i], s.conduits[i+1:]...)
			return
		}
	}
}
