package reactive

// FromSlice returns a publisher that emits the given values in order, then
// finishes. Emission drains available demand synchronously; when demand runs
// out mid-sequence the internal cursor suspends and resumes on the next
// Request.
func FromSlice[T any](values []T) Publisher[T] {
	return &slicePublisher[T]{values: values}
}

// Just returns a publisher of the single given value.
func Just[T any](value T) Publisher[T] {
	return FromSlice([]T{value})
}

// Range returns a publisher of the integers in the half-open interval
// [from, to).
func Range(from, to int) Publisher[int] {
	values := make([]int, 0, max(to-from, 0))
	for i := from; i < to; i++ {
		values = append(values, i)
	}
	return FromSlice(values)
}

type slicePublisher[T any] struct {
	values []T
}

func (p *slicePublisher[T]) Subscribe(subscriber Subscriber[T]) {
	sub := &sliceSubscription[T]{
		state:      newState[T](),
		values:     p.values,
		subscriber: subscriber,
	}
	subscriber.OnSubscribe(sub)
}

type sliceSubscription[T any] struct {
	*state[T]
	values     []T
	cursor     int
	subscriber Subscriber[T]
}

func (s *sliceSubscription[T]) Request(d Demand) {
	if s.request(d) {
		s.drain()
	}
}

func (s *sliceSubscription[T]) Cancel() {
	s.cancel()
}

// drain runs with the emitting flag held; the cursor is only ever touched
// here, so it needs no locking of its own.
func (s *sliceSubscription[T]) drain() {
	for {
		if s.cursor >= len(s.values) {
			if s.completeInDrain() {
				s.subscriber.OnComplete(Finished())
			}
			return
		}
		if !s.take() {
			return
		}
		v := s.values[s.cursor]
		s.cursor++
		s.fold(s.subscriber.OnNext(v))
	}
}

// Empty returns a publisher that finishes immediately after the handshake,
// without emitting any value.
func Empty[T any]() Publisher[T] {
	return &completedPublisher[T]{completion: Finished()}
}

// Fail returns a publisher that fails immediately after the handshake.
func Fail[T any](err error) Publisher[T] {
	return &completedPublisher[T]{completion: Failed(err)}
}

type completedPublisher[T any] struct {
	completion Completion
}

func (p *completedPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	st := newState[T]()
	subscriber.OnSubscribe(&inertSubscription[T]{st})
	// Completion bypasses flow control; no demand is needed.
	if st.complete(p.completion) {
		subscriber.OnComplete(p.completion)
	}
}

type inertSubscription[T any] struct {
	*state[T]
}

// Request only records demand; an inert subscription never emits values, so
// it must not claim the emission flag.
func (s *inertSubscription[T]) Request(d Demand) { s.fold(d) }
func (s *inertSubscription[T]) Cancel()          { s.cancel() }

// Deferred returns a publisher that invokes factory once per subscriber and
// subscribes it to the produced publisher.
func Deferred[T any](factory func() Publisher[T]) Publisher[T] {
	return &deferredPublisher[T]{factory: factory}
}

type deferredPublisher[T any] struct {
	factory func() Publisher[T]
}

func (p *deferredPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	p.factory().Subscribe(subscriber)
}
