package reactive

import "sync"

// Publisher is the producer side of a stream of values of type T.
//
// Subscribe is a factory method: it may be called any number of times, each
// call binding one subscriber through a fresh Subscription. The publisher
// hands the subscriber its subscription exactly once, synchronously, before
// any value or completion is delivered.
type Publisher[T any] interface {
	Subscribe(subscriber Subscriber[T])
}

// Subscriber receives a Subscription, then values, then exactly one
// Completion. The demand returned from OnNext is folded back into the
// subscription's outstanding demand before the next value is considered;
// this return value is the backpressure feedback loop.
type Subscriber[T any] interface {
	// OnSubscribe is called once, before any value or completion.
	OnSubscribe(subscription Subscription)
	// OnNext is called once per delivered value, never concurrently for the
	// same subscription. The returned demand is additional capacity.
	OnNext(value T) Demand
	// OnComplete is called exactly once with the terminal signal.
	OnComplete(completion Completion)
}

// Subscription is the handle binding one subscriber to one publisher.
// Request and Cancel are non-blocking; both are no-ops once the subscription
// is cancelled or completed, and Cancel is idempotent.
type Subscription interface {
	Request(demand Demand)
	Cancel()
}

// Processor acts as a Subscriber toward its upstream and a Publisher toward
// its downstream; every operator has this shape.
type Processor[T, R any] interface {
	Subscriber[T]
	Publisher[R]
}

// Cancellable is the cancellation facet of a subscription, for callers that
// only ever need to tear the stream down.
type Cancellable interface {
	Cancel()
}

// SubscriberFuncs assembles a Subscriber from plain functions. Nil fields
// are filled with no-ops (OnNext defaults to returning no extra demand).
type SubscriberFuncs[T any] struct {
	OnSubscribe func(Subscription)
	OnNext      func(T) Demand
	OnComplete  func(Completion)
}

// Build fills in any nil functions and returns the assembled subscriber.
func (f SubscriberFuncs[T]) Build() Subscriber[T] {
	if f.OnSubscribe == nil {
		f.OnSubscribe = func(Subscription) {}
	}
	if f.OnNext == nil {
		f.OnNext = func(T) Demand { return None() }
	}
	if f.OnComplete == nil {
		f.OnComplete = func(Completion) {}
	}
	return &assembledSubscriber[T]{f}
}

type assembledSubscriber[T any] struct {
	funcs SubscriberFuncs[T]
}

func (a *assembledSubscriber[T]) OnSubscribe(s Subscription) { a.funcs.OnSubscribe(s) }
func (a *assembledSubscriber[T]) OnNext(v T) Demand          { return a.funcs.OnNext(v) }
func (a *assembledSubscriber[T]) OnComplete(c Completion)    { a.funcs.OnComplete(c) }

// Sink is the simplest useful subscriber: it requests unlimited demand at
// subscribe time and hands every value and the completion to its callbacks.
type Sink[T any] struct {
	receiveValue      func(T)
	receiveCompletion func(Completion)

	mu           sync.Mutex
	subscription Subscription
}

// NewSink returns a sink invoking the given callbacks. Either callback may
// be nil.
func NewSink[T any](receiveValue func(T), receiveCompletion func(Completion)) *Sink[T] {
	return &Sink[T]{receiveValue: receiveValue, receiveCompletion: receiveCompletion}
}

func (s *Sink[T]) OnSubscribe(sub Subscription) {
	s.mu.Lock()
	s.subscription = sub
	s.mu.Unlock()
	sub.Request(Unlimited())
}

func (s *Sink[T]) OnNext(v T) Demand {
	if s.receiveValue != nil {
		s.receiveValue(v)
	}
	return None()
}

func (s *Sink[T]) OnComplete(c Completion) {
	if s.receiveCompletion != nil {
		s.receiveCompletion(c)
	}
}

// Cancel tears down the sink's subscription.
func (s *Sink[T]) Cancel() {
	s.mu.Lock()
	sub := s.subscription
	s.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

// Config carries tuning knobs for buffering operators and adapters.
type Config struct {
	// BufferSize is the buffer capacity used by decoupling operators and
	// the websocket/redis bridges (default: 128).
	BufferSize int
	// Prefetch is the number of values adapters request ahead (default: 32).
	Prefetch int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BufferSize: 128,
		Prefetch:   32,
	}
}
