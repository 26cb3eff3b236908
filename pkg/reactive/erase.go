package reactive

import "sync"

// AnyPublisher hides a publisher's concrete identity behind the bare
// Subscribe entry point. Purely a surface convenience: behavior is exactly
// that of the wrapped publisher.
type AnyPublisher[T any] struct {
	subscribe func(Subscriber[T])
}

// EraseToAnyPublisher wraps p. Wrapping an AnyPublisher returns it
// unchanged.
func EraseToAnyPublisher[T any](p Publisher[T]) AnyPublisher[T] {
	if erased, ok := p.(AnyPublisher[T]); ok {
		return erased
	}
	return AnyPublisher[T]{subscribe: p.Subscribe}
}

func (p AnyPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	p.subscribe(subscriber)
}

// AnyCancellable hides a subscription (or any cancellable) behind the bare
// Cancel entry point. Cancel is idempotent regardless of the wrapped value.
type AnyCancellable struct {
	once   sync.Once
	cancel func()
}

// NewAnyCancellable wraps c.
func NewAnyCancellable(c Cancellable) *AnyCancellable {
	return &AnyCancellable{cancel: c.Cancel}
}

// CancellableFunc adapts a plain function to the Cancellable interface.
type CancellableFunc func()

func (f CancellableFunc) Cancel() { f() }

func (a *AnyCancellable) Cancel() {
	a.once.Do(a.cancel)
}
