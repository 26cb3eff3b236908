package reactive

import "sync"

// CancelBag collects cancellables so an owner can tear down a whole group of
// subscriptions in one explicit step. Teardown is always explicit — Close or
// a defer of it — never left to garbage-collection timing, because members
// frequently hold external resources (tickers, connections).
//
// A bag is safe for concurrent use. Adding to a closed bag cancels the
// member immediately.
type CancelBag struct {
	mu      sync.Mutex
	members []Cancellable
	closed  bool
}

// NewCancelBag returns an empty bag.
func NewCancelBag() *CancelBag {
	return &CancelBag{}
}

// Add stores c for cancellation at Close.
func (b *CancelBag) Add(c Cancellable) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		c.Cancel()
		return
	}
	b.members = append(b.members, c)
	b.mu.Unlock()
}

// Len returns the number of members held.
func (b *CancelBag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.members)
}

// Close cancels every member. Idempotent; implements io.Closer.
func (b *CancelBag) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	members := b.members
	b.members = nil
	b.mu.Unlock()

	for _, m := range members {
		m.Cancel()
	}
	return nil
}
