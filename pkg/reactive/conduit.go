package reactive

// conduit is the per-subscriber emission path used by every event-driven
// source in this package: subjects, channel pumps, timers, and the redis and
// websocket bridges. External events are offered into the conduit; whether
// they reach the subscriber is decided by the subscription state machine.
// A conduit with keepLatest set holds the newest undelivered value for the
// subscriber's next request instead of dropping it; skipped deliveries
// collapse into that single slot.
type conduit[T any] struct {
	*state[T]
	subscriber Subscriber[T]
	keepLatest bool
	// onCancel, when set, releases producer-side resources (a registry
	// entry, a ticker) after a consumer cancel. Called at most once.
	onCancel func()
}

func newConduit[T any](subscriber Subscriber[T]) *conduit[T] {
	return &conduit[T]{state: newState[T](), subscriber: subscriber}
}

func (c *conduit[T]) Request(d Demand) {
	if c.request(d) {
		c.drain()
	}
}

func (c *conduit[T]) Cancel() {
	if c.cancel() && c.onCancel != nil {
		c.onCancel()
	}
}

// send routes one external event toward the subscriber, subject to demand.
func (c *conduit[T]) send(v T) {
	if c.offer(v, c.keepLatest) {
		c.drain()
	}
}

// finish routes the terminal signal; delivery is deferred to an in-flight
// drain when one is running.
func (c *conduit[T]) finish(completion Completion) {
	if c.complete(completion) {
		c.subscriber.OnComplete(completion)
	}
}

func (c *conduit[T]) drain() {
	for {
		v, ok, fin := c.next(c.keepLatest)
		if fin != nil {
			c.subscriber.OnComplete(*fin)
			return
		}
		if !ok {
			return
		}
		c.fold(c.subscriber.OnNext(v))
	}
}
