package reactive

import "context"

// FromChannel returns a publisher pumping values from ch. The stream
// finishes when ch is closed. This is an event-driven source: a value
// arriving while the subscriber has no outstanding demand is dropped for
// that subscriber.
//
// Each subscriber gets its own pump goroutine, so a channel should normally
// feed a single subscriber; fan-out belongs to a Subject.
func FromChannel[T any](ch <-chan T) Publisher[T] {
	return &channelPublisher[T]{ch: ch}
}

type channelPublisher[T any] struct {
	ch <-chan T
}

func (p *channelPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	ctx, cancel := context.WithCancel(context.Background())
	c := newConduit(subscriber)
	c.onCancel = cancel
	subscriber.OnSubscribe(c)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-p.ch:
				if !ok {
					c.finish(Finished())
					return
				}
				c.send(v)
			}
		}
	}()
}
