package reactive

import "sync"

// Merge interleaves the values of several upstreams into one stream.
//
// Demand policy: every downstream request is forwarded to every upstream, so
// the upstreams may over-deliver by up to the number of sources; values
// arriving beyond downstream demand are buffered and flushed, oldest first,
// ahead of fresh upstream values. The merged stream finishes when all
// upstreams have finished and the buffer is drained; the first failure is
// forwarded immediately and cancels the remaining upstreams.
func Merge[T any](sources ...Publisher[T]) Publisher[T] {
	return &mergePublisher[T]{sources: sources}
}

type mergePublisher[T any] struct {
	sources []Publisher[T]
}

func (p *mergePublisher[T]) Subscribe(subscriber Subscriber[T]) {
	if len(p.sources) == 0 {
		Empty[T]().Subscribe(subscriber)
		return
	}
	core := &mergeCore[T]{downstream: subscriber, remaining: len(p.sources)}
	subscriber.OnSubscribe(core)
	for _, source := range p.sources {
		source.Subscribe(&mergeInner[T]{core: core})
	}
}

type mergeCore[T any] struct {
	mu         sync.Mutex
	downstream Subscriber[T]
	inners     []Subscription
	demand     Demand
	queue      []T
	remaining  int
	emitting   bool
	failure    *Completion
	done       bool
	cancelled  bool
}

func (c *mergeCore[T]) Request(d Demand) {
	c.mu.Lock()
	if c.done || c.cancelled {
		c.mu.Unlock()
		return
	}
	c.demand = c.demand.Add(d)
	inners := make([]Subscription, len(c.inners))
	copy(inners, c.inners)
	c.mu.Unlock()

	for _, inner := range inners {
		inner.Request(d)
	}
	c.drain()
}

func (c *mergeCore[T]) Cancel() {
	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		return
	}
	c.cancelled = true
	c.queue = nil
	inners := c.inners
	c.inners = nil
	c.mu.Unlock()

	for _, inner := range inners {
		inner.Cancel()
	}
}

// drain is single-flight; whoever flips emitting delivers buffered values
// until demand or the buffer runs out, then the terminal signal once every
// upstream is done.
func (c *mergeCore[T]) drain() {
	c.mu.Lock()
	if c.emitting || c.done || c.cancelled {
		c.mu.Unlock()
		return
	}
	c.emitting = true
	for {
		if c.failure != nil {
			fin := *c.failure
			c.done = true
			c.emitting = false
			inners := c.inners
			c.inners = nil
			c.mu.Unlock()
			for _, inner := range inners {
				inner.Cancel()
			}
			c.downstream.OnComplete(fin)
			return
		}
		if len(c.queue) > 0 && !c.demand.IsNone() {
			v := c.queue[0]
			c.queue = c.queue[1:]
			c.demand = c.demand.decrement()
			c.mu.Unlock()
			delta := c.downstream.OnNext(v)
			c.mu.Lock()
			if c.done || c.cancelled {
				c.emitting = false
				c.mu.Unlock()
				return
			}
			c.demand = c.demand.Add(delta)
			continue
		}
		if len(c.queue) == 0 && c.remaining == 0 {
			c.done = true
			c.emitting = false
			c.mu.Unlock()
			c.downstream.OnComplete(Finished())
			return
		}
		c.emitting = false
		c.mu.Unlock()
		return
	}
}

type mergeInner[T any] struct {
	core *mergeCore[T]
}

func (s *mergeInner[T]) OnSubscribe(sub Subscription) {
	c := s.core
	c.mu.Lock()
	if c.cancelled || c.done {
		c.mu.Unlock()
		sub.Cancel()
		return
	}
	c.inners = append(c.inners, sub)
	d := c.demand
	c.mu.Unlock()
	if !d.IsNone() {
		sub.Request(d)
	}
}

func (s *mergeInner[T]) OnNext(v T) Demand {
	c := s.core
	c.mu.Lock()
	if c.done || c.cancelled {
		c.mu.Unlock()
		return None()
	}
	c.queue = append(c.queue, v)
	c.mu.Unlock()
	c.drain()
	return None()
}

func (s *mergeInner[T]) OnComplete(fin Completion) {
	c := s.core
	c.mu.Lock()
	if c.done || c.cancelled {
		c.mu.Unlock()
		return
	}
	if fin.IsFailure() {
		c.failure = &fin
		c.queue = nil
	} else {
		c.remaining--
	}
	c.mu.Unlock()
	c.drain()
}
