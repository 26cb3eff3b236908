package reactive

import "sync"

// SwitchToLatest flattens a stream of publishers by always following the
// most recent one. When a new inner publisher arrives the previous inner
// subscription is cancelled synchronously before the new one is attached.
// The flattened stream finishes once the outer stream has finished and the
// last inner publisher has finished too; any failure ends it immediately.
func SwitchToLatest[T any](outer Publisher[Publisher[T]]) Publisher[T] {
	return &switchPublisher[T]{outer: outer}
}

type switchPublisher[T any] struct {
	outer Publisher[Publisher[T]]
}

func (p *switchPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	p.outer.Subscribe(&switchCore[T]{downstream: subscriber})
}

// switchCore subscribes to the outer stream and doubles as the downstream's
// subscription. unmet tracks downstream demand not yet satisfied; each newly
// attached inner picks it up.
type switchCore[T any] struct {
	mu          sync.Mutex
	downstream  Subscriber[T]
	outerSub    Subscription
	current     Subscription
	gen         int
	unmet       Demand
	innerActive bool
	outerDone   bool
	done        bool
	cancelled   bool
}

func (c *switchCore[T]) OnSubscribe(sub Subscription) {
	c.mu.Lock()
	c.outerSub = sub
	c.mu.Unlock()
	c.downstream.OnSubscribe(c)
	// Inner publishers are control flow, not payload; consume them eagerly.
	sub.Request(Unlimited())
}

func (c *switchCore[T]) OnNext(pub Publisher[T]) Demand {
	c.mu.Lock()
	if c.done || c.cancelled {
		c.mu.Unlock()
		return None()
	}
	c.gen++
	gen := c.gen
	prev := c.current
	c.current = nil
	c.innerActive = true
	c.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}
	pub.Subscribe(&switchInner[T]{core: c, gen: gen})
	return None()
}

func (c *switchCore[T]) OnComplete(fin Completion) {
	c.mu.Lock()
	if c.done || c.cancelled {
		c.mu.Unlock()
		return
	}
	if fin.IsFailure() {
		c.done = true
		cur := c.current
		c.mu.Unlock()
		if cur != nil {
			cur.Cancel()
		}
		c.downstream.OnComplete(fin)
		return
	}
	c.outerDone = true
	finish := !c.innerActive
	if finish {
		c.done = true
	}
	c.mu.Unlock()
	if finish {
		c.downstream.OnComplete(Finished())
	}
}

func (c *switchCore[T]) Request(d Demand) {
	c.mu.Lock()
	if c.done || c.cancelled {
		c.mu.Unlock()
		return
	}
	c.unmet = c.unmet.Add(d)
	cur := c.current
	c.mu.Unlock()
	if cur != nil {
		cur.Request(d)
	}
}

func (c *switchCore[T]) Cancel() {
	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		return
	}
	c.cancelled = true
	cur := c.current
	outer := c.outerSub
	c.mu.Unlock()
	if cur != nil {
		cur.Cancel()
	}
	if outer != nil {
		outer.Cancel()
	}
}

type switchInner[T any] struct {
	core *switchCore[T]
	gen  int
}

func (s *switchInner[T]) OnSubscribe(sub Subscription) {
	c := s.core
	c.mu.Lock()
	if c.done || c.cancelled || c.gen != s.gen {
		c.mu.Unlock()
		sub.Cancel()
		return
	}
	c.current = sub
	d := c.unmet
	c.mu.Unlock()
	if !d.IsNone() {
		sub.Request(d)
	}
}

func (s *switchInner[T]) OnNext(v T) Demand {
	c := s.core
	c.mu.Lock()
	if c.done || c.cancelled || c.gen != s.gen {
		c.mu.Unlock()
		return None()
	}
	c.unmet = c.unmet.decrement()
	c.mu.Unlock()

	delta := c.downstream.OnNext(v)

	c.mu.Lock()
	if !c.done && !c.cancelled {
		c.unmet = c.unmet.Add(delta)
	}
	c.mu.Unlock()
	return delta
}

func (s *switchInner[T]) OnComplete(fin Completion) {
	c := s.core
	c.mu.Lock()
	if c.done || c.cancelled || c.gen != s.gen {
		c.mu.Unlock()
		return
	}
	if fin.IsFailure() {
		c.done = true
		outer := c.outerSub
		c.mu.Unlock()
		if outer != nil {
			outer.Cancel()
		}
		c.downstream.OnComplete(fin)
		return
	}
	c.innerActive = false
	c.current = nil
	finish := c.outerDone
	if finish {
		c.done = true
	}
	c.mu.Unlock()
	if finish {
		c.downstream.OnComplete(Finished())
	}
}
