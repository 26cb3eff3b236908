package reactive

import (
	"sync"
	"time"
)

// Delay shifts every value and the completion by d on the given scheduler.
// Demand flows upstream undelayed; only delivery is deferred. Deliveries are
// serialized through one queue per subscription: a burst of upstream values
// becomes an ordered burst of delayed deliveries, never a race of timers.
func Delay[T any](source Publisher[T], d time.Duration, scheduler Scheduler) Publisher[T] {
	return &delayPublisher[T]{source: source, delay: d, scheduler: scheduler}
}

type delayPublisher[T any] struct {
	source    Publisher[T]
	delay     time.Duration
	scheduler Scheduler
}

func (p *delayPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	p.source.Subscribe(&delaySubscriber[T]{
		downstream: subscriber,
		delay:      p.delay,
		scheduler:  p.scheduler,
	})
}

// delayItem is one deferred signal: a value, or the completion when fin is
// set.
type delayItem[T any] struct {
	value T
	fin   *Completion
	due   time.Time
}

type delaySubscriber[T any] struct {
	mu         sync.Mutex
	downstream Subscriber[T]
	delay      time.Duration
	scheduler  Scheduler
	upstream   Subscription
	queue      []delayItem[T]
	timer      Cancellable
	// armed is true from the moment a firing is scheduled until the queue
	// runs dry; at most one timer exists per subscription.
	armed     bool
	cancelled bool
}

func (s *delaySubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(s)
}

func (s *delaySubscriber[T]) OnNext(v T) Demand {
	s.enqueue(delayItem[T]{value: v, due: time.Now().Add(s.delay)})
	return None()
}

func (s *delaySubscriber[T]) OnComplete(c Completion) {
	s.enqueue(delayItem[T]{fin: &c, due: time.Now().Add(s.delay)})
}

func (s *delaySubscriber[T]) enqueue(item delayItem[T]) {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, item)
	start := !s.armed
	if start {
		s.armed = true
	}
	s.mu.Unlock()

	if start {
		s.schedule(time.Until(item.due))
	}
}

// schedule arms the single firing timer; called without the lock held so an
// immediate scheduler can run the firing inline.
func (s *delaySubscriber[T]) schedule(wait time.Duration) {
	timer := s.scheduler.ScheduleAfter(wait, s.fire)

	s.mu.Lock()
	if s.cancelled || !s.armed {
		// Cancelled meanwhile, or an inline scheduler already ran the
		// firing to completion; the handle is spent.
		s.mu.Unlock()
		timer.Cancel()
		return
	}
	s.timer = timer
	s.mu.Unlock()
}

// fire drains every due item in arrival order, then re-arms for the next
// one still waiting out its delay. Only one fire runs at a time.
func (s *delaySubscriber[T]) fire() {
	for {
		s.mu.Lock()
		s.timer = nil
		if s.cancelled || len(s.queue) == 0 {
			s.armed = false
			s.mu.Unlock()
			return
		}
		head := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if head.fin != nil {
			s.downstream.OnComplete(*head.fin)
			s.mu.Lock()
			s.queue = nil
			s.armed = false
			s.mu.Unlock()
			return
		}

		delta := s.downstream.OnNext(head.value)
		if !delta.IsNone() {
			s.upstream.Request(delta)
		}

		s.mu.Lock()
		if s.cancelled || len(s.queue) == 0 {
			s.armed = false
			s.mu.Unlock()
			return
		}
		wait := time.Until(s.queue[0].due)
		s.mu.Unlock()
		if wait > 0 {
			s.schedule(wait)
			return
		}
	}
}

func (s *delaySubscriber[T]) Request(d Demand) {
	s.upstream.Request(d)
}

func (s *delaySubscriber[T]) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.queue = nil
	timer := s.timer
	s.timer = nil
	s.mu.Unlock()

	if timer != nil {
		timer.Cancel()
	}
	s.upstream.Cancel()
}
