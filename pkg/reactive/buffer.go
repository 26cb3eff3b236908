package reactive

import "sync"

// OverflowStrategy decides what happens when a Buffered operator's queue is
// full and the upstream keeps emitting.
type OverflowStrategy int

const (
	// DropNewest discards the incoming value.
	DropNewest OverflowStrategy = iota
	// DropOldest evicts the oldest buffered value to make room.
	DropOldest
	// ErrorWhenFull fails the stream with ErrBufferOverflow.
	ErrorWhenFull
)

// Buffered decouples a fast producer from a slow consumer through a bounded
// queue drained by a dedicated goroutine. The operator keeps up to size
// values in flight upstream and refills one unit per delivered value, so the
// upstream is never asked for more than the queue can hold.
func Buffered[T any](source Publisher[T], size int, strategy OverflowStrategy) Publisher[T] {
	if size <= 0 {
		size = DefaultConfig().BufferSize
	}
	return &bufferedPublisher[T]{source: source, size: size, strategy: strategy}
}

type bufferedPublisher[T any] struct {
	source   Publisher[T]
	size     int
	strategy OverflowStrategy
}

func (p *bufferedPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	p.source.Subscribe(&bufferSubscriber[T]{
		downstream: subscriber,
		size:       p.size,
		strategy:   p.strategy,
		notify:     make(chan struct{}, 1),
	})
}

type bufferSubscriber[T any] struct {
	mu         sync.Mutex
	downstream Subscriber[T]
	size       int
	strategy   OverflowStrategy
	upstream   Subscription
	queue      []T
	demand     Demand
	final      *Completion
	cancelled  bool
	notify     chan struct{}
}

func (s *bufferSubscriber[T]) OnSubscribe(sub Subscription) {
	s.upstream = sub
	s.downstream.OnSubscribe(s)
	go s.pump()
	sub.Request(Max(s.size))
}

func (s *bufferSubscriber[T]) OnNext(v T) Demand {
	s.mu.Lock()
	if s.cancelled || s.final != nil {
		s.mu.Unlock()
		return None()
	}
	if len(s.queue) >= s.size {
		switch s.strategy {
		case DropOldest:
			s.queue = append(s.queue[1:], v)
		case ErrorWhenFull:
			fin := Failed(ErrBufferOverflow)
			s.final = &fin
			s.queue = nil
			s.mu.Unlock()
			s.upstream.Cancel()
			s.wake()
			return None()
		default: // DropNewest
		}
		s.mu.Unlock()
		s.wake()
		return None()
	}
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	s.wake()
	return None()
}

func (s *bufferSubscriber[T]) OnComplete(c Completion) {
	s.mu.Lock()
	if s.cancelled || s.final != nil {
		s.mu.Unlock()
		return
	}
	s.final = &c
	s.mu.Unlock()
	s.wake()
}

func (s *bufferSubscriber[T]) Request(d Demand) {
	s.mu.Lock()
	if !s.cancelled {
		s.demand = s.demand.Add(d)
	}
	s.mu.Unlock()
	s.wake()
}

func (s *bufferSubscriber[T]) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.queue = nil
	s.mu.Unlock()
	s.upstream.Cancel()
	s.wake()
}

func (s *bufferSubscriber[T]) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// pump is the only goroutine that touches the downstream, so deliveries
// never overlap.
func (s *bufferSubscriber[T]) pump() {
	for {
		s.mu.Lock()
		if s.cancelled {
			s.mu.Unlock()
			return
		}
		if len(s.queue) > 0 && !s.demand.IsNone() {
			v := s.queue[0]
			s.queue = s.queue[1:]
			s.demand = s.demand.decrement()
			s.mu.Unlock()

			delta := s.downstream.OnNext(v)
			s.upstream.Request(Max(1))

			s.mu.Lock()
			if !s.cancelled {
				s.demand = s.demand.Add(delta)
			}
			s.mu.Unlock()
			continue
		}
		if len(s.queue) == 0 && s.final != nil {
			fin := *s.final
			s.cancelled = true
			s.mu.Unlock()
			s.downstream.OnComplete(fin)
			return
		}
		s.mu.Unlock()
		<-s.notify
	}
}
