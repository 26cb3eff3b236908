package reactive

import (
	"sync"

	"github.com/google/uuid"
)

// Every concrete subscription in this package is built on the same state
// machine: Active(demand) -> Cancelled | Completed, with no transition out
// of a terminal state. The state holds the one piece of data shared between
// the producer and consumer sides — outstanding demand plus the terminal
// flag — and serializes all mutations behind a mutex. The mutex is never
// held across a subscriber callback, so re-entrant Request and Cancel calls
// from inside OnNext cannot deadlock.
//
// Emission is single-flight: whichever side flips the emitting flag owns the
// drain loop until demand or values run out. A re-entrant Request during a
// drain only adds demand; the running drain picks it up on its next step.

type lifecycle int

const (
	stateActive lifecycle = iota
	stateCancelled
	stateCompleted
)

type state[T any] struct {
	mu       sync.Mutex
	id       string
	life     lifecycle
	demand   Demand
	emitting bool

	// pending holds undelivered values for an event-driven source (subjects,
	// timers, bridges). A keep-latest source keeps only the newest value;
	// otherwise values queue up to the outstanding demand, so a concurrent
	// sender can never displace a value the subscriber has credit for.
	// Cursor-driven sources leave it nil.
	pending []T
	// final is a completion latched while a drain was in flight; the drain
	// delivers it on its next step.
	final *Completion
}

func newState[T any]() *state[T] {
	return &state[T]{id: uuid.NewString()}
}

// ID identifies the subscription for diagnostic correlation.
func (s *state[T]) ID() string { return s.id }

// request folds d into the stored demand. It reports whether the caller
// should start a drain: the subscription is active, demand is now positive,
// and no drain is already running (in which case ownership of the emitting
// flag passes to the caller).
func (s *state[T]) request(d Demand) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life != stateActive {
		return false
	}
	s.demand = s.demand.Add(d)
	if s.emitting || s.demand.IsNone() {
		return false
	}
	s.emitting = true
	return true
}

// take consumes one unit of demand for a cursor-driven source. Returning
// false ends the drain and releases the emitting flag.
func (s *state[T]) take() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life != stateActive || s.demand.IsNone() {
		s.emitting = false
		return false
	}
	s.demand = s.demand.decrement()
	return true
}

// offer routes v into the pending buffer for an event-driven source and
// reports whether the caller should start a drain. A keep-latest source
// always stores v, replacing any undelivered value. Otherwise v queues only
// while outstanding demand covers every value already waiting; beyond that
// the subscriber has no credit for it and it is dropped.
func (s *state[T]) offer(v T, keepLatest bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life != stateActive {
		return false
	}
	if keepLatest {
		if len(s.pending) == 0 {
			s.pending = append(s.pending, v)
		} else {
			s.pending[0] = v
		}
	} else {
		if !s.hasCreditLocked() {
			return false
		}
		s.pending = append(s.pending, v)
	}
	if s.emitting || s.demand.IsNone() {
		return false
	}
	s.emitting = true
	return true
}

// hasCreditLocked reports whether outstanding demand covers one more value
// on top of those already pending. s.mu must be held.
func (s *state[T]) hasCreditLocked() bool {
	if s.demand.unlimited {
		return true
	}
	return uint64(len(s.pending)) < s.demand.count
}

// next pops the oldest pending value if the subscription may emit it now.
// A false result with a nil completion ends the drain; a non-nil completion
// must be delivered by the caller, after which the drain ends too.
func (s *state[T]) next(keepLatest bool) (v T, ok bool, fin *Completion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life != stateActive {
		s.pending = nil
		s.emitting = false
		fin = s.final
		s.final = nil
		return v, false, fin
	}
	if len(s.pending) == 0 {
		s.emitting = false
		return v, false, nil
	}
	if s.demand.IsNone() {
		if !keepLatest {
			s.pending = nil
		}
		s.emitting = false
		return v, false, nil
	}
	v = s.pending[0]
	s.pending = s.pending[1:]
	s.demand = s.demand.decrement()
	return v, true, nil
}

// fold adds the demand returned by a subscriber's OnNext back into the
// stored demand.
func (s *state[T]) fold(d Demand) {
	s.mu.Lock()
	if s.life == stateActive {
		s.demand = s.demand.Add(d)
	}
	s.mu.Unlock()
}

// outstanding returns a snapshot of the stored demand.
func (s *state[T]) outstanding() Demand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.demand
}

// complete transitions to Completed. It reports whether the caller owns
// delivery of the terminal signal; when a drain is running on another
// goroutine the completion is latched and the drain delivers it instead,
// keeping deliveries to the subscriber from ever overlapping.
func (s *state[T]) complete(c Completion) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life != stateActive {
		return false
	}
	s.life = stateCompleted
	s.pending = nil
	if s.emitting {
		s.final = &c
		return false
	}
	return true
}

// completeInDrain transitions to Completed from inside a drain loop, where
// the caller already owns emission and delivers the signal itself.
func (s *state[T]) completeInDrain() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life != stateActive {
		s.emitting = false
		return false
	}
	s.life = stateCompleted
	s.pending = nil
	s.emitting = false
	return true
}

// cancel transitions to Cancelled. Idempotent; reports whether this call
// performed the transition.
func (s *state[T]) cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.life != stateActive {
		return false
	}
	s.life = stateCancelled
	s.pending = nil
	s.final = nil
	return true
}

// quiescent reports whether no drain is in flight.
func (s *state[T]) quiescent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.emitting
}

// terminated reports whether the subscription reached a terminal state.
func (s *state[T]) terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.life != stateActive
}
