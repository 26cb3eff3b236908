package reactive

import (
	"fmt"
	"math"
)

// Demand is the number of values a subscriber is willing to receive from its
// publisher. Demand is a credit: it only ever grows through Request calls and
// shrinks one unit at a time as values are delivered. Bounded demands combine
// by saturating addition; combining anything with Unlimited yields Unlimited.
type Demand struct {
	count     uint64
	unlimited bool
}

// None returns the demand for zero values.
func None() Demand { return Demand{} }

// Unlimited returns the demand for as many values as the publisher can emit.
func Unlimited() Demand { return Demand{unlimited: true} }

// Max returns the demand for at most n values. A negative n is a protocol
// violation by the caller and panics.
func Max(n int) Demand {
	if n < 0 {
		panic(fmt.Sprintf("reactive: demand must be non-negative, got %d", n))
	}
	return Demand{count: uint64(n)}
}

// Add combines two demands using saturating addition.
func (d Demand) Add(other Demand) Demand {
	if d.unlimited || other.unlimited {
		return Unlimited()
	}
	if d.count > math.MaxUint64-other.count {
		return Demand{count: math.MaxUint64}
	}
	return Demand{count: d.count + other.count}
}

// decrement consumes one unit of demand, saturating at zero.
func (d Demand) decrement() Demand {
	if d.unlimited || d.count == 0 {
		return d
	}
	return Demand{count: d.count - 1}
}

// IsNone reports whether no more values may be delivered right now.
func (d Demand) IsNone() bool { return !d.unlimited && d.count == 0 }

// IsUnlimited reports whether the demand is unbounded.
func (d Demand) IsUnlimited() bool { return d.unlimited }

// Count returns the bounded demand value. The second result is false for
// Unlimited, whose count is meaningless.
func (d Demand) Count() (uint64, bool) {
	if d.unlimited {
		return 0, false
	}
	return d.count, true
}

func (d Demand) String() string {
	if d.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("max(%d)", d.count)
}
