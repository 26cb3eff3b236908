package reactive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromSliceBoundedRequest(t *testing.T) {
	sub := newTestSubscriber[int](Max(3))
	FromSlice([]int{1, 2, 3, 4, 5}).Subscribe(sub)

	assert.Equal(t, []int{1, 2, 3}, sub.Values())
	assert.Empty(t, sub.Completions())
}

func TestFromSliceUnlimitedDrainsAndFinishes(t *testing.T) {
	sub := newTestSubscriber[int](Unlimited())
	FromSlice([]int{1, 2, 3, 4, 5}).Subscribe(sub)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestFromSliceResumesAfterSuspension(t *testing.T) {
	sub := newTestSubscriber[int](Max(2))
	FromSlice([]int{1, 2, 3, 4}).Subscribe(sub)
	assert.Equal(t, []int{1, 2}, sub.Values())

	sub.Subscription().Request(Max(10))
	assert.Equal(t, []int{1, 2, 3, 4}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestFromSliceNoDemandNoEmission(t *testing.T) {
	sub := newTestSubscriber[int](None())
	FromSlice([]int{1, 2, 3}).Subscribe(sub)

	assert.Empty(t, sub.Values())
	assert.Empty(t, sub.Completions())
	assert.NotNil(t, sub.Subscription(), "handshake must happen before any emission")
}

func TestFromSlicePerValueDemandTrickle(t *testing.T) {
	sub := newTestSubscriber[int](Max(1))
	sub.perValue = func(int) Demand { return Max(1) }
	FromSlice([]int{1, 2, 3}).Subscribe(sub)

	assert.Equal(t, []int{1, 2, 3}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestFromSliceCancelStopsEmission(t *testing.T) {
	sub := newTestSubscriber[int](Max(1))
	sub.perValue = func(v int) Demand {
		if v == 2 {
			sub.Subscription().Cancel()
			return None()
		}
		return Max(1)
	}
	FromSlice([]int{1, 2, 3, 4}).Subscribe(sub)

	assert.Equal(t, []int{1, 2}, sub.Values())
	assert.Empty(t, sub.Completions(), "cancellation is silent")
}

func TestFromSliceCancelIsIdempotent(t *testing.T) {
	sub := newTestSubscriber[int](None())
	FromSlice([]int{1}).Subscribe(sub)

	s := sub.Subscription()
	assert.NotPanics(t, func() {
		s.Cancel()
		s.Cancel()
		s.Request(Max(5))
	})
	assert.Empty(t, sub.Values())
}

func TestRangeIsHalfOpen(t *testing.T) {
	sub := newTestSubscriber[int](Unlimited())
	Range(2, 5).Subscribe(sub)
	assert.Equal(t, []int{2, 3, 4}, sub.Values())
	assert.True(t, sub.Finished())

	empty := newTestSubscriber[int](Unlimited())
	Range(5, 5).Subscribe(empty)
	assert.Empty(t, empty.Values())
	assert.True(t, empty.Finished())
}

func TestJust(t *testing.T) {
	sub := newTestSubscriber[string](Unlimited())
	Just("only").Subscribe(sub)
	assert.Equal(t, []string{"only"}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestEmptyFinishesWithoutDemand(t *testing.T) {
	sub := newTestSubscriber[int](None())
	Empty[int]().Subscribe(sub)

	assert.Empty(t, sub.Values())
	assert.True(t, sub.Finished(), "completion bypasses flow control")
}

func TestFailDeliversFailure(t *testing.T) {
	cause := errors.New("broken source")
	sub := newTestSubscriber[int](Unlimited())
	Fail[int](cause).Subscribe(sub)

	assert.Empty(t, sub.Values())
	assert.ErrorIs(t, sub.FailedWith(), cause)
}

func TestDeferredBuildsPerSubscriber(t *testing.T) {
	calls := 0
	p := Deferred(func() Publisher[int] {
		calls++
		return Just(calls)
	})
	assert.Zero(t, calls, "factory must not run before a subscribe")

	first := newTestSubscriber[int](Unlimited())
	p.Subscribe(first)
	second := newTestSubscriber[int](Unlimited())
	p.Subscribe(second)

	assert.Equal(t, []int{1}, first.Values())
	assert.Equal(t, []int{2}, second.Values())
}
