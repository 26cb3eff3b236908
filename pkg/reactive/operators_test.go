package reactive

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapTransformsValues(t *testing.T) {
	sub := newTestSubscriber[string](Unlimited())
	Map(FromSlice([]int{1, 2, 3}), strconv.Itoa).Subscribe(sub)

	assert.Equal(t, []string{"1", "2", "3"}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestMapPreservesDemand(t *testing.T) {
	sub := newTestSubscriber[int](Max(2))
	Map(FromSlice([]int{1, 2, 3, 4}), func(v int) int { return v * 10 }).Subscribe(sub)

	assert.Equal(t, []int{10, 20}, sub.Values())
	assert.Empty(t, sub.Completions())
}

func TestMapForwardsFailure(t *testing.T) {
	cause := errors.New("bad source")
	sub := newTestSubscriber[int](Unlimited())
	Map(Fail[int](cause), func(v int) int { return v }).Subscribe(sub)

	assert.ErrorIs(t, sub.FailedWith(), cause)
}

func TestFilterUnlimited(t *testing.T) {
	sub := newTestSubscriber[int](Unlimited())
	Filter(Range(1, 11), func(v int) bool { return v%3 == 0 }).Subscribe(sub)

	assert.Equal(t, []int{3, 6, 9}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestFilterRepullsPerDroppedValue(t *testing.T) {
	sub := newTestSubscriber[int](Max(1))
	Filter(Range(1, 11), func(v int) bool { return v%3 == 0 }).Subscribe(sub)

	// One unit of downstream demand still reaches the first match because
	// each dropped value adds one unit of upstream demand.
	assert.Equal(t, []int{3}, sub.Values())

	sub.Subscription().Request(Max(1))
	assert.Equal(t, []int{3, 6}, sub.Values())

	sub.Subscription().Request(Max(2))
	assert.Equal(t, []int{3, 6, 9}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestFilterNothingMatches(t *testing.T) {
	sub := newTestSubscriber[int](Max(1))
	Filter(Range(1, 6), func(int) bool { return false }).Subscribe(sub)

	assert.Empty(t, sub.Values())
	assert.True(t, sub.Finished())
}

func TestTakeStopsEarly(t *testing.T) {
	sub := newTestSubscriber[int](Unlimited())
	Take(FromSlice([]int{1, 2, 3, 4, 5}), 2).Subscribe(sub)

	assert.Equal(t, []int{1, 2}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestTakeMoreThanAvailable(t *testing.T) {
	sub := newTestSubscriber[int](Unlimited())
	Take(FromSlice([]int{1, 2}), 10).Subscribe(sub)

	assert.Equal(t, []int{1, 2}, sub.Values())
	assert.True(t, sub.Finished())
	assert.Len(t, sub.Completions(), 1)
}

func TestTakeZeroFinishesImmediately(t *testing.T) {
	subject := NewPassthroughSubject[int]()
	sub := newTestSubscriber[int](Unlimited())
	Take[int](subject, 0).Subscribe(sub)

	assert.True(t, sub.Finished())
	subject.Send(1)
	assert.Empty(t, sub.Values())
}
