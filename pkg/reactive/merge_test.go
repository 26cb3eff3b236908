package reactive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeCombinesAllSources(t *testing.T) {
	sub := newTestSubscriber[int](Unlimited())
	Merge(FromSlice([]int{1, 2, 3}), FromSlice([]int{10, 20, 30})).Subscribe(sub)

	assert.ElementsMatch(t, []int{1, 2, 3, 10, 20, 30}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestMergeWithNoSourcesFinishes(t *testing.T) {
	sub := newTestSubscriber[int](Unlimited())
	Merge[int]().Subscribe(sub)

	assert.Empty(t, sub.Values())
	assert.True(t, sub.Finished())
}

func TestMergeBuffersOverDelivery(t *testing.T) {
	sub := newTestSubscriber[int](Max(2))
	Merge(FromSlice([]int{1, 2, 3}), FromSlice([]int{10, 20, 30})).Subscribe(sub)

	assert.Len(t, sub.Values(), 2)
	assert.Empty(t, sub.Completions())

	sub.Subscription().Request(Max(10))
	assert.ElementsMatch(t, []int{1, 2, 3, 10, 20, 30}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestMergeForwardsFirstFailure(t *testing.T) {
	cause := errors.New("one source died")
	sub := newTestSubscriber[int](Unlimited())
	Merge(FromSlice([]int{1, 2}), Fail[int](cause)).Subscribe(sub)

	assert.Equal(t, []int{1, 2}, sub.Values())
	assert.ErrorIs(t, sub.FailedWith(), cause)
	assert.Len(t, sub.Completions(), 1)
}

func TestMergeSubjectSources(t *testing.T) {
	a := NewPassthroughSubject[string]()
	b := NewPassthroughSubject[string]()

	sub := newTestSubscriber[string](Unlimited())
	Merge[string](a, b).Subscribe(sub)

	a.Send("a1")
	b.Send("b1")
	a.Send("a2")

	a.SendCompletion(Finished())
	assert.Empty(t, sub.Completions(), "one upstream still open")

	b.Send("b2")
	b.SendCompletion(Finished())

	assert.Equal(t, []string{"a1", "b1", "a2", "b2"}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestSwitchToLatestFollowsInnerStreams(t *testing.T) {
	outer := NewPassthroughSubject[Publisher[int]]()

	sub := newTestSubscriber[int](Unlimited())
	SwitchToLatest[int](outer).Subscribe(sub)

	outer.Send(FromSlice([]int{1, 2}))
	outer.Send(FromSlice([]int{3}))
	assert.Equal(t, []int{1, 2, 3}, sub.Values())
	assert.Empty(t, sub.Completions(), "outer still open")

	outer.SendCompletion(Finished())
	assert.True(t, sub.Finished())
}

func TestSwitchToLatestCancelsPreviousInner(t *testing.T) {
	outer := NewPassthroughSubject[Publisher[string]]()
	innerA := NewPassthroughSubject[string]()
	innerB := NewPassthroughSubject[string]()

	sub := newTestSubscriber[string](Unlimited())
	SwitchToLatest[string](outer).Subscribe(sub)

	outer.Send(innerA)
	innerA.Send("a1")

	outer.Send(innerB)
	innerA.Send("a2") // stale inner, must not reach the downstream
	innerB.Send("b1")

	assert.Equal(t, []string{"a1", "b1"}, sub.Values())
}

func TestSwitchToLatestFinishWaitsForLastInner(t *testing.T) {
	outer := NewPassthroughSubject[Publisher[int]]()
	inner := NewPassthroughSubject[int]()

	sub := newTestSubscriber[int](Unlimited())
	SwitchToLatest[int](outer).Subscribe(sub)

	outer.Send(inner)
	inner.Send(1)
	outer.SendCompletion(Finished())
	assert.Empty(t, sub.Completions(), "last inner is still emitting")

	inner.Send(2)
	inner.SendCompletion(Finished())

	assert.Equal(t, []int{1, 2}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestSwitchToLatestInnerFailureEndsStream(t *testing.T) {
	cause := errors.New("inner blew up")
	outer := NewPassthroughSubject[Publisher[int]]()

	sub := newTestSubscriber[int](Unlimited())
	SwitchToLatest[int](outer).Subscribe(sub)

	outer.Send(Fail[int](cause))
	assert.ErrorIs(t, sub.FailedWith(), cause)

	outer.Send(Just(1))
	assert.Empty(t, sub.Values())
}

func TestSwitchToLatestCarriesDemandAcrossSwitch(t *testing.T) {
	outer := NewPassthroughSubject[Publisher[int]]()

	sub := newTestSubscriber[int](Max(3))
	SwitchToLatest[int](outer).Subscribe(sub)

	outer.Send(FromSlice([]int{1}))
	assert.Equal(t, []int{1}, sub.Values())

	// Two units of demand remain unmet; the next inner picks them up.
	outer.Send(FromSlice([]int{5, 6, 7}))
	assert.Equal(t, []int{1, 5, 6}, sub.Values())
}
