package reactive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// floodPublisher emits its values without honoring demand, the way an
// unruly event source would, then finishes.
type floodPublisher[T any] struct {
	values []T
}

func (p *floodPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	subscriber.OnSubscribe(&inertSubscription[T]{newState[T]()})
	for _, v := range p.values {
		subscriber.OnNext(v)
	}
	subscriber.OnComplete(Finished())
}

func TestBufferedDeliversInOrder(t *testing.T) {
	sub := newTestSubscriber[int](Unlimited())
	Buffered(FromSlice([]int{1, 2, 3, 4, 5}), 2, DropNewest).Subscribe(sub)

	assert.Eventually(t, func() bool { return len(sub.Completions()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestBufferedDropNewestKeepsOldest(t *testing.T) {
	source := &floodPublisher[int]{values: []int{1, 2, 3, 4, 5}}
	sub := newTestSubscriber[int](None())
	Buffered[int](source, 2, DropNewest).Subscribe(sub)

	sub.Subscription().Request(Unlimited())
	assert.Eventually(t, func() bool { return len(sub.Completions()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []int{1, 2}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestBufferedDropOldestKeepsNewest(t *testing.T) {
	source := &floodPublisher[int]{values: []int{1, 2, 3, 4, 5}}
	sub := newTestSubscriber[int](None())
	Buffered[int](source, 2, DropOldest).Subscribe(sub)

	sub.Subscription().Request(Unlimited())
	assert.Eventually(t, func() bool { return len(sub.Completions()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []int{4, 5}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestBufferedErrorWhenFull(t *testing.T) {
	source := &floodPublisher[int]{values: []int{1, 2, 3}}
	sub := newTestSubscriber[int](None())
	Buffered[int](source, 2, ErrorWhenFull).Subscribe(sub)

	assert.Eventually(t, func() bool { return len(sub.Completions()) == 1 }, time.Second, time.Millisecond)
	assert.ErrorIs(t, sub.FailedWith(), ErrBufferOverflow)
	assert.Empty(t, sub.Values(), "buffered values are discarded on overflow failure")
}

func TestBufferedCancelStopsPump(t *testing.T) {
	subject := NewPassthroughSubject[int]()
	sub := newTestSubscriber[int](Unlimited())
	Buffered[int](subject, 4, DropNewest).Subscribe(sub)

	subject.Send(1)
	assert.Eventually(t, func() bool { return len(sub.Values()) == 1 }, time.Second, time.Millisecond)

	sub.Subscription().Cancel()
	subject.Send(2)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []int{1}, sub.Values())
}

func TestFromChannelStreamsUntilClose(t *testing.T) {
	ch := make(chan int)
	sub := newTestSubscriber[int](Unlimited())
	FromChannel(ch).Subscribe(sub)

	ch <- 1
	ch <- 2
	close(ch)

	assert.Eventually(t, func() bool { return len(sub.Completions()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []int{1, 2}, sub.Values())
	assert.True(t, sub.Finished())
}

func TestFromChannelCancelStopsPump(t *testing.T) {
	ch := make(chan int, 1)
	sub := newTestSubscriber[int](Unlimited())
	FromChannel(ch).Subscribe(sub)

	sub.Subscription().Cancel()
	ch <- 99
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, sub.Values())
}

func TestIntervalTicks(t *testing.T) {
	sub := newTestSubscriber[time.Time](Unlimited())
	Interval(5 * time.Millisecond).Subscribe(sub)

	assert.Eventually(t, func() bool { return len(sub.Values()) >= 2 }, time.Second, time.Millisecond)
	sub.Subscription().Cancel()
}

func TestIntervalStopsAfterCancel(t *testing.T) {
	sub := newTestSubscriber[time.Time](Unlimited())
	Interval(5 * time.Millisecond).Subscribe(sub)

	assert.Eventually(t, func() bool { return len(sub.Values()) >= 1 }, time.Second, time.Millisecond)
	sub.Subscription().Cancel()

	seen := len(sub.Values())
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, len(sub.Values()), seen+1, "at most one in-flight tick after cancel")
}

func TestCronRejectsBadSpec(t *testing.T) {
	_, err := Cron("not a schedule")
	assert.Error(t, err)
}

func TestCronAcceptsStandardSpec(t *testing.T) {
	p, err := Cron("*/5 * * * *")
	assert.NoError(t, err)

	sub := newTestSubscriber[time.Time](Unlimited())
	p.Subscribe(sub)
	assert.NotNil(t, sub.Subscription())
	sub.Subscription().Cancel()
}
