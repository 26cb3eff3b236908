package reactive

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCountsValuesAndCompletion(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	sub := newTestSubscriber[int](Unlimited())
	Observe(m, "numbers", FromSlice([]int{1, 2, 3})).Subscribe(sub)

	assert.Equal(t, []int{1, 2, 3}, sub.Values())
	assert.Equal(t, float64(3), testutil.ToFloat64(m.values.WithLabelValues("numbers")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.completions.WithLabelValues("numbers", "finished")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.subscriptions.WithLabelValues("numbers")))
}

func TestObserveCountsFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	sub := newTestSubscriber[int](Unlimited())
	Observe(m, "broken", Fail[int](errors.New("nope"))).Subscribe(sub)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.completions.WithLabelValues("broken", "failed")))
}

func TestObserveTracksActiveSubscriptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	subject := NewPassthroughSubject[int]()
	observed := Observe[int](m, "live", subject)

	first := newTestSubscriber[int](Unlimited())
	second := newTestSubscriber[int](Unlimited())
	observed.Subscribe(first)
	observed.Subscribe(second)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.subscriptions.WithLabelValues("live")))

	first.Subscription().Cancel()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.subscriptions.WithLabelValues("live")))

	// Cancel after cancel must not double-decrement.
	first.Subscription().Cancel()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.subscriptions.WithLabelValues("live")))

	subject.SendCompletion(Finished())
	assert.Equal(t, float64(0), testutil.ToFloat64(m.subscriptions.WithLabelValues("live")))
}

func TestObserveIsTransparentToDemand(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	sub := newTestSubscriber[int](Max(2))
	Observe(m, "paced", FromSlice([]int{1, 2, 3, 4})).Subscribe(sub)

	assert.Equal(t, []int{1, 2}, sub.Values())
	assert.Equal(t, float64(2), testutil.ToFloat64(m.values.WithLabelValues("paced")))
}
