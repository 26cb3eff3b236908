package reactive

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the stream instrumentation collectors. Register one Metrics
// per registry and wrap the publishers worth watching with Observe.
type Metrics struct {
	values        *prometheus.CounterVec
	completions   *prometheus.CounterVec
	subscriptions *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		values: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reactive_values_delivered_total",
			Help: "Values delivered to subscribers, per stream.",
		}, []string{"stream"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reactive_completions_total",
			Help: "Terminal signals delivered, per stream and outcome.",
		}, []string{"stream", "outcome"}),
		subscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "reactive_active_subscriptions",
			Help: "Currently active subscriptions, per stream.",
		}, []string{"stream"}),
	}
	reg.MustRegister(m.values, m.completions, m.subscriptions)
	return m
}

// Observe instruments a publisher: subscription attach/detach, delivered
// values, and completion outcomes are counted under the stream label.
func Observe[T any](m *Metrics, stream string, source Publisher[T]) Publisher[T] {
	return &observedPublisher[T]{source: source, m: m, stream: stream}
}

type observedPublisher[T any] struct {
	source Publisher[T]
	m      *Metrics
	stream string
}

func (p *observedPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	p.source.Subscribe(&observedSubscriber[T]{downstream: subscriber, m: p.m, stream: p.stream})
}

type observedSubscriber[T any] struct {
	downstream Subscriber[T]
	m          *Metrics
	stream     string
	detached   atomic.Bool
}

// detach flips the subscription to inactive exactly once, whether the stream
// ended by completion or by cancel.
func (s *observedSubscriber[T]) detach() bool {
	return s.detached.CompareAndSwap(false, true)
}

func (s *observedSubscriber[T]) OnSubscribe(sub Subscription) {
	s.m.subscriptions.WithLabelValues(s.stream).Inc()
	s.downstream.OnSubscribe(&observedSubscription[T]{inner: sub, s: s})
}

func (s *observedSubscriber[T]) OnNext(v T) Demand {
	s.m.values.WithLabelValues(s.stream).Inc()
	return s.downstream.OnNext(v)
}

func (s *observedSubscriber[T]) OnComplete(c Completion) {
	outcome := "finished"
	if c.IsFailure() {
		outcome = "failed"
	}
	s.m.completions.WithLabelValues(s.stream, outcome).Inc()
	if s.detach() {
		s.m.subscriptions.WithLabelValues(s.stream).Dec()
	}
	s.downstream.OnComplete(c)
}

type observedSubscription[T any] struct {
	inner Subscription
	s     *observedSubscriber[T]
}

func (o *observedSubscription[T]) Request(d Demand) {
	o.inner.Request(d)
}

func (o *observedSubscription[T]) Cancel() {
	if o.s.detach() {
		o.s.m.subscriptions.WithLabelValues(o.s.stream).Dec()
	}
	o.inner.Cancel()
}
