package reactive

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Interval returns a publisher emitting the current time every period. Each
// subscriber owns its own ticker, started at subscribe time and stopped on
// cancel. Ticks arriving while the subscriber has no demand are dropped;
// ticks are events, not a backlog.
func Interval(period time.Duration) Publisher[time.Time] {
	return &intervalPublisher{period: period}
}

type intervalPublisher struct {
	period time.Duration
}

func (p *intervalPublisher) Subscribe(subscriber Subscriber[time.Time]) {
	ticker := time.NewTicker(p.period)
	stop := make(chan struct{})
	c := newConduit(subscriber)
	c.onCancel = func() {
		ticker.Stop()
		close(stop)
	}
	subscriber.OnSubscribe(c)

	go func() {
		for {
			select {
			case <-stop:
				return
			case t := <-ticker.C:
				c.send(t)
			}
		}
	}()
}

// Cron returns a publisher emitting the current time on a standard cron
// schedule ("*/5 * * * *" and friends). The schedule is validated up front;
// each subscriber runs its own cron instance, stopped on cancel. Like
// Interval, firings during zero demand are dropped.
func Cron(spec string) (Publisher[time.Time], error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, err
	}
	return &cronPublisher{schedule: schedule}, nil
}

type cronPublisher struct {
	schedule cron.Schedule
}

func (p *cronPublisher) Subscribe(subscriber Subscriber[time.Time]) {
	runner := cron.New()
	c := newConduit(subscriber)
	c.onCancel = func() { runner.Stop() }
	subscriber.OnSubscribe(c)

	runner.Schedule(p.schedule, cron.FuncJob(func() {
		c.send(time.Now())
	}))
	runner.Start()
}
