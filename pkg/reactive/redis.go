package reactive

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// FromRedis bridges a Redis Pub/Sub channel into a PassthroughSubject of
// message payloads. The pump stops and the subject completes when ctx is
// cancelled (Finished) or the connection dies (Failed). Like any subject,
// payloads arriving while a subscriber has no demand are skipped for it.
func FromRedis(ctx context.Context, client *redis.Client, channel string) *PassthroughSubject[string] {
	subject := NewPassthroughSubject[string]()
	pubsub := client.Subscribe(ctx, channel)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				subject.SendCompletion(Finished())
				return
			case msg, ok := <-ch:
				if !ok {
					subject.SendCompletion(Failed(ErrClosed))
					return
				}
				subject.Send(msg.Payload)
			}
		}
	}()
	return subject
}

// ToRedis returns a subscriber forwarding every value to PUBLISH on the
// given channel. Publish errors fail fast: the upstream subscription is
// cancelled and further values ignored.
func ToRedis(ctx context.Context, client *redis.Client, channel string) Subscriber[string] {
	return &redisSink{ctx: ctx, client: client, channel: channel}
}

type redisSink struct {
	ctx          context.Context
	client       *redis.Client
	channel      string
	subscription Subscription
	dead         bool
}

func (s *redisSink) OnSubscribe(sub Subscription) {
	s.subscription = sub
	sub.Request(Unlimited())
}

func (s *redisSink) OnNext(payload string) Demand {
	if s.dead {
		return None()
	}
	if err := s.client.Publish(s.ctx, s.channel, payload).Err(); err != nil {
		s.dead = true
		s.subscription.Cancel()
	}
	return None()
}

func (s *redisSink) OnComplete(Completion) {}
