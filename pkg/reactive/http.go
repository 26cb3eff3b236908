package reactive

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandlerFunc builds the publisher backing one HTTP request.
type HandlerFunc[T any] func(*gin.Context) Publisher[T]

// Handler adapts a publisher-producing handler to gin: the stream is
// collected and the request answered with a single JSON value, a JSON array,
// or a 500 carrying the failure. Collection waits for the stream's
// completion or the client going away, whichever comes first.
func Handler[T any](handler HandlerFunc[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		publisher := handler(c)

		done := make(chan Completion, 1)
		var values []T
		sink := NewSink(
			func(v T) { values = append(values, v) },
			func(fin Completion) { done <- fin },
		)
		publisher.Subscribe(sink)

		select {
		case fin := <-done:
			if fin.IsFailure() {
				c.JSON(http.StatusInternalServerError, gin.H{"error": fin.Err().Error()})
				return
			}
			switch len(values) {
			case 0:
				c.JSON(http.StatusOK, gin.H{})
			case 1:
				c.JSON(http.StatusOK, values[0])
			default:
				c.JSON(http.StatusOK, values)
			}
		case <-c.Request.Context().Done():
			sink.Cancel()
		}
	}
}

// SSEHandler adapts a publisher-producing handler to a Server-Sent Events
// response. Each value becomes one event; demand is one at a time, renewed
// after every flushed write, so the stream is paced by the network. The
// subscription is cancelled when the client disconnects.
func SSEHandler[T any](handler HandlerFunc[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		publisher := handler(c)
		done := make(chan struct{})
		sub := &sseSubscriber[T]{writer: c.Writer, done: done}
		publisher.Subscribe(sub)

		select {
		case <-done:
		case <-c.Request.Context().Done():
			sub.Cancel()
		}
	}
}

type sseSubscriber[T any] struct {
	writer       http.ResponseWriter
	flusher      http.Flusher
	subscription Subscription
	done         chan struct{}
}

func (s *sseSubscriber[T]) OnSubscribe(sub Subscription) {
	s.subscription = sub
	s.flusher, _ = s.writer.(http.Flusher)
	sub.Request(Max(1))
}

func (s *sseSubscriber[T]) OnNext(v T) Demand {
	data, err := json.Marshal(v)
	if err != nil {
		s.writeEvent("error", []byte(`{"error":"encoding failed"}`))
		s.subscription.Cancel()
		close(s.done)
		return None()
	}
	s.writeEvent("", data)
	return Max(1)
}

func (s *sseSubscriber[T]) OnComplete(fin Completion) {
	if fin.IsFailure() {
		data, _ := json.Marshal(gin.H{"error": fin.Err().Error()})
		s.writeEvent("error", data)
	} else {
		s.writeEvent("close", []byte("{}"))
	}
	close(s.done)
}

func (s *sseSubscriber[T]) writeEvent(event string, data []byte) {
	if event != "" {
		s.writer.Write([]byte("event: " + event + "\n"))
	}
	s.writer.Write([]byte("data: "))
	s.writer.Write(data)
	s.writer.Write([]byte("\n\n"))
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

func (s *sseSubscriber[T]) Cancel() {
	if s.subscription != nil {
		s.subscription.Cancel()
	}
}

// BodyPublisher publishes the request's JSON body as a single value.
func BodyPublisher[T any](c *gin.Context) Publisher[T] {
	var body T
	if err := c.ShouldBindJSON(&body); err != nil {
		return Fail[T](err)
	}
	return Just(body)
}
