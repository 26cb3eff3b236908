package reactive

import (
	"sync"

	"github.com/gorilla/websocket"
)

// FromConn publishes the text and binary messages read from a websocket
// connection. A connection carries a single ordered byte stream, so the
// publisher supports exactly one subscriber; the read pump starts at
// subscribe time. A normal close frame finishes the stream, any other read
// error fails it. Messages read while the subscriber has no demand are
// dropped — websocket frames are events, not a replayable backlog.
func FromConn(conn *websocket.Conn) Publisher[[]byte] {
	return &connPublisher{conn: conn}
}

type connPublisher struct {
	conn *websocket.Conn
	once sync.Once
}

func (p *connPublisher) Subscribe(subscriber Subscriber[[]byte]) {
	var claimed bool
	p.once.Do(func() { claimed = true })
	if !claimed {
		Fail[[]byte](ErrClosed).Subscribe(subscriber)
		return
	}

	c := newConduit(subscriber)
	c.onCancel = func() { p.conn.Close() }
	subscriber.OnSubscribe(c)

	go func() {
		for {
			_, data, err := p.conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.finish(Finished())
				} else {
					c.finish(Failed(err))
				}
				return
			}
			c.send(data)
		}
	}()
}

// ToConn returns a subscriber writing every value to the connection as a
// text message. The completion becomes a close frame; write errors cancel
// the upstream.
func ToConn(conn *websocket.Conn) Subscriber[[]byte] {
	return &connSink{conn: conn}
}

type connSink struct {
	mu           sync.Mutex
	conn         *websocket.Conn
	subscription Subscription
	dead         bool
}

func (s *connSink) OnSubscribe(sub Subscription) {
	s.mu.Lock()
	s.subscription = sub
	s.mu.Unlock()
	sub.Request(Unlimited())
}

func (s *connSink) OnNext(data []byte) Demand {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return None()
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.dead = true
		s.subscription.Cancel()
	}
	return None()
}

func (s *connSink) OnComplete(fin Completion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return
	}
	s.dead = true
	code := websocket.CloseNormalClosure
	text := ""
	if fin.IsFailure() {
		code = websocket.CloseInternalServerErr
		text = fin.Err().Error()
	}
	s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
}
