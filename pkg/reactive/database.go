package reactive

import (
	"database/sql"

	"gorm.io/gorm"
)

// ReactiveDB wraps a gorm.DB so query results can feed operator chains.
// Chainer methods mirror gorm's and return derived wrappers.
type ReactiveDB struct {
	db *gorm.DB
}

// NewReactiveDB creates a new ReactiveDB.
func NewReactiveDB(db *gorm.DB) *ReactiveDB {
	return &ReactiveDB{db: db}
}

// Where adds a where clause to the query.
func (r *ReactiveDB) Where(query interface{}, args ...interface{}) *ReactiveDB {
	return &ReactiveDB{db: r.db.Where(query, args...)}
}

// Order adds an order clause to the query.
func (r *ReactiveDB) Order(value interface{}) *ReactiveDB {
	return &ReactiveDB{db: r.db.Order(value)}
}

// Limit adds a limit clause to the query.
func (r *ReactiveDB) Limit(limit int) *ReactiveDB {
	return &ReactiveDB{db: r.db.Limit(limit)}
}

// DB exposes the underlying handle.
func (r *ReactiveDB) DB() *gorm.DB {
	return r.db
}

// Query returns a publisher streaming rows of the model T. The rows cursor
// is opened lazily at the first request and advanced strictly by demand, so
// a slow subscriber holds back the scan instead of buffering it. Cancelling
// closes the cursor; a scan error fails the stream.
func Query[T any](r *ReactiveDB, conds ...interface{}) Publisher[T] {
	return &queryPublisher[T]{db: r.db, conds: conds}
}

// First returns a publisher of the first record matching the query.
func First[T any](r *ReactiveDB, conds ...interface{}) Publisher[T] {
	return Deferred(func() Publisher[T] {
		var out T
		if err := r.db.First(&out, conds...).Error; err != nil {
			return Fail[T](err)
		}
		return Just(out)
	})
}

// Create inserts value and republishes it, or fails with the insert error.
func Create[T any](r *ReactiveDB, value T) Publisher[T] {
	return Deferred(func() Publisher[T] {
		if err := r.db.Create(&value).Error; err != nil {
			return Fail[T](err)
		}
		return Just(value)
	})
}

type queryPublisher[T any] struct {
	db    *gorm.DB
	conds []interface{}
}

func (p *queryPublisher[T]) Subscribe(subscriber Subscriber[T]) {
	sub := &querySubscription[T]{
		state:      newState[T](),
		db:         p.db,
		conds:      p.conds,
		subscriber: subscriber,
	}
	subscriber.OnSubscribe(sub)
}

type querySubscription[T any] struct {
	*state[T]
	db         *gorm.DB
	conds      []interface{}
	subscriber Subscriber[T]
	rows       *sql.Rows
}

func (s *querySubscription[T]) Request(d Demand) {
	if s.request(d) {
		s.drain()
	}
}

func (s *querySubscription[T]) Cancel() {
	// Close the cursor only when no drain is touching it; a running drain
	// observes the cancellation at its next step and closes it itself.
	if s.cancel() && s.quiescent() && s.rows != nil {
		s.rows.Close()
	}
}

// drain owns the cursor while the emitting flag is held.
func (s *querySubscription[T]) drain() {
	if s.rows == nil {
		tx := s.db.Model(new(T))
		if len(s.conds) > 0 {
			tx = tx.Where(s.conds[0], s.conds[1:]...)
		}
		rows, err := tx.Rows()
		if err != nil {
			s.finish(Failed(err))
			return
		}
		s.rows = rows
	}
	for {
		if !s.take() {
			if s.terminated() && s.rows != nil {
				s.rows.Close()
			}
			return
		}
		if !s.rows.Next() {
			err := s.rows.Err()
			s.rows.Close()
			s.finish(Failed(err)) // nil err becomes Finished
			return
		}
		var v T
		if err := s.db.ScanRows(s.rows, &v); err != nil {
			s.rows.Close()
			s.finish(Failed(err))
			return
		}
		s.fold(s.subscriber.OnNext(v))
	}
}

func (s *querySubscription[T]) finish(fin Completion) {
	if s.completeInDrain() {
		s.subscriber.OnComplete(fin)
	}
}
