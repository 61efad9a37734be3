package live

import (
	"context"
	"sync"
)

// LoadFunc reads the current result of a live query.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Query is a lazy, restartable live query. Nothing runs until Subscribe is
// called, and every call starts an independent stream.
type Query[T any] struct {
	changes func() (<-chan struct{}, func())
	load    LoadFunc[T]
}

// NewQuery builds a query that reloads whenever feed signals key.
func NewQuery[K comparable, T any](feed *Feed[K], key K, load LoadFunc[T]) *Query[T] {
	return &Query[T]{
		changes: func() (<-chan struct{}, func()) { return feed.Subscribe(key) },
		load:    load,
	}
}

// Subscribe starts a stream. The current result is delivered first, then a
// fresh result after every change signal. The stream ends when ctx is done,
// Close is called, or a load fails.
func (q *Query[T]) Subscribe(ctx context.Context) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)

	// Register for changes before the first load so a commit racing with the
	// initial read still triggers a re-emission.
	signals, unsubscribe := q.changes()

	s := &Subscription[T]{
		values: make(chan T),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go s.run(ctx, q.load, signals, unsubscribe)
	return s
}

// Subscription is one running stream of a Query.
type Subscription[T any] struct {
	values chan T
	done   chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// C returns the channel of emitted results. It is closed when the stream ends.
func (s *Subscription[T]) C() <-chan T {
	return s.values
}

// Done is closed once the stream goroutine has exited.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Cancel stops the stream without waiting for it.
func (s *Subscription[T]) Cancel() {
	s.cancel()
}

// Close cancels the stream and waits for it to stop.
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

// Err reports the load error that ended the stream, if any. Cancellation is
// not an error.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription[T]) run(ctx context.Context, load LoadFunc[T], signals <-chan struct{}, unsubscribe func()) {
	defer close(s.done)
	defer close(s.values)
	defer unsubscribe()
	defer s.cancel()

	for {
		v, err := load(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}

		select {
		case s.values <- v:
		case <-ctx.Done():
			return
		}

		select {
		case _, ok := <-signals:
			if !ok {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
