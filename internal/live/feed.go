// Package live provides the push-based propagation primitives used between the
// store and the session layer.
//
// A Feed carries "something changed" signals grouped by key (an account id for
// medicines). A Query pairs a feed key with a loader and turns it into a stream
// that emits the full current result on subscription and again after every
// signal. A Value is an observable single value that replays its current state
// to new observers.
//
// # Usage
//
//	feed := live.NewFeed[uint]()
//	q := live.NewQuery(feed, userID, loadMedicines)
//	sub := q.Subscribe(ctx)
//	for list := range sub.C() {
//		render(list)
//	}
package live

import "sync"

// Feed fans change signals out to subscribers of a key.
//
// Signals coalesce: each subscriber has a one-slot buffer, so a burst of
// Notify calls made while the subscriber is busy is observed as a single
// pending signal. Notify never blocks.
type Feed[K comparable] struct {
	mu   sync.Mutex
	subs map[K]map[uint64]chan struct{}
	next uint64
}

// NewFeed creates an empty feed.
func NewFeed[K comparable]() *Feed[K] {
	return &Feed[K]{subs: make(map[K]map[uint64]chan struct{})}
}

// Subscribe registers interest in key. The returned function removes the
// subscription and closes the channel; calling it more than once is safe.
func (f *Feed[K]) Subscribe(key K) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	f.next++
	id := f.next
	byKey, ok := f.subs[key]
	if !ok {
		byKey = make(map[uint64]chan struct{})
		f.subs[key] = byKey
	}
	byKey[id] = ch
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if byKey, ok := f.subs[key]; ok {
				delete(byKey, id)
				if len(byKey) == 0 {
					delete(f.subs, key)
				}
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Notify signals every current subscriber of key.
func (f *Feed[K]) Notify(key K) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of active subscriptions for key.
func (f *Feed[K]) Subscribers(key K) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[key])
}
