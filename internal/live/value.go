package live

import "sync"

// Observable is the read side of a Value.
type Observable[T any] interface {
	// Get returns the current value.
	Get() T
	// Subscribe returns a channel that immediately holds the current value and
	// then receives every later value. Delivery is conflated: an observer that
	// falls behind only sees the most recent value. The returned function stops
	// the subscription and closes the channel.
	Subscribe() (<-chan T, func())
}

// Value holds a single observable value. Values handed out are shared, so T
// should be treated as immutable once set (replace slices, do not mutate them).
type Value[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[uint64]chan T
	next    uint64
}

var _ Observable[int] = (*Value[int])(nil)

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[uint64]chan T),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set replaces the value and notifies observers. It never blocks on a slow
// observer.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = x
	for _, ch := range v.subs {
		replace(ch, x)
	}
}

// Subscribe implements Observable.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	v.mu.Lock()
	v.next++
	id := v.next
	v.subs[id] = ch
	ch <- v.current
	v.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			delete(v.subs, id)
			close(ch)
		})
	}
}

// replace drops a pending value, if any, and buffers x. Only callers holding
// the Value lock write to ch, so the send cannot block.
func replace[T any](ch chan T, x T) {
	select {
	case <-ch:
	default:
	}
	ch <- x
}
