// Package stream provides a live value: a variable whose current contents are
// delivered to every subscriber on subscribe and again on each change.
package stream

import (
	"context"
	"sync"
)

// Value holds the latest T and fans it out to subscribers. Delivery is
// conflating: a slow subscriber skips intermediate values but always ends up
// with the latest one. The zero Value is not usable; call NewValue.
type Value[T any] struct {
	mu          sync.RWMutex
	current     T
	equal       func(a, b T) bool
	subscribers map[chan T]struct{}
}

// Option configures a Value.
type Option[T any] func(*Value[T])

// WithEqual suppresses Set calls whose value equals the current one.
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(v *Value[T]) { v.equal = eq }
}

// NewValue creates a live value holding initial.
func NewValue[T any](initial T, opts ...Option[T]) *Value[T] {
	v := &Value[T]{
		current:     initial,
		subscribers: make(map[chan T]struct{}),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Set replaces the current value and notifies subscribers. It reports whether
// the value changed (always true without WithEqual).
func (v *Value[T]) Set(next T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.setLocked(next)
}

// Update applies fn to the current value under the write lock and publishes
// the result.
func (v *Value[T]) Update(fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := fn(v.current)
	v.setLocked(next)
	return next
}

func (v *Value[T]) setLocked(next T) bool {
	if v.equal != nil && v.equal(v.current, next) {
		return false
	}
	v.current = next
	for ch := range v.subscribers {
		offer(ch, next)
	}
	return true
}

// offer replaces whatever is pending in ch with val. Only the owner of the
// write lock sends, so the drain-then-send never blocks.
func offer[T any](ch chan T, val T) {
	select {
	case <-ch:
	default:
	}
	ch <- val
}

// Subscribe returns a channel that first yields the current value and then
// every later change. The channel is closed once ctx is done.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	in := make(chan T, 1)
	out := make(chan T)

	v.mu.Lock()
	in <- v.current
	v.subscribers[in] = struct{}{}
	v.mu.Unlock()

	go func() {
		defer close(out)
		defer v.unsubscribe(in)
		for {
			select {
			case <-ctx.Done():
				return
			case val := <-in:
				select {
				case out <- val:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (v *Value[T]) unsubscribe(ch chan T) {
	v.mu.Lock()
	delete(v.subscribers, ch)
	v.mu.Unlock()
}

// Subscribers returns the number of active subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subscribers)
}

// Map subscribes to src and forwards fn of each value, skipping values equal
// to the previously forwarded one when eq is non-nil.
func Map[T, U any](ctx context.Context, src *Value[T], fn func(T) U, eq func(a, b U) bool) <-chan U {
	in := src.Subscribe(ctx)
	out := make(chan U)
	go func() {
		defer close(out)
		var (
			last U
			sent bool
		)
		for val := range in {
			mapped := fn(val)
			if sent && eq != nil && eq(last, mapped) {
				continue
			}
			select {
			case out <- mapped:
				last, sent = mapped, true
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
