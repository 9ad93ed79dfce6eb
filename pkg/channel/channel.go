// Package channel provides the blocking point-to-point queue that simulated
// processes use to exchange clock values.
//
// A Go chan is bounded, so a send on it can block. Blocking is unbounded:
// Push never blocks, and only Pop can suspend its caller.
package channel

import "sync"

// Blocking is an unbounded FIFO queue with a blocking Pop. It is safe for
// any number of concurrent producers and consumers.
//
// There is no capacity, timeout or cancellation. A Pop that is never
// matched by a Push blocks its goroutine forever.
type Blocking[T any] struct {
	name string

	mu    sync.Mutex
	ready *sync.Cond
	items []T
}

// New creates an empty queue. The name only shows up in debug traces.
func New[T any](name string) *Blocking[T] {
	b := &Blocking[T]{name: name}
	b.ready = sync.NewCond(&b.mu)
	return b
}

// Name returns the name given at construction.
func (b *Blocking[T]) Name() string { return b.name }

// Push appends v and wakes at most one waiting Pop.
func (b *Blocking[T]) Push(v T) {
	b.mu.Lock()
	b.items = append(b.items, v)
	b.mu.Unlock()
	b.ready.Signal()
}

// Pop removes and returns the oldest element, suspending the caller until
// one is available.
func (b *Blocking[T]) Pop() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.items) == 0 {
		b.ready.Wait()
	}

	v := b.items[0]
	var zero T
	b.items[0] = zero
	b.items = b.items[1:]
	return v
}

// Len returns the number of queued elements. Diagnostic only: the value may
// be stale as soon as it is returned.
func (b *Blocking[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
