// Package backend constructs the pluggable encoder and generator backends by
// name and defers their expensive setup until first use.
package backend

import (
	"context"
	"sync"
)

// Lazy holds a value whose construction is deferred to the first EnsureReady.
// A failed load is not cached; the next call retries.
type Lazy[T any] struct {
	mu    sync.Mutex
	load  func(ctx context.Context) (T, error)
	value T
	ready bool
}

// NewLazy records the loader without calling it.
func NewLazy[T any](load func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{load: load}
}

// EnsureReady runs the loader once. Concurrent callers wait for the same load.
func (l *Lazy[T]) EnsureReady(ctx context.Context) error {
	_, err := l.Get(ctx)
	return err
}

// Get returns the loaded value, loading it first if needed.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return l.value, nil
	}
	v, err := l.load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.value, l.ready = v, true
	return v, nil
}

// Ready reports whether the value has been loaded.
func (l *Lazy[T]) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}
