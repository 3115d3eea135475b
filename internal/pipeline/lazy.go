package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Lazy loads a value once, on first demand, in the background. Every
// caller, concurrent or later, shares the one load's result. A loaded value
// is kept for the life of the process.
type Lazy[T any] struct {
	load  func() (T, error)
	once  sync.Once
	done  chan struct{}
	val   T
	err   error
	loads atomic.Int32
}

// NewLazy returns a loader that calls load at most once.
func NewLazy[T any](load func() (T, error)) *Lazy[T] {
	return &Lazy[T]{load: load, done: make(chan struct{})}
}

// Get starts the load if needed and waits for it or for ctx. A load that
// panics reports the panic as its error.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.once.Do(func() { go l.run() })
	select {
	case <-l.done:
		return l.val, l.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Loads reports how many times the load function has run.
func (l *Lazy[T]) Loads() int {
	return int(l.loads.Load())
}

func (l *Lazy[T]) run() {
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil {
			l.err = fmt.Errorf("lazy load panicked: %v", r)
		}
	}()
	l.loads.Add(1)
	l.val, l.err = l.load()
}
