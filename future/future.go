// Package future implements a pending<T> primitive: a single-assignment
// result supporting chained continuation (Then) and flat chaining
// (AwaitContext'ing an inner Future from inside a continuation). No
// library in the retrieved example pack offers a futures/promise type,
// so this one piece of the core is built directly on the standard
// library (channels, sync.Once).
package future

import (
	"context"
	"sync"
)

// Future is a single-assignment result of type T.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

// New returns an unresolved Future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a Future already settled with value and no error.
func Resolved[T any](value T) *Future[T] {
	f := New[T]()
	f.Resolve(value)
	return f
}

// Failed returns a Future already settled with err.
func Failed[T any](err error) *Future[T] {
	f := New[T]()
	f.Reject(err)
	return f
}

// Resolve settles f successfully. Only the first call (Resolve or
// Reject) has an effect; later calls are no-ops, matching
// single-assignment semantics.
func (f *Future[T]) Resolve(value T) {
	f.once.Do(func() {
		f.value = value
		close(f.done)
	})
}

// Reject settles f with an error. Only the first call has an effect.
func (f *Future[T]) Reject(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Await blocks until f is settled and returns its value or error.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// AwaitContext blocks until f is settled or ctx is done, whichever
// comes first.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done reports whether f has settled without blocking.
func (f *Future[T]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Then runs fn with f's eventual value once settled successfully and
// returns a new Future carrying fn's result; an error on f (or
// propagated from fn) short-circuits the chain. fn runs on a goroutine
// that Then starts, not on the caller's goroutine.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out := New[U]()
	go func() {
		v, err := f.Await()
		if err != nil {
			out.Reject(err)
			return
		}
		u, err := fn(v)
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(u)
	}()
	return out
}

// FlatThen is Then's flat-chaining counterpart: fn itself returns a
// Future, which is unwrapped into the result.
func FlatThen[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	out := New[U]()
	go func() {
		v, err := f.Await()
		if err != nil {
			out.Reject(err)
			return
		}
		inner := fn(v)
		u, err := inner.Await()
		if err != nil {
			out.Reject(err)
			return
		}
		out.Resolve(u)
	}()
	return out
}
