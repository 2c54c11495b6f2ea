package resultsqueue

import (
	"context"
	"io"
	"iter"
)

// An Iterator is the consuming end of a queue created by New. It delivers
// entries in the order they arrived, without any buffering of its own.
//
// An Iterator must be used by a single goroutine.
type Iterator[T any] struct {
	ch *channel[T]
}

// Next blocks until an entry is available and returns it. It returns false once
// every producer handle is closed and all entries have been delivered.
func (it *Iterator[T]) Next() (Entry[T], bool) {
	e, err := it.NextContext(context.Background())
	return e, err == nil
}

// NextContext is like Next, but returns io.EOF at the end of the sequence and
// ctx.Err() if ctx is done before an entry arrives.
func (it *Iterator[T]) NextContext(ctx context.Context) (Entry[T], error) {
	for {
		e, ok, done := it.ch.tryRecv()
		if ok {
			return e, nil
		}
		if done {
			return Entry[T]{}, io.EOF
		}
		if err := it.ch.wait(ctx); err != nil {
			return Entry[T]{}, err
		}
	}
}

// All returns an iterator over the remaining entries, for use with range.
func (it *Iterator[T]) All() iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		for {
			e, ok := it.Next()
			if !ok || !yield(e) {
				return
			}
		}
	}
}

// Len returns the number of entries that arrived but were not delivered yet.
func (it *Iterator[T]) Len() int {
	return it.ch.len()
}

// Close drops the consuming end. Undelivered entries are discarded, Next reports
// the end of the sequence, and producers get ErrClosed from Push.
func (it *Iterator[T]) Close() {
	it.ch.close()
}
