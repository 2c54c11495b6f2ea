package resultsqueue

import (
	"context"
	"io"
	"iter"

	"github.com/notorious-go/treewalk/treepath"
)

// An Option configures a SortedIterator.
type Option func(*sortedOptions)

type sortedOptions struct {
	roots   int
	lenient bool
}

// WithRoots declares the number of top-level entries. Once the last of them and
// its whole subtree have been released, the sequence ends immediately, without
// waiting for the producer handles to be closed.
//
// A walk from a single root passes 1. Values below 1 leave the top level
// open-ended, which is the default.
func WithRoots(n int) Option {
	return func(o *sortedOptions) {
		o.roots = n
	}
}

// WithLenientDrain changes what happens when every producer finished but the
// traversal is not complete. Instead of failing with ErrIncomplete, the iterator
// releases the buffered entries in position order, whether they are due or not,
// and then ends the sequence.
//
// Entries released this way are out of pre-order whenever the branch counts of
// the walk were wrong. Use it only where some output beats no output.
//
// Released entries still advance the position tracker. Combined with WithRoots,
// the drain therefore stops as soon as the declared top-level entries are
// accounted for, and whatever is still buffered is dropped.
func WithLenientDrain() Option {
	return func(o *sortedOptions) {
		o.lenient = true
	}
}

// A SortedIterator is the consuming end of a queue created by NewSorted. It
// delivers entries in pre-order, regardless of the order producers push them.
//
// Entries arriving ahead of their turn are buffered. After each release, the
// branch count of the released entry tells the iterator which position is due
// next; it holds back everything else until an entry for that position arrives.
// If that entry never arrives while a producer handle remains open, Next waits
// forever. Use NextContext to give up waiting.
//
// A SortedIterator must be used by a single goroutine.
type SortedIterator[T any] struct {
	ch      *channel[T]
	buf     buffer[T]
	tracker *treepath.Tracker
	roots   int
	lenient bool

	// draining is set once a lenient iterator found the producers finished with
	// the traversal incomplete. From then on entries are released without
	// matching them against the tracker.
	draining bool
	closed   bool
	released int
	err      error
}

// Next blocks until the entry due next in pre-order is available and returns it.
// It returns false at the end of the sequence, or if the walk turned out to be
// malformed, in which case Err reports why.
func (it *SortedIterator[T]) Next() (Entry[T], bool) {
	e, err := it.NextContext(context.Background())
	return e, err == nil
}

// NextContext is like Next, but returns the reason why no entry is returned:
// io.EOF at the end of the sequence, ctx.Err() if ctx is done before the due
// entry arrives, or the error that Err reports.
//
// A context error does not end the sequence; NextContext may be called again.
func (it *SortedIterator[T]) NextContext(ctx context.Context) (Entry[T], error) {
	if it.err != nil {
		return Entry[T]{}, it.err
	}
	if it.closed {
		return Entry[T]{}, io.EOF
	}
	if it.draining {
		return it.releaseAny()
	}

	for {
		expected, ok := it.tracker.Next()
		if !ok {
			// Everything owed has been released. Whatever is still buffered or in flight
			// cannot belong to this traversal.
			return Entry[T]{}, io.EOF
		}

		done := it.receive()
		if head, ok := it.buf.peek(); ok {
			switch c := treepath.Compare(head.Position, expected); {
			case c == 0:
				return it.release(), nil
			case c < 0:
				it.err = &PositionError{Position: head.Position.Clone(), Expected: expected}
				return Entry[T]{}, it.err
			}
		}
		if done {
			return it.finish(expected)
		}

		if err := it.ch.wait(ctx); err != nil {
			return Entry[T]{}, err
		}
	}
}

// receive moves every entry that arrived so far into the buffer. It reports true
// when no entry will ever arrive again.
func (it *SortedIterator[T]) receive() (done bool) {
	entries, done := it.ch.drain()
	for _, e := range entries {
		it.buf.push(e)
	}
	return done
}

// release pops the head of the buffer and advances the tracker past it.
func (it *SortedIterator[T]) release() Entry[T] {
	e := it.buf.pop()
	it.tracker.Advance(e.BranchCount)
	it.released++
	return e
}

// finish decides how the sequence ends once the producers are gone and the
// expected entry is not buffered.
func (it *SortedIterator[T]) finish(expected treepath.Path) (Entry[T], error) {
	if it.buf.len() == 0 && it.roots <= 0 && it.tracker.AtTopLevel() {
		// With an open-ended top level, the walk is over when no further top-level
		// entry shows up.
		return Entry[T]{}, io.EOF
	}
	if it.lenient {
		it.draining = true
		return it.releaseAny()
	}
	it.err = &IncompleteError{Expected: expected, Buffered: it.buf.len()}
	return Entry[T]{}, it.err
}

func (it *SortedIterator[T]) releaseAny() (Entry[T], error) {
	if it.tracker.Done() || it.buf.len() == 0 {
		return Entry[T]{}, io.EOF
	}
	return it.release(), nil
}

// All returns an iterator over the remaining entries in pre-order, for use with
// range. Check Err after the loop.
func (it *SortedIterator[T]) All() iter.Seq[Entry[T]] {
	return func(yield func(Entry[T]) bool) {
		for {
			e, ok := it.Next()
			if !ok || !yield(e) {
				return
			}
		}
	}
}

// Err returns the error that ended the sequence early, if any. It is nil after a
// normal end of the sequence. The returned error wraps either ErrIncomplete or
// ErrStalePosition.
func (it *SortedIterator[T]) Err() error {
	return it.err
}

// Expected returns the position due next, or false once the traversal is
// complete.
func (it *SortedIterator[T]) Expected() (treepath.Path, bool) {
	return it.tracker.Next()
}

// Buffered returns the number of entries received ahead of their turn.
func (it *SortedIterator[T]) Buffered() int {
	return it.buf.len()
}

// Released returns the number of entries delivered so far.
func (it *SortedIterator[T]) Released() int {
	return it.released
}

// Close drops the consuming end. Buffered and undelivered entries are discarded,
// and producers get ErrClosed from Push.
func (it *SortedIterator[T]) Close() {
	it.ch.close()
	it.buf.reset()
	it.closed = true
}
