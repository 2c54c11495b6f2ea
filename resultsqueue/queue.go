package resultsqueue

import (
	"sync/atomic"

	"github.com/notorious-go/treewalk/treepath"
)

// New returns a producer handle and an Iterator that delivers entries in the
// order they arrive.
func New[T any]() (*Queue[T], *Iterator[T]) {
	ch := newChannel[T]()
	return &Queue[T]{ch: ch}, &Iterator[T]{ch: ch}
}

// NewSorted returns a producer handle and a SortedIterator that delivers entries
// in pre-order.
//
// By default the number of top-level entries is open-ended and the sequence ends
// once every producer handle is closed. Use WithRoots when the number of
// top-level entries is known, such as 1 for a walk from a single root.
func NewSorted[T any](opts ...Option) (*Queue[T], *SortedIterator[T]) {
	var o sortedOptions
	for _, opt := range opts {
		opt(&o)
	}
	ch := newChannel[T]()
	it := &SortedIterator[T]{
		ch:      ch,
		tracker: treepath.NewTracker(o.roots),
		roots:   o.roots,
		lenient: o.lenient,
	}
	return &Queue[T]{ch: ch}, it
}

// A Queue is a producer handle: the sending end of a results queue.
//
// A Queue is safe for concurrent use; several goroutines may push through the
// same handle. Nonetheless, the usual pattern is to give every producer
// goroutine a handle of its own using Clone, and have it Close that handle when
// it is done, so that the consumer learns the walk is over exactly when the last
// producer finishes.
type Queue[T any] struct {
	ch     *channel[T]
	closed atomic.Bool
}

// Push hands e to the consumer. It never blocks. Push keeps a copy of
// e.Position, so the caller may reuse the slice afterwards.
//
// Push fails with ErrClosed once the consumer closed its end, in which case the
// producer should stop producing. It fails with ErrHandleClosed if this handle
// was closed, and with an error wrapping ErrInvalidEntry if e has an invalid
// position or a negative branch count.
func (q *Queue[T]) Push(e Entry[T]) error {
	if q.closed.Load() {
		return ErrHandleClosed
	}
	if err := e.validate(); err != nil {
		return err
	}
	// The buffer of a SortedIterator orders entries by position, so the caller must
	// not be able to change it once pushed.
	e.Position = e.Position.Clone()
	return q.ch.send(e)
}

// Clone returns a new producer handle for the same queue. The consumer keeps
// waiting for entries until the clone is closed too.
//
// Cloning a closed handle, or a handle of a queue whose producers have all
// finished, returns a handle that is already closed.
func (q *Queue[T]) Clone() *Queue[T] {
	clone := &Queue[T]{ch: q.ch}
	if q.closed.Load() || !q.ch.addProducer() {
		clone.closed.Store(true)
	}
	return clone
}

// Close releases this producer handle. When the last handle of a queue is
// closed, the consumer receives the remaining entries and then the end of the
// sequence.
//
// Close is safe to call multiple times; subsequent calls are no-ops.
func (q *Queue[T]) Close() {
	if q.closed.CompareAndSwap(false, true) {
		q.ch.removeProducer()
	}
}
