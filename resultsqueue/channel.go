package resultsqueue

import (
	"context"
	"sync"
)

// channel is an unbounded multi-producer, single-consumer FIFO of entries.
//
// Producers are counted rather than identified: the channel starts with one
// producer, every cloned handle adds one, and every closed handle removes one.
// When the count reaches zero no entry can be sent anymore, and the finished
// channel is closed so that a waiting consumer wakes up to drain what is left.
//
// The consumer waits on the signal channel, a buffer of one that coalesces any
// number of sends into a single wake-up. Waking up without an entry to receive
// is harmless; the consumer simply checks again and goes back to waiting.
type channel[T any] struct {
	mu        sync.Mutex
	entries   []Entry[T]
	producers int
	// dropped is set once the consumer closed its end. Sends fail from then on.
	dropped bool

	signal   chan struct{}
	finished chan struct{}
}

func newChannel[T any]() *channel[T] {
	return &channel[T]{
		producers: 1,
		signal:    make(chan struct{}, 1),
		finished:  make(chan struct{}),
	}
}

// send appends e to the channel without ever blocking on the consumer.
func (c *channel[T]) send(e Entry[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dropped {
		return ErrClosed
	}
	if c.producers == 0 {
		// Only a handle racing its own Close can get here; the consumer may already
		// have seen the end of the sequence.
		return ErrHandleClosed
	}
	c.entries = append(c.entries, e)

	select {
	case c.signal <- struct{}{}:
	default:
		// A wake-up is already pending.
	}
	return nil
}

// addProducer registers one more producer. It fails once all producers are gone
// because a finished channel is never reopened.
func (c *channel[T]) addProducer() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.producers == 0 {
		return false
	}
	c.producers++
	return true
}

func (c *channel[T]) removeProducer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.producers--
	if c.producers == 0 {
		close(c.finished)
	}
}

// tryRecv removes the oldest entry without blocking. When there is none, done
// reports whether there will never be one, either because every producer is gone
// or because the consumer closed its end.
func (c *channel[T]) tryRecv() (e Entry[T], ok, done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) == 0 {
		return e, false, c.producers == 0 || c.dropped
	}

	e = c.entries[0]
	// Clear the slot so the backing array does not keep the payload alive.
	c.entries[0] = Entry[T]{}
	if len(c.entries) == 1 {
		c.entries = c.entries[:0]
	} else {
		c.entries = c.entries[1:]
	}
	return e, true, false
}

// drain removes every queued entry at once. Like tryRecv, done reports that the
// channel is empty and will stay so.
func (c *channel[T]) drain() (entries []Entry[T], done bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) == 0 {
		return nil, c.producers == 0 || c.dropped
	}
	entries = c.entries
	c.entries = nil
	return entries, false
}

// wait blocks until an entry may have been sent, the producers finished, or ctx
// is done. Only the last case returns an error.
func (c *channel[T]) wait(ctx context.Context) error {
	select {
	case <-c.signal:
		return nil
	case <-c.finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close drops the consumer end and discards everything still queued.
func (c *channel[T]) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped = true
	c.entries = nil
}

func (c *channel[T]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
