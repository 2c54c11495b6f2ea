// Package resultsqueue hands the results of a parallel tree walk from any number
// of producer goroutines to a single consumer, either in arrival order or
// reconstructed into the pre-order a sequential walk would have produced.
//
// # Prerequisites
//
// The package does not discover trees and does not interpret the results it
// carries. It assumes the producers, whatever they walk:
//   - Know, when they emit a node, how many of its direct children will emit a
//     node of their own later (the branch count).
//   - Know the node's [treepath.Path], its sibling index at every depth.
//
// # Producers and Consumers
//
// Queues are created as pairs of a producer handle and a consumer:
//
//	q, it := resultsqueue.New[Result]()        // arrival order
//	q, it := resultsqueue.NewSorted[Result]()  // pre-order
//
// Producers push entries through a [Queue]. Pushing never blocks because the
// queue is unbounded. Every goroutine that produces entries should hold its own
// handle obtained from [Queue.Clone] and close it when it is finished:
//
//	child := q.Clone()
//	go func() {
//	    defer child.Close()
//	    walkSubtree(child, subtree)
//	}()
//
// The consumer sees the end of the sequence once every producer handle has been
// closed and all entries have been delivered. Closing the handles is therefore
// the only way to end a walk; a handle that is never closed keeps the consumer
// waiting forever.
//
// # Ordering
//
// The [Iterator] delivers entries as they arrive. Entries of different producers
// interleave unpredictably.
//
// The [SortedIterator] buffers entries that arrive early and releases each one
// only when it is due in pre-order. It never needs to see the whole tree: after
// releasing a node it uses the node's branch count to predict the single path
// that is due next (see [treepath.Tracker]). Memory use is bounded by the number
// of entries that arrive ahead of their turn.
//
// # Stopping Early
//
// A consumer that is no longer interested closes its end with Close. Any further
// Push fails with [ErrClosed], which producers should treat as a signal to stop
// walking.
package resultsqueue
