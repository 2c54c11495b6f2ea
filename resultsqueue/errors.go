package resultsqueue

import (
	"errors"
	"fmt"

	"github.com/notorious-go/treewalk/treepath"
)

var (
	// ErrClosed is returned by Push after the consumer closed its end of the queue.
	ErrClosed = errors.New("resultsqueue: consumer closed")

	// ErrHandleClosed is returned by Push on a producer handle that was already
	// closed by its owner.
	ErrHandleClosed = errors.New("resultsqueue: producer handle closed")

	// ErrInvalidEntry is returned by Push for entries whose position or branch
	// count cannot describe a tree node.
	ErrInvalidEntry = errors.New("resultsqueue: invalid entry")

	// ErrIncomplete is reported by a SortedIterator when every producer handle was
	// closed before the traversal was complete.
	ErrIncomplete = errors.New("resultsqueue: producers finished before traversal was complete")

	// ErrStalePosition is reported by a SortedIterator when an entry arrives for a
	// position that was already released or skipped, such as a duplicate.
	ErrStalePosition = errors.New("resultsqueue: entry position already passed")
)

// IncompleteError describes a traversal that ended with nodes still owed. It
// unwraps to ErrIncomplete.
type IncompleteError struct {
	// Expected is the path that was due when the producers finished.
	Expected treepath.Path
	// Buffered is the number of entries that arrived but could never be released
	// in order.
	Buffered int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%v: expected %v, %d entries buffered", ErrIncomplete, e.Expected, e.Buffered)
}

func (e *IncompleteError) Unwrap() error {
	return ErrIncomplete
}

// PositionError describes an entry that sorts before the position that was due,
// so it can never be released in order. It unwraps to ErrStalePosition.
type PositionError struct {
	// Position is the position of the offending entry.
	Position treepath.Path
	// Expected is the path that was due when the entry was found.
	Expected treepath.Path
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("%v: got %v, expected %v", ErrStalePosition, e.Position, e.Expected)
}

func (e *PositionError) Unwrap() error {
	return ErrStalePosition
}
