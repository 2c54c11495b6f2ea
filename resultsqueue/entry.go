package resultsqueue

import (
	"fmt"

	"github.com/notorious-go/treewalk/treepath"
)

// Entry is the unit handed from a producer to the consumer: the result for one
// node of the tree.
type Entry[T any] struct {
	// Position identifies the node by its sibling index at every depth.
	Position treepath.Path

	// BranchCount is the number of the node's direct children that will push an
	// entry of their own. A child that produces no entry must not be counted,
	// otherwise a SortedIterator waits for it forever.
	BranchCount int

	// Payload is the result itself. It is never inspected by this package.
	Payload T
}

func (e Entry[T]) validate() error {
	if err := e.Position.Valid(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if e.BranchCount < 0 {
		return fmt.Errorf("%w: negative branch count %d at %v", ErrInvalidEntry, e.BranchCount, e.Position)
	}
	return nil
}
