package treepath

// openEnded marks a level that owes an unknown number of siblings. Only the top
// level can be open-ended.
const openEnded = -1

// A Tracker predicts the path of the next node of a pre-order traversal, given
// how many children each released node has.
//
// The tracker keeps one level per ancestor of the expected node. Each level
// stores the sibling index expected at that depth and how many siblings at that
// depth are still owed. Releasing a node with children opens a new level for its
// first child; releasing a leaf moves on to the next sibling and closes every
// level whose siblings are all accounted for.
//
// The number of top-level nodes is given to [NewTracker]. The zero-value Tracker
// is ready to use and expects an open-ended number of top-level nodes, so it
// never finishes on its own; callers decide when such a traversal is over.
//
// The Tracker is not safe for concurrent use.
type Tracker struct {
	// indices is the path to the next expected node.
	indices Path
	// remaining holds, per level in indices, how many siblings are still owed at
	// that level, including the expected node itself.
	remaining []int
	// started is false for the zero value until the first method call initializes
	// the top level.
	started bool
}

// NewTracker returns a Tracker for a traversal with the given number of
// top-level nodes. A walk of a single tree passes 1. A non-positive roots value
// leaves the top level open-ended, like the zero-value Tracker.
func NewTracker(roots int) *Tracker {
	t := new(Tracker)
	t.reset(roots)
	return t
}

func (t *Tracker) init() {
	if !t.started {
		t.reset(0)
	}
}

func (t *Tracker) reset(roots int) {
	if roots <= 0 {
		roots = openEnded
	}
	t.indices = Path{0}
	t.remaining = []int{roots}
	t.started = true
}

// Next returns the path of the node expected next, or false once the traversal
// is complete. The returned path is a copy the caller may keep.
func (t *Tracker) Next() (Path, bool) {
	t.init()
	if len(t.indices) == 0 {
		return nil, false
	}
	return t.indices.Clone(), true
}

// Matches reports whether p is the path expected next. It is equivalent to
// comparing p against the result of Next, without copying.
func (t *Tracker) Matches(p Path) bool {
	t.init()
	return len(t.indices) > 0 && t.indices.Equal(p)
}

// Done reports whether every node owed to the traversal has been released. An
// open-ended top level is never done.
func (t *Tracker) Done() bool {
	t.init()
	return len(t.indices) == 0
}

// Depth returns the depth of the expected node, or -1 once the traversal is
// complete.
func (t *Tracker) Depth() int {
	t.init()
	return len(t.indices) - 1
}

// AtTopLevel reports whether the expected node is a top-level node, which means
// no subtree is left half-released.
func (t *Tracker) AtTopLevel() bool {
	t.init()
	return len(t.indices) == 1
}

// Advance records the release of the expected node, which has the given number
// of children that will be released after it. Negative counts are treated as 0.
// Advancing a complete Tracker does nothing.
func (t *Tracker) Advance(branches int) {
	t.init()
	if len(t.indices) == 0 {
		return
	}

	last := len(t.remaining) - 1
	if t.remaining[last] > 0 {
		t.remaining[last]--
	}

	if branches > 0 {
		// The next node in pre-order is the first child of the one just released.
		t.indices = append(t.indices, 0)
		t.remaining = append(t.remaining, branches)
		return
	}

	t.indices[last]++
	for len(t.remaining) > 0 && t.remaining[len(t.remaining)-1] == 0 {
		// All children at this level were released, so their parent's next sibling
		// is due.
		t.indices = t.indices[:len(t.indices)-1]
		t.remaining = t.remaining[:len(t.remaining)-1]
		if n := len(t.indices); n > 0 {
			t.indices[n-1]++
		}
	}
}

// String returns the expected path as formatted by [Path.String].
func (t *Tracker) String() string {
	p, _ := t.Next()
	return p.String()
}
