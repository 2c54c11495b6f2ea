package treepath_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notorious-go/treewalk/treepath"
)

// node is one step of a pre-order listing: the path the tracker must expect and
// the number of children announced when that node is released.
type node struct {
	path     treepath.Path
	branches int
}

// replay releases the nodes in order, checking before each release that the
// tracker expects exactly that node.
func replay(t *testing.T, tracker *treepath.Tracker, nodes []node) {
	t.Helper()
	for i, n := range nodes {
		next, ok := tracker.Next()
		require.True(t, ok, "tracker finished before node %d (%v)", i, n.path)
		require.Equal(t, n.path, next, "node %d", i)
		require.True(t, tracker.Matches(n.path))
		tracker.Advance(n.branches)
	}
}

func TestTrackerSingleRoot(t *testing.T) {
	tracker := treepath.NewTracker(1)
	replay(t, tracker, []node{{treepath.Path{0}, 0}})

	assert.True(t, tracker.Done())
	next, ok := tracker.Next()
	assert.False(t, ok)
	assert.Nil(t, next)
	assert.Equal(t, -1, tracker.Depth())
	assert.Equal(t, "none", tracker.String())
}

func TestTrackerNestedTree(t *testing.T) {
	// 0
	// ├── 0.0
	// │   ├── 0.0.0
	// │   └── 0.0.1
	// │       └── 0.0.1.0
	// ├── 0.1
	// └── 0.2
	//     └── 0.2.0
	tracker := treepath.NewTracker(1)
	replay(t, tracker, []node{
		{treepath.Path{0}, 3},
		{treepath.Path{0, 0}, 2},
		{treepath.Path{0, 0, 0}, 0},
		{treepath.Path{0, 0, 1}, 1},
		{treepath.Path{0, 0, 1, 0}, 0},
		{treepath.Path{0, 1}, 0},
		{treepath.Path{0, 2}, 1},
		{treepath.Path{0, 2, 0}, 0},
	})
	assert.True(t, tracker.Done())
}

func TestTrackerOpenEndedTopLevel(t *testing.T) {
	var tracker treepath.Tracker
	replay(t, &tracker, []node{
		{treepath.Path{0}, 1},
		{treepath.Path{0, 0}, 0},
		{treepath.Path{1}, 0},
		{treepath.Path{2}, 2},
		{treepath.Path{2, 0}, 0},
	})
	assert.False(t, tracker.Done())
	assert.False(t, tracker.AtTopLevel())
	assert.Equal(t, "2.1", tracker.String())

	tracker.Advance(0)
	assert.True(t, tracker.AtTopLevel())
	assert.Equal(t, "3", tracker.String())
	assert.False(t, tracker.Done(), "an open-ended top level never finishes")
}

func TestTrackerMultipleRoots(t *testing.T) {
	tracker := treepath.NewTracker(2)
	replay(t, tracker, []node{
		{treepath.Path{0}, 1},
		{treepath.Path{0, 0}, 0},
		{treepath.Path{1}, 0},
	})
	assert.True(t, tracker.Done())
}

func TestTrackerAdvanceAfterDone(t *testing.T) {
	tracker := treepath.NewTracker(1)
	tracker.Advance(0)
	require.True(t, tracker.Done())

	tracker.Advance(5)
	assert.True(t, tracker.Done())
	assert.False(t, tracker.Matches(treepath.Path{0}))
}

func TestTrackerNegativeBranches(t *testing.T) {
	tracker := treepath.NewTracker(1)
	tracker.Advance(-3)
	assert.True(t, tracker.Done())
}

func TestTrackerNextIsACopy(t *testing.T) {
	var tracker treepath.Tracker
	next, _ := tracker.Next()
	next[0] = 42
	again, _ := tracker.Next()
	assert.Equal(t, treepath.Path{0}, again)
}

// This example follows the tracker through a small directory tree, as a
// consumer would after releasing each directory in turn.
func ExampleTracker() {
	tracker := treepath.NewTracker(1)
	releases := []struct {
		name    string
		subdirs int
	}{
		{"/", 2},
		{"/etc", 1},
		{"/etc/ssl", 0},
		{"/usr", 0},
	}
	for _, r := range releases {
		next, _ := tracker.Next()
		fmt.Printf("%-8s at %v\n", r.name, next)
		tracker.Advance(r.subdirs)
	}
	fmt.Println("done:", tracker.Done())

	// Output:
	// /        at 0
	// /etc     at 0.0
	// /etc/ssl at 0.0.0
	// /usr     at 0.1
	// done: true
}
