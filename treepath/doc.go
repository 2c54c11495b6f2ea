// Package treepath identifies nodes of a tree by their path of sibling indices
// and predicts, one step at a time, which path a sequential depth-first
// traversal would visit next.
//
// # Paths
//
// A [Path] holds one sibling index per depth, starting at the top level. The
// path 0.2.1 names the second child of the third child of the first top-level
// node. Paths are totally ordered by [Compare] in pre-order: ancestors sort
// before their descendants, and the whole subtree of an earlier sibling sorts
// before any later sibling.
//
// # Tracking
//
// A [Tracker] knows nothing about the shape of a tree in advance. It learns the
// shape only as nodes are released to it, each release telling it how many
// children of that node will follow:
//
//	var t treepath.Tracker
//	next, _ := t.Next()     // 0
//	t.Advance(2)            // node 0 has two children
//	next, _ = t.Next()      // 0.0
//	t.Advance(0)            // 0.0 is a leaf
//	next, _ = t.Next()      // 0.1
//
// The tracker mirrors the call stack of a sequential recursive walk without ever
// materializing the tree, so its memory use is proportional to the depth of the
// tree rather than its size.
package treepath
