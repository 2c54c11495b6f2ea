package treepath

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned for paths that cannot name a node.
var ErrInvalidPath = errors.New("treepath: invalid path")

// A Path is the sequence of sibling indices leading from the top level of a tree
// to a node. The first element is the index of the node's top-level ancestor
// among its siblings, the last element is the index of the node among its own
// siblings.
//
// The nil Path names no node; it is what a finished [Tracker] reports.
type Path []int

// Compare returns -1 if a comes before b in pre-order, +1 if it comes after, and
// 0 if both name the same node.
//
// Paths are compared element-wise from the top level; the first differing index
// decides. When one path is a strict prefix of the other, the shorter one names
// an ancestor and comes first.
func Compare(a, b Path) int {
	// The standard lexicographic comparison already orders a prefix before its
	// extensions, which is exactly the ancestor rule of pre-order.
	return slices.Compare(a, b)
}

// Compare is shorthand for Compare(p, other).
func (p Path) Compare(other Path) int {
	return Compare(p, other)
}

// Equal reports whether p and other name the same node.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// Depth returns the number of levels between the top level and the node, so
// top-level nodes have depth 0. The nil Path has depth -1.
func (p Path) Depth() int {
	return len(p) - 1
}

// Child returns the path of the i-th child of p. The returned path never shares
// its backing array with p, so siblings derived from one parent are independent.
func (p Path) Child(i int) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = i
	return child
}

// Parent returns the path of the parent of p, or nil for top-level paths.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	return slices.Clone(p[:len(p)-1])
}

// Clone returns a copy of p.
func (p Path) Clone() Path {
	return slices.Clone(p)
}

// Valid returns an error wrapping ErrInvalidPath if p is empty or holds a
// negative index.
func (p Path) Valid() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	for depth, i := range p {
		if i < 0 {
			return fmt.Errorf("%w: negative index %d at depth %d", ErrInvalidPath, i, depth)
		}
	}
	return nil
}

// String formats p as dot-separated indices, such as "0.2.1". The nil Path is
// formatted as "none".
func (p Path) String() string {
	if len(p) == 0 {
		return "none"
	}
	var b strings.Builder
	for depth, i := range p {
		if depth > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// Parse is the inverse of [Path.String] for valid paths.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	fields := strings.Split(s, ".")
	p := make(Path, 0, len(fields))
	for _, f := range fields {
		i, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPath, s, err)
		}
		p = append(p, i)
	}
	if err := p.Valid(); err != nil {
		return nil, err
	}
	return p, nil
}
