// Package queuetest provides utilities for testing code built on results queues.
// It describes trees compactly, derives the entries a correct walk of them would
// push, and replays those entries through a queue from many concurrent
// producers in a hostile order.
//
// # Example Usage
//
// Describe a forest with [Build] and check that a sorted queue restores its
// pre-order no matter how eight producers interleave:
//
//	forest := queuetest.Build("a(b(c) d) e")
//	queuetest.TestSorted(t, forest, 8)
//
// Tests of a producer, such as a tree walker, can instead compare what their
// consumer received against [Tokens] of the forest they walked.
package queuetest

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notorious-go/treewalk/resultsqueue"
	"github.com/notorious-go/treewalk/treepath"
)

// Node is a node of a test tree. Its Token identifies it in the output of a
// queue and must be unique within a forest.
type Node struct {
	Token    string
	Children []*Node
}

// Build parses a forest written as whitespace-separated tokens, each optionally
// followed by its children in parentheses. For example, "a(b(c) d) e" has two
// top-level nodes: a, whose children are b and d, and e. Node c is the only
// child of b.
//
// Build panics on unbalanced parentheses because test inputs are constants.
func Build(s string) []*Node {
	p := parser{src: s}
	forest := p.list()
	if p.pos != len(p.src) {
		panic(fmt.Sprintf("queuetest: unexpected %q at offset %d in %q", p.src[p.pos], p.pos, s))
	}
	return forest
}

type parser struct {
	src string
	pos int
}

func (p *parser) list() []*Node {
	var nodes []*Node
	for {
		p.skipSpace()
		if p.pos == len(p.src) || p.src[p.pos] == ')' {
			return nodes
		}
		start := p.pos
		for p.pos < len(p.src) && !strings.ContainsRune(" \t\n()", rune(p.src[p.pos])) {
			p.pos++
		}
		if start == p.pos {
			panic(fmt.Sprintf("queuetest: missing token at offset %d in %q", p.pos, p.src))
		}
		n := &Node{Token: p.src[start:p.pos]}
		if p.pos < len(p.src) && p.src[p.pos] == '(' {
			p.pos++
			n.Children = p.list()
			if p.pos == len(p.src) {
				panic(fmt.Sprintf("queuetest: unclosed children of %q in %q", n.Token, p.src))
			}
			p.pos++ // ')'
		}
		nodes = append(nodes, n)
	}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

// Random returns a forest of the given number of top-level nodes and about size
// nodes in total, where no node has more than maxFanout children. Tokens are the
// nodes' paths, so the forest is reproducible from r's seed.
func Random(r *rand.Rand, roots, size, maxFanout int) []*Node {
	forest := make([]*Node, roots)
	var open []*Node
	for i := range forest {
		forest[i] = &Node{}
		open = append(open, forest[i])
	}
	for made := roots; made < size && len(open) > 0; made++ {
		i := r.IntN(len(open))
		parent := open[i]
		child := &Node{}
		parent.Children = append(parent.Children, child)
		open = append(open, child)
		if len(parent.Children) >= maxFanout {
			open = slices.Delete(open, i, i+1)
		}
	}
	name(forest, nil)
	return forest
}

func name(nodes []*Node, parent treepath.Path) {
	for i, n := range nodes {
		p := append(parent.Clone(), i)
		n.Token = p.String()
		name(n.Children, p)
	}
}

// Entries returns the entries a correct walk of the forest pushes, in pre-order.
// Each entry carries its node's Token as payload.
func Entries(forest []*Node) []resultsqueue.Entry[string] {
	var entries []resultsqueue.Entry[string]
	var visit func(nodes []*Node, parent treepath.Path)
	visit = func(nodes []*Node, parent treepath.Path) {
		for i, n := range nodes {
			p := append(parent.Clone(), i)
			entries = append(entries, resultsqueue.Entry[string]{
				Position:    p,
				BranchCount: len(n.Children),
				Payload:     n.Token,
			})
			visit(n.Children, p)
		}
	}
	visit(forest, nil)
	return entries
}

// Tokens returns the tokens of the forest in pre-order.
func Tokens(forest []*Node) []string {
	var tokens []string
	for _, e := range Entries(forest) {
		tokens = append(tokens, e.Payload)
	}
	return tokens
}

// Size returns the number of nodes in the forest.
func Size(forest []*Node) int {
	n := len(forest)
	for _, node := range forest {
		n += Size(node.Children)
	}
	return n
}

// Produce pushes the entries through q from the given number of producer
// goroutines and closes q once all of them have been started. Each producer
// pushes through its own cloned handle and closes it when done, so the consumer
// sees the end of the sequence after the last push.
//
// To stress the consumer, the entries are shuffled with r and dealt to producers
// round-robin, producers are started in reverse order, and every producer yields
// the processor between pushes.
//
// Produce returns without waiting for the producers. The returned function
// waits for them and reports push failures to t; it is safe to call it after the
// consumer is done.
func Produce[T any](t testing.TB, r *rand.Rand, q *resultsqueue.Queue[T], entries []resultsqueue.Entry[T], producers int) (wait func()) {
	t.Helper()
	if producers < 1 {
		producers = 1
	}

	shuffled := slices.Clone(entries)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	shares := make([][]resultsqueue.Entry[T], producers)
	for i, e := range shuffled {
		shares[i%producers] = append(shares[i%producers], e)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, share := range slices.Backward(shares) {
		handle := q.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer handle.Close()
			for _, e := range share {
				if err := handle.Push(e); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					return
				}
				runtime.Gosched()
			}
		}()
	}
	q.Close()

	return func() {
		t.Helper()
		wg.Wait()
		for _, err := range errs {
			t.Errorf("push failed: %v", err)
		}
	}
}

// TestSorted replays a correct walk of the forest through a sorted queue from
// the given number of producers, and verifies that the consumer receives every
// node exactly once, in pre-order, and then the end of the sequence.
//
// The replay is repeated with several seeds to vary the interleaving.
func TestSorted(t *testing.T, forest []*Node, producers int, opts ...resultsqueue.Option) {
	t.Helper()
	want := Tokens(forest)
	entries := Entries(forest)

	for seed := range uint64(4) {
		q, it := resultsqueue.NewSorted[string](opts...)
		wait := Produce(t, rand.New(rand.NewPCG(seed, seed)), q, entries, producers)

		var got []string
		for e := range it.All() {
			got = append(got, e.Payload)
		}
		wait()

		require.NoError(t, it.Err(), "seed %d", seed)
		assert.Equal(t, want, got, "seed %d", seed)
		assert.Equal(t, len(want), it.Released(), "seed %d", seed)
	}
}

// TestPlain replays a correct walk of the forest through a plain queue and
// verifies that the consumer receives exactly the pushed entries, in any order,
// and then the end of the sequence.
func TestPlain(t *testing.T, forest []*Node, producers int) {
	t.Helper()
	want := Tokens(forest)

	q, it := resultsqueue.New[string]()
	wait := Produce(t, rand.New(rand.NewPCG(1, 2)), q, Entries(forest), producers)

	var got []string
	for e := range it.All() {
		got = append(got, e.Payload)
	}
	wait()

	assert.ElementsMatch(t, want, got)
}
