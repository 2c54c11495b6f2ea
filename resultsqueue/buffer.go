package resultsqueue

import (
	"container/heap"

	"github.com/notorious-go/treewalk/treepath"
)

// buffer holds entries that arrived before their turn. It is a min-heap on
// position, so its head is always the earliest entry in pre-order.
type buffer[T any] struct {
	h entryHeap[T]
}

func (b *buffer[T]) push(e Entry[T]) {
	heap.Push(&b.h, e)
}

func (b *buffer[T]) peek() (Entry[T], bool) {
	if len(b.h) == 0 {
		return Entry[T]{}, false
	}
	return b.h[0], true
}

func (b *buffer[T]) pop() Entry[T] {
	return heap.Pop(&b.h).(Entry[T])
}

func (b *buffer[T]) len() int {
	return len(b.h)
}

func (b *buffer[T]) reset() {
	b.h = nil
}

// entryHeap implements heap.Interface.
type entryHeap[T any] []Entry[T]

func (h entryHeap[T]) Len() int { return len(h) }

func (h entryHeap[T]) Less(i, j int) bool {
	return treepath.Compare(h[i].Position, h[j].Position) < 0
}

func (h entryHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap[T]) Push(x any) {
	*h = append(*h, x.(Entry[T]))
}

func (h *entryHeap[T]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = Entry[T]{}
	*h = old[:n-1]
	return e
}
