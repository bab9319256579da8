// Package readyheap provides a priority heap with stable FIFO ordering
// inside each priority level.
//
// Items pop in descending priority order. Two items with equal priority
// pop in the order they were pushed, so a long-waiting item is never
// overtaken by a newer one of the same priority. The sequence counter
// that implements the tie-break is owned by the Heap instance, never a
// package-level variable, so independent heaps do not share state.
package readyheap

import "container/heap"

// Heap is a max-priority queue with per-priority FIFO tie-breaking.
// It is not synchronized; callers guard it with their own lock.
type Heap[T any] struct {
	inner heapImpl[T]
	seq   uint64
}

type entry[T any] struct {
	value    T
	priority uint32
	seq      uint64
}

// New creates an empty Heap with the given initial capacity hint.
func New[T any](capacity int) *Heap[T] {
	h := &Heap[T]{}
	if capacity > 0 {
		h.inner = make(heapImpl[T], 0, capacity)
	}
	return h
}

// Push inserts value with the given priority.
func (h *Heap[T]) Push(value T, priority uint32) {
	heap.Push(&h.inner, &entry[T]{
		value:    value,
		priority: priority,
		seq:      h.seq,
	})
	h.seq++
}

// Pop removes and returns the highest-priority value, oldest first among
// equals. The second return value is false if the heap is empty.
func (h *Heap[T]) Pop() (T, bool) {
	if len(h.inner) == 0 {
		var zero T
		return zero, false
	}
	e, ok := heap.Pop(&h.inner).(*entry[T])
	if !ok {
		panic("readyheap.Pop: invalid type assertion")
	}
	return e.value, true
}

// Len returns the number of items in the heap.
func (h *Heap[T]) Len() int {
	return len(h.inner)
}

// heapImpl implements heap.Interface over entries.
type heapImpl[T any] []*entry[T]

func (h heapImpl[T]) Len() int { return len(h) }

func (h heapImpl[T]) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h heapImpl[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *heapImpl[T]) Push(x any) {
	e, ok := x.(*entry[T])
	if !ok {
		panic("readyheap.Push: invalid type assertion")
	}
	*h = append(*h, e)
}

func (h *heapImpl[T]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
