// Package ring provides a growable ring-buffer FIFO.
//
// The buffer is not synchronized; callers that share a Buffer across
// goroutines must guard it with their own lock. Capacity is always a
// power of two so that index wrapping is a single mask operation, and
// the buffer doubles when full, giving amortized O(1) pushes.
package ring

// Buffer is a FIFO queue backed by a circular slice.
type Buffer[T any] struct {
	buf  []T
	mask uint64
	head uint64 // next slot to pop
	tail uint64 // next slot to push
}

// New creates a Buffer with at least the given initial capacity.
// A non-positive capacity falls back to a small default.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		capacity = 8
	}
	capacity = nextPowerOfTwo(capacity)
	return &Buffer[T]{
		buf:  make([]T, capacity),
		mask: uint64(capacity - 1),
	}
}

// Push appends v to the tail of the buffer, growing it if full.
func (b *Buffer[T]) Push(v T) {
	if b.tail-b.head == uint64(len(b.buf)) {
		b.grow()
	}
	b.buf[b.tail&b.mask] = v
	b.tail++
}

// Pop removes and returns the head of the buffer.
// The second return value is false if the buffer is empty.
func (b *Buffer[T]) Pop() (T, bool) {
	var zero T
	if b.head == b.tail {
		return zero, false
	}
	v := b.buf[b.head&b.mask]
	b.buf[b.head&b.mask] = zero
	b.head++
	return v, true
}

// Peek returns the head of the buffer without removing it.
func (b *Buffer[T]) Peek() (T, bool) {
	var zero T
	if b.head == b.tail {
		return zero, false
	}
	return b.buf[b.head&b.mask], true
}

// Len returns the number of elements currently buffered.
func (b *Buffer[T]) Len() int {
	return int(b.tail - b.head)
}

// grow doubles the backing slice and re-packs elements in FIFO order.
func (b *Buffer[T]) grow() {
	old := b.buf
	next := make([]T, len(old)*2)
	n := 0
	for i := b.head; i < b.tail; i++ {
		next[n] = old[i&b.mask]
		n++
	}
	b.buf = next
	b.mask = uint64(len(next) - 1)
	b.head = 0
	b.tail = uint64(n)
}

// nextPowerOfTwo returns the next power of 2 >= n.
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	if n&(n-1) == 0 {
		return n
	}
	power := 1
	for power < n {
		power *= 2
	}
	return power
}
