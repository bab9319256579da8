package iosched

import (
	"sync"

	"github.com/schedcore/iosched/internal/ring"
)

// stream holds one client's pending ops in FIFO order and gates
// admission on its lifecycle state. Priority is immutable after
// creation; range validation happens in StreamOpen.
//
// Locking: mu guards ops and closed. The inReady flag belongs to the
// ready queue and is guarded by its mutex, not this one. The scheduler
// mutex may be held while taking mu, never the reverse.
type stream[T any] struct {
	id       StreamID
	priority uint32

	mu     sync.Mutex
	ops    *ring.Buffer[*Op[T]]
	closed bool

	// Ready-queue membership, guarded by the ready queue mutex.
	inReady bool
}

func newStream[T any](id StreamID, priority uint32) *stream[T] {
	return &stream[T]{
		id:       id,
		priority: priority,
		ops:      ring.New[*Op[T]](8),
	}
}

// insert appends op to the pending queue. It reports whether the queue
// went from empty to nonempty, which is the only transition that may
// signal the ready queue. Once the stream is closing or closed, insert
// rejects with ErrStreamClosed.
func (s *stream[T]) insert(op *Op[T]) (signal bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, ErrStreamClosed
	}
	wasEmpty := s.ops.Len() == 0
	s.ops.Push(op)
	return wasEmpty, nil
}

// next pops the head op. Callers must have obtained this stream from the
// ready queue, which guarantees a pending op exists; an empty queue here
// is a broken invariant. remaining is the pending count after the pop
// and drained reports the closing-and-now-empty transition that makes
// the stream eligible for destruction.
func (s *stream[T]) next() (op *Op[T], remaining int, drained bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.ops.Pop()
	if !ok {
		panic("iosched: dequeue from empty stream")
	}
	remaining = s.ops.Len()
	return op, remaining, s.closed && remaining == 0
}

// close marks the stream as no longer accepting ops and reports whether
// it is already drained. A drained close means the caller drops the
// stream immediately and it never enters the closing registry.
func (s *stream[T]) close() (drained bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return s.ops.Len() == 0
}

// pending returns the number of queued ops.
func (s *stream[T]) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ops.Len()
}
