package iosched

import (
	"sync"
	"sync/atomic"

	"github.com/schedcore/iosched/internal/readyheap"
)

// readyQueue tracks the set of streams that currently have pending ops
// and hands them to workers in priority order, FIFO within a priority.
// It supports a cancellable blocking wait and a mass wakeup used during
// shutdown.
//
// Waiters block on a select over notifyC and cancelC rather than a
// condition variable: notifyC carries at most one token and every
// consumer re-checks the heap after waking, while cancelC is closed
// exactly once so all waiters observe shutdown.
type readyQueue[T any] struct {
	mu   sync.Mutex
	heap *readyheap.Heap[*stream[T]]

	notifyC    chan struct{}
	cancelC    chan struct{}
	cancelled  atomic.Bool
	cancelOnce sync.Once
}

func newReadyQueue[T any]() *readyQueue[T] {
	return &readyQueue[T]{
		heap:    readyheap.New[*stream[T]](16),
		notifyC: make(chan struct{}, 1),
		cancelC: make(chan struct{}),
	}
}

// signal marks st ready. It is idempotent: signaling a stream already in
// the queue is a no-op, so a stream appears at most once regardless of
// how many ops it holds. One blocked waiter is woken at most.
func (rq *readyQueue[T]) signal(st *stream[T]) {
	rq.mu.Lock()
	if st.inReady {
		rq.mu.Unlock()
		return
	}
	st.inReady = true
	rq.heap.Push(st, st.priority)
	rq.mu.Unlock()

	select {
	case rq.notifyC <- struct{}{}:
	default:
	}
}

// next pops the highest-priority ready stream. With wait=false an empty
// queue returns ErrShouldWait; with wait=true the caller blocks until a
// stream becomes ready or cancel is called, which returns ErrCancelled.
// Ready streams are always served before the cancellation flag is
// honored, so shutdown drains work that was already admitted.
func (rq *readyQueue[T]) next(wait bool) (*stream[T], error) {
	for {
		rq.mu.Lock()
		if st, ok := rq.heap.Pop(); ok {
			st.inReady = false
			more := rq.heap.Len() > 0
			rq.mu.Unlock()
			if more {
				// Pass the wakeup on so sibling waiters see the
				// remaining streams even if the producer's token
				// was consumed by this pop.
				select {
				case rq.notifyC <- struct{}{}:
				default:
				}
			}
			return st, nil
		}
		rq.mu.Unlock()

		if rq.cancelled.Load() {
			return nil, ErrCancelled
		}
		if !wait {
			return nil, ErrShouldWait
		}

		select {
		case <-rq.notifyC:
		case <-rq.cancelC:
			return nil, ErrCancelled
		}
	}
}

// cancel wakes every blocked waiter unconditionally. It is idempotent.
func (rq *readyQueue[T]) cancel() {
	rq.cancelOnce.Do(func() {
		rq.cancelled.Store(true)
		close(rq.cancelC)
	})
}

// clear empties the ready set, dropping streams whose pending ops will
// never be dequeued.
func (rq *readyQueue[T]) clear() {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	for {
		st, ok := rq.heap.Pop()
		if !ok {
			return
		}
		st.inReady = false
	}
}

// len returns the number of ready streams.
func (rq *readyQueue[T]) len() int {
	rq.mu.Lock()
	defer rq.mu.Unlock()
	return rq.heap.Len()
}
