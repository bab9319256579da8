package iosched

import (
	"context"
	"sync/atomic"
)

// StreamID identifies the stream an op belongs to.
type StreamID uint32

// Op is one unit of schedulable work. The scheduler never interprets the
// payload; it only sequences ops by stream.
//
// Ownership moves with the op: the caller owns it before Enqueue, the
// stream while it is pending, the executing worker after Dequeue, and
// the caller again once it is rejected or completed. Result is nil for
// success and is assigned exactly once before the op leaves scheduler
// control on any path.
//
// Type parameters:
//   - T: The opaque payload type carried to the Client.
type Op[T any] struct {
	Stream  StreamID
	Payload T
	Result  error

	completed atomic.Bool
}

// finish latches the op as completed and hands it back to the client.
// Completing an op twice is a structural bug, never a runtime condition,
// so the second attempt panics.
func (op *Op[T]) finish(client Client[T]) {
	if !op.completed.CompareAndSwap(false, true) {
		panic("iosched: op completed twice")
	}
	client.Complete(op)
}

// Client is the callback surface the host process supplies to the
// scheduler. Implementations must be safe for concurrent use by multiple
// workers.
type Client[T any] interface {
	// Execute runs one op. The returned error becomes the op's Result,
	// except for ErrAsync, which tells the scheduler that completion
	// happens later via AsyncComplete.
	Execute(ctx context.Context, op *Op[T]) error

	// Complete returns a finished op to the host. The scheduler calls it
	// exactly once per op on the synchronous path; on the async path it
	// is driven by AsyncComplete.
	Complete(op *Op[T])

	// CancelAcquire must promptly unblock any host thread that is
	// blocked producing new ops, so Shutdown can proceed.
	CancelAcquire()
}
