// Package iosched provides a generic I/O scheduler that multiplexes many
// independent op streams onto a bounded pool of workers.
//
// The primary type is Scheduler[T], which sequences opaque ops by stream.
// Each stream is an ordered, priority-tagged queue belonging to one
// logical client: ops within a stream execute in strict FIFO order, and
// across streams the highest priority goes first, oldest-ready first
// among equals. The scheduler never interprets op payloads.
//
// # Basic Usage
//
//	sched := iosched.New[[]byte](client, iosched.WithWorkerCount(2))
//	_ = sched.Serve(ctx)
//	defer sched.Shutdown()
//
//	_ = sched.StreamOpen(7, iosched.DefaultPriority)
//	rejected := sched.Enqueue(ops) // rejected ops carry their Result
//	_ = sched.StreamClose(7)       // destroyed once the last op drains
//
// # Stream Lifecycle
//
// StreamOpen registers a stream; ids are unique among open streams.
// StreamClose stops admission immediately but keeps the stream alive
// until every pending op has been dequeued, after which it is destroyed
// and its id becomes reusable. Ops submitted to a closing or unknown
// stream come back from Enqueue with ErrStreamClosed or
// ErrStreamNotFound in their Result.
//
// # Execution Models
//
// Serve runs the worker pool: each worker blocks in Dequeue, hands the
// op to Client.Execute, and returns it via Client.Complete. A host can
// instead drive Dequeue directly for single-threaded or test scenarios.
// A client that completes ops out of band (a completion interrupt, a
// hardware queue) returns ErrAsync from Execute and later calls
// AsyncComplete, which preserves the exactly-once completion guarantee.
//
// # Shutdown
//
// Shutdown is idempotent. It asks the host to cancel blocked producers,
// closes every stream, wakes every blocked worker, joins the pool, and
// only then releases remaining state, so no call ever observes a
// half-destroyed stream.
package iosched
