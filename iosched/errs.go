package iosched

import "errors"

var (
	// ErrInvalidPriority is returned by StreamOpen when the requested
	// priority exceeds MaxPriority.
	ErrInvalidPriority = errors.New("stream priority out of range")

	// ErrStreamExists is returned by StreamOpen when the id is already in
	// use by an open stream. Ids held only by closing streams are free.
	ErrStreamExists = errors.New("stream id already open")

	// ErrStreamNotFound marks an op targeting an id with no open stream,
	// and is returned by StreamClose for ids that are not open.
	ErrStreamNotFound = errors.New("stream not found")

	// ErrStreamClosed marks an op rejected because its stream stopped
	// accepting new work.
	ErrStreamClosed = errors.New("stream closed to new ops")

	// ErrShouldWait is returned by a non-blocking Dequeue when no stream
	// has a pending op.
	ErrShouldWait = errors.New("no ops ready")

	// ErrCancelled is returned by a blocking Dequeue woken by Shutdown.
	ErrCancelled = errors.New("dequeue cancelled by shutdown")

	// ErrShutdown is returned by StreamOpen and Serve once shutdown has
	// been initiated.
	ErrShutdown = errors.New("scheduler shut down")

	// ErrAlreadyServing is returned by Serve when the worker pool is
	// already running.
	ErrAlreadyServing = errors.New("scheduler already serving")

	// ErrAsync is the sentinel a Client returns from Execute to defer
	// completion of the op to a later AsyncComplete call.
	ErrAsync = errors.New("op completion deferred")
)
