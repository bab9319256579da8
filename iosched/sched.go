package iosched

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// MaxPriority is the highest priority a stream may be opened with.
	// Priorities form a small closed range; higher values are served
	// first.
	MaxPriority uint32 = 31

	// DefaultPriority is a midpoint suitable for streams with no
	// particular urgency.
	DefaultPriority uint32 = 16
)

// Scheduler multiplexes many independent op streams onto a bounded pool
// of workers. It enforces per-stream priority, strict FIFO ordering
// within each stream, and safe lifecycle transitions for streams under
// concurrent enqueue, dequeue, close, and shutdown.
//
// A Scheduler must be constructed with New. Serve spawns the worker
// pool; alternatively a host can drive Dequeue itself. Shutdown is
// idempotent and safe to call concurrently with any other operation.
//
// Type parameters:
//   - T: The opaque op payload type handed through to the Client.
type Scheduler[T any] struct {
	client  Client[T]
	conf    *config
	log     zerolog.Logger
	metrics *collectors
	limiter *rate.Limiter
	ready   *readyQueue[T]

	// mu guards the registries, the serving flag, and the shutdown
	// admission gate. Lookup paths copy the stream pointer out and
	// release mu before touching the stream, so the hot enqueue/dequeue
	// paths never hold it.
	mu   sync.Mutex
	open map[StreamID]*stream[T]
	// closing holds streams past StreamClose that still have pending
	// ops. It is keyed by pointer because an id may be reopened while
	// its previous stream drains; closingIDs counts streams per id so
	// admission can tell "closing" apart from "never existed".
	closing    map[*stream[T]]struct{}
	closingIDs map[StreamID]int
	shutdown   bool
	serving    bool

	shutdownStarted atomic.Bool
	workersDone     chan struct{}
}

// New creates a Scheduler bound to the given client callbacks.
//
// Example:
//
//	sched := iosched.New[[]byte](client,
//	    iosched.WithWorkerCount(4),
//	    iosched.WithLogger(logger),
//	)
//	_ = sched.Serve(ctx)
//	defer sched.Shutdown()
func New[T any](client Client[T], opts ...Option) *Scheduler[T] {
	if client == nil {
		panic("iosched: nil client")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Scheduler[T]{
		client:     client,
		conf:       cfg,
		log:        cfg.logger,
		metrics:    newCollectors(cfg.registerer),
		limiter:    cfg.limiter,
		ready:      newReadyQueue[T](),
		open:       make(map[StreamID]*stream[T]),
		closing:    make(map[*stream[T]]struct{}),
		closingIDs: make(map[StreamID]int),
		// Allocated here rather than in Serve so Shutdown never races
		// a half-initialized channel.
		workersDone: make(chan struct{}),
	}
}

// StreamOpen registers a new stream. The id must not collide with any
// currently open stream; reusing the id of a stream that is still
// draining after close is allowed because the closing set is tracked
// separately. Returns ErrInvalidPriority, ErrStreamExists, or
// ErrShutdown on rejection; the registries are untouched on any error.
func (s *Scheduler[T]) StreamOpen(id StreamID, priority uint32) error {
	if priority > MaxPriority {
		return ErrInvalidPriority
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.shutdown {
		return ErrShutdown
	}
	if _, ok := s.open[id]; ok {
		return ErrStreamExists
	}

	s.open[id] = newStream[T](id, priority)
	s.metrics.openStreams.Inc()
	s.log.Debug().Uint32("stream", uint32(id)).Uint32("priority", priority).
		Msg("stream opened")
	return nil
}

// StreamClose stops admission on the stream. If the stream has no
// pending ops it is destroyed immediately; otherwise it moves to the
// closing set and is destroyed when its last op is dequeued. Returns
// ErrStreamNotFound if the id is not open.
func (s *Scheduler[T]) StreamClose(id StreamID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.open[id]
	if !ok {
		return ErrStreamNotFound
	}
	delete(s.open, id)
	s.metrics.openStreams.Dec()

	if st.close() {
		s.log.Debug().Uint32("stream", uint32(id)).Msg("stream closed drained")
		return nil
	}

	s.closing[st] = struct{}{}
	s.closingIDs[id]++
	s.metrics.closingStreams.Inc()
	s.log.Debug().Uint32("stream", uint32(id)).Int("pending", st.pending()).
		Msg("stream closing")
	return nil
}

// Enqueue routes a batch of ops to their streams. It never blocks.
// Accepted ops stay owned by their stream until dequeued; rejected ops
// come back in the returned slice with Result set to ErrStreamNotFound
// or ErrStreamClosed. Ops targeting distinct streams may be interleaved
// freely, while ops for the same stream are accepted in slice order.
func (s *Scheduler[T]) Enqueue(ops []*Op[T]) []*Op[T] {
	var rejected []*Op[T]

	for _, op := range ops {
		op.Result = nil
		op.completed.Store(false)

		st, closing := s.findStream(op.Stream)
		if st == nil {
			// A stream still draining after close gates with bad
			// state; an id with no stream at all is not found.
			if closing {
				op.Result = ErrStreamClosed
				s.metrics.opsRejected.WithLabelValues(reasonClosed).Inc()
			} else {
				op.Result = ErrStreamNotFound
				s.metrics.opsRejected.WithLabelValues(reasonNotFound).Inc()
			}
			rejected = append(rejected, op)
			continue
		}

		signal, err := st.insert(op)
		if err != nil {
			op.Result = err
			s.metrics.opsRejected.WithLabelValues(reasonClosed).Inc()
			rejected = append(rejected, op)
			continue
		}
		if signal {
			s.ready.signal(st)
		}
		s.metrics.opsEnqueued.Inc()
	}

	return rejected
}

// Dequeue pops the next op: highest stream priority first, FIFO within
// a stream, readiness order among streams of equal priority. With
// wait=false an idle scheduler returns ErrShouldWait; with wait=true the
// call blocks until an op is available or Shutdown cancels the wait with
// ErrCancelled.
func (s *Scheduler[T]) Dequeue(wait bool) (*Op[T], error) {
	st, err := s.ready.next(wait)
	if err != nil {
		return nil, err
	}

	op, remaining, drained := st.next()
	switch {
	case remaining > 0:
		s.ready.signal(st)
	case drained:
		s.streamRelease(st)
	}
	return op, nil
}

// AsyncComplete finishes an op whose Execute deferred completion with
// ErrAsync. The op's Result must be assigned before the call. Completing
// an op twice panics; it is a host bug, not a recoverable condition.
func (s *Scheduler[T]) AsyncComplete(op *Op[T]) {
	op.finish(s.client)
	s.metrics.opsCompleted.Inc()
}

// Serve spawns the worker pool. Each worker loops on a blocking Dequeue
// and hands ops to the client until Shutdown cancels the wait. Serve
// returns immediately after spawning; Shutdown joins the workers.
// Returns ErrShutdown once shutdown has started and ErrAlreadyServing if
// the pool is already running.
func (s *Scheduler[T]) Serve(ctx context.Context) error {
	// The serving flag and the shutdown gate flip under the same lock,
	// so a Serve racing Shutdown either loses and sees the gate or wins
	// and has its workers joined.
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return ErrShutdown
	}
	if s.serving {
		s.mu.Unlock()
		return ErrAlreadyServing
	}
	s.serving = true
	s.mu.Unlock()

	var g errgroup.Group
	for i := 0; i < s.conf.workerCount; i++ {
		i := i
		g.Go(func() error {
			return s.worker(ctx, i)
		})
	}

	go func() {
		_ = g.Wait()
		close(s.workersDone)
	}()

	s.log.Debug().Int("workers", s.conf.workerCount).Msg("serving")
	return nil
}

// Shutdown stops the scheduler. The steps are ordered so each depends
// only on the ones before it: unblock the host's producers, gate off and
// close every open stream, wake every blocked worker, join the workers,
// then drop the ready set and clear the registries, which is safe only
// once no worker can hold a stream mid-dequeue. Shutdown is idempotent;
// later calls return nil without repeating any step.
func (s *Scheduler[T]) Shutdown() error {
	if !s.shutdownStarted.CompareAndSwap(false, true) {
		return nil
	}

	s.client.CancelAcquire()

	s.mu.Lock()
	s.shutdown = true
	serving := s.serving
	for id, st := range s.open {
		delete(s.open, id)
		s.metrics.openStreams.Dec()
		if !st.close() {
			s.closing[st] = struct{}{}
			s.closingIDs[id]++
			s.metrics.closingStreams.Inc()
		}
	}
	s.mu.Unlock()

	s.ready.cancel()

	if serving {
		<-s.workersDone
	}

	// Without a worker pool the ready set may still hold streams whose
	// ops were never dequeued; drop them so a later Dequeue sees only
	// the cancellation.
	s.ready.clear()

	s.mu.Lock()
	clear(s.open)
	for st := range s.closing {
		delete(s.closing, st)
		s.metrics.closingStreams.Dec()
	}
	clear(s.closingIDs)
	s.mu.Unlock()

	s.log.Debug().Msg("shutdown complete")
	return nil
}

// NumStreams reports the sizes of the open and closing registries.
func (s *Scheduler[T]) NumStreams() (open, closing int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open), len(s.closing)
}

// findStream looks up an open stream and returns its pointer, which
// remains valid after the lock is released even if the stream is
// concurrently closed and erased. When the id is not open, closing
// reports whether it still resolves to a draining stream.
func (s *Scheduler[T]) findStream(id StreamID) (st *stream[T], closing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.open[id]; ok {
		return st, false
	}
	return nil, s.closingIDs[id] > 0
}

// streamRelease erases a stream that just drained from the closing set.
// A release for a stream the set does not hold means the close/drain
// handshake broke, which the public API must never be able to cause;
// the one legitimate miss is a dequeue racing Shutdown, which tears the
// closing set down wholesale.
func (s *Scheduler[T]) streamRelease(st *stream[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.closing[st]; !ok {
		if s.shutdown {
			return
		}
		panic("iosched: stream release for unknown stream")
	}
	delete(s.closing, st)
	if s.closingIDs[st.id]--; s.closingIDs[st.id] == 0 {
		delete(s.closingIDs, st.id)
	}
	s.metrics.closingStreams.Dec()
	s.log.Debug().Uint32("stream", uint32(st.id)).Msg("stream drained")
}
