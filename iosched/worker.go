package iosched

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"
)

// worker is the loop each Serve goroutine runs: block for the next op,
// execute it through the client, and route the completion. The blocking
// dequeue is the only suspension point; ErrCancelled from it is the
// shutdown signal and ends the loop cleanly.
func (s *Scheduler[T]) worker(ctx context.Context, id int) error {
	s.log.Debug().Int("worker", id).Msg("worker started")
	defer s.log.Debug().Int("worker", id).Msg("worker exited")

	for {
		op, err := s.Dequeue(true)
		if err != nil {
			// Only ErrCancelled escapes a blocking dequeue.
			return nil
		}

		if s.limiter != nil {
			if lerr := s.limiter.Wait(ctx); lerr != nil {
				// Context died while throttled. The op still has to
				// leave scheduler control exactly once.
				op.Result = lerr
				op.finish(s.client)
				s.metrics.opsCompleted.Inc()
				continue
			}
		}

		s.execute(ctx, op)
	}
}

// execute runs one op through the client and completes it unless the
// client deferred completion with ErrAsync.
func (s *Scheduler[T]) execute(ctx context.Context, op *Op[T]) {
	execCtx := ctx
	if s.conf.execTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, s.conf.execTimeout)
		defer cancel()
	}

	start := time.Now()
	err := s.executeWithRecovery(execCtx, op)
	s.metrics.execDuration.Observe(time.Since(start).Seconds())

	if errors.Is(err, ErrAsync) {
		// Completion arrives later through AsyncComplete.
		return
	}

	op.Result = err
	op.finish(s.client)
	s.metrics.opsCompleted.Inc()
}

// executeWithRecovery invokes the client callback with panic recovery so
// a misbehaving op cannot take a worker down with it.
func (s *Scheduler[T]) executeWithRecovery(ctx context.Context, op *Op[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("client panic: %v\nstack trace:\n%s", r, buf[:n])
		}
	}()

	return s.client.Execute(ctx, op)
}
