package iosched

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_StreamGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New[int](&testClient{}, WithMetrics(reg))

	if err := s.StreamOpen(1, 0); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := s.StreamOpen(2, 0); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if got := testutil.ToFloat64(s.metrics.openStreams); got != 2 {
		t.Errorf("open gauge = %v, expected 2", got)
	}

	s.Enqueue(newOps(1, 1))
	if err := s.StreamClose(1); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if got := testutil.ToFloat64(s.metrics.openStreams); got != 1 {
		t.Errorf("open gauge = %v, expected 1 after close", got)
	}
	if got := testutil.ToFloat64(s.metrics.closingStreams); got != 1 {
		t.Errorf("closing gauge = %v, expected 1", got)
	}

	if _, err := s.Dequeue(false); err != nil {
		t.Fatalf("dequeue failed: %v", err)
	}
	if got := testutil.ToFloat64(s.metrics.closingStreams); got != 0 {
		t.Errorf("closing gauge = %v, expected 0 after drain", got)
	}
}

func TestMetrics_OpCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := New[int](&testClient{}, WithMetrics(reg))

	if err := s.StreamOpen(1, 0); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	s.Enqueue(newOps(1, 1, 2, 3))
	s.Enqueue(newOps(99, 4)) // unknown stream

	if got := testutil.ToFloat64(s.metrics.opsEnqueued); got != 3 {
		t.Errorf("enqueued counter = %v, expected 3", got)
	}
	rejected := s.metrics.opsRejected.WithLabelValues(reasonNotFound)
	if got := testutil.ToFloat64(rejected); got != 1 {
		t.Errorf("rejected counter = %v, expected 1", got)
	}
}

func TestMetrics_TwoSchedulersRegisterIndependently(t *testing.T) {
	// Per-instance collectors must not collide on distinct registries.
	regA := prometheus.NewRegistry()
	regB := prometheus.NewRegistry()
	a := New[int](&testClient{}, WithMetrics(regA))
	b := New[int](&testClient{}, WithMetrics(regB))

	if err := a.StreamOpen(1, 0); err != nil {
		t.Fatalf("a open failed: %v", err)
	}
	if got := testutil.ToFloat64(b.metrics.openStreams); got != 0 {
		t.Errorf("b's gauge saw a's stream: %v", got)
	}
}
