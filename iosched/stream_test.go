package iosched

import (
	"errors"
	"testing"
)

func TestStream_InsertSignalsOnlyOnEmptyEdge(t *testing.T) {
	st := newStream[int](1, 0)

	signal, err := st.insert(&Op[int]{Stream: 1, Payload: 1})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if !signal {
		t.Error("first insert should signal the empty-to-nonempty edge")
	}

	signal, err = st.insert(&Op[int]{Stream: 1, Payload: 2})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if signal {
		t.Error("second insert must not signal again")
	}
}

func TestStream_InsertAfterCloseRejected(t *testing.T) {
	st := newStream[int](1, 0)
	st.close()

	if _, err := st.insert(&Op[int]{Stream: 1}); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}
	if st.pending() != 0 {
		t.Error("rejected op must not be queued")
	}
}

func TestStream_CloseReportsDrainState(t *testing.T) {
	t.Run("empty stream drains on close", func(t *testing.T) {
		st := newStream[int](1, 0)
		if !st.close() {
			t.Error("expected drained close on empty stream")
		}
	})

	t.Run("pending stream keeps draining", func(t *testing.T) {
		st := newStream[int](1, 0)
		if _, err := st.insert(&Op[int]{Stream: 1}); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if st.close() {
			t.Error("stream with pending ops must not report drained")
		}
	})
}

func TestStream_NextPopsFIFOAndReportsDrain(t *testing.T) {
	st := newStream[int](1, 0)
	for i := 1; i <= 3; i++ {
		if _, err := st.insert(&Op[int]{Stream: 1, Payload: i}); err != nil {
			t.Fatalf("insert %d failed: %v", i, err)
		}
	}
	st.close()

	for i := 1; i <= 3; i++ {
		op, remaining, drained := st.next()
		if op.Payload != i {
			t.Errorf("pop %d: expected payload %d, got %d", i, i, op.Payload)
		}
		if wantRemaining := 3 - i; remaining != wantRemaining {
			t.Errorf("pop %d: expected %d remaining, got %d", i, wantRemaining, remaining)
		}
		if wantDrained := i == 3; drained != wantDrained {
			t.Errorf("pop %d: drained = %v, expected %v", i, drained, wantDrained)
		}
	}
}

func TestStream_NextOnEmptyPanics(t *testing.T) {
	st := newStream[int](1, 0)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty dequeue")
		}
	}()
	st.next()
}
