package readyheap

import "testing"

func TestHeap_PopsByDescendingPriority(t *testing.T) {
	h := New[string](0)
	h.Push("low", 1)
	h.Push("high", 30)
	h.Push("mid", 15)

	want := []string{"high", "mid", "low"}
	for i, expect := range want {
		got, ok := h.Pop()
		if !ok {
			t.Fatalf("pop %d: heap unexpectedly empty", i)
		}
		if got != expect {
			t.Errorf("pop %d: expected %q, got %q", i, expect, got)
		}
	}
}

func TestHeap_FIFOWithinPriority(t *testing.T) {
	h := New[int](8)
	for i := 0; i < 20; i++ {
		h.Push(i, 5)
	}
	for want := 0; want < 20; want++ {
		got, ok := h.Pop()
		if !ok {
			t.Fatalf("pop %d: heap unexpectedly empty", want)
		}
		if got != want {
			t.Fatalf("equal-priority order broken: expected %d, got %d", want, got)
		}
	}
}

func TestHeap_MixedPrioritiesKeepTierOrder(t *testing.T) {
	h := New[string](0)
	h.Push("a1", 10)
	h.Push("b1", 20)
	h.Push("a2", 10)
	h.Push("b2", 20)
	h.Push("a3", 10)

	want := []string{"b1", "b2", "a1", "a2", "a3"}
	for i, expect := range want {
		got, _ := h.Pop()
		if got != expect {
			t.Errorf("pop %d: expected %q, got %q", i, expect, got)
		}
	}
}

func TestHeap_EmptyPop(t *testing.T) {
	h := New[int](0)
	if _, ok := h.Pop(); ok {
		t.Fatal("pop on empty heap should report false")
	}
	h.Push(1, 0)
	h.Pop()
	if _, ok := h.Pop(); ok {
		t.Fatal("heap should be empty again")
	}
}

func TestHeap_Len(t *testing.T) {
	h := New[int](4)
	if h.Len() != 0 {
		t.Fatal("new heap should be empty")
	}
	h.Push(1, 0)
	h.Push(2, 1)
	if h.Len() != 2 {
		t.Fatalf("expected len 2, got %d", h.Len())
	}
	h.Pop()
	if h.Len() != 1 {
		t.Fatalf("expected len 1, got %d", h.Len())
	}
}
