package qf

import "testing"

func TestEQueue_FIFOOrder(t *testing.T) {
	q := initEQueue(4)

	e1 := &Event{Sig: 1}
	e2 := &Event{Sig: 2}
	e3 := &Event{Sig: 3}

	if !q.postFIFO(e1, 0) {
		t.Fatal("postFIFO(e1) should succeed into the front slot")
	}
	if !q.postFIFO(e2, 0) {
		t.Fatal("postFIFO(e2) should succeed")
	}
	if !q.postFIFO(e3, 0) {
		t.Fatal("postFIFO(e3) should succeed")
	}

	if got := q.get(); got != e1 {
		t.Fatalf("get() = %v, want e1", got)
	}
	if got := q.get(); got != e2 {
		t.Fatalf("get() = %v, want e2", got)
	}
	if got := q.get(); got != e3 {
		t.Fatalf("get() = %v, want e3", got)
	}
	if got := q.get(); got != nil {
		t.Fatalf("get() on empty queue = %v, want nil", got)
	}
}

func TestEQueue_LIFOFrontPreemption(t *testing.T) {
	q := initEQueue(4)

	e1 := &Event{Sig: 1}
	e2 := &Event{Sig: 2}

	q.postFIFO(e1, 0) // occupies the front slot
	if !q.postLIFO(e2) {
		t.Fatal("postLIFO(e2) should succeed")
	}

	if got := q.get(); got != e2 {
		t.Fatalf("get() after LIFO post = %v, want e2 (the LIFO-posted event)", got)
	}
	if got := q.get(); got != e1 {
		t.Fatalf("get() = %v, want e1 (pushed back by the LIFO post)", got)
	}
}

func TestEQueue_MarginRejectsOverflow(t *testing.T) {
	q := initEQueue(2)

	q.postFIFO(&Event{Sig: 1}, 0) // front
	q.postFIFO(&Event{Sig: 2}, 0) // ring[0], nFree now 1

	if q.postFIFO(&Event{Sig: 3}, 1) {
		t.Fatal("postFIFO should fail when it would leave fewer than margin free slots")
	}
	if !q.postFIFO(&Event{Sig: 4}, 0) {
		t.Fatal("postFIFO with margin 0 should still succeed while a slot remains")
	}
}

func TestEQueue_MinFreeTracksLowWaterMark(t *testing.T) {
	q := initEQueue(4)
	q.postFIFO(&Event{Sig: 1}, 0)
	q.postFIFO(&Event{Sig: 2}, 0)
	q.postFIFO(&Event{Sig: 3}, 0)

	if q.minFree != 2 {
		t.Fatalf("minFree = %d, want 2", q.minFree)
	}

	q.get()
	q.get()

	if q.minFree != 2 {
		t.Fatalf("minFree = %d after draining, want 2 (low-water mark never recovers)", q.minFree)
	}
}
