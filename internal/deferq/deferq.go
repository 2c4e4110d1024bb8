// Package deferq backs an active object's defer/recall queues. An AO's
// defer queue is, by construction, single-producer single-consumer:
// only the owning AO ever pushes (from its own
// run-to-completion step, via Defer) and only the owning AO ever pops
// (via Recall, also from its own RTC step). That access pattern maps
// directly onto an SPSC ring buffer, so this package wraps
// code.hybscloud.com/lfq's SPSC implementation instead of hand-rolling a
// second bespoke ring next to the main event queue.
package deferq

import "code.hybscloud.com/lfq"

// Queue is a fixed-capacity single-producer single-consumer FIFO of
// pointers to T (an active object's deferred events).
type Queue[T any] struct {
	q *lfq.SPSC[*T]
}

// New returns a deferral queue with room for capacity pointers.
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{q: lfq.NewSPSC[*T](capacity)}
}

// Defer pushes v onto the queue. It reports false if the queue is full.
func (q *Queue[T]) Defer(v *T) bool {
	return q.q.Enqueue(&v) == nil
}

// Recall pops the oldest deferred value in FIFO order. It reports false
// if the queue is empty.
func (q *Queue[T]) Recall() (*T, bool) {
	v, err := q.q.Dequeue()
	if err != nil {
		return nil, false
	}
	return v, true
}

// Cap returns the queue's fixed capacity.
func (q *Queue[T]) Cap() int { return q.q.Cap() }
