package qf

// eQueue is a bounded, reference-counted event queue: a
// single front slot for the fast path (the event an idle AO will pick up
// next) plus a ring buffer behind it. Posting to an AO that is currently
// idle bypasses the ring entirely, the same one-deep lookahead QP/C++'s
// native event queue uses.
//
// All mutation happens under the owning Framework's critical section;
// eQueue itself holds no lock.
type eQueue struct {
	front *Event
	ring  []*Event
	head  uint32 // next get() position
	tail  uint32 // next put() position
	nUsed uint32
	nFree uint32
	minFree uint32
}

// initEQueue prepares a queue with ring capacity cap; the front slot
// adds one more event's worth of headroom on top of cap, so the queue
// holds capacity+1 events in total.
func initEQueue(capacity uint32) *eQueue {
	return &eQueue{
		ring:    make([]*Event, capacity),
		nFree:   capacity,
		minFree: capacity,
	}
}

// postFIFO enqueues e at the back of the queue. margin is the minimum
// number of free slots that must remain after this post; margin==0 means
// "guaranteed", any shortfall is a contract violation elsewhere (the
// caller, ActiveObject.Post, is responsible for raising it — eQueue itself
// only reports success/failure). Returns false if posting would violate
// margin.
func (q *eQueue) postFIFO(e *Event, margin uint8) bool {
	if q.front == nil {
		q.front = e
		return true
	}
	if q.nFree <= uint32(margin) {
		return false
	}
	q.ring[q.tail] = e
	q.tail = (q.tail + 1) % uint32(len(q.ring))
	q.nUsed++
	q.nFree--
	if q.nFree < q.minFree {
		q.minFree = q.nFree
	}
	return true
}

// postLIFO enqueues e at the front of the queue, used for high-priority
// preemption/recall events: the current front slot, if occupied, is
// pushed back to the head of the ring, and e becomes the new front.
func (q *eQueue) postLIFO(e *Event) bool {
	if q.front == nil {
		q.front = e
		return true
	}
	if q.nFree == 0 {
		return false
	}
	q.head = (q.head - 1 + uint32(len(q.ring))) % uint32(len(q.ring))
	q.ring[q.head] = q.front
	q.nUsed++
	q.nFree--
	if q.nFree < q.minFree {
		q.minFree = q.nFree
	}
	q.front = e
	return true
}

// get pops the front event, promoting the next ring entry (if any) into
// the front slot. Returns nil if the queue is empty.
func (q *eQueue) get() *Event {
	e := q.front
	if e == nil {
		return nil
	}
	if q.nUsed == 0 {
		q.front = nil
		return e
	}
	q.front = q.ring[q.head]
	q.ring[q.head] = nil
	q.head = (q.head + 1) % uint32(len(q.ring))
	q.nUsed--
	q.nFree++
	return e
}

// isEmpty reports whether the queue (front slot plus ring) holds nothing.
func (q *eQueue) isEmpty() bool { return q.front == nil }

// GetQueueMin returns ao's queue's historical low-water mark: the
// fewest free slots ever remaining, across its lifetime.
func (fw *Framework) GetQueueMin(prio uint8) uint32 {
	release := fw.cs.enter()
	defer release()
	ao := fw.lookupAO(prio)
	fw.assert(ao != nil, "qf.equeue", "no active object registered at this priority")
	return ao.queue.minFree
}
