package qf

import (
	"time"

	"github.com/lycsqq/qpcpp/internal/deferq"
)

// ActiveObject is an HSM plus a unique priority and a private event
// queue: the framework's unit of concurrency. Every method
// that touches shared framework state goes through fw.cs.
type ActiveObject struct {
	fw       *Framework
	priority uint8
	hsm      *HSM
	queue    *eQueue

	// wake is signaled by Post/PostLIFO (and so by TickX, which posts)
	// whenever the queue transitions from empty to non-empty. It is
	// buffered to depth 1. Neither scheduler reads it: KernelQK hands
	// each event to the per-AO goroutine over runCh instead.
	wake chan struct{}

	// runCh/doneCh are the handoff channels KernelQK uses to run ao's
	// goroutine through exactly one RTC step at a time, preserving the
	// framework-wide invariant that only one active object ever
	// executes its HSM at once, even though each AO owns its own
	// goroutine (and so, in principle, its own stack).
	runCh  chan *Event
	doneCh chan struct{}

	stopped bool
}

// DeferQueue is a private, SPSC event-defer queue owned by (and only
// ever touched by) a single ActiveObject, backed by internal/deferq.
type DeferQueue struct {
	q *deferq.Queue[Event]
}

// NewDeferQueue allocates a defer queue with room for capacity deferred
// events.
func NewDeferQueue(capacity int) *DeferQueue {
	return &DeferQueue{q: deferq.New[Event](capacity)}
}

// Register allocates ao at priority prio with queue capacity qCap,
// without running its topmost initial transition. It is a contract
// violation to register two active objects at the same priority.
//
// Most callers want Start instead. Register exists for cases where the
// caller needs a valid *ActiveObject to finish wiring something (a
// TimeEvent bound to ao, for instance) before ao's initial transition's
// entry actions can safely run; such callers should call ao.Init
// themselves once that wiring is complete.
func (fw *Framework) Register(prio uint8, qCap uint32, top StateHandler) *ActiveObject {
	release := fw.cs.enter()
	defer release()

	fw.assert(prio >= 1 && uint8(prio) <= fw.cfg.MaxActive, "qf.active", "priority out of range")
	fw.assert(fw.lookupAO(prio) == nil, "qf.active", "priority already in use")

	ao := &ActiveObject{
		fw:       fw,
		priority: prio,
		hsm:      NewHSM(top),
		queue:    initEQueue(qCap),
		wake:     make(chan struct{}, 1),
	}
	fw.active[prio] = ao
	return ao
}

// Init runs ao's topmost initial transition with ie, bringing it to its
// first leaf state. Must be called exactly once, and before any event
// is posted to ao. Start calls this automatically; callers that used
// Register directly must call it themselves.
func (ao *ActiveObject) Init(ie *Event) {
	ao.hsm.Init(ie)
}

// Start registers ao at priority prio with queue capacity qCap, and runs
// its topmost initial transition with ie to bring it to its first leaf
// state. It is a contract violation to start two active objects at the
// same priority. Start does not check whether Run has begun.
func (fw *Framework) Start(prio uint8, qCap uint32, top StateHandler, ie *Event) *ActiveObject {
	ao := fw.Register(prio, qCap, top)
	ao.Init(ie)
	return ao
}

// Priority returns the active object's unique scheduling priority.
func (ao *ActiveObject) Priority() uint8 { return ao.priority }

// Post enqueues e FIFO onto ao's private queue, bumping
// e's reference count first. margin is the minimum number of free slots
// that must remain afterward; margin==0 means the post is guaranteed
// (failure is a contract violation), margin>0 allows a soft failure
// (returns false, event is not enqueued, reference count is rolled back).
// sender, if given, identifies the posting priority purely for tracing.
func (ao *ActiveObject) Post(e *Event, margin uint8, sender ...uint8) bool {
	fw := ao.fw
	release := fw.cs.enter()
	defer release()

	refInc(e)
	wasEmpty := ao.queue.isEmpty()
	if !ao.queue.postFIFO(e, margin) {
		if e.IsDynamic() {
			e.refCtr--
		}
		fw.assert(margin > 0, "qf.active", "post would violate queue margin")
		return false
	}
	fw.ready.insert(ao.priority)
	fw.trace(TraceRecord{Kind: "post", Sender: firstOr(sender, 0), Prio: ao.priority, Sig: e.Sig})
	if wasEmpty {
		ao.signalWake()
	}
	return true
}

// PostLIFO enqueues e at the front of ao's queue, ahead of whatever is
// already queued. Recall uses it to re-deliver a deferred event; time
// events are delivered with Post instead.
func (ao *ActiveObject) PostLIFO(e *Event) bool {
	fw := ao.fw
	release := fw.cs.enter()
	defer release()

	refInc(e)
	wasEmpty := ao.queue.isEmpty()
	if !ao.queue.postLIFO(e) {
		if e.IsDynamic() {
			e.refCtr--
		}
		fw.assert(false, "qf.active", "LIFO post would overflow queue")
		return false
	}
	fw.ready.insert(ao.priority)
	fw.trace(TraceRecord{Kind: "post_lifo", Prio: ao.priority, Sig: e.Sig})
	if wasEmpty {
		ao.signalWake()
	}
	return true
}

// signalWake leaves a signal on ao.wake that there is now work to do.
// It needs no lock: it is a non-blocking send on a channel buffered to
// depth 1, and a pending signal is kept regardless of how many events
// arrived since it was last drained.
func (ao *ActiveObject) signalWake() {
	select {
	case ao.wake <- struct{}{}:
	default:
	}
}

// get pops the next event for ao to process. Must be called with fw.cs
// held; returns nil if the queue is empty. Whenever the queue is empty
// after the call, get also removes ao from the ready set.
func (ao *ActiveObject) get() *Event {
	e := ao.queue.get()
	if ao.queue.isEmpty() {
		ao.fw.ready.remove(ao.priority)
	}
	return e
}

// dispatchOne runs exactly one event through ao's HSM (one run-to-
// completion step), then releases ao's reference on the event.
func (ao *ActiveObject) dispatchOne(e *Event) {
	fw := ao.fw
	prevPrio := fw.currPrio
	fw.currPrio = ao.priority
	start := time.Now()
	ao.hsm.Dispatch(e)
	if fw.cfg.metrics != nil {
		fw.cfg.metrics.observe(time.Since(start))
	}
	fw.currPrio = prevPrio
	fw.GC(e)
}

// Subscribe registers ao to receive every event published with signal
// sig.
func (ao *ActiveObject) Subscribe(sig Signal) {
	fw := ao.fw
	release := fw.cs.enter()
	defer release()
	fw.assert(uint32(sig) < fw.maxSignal, "qf.pubsub", "signal out of PSInit range")
	fw.subscribers[sig].insert(ao.priority)
}

// Unsubscribe removes ao's subscription to sig.
func (ao *ActiveObject) Unsubscribe(sig Signal) {
	fw := ao.fw
	release := fw.cs.enter()
	defer release()
	fw.assert(uint32(sig) < fw.maxSignal, "qf.pubsub", "signal out of PSInit range")
	fw.subscribers[sig].remove(ao.priority)
}

// UnsubscribeAll removes every subscription ao currently holds.
func (ao *ActiveObject) UnsubscribeAll() {
	fw := ao.fw
	release := fw.cs.enter()
	defer release()
	for sig := range fw.subscribers {
		fw.subscribers[sig].remove(ao.priority)
	}
}

// Defer moves e onto q instead of handling it now: bumps the
// reference count (the event is now owned by the defer queue) and
// returns false if q is full.
func (ao *ActiveObject) Defer(q *DeferQueue, e *Event) bool {
	release := ao.fw.cs.enter()
	refInc(e)
	release()
	if !q.q.Defer(e) {
		release2 := ao.fw.cs.enter()
		if e.IsDynamic() {
			e.refCtr--
		}
		release2()
		return false
	}
	return true
}

// Recall moves the oldest deferred event on q back onto ao's own queue,
// via LIFO posting: a recalled event jumps the queue, so recalling one
// event per RTC step processes deferred events in their original
// relative order (several Recall calls in a row leave them reversed on
// ao's queue). Returns false if q was empty.
func (ao *ActiveObject) Recall(q *DeferQueue) bool {
	e, ok := q.q.Recall()
	if !ok {
		return false
	}
	ao.PostLIFO(e)
	release := ao.fw.cs.enter()
	if e.IsDynamic() {
		e.refCtr--
	}
	release()
	return true
}

// Stop marks ao stopped and removes it from the ready set. It does not
// unregister ao from its priority slot or clear its subscriptions, and
// Post does not check the stopped mark, so a later post is still
// enqueued and makes ao ready again. Under KernelQK, ao's goroutine keeps
// running until Run returns.
func (ao *ActiveObject) Stop() {
	fw := ao.fw
	release := fw.cs.enter()
	ao.stopped = true
	fw.ready.remove(ao.priority)
	release()
	ao.signalWake()
}

func firstOr(xs []uint8, def uint8) uint8 {
	if len(xs) > 0 {
		return xs[0]
	}
	return def
}
