package qf

// TimeEvent is a time-delayed (optionally periodic) event source bound
// to one active object. A TimeEvent is typically a static
// event (allocated once, rearmed indefinitely), though it need not be.
type TimeEvent struct {
	Event
	target   *ActiveObject
	tickRate uint8

	// counter is the number of ticks remaining until the next firing;
	// counter == 0 means disarmed. This, not list membership, is the
	// authoritative armed/disarmed state: Disarm only sets counter to 0,
	// leaving actual unlinking from the tick list to the next TickX
	// scan, so Disarm is O(1) and safe to call from any goroutine that can
	// take the critical section, including one running concurrently with
	// a TickX call on the same list.
	counter  uint32
	interval uint32 // 0 => one-shot; >0 => rearm to this value after firing

	next *TimeEvent
	prev *TimeEvent
	list *timeEventList
}

type timeEventList struct {
	head *TimeEvent
}

func (l *timeEventList) insert(te *TimeEvent) {
	te.next = l.head
	te.prev = nil
	if l.head != nil {
		l.head.prev = te
	}
	l.head = te
	te.list = l
}

func (l *timeEventList) unlink(te *TimeEvent) {
	if te.list != l {
		return
	}
	if te.prev != nil {
		te.prev.next = te.next
	} else {
		l.head = te.next
	}
	if te.next != nil {
		te.next.prev = te.prev
	}
	te.next, te.prev, te.list = nil, nil, nil
}

// NewTimeEvent binds a time event of signal sig to target, ticking on
// tickRate (an index into the framework's independent tick channels).
// It starts disarmed.
func NewTimeEvent(sig Signal, target *ActiveObject, tickRate uint8) *TimeEvent {
	return &TimeEvent{Event: Event{Sig: sig}, target: target, tickRate: tickRate}
}

// Arm arms te to fire after ticks ticks of its tick rate, and every
// interval ticks thereafter (interval==0 for one-shot). te must be
// currently disarmed (counter==0); arming an already-armed event is a
// contract violation — use Rearm to reload an active countdown instead.
func (fw *Framework) Arm(te *TimeEvent, ticks, interval uint32) {
	release := fw.cs.enter()
	defer release()
	fw.assert(ticks > 0, "qf.timeevt", "Arm requires ticks > 0")
	fw.assert(te.target != nil, "qf.timeevt", "Arm requires a time event bound to a host active object")
	fw.assert(int(te.tickRate) < len(fw.timerLists), "qf.timeevt", "tick rate out of range")
	fw.assert(te.counter == 0, "qf.timeevt", "Arm requires a disarmed time event; use Rearm to reload one already armed")

	te.counter = ticks
	te.interval = interval
	if te.list == nil {
		fw.timerLists[te.tickRate].insert(te)
	}
}

// Disarm stops te from firing. Returns true if te was still armed at the
// time of this call. The event may remain linked in the tick list until
// the next TickX scan removes it; that scan must never re-fire a
// disarmed (counter==0) entry.
func (fw *Framework) Disarm(te *TimeEvent) bool {
	release := fw.cs.enter()
	defer release()
	wasArmed := te.counter != 0
	te.counter = 0
	return wasArmed
}

// Rearm reloads te's one-shot countdown to ticks without touching its
// periodic interval, the same contract as QP/C++'s QTimeEvt_rearm.
// Returns whether te was previously armed.
func (fw *Framework) Rearm(te *TimeEvent, ticks uint32) bool {
	release := fw.cs.enter()
	defer release()
	fw.assert(ticks > 0, "qf.timeevt", "Rearm requires ticks > 0")
	wasArmed := te.counter != 0
	te.counter = ticks
	if te.list == nil {
		fw.timerLists[te.tickRate].insert(te)
	}
	return wasArmed
}

// TickX advances every time event on tick channel tickRate by one tick
//: decrements armed counters, posts the event to its target
// and reloads the interval on expiry, and unlinks any entry found
// disarmed (counter==0) during the scan regardless of how it got that
// way. sender is purely for tracing (it identifies the "ISR"/ticker
// calling in).
func (fw *Framework) TickX(tickRate uint8, sender ...uint8) {
	release := fw.cs.enter()

	list := fw.timerLists[tickRate]
	var toPost []*TimeEvent
	te := list.head
	for te != nil {
		next := te.next
		switch {
		case te.counter == 0:
			list.unlink(te)
		case te.counter == 1:
			te.counter = te.interval // 0 for one-shot, reloads for periodic
			if te.interval == 0 {
				list.unlink(te)
			}
			toPost = append(toPost, te)
		default:
			te.counter--
		}
		te = next
	}
	release()

	for _, te := range toPost {
		fw.trace(TraceRecord{Kind: "tick", Sender: firstOr(sender, 0), Prio: te.target.priority, Sig: te.Sig})
		te.target.Post(&te.Event, 0)
	}
}
