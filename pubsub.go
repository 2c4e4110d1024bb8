package qf

// PSInit sizes the publish-subscribe subscriber table for signals in
// [0, maxSignal). Must be called before Run, and before any
// Subscribe call references a signal in range.
func (fw *Framework) PSInit(maxSignal uint32) error {
	release := fw.cs.enter()
	defer release()
	if fw.running.Load() {
		return ErrFrameworkRunning
	}
	fw.subscribers = make([]priSet, maxSignal)
	fw.maxSignal = maxSignal
	return nil
}

// Publish multicasts e to every active object currently subscribed to
// e.Sig. The event is "pinned" for the duration of the
// multicast by incrementing its reference count once while the critical
// section is held, then posted (guaranteed, margin=0, each post taking
// its own reference)
// to each subscriber from highest priority to lowest, the same
// MSB-first delivery order QP/C++ uses, which lets the highest-priority
// subscriber preempt and run before lower-priority ones even receive
// their copy under the preemptive kernel.
func (fw *Framework) Publish(e *Event, sender ...uint8) {
	release := fw.cs.enter()
	fw.assert(uint32(e.Sig) < fw.maxSignal, "qf.pubsub", "signal out of PSInit range")

	subs := fw.subscribers[e.Sig]
	var recipients []uint8
	for p := subs.findMax(); p != 0; p = subs.findMax() {
		recipients = append(recipients, p)
		subs.remove(p)
	}
	// Pin e for the duration of the multicast: each ao.Post below takes
	// its own reference, but without this extra pin a subscriber that
	// dispatches (and GCs) its copy before the loop finishes posting to
	// everyone else could drop e's count to zero prematurely.
	refInc(e)
	release()

	for _, p := range recipients {
		ao := fw.lookupAO(p)
		if ao == nil {
			continue
		}
		ao.Post(e, 0, firstOr(sender, 0))
	}

	fw.GC(e) // release the pin taken above
}
