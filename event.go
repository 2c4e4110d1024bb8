package qf

// Signal identifies an event kind. The low end of the range is
// reserved for framework pseudo-signals.
type Signal uint32

const (
	SigEmpty     Signal = 0 // probe / "no event" signal
	SigInit      Signal = 1 // synthetic initial-transition event
	SigEntry     Signal = 2
	SigExit      Signal = 3
	SigUserFirst Signal = 4 // first signal value applications may define
)

// Event is the common header carried by every event in the framework
//. poolID==0 means static (program-lifetime, never recycled);
// poolID==n>0 means dynamic, allocated from pool n-1. data holds any
// payload bytes beyond the header, for dynamic events that need extra
// fields on dynamic events allocated larger than the bare header;
// static events typically leave it nil and carry their payload as
// ordinary Go struct fields on a type that embeds Event.
type Event struct {
	Sig    Signal
	poolID uint8
	refCtr int32
	data   []byte
}

// NewStaticEvent wraps sig as a static (poolID==0) event: shared-immutable,
// program lifetime, never garbage collected.
func NewStaticEvent(sig Signal) *Event {
	return &Event{Sig: sig}
}

// IsDynamic reports whether e was allocated from a pool (poolID != 0).
func (e *Event) IsDynamic() bool { return e.poolID != 0 }

// Data returns the payload bytes backing a dynamic event (nil for static
// events or events allocated with size 0).
func (e *Event) Data() []byte { return e.data }

// RefCount returns the current reference count. Only meaningful (and only
// ever non-zero) for dynamic events; mutated exclusively under the
// framework's critical section.
func (e *Event) RefCount() int32 { return e.refCtr }

// NewX allocates a dynamic event of at least size payload bytes and
// signal sig from the first registered pool whose block size is >= size
//. margin is the overflow-protection margin passed through to
// the pool's get(): margin==0 means "guaranteed" and any allocation
// failure is a fatal contract violation; margin>0 means a soft failure
// returning (nil, false) is acceptable.
//
// The returned event has refCtr==0: it becomes live the instant it is
// enqueued somewhere (Post/PostLIFO/Publish/Defer), each of which bumps
// refCtr under the critical section before the reference is handed out.
func (fw *Framework) NewX(size uint32, margin uint8, sig Signal) (*Event, bool) {
	release := fw.cs.enter()
	defer release()

	idx := -1
	for i, p := range fw.pools {
		if p.blockSize >= size {
			idx = i
			break
		}
	}
	fw.assert(idx >= 0, "qf.event", "no pool registered with a large enough block size")

	p := fw.pools[idx]
	block := p.get()
	if block == nil {
		fw.assert(margin > 0, "qf.event", "pool exhausted on a guaranteed (margin=0) allocation")
		fw.log(LevelWarn, "pool", "soft allocation failure", map[string]any{"pool": idx, "sig": sig})
		return nil, false
	}

	return &Event{Sig: sig, poolID: uint8(idx + 1), data: block[:size]}, true
}

// refInc increments e's reference count. Callers must hold the critical
// section. It is a no-op for static events, guarded by poolID != 0.
func refInc(e *Event) {
	if e == nil || !e.IsDynamic() {
		return
	}
	e.refCtr++
}

// GC is the framework's garbage collector: static events are
// left alone; a dynamic event's reference count is decremented, and the
// block returned to its pool only once the count reaches zero.
func (fw *Framework) GC(e *Event) {
	if e == nil || !e.IsDynamic() {
		return
	}
	release := fw.cs.enter()
	defer release()

	if e.refCtr > 1 {
		e.refCtr--
		return
	}
	e.refCtr = 0
	p := fw.pools[e.poolID-1]
	fw.assert(p.put(e.data[:cap(e.data)]), "qf.event", "block does not belong to its pool")
}

// GetPoolMin returns the historical low-water mark (minimum observed
// free count) for pool poolIdx (0-based).
func (fw *Framework) GetPoolMin(poolIdx int) uint32 {
	release := fw.cs.enter()
	defer release()
	fw.assert(poolIdx >= 0 && poolIdx < len(fw.pools), "qf.event", "pool index out of range")
	return fw.pools[poolIdx].minFree
}
