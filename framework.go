package qf

import (
	"sync/atomic"
)

// Kernel selects which of the two scheduling models a
// Framework uses.
type Kernel uint8

const (
	// KernelVanilla is the cooperative, single-thread-of-control
	// scheduler: Run() never returns control to its caller until Stop,
	// and picks the highest-ready-priority AO to dispatch exactly one
	// event before re-checking the ready set.
	KernelVanilla Kernel = iota
	// KernelQK is the preemptive priority kernel: every active object
	// runs on its own goroutine, and the highest ready priority always
	// makes progress first, the way a real preemptive RTOS kernel
	// would, modulo the Go scheduler's own fairness guarantees.
	KernelQK
)

// runState is a small atomic state machine with only the transitions
// Run() and Stop() need, instead of a mutex.
type runState uint32

const (
	stateIdle runState = iota
	stateRunning
	stateStopping
	stateStopped
)

// Framework is the active-object kernel itself: it owns the
// critical section, the ready set, every registered active object, the
// event pools, the publish-subscribe subscriber table and the time-event
// wheel, and drives one of the two scheduler implementations.
type Framework struct {
	cfg *Config
	cs  critSection

	active [64]*ActiveObject // index 0 unused; priorities are 1..63
	ready  priSet

	pools []*pool // ascending by blockSize, for first-fit allocation

	subscribers []priSet
	maxSignal   uint32

	timerLists []*timeEventList

	currPrio uint8 // priority of the AO currently executing an RTC step, 0 = none

	running atomicBool
	state   atomic.Uint32
	stopCh  chan struct{}

	// idleRelease holds the critical-section release closure while
	// Collaborator.OnIdle is running, so OnIdle can give up the section
	// (via ExitIdleCritical) before doing any actual idle work (e.g.
	// sleeping), the same "idle must release the lock before sleeping"
	// contract a cooperative scheduler's idle hook always needs.
	idleRelease func()
}

// ExitIdleCritical releases the critical section the scheduler is
// holding while calling Collaborator.OnIdle. It is a no-op outside of an
// OnIdle call, and a no-op if called a second time within the same
// OnIdle call.
func (fw *Framework) ExitIdleCritical() {
	if fw.idleRelease != nil {
		fw.idleRelease()
		fw.idleRelease = nil
	}
}

// atomicBool is a tiny helper so call sites read fw.running.Load() with
// a named type instead of a bare atomic.Bool field.
type atomicBool struct{ v atomic.Bool }

func (b *atomicBool) Load() bool    { return b.v.Load() }
func (b *atomicBool) Store(x bool) { b.v.Store(x) }

// New constructs a Framework from opts: construction-time configuration
// here, plus explicit PSInit/PoolInit calls for the parts that need
// caller-supplied storage.
func New(opts ...Option) (*Framework, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}
	fw := &Framework{
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}
	fw.timerLists = make([]*timeEventList, cfg.MaxTickRate)
	for i := range fw.timerLists {
		fw.timerLists[i] = &timeEventList{}
	}
	return fw, nil
}

// PoolInit registers a fixed-block event pool backed by storage, with
// blocks of exactly blockSize bytes. Pools must be
// registered in ascending blockSize order and only before Run starts;
// NewX picks the first pool whose blockSize is large enough for a given
// allocation.
func (fw *Framework) PoolInit(storage []byte, blockSize uint32) error {
	release := fw.cs.enter()
	defer release()
	if fw.running.Load() {
		return ErrFrameworkRunning
	}
	fw.assert(int(fw.cfg.MPoolCtrSize) > 0, "qf.framework", "invalid MPoolCtrSize")
	fw.assert(uint8(len(fw.pools)) < fw.cfg.MaxEPool, "qf.framework", "too many pools registered")
	if n := len(fw.pools); n > 0 {
		fw.assert(blockSize > fw.pools[n-1].blockSize, "qf.framework", "pools must be registered in ascending blockSize order")
	}
	fw.pools = append(fw.pools, initPool(storage, blockSize))
	return nil
}

// lookupAO returns the active object registered at prio, or nil. Callers
// must hold fw.cs.
func (fw *Framework) lookupAO(prio uint8) *ActiveObject {
	if int(prio) >= len(fw.active) {
		return nil
	}
	return fw.active[prio]
}

// Run starts dispatching events, using the scheduler selected by
// Config.Kernel, and blocks until Stop is called. It returns 0
// on a clean stop.
func (fw *Framework) Run() (int, error) {
	if !fw.state.CompareAndSwap(uint32(stateIdle), uint32(stateRunning)) {
		return -1, ErrFrameworkRunning
	}
	fw.running.Store(true)

	if fw.cfg.collaborator != nil {
		fw.cfg.collaborator.OnStartup()
	}

	var err error
	switch fw.cfg.Kernel {
	case KernelQK:
		err = fw.runQK()
	default:
		err = fw.runVanilla()
	}

	fw.running.Store(false)
	fw.state.Store(uint32(stateStopped))
	if fw.cfg.collaborator != nil {
		fw.cfg.collaborator.OnCleanup()
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// Stop requests a clean shutdown: Run's loop exits after finishing
// whatever it is currently doing.
func (fw *Framework) Stop() {
	if !fw.state.CompareAndSwap(uint32(stateRunning), uint32(stateStopping)) {
		return
	}
	close(fw.stopCh)
}

// isStopping reports whether Stop has been requested.
func (fw *Framework) isStopping() bool {
	select {
	case <-fw.stopCh:
		return true
	default:
		return false
	}
}
