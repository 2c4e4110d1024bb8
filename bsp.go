package qf

// Collaborator is the board-support package contract the framework
// expects from its host application. It is deliberately kept
// out of the framework's core: no default implementation is assumed.
type Collaborator interface {
	// OnStartup runs once, before the scheduler starts dispatching.
	OnStartup()
	// OnCleanup runs once, after Stop completes.
	OnCleanup()
	// OnIdle runs whenever the scheduler (KernelVanilla or KernelQK)
	// finds the ready set empty. It
	// is invoked with the framework's critical section held and MUST
	// release it (directly or by returning) before returning — the Go
	// rendition of "on_idle must re-enable interrupts before returning".
	OnIdle(fw *Framework)
}

// ClockSource drives the time-event wheel: a host application
// wires some real ticking mechanism (a time.Ticker, a hardware timer
// interrupt) to call Framework.TickX, and may optionally implement this
// interface purely so the wiring code has a named collaborator to hang
// off, the same way a BSP's ISR handler is named for the timer it
// services rather than called anonymously.
type ClockSource interface {
	OnClockTick(rate uint8)
}

// AssertionHandler receives control on every contract violation, before
// the framework panics. file/line here is (module, line) as resolved by
// runtime.Caller at the violation site.
type AssertionHandler interface {
	OnAssertionFailure(module string, line int, msg string)
}

// TraceRecord is a minimal structured trace event, for the optional trace
// emitter collaborator. It intentionally carries far less detail than
// QP/C++'s QS binary protocol — that wire format is host/GUI tooling,
// explicitly out of scope.
type TraceRecord struct {
	Kind   string
	Sender uint8
	Prio   uint8
	Sig    Signal
}

// TraceEmitter is the optional collaborator that records TraceRecords for
// offline analysis.
type TraceEmitter interface {
	Trace(rec TraceRecord)
}

func (fw *Framework) trace(rec TraceRecord) {
	if fw.cfg.traceEmitter != nil {
		fw.cfg.traceEmitter.Trace(rec)
	}
}
