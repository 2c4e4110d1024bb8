package qf

import "testing"

type recordingTraceEmitter struct {
	recs []TraceRecord
}

func (r *recordingTraceEmitter) Trace(rec TraceRecord) {
	r.recs = append(r.recs, rec)
}

func TestFramework_TraceRecordsPost(t *testing.T) {
	em := &recordingTraceEmitter{}
	fw, err := New(WithTraceEmitter(em))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := fw.PoolInit(NewArena(8, 4), 8); err != nil {
		t.Fatalf("PoolInit: %v", err)
	}

	ao := fw.Start(1, 4, func(hsm *HSM, e *Event) Result {
		return Tran(func(hsm *HSM, e *Event) Result { return Handled() })
	}, NewStaticEvent(SigInit))

	ao.Post(NewStaticEvent(sigTick), 0, 7)

	if len(em.recs) != 1 {
		t.Fatalf("got %d trace records, want 1", len(em.recs))
	}
	rec := em.recs[0]
	if rec.Kind != "post" || rec.Sender != 7 || rec.Prio != 1 || rec.Sig != sigTick {
		t.Fatalf("trace record = %+v, want post/sender=7/prio=1/sig=%d", rec, sigTick)
	}
}

func TestFramework_TraceIsNoOpWithoutEmitter(t *testing.T) {
	fw, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// should not panic with no emitter configured
	fw.trace(TraceRecord{Kind: "post"})
}

type countingClockSource struct {
	ticks []uint8
}

func (c *countingClockSource) OnClockTick(rate uint8) {
	c.ticks = append(c.ticks, rate)
}

func TestClockSource_CanBeImplementedByHostApplication(t *testing.T) {
	// ClockSource has no framework-side caller; it exists purely so a
	// host application's ticking goroutine has a named type to hang off
	// of. This only confirms the interface is satisfiable.
	var _ ClockSource = (*countingClockSource)(nil)
}
