package qf

import "testing"

// A tiny two-level HSM used across these tests: initial -> stateA, with
// stateA and stateB both direct children of Top, and a nested pair
// stateC1/stateC2 where stateC2 is a substate of stateC1 (to exercise
// LCA computation across more than one level).
type hsmFixture struct {
	log []string
}

func (f *hsmFixture) record(s string) { f.log = append(f.log, s) }

func (f *hsmFixture) initial(hsm *HSM, e *Event) Result {
	return Tran(f.stateA)
}

func (f *hsmFixture) stateA(hsm *HSM, e *Event) Result {
	switch e.Sig {
	case SigEntry:
		f.record("A-entry")
		return Handled()
	case SigExit:
		f.record("A-exit")
		return Handled()
	case 100:
		return Tran(f.stateB)
	case 101:
		return Tran(f.stateC2)
	default:
		return Super(Top)
	}
}

func (f *hsmFixture) stateB(hsm *HSM, e *Event) Result {
	switch e.Sig {
	case SigEntry:
		f.record("B-entry")
		return Handled()
	case SigExit:
		f.record("B-exit")
		return Handled()
	case 200:
		return Handled()
	default:
		return Super(Top)
	}
}

func (f *hsmFixture) stateC1(hsm *HSM, e *Event) Result {
	switch e.Sig {
	case SigEntry:
		f.record("C1-entry")
		return Handled()
	case SigExit:
		f.record("C1-exit")
		return Handled()
	case 300:
		// deliberately unhandled here, to verify the dispatcher climbs
		// to Top without an explicit Super call at every single state.
		return Unhandled()
	default:
		return Super(Top)
	}
}

func (f *hsmFixture) stateC2(hsm *HSM, e *Event) Result {
	switch e.Sig {
	case SigEntry:
		f.record("C2-entry")
		return Handled()
	case SigExit:
		f.record("C2-exit")
		return Handled()
	default:
		return Super(f.stateC1)
	}
}

func TestHSM_InitRunsNestedEntry(t *testing.T) {
	f := &hsmFixture{}
	hsm := NewHSM(f.initial)
	hsm.Init(&Event{Sig: SigInit})

	if !sameState(hsm.State(), f.stateA) {
		t.Fatal("after Init, state should be stateA")
	}
	want := []string{"A-entry"}
	if !equalStrings(f.log, want) {
		t.Fatalf("entry log = %v, want %v", f.log, want)
	}
}

func TestHSM_SiblingTransitionExitsAndEnters(t *testing.T) {
	f := &hsmFixture{}
	hsm := NewHSM(f.initial)
	hsm.Init(&Event{Sig: SigInit})
	f.log = nil

	hsm.Dispatch(&Event{Sig: 100})

	if !sameState(hsm.State(), f.stateB) {
		t.Fatal("after dispatching 100, state should be stateB")
	}
	want := []string{"A-exit", "B-entry"}
	if !equalStrings(f.log, want) {
		t.Fatalf("transition log = %v, want %v", f.log, want)
	}
}

func TestHSM_TransitionIntoNestedState(t *testing.T) {
	f := &hsmFixture{}
	hsm := NewHSM(f.initial)
	hsm.Init(&Event{Sig: SigInit})
	f.log = nil

	hsm.Dispatch(&Event{Sig: 101})

	if !sameState(hsm.State(), f.stateC2) {
		t.Fatal("after dispatching 101, state should be stateC2")
	}
	want := []string{"A-exit", "C1-entry", "C2-entry"}
	if !equalStrings(f.log, want) {
		t.Fatalf("transition log = %v, want %v", f.log, want)
	}
}

func TestHSM_UnhandledClimbsToParent(t *testing.T) {
	f := &hsmFixture{}
	hsm := NewHSM(f.initial)
	hsm.Init(&Event{Sig: SigInit})
	hsm.Dispatch(&Event{Sig: 101}) // -> stateC2

	// stateC2 doesn't handle 300 itself and delegates to stateC1 via
	// Super; stateC1 explicitly returns Unhandled for 300, so nothing
	// should change (no handler above C1 understands 300 either).
	before := hsm.State()
	hsm.Dispatch(&Event{Sig: 300})
	if !sameState(hsm.State(), before) {
		t.Fatal("an event unhandled all the way to Top should not change state")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
