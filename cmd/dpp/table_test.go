package main

import (
	"testing"

	"github.com/lycsqq/qpcpp"
)

// blankPhilo is a placeholder leaf state for the philosopher active
// objects Table posts to in these tests: the tests only care about
// Table's own fork-arbitration bookkeeping (fork/isHungry), not about how
// a philosopher reacts to being granted EAT, so the state itself just
// swallows whatever arrives.
func blankPhilo(hsm *qf.HSM, e *qf.Event) qf.Result {
	switch e.Sig {
	case qf.SigEntry, qf.SigExit:
		return qf.Handled()
	default:
		return qf.Handled()
	}
}

func blankInitial(hsm *qf.HSM, e *qf.Event) qf.Result {
	return qf.Tran(blankPhilo)
}

// newTestTable builds a Table wired to nPhilo real (but inert) philosopher
// active objects, so tryEat/onHungry/onDone can post through a live
// framework exactly like the demo does, without running Philo's own
// thinking/hungry/eating state machine or the Table's own active object.
func newTestTable(t *testing.T) *Table {
	t.Helper()
	fw, err := qf.New(qf.WithMaxActive(nPhilo + 1))
	if err != nil {
		t.Fatalf("qf.New: %v", err)
	}
	if err := fw.PoolInit(qf.NewArena(1, 4*nPhilo), 1); err != nil {
		t.Fatalf("PoolInit: %v", err)
	}

	tbl := &Table{fw: fw}
	for i := 0; i < nPhilo; i++ {
		tbl.philos[i] = fw.Start(uint8(i+1), 4, blankInitial, qf.NewStaticEvent(qf.SigInit))
	}
	return tbl
}

func TestTable_GrantsEatWhenBothForksFree(t *testing.T) {
	tbl := newTestTable(t)

	tbl.onHungry(0)

	if tbl.fork[0] != forkUsed || tbl.fork[1] != forkUsed {
		t.Fatal("onHungry should claim both of philosopher 0's forks when they are free")
	}
	if tbl.isHungry[0] {
		t.Fatal("a granted philosopher should not remain marked hungry")
	}
}

func TestTable_NeighborMustWaitForSharedFork(t *testing.T) {
	tbl := newTestTable(t)

	tbl.onHungry(0) // claims fork[0] and fork[1]
	tbl.onHungry(1) // wants fork[1] (held) and fork[2]: must wait

	if tbl.fork[1] != forkUsed {
		t.Fatal("fork[1] should remain held by philosopher 0")
	}
	if tbl.fork[2] != forkFree {
		t.Fatal("philosopher 1 must not be granted fork[2] while fork[1] is unavailable")
	}
	if !tbl.isHungry[1] {
		t.Fatal("philosopher 1 should be marked hungry while waiting for a shared fork")
	}
}

func TestTable_DoneReleasesForksAndServesWaitingNeighbor(t *testing.T) {
	tbl := newTestTable(t)

	tbl.onHungry(0)
	tbl.onHungry(1) // blocked on fork[1]

	tbl.onDone(0) // philosopher 0 releases fork[0] and fork[1]

	if tbl.fork[0] != forkFree {
		t.Fatal("onDone should free philosopher 0's left fork for its left neighbor")
	}
	if tbl.isHungry[1] {
		t.Fatal("philosopher 1 should be granted EAT (no longer marked hungry) once fork[1] is freed")
	}
	if tbl.fork[1] != forkUsed || tbl.fork[2] != forkUsed {
		t.Fatal("philosopher 1 should now hold both of its forks")
	}
}

func TestTable_MutualExclusionAcrossFullCycle(t *testing.T) {
	tbl := newTestTable(t)

	// every philosopher gets hungry at once; only non-adjacent ones can
	// be granted simultaneously, since each fork is shared by two
	// neighbors (the core dining-philosophers safety property).
	for i := uint8(0); i < nPhilo; i++ {
		tbl.onHungry(i)
	}

	eating := make([]bool, nPhilo)
	for i := uint8(0); i < nPhilo; i++ {
		eating[i] = !tbl.isHungry[i]
	}
	for i := uint8(0); i < nPhilo; i++ {
		if eating[i] && eating[(i+1)%nPhilo] {
			t.Fatalf("philosophers %d and %d are adjacent and must not both be granted their forks", i, (i+1)%nPhilo)
		}
	}
}

func TestTable_OnDoneClearsHungerFlagAndFreesForks(t *testing.T) {
	tbl := newTestTable(t)

	tbl.onHungry(0)
	tbl.onDone(0)

	if tbl.isHungry[0] {
		t.Fatal("onDone should clear the departing philosopher's own hungry flag")
	}
	if tbl.fork[0] != forkFree || tbl.fork[1] != forkFree {
		t.Fatal("onDone should free both of the departing philosopher's forks")
	}
}
