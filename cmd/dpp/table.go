package main

import "github.com/lycsqq/qpcpp"

// forkState tracks whether one of the shared forks is free or in use.
type forkState uint8

const (
	forkFree forkState = iota
	forkUsed
)

// Table arbitrates the shared forks between the nPhilo philosophers,
// grounded on QP/C++'s dpp example's Table active object: philosopher i
// uses fork[i] and fork[(i+1)%nPhilo]; a HUNGRY philosopher is granted
// EAT immediately if both its forks are free, else marked isHungry and
// revisited whenever a neighbor finishes eating (DONE).
type Table struct {
	ao       *qf.ActiveObject
	fw       *qf.Framework
	fork     [nPhilo]forkState
	isHungry [nPhilo]bool
	philos   [nPhilo]*qf.ActiveObject
}

func newTable(fw *qf.Framework) *Table {
	t := &Table{fw: fw}
	t.ao = fw.Start(nPhilo+1, 2*nPhilo, t.initial, qf.NewStaticEvent(qf.SigInit))
	return t
}

func (t *Table) initial(hsm *qf.HSM, e *qf.Event) qf.Result {
	return qf.Tran(t.serving)
}

// bind records each philosopher's active object, so Table can post EAT
// directly to the philosopher it is granting forks to. Called once
// during demo wiring, before Run starts.
func (t *Table) bind(philos [nPhilo]*Philo) {
	for i, p := range philos {
		t.philos[i] = p.ao
	}
}

func (t *Table) serving(hsm *qf.HSM, e *qf.Event) qf.Result {
	switch e.Sig {
	case sigHungry:
		t.onHungry(e.Data()[0])
		return qf.Handled()
	case sigDone:
		t.onDone(e.Data()[0])
		return qf.Handled()
	default:
		return qf.Super(qf.Top)
	}
}

func (t *Table) leftFork(n uint8) uint8  { return n }
func (t *Table) rightFork(n uint8) uint8 { return (n + 1) % nPhilo }
func (t *Table) leftNeighbor(n uint8) uint8  { return (n + nPhilo - 1) % nPhilo }
func (t *Table) rightNeighbor(n uint8) uint8 { return (n + 1) % nPhilo }

// tryEat grants philosopher n both forks and posts EAT if they are both
// currently free, publishing under the Table AO's own RTC step (so no
// extra locking is needed beyond the framework's critical section inside
// Post). Returns whether n was granted.
func (t *Table) tryEat(n uint8) bool {
	l, r := t.leftFork(n), t.rightFork(n)
	if t.fork[l] != forkFree || t.fork[r] != forkFree {
		return false
	}
	t.fork[l] = forkUsed
	t.fork[r] = forkUsed
	t.isHungry[n] = false

	ev, ok := t.fw.NewX(1, 0, sigEat)
	if ok {
		ev.Data()[0] = n
		t.philos[n].Post(ev, 0)
	}
	return true
}

func (t *Table) onHungry(n uint8) {
	if !t.tryEat(n) {
		t.isHungry[n] = true
	}
}

func (t *Table) onDone(n uint8) {
	l, r := t.leftFork(n), t.rightFork(n)
	t.fork[l] = forkFree
	t.fork[r] = forkFree
	t.isHungry[n] = false

	for _, nb := range [2]uint8{t.leftNeighbor(n), t.rightNeighbor(n)} {
		if t.isHungry[nb] {
			t.tryEat(nb)
		}
	}
}
