// Command dpp is the dining-philosophers demo: five Philo active objects
// and one Table active object, grounded directly on the original QP/C++
// dpp example's Philo state machine (thinking/hungry/eating) and its
// fork-arbitration Table.
package main

import (
	"math/rand"

	"github.com/lycsqq/qpcpp"
)

const nPhilo = 5

// Signals used by this demo, starting at qf.SigUserFirst.
const (
	sigHungry qf.Signal = qf.SigUserFirst + iota
	sigEat
	sigDone
	sigTimeout
)

// HUNGRY/EAT/DONE each carry the philosopher index as the payload byte of
// a one-byte dynamic event, rather than a dedicated Go struct type: see
// Philo.postTableEvt and Table.tryEat.

func thinkTicks() uint32 { return uint32(rand.Intn(ticksPerSec)) + ticksPerSec/2 }
func eatTicks() uint32   { return uint32(rand.Intn(ticksPerSec)) + ticksPerSec }

const ticksPerSec = 4 // demo tick rate: 4 ticks/sec, matching a typical BSP::TICKS_PER_SEC
