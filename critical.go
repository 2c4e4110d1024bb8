package qf

import "sync"

// critSection stands in for the interrupt mask of an embedded RTOS
// kernel: a scoped acquisition that serializes every mutation of shared
// framework state (ready set, registration table, subscriber bitsets,
// pool free lists, queue counters, the armed-timer list, event
// reference counts). Re-entrance is not supported — a nested enter
// deadlocks, so callers must respect the non-reentrant discipline,
// exactly like the interrupt-masking critical section it stands in for.
type critSection struct {
	mu sync.Mutex
}

// enter acquires the section and returns the matching release function.
// Callers use it as `defer cs.enter()()`.
func (cs *critSection) enter() func() {
	cs.mu.Lock()
	return cs.mu.Unlock
}
