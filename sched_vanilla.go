package qf

// runVanilla is the cooperative scheduler: a single thread of
// control (the goroutine that called Run) repeatedly picks the
// highest-priority ready active object, dispatches exactly one event to
// it, and repeats — falling back to Collaborator.OnIdle whenever the
// ready set is empty. There is no preemption: one RTC step always runs to
// completion before the scheduler looks at the ready set again.
func (fw *Framework) runVanilla() error {
	for {
		if fw.isStopping() {
			return nil
		}

		release := fw.cs.enter()
		prio := fw.ready.findMax()
		if prio == 0 {
			if fw.cfg.collaborator != nil {
				fw.idleRelease = release
				fw.cfg.collaborator.OnIdle(fw)
				fw.ExitIdleCritical()
			} else {
				release()
			}
			continue
		}

		ao := fw.active[prio]
		e := ao.get()
		release()

		if e == nil {
			continue
		}
		ao.dispatchOne(e)
	}
}
