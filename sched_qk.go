package qf

// runQK is the preemptive priority kernel: every registered
// active object runs its RTC steps on its own goroutine, standing in for
// a "one thread/stack per AO" RTOS kernel. A single arbiter (this
// function, on Run's calling goroutine) still decides, each time it is
// free to choose, which AO goes next — always the highest ready priority
// — and hands it exactly one event at a time over runCh/doneCh.
//
// Fidelity note: a real preemptive kernel can interrupt a lower-priority
// task mid-instruction the instant a higher-priority one becomes ready;
// Go has no equivalent of suspending an arbitrary running goroutine
// mid-function. What this scheduler preserves exactly is the priority
// ordering BETWEEN RTC steps: the arbiter always re-evaluates the ready
// set (and so always picks the new highest priority) before granting the
// next step, the same granularity at which a run-to-completion model
// lets preemption actually take effect anyway.
func (fw *Framework) runQK() error {
	var workers []*ActiveObject
	for _, ao := range fw.active {
		if ao == nil {
			continue
		}
		ao.runCh = make(chan *Event)
		ao.doneCh = make(chan struct{})
		workers = append(workers, ao)
		go qkWorker(ao)
	}
	defer func() {
		for _, ao := range workers {
			close(ao.runCh)
		}
	}()

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
		ao.runCh <- e
		<-ao.doneCh
	}
}

// qkWorker is the body of an active object's dedicated goroutine under
// KernelQK: it runs exactly one RTC step per value received on runCh,
// reporting completion on doneCh, until runCh is closed.
func qkWorker(ao *ActiveObject) {
	for e := range ao.runCh {
		ao.dispatchOne(e)
		ao.doneCh <- struct{}{}
	}
}
