package main

import "github.com/lycsqq/qpcpp"

// Philo is one dining philosopher: thinking -> hungry -> eating -> thinking,
// the same state machine as QP/C++'s dpp example's Philo, driven here by
// a single qf.TimeEvent per philosopher instead of a QTimeEvt member.
type Philo struct {
	ao      *qf.ActiveObject
	num     uint8
	table   *qf.ActiveObject
	timeEvt *qf.TimeEvent
	fw      *qf.Framework
}

func newPhilo(fw *qf.Framework, num uint8, table *qf.ActiveObject) *Philo {
	p := &Philo{num: num, table: table, fw: fw}
	// Register before Init: the initial transition's entry action (see
	// thinking's SigEntry below) arms p.timeEvt immediately, so it must
	// already be bound to p.ao by the time Init runs.
	p.ao = fw.Register(num+1, 8, p.initial)
	p.timeEvt = qf.NewTimeEvent(sigTimeout, p.ao, 0)
	p.ao.Init(qf.NewStaticEvent(qf.SigInit))
	return p
}

// initial is the topmost initial pseudostate, invoked once by HSM.Init,
// the same role QP/C++'s "Philo::initial" constructor-supplied handler
// plays.
func (p *Philo) initial(hsm *qf.HSM, e *qf.Event) qf.Result {
	return qf.Tran(p.thinking)
}

func (p *Philo) thinking(hsm *qf.HSM, e *qf.Event) qf.Result {
	switch e.Sig {
	case qf.SigEntry:
		p.fw.Arm(p.timeEvt, thinkTicks(), 0)
		return qf.Handled()
	case qf.SigExit:
		p.fw.Disarm(p.timeEvt)
		return qf.Handled()
	case sigTimeout:
		return qf.Tran(p.hungry)
	default:
		return qf.Super(qf.Top)
	}
}

func (p *Philo) hungry(hsm *qf.HSM, e *qf.Event) qf.Result {
	switch e.Sig {
	case qf.SigEntry:
		p.postTableEvt(sigHungry)
		return qf.Handled()
	case sigEat:
		return qf.Tran(p.eating)
	default:
		return qf.Super(qf.Top)
	}
}

func (p *Philo) eating(hsm *qf.HSM, e *qf.Event) qf.Result {
	switch e.Sig {
	case qf.SigEntry:
		p.fw.Arm(p.timeEvt, eatTicks(), 0)
		return qf.Handled()
	case qf.SigExit:
		p.fw.Disarm(p.timeEvt)
		p.postTableEvt(sigDone)
		return qf.Handled()
	case sigTimeout:
		return qf.Tran(p.thinking)
	default:
		return qf.Super(qf.Top)
	}
}

// postTableEvt allocates a one-byte dynamic event carrying this
// philosopher's index in its payload and LIFO-posts it to the Table
// active object, mirroring QP/C++'s Q_NEW(TableEvt, SIG); pe->philo =
// me; AO_Table->postLIFO(pe).
func (p *Philo) postTableEvt(sig qf.Signal) {
	ev, ok := p.fw.NewX(1, 0, sig)
	if !ok {
		return
	}
	ev.Data()[0] = p.num
	p.table.PostLIFO(ev)
}
