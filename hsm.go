package qf

// resultKind tags the outcome of a state handler invocation:
// a transition, a request to fall back to a superstate, or an explicit
// handled/unhandled verdict.
type resultKind uint8

const (
	resultHandled resultKind = iota
	resultUnhandled
	resultTran
	resultSuper
)

// Result is returned by every StateHandler. Construct one with Handled,
// Unhandled, Tran or Super rather than building it directly.
type Result struct {
	kind   resultKind
	target StateHandler
}

// Handled reports that the event was consumed with no state change.
func Handled() Result { return Result{kind: resultHandled} }

// Unhandled reports that the state did not recognize the event at all,
// distinct from a deliberate Handled "consumed, no-op": Unhandled events
// percolate further (the dispatcher itself climbs to the superstate;
// state code never needs to call Super for this case).
func Unhandled() Result { return Result{kind: resultUnhandled} }

// Tran requests a transition to target.
func Tran(target StateHandler) Result { return Result{kind: resultTran, target: target} }

// Super reports that this state does not handle the event itself but
// delegates to its superstate, which is target. Super is also how a
// state declares its superstate when handling SigEmpty, which the
// dispatcher uses to walk the state hierarchy.
func Super(target StateHandler) Result { return Result{kind: resultSuper, target: target} }

// StateHandler is one state of a hierarchical state machine: given an
// event, it returns a Result. Passing SigEmpty is how the HSM engine
// queries a state for its superstate (via Super) during hierarchy
// traversal; a top state responds to SigEmpty with Handled(), since it
// has no superstate of its own.
type StateHandler func(hsm *HSM, e *Event) Result

// maxNest bounds the depth of the state hierarchy that entryPath and
// findLCA walk. Both walk iteratively, with no recursion; the paths they
// build are slices, so a transition may allocate.
const maxNest = 8

// Top is the implicit root ancestor of every state hierarchy: it handles
// every signal (including the SigEmpty "what is your superstate" query)
// with Handled(), which is exactly what makes the dispatcher stop
// climbing once it gets here. A top-level user state that has no real
// superstate of its own returns Super(qf.Top).
func Top(hsm *HSM, e *Event) Result { return Handled() }

// HSM is a hierarchical state machine: a current-state
// pointer plus Init/Dispatch, run strictly to completion by its owning
// ActiveObject — HSM itself holds no lock, since only one RTC step is
// ever in flight for a given instance.
type HSM struct {
	state   StateHandler
	initial StateHandler
}

// NewHSM constructs an HSM whose pre-Init state is Top and whose
// topmost initial transition (invoked once by Init) is initial, the
// same way QP/C++'s constructors record an initial pseudostate handler
// (e.g. "Philo::initial") separately from the built-in top state.
func NewHSM(initial StateHandler) *HSM {
	return &HSM{state: Top, initial: initial}
}

// State returns the HSM's current (innermost) active state.
func (h *HSM) State() StateHandler { return h.state }

// Init executes the topmost initial pseudostate transition: dispatches
// ie (conventionally SigInit) to the initial pseudostate handler given
// to NewHSM, which must return Tran
// to the real initial leaf state, then drills down executing every
// nested initial transition and entry action along the way.
func (h *HSM) Init(ie *Event) {
	r := h.initial(h, ie)
	if r.kind != resultTran {
		panic(&ContractViolation{Module: "qf.hsm", Msg: "initial pseudostate must return Tran(target) from Init"})
	}
	h.state = Top
	h.enterTargetAndNestedInits(r.target, ie)
}

// enterTargetAndNestedInits executes entry actions from h.state's
// superstate chain down to target, then follows target's own chain of
// initial transitions (a state may itself return Tran from SigInit),
// repeating until a state returns Handled/Unhandled for SigInit.
func (h *HSM) enterTargetAndNestedInits(target StateHandler, ie *Event) {
	for {
		path := h.entryPath(h.state, target)
		for i := len(path) - 1; i >= 0; i-- {
			path[i](h, &Event{Sig: SigEntry})
		}
		h.state = target

		r := target(h, ie)
		if r.kind != resultTran {
			return
		}
		target = r.target
	}
}

// entryPath returns the chain of states to enter, from target back up to
// (but not including) from, in target-to-outermost order; callers walk it
// in reverse to fire entry actions outermost-first.
func (h *HSM) entryPath(from, target StateHandler) []StateHandler {
	path := make([]StateHandler, 0, maxNest)
	s := target
	for s != nil && !sameState(s, from) {
		path = append(path, s)
		s = h.superOf(s)
		if len(path) > maxNest {
			panic(&ContractViolation{Module: "qf.hsm", Msg: "state nesting exceeds maxNest"})
		}
	}
	return path
}

// superOf queries s for its superstate by dispatching SigEmpty.
func (h *HSM) superOf(s StateHandler) StateHandler {
	r := s(h, &Event{Sig: SigEmpty})
	if r.kind == resultSuper {
		return r.target
	}
	return nil
}

// sameState compares two StateHandler values by identity. Go function
// values are not comparable with ==, so this compares the underlying
// code pointer via reflect instead.
func sameState(a, b StateHandler) bool {
	return funcPtr(a) == funcPtr(b)
}

// Dispatch delivers e to the HSM's current state, walking up the
// superstate chain for any state that returns Unhandled, and executing a
// transition (exit path then entry path then nested inits) for any state
// that returns Tran. Run to completion: Dispatch never
// returns until the whole RTC step, including every nested initial
// transition, is done.
func (h *HSM) Dispatch(e *Event) {
	s := h.state
	for {
		r := s(h, e)
		switch r.kind {
		case resultHandled:
			return
		case resultUnhandled:
			sup := h.superOf(s)
			if sup == nil {
				return // top state ignored it; nothing left to climb
			}
			s = sup
		case resultSuper:
			sup := r.target
			if sup == nil {
				return
			}
			s = sup
		case resultTran:
			h.transition(s, r.target)
			return
		}
	}
}

// transition executes the exit path from the currently active leaf state
// (h.state) up to the least common ancestor of source (the state whose
// handler actually returned Tran, which may be a superstate still
// further up the chain from h.state) and target, then the entry path
// from that LCA down to target, then any nested initial transitions
// target itself triggers — the same exit-then-enter order as QP/C++'s
// QHsm_exit_/QHsm_tran_.
func (h *HSM) transition(source, target StateHandler) {
	lca := h.findLCA(source, target)

	s := h.state
	for !sameState(s, lca) && s != nil {
		s(h, &Event{Sig: SigExit})
		s = h.superOf(s)
		if s == nil {
			break
		}
	}

	h.state = lca
	h.enterTargetAndNestedInits(target, &Event{Sig: SigInit})
}

// findLCA returns the least common ancestor of from and to in the state
// hierarchy by walking both ancestor chains (each cut off after
// maxNest+1 states) into two slices and scanning for the first common
// entry — the same bounded, non-recursive technique QP/C++ implements
// with two stack arrays.
func (h *HSM) findLCA(from, to StateHandler) StateHandler {
	var fromChain, toChain []StateHandler
	for s := from; s != nil; s = h.superOf(s) {
		fromChain = append(fromChain, s)
		if len(fromChain) > maxNest {
			break
		}
	}
	for s := to; s != nil; s = h.superOf(s) {
		toChain = append(toChain, s)
		if len(toChain) > maxNest {
			break
		}
	}
	for _, f := range fromChain {
		for _, t := range toChain {
			if sameState(f, t) {
				return f
			}
		}
	}
	return Top
}
