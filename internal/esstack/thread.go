package esstack

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/buildoptions"
)

// ThreadState is one of spec.md §3's five thread states.
type ThreadState uint8

const (
	ThreadInactive ThreadState = iota
	ThreadRunning
	ThreadResumed
	ThreadYielded
	ThreadTerminated
)

func (s ThreadState) String() string {
	switch s {
	case ThreadInactive:
		return "INACTIVE"
	case ThreadRunning:
		return "RUNNING"
	case ThreadResumed:
		return "RESUMED"
	case ThreadYielded:
		return "YIELDED"
	case ThreadTerminated:
		return "TERMINATED"
	default:
		return "INVALID"
	}
}

// Thread owns its three stacks and cooperative-scheduling state
// (spec.md §3).
type Thread struct {
	ValueStack []api.Value
	CallStack  []Activation
	CatchStack []Catcher

	State ThreadState

	// Resumer is the thread that most recently resumed this one; a
	// weak back-reference in spirit (spec.md §9: "even though source
	// treats it as strong because it is guaranteed cleared at thread
	// termination"). Go's GC tolerates the cycle; every path that
	// terminates a thread clears it anyway to match the source's observable behavior.
	Resumer *Thread

	// InitialFunc is the function a Duktape.Thread constructor bound
	// this thread to; the first RESUME of an INACTIVE thread calls it
	// with `undefined` this and the resume payload as its sole argument
	// (spec.md §4.4 RESUME row).
	InitialFunc api.Value

	// InterruptCounter is the executor's hot copy of the heap's
	// interrupt counter (spec.md §3).
	InterruptCounter int

	// id is used only for diagnostics/logging.
	id uint64
}

// callstackTop and friends below give the three stacks a uniform
// "top == length" view; the windowed register view for a given
// activation is valstack[idx_bottom:idx_top].

// CallstackTop is the number of live activations.
func (t *Thread) CallstackTop() int { return len(t.CallStack) }

// CatchstackTop is the number of live catchers.
func (t *Thread) CatchstackTop() int { return len(t.CatchStack) }

// ValstackTop is the number of live value-stack slots.
func (t *Thread) ValstackTop() int { return len(t.ValueStack) }

// TopActivationIndex returns the index of the topmost activation; -1
// if none.
func (t *Thread) TopActivationIndex() int { return len(t.CallStack) - 1 }

// TopActivation returns a pointer to the topmost activation. Callers
// must treat this pointer as invalidated by any subsequent call-stack
// growth or shrink and re-derive it via TopActivation/Activation(idx)
// afterward.
func (t *Thread) TopActivation() *Activation {
	if len(t.CallStack) == 0 {
		return nil
	}
	return &t.CallStack[len(t.CallStack)-1]
}

// Activation returns a pointer to the activation at idx. Same
// pointer-invalidation caveat as TopActivation.
func (t *Thread) Activation(idx int) *Activation { return &t.CallStack[idx] }

// PushActivation grows the call stack by one, enforcing
// buildoptions.CallStackCeiling (spec.md §4.4/§7: exceeding it is an
// api.RangeError, not a host stack overflow, since Ecma-to-Ecma calls
// never recurse the host stack).
func (t *Thread) PushActivation(act Activation) (int, error) {
	if len(t.CallStack) >= buildoptions.CallStackCeiling {
		return 0, api.NewRangeError("call stack overflow")
	}
	t.CallStack = append(t.CallStack, act)
	return len(t.CallStack) - 1, nil
}

// PopActivationsTo truncates the call stack to targetTop activations,
// returning the popped ones in top-to-bottom order so the caller can
// release their function references and environments.
func (t *Thread) PopActivationsTo(targetTop int) []Activation {
	popped := make([]Activation, len(t.CallStack)-targetTop)
	for i := len(t.CallStack) - 1; i >= targetTop; i-- {
		popped[len(t.CallStack)-1-i] = t.CallStack[i]
	}
	t.CallStack = t.CallStack[:targetTop]
	return popped
}

// PushCatcher grows the catch stack by one.
func (t *Thread) PushCatcher(c Catcher) (int, error) {
	t.CatchStack = append(t.CatchStack, c)
	return len(t.CatchStack) - 1, nil
}

// PopCatchersTo truncates the catch stack to targetTop catchers,
// returning the popped ones top-to-bottom.
func (t *Thread) PopCatchersTo(targetTop int) []Catcher {
	popped := make([]Catcher, len(t.CatchStack)-targetTop)
	for i := len(t.CatchStack) - 1; i >= targetTop; i-- {
		popped[len(t.CatchStack)-1-i] = t.CatchStack[i]
	}
	t.CatchStack = t.CatchStack[:targetTop]
	return popped
}

// GrowValstackTo ensures the value stack has at least n live slots,
// zero-filling (Undefined) any new slots, enforcing
// buildoptions.ValueStackCeiling.
func (t *Thread) GrowValstackTo(n int) error {
	if n > buildoptions.ValueStackCeiling {
		return api.NewRangeError("value stack overflow")
	}
	if n <= len(t.ValueStack) {
		return nil
	}
	for len(t.ValueStack) < n {
		t.ValueStack = append(t.ValueStack, api.Undefined())
	}
	return nil
}

// ShrinkValstackTo truncates the value stack to n live slots, DecRef'ing
// every slot dropped (they may be the last reference to an object,
// triggering a reentrant finalizer per spec.md §3).
func (t *Thread) ShrinkValstackTo(n int) {
	for i := n; i < len(t.ValueStack); i++ {
		t.ValueStack[i].DecRef()
	}
	t.ValueStack = t.ValueStack[:n]
}

// Window returns the register window [bottom:top) for an activation.
// Callers must not retain the returned slice across an operation that
// may grow the value stack; re-slice from the Thread afterward.
func (t *Thread) Window(bottom, top int) []api.Value { return t.ValueStack[bottom:top] }

// NewThread allocates an inactive thread.
func NewThread(id uint64) *Thread {
	return &Thread{
		State:            ThreadInactive,
		InterruptCounter: buildoptions.InterruptInitCounter,
		id:               id,
	}
}

// ID returns the thread's diagnostic identifier.
func (t *Thread) ID() uint64 { return t.id }

// threadRef adapts *Thread to api.ObjectRef so it can travel through
// api.Value (spec.md: coroutines are first-class values, e.g.
// `Duktape.Thread.resume`'s target).
type threadRef struct{ t *Thread }

func (r *threadRef) IncRef() {}
func (r *threadRef) DecRef() {}

// ThreadValue wraps a *Thread as an api.Value so it can be carried by
// LongjmpState.Value2 (RESUME) or passed around as an ordinary value.
func ThreadValue(t *Thread) api.Value { return api.Object(&threadRef{t: t}) }

// ThreadFromValue unwraps a Value produced by ThreadValue. ok is false
// if v does not wrap a *Thread.
func ThreadFromValue(v api.Value) (*Thread, bool) {
	if v.Tag() != api.TagObject {
		return nil, false
	}
	tr, ok := v.AsObject().(*threadRef)
	if !ok {
		return nil, false
	}
	return tr.t, true
}
