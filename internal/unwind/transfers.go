package unwind

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/esstack"
)

// dispatchReturn implements spec.md §4.3's RETURN row: pop catchers and
// activations down to (and including) any finally blocks that must run
// first, or all the way to the caller if none intervene.
func dispatchReturn(heap *esstack.Heap, entryThread *esstack.Thread, entryCallstackIndex int) Result {
	th := heap.CurrentThread
	floor := 0
	if th == entryThread {
		floor = entryCallstackIndex
	}
	// Only the returning activation's own finally blocks capture a
	// RETURN; its callers' catchers are left alone.
	if top := th.TopActivationIndex(); top > floor {
		floor = top
	}

	for i := th.CatchstackTop() - 1; i >= 0; i-- {
		c := th.CatchStack[i]
		if c.CallstackIndex < floor {
			break
		}
		if c.Type != esstack.CatcherTCF || !c.HasFlag(esstack.FinallyEnabled) {
			continue
		}
		if err := installCompletionAndUnwind(heap, th, i, &c, esstack.LJReturn, 1); err != nil {
			return Result{Outcome: Rethrow, Err: err}
		}
		c.ClearFlag(esstack.FinallyEnabled)
		th.CatchStack[i] = c
		return restart(heap)
	}

	retVal := heap.LJ.Value1
	act := th.Activation(th.TopActivationIndex())
	retvalIdx := act.IdxRetval

	popped := th.PopActivationsTo(th.TopActivationIndex())
	releaseActivations(popped)
	th.PopCatchersTo(floorCatchersFor(th, th.CallstackTop()))

	if th == entryThread && th.CallstackTop() <= entryCallstackIndex {
		heap.LJ.Clear()
		return Result{Outcome: Finished, ReturnValue: retVal}
	}

	if th.CallstackTop() == 0 {
		return finishThreadWithValue(heap, th, retVal)
	}

	callerAct := th.Activation(th.TopActivationIndex())
	if err := th.GrowValstackTo(retvalIdx + 1); err != nil {
		return Result{Outcome: Rethrow, Err: err}
	}
	api.StoreValue(&th.ValueStack[retvalIdx], retVal)
	th.ShrinkValstackTo(callerAct.IdxBottom + callerAct.NumRegisters())
	heap.LJ.Clear()
	return Result{Outcome: Restart}
}

// finishThreadWithValue implements the YIELD-less coroutine-return leg
// of spec.md §4.4: a thread's last activation returning hands the value
// back to its resumer as the result of the resume call, rather than to
// a caller on the same thread (there is none left).
func finishThreadWithValue(heap *esstack.Heap, th *esstack.Thread, retVal api.Value) Result {
	resumer := th.Resumer
	th.State = esstack.ThreadTerminated
	th.Resumer = nil
	resumer.State = esstack.ThreadRunning
	heap.CurrentThread = resumer

	act := resumer.TopActivation()
	if err := resumer.GrowValstackTo(act.CallRetvalIdx + 1); err != nil {
		return Result{Outcome: Rethrow, Err: err}
	}
	api.StoreValue(&resumer.ValueStack[act.CallRetvalIdx], retVal)
	heap.LJ.Clear()
	return Result{Outcome: Restart}
}

// floorCatchersFor returns the catch-stack index above which every
// catcher belongs to an activation at or above callstackTop; used after
// popping activations to also drop their now-dangling catchers.
func floorCatchersFor(th *esstack.Thread, callstackTop int) int {
	i := th.CatchstackTop()
	for i > 0 && th.CatchStack[i-1].CallstackIndex >= callstackTop {
		i--
	}
	return i
}

// dispatchBreakContinue implements spec.md §4.3's BREAK/CONTINUE row:
// a finally-enabled catcher found before the target label captures
// first (same installCompletionAndUnwind mechanism THROW/RETURN use,
// with the break/continue's own type code preserved so ENDFIN can
// re-raise it once the finally body finishes); only once none remain
// does the scan look for the nearest enclosing CatcherLabel whose label
// id equals the transfer's label id exactly (label id 0 matches only a
// label catcher with id 0), jump to its target, and pop the catchstack above it. A CONTINUE must leave the
// matched label catcher itself in place, since the loop body will
// re-enter it on the next iteration; a BREAK removes it too, since the
// loop is being exited.
func dispatchBreakContinue(heap *esstack.Heap) Result {
	th := heap.CurrentThread
	labelID := int(heap.LJ.Value1.AsNumber())
	isContinue := heap.LJ.Type == esstack.LJContinue
	completion := esstack.LJBreak
	if isContinue {
		completion = esstack.LJContinue
	}

	for i := th.CatchstackTop() - 1; i >= 0; i-- {
		c := th.CatchStack[i]
		if c.Type == esstack.CatcherTCF && c.HasFlag(esstack.FinallyEnabled) {
			if err := installCompletionAndUnwind(heap, th, i, &c, completion, 1); err != nil {
				return Result{Outcome: Rethrow, Err: err}
			}
			c.ClearFlag(esstack.FinallyEnabled)
			th.CatchStack[i] = c
			return restart(heap)
		}
		if c.Type != esstack.CatcherLabel || c.LabelID != labelID {
			continue
		}

		act := th.Activation(c.CallstackIndex)
		popped := th.PopActivationsTo(c.CallstackIndex + 1)
		releaseActivations(popped)
		th.ShrinkValstackTo(act.IdxBottom + act.NumRegisters())

		keepTop := i
		if isContinue {
			keepTop = i + 1
		}
		th.PopCatchersTo(keepTop)

		if isContinue {
			act.PC = c.PCBase
		} else {
			act.PC = c.PCBase + 1
		}
		return restart(heap)
	}

	return Result{Outcome: Rethrow, Err: api.NewInternalError("unmatched %s target (label %d)", heap.LJ.Type, labelID)}
}

// dispatchYield implements spec.md §4.4's YIELD leg: the current thread
// suspends (YIELDED), its resumer becomes current, and the resumer's
// RESUME call returns the yielded value.
func dispatchYield(heap *esstack.Heap, entryThread *esstack.Thread) (Result, bool) {
	th := heap.CurrentThread
	if th == entryThread || th.Resumer == nil {
		heap.LJ.Clear()
		return Result{Outcome: Rethrow, Err: api.NewInternalError("yield from a thread with no resumer")}, true
	}
	if th.TopActivation() != nil && th.TopActivation().PreventCount > 0 {
		heap.LJ.Clear()
		return Result{Outcome: Rethrow, Err: api.NewRangeError("cannot yield through a native call boundary")}, true
	}

	yieldVal := heap.LJ.Value1
	isErrorYield := heap.LJ.IsError
	resumer := th.Resumer
	th.State = esstack.ThreadYielded
	resumer.State = esstack.ThreadRunning
	heap.CurrentThread = resumer

	if isErrorYield {
		heap.LJ.Set(esstack.LJThrow, yieldVal, api.Undefined(), true)
		return Result{}, false
	}

	act := resumer.TopActivation()
	if err := resumer.GrowValstackTo(act.CallRetvalIdx + 1); err != nil {
		heap.LJ.Clear()
		return Result{Outcome: Rethrow, Err: err}, true
	}
	api.StoreValue(&resumer.ValueStack[act.CallRetvalIdx], yieldVal)
	heap.LJ.Clear()
	return Result{Outcome: Restart}, true
}

// dispatchResume implements spec.md §4.4's RESUME leg: the target
// thread (carried in LJ.Value2 via esstack.ThreadFromValue) becomes
// current. An INACTIVE target gets a fresh Ecma call set up through
// heap.SetupInitialCall (spec.md §4.4's note that resuming a brand new
// thread is, mechanically, an Ecma call); a YIELDED target simply
// resumes where its own YIELD left off, with the resume value installed
// as that YIELD expression's result.
func dispatchResume(heap *esstack.Heap) (Result, bool) {
	target, ok := esstack.ThreadFromValue(heap.LJ.Value2)
	if !ok {
		heap.LJ.Clear()
		return Result{Outcome: Rethrow, Err: api.NewInternalError("RESUME target is not a thread")}, true
	}
	payload := heap.LJ.Value1
	isErrorResume := heap.LJ.IsError

	switch target.State {
	case esstack.ThreadInactive:
		caller := heap.CurrentThread
		target.Resumer = caller
		caller.State = esstack.ThreadResumed
		target.State = esstack.ThreadRunning
		heap.LJ.Clear()
		heap.CurrentThread = target
		if err := heap.SetupInitialCall(target, target.InitialFunc, api.Undefined(), []api.Value{payload}); err != nil {
			heap.CurrentThread = caller
			caller.State = esstack.ThreadRunning
			target.State = esstack.ThreadTerminated
			target.Resumer = nil
			return Result{Outcome: Rethrow, Err: err}, true
		}
		return Result{Outcome: Restart}, true

	case esstack.ThreadYielded:
		caller := heap.CurrentThread
		target.Resumer = caller
		caller.State = esstack.ThreadResumed
		target.State = esstack.ThreadRunning
		heap.CurrentThread = target
		if isErrorResume {
			heap.LJ.Set(esstack.LJThrow, payload, api.Undefined(), true)
			return Result{}, false
		}
		act := target.TopActivation()
		if err := target.GrowValstackTo(act.CallRetvalIdx + 1); err != nil {
			return Result{Outcome: Rethrow, Err: err}, true
		}
		api.StoreValue(&target.ValueStack[act.CallRetvalIdx], payload)
		heap.LJ.Clear()
		return Result{Outcome: Restart}, true

	default:
		heap.LJ.Clear()
		return Result{Outcome: Rethrow, Err: api.NewRangeError("cannot resume a thread in state %s", target.State)}, true
	}
}
