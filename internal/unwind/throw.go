package unwind

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/esstack"
)

// dispatchThrow implements spec.md §4.3's THROW row. done=false means
// the caller should loop Dispatch again (the error propagated to a
// resumer thread and must be redispatched there).
func dispatchThrow(heap *esstack.Heap, entryThread *esstack.Thread, entryCallstackIndex int) (Result, bool) {
	th := heap.CurrentThread
	floor := 0
	if th == entryThread {
		floor = entryCallstackIndex
	}

	for i := th.CatchstackTop() - 1; i >= 0; i-- {
		c := th.CatchStack[i]
		if c.CallstackIndex < floor {
			break
		}
		if c.Type != esstack.CatcherTCF {
			continue
		}
		switch {
		case c.HasFlag(esstack.CatchEnabled):
			if err := installCompletionAndUnwind(heap, th, i, &c, esstack.LJThrow, 0); err != nil {
				return Result{Outcome: Rethrow, Err: err}, true
			}
			if c.HasFlag(esstack.CatchBinding) {
				act := th.Activation(c.CallstackIndex)
				saved, err := heap.EnvOps.PushCatchBinding(act, c.VarName, heap.LJ.Value1)
				if err != nil {
					return Result{Outcome: Rethrow, Err: err}, true
				}
				c.SavedLexEnv = saved
				c.SetFlag(esstack.LexEnvActive)
			}
			c.ClearFlag(esstack.CatchEnabled)
			th.CatchStack[i] = c
			return restart(heap), true

		case c.HasFlag(esstack.FinallyEnabled):
			if err := installCompletionAndUnwind(heap, th, i, &c, esstack.LJThrow, 1); err != nil {
				return Result{Outcome: Rethrow, Err: err}, true
			}
			c.ClearFlag(esstack.FinallyEnabled)
			th.CatchStack[i] = c
			return restart(heap), true
		}
	}

	if th == entryThread {
		errVal := heap.LJ.Value1
		heap.LJ.Clear()
		return Result{Outcome: Rethrow, Err: &api.ScriptError{Value: errVal}}, true
	}

	// Not caught anywhere on this thread: terminate it and propagate
	// the throw to its resumer (spec.md §4.3 THROW row, final clause).
	resumer := th.Resumer
	th.State = esstack.ThreadTerminated
	th.Resumer = nil
	heap.CurrentThread = resumer
	errVal := heap.LJ.Value1
	heap.LJ.Set(esstack.LJThrow, errVal, api.Undefined(), true)
	return Result{}, false
}

// installCompletionAndUnwind writes the caught value and a completion-
// type code into the catcher's two reserved registers, unwinds the
// call stack down to the catcher's owning activation, resets that
// activation's pc to pcBase+pcOffset, and trims the catchstack down to
// (and including) the matched catcher at index i. Shared by THROW/
// RETURN/BREAK/CONTINUE's catch- and finally-capture paths (they all
// "same mechanism as above" per spec.md §4.3): a catch clause resumes
// at the catcher's pc_base (pcOffset 0), a finally clause at
// pc_base+1 (pcOffset 1) so it can fall through to the re-throw/
// re-transfer code emitted right after the finally block.
//
// The catchstack trim matters whenever the matched catcher isn't the
// topmost one: an inner try/catch whose own catch (or finally) body
// raises a second transfer leaves its now-fully-consumed catcher
// sitting above whatever outer catcher ends up matching that second
// transfer. Without popping back to i+1 here, that stale inner entry
// would still be on top of the catchstack once control resumes in the
// outer catcher's body, so the next ENDCATCH/ENDFIN/BREAK/CONTINUE
// dispatch would operate on it instead of the catcher actually open.
func installCompletionAndUnwind(heap *esstack.Heap, th *esstack.Thread, i int, c *esstack.Catcher, completion esstack.LongjmpType, pcOffset int) error {
	popped := th.PopActivationsTo(c.CallstackIndex + 1)
	releaseActivations(popped)

	act := th.Activation(c.CallstackIndex)
	if err := th.GrowValstackTo(c.IdxBase + 2); err != nil {
		return err
	}
	api.StoreValue(&th.ValueStack[c.IdxBase], heap.LJ.Value1)
	api.StoreValue(&th.ValueStack[c.IdxBase+1], api.Number(float64(completion)))
	th.ShrinkValstackTo(act.IdxBottom + act.NumRegisters())

	act.PC = c.PCBase + pcOffset
	th.PopCatchersTo(i + 1)
	return nil
}
