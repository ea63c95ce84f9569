package executor

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/bytecode"
	"github.com/v4xyz/duktape/internal/esstack"
)

// stepTryCatch implements LABEL/ENDLABEL/TRYCATCH/ENDTRY/ENDCATCH/
// ENDFIN (spec.md §4.5 "Try/catch/finally"). Every opening opcode
// (LABEL, TRYCATCH) reserves two instruction slots right after itself
// that it skips on the ordinary fallthrough path: the Unwinder resets
// pc to the first slot (catch/continue target) or the second
// (finally/break target) on a matching transfer, and normal execution
// simply runs whatever jump the compiler placed there.
func stepTryCatch(heap *esstack.Heap, th *esstack.Thread, act *esstack.Activation, fn api.CompiledFunction, dec bytecode.Decoded) (bool, error) {
	switch dec.Op {
	case bytecode.OpLabel:
		pcBase := act.PC
		act.PC += 2
		_, err := th.PushCatcher(esstack.Catcher{
			Type:           esstack.CatcherLabel,
			CallstackIndex: th.TopActivationIndex(),
			PCBase:         pcBase,
			LabelID:        dec.ABC,
		})
		return false, err

	case bytecode.OpEndLabel:
		th.PopCatchersTo(th.CatchstackTop() - 1)
		return false, nil

	case bytecode.OpTryCatch:
		flags := bytecode.TryCatchFlag(dec.A)
		pcBase := act.PC
		act.PC += 2

		c := esstack.Catcher{
			Type:           esstack.CatcherTCF,
			CallstackIndex: th.TopActivationIndex(),
			PCBase:         pcBase,
			IdxBase:        act.IdxBottom + dec.C,
		}
		if flags&bytecode.TCFHaveCatch != 0 {
			c.SetFlag(esstack.CatchEnabled)
		}
		if flags&bytecode.TCFHaveFinally != 0 {
			c.SetFlag(esstack.FinallyEnabled)
		}
		if flags&bytecode.TCFCatchBinding != 0 {
			c.SetFlag(esstack.CatchBinding)
			// dec.B names the catch-variable constant; the binding
			// itself is created lazily by the THROW dispatch once an
			// exception actually reaches this catcher.
			name, err := constName(fn, dec.B)
			if err != nil {
				return false, err
			}
			c.VarName = name
		}
		if flags&bytecode.TCFWithBinding != 0 {
			obj := *register(th, act, dec.B)
			saved, err := heap.EnvOps.PushWithBinding(act, obj)
			if err != nil {
				return false, err
			}
			c.SavedLexEnv = saved
			c.SetFlag(esstack.LexEnvActive)
			c.SetFlag(esstack.WithBinding)
		}
		_, err := th.PushCatcher(c)
		return false, err

	case bytecode.OpEndTry:
		return false, endTryPhase(heap, th, esstack.CatchEnabled)

	case bytecode.OpEndCatch:
		idx := th.CatchstackTop() - 1
		if idx < 0 {
			return false, api.NewInternalError("ENDCATCH with no open catcher")
		}
		c := th.CatchStack[idx]
		if c.HasFlag(esstack.LexEnvActive) {
			heap.EnvOps.RestoreLexEnv(act, c.SavedLexEnv)
			c.ClearFlag(esstack.LexEnvActive)
			th.CatchStack[idx] = c
		}
		return false, endTryPhase(heap, th, esstack.CatchEnabled)

	case bytecode.OpEndFin:
		return endFin(heap, th)

	default:
		return false, api.NewInternalError("stepTryCatch called with non-try/catch opcode %s", dec.Op)
	}
}

// endTryPhase clears clearFlag on the topmost catcher (ENDTRY/ENDCATCH
// both close one phase) and, if the catcher has no enabled phase left,
// installs a NORMAL completion so ENDFIN (if a finally follows) or the
// ordinary pop (if it doesn't) behaves uniformly whether this try
// completed straight through or via an already-handled catch.
func endTryPhase(heap *esstack.Heap, th *esstack.Thread, clearFlag esstack.CatcherFlags) error {
	idx := th.CatchstackTop() - 1
	if idx < 0 {
		return api.NewInternalError("ENDTRY/ENDCATCH with no open catcher")
	}
	c := th.CatchStack[idx]
	c.ClearFlag(clearFlag)

	if c.HasFlag(esstack.FinallyEnabled) {
		th.ValueStack[c.IdxBase] = api.Undefined()
		api.StoreValue(&th.ValueStack[c.IdxBase+1], api.Number(float64(esstack.LJNormal)))
		th.CatchStack[idx] = c
		return nil
	}

	th.PopCatchersTo(idx)
	return nil
}

// endFin implements ENDFIN: read the completion installed by whichever
// path ran the finally block (an actual THROW/RETURN/BREAK/CONTINUE
// dispatch via installCompletionAndUnwind, or endTryPhase's NORMAL
// sentinel for an ordinary fallthrough), pop the catcher, and either
// continue normally or re-raise the stored transfer.
func endFin(heap *esstack.Heap, th *esstack.Thread) (bool, error) {
	idx := th.CatchstackTop() - 1
	if idx < 0 {
		return false, api.NewInternalError("ENDFIN with no open catcher")
	}
	c := th.CatchStack[idx]
	value := th.ValueStack[c.IdxBase]
	completion := esstack.LongjmpType(int(th.ValueStack[c.IdxBase+1].AsNumber()))
	th.PopCatchersTo(idx)

	if completion == esstack.LJNormal || completion == esstack.LJUnknown {
		return false, nil
	}
	heap.LJ.Set(completion, value, api.Undefined(), completion == esstack.LJThrow)
	return true, nil
}
