package executor

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/esstack"
)

// register returns a pointer to act's register i within th's value
// stack. Callers must not retain it across any step that may grow the
// value stack.
func register(th *esstack.Thread, act *esstack.Activation, i int) *api.Value {
	return &th.ValueStack[act.IdxBottom+i]
}

// doCall implements CALL/CALLI/NEW/NEWI (spec.md §4.5 "Function
// control" and §4.4's Ecma-to-Ecma fast path / bound-function
// flattening / tail-call folding).
//
// baseReg holds [func, this, arg0, ..., argN-1] in act's register
// window; nargs is N. The call's result overwrites register baseReg.
// If flags carries CallFlagTail, a successful Ecma-to-Ecma call reuses
// the current activation's call-stack slot instead of growing it
// (spec.md §4.4: "Ecma-to-Ecma call fast path... tail-call folding").
func doCall(heap *esstack.Heap, th *esstack.Thread, act *esstack.Activation, baseReg, nargs int, flags api.CallFlags) (transfer bool, err error) {
	fn := *register(th, act, baseReg)
	thisArg := *register(th, act, baseReg+1)
	args := make([]api.Value, nargs)
	for i := 0; i < nargs; i++ {
		args[i] = *register(th, act, baseReg+2+i)
	}

	target, boundThis, boundArgs, err := heap.ObjectOps.ResolveBoundChain(fn)
	if err != nil {
		return false, err
	}
	if len(boundArgs) > 0 || target.Tag() != fn.Tag() || (fn.IsObject() && target.AsObject() != fn.AsObject()) {
		// Bound-function flattening (spec.md §4.4): prepend every link's
		// bound arguments in call order and adopt its bound this.
		thisArg = boundThis
		args = append(append([]api.Value{}, boundArgs...), args...)
		fn = target
	}

	if flags&api.CallFlagConstruct != 0 {
		obj, err := heap.ObjectOps.NewObject()
		if err != nil {
			return false, err
		}
		thisArg = obj
	}

	if cfn, ok := heap.ObjectOps.AsCompiledFunction(fn); ok {
		idx := th.TopActivationIndex()
		// spec.md §4.4: a tail call is rejected (falls back to an
		// ordinary push) if the current frame has an active catcher,
		// any prevent_count, or is itself a constructor call.
		tail := flags&api.CallFlagTail != 0 &&
			flags&api.CallFlagConstruct == 0 &&
			act.PreventCount == 0 &&
			!hasActiveCatcher(th, idx)

		idxRetval := act.IdxBottom + baseReg
		if tail {
			// A genuine tail-call reuse discards this activation's own
			// register window along with it, so the callee's eventual
			// return has to land wherever this activation's own RETURN
			// would have: its inherited idx_retval, not a register inside
			// the frame that is about to disappear.
			idxRetval = act.IdxRetval
		}
		_, err := pushEcmaCallCompiled(heap, th, fn, cfn, thisArg, args, idxRetval, tail)
		if err != nil {
			return false, err
		}
		// The caller's register window shrank or stayed the same size
		// underneath a tail call reusing its slot; either way the next
		// main-loop iteration re-derives act/fn/bcode from
		// heap.CurrentThread, so no further action is needed here.
		return false, nil
	}

	heap.CallRecursionDepth++
	defer func() { heap.CallRecursionDepth-- }()
	if heap.CallRecursionDepth > callRecursionCeiling {
		return false, api.NewRangeError("native call recursion too deep")
	}

	result, err := heap.ObjectOps.HandleCall(fn, thisArg, args, flags)
	if err != nil {
		if tr, ok := err.(*api.TransferRequest); ok {
			// This CALL will not resolve synchronously like an ordinary
			// native call: remember where its result belongs so the
			// matching YIELD/RESUME on the other side of the switch can
			// write it there once it is known, however many activations
			// later that turns out to be.
			act.CallRetvalIdx = act.IdxBottom + baseReg
			return true, dispatchTransferRequest(heap, tr)
		}
		return false, err
	}
	api.StoreValue(register(th, act, baseReg), result)
	return false, nil
}

// dispatchTransferRequest installs the longjmp state a native
// yield/resume function requested (see api.TransferRequest) so the
// caller's transfer=true return routes it straight into
// internal/unwind.Dispatch on the next runLoop iteration, exactly like
// a THROW/RETURN/BREAK/CONTINUE opcode would.
func dispatchTransferRequest(heap *esstack.Heap, tr *api.TransferRequest) error {
	switch tr.Kind {
	case api.TransferYield:
		heap.LJ.Set(esstack.LJYield, tr.Value, api.Undefined(), tr.IsError)
	case api.TransferResume:
		heap.LJ.Set(esstack.LJResume, tr.Value, tr.Target, tr.IsError)
	default:
		return api.NewInternalError("unknown transfer request kind %d", tr.Kind)
	}
	return nil
}

// hasActiveCatcher reports whether activation idx has any open catcher
// of its own (try/catch/finally or a label site), which would be left
// dangling by a tail call reusing that activation's call-stack slot in
// place. Catchers are pushed in non-decreasing CallstackIndex order, so
// the scan can stop as soon as it passes below idx.
func hasActiveCatcher(th *esstack.Thread, idx int) bool {
	for i := th.CatchstackTop() - 1; i >= 0; i-- {
		c := th.CatchStack[i]
		if c.CallstackIndex < idx {
			return false
		}
		if c.CallstackIndex == idx {
			return true
		}
	}
	return false
}

// callRecursionCeiling bounds native→Ecma→native recursion chains that
// never pass through the Ecma-to-Ecma fast path (spec.md §3's
// call_recursion_depth field); set generously above any plausible
// legitimate nesting.
const callRecursionCeiling = 2000

// pushEcmaCall sets up a brand-new top-level activation (not a tail
// call): used by Execute's initial call and by a RESUME targeting an
// INACTIVE thread (esstack.Heap.SetupInitialCall).
func pushEcmaCall(heap *esstack.Heap, th *esstack.Thread, fn api.Value, thisArg api.Value, args []api.Value, tail bool) (int, error) {
	cfn, ok := heap.ObjectOps.AsCompiledFunction(fn)
	if !ok {
		return 0, api.NewInternalError("RESUME/Execute target is not an Ecma function")
	}
	return pushEcmaCallCompiled(heap, th, fn, cfn, thisArg, args, -1, tail)
}

// pushEcmaCallCompiled is the shared Ecma call setup (spec.md §4.4):
// build the callee's function environment, bind its register window's
// formal-parameter slots, and either push a fresh activation or reuse
// the caller's slot in place (tail call). idxRetval is the absolute
// value-stack index the eventual RETURN should write into; -1 means
// "no caller" (the entry call, whose result instead completes Execute
// via the Unwinder's Finished outcome).
func pushEcmaCallCompiled(heap *esstack.Heap, th *esstack.Thread, fn api.Value, cfn api.CompiledFunction, thisArg api.Value, args []api.Value, idxRetval int, tail bool) (int, error) {
	nregs := cfn.NumRegisters()

	var idx int
	var err error
	if tail && th.CallstackTop() > 0 {
		idx = th.TopActivationIndex()
		old := th.Activation(idx)
		old.Func.DecRef()
		th.ShrinkValstackTo(old.IdxBottom)
	} else {
		idx, err = th.PushActivation(esstack.Activation{})
		if err != nil {
			return 0, err
		}
	}

	act := th.Activation(idx)
	idxBottom := th.ValstackTop()
	if err := th.GrowValstackTo(idxBottom + nregs); err != nil {
		return 0, err
	}

	fn.IncRef()
	*act = esstack.Activation{
		Func:      fn,
		Compiled:  cfn,
		This:      thisArg,
		IdxBottom: idxBottom,
		IdxRetval: idxRetval,
	}
	act.SetStrict(cfn.Strict())

	for i := 0; i < nregs; i++ {
		if i < len(args) {
			api.StoreValue(&th.ValueStack[idxBottom+i], args[i])
		}
	}

	parentEnv, _ := heap.ObjectOps.ClosureEnv(fn)
	lexEnv, varEnv, err := heap.EnvOps.NewFunctionEnvironment(fn, parentEnv)
	if err != nil {
		return 0, err
	}
	act.SetLexEnv(lexEnv)
	act.SetVarEnv(varEnv)
	if err := heap.EnvOps.InitActivationEnvironmentRecordsDelayed(act); err != nil {
		return 0, err
	}

	return idx, nil
}
