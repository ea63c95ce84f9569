// Package executor implements the Opcode Dispatcher and Call &
// Coroutine Setup of spec.md §4.4/§4.5: the decode/execute/pc-update
// main loop, Ecma-to-Ecma call fast path, tail-call folding,
// bound-function flattening, and the resume/yield thread switch. It is
// grounded on the shape of the teacher's interpreter.callNativeFunc
// main loop — a single Go stack frame hosting an inner for-loop with a
// deferred recover() boundary — generalized from WebAssembly's
// stack-machine operand stack to this module's windowed-register
// activation model.
package executor

import (
	"log/slog"

	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/buildoptions"
	"github.com/v4xyz/duktape/internal/bytecode"
	"github.com/v4xyz/duktape/internal/esdebug"
	"github.com/v4xyz/duktape/internal/esstack"
	"github.com/v4xyz/duktape/internal/unwind"
)

// NewHeap builds a Heap wired so that RESUME on an INACTIVE thread can
// trigger an Ecma call setup without internal/unwind importing this
// package (see esstack.Heap.SetupInitialCall's doc comment).
func NewHeap(objectOps api.ObjectOps, envOps api.EnvOps, logger *slog.Logger) *esstack.Heap {
	h := esstack.NewHeap(objectOps, envOps, logger)
	h.SetupInitialCall = func(th *esstack.Thread, fn api.Value, thisArg api.Value, args []api.Value) error {
		_, err := pushEcmaCall(h, th, fn, thisArg, args, false)
		return err
	}
	return h
}

// Execute runs fn to completion as a brand-new top-level activation on
// th (spec.md §6's outbound Execute). th must be INACTIVE or already
// own no activations; Execute pushes the initial call, runs the main
// loop until the entry activation returns, and converts an uncaught
// throw into an *api.ScriptError.
//
// A panic escaping user-supplied collaborator code (ObjectOps/EnvOps)
// that is not an api error is recovered at this boundary and reported
// as an api.InternalError, matching the teacher's own call-boundary
// recover() pattern.
func Execute(heap *esstack.Heap, th *esstack.Thread, fn api.Value, thisArg api.Value, args []api.Value) (result api.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = api.NewInternalError("panic in executor: %v", e)
				return
			}
			err = api.NewInternalError("panic in executor: %v", r)
		}
	}()

	heap.CurrentThread = th
	th.State = esstack.ThreadRunning
	entryCallstackIndex, err := pushEcmaCall(heap, th, fn, thisArg, args, false)
	if err != nil {
		return api.Value{}, err
	}

	return runLoop(heap, th, entryCallstackIndex)
}

// runLoop is the main decode/execute loop of spec.md §4.5. It never
// recurses the Go stack for an Ecma-to-Ecma call (pushEcmaCall grows
// th's own stacks instead); it recurses only for a native/host call via
// ObjectOps.HandleCall, matching spec.md §4.4's "this is the one
// controlled place the executor may use host stack recursion".
func runLoop(heap *esstack.Heap, entryThread *esstack.Thread, entryCallstackIndex int) (api.Value, error) {
	th := entryThread

	for {
		act := th.Activation(th.TopActivationIndex())
		fn := act.Compiled

		if th.InterruptCounter--; th.InterruptCounter <= 0 {
			th.InterruptCounter = interruptReloadValue()
			if heap.InterruptHook != nil {
				if err := heap.InterruptHook(th); err != nil {
					val, convErr := errorValue(heap, err)
					if convErr != nil {
						return api.Value{}, convErr
					}
					heap.LJ.Set(esstack.LJThrow, val, api.Undefined(), true)
					res := unwind.Dispatch(heap, entryThread, entryCallstackIndex)
					switch res.Outcome {
					case unwind.Finished:
						return res.ReturnValue, nil
					case unwind.Rethrow:
						return api.Value{}, augmentUncaught(th, res.Err)
					}
					th = heap.CurrentThread
					continue
				}
			}
		}

		code := fn.Code()
		if act.PC < 0 || act.PC >= len(code) {
			return api.Value{}, api.NewInternalError("pc %d out of range for function %q", act.PC, fn.Name())
		}
		ins := code[act.PC]
		act.PC++
		dec := bytecode.Decode(ins)

		transfer, execErr := step(heap, th, act, fn, dec)
		if execErr != nil {
			val, convErr := errorValue(heap, execErr)
			if convErr != nil {
				return api.Value{}, convErr
			}
			heap.LJ.Set(esstack.LJThrow, val, api.Undefined(), true)
			transfer = true
		}

		if !transfer {
			continue
		}

		res := unwind.Dispatch(heap, entryThread, entryCallstackIndex)
		switch res.Outcome {
		case unwind.Finished:
			return res.ReturnValue, nil
		case unwind.Rethrow:
			return api.Value{}, augmentUncaught(th, res.Err)
		case unwind.Restart:
			th = heap.CurrentThread
			continue
		default:
			return api.Value{}, api.NewInternalError("unwinder returned unknown outcome %d", res.Outcome)
		}
	}
}

// errorValue unwraps an *api.ScriptError back to its carried value (a
// script-level throw re-entering the longjmp machinery, e.g. from a
// getter called during GETPROP), or builds an Error object of the
// matching ES5 class for one of the executor's own typed errors.
func errorValue(heap *esstack.Heap, err error) (api.Value, error) {
	switch e := err.(type) {
	case *api.ScriptError:
		return e.Value, nil
	case *api.RangeError:
		return heap.ObjectOps.NewError("RangeError", e.Message)
	case *api.ReferenceError:
		return heap.ObjectOps.NewError("ReferenceError", e.Message)
	case *api.InternalError:
		return heap.ObjectOps.NewError("Error", e.Message)
	default:
		return heap.ObjectOps.NewError("Error", err.Error())
	}
}

func interruptReloadValue() int { return buildoptions.InterruptInitCounter }

// augmentUncaught attaches a call-stack trace to an uncaught script
// error before it leaves Execute. dispatchThrow returns Rethrow for the
// entry thread only once every catcher on it has been checked and none
// matched, at which point th's call stack is still exactly as it stood
// at the throw (no catcher fired, so nothing has unwound it yet) —
// this is the one moment the trace can still be captured.
func augmentUncaught(th *esstack.Thread, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*api.ScriptError); !ok {
		return err
	}
	if th.TopActivationIndex() < 0 {
		return err
	}
	return esdebug.CaptureStack(th).FromRecovered(err)
}
