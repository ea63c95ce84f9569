// Package duktape is the outbound interface of spec.md §6: a heap
// construction, thread construction, and Execute entry point wired to
// this repository's reference object system (internal/esobject) and
// environment-record implementation (internal/esenv). An embedder
// wanting its own object model instead would call
// internal/engine/executor.NewHeap directly with its own
// api.ObjectOps/api.EnvOps, bypassing this package entirely.
package duktape

import (
	"log/slog"

	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/engine/executor"
	"github.com/v4xyz/duktape/internal/esenv"
	"github.com/v4xyz/duktape/internal/esobject"
	"github.com/v4xyz/duktape/internal/esstack"
)

// Heap is one process-wide (spec.md §3) heap bundled with its default
// collaborators. The zero value is not usable; construct one with
// NewHeap.
type Heap struct {
	heap    *esstack.Heap
	objects *esobject.Ops
}

// NewHeap builds a Heap using this repository's own flat-property-bag
// object system and environment-record chain. logger may be nil.
func NewHeap(logger *slog.Logger) *Heap {
	objects := &esobject.Ops{}
	env := &esenv.Ops{Objects: objects}
	h := executor.NewHeap(objects, env, logger)

	// Wire GetProp/PutProp/ToPrimitive's getter/setter/valueOf/toString
	// invocations back into the executor, mirroring h.SetupInitialCall's
	// indirection for the same import-cycle reason (internal/esobject
	// backs api.ObjectOps and must not import internal/engine/executor,
	// which already imports api).
	objects.Invoke = func(fn, this api.Value, args []api.Value) (api.Value, error) {
		if _, ok := objects.AsCompiledFunction(fn); ok {
			// A getter/setter/valueOf/toString written in Ecma needs a
			// full run of the executor's main loop. It gets its own
			// thread rather than growing the caller's, since this call
			// did not originate from a CALL opcode on that thread and so
			// has no register window to resume into afterward; heap's
			// current-thread pointer is saved and restored around the
			// call so the interrupted Execute resumes on the right
			// thread once this nested one completes.
			saved := h.CurrentThread
			nested := h.NewThread()
			result, err := executor.Execute(h, nested, fn, this, args)
			h.CurrentThread = saved
			return result, err
		}
		return objects.HandleCall(fn, this, args, 0)
	}

	return &Heap{heap: h, objects: objects}
}

// NewThread allocates a new inactive thread owned by this heap (spec.md
// §3's Thread, spec.md §6's outbound NewThread).
func (h *Heap) NewThread() *esstack.Thread { return h.heap.NewThread() }

// NewFunction instantiates a callable function object from a
// hand-assembled or externally-compiled api.CompiledFunction (spec.md
// §6's CLOSURE-adjacent construction path, exposed here since this
// repository has no parser/compiler of its own — spec.md §1's explicit
// non-goal).
func (h *Heap) NewFunction(fn api.CompiledFunction) (api.Value, error) {
	return h.objects.InstantiateClosure(fn, nil)
}

// NewGlobalObject creates a fresh empty object usable as a thread's
// global object, e.g. passed to internal/esenv.Ops.GlobalObject by an
// embedder that wants `var` declarations at top level to land as
// properties of a real object instead of this package's default
// implicit declarative global.
func (h *Heap) NewGlobalObject() (api.Value, error) {
	return h.objects.NewObject()
}

// Execute runs fn to completion as a new top-level activation on th
// (spec.md §6's outbound Execute), returning its result or an
// *api.ScriptError/*api.RangeError/*api.ReferenceError/*api.InternalError
// describing an uncaught failure.
func Execute(h *Heap, th *esstack.Thread, fn api.Value, thisArg api.Value, args ...api.Value) (api.Value, error) {
	return executor.Execute(h.heap, th, fn, thisArg, args)
}

// NewCoroutine allocates an INACTIVE thread bound to fn (spec.md §3/
// §4.4's coroutine): the first RESUME targeting it runs fn as its entry
// activation, receiving the resume payload as its sole argument.
func (h *Heap) NewCoroutine(fn api.Value) api.Value {
	th := h.heap.NewThread()
	th.InitialFunc = fn
	return esstack.ThreadValue(th)
}

// NewYieldFunction returns a native function implementing spec.md
// §4.4's YIELD: called with a single value, it suspends the calling
// thread and hands that value back to whichever thread resumed it.
// Real duktape exposes this as duk_yield, a host-callable C API
// function rather than a bytecode instruction; this module mirrors
// that by returning an api.TransferRequest that the Ecma-to-Ecma call
// path (internal/engine/executor/call.go's doCall) recognizes and
// converts into the YIELD longjmp instead of an ordinary thrown error.
func (h *Heap) NewYieldFunction() api.Value {
	return esobject.NewNativeFunction("yield", 1, func(this api.Value, args []api.Value) (api.Value, error) {
		var val api.Value
		if len(args) > 0 {
			val = args[0]
		} else {
			val = api.Undefined()
		}
		return api.Value{}, &api.TransferRequest{Kind: api.TransferYield, Value: val}
	})
}

// NewResumeFunction returns a native function implementing spec.md
// §4.4's RESUME: called as resume(thread, value), it transfers control
// to thread (an api.Value produced by NewCoroutine or received from a
// prior YIELD), handing it value as either the INACTIVE entry
// argument or the YIELDED thread's pending result. See
// NewYieldFunction for why this is a native function rather than an
// opcode.
func (h *Heap) NewResumeFunction() api.Value {
	return esobject.NewNativeFunction("resume", 2, func(this api.Value, args []api.Value) (api.Value, error) {
		if len(args) == 0 {
			return api.Value{}, api.NewInternalError("resume requires a thread argument")
		}
		if _, ok := esstack.ThreadFromValue(args[0]); !ok {
			return api.Value{}, api.NewInternalError("resume's first argument is not a thread")
		}
		var val api.Value
		if len(args) > 1 {
			val = args[1]
		} else {
			val = api.Undefined()
		}
		return api.Value{}, &api.TransferRequest{Kind: api.TransferResume, Value: val, Target: args[0]}
	})
}
