// Package esstack implements the Stack Manager of spec.md §4.2: the
// three parallel per-thread stacks (value stack, call stack of
// activations, catch stack of catchers), their windowed register
// views, and the Heap/Thread/LongjmpState types spec.md §3 defines.
//
// Activation indices, not pointers, are the rule throughout this
// package (spec.md §3: "Pointers into it are invalidated by any growth
// or finalizer-triggering decref"). Callers hold an int index into
// Thread.CallStack/CatchStack/ValueStack across any operation that may
// allocate, decref, or reenter, and re-derive a fresh slice element
// from that index afterward — grounded on the same discipline wazero's
// callEngine applies to its operand stack and frame slice (see
// internal/engine/interpreter's popFrame/pushFrame), generalized here
// from "never needed because WASM has no reentrant finalizers" to
// "required because property access may run a getter that reenters
// the executor".
package esstack

import "github.com/v4xyz/duktape/api"

// Activation is one in-flight function invocation (spec.md §3).
type Activation struct {
	// Func is the callee value: either an Ecma function object
	// (Compiled != nil) or a native function/lightfunc.
	Func     api.Value
	Compiled api.CompiledFunction

	// This is the call's this-binding, read by LDTHIS (ES5 §10.4.3's
	// binding rule is resolved at call-setup time, in
	// internal/engine/executor, not here).
	This api.Value

	// PC is the next instruction index; only meaningful when Compiled
	// != nil.
	PC int

	// IdxBottom is the value-stack index where this activation's
	// register 0 lives; IdxRetval is where the caller expects the
	// return value.
	IdxBottom int
	IdxRetval int

	// CallRetvalIdx is the absolute value-stack index of the register a
	// CALL instruction that turned into a YIELD/RESUME transfer was
	// about to write its result into (spec.md §4.4's coroutine switch).
	// It is distinct from IdxRetval, which names where this activation's
	// own eventual RETURN writes its value in its caller's frame: a CALL
	// to yield()/resume() does not return in place like an ordinary
	// native call, so the register its result belongs in has to be
	// remembered until the matching YIELD/RESUME completes, possibly
	// after other activations above this one have come and gone.
	CallRetvalIdx int

	lexEnv api.EnvRef
	varEnv api.EnvRef

	// PreventCount, when non-zero, disallows yielding through this
	// activation (native frames, constructor calls: spec.md §3).
	PreventCount int

	strict bool
}

// LexEnv implements api.ActivationContext.
func (a *Activation) LexEnv() api.EnvRef { return a.lexEnv }

// VarEnv implements api.ActivationContext.
func (a *Activation) VarEnv() api.EnvRef { return a.varEnv }

// SetLexEnv implements api.ActivationContext.
func (a *Activation) SetLexEnv(e api.EnvRef) { a.lexEnv = e }

// SetVarEnv implements api.ActivationContext.
func (a *Activation) SetVarEnv(e api.EnvRef) { a.varEnv = e }

// Strict implements api.ActivationContext.
func (a *Activation) Strict() bool { return a.strict }

// Callee implements api.ActivationContext.
func (a *Activation) Callee() api.Value { return a.Func }

// SetStrict sets the cached strict-mode flag (read from the compiled
// function, or a native function's declared strictness, at push time).
func (a *Activation) SetStrict(strict bool) { a.strict = strict }

// NumRegisters reports the fixed register count for a compiled
// activation, or zero for a native/lightfunc activation (which has no
// register window).
func (a *Activation) NumRegisters() int {
	if a.Compiled == nil {
		return 0
	}
	return a.Compiled.NumRegisters()
}

var _ api.ActivationContext = (*Activation)(nil)
