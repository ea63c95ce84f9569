package executor

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/bytecode"
	"github.com/v4xyz/duktape/internal/esstack"
)

// stepCall implements CALL/CALLI/NEW/NEWI (spec.md §4.5 "Function
// control"): dec.A is the base register (or, for the *I indirect
// twins, the register holding the real base register number — used
// once a function's register count exceeds the 8-bit a field), dec.B
// is the argument count, dec.C carries the CallFlag bits.
func stepCall(heap *esstack.Heap, th *esstack.Thread, act *esstack.Activation, dec bytecode.Decoded) (bool, error) {
	baseReg := dec.A
	if dec.Op == bytecode.OpCallI || dec.Op == bytecode.OpNewI {
		baseReg = int(register(th, act, dec.A).AsNumber())
	}

	flags := api.CallFlags(dec.C)
	if dec.Op == bytecode.OpNew || dec.Op == bytecode.OpNewI {
		flags |= api.CallFlagConstruct
	}

	return doCall(heap, th, act, baseReg, dec.B, flags)
}
