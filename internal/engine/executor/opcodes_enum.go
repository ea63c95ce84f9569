package executor

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/bytecode"
	"github.com/v4xyz/duktape/internal/esstack"
)

// nullEnumerator is the sentinel INITENUM installs for a null/undefined
// target (spec.md §4.5: "null/undefined yields a sentinel null
// enumerator" rather than an error, matching `for (x in null)` running
// zero iterations instead of throwing).
var nullEnumerator = api.Undefined()

// stepEnum implements INITENUM/NEXTENUM (spec.md §4.5 "Iteration").
// INITENUM builds an enumerator object over reg[b] into reg[a];
// NEXTENUM advances it: on success it writes the next key into reg[a]
// and skips the following instruction (typically a JUMP out of the
// loop, meant only for the exhausted case); on exhaustion it leaves pc
// alone and falls straight into that instruction.
func stepEnum(heap *esstack.Heap, th *esstack.Thread, act *esstack.Activation, dec bytecode.Decoded) error {
	switch dec.Op {
	case bytecode.OpInitEnum:
		target := *register(th, act, dec.B)
		if target.IsNullOrUndefined() {
			api.StoreValue(register(th, act, dec.A), nullEnumerator)
			return nil
		}
		enumerator, err := heap.ObjectOps.Enumerate(target, api.EnumFlags(0))
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), enumerator)
		return nil

	case bytecode.OpNextEnum:
		enumerator := *register(th, act, dec.B)
		if enumerator.IsUndefined() {
			return nil // sentinel null enumerator: immediately exhausted.
		}
		key, _, ok, err := heap.ObjectOps.EnumNext(enumerator, false)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		api.StoreValue(register(th, act, dec.A), key)
		act.PC++ // skip the exhausted-case JUMP slot only on a live key.
		return nil

	default:
		return api.NewInternalError("stepEnum called with non-enumeration opcode %s", dec.Op)
	}
}
