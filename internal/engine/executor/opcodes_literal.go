package executor

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/bytecode"
	"github.com/v4xyz/duktape/internal/esstack"
)

// stepLiteral implements the object/array literal helper family
// (spec.md §4.5 "Object/array literal helpers").
func stepLiteral(heap *esstack.Heap, th *esstack.Thread, act *esstack.Activation, fn api.CompiledFunction, dec bytecode.Decoded) error {
	ops := heap.ObjectOps

	switch dec.Op {
	case bytecode.OpNewObj:
		obj, err := ops.NewObject()
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), obj)
		return nil

	case bytecode.OpNewArr:
		arr, err := ops.NewArray(dec.B)
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), arr)
		return nil

	case bytecode.OpMPutObj, bytecode.OpMPutObjI:
		// reg[a] is the target object; c key/value pairs start at
		// register b (or, for the indirect twin, at the register named
		// by reg[b]).
		base := dec.B
		if dec.Op == bytecode.OpMPutObjI {
			base = int(register(th, act, dec.B).AsNumber())
		}
		kvs := make([]api.KeyValue, dec.C)
		for i := 0; i < dec.C; i++ {
			kvs[i] = api.KeyValue{
				Key:   *register(th, act, base+2*i),
				Value: *register(th, act, base+2*i+1),
			}
		}
		obj := *register(th, act, dec.A)
		return ops.DefineDataProperties(obj, kvs, api.PropConfigurable|api.PropWritable|api.PropEnumerable)

	case bytecode.OpMPutArr, bytecode.OpMPutArrI:
		// reg[a] is the target array; c consecutive values start at
		// register b (or the indirect base named by reg[b]), installed
		// at dense indices starting at 0 (this repository's reference
		// compiler never splits one array literal across multiple
		// MPUTARR instructions the way duktape's can for very large
		// literals; see DESIGN.md).
		base := dec.B
		if dec.Op == bytecode.OpMPutArrI {
			base = int(register(th, act, dec.B).AsNumber())
		}
		values := make([]api.Value, dec.C)
		for i := 0; i < dec.C; i++ {
			values[i] = *register(th, act, base+i)
		}
		obj := *register(th, act, dec.A)
		return ops.DefineArrayIndices(obj, 0, values)

	case bytecode.OpSetALen:
		return ops.SetLength(*register(th, act, dec.A), uint32(dec.BC))

	case bytecode.OpInitGet, bytecode.OpInitSet:
		obj := *register(th, act, dec.A)
		key := *register(th, act, dec.B)
		fnVal := *register(th, act, dec.C)
		var accessor api.Accessor
		if dec.Op == bytecode.OpInitGet {
			accessor.Getter = fnVal
		} else {
			accessor.Setter = fnVal
		}
		return ops.DefineAccessor(obj, key, accessor, api.PropConfigurable|api.PropEnumerable)

	case bytecode.OpRegexp:
		consts := fn.Consts()
		if dec.BC < 0 || dec.BC+1 >= len(consts) {
			return api.NewInternalError("REGEXP constant index %d out of range", dec.BC)
		}
		pattern := consts[dec.BC].AsString().String()
		flags := consts[dec.BC+1].AsString().String()
		re, err := ops.CreateRegexpInstance(pattern, flags)
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), re)
		return nil

	default:
		return api.NewInternalError("stepLiteral called with non-literal opcode %s", dec.Op)
	}
}
