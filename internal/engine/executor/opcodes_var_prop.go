package executor

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/bytecode"
	"github.com/v4xyz/duktape/internal/esstack"
)

// constName reads a StringRef out of fn's constant pool at the given
// (biased-then-unbiased) index, the encoding GETVAR/PUTVAR/DECLVAR/
// DELVAR and CSVAR use to name the variable they target.
func constName(fn api.CompiledFunction, idx int) (api.StringRef, error) {
	consts := fn.Consts()
	if idx < 0 || idx >= len(consts) {
		return nil, api.NewInternalError("variable name constant index %d out of range", idx)
	}
	v := consts[idx]
	if v.Tag() != api.TagString {
		return nil, api.NewInternalError("variable name constant index %d is not a string", idx)
	}
	return v.AsString(), nil
}

// stepVar implements GETVAR/PUTVAR/DECLVAR/DELVAR (spec.md §4.5
// "Variable access via environment"): thin wrappers over EnvOps that
// resolve the variable name from fn's constant pool.
func stepVar(heap *esstack.Heap, th *esstack.Thread, act *esstack.Activation, fn api.CompiledFunction, dec bytecode.Decoded) error {
	name, err := constName(fn, dec.BC)
	if err != nil {
		return err
	}

	switch dec.Op {
	case bytecode.OpGetVar:
		val, _, err := heap.EnvOps.GetVar(act, name, true)
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), val)
		return nil
	case bytecode.OpPutVar:
		return heap.EnvOps.PutVar(act, name, *register(th, act, dec.A), act.Strict())
	case bytecode.OpDeclVar:
		flags := api.DeclFlags{
			Prop:          api.PropFlags(dec.A & 0x7),
			UndefinedInit: dec.A&0x8 != 0,
			FunctionDecl:  dec.A&0x10 != 0,
		}
		_, err := heap.EnvOps.DeclVar(act, name, api.Undefined(), flags)
		return err
	case bytecode.OpDelVar:
		ok, err := heap.EnvOps.DelVar(act, name)
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), api.Bool(ok))
		return nil
	default:
		return api.NewInternalError("stepVar called with non-variable opcode %s", dec.Op)
	}
}

// stepProp implements GETPROP/PUTPROP/DELPROP (spec.md §4.5 "Property
// access"): GETPROP and DELPROP read the object from reg[b] and the key
// from reg[c] and write the result into reg[a]; PUTPROP stores reg[c]
// into property reg[b] of object reg[a]. Strict mode governs whether
// PUTPROP/DELPROP on a non-configurable/non-writable property throws.
func stepProp(heap *esstack.Heap, th *esstack.Thread, act *esstack.Activation, dec bytecode.Decoded) (bool, error) {
	switch dec.Op {
	case bytecode.OpGetProp:
		obj := *register(th, act, dec.B)
		key := *register(th, act, dec.C)
		val, err := heap.ObjectOps.GetProp(obj, key)
		if err != nil {
			return false, err
		}
		api.StoreValue(register(th, act, dec.A), val)
		return false, nil
	case bytecode.OpPutProp:
		obj := *register(th, act, dec.A)
		key := *register(th, act, dec.B)
		val := *register(th, act, dec.C)
		if err := heap.ObjectOps.PutProp(obj, key, val, act.Strict()); err != nil {
			return false, err
		}
		return false, nil
	case bytecode.OpDelProp:
		obj := *register(th, act, dec.B)
		key := *register(th, act, dec.C)
		ok, err := heap.ObjectOps.DelProp(obj, key, act.Strict())
		if err != nil {
			return false, err
		}
		api.StoreValue(register(th, act, dec.A), api.Bool(ok))
		return false, nil
	default:
		return false, api.NewInternalError("stepProp called with non-property opcode %s", dec.Op)
	}
}

// stepCallSetup implements CSREG/CSVAR/CSPROP(+indirect) (spec.md §4.5
// "Call setup"): place [func, this] at consecutive registers starting
// at the destination, applying ES5 §10.4.3's this-binding rule per
// addressing mode — declarative binding (CSREG) gets undefined this,
// a variable reference (CSVAR) gets EnvOps.GetVar's thisBinding result
// (non-undefined only when the variable resolved through a with-object
// or similar object environment record), and property access (CSPROP)
// gets the base object as this.
func stepCallSetup(heap *esstack.Heap, th *esstack.Thread, act *esstack.Activation, fn api.CompiledFunction, dec bytecode.Decoded) error {
	dest := dec.A

	switch dec.Op {
	case bytecode.OpCsReg:
		fnVal := *register(th, act, dec.B)
		api.StoreValue(register(th, act, dest), fnVal)
		api.StoreValue(register(th, act, dest+1), api.Undefined())
		return nil
	case bytecode.OpCsRegI:
		// Indirect: dec.A names the register holding the real
		// destination base (spec.md §4.5's "register holding the real
		// index", used when a call's destination exceeds the 8-bit a
		// field).
		dest = int(register(th, act, dec.A).AsNumber())
		fnVal := *register(th, act, dec.B)
		api.StoreValue(register(th, act, dest), fnVal)
		api.StoreValue(register(th, act, dest+1), api.Undefined())
		return nil
	case bytecode.OpCsVar:
		name, err := constName(fn, dec.BC)
		if err != nil {
			return err
		}
		fnVal, thisVal, err := heap.EnvOps.GetVar(act, name, true)
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dest), fnVal)
		api.StoreValue(register(th, act, dest+1), thisVal)
		return nil
	case bytecode.OpCsProp, bytecode.OpCsPropI:
		if dec.Op == bytecode.OpCsPropI {
			// Indirect: same destination rule as CSREGI.
			dest = int(register(th, act, dec.A).AsNumber())
		}
		obj := *register(th, act, dec.B)
		key := *register(th, act, dec.C)
		fnVal, err := heap.ObjectOps.GetProp(obj, key)
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dest), fnVal)
		api.StoreValue(register(th, act, dest+1), obj)
		return nil
	default:
		return api.NewInternalError("stepCallSetup called with non-call-setup opcode %s", dec.Op)
	}
}
