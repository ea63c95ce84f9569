package executor

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/bytecode"
	"github.com/v4xyz/duktape/internal/esstack"
	"github.com/v4xyz/duktape/internal/esvalue"
)

// stepArith implements the arithmetic/bitwise/unary opcode family
// (spec.md §4.1/§4.5). Binary ops read reg[b]/reg[c] into reg[a];
// unary ops read reg[b] into reg[a] (reg[c] unused).
func stepArith(heap *esstack.Heap, th *esstack.Thread, act *esstack.Activation, dec bytecode.Decoded) error {
	ops := heap.ObjectOps

	binary := func(f func(api.ObjectOps, api.Value, api.Value) (api.Value, error)) error {
		result, err := f(ops, *register(th, act, dec.B), *register(th, act, dec.C))
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), result)
		return nil
	}
	unary := func(f func(api.ObjectOps, api.Value) (api.Value, error)) error {
		result, err := f(ops, *register(th, act, dec.B))
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), result)
		return nil
	}

	switch dec.Op {
	case bytecode.OpAdd:
		return binary(esvalue.Add)
	case bytecode.OpSub:
		return binary(esvalue.Sub)
	case bytecode.OpMul:
		return binary(esvalue.Mul)
	case bytecode.OpDiv:
		return binary(esvalue.Div)
	case bytecode.OpMod:
		return binary(esvalue.Mod)
	case bytecode.OpBAnd:
		return binary(esvalue.BitAnd)
	case bytecode.OpBOr:
		return binary(esvalue.BitOr)
	case bytecode.OpBXor:
		return binary(esvalue.BitXor)
	case bytecode.OpShl:
		return binary(esvalue.ShiftLeft)
	case bytecode.OpShr:
		return binary(esvalue.ShiftRight)
	case bytecode.OpUShr:
		return binary(esvalue.ShiftRightUnsigned)
	case bytecode.OpBNot:
		return unary(esvalue.BitNot)
	case bytecode.OpNeg:
		return unary(esvalue.Neg)
	case bytecode.OpPos:
		return unary(esvalue.Pos)
	case bytecode.OpLNot:
		api.StoreValue(register(th, act, dec.A), esvalue.Not(*register(th, act, dec.B)))
		return nil
	case bytecode.OpInc:
		result, err := esvalue.Increment(ops, *register(th, act, dec.B))
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), result)
		return nil
	case bytecode.OpDec:
		result, err := esvalue.Decrement(ops, *register(th, act, dec.B))
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), result)
		return nil
	default:
		return api.NewInternalError("stepArith called with non-arithmetic opcode %s", dec.Op)
	}
}

// stepCompare implements EQ/NEQ/SEQ/SNEQ/LT/LE/GT/GE/IN/INSTOF/TYPEOF/
// TYPEOFID (spec.md §4.5 "Arithmetic/bitwise/logical/compare" and
// §4.1's relational-comparison tri-state).
//
// LT/LE/GT/GE pack their evaluation-order and negate bits into dec.BC's
// low two bits (bit 0: CompareRightFirst, bit 1: CompareNegate) so the
// 9-bit b/c operand fields stay free for the two compared registers.
func stepCompare(heap *esstack.Heap, th *esstack.Thread, act *esstack.Activation, dec bytecode.Decoded) error {
	ops := heap.ObjectOps

	switch dec.Op {
	case bytecode.OpEq, bytecode.OpNEq:
		eq, err := esvalue.Equals(ops, *register(th, act, dec.B), *register(th, act, dec.C))
		if err != nil {
			return err
		}
		if dec.Op == bytecode.OpNEq {
			eq = !eq
		}
		api.StoreValue(register(th, act, dec.A), api.Bool(eq))
		return nil
	case bytecode.OpSEq, bytecode.OpSNEq:
		eq := esvalue.StrictEquals(*register(th, act, dec.B), *register(th, act, dec.C))
		if dec.Op == bytecode.OpSNEq {
			eq = !eq
		}
		api.StoreValue(register(th, act, dec.A), api.Bool(eq))
		return nil
	case bytecode.OpLT, bytecode.OpLE, bytecode.OpGT, bytecode.OpGE:
		return stepRelational(ops, th, act, dec)
	case bytecode.OpIn:
		ok, err := ops.In(*register(th, act, dec.B), *register(th, act, dec.C))
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), api.Bool(ok))
		return nil
	case bytecode.OpInstOf:
		ok, err := ops.InstanceOf(*register(th, act, dec.B), *register(th, act, dec.C))
		if err != nil {
			return err
		}
		api.StoreValue(register(th, act, dec.A), api.Bool(ok))
		return nil
	case bytecode.OpTypeOf:
		api.StoreValue(register(th, act, dec.A), api.String(stringConst(ops.TypeOf(*register(th, act, dec.B)))))
		return nil
	case bytecode.OpTypeOfID:
		// TYPEOFID: reg[b] already holds the resolved value (GETVAR with
		// throwOnUnresolved=false having been emitted just before), or
		// the compiler's own unresolved-identifier sentinel; either way
		// typeof itself never throws.
		api.StoreValue(register(th, act, dec.A), api.String(stringConst(ops.TypeOf(*register(th, act, dec.B)))))
		return nil
	default:
		return api.NewInternalError("stepCompare called with non-compare opcode %s", dec.Op)
	}
}

func stepRelational(ops api.ObjectOps, th *esstack.Thread, act *esstack.Activation, dec bytecode.Decoded) error {
	rightFirst := dec.BC&int(bytecode.CompareRightFirst) != 0
	negate := dec.BC&int(bytecode.CompareNegate) != 0

	rel, err := esvalue.LessThan(ops, *register(th, act, dec.B), *register(th, act, dec.C), !rightFirst)
	if err != nil {
		return err
	}

	var result bool
	switch rel {
	case esvalue.RelUndefined:
		result = false // NaN involved: negate must not flip this (spec.md §8).
	case esvalue.RelTrue:
		result = !negate
	case esvalue.RelFalse:
		result = negate
	}
	api.StoreValue(register(th, act, dec.A), api.Bool(result))
	return nil
}

// stringConst is a placeholder StringRef for core-produced constant
// strings ("typeof" results) that never need interning against a
// user-visible string table entry; the embedder's ObjectOps.TypeOf
// already returns a plain Go string, so this just satisfies the
// api.StringRef contract without reference counting.
type stringConstRef string

func (stringConstRef) IncRef()            {}
func (stringConstRef) DecRef()            {}
func (s stringConstRef) String() string   { return string(s) }
func stringConst(s string) api.StringRef  { return stringConstRef(s) }
