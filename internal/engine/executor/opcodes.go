package executor

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/bytecode"
	"github.com/v4xyz/duktape/internal/esstack"
)

// step executes one decoded instruction. transfer=true tells runLoop a
// non-local transfer was installed into heap.LJ and the Unwinder must
// be consulted; err triggers the same by converting err into a THROW
// first (spec.md §4.5's "Pointer-stability discipline": a case that
// allocates/decrefs/reenters must not use a register pointer taken
// before that step afterward — every case below re-derives act's
// window through the register helper rather than caching a slice).
func step(heap *esstack.Heap, th *esstack.Thread, act *esstack.Activation, fn api.CompiledFunction, dec bytecode.Decoded) (transfer bool, err error) {
	switch dec.Op {
	case bytecode.OpNop:
		return false, nil

	case bytecode.OpLdReg:
		api.StoreValue(register(th, act, dec.A), *register(th, act, dec.B))
		return false, nil
	case bytecode.OpStReg:
		api.StoreValue(register(th, act, dec.B), *register(th, act, dec.A))
		return false, nil
	case bytecode.OpLdConst:
		consts := fn.Consts()
		if dec.BC < 0 || dec.BC >= len(consts) {
			return false, api.NewInternalError("LDCONST index %d out of range", dec.BC)
		}
		api.StoreValue(register(th, act, dec.A), consts[dec.BC])
		return false, nil
	case bytecode.OpLdInt:
		api.StoreValue(register(th, act, dec.A), api.Number(float64(dec.BC)))
		return false, nil
	case bytecode.OpLdIntX:
		cur := register(th, act, dec.A)
		if !cur.IsNumber() {
			return false, api.NewInternalError("LDINTX target register %d is not a number", dec.A)
		}
		api.StoreValue(register(th, act, dec.A), api.Number(cur.AsNumber()*float64(int64(1)<<18)+float64(dec.BC)))
		return false, nil
	case bytecode.OpClosure:
		inner := fn.InnerFunctions()
		if dec.B < 0 || dec.B >= len(inner) {
			return false, api.NewInternalError("CLOSURE template index %d out of range", dec.B)
		}
		closureVal, err := heap.ObjectOps.InstantiateClosure(inner[dec.B], act.LexEnv())
		if err != nil {
			return false, err
		}
		api.StoreValue(register(th, act, dec.A), closureVal)
		return false, nil
	case bytecode.OpLdThis:
		api.StoreValue(register(th, act, dec.A), act.This)
		return false, nil
	case bytecode.OpLdUndef:
		api.StoreValue(register(th, act, dec.A), api.Undefined())
		return false, nil
	case bytecode.OpLdNull:
		api.StoreValue(register(th, act, dec.A), api.Null())
		return false, nil
	case bytecode.OpLdTrue:
		api.StoreValue(register(th, act, dec.A), api.Bool(true))
		return false, nil
	case bytecode.OpLdFalse:
		api.StoreValue(register(th, act, dec.A), api.Bool(false))
		return false, nil

	case bytecode.OpGetVar, bytecode.OpPutVar, bytecode.OpDeclVar, bytecode.OpDelVar:
		return false, stepVar(heap, th, act, fn, dec)

	case bytecode.OpGetProp, bytecode.OpPutProp, bytecode.OpDelProp:
		return stepProp(heap, th, act, dec)

	case bytecode.OpCsReg, bytecode.OpCsRegI, bytecode.OpCsVar, bytecode.OpCsProp, bytecode.OpCsPropI:
		return false, stepCallSetup(heap, th, act, fn, dec)

	case bytecode.OpMPutObj, bytecode.OpMPutObjI, bytecode.OpMPutArr, bytecode.OpMPutArrI,
		bytecode.OpNewObj, bytecode.OpNewArr, bytecode.OpSetALen, bytecode.OpInitSet, bytecode.OpInitGet, bytecode.OpRegexp:
		return false, stepLiteral(heap, th, act, fn, dec)

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod,
		bytecode.OpBAnd, bytecode.OpBOr, bytecode.OpBXor, bytecode.OpBNot,
		bytecode.OpShl, bytecode.OpShr, bytecode.OpUShr,
		bytecode.OpNeg, bytecode.OpPos, bytecode.OpLNot, bytecode.OpInc, bytecode.OpDec:
		return false, stepArith(heap, th, act, dec)

	case bytecode.OpEq, bytecode.OpNEq, bytecode.OpSEq, bytecode.OpSNEq,
		bytecode.OpLT, bytecode.OpLE, bytecode.OpGT, bytecode.OpGE,
		bytecode.OpIn, bytecode.OpInstOf, bytecode.OpTypeOf, bytecode.OpTypeOfID:
		return false, stepCompare(heap, th, act, dec)

	case bytecode.OpIf:
		cond := register(th, act, dec.A).ToBoolean()
		want := dec.B != 0
		if cond == want {
			act.PC++
		}
		return false, nil
	case bytecode.OpJump:
		act.PC += dec.ABC
		return false, nil
	case bytecode.OpBreak:
		heap.LJ.Set(esstack.LJBreak, api.Number(float64(dec.ABC)), api.Undefined(), false)
		return true, nil
	case bytecode.OpContinue:
		heap.LJ.Set(esstack.LJContinue, api.Number(float64(dec.ABC)), api.Undefined(), false)
		return true, nil

	case bytecode.OpCall, bytecode.OpCallI, bytecode.OpNew, bytecode.OpNewI:
		return stepCall(heap, th, act, dec)
	case bytecode.OpReturn:
		var retVal api.Value
		if api.ReturnFlag(dec.C)&api.ReturnFlagHaveValue != 0 {
			retVal = *register(th, act, dec.A)
		} else {
			retVal = api.Undefined()
		}
		heap.LJ.Set(esstack.LJReturn, retVal, api.Undefined(), false)
		return true, nil

	case bytecode.OpLabel, bytecode.OpEndLabel, bytecode.OpTryCatch,
		bytecode.OpEndTry, bytecode.OpEndCatch, bytecode.OpEndFin:
		return stepTryCatch(heap, th, act, fn, dec)

	case bytecode.OpInitEnum, bytecode.OpNextEnum:
		return false, stepEnum(heap, th, act, dec)

	case bytecode.OpInvLhs:
		return false, api.NewReferenceError("invalid left-hand side in assignment")
	case bytecode.OpThrow:
		heap.LJ.Set(esstack.LJThrow, *register(th, act, dec.A), api.Undefined(), true)
		return true, nil

	case bytecode.OpInvalid:
		return false, api.NewInternalError("INVALID opcode executed")
	default:
		return false, api.NewInternalError("impossible opcode %s", dec.Op)
	}
}
