package esvalue

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/moremath"
)

// Add implements spec.md §4.1's `+` contract: numeric fast path, else
// ToPrimitive both operands with HintNone, then string-or-buffer wins
// concatenation over numeric add.
func Add(ops api.ObjectOps, a, b api.Value) (api.Value, error) {
	if a.Tag() == api.TagNumber && b.Tag() == api.TagNumber {
		return api.Number(a.AsNumber() + b.AsNumber()), nil
	}
	pa, err := ToPrimitive(ops, a, api.HintNone)
	if err != nil {
		return api.Value{}, err
	}
	pb, err := ToPrimitive(ops, b, api.HintNone)
	if err != nil {
		return api.Value{}, err
	}
	if pa.IsStringOrBuffer() || pb.IsStringOrBuffer() {
		sa, err := ToString(ops, pa)
		if err != nil {
			return api.Value{}, err
		}
		sb, err := ToString(ops, pb)
		if err != nil {
			return api.Value{}, err
		}
		return ops.Concat(sa, sb)
	}
	na, err := ToNumber(ops, pa)
	if err != nil {
		return api.Value{}, err
	}
	nb, err := ToNumber(ops, pb)
	if err != nil {
		return api.Value{}, err
	}
	return api.Number(na + nb), nil
}

// numericBinOp factors the "ToNumber both, combine" shape shared by
// Sub/Mul/Div/Mod.
func numericBinOp(ops api.ObjectOps, a, b api.Value, combine func(x, y float64) float64) (api.Value, error) {
	na, err := ToNumber(ops, a)
	if err != nil {
		return api.Value{}, err
	}
	nb, err := ToNumber(ops, b)
	if err != nil {
		return api.Value{}, err
	}
	return api.Number(combine(na, nb)), nil
}

func Sub(ops api.ObjectOps, a, b api.Value) (api.Value, error) {
	return numericBinOp(ops, a, b, func(x, y float64) float64 { return x - y })
}

func Mul(ops api.ObjectOps, a, b api.Value) (api.Value, error) {
	return numericBinOp(ops, a, b, func(x, y float64) float64 { return x * y })
}

func Div(ops api.ObjectOps, a, b api.Value) (api.Value, error) {
	return numericBinOp(ops, a, b, func(x, y float64) float64 { return x / y })
}

// Mod implements `%` with C fmod semantics (spec.md §4.1, §8).
func Mod(ops api.ObjectOps, a, b api.Value) (api.Value, error) {
	return numericBinOp(ops, a, b, moremath.Fmod)
}

func bitwiseBinOp(ops api.ObjectOps, a, b api.Value, combine func(x, y int32) int32) (api.Value, error) {
	ia, err := ToInt32(ops, a)
	if err != nil {
		return api.Value{}, err
	}
	ib, err := ToInt32(ops, b)
	if err != nil {
		return api.Value{}, err
	}
	// Result expressed as a double, never NaN (spec.md §4.1).
	return api.Number(float64(combine(ia, ib))), nil
}

func BitAnd(ops api.ObjectOps, a, b api.Value) (api.Value, error) {
	return bitwiseBinOp(ops, a, b, func(x, y int32) int32 { return x & y })
}

func BitOr(ops api.ObjectOps, a, b api.Value) (api.Value, error) {
	return bitwiseBinOp(ops, a, b, func(x, y int32) int32 { return x | y })
}

func BitXor(ops api.ObjectOps, a, b api.Value) (api.Value, error) {
	return bitwiseBinOp(ops, a, b, func(x, y int32) int32 { return x ^ y })
}

// BitNot implements unary `~`: ToInt32 then invert.
func BitNot(ops api.ObjectOps, a api.Value) (api.Value, error) {
	ia, err := ToInt32(ops, a)
	if err != nil {
		return api.Value{}, err
	}
	return api.Number(float64(^ia)), nil
}

// shiftCount implements spec.md §4.1: "shift count is ToUint32(rhs) &
// 0x1f".
func shiftCount(ops api.ObjectOps, rhs api.Value) (uint32, error) {
	u, err := ToUint32(ops, rhs)
	if err != nil {
		return 0, err
	}
	return u & 0x1f, nil
}

// ShiftLeft implements `<<`: operates on signed 32-bit, result
// re-masked to 32 bits (spec.md §4.1, §8: (1 << 31) == -2147483648).
func ShiftLeft(ops api.ObjectOps, a, b api.Value) (api.Value, error) {
	ia, err := ToInt32(ops, a)
	if err != nil {
		return api.Value{}, err
	}
	count, err := shiftCount(ops, b)
	if err != nil {
		return api.Value{}, err
	}
	result := int32(uint32(ia) << count)
	return api.Number(float64(result)), nil
}

// ShiftRight implements `>>`: arithmetic (sign-propagating) shift on
// signed 32-bit.
func ShiftRight(ops api.ObjectOps, a, b api.Value) (api.Value, error) {
	ia, err := ToInt32(ops, a)
	if err != nil {
		return api.Value{}, err
	}
	count, err := shiftCount(ops, b)
	if err != nil {
		return api.Value{}, err
	}
	return api.Number(float64(ia >> count)), nil
}

// ShiftRightUnsigned implements `>>>`: logical shift on unsigned
// 32-bit.
func ShiftRightUnsigned(ops api.ObjectOps, a, b api.Value) (api.Value, error) {
	ua, err := ToUint32(ops, a)
	if err != nil {
		return api.Value{}, err
	}
	count, err := shiftCount(ops, b)
	if err != nil {
		return api.Value{}, err
	}
	return api.Number(float64(ua >> count)), nil
}

// Neg implements unary `-x`: ToNumber first.
func Neg(ops api.ObjectOps, a api.Value) (api.Value, error) {
	n, err := ToNumber(ops, a)
	if err != nil {
		return api.Value{}, err
	}
	return api.Number(-n), nil
}

// Pos implements unary `+x`: ToNumber first.
func Pos(ops api.ObjectOps, a api.Value) (api.Value, error) {
	n, err := ToNumber(ops, a)
	if err != nil {
		return api.Value{}, err
	}
	return api.Number(n), nil
}

// Not implements logical `!x`: ToBoolean then complement, side-effect
// free (spec.md §4.1).
func Not(a api.Value) api.Value {
	return api.Bool(!ToBoolean(a))
}

// Increment/Decrement implement `++x`/`--x`'s numeric half (the
// load-store of the target register/variable is the caller's job).
func Increment(ops api.ObjectOps, a api.Value) (api.Value, error) {
	n, err := ToNumber(ops, a)
	if err != nil {
		return api.Value{}, err
	}
	return api.Number(n + 1), nil
}

func Decrement(ops api.ObjectOps, a api.Value) (api.Value, error) {
	n, err := ToNumber(ops, a)
	if err != nil {
		return api.Value{}, err
	}
	return api.Number(n - 1), nil
}
