// Package esvalue implements the Value Representation & Arithmetic
// Kernel of spec.md §4.1: the ToNumber/ToInt32/ToUint32/ToPrimitive/
// ToBoolean/ToObject coercions and the arithmetic/bitwise/relational
// operator contracts. Every coercion here except ToBoolean may call
// back into the embedder's ObjectOps and therefore may reenter the
// executor (spec.md §4.1: "Callers must push arguments onto the value
// stack before the call so intermediate values remain reachable by the
// GC" — this package does not itself manage the stack; callers in
// internal/engine/executor are responsible for that push).
package esvalue

import (
	"math"

	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/moremath"
)

// ToPrimitive implements ES5 §9.1 / spec.md §4.1: non-object values are
// already primitive; object values defer to ObjectOps.ToPrimitive,
// which is where a user-defined valueOf/toString may run.
func ToPrimitive(ops api.ObjectOps, v api.Value, hint api.Hint) (api.Value, error) {
	if v.Tag() != api.TagObject {
		return v, nil
	}
	return ops.ToPrimitive(v, hint)
}

// ToNumber implements ES5 §9.3. Booleans/null/undefined convert
// without reentering. Strings and buffers parse through
// ObjectOps.ToNumberFromPrimitive (the embedder owns the numeric
// string grammar). Objects convert via ToPrimitive(HintNumber) first,
// which may run user code, then recurse on the resulting primitive.
func ToNumber(ops api.ObjectOps, v api.Value) (float64, error) {
	switch v.Tag() {
	case api.TagNumber:
		return v.AsNumber(), nil
	case api.TagUndefined:
		return math.NaN(), nil
	case api.TagNull:
		return 0, nil
	case api.TagBoolean:
		if v.AsBool() {
			return 1, nil
		}
		return 0, nil
	case api.TagString, api.TagBuffer:
		return ops.ToNumberFromPrimitive(v)
	case api.TagObject:
		prim, err := ops.ToPrimitive(v, api.HintNumber)
		if err != nil {
			return 0, err
		}
		return ToNumber(ops, prim)
	case api.TagLightFunc:
		return math.NaN(), nil
	default:
		return math.NaN(), nil
	}
}

// ToString implements ES5 §9.8: strings pass through; everything else
// (including objects, via ToPrimitive(HintString) first) is formatted
// by the embedder's ObjectOps.ToString.
func ToString(ops api.ObjectOps, v api.Value) (api.Value, error) {
	if v.Tag() == api.TagString {
		return v, nil
	}
	if v.Tag() == api.TagObject {
		prim, err := ops.ToPrimitive(v, api.HintString)
		if err != nil {
			return api.Value{}, err
		}
		if prim.Tag() == api.TagString {
			return prim, nil
		}
		return ops.ToString(prim)
	}
	return ops.ToString(v)
}

// ToObject implements ES5 §9.9: null/undefined throw a TypeError-class
// script error; everything else boxes through ObjectOps.ToObject. This
// is the only ToObject path, there is no core-level box type.
func ToObject(ops api.ObjectOps, v api.Value) (api.Value, error) {
	if v.IsNullOrUndefined() {
		errVal, err := ops.NewError("TypeError", "cannot convert "+v.Tag().String()+" to object")
		if err != nil {
			return api.Value{}, err
		}
		return api.Value{}, &api.ScriptError{Value: errVal}
	}
	if v.Tag() == api.TagObject {
		return v, nil
	}
	return ops.ToObject(v)
}

// ToBoolean implements ES5 §9.2 (spec.md §4.1: "pure, no side
// effects"). Delegates to api.Value.ToBoolean directly.
func ToBoolean(v api.Value) bool { return v.ToBoolean() }

// ToInt32 implements ES5 §9.5 on top of ToNumber.
func ToInt32(ops api.ObjectOps, v api.Value) (int32, error) {
	n, err := ToNumber(ops, v)
	if err != nil {
		return 0, err
	}
	return moremath.ToInt32(n), nil
}

// ToUint32 implements ES5 §9.6 on top of ToNumber.
func ToUint32(ops api.ObjectOps, v api.Value) (uint32, error) {
	n, err := ToNumber(ops, v)
	if err != nil {
		return 0, err
	}
	return moremath.ToUint32(n), nil
}
