package esvalue

import "github.com/v4xyz/duktape/api"

// StrictEquals implements ES5 §11.9.6 (the `SEQ`/`SNEQ` opcodes'
// comparison). No coercion, no reentrancy.
func StrictEquals(a, b api.Value) bool {
	if a.Tag() != b.Tag() {
		return false
	}
	switch a.Tag() {
	case api.TagUndefined, api.TagNull:
		return true
	case api.TagNumber:
		return a.AsNumber() == b.AsNumber()
	case api.TagBoolean:
		return a.AsBool() == b.AsBool()
	case api.TagString:
		return a.AsString().String() == b.AsString().String()
	case api.TagObject, api.TagBuffer:
		return a.AsObject() == b.AsObject()
	case api.TagLightFunc:
		// Go func values are not comparable; two lightfuncs are never
		// strictly equal even when they wrap identical behavior.
		return false
	default:
		return false
	}
}

// Equals implements ES5 §11.9.3, the abstract equality comparison
// (`EQ`/`NEQ`). May reenter via ToPrimitive/ToNumber on mismatched
// operand types.
func Equals(ops api.ObjectOps, a, b api.Value) (bool, error) {
	at, bt := a.Tag(), b.Tag()
	if at == bt {
		return StrictEquals(a, b), nil
	}
	if (at == api.TagNull && bt == api.TagUndefined) || (at == api.TagUndefined && bt == api.TagNull) {
		return true, nil
	}
	if at == api.TagNumber && bt == api.TagString {
		nb, err := ToNumber(ops, b)
		if err != nil {
			return false, err
		}
		return a.AsNumber() == nb, nil
	}
	if at == api.TagString && bt == api.TagNumber {
		na, err := ToNumber(ops, a)
		if err != nil {
			return false, err
		}
		return na == b.AsNumber(), nil
	}
	if at == api.TagBoolean {
		na, err := ToNumber(ops, a)
		if err != nil {
			return false, err
		}
		return Equals(ops, api.Number(na), b)
	}
	if bt == api.TagBoolean {
		nb, err := ToNumber(ops, b)
		if err != nil {
			return false, err
		}
		return Equals(ops, a, api.Number(nb))
	}
	if (at == api.TagNumber || at == api.TagString || at == api.TagBuffer) && bt == api.TagObject {
		pb, err := ToPrimitive(ops, b, api.HintNone)
		if err != nil {
			return false, err
		}
		return Equals(ops, a, pb)
	}
	if at == api.TagObject && (bt == api.TagNumber || bt == api.TagString || bt == api.TagBuffer) {
		pa, err := ToPrimitive(ops, a, api.HintNone)
		if err != nil {
			return false, err
		}
		return Equals(ops, pa, b)
	}
	return false, nil
}

// RelationalResult is the tri-state outcome of an Abstract Relational
// Comparison (ES5 §11.8.5): Undefined when either operand converts to
// NaN, otherwise True/False. spec.md §8: "Relational on NaN: NaN < 1,
// NaN >= 1, 1 < NaN, 1 >= NaN all yield false (hence the explicit
// negate flag must not simply invert)" — callers must check Undefined
// before applying LE/GE's negate flag, exactly because negating
// Undefined is still "false", not "true".
type RelationalResult uint8

const (
	RelUndefined RelationalResult = iota
	RelTrue
	RelFalse
)

// LessThan implements the Abstract Relational Comparison x < y, with
// explicit control over evaluation order (spec.md §4.5: "LT/LE/GT/GE
// ... with explicit left-first / right-first evaluation flag").
// leftFirst selects ToPrimitive(x) before ToPrimitive(y) (true, the
// normal `<`/`<=` order) or the reverse (false, used to implement
// `>`/`>=` by swapping operands while still evaluating the original
// left-hand expression first).
func LessThan(ops api.ObjectOps, x, y api.Value, leftFirst bool) (RelationalResult, error) {
	var px, py api.Value
	var err error
	if leftFirst {
		px, err = ToPrimitive(ops, x, api.HintNumber)
		if err != nil {
			return RelUndefined, err
		}
		py, err = ToPrimitive(ops, y, api.HintNumber)
		if err != nil {
			return RelUndefined, err
		}
	} else {
		py, err = ToPrimitive(ops, y, api.HintNumber)
		if err != nil {
			return RelUndefined, err
		}
		px, err = ToPrimitive(ops, x, api.HintNumber)
		if err != nil {
			return RelUndefined, err
		}
	}

	if px.Tag() == api.TagString && py.Tag() == api.TagString {
		sx, sy := px.AsString().String(), py.AsString().String()
		if sx < sy {
			return RelTrue, nil
		}
		return RelFalse, nil
	}

	nx, err := ToNumber(ops, px)
	if err != nil {
		return RelUndefined, err
	}
	ny, err := ToNumber(ops, py)
	if err != nil {
		return RelUndefined, err
	}
	if isNaN(nx) || isNaN(ny) {
		return RelUndefined, nil
	}
	if nx < ny {
		return RelTrue, nil
	}
	return RelFalse, nil
}

func isNaN(f float64) bool { return f != f }
