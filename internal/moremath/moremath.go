// Package moremath holds the handful of float helpers the arithmetic
// kernel needs beyond the standard math package, grounded on wazero's
// internal/moremath (a NaN-aware min/max pair used by its numeric
// opcodes) and extended with the fmod-semantics modulus and ToInt32/
// ToUint32 conversions spec.md §4.1/§9.5-9.6 require.
package moremath

import "math"

// Min is a NaN-propagating min: if either operand is NaN, the result
// is NaN (math.Min does not guarantee this across all NaN/Inf
// combinations). Mirrors wazero's WasmCompatMin, generalized to the
// name ECMAScript's own Math.min semantics uses.
func Min(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, -1) || math.IsInf(y, -1):
		return math.Inf(-1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return x
		}
		return y
	}
	if x < y {
		return x
	}
	return y
}

// Max is the NaN-propagating counterpart to Min.
func Max(x, y float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsNaN(y):
		return math.NaN()
	case math.IsInf(x, 1) || math.IsInf(y, 1):
		return math.Inf(1)
	case x == 0 && x == y:
		if math.Signbit(x) {
			return y
		}
		return x
	}
	if x > y {
		return x
	}
	return y
}

// Fmod implements the ECMAScript `%` operator's number semantics
// (spec.md §4.1: "`%` uses C fmod semantics (not IEEE remainder)").
// Go's math.Mod already implements C fmod semantics directly; this
// wrapper documents the intentional choice over math.Remainder (IEEE
// 754 remainder, which ECMAScript does not use) and is the single call
// site esvalue's Mod operator goes through, so the boundary behaviors
// spec.md §8 calls out (-0 % 1 == -0, 1 % 0 == NaN) have one place to
// be tested against.
func Fmod(x, y float64) float64 {
	return math.Mod(x, y)
}

// ToInt32 implements spec.md §4.1/ES5 §9.5: ToNumber (assumed already
// applied by the caller) → if not finite, 0 → truncate toward zero →
// reduce modulo 2^32 → reinterpret as signed 32-bit.
func ToInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	trunc := math.Trunc(f)
	m := math.Mod(trunc, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return int32(uint32(m))
}

// ToUint32 implements ES5 §9.6: identical to ToInt32 up to the final
// reinterpretation step, which stays unsigned.
func ToUint32(f float64) uint32 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	trunc := math.Trunc(f)
	m := math.Mod(trunc, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m)
}
