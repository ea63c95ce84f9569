package esobject

import "github.com/v4xyz/duktape/api"

// NewNativeFunction wraps a Go function as a callable api.Value backed
// by this package's Object representation, usable anywhere an Ecma
// function value would be (CALL opcode target, property value, bound
// function target). It gives an embedder a way to expose host
// functionality without a parser, and is how this package's own tests
// construct yield/resume and other intrinsics.
func NewNativeFunction(name string, arity int, fn func(this api.Value, args []api.Value) (api.Value, error)) api.Value {
	obj := newObject("Function", nil)
	obj.Native = fn
	obj.defineData("name", str(name), 0)
	obj.defineData("length", api.Number(float64(arity)), 0)
	return api.Object(obj)
}
