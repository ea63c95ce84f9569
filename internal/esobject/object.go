// Package esobject is a minimal, in-memory reference implementation of
// api.ObjectOps (spec.md §6): a flat property-bag object model with a
// single-parent prototype chain, used by this repository's own tests
// and by the root duktape package's default wiring. It is deliberately
// not a production ES5 object system (no [[DefaultValue]] edge cases
// beyond valueOf/toString, no full Array.prototype, no real string
// interning table) — it exists to exercise internal/engine/executor
// end to end, not to replace a real embedder.
package esobject

import "github.com/v4xyz/duktape/api"

// property is one own property slot.
type property struct {
	value    api.Value
	getter   api.Value
	setter   api.Value
	accessor bool
	flags    api.PropFlags
}

func (p *property) hasFlag(f api.PropFlags) bool { return p.flags&f != 0 }

// Object is the concrete object representation backing every
// api.Value with Tag()==TagObject this package produces: plain
// objects, arrays, functions (Ecma or bound), Error instances, and
// RegExp instances all share this one struct, distinguished by Class
// and the function/array-specific fields below.
type Object struct {
	refs int

	Class      string
	Proto      *Object
	Extensible bool

	props map[string]*property
	keys  []string // insertion order, for Enumerate and array iteration

	// Function state (Class == "Function").
	Compiled    api.CompiledFunction
	CapturedEnv api.EnvRef
	BoundTarget api.Value
	BoundThis   api.Value
	BoundArgs   []api.Value
	IsBound     bool
	Native      func(this api.Value, args []api.Value) (api.Value, error)

	// Array state (Class == "Array").
	IsArray     bool
	ArrayLength uint32

	// Boxed primitive state (Class == "String"/"Number"/"Boolean", from
	// ToObject).
	Boxed api.Value

	// RegExp state (Class == "RegExp").
	RegexpSource, RegexpFlags string

	// Enumerator state (Class == "Enumerator", from Enumerate/EnumNext).
	enumSource *Object
	enumKeys   []string
	enumPos    int
}

// IncRef implements api.RefCounted.
func (o *Object) IncRef() { o.refs++ }

// DecRef implements api.RefCounted. This reference implementation has
// no finalizers to run on drop to zero (spec.md §3's reentrant-
// finalizer concern does not apply here; Go's GC reclaims the struct
// once nothing references it).
func (o *Object) DecRef() {
	if o.refs > 0 {
		o.refs--
	}
}

func newObject(class string, proto *Object) *Object {
	return &Object{
		Class:      class,
		Proto:      proto,
		Extensible: true,
		props:      map[string]*property{},
	}
}

func asObject(v api.Value) (*Object, bool) {
	if v.Tag() != api.TagObject {
		return nil, false
	}
	o, ok := v.AsObject().(*Object)
	return o, ok
}

// ownProperty looks up k on o itself, not its prototype chain.
func (o *Object) ownProperty(k string) (*property, bool) {
	p, ok := o.props[k]
	return p, ok
}

func (o *Object) setProperty(k string, p *property) {
	if _, exists := o.props[k]; !exists {
		o.keys = append(o.keys, k)
	}
	o.props[k] = p
}

func (o *Object) defineData(k string, val api.Value, flags api.PropFlags) {
	o.setProperty(k, &property{value: val, flags: flags})
	o.bumpArrayLength(k)
}

func (o *Object) deleteKey(k string) {
	if _, ok := o.props[k]; !ok {
		return
	}
	delete(o.props, k)
	for i, existing := range o.keys {
		if existing == k {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// bumpArrayLength grows ArrayLength when an array-index key is defined
// past the current length (ES5 §15.4.5.1's array exotic behavior).
func (o *Object) bumpArrayLength(k string) {
	if !o.IsArray {
		return
	}
	idx, ok := arrayIndex(k)
	if !ok || idx < o.ArrayLength {
		return
	}
	o.ArrayLength = idx + 1
	o.props["length"] = &property{value: api.Number(float64(o.ArrayLength)), flags: api.PropWritable}
}

// arrayIndex reports whether k is a canonical array index string
// ("0", "1", ... with no leading zero) and its numeric value.
func arrayIndex(k string) (uint32, bool) {
	if k == "" {
		return 0, false
	}
	if k == "0" {
		return 0, true
	}
	var n uint32
	for i, c := range k {
		if c < '0' || c > '9' {
			return 0, false
		}
		if i == 0 && c == '0' {
			return 0, false
		}
		n = n*10 + uint32(c-'0')
	}
	return n, true
}
