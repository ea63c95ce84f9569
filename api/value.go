// Package api includes the types an embedder uses to plug an object
// system, environment-record machinery, and string table into the
// bytecode execution core, plus the tagged value representation shared
// by every internal package. It is the boundary between this module's
// internals and whatever hosts them, the same role wazero's root `api`
// package plays between the WebAssembly runtime internals and an
// embedder.
package api

import "math"

// Tag discriminates the variants of Value. See duktape's tagged value
// ("tval") representation: spec.md §3 Data Model.
type Tag uint8

const (
	TagUndefined Tag = iota
	TagNull
	TagBoolean
	TagNumber
	TagString
	TagObject
	TagBuffer
	TagLightFunc
)

func (t Tag) String() string {
	switch t {
	case TagUndefined:
		return "undefined"
	case TagNull:
		return "null"
	case TagBoolean:
		return "boolean"
	case TagNumber:
		return "number"
	case TagString:
		return "string"
	case TagObject:
		return "object"
	case TagBuffer:
		return "buffer"
	case TagLightFunc:
		return "lightfunc"
	default:
		return "unknown"
	}
}

// RefCounted is implemented by the string/object/buffer handles an
// embedder hands back to the core. IncRef/DecRef let the core follow
// the "copy old, write new, incref new, decref old" slot-write
// discipline from spec.md §3 without the core itself owning a GC.
//
// DecRef may run a finalizer and therefore may reenter the core (e.g.
// if the embedder's object system invokes a registered finalizer
// function). Every caller of DecRef must treat any outstanding index
// into the value/call/catch stacks as still valid (they are plain
// ints, never pointers) but must not assume cached field reads taken
// before the DecRef are still current.
type RefCounted interface {
	IncRef()
	DecRef()
}

// StringRef is an interned string handle owned by the embedder's
// string table.
type StringRef interface {
	RefCounted
	String() string
}

// ObjectRef is an opaque handle to a host object. The core never
// inspects its contents directly; all property access goes through
// ObjectOps.
type ObjectRef interface {
	RefCounted
}

// BufferRef is an opaque handle to a host buffer (plain byte storage,
// spec.md's "buffer" value kind — duktape's ES5 extension with no ES5
// standard equivalent).
type BufferRef interface {
	RefCounted
}

// LightFuncFlags carries the small bitset duktape attaches to a light
// function value (argument-count hint, strictness, constructability).
type LightFuncFlags uint16

// LightFunc is a value variant for callable values cheap enough to
// store without an allocation: a raw function pointer plus flags. It
// is not reference counted (spec.md §3: ref-counted variants are only
// string/object/buffer).
type LightFunc struct {
	Fn    LightFuncImpl
	Flags LightFuncFlags
}

// LightFuncImpl is the Go-level callable behind a LightFunc value.
type LightFuncImpl func(call LightFuncCall) (Value, error)

// LightFuncCall carries the arguments passed to a LightFuncImpl.
type LightFuncCall struct {
	This Value
	Args []Value
}

// Value is the tagged value ("TVal") of spec.md §3. The zero Value is
// TagUndefined.
type Value struct {
	tag   Tag
	num   float64
	flag  bool
	ref   RefCounted
	str   StringRef
	light LightFunc
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{tag: TagUndefined} }

// Null returns the null value.
func Null() Value { return Value{tag: TagNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{tag: TagBoolean, flag: b} }

// Number returns a number value, normalizing any NaN payload to the
// canonical NaN so tag-in-NaN style encodings downstream stay valid
// (spec.md §3, §8 invariant: "All doubles stored into value-stack
// slots are NaN-normalized").
func Number(f float64) Value { return Value{tag: TagNumber, num: NormalizeNumber(f)} }

// NormalizeNumber collapses any NaN bit pattern to the canonical NaN
// produced by math.NaN(). Called on every number that enters a Value
// or is written into a stack slot.
func NormalizeNumber(f float64) float64 {
	if math.IsNaN(f) {
		return math.NaN()
	}
	return f
}

// String returns a string value backed by an interned string handle.
func String(s StringRef) Value {
	if s != nil {
		s.IncRef()
	}
	return Value{tag: TagString, str: s}
}

// Object returns an object value.
func Object(o ObjectRef) Value {
	if o != nil {
		o.IncRef()
	}
	return Value{tag: TagObject, ref: o}
}

// Buffer returns a buffer value.
func Buffer(b BufferRef) Value {
	if b != nil {
		b.IncRef()
	}
	return Value{tag: TagBuffer, ref: b}
}

// LightFuncValue returns a lightfunc value.
func LightFuncValue(lf LightFunc) Value { return Value{tag: TagLightFunc, light: lf} }

// Tag reports the value's variant.
func (v Value) Tag() Tag { return v.tag }

func (v Value) IsUndefined() bool { return v.tag == TagUndefined }
func (v Value) IsNull() bool      { return v.tag == TagNull }
func (v Value) IsNullOrUndefined() bool {
	return v.tag == TagNull || v.tag == TagUndefined
}
func (v Value) IsBoolean() bool  { return v.tag == TagBoolean }
func (v Value) IsNumber() bool   { return v.tag == TagNumber }
func (v Value) IsString() bool   { return v.tag == TagString }
func (v Value) IsObject() bool   { return v.tag == TagObject }
func (v Value) IsBuffer() bool   { return v.tag == TagBuffer }
func (v Value) IsLightFunc() bool { return v.tag == TagLightFunc }

// IsStringOrBuffer matches the "string-or-buffer" class spec.md §4.1
// uses to decide additive-operator concatenation vs. numeric add.
func (v Value) IsStringOrBuffer() bool { return v.tag == TagString || v.tag == TagBuffer }

// IsCallable reports whether the value is directly callable without
// going through ObjectOps (a lightfunc). Compiled/native function
// objects are callable too, but that is a property the object system
// tracks, not the core.
func (v Value) IsCallable() bool { return v.tag == TagLightFunc }

// AsBool returns the boolean payload. Only meaningful when IsBoolean.
func (v Value) AsBool() bool { return v.flag }

// AsNumber returns the number payload. Only meaningful when IsNumber.
func (v Value) AsNumber() float64 { return v.num }

// AsString returns the string handle. Only meaningful when IsString.
func (v Value) AsString() StringRef { return v.str }

// AsObject returns the object handle. Only meaningful when IsObject.
func (v Value) AsObject() ObjectRef { return v.ref }

// AsBuffer returns the buffer handle. Only meaningful when IsBuffer.
func (v Value) AsBuffer() BufferRef { return v.ref.(BufferRef) }

// AsLightFunc returns the lightfunc payload. Only meaningful when
// IsLightFunc.
func (v Value) AsLightFunc() LightFunc { return v.light }

// refCounted returns the RefCounted backing this value, or nil if the
// value's variant does not own a reference count.
func (v Value) refCounted() RefCounted {
	switch v.tag {
	case TagString:
		if v.str == nil {
			return nil
		}
		return v.str
	case TagObject, TagBuffer:
		return v.ref
	default:
		return nil
	}
}

// IncRef increments the value's reference count, if it owns one.
func (v Value) IncRef() {
	if rc := v.refCounted(); rc != nil {
		rc.IncRef()
	}
}

// DecRef decrements the value's reference count, if it owns one. This
// may reenter the core via a finalizer; see RefCounted.
func (v Value) DecRef() {
	if rc := v.refCounted(); rc != nil {
		rc.DecRef()
	}
}

// StoreValue implements the mandated slot-write ordering from
// spec.md §3: "assignment to a slot is copy old → write new → incref
// new → decref old (in that order, because decref may reenter)".
func StoreValue(slot *Value, next Value) {
	old := *slot
	*slot = next
	next.IncRef()
	old.DecRef()
}

// ToBoolean implements spec.md §4.1 ToBoolean: pure, no side effects.
func (v Value) ToBoolean() bool {
	switch v.tag {
	case TagUndefined, TagNull:
		return false
	case TagBoolean:
		return v.flag
	case TagNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case TagString:
		return v.str != nil && v.str.String() != ""
	case TagBuffer:
		return true // duktape: non-empty-handle buffers are always truthy
	case TagObject, TagLightFunc:
		return true
	default:
		return false
	}
}
