package esobject

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/v4xyz/duktape/api"
)

// Ops is the reference api.ObjectOps implementation.
type Ops struct {
	// Invoke calls an Ecma or native function value as (fn, this, args)
	// and is used internally to run accessor getters/setters — property
	// access may need to call back into whatever drives the executor's
	// main loop, which this package must not import directly (it would
	// cycle: internal/engine/executor already depends on api, and this
	// package backs api.ObjectOps). The root duktape package wires this
	// field once both the executor and this Ops are constructed, the
	// same indirection esstack.Heap.SetupInitialCall uses for RESUME.
	// While Invoke is nil, native functions and lightfuncs are called
	// directly through HandleCall and an Ecma function is an internal
	// error.
	Invoke func(fn, this api.Value, args []api.Value) (api.Value, error)
}

var _ api.ObjectOps = (*Ops)(nil)

func (o *Ops) invoke(fn, this api.Value, args []api.Value) (api.Value, error) {
	if o.Invoke == nil {
		if _, compiled := o.AsCompiledFunction(fn); !compiled {
			return o.HandleCall(fn, this, args, 0)
		}
		return api.Value{}, api.NewInternalError("no call mechanism wired for a getter/setter/valueOf/toString invocation")
	}
	return o.Invoke(fn, this, args)
}

func (o *Ops) NewObject() (api.Value, error) {
	return api.Object(newObject("Object", nil)), nil
}

func (o *Ops) NewArray(capacityHint int) (api.Value, error) {
	arr := newObject("Array", nil)
	arr.IsArray = true
	arr.defineData("length", api.Number(0), api.PropWritable)
	return api.Object(arr), nil
}

func (o *Ops) GetProp(obj api.Value, key api.Value) (api.Value, error) {
	k := keyString(key)
	if obj.Tag() == api.TagString {
		return stringProp(obj, k), nil
	}
	target, ok := asObject(obj)
	if !ok {
		return api.Undefined(), nil
	}
	for cur := target; cur != nil; cur = cur.Proto {
		p, has := cur.ownProperty(k)
		if !has {
			continue
		}
		if p.accessor {
			if p.getter.IsUndefined() {
				return api.Undefined(), nil
			}
			return o.invoke(p.getter, obj, nil)
		}
		return p.value, nil
	}
	return api.Undefined(), nil
}

func (o *Ops) PutProp(obj api.Value, key api.Value, val api.Value, strict bool) error {
	target, ok := asObject(obj)
	if !ok {
		if strict {
			return api.NewReferenceError("cannot set property on a non-object value")
		}
		return nil
	}
	k := keyString(key)
	if p, has := target.ownProperty(k); has {
		if p.accessor {
			if p.setter.IsUndefined() {
				if strict {
					return api.NewReferenceError("property %q has no setter", k)
				}
				return nil
			}
			_, err := o.invoke(p.setter, obj, []api.Value{val})
			return err
		}
		if !p.hasFlag(api.PropWritable) {
			if strict {
				return api.NewReferenceError("cannot write to non-writable property %q", k)
			}
			return nil
		}
		api.StoreValue(&p.value, val)
		return nil
	}
	for cur := target.Proto; cur != nil; cur = cur.Proto {
		p, has := cur.ownProperty(k)
		if !has || !p.accessor {
			continue
		}
		if p.setter.IsUndefined() {
			if strict {
				return api.NewReferenceError("property %q has no setter", k)
			}
			return nil
		}
		_, err := o.invoke(p.setter, obj, []api.Value{val})
		return err
	}
	target.defineData(k, val, api.PropConfigurable|api.PropWritable|api.PropEnumerable)
	return nil
}

func (o *Ops) DelProp(obj api.Value, key api.Value, strict bool) (bool, error) {
	target, ok := asObject(obj)
	if !ok {
		return true, nil
	}
	k := keyString(key)
	p, has := target.ownProperty(k)
	if !has {
		return true, nil
	}
	if !p.hasFlag(api.PropConfigurable) {
		if strict {
			return false, api.NewReferenceError("cannot delete non-configurable property %q", k)
		}
		return false, nil
	}
	target.deleteKey(k)
	return true, nil
}

func (o *Ops) SetLength(obj api.Value, length uint32) error {
	target, ok := asObject(obj)
	if !ok {
		return api.NewInternalError("SetLength on a non-object value")
	}
	target.ArrayLength = length
	target.defineData("length", api.Number(float64(length)), api.PropWritable)
	return nil
}

func (o *Ops) Enumerate(obj api.Value, flags api.EnumFlags) (api.Value, error) {
	target, ok := asObject(obj)
	if !ok {
		return api.Undefined(), nil
	}
	onlyOwn := flags&api.EnumOwnPropertiesOnly != 0
	arrayOnly := flags&api.EnumArrayIndicesOnly != 0
	includeNonEnum := flags&api.EnumIncludeNonEnumerable != 0

	seen := map[string]bool{}
	var keys []string
	for cur := target; cur != nil; cur = cur.Proto {
		for _, k := range cur.keys {
			if seen[k] {
				continue
			}
			seen[k] = true
			p := cur.props[k]
			if !includeNonEnum && !p.hasFlag(api.PropEnumerable) {
				continue
			}
			if arrayOnly {
				if _, isIdx := arrayIndex(k); !isIdx {
					continue
				}
			}
			keys = append(keys, k)
		}
		if onlyOwn {
			break
		}
	}

	e := newObject("Enumerator", nil)
	e.enumSource = target
	e.enumKeys = keys
	return api.Object(e), nil
}

func (o *Ops) EnumNext(enumerator api.Value, getValue bool) (key api.Value, val api.Value, ok bool, err error) {
	e, isObj := asObject(enumerator)
	if !isObj || e.Class != "Enumerator" {
		return api.Value{}, api.Value{}, false, nil
	}
	if e.enumPos >= len(e.enumKeys) {
		return api.Value{}, api.Value{}, false, nil
	}
	k := e.enumKeys[e.enumPos]
	e.enumPos++
	keyVal := str(k)
	if !getValue {
		return keyVal, api.Value{}, true, nil
	}
	v, err := o.GetProp(api.Object(e.enumSource), keyVal)
	if err != nil {
		return api.Value{}, api.Value{}, false, err
	}
	return keyVal, v, true, nil
}

// CreateRegexpInstance builds a RegExp-classed object backed by Go's
// RE2 engine. ES5 regex grammar and RE2 are not the same language
// (no backreferences, different lookaround support); this is a
// best-effort approximation adequate for this reference
// implementation's own tests, not a conformant RegExp.
func (o *Ops) CreateRegexpInstance(pattern, flags string) (api.Value, error) {
	goPattern := pattern
	var inlineFlags []byte
	if strings.Contains(flags, "i") {
		inlineFlags = append(inlineFlags, 'i')
	}
	if strings.Contains(flags, "m") {
		inlineFlags = append(inlineFlags, 'm')
	}
	if strings.Contains(flags, "s") {
		inlineFlags = append(inlineFlags, 's')
	}
	if len(inlineFlags) > 0 {
		goPattern = "(?" + string(inlineFlags) + ")" + goPattern
	}
	if _, err := regexp.Compile(goPattern); err != nil {
		return api.Value{}, api.NewInternalError("invalid regular expression /%s/%s: %v", pattern, flags, err)
	}
	re := newObject("RegExp", nil)
	re.RegexpSource = pattern
	re.RegexpFlags = flags
	re.defineData("source", str(pattern), 0)
	re.defineData("global", api.Bool(strings.Contains(flags, "g")), 0)
	re.defineData("ignoreCase", api.Bool(strings.Contains(flags, "i")), 0)
	re.defineData("multiline", api.Bool(strings.Contains(flags, "m")), 0)
	return api.Object(re), nil
}

func (o *Ops) ToPrimitive(obj api.Value, hint api.Hint) (api.Value, error) {
	target, ok := asObject(obj)
	if !ok {
		return obj, nil
	}
	if target.Class == "String" || target.Class == "Number" || target.Class == "Boolean" {
		// A boxed primitive's [[DefaultValue]] always prefers its
		// wrapped value regardless of hint.
		return target.Boxed, nil
	}
	order := []string{"valueOf", "toString"}
	if hint == api.HintString {
		order = []string{"toString", "valueOf"}
	}
	for _, name := range order {
		fn, err := o.GetProp(obj, str(name))
		if err != nil {
			return api.Value{}, err
		}
		if !isCallable(fn) {
			continue
		}
		result, err := o.invoke(fn, obj, nil)
		if err != nil {
			return api.Value{}, err
		}
		if result.Tag() != api.TagObject {
			return result, nil
		}
	}
	return str(target.Class), nil
}

func (o *Ops) ToString(v api.Value) (api.Value, error) {
	switch v.Tag() {
	case api.TagString:
		return v, nil
	case api.TagUndefined:
		return str("undefined"), nil
	case api.TagNull:
		return str("null"), nil
	case api.TagBoolean:
		if v.AsBool() {
			return str("true"), nil
		}
		return str("false"), nil
	case api.TagNumber:
		return str(formatNumber(v.AsNumber())), nil
	case api.TagBuffer:
		return str("[object Buffer]"), nil
	case api.TagObject:
		prim, err := o.ToPrimitive(v, api.HintString)
		if err != nil {
			return api.Value{}, err
		}
		if prim.Tag() == api.TagString {
			return prim, nil
		}
		return o.ToString(prim)
	default:
		return str(""), nil
	}
}

func (o *Ops) ToObject(v api.Value) (api.Value, error) {
	var class string
	switch v.Tag() {
	case api.TagString:
		class = "String"
	case api.TagNumber:
		class = "Number"
	case api.TagBoolean:
		class = "Boolean"
	default:
		return api.Value{}, api.NewInternalError("cannot box value of type %s", v.Tag())
	}
	boxed := newObject(class, nil)
	boxed.Boxed = v
	return api.Object(boxed), nil
}

func (o *Ops) ToNumberFromPrimitive(v api.Value) (float64, error) {
	switch v.Tag() {
	case api.TagString:
		s := strings.TrimSpace(v.AsString().String())
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), nil
		}
		return f, nil
	case api.TagBuffer:
		return 0, nil
	default:
		return math.NaN(), nil
	}
}

func (o *Ops) Concat(a, b api.Value) (api.Value, error) {
	as, err := o.ToString(a)
	if err != nil {
		return api.Value{}, err
	}
	bs, err := o.ToString(b)
	if err != nil {
		return api.Value{}, err
	}
	return str(as.AsString().String() + bs.AsString().String()), nil
}

func (o *Ops) DefineDataProperties(obj api.Value, kvs []api.KeyValue, flags api.PropFlags) error {
	target, ok := asObject(obj)
	if !ok {
		return api.NewInternalError("DefineDataProperties on a non-object value")
	}
	for _, kv := range kvs {
		target.defineData(keyString(kv.Key), kv.Value, flags)
	}
	return nil
}

func (o *Ops) DefineArrayIndices(obj api.Value, startIndex uint32, values []api.Value) error {
	target, ok := asObject(obj)
	if !ok {
		return api.NewInternalError("DefineArrayIndices on a non-object value")
	}
	for i, v := range values {
		target.defineData(strconv.FormatUint(uint64(startIndex)+uint64(i), 10), v, api.PropConfigurable|api.PropWritable|api.PropEnumerable)
	}
	return nil
}

func (o *Ops) DefineAccessor(obj api.Value, key api.Value, accessor api.Accessor, flags api.PropFlags) error {
	target, ok := asObject(obj)
	if !ok {
		return api.NewInternalError("DefineAccessor on a non-object value")
	}
	k := keyString(key)
	p, has := target.ownProperty(k)
	if !has || !p.accessor {
		p = &property{accessor: true}
		target.setProperty(k, p)
	}
	if !accessor.Getter.IsUndefined() {
		p.getter = accessor.Getter
	}
	if !accessor.Setter.IsUndefined() {
		p.setter = accessor.Setter
	}
	p.flags = flags
	return nil
}

func (o *Ops) In(key api.Value, obj api.Value) (bool, error) {
	target, ok := asObject(obj)
	if !ok {
		return false, api.NewInternalError("'in' on a non-object value")
	}
	k := keyString(key)
	for cur := target; cur != nil; cur = cur.Proto {
		if _, has := cur.ownProperty(k); has {
			return true, nil
		}
	}
	return false, nil
}

func (o *Ops) InstanceOf(val api.Value, ctor api.Value) (bool, error) {
	ctorObj, ok := asObject(ctor)
	if !ok || (ctorObj.Compiled == nil && ctorObj.Native == nil && !ctorObj.IsBound) {
		return false, api.NewInternalError("right-hand side of instanceof is not callable")
	}
	protoVal, err := o.GetProp(ctor, str("prototype"))
	if err != nil {
		return false, err
	}
	proto, ok := asObject(protoVal)
	if !ok {
		return false, nil
	}
	valObj, ok := asObject(val)
	if !ok {
		return false, nil
	}
	for cur := valObj.Proto; cur != nil; cur = cur.Proto {
		if cur == proto {
			return true, nil
		}
	}
	return false, nil
}

func (o *Ops) TypeOf(val api.Value) string {
	switch val.Tag() {
	case api.TagUndefined:
		return "undefined"
	case api.TagNull:
		return "object"
	case api.TagBoolean:
		return "boolean"
	case api.TagNumber:
		return "number"
	case api.TagString:
		return "string"
	case api.TagBuffer:
		return "buffer"
	case api.TagLightFunc:
		return "function"
	case api.TagObject:
		if isCallable(val) {
			return "function"
		}
		return "object"
	default:
		return "undefined"
	}
}

func (o *Ops) ResolveBoundChain(fn api.Value) (target api.Value, boundThis api.Value, boundArgs []api.Value, err error) {
	var links []*Object
	cur := fn
	for {
		obj, ok := asObject(cur)
		if !ok || !obj.IsBound {
			break
		}
		links = append(links, obj)
		cur = obj.BoundTarget
	}
	if len(links) == 0 {
		return fn, api.Undefined(), nil, nil
	}
	innermost := links[len(links)-1]
	var args []api.Value
	for i := len(links) - 1; i >= 0; i-- {
		args = append(args, links[i].BoundArgs...)
	}
	return cur, innermost.BoundThis, args, nil
}

func (o *Ops) AsCompiledFunction(fn api.Value) (api.CompiledFunction, bool) {
	target, ok := asObject(fn)
	if !ok || target.Compiled == nil {
		return nil, false
	}
	return target.Compiled, true
}

func (o *Ops) InstantiateClosure(template api.CompiledFunction, capturedLexEnv api.EnvRef) (api.Value, error) {
	fn := newObject("Function", nil)
	fn.Compiled = template
	fn.CapturedEnv = capturedLexEnv
	fn.defineData("name", str(template.Name()), 0)
	fn.defineData("length", api.Number(0), 0)
	return api.Object(fn), nil
}

func (o *Ops) ClosureEnv(fn api.Value) (api.EnvRef, bool) {
	target, ok := asObject(fn)
	if !ok || target.Compiled == nil {
		return nil, false
	}
	return target.CapturedEnv, true
}

func (o *Ops) HandleCall(fn api.Value, this api.Value, args []api.Value, flags api.CallFlags) (api.Value, error) {
	if fn.IsLightFunc() {
		return fn.AsLightFunc().Fn(api.LightFuncCall{This: this, Args: args})
	}
	target, ok := asObject(fn)
	if !ok || target.Native == nil {
		return api.Value{}, api.NewInternalError("value is not callable")
	}
	return target.Native(this, args)
}

func (o *Ops) NewError(class string, message string) (api.Value, error) {
	e := newObject(class, nil)
	e.defineData("name", str(class), api.PropWritable|api.PropConfigurable)
	e.defineData("message", str(message), api.PropWritable|api.PropConfigurable)
	return api.Object(e), nil
}

func isCallable(v api.Value) bool {
	if v.IsLightFunc() {
		return true
	}
	target, ok := asObject(v)
	return ok && (target.Compiled != nil || target.Native != nil || target.IsBound)
}

func stringProp(s api.Value, k string) api.Value {
	runes := []rune(s.AsString().String())
	if k == "length" {
		return api.Number(float64(len(runes)))
	}
	if idx, ok := arrayIndex(k); ok && int(idx) < len(runes) {
		return str(string(runes[idx]))
	}
	return api.Undefined()
}
