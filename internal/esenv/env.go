// Package esenv is a minimal reference implementation of api.EnvOps
// (spec.md §6): declarative and object environment records chained
// through a parent pointer, enough to back GETVAR/PUTVAR/DECLVAR/
// DELVAR and the with/catch-binding splice opcodes for this
// repository's own tests.
package esenv

import "github.com/v4xyz/duktape/api"

type kind uint8

const (
	kindDeclarative kind = iota
	kindObject
)

// binding is one declarative-record slot.
type binding struct {
	value     api.Value
	mutable   bool
	deletable bool
}

// record is the concrete type behind every api.EnvRef this package
// hands out.
type record struct {
	kind   kind
	parent *record

	bindings map[string]*binding // kindDeclarative
	object   api.Value           // kindObject: the with-target object
}

func newDeclarative(parent *record) *record {
	return &record{kind: kindDeclarative, parent: parent, bindings: map[string]*binding{}}
}

func asRecord(ref api.EnvRef) *record {
	if ref == nil {
		return nil
	}
	r, _ := ref.(*record)
	return r
}

// Ops is the reference api.EnvOps implementation. Objects is the
// object system used to resolve object-environment-record property
// access (with-statement bindings and a global object, if the
// embedder wires one in as GlobalObject).
type Ops struct {
	Objects api.ObjectOps

	// GlobalObject, if non-nil, backs the outermost object environment
	// record every activation ultimately bottoms out at: unresolved
	// variable reads/writes fall through to property access on it,
	// mirroring ES5's global object. A nil GlobalObject means
	// unresolved variables are always a ReferenceError/implicit
	// declarative global instead (see PutVar's implicit-global fallback).
	GlobalObject api.Value

	global *record
}

var _ api.EnvOps = (*Ops)(nil)

// globalRecord lazily builds the one shared top-level declarative
// record every top-level NewFunctionEnvironment call with a nil
// parentEnv chains to, so `var`s declared by separate top-level
// Execute calls on the same Heap are visible to each other (matching
// a single Duktape heap's single global object).
func (o *Ops) globalRecord() *record {
	if o.global == nil {
		o.global = newDeclarative(nil)
		if !o.GlobalObject.IsUndefined() {
			o.global.kind = kindObject
			o.global.object = o.GlobalObject
		}
	}
	return o.global
}

func (o *Ops) GetVar(act api.ActivationContext, name api.StringRef, throwOnUnresolved bool) (api.Value, api.Value, error) {
	n := name.String()
	for r := asRecord(act.LexEnv()); r != nil; r = r.parent {
		if r.kind == kindObject {
			has, err := o.Objects.In(api.String(name), r.object)
			if err != nil {
				return api.Value{}, api.Value{}, err
			}
			if has {
				val, err := o.Objects.GetProp(r.object, api.String(name))
				return val, r.object, err
			}
			continue
		}
		if b, ok := r.bindings[n]; ok {
			return b.value, api.Undefined(), nil
		}
	}
	if throwOnUnresolved {
		return api.Value{}, api.Value{}, api.NewReferenceError("%s is not defined", n)
	}
	return api.Undefined(), api.Undefined(), nil
}

func (o *Ops) PutVar(act api.ActivationContext, name api.StringRef, val api.Value, strict bool) error {
	n := name.String()
	for r := asRecord(act.LexEnv()); r != nil; r = r.parent {
		if r.kind == kindObject {
			has, err := o.Objects.In(api.String(name), r.object)
			if err != nil {
				return err
			}
			if has {
				return o.Objects.PutProp(r.object, api.String(name), val, strict)
			}
			continue
		}
		if b, ok := r.bindings[n]; ok {
			if !b.mutable {
				if strict {
					return api.NewReferenceError("assignment to constant %q", n)
				}
				return nil
			}
			api.StoreValue(&b.value, val)
			return nil
		}
	}
	if strict {
		return api.NewReferenceError("%s is not defined", n)
	}
	// Non-strict implicit global, ES5 §10.2.1.2's fallback leg.
	g := o.globalRecord()
	if g.kind == kindObject {
		return o.Objects.PutProp(g.object, api.String(name), val, false)
	}
	g.bindings[n] = &binding{value: val, mutable: true, deletable: true}
	return nil
}

func (o *Ops) DeclVar(act api.ActivationContext, name api.StringRef, val api.Value, flags api.DeclFlags) (bool, error) {
	n := name.String()
	r := asRecord(act.VarEnv())
	if r == nil {
		return false, api.NewInternalError("DeclVar with no var_env bound")
	}
	if r.kind == kindObject {
		has, err := o.Objects.In(api.String(name), r.object)
		if err != nil {
			return false, err
		}
		if has && flags.UndefinedInit {
			return true, nil
		}
		return has, o.Objects.PutProp(r.object, api.String(name), val, false)
	}
	b, already := r.bindings[n]
	if !already {
		r.bindings[n] = &binding{value: val, mutable: true, deletable: flags.Prop&api.PropConfigurable != 0}
		return false, nil
	}
	if flags.FunctionDecl || !flags.UndefinedInit {
		api.StoreValue(&b.value, val)
	}
	return true, nil
}

func (o *Ops) DelVar(act api.ActivationContext, name api.StringRef) (bool, error) {
	n := name.String()
	for r := asRecord(act.LexEnv()); r != nil; r = r.parent {
		if r.kind == kindObject {
			has, err := o.Objects.In(api.String(name), r.object)
			if err != nil {
				return false, err
			}
			if has {
				return o.Objects.DelProp(r.object, api.String(name), false)
			}
			continue
		}
		if b, ok := r.bindings[n]; ok {
			if !b.deletable {
				return false, nil
			}
			delete(r.bindings, n)
			return true, nil
		}
	}
	return true, nil // deleting an unresolved variable is a no-op success.
}

func (o *Ops) InitActivationEnvironmentRecordsDelayed(act api.ActivationContext) error {
	// NewFunctionEnvironment already builds both records eagerly; this
	// reference implementation has nothing left to defer (spec.md §6's
	// "delayed" is a real duktape optimization this package does not
	// need to reproduce for small test programs).
	return nil
}

func (o *Ops) PushWithBinding(act api.ActivationContext, obj api.Value) (api.EnvRef, error) {
	saved := act.LexEnv()
	r := &record{kind: kindObject, parent: asRecord(saved), object: obj}
	act.SetLexEnv(r)
	return saved, nil
}

func (o *Ops) PushCatchBinding(act api.ActivationContext, name api.StringRef, val api.Value) (api.EnvRef, error) {
	saved := act.LexEnv()
	r := newDeclarative(asRecord(saved))
	r.bindings[name.String()] = &binding{value: val, mutable: true, deletable: false}
	act.SetLexEnv(r)
	return saved, nil
}

func (o *Ops) RestoreLexEnv(act api.ActivationContext, saved api.EnvRef) {
	act.SetLexEnv(asRecord(saved))
}

func (o *Ops) NewFunctionEnvironment(fn api.Value, parentEnv api.EnvRef) (api.EnvRef, api.EnvRef, error) {
	parent := asRecord(parentEnv)
	if parent == nil {
		parent = o.globalRecord()
	}
	r := newDeclarative(parent)
	return r, r, nil
}
