package esenv_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/esenv"
	"github.com/v4xyz/duktape/internal/esobject"
	"github.com/v4xyz/duktape/internal/esstack"
)

func newAct(t *testing.T, ops *esenv.Ops) *esstack.Activation {
	t.Helper()
	act := &esstack.Activation{}
	lex, vr, err := ops.NewFunctionEnvironment(api.Undefined(), nil)
	require.NoError(t, err)
	act.SetLexEnv(lex)
	act.SetVarEnv(vr)
	return act
}

func TestDeclVarThenGetVar(t *testing.T) {
	ops := &esenv.Ops{}
	act := newAct(t, ops)

	already, err := ops.DeclVar(act, esobject.NewStringRef("x"), api.Number(1), api.DeclFlags{})
	require.NoError(t, err)
	require.False(t, already)

	val, thisBinding, err := ops.GetVar(act, esobject.NewStringRef("x"), true)
	require.NoError(t, err)
	require.True(t, thisBinding.IsUndefined())
	require.Equal(t, float64(1), val.AsNumber())
}

func TestGetVarUnresolvedThrows(t *testing.T) {
	ops := &esenv.Ops{}
	act := newAct(t, ops)

	_, _, err := ops.GetVar(act, esobject.NewStringRef("nope"), true)
	require.Error(t, err)
	var refErr *api.ReferenceError
	require.ErrorAs(t, err, &refErr)

	val, _, err := ops.GetVar(act, esobject.NewStringRef("nope"), false)
	require.NoError(t, err)
	require.True(t, val.IsUndefined())
}

func TestPutVarMutatesExistingBinding(t *testing.T) {
	ops := &esenv.Ops{}
	act := newAct(t, ops)

	_, err := ops.DeclVar(act, esobject.NewStringRef("x"), api.Number(1), api.DeclFlags{})
	require.NoError(t, err)

	require.NoError(t, ops.PutVar(act, esobject.NewStringRef("x"), api.Number(2), true))

	val, _, err := ops.GetVar(act, esobject.NewStringRef("x"), true)
	require.NoError(t, err)
	require.Equal(t, float64(2), val.AsNumber())
}

func TestPutVarStrictUnresolvedThrows(t *testing.T) {
	ops := &esenv.Ops{}
	act := newAct(t, ops)

	err := ops.PutVar(act, esobject.NewStringRef("y"), api.Number(3), true)
	require.Error(t, err)
	var refErr *api.ReferenceError
	require.ErrorAs(t, err, &refErr)
}

func TestPutVarNonStrictCreatesImplicitGlobal(t *testing.T) {
	ops := &esenv.Ops{}
	act1 := newAct(t, ops)
	act2 := newAct(t, ops)

	require.NoError(t, ops.PutVar(act1, esobject.NewStringRef("g"), api.Number(9), false))

	// The implicit global binding is visible from an unrelated activation,
	// since both chain to the same shared global record.
	val, _, err := ops.GetVar(act2, esobject.NewStringRef("g"), true)
	require.NoError(t, err)
	require.Equal(t, float64(9), val.AsNumber())
}

func TestDelVarRespectsDeletableFlag(t *testing.T) {
	ops := &esenv.Ops{}
	act := newAct(t, ops)

	_, err := ops.DeclVar(act, esobject.NewStringRef("perm"), api.Number(1), api.DeclFlags{})
	require.NoError(t, err)
	deleted, err := ops.DelVar(act, esobject.NewStringRef("perm"))
	require.NoError(t, err)
	require.False(t, deleted, "plain var bindings are not deletable")

	_, err = ops.DeclVar(act, esobject.NewStringRef("temp"), api.Number(1), api.DeclFlags{Prop: api.PropConfigurable})
	require.NoError(t, err)
	deleted, err = ops.DelVar(act, esobject.NewStringRef("temp"))
	require.NoError(t, err)
	require.True(t, deleted)

	val, _, err := ops.GetVar(act, esobject.NewStringRef("temp"), false)
	require.NoError(t, err)
	require.True(t, val.IsUndefined())
}

func TestPushWithBindingResolvesObjectProperty(t *testing.T) {
	objOps := &esobject.Ops{}
	ops := &esenv.Ops{Objects: objOps}
	act := newAct(t, ops)

	obj, err := objOps.NewObject()
	require.NoError(t, err)
	require.NoError(t, objOps.PutProp(obj, api.String(esobject.NewStringRef("z")), api.Number(5), false))

	saved, err := ops.PushWithBinding(act, obj)
	require.NoError(t, err)

	val, thisBinding, err := ops.GetVar(act, esobject.NewStringRef("z"), true)
	require.NoError(t, err)
	require.Equal(t, float64(5), val.AsNumber())
	require.Equal(t, obj.AsObject(), thisBinding.AsObject())

	ops.RestoreLexEnv(act, saved)
	_, _, err = ops.GetVar(act, esobject.NewStringRef("z"), true)
	require.Error(t, err, "z should no longer resolve once the with-binding is popped")
}

func TestPushCatchBindingShadowsOuter(t *testing.T) {
	ops := &esenv.Ops{}
	act := newAct(t, ops)

	_, err := ops.DeclVar(act, esobject.NewStringRef("e"), api.Number(1), api.DeclFlags{})
	require.NoError(t, err)

	saved, err := ops.PushCatchBinding(act, esobject.NewStringRef("e"), api.Number(99))
	require.NoError(t, err)

	val, _, err := ops.GetVar(act, esobject.NewStringRef("e"), true)
	require.NoError(t, err)
	require.Equal(t, float64(99), val.AsNumber())

	ops.RestoreLexEnv(act, saved)
	val, _, err = ops.GetVar(act, esobject.NewStringRef("e"), true)
	require.NoError(t, err)
	require.Equal(t, float64(1), val.AsNumber())
}
