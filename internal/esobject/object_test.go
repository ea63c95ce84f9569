package esobject

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v4xyz/duktape/api"
)

// These tests live in package esobject (not esobject_test) because
// building a prototype chain requires newObject's proto parameter,
// which the public Ops API never exposes (this reference object
// system has no setPrototypeOf operation).

func TestGetPropInheritsFromPrototype(t *testing.T) {
	ops := &Ops{}
	proto := newObject("Object", nil)
	proto.defineData("greeting", str("hi"), api.PropEnumerable)

	child := newObject("Object", proto)
	child.defineData("own", api.Number(1), api.PropEnumerable)

	v, err := ops.GetProp(api.Object(child), str("greeting"))
	require.NoError(t, err)
	require.Equal(t, "hi", v.AsString().String())

	v, err = ops.GetProp(api.Object(child), str("own"))
	require.NoError(t, err)
	require.Equal(t, float64(1), v.AsNumber())
}

func TestPutPropShadowsPrototypeWithOwnProperty(t *testing.T) {
	ops := &Ops{}
	proto := newObject("Object", nil)
	proto.defineData("x", api.Number(1), api.PropEnumerable|api.PropWritable)

	child := newObject("Object", proto)
	require.NoError(t, ops.PutProp(api.Object(child), str("x"), api.Number(2), false))

	childVal, ok := child.ownProperty("x")
	require.True(t, ok, "writing through an inherited writable property creates an own property")
	require.Equal(t, float64(2), childVal.value.AsNumber())

	protoVal, ok := proto.ownProperty("x")
	require.True(t, ok)
	require.Equal(t, float64(1), protoVal.value.AsNumber(), "the prototype's own value is untouched")
}

func TestPutPropCallsInheritedSetter(t *testing.T) {
	var calledWith api.Value
	ops := &Ops{Invoke: func(fn, this api.Value, args []api.Value) (api.Value, error) {
		calledWith = args[0]
		return api.Undefined(), nil
	}}

	proto := newObject("Object", nil)
	proto.setProperty("y", &property{accessor: true, setter: NewNativeFunction("set", 1, nil)})

	child := newObject("Object", proto)
	require.NoError(t, ops.PutProp(api.Object(child), str("y"), api.Number(7), false))
	require.Equal(t, float64(7), calledWith.AsNumber())
}

func TestInWalksPrototypeChain(t *testing.T) {
	ops := &Ops{}
	proto := newObject("Object", nil)
	proto.defineData("inherited", api.Number(1), 0)
	child := newObject("Object", proto)

	has, err := ops.In(str("inherited"), api.Object(child))
	require.NoError(t, err)
	require.True(t, has)

	has, err = ops.In(str("missing"), api.Object(child))
	require.NoError(t, err)
	require.False(t, has)
}

func TestInstanceOfTrueWhenPrototypeInChain(t *testing.T) {
	ops := &Ops{}
	ctorObj := newObject("Function", nil)
	ctorObj.Native = func(this api.Value, args []api.Value) (api.Value, error) { return api.Undefined(), nil }
	proto := newObject("Object", nil)
	ctorObj.defineData("prototype", api.Object(proto), 0)

	instance := newObject("Object", proto)

	is, err := ops.InstanceOf(api.Object(instance), api.Object(ctorObj))
	require.NoError(t, err)
	require.True(t, is)

	grandchild := newObject("Object", instance)
	is, err = ops.InstanceOf(api.Object(grandchild), api.Object(ctorObj))
	require.NoError(t, err)
	require.True(t, is, "instanceof walks the full prototype chain, not just the immediate parent")
}
