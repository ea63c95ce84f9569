package esstack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v4xyz/duktape/api"
)

func TestPushPopActivation(t *testing.T) {
	th := NewThread(1)

	idx, err := th.PushActivation(Activation{IdxBottom: 0, IdxRetval: -1})
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, 1, th.CallstackTop())

	idx2, err := th.PushActivation(Activation{IdxBottom: 3, IdxRetval: 0})
	require.NoError(t, err)
	require.Equal(t, 1, idx2)
	require.Equal(t, th.TopActivationIndex(), idx2)

	popped := th.PopActivationsTo(1)
	require.Len(t, popped, 1)
	require.Equal(t, 3, popped[0].IdxBottom)
	require.Equal(t, 1, th.CallstackTop())
}

func TestPushPopCatcher(t *testing.T) {
	th := NewThread(1)

	_, err := th.PushCatcher(Catcher{Type: CatcherLabel, LabelID: 0})
	require.NoError(t, err)
	_, err = th.PushCatcher(Catcher{Type: CatcherTCF, CallstackIndex: 1})
	require.NoError(t, err)
	require.Equal(t, 2, th.CatchstackTop())

	popped := th.PopCatchersTo(1)
	require.Len(t, popped, 1)
	require.Equal(t, CatcherTCF, popped[0].Type)
	require.Equal(t, 1, th.CatchstackTop())
}

func TestGrowShrinkValstack(t *testing.T) {
	th := NewThread(1)

	require.NoError(t, th.GrowValstackTo(5))
	require.Equal(t, 5, th.ValstackTop())
	for _, v := range th.ValueStack {
		require.True(t, v.IsUndefined())
	}

	// Growing to a smaller or equal size is a no-op.
	require.NoError(t, th.GrowValstackTo(2))
	require.Equal(t, 5, th.ValstackTop())

	th.ValueStack[4] = api.Number(42)
	th.ShrinkValstackTo(2)
	require.Equal(t, 2, th.ValstackTop())
}

func TestThreadValueRoundTrip(t *testing.T) {
	th := NewThread(7)
	v := ThreadValue(th)

	require.Equal(t, api.TagObject, v.Tag())

	got, ok := ThreadFromValue(v)
	require.True(t, ok)
	require.Same(t, th, got)

	_, ok = ThreadFromValue(api.Number(1))
	require.False(t, ok)
}

func TestWindow(t *testing.T) {
	th := NewThread(1)
	require.NoError(t, th.GrowValstackTo(4))
	th.ValueStack[1] = api.Number(10)
	th.ValueStack[2] = api.Number(20)

	w := th.Window(1, 3)
	require.Len(t, w, 2)
	require.Equal(t, float64(10), w[0].AsNumber())
	require.Equal(t, float64(20), w[1].AsNumber())
}
