package moremath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMin(t *testing.T) {
	require.Equal(t, Min(-1.1, 123), -1.1)
	require.Equal(t, Min(-1.1, math.Inf(1)), -1.1)
	require.Equal(t, Min(math.Inf(-1), 123), math.Inf(-1))

	// NaN cannot be compared with itself, so we have to use IsNaN.
	require.True(t, math.IsNaN(Min(math.NaN(), 1.0)))
	require.True(t, math.IsNaN(Min(1.0, math.NaN())))
	require.True(t, math.IsNaN(Min(math.Inf(-1), math.NaN())))
	require.True(t, math.IsNaN(Min(math.Inf(1), math.NaN())))
	require.True(t, math.IsNaN(Min(math.NaN(), math.NaN())))
}

func TestMax(t *testing.T) {
	require.Equal(t, Max(-1.1, 123.1), 123.1)
	require.Equal(t, Max(-1.1, math.Inf(1)), math.Inf(1))
	require.Equal(t, Max(math.Inf(-1), 123.1), 123.1)

	require.True(t, math.IsNaN(Max(math.NaN(), 1.0)))
	require.True(t, math.IsNaN(Max(1.0, math.NaN())))
	require.True(t, math.IsNaN(Max(math.Inf(-1), math.NaN())))
	require.True(t, math.IsNaN(Max(math.Inf(1), math.NaN())))
	require.True(t, math.IsNaN(Max(math.NaN(), math.NaN())))
}

func TestFmod(t *testing.T) {
	require.Equal(t, math.Copysign(0, -1), Fmod(math.Copysign(0, -1), 1))
	require.True(t, math.IsNaN(Fmod(1, 0)))
	require.Equal(t, 1.0, Fmod(7, 3))
	require.Equal(t, -1.0, Fmod(-7, 3))
}

func TestToInt32(t *testing.T) {
	require.Equal(t, int32(-2147483648), ToInt32(1<<31))
	require.Equal(t, int32(-1), ToInt32(4294967295))
	require.Equal(t, int32(0), ToInt32(math.NaN()))
	require.Equal(t, int32(0), ToInt32(math.Inf(1)))
	require.Equal(t, int32(3), ToInt32(3.9))
	require.Equal(t, int32(-3), ToInt32(-3.9))
}

func TestToUint32(t *testing.T) {
	require.Equal(t, uint32(4294967295), ToUint32(-1))
	require.Equal(t, uint32(0), ToUint32(math.NaN()))
	require.Equal(t, uint32(4294967295), ToUint32(4294967295))
}
