package esdebug_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v4xyz/duktape/internal/esdebug"
)

func TestFuncNameFallsBackToAnonymous(t *testing.T) {
	require.Equal(t, "foo", esdebug.FuncName("foo", 3))
	require.Equal(t, "<anonymous:3>", esdebug.FuncName("", 3))
}

func TestErrorBuilderNoFramesReturnsOriginalError(t *testing.T) {
	b := esdebug.NewErrorBuilder()
	orig := errors.New("boom")
	require.Same(t, orig, b.FromRecovered(orig))
}

func TestErrorBuilderWrapsWithFramesAndUnwraps(t *testing.T) {
	b := esdebug.NewErrorBuilder()
	b.AddFrame("inner", 5)
	b.AddFrame("outer", 12)

	orig := errors.New("boom")
	wrapped := b.FromRecovered(orig)

	require.Contains(t, wrapped.Error(), "boom")
	require.Contains(t, wrapped.Error(), "inner (pc=5)")
	require.Contains(t, wrapped.Error(), "outer (pc=12)")
	require.True(t, errors.Is(wrapped, orig))
}
