package duktape_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/v4xyz/duktape"
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/bytecode"
	"github.com/v4xyz/duktape/internal/esobject"
)

func run(t *testing.T, h *duktape.Heap, fnVal api.Value, args ...api.Value) (api.Value, error) {
	t.Helper()
	th := h.NewThread()
	return duktape.Execute(h, th, fnVal, api.Undefined(), args...)
}

// TestArithmeticReturn covers the simplest possible program: two LDINT
// loads, an ADD, and a RETURN carrying the result.
func TestArithmeticReturn(t *testing.T) {
	h := duktape.NewHeap(nil)

	b := bytecode.NewBuilder("add", 3, false)
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 0, 2))
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 1, 3))
	b.Emit(bytecode.Encode(bytecode.OpAdd, 2, 0, 1))
	b.Emit(bytecode.Encode(bytecode.OpReturn, 2, 0, int(api.ReturnFlagHaveValue)))

	fnVal, err := h.NewFunction(b.Build())
	require.NoError(t, err)

	result, err := run(t, h, fnVal)
	require.NoError(t, err)
	require.True(t, result.IsNumber())
	require.Equal(t, float64(5), result.AsNumber())
}

// TestEcmaToEcmaCall builds an outer function that CLOSUREs an inner
// one, sets up a call with CSREG, and passes two arguments through the
// consecutive-register calling convention.
func TestEcmaToEcmaCall(t *testing.T) {
	h := duktape.NewHeap(nil)

	inner := bytecode.NewBuilder("sum", 3, false)
	inner.Emit(bytecode.Encode(bytecode.OpAdd, 2, 0, 1))
	inner.Emit(bytecode.Encode(bytecode.OpReturn, 2, 0, int(api.ReturnFlagHaveValue)))

	outer := bytecode.NewBuilder("outer", 5, false)
	innerIdx := outer.Inner(inner.Build())
	outer.Emit(bytecode.Encode(bytecode.OpClosure, 0, innerIdx, 0))
	outer.Emit(bytecode.Encode(bytecode.OpCsReg, 1, 0, 0))
	outer.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 3, 2))
	outer.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 4, 3))
	outer.Emit(bytecode.Encode(bytecode.OpCall, 1, 2, 0))
	outer.Emit(bytecode.Encode(bytecode.OpReturn, 1, 0, int(api.ReturnFlagHaveValue)))

	fnVal, err := h.NewFunction(outer.Build())
	require.NoError(t, err)

	result, err := run(t, h, fnVal)
	require.NoError(t, err)
	require.Equal(t, float64(5), result.AsNumber())
}

// TestTryCatchCatchesThrow throws a number from inside a try block and
// reads it back out of the catcher's reserved register once control
// lands in the catch handler.
func TestTryCatchCatchesThrow(t *testing.T) {
	h := duktape.NewHeap(nil)

	b := bytecode.NewBuilder("trycatch", 4, false)
	b.Emit(bytecode.Encode(bytecode.OpTryCatch, int(bytecode.TCFHaveCatch), 0, 2)) // 0: reserves 1,2
	b.Emit(bytecode.EncodeABC(bytecode.OpJump, 3))                                // 1: catch target -> 5
	b.Emit(bytecode.Encode(bytecode.OpNop, 0, 0, 0))                              // 2: finally target (unused)
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 1, 99))                            // 3: try body
	b.Emit(bytecode.Encode(bytecode.OpThrow, 1, 0, 0))                            // 4
	b.Emit(bytecode.Encode(bytecode.OpLdReg, 0, 2, 0))                            // 5: catch block
	b.Emit(bytecode.Encode(bytecode.OpEndCatch, 0, 0, 0))                         // 6
	b.Emit(bytecode.Encode(bytecode.OpReturn, 0, 0, int(api.ReturnFlagHaveValue))) // 7

	fnVal, err := h.NewFunction(b.Build())
	require.NoError(t, err)

	result, err := run(t, h, fnVal)
	require.NoError(t, err)
	require.Equal(t, float64(99), result.AsNumber())
}

// TestUncaughtThrowReturnsScriptError confirms a THROW with no matching
// catcher surfaces as an *api.ScriptError carrying the thrown value.
func TestUncaughtThrowReturnsScriptError(t *testing.T) {
	h := duktape.NewHeap(nil)

	b := bytecode.NewBuilder("throws", 1, false)
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 0, 7))
	b.Emit(bytecode.Encode(bytecode.OpThrow, 0, 0, 0))

	fnVal, err := h.NewFunction(b.Build())
	require.NoError(t, err)

	_, err = run(t, h, fnVal)
	require.Error(t, err)
	var scriptErr *api.ScriptError
	require.ErrorAs(t, err, &scriptErr)
	require.Equal(t, float64(7), scriptErr.Value.AsNumber())
}

// TestLabeledBreakExitsLoop hand-assembles a counting loop using
// LABEL/BREAK/JUMP and confirms BREAK both exits and leaves the counter
// at the value it held when the condition matched.
func TestLabeledBreakExitsLoop(t *testing.T) {
	h := duktape.NewHeap(nil)

	b := bytecode.NewBuilder("loop", 3, false)
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 0, 0))     // 0: counter = 0
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 1, 3))     // 1: limit = 3
	b.Emit(bytecode.EncodeABC(bytecode.OpLabel, 0))       // 2: reserves 3,4
	b.Emit(bytecode.EncodeABC(bytecode.OpJump, 1))        // 3: continue target -> 5
	b.Emit(bytecode.EncodeABC(bytecode.OpJump, 5))        // 4: break target -> 10
	b.Emit(bytecode.Encode(bytecode.OpInc, 0, 0, 0))      // 5: counter++
	b.Emit(bytecode.Encode(bytecode.OpSEq, 2, 0, 1))      // 6: r2 = counter === limit
	b.Emit(bytecode.Encode(bytecode.OpIf, 2, 0, 0))       // 7: skip BREAK unless r2
	b.Emit(bytecode.EncodeABC(bytecode.OpBreak, 0))       // 8
	b.Emit(bytecode.EncodeABC(bytecode.OpJump, -5))       // 9: back to 5
	b.Emit(bytecode.Encode(bytecode.OpReturn, 0, 0, int(api.ReturnFlagHaveValue))) // 10

	fnVal, err := h.NewFunction(b.Build())
	require.NoError(t, err)

	result, err := run(t, h, fnVal)
	require.NoError(t, err)
	require.Equal(t, float64(3), result.AsNumber())
}

// TestCoroutineYieldAndResume builds a coroutine that doubles its
// resume payload, yields it, and on a second resume returns whatever it
// is handed. It exercises both legs of the thread switch: YIELD back
// into the resumer and thread termination handing a value back too.
func TestCoroutineYieldAndResume(t *testing.T) {
	h := duktape.NewHeap(nil)

	coro := bytecode.NewBuilder("coro", 5, false)
	yieldIdx := coro.Const(h.NewYieldFunction())
	coro.Emit(bytecode.EncodeBC(bytecode.OpLdConst, 1, yieldIdx)) // 0: r1 = yield fn
	coro.Emit(bytecode.Encode(bytecode.OpCsReg, 2, 1, 0))         // 1: r2=fn,r3=this
	coro.Emit(bytecode.Encode(bytecode.OpAdd, 4, 0, 0))           // 2: r4 = r0+r0 (double payload)
	coro.Emit(bytecode.Encode(bytecode.OpCall, 2, 1, 0))          // 3: yield(r4); resumes with r2 = next payload
	coro.Emit(bytecode.Encode(bytecode.OpReturn, 2, 0, int(api.ReturnFlagHaveValue))) // 4

	coroFnVal, err := h.NewFunction(coro.Build())
	require.NoError(t, err)
	coroVal := h.NewCoroutine(coroFnVal)

	main := bytecode.NewBuilder("main", 6, false)
	resumeIdx := main.Const(h.NewResumeFunction())
	coroIdx := main.Const(coroVal)
	main.Emit(bytecode.EncodeBC(bytecode.OpLdConst, 0, resumeIdx)) // 0: r0 = resume fn
	main.Emit(bytecode.Encode(bytecode.OpCsReg, 1, 0, 0))          // 1: r1=fn,r2=this
	main.Emit(bytecode.EncodeBC(bytecode.OpLdConst, 3, coroIdx))   // 2: r3 = coroutine
	main.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 4, 10))          // 3: first payload
	main.Emit(bytecode.Encode(bytecode.OpCall, 1, 2, 0))           // 4: resume(coro, 10) -> r1 = 20 (yielded)
	main.Emit(bytecode.Encode(bytecode.OpLdReg, 5, 1, 0))          // 5: r5 = r1 (save yielded value)
	main.Emit(bytecode.Encode(bytecode.OpCsReg, 1, 0, 0))          // 6: reload call setup
	main.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 4, 99))          // 7: second payload
	main.Emit(bytecode.Encode(bytecode.OpCall, 1, 2, 0))           // 8: resume(coro, 99) -> r1 = 99 (coroutine return)
	main.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 2, 1000))        // 9
	main.Emit(bytecode.Encode(bytecode.OpMul, 5, 5, 2))            // 10: r5 = yielded*1000
	main.Emit(bytecode.Encode(bytecode.OpAdd, 5, 5, 1))            // 11: r5 += second resume result
	main.Emit(bytecode.Encode(bytecode.OpReturn, 5, 0, int(api.ReturnFlagHaveValue))) // 12

	mainFnVal, err := h.NewFunction(main.Build())
	require.NoError(t, err)

	result, err := run(t, h, mainFnVal)
	require.NoError(t, err)
	require.Equal(t, float64(20099), result.AsNumber())
}

// TestFinallyOverridesReturn returns 42 from inside a try block whose
// finally block then unconditionally returns 7 of its own, confirming
// the finally's completion wins over the try body's.
func TestFinallyOverridesReturn(t *testing.T) {
	h := duktape.NewHeap(nil)

	b := bytecode.NewBuilder("tryfin", 4, false)
	b.Emit(bytecode.Encode(bytecode.OpTryCatch, int(bytecode.TCFHaveFinally), 0, 2)) // 0: reserves 1,2
	b.Emit(bytecode.Encode(bytecode.OpNop, 0, 0, 0))                                 // 1: catch target (unused)
	b.Emit(bytecode.EncodeABC(bytecode.OpJump, 2))                                   // 2: finally target -> 5
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 0, 42))                               // 3: try body
	b.Emit(bytecode.Encode(bytecode.OpReturn, 0, 0, int(api.ReturnFlagHaveValue)))   // 4: return 42, diverted to finally
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 0, 7))                                // 5: finally body
	b.Emit(bytecode.Encode(bytecode.OpReturn, 0, 0, int(api.ReturnFlagHaveValue)))   // 6: return 7, overrides try's return

	fnVal, err := h.NewFunction(b.Build())
	require.NoError(t, err)

	result, err := run(t, h, fnVal)
	require.NoError(t, err)
	require.Equal(t, float64(7), result.AsNumber(), "finally's own return must override the try body's")
}

// TestNestedRethrowReachesOuterFinally builds
// try { try { throw 1; } catch(e) { throw 2; } } catch(e2) { ... } finally { ... }
// where the inner catch's own body throws a second time, caught by the
// outer catcher. Once the outer catch finishes, its finally must still
// run exactly once with a NORMAL completion (yielding 102 = 2+100); if
// the inner catcher's now-fully-consumed catchstack entry were ever
// left dangling above the real outer one, ENDCATCH/ENDFIN would operate
// on that stale entry instead, leaving the outer catcher's own
// completion registers holding the original throw's LJThrow instead of
// NORMAL, and ENDFIN would re-raise the caught value as an uncaught
// throw instead of falling through to the ADD/RETURN below.
func TestNestedRethrowReachesOuterFinally(t *testing.T) {
	h := duktape.NewHeap(nil)

	b := bytecode.NewBuilder("nestedrethrow", 6, false)
	b.Emit(bytecode.Encode(bytecode.OpTryCatch, int(bytecode.TCFHaveCatch|bytecode.TCFHaveFinally), 0, 2)) // 0: outer, reserves 1,2
	b.Emit(bytecode.EncodeABC(bytecode.OpJump, 8))                                                         // 1: outer catch target -> 10
	b.Emit(bytecode.EncodeABC(bytecode.OpJump, 9))                                                         // 2: outer finally target -> 12
	b.Emit(bytecode.Encode(bytecode.OpTryCatch, int(bytecode.TCFHaveCatch), 0, 4))                         // 3: inner, reserves 4,5
	b.Emit(bytecode.EncodeABC(bytecode.OpJump, 3))                                                         // 4: inner catch target -> 8
	b.Emit(bytecode.Encode(bytecode.OpNop, 0, 0, 0))                                                       // 5: inner finally target (unused)
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 0, 1))                                                      // 6: inner try body
	b.Emit(bytecode.Encode(bytecode.OpThrow, 0, 0, 0))                                                     // 7
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 0, 2))                                                      // 8: inner catch body: rethrow 2
	b.Emit(bytecode.Encode(bytecode.OpThrow, 0, 0, 0))                                                     // 9
	b.Emit(bytecode.Encode(bytecode.OpLdReg, 0, 2, 0))                                                     // 10: outer catch body
	b.Emit(bytecode.Encode(bytecode.OpEndCatch, 0, 0, 0))                                                  // 11
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 1, 100))                                                    // 12: outer finally body
	b.Emit(bytecode.Encode(bytecode.OpEndFin, 0, 0, 0))                                                    // 13
	b.Emit(bytecode.Encode(bytecode.OpAdd, 0, 0, 1))                                                       // 14
	b.Emit(bytecode.Encode(bytecode.OpReturn, 0, 0, int(api.ReturnFlagHaveValue)))                         // 15

	fnVal, err := h.NewFunction(b.Build())
	require.NoError(t, err)

	result, err := run(t, h, fnVal)
	require.NoError(t, err)
	require.Equal(t, float64(102), result.AsNumber())
}

// TestBreakRunsEnclosingFinallyFirst builds a loop whose body is
// try { break; } finally { counter++; }: ES5 requires the finally block
// to run before the break actually exits the loop, so the result must
// be 1 (the finally ran exactly once), not 0 (the break skipping past
// it straight to the loop's break target).
func TestBreakRunsEnclosingFinallyFirst(t *testing.T) {
	h := duktape.NewHeap(nil)

	b := bytecode.NewBuilder("breakfinally", 3, false)
	b.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 0, 0))                           // 0: counter = 0
	b.Emit(bytecode.EncodeABC(bytecode.OpLabel, 0))                             // 1: reserves 2,3
	b.Emit(bytecode.EncodeABC(bytecode.OpJump, 1))                              // 2: continue target -> 4
	b.Emit(bytecode.EncodeABC(bytecode.OpJump, 6))                              // 3: break target -> 10
	b.Emit(bytecode.Encode(bytecode.OpTryCatch, int(bytecode.TCFHaveFinally), 0, 1)) // 4: reserves 5,6
	b.Emit(bytecode.Encode(bytecode.OpNop, 0, 0, 0))                            // 5: catch target (unused)
	b.Emit(bytecode.EncodeABC(bytecode.OpJump, 1))                              // 6: finally target -> 8
	b.Emit(bytecode.EncodeABC(bytecode.OpBreak, 0))                             // 7: try body
	b.Emit(bytecode.Encode(bytecode.OpInc, 0, 0, 0))                            // 8: finally body
	b.Emit(bytecode.Encode(bytecode.OpEndFin, 0, 0, 0))                         // 9
	b.Emit(bytecode.Encode(bytecode.OpReturn, 0, 0, int(api.ReturnFlagHaveValue))) // 10

	fnVal, err := h.NewFunction(b.Build())
	require.NoError(t, err)

	result, err := run(t, h, fnVal)
	require.NoError(t, err)
	require.Equal(t, float64(1), result.AsNumber(), "finally must run exactly once before break exits the loop")
}

// TestDeepTailRecursionDoesNotGrowHostStack hand-assembles
// f(n,a) { return n===0 ? a : f(n-1,a+1); } called from a top-level
// function as f(100000,0). f recurses into itself entirely through
// tail calls, so this only terminates (and does not overflow the Go
// call stack) if the executor's Ecma-to-Ecma tail-call reuse actually
// discards f's own activation on every recursive step instead of
// stacking a fresh one.
func TestDeepTailRecursionDoesNotGrowHostStack(t *testing.T) {
	h := duktape.NewHeap(nil)

	f := bytecode.NewBuilder("f", 8, false)
	fNameInF := f.Const(api.String(esobject.NewStringRef("f")))
	f.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 2, 0))                               // 0: r2 = 0
	f.Emit(bytecode.Encode(bytecode.OpSEq, 3, 0, 2))                                // 1: r3 = (n === 0)
	f.Emit(bytecode.Encode(bytecode.OpIf, 3, 0, 0))                                 // 2: run next only if r3
	f.Emit(bytecode.Encode(bytecode.OpReturn, 1, 0, int(api.ReturnFlagHaveValue))) // 3: return a
	f.Emit(bytecode.EncodeBC(bytecode.OpCsVar, 4, fNameInF))                        // 4: r4=f, r5=this
	f.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 2, 1))                               // 5: r2 = 1
	f.Emit(bytecode.Encode(bytecode.OpSub, 6, 0, 2))                                // 6: r6 = n-1
	f.Emit(bytecode.Encode(bytecode.OpAdd, 7, 1, 2))                                // 7: r7 = a+1
	f.Emit(bytecode.Encode(bytecode.OpCall, 4, 2, int(api.CallFlagTail)))           // 8: tail call f(n-1,a+1)
	f.Emit(bytecode.Encode(bytecode.OpReturn, 4, 0, int(api.ReturnFlagHaveValue))) // 9: unreached once the tail call above fires

	main := bytecode.NewBuilder("main", 5, false)
	fNameInMain := main.Const(api.String(esobject.NewStringRef("f")))
	fIdx := main.Inner(f.Build())
	main.Emit(bytecode.EncodeBC(bytecode.OpDeclVar, 0, fNameInMain))    // 0: declare f
	main.Emit(bytecode.Encode(bytecode.OpClosure, 0, fIdx, 0))          // 1: r0 = closure(f)
	main.Emit(bytecode.EncodeBC(bytecode.OpPutVar, 0, fNameInMain))     // 2: f = r0
	main.Emit(bytecode.Encode(bytecode.OpCsReg, 1, 0, 0))               // 3: r1=f, r2=this
	main.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 3, 100000))           // 4: arg0 = n
	main.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 4, 0))                // 5: arg1 = a
	main.Emit(bytecode.Encode(bytecode.OpCall, 1, 2, 0))                // 6: f(100000, 0), not a tail call
	main.Emit(bytecode.Encode(bytecode.OpReturn, 1, 0, int(api.ReturnFlagHaveValue))) // 7

	mainFnVal, err := h.NewFunction(main.Build())
	require.NoError(t, err)

	result, err := run(t, h, mainFnVal)
	require.NoError(t, err)
	require.Equal(t, float64(100000), result.AsNumber())
}

// TestGetPropCatchesThrowingGetter installs an accessor getter that
// throws and reads the property through GETPROP inside a try/catch,
// confirming the throw started deep inside the getter's own nested
// Execute call re-enters the outer thread's catch dispatch instead of
// escaping as a plain Go error.
func TestGetPropCatchesThrowingGetter(t *testing.T) {
	h := duktape.NewHeap(nil)

	getter := bytecode.NewBuilder("get", 1, false)
	getter.Emit(bytecode.EncodeBC(bytecode.OpLdInt, 0, 13))
	getter.Emit(bytecode.Encode(bytecode.OpThrow, 0, 0, 0))

	main := bytecode.NewBuilder("main", 7, false)
	keyIdx := main.Const(api.String(esobject.NewStringRef("g")))
	getterIdx := main.Inner(getter.Build())

	main.Emit(bytecode.Encode(bytecode.OpNewObj, 0, 0, 0))                          // 0: r0 = {}
	main.Emit(bytecode.EncodeBC(bytecode.OpLdConst, 1, keyIdx))                     // 1: r1 = "g"
	main.Emit(bytecode.Encode(bytecode.OpClosure, 2, getterIdx, 0))                 // 2: r2 = getter closure
	main.Emit(bytecode.Encode(bytecode.OpInitGet, 0, 1, 2))                         // 3: r0.g getter = r2
	main.Emit(bytecode.Encode(bytecode.OpTryCatch, int(bytecode.TCFHaveCatch), 0, 4)) // 4: reserves 5,6
	main.Emit(bytecode.EncodeABC(bytecode.OpJump, 3))                               // 5: catch target -> 9
	main.Emit(bytecode.Encode(bytecode.OpNop, 0, 0, 0))                             // 6: finally target (unused)
	main.Emit(bytecode.Encode(bytecode.OpGetProp, 3, 0, 1))                         // 7: try body: r3 = r0.g (throws)
	main.Emit(bytecode.Encode(bytecode.OpReturn, 3, 0, int(api.ReturnFlagHaveValue))) // 8: unreached
	main.Emit(bytecode.Encode(bytecode.OpLdReg, 6, 4, 0))                           // 9: catch: r6 = caught value
	main.Emit(bytecode.Encode(bytecode.OpEndCatch, 0, 0, 0))                        // 10
	main.Emit(bytecode.Encode(bytecode.OpReturn, 6, 0, int(api.ReturnFlagHaveValue))) // 11

	mainFnVal, err := h.NewFunction(main.Build())
	require.NoError(t, err)

	result, err := run(t, h, mainFnVal)
	require.NoError(t, err)
	require.Equal(t, float64(13), result.AsNumber())
}
