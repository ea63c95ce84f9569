// Package unwind implements the Unwinder of spec.md §4.3: the single
// dispatcher that interprets the heap's longjmp state and decides
// Restart, Finished, or Rethrow. It is the one place in this module
// that understands every non-local transfer kind; the opcode
// dispatcher (internal/engine/executor) only ever sets up a transfer
// and calls Dispatch.
package unwind

import (
	"github.com/v4xyz/duktape/api"
	"github.com/v4xyz/duktape/internal/esstack"
)

// Outcome is the Unwinder's verdict (spec.md §4.3).
type Outcome uint8

const (
	// Restart: continue the main loop after reloading thread/
	// activation/func/bcode from heap.CurrentThread.
	Restart Outcome = iota
	// Finished: the entry activation returned; ReturnValue holds the
	// result.
	Finished
	// Rethrow: uncaught error (or internal error) at the entry level;
	// surface Err to the embedder.
	Rethrow
)

// Result is Dispatch's return value.
type Result struct {
	Outcome     Outcome
	ReturnValue api.Value
	Err         error
}

// Dispatch runs the Unwinder's single dispatch on heap.LJ.Type,
// looping internally across thread switches (a THROW that propagates
// past a terminated thread's resumer, or a YIELD/RESUME handshake)
// until it reaches one of the three terminal outcomes.
//
// entryThread/entryCallstackIndex are the thread and activation index
// that were active when the enclosing executor.Execute call began;
// they are the floor a RETURN/THROW cannot unwind past without
// producing Finished/Rethrow instead of Restart.
func Dispatch(heap *esstack.Heap, entryThread *esstack.Thread, entryCallstackIndex int) Result {
	for {
		switch heap.LJ.Type {
		case esstack.LJThrow:
			if res, done := dispatchThrow(heap, entryThread, entryCallstackIndex); done {
				return res
			}
			continue
		case esstack.LJReturn:
			return dispatchReturn(heap, entryThread, entryCallstackIndex)
		case esstack.LJBreak, esstack.LJContinue:
			return dispatchBreakContinue(heap)
		case esstack.LJYield:
			if res, done := dispatchYield(heap, entryThread); done {
				return res
			}
			continue
		case esstack.LJResume:
			if res, done := dispatchResume(heap); done {
				return res
			}
			continue
		default:
			heap.LJ.Clear()
			return Result{Outcome: Rethrow, Err: api.NewInternalError("unwinder invoked with longjmp type %s", heap.LJ.Type)}
		}
	}
}

// releaseActivations decref's the function value of every popped
// activation (spec.md §4.2 unwind_callstack: "releasing environments
// and decref'ing function references; each decref may reenter").
func releaseActivations(popped []esstack.Activation) {
	for i := range popped {
		popped[i].Func.DecRef()
	}
}

// restart is the common tail of every transfer that ends in Restart:
// clear the longjmp state (decref'ing its values, spec.md §4.3 "After
// a terminal decision, the longjmp state's values are cleared") and
// report Restart.
func restart(heap *esstack.Heap) Result {
	heap.LJ.Clear()
	return Result{Outcome: Restart}
}
