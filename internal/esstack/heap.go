package esstack

import (
	"log/slog"

	"github.com/v4xyz/duktape/api"
)

// Heap is the process-wide singleton of spec.md §3 (here: one per
// NewHeap call, shared by every Execute on it): the current thread
// pointer, the shared longjmp state, the interrupt hook, a
// call-recursion depth counter, and the embedder's collaborators.
//
// spec.md §3 also lists "a pointer to the innermost setjmp-style jump
// buffer" — spec.md §9's design note replaces that with a typed result
// threaded back up a single Go stack frame (internal/engine/executor's
// main loop), so there is no jump-buffer field here at all.
type Heap struct {
	CurrentThread *Thread
	LJ            LongjmpState

	// CallRecursionDepth counts in-flight native→Ecma call transitions
	// (distinct from a single thread's call-stack depth), guarding
	// against pathological bound-function/host-callback recursion.
	CallRecursionDepth int

	ObjectOps api.ObjectOps
	EnvOps    api.EnvOps

	// InterruptHook is invoked when the running thread's
	// InterruptCounter reaches zero (spec.md §4.5, §5). A nil hook
	// just reloads the counter. Returning a non-nil error raises it as
	// a THROW (typically an api.RangeError for a timeout).
	InterruptHook func(th *Thread) error

	Logger *slog.Logger

	// SetupInitialCall performs the Ecma call setup of spec.md §4.4
	// for a RESUME targeting an INACTIVE thread: it must push th's
	// first activation for fn with the given this-binding and
	// argument. Assigned by internal/engine/executor when it builds a
	// Heap, so internal/unwind (which must not import executor, to
	// avoid an import cycle) can still trigger a call setup.
	SetupInitialCall func(th *Thread, fn api.Value, thisArg api.Value, args []api.Value) error

	nextThreadID uint64
}

// NewHeap constructs a Heap wired to the given collaborators. logger
// may be nil, in which case a discarding logger is installed.
func NewHeap(objectOps api.ObjectOps, envOps api.EnvOps, logger *slog.Logger) *Heap {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	h := &Heap{
		ObjectOps: objectOps,
		EnvOps:    envOps,
		Logger:    logger,
	}
	h.LJ.Clear()
	return h
}

// NewThread allocates a new inactive thread owned by this heap.
func (h *Heap) NewThread() *Thread {
	h.nextThreadID++
	return NewThread(h.nextThreadID)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
