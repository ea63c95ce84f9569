package api

import "fmt"

// ScriptError wraps a thrown Value (spec.md §7: "a value thrown by
// user code or produced by a coercion/property access"). It is the
// error type returned across the public Execute boundary on an
// uncaught THROW.
type ScriptError struct {
	Value Value
}

func (e *ScriptError) Error() string {
	switch e.Value.Tag() {
	case TagString:
		return e.Value.AsString().String()
	case TagNumber:
		return fmt.Sprintf("uncaught: %v", e.Value.AsNumber())
	default:
		return fmt.Sprintf("uncaught %s value", e.Value.Tag())
	}
}

// InternalError signals an invariant violation in the executor itself
// (spec.md §7: "impossible opcode, malformed indirect target, unknown
// longjmp type"). It is never expected in a correctly compiled
// program; seeing one means the bytecode or this core is broken.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string { return "internal error: " + e.Message }

// RangeError signals a resource limit was hit (spec.md §7): the
// interrupt hook throttling execution, or a call-recursion/value-stack
// ceiling.
type RangeError struct {
	Message string
}

func (e *RangeError) Error() string { return "range error: " + e.Message }

// ReferenceError signals an invalid left-hand side or an unresolved
// strict-mode write (spec.md §7).
type ReferenceError struct {
	Message string
}

func (e *ReferenceError) Error() string { return "reference error: " + e.Message }

// NewInternalError is a convenience constructor used throughout the
// executor at the handful of "the compiler guarantees this can't
// happen" sites spec.md calls out (e.g. BREAK/CONTINUE failing to
// match a LABEL catcher).
func NewInternalError(format string, args ...any) error {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}

// NewRangeError is a convenience constructor.
func NewRangeError(format string, args ...any) error {
	return &RangeError{Message: fmt.Sprintf(format, args...)}
}

// NewReferenceError is a convenience constructor.
func NewReferenceError(format string, args ...any) error {
	return &ReferenceError{Message: fmt.Sprintf(format, args...)}
}
