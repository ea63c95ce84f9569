// Package buildoptions holds the executor's small set of build-time
// tunables, grounded on wazero's internal/buildoptions (a single
// `IsTest`-style const toggled by a build tag). That package's own
// WASM-specific ceiling constant was filtered out of the retrieved
// corpus (see DESIGN.md); the constants below are this core's
// ECMAScript-appropriate replacements.
package buildoptions

// CallStackCeiling bounds the number of simultaneously live
// activations on a single thread's call stack. Ecma-to-Ecma calls
// reuse the executor loop instead of the host stack (spec.md §4.4), so
// this ceiling — not a host stack overflow — is what turns unbounded
// non-tail recursion into a catchable api.RangeError.
var CallStackCeiling = 10000

// ValueStackCeiling bounds the total number of register/operand slots
// a single thread's value stack may grow to.
var ValueStackCeiling = 1 << 20

// InterruptInitCounter is the default value the executor reloads
// thread.InterruptCounter with after it reaches zero and the
// interrupt hook (if any) declines to raise an error (spec.md §4.5,
// §5).
var InterruptInitCounter = 1 << 16

// IsTest mirrors the teacher's `IstTest` toggle. It stays false: no
// code in this module sets or reads it, so it gates no assertions.
var IsTest = false
