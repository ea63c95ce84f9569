package api

// Instruction is one 32-bit bytecode word. spec.md §4.5: fields
// `op:6, a:8, b:9, c:9`, with variants `bc:18` (unsigned, biased) and
// `abc:26`. Decoding lives in internal/bytecode, which depends on this
// package; the type lives here (not there) so api.CompiledFunction can
// expose a Code() slice without an import cycle.
type Instruction uint32

// CompiledFunction is the inbound interface spec.md §6 calls
// "CompiledFunction { code[], consts[], inner_funcs[], nregs, strict }".
// It is immutable after compilation (§3): every method must return the
// same backing data for the function's lifetime, and Code/Consts/
// InnerFunctions must return slices at stable addresses (a Go slice
// header whose backing array is never mutated after the
// CompiledFunction is constructed satisfies this).
type CompiledFunction interface {
	// Code is the instruction array.
	Code() []Instruction
	// Consts is the constant pool referenced by LDCONST and friends.
	Consts() []Value
	// InnerFunctions is the template array CLOSURE instantiates from.
	InnerFunctions() []CompiledFunction
	// NumRegisters is the fixed register count for every activation of
	// this function ("nregs" in spec.md §3).
	NumRegisters() int
	// Strict reports whether the function body is ES5 strict mode.
	Strict() bool
	// Name is used only for error augmentation (spec.md §7); may be
	// empty for anonymous functions.
	Name() string
}
