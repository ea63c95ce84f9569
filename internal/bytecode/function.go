package bytecode

import "github.com/v4xyz/duktape/api"

// Function is the concrete api.CompiledFunction this repository uses:
// an immutable instruction array, constant pool, and inner-function
// table (spec.md §3 "Compiled function").
type Function struct {
	code     []api.Instruction
	consts   []api.Value
	inner    []api.CompiledFunction
	nregs    int
	strict   bool
	name     string
}

func (f *Function) Code() []api.Instruction               { return f.code }
func (f *Function) Consts() []api.Value                   { return f.consts }
func (f *Function) InnerFunctions() []api.CompiledFunction { return f.inner }
func (f *Function) NumRegisters() int                     { return f.nregs }
func (f *Function) Strict() bool                          { return f.strict }
func (f *Function) Name() string                          { return f.name }

var _ api.CompiledFunction = (*Function)(nil)

// Builder hand-assembles a Function without a real parser/compiler
// (spec.md §1 puts the parser/compiler out of scope; this repository's
// own tests still need programs to run, grounded on the teacher's own
// interpreter_test.go pattern of hand-building operation sequences
// rather than invoking a textual assembler).
type Builder struct {
	fn *Function
}

// NewBuilder starts a function with nregs fixed registers.
func NewBuilder(name string, nregs int, strict bool) *Builder {
	return &Builder{fn: &Function{name: name, nregs: nregs, strict: strict}}
}

// Emit appends an already-encoded instruction and returns its index
// (useful for patching a forward jump once its target is known).
func (b *Builder) Emit(ins api.Instruction) int {
	b.fn.code = append(b.fn.code, ins)
	return len(b.fn.code) - 1
}

// Patch overwrites a previously emitted instruction, for back-patching
// forward branches once the target pc is known.
func (b *Builder) Patch(at int, ins api.Instruction) {
	b.fn.code[at] = ins
}

// Here returns the index the next Emit call will use.
func (b *Builder) Here() int { return len(b.fn.code) }

// Const interns v in the constant pool and returns its index.
func (b *Builder) Const(v api.Value) int {
	b.fn.consts = append(b.fn.consts, v)
	return len(b.fn.consts) - 1
}

// Inner appends a nested function template and returns its index, for
// CLOSURE.
func (b *Builder) Inner(f api.CompiledFunction) int {
	b.fn.inner = append(b.fn.inner, f)
	return len(b.fn.inner) - 1
}

// Build finalizes and returns the assembled function.
func (b *Builder) Build() *Function { return b.fn }
