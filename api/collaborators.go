package api

// This file is the Go expression of spec.md §6 "Inbound (consumed by
// core)": the object system, environment-record machinery, and
// coercion hooks the executor calls out to but never implements
// itself. An embedder supplies concrete ObjectOps/EnvOps when
// constructing a Heap (see the root duktape package); this repository
// ships a minimal reference implementation under internal/esobject
// and internal/esenv for its own tests.

// EnvRef is an opaque handle to a declarative/object/global
// environment record, owned by the embedder's EnvOps implementation
// and lazily initialized per spec.md §3 ("lex_env, var_env:
// environment-record references (lazily initialized)"). A nil EnvRef
// means "not yet initialized".
type EnvRef interface{}

// ActivationContext is the view of an Activation (spec.md §3) that
// EnvOps needs: enough to read/replace its environment-record slots
// without EnvOps importing the engine package that defines Activation
// (which in turn must be able to import api). The concrete Activation
// type implements this interface.
type ActivationContext interface {
	LexEnv() EnvRef
	VarEnv() EnvRef
	SetLexEnv(EnvRef)
	SetVarEnv(EnvRef)
	Strict() bool
	// Callee is the function value of this activation, needed to
	// build the initial declarative environment on first access.
	Callee() Value
}

// Hint is the ToPrimitive hint (spec.md §4.1).
type Hint uint8

const (
	HintNone Hint = iota
	HintNumber
	HintString
)

// PropFlags mirrors ES5's internal property attributes, used by
// MPUTOBJ/MPUTARR bulk-define and by DECLVAR (spec.md §4.5:
// "property-flag bits for configurable/writable/enumerable").
type PropFlags uint8

const (
	PropConfigurable PropFlags = 1 << iota
	PropWritable
	PropEnumerable
)

// DeclFlags is the full flag set DECLVAR carries (spec.md §4.5):
// property attributes plus the two special-case bits.
type DeclFlags struct {
	Prop PropFlags
	// UndefinedInit marks a `var` declaration with no initializer:
	// declare but do not overwrite an existing binding's value.
	UndefinedInit bool
	// FunctionDecl marks a function declaration: always overwrites
	// (replaces) any existing binding's value, unlike a bare `var`.
	FunctionDecl bool
}

// EnumFlags controls INITENUM's enumerator construction.
type EnumFlags uint8

const (
	// EnumIncludeNonEnumerable includes non-enumerable own properties
	// (used by `for-in`'s debugger-adjacent cousins; ordinary `for-in`
	// omits this flag).
	EnumIncludeNonEnumerable EnumFlags = 1 << iota
	// EnumArrayIndicesOnly restricts enumeration to array-index keys.
	EnumArrayIndicesOnly
	// EnumOwnPropertiesOnly restricts enumeration to the object's own
	// properties, skipping the prototype chain.
	EnumOwnPropertiesOnly
)

// KeyValue is one key/value pair in a bulk object-literal definition
// (MPUTOBJ).
type KeyValue struct {
	Key   Value
	Value Value
}

// Accessor is a getter/setter pair installed by INITSET/INITGET. Each
// half may be the zero Value (absent).
type Accessor struct {
	Getter Value
	Setter Value
}

// ObjectOps is spec.md §6's "Object operations" collaborator.
type ObjectOps interface {
	GetProp(obj Value, key Value) (Value, error)
	PutProp(obj Value, key Value, val Value, strict bool) error
	DelProp(obj Value, key Value, strict bool) (bool, error)
	SetLength(obj Value, length uint32) error

	// Enumerate creates an enumerator object for obj per flags. If obj
	// is null/undefined, callers must not invoke this (INITENUM
	// handles that case itself per spec.md §4.5 by producing a
	// sentinel null enumerator without calling ObjectOps at all).
	Enumerate(obj Value, flags EnumFlags) (Value, error)
	// EnumNext advances enumerator (the Value returned by Enumerate).
	// If getValue, val is populated; ok is false once exhausted.
	EnumNext(enumerator Value, getValue bool) (key Value, val Value, ok bool, err error)

	CreateRegexpInstance(pattern, flags string) (Value, error)

	// ToPrimitive, ToString, and ToObject implement the corresponding
	// ES5 abstract operations (spec.md §4.1); the core calls these
	// instead of reimplementing [[DefaultValue]] or number/string
	// formatting, both of which live in the embedder's string table
	// and object system.
	ToPrimitive(obj Value, hint Hint) (Value, error)
	ToString(v Value) (Value, error)
	ToObject(v Value) (Value, error)
	// ToNumberFromPrimitive parses a string or buffer value's numeric
	// grammar (ES5 §9.3.1). Never called with an object value.
	ToNumberFromPrimitive(v Value) (float64, error)

	// Concat builds the string value produced by the additive
	// operator once both operands are known to be string-or-buffer
	// (spec.md §4.1). String interning is the embedder's string
	// table's job, out of this core's scope (spec.md §1), so even
	// concatenation is a collaborator call rather than a Go string
	// operation the core performs itself.
	Concat(a, b Value) (Value, error)

	NewObject() (Value, error)
	NewArray(capacityHint int) (Value, error)
	DefineDataProperties(obj Value, kvs []KeyValue, flags PropFlags) error
	DefineArrayIndices(obj Value, startIndex uint32, values []Value) error
	// DefineAccessor installs accessor on obj at key, merging with any
	// existing accessor pair already at that key: a zero Value half of
	// accessor leaves that half (getter or setter) as it was. This lets
	// INITGET and INITSET install the two halves of one accessor
	// property with two independent calls, as the compiler emits them.
	DefineAccessor(obj Value, key Value, accessor Accessor, flags PropFlags) error

	In(key Value, obj Value) (bool, error)
	InstanceOf(val Value, ctor Value) (bool, error)
	TypeOf(val Value) string

	// ResolveBoundChain follows a Function.prototype.bind chain,
	// returning the ultimate target, the prepended bound-this (only
	// meaningful if any link was unwrapped), and the concatenation of
	// every link's bound arguments in call order (outermost bind's
	// args first). If fn is not a bound function, target==fn and
	// boundArgs is empty.
	ResolveBoundChain(fn Value) (target Value, boundThis Value, boundArgs []Value, err error)

	// AsCompiledFunction returns the CompiledFunction backing fn, and
	// ok=true, if fn is an Ecma function object (as opposed to a
	// native/host function or a non-function value).
	AsCompiledFunction(fn Value) (CompiledFunction CompiledFunction, ok bool)

	// InstantiateClosure implements CLOSURE (spec.md §4.5): build a new
	// function object from template, capturing capturedLexEnv as the
	// environment every future call of the closure closes over.
	InstantiateClosure(template CompiledFunction, capturedLexEnv EnvRef) (Value, error)
	// ClosureEnv returns the environment an Ecma function object
	// captured at CLOSURE time, for EnvOps.NewFunctionEnvironment to
	// chain a fresh call's declarative environment in front of.
	ClosureEnv(fn Value) (EnvRef, bool)

	// HandleCall invokes a non-Ecma callee (native function or
	// lightfunc) directly, per spec.md §6's handle_call.
	HandleCall(fn Value, this Value, args []Value, flags CallFlags) (Value, error)

	// NewError builds a thrown Error object of the given ES5 error
	// class ("RangeError", "ReferenceError", "TypeError", ...) with the
	// given message. The executor calls this to turn one of its own
	// typed Go errors (InternalError, RangeError, ReferenceError) into
	// a script-visible value before handing it to the Unwinder, since
	// the Error object's prototype chain and message property are the
	// embedder's object system's concern, not the core's (spec.md §1).
	NewError(class string, message string) (Value, error)
}

// CallFlags carries the call-site flags spec.md §4.5 lists for
// CALL/CALLI: tail-call request and direct-eval.
type CallFlags uint8

const (
	CallFlagTail CallFlags = 1 << iota
	CallFlagDirectEval
	CallFlagConstruct
)

// ReturnFlag carries RETURN's flag bits, read from its c operand.
type ReturnFlag uint8

const (
	ReturnFlagHaveValue ReturnFlag = 1 << iota
)

// EnvOps is spec.md §6's "Environment operations" collaborator.
type EnvOps interface {
	GetVar(act ActivationContext, name StringRef, throwOnUnresolved bool) (value Value, thisBinding Value, err error)
	PutVar(act ActivationContext, name StringRef, val Value, strict bool) error
	DeclVar(act ActivationContext, name StringRef, val Value, flags DeclFlags) (alreadyDeclared bool, err error)
	DelVar(act ActivationContext, name StringRef) (bool, error)
	InitActivationEnvironmentRecordsDelayed(act ActivationContext) error

	// PushWithBinding splices an object environment record for obj in
	// front of act's current lexical environment (TRYCATCH's
	// with-binding flag, and the `with` statement generally),
	// returning the previous lex_env to restore on scope exit.
	PushWithBinding(act ActivationContext, obj Value) (saved EnvRef, err error)
	// PushCatchBinding splices a declarative environment record
	// binding name to val in front of act's lexical environment
	// (TRYCATCH's catch-binding flag), returning the previous lex_env.
	PushCatchBinding(act ActivationContext, name StringRef, val Value) (saved EnvRef, err error)
	// RestoreLexEnv restores act's lex_env to a value saved by
	// PushWithBinding/PushCatchBinding.
	RestoreLexEnv(act ActivationContext, saved EnvRef)

	// NewFunctionEnvironment builds the lex_env/var_env pair for a
	// freshly pushed activation of fn, closing over parentEnv (the
	// closure's captured lexical environment).
	NewFunctionEnvironment(fn Value, parentEnv EnvRef) (lexEnv, varEnv EnvRef, err error)
}
