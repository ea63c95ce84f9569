package esstack

import "github.com/v4xyz/duktape/api"

// CatcherType distinguishes a try/catch/finally region from a
// break/continue label site (spec.md §3).
type CatcherType uint8

const (
	CatcherTCF CatcherType = iota
	CatcherLabel
)

// CatcherFlags are the per-catcher bits spec.md §3 lists: "catch-
// enabled, finally-enabled, catch-binding, lex-env-active".
type CatcherFlags uint8

const (
	CatchEnabled CatcherFlags = 1 << iota
	FinallyEnabled
	CatchBinding
	LexEnvActive
	WithBinding
)

// Catcher is a try/catch/finally region, labeled break/continue site,
// or with-binding extension (spec.md §3).
type Catcher struct {
	Type  CatcherType
	Flags CatcherFlags

	// CallstackIndex is the owning activation's index.
	CallstackIndex int

	// PCBase is the index of the first of two contiguous jump slots.
	PCBase int

	// IdxBase is the value-stack index of the two reserved registers
	// (caught value, completion-type code).
	IdxBase int

	// LabelID identifies a CatcherLabel's break/continue target.
	LabelID int

	// VarName names the catch binding, for CatcherTCF with
	// CatchBinding set.
	VarName api.StringRef

	// SavedLexEnv is the activation's lex_env captured before this
	// catcher spliced in a with/catch binding environment, restored
	// when LexEnvActive is set and the catcher is popped.
	SavedLexEnv api.EnvRef
}

func (c *Catcher) HasFlag(f CatcherFlags) bool { return c.Flags&f != 0 }
func (c *Catcher) SetFlag(f CatcherFlags)      { c.Flags |= f }
func (c *Catcher) ClearFlag(f CatcherFlags)    { c.Flags &^= f }
