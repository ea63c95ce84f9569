package esobject

import (
	"strconv"

	"github.com/v4xyz/duktape/api"
)

// StringRef is a bare, non-interned api.StringRef. This reference
// implementation has no shared string table to intern against (spec.md
// §1 keeps string interning out of the core's scope entirely); a real
// embedder's StringRef would typically wrap a handle into one.
type StringRef struct{ s string }

// NewStringRef wraps a plain Go string as an api.StringRef.
func NewStringRef(s string) *StringRef { return &StringRef{s: s} }

func (*StringRef) IncRef()          {}
func (*StringRef) DecRef()          {}
func (r *StringRef) String() string { return r.s }

func str(s string) api.Value { return api.String(NewStringRef(s)) }

// keyString converts a property-access key Value to its canonical
// string form (ES5 §8.12's ToPropertyKey, minus symbols, which this
// ES5 core has no notion of).
func keyString(key api.Value) string {
	switch key.Tag() {
	case api.TagString:
		return key.AsString().String()
	case api.TagNumber:
		return formatNumber(key.AsNumber())
	case api.TagBoolean:
		if key.AsBool() {
			return "true"
		}
		return "false"
	case api.TagNull:
		return "null"
	case api.TagUndefined:
		return "undefined"
	default:
		return "[object]"
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
