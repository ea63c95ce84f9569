package esstack

import "github.com/v4xyz/duktape/api"

// LongjmpType is the non-local transfer kind carried by LongjmpState
// (spec.md §3, §4.3).
type LongjmpType uint8

const (
	LJUnknown LongjmpType = iota
	LJThrow
	LJReturn
	LJBreak
	LJContinue
	LJYield
	LJResume
	LJNormal
)

func (t LongjmpType) String() string {
	switch t {
	case LJUnknown:
		return "UNKNOWN"
	case LJThrow:
		return "THROW"
	case LJReturn:
		return "RETURN"
	case LJBreak:
		return "BREAK"
	case LJContinue:
		return "CONTINUE"
	case LJYield:
		return "YIELD"
	case LJResume:
		return "RESUME"
	case LJNormal:
		return "NORMAL"
	default:
		return "INVALID"
	}
}

// LongjmpState is the shared slot spec.md §3/§4.3 describes: "owned by
// exactly one in-flight non-local transfer at a time; between
// transfers, type = UNKNOWN and both values are undefined."
//
// For LJBreak/LJContinue, Value1 carries the label id (as a number).
// For LJResume, Value1 is the payload and Value2 wraps the resumee
// Thread (via ThreadValue/ThreadFromValue in thread.go).
type LongjmpState struct {
	Type    LongjmpType
	Value1  api.Value
	Value2  api.Value
	IsError bool
}

// Clear resets the longjmp state to its between-transfers shape,
// decref'ing both values in the slot-write order spec.md §3 mandates.
func (lj *LongjmpState) Clear() {
	lj.Type = LJUnknown
	api.StoreValue(&lj.Value1, api.Undefined())
	api.StoreValue(&lj.Value2, api.Undefined())
	lj.IsError = false
}

// Set installs a new transfer, taking ownership of v1/v2's reference
// counts (the caller should not separately IncRef them).
func (lj *LongjmpState) Set(t LongjmpType, v1, v2 api.Value, isError bool) {
	lj.Type = t
	lj.Value1 = v1
	lj.Value2 = v2
	lj.IsError = isError
}
