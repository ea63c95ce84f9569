package bytecode

import "github.com/v4xyz/duktape/api"

// Field widths from spec.md §4.5: "32-bit words with fields op:6, a:8,
// b:9, c:9, plus variants bc:18 (unsigned with bias) and abc:26".
const (
	opBits = 6
	aBits  = 8
	bBits  = 9
	cBits  = 9

	aShift  = opBits
	bShift  = aShift + aBits
	cShift  = bShift + bBits
	// bcShift aligns with bShift, not aShift: bc is the 18-bit union of
	// the b and c fields (9+9), used whenever an instruction needs a
	// register operand (a) alongside a wider constant-pool/immediate
	// value simultaneously (LDCONST's dest+index, GETVAR/PUTVAR/DECLVAR/
	// DELVAR's dest-or-src+name-index). Aliasing it to aShift would make
	// the two fields overlap instead of sit side by side.
	bcShift  = bShift
	abcShift = opBits

	aMask  = 1<<aBits - 1
	bMask  = 1<<bBits - 1
	cMask  = 1<<cBits - 1
	bcMask = 1<<18 - 1
	abcMask = 1<<26 - 1

	// BCBias/ABCBias recenter the unsigned bc/abc fields around zero,
	// matching duktape's biased-immediate encoding for signed jump
	// displacements and LDINT's signed payload.
	BCBias  = 1 << 17
	ABCBias = 1 << 25
)

// Encode packs op/a/b/c into a single instruction word (the "ABC"
// three-small-operand form used by most opcodes).
func Encode(op Op, a, b, c int) api.Instruction {
	return api.Instruction(uint32(op) | uint32(a&aMask)<<aShift | uint32(b&bMask)<<bShift | uint32(c&cMask)<<cShift)
}

// EncodeBC packs op/a/bc, where bc is an 18-bit biased field (used by
// LDCONST's constant index and by two-operand forms generally).
func EncodeBC(op Op, a int, bc int) api.Instruction {
	return api.Instruction(uint32(op) | uint32(a&aMask)<<aShift | uint32((bc+BCBias)&bcMask)<<bcShift)
}

// EncodeABC packs op with a single 26-bit biased field (JUMP's
// displacement, LABEL/TRYCATCH's pc_base-relative offsets).
func EncodeABC(op Op, abc int) api.Instruction {
	return api.Instruction(uint32(op) | uint32((abc+ABCBias)&abcMask)<<abcShift)
}

// Decoded is an instruction word split into its fields, read on demand
// by the executor rather than carried around as a struct (the word
// itself is the source of truth, matching the teacher's own
// decode-on-use pattern for its 64-bit operation words).
type Decoded struct {
	Op   Op
	A, B, C int
	BC   int
	ABC  int
}

// Decode splits a word into every interpretation at once; callers read
// only the fields their opcode actually uses.
func Decode(ins api.Instruction) Decoded {
	w := uint32(ins)
	return Decoded{
		Op:  Op(w & (1<<opBits - 1)),
		A:   int(w >> aShift & aMask),
		B:   int(w >> bShift & bMask),
		C:   int(w >> cShift & cMask),
		BC:  int(w>>bcShift&bcMask) - BCBias,
		ABC: int(w>>abcShift&abcMask) - ABCBias,
	}
}
