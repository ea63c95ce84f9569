package bytecode

import "testing"

func TestEncodeDecodeABC(t *testing.T) {
	ins := Encode(OpAdd, 3, 200, 511)
	dec := Decode(ins)
	if dec.Op != OpAdd {
		t.Fatalf("op = %v, want OpAdd", dec.Op)
	}
	if dec.A != 3 || dec.B != 200 || dec.C != 511 {
		t.Fatalf("A/B/C = %d/%d/%d, want 3/200/511", dec.A, dec.B, dec.C)
	}
}

func TestEncodeDecodeBC(t *testing.T) {
	for _, bc := range []int{0, 1, -1, 131071, -131072} {
		ins := EncodeBC(OpLdConst, 7, bc)
		dec := Decode(ins)
		if dec.Op != OpLdConst {
			t.Fatalf("op = %v, want OpLdConst", dec.Op)
		}
		if dec.A != 7 {
			t.Fatalf("A = %d, want 7", dec.A)
		}
		if dec.BC != bc {
			t.Fatalf("BC round-trip: got %d, want %d", dec.BC, bc)
		}
	}
}

func TestEncodeDecodeABCBiased(t *testing.T) {
	for _, abc := range []int{0, 1, -1, 5, -5, 33554431 - ABCBias, -ABCBias} {
		ins := EncodeABC(OpJump, abc)
		dec := Decode(ins)
		if dec.Op != OpJump {
			t.Fatalf("op = %v, want OpJump", dec.Op)
		}
		if dec.ABC != abc {
			t.Fatalf("ABC round-trip: got %d, want %d", dec.ABC, abc)
		}
	}
}

func TestEncodeNegativeFieldsAreMasked(t *testing.T) {
	// Encode's a/b/c fields are unsigned small operands (register
	// numbers); callers never pass negative values here, but the mask
	// must still keep Decode's output within the field width.
	ins := Encode(OpLdReg, -1, -1, -1)
	dec := Decode(ins)
	if dec.Op != OpLdReg || dec.A != aMask || dec.B != bMask || dec.C != cMask {
		t.Fatalf("negative operands: got op %v, %d/%d/%d, want OpLdReg, %d/%d/%d", dec.Op, dec.A, dec.B, dec.C, aMask, bMask, cMask)
	}
}
