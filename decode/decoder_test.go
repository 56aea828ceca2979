package decode

import (
	"errors"
	"testing"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		word uint64
		want Op
	}{
		{0x5C10000000170203, IAddR},
		{0xE30000000000000F, Exit},
		{0xE24000000000000F, Bra},
		{0xE290000000000000, Ssy},
		{0xF0F800000000000F, Sync},
		{0x5C98078000070000, MovR},
		{0xEED0000000000000, Ldg},
		{0xEED8000000000000, Stg},
		{0xEF90000000000000, Ldc},
		{0x5CB0000000000000, F2IR},
		{0x5D08000000000000, Hmul2R},
		{0x0100000000000000, Mov32I},
		{0xEF10000000000000, Shfl},
	}
	for _, tc := range cases {
		op, err := Decode(tc.word)
		if err != nil {
			t.Fatalf("Decode(%#016x): %v", tc.word, err)
		}
		if op != tc.want {
			t.Errorf("Decode(%#016x) = %v, want %v", tc.word, op, tc.want)
		}
	}
}

func TestDecodeUnknown(t *testing.T) {
	// 0xFFFF top bits match no declared pattern.
	_, err := Decode(0xFFFF000000000000)
	if err == nil {
		t.Fatal("expected an error for an unknown word")
	}
	var nie *shader.NotImplementedError
	if !errors.As(err, &nie) {
		t.Fatalf("error %v is not NotImplemented", err)
	}
}

func TestDecodeSpecificity(t *testing.T) {
	// SYNC and DEPBAR share the top 12 bits; bit 51 separates them and both
	// must decode to their own form.
	if op, _ := Decode(0xF0F800000000000F); op != Sync {
		t.Errorf("SYNC word decoded as %v", op)
	}
	if op, _ := Decode(0xF0F0000000000000); op != Depbar {
		t.Errorf("DEPBAR word decoded as %v", op)
	}
}

func TestOperandFields(t *testing.T) {
	// IADD R3, R2, R1 with predicate @P0.
	const word = 0x5C10000000170203
	if got := DestReg(word); got != ir.Reg(3) {
		t.Errorf("DestReg = %v", got)
	}
	if got := SrcAReg(word); got != ir.Reg(2) {
		t.Errorf("SrcAReg = %v", got)
	}
	if got := SrcBReg(word); got != ir.Reg(1) {
		t.Errorf("SrcBReg = %v", got)
	}
	pred, neg := ExecPred(word)
	if pred != ir.PredPT || neg {
		t.Errorf("ExecPred = %v negated=%v", pred, neg)
	}
}

func TestImmediates(t *testing.T) {
	// Positive 19-bit immediate.
	w := uint64(0x123) << 20
	if got := Imm20(w); got != 0x123 {
		t.Errorf("Imm20 = %#x", got)
	}
	// Negative immediate via bit 56.
	w |= 1 << 56
	if got := Imm20(w); got != 0xFFF80123 {
		t.Errorf("negative Imm20 = %#x", got)
	}
	// 2.0f packed into the high bits of the FP immediate form.
	if got := Imm20F(uint64(0x40000) << 20); got != 0x40000000 {
		t.Errorf("Imm20F = %#x", got)
	}
}

func TestBranchOffset(t *testing.T) {
	// -16 encoded in the 24-bit displacement field.
	w := uint64(0xFFFFF0) << 20
	if got := BranchOffset(w); got != -16 {
		t.Errorf("BranchOffset = %d", got)
	}
}

func TestCbufOperand(t *testing.T) {
	w := uint64(5)<<34 | uint64(0x44)<<20
	if got := CbufIndex(w); got != 5 {
		t.Errorf("CbufIndex = %d", got)
	}
	if got := CbufOffset(w); got != 0x110 {
		t.Errorf("CbufOffset = %#x", got)
	}
}
