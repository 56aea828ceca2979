package decode

import "github.com/gogpu/maxwell/ir"

// Field extracts count bits of word starting at bit pos.
func Field(word uint64, pos, count uint) uint64 {
	return (word >> pos) & (1<<count - 1)
}

// SignedField extracts count bits and sign extends from the top bit.
func SignedField(word uint64, pos, count uint) int64 {
	v := int64(Field(word, pos, count))
	sign := int64(1) << (count - 1)
	return (v ^ sign) - sign
}

// Standard Maxwell operand slots.

// DestReg returns the destination register at bits 0..7.
func DestReg(word uint64) ir.Reg { return ir.Reg(Field(word, 0, 8)) }

// SrcAReg returns the first source register at bits 8..15.
func SrcAReg(word uint64) ir.Reg { return ir.Reg(Field(word, 8, 8)) }

// SrcBReg returns the second source register at bits 20..27.
func SrcBReg(word uint64) ir.Reg { return ir.Reg(Field(word, 20, 8)) }

// SrcCReg returns the third source register at bits 39..46.
func SrcCReg(word uint64) ir.Reg { return ir.Reg(Field(word, 39, 8)) }

// ExecPred returns the execution predicate at bits 16..18 and whether bit 19
// negates it. PT with no negation means the instruction always runs.
func ExecPred(word uint64) (ir.Pred, bool) {
	return ir.Pred(Field(word, 16, 3)), Field(word, 19, 1) != 0
}

// DestPred returns a predicate destination at bits 3..5, used by the SETP
// family.
func DestPred(word uint64) ir.Pred { return ir.Pred(Field(word, 3, 3)) }

// CbufIndex returns the constant buffer slot of a cbuf operand.
func CbufIndex(word uint64) uint32 { return uint32(Field(word, 34, 5)) }

// CbufOffset returns the byte offset of a cbuf operand. The encoded field
// counts 32-bit words.
func CbufOffset(word uint64) uint32 { return uint32(Field(word, 20, 14)) * 4 }

// Imm20 returns the 20-bit ALU immediate sign extended through bit 56.
func Imm20(word uint64) uint32 {
	v := uint32(Field(word, 20, 19))
	if Field(word, 56, 1) != 0 {
		v |= 0xFFF80000
	}
	return v
}

// Imm20F returns the 20-bit immediate placed in the high bits of an F32,
// with bit 56 as the sign. Used by the FADD/FMUL immediate forms.
func Imm20F(word uint64) uint32 {
	v := uint32(Field(word, 20, 19)) << 12
	if Field(word, 56, 1) != 0 {
		v |= 0x80000000
	}
	return v
}

// Imm32 returns the 32-bit immediate of the 32I instruction forms.
func Imm32(word uint64) uint32 { return uint32(Field(word, 20, 32)) }

// BranchOffset returns the signed branch displacement at bits 20..43,
// relative to the address of the next instruction.
func BranchOffset(word uint64) int64 { return SignedField(word, 20, 24) }

// FlowTest returns the flow condition code at bits 0..4 of branch and EXIT
// words. Codes past the basic set are reported as invalid.
func FlowTest(word uint64) (ir.FlowTest, bool) {
	switch Field(word, 0, 5) {
	case 0x0:
		return ir.FlowTestF, true
	case 0x1:
		return ir.FlowTestLT, true
	case 0x2:
		return ir.FlowTestEQ, true
	case 0x3:
		return ir.FlowTestLE, true
	case 0x4:
		return ir.FlowTestGT, true
	case 0x5:
		return ir.FlowTestNE, true
	case 0x6:
		return ir.FlowTestGE, true
	case 0xF:
		return ir.FlowTestT, true
	default:
		return ir.FlowTestT, false
	}
}
