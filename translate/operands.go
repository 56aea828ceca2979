package translate

import (
	"math"

	"github.com/gogpu/maxwell/decode"
	"github.com/gogpu/maxwell/ir"
)

// Operand helpers shared by the instruction handlers. The R, C, and I
// instruction forms differ only in where the second source comes from, so
// each handler takes the already loaded srcB value.

func (t *Translator) gprA(w uint64) ir.Value { return t.e.GetReg(decode.SrcAReg(w)) }
func (t *Translator) gprB(w uint64) ir.Value { return t.e.GetReg(decode.SrcBReg(w)) }
func (t *Translator) gprC(w uint64) ir.Value { return t.e.GetReg(decode.SrcCReg(w)) }

func (t *Translator) cbufU32(w uint64) ir.Value {
	return t.e.GetCbuf(ir.OpGetCbufU32,
		ir.MakeU32(decode.CbufIndex(w)), ir.MakeU32(decode.CbufOffset(w)))
}

func (t *Translator) cbufF32(w uint64) ir.Value {
	return t.e.GetCbuf(ir.OpGetCbufF32,
		ir.MakeU32(decode.CbufIndex(w)), ir.MakeU32(decode.CbufOffset(w)))
}

func (t *Translator) immU32(w uint64) ir.Value { return ir.MakeU32(decode.Imm20(w)) }

func (t *Translator) immF32(w uint64) ir.Value {
	return ir.MakeF32(f32FromBits(decode.Imm20F(w)))
}

func f32FromBits(bits uint32) float32 { return math.Float32frombits(bits) }

// Floating point register views.

func (t *Translator) gprAF32(w uint64) ir.Value {
	return t.e.Emit(ir.OpBitCastF32U32, t.gprA(w))
}

func (t *Translator) gprBF32(w uint64) ir.Value {
	return t.e.Emit(ir.OpBitCastF32U32, t.gprB(w))
}

func (t *Translator) gprCF32(w uint64) ir.Value {
	return t.e.Emit(ir.OpBitCastF32U32, t.gprC(w))
}

func (t *Translator) setRegF32(r ir.Reg, v ir.Value) {
	t.e.SetReg(r, t.e.Emit(ir.OpBitCastU32F32, v))
}

// gprF64 reads the even aligned register pair r, r+1 as one double.
func (t *Translator) gprF64(r ir.Reg) ir.Value {
	pair := t.e.Emit(ir.OpCompositeConstructU32x2, t.e.GetReg(r), t.e.GetReg(r+1))
	return t.e.Emit(ir.OpPackDouble2x32, pair)
}

func (t *Translator) setRegF64(r ir.Reg, v ir.Value) {
	pair := t.e.Emit(ir.OpUnpackDouble2x32, v)
	t.e.SetReg(r, t.e.Emit(ir.OpCompositeExtractU32x2, pair, ir.MakeU32(0)))
	t.e.SetReg(r+1, t.e.Emit(ir.OpCompositeExtractU32x2, pair, ir.MakeU32(1)))
}

// fpMod applies the usual absolute value and negation modifier pair.
func (t *Translator) fpMod(v ir.Value, abs, neg bool) ir.Value {
	if abs {
		v = t.e.Emit(ir.OpFPAbs32, v)
	}
	if neg {
		v = t.e.Emit(ir.OpFPNeg32, v)
	}
	return v
}

func (t *Translator) intNeg(v ir.Value, neg bool) ir.Value {
	if neg {
		v = t.e.Emit(ir.OpINeg32, v)
	}
	return v
}

// predSrc reads the predicate operand at bits 39..41 with its negation bit
// at 42, the slot shared by SEL, IMNMX, FMNMX, and the SETP combiners.
func (t *Translator) predSrc(w uint64) ir.Value {
	p := t.e.GetPred(ir.Pred(decode.Field(w, 39, 3)))
	if decode.Field(w, 42, 1) != 0 {
		p = t.e.LogicalNot(p)
	}
	return p
}

// writeCC updates the Z and S condition code flags when bit 47 requests it.
func (t *Translator) writeCC(w uint64, res ir.Value) {
	if decode.Field(w, 47, 1) == 0 {
		return
	}
	t.e.Emit(ir.OpSetZFlag, t.e.Emit(ir.OpIEqual, res, ir.MakeU32(0)))
	t.e.Emit(ir.OpSetSFlag, t.e.Emit(ir.OpSLessThan, res, ir.MakeU32(0)))
}

// boolOp combines two predicate values the way the SETP family encodes it
// at bits 45..46: AND, OR, XOR.
func (t *Translator) boolOp(w uint64, a, b ir.Value) ir.Value {
	switch decode.Field(w, 45, 2) {
	case 0:
		return t.e.LogicalAnd(a, b)
	case 1:
		return t.e.LogicalOr(a, b)
	default:
		if a.IsImmediate() && b.IsImmediate() {
			return ir.MakeU1(a.U1() != b.U1())
		}
		return t.e.Emit(ir.OpLogicalXor, a, b)
	}
}

// intCompare lowers the three bit comparison code shared by ISETP, ISET,
// and IMNMX style selections. Signed distinguishes the LT/LE/GT/GE forms.
func (t *Translator) intCompare(code uint64, signed bool, a, b ir.Value) ir.Value {
	pick := func(s, u ir.Opcode) ir.Opcode {
		if signed {
			return s
		}
		return u
	}
	switch code {
	case 0: // F
		return ir.MakeU1(false)
	case 1: // LT
		return t.e.Emit(pick(ir.OpSLessThan, ir.OpULessThan), a, b)
	case 2: // EQ
		return t.e.Emit(ir.OpIEqual, a, b)
	case 3: // LE
		return t.e.Emit(pick(ir.OpSLessThanEqual, ir.OpULessThanEqual), a, b)
	case 4: // GT
		return t.e.Emit(pick(ir.OpSGreaterThan, ir.OpUGreaterThan), a, b)
	case 5: // NE
		return t.e.Emit(ir.OpINotEqual, a, b)
	case 6: // GE
		return t.e.Emit(pick(ir.OpSGreaterThanEqual, ir.OpUGreaterThanEqual), a, b)
	default: // T
		return ir.MakeU1(true)
	}
}

// fpCompare lowers the four bit floating point comparison code of FSET and
// FSETP. The upper half of the code space is the unordered mirror of the
// lower half.
func (t *Translator) fpCompare(code uint64, a, b ir.Value) ir.Value {
	switch code {
	case 0: // F
		return ir.MakeU1(false)
	case 1:
		return t.e.Emit(ir.OpFPOrdLessThan32, a, b)
	case 2:
		return t.e.Emit(ir.OpFPOrdEqual32, a, b)
	case 3:
		return t.e.Emit(ir.OpFPOrdLessThanEqual32, a, b)
	case 4:
		return t.e.Emit(ir.OpFPOrdGreaterThan32, a, b)
	case 5:
		return t.e.Emit(ir.OpFPOrdNotEqual32, a, b)
	case 6:
		return t.e.Emit(ir.OpFPOrdGreaterThanEqual32, a, b)
	case 7: // NUM: both operands ordered
		return t.e.LogicalNot(t.e.LogicalOr(
			t.e.Emit(ir.OpFPIsNan32, a), t.e.Emit(ir.OpFPIsNan32, b)))
	case 8: // NAN
		return t.e.LogicalOr(
			t.e.Emit(ir.OpFPIsNan32, a), t.e.Emit(ir.OpFPIsNan32, b))
	case 9:
		return t.e.Emit(ir.OpFPUnordLessThan32, a, b)
	case 10:
		return t.e.Emit(ir.OpFPUnordEqual32, a, b)
	case 11:
		return t.e.Emit(ir.OpFPUnordLessThanEqual32, a, b)
	case 12:
		return t.e.Emit(ir.OpFPUnordGreaterThan32, a, b)
	case 13:
		return t.e.Emit(ir.OpFPUnordNotEqual32, a, b)
	case 14:
		return t.e.Emit(ir.OpFPUnordGreaterThanEqual32, a, b)
	default: // T
		return ir.MakeU1(true)
	}
}

// boolToU32 materializes a predicate as the integer mask Maxwell uses, or
// as float 1.0 in BF mode.
func (t *Translator) boolToU32(cond ir.Value, bf bool) ir.Value {
	if bf {
		one := t.e.Emit(ir.OpBitCastU32F32, ir.MakeF32(1.0))
		return t.e.Emit(ir.OpSelectU32, cond, one, ir.MakeU32(0))
	}
	return t.e.Emit(ir.OpSelectU32, cond, ir.MakeU32(0xFFFFFFFF), ir.MakeU32(0))
}
