package translate

import (
	"github.com/gogpu/maxwell/decode"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// Half precision instructions operate on two 16-bit lanes packed in one
// register. Operands carry a swizzle selector, results a merge selector;
// the handlers work on extracted lanes so the selectors stay local.

type halfLanes struct {
	lo, hi ir.Value
}

// halfSwizzle selectors.
const (
	swzH1H0 = 0
	swzF32  = 1
	swzH0H0 = 2
	swzH1H1 = 3
)

// halfOperand loads a register as two f16 lanes under the given swizzle,
// applying per lane abs and neg.
func (t *Translator) halfOperand(r ir.Reg, swz uint64, abs, neg bool) halfLanes {
	mod := func(v ir.Value) ir.Value {
		if abs {
			v = t.e.Emit(ir.OpFPAbs16, v)
		}
		if neg {
			v = t.e.Emit(ir.OpFPNeg16, v)
		}
		return v
	}
	if swz == swzF32 {
		f := t.e.Emit(ir.OpBitCastF32U32, t.e.GetReg(r))
		h := mod(t.e.Emit(ir.OpConvertF16F32, f))
		return halfLanes{lo: h, hi: h}
	}
	v := t.e.Emit(ir.OpUnpackFloat2x16, t.e.GetReg(r))
	lo := t.e.Emit(ir.OpCompositeExtractF16x2, v, ir.MakeU32(0))
	hi := t.e.Emit(ir.OpCompositeExtractF16x2, v, ir.MakeU32(1))
	switch swz {
	case swzH0H0:
		lo = mod(lo)
		return halfLanes{lo: lo, hi: lo}
	case swzH1H1:
		hi = mod(hi)
		return halfLanes{lo: hi, hi: hi}
	default:
		return halfLanes{lo: mod(lo), hi: mod(hi)}
	}
}

// Merge selectors at bits 49..50.
const (
	mrgH1H0 = 0
	mrgF32  = 1
	mrgH0   = 2
	mrgH1   = 3
)

// halfMerge writes the two result lanes back under the merge selector.
func (t *Translator) halfMerge(w uint64, dest ir.Reg, res halfLanes) {
	switch decode.Field(w, 49, 2) {
	case mrgF32:
		f := t.e.Emit(ir.OpConvertF32F16, res.lo)
		t.e.SetReg(dest, t.e.Emit(ir.OpBitCastU32F32, f))
	case mrgH0:
		packed := t.e.Emit(ir.OpPackFloat2x16,
			t.e.Emit(ir.OpCompositeConstructF16x2, res.lo, res.lo))
		t.e.SetReg(dest, t.e.Emit(ir.OpBitFieldInsert, t.e.GetReg(dest),
			packed, ir.MakeU32(0), ir.MakeU32(16)))
	case mrgH1:
		packed := t.e.Emit(ir.OpPackFloat2x16,
			t.e.Emit(ir.OpCompositeConstructF16x2, res.hi, res.hi))
		t.e.SetReg(dest, t.e.Emit(ir.OpBitFieldInsert, t.e.GetReg(dest),
			packed, ir.MakeU32(16), ir.MakeU32(16)))
	default:
		t.e.SetReg(dest, t.e.Emit(ir.OpPackFloat2x16,
			t.e.Emit(ir.OpCompositeConstructF16x2, res.lo, res.hi)))
	}
}

func (t *Translator) halfSaturate(v ir.Value, sat bool) ir.Value {
	if sat {
		return t.e.Emit(ir.OpFPSaturate16, v)
	}
	return v
}

func (t *Translator) hadd2(w uint64) error {
	a := t.halfOperand(decode.SrcAReg(w), decode.Field(w, 47, 2),
		decode.Field(w, 44, 1) != 0, decode.Field(w, 43, 1) != 0)
	b := t.halfOperand(decode.SrcBReg(w), decode.Field(w, 28, 2),
		decode.Field(w, 30, 1) != 0, decode.Field(w, 31, 1) != 0)
	ctl := ir.FpControl{Fmz: fmzMode(decode.Field(w, 39, 1) != 0, false)}
	sat := decode.Field(w, 32, 1) != 0
	res := halfLanes{
		lo: t.halfSaturate(t.e.FP(ir.OpFPAdd16, ctl, a.lo, b.lo), sat),
		hi: t.halfSaturate(t.e.FP(ir.OpFPAdd16, ctl, a.hi, b.hi), sat),
	}
	t.halfMerge(w, decode.DestReg(w), res)
	return nil
}

func (t *Translator) hmul2(w uint64) error {
	a := t.halfOperand(decode.SrcAReg(w), decode.Field(w, 47, 2),
		decode.Field(w, 44, 1) != 0, false)
	b := t.halfOperand(decode.SrcBReg(w), decode.Field(w, 28, 2),
		decode.Field(w, 30, 1) != 0, decode.Field(w, 31, 1) != 0)
	fmzField := decode.Field(w, 39, 2)
	ctl := ir.FpControl{Fmz: fmzMode(fmzField == 1, fmzField == 2)}
	sat := decode.Field(w, 32, 1) != 0

	mul := func(x, y ir.Value) ir.Value {
		res := t.e.FP(ir.OpFPMul16, ctl, x, y)
		if ctl.Fmz == ir.FmzFMZ && !sat {
			// Zero times anything is exactly zero, even against NaN or
			// infinity. Reselect through the right hand side so a zero
			// multiplicand forces a zero product.
			zero := t.e.Emit(ir.OpFPOrdEqual16, y, ir.MakeF16(0))
			res = t.e.Emit(ir.OpSelectF16, zero, ir.MakeF16(0), res)
		}
		return t.halfSaturate(res, sat)
	}
	res := halfLanes{lo: mul(a.lo, b.lo), hi: mul(a.hi, b.hi)}
	t.halfMerge(w, decode.DestReg(w), res)
	return nil
}

func (t *Translator) hfma2(w uint64) error {
	a := t.halfOperand(decode.SrcAReg(w), decode.Field(w, 47, 2), false, false)
	b := t.halfOperand(decode.SrcBReg(w), decode.Field(w, 28, 2),
		false, decode.Field(w, 31, 1) != 0)
	c := t.halfOperand(decode.SrcCReg(w), decode.Field(w, 35, 2),
		false, decode.Field(w, 30, 1) != 0)
	fmzField := decode.Field(w, 37, 2)
	ctl := ir.FpControl{Fmz: fmzMode(fmzField == 1, fmzField == 2)}
	sat := decode.Field(w, 32, 1) != 0
	res := halfLanes{
		lo: t.halfSaturate(t.e.FP(ir.OpFPFma16, ctl, a.lo, b.lo, c.lo), sat),
		hi: t.halfSaturate(t.e.FP(ir.OpFPFma16, ctl, a.hi, b.hi, c.hi), sat),
	}
	t.halfMerge(w, decode.DestReg(w), res)
	return nil
}

// halfCompare lowers the HSET2 comparison code per lane.
func (t *Translator) halfCompare(code uint64, a, b ir.Value) (ir.Value, error) {
	switch code {
	case 0:
		return ir.MakeU1(false), nil
	case 1:
		return t.e.Emit(ir.OpFPOrdLessThan16, a, b), nil
	case 2:
		return t.e.Emit(ir.OpFPOrdEqual16, a, b), nil
	case 3:
		return t.e.Emit(ir.OpFPOrdLessThanEqual16, a, b), nil
	case 4:
		return t.e.Emit(ir.OpFPOrdGreaterThan16, a, b), nil
	case 5:
		return t.e.Emit(ir.OpFPOrdNotEqual16, a, b), nil
	case 6:
		return t.e.Emit(ir.OpFPOrdGreaterThanEqual16, a, b), nil
	case 7:
		return t.e.LogicalNot(t.e.LogicalOr(
			t.e.Emit(ir.OpFPIsNan16, a), t.e.Emit(ir.OpFPIsNan16, b))), nil
	case 8:
		return t.e.LogicalOr(
			t.e.Emit(ir.OpFPIsNan16, a), t.e.Emit(ir.OpFPIsNan16, b)), nil
	case 9:
		return t.e.Emit(ir.OpFPUnordLessThan16, a, b), nil
	case 10:
		return t.e.Emit(ir.OpFPUnordEqual16, a, b), nil
	case 11:
		return t.e.Emit(ir.OpFPUnordLessThanEqual16, a, b), nil
	case 12:
		return t.e.Emit(ir.OpFPUnordGreaterThan16, a, b), nil
	case 13:
		return t.e.Emit(ir.OpFPUnordNotEqual16, a, b), nil
	case 14:
		return t.e.Emit(ir.OpFPUnordGreaterThanEqual16, a, b), nil
	case 15:
		return ir.MakeU1(true), nil
	}
	return ir.Value{}, shader.InvalidArgument("half comparison %d", code)
}

func (t *Translator) hset2(w uint64) error {
	a := t.halfOperand(decode.SrcAReg(w), decode.Field(w, 47, 2),
		decode.Field(w, 44, 1) != 0, decode.Field(w, 43, 1) != 0)
	b := t.halfOperand(decode.SrcBReg(w), decode.Field(w, 28, 2),
		decode.Field(w, 30, 1) != 0, decode.Field(w, 31, 1) != 0)
	combine := t.predSrc(w)
	bf := decode.Field(w, 53, 1) != 0

	lane := func(x, y ir.Value) (ir.Value, error) {
		cmp, err := t.halfCompare(decode.Field(w, 35, 4), x, y)
		if err != nil {
			return ir.Value{}, err
		}
		return t.boolOp(w, cmp, combine), nil
	}
	lo, err := lane(a.lo, b.lo)
	if err != nil {
		return err
	}
	hi, err := lane(a.hi, b.hi)
	if err != nil {
		return err
	}

	// Boolean results pack as all ones or, in BF mode, half precision 1.0.
	toBits := func(cond ir.Value) ir.Value {
		if bf {
			one := ir.MakeU32(0x3C00)
			return t.e.Emit(ir.OpSelectU32, cond, one, ir.MakeU32(0))
		}
		return t.e.Emit(ir.OpSelectU32, cond, ir.MakeU32(0xFFFF), ir.MakeU32(0))
	}
	res := t.e.Emit(ir.OpBitFieldInsert, toBits(lo),
		toBits(hi), ir.MakeU32(16), ir.MakeU32(16))
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) hsetp2(w uint64) error {
	a := t.halfOperand(decode.SrcAReg(w), decode.Field(w, 47, 2),
		decode.Field(w, 44, 1) != 0, decode.Field(w, 43, 1) != 0)
	b := t.halfOperand(decode.SrcBReg(w), decode.Field(w, 28, 2),
		decode.Field(w, 30, 1) != 0, decode.Field(w, 31, 1) != 0)
	combine := t.predSrc(w)

	lo, err := t.halfCompare(decode.Field(w, 35, 4), a.lo, b.lo)
	if err != nil {
		return err
	}
	hi, err := t.halfCompare(decode.Field(w, 35, 4), a.hi, b.hi)
	if err != nil {
		return err
	}
	// H_AND requires both lanes to pass; otherwise the low lane decides.
	cmp := lo
	if decode.Field(w, 49, 1) != 0 {
		cmp = t.e.LogicalAnd(lo, hi)
	}
	t.e.SetPred(decode.DestPred(w), t.boolOp(w, cmp, combine))
	t.e.SetPred(ir.Pred(decode.Field(w, 0, 3)),
		t.boolOp(w, t.e.LogicalNot(cmp), combine))
	return nil
}
