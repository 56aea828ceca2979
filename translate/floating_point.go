package translate

import (
	"github.com/gogpu/maxwell/decode"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

func fpRounding(code uint64) ir.FpRounding {
	switch code {
	case 1:
		return ir.FpRoundNeg
	case 2:
		return ir.FpRoundPos
	case 3:
		return ir.FpRoundZero
	default:
		return ir.FpRoundNearest
	}
}

func fmzMode(ftz, fmz bool) ir.FmzMode {
	switch {
	case fmz:
		return ir.FmzFMZ
	case ftz:
		return ir.FmzFTZ
	default:
		return ir.FmzNone
	}
}

func (t *Translator) fpSaturate(v ir.Value, sat bool) ir.Value {
	if sat {
		return t.e.Emit(ir.OpFPSaturate32, v)
	}
	return v
}

func (t *Translator) fadd(w uint64, b ir.Value) error {
	a := t.fpMod(t.gprAF32(w), decode.Field(w, 46, 1) != 0, decode.Field(w, 48, 1) != 0)
	b = t.fpMod(b, decode.Field(w, 49, 1) != 0, decode.Field(w, 45, 1) != 0)
	ctl := ir.FpControl{
		Rounding: fpRounding(decode.Field(w, 39, 2)),
		Fmz:      fmzMode(decode.Field(w, 44, 1) != 0, false),
	}
	res := t.fpSaturate(t.e.FP(ir.OpFPAdd32, ctl, a, b), decode.Field(w, 50, 1) != 0)
	t.setRegF32(decode.DestReg(w), res)
	return nil
}

func (t *Translator) fadd32i(w uint64) error {
	a := t.fpMod(t.gprAF32(w), decode.Field(w, 54, 1) != 0, decode.Field(w, 56, 1) != 0)
	b := t.fpMod(ir.MakeF32(f32FromBits(decode.Imm32(w))),
		decode.Field(w, 57, 1) != 0, decode.Field(w, 53, 1) != 0)
	ctl := ir.FpControl{Fmz: fmzMode(decode.Field(w, 55, 1) != 0, false)}
	res := t.e.FP(ir.OpFPAdd32, ctl, a, b)
	t.setRegF32(decode.DestReg(w), res)
	return nil
}

// fmulScale is the post multiply scale table at bits 41..43.
var fmulScale = [8]float32{1, 0.5, 0.25, 0.125, 8, 4, 2, 1}

func (t *Translator) fmul(w uint64, b ir.Value) error {
	a := t.gprAF32(w)
	b = t.fpMod(b, false, decode.Field(w, 48, 1) != 0)
	ctl := ir.FpControl{
		Rounding: fpRounding(decode.Field(w, 39, 2)),
		Fmz:      fmzMode(decode.Field(w, 44, 1) != 0, decode.Field(w, 45, 1) != 0),
	}
	res := t.e.FP(ir.OpFPMul32, ctl, a, b)
	if scale := fmulScale[decode.Field(w, 41, 3)]; scale != 1 {
		res = t.e.FP(ir.OpFPMul32, ctl, res, ir.MakeF32(scale))
	}
	res = t.fpSaturate(res, decode.Field(w, 50, 1) != 0)
	t.setRegF32(decode.DestReg(w), res)
	return nil
}

func (t *Translator) fmul32i(w uint64) error {
	a := t.gprAF32(w)
	b := ir.MakeF32(f32FromBits(decode.Imm32(w)))
	ctl := ir.FpControl{Fmz: fmzMode(decode.Field(w, 53, 1) != 0, decode.Field(w, 54, 1) != 0)}
	res := t.fpSaturate(t.e.FP(ir.OpFPMul32, ctl, a, b), decode.Field(w, 55, 1) != 0)
	t.setRegF32(decode.DestReg(w), res)
	return nil
}

func (t *Translator) ffma(w uint64, b, c ir.Value) error {
	a := t.gprAF32(w)
	b = t.fpMod(b, false, decode.Field(w, 48, 1) != 0)
	c = t.fpMod(c, false, decode.Field(w, 49, 1) != 0)
	ctl := ir.FpControl{
		Rounding: fpRounding(decode.Field(w, 51, 2)),
		Fmz:      fmzMode(decode.Field(w, 53, 1) != 0, decode.Field(w, 54, 1) != 0),
	}
	res := t.fpSaturate(t.e.FP(ir.OpFPFma32, ctl, a, b, c), decode.Field(w, 50, 1) != 0)
	t.setRegF32(decode.DestReg(w), res)
	return nil
}

func (t *Translator) fmnmx(w uint64, b ir.Value) error {
	a := t.fpMod(t.gprAF32(w), decode.Field(w, 46, 1) != 0, decode.Field(w, 48, 1) != 0)
	b = t.fpMod(b, decode.Field(w, 49, 1) != 0, decode.Field(w, 45, 1) != 0)
	cond := t.predSrc(w)
	res := t.e.Emit(ir.OpSelectF32, cond,
		t.e.Emit(ir.OpFPMin32, a, b), t.e.Emit(ir.OpFPMax32, a, b))
	t.setRegF32(decode.DestReg(w), res)
	return nil
}

func (t *Translator) mufu(w uint64) error {
	src := t.fpMod(t.gprAF32(w), decode.Field(w, 46, 1) != 0, decode.Field(w, 48, 1) != 0)
	var res ir.Value
	switch fn := decode.Field(w, 20, 4); fn {
	case 0:
		res = t.e.Emit(ir.OpFPCos, src)
	case 1:
		res = t.e.Emit(ir.OpFPSin, src)
	case 2:
		res = t.e.Emit(ir.OpFPExp2, src)
	case 3:
		res = t.e.Emit(ir.OpFPLog2, src)
	case 4:
		res = t.e.Emit(ir.OpFPRecip32, src)
	case 5:
		res = t.e.Emit(ir.OpFPRecipSqrt32, src)
	case 8:
		res = t.e.Emit(ir.OpFPSqrt, src)
	default:
		return shader.NotImplemented("MUFU function %d", fn)
	}
	res = t.fpSaturate(res, decode.Field(w, 50, 1) != 0)
	t.setRegF32(decode.DestReg(w), res)
	return nil
}

func (t *Translator) fset(w uint64, b ir.Value) error {
	a := t.fpMod(t.gprAF32(w), decode.Field(w, 54, 1) != 0, decode.Field(w, 43, 1) != 0)
	b = t.fpMod(b, decode.Field(w, 44, 1) != 0, decode.Field(w, 53, 1) != 0)
	cmp := t.fpCompare(decode.Field(w, 48, 4), a, b)
	cond := t.boolOp(w, cmp, t.predSrc(w))
	res := t.boolToU32(cond, decode.Field(w, 52, 1) != 0)
	t.writeCC(w, res)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) fsetp(w uint64, b ir.Value) error {
	a := t.fpMod(t.gprAF32(w), decode.Field(w, 7, 1) != 0, decode.Field(w, 43, 1) != 0)
	b = t.fpMod(b, decode.Field(w, 44, 1) != 0, decode.Field(w, 6, 1) != 0)
	cmp := t.fpCompare(decode.Field(w, 48, 4), a, b)
	combine := t.predSrc(w)
	t.e.SetPred(decode.DestPred(w), t.boolOp(w, cmp, combine))
	t.e.SetPred(ir.Pred(decode.Field(w, 0, 3)),
		t.boolOp(w, t.e.LogicalNot(cmp), combine))
	return nil
}

// Double precision arithmetic reads and writes even aligned register pairs.

func (t *Translator) dfpMod(v ir.Value, abs, neg bool) ir.Value {
	if abs {
		v = t.e.Emit(ir.OpFPAbs64, v)
	}
	if neg {
		v = t.e.Emit(ir.OpFPNeg64, v)
	}
	return v
}

func (t *Translator) dadd(w uint64) error {
	a := t.dfpMod(t.gprF64(decode.SrcAReg(w)),
		decode.Field(w, 46, 1) != 0, decode.Field(w, 48, 1) != 0)
	b := t.dfpMod(t.gprF64(decode.SrcBReg(w)),
		decode.Field(w, 49, 1) != 0, decode.Field(w, 45, 1) != 0)
	ctl := ir.FpControl{Rounding: fpRounding(decode.Field(w, 39, 2))}
	t.setRegF64(decode.DestReg(w), t.e.FP(ir.OpFPAdd64, ctl, a, b))
	return nil
}

func (t *Translator) dmul(w uint64) error {
	a := t.gprF64(decode.SrcAReg(w))
	b := t.dfpMod(t.gprF64(decode.SrcBReg(w)), false, decode.Field(w, 48, 1) != 0)
	ctl := ir.FpControl{Rounding: fpRounding(decode.Field(w, 39, 2))}
	t.setRegF64(decode.DestReg(w), t.e.FP(ir.OpFPMul64, ctl, a, b))
	return nil
}

func (t *Translator) dfma(w uint64) error {
	a := t.gprF64(decode.SrcAReg(w))
	b := t.dfpMod(t.gprF64(decode.SrcBReg(w)), false, decode.Field(w, 48, 1) != 0)
	c := t.dfpMod(t.gprF64(decode.SrcCReg(w)), false, decode.Field(w, 49, 1) != 0)
	ctl := ir.FpControl{Rounding: fpRounding(decode.Field(w, 50, 2))}
	t.setRegF64(decode.DestReg(w), t.e.FP(ir.OpFPFma64, ctl, a, b, c))
	return nil
}
