package translate

import (
	"github.com/gogpu/maxwell/decode"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

func (t *Translator) iadd(w uint64, b ir.Value) error {
	if decode.Field(w, 50, 1) != 0 {
		return shader.NotImplemented("IADD.SAT")
	}
	a := t.intNeg(t.gprA(w), decode.Field(w, 49, 1) != 0)
	b = t.intNeg(b, decode.Field(w, 48, 1) != 0)
	res := t.e.IAdd32(a, b)
	t.writeCC(w, res)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) iadd32i(w uint64) error {
	a := t.intNeg(t.gprA(w), decode.Field(w, 56, 1) != 0)
	res := t.e.IAdd32(a, ir.MakeU32(decode.Imm32(w)))
	if decode.Field(w, 52, 1) != 0 {
		t.e.Emit(ir.OpSetZFlag, t.e.Emit(ir.OpIEqual, res, ir.MakeU32(0)))
		t.e.Emit(ir.OpSetSFlag, t.e.Emit(ir.OpSLessThan, res, ir.MakeU32(0)))
	}
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) iadd3(w uint64) error {
	a := t.intNeg(t.gprA(w), decode.Field(w, 51, 1) != 0)
	b := t.intNeg(t.gprB(w), decode.Field(w, 50, 1) != 0)
	c := t.intNeg(t.gprC(w), decode.Field(w, 49, 1) != 0)
	res := t.e.IAdd32(t.e.IAdd32(a, b), c)
	t.writeCC(w, res)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) iscadd(w uint64, b ir.Value) error {
	shift := uint32(decode.Field(w, 39, 5))
	a := t.intNeg(t.gprA(w), decode.Field(w, 49, 1) != 0)
	b = t.intNeg(b, decode.Field(w, 48, 1) != 0)
	scaled := t.e.Emit(ir.OpShiftLeftLogical32, a, ir.MakeU32(shift))
	res := t.e.IAdd32(scaled, b)
	t.writeCC(w, res)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) flo(w uint64) error {
	op := ir.OpFindUMsb32
	if decode.Field(w, 48, 1) != 0 {
		op = ir.OpFindSMsb32
	}
	src := t.gprB(w)
	if decode.Field(w, 40, 1) != 0 {
		src = t.e.Emit(ir.OpBitwiseNot32, src)
	}
	t.e.SetReg(decode.DestReg(w), t.e.Emit(op, src))
	return nil
}

func (t *Translator) popc(w uint64) error {
	src := t.gprB(w)
	if decode.Field(w, 40, 1) != 0 {
		src = t.e.Emit(ir.OpBitwiseNot32, src)
	}
	t.e.SetReg(decode.DestReg(w), t.e.Emit(ir.OpBitCount32, src))
	return nil
}

func (t *Translator) shl(w uint64, b ir.Value) error {
	res := t.e.Emit(ir.OpShiftLeftLogical32, t.gprA(w), b)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) shr(w uint64, b ir.Value) error {
	op := ir.OpShiftRightLogical32
	if decode.Field(w, 48, 1) != 0 {
		op = ir.OpShiftRightArithmetic32
	}
	res := t.e.Emit(op, t.gprA(w), b)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) imnmx(w uint64, b ir.Value) error {
	signed := decode.Field(w, 48, 1) != 0
	minOp, maxOp := ir.OpUMin32, ir.OpUMax32
	if signed {
		minOp, maxOp = ir.OpSMin32, ir.OpSMax32
	}
	a := t.gprA(w)
	// The predicate picks the minimum when true.
	cond := t.predSrc(w)
	res := t.e.Emit(ir.OpSelectU32, cond,
		t.e.Emit(minOp, a, b), t.e.Emit(maxOp, a, b))
	t.writeCC(w, res)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) logicOperand(v ir.Value, invert bool) ir.Value {
	if invert {
		return t.e.Emit(ir.OpBitwiseNot32, v)
	}
	return v
}

func (t *Translator) lop(w uint64, b ir.Value) error {
	a := t.logicOperand(t.gprA(w), decode.Field(w, 39, 1) != 0)
	b = t.logicOperand(b, decode.Field(w, 40, 1) != 0)
	var res ir.Value
	switch decode.Field(w, 41, 2) {
	case 0:
		res = t.e.Emit(ir.OpBitwiseAnd32, a, b)
	case 1:
		res = t.e.Emit(ir.OpBitwiseOr32, a, b)
	case 2:
		res = t.e.Emit(ir.OpBitwiseXor32, a, b)
	default: // PASS_B
		res = b
	}
	t.writeCC(w, res)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) lop32i(w uint64) error {
	a := t.logicOperand(t.gprA(w), decode.Field(w, 55, 1) != 0)
	b := t.logicOperand(ir.MakeU32(decode.Imm32(w)), decode.Field(w, 56, 1) != 0)
	var res ir.Value
	switch decode.Field(w, 53, 2) {
	case 0:
		res = t.e.Emit(ir.OpBitwiseAnd32, a, b)
	case 1:
		res = t.e.Emit(ir.OpBitwiseOr32, a, b)
	case 2:
		res = t.e.Emit(ir.OpBitwiseXor32, a, b)
	default:
		res = b
	}
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

// lop3 expands the eight entry truth table: each set LUT bit contributes
// its minterm over (a, b, c).
func (t *Translator) lop3(w uint64) error {
	lut := decode.Field(w, 28, 8)
	a := t.gprA(w)
	b := t.gprB(w)
	c := t.gprC(w)
	na := t.e.Emit(ir.OpBitwiseNot32, a)
	nb := t.e.Emit(ir.OpBitwiseNot32, b)
	nc := t.e.Emit(ir.OpBitwiseNot32, c)
	and3 := func(x, y, z ir.Value) ir.Value {
		return t.e.Emit(ir.OpBitwiseAnd32, t.e.Emit(ir.OpBitwiseAnd32, x, y), z)
	}
	terms := [8]func() ir.Value{
		func() ir.Value { return and3(na, nb, nc) },
		func() ir.Value { return and3(na, nb, c) },
		func() ir.Value { return and3(na, b, nc) },
		func() ir.Value { return and3(na, b, c) },
		func() ir.Value { return and3(a, nb, nc) },
		func() ir.Value { return and3(a, nb, c) },
		func() ir.Value { return and3(a, b, nc) },
		func() ir.Value { return and3(a, b, c) },
	}
	res := ir.MakeU32(0)
	for i, term := range terms {
		if lut&(1<<i) == 0 {
			continue
		}
		v := term()
		if res.IsImmediate() && res.U32() == 0 {
			res = v
		} else {
			res = t.e.Emit(ir.OpBitwiseOr32, res, v)
		}
	}
	t.writeCC(w, res)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) bfe(w uint64, b ir.Value) error {
	offset := t.e.BitFieldUExtract(b, ir.MakeU32(0), ir.MakeU32(8))
	count := t.e.BitFieldUExtract(b, ir.MakeU32(8), ir.MakeU32(8))
	var res ir.Value
	if decode.Field(w, 48, 1) != 0 {
		res = t.e.BitFieldSExtract(t.gprA(w), offset, count)
	} else {
		res = t.e.BitFieldUExtract(t.gprA(w), offset, count)
	}
	t.writeCC(w, res)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) bfi(w uint64) error {
	b := t.gprB(w)
	offset := t.e.BitFieldUExtract(b, ir.MakeU32(0), ir.MakeU32(8))
	count := t.e.BitFieldUExtract(b, ir.MakeU32(8), ir.MakeU32(8))
	res := t.e.Emit(ir.OpBitFieldInsert, t.gprC(w), t.gprA(w), offset, count)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) sel(w uint64, b ir.Value) error {
	res := t.e.Emit(ir.OpSelectU32, t.predSrc(w), t.gprA(w), b)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) isetp(w uint64, b ir.Value) error {
	signed := decode.Field(w, 48, 1) != 0
	cmp := t.intCompare(decode.Field(w, 49, 3), signed, t.gprA(w), b)
	combine := t.predSrc(w)
	t.e.SetPred(decode.DestPred(w), t.boolOp(w, cmp, combine))
	t.e.SetPred(ir.Pred(decode.Field(w, 0, 3)),
		t.boolOp(w, t.e.LogicalNot(cmp), combine))
	return nil
}

func (t *Translator) iset(w uint64, b ir.Value) error {
	signed := decode.Field(w, 48, 1) != 0
	cmp := t.intCompare(decode.Field(w, 49, 3), signed, t.gprA(w), b)
	cond := t.boolOp(w, cmp, t.predSrc(w))
	res := t.boolToU32(cond, decode.Field(w, 44, 1) != 0)
	t.writeCC(w, res)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

// xmad multiplies two 16-bit halves and accumulates a third operand. The
// PSL and MRG modifiers shift the product and merge the result into the
// high half of operand B.
func (t *Translator) xmad(w uint64) error {
	aHigh := decode.Field(w, 53, 1) != 0
	bHigh := decode.Field(w, 35, 1) != 0
	aSigned := decode.Field(w, 48, 1) != 0
	bSigned := decode.Field(w, 49, 1) != 0
	psl := decode.Field(w, 36, 1) != 0
	mrg := decode.Field(w, 37, 1) != 0
	mode := decode.Field(w, 50, 3)

	half := func(v ir.Value, high, signed bool) ir.Value {
		offset := ir.MakeU32(0)
		if high {
			offset = ir.MakeU32(16)
		}
		if signed {
			return t.e.BitFieldSExtract(v, offset, ir.MakeU32(16))
		}
		return t.e.BitFieldUExtract(v, offset, ir.MakeU32(16))
	}
	a := half(t.gprA(w), aHigh, aSigned)
	b := half(t.gprB(w), bHigh, bSigned)
	product := t.e.IMul32(a, b)
	if psl {
		product = t.e.Emit(ir.OpShiftLeftLogical32, product, ir.MakeU32(16))
	}

	c := t.gprC(w)
	switch mode {
	case 0: // plain
	case 1: // CLO: low half of C
		c = half(c, false, false)
	case 2: // CHI
		c = half(c, true, false)
	case 4: // CBCC: C + (B.H1 << 16)
		c = t.e.IAdd32(c, t.e.Emit(ir.OpShiftLeftLogical32,
			half(t.gprB(w), true, false), ir.MakeU32(16)))
	default:
		return shader.NotImplemented("XMAD mode %d", mode)
	}
	res := t.e.IAdd32(product, c)
	if mrg {
		res = t.e.Emit(ir.OpBitFieldInsert, t.gprB(w),
			half(res, false, false), ir.MakeU32(16), ir.MakeU32(16))
	}
	t.writeCC(w, res)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) pset(w uint64) error {
	a := t.predAt(w, 12, 15)
	b := t.predAt(w, 29, 32)
	c := t.predSrc(w)
	inner := t.predBoolOp(decode.Field(w, 24, 2), a, b)
	res := t.boolOp(w, inner, c)
	out := t.boolToU32(res, decode.Field(w, 44, 1) != 0)
	t.writeCC(w, out)
	t.e.SetReg(decode.DestReg(w), out)
	return nil
}

func (t *Translator) psetp(w uint64) error {
	a := t.predAt(w, 12, 15)
	b := t.predAt(w, 29, 32)
	c := t.predSrc(w)
	inner := t.predBoolOp(decode.Field(w, 24, 2), a, b)
	t.e.SetPred(decode.DestPred(w), t.boolOp(w, inner, c))
	t.e.SetPred(ir.Pred(decode.Field(w, 0, 3)),
		t.boolOp(w, t.e.LogicalNot(inner), c))
	return nil
}

// predAt reads a predicate operand at pos with its negation bit at negPos.
func (t *Translator) predAt(w uint64, pos, negPos uint) ir.Value {
	p := t.e.GetPred(ir.Pred(decode.Field(w, pos, 3)))
	if decode.Field(w, negPos, 1) != 0 {
		p = t.e.LogicalNot(p)
	}
	return p
}

func (t *Translator) predBoolOp(code uint64, a, b ir.Value) ir.Value {
	switch code {
	case 0:
		return t.e.LogicalAnd(a, b)
	case 1:
		return t.e.LogicalOr(a, b)
	default:
		return t.e.Emit(ir.OpLogicalXor, a, b)
	}
}
