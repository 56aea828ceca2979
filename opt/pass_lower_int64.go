package opt

import "github.com/gogpu/maxwell/ir"

// LowerInt64ToInt32 decomposes 64-bit integer arithmetic into low/high
// 32-bit halves for hosts without native Int64. Pack and Unpack collapse to
// Identity since the canonical 64-bit value is already a two element
// composite.
func LowerInt64ToInt32(p *ir.Program) {
	e := ir.NewEmitter(p, nil)
	for _, b := range p.Blocks {
		for _, inst := range b.Instructions() {
			switch inst.Opcode() {
			case ir.OpPackUint2x32, ir.OpUnpackUint2x32:
				inst.ReplaceOpcode(ir.OpIdentity)
			case ir.OpIAdd64:
				lowerInt64(e, b, inst, lowerAdd64)
			case ir.OpISub64:
				lowerInt64(e, b, inst, lowerSub64)
			case ir.OpINeg64:
				lowerInt64(e, b, inst, lowerNeg64)
			case ir.OpShiftLeftLogical64:
				lowerInt64(e, b, inst, lowerShl64)
			case ir.OpShiftRightLogical64:
				lowerInt64(e, b, inst, lowerShr64)
			case ir.OpShiftRightArithmetic64:
				lowerInt64(e, b, inst, lowerShrA64)
			}
		}
	}
}

func lowerInt64(e *ir.Emitter, b *ir.Block, inst *ir.Inst, f func(e *ir.Emitter, inst *ir.Inst) ir.Value) {
	e.SetInsertPoint(b, inst)
	res := f(e, inst)
	inst.ReplaceUsesWith(res)
	b.Remove(inst)
	inst.Invalidate()
}

// halves splits a lowered 64-bit value into its 32-bit components.
func halves(e *ir.Emitter, v ir.Value) (lo, hi ir.Value) {
	lo = e.Emit(ir.OpCompositeExtractU32x2, v, ir.MakeU32(0))
	hi = e.Emit(ir.OpCompositeExtractU32x2, v, ir.MakeU32(1))
	return lo, hi
}

func compose(e *ir.Emitter, lo, hi ir.Value) ir.Value {
	return e.Emit(ir.OpCompositeConstructU32x2, lo, hi)
}

// carryOf materializes the carry pseudo result of an add or sub as 0 or 1.
func carryOf(e *ir.Emitter, v ir.Value) ir.Value {
	c := e.PseudoResult(ir.OpGetCarryFromOp, v)
	return e.Emit(ir.OpSelectU32, c, ir.MakeU32(1), ir.MakeU32(0))
}

func lowerAdd64(e *ir.Emitter, inst *ir.Inst) ir.Value {
	aLo, aHi := halves(e, inst.Arg(0))
	bLo, bHi := halves(e, inst.Arg(1))
	lo := e.IAdd32(aLo, bLo)
	hi := e.IAdd32(e.IAdd32(aHi, bHi), carryOf(e, lo))
	return compose(e, lo, hi)
}

func lowerSub64(e *ir.Emitter, inst *ir.Inst) ir.Value {
	aLo, aHi := halves(e, inst.Arg(0))
	bLo, bHi := halves(e, inst.Arg(1))
	lo := e.Emit(ir.OpISub32, aLo, bLo)
	// The carry pseudo on a 32-bit sub reports the borrow.
	borrow := carryOf(e, lo)
	hi := e.Emit(ir.OpISub32, e.Emit(ir.OpISub32, aHi, bHi), borrow)
	return compose(e, lo, hi)
}

func lowerNeg64(e *ir.Emitter, inst *ir.Inst) ir.Value {
	aLo, aHi := halves(e, inst.Arg(0))
	lo := e.IAdd32(e.Emit(ir.OpBitwiseNot32, aLo), ir.MakeU32(1))
	hi := e.IAdd32(e.Emit(ir.OpBitwiseNot32, aHi), carryOf(e, lo))
	return compose(e, lo, hi)
}

func lowerShl64(e *ir.Emitter, inst *ir.Inst) ir.Value {
	lo, hi := halves(e, inst.Arg(0))
	s := e.Emit(ir.OpBitwiseAnd32, inst.Arg(1), ir.MakeU32(63))
	lt32 := e.Emit(ir.OpULessThan, s, ir.MakeU32(32))
	isZero := e.Emit(ir.OpIEqual, s, ir.MakeU32(0))

	loSmall := e.Emit(ir.OpShiftLeftLogical32, lo, s)
	spill := e.Emit(ir.OpShiftRightLogical32, lo, e.Emit(ir.OpISub32, ir.MakeU32(32), s))
	hiSmall := e.Emit(ir.OpBitwiseOr32,
		e.Emit(ir.OpShiftLeftLogical32, hi, s),
		e.Emit(ir.OpSelectU32, isZero, ir.MakeU32(0), spill))
	hiBig := e.Emit(ir.OpShiftLeftLogical32, lo, e.Emit(ir.OpISub32, s, ir.MakeU32(32)))

	newLo := e.Emit(ir.OpSelectU32, lt32, loSmall, ir.MakeU32(0))
	newHi := e.Emit(ir.OpSelectU32, lt32, hiSmall, hiBig)
	return compose(e, newLo, newHi)
}

func lowerShr64(e *ir.Emitter, inst *ir.Inst) ir.Value {
	lo, hi := halves(e, inst.Arg(0))
	s := e.Emit(ir.OpBitwiseAnd32, inst.Arg(1), ir.MakeU32(63))
	lt32 := e.Emit(ir.OpULessThan, s, ir.MakeU32(32))
	isZero := e.Emit(ir.OpIEqual, s, ir.MakeU32(0))

	spill := e.Emit(ir.OpShiftLeftLogical32, hi, e.Emit(ir.OpISub32, ir.MakeU32(32), s))
	loSmall := e.Emit(ir.OpBitwiseOr32,
		e.Emit(ir.OpShiftRightLogical32, lo, s),
		e.Emit(ir.OpSelectU32, isZero, ir.MakeU32(0), spill))
	hiSmall := e.Emit(ir.OpShiftRightLogical32, hi, s)
	loBig := e.Emit(ir.OpShiftRightLogical32, hi, e.Emit(ir.OpISub32, s, ir.MakeU32(32)))

	newLo := e.Emit(ir.OpSelectU32, lt32, loSmall, loBig)
	newHi := e.Emit(ir.OpSelectU32, lt32, hiSmall, ir.MakeU32(0))
	return compose(e, newLo, newHi)
}

func lowerShrA64(e *ir.Emitter, inst *ir.Inst) ir.Value {
	lo, hi := halves(e, inst.Arg(0))
	s := e.Emit(ir.OpBitwiseAnd32, inst.Arg(1), ir.MakeU32(63))
	lt32 := e.Emit(ir.OpULessThan, s, ir.MakeU32(32))
	isZero := e.Emit(ir.OpIEqual, s, ir.MakeU32(0))
	sign := e.Emit(ir.OpShiftRightArithmetic32, hi, ir.MakeU32(31))

	spill := e.Emit(ir.OpShiftLeftLogical32, hi, e.Emit(ir.OpISub32, ir.MakeU32(32), s))
	loSmall := e.Emit(ir.OpBitwiseOr32,
		e.Emit(ir.OpShiftRightLogical32, lo, s),
		e.Emit(ir.OpSelectU32, isZero, ir.MakeU32(0), spill))
	hiSmall := e.Emit(ir.OpShiftRightArithmetic32, hi, s)
	loBig := e.Emit(ir.OpShiftRightArithmetic32, hi, e.Emit(ir.OpISub32, s, ir.MakeU32(32)))

	newLo := e.Emit(ir.OpSelectU32, lt32, loSmall, loBig)
	newHi := e.Emit(ir.OpSelectU32, lt32, hiSmall, sign)
	return compose(e, newLo, newHi)
}
