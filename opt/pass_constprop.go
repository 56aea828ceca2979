package opt

import (
	"math"

	"github.com/gogpu/maxwell/ir"
)

// ConstantPropagation folds instructions whose arguments are immediates and
// simplifies the usual algebraic identities. Folded instructions lose their
// uses and are swept by dead code elimination.
func ConstantPropagation(p *ir.Program) {
	for i := len(p.PostOrderBlocks) - 1; i >= 0; i-- {
		for _, inst := range p.PostOrderBlocks[i].Instructions() {
			foldInst(inst)
		}
	}
}

func foldInst(inst *ir.Inst) {
	switch op := inst.Opcode(); op {
	case ir.OpIAdd32:
		if !foldBinaryU32(inst, func(a, b uint32) uint32 { return a + b }) {
			identityArg(inst, func(v uint32) bool { return v == 0 })
		}
	case ir.OpISub32:
		foldBinaryU32(inst, func(a, b uint32) uint32 { return a - b })
	case ir.OpIMul32:
		if !foldBinaryU32(inst, func(a, b uint32) uint32 { return a * b }) {
			identityArg(inst, func(v uint32) bool { return v == 1 })
			zeroArg(inst, func(v uint32) bool { return v == 0 })
		}
	case ir.OpINeg32:
		foldUnaryU32(inst, func(a uint32) uint32 { return -a })
	case ir.OpIAbs32:
		foldUnaryU32(inst, func(a uint32) uint32 {
			if int32(a) < 0 {
				return uint32(-int32(a))
			}
			return a
		})
	case ir.OpShiftLeftLogical32:
		if !foldBinaryU32(inst, func(a, b uint32) uint32 { return a << (b & 31) }) {
			identityShift(inst)
		}
	case ir.OpShiftRightLogical32:
		if !foldBinaryU32(inst, func(a, b uint32) uint32 { return a >> (b & 31) }) {
			identityShift(inst)
		}
	case ir.OpShiftRightArithmetic32:
		if !foldBinaryU32(inst, func(a, b uint32) uint32 { return uint32(int32(a) >> (b & 31)) }) {
			identityShift(inst)
		}
	case ir.OpBitwiseAnd32:
		if !foldBinaryU32(inst, func(a, b uint32) uint32 { return a & b }) {
			identityArg(inst, func(v uint32) bool { return v == 0xFFFFFFFF })
			zeroArg(inst, func(v uint32) bool { return v == 0 })
		}
	case ir.OpBitwiseOr32:
		if !foldBinaryU32(inst, func(a, b uint32) uint32 { return a | b }) {
			identityArg(inst, func(v uint32) bool { return v == 0 })
		}
	case ir.OpBitwiseXor32:
		if !foldBinaryU32(inst, func(a, b uint32) uint32 { return a ^ b }) {
			identityArg(inst, func(v uint32) bool { return v == 0 })
		}
	case ir.OpBitwiseNot32:
		foldUnaryU32(inst, func(a uint32) uint32 { return ^a })
	case ir.OpSMin32:
		foldBinaryU32(inst, func(a, b uint32) uint32 { return uint32(min(int32(a), int32(b))) })
	case ir.OpSMax32:
		foldBinaryU32(inst, func(a, b uint32) uint32 { return uint32(max(int32(a), int32(b))) })
	case ir.OpUMin32:
		foldBinaryU32(inst, func(a, b uint32) uint32 { return min(a, b) })
	case ir.OpUMax32:
		foldBinaryU32(inst, func(a, b uint32) uint32 { return max(a, b) })
	case ir.OpBitFieldUExtract:
		foldTernaryU32(inst, func(base, off, count uint32) uint32 {
			if count == 0 {
				return 0
			}
			return (base >> (off & 31)) & (0xFFFFFFFF >> (32 - count))
		})
	case ir.OpBitFieldSExtract:
		foldTernaryU32(inst, func(base, off, count uint32) uint32 {
			if count == 0 {
				return 0
			}
			shifted := int32(base<<(32-off-count)) >> (32 - count)
			return uint32(shifted)
		})

	case ir.OpSLessThan:
		foldCompareU32(inst, func(a, b uint32) bool { return int32(a) < int32(b) })
	case ir.OpULessThan:
		foldCompareU32(inst, func(a, b uint32) bool { return a < b })
	case ir.OpIEqual:
		foldCompareU32(inst, func(a, b uint32) bool { return a == b })
	case ir.OpINotEqual:
		foldCompareU32(inst, func(a, b uint32) bool { return a != b })
	case ir.OpSLessThanEqual:
		foldCompareU32(inst, func(a, b uint32) bool { return int32(a) <= int32(b) })
	case ir.OpULessThanEqual:
		foldCompareU32(inst, func(a, b uint32) bool { return a <= b })
	case ir.OpSGreaterThan:
		foldCompareU32(inst, func(a, b uint32) bool { return int32(a) > int32(b) })
	case ir.OpUGreaterThan:
		foldCompareU32(inst, func(a, b uint32) bool { return a > b })
	case ir.OpSGreaterThanEqual:
		foldCompareU32(inst, func(a, b uint32) bool { return int32(a) >= int32(b) })
	case ir.OpUGreaterThanEqual:
		foldCompareU32(inst, func(a, b uint32) bool { return a >= b })

	case ir.OpLogicalAnd:
		foldLogical(inst, func(a, b bool) bool { return a && b })
	case ir.OpLogicalOr:
		foldLogical(inst, func(a, b bool) bool { return a || b })
	case ir.OpLogicalXor:
		foldLogical(inst, func(a, b bool) bool { return a != b })
	case ir.OpLogicalNot:
		if a := inst.Arg(0); a.IsImmediate() {
			inst.ReplaceUsesWith(ir.MakeU1(!a.U1()))
		}

	case ir.OpSelectU1, ir.OpSelectU8, ir.OpSelectU16, ir.OpSelectU32,
		ir.OpSelectU64, ir.OpSelectF16, ir.OpSelectF32, ir.OpSelectF64:
		if cond := inst.Arg(0); cond.IsImmediate() {
			if cond.U1() {
				inst.ReplaceUsesWith(inst.Arg(1))
			} else {
				inst.ReplaceUsesWith(inst.Arg(2))
			}
		}

	case ir.OpBitCastF32U32:
		if a := inst.Arg(0); a.IsImmediate() {
			inst.ReplaceUsesWith(ir.MakeF32(math.Float32frombits(a.U32())))
			return
		}
		unwrapBitCast(inst, ir.OpBitCastU32F32)
	case ir.OpBitCastU32F32:
		if a := inst.Arg(0); a.IsImmediate() {
			inst.ReplaceUsesWith(ir.MakeU32(math.Float32bits(a.F32())))
			return
		}
		unwrapBitCast(inst, ir.OpBitCastF32U32)

	case ir.OpFPAdd32:
		if inst.Flags() == 0 {
			foldBinaryF32(inst, func(a, b float32) float32 { return a + b })
		}
	case ir.OpFPMul32:
		if inst.Flags() == 0 {
			if !foldBinaryF32(inst, func(a, b float32) float32 { return a * b }) {
				identityArgF32(inst, 1)
			}
		}
	case ir.OpFPNeg32:
		if a := inst.Arg(0); a.IsImmediate() {
			inst.ReplaceUsesWith(ir.MakeF32(-a.F32()))
		}
	case ir.OpFPAbs32:
		if a := inst.Arg(0); a.IsImmediate() {
			inst.ReplaceUsesWith(ir.MakeF32(float32(math.Abs(float64(a.F32())))))
		}

	case ir.OpCompositeExtractU32x2, ir.OpCompositeExtractU32x3, ir.OpCompositeExtractU32x4:
		forwardExtract(inst, ir.OpCompositeConstructU32x2, ir.OpCompositeConstructU32x3,
			ir.OpCompositeConstructU32x4)
	case ir.OpCompositeExtractF32x2, ir.OpCompositeExtractF32x3, ir.OpCompositeExtractF32x4:
		forwardExtract(inst, ir.OpCompositeConstructF32x2, ir.OpCompositeConstructF32x3,
			ir.OpCompositeConstructF32x4)
	case ir.OpCompositeExtractF16x2:
		forwardExtract(inst, ir.OpCompositeConstructF16x2)

	case ir.OpPackUint2x32:
		if c := inst.Arg(0).InstRecursive(); c != nil &&
			c.Opcode() == ir.OpCompositeConstructU32x2 &&
			c.Arg(0).IsImmediate() && c.Arg(1).IsImmediate() {
			lo, hi := uint64(c.Arg(0).U32()), uint64(c.Arg(1).U32())
			inst.ReplaceUsesWith(ir.MakeU64(lo | hi<<32))
		}
	}
}

func foldBinaryU32(inst *ir.Inst, f func(a, b uint32) uint32) bool {
	a, b := inst.Arg(0), inst.Arg(1)
	if !a.IsImmediate() || !b.IsImmediate() {
		return false
	}
	inst.ReplaceUsesWith(ir.MakeU32(f(a.U32(), b.U32())))
	return true
}

func foldUnaryU32(inst *ir.Inst, f func(a uint32) uint32) {
	if a := inst.Arg(0); a.IsImmediate() {
		inst.ReplaceUsesWith(ir.MakeU32(f(a.U32())))
	}
}

func foldTernaryU32(inst *ir.Inst, f func(a, b, c uint32) uint32) {
	a, b, c := inst.Arg(0), inst.Arg(1), inst.Arg(2)
	if a.IsImmediate() && b.IsImmediate() && c.IsImmediate() {
		inst.ReplaceUsesWith(ir.MakeU32(f(a.U32(), b.U32(), c.U32())))
	}
}

func foldCompareU32(inst *ir.Inst, f func(a, b uint32) bool) {
	a, b := inst.Arg(0), inst.Arg(1)
	if a.IsImmediate() && b.IsImmediate() {
		inst.ReplaceUsesWith(ir.MakeU1(f(a.U32(), b.U32())))
	}
}

func foldLogical(inst *ir.Inst, f func(a, b bool) bool) {
	a, b := inst.Arg(0), inst.Arg(1)
	if a.IsImmediate() && b.IsImmediate() {
		inst.ReplaceUsesWith(ir.MakeU1(f(a.U1(), b.U1())))
	}
}

func foldBinaryF32(inst *ir.Inst, f func(a, b float32) float32) bool {
	a, b := inst.Arg(0), inst.Arg(1)
	if !a.IsImmediate() || !b.IsImmediate() {
		return false
	}
	inst.ReplaceUsesWith(ir.MakeF32(f(a.F32(), b.F32())))
	return true
}

// identityArg forwards the other operand when one side is the operation's
// neutral element.
func identityArg(inst *ir.Inst, neutral func(uint32) bool) {
	a, b := inst.Arg(0), inst.Arg(1)
	if b.IsImmediate() && neutral(b.U32()) {
		inst.ReplaceUsesWith(a)
	} else if a.IsImmediate() && neutral(a.U32()) {
		inst.ReplaceUsesWith(b)
	}
}

func identityArgF32(inst *ir.Inst, neutral float32) {
	a, b := inst.Arg(0), inst.Arg(1)
	if b.IsImmediate() && b.F32() == neutral {
		inst.ReplaceUsesWith(a)
	} else if a.IsImmediate() && a.F32() == neutral {
		inst.ReplaceUsesWith(b)
	}
}

// zeroArg folds the whole operation to an absorbing element.
func zeroArg(inst *ir.Inst, absorbing func(uint32) bool) {
	a, b := inst.Arg(0), inst.Arg(1)
	if (a.IsImmediate() && absorbing(a.U32())) || (b.IsImmediate() && absorbing(b.U32())) {
		inst.ReplaceUsesWith(ir.MakeU32(0))
	}
}

func identityShift(inst *ir.Inst) {
	if s := inst.Arg(1); s.IsImmediate() && s.U32() == 0 {
		inst.ReplaceUsesWith(inst.Arg(0))
	}
}

// unwrapBitCast cancels a bitcast of the inverse bitcast.
func unwrapBitCast(inst *ir.Inst, inverse ir.Opcode) {
	if src := inst.Arg(0).InstRecursive(); src != nil && src.Opcode() == inverse {
		inst.ReplaceUsesWith(src.Arg(0))
	}
}

// forwardExtract rewires an extract of a composite construct to the
// constructed element when the index is compile time constant.
func forwardExtract(inst *ir.Inst, constructs ...ir.Opcode) {
	src := inst.Arg(0).InstRecursive()
	if src == nil || !inst.Arg(1).IsImmediate() {
		return
	}
	for _, c := range constructs {
		if src.Opcode() == c {
			if idx := int(inst.Arg(1).U32()); idx < src.NumArgs() {
				inst.ReplaceUsesWith(src.Arg(idx))
			}
			return
		}
	}
}
