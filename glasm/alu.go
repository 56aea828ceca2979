// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"github.com/gogpu/maxwell/ir"
)

func (w *writer) emitALU(inst *ir.Inst) bool {
	a := func(n int) string { return w.val(inst.Arg(n)) }

	switch inst.Opcode() {
	case ir.OpIAdd32:
		w.iadd32(inst)
	case ir.OpISub32:
		w.isub32(inst)
	case ir.OpIAdd64:
		w.op("ADD.S64 %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpISub64:
		w.op("SUB.S64 %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpIMul32:
		w.op("MUL.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpINeg32:
		w.op("SUB.S %s.x, 0, %s", w.reg(inst), a(0))
	case ir.OpINeg64:
		w.op("SUB.S64 %s.x, 0, %s", w.reg(inst), a(0))
	case ir.OpIAbs32:
		w.op("ABS.S %s.x, %s", w.reg(inst), a(0))
	case ir.OpShiftLeftLogical32:
		w.op("SHL.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpShiftLeftLogical64:
		w.op("SHL.U64 %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpShiftRightLogical32:
		w.op("SHR.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpShiftRightLogical64:
		w.op("SHR.U64 %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpShiftRightArithmetic32:
		w.op("SHR.S %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpShiftRightArithmetic64:
		w.op("SHR.S64 %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpBitwiseAnd32:
		w.op("AND.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpBitwiseOr32:
		w.op("OR.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpBitwiseXor32:
		w.op("XOR.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpBitwiseNot32:
		w.op("NOT.U %s.x, %s", w.reg(inst), a(0))
	case ir.OpBitFieldInsert:
		// BFI takes the offset and width packed into one operand pair.
		w.op("MOV.U RC.x, %s", a(2))
		w.op("MOV.U RC.y, %s", a(3))
		w.op("BFI.U %s.x, RC, %s, %s", w.reg(inst), a(1), a(0))
	case ir.OpBitFieldSExtract:
		w.op("MOV.U RC.x, %s", a(1))
		w.op("MOV.U RC.y, %s", a(2))
		w.op("BFE.S %s.x, RC, %s", w.reg(inst), a(0))
	case ir.OpBitFieldUExtract:
		w.op("MOV.U RC.x, %s", a(1))
		w.op("MOV.U RC.y, %s", a(2))
		w.op("BFE.U %s.x, RC, %s", w.reg(inst), a(0))
	case ir.OpBitReverse32:
		w.op("BFR.U %s.x, %s", w.reg(inst), a(0))
	case ir.OpBitCount32:
		w.op("BTC.U %s.x, %s", w.reg(inst), a(0))
	case ir.OpFindSMsb32:
		w.op("BTFM.S %s.x, %s", w.reg(inst), a(0))
	case ir.OpFindUMsb32:
		w.op("BTFM.U %s.x, %s", w.reg(inst), a(0))
	case ir.OpSMin32:
		w.op("MIN.S %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpUMin32:
		w.op("MIN.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpSMax32:
		w.op("MAX.S %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpUMax32:
		w.op("MAX.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpSClamp32:
		w.op("MAX.S RC.x, %s, %s", a(0), a(1))
		w.op("MIN.S %s.x, RC.x, %s", w.reg(inst), a(2))
	case ir.OpUClamp32:
		w.op("MAX.U RC.x, %s, %s", a(0), a(1))
		w.op("MIN.U %s.x, RC.x, %s", w.reg(inst), a(2))

	case ir.OpSLessThan:
		w.op("SLT.S %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpULessThan:
		w.op("SLT.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpIEqual:
		w.op("SEQ.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpSLessThanEqual:
		w.op("SLE.S %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpULessThanEqual:
		w.op("SLE.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpSGreaterThan:
		w.op("SGT.S %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpUGreaterThan:
		w.op("SGT.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpINotEqual:
		w.op("SNE.U %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpSGreaterThanEqual:
		w.op("SGE.S %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpUGreaterThanEqual:
		w.op("SGE.U %s.x, %s, %s", w.reg(inst), a(0), a(1))

	case ir.OpLogicalOr:
		w.op("OR.S %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpLogicalAnd:
		w.op("AND.S %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpLogicalXor:
		w.op("XOR.S %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpLogicalNot:
		w.op("NOT.S %s.x, %s", w.reg(inst), a(0))

	case ir.OpSelectU1, ir.OpSelectU8, ir.OpSelectU16, ir.OpSelectU32,
		ir.OpSelectF16, ir.OpSelectF32:
		// CMP picks the second operand on negative, matching true as -1.
		w.op("CMP.S %s.x, %s, %s, %s", w.reg(inst), a(0), a(1), a(2))
	case ir.OpSelectU64, ir.OpSelectF64:
		dst := w.reg(inst)
		w.op("MOV.S.CC RC.x, %s", a(0))
		w.op("MOV.U64 %s.x (NE.x), %s", dst, a(1))
		w.op("MOV.U64 %s.x (EQ.x), %s", dst, a(2))

	// Registers are typeless, so bit casts are plain copies.
	case ir.OpBitCastU16F16, ir.OpBitCastF16U16,
		ir.OpBitCastU32F32, ir.OpBitCastF32U32:
		w.op("MOV.U %s.x, %s", w.reg(inst), a(0))
	case ir.OpBitCastU64F64, ir.OpBitCastF64U64:
		w.op("MOV.U64 %s.x, %s", w.reg(inst), a(0))

	case ir.OpPackUint2x32:
		w.op("PK64.U %s.x, %s", w.reg(inst), w.vec(inst.Arg(0)))
	case ir.OpUnpackUint2x32:
		w.op("UP64.U %s, %s", w.reg(inst), a(0))
	case ir.OpPackDouble2x32:
		w.op("PK64.F %s.x, %s", w.reg(inst), w.vec(inst.Arg(0)))
	case ir.OpUnpackDouble2x32:
		w.op("UP64.F %s, %s", w.reg(inst), a(0))
	case ir.OpPackHalf2x16:
		w.op("PK2H.F %s.x, %s", w.reg(inst), w.vec(inst.Arg(0)))
	case ir.OpUnpackHalf2x16:
		w.op("UP2H.F %s, %s", w.reg(inst), a(0))
	case ir.OpPackFloat2x16, ir.OpUnpackFloat2x16:
		// Packed halves already live as one word.
		w.op("MOV.U %s.x, %s", w.reg(inst), a(0))

	case ir.OpCompositeConstructU32x2, ir.OpCompositeConstructF32x2:
		w.construct(inst, 2)
	case ir.OpCompositeConstructU32x3, ir.OpCompositeConstructF32x3:
		w.construct(inst, 3)
	case ir.OpCompositeConstructU32x4, ir.OpCompositeConstructF32x4:
		w.construct(inst, 4)

	case ir.OpCompositeExtractU32x2, ir.OpCompositeExtractU32x3,
		ir.OpCompositeExtractU32x4, ir.OpCompositeExtractF32x2,
		ir.OpCompositeExtractF32x3, ir.OpCompositeExtractF32x4:
		if !inst.Arg(1).IsImmediate() {
			w.failf("dynamic component index in assembly output")
			return true
		}
		w.op("MOV.U %s.x, %s.%c", w.reg(inst), w.vec(inst.Arg(0)), "xyzw"[inst.Arg(1).U32()])

	case ir.OpCompositeInsertU32x2, ir.OpCompositeInsertU32x3,
		ir.OpCompositeInsertU32x4, ir.OpCompositeInsertF32x2,
		ir.OpCompositeInsertF32x3, ir.OpCompositeInsertF32x4:
		if !inst.Arg(2).IsImmediate() {
			w.failf("dynamic component index in assembly output")
			return true
		}
		dst := w.reg(inst)
		w.op("MOV.U %s, %s", dst, w.vec(inst.Arg(0)))
		w.op("MOV.U %s.%c, %s", dst, "xyzw"[inst.Arg(2).U32()], a(1))

	case ir.OpCompositeConstructF16x2, ir.OpCompositeExtractF16x2:
		w.failf("unlowered half precision composite %v", inst.Opcode())

	default:
		return w.emitFloat(inst) || w.emitConvert(inst) || w.emitWarp(inst)
	}
	return true
}

// construct builds a vector one component move at a time.
func (w *writer) construct(inst *ir.Inst, n int) {
	mov := "MOV.U"
	switch inst.ResultType() {
	case ir.TypeF32x2, ir.TypeF32x3, ir.TypeF32x4:
		mov = "MOV.F"
	}
	dst := w.reg(inst)
	for i := 0; i < n; i++ {
		w.op("%s %s.%c, %s", mov, dst, "xyzw"[i], w.val(inst.Arg(i)))
	}
}

func (w *writer) iadd32(inst *ir.Inst) {
	dst := w.reg(inst)
	carry := inst.AssociatedPseudoOperation(ir.OpGetCarryFromOp)
	ovf := inst.AssociatedPseudoOperation(ir.OpGetOverflowFromOp)
	if carry != nil || ovf != nil {
		w.op("ADD.U.CC %s.x, %s, %s", dst, w.val(inst.Arg(0)), w.val(inst.Arg(1)))
		if carry != nil {
			w.ccBool(w.reg(carry)+".x", "CF.x")
			w.done[carry] = true
		}
		if ovf != nil {
			w.ccBool(w.reg(ovf)+".x", "OF.x")
			w.done[ovf] = true
		}
		return
	}
	w.op("ADD.U %s.x, %s, %s", dst, w.val(inst.Arg(0)), w.val(inst.Arg(1)))
}

func (w *writer) isub32(inst *ir.Inst) {
	dst := w.reg(inst)
	carry := inst.AssociatedPseudoOperation(ir.OpGetCarryFromOp)
	ovf := inst.AssociatedPseudoOperation(ir.OpGetOverflowFromOp)
	if carry != nil || ovf != nil {
		w.op("SUB.U.CC %s.x, %s, %s", dst, w.val(inst.Arg(0)), w.val(inst.Arg(1)))
		if carry != nil {
			w.ccBool(w.reg(carry)+".x", "CF.x")
			w.done[carry] = true
		}
		if ovf != nil {
			w.ccBool(w.reg(ovf)+".x", "OF.x")
			w.done[ovf] = true
		}
		return
	}
	w.op("SUB.U %s.x, %s, %s", dst, w.val(inst.Arg(0)), w.val(inst.Arg(1)))
}
