// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"github.com/gogpu/maxwell/ir"
)

func (w *writer) emitFloat(inst *ir.Inst) bool {
	a := func(n int) string { return w.val(inst.Arg(n)) }

	switch inst.Opcode() {
	case ir.OpFPAbs32:
		w.op("MOV.F %s.x, |%s|", w.reg(inst), a(0))
	case ir.OpFPAbs64:
		w.op("MOV.F64 %s.x, |%s|", w.reg(inst), a(0))
	case ir.OpFPNeg32:
		w.op("MOV.F %s.x, -%s", w.reg(inst), a(0))
	case ir.OpFPNeg64:
		w.op("MOV.F64 %s.x, -%s", w.reg(inst), a(0))
	case ir.OpFPAdd32:
		w.op("ADD.F %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpFPAdd64:
		w.op("ADD.F64 %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpFPMul32:
		w.op("MUL.F %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpFPMul64:
		w.op("MUL.F64 %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpFPFma32:
		w.op("MAD.F %s.x, %s, %s, %s", w.reg(inst), a(0), a(1), a(2))
	case ir.OpFPFma64:
		w.op("MAD.F64 %s.x, %s, %s, %s", w.reg(inst), a(0), a(1), a(2))
	case ir.OpFPMin32:
		w.op("MIN.F %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpFPMin64:
		w.op("MIN.F64 %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpFPMax32:
		w.op("MAX.F %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpFPMax64:
		w.op("MAX.F64 %s.x, %s, %s", w.reg(inst), a(0), a(1))
	case ir.OpFPSaturate32:
		w.op("MOV.F.SAT %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPSaturate64:
		dst := w.reg(inst)
		w.op("MAX.F64 %s.x, %s, 0.0", dst, a(0))
		w.op("MIN.F64 %s.x, %s.x, 1.0", dst, dst)
	case ir.OpFPClamp32:
		// min(max()) keeps NaN propagation out of the bounds.
		w.op("MAX.F RC.x, %s, %s", a(0), a(1))
		w.op("MIN.F %s.x, RC.x, %s", w.reg(inst), a(2))
	case ir.OpFPClamp64:
		dst := w.reg(inst)
		w.op("MAX.F64 %s.x, %s, %s", dst, a(0), a(1))
		w.op("MIN.F64 %s.x, %s.x, %s", dst, dst, a(2))
	case ir.OpFPRoundEven32:
		w.op("ROUND.F %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPRoundEven64:
		w.op("ROUND.F64 %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPFloor32:
		w.op("FLR.F %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPFloor64:
		w.op("FLR.F64 %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPCeil32:
		w.op("CEIL.F %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPCeil64:
		w.op("CEIL.F64 %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPTrunc32:
		w.op("TRUNC.F %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPTrunc64:
		w.op("TRUNC.F64 %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPRecip32:
		w.op("RCP.F %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPRecip64:
		w.op("RCP.F64 %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPRecipSqrt32:
		w.op("RSQ.F %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPRecipSqrt64:
		w.op("RSQ.F64 %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPSqrt:
		w.op("RSQ.F RC.x, %s", a(0))
		w.op("RCP.F %s.x, RC.x", w.reg(inst))
	case ir.OpFPSin:
		w.op("SIN.F %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPCos:
		w.op("COS.F %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPExp2:
		w.op("EX2.F %s.x, %s", w.reg(inst), a(0))
	case ir.OpFPLog2:
		w.op("LG2.F %s.x, %s", w.reg(inst), a(0))

	case ir.OpFPIsNan32:
		w.op("SNE.F RC.x, %s, %s", a(0), a(0))
		w.op("SNE.S %s.x, RC.x, 0", w.reg(inst))
	case ir.OpFPIsNan64:
		w.op("SNE.F64 RC.x, %s, %s", a(0), a(0))
		w.op("SNE.S %s.x, RC.x, 0", w.reg(inst))

	// Float set instructions yield 1.0 or 0.0, so every comparison is
	// normalized to the signed boolean convention through RC. Unordered
	// forms share the ordered mnemonics; the assembler has no distinct
	// NaN-passing compare.
	case ir.OpFPOrdEqual32, ir.OpFPUnordEqual32:
		w.fcmp(inst, "SEQ.F")
	case ir.OpFPOrdEqual64, ir.OpFPUnordEqual64:
		w.fcmp(inst, "SEQ.F64")
	case ir.OpFPOrdNotEqual32, ir.OpFPUnordNotEqual32:
		w.fcmp(inst, "SNE.F")
	case ir.OpFPOrdNotEqual64, ir.OpFPUnordNotEqual64:
		w.fcmp(inst, "SNE.F64")
	case ir.OpFPOrdLessThan32, ir.OpFPUnordLessThan32:
		w.fcmp(inst, "SLT.F")
	case ir.OpFPOrdLessThan64, ir.OpFPUnordLessThan64:
		w.fcmp(inst, "SLT.F64")
	case ir.OpFPOrdGreaterThan32, ir.OpFPUnordGreaterThan32:
		w.fcmp(inst, "SGT.F")
	case ir.OpFPOrdGreaterThan64, ir.OpFPUnordGreaterThan64:
		w.fcmp(inst, "SGT.F64")
	case ir.OpFPOrdLessThanEqual32, ir.OpFPUnordLessThanEqual32:
		w.fcmp(inst, "SLE.F")
	case ir.OpFPOrdLessThanEqual64, ir.OpFPUnordLessThanEqual64:
		w.fcmp(inst, "SLE.F64")
	case ir.OpFPOrdGreaterThanEqual32, ir.OpFPUnordGreaterThanEqual32:
		w.fcmp(inst, "SGE.F")
	case ir.OpFPOrdGreaterThanEqual64, ir.OpFPUnordGreaterThanEqual64:
		w.fcmp(inst, "SGE.F64")

	case ir.OpFPAbs16, ir.OpFPNeg16, ir.OpFPAdd16, ir.OpFPMul16, ir.OpFPFma16,
		ir.OpFPSaturate16, ir.OpFPClamp16, ir.OpFPRoundEven16, ir.OpFPFloor16,
		ir.OpFPCeil16, ir.OpFPTrunc16, ir.OpFPIsNan16,
		ir.OpFPOrdEqual16, ir.OpFPOrdNotEqual16, ir.OpFPOrdLessThan16,
		ir.OpFPOrdGreaterThan16, ir.OpFPOrdLessThanEqual16, ir.OpFPOrdGreaterThanEqual16,
		ir.OpFPUnordEqual16, ir.OpFPUnordNotEqual16, ir.OpFPUnordLessThan16,
		ir.OpFPUnordGreaterThan16, ir.OpFPUnordLessThanEqual16, ir.OpFPUnordGreaterThanEqual16:
		w.failf("unlowered half precision %v", inst.Opcode())

	default:
		return false
	}
	return true
}

func (w *writer) fcmp(inst *ir.Inst, mnemonic string) {
	w.op("%s RC.x, %s, %s", mnemonic, w.val(inst.Arg(0)), w.val(inst.Arg(1)))
	w.op("SNE.S %s.x, RC.x, 0", w.reg(inst))
}

func (w *writer) emitConvert(inst *ir.Inst) bool {
	a := func(n int) string { return w.val(inst.Arg(n)) }

	switch inst.Opcode() {
	case ir.OpConvertS32F32, ir.OpConvertS32F64:
		w.op("TRUNC.S %s.x, %s", w.reg(inst), a(0))
	case ir.OpConvertS64F32, ir.OpConvertS64F64:
		w.op("TRUNC.S64 %s.x, %s", w.reg(inst), a(0))
	case ir.OpConvertU32F32, ir.OpConvertU32F64:
		w.op("TRUNC.U %s.x, %s", w.reg(inst), a(0))
	case ir.OpConvertU64F32, ir.OpConvertU64F64:
		w.op("TRUNC.U64 %s.x, %s", w.reg(inst), a(0))
	case ir.OpConvertS8F32, ir.OpConvertS8F64:
		dst := w.reg(inst)
		w.op("TRUNC.S %s.x, %s", dst, a(0))
		w.op("MAX.S %s.x, %s.x, -128", dst, dst)
		w.op("MIN.S %s.x, %s.x, 127", dst, dst)
	case ir.OpConvertS16F32, ir.OpConvertS16F64:
		dst := w.reg(inst)
		w.op("TRUNC.S %s.x, %s", dst, a(0))
		w.op("MAX.S %s.x, %s.x, -32768", dst, dst)
		w.op("MIN.S %s.x, %s.x, 32767", dst, dst)
	case ir.OpConvertU8F32, ir.OpConvertU8F64:
		dst := w.reg(inst)
		w.op("TRUNC.U %s.x, %s", dst, a(0))
		w.op("MIN.U %s.x, %s.x, 0xff", dst, dst)
	case ir.OpConvertU16F32, ir.OpConvertU16F64:
		dst := w.reg(inst)
		w.op("TRUNC.U %s.x, %s", dst, a(0))
		w.op("MIN.U %s.x, %s.x, 0xffff", dst, dst)

	case ir.OpConvertF32S32, ir.OpConvertF64S32:
		w.op("I2F.S %s.x, %s", w.reg(inst), a(0))
	case ir.OpConvertF32S64, ir.OpConvertF64S64:
		w.op("I2F.S64 %s.x, %s", w.reg(inst), a(0))
	case ir.OpConvertF32U32, ir.OpConvertF64U32:
		w.op("I2F.U %s.x, %s", w.reg(inst), a(0))
	case ir.OpConvertF32U64, ir.OpConvertF64U64:
		w.op("I2F.U64 %s.x, %s", w.reg(inst), a(0))

	case ir.OpConvertF64F32:
		w.op("MOV.F64 %s.x, %s", w.reg(inst), a(0))
	case ir.OpConvertF32F64:
		w.op("MOV.F %s.x, %s", w.reg(inst), a(0))

	case ir.OpConvertU8U32:
		w.op("AND.U %s.x, %s, 0xff", w.reg(inst), a(0))
	case ir.OpConvertU16U32:
		w.op("AND.U %s.x, %s, 0xffff", w.reg(inst), a(0))
	case ir.OpConvertU32U8, ir.OpConvertU32U16:
		w.op("MOV.U %s.x, %s", w.reg(inst), a(0))
	case ir.OpConvertU32U64:
		w.op("UP64.U %s, %s", w.reg(inst), a(0))
	case ir.OpConvertU64U32:
		w.op("MOV.U RC.x, %s", a(0))
		w.op("MOV.U RC.y, 0")
		w.op("PK64.U %s.x, RC", w.reg(inst))

	case ir.OpConvertS8F16, ir.OpConvertS16F16, ir.OpConvertS32F16,
		ir.OpConvertS64F16, ir.OpConvertU8F16, ir.OpConvertU16F16,
		ir.OpConvertU32F16, ir.OpConvertU64F16,
		ir.OpConvertF16S32, ir.OpConvertF16S64, ir.OpConvertF16U32,
		ir.OpConvertF16U64, ir.OpConvertF16F32, ir.OpConvertF16F64,
		ir.OpConvertF32F16, ir.OpConvertF64F16:
		w.failf("unlowered half precision %v", inst.Opcode())

	default:
		return false
	}
	return true
}
