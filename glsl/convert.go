// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"github.com/gogpu/maxwell/ir"
)

// convertExprs maps each conversion opcode to a format string taking the
// rendered source operand. Narrow integer destinations saturate the way
// the hardware F2I forms do.
var convertExprs = map[ir.Opcode]string{
	ir.OpConvertS8F16:  "uint(clamp(int(float(%s)), -128, 127))",
	ir.OpConvertS8F32:  "uint(clamp(int(%s), -128, 127))",
	ir.OpConvertS8F64:  "uint(clamp(int(%s), -128, 127))",
	ir.OpConvertS16F16: "uint(clamp(int(float(%s)), -32768, 32767))",
	ir.OpConvertS16F32: "uint(clamp(int(%s), -32768, 32767))",
	ir.OpConvertS16F64: "uint(clamp(int(%s), -32768, 32767))",
	ir.OpConvertS32F16: "uint(int(float(%s)))",
	ir.OpConvertS32F32: "uint(int(%s))",
	ir.OpConvertS32F64: "uint(int(%s))",
	ir.OpConvertS64F16: "uint64_t(int64_t(float(%s)))",
	ir.OpConvertS64F32: "uint64_t(int64_t(%s))",
	ir.OpConvertS64F64: "uint64_t(int64_t(%s))",
	ir.OpConvertU8F16:  "min(uint(float(%s)), 0xffu)",
	ir.OpConvertU8F32:  "min(uint(%s), 0xffu)",
	ir.OpConvertU8F64:  "min(uint(%s), 0xffu)",
	ir.OpConvertU16F16: "min(uint(float(%s)), 0xffffu)",
	ir.OpConvertU16F32: "min(uint(%s), 0xffffu)",
	ir.OpConvertU16F64: "min(uint(%s), 0xffffu)",
	ir.OpConvertU32F16: "uint(float(%s))",
	ir.OpConvertU32F32: "uint(%s)",
	ir.OpConvertU32F64: "uint(%s)",
	ir.OpConvertU64F16: "uint64_t(float(%s))",
	ir.OpConvertU64F32: "uint64_t(%s)",
	ir.OpConvertU64F64: "uint64_t(%s)",

	ir.OpConvertF16S32: "float16_t(int(%s))",
	ir.OpConvertF16S64: "float16_t(int64_t(%s))",
	ir.OpConvertF16U32: "float16_t(%s)",
	ir.OpConvertF16U64: "float16_t(%s)",
	ir.OpConvertF32S32: "float(int(%s))",
	ir.OpConvertF32S64: "float(int64_t(%s))",
	ir.OpConvertF32U32: "float(%s)",
	ir.OpConvertF32U64: "float(%s)",
	ir.OpConvertF64S32: "double(int(%s))",
	ir.OpConvertF64S64: "double(int64_t(%s))",
	ir.OpConvertF64U32: "double(%s)",
	ir.OpConvertF64U64: "double(%s)",

	ir.OpConvertF16F32: "float16_t(%s)",
	ir.OpConvertF16F64: "float16_t(float(%s))",
	ir.OpConvertF32F16: "float(%s)",
	ir.OpConvertF32F64: "float(%s)",
	ir.OpConvertF64F16: "double(float(%s))",
	ir.OpConvertF64F32: "double(%s)",

	ir.OpConvertU8U32:  "%s & 0xffu",
	ir.OpConvertU16U32: "%s & 0xffffu",
	ir.OpConvertU32U8:  "%s",
	ir.OpConvertU32U16: "%s",
	ir.OpConvertU32U64: "uint(%s)",
	ir.OpConvertU64U32: "uint64_t(%s)",
}

func (w *writer) emitConvert(inst *ir.Inst) bool {
	expr, ok := convertExprs[inst.Opcode()]
	if !ok {
		return false
	}
	w.write(inst, expr, w.val(inst.Arg(0)))
	return true
}
