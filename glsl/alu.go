// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

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
		w.write(inst, "%s + %s", a(0), a(1))
	case ir.OpISub64:
		w.write(inst, "%s - %s", a(0), a(1))
	case ir.OpIMul32:
		w.write(inst, "%s * %s", a(0), a(1))
	case ir.OpINeg32:
		w.write(inst, "uint(-int(%s))", a(0))
	case ir.OpINeg64:
		w.write(inst, "uint64_t(-int64_t(%s))", a(0))
	case ir.OpIAbs32:
		w.write(inst, "uint(abs(int(%s)))", a(0))
	case ir.OpShiftLeftLogical32:
		w.write(inst, "%s << %s", a(0), a(1))
	case ir.OpShiftLeftLogical64:
		w.write(inst, "%s << %s", a(0), a(1))
	case ir.OpShiftRightLogical32:
		w.write(inst, "%s >> %s", a(0), a(1))
	case ir.OpShiftRightLogical64:
		w.write(inst, "%s >> %s", a(0), a(1))
	case ir.OpShiftRightArithmetic32:
		w.write(inst, "uint(int(%s) >> %s)", a(0), a(1))
	case ir.OpShiftRightArithmetic64:
		w.write(inst, "uint64_t(int64_t(%s) >> %s)", a(0), a(1))
	case ir.OpBitwiseAnd32:
		w.write(inst, "%s & %s", a(0), a(1))
	case ir.OpBitwiseOr32:
		w.write(inst, "%s | %s", a(0), a(1))
	case ir.OpBitwiseXor32:
		w.write(inst, "%s ^ %s", a(0), a(1))
	case ir.OpBitwiseNot32:
		w.write(inst, "~%s", a(0))
	case ir.OpBitFieldInsert:
		w.write(inst, "bitfieldInsert(%s, %s, int(%s), int(%s))", a(0), a(1), a(2), a(3))
	case ir.OpBitFieldSExtract:
		w.write(inst, "uint(bitfieldExtract(int(%s), int(%s), int(%s)))", a(0), a(1), a(2))
	case ir.OpBitFieldUExtract:
		w.write(inst, "bitfieldExtract(%s, int(%s), int(%s))", a(0), a(1), a(2))
	case ir.OpBitReverse32:
		w.write(inst, "bitfieldReverse(%s)", a(0))
	case ir.OpBitCount32:
		w.write(inst, "uint(bitCount(%s))", a(0))
	case ir.OpFindSMsb32:
		w.write(inst, "uint(findMSB(int(%s)))", a(0))
	case ir.OpFindUMsb32:
		w.write(inst, "uint(findMSB(%s))", a(0))
	case ir.OpSMin32:
		w.write(inst, "uint(min(int(%s), int(%s)))", a(0), a(1))
	case ir.OpUMin32:
		w.write(inst, "min(%s, %s)", a(0), a(1))
	case ir.OpSMax32:
		w.write(inst, "uint(max(int(%s), int(%s)))", a(0), a(1))
	case ir.OpUMax32:
		w.write(inst, "max(%s, %s)", a(0), a(1))
	case ir.OpSClamp32:
		w.write(inst, "uint(clamp(int(%s), int(%s), int(%s)))", a(0), a(1), a(2))
	case ir.OpUClamp32:
		w.write(inst, "clamp(%s, %s, %s)", a(0), a(1), a(2))

	case ir.OpSLessThan:
		w.write(inst, "int(%s) < int(%s)", a(0), a(1))
	case ir.OpULessThan:
		w.write(inst, "%s < %s", a(0), a(1))
	case ir.OpIEqual:
		w.write(inst, "%s == %s", a(0), a(1))
	case ir.OpSLessThanEqual:
		w.write(inst, "int(%s) <= int(%s)", a(0), a(1))
	case ir.OpULessThanEqual:
		w.write(inst, "%s <= %s", a(0), a(1))
	case ir.OpSGreaterThan:
		w.write(inst, "int(%s) > int(%s)", a(0), a(1))
	case ir.OpUGreaterThan:
		w.write(inst, "%s > %s", a(0), a(1))
	case ir.OpINotEqual:
		w.write(inst, "%s != %s", a(0), a(1))
	case ir.OpSGreaterThanEqual:
		w.write(inst, "int(%s) >= int(%s)", a(0), a(1))
	case ir.OpUGreaterThanEqual:
		w.write(inst, "%s >= %s", a(0), a(1))

	case ir.OpLogicalOr:
		w.write(inst, "%s || %s", a(0), a(1))
	case ir.OpLogicalAnd:
		w.write(inst, "%s && %s", a(0), a(1))
	case ir.OpLogicalXor:
		w.write(inst, "%s != %s", a(0), a(1))
	case ir.OpLogicalNot:
		w.write(inst, "!%s", a(0))

	case ir.OpSelectU1, ir.OpSelectU8, ir.OpSelectU16, ir.OpSelectU32,
		ir.OpSelectU64, ir.OpSelectF16, ir.OpSelectF32, ir.OpSelectF64:
		w.write(inst, "%s ? %s : %s", a(0), a(1), a(2))

	case ir.OpBitCastU32F32:
		w.write(inst, "ftou(%s)", a(0))
	case ir.OpBitCastF32U32:
		w.write(inst, "utof(%s)", a(0))
	case ir.OpBitCastU16F16:
		w.write(inst, "packFloat2x16(f16vec2(%s, float16_t(0.0))) & 0xffffu", a(0))
	case ir.OpBitCastF16U16:
		w.write(inst, "unpackFloat2x16(%s).x", a(0))
	case ir.OpBitCastU64F64:
		w.write(inst, "packUint2x32(unpackDouble2x32(%s))", a(0))
	case ir.OpBitCastF64U64:
		w.write(inst, "packDouble2x32(unpackUint2x32(%s))", a(0))
	case ir.OpPackUint2x32:
		w.write(inst, "packUint2x32(%s)", a(0))
	case ir.OpUnpackUint2x32:
		w.write(inst, "unpackUint2x32(%s)", a(0))
	case ir.OpPackFloat2x16:
		w.write(inst, "packFloat2x16(%s)", a(0))
	case ir.OpUnpackFloat2x16:
		w.write(inst, "unpackFloat2x16(%s)", a(0))
	case ir.OpPackHalf2x16:
		w.write(inst, "packHalf2x16(%s)", a(0))
	case ir.OpUnpackHalf2x16:
		w.write(inst, "unpackHalf2x16(%s)", a(0))
	case ir.OpPackDouble2x32:
		w.write(inst, "packDouble2x32(%s)", a(0))
	case ir.OpUnpackDouble2x32:
		w.write(inst, "unpackDouble2x32(%s)", a(0))

	case ir.OpCompositeConstructU32x2:
		w.write(inst, "uvec2(%s, %s)", a(0), a(1))
	case ir.OpCompositeConstructU32x3:
		w.write(inst, "uvec3(%s, %s, %s)", a(0), a(1), a(2))
	case ir.OpCompositeConstructU32x4:
		w.write(inst, "uvec4(%s, %s, %s, %s)", a(0), a(1), a(2), a(3))
	case ir.OpCompositeConstructF32x2:
		w.write(inst, "vec2(%s, %s)", a(0), a(1))
	case ir.OpCompositeConstructF32x3:
		w.write(inst, "vec3(%s, %s, %s)", a(0), a(1), a(2))
	case ir.OpCompositeConstructF32x4:
		w.write(inst, "vec4(%s, %s, %s, %s)", a(0), a(1), a(2), a(3))
	case ir.OpCompositeConstructF16x2:
		w.write(inst, "f16vec2(%s, %s)", a(0), a(1))

	case ir.OpCompositeExtractU32x2, ir.OpCompositeExtractU32x3,
		ir.OpCompositeExtractU32x4, ir.OpCompositeExtractF32x2,
		ir.OpCompositeExtractF32x3, ir.OpCompositeExtractF32x4,
		ir.OpCompositeExtractF16x2:
		w.write(inst, "%s", w.component(a(0), inst.Arg(1)))

	case ir.OpCompositeInsertU32x2, ir.OpCompositeInsertU32x3,
		ir.OpCompositeInsertU32x4, ir.OpCompositeInsertF32x2,
		ir.OpCompositeInsertF32x3, ir.OpCompositeInsertF32x4:
		w.write(inst, "%s", a(0))
		w.line("%s = %s;", w.component(w.name(inst), inst.Arg(2)), a(1))

	default:
		return w.emitFloat(inst) || w.emitConvert(inst) || w.emitWarp(inst)
	}
	return true
}

// component subscripts a vector expression. Immediate indices use swizzle
// selectors; dynamic ones fall back to runtime indexing, with the nested
// select workaround for drivers that miscompile it.
func (w *writer) component(vec string, index ir.Value) string {
	if index.IsImmediate() {
		return fmt.Sprintf("%s.%c", vec, "xyzw"[index.U32()])
	}
	idx := w.val(index)
	if !w.profile.HasGLComponentIndexingBug {
		return fmt.Sprintf("%s[%s]", vec, idx)
	}
	return fmt.Sprintf("(%s == 0u ? %s.x : %s == 1u ? %s.y : %s == 2u ? %s.z : %s.w)",
		idx, vec, idx, vec, idx, vec, vec)
}

func (w *writer) iadd32(inst *ir.Inst) {
	a, b := w.val(inst.Arg(0)), w.val(inst.Arg(1))
	if carry := inst.AssociatedPseudoOperation(ir.OpGetCarryFromOp); carry != nil {
		scratch := w.carryName()
		w.write(inst, "uaddCarry(%s, %s, %s)", a, b, scratch)
		w.line("%s = %s != 0u;", w.name(carry), scratch)
		w.done[carry] = true
	} else {
		w.write(inst, "%s + %s", a, b)
	}
	if ovf := inst.AssociatedPseudoOperation(ir.OpGetOverflowFromOp); ovf != nil {
		r := w.name(inst)
		w.line("%s = int((~(%s ^ %s)) & (%s ^ %s)) < 0;", w.name(ovf), a, b, a, r)
		w.done[ovf] = true
	}
}

func (w *writer) isub32(inst *ir.Inst) {
	a, b := w.val(inst.Arg(0)), w.val(inst.Arg(1))
	if carry := inst.AssociatedPseudoOperation(ir.OpGetCarryFromOp); carry != nil {
		scratch := w.carryName()
		w.write(inst, "usubBorrow(%s, %s, %s)", a, b, scratch)
		// The hardware carry of a subtraction is the inverted borrow.
		w.line("%s = %s == 0u;", w.name(carry), scratch)
		w.done[carry] = true
	} else {
		w.write(inst, "%s - %s", a, b)
	}
	if ovf := inst.AssociatedPseudoOperation(ir.OpGetOverflowFromOp); ovf != nil {
		r := w.name(inst)
		w.line("%s = int((%s ^ %s) & (%s ^ %s)) < 0;", w.name(ovf), a, b, a, r)
		w.done[ovf] = true
	}
}
