// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"github.com/gogpu/maxwell/ir"
)

func (w *writer) emitFloat(inst *ir.Inst) bool {
	a := func(n int) string { return w.val(inst.Arg(n)) }

	switch inst.Opcode() {
	case ir.OpFPAbs16, ir.OpFPAbs32, ir.OpFPAbs64:
		w.write(inst, "abs(%s)", a(0))
	case ir.OpFPNeg16, ir.OpFPNeg32, ir.OpFPNeg64:
		w.write(inst, "-%s", a(0))
	case ir.OpFPAdd16, ir.OpFPAdd32, ir.OpFPAdd64:
		w.write(inst, "%s + %s", a(0), a(1))
	case ir.OpFPMul16, ir.OpFPMul32, ir.OpFPMul64:
		w.write(inst, "%s * %s", a(0), a(1))
	case ir.OpFPFma16, ir.OpFPFma32, ir.OpFPFma64:
		w.write(inst, "fma(%s, %s, %s)", a(0), a(1), a(2))
	case ir.OpFPMin32, ir.OpFPMin64:
		w.write(inst, "min(%s, %s)", a(0), a(1))
	case ir.OpFPMax32, ir.OpFPMax64:
		w.write(inst, "max(%s, %s)", a(0), a(1))
	case ir.OpFPSaturate16:
		w.write(inst, "clamp(%s, float16_t(0.0), float16_t(1.0))", a(0))
	case ir.OpFPSaturate32:
		w.write(inst, "clamp(%s, 0.0, 1.0)", a(0))
	case ir.OpFPSaturate64:
		w.write(inst, "clamp(%s, 0.0lf, 1.0lf)", a(0))
	case ir.OpFPClamp16, ir.OpFPClamp32, ir.OpFPClamp64:
		// min(max()) keeps the NaN behavior the guest expects; clamp() is
		// undefined on NaN bounds.
		w.write(inst, "min(max(%s, %s), %s)", a(0), a(1), a(2))
	case ir.OpFPRoundEven16, ir.OpFPRoundEven32, ir.OpFPRoundEven64:
		w.write(inst, "roundEven(%s)", a(0))
	case ir.OpFPFloor16, ir.OpFPFloor32, ir.OpFPFloor64:
		w.write(inst, "floor(%s)", a(0))
	case ir.OpFPCeil16, ir.OpFPCeil32, ir.OpFPCeil64:
		w.write(inst, "ceil(%s)", a(0))
	case ir.OpFPTrunc16, ir.OpFPTrunc32, ir.OpFPTrunc64:
		w.write(inst, "trunc(%s)", a(0))
	case ir.OpFPRecip32, ir.OpFPRecip64:
		w.write(inst, "1.0 / %s", a(0))
	case ir.OpFPRecipSqrt32, ir.OpFPRecipSqrt64:
		w.write(inst, "inversesqrt(%s)", a(0))
	case ir.OpFPSqrt:
		w.write(inst, "sqrt(%s)", a(0))
	case ir.OpFPSin:
		w.write(inst, "sin(%s)", a(0))
	case ir.OpFPCos:
		w.write(inst, "cos(%s)", a(0))
	case ir.OpFPExp2:
		w.write(inst, "exp2(%s)", a(0))
	case ir.OpFPLog2:
		w.write(inst, "log2(%s)", a(0))

	case ir.OpFPIsNan16, ir.OpFPIsNan32, ir.OpFPIsNan64:
		w.write(inst, "isnan(%s)", a(0))

	case ir.OpFPOrdEqual16, ir.OpFPOrdEqual32, ir.OpFPOrdEqual64:
		w.write(inst, "%s == %s", a(0), a(1))
	case ir.OpFPOrdLessThan16, ir.OpFPOrdLessThan32, ir.OpFPOrdLessThan64:
		w.write(inst, "%s < %s", a(0), a(1))
	case ir.OpFPOrdGreaterThan16, ir.OpFPOrdGreaterThan32, ir.OpFPOrdGreaterThan64:
		w.write(inst, "%s > %s", a(0), a(1))
	case ir.OpFPOrdLessThanEqual16, ir.OpFPOrdLessThanEqual32, ir.OpFPOrdLessThanEqual64:
		w.write(inst, "%s <= %s", a(0), a(1))
	case ir.OpFPOrdGreaterThanEqual16, ir.OpFPOrdGreaterThanEqual32, ir.OpFPOrdGreaterThanEqual64:
		w.write(inst, "%s >= %s", a(0), a(1))
	case ir.OpFPOrdNotEqual16, ir.OpFPOrdNotEqual32, ir.OpFPOrdNotEqual64:
		w.write(inst, "!isnan(%s) && !isnan(%s) && %s != %s", a(0), a(1), a(0), a(1))

	case ir.OpFPUnordEqual16, ir.OpFPUnordEqual32, ir.OpFPUnordEqual64:
		w.write(inst, "isnan(%s) || isnan(%s) || %s == %s", a(0), a(1), a(0), a(1))
	case ir.OpFPUnordLessThan16, ir.OpFPUnordLessThan32, ir.OpFPUnordLessThan64:
		w.write(inst, "isnan(%s) || isnan(%s) || %s < %s", a(0), a(1), a(0), a(1))
	case ir.OpFPUnordGreaterThan16, ir.OpFPUnordGreaterThan32, ir.OpFPUnordGreaterThan64:
		w.write(inst, "isnan(%s) || isnan(%s) || %s > %s", a(0), a(1), a(0), a(1))
	case ir.OpFPUnordLessThanEqual16, ir.OpFPUnordLessThanEqual32, ir.OpFPUnordLessThanEqual64:
		w.write(inst, "isnan(%s) || isnan(%s) || %s <= %s", a(0), a(1), a(0), a(1))
	case ir.OpFPUnordGreaterThanEqual16, ir.OpFPUnordGreaterThanEqual32, ir.OpFPUnordGreaterThanEqual64:
		w.write(inst, "isnan(%s) || isnan(%s) || %s >= %s", a(0), a(1), a(0), a(1))
	case ir.OpFPUnordNotEqual16, ir.OpFPUnordNotEqual32, ir.OpFPUnordNotEqual64:
		w.write(inst, "%s != %s", a(0), a(1))

	default:
		return false
	}
	return true
}
