package opt

import "github.com/gogpu/maxwell/ir"

// fp16To32 maps every 16-bit float opcode to its 32-bit counterpart.
var fp16To32 = map[ir.Opcode]ir.Opcode{
	ir.OpFPAbs16:      ir.OpFPAbs32,
	ir.OpFPAdd16:      ir.OpFPAdd32,
	ir.OpFPFma16:      ir.OpFPFma32,
	ir.OpFPMul16:      ir.OpFPMul32,
	ir.OpFPNeg16:      ir.OpFPNeg32,
	ir.OpFPSaturate16: ir.OpFPSaturate32,
	ir.OpFPClamp16:    ir.OpFPClamp32,
	ir.OpFPRoundEven16: ir.OpFPRoundEven32,
	ir.OpFPFloor16:     ir.OpFPFloor32,
	ir.OpFPCeil16:      ir.OpFPCeil32,
	ir.OpFPTrunc16:     ir.OpFPTrunc32,

	ir.OpFPOrdEqual16:              ir.OpFPOrdEqual32,
	ir.OpFPUnordEqual16:            ir.OpFPUnordEqual32,
	ir.OpFPOrdNotEqual16:           ir.OpFPOrdNotEqual32,
	ir.OpFPUnordNotEqual16:         ir.OpFPUnordNotEqual32,
	ir.OpFPOrdLessThan16:           ir.OpFPOrdLessThan32,
	ir.OpFPUnordLessThan16:         ir.OpFPUnordLessThan32,
	ir.OpFPOrdGreaterThan16:        ir.OpFPOrdGreaterThan32,
	ir.OpFPUnordGreaterThan16:      ir.OpFPUnordGreaterThan32,
	ir.OpFPOrdLessThanEqual16:      ir.OpFPOrdLessThanEqual32,
	ir.OpFPUnordLessThanEqual16:    ir.OpFPUnordLessThanEqual32,
	ir.OpFPOrdGreaterThanEqual16:   ir.OpFPOrdGreaterThanEqual32,
	ir.OpFPUnordGreaterThanEqual16: ir.OpFPUnordGreaterThanEqual32,
	ir.OpFPIsNan16:                 ir.OpFPIsNan32,

	ir.OpCompositeConstructF16x2: ir.OpCompositeConstructF32x2,
	ir.OpCompositeExtractF16x2:   ir.OpCompositeExtractF32x2,
	ir.OpSelectF16:               ir.OpSelectF32,

	ir.OpConvertS16F16: ir.OpConvertS16F32,
	ir.OpConvertS32F16: ir.OpConvertS32F32,
	ir.OpConvertS64F16: ir.OpConvertS64F32,
	ir.OpConvertU16F16: ir.OpConvertU16F32,
	ir.OpConvertU32F16: ir.OpConvertU32F32,
	ir.OpConvertU64F16: ir.OpConvertU64F32,
	ir.OpConvertS8F16:  ir.OpConvertS8F32,
	ir.OpConvertU8F16:  ir.OpConvertU8F32,
	ir.OpConvertF16S32: ir.OpConvertF32S32,
	ir.OpConvertF16S64: ir.OpConvertF32S64,
	ir.OpConvertF16U32: ir.OpConvertF32U32,
	ir.OpConvertF16U64: ir.OpConvertF32U64,
	ir.OpConvertF64F16: ir.OpConvertF64F32,
	ir.OpConvertF16F64: ir.OpConvertF32F64,

	ir.OpPackFloat2x16:   ir.OpPackHalf2x16,
	ir.OpUnpackFloat2x16: ir.OpUnpackHalf2x16,
}

// LowerFP16ToFP32 rewrites all half precision arithmetic to single
// precision for hosts without native FP16. Width-only conversions collapse
// to Identity.
func LowerFP16ToFP32(p *ir.Program) {
	for _, b := range p.Blocks {
		for inst := b.Head(); inst != nil; inst = inst.Next() {
			switch op := inst.Opcode(); op {
			case ir.OpConvertF16F32, ir.OpConvertF32F16:
				inst.ReplaceOpcode(ir.OpIdentity)
			default:
				if to, ok := fp16To32[op]; ok {
					inst.ReplaceOpcode(to)
				}
			}
		}
	}
}
