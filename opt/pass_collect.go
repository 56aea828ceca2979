package opt

import (
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// nvnDescriptorBase returns the per-stage offset where the guest driver
// keeps its own data in constant buffer zero.
func nvnDescriptorBase(stage shader.Stage) uint32 {
	switch stage {
	case shader.StageVertexA, shader.StageVertexB:
		return 0x110
	case shader.StageTessellationControl:
		return 0x210
	case shader.StageTessellationEval:
		return 0x310
	case shader.StageGeometry:
		return 0x410
	case shader.StageFragment:
		return 0x510
	default:
		return 0x310
	}
}

type collector struct {
	info  *ir.ShaderInfo
	env   shader.Environment
	stage shader.Stage
}

// CollectShaderInfo makes one pass over the optimized IR and fills the
// program's ShaderInfo: host capability flags, constant buffer watermarks,
// the NVN driver buffer bitmap, and the attribute I/O masks.
func CollectShaderInfo(p *ir.Program, env shader.Environment) {
	c := &collector{info: &p.Info, env: env, stage: p.Stage}
	for _, b := range p.Blocks {
		for inst := b.Head(); inst != nil; inst = inst.Next() {
			c.visit(inst)
		}
	}
	c.applyHeaderMasks(env.SPH())
}

func (c *collector) visit(inst *ir.Inst) {
	switch op := inst.Opcode(); op {
	case ir.OpWorkgroupID:
		c.info.UsesWorkgroupID = true
	case ir.OpLocalInvocationID:
		c.info.UsesLocalInvocationID = true
	case ir.OpInvocationID:
		c.info.UsesInvocationID = true
	case ir.OpInvocationInfo:
		c.info.UsesInvocationInfo = true
	case ir.OpSampleID:
		c.info.UsesSampleID = true
	case ir.OpIsHelperInvocation:
		c.info.UsesIsHelperInvocation = true
	case ir.OpLaneID:
		c.info.UsesSubgroupInvocationID = true
	case ir.OpYDirection:
		c.info.UsesYDirection = true
	case ir.OpDemoteToHelperInvocation:
		c.info.UsesDemoteToHelperInvocation = true

	case ir.OpShuffleIndex, ir.OpShuffleUp, ir.OpShuffleDown, ir.OpShuffleButterfly:
		c.info.UsesSubgroupShuffles = true
	case ir.OpVoteAll, ir.OpVoteAny, ir.OpVoteEqual, ir.OpSubgroupBallot:
		c.info.UsesSubgroupVote = true
	case ir.OpSubgroupEqMask, ir.OpSubgroupLtMask, ir.OpSubgroupLeMask,
		ir.OpSubgroupGtMask, ir.OpSubgroupGeMask:
		c.info.UsesSubgroupMask = true
	case ir.OpFSwizzleAdd:
		c.info.UsesFswzadd = true
	case ir.OpDPdxFine, ir.OpDPdyFine, ir.OpDPdxCoarse, ir.OpDPdyCoarse:
		c.info.UsesDerivatives = true
	case ir.OpGetSparseFromOp:
		c.info.UsesSparseResidency = true

	case ir.OpSetSampleMask:
		c.info.UsesSampleMask = true
	case ir.OpSetFragDepth:
		c.info.UsesDepthWrite = true
		c.info.StoresFragDepth = true

	case ir.OpGetCbufU8, ir.OpGetCbufS8:
		c.info.UsesInt8 = true
		c.cbufAccess(inst, 1, ir.BufTypeU8)
	case ir.OpGetCbufU16, ir.OpGetCbufS16:
		c.info.UsesInt16 = true
		c.cbufAccess(inst, 2, ir.BufTypeU16)
	case ir.OpGetCbufU32:
		c.cbufAccess(inst, 4, ir.BufTypeU32)
	case ir.OpGetCbufF32:
		c.cbufAccess(inst, 4, ir.BufTypeF32)
	case ir.OpGetCbufU32x2:
		c.cbufAccess(inst, 8, ir.BufTypeU32x2)

	case ir.OpGetAttribute, ir.OpGetAttributeU32:
		c.attribute(inst.Arg(0).Attribute(), true)
	case ir.OpSetAttribute:
		c.attribute(inst.Arg(0).Attribute(), false)
	case ir.OpGetAttributeIndexed:
		c.info.LoadsIndexed = true
	case ir.OpSetAttributeIndexed:
		c.info.StoresIndexed = true
	case ir.OpGetPatch:
		c.info.LoadsPatches[inst.Arg(0).Patch()] = true
	case ir.OpSetPatch:
		c.info.StoresPatches[inst.Arg(0).Patch()] = true

	case ir.OpLoadGlobalU8, ir.OpLoadGlobalS8, ir.OpWriteGlobalU8, ir.OpWriteGlobalS8:
		c.info.UsesGlobalMemory = true
		c.info.UsesGlobalInt8 = true
		c.info.UsesInt64 = true
	case ir.OpLoadGlobalU16, ir.OpLoadGlobalS16, ir.OpWriteGlobalU16, ir.OpWriteGlobalS16:
		c.info.UsesGlobalMemory = true
		c.info.UsesGlobalInt16 = true
		c.info.UsesInt64 = true
	case ir.OpLoadGlobal32, ir.OpLoadGlobal64, ir.OpLoadGlobal128,
		ir.OpWriteGlobal32, ir.OpWriteGlobal64, ir.OpWriteGlobal128:
		c.info.UsesGlobalMemory = true
		c.info.UsesInt64 = true

	case ir.OpLoadStorageU8, ir.OpLoadStorageS8, ir.OpWriteStorageU8, ir.OpWriteStorageS8:
		c.info.UsesInt8 = true
		c.info.UsedStorageBufferTypes |= ir.BufTypeU8
	case ir.OpLoadStorageU16, ir.OpLoadStorageS16, ir.OpWriteStorageU16, ir.OpWriteStorageS16:
		c.info.UsesInt16 = true
		c.info.UsedStorageBufferTypes |= ir.BufTypeU16
	case ir.OpLoadStorage32, ir.OpWriteStorage32:
		c.info.UsedStorageBufferTypes |= ir.BufTypeU32
	case ir.OpLoadStorage64, ir.OpWriteStorage64:
		c.info.UsedStorageBufferTypes |= ir.BufTypeU32x2
	case ir.OpLoadStorage128, ir.OpWriteStorage128:
		c.info.UsedStorageBufferTypes |= ir.BufTypeU32x4

	case ir.OpLoadSharedU8, ir.OpLoadSharedS8, ir.OpWriteSharedU8:
		c.info.UsesSharedMemory = true
		c.info.UsesSharedInt8 = true
	case ir.OpLoadSharedU16, ir.OpLoadSharedS16, ir.OpWriteSharedU16:
		c.info.UsesSharedMemory = true
		c.info.UsesSharedInt16 = true
	case ir.OpLoadSharedU32, ir.OpLoadSharedU64, ir.OpLoadSharedU128,
		ir.OpWriteSharedU32, ir.OpWriteSharedU64, ir.OpWriteSharedU128:
		c.info.UsesSharedMemory = true

	case ir.OpGlobalAtomicAddF32:
		c.info.UsesAtomicF32Add = true
		c.info.UsesGlobalMemory = true
		c.info.UsesInt64 = true
	case ir.OpGlobalAtomicAddF16x2:
		c.info.UsesAtomicF16x2Add = true
		c.info.UsesGlobalMemory = true
		c.info.UsesInt64 = true
	case ir.OpGlobalAtomicMinF16x2:
		c.info.UsesAtomicF16x2Min = true
		c.info.UsesGlobalMemory = true
		c.info.UsesInt64 = true
	case ir.OpGlobalAtomicMaxF16x2:
		c.info.UsesAtomicF16x2Max = true
		c.info.UsesGlobalMemory = true
		c.info.UsesInt64 = true
	case ir.OpStorageAtomicAddF32:
		c.info.UsesAtomicF32Add = true
	case ir.OpStorageAtomicAddF16x2:
		c.info.UsesAtomicF16x2Add = true
	case ir.OpStorageAtomicMinF16x2:
		c.info.UsesAtomicF16x2Min = true
	case ir.OpStorageAtomicMaxF16x2:
		c.info.UsesAtomicF16x2Max = true

	case ir.OpImageRead:
		c.info.UsesTypelessImageReads = true
	case ir.OpImageWrite:
		c.info.UsesTypelessImageWrites = true

	default:
		switch {
		case op >= ir.OpGlobalAtomicIAdd32 && op <= ir.OpGlobalAtomicExchange32:
			c.info.UsesGlobalMemory = true
			c.info.UsesInt64 = true
		case op >= ir.OpGlobalAtomicIAdd64 && op <= ir.OpGlobalAtomicExchange64:
			c.info.UsesGlobalMemory = true
			c.info.UsesInt64 = true
			c.info.UsesInt64BitAtomics = true
		case op >= ir.OpStorageAtomicIAdd64 && op <= ir.OpStorageAtomicExchange64:
			c.info.UsesInt64BitAtomics = true
		case op >= ir.OpSharedAtomicIAdd32 && op <= ir.OpSharedAtomicExchange32:
			c.info.UsesSharedMemory = true
		case op == ir.OpSharedAtomicExchange64:
			c.info.UsesSharedMemory = true
			c.info.UsesInt64BitAtomics = true
		case op >= ir.OpImageAtomicIAdd32 && op <= ir.OpImageAtomicExchange32:
			c.info.UsesAtomicImage = true
		}
		c.fpUsage(inst)
	}
}

// fpUsage flips the float width and denormal mode flags for the arithmetic
// opcodes.
func (c *collector) fpUsage(inst *ir.Inst) {
	switch inst.Opcode() {
	case ir.OpFPAbs16, ir.OpFPAdd16, ir.OpFPFma16, ir.OpFPMul16, ir.OpFPNeg16,
		ir.OpFPSaturate16, ir.OpFPClamp16, ir.OpFPRoundEven16, ir.OpFPFloor16,
		ir.OpFPCeil16, ir.OpFPTrunc16,
		ir.OpFPOrdEqual16, ir.OpFPUnordEqual16, ir.OpFPOrdNotEqual16,
		ir.OpFPUnordNotEqual16, ir.OpFPOrdLessThan16, ir.OpFPUnordLessThan16,
		ir.OpFPOrdGreaterThan16, ir.OpFPUnordGreaterThan16,
		ir.OpFPOrdLessThanEqual16, ir.OpFPUnordLessThanEqual16,
		ir.OpFPOrdGreaterThanEqual16, ir.OpFPUnordGreaterThanEqual16,
		ir.OpFPIsNan16,
		ir.OpCompositeConstructF16x2, ir.OpCompositeExtractF16x2,
		ir.OpSelectF16, ir.OpPackFloat2x16, ir.OpUnpackFloat2x16,
		ir.OpConvertF16F32, ir.OpConvertF32F16, ir.OpConvertF16S32,
		ir.OpConvertF16S64, ir.OpConvertF16U32, ir.OpConvertF16U64,
		ir.OpConvertS32F16, ir.OpConvertU32F16, ir.OpConvertS64F16,
		ir.OpConvertU64F16, ir.OpConvertS16F16, ir.OpConvertU16F16,
		ir.OpConvertS8F16, ir.OpConvertU8F16:
		c.info.UsesFP16 = true
		switch inst.FpControl().Fmz {
		case ir.FmzFTZ, ir.FmzFMZ:
			c.info.UsesFP16DenormsFlush = true
		case ir.FmzNone:
			c.info.UsesFP16DenormsPreserve = true
		}

	case ir.OpFPAdd32, ir.OpFPFma32, ir.OpFPMul32:
		switch inst.FpControl().Fmz {
		case ir.FmzFTZ, ir.FmzFMZ:
			c.info.UsesFP32DenormsFlush = true
		case ir.FmzNone:
			c.info.UsesFP32DenormsPreserve = true
		}

	case ir.OpFPAbs64, ir.OpFPAdd64, ir.OpFPFma64, ir.OpFPMax64, ir.OpFPMin64,
		ir.OpFPMul64, ir.OpFPNeg64, ir.OpFPRecip64, ir.OpFPRecipSqrt64,
		ir.OpFPSaturate64, ir.OpFPClamp64, ir.OpFPRoundEven64, ir.OpFPFloor64,
		ir.OpFPCeil64, ir.OpFPTrunc64,
		ir.OpFPOrdEqual64, ir.OpFPUnordEqual64, ir.OpFPOrdNotEqual64,
		ir.OpFPUnordNotEqual64, ir.OpFPOrdLessThan64, ir.OpFPUnordLessThan64,
		ir.OpFPOrdGreaterThan64, ir.OpFPUnordGreaterThan64,
		ir.OpFPOrdLessThanEqual64, ir.OpFPUnordLessThanEqual64,
		ir.OpFPOrdGreaterThanEqual64, ir.OpFPUnordGreaterThanEqual64,
		ir.OpFPIsNan64,
		ir.OpPackDouble2x32, ir.OpUnpackDouble2x32, ir.OpSelectF64,
		ir.OpConvertF32F64, ir.OpConvertF64F32, ir.OpConvertF64S32,
		ir.OpConvertF64S64, ir.OpConvertF64U32, ir.OpConvertF64U64,
		ir.OpConvertS32F64, ir.OpConvertU32F64, ir.OpConvertS64F64,
		ir.OpConvertU64F64, ir.OpConvertS16F64, ir.OpConvertU16F64,
		ir.OpConvertS8F64, ir.OpConvertU8F64, ir.OpConvertF64F16,
		ir.OpConvertF16F64:
		c.info.UsesFP64 = true

	case ir.OpIAdd64, ir.OpISub64, ir.OpINeg64, ir.OpShiftLeftLogical64,
		ir.OpShiftRightLogical64, ir.OpShiftRightArithmetic64,
		ir.OpSelectU64, ir.OpUndefU64,
		ir.OpConvertS64F32, ir.OpConvertU64F32, ir.OpConvertF32S64,
		ir.OpConvertF32U64, ir.OpConvertU64U32, ir.OpConvertU32U64:
		c.info.UsesInt64 = true

	case ir.OpConvertU8U32, ir.OpConvertU32U8, ir.OpConvertS8F32, ir.OpConvertU8F32:
		c.info.UsesInt8 = true
	case ir.OpConvertU16U32, ir.OpConvertU32U16, ir.OpConvertS16F32, ir.OpConvertU16F32:
		c.info.UsesInt16 = true
	}
}

// cbufAccess registers the constant buffer descriptor and advances its used
// size watermark.
func (c *collector) cbufAccess(inst *ir.Inst, size uint32, typeBit uint32) {
	c.info.UsedConstantBufferTypes |= typeBit
	index := inst.Arg(0).U32()
	c.addCbufDescriptor(index)

	offset := inst.Arg(1)
	if !offset.IsImmediate() {
		// Runtime offsets can reach anywhere in the buffer.
		c.info.ConstantBufferUsedSizes[index] = ir.MaxCbufByteOffset
		if index == 0 {
			c.info.NvnBufferUsed = 0xFFFF
		}
		return
	}
	end := (offset.U32() + size + 15) &^ 15
	if end > c.info.ConstantBufferUsedSizes[index] {
		c.info.ConstantBufferUsedSizes[index] = end
	}

	base := nvnDescriptorBase(c.stage)
	if index == 0 && offset.U32() >= base && offset.U32() < base+0x100 {
		c.info.NvnBufferUsed |= 1 << ((offset.U32() - base) / 0x10)
	}
}

func (c *collector) addCbufDescriptor(index uint32) {
	for _, d := range c.info.ConstantBuffers {
		if d.Index == index {
			return
		}
	}
	c.info.ConstantBuffers = append(c.info.ConstantBuffers, ir.ConstantBufferDescriptor{
		Index: index,
		Count: 1,
	})
}

func (c *collector) attribute(a ir.Attribute, load bool) {
	state := &c.info.Stores
	if load {
		state = &c.info.Loads
	}
	state.Set(uint(a), true)

	switch a {
	case ir.AttributeInstanceID:
		c.info.UsesInstanceID = true
	case ir.AttributeVertexID:
		c.info.UsesVertexID = true
	case ir.AttributeFrontFace:
		c.info.UsesFrontFace = true
	case ir.AttributePointSize:
		c.info.UsesPointSize = true
	case ir.AttributeLayer:
		c.info.UsesLayer = true
	case ir.AttributeViewportIndex:
		c.info.UsesViewportIndex = true
	}
	if a >= ir.AttributeClipDistance0 && a <= ir.AttributeClipDistance7 {
		c.info.UsesClipDistances = true
	}
	if load && c.stage == shader.StageFragment &&
		a >= ir.AttributePositionX && a <= ir.AttributePositionW {
		c.info.UsesFragCoord = true
	}
}

// applyHeaderMasks widens the attribute masks for indexed access: a runtime
// computed attribute address can touch anything the header declares.
func (c *collector) applyHeaderMasks(sph *shader.ProgramHeader) {
	if sph == nil || c.stage == shader.StageCompute {
		return
	}
	if c.info.LoadsIndexed {
		for i := 0; i < 32; i++ {
			c.markGeneric(&c.info.Loads, i)
		}
		for a := ir.AttributePositionX; a <= ir.AttributePositionW; a++ {
			c.info.Loads.Set(uint(a), true)
		}
	}
	if c.info.StoresIndexed {
		for i := 0; i < 32; i++ {
			c.markGeneric(&c.info.Stores, i)
		}
		for a := ir.AttributePositionX; a <= ir.AttributePositionW; a++ {
			c.info.Stores.Set(uint(a), true)
		}
	}
	if c.stage == shader.StageFragment {
		for i := 0; i < 32; i++ {
			if sph.PsGenericInputUsed(i) {
				c.markGeneric(&c.info.Loads, i)
			}
		}
	}
}

func (c *collector) markGeneric(state *shader.VaryingState, index int) {
	base := uint(ir.GenericAttribute(uint32(index)))
	for comp := uint(0); comp < 4; comp++ {
		state.Set(base+comp, true)
	}
}
