package ir

// Opcode enumerates every IR instruction. The parallel opInfos table
// declares each opcode's result type, argument types, and side effect
// class; the verifier checks emitted instructions against it.
type Opcode uint16

const (
	// Pseudo and control opcodes.
	OpVoid Opcode = iota
	OpIdentity
	OpPhi
	OpReference
	OpPhiMove
	OpPrologue
	OpEpilogue
	OpConditionRef
	OpDemoteToHelperInvocation
	OpEmitVertex
	OpEndPrimitive
	OpBarrier
	OpWorkgroupMemoryBarrier
	OpDeviceMemoryBarrier

	// Pseudo results attached to another instruction.
	OpGetZeroFromOp
	OpGetSignFromOp
	OpGetCarryFromOp
	OpGetOverflowFromOp
	OpGetSparseFromOp
	OpGetInBoundsFromOp

	// Guest context access. The register and predicate forms only exist
	// between translation and the SSA rewrite.
	OpGetRegister
	OpSetRegister
	OpGetPred
	OpSetPred
	OpGetGotoVariable
	OpSetGotoVariable
	OpGetIndirectBranchVariable
	OpSetIndirectBranchVariable
	OpGetZFlag
	OpGetSFlag
	OpGetCFlag
	OpGetOFlag
	OpSetZFlag
	OpSetSFlag
	OpSetCFlag
	OpSetOFlag

	OpGetCbufU8
	OpGetCbufS8
	OpGetCbufU16
	OpGetCbufS16
	OpGetCbufU32
	OpGetCbufF32
	OpGetCbufU32x2

	OpGetAttribute
	OpGetAttributeU32
	OpSetAttribute
	OpGetAttributeIndexed
	OpSetAttributeIndexed
	OpGetPatch
	OpSetPatch
	OpSetFragColor
	OpSetSampleMask
	OpSetFragDepth

	OpWorkgroupID
	OpLocalInvocationID
	OpInvocationID
	OpInvocationInfo
	OpSampleID
	OpIsHelperInvocation
	OpYDirection
	OpLaneID

	OpUndefU1
	OpUndefU8
	OpUndefU16
	OpUndefU32
	OpUndefU64

	// Global, storage, local, and shared memory.
	OpLoadGlobalU8
	OpLoadGlobalS8
	OpLoadGlobalU16
	OpLoadGlobalS16
	OpLoadGlobal32
	OpLoadGlobal64
	OpLoadGlobal128
	OpWriteGlobalU8
	OpWriteGlobalS8
	OpWriteGlobalU16
	OpWriteGlobalS16
	OpWriteGlobal32
	OpWriteGlobal64
	OpWriteGlobal128
	OpLoadStorageU8
	OpLoadStorageS8
	OpLoadStorageU16
	OpLoadStorageS16
	OpLoadStorage32
	OpLoadStorage64
	OpLoadStorage128
	OpWriteStorageU8
	OpWriteStorageS8
	OpWriteStorageU16
	OpWriteStorageS16
	OpWriteStorage32
	OpWriteStorage64
	OpWriteStorage128
	OpLoadLocal
	OpWriteLocal
	OpLoadSharedU8
	OpLoadSharedS8
	OpLoadSharedU16
	OpLoadSharedS16
	OpLoadSharedU32
	OpLoadSharedU64
	OpLoadSharedU128
	OpWriteSharedU8
	OpWriteSharedU16
	OpWriteSharedU32
	OpWriteSharedU64
	OpWriteSharedU128

	// Atomics.
	OpGlobalAtomicIAdd32
	OpGlobalAtomicSMin32
	OpGlobalAtomicUMin32
	OpGlobalAtomicSMax32
	OpGlobalAtomicUMax32
	OpGlobalAtomicInc32
	OpGlobalAtomicDec32
	OpGlobalAtomicAnd32
	OpGlobalAtomicOr32
	OpGlobalAtomicXor32
	OpGlobalAtomicExchange32
	OpGlobalAtomicIAdd64
	OpGlobalAtomicSMin64
	OpGlobalAtomicUMin64
	OpGlobalAtomicSMax64
	OpGlobalAtomicUMax64
	OpGlobalAtomicAnd64
	OpGlobalAtomicOr64
	OpGlobalAtomicXor64
	OpGlobalAtomicExchange64
	OpGlobalAtomicAddF32
	OpGlobalAtomicAddF16x2
	OpGlobalAtomicMinF16x2
	OpGlobalAtomicMaxF16x2
	OpStorageAtomicIAdd32
	OpStorageAtomicSMin32
	OpStorageAtomicUMin32
	OpStorageAtomicSMax32
	OpStorageAtomicUMax32
	OpStorageAtomicInc32
	OpStorageAtomicDec32
	OpStorageAtomicAnd32
	OpStorageAtomicOr32
	OpStorageAtomicXor32
	OpStorageAtomicExchange32
	OpStorageAtomicIAdd64
	OpStorageAtomicSMin64
	OpStorageAtomicUMin64
	OpStorageAtomicSMax64
	OpStorageAtomicUMax64
	OpStorageAtomicAnd64
	OpStorageAtomicOr64
	OpStorageAtomicXor64
	OpStorageAtomicExchange64
	OpStorageAtomicAddF32
	OpStorageAtomicAddF16x2
	OpStorageAtomicMinF16x2
	OpStorageAtomicMaxF16x2
	OpSharedAtomicIAdd32
	OpSharedAtomicSMin32
	OpSharedAtomicUMin32
	OpSharedAtomicSMax32
	OpSharedAtomicUMax32
	OpSharedAtomicInc32
	OpSharedAtomicDec32
	OpSharedAtomicAnd32
	OpSharedAtomicOr32
	OpSharedAtomicXor32
	OpSharedAtomicExchange32
	OpSharedAtomicExchange64

	// Composites.
	OpCompositeConstructU32x2
	OpCompositeConstructU32x3
	OpCompositeConstructU32x4
	OpCompositeExtractU32x2
	OpCompositeExtractU32x3
	OpCompositeExtractU32x4
	OpCompositeInsertU32x2
	OpCompositeInsertU32x3
	OpCompositeInsertU32x4
	OpCompositeConstructF32x2
	OpCompositeConstructF32x3
	OpCompositeConstructF32x4
	OpCompositeExtractF32x2
	OpCompositeExtractF32x3
	OpCompositeExtractF32x4
	OpCompositeInsertF32x2
	OpCompositeInsertF32x3
	OpCompositeInsertF32x4
	OpCompositeConstructF16x2
	OpCompositeExtractF16x2

	// Selects.
	OpSelectU1
	OpSelectU8
	OpSelectU16
	OpSelectU32
	OpSelectU64
	OpSelectF16
	OpSelectF32
	OpSelectF64

	// Bit casts and pack conversions.
	OpBitCastU16F16
	OpBitCastU32F32
	OpBitCastU64F64
	OpBitCastF16U16
	OpBitCastF32U32
	OpBitCastF64U64
	OpPackUint2x32
	OpUnpackUint2x32
	OpPackFloat2x16
	OpUnpackFloat2x16
	OpPackHalf2x16
	OpUnpackHalf2x16
	OpPackDouble2x32
	OpUnpackDouble2x32

	// Integer operations.
	OpIAdd32
	OpIAdd64
	OpISub32
	OpISub64
	OpIMul32
	OpINeg32
	OpINeg64
	OpIAbs32
	OpShiftLeftLogical32
	OpShiftLeftLogical64
	OpShiftRightLogical32
	OpShiftRightLogical64
	OpShiftRightArithmetic32
	OpShiftRightArithmetic64
	OpBitwiseAnd32
	OpBitwiseOr32
	OpBitwiseXor32
	OpBitFieldInsert
	OpBitFieldSExtract
	OpBitFieldUExtract
	OpBitReverse32
	OpBitCount32
	OpBitwiseNot32
	OpFindSMsb32
	OpFindUMsb32
	OpSMin32
	OpUMin32
	OpSMax32
	OpUMax32
	OpSClamp32
	OpUClamp32
	OpSLessThan
	OpULessThan
	OpIEqual
	OpSLessThanEqual
	OpULessThanEqual
	OpSGreaterThan
	OpUGreaterThan
	OpINotEqual
	OpSGreaterThanEqual
	OpUGreaterThanEqual

	// Logical operations.
	OpLogicalOr
	OpLogicalAnd
	OpLogicalXor
	OpLogicalNot

	// Floating point operations.
	OpFPAbs16
	OpFPAbs32
	OpFPAbs64
	OpFPAdd16
	OpFPAdd32
	OpFPAdd64
	OpFPFma16
	OpFPFma32
	OpFPFma64
	OpFPMax32
	OpFPMax64
	OpFPMin32
	OpFPMin64
	OpFPMul16
	OpFPMul32
	OpFPMul64
	OpFPNeg16
	OpFPNeg32
	OpFPNeg64
	OpFPRecip32
	OpFPRecip64
	OpFPRecipSqrt32
	OpFPRecipSqrt64
	OpFPSqrt
	OpFPSin
	OpFPCos
	OpFPExp2
	OpFPLog2
	OpFPSaturate16
	OpFPSaturate32
	OpFPSaturate64
	OpFPClamp16
	OpFPClamp32
	OpFPClamp64
	OpFPRoundEven16
	OpFPRoundEven32
	OpFPRoundEven64
	OpFPFloor16
	OpFPFloor32
	OpFPFloor64
	OpFPCeil16
	OpFPCeil32
	OpFPCeil64
	OpFPTrunc16
	OpFPTrunc32
	OpFPTrunc64

	OpFPOrdEqual16
	OpFPOrdEqual32
	OpFPOrdEqual64
	OpFPUnordEqual16
	OpFPUnordEqual32
	OpFPUnordEqual64
	OpFPOrdNotEqual16
	OpFPOrdNotEqual32
	OpFPOrdNotEqual64
	OpFPUnordNotEqual16
	OpFPUnordNotEqual32
	OpFPUnordNotEqual64
	OpFPOrdLessThan16
	OpFPOrdLessThan32
	OpFPOrdLessThan64
	OpFPUnordLessThan16
	OpFPUnordLessThan32
	OpFPUnordLessThan64
	OpFPOrdGreaterThan16
	OpFPOrdGreaterThan32
	OpFPOrdGreaterThan64
	OpFPUnordGreaterThan16
	OpFPUnordGreaterThan32
	OpFPUnordGreaterThan64
	OpFPOrdLessThanEqual16
	OpFPOrdLessThanEqual32
	OpFPOrdLessThanEqual64
	OpFPUnordLessThanEqual16
	OpFPUnordLessThanEqual32
	OpFPUnordLessThanEqual64
	OpFPOrdGreaterThanEqual16
	OpFPOrdGreaterThanEqual32
	OpFPOrdGreaterThanEqual64
	OpFPUnordGreaterThanEqual16
	OpFPUnordGreaterThanEqual32
	OpFPUnordGreaterThanEqual64
	OpFPIsNan16
	OpFPIsNan32
	OpFPIsNan64

	// Conversions.
	OpConvertS8F16
	OpConvertS8F32
	OpConvertS8F64
	OpConvertS16F16
	OpConvertS16F32
	OpConvertS16F64
	OpConvertS32F16
	OpConvertS32F32
	OpConvertS32F64
	OpConvertS64F16
	OpConvertS64F32
	OpConvertS64F64
	OpConvertU8F16
	OpConvertU8F32
	OpConvertU8F64
	OpConvertU16F16
	OpConvertU16F32
	OpConvertU16F64
	OpConvertU32F16
	OpConvertU32F32
	OpConvertU32F64
	OpConvertU64F16
	OpConvertU64F32
	OpConvertU64F64
	OpConvertF16S32
	OpConvertF16S64
	OpConvertF16U32
	OpConvertF16U64
	OpConvertF32S32
	OpConvertF32S64
	OpConvertF32U32
	OpConvertF32U64
	OpConvertF64S32
	OpConvertF64S64
	OpConvertF64U32
	OpConvertF64U64
	OpConvertF16F32
	OpConvertF16F64
	OpConvertF32F16
	OpConvertF32F64
	OpConvertF64F16
	OpConvertF64F32
	OpConvertU8U32
	OpConvertU16U32
	OpConvertU32U8
	OpConvertU32U16
	OpConvertU32U64
	OpConvertU64U32

	// Warp operations.
	OpVoteAll
	OpVoteAny
	OpVoteEqual
	OpSubgroupBallot
	OpSubgroupEqMask
	OpSubgroupLtMask
	OpSubgroupLeMask
	OpSubgroupGtMask
	OpSubgroupGeMask
	OpShuffleIndex
	OpShuffleUp
	OpShuffleDown
	OpShuffleButterfly
	OpFSwizzleAdd
	OpDPdxFine
	OpDPdyFine
	OpDPdxCoarse
	OpDPdyCoarse

	// Texture and image operations. The Bindless and Bound prefixed
	// variants exist only between translation and texture promotion; the
	// unprefixed forms carry a descriptor index in their flags.
	OpBindlessImageSampleImplicitLod
	OpBindlessImageSampleExplicitLod
	OpBindlessImageSampleDrefImplicitLod
	OpBindlessImageSampleDrefExplicitLod
	OpBindlessImageGather
	OpBindlessImageGatherDref
	OpBindlessImageFetch
	OpBindlessImageQueryDimensions
	OpBindlessImageQueryLod
	OpBindlessImageGradient
	OpBindlessImageRead
	OpBindlessImageWrite
	OpBindlessImageAtomicIAdd32
	OpBindlessImageAtomicSMin32
	OpBindlessImageAtomicUMin32
	OpBindlessImageAtomicSMax32
	OpBindlessImageAtomicUMax32
	OpBindlessImageAtomicInc32
	OpBindlessImageAtomicDec32
	OpBindlessImageAtomicAnd32
	OpBindlessImageAtomicOr32
	OpBindlessImageAtomicXor32
	OpBindlessImageAtomicExchange32
	OpBoundImageSampleImplicitLod
	OpBoundImageSampleExplicitLod
	OpBoundImageSampleDrefImplicitLod
	OpBoundImageSampleDrefExplicitLod
	OpBoundImageGather
	OpBoundImageGatherDref
	OpBoundImageFetch
	OpBoundImageQueryDimensions
	OpBoundImageQueryLod
	OpBoundImageGradient
	OpBoundImageRead
	OpBoundImageWrite
	OpBoundImageAtomicIAdd32
	OpBoundImageAtomicSMin32
	OpBoundImageAtomicUMin32
	OpBoundImageAtomicSMax32
	OpBoundImageAtomicUMax32
	OpBoundImageAtomicInc32
	OpBoundImageAtomicDec32
	OpBoundImageAtomicAnd32
	OpBoundImageAtomicOr32
	OpBoundImageAtomicXor32
	OpBoundImageAtomicExchange32
	OpImageSampleImplicitLod
	OpImageSampleExplicitLod
	OpImageSampleDrefImplicitLod
	OpImageSampleDrefExplicitLod
	OpImageGather
	OpImageGatherDref
	OpImageFetch
	OpImageQueryDimensions
	OpImageQueryLod
	OpImageGradient
	OpImageRead
	OpImageWrite
	OpImageAtomicIAdd32
	OpImageAtomicSMin32
	OpImageAtomicUMin32
	OpImageAtomicSMax32
	OpImageAtomicUMax32
	OpImageAtomicInc32
	OpImageAtomicDec32
	OpImageAtomicAnd32
	OpImageAtomicOr32
	OpImageAtomicXor32
	OpImageAtomicExchange32

	numOpcodes
)

// NumOpcodes is the size of the opcode space.
const NumOpcodes = int(numOpcodes)

type opInfo struct {
	name        string
	ret         Type
	args        []Type
	sideEffects bool
}

// Local shorthands keep the table lines readable.
const (
	opq  = TypeOpaque
	regT = TypeReg
	prd  = TypePred
	atr  = TypeAttribute
	pat  = TypePatch
	u1   = TypeU1
	u8   = TypeU8
	u16  = TypeU16
	u32  = TypeU32
	u64  = TypeU64
	f16  = TypeF16
	f32  = TypeF32
	f64  = TypeF64
	u322 = TypeU32x2
	u323 = TypeU32x3
	u324 = TypeU32x4
	f162 = TypeF16x2
	f322 = TypeF32x2
	f323 = TypeF32x3
	f324 = TypeF32x4
)

func op(name string, ret Type, args ...Type) opInfo {
	return opInfo{name: name, ret: ret, args: args}
}

// sop declares a side-effecting opcode that DCE must never remove.
func sop(name string, ret Type, args ...Type) opInfo {
	return opInfo{name: name, ret: ret, args: args, sideEffects: true}
}

var opInfos = [numOpcodes]opInfo{
	OpVoid:                     op("Void", TypeVoid),
	OpIdentity:                 op("Identity", opq, opq),
	OpPhi:                      op("Phi", opq),
	OpReference:                sop("Reference", TypeVoid, opq),
	OpPhiMove:                  sop("PhiMove", TypeVoid, opq, opq),
	OpPrologue:                 sop("Prologue", TypeVoid),
	OpEpilogue:                 sop("Epilogue", TypeVoid),
	OpConditionRef:             op("ConditionRef", u1, u1),
	OpDemoteToHelperInvocation: sop("DemoteToHelperInvocation", TypeVoid),
	OpEmitVertex:               sop("EmitVertex", TypeVoid, u32),
	OpEndPrimitive:             sop("EndPrimitive", TypeVoid, u32),
	OpBarrier:                  sop("Barrier", TypeVoid),
	OpWorkgroupMemoryBarrier:   sop("WorkgroupMemoryBarrier", TypeVoid),
	OpDeviceMemoryBarrier:      sop("DeviceMemoryBarrier", TypeVoid),

	OpGetZeroFromOp:     op("GetZeroFromOp", u1, opq),
	OpGetSignFromOp:     op("GetSignFromOp", u1, opq),
	OpGetCarryFromOp:    op("GetCarryFromOp", u1, opq),
	OpGetOverflowFromOp: op("GetOverflowFromOp", u1, opq),
	OpGetSparseFromOp:   op("GetSparseFromOp", u1, opq),
	OpGetInBoundsFromOp: op("GetInBoundsFromOp", u1, opq),

	OpGetRegister:               op("GetRegister", u32, regT),
	OpSetRegister:               sop("SetRegister", TypeVoid, regT, u32),
	OpGetPred:                   op("GetPred", u1, prd),
	OpSetPred:                   sop("SetPred", TypeVoid, prd, u1),
	OpGetGotoVariable:           op("GetGotoVariable", u1, u32),
	OpSetGotoVariable:           sop("SetGotoVariable", TypeVoid, u32, u1),
	OpGetIndirectBranchVariable: op("GetIndirectBranchVariable", u32),
	OpSetIndirectBranchVariable: sop("SetIndirectBranchVariable", TypeVoid, u32),
	OpGetZFlag:                  op("GetZFlag", u1),
	OpGetSFlag:                  op("GetSFlag", u1),
	OpGetCFlag:                  op("GetCFlag", u1),
	OpGetOFlag:                  op("GetOFlag", u1),
	OpSetZFlag:                  sop("SetZFlag", TypeVoid, u1),
	OpSetSFlag:                  sop("SetSFlag", TypeVoid, u1),
	OpSetCFlag:                  sop("SetCFlag", TypeVoid, u1),
	OpSetOFlag:                  sop("SetOFlag", TypeVoid, u1),

	OpGetCbufU8:    op("GetCbufU8", u32, u32, u32),
	OpGetCbufS8:    op("GetCbufS8", u32, u32, u32),
	OpGetCbufU16:   op("GetCbufU16", u32, u32, u32),
	OpGetCbufS16:   op("GetCbufS16", u32, u32, u32),
	OpGetCbufU32:   op("GetCbufU32", u32, u32, u32),
	OpGetCbufF32:   op("GetCbufF32", f32, u32, u32),
	OpGetCbufU32x2: op("GetCbufU32x2", u322, u32, u32),

	OpGetAttribute:        op("GetAttribute", f32, atr, u32),
	OpGetAttributeU32:     op("GetAttributeU32", u32, atr, u32),
	OpSetAttribute:        sop("SetAttribute", TypeVoid, atr, f32, u32),
	OpGetAttributeIndexed: op("GetAttributeIndexed", f32, u32, u32),
	OpSetAttributeIndexed: sop("SetAttributeIndexed", TypeVoid, u32, f32, u32),
	OpGetPatch:            op("GetPatch", f32, pat),
	OpSetPatch:            sop("SetPatch", TypeVoid, pat, f32),
	OpSetFragColor:        sop("SetFragColor", TypeVoid, u32, u32, f32),
	OpSetSampleMask:       sop("SetSampleMask", TypeVoid, u32),
	OpSetFragDepth:        sop("SetFragDepth", TypeVoid, f32),

	OpWorkgroupID:        op("WorkgroupID", u323),
	OpLocalInvocationID:  op("LocalInvocationID", u323),
	OpInvocationID:       op("InvocationID", u32),
	OpInvocationInfo:     op("InvocationInfo", u32),
	OpSampleID:           op("SampleID", u32),
	OpIsHelperInvocation: op("IsHelperInvocation", u1),
	OpYDirection:         op("YDirection", f32),
	OpLaneID:             op("LaneID", u32),

	OpUndefU1:  op("UndefU1", u1),
	OpUndefU8:  op("UndefU8", u8),
	OpUndefU16: op("UndefU16", u16),
	OpUndefU32: op("UndefU32", u32),
	OpUndefU64: op("UndefU64", u64),

	OpLoadGlobalU8:    sop("LoadGlobalU8", u32, u64),
	OpLoadGlobalS8:    sop("LoadGlobalS8", u32, u64),
	OpLoadGlobalU16:   sop("LoadGlobalU16", u32, u64),
	OpLoadGlobalS16:   sop("LoadGlobalS16", u32, u64),
	OpLoadGlobal32:    sop("LoadGlobal32", u32, u64),
	OpLoadGlobal64:    sop("LoadGlobal64", u322, u64),
	OpLoadGlobal128:   sop("LoadGlobal128", u324, u64),
	OpWriteGlobalU8:   sop("WriteGlobalU8", TypeVoid, u64, u32),
	OpWriteGlobalS8:   sop("WriteGlobalS8", TypeVoid, u64, u32),
	OpWriteGlobalU16:  sop("WriteGlobalU16", TypeVoid, u64, u32),
	OpWriteGlobalS16:  sop("WriteGlobalS16", TypeVoid, u64, u32),
	OpWriteGlobal32:   sop("WriteGlobal32", TypeVoid, u64, u32),
	OpWriteGlobal64:   sop("WriteGlobal64", TypeVoid, u64, u322),
	OpWriteGlobal128:  sop("WriteGlobal128", TypeVoid, u64, u324),
	OpLoadStorageU8:   op("LoadStorageU8", u32, u32, u32),
	OpLoadStorageS8:   op("LoadStorageS8", u32, u32, u32),
	OpLoadStorageU16:  op("LoadStorageU16", u32, u32, u32),
	OpLoadStorageS16:  op("LoadStorageS16", u32, u32, u32),
	OpLoadStorage32:   op("LoadStorage32", u32, u32, u32),
	OpLoadStorage64:   op("LoadStorage64", u322, u32, u32),
	OpLoadStorage128:  op("LoadStorage128", u324, u32, u32),
	OpWriteStorageU8:  sop("WriteStorageU8", TypeVoid, u32, u32, u32),
	OpWriteStorageS8:  sop("WriteStorageS8", TypeVoid, u32, u32, u32),
	OpWriteStorageU16: sop("WriteStorageU16", TypeVoid, u32, u32, u32),
	OpWriteStorageS16: sop("WriteStorageS16", TypeVoid, u32, u32, u32),
	OpWriteStorage32:  sop("WriteStorage32", TypeVoid, u32, u32, u32),
	OpWriteStorage64:  sop("WriteStorage64", TypeVoid, u32, u32, u322),
	OpWriteStorage128: sop("WriteStorage128", TypeVoid, u32, u32, u324),
	OpLoadLocal:       op("LoadLocal", u32, u32),
	OpWriteLocal:      sop("WriteLocal", TypeVoid, u32, u32),
	OpLoadSharedU8:    op("LoadSharedU8", u32, u32),
	OpLoadSharedS8:    op("LoadSharedS8", u32, u32),
	OpLoadSharedU16:   op("LoadSharedU16", u32, u32),
	OpLoadSharedS16:   op("LoadSharedS16", u32, u32),
	OpLoadSharedU32:   op("LoadSharedU32", u32, u32),
	OpLoadSharedU64:   op("LoadSharedU64", u322, u32),
	OpLoadSharedU128:  op("LoadSharedU128", u324, u32),
	OpWriteSharedU8:   sop("WriteSharedU8", TypeVoid, u32, u32),
	OpWriteSharedU16:  sop("WriteSharedU16", TypeVoid, u32, u32),
	OpWriteSharedU32:  sop("WriteSharedU32", TypeVoid, u32, u32),
	OpWriteSharedU64:  sop("WriteSharedU64", TypeVoid, u32, u322),
	OpWriteSharedU128: sop("WriteSharedU128", TypeVoid, u32, u324),

	OpGlobalAtomicIAdd32:     sop("GlobalAtomicIAdd32", u32, u64, u32),
	OpGlobalAtomicSMin32:     sop("GlobalAtomicSMin32", u32, u64, u32),
	OpGlobalAtomicUMin32:     sop("GlobalAtomicUMin32", u32, u64, u32),
	OpGlobalAtomicSMax32:     sop("GlobalAtomicSMax32", u32, u64, u32),
	OpGlobalAtomicUMax32:     sop("GlobalAtomicUMax32", u32, u64, u32),
	OpGlobalAtomicInc32:      sop("GlobalAtomicInc32", u32, u64, u32),
	OpGlobalAtomicDec32:      sop("GlobalAtomicDec32", u32, u64, u32),
	OpGlobalAtomicAnd32:      sop("GlobalAtomicAnd32", u32, u64, u32),
	OpGlobalAtomicOr32:       sop("GlobalAtomicOr32", u32, u64, u32),
	OpGlobalAtomicXor32:      sop("GlobalAtomicXor32", u32, u64, u32),
	OpGlobalAtomicExchange32: sop("GlobalAtomicExchange32", u32, u64, u32),
	OpGlobalAtomicIAdd64:     sop("GlobalAtomicIAdd64", u322, u64, u322),
	OpGlobalAtomicSMin64:     sop("GlobalAtomicSMin64", u322, u64, u322),
	OpGlobalAtomicUMin64:     sop("GlobalAtomicUMin64", u322, u64, u322),
	OpGlobalAtomicSMax64:     sop("GlobalAtomicSMax64", u322, u64, u322),
	OpGlobalAtomicUMax64:     sop("GlobalAtomicUMax64", u322, u64, u322),
	OpGlobalAtomicAnd64:      sop("GlobalAtomicAnd64", u322, u64, u322),
	OpGlobalAtomicOr64:       sop("GlobalAtomicOr64", u322, u64, u322),
	OpGlobalAtomicXor64:      sop("GlobalAtomicXor64", u322, u64, u322),
	OpGlobalAtomicExchange64: sop("GlobalAtomicExchange64", u322, u64, u322),
	OpGlobalAtomicAddF32:     sop("GlobalAtomicAddF32", f32, u64, f32),
	OpGlobalAtomicAddF16x2:   sop("GlobalAtomicAddF16x2", f162, u64, f162),
	OpGlobalAtomicMinF16x2:   sop("GlobalAtomicMinF16x2", f162, u64, f162),
	OpGlobalAtomicMaxF16x2:   sop("GlobalAtomicMaxF16x2", f162, u64, f162),

	OpStorageAtomicIAdd32:     sop("StorageAtomicIAdd32", u32, u32, u32, u32),
	OpStorageAtomicSMin32:     sop("StorageAtomicSMin32", u32, u32, u32, u32),
	OpStorageAtomicUMin32:     sop("StorageAtomicUMin32", u32, u32, u32, u32),
	OpStorageAtomicSMax32:     sop("StorageAtomicSMax32", u32, u32, u32, u32),
	OpStorageAtomicUMax32:     sop("StorageAtomicUMax32", u32, u32, u32, u32),
	OpStorageAtomicInc32:      sop("StorageAtomicInc32", u32, u32, u32, u32),
	OpStorageAtomicDec32:      sop("StorageAtomicDec32", u32, u32, u32, u32),
	OpStorageAtomicAnd32:      sop("StorageAtomicAnd32", u32, u32, u32, u32),
	OpStorageAtomicOr32:       sop("StorageAtomicOr32", u32, u32, u32, u32),
	OpStorageAtomicXor32:      sop("StorageAtomicXor32", u32, u32, u32, u32),
	OpStorageAtomicExchange32: sop("StorageAtomicExchange32", u32, u32, u32, u32),
	OpStorageAtomicIAdd64:     sop("StorageAtomicIAdd64", u322, u32, u32, u322),
	OpStorageAtomicSMin64:     sop("StorageAtomicSMin64", u322, u32, u32, u322),
	OpStorageAtomicUMin64:     sop("StorageAtomicUMin64", u322, u32, u32, u322),
	OpStorageAtomicSMax64:     sop("StorageAtomicSMax64", u322, u32, u32, u322),
	OpStorageAtomicUMax64:     sop("StorageAtomicUMax64", u322, u32, u32, u322),
	OpStorageAtomicAnd64:      sop("StorageAtomicAnd64", u322, u32, u32, u322),
	OpStorageAtomicOr64:       sop("StorageAtomicOr64", u322, u32, u32, u322),
	OpStorageAtomicXor64:      sop("StorageAtomicXor64", u322, u32, u32, u322),
	OpStorageAtomicExchange64: sop("StorageAtomicExchange64", u322, u32, u32, u322),
	OpStorageAtomicAddF32:     sop("StorageAtomicAddF32", f32, u32, u32, f32),
	OpStorageAtomicAddF16x2:   sop("StorageAtomicAddF16x2", f162, u32, u32, f162),
	OpStorageAtomicMinF16x2:   sop("StorageAtomicMinF16x2", f162, u32, u32, f162),
	OpStorageAtomicMaxF16x2:   sop("StorageAtomicMaxF16x2", f162, u32, u32, f162),

	OpSharedAtomicIAdd32:     sop("SharedAtomicIAdd32", u32, u32, u32),
	OpSharedAtomicSMin32:     sop("SharedAtomicSMin32", u32, u32, u32),
	OpSharedAtomicUMin32:     sop("SharedAtomicUMin32", u32, u32, u32),
	OpSharedAtomicSMax32:     sop("SharedAtomicSMax32", u32, u32, u32),
	OpSharedAtomicUMax32:     sop("SharedAtomicUMax32", u32, u32, u32),
	OpSharedAtomicInc32:      sop("SharedAtomicInc32", u32, u32, u32),
	OpSharedAtomicDec32:      sop("SharedAtomicDec32", u32, u32, u32),
	OpSharedAtomicAnd32:      sop("SharedAtomicAnd32", u32, u32, u32),
	OpSharedAtomicOr32:       sop("SharedAtomicOr32", u32, u32, u32),
	OpSharedAtomicXor32:      sop("SharedAtomicXor32", u32, u32, u32),
	OpSharedAtomicExchange32: sop("SharedAtomicExchange32", u32, u32, u32),
	OpSharedAtomicExchange64: sop("SharedAtomicExchange64", u322, u32, u322),

	OpCompositeConstructU32x2: op("CompositeConstructU32x2", u322, u32, u32),
	OpCompositeConstructU32x3: op("CompositeConstructU32x3", u323, u32, u32, u32),
	OpCompositeConstructU32x4: op("CompositeConstructU32x4", u324, u32, u32, u32, u32),
	OpCompositeExtractU32x2:   op("CompositeExtractU32x2", u32, u322, u32),
	OpCompositeExtractU32x3:   op("CompositeExtractU32x3", u32, u323, u32),
	OpCompositeExtractU32x4:   op("CompositeExtractU32x4", u32, u324, u32),
	OpCompositeInsertU32x2:    op("CompositeInsertU32x2", u322, u322, u32, u32),
	OpCompositeInsertU32x3:    op("CompositeInsertU32x3", u323, u323, u32, u32),
	OpCompositeInsertU32x4:    op("CompositeInsertU32x4", u324, u324, u32, u32),
	OpCompositeConstructF32x2: op("CompositeConstructF32x2", f322, f32, f32),
	OpCompositeConstructF32x3: op("CompositeConstructF32x3", f323, f32, f32, f32),
	OpCompositeConstructF32x4: op("CompositeConstructF32x4", f324, f32, f32, f32, f32),
	OpCompositeExtractF32x2:   op("CompositeExtractF32x2", f32, f322, u32),
	OpCompositeExtractF32x3:   op("CompositeExtractF32x3", f32, f323, u32),
	OpCompositeExtractF32x4:   op("CompositeExtractF32x4", f32, f324, u32),
	OpCompositeInsertF32x2:    op("CompositeInsertF32x2", f322, f322, f32, u32),
	OpCompositeInsertF32x3:    op("CompositeInsertF32x3", f323, f323, f32, u32),
	OpCompositeInsertF32x4:    op("CompositeInsertF32x4", f324, f324, f32, u32),
	OpCompositeConstructF16x2: op("CompositeConstructF16x2", f162, f16, f16),
	OpCompositeExtractF16x2:   op("CompositeExtractF16x2", f16, f162, u32),

	OpSelectU1:  op("SelectU1", u1, u1, u1, u1),
	OpSelectU8:  op("SelectU8", u8, u1, u8, u8),
	OpSelectU16: op("SelectU16", u16, u1, u16, u16),
	OpSelectU32: op("SelectU32", u32, u1, u32, u32),
	OpSelectU64: op("SelectU64", u64, u1, u64, u64),
	OpSelectF16: op("SelectF16", f16, u1, f16, f16),
	OpSelectF32: op("SelectF32", f32, u1, f32, f32),
	OpSelectF64: op("SelectF64", f64, u1, f64, f64),

	OpBitCastU16F16:    op("BitCastU16F16", u16, f16),
	OpBitCastU32F32:    op("BitCastU32F32", u32, f32),
	OpBitCastU64F64:    op("BitCastU64F64", u64, f64),
	OpBitCastF16U16:    op("BitCastF16U16", f16, u16),
	OpBitCastF32U32:    op("BitCastF32U32", f32, u32),
	OpBitCastF64U64:    op("BitCastF64U64", f64, u64),
	OpPackUint2x32:     op("PackUint2x32", u64, u322),
	OpUnpackUint2x32:   op("UnpackUint2x32", u322, u64),
	OpPackFloat2x16:    op("PackFloat2x16", u32, f162),
	OpUnpackFloat2x16:  op("UnpackFloat2x16", f162, u32),
	OpPackHalf2x16:     op("PackHalf2x16", u32, f322),
	OpUnpackHalf2x16:   op("UnpackHalf2x16", f322, u32),
	OpPackDouble2x32:   op("PackDouble2x32", f64, u322),
	OpUnpackDouble2x32: op("UnpackDouble2x32", u322, f64),

	OpIAdd32:                 op("IAdd32", u32, u32, u32),
	OpIAdd64:                 op("IAdd64", u64, u64, u64),
	OpISub32:                 op("ISub32", u32, u32, u32),
	OpISub64:                 op("ISub64", u64, u64, u64),
	OpIMul32:                 op("IMul32", u32, u32, u32),
	OpINeg32:                 op("INeg32", u32, u32),
	OpINeg64:                 op("INeg64", u64, u64),
	OpIAbs32:                 op("IAbs32", u32, u32),
	OpShiftLeftLogical32:     op("ShiftLeftLogical32", u32, u32, u32),
	OpShiftLeftLogical64:     op("ShiftLeftLogical64", u64, u64, u32),
	OpShiftRightLogical32:    op("ShiftRightLogical32", u32, u32, u32),
	OpShiftRightLogical64:    op("ShiftRightLogical64", u64, u64, u32),
	OpShiftRightArithmetic32: op("ShiftRightArithmetic32", u32, u32, u32),
	OpShiftRightArithmetic64: op("ShiftRightArithmetic64", u64, u64, u32),
	OpBitwiseAnd32:           op("BitwiseAnd32", u32, u32, u32),
	OpBitwiseOr32:            op("BitwiseOr32", u32, u32, u32),
	OpBitwiseXor32:           op("BitwiseXor32", u32, u32, u32),
	OpBitFieldInsert:         op("BitFieldInsert", u32, u32, u32, u32, u32),
	OpBitFieldSExtract:       op("BitFieldSExtract", u32, u32, u32, u32),
	OpBitFieldUExtract:       op("BitFieldUExtract", u32, u32, u32, u32),
	OpBitReverse32:           op("BitReverse32", u32, u32),
	OpBitCount32:             op("BitCount32", u32, u32),
	OpBitwiseNot32:           op("BitwiseNot32", u32, u32),
	OpFindSMsb32:             op("FindSMsb32", u32, u32),
	OpFindUMsb32:             op("FindUMsb32", u32, u32),
	OpSMin32:                 op("SMin32", u32, u32, u32),
	OpUMin32:                 op("UMin32", u32, u32, u32),
	OpSMax32:                 op("SMax32", u32, u32, u32),
	OpUMax32:                 op("UMax32", u32, u32, u32),
	OpSClamp32:               op("SClamp32", u32, u32, u32, u32),
	OpUClamp32:               op("UClamp32", u32, u32, u32, u32),
	OpSLessThan:              op("SLessThan", u1, u32, u32),
	OpULessThan:              op("ULessThan", u1, u32, u32),
	OpIEqual:                 op("IEqual", u1, u32, u32),
	OpSLessThanEqual:         op("SLessThanEqual", u1, u32, u32),
	OpULessThanEqual:         op("ULessThanEqual", u1, u32, u32),
	OpSGreaterThan:           op("SGreaterThan", u1, u32, u32),
	OpUGreaterThan:           op("UGreaterThan", u1, u32, u32),
	OpINotEqual:              op("INotEqual", u1, u32, u32),
	OpSGreaterThanEqual:      op("SGreaterThanEqual", u1, u32, u32),
	OpUGreaterThanEqual:      op("UGreaterThanEqual", u1, u32, u32),

	OpLogicalOr:  op("LogicalOr", u1, u1, u1),
	OpLogicalAnd: op("LogicalAnd", u1, u1, u1),
	OpLogicalXor: op("LogicalXor", u1, u1, u1),
	OpLogicalNot: op("LogicalNot", u1, u1),

	OpFPAbs16:       op("FPAbs16", f16, f16),
	OpFPAbs32:       op("FPAbs32", f32, f32),
	OpFPAbs64:       op("FPAbs64", f64, f64),
	OpFPAdd16:       op("FPAdd16", f16, f16, f16),
	OpFPAdd32:       op("FPAdd32", f32, f32, f32),
	OpFPAdd64:       op("FPAdd64", f64, f64, f64),
	OpFPFma16:       op("FPFma16", f16, f16, f16, f16),
	OpFPFma32:       op("FPFma32", f32, f32, f32, f32),
	OpFPFma64:       op("FPFma64", f64, f64, f64, f64),
	OpFPMax32:       op("FPMax32", f32, f32, f32),
	OpFPMax64:       op("FPMax64", f64, f64, f64),
	OpFPMin32:       op("FPMin32", f32, f32, f32),
	OpFPMin64:       op("FPMin64", f64, f64, f64),
	OpFPMul16:       op("FPMul16", f16, f16, f16),
	OpFPMul32:       op("FPMul32", f32, f32, f32),
	OpFPMul64:       op("FPMul64", f64, f64, f64),
	OpFPNeg16:       op("FPNeg16", f16, f16),
	OpFPNeg32:       op("FPNeg32", f32, f32),
	OpFPNeg64:       op("FPNeg64", f64, f64),
	OpFPRecip32:     op("FPRecip32", f32, f32),
	OpFPRecip64:     op("FPRecip64", f64, f64),
	OpFPRecipSqrt32: op("FPRecipSqrt32", f32, f32),
	OpFPRecipSqrt64: op("FPRecipSqrt64", f64, f64),
	OpFPSqrt:        op("FPSqrt", f32, f32),
	OpFPSin:         op("FPSin", f32, f32),
	OpFPCos:         op("FPCos", f32, f32),
	OpFPExp2:        op("FPExp2", f32, f32),
	OpFPLog2:        op("FPLog2", f32, f32),
	OpFPSaturate16:  op("FPSaturate16", f16, f16),
	OpFPSaturate32:  op("FPSaturate32", f32, f32),
	OpFPSaturate64:  op("FPSaturate64", f64, f64),
	OpFPClamp16:     op("FPClamp16", f16, f16, f16, f16),
	OpFPClamp32:     op("FPClamp32", f32, f32, f32, f32),
	OpFPClamp64:     op("FPClamp64", f64, f64, f64, f64),
	OpFPRoundEven16: op("FPRoundEven16", f16, f16),
	OpFPRoundEven32: op("FPRoundEven32", f32, f32),
	OpFPRoundEven64: op("FPRoundEven64", f64, f64),
	OpFPFloor16:     op("FPFloor16", f16, f16),
	OpFPFloor32:     op("FPFloor32", f32, f32),
	OpFPFloor64:     op("FPFloor64", f64, f64),
	OpFPCeil16:      op("FPCeil16", f16, f16),
	OpFPCeil32:      op("FPCeil32", f32, f32),
	OpFPCeil64:      op("FPCeil64", f64, f64),
	OpFPTrunc16:     op("FPTrunc16", f16, f16),
	OpFPTrunc32:     op("FPTrunc32", f32, f32),
	OpFPTrunc64:     op("FPTrunc64", f64, f64),

	OpFPOrdEqual16:              op("FPOrdEqual16", u1, f16, f16),
	OpFPOrdEqual32:              op("FPOrdEqual32", u1, f32, f32),
	OpFPOrdEqual64:              op("FPOrdEqual64", u1, f64, f64),
	OpFPUnordEqual16:            op("FPUnordEqual16", u1, f16, f16),
	OpFPUnordEqual32:            op("FPUnordEqual32", u1, f32, f32),
	OpFPUnordEqual64:            op("FPUnordEqual64", u1, f64, f64),
	OpFPOrdNotEqual16:           op("FPOrdNotEqual16", u1, f16, f16),
	OpFPOrdNotEqual32:           op("FPOrdNotEqual32", u1, f32, f32),
	OpFPOrdNotEqual64:           op("FPOrdNotEqual64", u1, f64, f64),
	OpFPUnordNotEqual16:         op("FPUnordNotEqual16", u1, f16, f16),
	OpFPUnordNotEqual32:         op("FPUnordNotEqual32", u1, f32, f32),
	OpFPUnordNotEqual64:         op("FPUnordNotEqual64", u1, f64, f64),
	OpFPOrdLessThan16:           op("FPOrdLessThan16", u1, f16, f16),
	OpFPOrdLessThan32:           op("FPOrdLessThan32", u1, f32, f32),
	OpFPOrdLessThan64:           op("FPOrdLessThan64", u1, f64, f64),
	OpFPUnordLessThan16:         op("FPUnordLessThan16", u1, f16, f16),
	OpFPUnordLessThan32:         op("FPUnordLessThan32", u1, f32, f32),
	OpFPUnordLessThan64:         op("FPUnordLessThan64", u1, f64, f64),
	OpFPOrdGreaterThan16:        op("FPOrdGreaterThan16", u1, f16, f16),
	OpFPOrdGreaterThan32:        op("FPOrdGreaterThan32", u1, f32, f32),
	OpFPOrdGreaterThan64:        op("FPOrdGreaterThan64", u1, f64, f64),
	OpFPUnordGreaterThan16:      op("FPUnordGreaterThan16", u1, f16, f16),
	OpFPUnordGreaterThan32:      op("FPUnordGreaterThan32", u1, f32, f32),
	OpFPUnordGreaterThan64:      op("FPUnordGreaterThan64", u1, f64, f64),
	OpFPOrdLessThanEqual16:      op("FPOrdLessThanEqual16", u1, f16, f16),
	OpFPOrdLessThanEqual32:      op("FPOrdLessThanEqual32", u1, f32, f32),
	OpFPOrdLessThanEqual64:      op("FPOrdLessThanEqual64", u1, f64, f64),
	OpFPUnordLessThanEqual16:    op("FPUnordLessThanEqual16", u1, f16, f16),
	OpFPUnordLessThanEqual32:    op("FPUnordLessThanEqual32", u1, f32, f32),
	OpFPUnordLessThanEqual64:    op("FPUnordLessThanEqual64", u1, f64, f64),
	OpFPOrdGreaterThanEqual16:   op("FPOrdGreaterThanEqual16", u1, f16, f16),
	OpFPOrdGreaterThanEqual32:   op("FPOrdGreaterThanEqual32", u1, f32, f32),
	OpFPOrdGreaterThanEqual64:   op("FPOrdGreaterThanEqual64", u1, f64, f64),
	OpFPUnordGreaterThanEqual16: op("FPUnordGreaterThanEqual16", u1, f16, f16),
	OpFPUnordGreaterThanEqual32: op("FPUnordGreaterThanEqual32", u1, f32, f32),
	OpFPUnordGreaterThanEqual64: op("FPUnordGreaterThanEqual64", u1, f64, f64),
	OpFPIsNan16:                 op("FPIsNan16", u1, f16),
	OpFPIsNan32:                 op("FPIsNan32", u1, f32),
	OpFPIsNan64:                 op("FPIsNan64", u1, f64),

	OpConvertS8F16:  op("ConvertS8F16", u32, f16),
	OpConvertS8F32:  op("ConvertS8F32", u32, f32),
	OpConvertS8F64:  op("ConvertS8F64", u32, f64),
	OpConvertS16F16: op("ConvertS16F16", u32, f16),
	OpConvertS16F32: op("ConvertS16F32", u32, f32),
	OpConvertS16F64: op("ConvertS16F64", u32, f64),
	OpConvertS32F16: op("ConvertS32F16", u32, f16),
	OpConvertS32F32: op("ConvertS32F32", u32, f32),
	OpConvertS32F64: op("ConvertS32F64", u32, f64),
	OpConvertS64F16: op("ConvertS64F16", u64, f16),
	OpConvertS64F32: op("ConvertS64F32", u64, f32),
	OpConvertS64F64: op("ConvertS64F64", u64, f64),
	OpConvertU8F16:  op("ConvertU8F16", u32, f16),
	OpConvertU8F32:  op("ConvertU8F32", u32, f32),
	OpConvertU8F64:  op("ConvertU8F64", u32, f64),
	OpConvertU16F16: op("ConvertU16F16", u32, f16),
	OpConvertU16F32: op("ConvertU16F32", u32, f32),
	OpConvertU16F64: op("ConvertU16F64", u32, f64),
	OpConvertU32F16: op("ConvertU32F16", u32, f16),
	OpConvertU32F32: op("ConvertU32F32", u32, f32),
	OpConvertU32F64: op("ConvertU32F64", u32, f64),
	OpConvertU64F16: op("ConvertU64F16", u64, f16),
	OpConvertU64F32: op("ConvertU64F32", u64, f32),
	OpConvertU64F64: op("ConvertU64F64", u64, f64),
	OpConvertF16S32: op("ConvertF16S32", f16, u32),
	OpConvertF16S64: op("ConvertF16S64", f16, u64),
	OpConvertF16U32: op("ConvertF16U32", f16, u32),
	OpConvertF16U64: op("ConvertF16U64", f16, u64),
	OpConvertF32S32: op("ConvertF32S32", f32, u32),
	OpConvertF32S64: op("ConvertF32S64", f32, u64),
	OpConvertF32U32: op("ConvertF32U32", f32, u32),
	OpConvertF32U64: op("ConvertF32U64", f32, u64),
	OpConvertF64S32: op("ConvertF64S32", f64, u32),
	OpConvertF64S64: op("ConvertF64S64", f64, u64),
	OpConvertF64U32: op("ConvertF64U32", f64, u32),
	OpConvertF64U64: op("ConvertF64U64", f64, u64),
	OpConvertF16F32: op("ConvertF16F32", f16, f32),
	OpConvertF16F64: op("ConvertF16F64", f16, f64),
	OpConvertF32F16: op("ConvertF32F16", f32, f16),
	OpConvertF32F64: op("ConvertF32F64", f32, f64),
	OpConvertF64F16: op("ConvertF64F16", f64, f16),
	OpConvertF64F32: op("ConvertF64F32", f64, f32),
	OpConvertU8U32:  op("ConvertU8U32", u32, u32),
	OpConvertU16U32: op("ConvertU16U32", u32, u32),
	OpConvertU32U8:  op("ConvertU32U8", u32, u32),
	OpConvertU32U16: op("ConvertU32U16", u32, u32),
	OpConvertU32U64: op("ConvertU32U64", u32, u64),
	OpConvertU64U32: op("ConvertU64U32", u64, u32),

	OpVoteAll:          op("VoteAll", u1, u1),
	OpVoteAny:          op("VoteAny", u1, u1),
	OpVoteEqual:        op("VoteEqual", u1, u1),
	OpSubgroupBallot:   op("SubgroupBallot", u32, u1),
	OpSubgroupEqMask:   op("SubgroupEqMask", u32),
	OpSubgroupLtMask:   op("SubgroupLtMask", u32),
	OpSubgroupLeMask:   op("SubgroupLeMask", u32),
	OpSubgroupGtMask:   op("SubgroupGtMask", u32),
	OpSubgroupGeMask:   op("SubgroupGeMask", u32),
	OpShuffleIndex:     op("ShuffleIndex", u32, u32, u32, u32, u32),
	OpShuffleUp:        op("ShuffleUp", u32, u32, u32, u32, u32),
	OpShuffleDown:      op("ShuffleDown", u32, u32, u32, u32, u32),
	OpShuffleButterfly: op("ShuffleButterfly", u32, u32, u32, u32, u32),
	OpFSwizzleAdd:      op("FSwizzleAdd", f32, f32, f32, u32),
	OpDPdxFine:         op("DPdxFine", f32, f32),
	OpDPdyFine:         op("DPdyFine", f32, f32),
	OpDPdxCoarse:       op("DPdxCoarse", f32, f32),
	OpDPdyCoarse:       op("DPdyCoarse", f32, f32),
}

func init() {
	// The image table is mechanical: the three prefixed variants share
	// signatures, differing only in name.
	fill := func(base Opcode, prefix string) {
		imageOps := []opInfo{
			op(prefix+"ImageSampleImplicitLod", f324, u32, opq, opq, opq),
			op(prefix+"ImageSampleExplicitLod", f324, u32, opq, opq, opq),
			op(prefix+"ImageSampleDrefImplicitLod", f32, u32, opq, f32, opq, opq),
			op(prefix+"ImageSampleDrefExplicitLod", f32, u32, opq, f32, opq, opq),
			op(prefix+"ImageGather", f324, u32, opq, opq, opq),
			op(prefix+"ImageGatherDref", f324, u32, opq, opq, opq, f32),
			op(prefix+"ImageFetch", f324, u32, opq, opq, u32, opq),
			op(prefix+"ImageQueryDimensions", u324, u32, u32),
			op(prefix+"ImageQueryLod", f324, u32, opq),
			op(prefix+"ImageGradient", f324, u32, opq, opq, opq, opq),
			sop(prefix+"ImageRead", u324, u32, opq),
			sop(prefix+"ImageWrite", TypeVoid, u32, opq, u324),
			sop(prefix+"ImageAtomicIAdd32", u32, u32, opq, u32),
			sop(prefix+"ImageAtomicSMin32", u32, u32, opq, u32),
			sop(prefix+"ImageAtomicUMin32", u32, u32, opq, u32),
			sop(prefix+"ImageAtomicSMax32", u32, u32, opq, u32),
			sop(prefix+"ImageAtomicUMax32", u32, u32, opq, u32),
			sop(prefix+"ImageAtomicInc32", u32, u32, opq, u32),
			sop(prefix+"ImageAtomicDec32", u32, u32, opq, u32),
			sop(prefix+"ImageAtomicAnd32", u32, u32, opq, u32),
			sop(prefix+"ImageAtomicOr32", u32, u32, opq, u32),
			sop(prefix+"ImageAtomicXor32", u32, u32, opq, u32),
			sop(prefix+"ImageAtomicExchange32", u32, u32, opq, u32),
		}
		for i, info := range imageOps {
			opInfos[int(base)+i] = info
		}
	}
	fill(OpBindlessImageSampleImplicitLod, "Bindless")
	fill(OpBoundImageSampleImplicitLod, "Bound")
	fill(OpImageSampleImplicitLod, "")
}

// String returns the opcode mnemonic.
func (o Opcode) String() string {
	if int(o) < len(opInfos) {
		return opInfos[o].name
	}
	return "Invalid"
}

// ResultType returns the declared result type.
func (o Opcode) ResultType() Type { return opInfos[o].ret }

// NumArgs returns the declared argument count. Phi is variadic and reports
// zero here.
func (o Opcode) NumArgs() int { return len(opInfos[o].args) }

// ArgTypeOf returns the declared type of argument slot i.
func (o Opcode) ArgTypeOf(i int) Type { return opInfos[o].args[i] }

// HasSideEffects reports whether DCE must keep the instruction even with
// zero uses.
func (o Opcode) HasSideEffects() bool { return opInfos[o].sideEffects }

// IsImage reports whether the opcode is a texture or image operation in any
// binding form.
func (o Opcode) IsImage() bool {
	return o >= OpBindlessImageSampleImplicitLod && o <= OpImageAtomicExchange32
}
