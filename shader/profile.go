package shader

// Profile describes what the host device and driver can do. It only affects
// code emission; switches that change the IR live in HostTranslateInfo.
type Profile struct {
	SupportedSPIRVVersion uint32

	SupportInt8                            bool
	SupportInt16                           bool
	SupportInt64                           bool
	SupportVertexInstanceID                bool
	SupportFloatControls                   bool
	SupportFP16DenormPreserve              bool
	SupportFP32DenormPreserve              bool
	SupportFP16DenormFlush                 bool
	SupportFP32DenormFlush                 bool
	SupportFP16SignedZeroNanPreserve       bool
	SupportFP32SignedZeroNanPreserve       bool
	SupportFP64SignedZeroNanPreserve       bool
	SupportExplicitWorkgroupLayout         bool
	SupportVote                            bool
	SupportViewportIndexLayerNonGeometry   bool
	SupportViewportMask                    bool
	SupportTypelessImageLoads              bool
	SupportDemoteToHelperInvocation        bool
	SupportInt64Atomics                    bool
	SupportDerivativeControl               bool
	SupportGeometryShaderPassthrough       bool
	SupportGLNvGpuShader5                  bool
	SupportGLAmdGpuShaderHalfFloat         bool
	SupportGLTextureShadowLod              bool
	SupportGLWarpIntrinsics                bool
	SupportGLVariableAoffi                 bool
	SupportGLSparseTextures                bool
	SupportGLDerivativeControl             bool

	HasBrokenSpirvClamp             bool
	HasBrokenUnsignedImageOffsets   bool
	HasBrokenSignedOperations       bool
	HasBrokenFP16FloatControls      bool
	HasGLComponentIndexingBug       bool
	HasGLPreciseBug                 bool
	IgnoreNanFPComparisons          bool
	WarpSizePotentiallyLargerThan32 bool
	LowerLeftOriginMode             bool
	NeedDeclaredFragColors          bool
	NeedFastmathOff                 bool

	// DisableLoopSafety drops the per-loop iteration counters from the
	// emitted code. A misbehaving guest shader can then hang the GPU.
	DisableLoopSafety bool

	// GLMaxComputeSmemSize clamps the declared shared memory size; an
	// overflowing shader logs a warning and is clamped rather than failed.
	GLMaxComputeSmemSize uint32
}

// HostTranslateInfo holds the switches that change the IR itself rather
// than its emission.
type HostTranslateInfo struct {
	SupportFloat16     bool // gates the FP16 to FP32 lowering pass
	SupportInt64       bool // gates the Int64 to Int32 lowering pass
	NeedsDemoteReorder bool // gates the demote combination post pass
}
