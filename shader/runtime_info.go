package shader

// TransformFeedbackVarying maps one generic output component range to a
// transform feedback buffer.
type TransformFeedbackVarying struct {
	Buffer     uint32
	Stride     uint32
	Offset     uint32
	Components uint32
}

// RuntimeInfo is the per-compilation configuration derived from the guest's
// current pipeline state. Unlike Profile it changes between compiles of the
// same device.
type RuntimeInfo struct {
	// GenericInputTypes declares the host vertex format of each generic
	// input attribute.
	GenericInputTypes [32]AttributeType

	// PreviousStageStores gates input declarations on what the prior
	// stage actually wrote.
	PreviousStageStores VaryingState

	// ConvertDepthMode emits a depth range remap in the vertex epilogue.
	ConvertDepthMode bool

	// ForceEarlyZ emits layout(early_fragment_tests) in fragment shaders.
	ForceEarlyZ bool

	TessPrimitive TessPrimitive
	TessSpacing   TessSpacing
	TessClockwise bool

	InputTopology InputTopology

	// FixedStatePointSize, when non-nil, writes gl_PointSize to a fixed
	// value in the prologue.
	FixedStatePointSize *float32

	// AlphaTestFunc, when non-nil, emits a conditional discard after the
	// first fragment color is written.
	AlphaTestFunc      *CompareFunction
	AlphaTestReference float32

	// YNegate flips the guest's Y axis trick into a constant.
	YNegate bool

	// GlasmUseStorageBuffers selects the GLASM fast path for SSBO access.
	GlasmUseStorageBuffers bool

	// XfbVaryings, indexed by generic component, declares transform
	// feedback qualifiers. Empty when transform feedback is off.
	XfbVaryings []TransformFeedbackVarying
}
