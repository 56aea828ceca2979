// Package shader defines the external contracts of the Maxwell recompiler:
// the environment the guest program is read through, the host capability
// profile, the per-compilation runtime configuration, and the bit-exact
// program header prepended to every guest shader binary.
//
// Everything in this package is read-only from the recompiler's perspective.
// A host runtime implements Environment, fills in Profile and RuntimeInfo,
// and hands all three to the pipeline in the maxwell package.
package shader

// Stage identifies the pipeline stage a shader program runs in.
type Stage uint8

const (
	StageVertexA Stage = iota // first half of a dual vertex program pair
	StageVertexB
	StageTessellationControl
	StageTessellationEval
	StageGeometry
	StageFragment
	StageCompute
)

// String returns the stage name as used in diagnostics.
func (s Stage) String() string {
	switch s {
	case StageVertexA:
		return "vertex_a"
	case StageVertexB:
		return "vertex_b"
	case StageTessellationControl:
		return "tess_control"
	case StageTessellationEval:
		return "tess_eval"
	case StageGeometry:
		return "geometry"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "invalid"
	}
}

// OutputTopology is the primitive kind produced by a geometry shader,
// encoded exactly as the program header stores it.
type OutputTopology uint8

const (
	TopologyPointList     OutputTopology = 1
	TopologyLineStrip     OutputTopology = 6
	TopologyTriangleStrip OutputTopology = 7
)

// InputTopology is the geometry stage input primitive, from RuntimeInfo.
type InputTopology uint8

const (
	InputPoints InputTopology = iota
	InputLines
	InputLinesAdjacency
	InputTriangles
	InputTrianglesAdjacency
)

// TextureType classifies a texture descriptor as seen by the guest's TIC
// table and by the IR's texture instructions.
type TextureType uint8

const (
	TextureColor1D TextureType = iota
	TextureColorArray1D
	TextureColor2D
	TextureColorArray2D
	TextureColor3D
	TextureColorCube
	TextureColorArrayCube
	TextureBuffer
	TextureColor2DRect
)

// ImageFormat is the storage image format declared by an image instruction.
type ImageFormat uint8

const (
	ImageFormatTypeless ImageFormat = iota
	ImageFormatR8Uint
	ImageFormatR8Sint
	ImageFormatR16Uint
	ImageFormatR16Sint
	ImageFormatR32Uint
	ImageFormatR32G32Uint
	ImageFormatR32G32B32A32Uint
)

// AttributeType describes how the host fixed-function state feeds a generic
// vertex input attribute.
type AttributeType uint8

const (
	AttributeFloat AttributeType = iota
	AttributeSignedInt
	AttributeUnsignedInt
	AttributeDisabled
)

// CompareFunction mirrors the fixed-function alpha test comparison.
type CompareFunction uint8

const (
	CompareNever CompareFunction = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// Tessellation layout state forwarded from the guest pipeline.
type (
	TessPrimitive uint8
	TessSpacing   uint8
)

const (
	TessIsolines TessPrimitive = iota
	TessTriangles
	TessQuads
)

const (
	SpacingEqual TessSpacing = iota
	SpacingFractionalOdd
	SpacingFractionalEven
)

// VaryingState is a bitmap of used inter-stage attributes, indexed by the
// ir.Attribute enumeration.
type VaryingState struct {
	Mask [8]uint32
}

// Get reports whether attribute index is marked used.
func (v *VaryingState) Get(index uint) bool {
	return v.Mask[index/32]&(1<<(index%32)) != 0
}

// Set marks or clears attribute index.
func (v *VaryingState) Set(index uint, value bool) {
	if value {
		v.Mask[index/32] |= 1 << (index % 32)
	} else {
		v.Mask[index/32] &^= 1 << (index % 32)
	}
}

// AnyComponent reports whether any of the four components of the vec4
// starting at base is used.
func (v *VaryingState) AnyComponent(base uint) bool {
	return v.Get(base) || v.Get(base+1) || v.Get(base+2) || v.Get(base+3)
}
