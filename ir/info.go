package ir

import "github.com/gogpu/maxwell/shader"

// ConstantBufferDescriptor describes one constant buffer binding.
type ConstantBufferDescriptor struct {
	Index uint32
	Count uint32
}

// StorageBufferDescriptor describes one recovered SSBO binding: the
// constant buffer word pair its address was read from, plus whether any
// instruction writes through it.
type StorageBufferDescriptor struct {
	CbufIndex  uint32
	CbufOffset uint32
	Count      uint32
	IsWritten  bool
}

// TextureDescriptor describes one sampled texture binding.
type TextureDescriptor struct {
	Type                shader.TextureType
	IsDepth             bool
	IsMultisample       bool
	HasSecondary        bool
	CbufIndex           uint32
	CbufOffset          uint32
	SecondaryCbufIndex  uint32
	SecondaryCbufOffset uint32
	Count               uint32
	SizeShift           uint32
}

// TextureBufferDescriptor describes one texel buffer binding.
type TextureBufferDescriptor struct {
	HasSecondary        bool
	CbufIndex           uint32
	CbufOffset          uint32
	SecondaryCbufIndex  uint32
	SecondaryCbufOffset uint32
	Count               uint32
	SizeShift           uint32
}

// ImageDescriptor describes one storage image binding.
type ImageDescriptor struct {
	Type       shader.TextureType
	Format     shader.ImageFormat
	IsWritten  bool
	IsRead     bool
	CbufIndex  uint32
	CbufOffset uint32
	Count      uint32
	SizeShift  uint32
}

// ImageBufferDescriptor describes one storage texel buffer binding.
type ImageBufferDescriptor struct {
	Format     shader.ImageFormat
	IsWritten  bool
	IsRead     bool
	CbufIndex  uint32
	CbufOffset uint32
	Count      uint32
	SizeShift  uint32
}

// ShaderInfo summarizes everything a backend and the host runtime need to
// know about a translated program: used capabilities, I/O masks, and
// resource descriptors. The collect pass fills it.
type ShaderInfo struct {
	UsesWorkgroupID              bool
	UsesLocalInvocationID        bool
	UsesInvocationID             bool
	UsesInvocationInfo           bool
	UsesSampleID                 bool
	UsesIsHelperInvocation       bool
	UsesSubgroupInvocationID     bool
	UsesSubgroupShuffles         bool
	UsesSubgroupVote             bool
	UsesSubgroupMask             bool
	UsesFswzadd                  bool
	UsesDerivatives              bool
	UsesDemoteToHelperInvocation bool

	UsesFP16                bool
	UsesFP64                bool
	UsesFP16DenormsFlush    bool
	UsesFP16DenormsPreserve bool
	UsesFP32DenormsFlush    bool
	UsesFP32DenormsPreserve bool
	UsesInt8                bool
	UsesInt16               bool
	UsesInt64               bool
	UsesInt64BitAtomics     bool
	UsesSharedInt8          bool
	UsesSharedInt16         bool
	UsesGlobalInt8          bool
	UsesGlobalInt16         bool
	UsesAtomicF32Add        bool
	UsesAtomicF16x2Add      bool
	UsesAtomicF16x2Min      bool
	UsesAtomicF16x2Max      bool
	UsesSharedMemory        bool
	UsesGlobalMemory        bool
	UsesAtomicImage         bool
	UsesTypelessImageReads  bool
	UsesTypelessImageWrites bool
	UsesImageBuffers        bool
	UsesSampleMask          bool
	UsesDepthWrite          bool
	UsesFragCoord           bool
	UsesFrontFace           bool
	UsesPointSize           bool
	UsesClipDistances       bool
	UsesLayer               bool
	UsesViewportIndex       bool
	UsesVertexID            bool
	UsesInstanceID          bool
	UsesYDirection          bool
	UsesShadowLod           bool
	UsesSparseResidency     bool
	StoresFragDepth         bool

	// LoadsIndexed and StoresIndexed flag runtime indexed attribute
	// access, which forces declaring the whole I/O space.
	LoadsIndexed  bool
	StoresIndexed bool

	Loads  shader.VaryingState
	Stores shader.VaryingState

	LoadsPatches  [NumPatches]bool
	StoresPatches [NumPatches]bool

	UsedConstantBufferTypes uint32
	UsedStorageBufferTypes  uint32

	// ConstantBufferUsedSizes holds a per-cbuf byte watermark rounded up
	// to 16.
	ConstantBufferUsedSizes [18]uint32

	// NvnBufferUsed is a bitmap of NVN driver constant buffer slots the
	// shader addresses.
	NvnBufferUsed uint32

	ConstantBuffers []ConstantBufferDescriptor
	StorageBuffers  []StorageBufferDescriptor
	Textures        []TextureDescriptor
	TextureBuffers  []TextureBufferDescriptor
	Images          []ImageDescriptor
	ImageBuffers    []ImageBufferDescriptor
}

// Cbuf/ssbo element type bits for UsedConstantBufferTypes and
// UsedStorageBufferTypes.
const (
	BufTypeU8 uint32 = 1 << iota
	BufTypeS8
	BufTypeU16
	BufTypeS16
	BufTypeU32
	BufTypeF32
	BufTypeU32x2
	BufTypeU32x4
)
