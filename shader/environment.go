package shader

// Environment is the recompiler's window into guest GPU state. The host
// runtime implements it on top of guest memory and the bound texture
// descriptor tables. All methods must be safe to call repeatedly with the
// same arguments and must not observe the compilation in progress.
type Environment interface {
	// ReadInstruction returns the 64-bit instruction word at the given
	// code address, in guest byte order.
	ReadInstruction(address uint32) uint64

	// ReadCbufValue returns one 32-bit word of a bound constant buffer.
	ReadCbufValue(cbufIndex, cbufOffset uint32) uint32

	// ReadTextureType resolves a raw texture handle against the guest's
	// TIC table and classifies the referenced texture.
	ReadTextureType(rawHandle uint32) TextureType

	// TextureBoundBuffer returns the constant buffer slot holding bound
	// (non-bindless) texture handles.
	TextureBoundBuffer() uint32

	// LocalMemorySize returns the per-thread local memory size in bytes.
	LocalMemorySize() uint32

	// SharedMemorySize returns the workgroup shared memory size in bytes.
	SharedMemorySize() uint32

	// WorkgroupSize returns the compute dispatch workgroup dimensions.
	WorkgroupSize() [3]uint32

	// SPH returns the program header prepended to the shader binary.
	// Meaningless for compute shaders.
	SPH() *ProgramHeader

	// GpPassthroughMask returns the geometry passthrough attribute mask.
	// Only valid when the header has geometry passthrough enabled.
	GpPassthroughMask() *[8]uint32

	// ShaderStage returns the pipeline stage being compiled.
	ShaderStage() Stage

	// StartAddress returns the code address of the first instruction.
	StartAddress() uint32
}
