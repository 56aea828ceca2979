package shader

import "encoding/binary"

// ProgramHeaderSize is the fixed size of the SPH in bytes.
const ProgramHeaderSize = 0x50

// PixelImap describes how a fragment input component is interpolated.
type PixelImap uint8

const (
	PixelImapUnused PixelImap = iota
	PixelImapConstant
	PixelImapPerspective
	PixelImapScreenLinear
)

// ProgramHeader is the 0x50-byte record at the start of each guest shader
// binary. It is kept as raw bytes so a blob can be consumed bit-exactly;
// all semantically significant fields are exposed through accessors.
//
// Word layout of the common section:
//
//	word 0  sph_type[0:5] version[5:10] shader_type[10:14] mrt_enable[14]
//	        kills_pixels[15] does_global_store[16] sass_version[17:21]
//	        geometry_passthrough[24] does_load_or_store[26] does_fp64[27]
//	        stream_out_mask[28:32]
//	word 1  local_memory_low_size[0:24] per_patch_attribute_count[24:32]
//	word 2  local_memory_high_size[0:24] threads_per_input_primitive[24:32]
//	word 3  local_memory_crs_size[0:24] output_topology[24:28]
//	word 4  max_output_vertex_count[0:12] store_req_start[12:20]
//	        store_req_end[24:32]
//
// The section from 0x14 is stage dependent: the VTG view carries the
// per-generic input/output component maps and the system value bitmaps, the
// PS view carries the per-generic PixelImap table and the output map.
type ProgramHeader struct {
	Raw [ProgramHeaderSize]byte
}

// ProgramHeaderFromBytes copies the first 0x50 bytes of code into a header.
func ProgramHeaderFromBytes(code []byte) *ProgramHeader {
	h := new(ProgramHeader)
	copy(h.Raw[:], code)
	return h
}

func (h *ProgramHeader) word(i int) uint32 {
	return binary.LittleEndian.Uint32(h.Raw[i*4:])
}

func bits(w uint32, pos, count uint) uint32 {
	return (w >> pos) & (1<<count - 1)
}

// SphType returns the header type field.
func (h *ProgramHeader) SphType() uint32 { return bits(h.word(0), 0, 5) }

// Version returns the header version field.
func (h *ProgramHeader) Version() uint32 { return bits(h.word(0), 5, 5) }

// ShaderType returns the raw shader type field.
func (h *ProgramHeader) ShaderType() uint32 { return bits(h.word(0), 10, 4) }

// MrtEnable reports whether multiple render targets are enabled.
func (h *ProgramHeader) MrtEnable() bool { return bits(h.word(0), 14, 1) != 0 }

// KillsPixels reports whether the program may discard fragments.
func (h *ProgramHeader) KillsPixels() bool { return bits(h.word(0), 15, 1) != 0 }

// DoesGlobalStore reports whether the program writes global memory.
func (h *ProgramHeader) DoesGlobalStore() bool { return bits(h.word(0), 16, 1) != 0 }

// GeometryPassthrough reports whether the geometry stage is passthrough.
func (h *ProgramHeader) GeometryPassthrough() bool { return bits(h.word(0), 24, 1) != 0 }

// DoesLoadOrStore reports whether the program accesses memory at all.
func (h *ProgramHeader) DoesLoadOrStore() bool { return bits(h.word(0), 26, 1) != 0 }

// DoesFP64 reports whether the program uses double precision.
func (h *ProgramHeader) DoesFP64() bool { return bits(h.word(0), 27, 1) != 0 }

// StreamOutMask returns the four transform feedback stream enable bits.
func (h *ProgramHeader) StreamOutMask() uint32 { return bits(h.word(0), 28, 4) }

// LocalMemorySize combines the low and high local memory size fields.
func (h *ProgramHeader) LocalMemorySize() uint32 {
	return bits(h.word(1), 0, 24) | bits(h.word(2), 0, 24)<<24
}

// PerPatchAttributeCount returns the tessellation per-patch attribute count.
func (h *ProgramHeader) PerPatchAttributeCount() uint32 { return bits(h.word(1), 24, 8) }

// ThreadsPerInputPrimitive returns the geometry invocation count field.
func (h *ProgramHeader) ThreadsPerInputPrimitive() uint32 { return bits(h.word(2), 24, 8) }

// LocalMemoryCrsSize returns the call/return stack size field.
func (h *ProgramHeader) LocalMemoryCrsSize() uint32 { return bits(h.word(3), 0, 24) }

// OutputTopology returns the geometry output primitive kind.
func (h *ProgramHeader) OutputTopology() OutputTopology {
	return OutputTopology(bits(h.word(3), 24, 4))
}

// MaxOutputVertices returns the geometry max vertex count.
func (h *ProgramHeader) MaxOutputVertices() uint32 { return bits(h.word(4), 0, 12) }

// VTG section offsets. Each generic map packs one 4-bit component mask per
// generic attribute, 32 attributes in 16 bytes.
const (
	vtgImapGenericOffset = 0x1C
	vtgOmapGenericOffset = 0x34
	vtgClipMaskOffset    = 0x44
	vtgFlagsOffset       = 0x45
)

func (h *ProgramHeader) genericNibble(base, attr int) uint8 {
	b := h.Raw[base+attr/2]
	if attr%2 != 0 {
		b >>= 4
	}
	return b & 0xF
}

// VtgInputGeneric returns the 4-bit input component mask of one generic
// attribute in a vertex/tessellation/geometry program.
func (h *ProgramHeader) VtgInputGeneric(attr int) uint8 {
	return h.genericNibble(vtgImapGenericOffset, attr)
}

// VtgOutputGeneric returns the 4-bit output component mask of one generic
// attribute in a vertex/tessellation/geometry program.
func (h *ProgramHeader) VtgOutputGeneric(attr int) uint8 {
	return h.genericNibble(vtgOmapGenericOffset, attr)
}

// ClipDistancesMask returns the 8-bit enabled clip distance mask.
func (h *ProgramHeader) ClipDistancesMask() uint8 { return h.Raw[vtgClipMaskOffset] }

// VTG single-bit outputs.
func (h *ProgramHeader) OmapPointSize() bool  { return h.Raw[vtgFlagsOffset]&0x01 != 0 }
func (h *ProgramHeader) OmapViewport() bool   { return h.Raw[vtgFlagsOffset]&0x02 != 0 }
func (h *ProgramHeader) OmapLayer() bool      { return h.Raw[vtgFlagsOffset]&0x04 != 0 }
func (h *ProgramHeader) OmapPosition() bool   { return h.Raw[vtgFlagsOffset]&0x08 != 0 }
func (h *ProgramHeader) ImapInstanceID() bool { return h.Raw[vtgFlagsOffset]&0x10 != 0 }
func (h *ProgramHeader) ImapVertexID() bool   { return h.Raw[vtgFlagsOffset]&0x20 != 0 }

// PS section offsets. The imap table stores one byte per generic attribute:
// four 2-bit PixelImap entries ordered x, y, z, w.
const (
	psImapGenericOffset = 0x14
	psOmapTargetOffset  = 0x44
	psOmapFlagsOffset   = 0x48
)

// PsGenericInput returns the interpolation of one component of a generic
// fragment input.
func (h *ProgramHeader) PsGenericInput(attr, component int) PixelImap {
	b := h.Raw[psImapGenericOffset+attr]
	return PixelImap((b >> (2 * component)) & 0x3)
}

// PsGenericInputUsed reports whether any component of the generic fragment
// input is live.
func (h *ProgramHeader) PsGenericInputUsed(attr int) bool {
	return h.Raw[psImapGenericOffset+attr] != 0
}

// PsOmapTarget returns the 4-bit component enable mask of a render target.
func (h *ProgramHeader) PsOmapTarget(rt int) uint8 {
	w := h.word(psOmapTargetOffset / 4)
	return uint8(bits(w, uint(rt*4), 4))
}

// PsOmapSampleMask reports whether the program writes the sample mask.
func (h *ProgramHeader) PsOmapSampleMask() bool { return h.Raw[psOmapFlagsOffset]&0x1 != 0 }

// PsOmapDepth reports whether the program writes fragment depth.
func (h *ProgramHeader) PsOmapDepth() bool { return h.Raw[psOmapFlagsOffset]&0x2 != 0 }
