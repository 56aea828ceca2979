package ir

import "github.com/gogpu/maxwell/shader"

// Instruction flags are an opcode-interpreted 32-bit payload stored inline
// in the Inst. The helpers below pack and unpack the two layouts in use.

// FpRounding is the IEEE rounding mode of a floating point instruction.
type FpRounding uint8

const (
	FpRoundNearest FpRounding = iota // round to nearest even
	FpRoundNeg
	FpRoundPos
	FpRoundZero
)

// FmzMode controls denormal flushing and NaN propagation.
type FmzMode uint8

const (
	FmzNone FmzMode = iota // non-standard per-instruction override
	FmzFTZ                 // flush denormals, NaN propagation intact
	FmzFMZ                 // flush denormals, zero times anything is zero
	FmzDontCare
)

// FpControl is the floating point flag payload.
//
// Bit layout: no_contraction[0] rounding[1:3] fmz[3:5].
type FpControl struct {
	NoContraction bool
	Rounding      FpRounding
	Fmz           FmzMode
}

// Pack encodes the control word into instruction flags.
func (c FpControl) Pack() uint32 {
	var w uint32
	if c.NoContraction {
		w |= 1
	}
	w |= uint32(c.Rounding) << 1
	w |= uint32(c.Fmz) << 3
	return w
}

// FpControlFromFlags decodes an FpControl payload.
func FpControlFromFlags(w uint32) FpControl {
	return FpControl{
		NoContraction: w&1 != 0,
		Rounding:      FpRounding(w >> 1 & 3),
		Fmz:           FmzMode(w >> 3 & 3),
	}
}

// TextureInstInfo is the texture and image flag payload.
//
// Bit layout: type[0:4] is_depth[4] has_bias[5] has_lod_clamp[6]
// relaxed_precision[7] gather_component[8:10] num_derivatives[10:12]
// image_format[12:16] descriptor_index[16:24].
type TextureInstInfo struct {
	Type            shader.TextureType
	IsDepth         bool
	HasBias         bool
	HasLodClamp     bool
	RelaxedPrec     bool
	GatherComponent uint8
	NumDerivatives  uint8
	Format          shader.ImageFormat
	DescriptorIndex uint8
}

// Pack encodes the texture payload into instruction flags.
func (t TextureInstInfo) Pack() uint32 {
	var w uint32
	w |= uint32(t.Type) & 0xF
	if t.IsDepth {
		w |= 1 << 4
	}
	if t.HasBias {
		w |= 1 << 5
	}
	if t.HasLodClamp {
		w |= 1 << 6
	}
	if t.RelaxedPrec {
		w |= 1 << 7
	}
	w |= uint32(t.GatherComponent&3) << 8
	w |= uint32(t.NumDerivatives&3) << 10
	w |= uint32(t.Format&0xF) << 12
	w |= uint32(t.DescriptorIndex) << 16
	return w
}

// TextureInstInfoFromFlags decodes a texture payload.
func TextureInstInfoFromFlags(w uint32) TextureInstInfo {
	return TextureInstInfo{
		Type:            shader.TextureType(w & 0xF),
		IsDepth:         w&(1<<4) != 0,
		HasBias:         w&(1<<5) != 0,
		HasLodClamp:     w&(1<<6) != 0,
		RelaxedPrec:     w&(1<<7) != 0,
		GatherComponent: uint8(w >> 8 & 3),
		NumDerivatives:  uint8(w >> 10 & 3),
		Format:          shader.ImageFormat(w >> 12 & 0xF),
		DescriptorIndex: uint8(w >> 16),
	}
}
