package translate

import (
	"github.com/gogpu/maxwell/decode"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// Texture instructions translate to the Bindless or Bound image opcodes;
// the texture promotion pass later rewrites both into descriptor indexed
// forms. The handle of the bound form is the constant buffer offset packed
// in the instruction, the bindless form reads a descriptor word from a
// register.

// texDim describes the coordinate layout of a texture dimension code at
// bits 28..30.
type texDim struct {
	typ    shader.TextureType
	coords uint32
	array  bool
}

var texDims = [8]texDim{
	{shader.TextureColor1D, 1, false},
	{shader.TextureColorArray1D, 1, true},
	{shader.TextureColor2D, 2, false},
	{shader.TextureColorArray2D, 2, true},
	{shader.TextureColor3D, 3, false},
	{shader.TextureColorCube, 3, false},
	{shader.TextureColorArrayCube, 3, true},
	{shader.TextureColor2D, 2, false},
}

// texHandle returns the handle operand and whether the bindless form is in
// use.
func (t *Translator) texHandle(w uint64, bindless bool) ir.Value {
	if bindless {
		return t.gprC(w)
	}
	return ir.MakeU32(uint32(decode.Field(w, 36, 13)))
}

// sampleCoords gathers float coordinates starting at base, appending the
// array layer last. Maxwell stores the layer in the first register.
func (t *Translator) sampleCoords(base ir.Reg, dim texDim) ir.Value {
	r := base
	var layer ir.Value
	if dim.array {
		layer = t.e.Emit(ir.OpConvertF32U32, t.e.GetReg(r))
		r++
	}
	comps := make([]ir.Value, 0, 4)
	for i := uint32(0); i < dim.coords; i++ {
		comps = append(comps, t.e.Emit(ir.OpBitCastF32U32, t.e.GetReg(r)))
		r++
	}
	if dim.array {
		comps = append(comps, layer)
	}
	return t.constructF32(comps)
}

func (t *Translator) constructF32(comps []ir.Value) ir.Value {
	switch len(comps) {
	case 1:
		return comps[0]
	case 2:
		return t.e.Emit(ir.OpCompositeConstructF32x2, comps[0], comps[1])
	case 3:
		return t.e.Emit(ir.OpCompositeConstructF32x3, comps[0], comps[1], comps[2])
	default:
		return t.e.Emit(ir.OpCompositeConstructF32x4, comps[0], comps[1], comps[2], comps[3])
	}
}

func (t *Translator) constructU32(comps []ir.Value) ir.Value {
	switch len(comps) {
	case 1:
		return comps[0]
	case 2:
		return t.e.Emit(ir.OpCompositeConstructU32x2, comps[0], comps[1])
	case 3:
		return t.e.Emit(ir.OpCompositeConstructU32x3, comps[0], comps[1], comps[2])
	default:
		return t.e.Emit(ir.OpCompositeConstructU32x4, comps[0], comps[1], comps[2], comps[3])
	}
}

// writeSampleResult stores masked components of a four component sample.
func (t *Translator) writeSampleResult(w uint64, res ir.Value, mask uint32) {
	dest := decode.DestReg(w)
	for i := uint32(0); i < 4; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		c := t.e.Emit(ir.OpCompositeExtractF32x4, res, ir.MakeU32(i))
		t.setRegF32(dest, c)
		dest++
	}
}

// Lod modes at bits 55..56.
const (
	lodAuto = iota
	lodZero
	lodLod
	lodBias
)

func (t *Translator) tex(w uint64) error {
	dim := texDims[decode.Field(w, 28, 3)]
	bindless := decode.Field(w, 54, 1) != 0
	dc := decode.Field(w, 50, 1) != 0
	lodMode := decode.Field(w, 55, 2)

	handle := t.texHandle(w, bindless)
	coords := t.sampleCoords(decode.SrcAReg(w), dim)
	info := ir.TextureInstInfo{Type: dim.typ, IsDepth: dc}

	prefix := func(bound, bindlessOp ir.Opcode) ir.Opcode {
		if bindless {
			return bindlessOp
		}
		return bound
	}

	var res ir.Value
	if dc {
		dref := t.gprBF32(w)
		switch lodMode {
		case lodZero, lodLod:
			lod := ir.Value(ir.MakeF32(0))
			if lodMode == lodLod {
				lod = t.gprBF32(w)
			}
			res = t.e.EmitWithFlags(
				prefix(ir.OpBoundImageSampleDrefExplicitLod, ir.OpBindlessImageSampleDrefExplicitLod),
				info.Pack(), handle, coords, dref, lod, ir.MakeU32(0))
		default:
			res = t.e.EmitWithFlags(
				prefix(ir.OpBoundImageSampleDrefImplicitLod, ir.OpBindlessImageSampleDrefImplicitLod),
				info.Pack(), handle, coords, dref, ir.MakeU32(0), ir.MakeU32(0))
		}
		// A depth comparison yields one component.
		t.setRegF32(decode.DestReg(w), res)
		return nil
	}

	switch lodMode {
	case lodZero, lodLod:
		lod := ir.Value(ir.MakeF32(0))
		if lodMode == lodLod {
			lod = t.gprBF32(w)
		}
		res = t.e.EmitWithFlags(
			prefix(ir.OpBoundImageSampleExplicitLod, ir.OpBindlessImageSampleExplicitLod),
			info.Pack(), handle, coords, lod, ir.MakeU32(0))
	case lodBias:
		info.HasBias = true
		res = t.e.EmitWithFlags(
			prefix(ir.OpBoundImageSampleImplicitLod, ir.OpBindlessImageSampleImplicitLod),
			info.Pack(), handle, coords, t.gprBF32(w), ir.MakeU32(0))
	default:
		res = t.e.EmitWithFlags(
			prefix(ir.OpBoundImageSampleImplicitLod, ir.OpBindlessImageSampleImplicitLod),
			info.Pack(), handle, coords, ir.MakeU32(0), ir.MakeU32(0))
	}
	t.writeSampleResult(w, res, uint32(decode.Field(w, 31, 4)))
	return nil
}

// texs is the scalar packed sampling form: two coordinate registers, up to
// four results split across two destination registers.
func (t *Translator) texs(w uint64) error {
	dim := texDims[decode.Field(w, 53, 3)]
	handle := ir.MakeU32(uint32(decode.Field(w, 36, 13)))
	info := ir.TextureInstInfo{Type: dim.typ}

	comps := make([]ir.Value, 0, 3)
	var layer ir.Value
	r := decode.SrcAReg(w)
	if dim.array {
		layer = t.e.Emit(ir.OpConvertF32U32, t.e.GetReg(r))
		r++
	}
	for i := uint32(0); i < dim.coords; i++ {
		if i+1 == dim.coords && dim.coords > 1 {
			// The last coordinate rides in the B register slot.
			comps = append(comps, t.gprBF32(w))
		} else {
			comps = append(comps, t.e.Emit(ir.OpBitCastF32U32, t.e.GetReg(r)))
			r++
		}
	}
	if dim.array {
		comps = append(comps, layer)
	}
	coords := t.constructF32(comps)

	res := t.e.EmitWithFlags(ir.OpBoundImageSampleImplicitLod, info.Pack(),
		handle, coords, ir.MakeU32(0), ir.MakeU32(0))

	dest0 := decode.DestReg(w)
	dest1 := ir.Reg(decode.Field(w, 28, 8))
	t.writePairResult(res, dest0, dest1, uint32(decode.Field(w, 50, 3)))
	return nil
}

// writePairResult distributes masked components across the split TEXS and
// TLD4S destination pair.
func (t *Translator) writePairResult(res ir.Value, dest0, dest1 ir.Reg, mask uint32) {
	outs := []ir.Reg{dest0, dest0 + 1, dest1, dest1 + 1}
	n := 0
	for i := uint32(0); i < 4; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		c := t.e.Emit(ir.OpCompositeExtractF32x4, res, ir.MakeU32(i))
		if n < len(outs) {
			t.setRegF32(outs[n], c)
		}
		n++
	}
}

func (t *Translator) fetchCoords(base ir.Reg, dim texDim) ir.Value {
	comps := make([]ir.Value, 0, 3)
	r := base
	if dim.array {
		r++ // layer handled by the caller
	}
	for i := uint32(0); i < dim.coords; i++ {
		comps = append(comps, t.e.GetReg(r))
		r++
	}
	return t.constructU32(comps)
}

func (t *Translator) tld(w uint64) error {
	dim := texDims[decode.Field(w, 28, 3)]
	handle := ir.MakeU32(uint32(decode.Field(w, 36, 13)))
	info := ir.TextureInstInfo{Type: dim.typ}
	coords := t.fetchCoords(decode.SrcAReg(w), dim)
	lod := ir.Value(ir.MakeU32(0))
	if decode.Field(w, 55, 1) != 0 {
		lod = t.gprB(w)
	}
	res := t.e.EmitWithFlags(ir.OpBoundImageFetch, info.Pack(),
		handle, coords, ir.MakeU32(0), lod, ir.MakeU32(0))
	t.writeSampleResult(w, res, uint32(decode.Field(w, 31, 4)))
	return nil
}

func (t *Translator) tlds(w uint64) error {
	dim := texDims[decode.Field(w, 53, 3)]
	handle := ir.MakeU32(uint32(decode.Field(w, 36, 13)))
	info := ir.TextureInstInfo{Type: dim.typ}

	var coords ir.Value
	if dim.coords == 1 {
		coords = t.e.GetReg(decode.SrcAReg(w))
	} else {
		coords = t.e.Emit(ir.OpCompositeConstructU32x2,
			t.e.GetReg(decode.SrcAReg(w)), t.gprB(w))
	}
	res := t.e.EmitWithFlags(ir.OpBoundImageFetch, info.Pack(),
		handle, coords, ir.MakeU32(0), ir.MakeU32(0), ir.MakeU32(0))
	dest0 := decode.DestReg(w)
	dest1 := ir.Reg(decode.Field(w, 28, 8))
	t.writePairResult(res, dest0, dest1, uint32(decode.Field(w, 50, 3)))
	return nil
}

func (t *Translator) tld4(w uint64) error {
	dim := texDims[decode.Field(w, 28, 3)]
	bindless := decode.Field(w, 54, 1) != 0
	dc := decode.Field(w, 50, 1) != 0
	handle := t.texHandle(w, bindless)
	coords := t.sampleCoords(decode.SrcAReg(w), dim)
	info := ir.TextureInstInfo{
		Type:            dim.typ,
		IsDepth:         dc,
		GatherComponent: uint8(decode.Field(w, 56, 2)),
	}
	var res ir.Value
	if dc {
		op := ir.OpBoundImageGatherDref
		if bindless {
			op = ir.OpBindlessImageGatherDref
		}
		res = t.e.EmitWithFlags(op, info.Pack(),
			handle, coords, ir.MakeU32(0), ir.MakeU32(0), t.gprBF32(w))
	} else {
		op := ir.OpBoundImageGather
		if bindless {
			op = ir.OpBindlessImageGather
		}
		res = t.e.EmitWithFlags(op, info.Pack(),
			handle, coords, ir.MakeU32(0), ir.MakeU32(0))
	}
	t.writeSampleResult(w, res, uint32(decode.Field(w, 31, 4)))
	return nil
}

func (t *Translator) tld4s(w uint64) error {
	handle := ir.MakeU32(uint32(decode.Field(w, 36, 13)))
	dc := decode.Field(w, 50, 1) != 0
	info := ir.TextureInstInfo{
		Type:            shader.TextureColor2D,
		IsDepth:         dc,
		GatherComponent: uint8(decode.Field(w, 52, 2)),
	}
	coords := t.e.Emit(ir.OpCompositeConstructF32x2,
		t.e.Emit(ir.OpBitCastF32U32, t.e.GetReg(decode.SrcAReg(w))),
		t.gprBF32(w))
	var res ir.Value
	if dc {
		res = t.e.EmitWithFlags(ir.OpBoundImageGatherDref, info.Pack(),
			handle, coords, ir.MakeU32(0), ir.MakeU32(0),
			t.e.Emit(ir.OpBitCastF32U32, t.e.GetReg(decode.SrcAReg(w)+1)))
	} else {
		res = t.e.EmitWithFlags(ir.OpBoundImageGather, info.Pack(),
			handle, coords, ir.MakeU32(0), ir.MakeU32(0))
	}
	dest0 := decode.DestReg(w)
	dest1 := ir.Reg(decode.Field(w, 28, 8))
	t.writePairResult(res, dest0, dest1, uint32(decode.Field(w, 31, 4)))
	return nil
}

func (t *Translator) tmml(w uint64) error {
	dim := texDims[decode.Field(w, 28, 3)]
	bindless := decode.Field(w, 54, 1) != 0
	handle := t.texHandle(w, bindless)
	coords := t.sampleCoords(decode.SrcAReg(w), dim)
	info := ir.TextureInstInfo{Type: dim.typ}
	op := ir.OpBoundImageQueryLod
	if bindless {
		op = ir.OpBindlessImageQueryLod
	}
	res := t.e.EmitWithFlags(op, info.Pack(), handle, coords)
	// TMML reports the computed and the raw lod in fixed point.
	dest := decode.DestReg(w)
	mask := uint32(decode.Field(w, 31, 4))
	for i := uint32(0); i < 2; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		c := t.e.Emit(ir.OpCompositeExtractF32x4, res, ir.MakeU32(i))
		scaled := t.e.Emit(ir.OpFPMul32, c, ir.MakeF32(256))
		t.e.SetReg(dest, t.e.Emit(ir.OpConvertS32F32, scaled))
		dest++
	}
	return nil
}

func (t *Translator) txd(w uint64) error {
	dim := texDims[decode.Field(w, 28, 3)]
	bindless := decode.Field(w, 54, 1) != 0
	handle := t.texHandle(w, bindless)
	coords := t.sampleCoords(decode.SrcAReg(w), dim)
	info := ir.TextureInstInfo{Type: dim.typ, NumDerivatives: uint8(dim.coords)}

	// Derivatives follow in the B register block: dPdx then dPdy, one pair
	// per coordinate.
	b := decode.SrcBReg(w)
	dx := make([]ir.Value, 0, 3)
	dy := make([]ir.Value, 0, 3)
	for i := uint32(0); i < dim.coords; i++ {
		dx = append(dx, t.e.Emit(ir.OpBitCastF32U32, t.e.GetReg(b+ir.Reg(2*i))))
		dy = append(dy, t.e.Emit(ir.OpBitCastF32U32, t.e.GetReg(b+ir.Reg(2*i+1))))
	}
	op := ir.OpBoundImageGradient
	if bindless {
		op = ir.OpBindlessImageGradient
	}
	res := t.e.EmitWithFlags(op, info.Pack(),
		handle, coords, t.constructF32(dx), t.constructF32(dy), ir.MakeU32(0))
	t.writeSampleResult(w, res, uint32(decode.Field(w, 31, 4)))
	return nil
}

func (t *Translator) txq(w uint64) error {
	bindless := decode.Field(w, 54, 1) != 0
	handle := t.texHandle(w, bindless)
	if query := decode.Field(w, 22, 6); query != 1 {
		return shader.NotImplemented("TXQ query %d", query)
	}
	lod := t.gprA(w)
	op := ir.OpBoundImageQueryDimensions
	if bindless {
		op = ir.OpBindlessImageQueryDimensions
	}
	res := t.e.Emit(op, handle, lod)
	dest := decode.DestReg(w)
	mask := uint32(decode.Field(w, 31, 4))
	for i := uint32(0); i < 4; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		t.e.SetReg(dest, t.e.Emit(ir.OpCompositeExtractU32x4, res, ir.MakeU32(i)))
		dest++
	}
	return nil
}

// Surface (storage image) dimension codes at bits 33..35.
var suDims = [8]texDim{
	{shader.TextureColor1D, 1, false},
	{shader.TextureColorArray1D, 1, true},
	{shader.TextureColor2D, 2, false},
	{shader.TextureColorArray2D, 2, true},
	{shader.TextureColor3D, 3, false},
	{shader.TextureColor3D, 3, false},
	{shader.TextureColor2D, 2, false},
	{shader.TextureColor2D, 2, false},
}

func (t *Translator) surfaceCoords(w uint64, dim texDim) ir.Value {
	comps := make([]ir.Value, 0, 3)
	r := decode.SrcAReg(w)
	for i := uint32(0); i < dim.coords; i++ {
		comps = append(comps, t.e.GetReg(r))
		r++
	}
	if dim.array {
		comps = append(comps, t.e.GetReg(r))
	}
	return t.constructU32(comps)
}

func (t *Translator) suld(w uint64) error {
	dim := suDims[decode.Field(w, 33, 3)]
	bindless := decode.Field(w, 51, 1) != 0
	handle := t.texHandle(w, bindless)
	info := ir.TextureInstInfo{
		Type:   dim.typ,
		Format: shader.ImageFormat(decode.Field(w, 20, 3)),
	}
	op := ir.OpBoundImageRead
	if bindless {
		op = ir.OpBindlessImageRead
	}
	res := t.e.EmitWithFlags(op, info.Pack(), handle, t.surfaceCoords(w, dim))
	dest := decode.DestReg(w)
	for i := uint32(0); i < 4; i++ {
		if decode.Field(w, 31, 4)&(1<<i) == 0 {
			continue
		}
		t.e.SetReg(dest, t.e.Emit(ir.OpCompositeExtractU32x4, res, ir.MakeU32(i)))
		dest++
	}
	return nil
}

func (t *Translator) sust(w uint64) error {
	dim := suDims[decode.Field(w, 33, 3)]
	bindless := decode.Field(w, 51, 1) != 0
	handle := t.texHandle(w, bindless)
	info := ir.TextureInstInfo{
		Type:   dim.typ,
		Format: shader.ImageFormat(decode.Field(w, 20, 3)),
	}
	data := decode.DestReg(w)
	color := t.e.Emit(ir.OpCompositeConstructU32x4,
		t.e.GetReg(data), t.e.GetReg(data+1), t.e.GetReg(data+2), t.e.GetReg(data+3))
	op := ir.OpBoundImageWrite
	if bindless {
		op = ir.OpBindlessImageWrite
	}
	t.e.EmitWithFlags(op, info.Pack(), handle, t.surfaceCoords(w, dim), color)
	return nil
}

func (t *Translator) suatom(w uint64) error {
	dim := suDims[decode.Field(w, 33, 3)]
	handle := ir.MakeU32(uint32(decode.Field(w, 36, 13)))
	info := ir.TextureInstInfo{Type: dim.typ}
	data := t.e.GetReg(decode.SrcBReg(w))

	var op ir.Opcode
	switch opc := decode.Field(w, 29, 4); opc {
	case 0:
		op = ir.OpBoundImageAtomicIAdd32
	case 1:
		op = ir.OpBoundImageAtomicSMin32
	case 2:
		op = ir.OpBoundImageAtomicUMin32
	case 3:
		op = ir.OpBoundImageAtomicSMax32
	case 4:
		op = ir.OpBoundImageAtomicUMax32
	case 5:
		op = ir.OpBoundImageAtomicInc32
	case 6:
		op = ir.OpBoundImageAtomicDec32
	case 7:
		op = ir.OpBoundImageAtomicAnd32
	case 8:
		op = ir.OpBoundImageAtomicOr32
	case 9:
		op = ir.OpBoundImageAtomicXor32
	case 10:
		op = ir.OpBoundImageAtomicExchange32
	default:
		return shader.NotImplemented("SUATOM operation %d", opc)
	}
	res := t.e.EmitWithFlags(op, info.Pack(), handle, t.surfaceCoords(w, dim), data)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}
