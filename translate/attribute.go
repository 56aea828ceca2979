package translate

import (
	"github.com/gogpu/maxwell/decode"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// ALD and AST move up to four consecutive attribute words between the
// attribute space and the register file. The byte offset at bits 20..29
// addresses the attribute memory map; a live address register makes the
// access indexed.

func aldCount(w uint64) uint32 {
	switch decode.Field(w, 47, 2) {
	case 1:
		return 2
	case 2:
		return 3
	case 3:
		return 4
	default:
		return 1
	}
}

// vertexOperand is the per-vertex selector used by geometry and
// tessellation stages. Other stages read it as zero.
func (t *Translator) vertexOperand(w uint64) ir.Value {
	r := decode.SrcCReg(w)
	if r == ir.RegRZ {
		return ir.MakeU32(0)
	}
	return t.e.GetReg(r)
}

func (t *Translator) ald(w uint64) error {
	offset := uint32(decode.Field(w, 20, 10))
	if offset%4 != 0 {
		return shader.InvalidArgument("unaligned attribute offset %#x", offset)
	}
	count := aldCount(w)
	dest := decode.DestReg(w)
	vertex := t.vertexOperand(w)
	patch := decode.Field(w, 31, 1) != 0
	indexed := decode.SrcAReg(w) != ir.RegRZ

	for i := uint32(0); i < count; i++ {
		var v ir.Value
		switch {
		case patch:
			v = t.e.Emit(ir.OpBitCastU32F32,
				t.e.Emit(ir.OpGetPatch, ir.MakePatch(ir.GenericPatch(offset/4+i))))
		case indexed:
			addr := t.e.IAdd32(t.e.GetReg(decode.SrcAReg(w)), ir.MakeU32(offset+i*4))
			v = t.e.Emit(ir.OpBitCastU32F32,
				t.e.Emit(ir.OpGetAttributeIndexed, addr, vertex))
		default:
			attr := ir.Attribute(offset/4 + i)
			v = t.e.Emit(ir.OpBitCastU32F32,
				t.e.Emit(ir.OpGetAttribute, ir.MakeAttribute(attr), vertex))
		}
		t.e.SetReg(dest+ir.Reg(i), v)
	}
	return nil
}

func (t *Translator) ast(w uint64) error {
	offset := uint32(decode.Field(w, 20, 10))
	if offset%4 != 0 {
		return shader.InvalidArgument("unaligned attribute offset %#x", offset)
	}
	count := aldCount(w)
	data := decode.DestReg(w)
	vertex := t.vertexOperand(w)
	patch := decode.Field(w, 31, 1) != 0
	indexed := decode.SrcAReg(w) != ir.RegRZ

	for i := uint32(0); i < count; i++ {
		v := t.e.Emit(ir.OpBitCastF32U32, t.e.GetReg(data+ir.Reg(i)))
		switch {
		case patch:
			t.e.Emit(ir.OpSetPatch, ir.MakePatch(ir.GenericPatch(offset/4+i)), v)
		case indexed:
			addr := t.e.IAdd32(t.e.GetReg(decode.SrcAReg(w)), ir.MakeU32(offset+i*4))
			t.e.Emit(ir.OpSetAttributeIndexed, addr, v, vertex)
		default:
			attr := ir.Attribute(offset/4 + i)
			t.e.Emit(ir.OpSetAttribute, ir.MakeAttribute(attr), v, vertex)
		}
	}
	return nil
}

// IPA interpolation modes at bits 54..55.
const (
	ipaPass = iota
	ipaMultiply
	ipaConstant
	ipaSC
)

func (t *Translator) ipa(w uint64) error {
	offset := uint32(decode.Field(w, 28, 10))
	if offset%4 != 0 {
		return shader.InvalidArgument("unaligned attribute offset %#x", offset)
	}
	attr := ir.Attribute(offset / 4)
	v := t.e.Emit(ir.OpGetAttribute, ir.MakeAttribute(attr), ir.MakeU32(0))
	if decode.Field(w, 54, 2) == ipaMultiply {
		// Perspective interpolation divides by W ahead of time; the
		// multiply restores the attribute value.
		v = t.e.Emit(ir.OpFPMul32, v, t.gprBF32(w))
	}
	if decode.Field(w, 51, 1) != 0 {
		v = t.e.Emit(ir.OpFPSaturate32, v)
	}
	t.setRegF32(decode.DestReg(w), v)
	return nil
}

func (t *Translator) out(w uint64) error {
	// OUT threads a stream handle through Ra and writes it to Rd. Only
	// stream zero is generated here.
	stream := ir.MakeU32(0)
	switch decode.Field(w, 39, 2) {
	case 1:
		t.e.Emit(ir.OpEmitVertex, stream)
	case 2:
		t.e.Emit(ir.OpEndPrimitive, stream)
	case 3:
		t.e.Emit(ir.OpEmitVertex, stream)
		t.e.Emit(ir.OpEndPrimitive, stream)
	default:
		return shader.InvalidArgument("OUT with no emit or cut")
	}
	t.e.SetReg(decode.DestReg(w), t.gprA(w))
	return nil
}
