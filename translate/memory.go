package translate

import (
	"github.com/gogpu/maxwell/decode"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// Memory access size codes at bits 48..50 of the load and store forms.
const (
	sizeU8 = iota
	sizeS8
	sizeU16
	sizeS16
	sizeB32
	sizeB64
	sizeB128
)

// globalAddress forms the 64-bit address of LDG, STG, and ATOM: the Ra
// register pair plus a signed immediate offset.
func (t *Translator) globalAddress(w uint64, offset int64) ir.Value {
	a := decode.SrcAReg(w)
	addr := t.e.PackUint2x32(t.e.GetReg(a), t.e.GetReg(a+1))
	if offset != 0 {
		addr = t.e.Emit(ir.OpIAdd64, addr, ir.MakeU64(uint64(offset)))
	}
	return addr
}

func (t *Translator) ldg(w uint64) error {
	addr := t.globalAddress(w, decode.SignedField(w, 20, 24))
	dest := decode.DestReg(w)
	switch decode.Field(w, 48, 3) {
	case sizeU8:
		t.e.SetReg(dest, t.e.Emit(ir.OpLoadGlobalU8, addr))
	case sizeS8:
		t.e.SetReg(dest, t.e.Emit(ir.OpLoadGlobalS8, addr))
	case sizeU16:
		t.e.SetReg(dest, t.e.Emit(ir.OpLoadGlobalU16, addr))
	case sizeS16:
		t.e.SetReg(dest, t.e.Emit(ir.OpLoadGlobalS16, addr))
	case sizeB32:
		t.e.SetReg(dest, t.e.Emit(ir.OpLoadGlobal32, addr))
	case sizeB64:
		v := t.e.Emit(ir.OpLoadGlobal64, addr)
		for i := uint32(0); i < 2; i++ {
			t.e.SetReg(dest+ir.Reg(i), t.e.Emit(ir.OpCompositeExtractU32x2, v, ir.MakeU32(i)))
		}
	case sizeB128:
		v := t.e.Emit(ir.OpLoadGlobal128, addr)
		for i := uint32(0); i < 4; i++ {
			t.e.SetReg(dest+ir.Reg(i), t.e.Emit(ir.OpCompositeExtractU32x4, v, ir.MakeU32(i)))
		}
	default:
		return shader.InvalidArgument("LDG size %d", decode.Field(w, 48, 3))
	}
	return nil
}

func (t *Translator) stg(w uint64) error {
	addr := t.globalAddress(w, decode.SignedField(w, 20, 24))
	data := decode.DestReg(w)
	switch decode.Field(w, 48, 3) {
	case sizeU8:
		t.e.Emit(ir.OpWriteGlobalU8, addr, t.e.GetReg(data))
	case sizeS8:
		t.e.Emit(ir.OpWriteGlobalS8, addr, t.e.GetReg(data))
	case sizeU16:
		t.e.Emit(ir.OpWriteGlobalU16, addr, t.e.GetReg(data))
	case sizeS16:
		t.e.Emit(ir.OpWriteGlobalS16, addr, t.e.GetReg(data))
	case sizeB32:
		t.e.Emit(ir.OpWriteGlobal32, addr, t.e.GetReg(data))
	case sizeB64:
		v := t.e.Emit(ir.OpCompositeConstructU32x2, t.e.GetReg(data), t.e.GetReg(data+1))
		t.e.Emit(ir.OpWriteGlobal64, addr, v)
	case sizeB128:
		v := t.e.Emit(ir.OpCompositeConstructU32x4,
			t.e.GetReg(data), t.e.GetReg(data+1), t.e.GetReg(data+2), t.e.GetReg(data+3))
		t.e.Emit(ir.OpWriteGlobal128, addr, v)
	default:
		return shader.InvalidArgument("STG size %d", decode.Field(w, 48, 3))
	}
	return nil
}

// localAddress forms the byte address of the local and shared forms.
func (t *Translator) localAddress(w uint64) ir.Value {
	offset := decode.SignedField(w, 20, 24)
	base := t.e.GetReg(decode.SrcAReg(w))
	if offset == 0 {
		return base
	}
	return t.e.IAdd32(base, ir.MakeU32(uint32(offset)))
}

// subWord extracts an 8 or 16 bit quantity from the word holding it.
func (t *Translator) subWord(word, addr ir.Value, bits uint32, signed bool) ir.Value {
	shift := t.e.IMul32(t.e.Emit(ir.OpBitwiseAnd32, addr, ir.MakeU32(3)), ir.MakeU32(8))
	if signed {
		return t.e.BitFieldSExtract(word, shift, ir.MakeU32(bits))
	}
	return t.e.BitFieldUExtract(word, shift, ir.MakeU32(bits))
}

func (t *Translator) ldl(w uint64) error {
	addr := t.localAddress(w)
	dest := decode.DestReg(w)
	word := func(a ir.Value) ir.Value { return t.e.Emit(ir.OpLoadLocal, a) }
	aligned := t.e.Emit(ir.OpBitwiseAnd32, addr, ir.MakeU32(^uint32(3)))
	switch decode.Field(w, 48, 3) {
	case sizeU8:
		t.e.SetReg(dest, t.subWord(word(aligned), addr, 8, false))
	case sizeS8:
		t.e.SetReg(dest, t.subWord(word(aligned), addr, 8, true))
	case sizeU16:
		t.e.SetReg(dest, t.subWord(word(aligned), addr, 16, false))
	case sizeS16:
		t.e.SetReg(dest, t.subWord(word(aligned), addr, 16, true))
	case sizeB32:
		t.e.SetReg(dest, word(addr))
	case sizeB64:
		for i := uint32(0); i < 2; i++ {
			t.e.SetReg(dest+ir.Reg(i), word(t.e.IAdd32(addr, ir.MakeU32(i*4))))
		}
	case sizeB128:
		for i := uint32(0); i < 4; i++ {
			t.e.SetReg(dest+ir.Reg(i), word(t.e.IAdd32(addr, ir.MakeU32(i*4))))
		}
	default:
		return shader.InvalidArgument("LDL size %d", decode.Field(w, 48, 3))
	}
	return nil
}

func (t *Translator) stl(w uint64) error {
	addr := t.localAddress(w)
	data := decode.DestReg(w)
	switch decode.Field(w, 48, 3) {
	case sizeB32:
		t.e.Emit(ir.OpWriteLocal, addr, t.e.GetReg(data))
	case sizeB64:
		for i := uint32(0); i < 2; i++ {
			t.e.Emit(ir.OpWriteLocal, t.e.IAdd32(addr, ir.MakeU32(i*4)), t.e.GetReg(data+ir.Reg(i)))
		}
	case sizeB128:
		for i := uint32(0); i < 4; i++ {
			t.e.Emit(ir.OpWriteLocal, t.e.IAdd32(addr, ir.MakeU32(i*4)), t.e.GetReg(data+ir.Reg(i)))
		}
	default:
		// Sub-word local stores need a read-modify-write cycle.
		return shader.NotImplemented("STL size %d", decode.Field(w, 48, 3))
	}
	return nil
}

func (t *Translator) lds(w uint64) error {
	addr := t.localAddress(w)
	dest := decode.DestReg(w)
	switch decode.Field(w, 48, 3) {
	case sizeU8:
		t.e.SetReg(dest, t.e.Emit(ir.OpLoadSharedU8, addr))
	case sizeS8:
		t.e.SetReg(dest, t.e.Emit(ir.OpLoadSharedS8, addr))
	case sizeU16:
		t.e.SetReg(dest, t.e.Emit(ir.OpLoadSharedU16, addr))
	case sizeS16:
		t.e.SetReg(dest, t.e.Emit(ir.OpLoadSharedS16, addr))
	case sizeB32:
		t.e.SetReg(dest, t.e.Emit(ir.OpLoadSharedU32, addr))
	case sizeB64:
		v := t.e.Emit(ir.OpLoadSharedU64, addr)
		for i := uint32(0); i < 2; i++ {
			t.e.SetReg(dest+ir.Reg(i), t.e.Emit(ir.OpCompositeExtractU32x2, v, ir.MakeU32(i)))
		}
	case sizeB128:
		v := t.e.Emit(ir.OpLoadSharedU128, addr)
		for i := uint32(0); i < 4; i++ {
			t.e.SetReg(dest+ir.Reg(i), t.e.Emit(ir.OpCompositeExtractU32x4, v, ir.MakeU32(i)))
		}
	default:
		return shader.InvalidArgument("LDS size %d", decode.Field(w, 48, 3))
	}
	return nil
}

func (t *Translator) sts(w uint64) error {
	addr := t.localAddress(w)
	data := decode.DestReg(w)
	switch decode.Field(w, 48, 3) {
	case sizeU8, sizeS8:
		t.e.Emit(ir.OpWriteSharedU8, addr, t.e.GetReg(data))
	case sizeU16, sizeS16:
		t.e.Emit(ir.OpWriteSharedU16, addr, t.e.GetReg(data))
	case sizeB32:
		t.e.Emit(ir.OpWriteSharedU32, addr, t.e.GetReg(data))
	case sizeB64:
		v := t.e.Emit(ir.OpCompositeConstructU32x2, t.e.GetReg(data), t.e.GetReg(data+1))
		t.e.Emit(ir.OpWriteSharedU64, addr, v)
	case sizeB128:
		v := t.e.Emit(ir.OpCompositeConstructU32x4,
			t.e.GetReg(data), t.e.GetReg(data+1), t.e.GetReg(data+2), t.e.GetReg(data+3))
		t.e.Emit(ir.OpWriteSharedU128, addr, v)
	default:
		return shader.InvalidArgument("STS size %d", decode.Field(w, 48, 3))
	}
	return nil
}

func (t *Translator) ldc(w uint64) error {
	if mode := decode.Field(w, 44, 2); mode != 0 {
		return shader.NotImplemented("LDC mode %d", mode)
	}
	index := ir.MakeU32(decode.CbufIndex(w))
	var offset ir.Value = ir.MakeU32(decode.CbufOffset(w))
	if a := decode.SrcAReg(w); a != ir.RegRZ {
		offset = t.e.IAdd32(t.e.GetReg(a), offset)
	}
	dest := decode.DestReg(w)
	switch size := decode.Field(w, 48, 2); size {
	case 0:
		t.e.SetReg(dest, t.e.GetCbuf(ir.OpGetCbufU8, index, offset))
	case 1:
		t.e.SetReg(dest, t.e.GetCbuf(ir.OpGetCbufU16, index, offset))
	case 2:
		t.e.SetReg(dest, t.e.GetCbuf(ir.OpGetCbufU32, index, offset))
	default:
		v := t.e.GetCbuf(ir.OpGetCbufU32x2, index, offset)
		for i := uint32(0); i < 2; i++ {
			t.e.SetReg(dest+ir.Reg(i), t.e.Emit(ir.OpCompositeExtractU32x2, v, ir.MakeU32(i)))
		}
	}
	return nil
}

// Atomic operation codes at bits 52..55.
const (
	atomAdd = iota
	atomMin
	atomMax
	atomInc
	atomDec
	atomAnd
	atomOr
	atomXor
	atomExch
)

// Atomic operand types at bits 49..51.
const (
	atomU32 = iota
	atomS32
	atomU64
	atomF32
	atomF16x2
	atomS64
)

func (t *Translator) atom(w uint64) error {
	addr := t.globalAddress(w, decode.SignedField(w, 28, 20))
	data32 := t.e.GetReg(decode.SrcBReg(w))
	typ := decode.Field(w, 49, 3)
	opc := decode.Field(w, 52, 4)
	dest := decode.DestReg(w)

	if typ == atomU64 || typ == atomS64 {
		pair := t.e.Emit(ir.OpCompositeConstructU32x2,
			data32, t.e.GetReg(decode.SrcBReg(w)+1))
		var op ir.Opcode
		switch opc {
		case atomAdd:
			op = ir.OpGlobalAtomicIAdd64
		case atomMin:
			op = ir.OpGlobalAtomicUMin64
			if typ == atomS64 {
				op = ir.OpGlobalAtomicSMin64
			}
		case atomMax:
			op = ir.OpGlobalAtomicUMax64
			if typ == atomS64 {
				op = ir.OpGlobalAtomicSMax64
			}
		case atomAnd:
			op = ir.OpGlobalAtomicAnd64
		case atomOr:
			op = ir.OpGlobalAtomicOr64
		case atomXor:
			op = ir.OpGlobalAtomicXor64
		case atomExch:
			op = ir.OpGlobalAtomicExchange64
		default:
			return shader.NotImplemented("64-bit atomic %d", opc)
		}
		v := t.e.Emit(op, addr, pair)
		for i := uint32(0); i < 2; i++ {
			t.e.SetReg(dest+ir.Reg(i), t.e.Emit(ir.OpCompositeExtractU32x2, v, ir.MakeU32(i)))
		}
		return nil
	}

	if typ == atomF32 {
		if opc != atomAdd {
			return shader.NotImplemented("float atomic %d", opc)
		}
		f := t.e.Emit(ir.OpBitCastF32U32, data32)
		old := t.e.Emit(ir.OpGlobalAtomicAddF32, addr, f)
		t.e.SetReg(dest, t.e.Emit(ir.OpBitCastU32F32, old))
		return nil
	}
	if typ == atomF16x2 {
		h := t.e.Emit(ir.OpUnpackFloat2x16, data32)
		var op ir.Opcode
		switch opc {
		case atomAdd:
			op = ir.OpGlobalAtomicAddF16x2
		case atomMin:
			op = ir.OpGlobalAtomicMinF16x2
		case atomMax:
			op = ir.OpGlobalAtomicMaxF16x2
		default:
			return shader.NotImplemented("f16x2 atomic %d", opc)
		}
		old := t.e.Emit(op, addr, h)
		t.e.SetReg(dest, t.e.Emit(ir.OpPackFloat2x16, old))
		return nil
	}

	signed := typ == atomS32
	var op ir.Opcode
	switch opc {
	case atomAdd:
		op = ir.OpGlobalAtomicIAdd32
	case atomMin:
		op = ir.OpGlobalAtomicUMin32
		if signed {
			op = ir.OpGlobalAtomicSMin32
		}
	case atomMax:
		op = ir.OpGlobalAtomicUMax32
		if signed {
			op = ir.OpGlobalAtomicSMax32
		}
	case atomInc:
		op = ir.OpGlobalAtomicInc32
	case atomDec:
		op = ir.OpGlobalAtomicDec32
	case atomAnd:
		op = ir.OpGlobalAtomicAnd32
	case atomOr:
		op = ir.OpGlobalAtomicOr32
	case atomXor:
		op = ir.OpGlobalAtomicXor32
	case atomExch:
		op = ir.OpGlobalAtomicExchange32
	default:
		// CAS carries its compare value in a third operand slot.
		return shader.NotImplemented("atomic operation %d", opc)
	}
	t.e.SetReg(dest, t.e.Emit(op, addr, data32))
	return nil
}

func (t *Translator) atoms(w uint64) error {
	offset := uint32(decode.Field(w, 30, 18)) << 2
	addr := t.e.GetReg(decode.SrcAReg(w))
	if offset != 0 {
		addr = t.e.IAdd32(addr, ir.MakeU32(offset))
	}
	data := t.e.GetReg(decode.SrcBReg(w))
	typ := decode.Field(w, 28, 2)
	opc := decode.Field(w, 52, 4)
	dest := decode.DestReg(w)

	if typ >= 2 {
		if opc != atomExch {
			return shader.NotImplemented("64-bit shared atomic %d", opc)
		}
		pair := t.e.Emit(ir.OpCompositeConstructU32x2, data, t.e.GetReg(decode.SrcBReg(w)+1))
		v := t.e.Emit(ir.OpSharedAtomicExchange64, addr, pair)
		for i := uint32(0); i < 2; i++ {
			t.e.SetReg(dest+ir.Reg(i), t.e.Emit(ir.OpCompositeExtractU32x2, v, ir.MakeU32(i)))
		}
		return nil
	}

	signed := typ == 1
	var op ir.Opcode
	switch opc {
	case atomAdd:
		op = ir.OpSharedAtomicIAdd32
	case atomMin:
		op = ir.OpSharedAtomicUMin32
		if signed {
			op = ir.OpSharedAtomicSMin32
		}
	case atomMax:
		op = ir.OpSharedAtomicUMax32
		if signed {
			op = ir.OpSharedAtomicSMax32
		}
	case atomInc:
		op = ir.OpSharedAtomicInc32
	case atomDec:
		op = ir.OpSharedAtomicDec32
	case atomAnd:
		op = ir.OpSharedAtomicAnd32
	case atomOr:
		op = ir.OpSharedAtomicOr32
	case atomXor:
		op = ir.OpSharedAtomicXor32
	case atomExch:
		op = ir.OpSharedAtomicExchange32
	default:
		return shader.NotImplemented("shared atomic %d", opc)
	}
	t.e.SetReg(dest, t.e.Emit(op, addr, data))
	return nil
}
