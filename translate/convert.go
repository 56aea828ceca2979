package translate

import (
	"github.com/gogpu/maxwell/decode"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// The conversion family shares a width encoding: 0 is 8 bits, 1 is 16,
// 2 is 32, 3 is 64.

func convWidth(code uint64) uint32 { return 8 << code }

// floatOperand loads the conversion source as a float of the given width.
func (t *Translator) floatOperand(op decode.Op, w uint64, width uint32) (ir.Value, error) {
	reg := op == decode.F2FR || op == decode.F2IR
	cbuf := op == decode.F2FC || op == decode.F2IC
	switch width {
	case 16:
		var raw ir.Value
		switch {
		case reg:
			raw = t.gprB(w)
		case cbuf:
			raw = t.cbufU32(w)
		default:
			raw = ir.MakeU32(decode.Imm20(w) & 0xFFFF)
		}
		v := t.e.Emit(ir.OpUnpackFloat2x16, raw)
		return t.e.Emit(ir.OpCompositeExtractF16x2, v, ir.MakeU32(0)), nil
	case 32:
		switch {
		case reg:
			return t.gprBF32(w), nil
		case cbuf:
			return t.cbufF32(w), nil
		default:
			return t.immF32(w), nil
		}
	case 64:
		switch {
		case reg:
			return t.gprF64(decode.SrcBReg(w)), nil
		case cbuf:
			pair := t.e.GetCbuf(ir.OpGetCbufU32x2,
				ir.MakeU32(decode.CbufIndex(w)), ir.MakeU32(decode.CbufOffset(w)))
			return t.e.Emit(ir.OpPackDouble2x32, pair), nil
		}
	}
	return ir.Value{}, shader.NotImplemented("float conversion source width %d", width)
}

// roundOp picks the explicit rounding operation encoded by F2I and the
// integer rounding mode of same width F2F.
func roundOp(code uint64, width uint32) (ir.Opcode, error) {
	type key struct {
		code  uint64
		width uint32
	}
	ops := map[key]ir.Opcode{
		{0, 16}: ir.OpFPRoundEven16, {0, 32}: ir.OpFPRoundEven32, {0, 64}: ir.OpFPRoundEven64,
		{1, 16}: ir.OpFPFloor16, {1, 32}: ir.OpFPFloor32, {1, 64}: ir.OpFPFloor64,
		{2, 16}: ir.OpFPCeil16, {2, 32}: ir.OpFPCeil32, {2, 64}: ir.OpFPCeil64,
		{3, 16}: ir.OpFPTrunc16, {3, 32}: ir.OpFPTrunc32, {3, 64}: ir.OpFPTrunc64,
	}
	op, ok := ops[key{code, width}]
	if !ok {
		return ir.OpVoid, shader.InvalidArgument("rounding %d for width %d", code, width)
	}
	return op, nil
}

func (t *Translator) convMod(v ir.Value, width uint32, abs, neg bool) ir.Value {
	absOp := map[uint32]ir.Opcode{16: ir.OpFPAbs16, 32: ir.OpFPAbs32, 64: ir.OpFPAbs64}
	negOp := map[uint32]ir.Opcode{16: ir.OpFPNeg16, 32: ir.OpFPNeg32, 64: ir.OpFPNeg64}
	if abs {
		v = t.e.Emit(absOp[width], v)
	}
	if neg {
		v = t.e.Emit(negOp[width], v)
	}
	return v
}

// writeFloat stores a float result of the given width into the register
// file.
func (t *Translator) writeFloat(r ir.Reg, v ir.Value, width uint32) error {
	switch width {
	case 16:
		packed := t.e.Emit(ir.OpPackFloat2x16,
			t.e.Emit(ir.OpCompositeConstructF16x2, v, ir.MakeF16(0)))
		t.e.SetReg(r, packed)
		return nil
	case 32:
		t.setRegF32(r, v)
		return nil
	case 64:
		t.setRegF64(r, v)
		return nil
	}
	return shader.InvalidArgument("float destination width %d", width)
}

func (t *Translator) f2f(op decode.Op, w uint64) error {
	srcW := convWidth(decode.Field(w, 10, 2))
	dstW := convWidth(decode.Field(w, 8, 2))
	if srcW == 8 || dstW == 8 {
		return shader.InvalidArgument("8-bit float conversion")
	}
	src, err := t.floatOperand(op, w, srcW)
	if err != nil {
		return err
	}
	src = t.convMod(src, srcW, decode.Field(w, 49, 1) != 0, decode.Field(w, 45, 1) != 0)

	var res ir.Value
	if srcW == dstW {
		// Same width F2F applies the integer rounding mode in place.
		rop, err := roundOp(decode.Field(w, 39, 2), srcW)
		if err != nil {
			return err
		}
		res = t.e.Emit(rop, src)
	} else {
		convert := map[[2]uint32]ir.Opcode{
			{16, 32}: ir.OpConvertF32F16, {16, 64}: ir.OpConvertF64F16,
			{32, 16}: ir.OpConvertF16F32, {32, 64}: ir.OpConvertF64F32,
			{64, 16}: ir.OpConvertF16F64, {64, 32}: ir.OpConvertF32F64,
		}
		res = t.e.Emit(convert[[2]uint32{srcW, dstW}], src)
	}
	if decode.Field(w, 50, 1) != 0 {
		satOp := map[uint32]ir.Opcode{16: ir.OpFPSaturate16, 32: ir.OpFPSaturate32, 64: ir.OpFPSaturate64}
		res = t.e.Emit(satOp[dstW], res)
	}
	return t.writeFloat(decode.DestReg(w), res, dstW)
}

func (t *Translator) f2i(op decode.Op, w uint64) error {
	srcW := convWidth(decode.Field(w, 10, 2))
	dstW := convWidth(decode.Field(w, 8, 2))
	signed := decode.Field(w, 12, 1) != 0
	if srcW == 8 {
		return shader.InvalidArgument("8-bit float conversion")
	}
	src, err := t.floatOperand(op, w, srcW)
	if err != nil {
		return err
	}
	src = t.convMod(src, srcW, decode.Field(w, 49, 1) != 0, decode.Field(w, 45, 1) != 0)
	rop, err := roundOp(decode.Field(w, 39, 2), srcW)
	if err != nil {
		return err
	}
	src = t.e.Emit(rop, src)

	type key struct {
		signed bool
		dst    uint32
		src    uint32
	}
	convert := map[key]ir.Opcode{
		{true, 8, 16}: ir.OpConvertS8F16, {true, 8, 32}: ir.OpConvertS8F32, {true, 8, 64}: ir.OpConvertS8F64,
		{true, 16, 16}: ir.OpConvertS16F16, {true, 16, 32}: ir.OpConvertS16F32, {true, 16, 64}: ir.OpConvertS16F64,
		{true, 32, 16}: ir.OpConvertS32F16, {true, 32, 32}: ir.OpConvertS32F32, {true, 32, 64}: ir.OpConvertS32F64,
		{true, 64, 16}: ir.OpConvertS64F16, {true, 64, 32}: ir.OpConvertS64F32, {true, 64, 64}: ir.OpConvertS64F64,
		{false, 8, 16}: ir.OpConvertU8F16, {false, 8, 32}: ir.OpConvertU8F32, {false, 8, 64}: ir.OpConvertU8F64,
		{false, 16, 16}: ir.OpConvertU16F16, {false, 16, 32}: ir.OpConvertU16F32, {false, 16, 64}: ir.OpConvertU16F64,
		{false, 32, 16}: ir.OpConvertU32F16, {false, 32, 32}: ir.OpConvertU32F32, {false, 32, 64}: ir.OpConvertU32F64,
		{false, 64, 16}: ir.OpConvertU64F16, {false, 64, 32}: ir.OpConvertU64F32, {false, 64, 64}: ir.OpConvertU64F64,
	}
	res := t.e.Emit(convert[key{signed, dstW, srcW}], src)
	if dstW == 64 {
		pair := t.e.Emit(ir.OpUnpackUint2x32, res)
		dest := decode.DestReg(w)
		t.e.SetReg(dest, t.e.Emit(ir.OpCompositeExtractU32x2, pair, ir.MakeU32(0)))
		t.e.SetReg(dest+1, t.e.Emit(ir.OpCompositeExtractU32x2, pair, ir.MakeU32(1)))
		return nil
	}
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

// intOperand loads the conversion source as an integer, extended from the
// declared width.
func (t *Translator) intOperand(op decode.Op, w uint64, width uint32, signed bool) (ir.Value, error) {
	var raw ir.Value
	switch op {
	case decode.I2FR, decode.I2IR:
		raw = t.gprB(w)
	case decode.I2FC, decode.I2IC:
		raw = t.cbufU32(w)
	default:
		raw = ir.MakeU32(decode.Imm20(w))
	}
	switch width {
	case 8, 16:
		if signed {
			return t.e.BitFieldSExtract(raw, ir.MakeU32(0), ir.MakeU32(width)), nil
		}
		return t.e.BitFieldUExtract(raw, ir.MakeU32(0), ir.MakeU32(width)), nil
	case 32:
		return raw, nil
	case 64:
		if op != decode.I2FR && op != decode.I2IR {
			return ir.Value{}, shader.NotImplemented("64-bit conversion source form %v", op)
		}
		return t.e.PackUint2x32(t.gprB(w), t.e.GetReg(decode.SrcBReg(w)+1)), nil
	}
	return ir.Value{}, shader.InvalidArgument("integer source width %d", width)
}

func (t *Translator) i2f(op decode.Op, w uint64) error {
	srcW := convWidth(decode.Field(w, 10, 2))
	dstW := convWidth(decode.Field(w, 8, 2))
	signed := decode.Field(w, 13, 1) != 0
	src, err := t.intOperand(op, w, srcW, signed)
	if err != nil {
		return err
	}
	if decode.Field(w, 49, 1) != 0 {
		src = t.e.Emit(ir.OpIAbs32, src)
	}
	if decode.Field(w, 45, 1) != 0 {
		src = t.e.Emit(ir.OpINeg32, src)
	}

	wide := srcW == 64
	type key struct {
		signed bool
		dst    uint32
		wide   bool
	}
	convert := map[key]ir.Opcode{
		{true, 16, false}: ir.OpConvertF16S32, {true, 16, true}: ir.OpConvertF16S64,
		{true, 32, false}: ir.OpConvertF32S32, {true, 32, true}: ir.OpConvertF32S64,
		{true, 64, false}: ir.OpConvertF64S32, {true, 64, true}: ir.OpConvertF64S64,
		{false, 16, false}: ir.OpConvertF16U32, {false, 16, true}: ir.OpConvertF16U64,
		{false, 32, false}: ir.OpConvertF32U32, {false, 32, true}: ir.OpConvertF32U64,
		{false, 64, false}: ir.OpConvertF64U32, {false, 64, true}: ir.OpConvertF64U64,
	}
	cop, ok := convert[key{signed, dstW, wide}]
	if !ok {
		return shader.InvalidArgument("I2F destination width %d", dstW)
	}
	return t.writeFloat(decode.DestReg(w), t.e.Emit(cop, src), dstW)
}

func (t *Translator) i2i(op decode.Op, w uint64) error {
	srcW := convWidth(decode.Field(w, 10, 2))
	dstW := convWidth(decode.Field(w, 8, 2))
	srcSigned := decode.Field(w, 13, 1) != 0
	dstSigned := decode.Field(w, 12, 1) != 0
	if srcW == 64 || dstW == 64 {
		return shader.NotImplemented("64-bit I2I")
	}
	src, err := t.intOperand(op, w, srcW, srcSigned)
	if err != nil {
		return err
	}
	if decode.Field(w, 49, 1) != 0 {
		src = t.e.Emit(ir.OpIAbs32, src)
	}
	if decode.Field(w, 45, 1) != 0 {
		src = t.e.Emit(ir.OpINeg32, src)
	}
	res := src
	if decode.Field(w, 50, 1) != 0 && dstW < 32 {
		// Saturate to the destination range.
		if dstSigned {
			lo := ir.MakeU32(^uint32(0) << (dstW - 1))
			hi := ir.MakeU32(1<<(dstW-1) - 1)
			res = t.e.Emit(ir.OpSClamp32, res, lo, hi)
		} else {
			res = t.e.Emit(ir.OpUClamp32, res, ir.MakeU32(0), ir.MakeU32(1<<dstW-1))
		}
	} else if dstW < 32 {
		if dstSigned {
			res = t.e.BitFieldSExtract(res, ir.MakeU32(0), ir.MakeU32(dstW))
		} else {
			res = t.e.BitFieldUExtract(res, ir.MakeU32(0), ir.MakeU32(dstW))
		}
	}
	t.writeCC(w, res)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}
