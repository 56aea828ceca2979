// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/maxwell/ir"
)

func (w *writer) emitMemory(inst *ir.Inst) bool {
	a := func(n int) string { return w.val(inst.Arg(n)) }

	switch inst.Opcode() {
	case ir.OpGetCbufU8:
		w.write(inst, "bitfieldExtract(%s, %s, 8)",
			w.cbufU32(inst), w.byteShift(inst.Arg(1)))
	case ir.OpGetCbufS8:
		w.write(inst, "uint(bitfieldExtract(int(%s), %s, 8))",
			w.cbufU32(inst), w.byteShift(inst.Arg(1)))
	case ir.OpGetCbufU16:
		w.write(inst, "bitfieldExtract(%s, %s, 16)",
			w.cbufU32(inst), w.halfShift(inst.Arg(1)))
	case ir.OpGetCbufS16:
		w.write(inst, "uint(bitfieldExtract(int(%s), %s, 16))",
			w.cbufU32(inst), w.halfShift(inst.Arg(1)))
	case ir.OpGetCbufU32:
		w.write(inst, "%s", w.cbufU32(inst))
	case ir.OpGetCbufF32:
		w.write(inst, "%s", w.cbufWord(inst, 0))
	case ir.OpGetCbufU32x2:
		w.write(inst, "uvec2(ftou(%s), ftou(%s))",
			w.cbufWord(inst, 0), w.cbufWord(inst, 4))

	case ir.OpLoadLocal:
		w.write(inst, "lmem[%s >> 2u]", a(0))
	case ir.OpWriteLocal:
		w.line("lmem[%s >> 2u] = %s;", a(0), a(1))

	case ir.OpLoadSharedU8:
		w.write(inst, "bitfieldExtract(smem[%s >> 2u], int((%s & 3u) * 8u), 8)", a(0), a(0))
	case ir.OpLoadSharedS8:
		w.write(inst, "uint(bitfieldExtract(int(smem[%s >> 2u]), int((%s & 3u) * 8u), 8))", a(0), a(0))
	case ir.OpLoadSharedU16:
		w.write(inst, "bitfieldExtract(smem[%s >> 2u], int((%s & 2u) * 8u), 16)", a(0), a(0))
	case ir.OpLoadSharedS16:
		w.write(inst, "uint(bitfieldExtract(int(smem[%s >> 2u]), int((%s & 2u) * 8u), 16))", a(0), a(0))
	case ir.OpLoadSharedU32:
		w.write(inst, "smem[%s >> 2u]", a(0))
	case ir.OpLoadSharedU64:
		w.write(inst, "uvec2(smem[%s >> 2u], smem[(%s >> 2u) + 1u])", a(0), a(0))
	case ir.OpLoadSharedU128:
		w.write(inst, "uvec4(smem[%s >> 2u], smem[(%s >> 2u) + 1u], smem[(%s >> 2u) + 2u], smem[(%s >> 2u) + 3u])",
			a(0), a(0), a(0), a(0))
	case ir.OpWriteSharedU8:
		w.line("smem[%s >> 2u] = bitfieldInsert(smem[%s >> 2u], %s, int((%s & 3u) * 8u), 8);",
			a(0), a(0), a(1), a(0))
	case ir.OpWriteSharedU16:
		w.line("smem[%s >> 2u] = bitfieldInsert(smem[%s >> 2u], %s, int((%s & 2u) * 8u), 16);",
			a(0), a(0), a(1), a(0))
	case ir.OpWriteSharedU32:
		w.line("smem[%s >> 2u] = %s;", a(0), a(1))
	case ir.OpWriteSharedU64:
		w.line("smem[%s >> 2u] = %s.x;", a(0), a(1))
		w.line("smem[(%s >> 2u) + 1u] = %s.y;", a(0), a(1))
	case ir.OpWriteSharedU128:
		w.line("smem[%s >> 2u] = %s.x;", a(0), a(1))
		w.line("smem[(%s >> 2u) + 1u] = %s.y;", a(0), a(1))
		w.line("smem[(%s >> 2u) + 2u] = %s.z;", a(0), a(1))
		w.line("smem[(%s >> 2u) + 3u] = %s.w;", a(0), a(1))

	case ir.OpLoadStorageU8:
		w.write(inst, "bitfieldExtract(%s, int((%s & 3u) * 8u), 8)", w.ssboWord(inst, 1), a(1))
	case ir.OpLoadStorageS8:
		w.write(inst, "uint(bitfieldExtract(int(%s), int((%s & 3u) * 8u), 8))", w.ssboWord(inst, 1), a(1))
	case ir.OpLoadStorageU16:
		w.write(inst, "bitfieldExtract(%s, int((%s & 2u) * 8u), 16)", w.ssboWord(inst, 1), a(1))
	case ir.OpLoadStorageS16:
		w.write(inst, "uint(bitfieldExtract(int(%s), int((%s & 2u) * 8u), 16))", w.ssboWord(inst, 1), a(1))
	case ir.OpLoadStorage32:
		w.write(inst, "%s", w.ssboWord(inst, 1))
	case ir.OpLoadStorage64:
		w.write(inst, "uvec2(%s, %s)", w.ssboWordAt(inst, 1, 0), w.ssboWordAt(inst, 1, 1))
	case ir.OpLoadStorage128:
		w.write(inst, "uvec4(%s, %s, %s, %s)", w.ssboWordAt(inst, 1, 0),
			w.ssboWordAt(inst, 1, 1), w.ssboWordAt(inst, 1, 2), w.ssboWordAt(inst, 1, 3))
	case ir.OpWriteStorageU8, ir.OpWriteStorageS8:
		word := w.ssboWord(inst, 1)
		w.line("%s = bitfieldInsert(%s, %s, int((%s & 3u) * 8u), 8);", word, word, a(2), a(1))
	case ir.OpWriteStorageU16, ir.OpWriteStorageS16:
		word := w.ssboWord(inst, 1)
		w.line("%s = bitfieldInsert(%s, %s, int((%s & 2u) * 8u), 16);", word, word, a(2), a(1))
	case ir.OpWriteStorage32:
		w.line("%s = %s;", w.ssboWord(inst, 1), a(2))
	case ir.OpWriteStorage64:
		w.line("%s = %s.x;", w.ssboWordAt(inst, 1, 0), a(2))
		w.line("%s = %s.y;", w.ssboWordAt(inst, 1, 1), a(2))
	case ir.OpWriteStorage128:
		w.line("%s = %s.x;", w.ssboWordAt(inst, 1, 0), a(2))
		w.line("%s = %s.y;", w.ssboWordAt(inst, 1, 1), a(2))
		w.line("%s = %s.z;", w.ssboWordAt(inst, 1, 2), a(2))
		w.line("%s = %s.w;", w.ssboWordAt(inst, 1, 3), a(2))

	case ir.OpLoadGlobalU8:
		w.write(inst, "bitfieldExtract(%s(%s), int((uint(%s) & 3u) * 8u), 8)",
			w.globalLoadHelper(32), a(0), a(0))
	case ir.OpLoadGlobalS8:
		w.write(inst, "uint(bitfieldExtract(int(%s(%s)), int((uint(%s) & 3u) * 8u), 8))",
			w.globalLoadHelper(32), a(0), a(0))
	case ir.OpLoadGlobalU16:
		w.write(inst, "bitfieldExtract(%s(%s), int((uint(%s) & 2u) * 8u), 16)",
			w.globalLoadHelper(32), a(0), a(0))
	case ir.OpLoadGlobalS16:
		w.write(inst, "uint(bitfieldExtract(int(%s(%s)), int((uint(%s) & 2u) * 8u), 16))",
			w.globalLoadHelper(32), a(0), a(0))
	case ir.OpLoadGlobal32:
		w.write(inst, "%s(%s)", w.globalLoadHelper(32), a(0))
	case ir.OpLoadGlobal64:
		w.write(inst, "%s(%s)", w.globalLoadHelper(64), a(0))
	case ir.OpLoadGlobal128:
		w.write(inst, "%s(%s)", w.globalLoadHelper(128), a(0))
	case ir.OpWriteGlobalU8, ir.OpWriteGlobalS8:
		load := w.globalLoadHelper(32)
		w.discard("%s(%s, bitfieldInsert(%s(%s), %s, int((uint(%s) & 3u) * 8u), 8))",
			w.globalWriteHelper(32), a(0), load, a(0), a(1), a(0))
	case ir.OpWriteGlobalU16, ir.OpWriteGlobalS16:
		load := w.globalLoadHelper(32)
		w.discard("%s(%s, bitfieldInsert(%s(%s), %s, int((uint(%s) & 2u) * 8u), 16))",
			w.globalWriteHelper(32), a(0), load, a(0), a(1), a(0))
	case ir.OpWriteGlobal32:
		w.discard("%s(%s, %s)", w.globalWriteHelper(32), a(0), a(1))
	case ir.OpWriteGlobal64:
		w.discard("%s(%s, %s)", w.globalWriteHelper(64), a(0), a(1))
	case ir.OpWriteGlobal128:
		w.discard("%s(%s, %s)", w.globalWriteHelper(128), a(0), a(1))

	default:
		return false
	}
	return true
}

// cbufBinding extracts the constant buffer index, which is always an
// immediate by the time code reaches a backend.
func (w *writer) cbufBinding(inst *ir.Inst) uint32 {
	v := inst.Arg(0).Resolve()
	if !v.IsImmediate() {
		w.failf("dynamic constant buffer index")
		return 0
	}
	return v.U32()
}

// cbufWord renders the float vec4 component holding the 32-bit word at the
// instruction's byte offset plus add.
func (w *writer) cbufWord(inst *ir.Inst, add uint32) string {
	binding := w.cbufBinding(inst)
	offset := inst.Arg(1).Resolve()
	if offset.IsImmediate() {
		off := offset.U32() + add
		return fmt.Sprintf("%s_cbuf%d[%d].%c", w.prefix, binding, off/16, "xyzw"[off/4%4])
	}
	o := w.val(offset)
	if add != 0 {
		o = fmt.Sprintf("(%s + %du)", o, add)
	}
	vec := fmt.Sprintf("%s_cbuf%d[%s >> 4u]", w.prefix, binding, o)
	idx := fmt.Sprintf("((%s >> 2u) & 3u)", o)
	if w.profile.HasGLComponentIndexingBug {
		return fmt.Sprintf("(%s == 0u ? %s.x : %s == 1u ? %s.y : %s == 2u ? %s.z : %s.w)",
			idx, vec, idx, vec, idx, vec, vec)
	}
	return fmt.Sprintf("%s[%s]", vec, idx)
}

func (w *writer) cbufU32(inst *ir.Inst) string {
	return fmt.Sprintf("ftou(%s)", w.cbufWord(inst, 0))
}

// byteShift and halfShift compute the sub-word bit position of a narrow
// constant buffer access.
func (w *writer) byteShift(offset ir.Value) string {
	if offset.IsImmediate() {
		return fmt.Sprintf("%d", offset.U32()%4*8)
	}
	return fmt.Sprintf("int((%s & 3u) * 8u)", w.val(offset))
}

func (w *writer) halfShift(offset ir.Value) string {
	if offset.IsImmediate() {
		return fmt.Sprintf("%d", offset.U32()%4/2*16)
	}
	return fmt.Sprintf("int((%s & 2u) * 8u)", w.val(offset))
}

// ssboBinding extracts the storage buffer binding immediate.
func (w *writer) ssboBinding(inst *ir.Inst) uint32 {
	v := inst.Arg(0).Resolve()
	if !v.IsImmediate() {
		w.failf("dynamic storage buffer index")
		return 0
	}
	return v.U32()
}

func (w *writer) ssboWord(inst *ir.Inst, offsetArg int) string {
	return w.ssboWordAt(inst, offsetArg, 0)
}

func (w *writer) ssboWordAt(inst *ir.Inst, offsetArg, wordAdd int) string {
	binding := w.ssboBinding(inst)
	offset := inst.Arg(offsetArg).Resolve()
	if offset.IsImmediate() {
		return fmt.Sprintf("%s_ssbo%d[%du]", w.prefix, binding, offset.U32()/4+uint32(wordAdd))
	}
	if wordAdd == 0 {
		return fmt.Sprintf("%s_ssbo%d[%s >> 2u]", w.prefix, binding, w.val(offset))
	}
	return fmt.Sprintf("%s_ssbo%d[(%s >> 2u) + %du]", w.prefix, binding, w.val(offset), wordAdd)
}

// Global memory helpers scan the recovered storage buffer descriptors for
// the one whose guest address window contains the pointer. Loads outside
// every window return zero, stores are dropped.

// ssboBaseExpr renders the guest base address of descriptor d as read back
// from its constant buffer slot.
func (w *writer) ssboBaseExpr(d *ir.StorageBufferDescriptor) string {
	lo := w.cbufWordRaw(d.CbufIndex, d.CbufOffset)
	hi := w.cbufWordRaw(d.CbufIndex, d.CbufOffset+4)
	return fmt.Sprintf("packUint2x32(uvec2(ftou(%s), ftou(%s)))", lo, hi)
}

func (w *writer) ssboSizeExpr(d *ir.StorageBufferDescriptor) string {
	return fmt.Sprintf("ftou(%s)", w.cbufWordRaw(d.CbufIndex, d.CbufOffset+8))
}

func (w *writer) cbufWordRaw(binding, off uint32) string {
	return fmt.Sprintf("%s_cbuf%d[%d].%c", w.prefix, binding, off/16, "xyzw"[off/4%4])
}

func (w *writer) globalLoadHelper(width int) string {
	name := fmt.Sprintf("g_load%d", width)
	ret, zero := "uint", "0u"
	index := "[uint(addr - base) >> 2u]"
	switch width {
	case 64:
		ret, zero = "uvec2", "uvec2(0u)"
	case 128:
		ret, zero = "uvec4", "uvec4(0u)"
	}
	body := fmt.Sprintf("%s %s(uint64_t addr) {\n    uint64_t base;\n", ret, name)
	for i := range w.p.Info.StorageBuffers {
		d := &w.p.Info.StorageBuffers[i]
		body += fmt.Sprintf("    base = %s;\n", w.ssboBaseExpr(d))
		body += fmt.Sprintf("    if (addr >= base && addr < base + uint64_t(%s)) {\n", w.ssboSizeExpr(d))
		ssbo := fmt.Sprintf("%s_ssbo%d", w.prefix, i)
		switch width {
		case 32:
			body += fmt.Sprintf("        return %s%s;\n", ssbo, index)
		case 64:
			body += fmt.Sprintf("        return uvec2(%s%s, %s[(uint(addr - base) >> 2u) + 1u]);\n",
				ssbo, index, ssbo)
		case 128:
			body += fmt.Sprintf("        return uvec4(%s%s, %s[(uint(addr - base) >> 2u) + 1u], "+
				"%s[(uint(addr - base) >> 2u) + 2u], %s[(uint(addr - base) >> 2u) + 3u]);\n",
				ssbo, index, ssbo, ssbo, ssbo)
		}
		body += "    }\n"
	}
	body += fmt.Sprintf("    return %s;\n}\n", zero)
	return w.helper(name, body)
}

func (w *writer) globalWriteHelper(width int) string {
	name := fmt.Sprintf("g_write%d", width)
	arg := "uint"
	switch width {
	case 64:
		arg = "uvec2"
	case 128:
		arg = "uvec4"
	}
	body := fmt.Sprintf("void %s(uint64_t addr, %s value) {\n    uint64_t base;\n", name, arg)
	for i := range w.p.Info.StorageBuffers {
		d := &w.p.Info.StorageBuffers[i]
		if !d.IsWritten {
			continue
		}
		body += fmt.Sprintf("    base = %s;\n", w.ssboBaseExpr(d))
		body += fmt.Sprintf("    if (addr >= base && addr < base + uint64_t(%s)) {\n", w.ssboSizeExpr(d))
		ssbo := fmt.Sprintf("%s_ssbo%d", w.prefix, i)
		switch width {
		case 32:
			body += fmt.Sprintf("        %s[uint(addr - base) >> 2u] = value;\n", ssbo)
		case 64:
			body += fmt.Sprintf("        %s[uint(addr - base) >> 2u] = value.x;\n", ssbo)
			body += fmt.Sprintf("        %s[(uint(addr - base) >> 2u) + 1u] = value.y;\n", ssbo)
		case 128:
			for c, sw := range []string{"x", "y", "z", "w"} {
				if c == 0 {
					body += fmt.Sprintf("        %s[uint(addr - base) >> 2u] = value.%s;\n", ssbo, sw)
				} else {
					body += fmt.Sprintf("        %s[(uint(addr - base) >> 2u) + %du] = value.%s;\n", ssbo, c, sw)
				}
			}
		}
		body += "        return;\n    }\n"
	}
	body += "}\n"
	return w.helper(name, body)
}
