// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"fmt"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

func (w *writer) emitMemory(inst *ir.Inst) bool {
	a := func(n int) string { return w.val(inst.Arg(n)) }

	switch inst.Opcode() {
	case ir.OpGetCbufU8:
		w.op("LDC.U8 %s.x, %s", w.reg(inst), w.cbufAddr(inst))
	case ir.OpGetCbufS8:
		w.op("LDC.S8 %s.x, %s", w.reg(inst), w.cbufAddr(inst))
	case ir.OpGetCbufU16:
		w.op("LDC.U16 %s.x, %s", w.reg(inst), w.cbufAddr(inst))
	case ir.OpGetCbufS16:
		w.op("LDC.S16 %s.x, %s", w.reg(inst), w.cbufAddr(inst))
	case ir.OpGetCbufU32:
		w.op("LDC.U32 %s.x, %s", w.reg(inst), w.cbufAddr(inst))
	case ir.OpGetCbufF32:
		w.op("LDC.F32 %s.x, %s", w.reg(inst), w.cbufAddr(inst))
	case ir.OpGetCbufU32x2:
		w.op("LDC.U32X2 %s.x, %s", w.reg(inst), w.cbufAddr(inst))

	case ir.OpLoadLocal:
		w.op("MOV.U %s.x, lmem[%s].x", w.reg(inst), w.localIndex(inst.Arg(0)))
	case ir.OpWriteLocal:
		idx := w.localIndex(inst.Arg(0))
		w.op("MOV.U lmem[%s].x, %s", idx, a(1))

	case ir.OpLoadSharedU8:
		w.op("LDS.U8 %s.x, shared_mem[%s]", w.reg(inst), a(0))
	case ir.OpLoadSharedS8:
		w.op("LDS.S8 %s.x, shared_mem[%s]", w.reg(inst), a(0))
	case ir.OpLoadSharedU16:
		w.op("LDS.U16 %s.x, shared_mem[%s]", w.reg(inst), a(0))
	case ir.OpLoadSharedS16:
		w.op("LDS.S16 %s.x, shared_mem[%s]", w.reg(inst), a(0))
	case ir.OpLoadSharedU32:
		w.op("LDS.U32 %s.x, shared_mem[%s]", w.reg(inst), a(0))
	case ir.OpLoadSharedU64:
		w.op("LDS.U64 %s.x, shared_mem[%s]", w.reg(inst), a(0))
	case ir.OpLoadSharedU128:
		w.op("LDS.U64X2 %s.x, shared_mem[%s]", w.reg(inst), a(0))
	case ir.OpWriteSharedU8:
		w.op("STS.U8 %s, shared_mem[%s]", a(1), a(0))
	case ir.OpWriteSharedU16:
		w.op("STS.U16 %s, shared_mem[%s]", a(1), a(0))
	case ir.OpWriteSharedU32:
		w.op("STS.U32 %s, shared_mem[%s]", a(1), a(0))
	case ir.OpWriteSharedU64:
		w.op("STS.U64 %s, shared_mem[%s]", w.vec(inst.Arg(1)), a(0))
	case ir.OpWriteSharedU128:
		w.op("STS.U64X2 %s, shared_mem[%s]", w.vec(inst.Arg(1)), a(0))

	case ir.OpLoadStorageU8:
		w.storageLoad(inst, "U8")
	case ir.OpLoadStorageS8:
		w.storageLoad(inst, "S8")
	case ir.OpLoadStorageU16:
		w.storageLoad(inst, "U16")
	case ir.OpLoadStorageS16:
		w.storageLoad(inst, "S16")
	case ir.OpLoadStorage32:
		w.storageLoad(inst, "U32")
	case ir.OpLoadStorage64:
		w.storageLoad(inst, "U32X2")
	case ir.OpLoadStorage128:
		w.storageLoad(inst, "U32X4")
	case ir.OpWriteStorageU8:
		w.storageStore(inst, "U8", w.val(inst.Arg(2)))
	case ir.OpWriteStorageS8:
		w.storageStore(inst, "S8", w.val(inst.Arg(2)))
	case ir.OpWriteStorageU16:
		w.storageStore(inst, "U16", w.val(inst.Arg(2)))
	case ir.OpWriteStorageS16:
		w.storageStore(inst, "S16", w.val(inst.Arg(2)))
	case ir.OpWriteStorage32:
		w.storageStore(inst, "U32", w.val(inst.Arg(2)))
	case ir.OpWriteStorage64:
		w.storageStore(inst, "U32X2", w.vec(inst.Arg(2)))
	case ir.OpWriteStorage128:
		w.storageStore(inst, "U32X4", w.vec(inst.Arg(2)))

	// Global pointers are trusted as-is; descriptor recovery already proved
	// they land in tracked buffers or the access is meant to fault.
	case ir.OpLoadGlobalU8:
		w.op("LOAD.U8 %s.x, %s", w.reg(inst), a(0))
	case ir.OpLoadGlobalS8:
		w.op("LOAD.S8 %s.x, %s", w.reg(inst), a(0))
	case ir.OpLoadGlobalU16:
		w.op("LOAD.U16 %s.x, %s", w.reg(inst), a(0))
	case ir.OpLoadGlobalS16:
		w.op("LOAD.S16 %s.x, %s", w.reg(inst), a(0))
	case ir.OpLoadGlobal32:
		w.op("LOAD.U32 %s.x, %s", w.reg(inst), a(0))
	case ir.OpLoadGlobal64:
		w.op("LOAD.U32X2 %s.x, %s", w.reg(inst), a(0))
	case ir.OpLoadGlobal128:
		w.op("LOAD.U32X4 %s.x, %s", w.reg(inst), a(0))
	case ir.OpWriteGlobalU8:
		w.op("STORE.U8 %s, %s", a(1), a(0))
	case ir.OpWriteGlobalS8:
		w.op("STORE.S8 %s, %s", a(1), a(0))
	case ir.OpWriteGlobalU16:
		w.op("STORE.U16 %s, %s", a(1), a(0))
	case ir.OpWriteGlobalS16:
		w.op("STORE.S16 %s, %s", a(1), a(0))
	case ir.OpWriteGlobal32:
		w.op("STORE.U32 %s, %s", a(1), a(0))
	case ir.OpWriteGlobal64:
		w.op("STORE.U32X2 %s, %s", w.vec(inst.Arg(1)), a(0))
	case ir.OpWriteGlobal128:
		w.op("STORE.U32X4 %s, %s", w.vec(inst.Arg(1)), a(0))

	default:
		return false
	}
	return true
}

// cbufAddr renders the constant buffer operand of a LDC, addressed in bytes.
func (w *writer) cbufAddr(inst *ir.Inst) string {
	binding := inst.Arg(0).Resolve()
	if !binding.IsImmediate() {
		w.failf("dynamic constant buffer index")
		return "cbuf0[0]"
	}
	offset := inst.Arg(1).Resolve()
	if offset.IsImmediate() {
		return fmt.Sprintf("cbuf%d[%s]", binding.U32(), immU32(offset.U32()))
	}
	return fmt.Sprintf("cbuf%d[%s]", binding.U32(), w.val(offset))
}

// localIndex turns a byte offset into the lmem element index.
func (w *writer) localIndex(offset ir.Value) string {
	offset = offset.Resolve()
	if offset.IsImmediate() {
		return immU32(offset.U32() / 4)
	}
	w.op("SHR.U RC.x, %s, 2", w.val(offset))
	return "RC.x"
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

func (w *writer) storageLoad(inst *ir.Inst, width string) {
	binding := w.ssboBinding(inst)
	if w.rt.GlasmUseStorageBuffers {
		w.op("LDB.%s %s.x, ssbo%d[%s]", width, w.reg(inst), binding, w.val(inst.Arg(1)))
		return
	}
	addr := w.storageAddr(binding, inst.Arg(1))
	w.op("LOAD.%s %s.x, %s.x", width, w.reg(inst), regName(addr))
	w.freeScratch(addr)
}

func (w *writer) storageStore(inst *ir.Inst, width, value string) {
	binding := w.ssboBinding(inst)
	if w.rt.GlasmUseStorageBuffers {
		w.op("STB.%s %s, ssbo%d[%s]", width, value, binding, w.val(inst.Arg(1)))
		return
	}
	addr := w.storageAddr(binding, inst.Arg(1))
	w.op("STORE.%s %s, %s.x", width, value, regName(addr))
	w.freeScratch(addr)
}

// storageAddr recomputes the guest address of a storage access from the
// descriptor's base pointer when bound storage buffers are unavailable.
// The caller owns the returned long scratch register.
func (w *writer) storageAddr(binding uint32, offset ir.Value) uint32 {
	addr := w.alloc(true)
	if int(binding) >= len(w.p.Info.StorageBuffers) {
		w.fail(shader.Logic("storage buffer %d has no descriptor", binding))
		return addr
	}
	d := &w.p.Info.StorageBuffers[binding]
	w.op("LDC.U64 %s.x, cbuf%d[%d]", regName(addr), d.CbufIndex, d.CbufOffset)
	off := w.alloc(true)
	w.op("MOV.U RC.x, %s", w.val(offset))
	w.op("MOV.U RC.y, 0")
	w.op("PK64.U %s.x, RC", regName(off))
	w.op("ADD.U64 %s.x, %s.x, %s.x", regName(addr), regName(addr), regName(off))
	w.freeScratch(off)
	return addr
}
