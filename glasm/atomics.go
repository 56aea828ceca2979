// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"strings"

	"github.com/gogpu/maxwell/ir"
)

// atomicAsmOps maps the opcode suffix after the family prefix to the
// assembler operation and size modifier.
var atomicAsmOps = map[string]string{
	"IAdd32":     "ADD.U32",
	"SMin32":     "MIN.S32",
	"UMin32":     "MIN.U32",
	"SMax32":     "MAX.S32",
	"UMax32":     "MAX.U32",
	"Inc32":      "IWRAP.U32",
	"Dec32":      "DWRAP.U32",
	"And32":      "AND.U32",
	"Or32":       "OR.U32",
	"Xor32":      "XOR.U32",
	"Exchange32": "EXCH.U32",
	"IAdd64":     "ADD.U64",
	"SMin64":     "MIN.S64",
	"UMin64":     "MIN.U64",
	"SMax64":     "MAX.S64",
	"UMax64":     "MAX.U64",
	"And64":      "AND.U64",
	"Or64":       "OR.U64",
	"Xor64":      "XOR.U64",
	"Exchange64": "EXCH.U64",
	"AddF32":     "ADD.F32",
	"AddF16x2":   "ADD.F16x2",
	"MinF16x2":   "MIN.F16x2",
	"MaxF16x2":   "MAX.F16x2",
}

func (w *writer) emitAtomic(inst *ir.Inst) bool {
	name := inst.Opcode().String()
	switch {
	case strings.HasPrefix(name, "SharedAtomic"):
		w.sharedAtomic(inst, name[len("SharedAtomic"):])
	case strings.HasPrefix(name, "StorageAtomic"):
		w.storageAtomic(inst, name[len("StorageAtomic"):])
	case strings.HasPrefix(name, "GlobalAtomic"):
		w.globalAtomic(inst, name[len("GlobalAtomic"):])
	default:
		return false
	}
	return true
}

func (w *writer) sharedAtomic(inst *ir.Inst, kind string) {
	op, ok := atomicAsmOps[kind]
	if !ok {
		w.failf("shared atomic %s", kind)
		return
	}
	w.op("ATOMS.%s %s.x, %s, shared_mem[%s]",
		op, w.reg(inst), w.val(inst.Arg(1)), w.val(inst.Arg(0)))
}

func (w *writer) storageAtomic(inst *ir.Inst, kind string) {
	op, ok := atomicAsmOps[kind]
	if !ok {
		w.failf("storage atomic %s", kind)
		return
	}
	binding := w.ssboBinding(inst)
	if w.rt.GlasmUseStorageBuffers {
		w.op("ATOMB.%s %s.x, %s, ssbo%d[%s]",
			op, w.reg(inst), w.val(inst.Arg(2)), binding, w.val(inst.Arg(1)))
		return
	}
	addr := w.storageAddr(binding, inst.Arg(1))
	w.op("ATOM.%s %s.x, %s, %s.x", op, w.reg(inst), w.val(inst.Arg(2)), regName(addr))
	w.freeScratch(addr)
}

func (w *writer) globalAtomic(inst *ir.Inst, kind string) {
	op, ok := atomicAsmOps[kind]
	if !ok {
		w.failf("global atomic %s", kind)
		return
	}
	w.op("ATOM.%s %s.x, %s, %s", op, w.reg(inst), w.val(inst.Arg(1)), w.val(inst.Arg(0)))
}
