// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"github.com/gogpu/maxwell/ir"
)

func (w *writer) emitWarp(inst *ir.Inst) bool {
	a := func(n int) string { return w.val(inst.Arg(n)) }

	switch inst.Opcode() {
	case ir.OpVoteAll:
		w.op("TGALL.S %s.x, %s", w.reg(inst), a(0))
	case ir.OpVoteAny:
		w.op("TGANY.S %s.x, %s", w.reg(inst), a(0))
	case ir.OpVoteEqual:
		w.op("TGEQ.S %s.x, %s", w.reg(inst), a(0))
	case ir.OpSubgroupBallot:
		w.op("TGBALLOT.U %s.x, %s", w.reg(inst), a(0))
	case ir.OpSubgroupEqMask:
		w.op("MOV.U %s.x, thread.eqmask.x", w.reg(inst))
	case ir.OpSubgroupLtMask:
		w.op("MOV.U %s.x, thread.ltmask.x", w.reg(inst))
	case ir.OpSubgroupLeMask:
		w.op("MOV.U %s.x, thread.lemask.x", w.reg(inst))
	case ir.OpSubgroupGtMask:
		w.op("MOV.U %s.x, thread.gtmask.x", w.reg(inst))
	case ir.OpSubgroupGeMask:
		w.op("MOV.U %s.x, thread.gemask.x", w.reg(inst))

	case ir.OpShuffleIndex:
		w.shuffle(inst, "SHFIDX")
	case ir.OpShuffleUp:
		w.shuffle(inst, "SHFUP")
	case ir.OpShuffleDown:
		w.shuffle(inst, "SHFDOWN")
	case ir.OpShuffleButterfly:
		w.shuffle(inst, "SHFXOR")

	case ir.OpFSwizzleAdd:
		w.fswzadd(inst)

	// The assembler exposes one derivative per axis; fine and coarse share
	// it.
	case ir.OpDPdxFine, ir.OpDPdxCoarse:
		w.op("DDX.F %s.x, %s", w.reg(inst), a(0))
	case ir.OpDPdyFine, ir.OpDPdyCoarse:
		w.op("DDY.F %s.x, %s", w.reg(inst), a(0))

	default:
		return false
	}
	return true
}

// shuffle renders the SHFL family. The third source packs the clamp in the
// low byte and the segmentation mask above it.
func (w *writer) shuffle(inst *ir.Inst, mnemonic string) {
	value := w.val(inst.Arg(0))
	index := w.val(inst.Arg(1))
	clamp := inst.Arg(2).Resolve()
	segmask := inst.Arg(3).Resolve()

	var comb string
	if clamp.IsImmediate() && segmask.IsImmediate() {
		comb = immU32(clamp.U32() | segmask.U32()<<8)
	} else {
		w.op("SHL.U RC.y, %s, 8", w.val(segmask))
		w.op("OR.U RC.y, RC.y, %s", w.val(clamp))
		comb = "RC.y"
	}

	ib := inst.AssociatedPseudoOperation(ir.OpGetInBoundsFromOp)
	suffix := ""
	if ib != nil {
		suffix = ".CC"
	}
	w.op("%s.U%s %s.x, %s, %s, %s", mnemonic, suffix, w.reg(inst), value, index, comb)
	if ib != nil {
		w.ccBool(w.reg(ib)+".x", "NE.x")
		w.done[ib] = true
	}
}

// fswzadd computes a*mods_a[m] + shfl_xor(b,1)*mods_b[m] where m is the
// two swizzle bits selected by the lane's quad position. mods_a is
// (1, -1, 1, 0) and mods_b is (1, 1, -1, -1).
func (w *writer) fswzadd(inst *ir.Inst) {
	a := w.val(inst.Arg(0))
	b := w.val(inst.Arg(1))
	swizzle := w.val(inst.Arg(2))
	s := w.alloc(false)
	sr := regName(s)

	w.op("MOV.U RC.x, thread.id.x")
	w.op("AND.U RC.x, RC.x, 3")
	w.op("SHL.U RC.x, RC.x, 1")
	w.op("SHR.U RC.x, %s, RC.x", swizzle)
	w.op("AND.U RC.x, RC.x, 3")
	w.op("SHFXOR.U %s.y, %s, 1, 0x1f", sr, b)
	w.op("MOV.F %s.z, 1.0", sr)
	w.op("MOV.F %s.w, 1.0", sr)
	w.op("SEQ.S RC.y, RC.x, 1")
	w.op("MOV.S.CC RC.y, RC.y")
	w.op("MOV.F %s.z (NE.y), -1.0", sr)
	w.op("SEQ.S RC.y, RC.x, 3")
	w.op("MOV.S.CC RC.y, RC.y")
	w.op("MOV.F %s.z (NE.y), 0.0", sr)
	w.op("SGE.S RC.y, RC.x, 2")
	w.op("MOV.S.CC RC.y, RC.y")
	w.op("MOV.F %s.w (NE.y), -1.0", sr)
	w.op("MUL.F %s.z, %s.z, %s", sr, sr, a)
	w.op("MAD.F %s.x, %s.w, %s.y, %s.z", w.reg(inst), sr, sr, sr)
	w.freeScratch(s)
}
