// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"github.com/gogpu/maxwell/ir"
)

func (w *writer) emitWarp(inst *ir.Inst) bool {
	a := func(n int) string { return w.val(inst.Arg(n)) }

	switch inst.Opcode() {
	case ir.OpVoteAll:
		w.write(inst, "allInvocationsARB(%s)", a(0))
	case ir.OpVoteAny:
		w.write(inst, "anyInvocationARB(%s)", a(0))
	case ir.OpVoteEqual:
		w.write(inst, "allInvocationsEqualARB(%s)", a(0))
	case ir.OpSubgroupBallot:
		w.write(inst, "uint(ballotARB(%s))", a(0))
	case ir.OpSubgroupEqMask:
		w.write(inst, "uint(gl_ThreadEqMaskNV)")
	case ir.OpSubgroupLtMask:
		w.write(inst, "uint(gl_ThreadLtMaskNV)")
	case ir.OpSubgroupLeMask:
		w.write(inst, "uint(gl_ThreadLeMaskNV)")
	case ir.OpSubgroupGtMask:
		w.write(inst, "uint(gl_ThreadGtMaskNV)")
	case ir.OpSubgroupGeMask:
		w.write(inst, "uint(gl_ThreadGeMaskNV)")

	case ir.OpShuffleIndex:
		w.shuffle(inst, "(%[2]s & ~%[4]s) | shfl_min")
	case ir.OpShuffleUp:
		w.shuffle(inst, "gl_SubGroupInvocationARB - %[2]s")
	case ir.OpShuffleDown:
		w.shuffle(inst, "gl_SubGroupInvocationARB + %[2]s")
	case ir.OpShuffleButterfly:
		w.shuffle(inst, "gl_SubGroupInvocationARB ^ %[2]s")

	case ir.OpFSwizzleAdd:
		w.write(inst, "%s(%s, %s, %s)", w.fswzaddHelper(), a(0), a(1), a(2))

	case ir.OpDPdxFine:
		if w.profile.SupportGLDerivativeControl {
			w.write(inst, "dFdxFine(%s)", a(0))
		} else {
			w.write(inst, "dFdx(%s)", a(0))
		}
	case ir.OpDPdyFine:
		if w.profile.SupportGLDerivativeControl {
			w.write(inst, "dFdyFine(%s)", a(0))
		} else {
			w.write(inst, "dFdy(%s)", a(0))
		}
	case ir.OpDPdxCoarse:
		if w.profile.SupportGLDerivativeControl {
			w.write(inst, "dFdxCoarse(%s)", a(0))
		} else {
			w.write(inst, "dFdx(%s)", a(0))
		}
	case ir.OpDPdyCoarse:
		if w.profile.SupportGLDerivativeControl {
			w.write(inst, "dFdyCoarse(%s)", a(0))
		} else {
			w.write(inst, "dFdy(%s)", a(0))
		}

	default:
		return false
	}
	return true
}

// shuffle renders the SHFL family. The clamp and segmentation mask fields
// bound the source lane; srcFormat computes it from the format verbs
// %[2]s index, %[3]s clamp, %[4]s segmask.
func (w *writer) shuffle(inst *ir.Inst, srcFormat string) {
	w.shuffleScratch()
	value := w.val(inst.Arg(0))
	index := w.val(inst.Arg(1))
	clamp := w.val(inst.Arg(2))
	segmask := w.val(inst.Arg(3))

	w.line("shfl_min = gl_SubGroupInvocationARB & %s;", segmask)
	w.line("shfl_max = shfl_min | (%s & ~%s);", clamp, segmask)
	w.line("shfl_src = "+srcFormat+";", value, index, clamp, segmask)
	switch inst.Opcode() {
	case ir.OpShuffleUp:
		w.line("shfl_ok = int(shfl_src) >= int(shfl_min);")
	default:
		w.line("shfl_ok = shfl_src <= shfl_max;")
	}
	w.write(inst, "shfl_ok ? shuffleNV(%s, shfl_src, 32u) : %s", value, value)
	if ib := inst.AssociatedPseudoOperation(ir.OpGetInBoundsFromOp); ib != nil {
		w.line("%s = shfl_ok;", w.name(ib))
		w.done[ib] = true
	}
}

func (w *writer) shuffleScratch() {
	if w.shuffleDeclared {
		return
	}
	w.shuffleDeclared = true
	w.decls["uint"] = append(w.decls["uint"], "shfl_min", "shfl_max", "shfl_src")
	w.decls["bool"] = append(w.decls["bool"], "shfl_ok")
}

func (w *writer) fswzaddHelper() string {
	return w.helper("fswzadd", `float fswzadd(float a, float b, uint swizzle) {
    const float mods_a[4] = float[4](1.0, -1.0, 1.0, 0.0);
    const float mods_b[4] = float[4](1.0, 1.0, -1.0, -1.0);
    uint mask = (swizzle >> ((gl_SubGroupInvocationARB & 3u) << 1u)) & 3u;
    return mods_a[mask] * a + mods_b[mask] * shuffleXorNV(b, 1u, 32u);
}
`)
}
