// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

func (w *writer) emitInst(inst *ir.Inst) {
	switch {
	case w.emitMisc(inst):
	case w.emitAttribute(inst):
	case w.emitALU(inst):
	case w.emitMemory(inst):
	case w.emitAtomic(inst):
	case w.emitImage(inst):
	default:
		w.failf("%v has no GLSL lowering", inst.Opcode())
	}
}

func (w *writer) emitMisc(inst *ir.Inst) bool {
	switch inst.Opcode() {
	case ir.OpVoid, ir.OpIdentity, ir.OpPhi, ir.OpReference:
		// Phis are rendered through their PhiMove copies.
	case ir.OpPhiMove:
		phi := inst.Arg(0).Inst()
		src := w.val(inst.Arg(1))
		if dst := w.name(phi); dst != src {
			w.line("%s = %s;", dst, src)
		}
	case ir.OpPrologue:
		w.prologue()
	case ir.OpEpilogue:
		w.epilogue()
	case ir.OpConditionRef:
		w.write(inst, "%s", w.val(inst.Arg(0)))
	case ir.OpDemoteToHelperInvocation:
		w.discard("discard")
	case ir.OpEmitVertex:
		w.discard("EmitStreamVertex(int(%s))", w.val(inst.Arg(0)))
		w.reinitOutputs()
	case ir.OpEndPrimitive:
		w.discard("EndStreamPrimitive(int(%s))", w.val(inst.Arg(0)))
	case ir.OpBarrier:
		w.discard("barrier()")
	case ir.OpWorkgroupMemoryBarrier:
		w.discard("groupMemoryBarrier()")
	case ir.OpDeviceMemoryBarrier:
		w.discard("memoryBarrier()")

	case ir.OpWorkgroupID:
		w.write(inst, "gl_WorkGroupID")
	case ir.OpLocalInvocationID:
		w.write(inst, "gl_LocalInvocationID")
	case ir.OpInvocationID:
		w.write(inst, "uint(gl_InvocationID)")
	case ir.OpInvocationInfo:
		w.invocationInfo(inst)
	case ir.OpSampleID:
		w.write(inst, "uint(gl_SampleID)")
	case ir.OpIsHelperInvocation:
		w.write(inst, "gl_HelperInvocation")
	case ir.OpYDirection:
		if w.rt.YNegate {
			w.write(inst, "-1.0")
		} else {
			w.write(inst, "1.0")
		}
	case ir.OpLaneID:
		w.write(inst, "gl_SubGroupInvocationARB")

	case ir.OpUndefU1:
		w.write(inst, "false")
	case ir.OpUndefU8, ir.OpUndefU16, ir.OpUndefU32:
		w.write(inst, "0u")
	case ir.OpUndefU64:
		w.write(inst, "0ul")

	case ir.OpGetZeroFromOp:
		w.write(inst, "%s", w.zeroTest(inst.Arg(0)))
	case ir.OpGetSignFromOp:
		w.write(inst, "%s", w.signTest(inst.Arg(0)))
	case ir.OpGetCarryFromOp, ir.OpGetOverflowFromOp, ir.OpGetInBoundsFromOp:
		// Rendered next to the carrying operation; reaching one here means
		// the carrier was not emitted first.
		w.fail(shader.Logic("stray %v", inst.Opcode()))
	case ir.OpGetSparseFromOp:
		// Residency queries fold to resident.
		w.write(inst, "true")

	case ir.OpGetRegister, ir.OpSetRegister, ir.OpGetPred, ir.OpSetPred,
		ir.OpGetGotoVariable, ir.OpSetGotoVariable,
		ir.OpGetIndirectBranchVariable, ir.OpSetIndirectBranchVariable,
		ir.OpGetZFlag, ir.OpGetSFlag, ir.OpGetCFlag, ir.OpGetOFlag,
		ir.OpSetZFlag, ir.OpSetSFlag, ir.OpSetCFlag, ir.OpSetOFlag:
		w.fail(shader.Logic("%v survived SSA rewriting", inst.Opcode()))
	default:
		return false
	}
	return true
}

func (w *writer) zeroTest(v ir.Value) string {
	switch v.Type() {
	case ir.TypeU64:
		return fmt.Sprintf("(%s == 0ul)", w.val(v))
	case ir.TypeF32:
		return fmt.Sprintf("(%s == 0.0)", w.val(v))
	case ir.TypeF64:
		return fmt.Sprintf("(%s == 0.0lf)", w.val(v))
	case ir.TypeF16:
		return fmt.Sprintf("(%s == float16_t(0.0))", w.val(v))
	default:
		return fmt.Sprintf("(%s == 0u)", w.val(v))
	}
}

func (w *writer) signTest(v ir.Value) string {
	switch v.Type() {
	case ir.TypeU64:
		return fmt.Sprintf("(int64_t(%s) < 0l)", w.val(v))
	case ir.TypeF32:
		return fmt.Sprintf("(%s < 0.0)", w.val(v))
	case ir.TypeF64:
		return fmt.Sprintf("(%s < 0.0lf)", w.val(v))
	case ir.TypeF16:
		return fmt.Sprintf("(%s < float16_t(0.0))", w.val(v))
	default:
		return fmt.Sprintf("(int(%s) < 0)", w.val(v))
	}
}

// invocationInfo packs the patch or primitive vertex count into the high
// half word, matching what ISCADD based addressing expects.
func (w *writer) invocationInfo(inst *ir.Inst) {
	switch w.p.Stage {
	case shader.StageTessellationControl, shader.StageTessellationEval:
		w.write(inst, "uint(gl_PatchVerticesIn) << 16")
	case shader.StageGeometry:
		w.write(inst, "%du << 16", inputVertices(w.rt.InputTopology))
	default:
		w.write(inst, "0x00ff0000u")
	}
}

func inputVertices(t shader.InputTopology) uint32 {
	switch t {
	case shader.InputLines:
		return 2
	case shader.InputLinesAdjacency:
		return 4
	case shader.InputTriangles:
		return 3
	case shader.InputTrianglesAdjacency:
		return 6
	default:
		return 1
	}
}

func (w *writer) prologue() {
	switch w.p.Stage {
	case shader.StageVertexA, shader.StageVertexB, shader.StageTessellationEval, shader.StageGeometry:
		if ps := w.rt.FixedStatePointSize; ps != nil {
			w.line("gl_PointSize = %s;", immF32(*ps))
		}
	}
}

func (w *writer) epilogue() {
	switch w.p.Stage {
	case shader.StageVertexA, shader.StageVertexB, shader.StageTessellationEval:
		if w.rt.ConvertDepthMode {
			// OpenGL clip space has twice the depth range of the guest.
			w.line("gl_Position.z = (gl_Position.z + gl_Position.w) / 2.0;")
		}
	case shader.StageFragment:
		w.alphaTest()
	}
}

func (w *writer) alphaTest() {
	f := w.rt.AlphaTestFunc
	if f == nil || *f == shader.CompareAlways {
		return
	}
	if *f == shader.CompareNever {
		w.line("discard;")
		return
	}
	var cmp string
	switch *f {
	case shader.CompareLess:
		cmp = "<"
	case shader.CompareEqual:
		cmp = "=="
	case shader.CompareLessEqual:
		cmp = "<="
	case shader.CompareGreater:
		cmp = ">"
	case shader.CompareNotEqual:
		cmp = "!="
	case shader.CompareGreaterEqual:
		cmp = ">="
	}
	w.line("if (!(frag_color0.a %s %s)) { discard; }", cmp, immF32(w.rt.AlphaTestReference))
}

// reinitOutputs restores the output defaults after an EmitVertex so the
// next vertex starts from clean varyings, as the hardware does.
func (w *writer) reinitOutputs() {
	if w.p.Stage != shader.StageGeometry {
		return
	}
	for i := uint32(0); i < 32; i++ {
		if w.p.Info.Stores.AnyComponent(uint(ir.GenericAttribute(i))) {
			w.line("out_attr%d = vec4(0.0, 0.0, 0.0, 1.0);", i)
		}
	}
	w.line("gl_Position = vec4(0.0, 0.0, 0.0, 1.0);")
	if ps := w.rt.FixedStatePointSize; ps != nil {
		w.line("gl_PointSize = %s;", immF32(*ps))
	}
}
