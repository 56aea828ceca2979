// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
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
		w.failf("%v has no assembly lowering", inst.Opcode())
	}
}

// consumeArgs retires operand reads for instructions that render to
// nothing, keeping the recycler counts exact.
func (w *writer) consumeArgs(inst *ir.Inst) {
	for n := 0; n < inst.NumArgs(); n++ {
		if arg := inst.Arg(n).Resolve().Inst(); arg != nil {
			w.consumed = append(w.consumed, arg)
		}
	}
}

// move copies a value into the destination register with the width the
// type demands.
func (w *writer) move(dst string, v ir.Value) {
	t := v.Resolve().Type()
	switch {
	case isLongType(t):
		w.op("MOV.U64 %s.x, %s", dst, w.val(v))
	case scalarSuffix(t) == "":
		w.op("MOV.U %s, %s", dst, w.vec(v))
	default:
		w.op("MOV.U %s.x, %s", dst, w.val(v))
	}
}

// ccBool materializes the last condition code test as a canonical boolean.
func (w *writer) ccBool(dst, test string) {
	w.op("MOV.S %s, 0", dst)
	w.op("MOV.S %s (%s), -1", dst, test)
}

func (w *writer) emitMisc(inst *ir.Inst) bool {
	switch inst.Opcode() {
	case ir.OpVoid, ir.OpIdentity, ir.OpPhi:
	case ir.OpReference:
		w.consumeArgs(inst)
	case ir.OpPhiMove:
		phi := inst.Arg(0).Resolve().Inst()
		dst := w.reg(phi)
		if src := inst.Arg(1).Resolve().Inst(); src != nil && w.reg(src) == dst {
			w.consumeArgs(inst)
			return true
		}
		w.move(dst, inst.Arg(1))
	case ir.OpPrologue:
		w.prologue()
	case ir.OpEpilogue:
		w.epilogue()
	case ir.OpConditionRef:
		w.op("MOV.S %s.x, %s", w.reg(inst), w.val(inst.Arg(0)))
	case ir.OpDemoteToHelperInvocation:
		w.op("KIL {-1, -1, -1, -1}")
	case ir.OpEmitVertex:
		w.flushPosition()
		w.op("EMIT")
		w.consumeArgs(inst)
	case ir.OpEndPrimitive:
		w.op("ENDPRIM")
		w.consumeArgs(inst)
	case ir.OpBarrier:
		w.op("BAR")
	case ir.OpWorkgroupMemoryBarrier:
		w.op("MEMBAR.CTA")
	case ir.OpDeviceMemoryBarrier:
		w.op("MEMBAR")
	case ir.OpWorkgroupID:
		w.op("MOV.U %s, invocation.groupid", w.reg(inst))
	case ir.OpLocalInvocationID:
		w.op("MOV.U %s, invocation.localid", w.reg(inst))
	case ir.OpInvocationID:
		w.op("MOV.S %s.x, primitive.invocation", w.reg(inst))
	case ir.OpInvocationInfo:
		w.invocationInfo(inst)
	case ir.OpSampleID:
		w.op("MOV.S %s.x, fragment.sampleid.x", w.reg(inst))
	case ir.OpIsHelperInvocation:
		w.op("MOV.S %s.x, fragment.helperthread.x", w.reg(inst))
	case ir.OpYDirection:
		if w.rt.YNegate {
			w.op("MOV.F %s.x, -1.0", w.reg(inst))
		} else {
			w.op("MOV.F %s.x, 1.0", w.reg(inst))
		}
	case ir.OpLaneID:
		w.op("MOV.U %s.x, thread.id.x", w.reg(inst))
	case ir.OpUndefU1, ir.OpUndefU8, ir.OpUndefU16, ir.OpUndefU32:
		w.op("MOV.U %s.x, 0", w.reg(inst))
	case ir.OpUndefU64:
		w.op("PK64.U %s.x, {0, 0, 0, 0}", w.reg(inst))
	case ir.OpGetZeroFromOp:
		w.zeroTest(inst)
	case ir.OpGetSignFromOp:
		w.signTest(inst)
	case ir.OpGetSparseFromOp:
		// Residency folds to resident; sparse forms are never emitted.
		w.op("MOV.S %s.x, -1", w.reg(inst))
		w.consumeArgs(inst)
	case ir.OpGetCarryFromOp, ir.OpGetOverflowFromOp, ir.OpGetInBoundsFromOp:
		w.fail(shader.Logic("stray %v", inst.Opcode()))
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

func (w *writer) zeroTest(inst *ir.Inst) {
	v := inst.Arg(0)
	dst := w.reg(inst)
	switch v.Resolve().Type() {
	case ir.TypeU64:
		w.op("SEQ.U64 %s.x, %s, 0", dst, w.val(v))
	case ir.TypeF32:
		w.op("SEQ.F RC.x, %s, 0.0", w.val(v))
		w.op("SNE.S %s.x, RC.x, 0", dst)
	case ir.TypeF64:
		w.op("SEQ.F64 RC.x, %s, 0.0", w.val(v))
		w.op("SNE.S %s.x, RC.x, 0", dst)
	default:
		w.op("SEQ.U %s.x, %s, 0", dst, w.val(v))
	}
}

func (w *writer) signTest(inst *ir.Inst) {
	v := inst.Arg(0)
	dst := w.reg(inst)
	switch v.Resolve().Type() {
	case ir.TypeU64:
		w.op("SLT.S64 %s.x, %s, 0", dst, w.val(v))
	case ir.TypeF32:
		w.op("SLT.F RC.x, %s, 0.0", w.val(v))
		w.op("SNE.S %s.x, RC.x, 0", dst)
	case ir.TypeF64:
		w.op("SLT.F64 RC.x, %s, 0.0", w.val(v))
		w.op("SNE.S %s.x, RC.x, 0", dst)
	default:
		w.op("SLT.S %s.x, %s, 0", dst, w.val(v))
	}
}

func (w *writer) invocationInfo(inst *ir.Inst) {
	dst := w.reg(inst)
	switch w.p.Stage {
	case shader.StageTessellationControl, shader.StageTessellationEval:
		w.op("MOV.S RC.x, primitive.vertexcount")
		w.op("SHL.U %s.x, RC.x, 16", dst)
	case shader.StageGeometry:
		w.op("MOV.U %s.x, 0x%x", dst, inputVertices(w.rt.InputTopology)<<16)
	default:
		w.op("MOV.U %s.x, 0x00ff0000", dst)
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
		if w.rt.FixedStatePointSize != nil {
			w.op("MOV.F result.pointsize.x, %s", immF32(*w.rt.FixedStatePointSize))
		}
	}
}

func (w *writer) epilogue() {
	switch w.p.Stage {
	case shader.StageVertexA, shader.StageVertexB, shader.StageTessellationEval:
		w.flushPosition()
	case shader.StageFragment:
		w.alphaTest()
	}
}

// flushPosition applies the depth range conversion and commits the staged
// position to the result register.
func (w *writer) flushPosition() {
	if !w.posUsed {
		return
	}
	if w.rt.ConvertDepthMode {
		w.op("ADD.F RPOS.z, RPOS.z, RPOS.w")
		w.op("MUL.F RPOS.z, RPOS.z, 0.5")
	}
	w.op("MOV.F result.position, RPOS")
}

// failCompare maps a passing comparison to the set instruction detecting
// the failing case, which feeds KIL directly.
var failCompare = map[shader.CompareFunction]string{
	shader.CompareLess:         "SGE",
	shader.CompareEqual:        "SNE",
	shader.CompareLessEqual:    "SGT",
	shader.CompareGreater:      "SLE",
	shader.CompareNotEqual:     "SEQ",
	shader.CompareGreaterEqual: "SLT",
}

func (w *writer) alphaTest() {
	if w.rt.AlphaTestFunc == nil {
		return
	}
	switch fn := *w.rt.AlphaTestFunc; fn {
	case shader.CompareAlways:
	case shader.CompareNever:
		w.op("KIL {-1, -1, -1, -1}")
	default:
		if !w.alphaUsed {
			return
		}
		// The set result is negated so a failing test yields -1.
		w.op("%s.F RC.x, ATST.x, %s", failCompare[fn], immF32(w.rt.AlphaTestReference))
		w.op("SUB.F RC.x, 0.0, RC.x")
		w.op("KIL RC.x")
	}
}
