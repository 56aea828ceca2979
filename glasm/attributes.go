// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"fmt"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

func (w *writer) emitAttribute(inst *ir.Inst) bool {
	switch inst.Opcode() {
	case ir.OpGetAttribute, ir.OpGetAttributeU32:
		w.attrLoad(inst)
	case ir.OpSetAttribute:
		w.attrStore(inst)
	case ir.OpGetAttributeIndexed, ir.OpSetAttributeIndexed:
		w.failf("indexed attribute access in assembly output")
	case ir.OpGetPatch:
		w.patchLoad(inst)
	case ir.OpSetPatch:
		w.patchStore(inst)
	case ir.OpSetFragColor:
		rt := inst.Arg(0).U32()
		comp := inst.Arg(1).U32()
		v := w.val(inst.Arg(2))
		w.op("MOV.F result.color[%d].%c, %s", rt, "xyzw"[comp], v)
		if rt == 0 && comp == 3 && w.rt.AlphaTestFunc != nil {
			w.alphaUsed = true
			w.op("MOV.F ATST.x, %s", v)
		}
	case ir.OpSetFragDepth:
		w.op("MOV.F result.depth.z, %s", w.val(inst.Arg(0)))
	case ir.OpSetSampleMask:
		w.op("MOV.S result.samplemask.x, %s", w.val(inst.Arg(0)))
	default:
		return false
	}
	return true
}

// arrayedInputs reports whether inputs are indexed per incoming vertex.
func (w *writer) arrayedInputs() bool {
	switch w.p.Stage {
	case shader.StageGeometry, shader.StageTessellationControl, shader.StageTessellationEval:
		return true
	}
	return false
}

// inputName renders the source binding of one input attribute component.
func (w *writer) inputName(field string, vertex ir.Value) string {
	if w.p.Stage == shader.StageFragment {
		return "fragment." + field
	}
	if w.arrayedInputs() {
		return fmt.Sprintf("vertex[%s].%s", w.val(vertex), field)
	}
	return "vertex." + field
}

func (w *writer) attrLoad(inst *ir.Inst) {
	attr := inst.Arg(0).Attribute()
	dst := w.reg(inst)
	c := "xyzw"[attr.Component()]

	switch {
	case attr.IsGeneric():
		field := fmt.Sprintf("attrib[%d].%c", attr.GenericIndex(), c)
		w.op("MOV.F %s.x, %s", dst, w.inputName(field, inst.Arg(1)))
	case attr >= ir.AttributePositionX && attr <= ir.AttributePositionW:
		switch {
		case w.p.Stage == shader.StageFragment:
			w.op("MOV.F %s.x, fragment.position.%c", dst, c)
		case w.arrayedInputs():
			w.op("MOV.F %s.x, %s", dst, w.inputName(fmt.Sprintf("position.%c", c), inst.Arg(1)))
		default:
			w.posUsed = true
			w.op("MOV.F %s.x, RPOS.%c", dst, c)
		}
	case attr.IsLegacy():
		w.op("MOV.F %s.x, %s.%c", dst, w.legacyInput(attr), c)
	case attr == ir.AttributePrimitiveID:
		w.op("MOV.S %s.x, primitive.id.x", dst)
	case attr == ir.AttributeTessCoordU:
		w.op("MOV.F %s.x, vertex.tesscoord.x", dst)
	case attr == ir.AttributeTessCoordV:
		w.op("MOV.F %s.x, vertex.tesscoord.y", dst)
	case attr == ir.AttributeInstanceID:
		w.op("MOV.S %s.x, vertex.instance.x", dst)
	case attr == ir.AttributeVertexID:
		w.op("MOV.S %s.x, vertex.id.x", dst)
	case attr == ir.AttributeFrontFace:
		// Front faces report all ones, matching the guest encoding.
		w.op("SGE.F RC.x, fragment.facing.x, 0.0")
		w.op("SNE.S %s.x, RC.x, 0", dst)
	case attr == ir.AttributePointSize:
		w.op("MOV.F %s.x, vertex.pointsize.x", dst)
	default:
		w.failf("read of attribute %v", attr)
	}
}

// legacyInput names the fixed function color and fog inputs.
func (w *writer) legacyInput(attr ir.Attribute) string {
	frag := w.p.Stage == shader.StageFragment
	switch {
	case attr >= ir.AttributeFrontDiffuseR && attr < ir.AttributeFrontSpecularR:
		if frag {
			return "fragment.color"
		}
		return "vertex.color"
	case attr >= ir.AttributeFrontSpecularR && attr < ir.AttributeBackDiffuseR:
		if frag {
			return "fragment.color.secondary"
		}
		return "vertex.color.secondary"
	case attr == ir.AttributeFogCoordinate:
		if frag {
			return "fragment.fogcoord"
		}
		return "vertex.fogcoord"
	default:
		return "fragment.color"
	}
}

func (w *writer) attrStore(inst *ir.Inst) {
	attr := inst.Arg(0).Attribute()
	v := w.val(inst.Arg(1))
	c := "xyzw"[attr.Component()]

	switch {
	case attr.IsGeneric():
		w.op("MOV.F result.attrib[%d].%c, %s", attr.GenericIndex(), c, v)
	case attr >= ir.AttributePositionX && attr <= ir.AttributePositionW:
		w.posUsed = true
		w.op("MOV.F RPOS.%c, %s", c, v)
	case attr >= ir.AttributeClipDistance0 && attr <= ir.AttributeClipDistance7:
		w.op("MOV.F result.clip[%d].x, %s", attr-ir.AttributeClipDistance0, v)
	case attr == ir.AttributePointSize:
		w.op("MOV.F result.pointsize.x, %s", v)
	case attr == ir.AttributeLayer:
		w.op("MOV.S result.layer.x, %s", v)
	case attr == ir.AttributeViewportIndex:
		w.op("MOV.S result.viewport.x, %s", v)
	case attr.IsLegacy():
		w.op("MOV.F %s.%c, %s", legacyOutput(attr), c, v)
	default:
		w.failf("write of attribute %v", attr)
	}
}

func legacyOutput(attr ir.Attribute) string {
	switch {
	case attr >= ir.AttributeFrontDiffuseR && attr < ir.AttributeFrontSpecularR:
		return "result.color"
	case attr >= ir.AttributeFrontSpecularR && attr < ir.AttributeBackDiffuseR:
		return "result.color.secondary"
	case attr >= ir.AttributeBackDiffuseR && attr < ir.AttributeBackSpecularR:
		return "result.color.back"
	case attr >= ir.AttributeBackSpecularR && attr < ir.AttributeBackSpecularR+4:
		return "result.color.back.secondary"
	default:
		return "result.fogcoord"
	}
}

// Patch words 0..3 are the outer tessellation levels, 4..5 the inner ones,
// and generic per-patch vec4s start at word 8.
func (w *writer) patchLoad(inst *ir.Inst) {
	word := int(inst.Arg(0).Patch())
	dst := w.reg(inst)
	switch {
	case word < 4:
		w.op("MOV.F %s.x, primitive.patch.tessouter[%d].x", dst, word)
	case word < 6:
		w.op("MOV.F %s.x, primitive.patch.tessinner[%d].x", dst, word-4)
	case word < 8:
		w.failf("read of reserved patch word %d", word)
	default:
		w.op("MOV.F %s.x, primitive.patch.attrib[%d].%c", dst, word/4, "xyzw"[word%4])
	}
}

func (w *writer) patchStore(inst *ir.Inst) {
	word := int(inst.Arg(0).Patch())
	v := w.val(inst.Arg(1))
	switch {
	case word < 4:
		w.op("MOV.F result.patch.tessouter[%d].x, %s", word, v)
	case word < 6:
		w.op("MOV.F result.patch.tessinner[%d].x, %s", word-4, v)
	case word < 8:
		w.failf("write of reserved patch word %d", word)
	default:
		w.op("MOV.F result.patch.attrib[%d].%c, %s", word/4, "xyzw"[word%4], v)
	}
}
