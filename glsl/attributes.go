// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

func (w *writer) emitAttribute(inst *ir.Inst) bool {
	switch inst.Opcode() {
	case ir.OpGetAttribute:
		w.write(inst, "%s", w.attrLoad(inst, false))
	case ir.OpGetAttributeU32:
		w.write(inst, "%s", w.attrLoad(inst, true))
	case ir.OpSetAttribute:
		w.attrStore(inst)
	case ir.OpGetAttributeIndexed:
		w.write(inst, "%s(%s, %s)",
			w.indexedLoadHelper(), w.val(inst.Arg(0)), w.val(inst.Arg(1)))
	case ir.OpSetAttributeIndexed:
		w.discard("%s(%s, %s, %s)",
			w.indexedStoreHelper(), w.val(inst.Arg(0)), w.val(inst.Arg(1)), w.val(inst.Arg(2)))
	case ir.OpGetPatch:
		w.write(inst, "%s", w.patchRef(inst.Arg(0).Patch()))
	case ir.OpSetPatch:
		w.line("%s = %s;", w.patchRef(inst.Arg(0).Patch()), w.val(inst.Arg(1)))
	case ir.OpSetFragColor:
		rt := inst.Arg(0).U32()
		comp := inst.Arg(1).U32()
		w.line("frag_color%d.%c = %s;", rt, "xyzw"[comp], w.val(inst.Arg(2)))
	case ir.OpSetFragDepth:
		w.line("gl_FragDepth = %s;", w.val(inst.Arg(0)))
	case ir.OpSetSampleMask:
		w.line("gl_SampleMask[0] = int(%s);", w.val(inst.Arg(0)))
	default:
		return false
	}
	return true
}

// inputIndex renders the gl_in style vertex subscript for arrayed input
// stages and empty elsewhere.
func (w *writer) inputIndex(vertex ir.Value) string {
	if !w.arrayedInputs() {
		return ""
	}
	return fmt.Sprintf("[%s]", w.val(vertex))
}

func (w *writer) attrLoad(inst *ir.Inst, asU32 bool) string {
	a := inst.Arg(0).Attribute()
	vertex := inst.Arg(1)
	comp := "xyzw"[a.Component()]

	switch {
	case a.IsGeneric():
		expr := fmt.Sprintf("in_attr%d%s.%c", a.GenericIndex(), w.inputIndex(vertex), comp)
		typ := shader.AttributeFloat
		if w.p.Stage == shader.StageVertexA || w.p.Stage == shader.StageVertexB {
			typ = w.rt.GenericInputTypes[a.GenericIndex()]
		}
		switch typ {
		case shader.AttributeSignedInt:
			// Declared ivec4; the raw bits travel as a float.
			if asU32 {
				return fmt.Sprintf("uint(%s)", expr)
			}
			return fmt.Sprintf("itof(%s)", expr)
		case shader.AttributeUnsignedInt:
			if asU32 {
				return expr
			}
			return fmt.Sprintf("utof(%s)", expr)
		case shader.AttributeDisabled:
			if asU32 {
				return "0u"
			}
			return "0.0"
		default:
			if asU32 {
				return fmt.Sprintf("ftou(%s)", expr)
			}
			return expr
		}

	case a >= ir.AttributePositionX && a <= ir.AttributePositionW:
		var expr string
		if w.p.Stage == shader.StageFragment {
			expr = fmt.Sprintf("gl_FragCoord.%c", comp)
		} else if w.arrayedInputs() {
			expr = fmt.Sprintf("gl_in%s.gl_Position.%c", w.inputIndex(vertex), comp)
		} else {
			expr = fmt.Sprintf("gl_Position.%c", comp)
		}
		return wrapU32(expr, asU32)

	case a >= ir.AttributeClipDistance0 && a <= ir.AttributeClipDistance7:
		return wrapU32(fmt.Sprintf("gl_ClipDistance[%d]", a-ir.AttributeClipDistance0), asU32)
	case a.IsLegacy():
		return wrapU32(w.legacyRef(a, true), asU32)
	}

	switch a {
	case ir.AttributePrimitiveID:
		if w.p.Stage == shader.StageGeometry {
			return intAttr("gl_PrimitiveIDIn", asU32)
		}
		return intAttr("gl_PrimitiveID", asU32)
	case ir.AttributeTessCoordU:
		return wrapU32("gl_TessCoord.x", asU32)
	case ir.AttributeTessCoordV:
		return wrapU32("gl_TessCoord.y", asU32)
	case ir.AttributeInstanceID:
		return intAttr("gl_InstanceID", asU32)
	case ir.AttributeVertexID:
		return intAttr("gl_VertexID", asU32)
	case ir.AttributeFrontFace:
		if asU32 {
			return "(gl_FrontFacing ? 0xffffffffu : 0u)"
		}
		return "itof(gl_FrontFacing ? -1 : 0)"
	case ir.AttributePointSize:
		return wrapU32("gl_PointSize", asU32)
	}
	w.failf("read of attribute %v", a)
	return "0.0"
}

func wrapU32(expr string, asU32 bool) string {
	if asU32 {
		return fmt.Sprintf("ftou(%s)", expr)
	}
	return expr
}

func intAttr(name string, asU32 bool) string {
	if asU32 {
		return fmt.Sprintf("uint(%s)", name)
	}
	return fmt.Sprintf("itof(%s)", name)
}

// legacyRef maps removed fixed function varyings onto the compatibility
// profile builtins.
func (w *writer) legacyRef(a ir.Attribute, load bool) string {
	frag := w.p.Stage == shader.StageFragment && load
	base, name := ir.AttributeFrontDiffuseR, "gl_FrontColor"
	switch {
	case a == ir.AttributeFogCoordinate:
		return "gl_FogFragCoord"
	case a >= ir.AttributeBackSpecularR:
		base, name = ir.AttributeBackSpecularR, "gl_BackSecondaryColor"
	case a >= ir.AttributeBackDiffuseR:
		base, name = ir.AttributeBackDiffuseR, "gl_BackColor"
	case a >= ir.AttributeFrontSpecularR:
		base, name = ir.AttributeFrontSpecularR, "gl_FrontSecondaryColor"
		if frag {
			name = "gl_SecondaryColor"
		}
	default:
		if frag {
			name = "gl_Color"
		}
	}
	return fmt.Sprintf("%s.%c", name, "xyzw"[a-base])
}

func (w *writer) attrStore(inst *ir.Inst) {
	a := inst.Arg(0).Attribute()
	v := w.val(inst.Arg(1))
	comp := "xyzw"[a.Component()]

	switch {
	case a.IsGeneric():
		idx := ""
		if w.p.Stage == shader.StageTessellationControl {
			idx = "[gl_InvocationID]"
		}
		w.line("out_attr%d%s.%c = %s;", a.GenericIndex(), idx, comp, v)
		return
	case a >= ir.AttributePositionX && a <= ir.AttributePositionW:
		w.line("gl_Position.%c = %s;", comp, v)
		return
	case a >= ir.AttributeClipDistance0 && a <= ir.AttributeClipDistance7:
		w.line("gl_ClipDistance[%d] = %s;", a-ir.AttributeClipDistance0, v)
		return
	case a.IsLegacy():
		w.line("%s = %s;", w.legacyRef(a, false), v)
		return
	}

	switch a {
	case ir.AttributePointSize:
		w.line("gl_PointSize = %s;", v)
	case ir.AttributeLayer:
		w.line("gl_Layer = ftoi(%s);", v)
	case ir.AttributeViewportIndex:
		w.line("gl_ViewportIndex = ftoi(%s);", v)
	default:
		w.failf("write of attribute %v", a)
	}
}

// patchRef maps patch words onto tessellation levels and the generic patch
// varyings. Words 0..3 are the outer levels, 4..5 the inner ones, and the
// generic vec4s start at word 8.
func (w *writer) patchRef(p ir.Patch) string {
	word := uint32(p)
	switch {
	case word < 4:
		return fmt.Sprintf("gl_TessLevelOuter[%d]", word)
	case word < 6:
		return fmt.Sprintf("gl_TessLevelInner[%d]", word-4)
	case word < 8:
		w.failf("patch word %d", word)
		return "gl_TessLevelInner[0]"
	default:
		return fmt.Sprintf("patch%d.%c", word/4, "xyzw"[word%4])
	}
}

// indexedLoadHelper emits a switch over the attribute memory map for
// runtime indexed loads. Only the attributes this stage can address are
// covered; everything else reads zero.
func (w *writer) indexedLoadHelper() string {
	body := "float idx_attr_load(uint addr, uint vtx) {\n    switch (addr >> 2u) {\n"
	for c := 0; c < 4; c++ {
		body += fmt.Sprintf("    case %du: return %s;\n",
			28+c, w.indexedPositionRef(c))
	}
	for i := uint32(0); i < 32; i++ {
		if !w.p.Info.Loads.AnyComponent(uint(ir.GenericAttribute(i))) {
			continue
		}
		for c := 0; c < 4; c++ {
			body += fmt.Sprintf("    case %du: return in_attr%d%s.%c;\n",
				32+i*4+uint32(c), i, w.indexedVertexRef(), "xyzw"[c])
		}
	}
	body += "    default: return 0.0;\n    }\n}\n"
	return w.helper("idx_attr_load", body)
}

func (w *writer) indexedPositionRef(c int) string {
	if w.p.Stage == shader.StageFragment {
		return fmt.Sprintf("gl_FragCoord.%c", "xyzw"[c])
	}
	if w.arrayedInputs() {
		return fmt.Sprintf("gl_in[vtx].gl_Position.%c", "xyzw"[c])
	}
	return fmt.Sprintf("gl_Position.%c", "xyzw"[c])
}

func (w *writer) indexedVertexRef() string {
	if w.arrayedInputs() {
		return "[vtx]"
	}
	return ""
}

func (w *writer) indexedStoreHelper() string {
	idx := ""
	if w.p.Stage == shader.StageTessellationControl {
		idx = "[gl_InvocationID]"
	}
	body := "void idx_attr_store(uint addr, float v, uint vtx) {\n    switch (addr >> 2u) {\n"
	for c := 0; c < 4; c++ {
		body += fmt.Sprintf("    case %du: gl_Position.%c = v; return;\n", 28+c, "xyzw"[c])
	}
	for i := uint32(0); i < 32; i++ {
		if !w.p.Info.Stores.AnyComponent(uint(ir.GenericAttribute(i))) {
			continue
		}
		for c := 0; c < 4; c++ {
			body += fmt.Sprintf("    case %du: out_attr%d%s.%c = v; return;\n",
				32+i*4+uint32(c), i, idx, "xyzw"[c])
		}
	}
	body += "    default: return;\n    }\n}\n"
	return w.helper("idx_attr_store", body)
}
