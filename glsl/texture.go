// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

func (w *writer) emitImage(inst *ir.Inst) bool {
	op := inst.Opcode()
	switch op {
	case ir.OpImageSampleImplicitLod, ir.OpImageSampleExplicitLod,
		ir.OpImageSampleDrefImplicitLod, ir.OpImageSampleDrefExplicitLod,
		ir.OpImageGather, ir.OpImageGatherDref, ir.OpImageFetch,
		ir.OpImageQueryDimensions, ir.OpImageQueryLod, ir.OpImageGradient,
		ir.OpImageRead, ir.OpImageWrite:
	case ir.OpImageAtomicIAdd32, ir.OpImageAtomicSMin32, ir.OpImageAtomicUMin32,
		ir.OpImageAtomicSMax32, ir.OpImageAtomicUMax32, ir.OpImageAtomicInc32,
		ir.OpImageAtomicDec32, ir.OpImageAtomicAnd32, ir.OpImageAtomicOr32,
		ir.OpImageAtomicXor32, ir.OpImageAtomicExchange32:
	default:
		if name := op.String(); strings.HasPrefix(name, "BindlessImage") ||
			strings.HasPrefix(name, "BoundImage") {
			w.fail(shader.Logic("%v survived descriptor promotion", op))
			return true
		}
		return false
	}

	info := inst.TextureInfo()
	if !inst.Arg(0).IsImmediate() {
		w.failf("dynamic descriptor array index for %v", op)
		return true
	}

	switch op {
	case ir.OpImageSampleImplicitLod:
		w.sampleImplicit(inst, info)
	case ir.OpImageSampleExplicitLod:
		w.sampleExplicit(inst, info)
	case ir.OpImageSampleDrefImplicitLod:
		w.sampleDrefImplicit(inst, info)
	case ir.OpImageSampleDrefExplicitLod:
		w.sampleDrefExplicit(inst, info)
	case ir.OpImageGather:
		w.gather(inst, info)
	case ir.OpImageGatherDref:
		w.gatherDref(inst, info)
	case ir.OpImageFetch:
		w.fetch(inst, info)
	case ir.OpImageQueryDimensions:
		w.queryDimensions(inst, info)
	case ir.OpImageQueryLod:
		w.write(inst, "vec4(textureQueryLod(%s, %s), 0.0, 0.0)",
			w.samplerName(info), w.val(inst.Arg(1)))
	case ir.OpImageGradient:
		w.write(inst, "textureGrad(%s, %s, %s, %s)", w.samplerName(info),
			w.val(inst.Arg(1)), w.val(inst.Arg(2)), w.val(inst.Arg(3)))
	case ir.OpImageRead:
		w.write(inst, "imageLoad(%s, %s)", w.imageName(info), w.intCoords(inst.Arg(1)))
	case ir.OpImageWrite:
		w.discard("imageStore(%s, %s, %s)", w.imageName(info),
			w.intCoords(inst.Arg(1)), w.val(inst.Arg(2)))
	default:
		w.imageAtomic(inst, info)
	}
	return true
}

// samplerName resolves a sampling instruction to its combined sampler.
func (w *writer) samplerName(info ir.TextureInstInfo) string {
	if info.Type == shader.TextureBuffer {
		return fmt.Sprintf("texb%d", info.DescriptorIndex)
	}
	return fmt.Sprintf("tex%d", info.DescriptorIndex)
}

func (w *writer) imageName(info ir.TextureInstInfo) string {
	if info.Type == shader.TextureBuffer {
		return fmt.Sprintf("imgb%d", info.DescriptorIndex)
	}
	return fmt.Sprintf("img%d", info.DescriptorIndex)
}

// intCoords casts an unsigned coordinate vector to the signed form the
// fetch and image builtins take.
func (w *writer) intCoords(v ir.Value) string {
	s := w.val(v)
	switch v.Resolve().Type() {
	case ir.TypeU32:
		return fmt.Sprintf("int(%s)", s)
	case ir.TypeU32x2:
		return fmt.Sprintf("ivec2(%s)", s)
	case ir.TypeU32x3:
		return fmt.Sprintf("ivec3(%s)", s)
	case ir.TypeU32x4:
		return fmt.Sprintf("ivec4(%s)", s)
	default:
		return s
	}
}

// shadowCoords folds the reference value into the coordinate vector the
// way the shadow sampler overloads expect. Cube arrays keep the reference
// as a separate argument and return false.
func shadowCoords(coords ir.Value, coordsExpr, drefExpr string) (string, bool) {
	switch coords.Resolve().Type() {
	case ir.TypeF32:
		return fmt.Sprintf("vec3(%s, 0.0, %s)", coordsExpr, drefExpr), true
	case ir.TypeF32x2:
		return fmt.Sprintf("vec3(%s, %s)", coordsExpr, drefExpr), true
	case ir.TypeF32x3:
		return fmt.Sprintf("vec4(%s, %s)", coordsExpr, drefExpr), true
	default:
		return coordsExpr, false
	}
}

func (w *writer) sampleImplicit(inst *ir.Inst, info ir.TextureInstInfo) {
	tex := w.samplerName(info)
	coords := w.val(inst.Arg(1))
	if info.HasBias {
		w.write(inst, "texture(%s, %s, %s)", tex, coords, w.val(inst.Arg(2)))
		return
	}
	w.write(inst, "texture(%s, %s)", tex, coords)
}

func (w *writer) sampleExplicit(inst *ir.Inst, info ir.TextureInstInfo) {
	tex := w.samplerName(info)
	if info.Type == shader.TextureColor2DRect {
		// Rectangle samplers have no mip chain.
		w.write(inst, "texture(%s, %s)", tex, w.val(inst.Arg(1)))
		return
	}
	w.write(inst, "textureLod(%s, %s, %s)", tex, w.val(inst.Arg(1)), w.val(inst.Arg(2)))
}

func (w *writer) sampleDrefImplicit(inst *ir.Inst, info ir.TextureInstInfo) {
	tex := w.samplerName(info)
	coords, folded := shadowCoords(inst.Arg(1), w.val(inst.Arg(1)), w.val(inst.Arg(2)))
	if folded {
		w.write(inst, "texture(%s, %s)", tex, coords)
		return
	}
	w.write(inst, "texture(%s, %s, %s)", tex, coords, w.val(inst.Arg(2)))
}

func (w *writer) sampleDrefExplicit(inst *ir.Inst, info ir.TextureInstInfo) {
	tex := w.samplerName(info)
	coordsVal := inst.Arg(1)
	coords, folded := shadowCoords(coordsVal, w.val(coordsVal), w.val(inst.Arg(2)))
	lod := w.val(inst.Arg(3))
	t := coordsVal.Resolve().Type()
	if folded && (t == ir.TypeF32 || t == ir.TypeF32x2) {
		w.write(inst, "textureLod(%s, %s, %s)", tex, coords, lod)
		return
	}
	if !w.profile.SupportGLTextureShadowLod {
		// No explicit lod overload for this shadow sampler; the implicit
		// form is the closest the host can do.
		if folded {
			w.write(inst, "texture(%s, %s)", tex, coords)
		} else {
			w.write(inst, "texture(%s, %s, %s)", tex, coords, w.val(inst.Arg(2)))
		}
		return
	}
	if folded {
		w.write(inst, "textureLod(%s, %s, %s)", tex, coords, lod)
		return
	}
	w.write(inst, "textureLod(%s, %s, %s, %s)", tex, coords, w.val(inst.Arg(2)), lod)
}

func (w *writer) gather(inst *ir.Inst, info ir.TextureInstInfo) {
	w.write(inst, "textureGather(%s, %s, %d)",
		w.samplerName(info), w.val(inst.Arg(1)), info.GatherComponent)
}

func (w *writer) gatherDref(inst *ir.Inst, info ir.TextureInstInfo) {
	w.write(inst, "textureGather(%s, %s, %s)",
		w.samplerName(info), w.val(inst.Arg(1)), w.val(inst.Arg(4)))
}

func (w *writer) fetch(inst *ir.Inst, info ir.TextureInstInfo) {
	tex := w.samplerName(info)
	coords := w.intCoords(inst.Arg(1))
	switch {
	case info.Type == shader.TextureBuffer:
		w.write(inst, "texelFetch(%s, %s)", tex, coords)
	case w.fetchIsMultisample(info):
		w.write(inst, "texelFetch(%s, %s, int(%s))", tex, coords, w.val(inst.Arg(4)))
	case info.Type == shader.TextureColor2DRect:
		w.write(inst, "texelFetch(%s, %s)", tex, coords)
	default:
		w.write(inst, "texelFetch(%s, %s, int(%s))", tex, coords, w.val(inst.Arg(3)))
	}
}

func (w *writer) fetchIsMultisample(info ir.TextureInstInfo) bool {
	if int(info.DescriptorIndex) >= len(w.p.Info.Textures) {
		return false
	}
	return w.p.Info.Textures[info.DescriptorIndex].IsMultisample
}

func (w *writer) queryDimensions(inst *ir.Inst, info ir.TextureInstInfo) {
	tex := w.samplerName(info)
	lod := fmt.Sprintf("int(%s)", w.val(inst.Arg(1)))
	switch info.Type {
	case shader.TextureBuffer:
		w.write(inst, "uvec4(uint(textureSize(%s)), 0u, 0u, 0u)", tex)
	case shader.TextureColor2DRect:
		w.write(inst, "uvec4(uvec2(textureSize(%s)), 0u, 0u)", tex)
	case shader.TextureColor1D:
		w.write(inst, "uvec4(uint(textureSize(%s, %s)), 0u, 0u, uint(textureQueryLevels(%s)))",
			tex, lod, tex)
	case shader.TextureColorArray1D, shader.TextureColor2D, shader.TextureColorCube:
		w.write(inst, "uvec4(uvec2(textureSize(%s, %s)), 0u, uint(textureQueryLevels(%s)))",
			tex, lod, tex)
	default:
		w.write(inst, "uvec4(uvec3(textureSize(%s, %s)), uint(textureQueryLevels(%s)))",
			tex, lod, tex)
	}
}

// imageAtomicBuiltins are the forms the uint image overloads cover; the
// signed and wrapping ones loop on imageAtomicCompSwap.
var imageAtomicBuiltins = map[ir.Opcode]string{
	ir.OpImageAtomicIAdd32:     "imageAtomicAdd",
	ir.OpImageAtomicUMin32:     "imageAtomicMin",
	ir.OpImageAtomicUMax32:     "imageAtomicMax",
	ir.OpImageAtomicAnd32:      "imageAtomicAnd",
	ir.OpImageAtomicOr32:       "imageAtomicOr",
	ir.OpImageAtomicXor32:      "imageAtomicXor",
	ir.OpImageAtomicExchange32: "imageAtomicExchange",
}

var imageCasExprs = map[ir.Opcode]string{
	ir.OpImageAtomicSMin32: "uint(min(int(img_old), int(%s)))",
	ir.OpImageAtomicSMax32: "uint(max(int(img_old), int(%s)))",
	ir.OpImageAtomicInc32:  "img_old >= %s ? 0u : img_old + 1u",
	ir.OpImageAtomicDec32:  "(img_old == 0u || img_old > %s) ? %s : img_old - 1u",
}

func (w *writer) imageAtomic(inst *ir.Inst, info ir.TextureInstInfo) {
	img := w.imageName(info)
	coords := w.intCoords(inst.Arg(1))
	value := w.val(inst.Arg(2))
	if fn, ok := imageAtomicBuiltins[inst.Opcode()]; ok {
		w.write(inst, "%s(%s, %s, %s)", fn, img, coords, value)
		return
	}
	expr, ok := imageCasExprs[inst.Opcode()]
	if !ok {
		w.failf("%v", inst.Opcode())
		return
	}
	w.imageCasScratch()
	if inst.Opcode() == ir.OpImageAtomicDec32 {
		expr = fmt.Sprintf(expr, value, value)
	} else {
		expr = fmt.Sprintf(expr, value)
	}
	w.line("do { img_old = imageLoad(%s, %s).x; img_new = %s; } "+
		"while (imageAtomicCompSwap(%s, %s, img_old, img_new) != img_old);",
		img, coords, expr, img, coords)
	w.write(inst, "img_old")
}

func (w *writer) imageCasScratch() {
	if w.imageCasDeclared {
		return
	}
	w.imageCasDeclared = true
	w.decls["uint"] = append(w.decls["uint"], "img_old", "img_new")
}
