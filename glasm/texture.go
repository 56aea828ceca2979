// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
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
		w.sample(inst, info)
	case ir.OpImageSampleExplicitLod:
		w.sampleLod(inst, info)
	case ir.OpImageSampleDrefImplicitLod:
		w.sampleDref(inst, info)
	case ir.OpImageSampleDrefExplicitLod:
		w.sampleDrefLod(inst, info)
	case ir.OpImageGather:
		coord := w.vec(inst.Arg(1))
		w.op("TXG.F %s, %s, texture[%d].%c, %s", w.reg(inst), coord,
			info.DescriptorIndex, "xyzw"[info.GatherComponent], w.target(info))
	case ir.OpImageGatherDref:
		def := w.packDref(inst.Arg(1), inst.Arg(4))
		w.op("TXG.F %s, %s, texture[%d], %s", w.reg(inst), regName(def),
			info.DescriptorIndex, w.shadowTarget(info))
		w.freeScratch(def)
	case ir.OpImageFetch:
		w.fetch(inst, info)
	case ir.OpImageQueryDimensions:
		w.op("TXQ %s, %s, texture[%d], %s", w.reg(inst), w.val(inst.Arg(1)),
			info.DescriptorIndex, w.target(info))
	case ir.OpImageQueryLod:
		dst := w.reg(inst)
		w.op("LOD.F %s.xy, %s, texture[%d], %s", dst, w.vec(inst.Arg(1)),
			info.DescriptorIndex, w.target(info))
		w.op("MOV.U %s.z, 0", dst)
		w.op("MOV.U %s.w, 0", dst)
	case ir.OpImageGradient:
		w.op("TXD.F %s, %s, %s, %s, texture[%d], %s", w.reg(inst),
			w.vec(inst.Arg(1)), w.vec(inst.Arg(2)), w.vec(inst.Arg(3)),
			info.DescriptorIndex, w.target(info))
	case ir.OpImageRead:
		w.op("LOADIM.U32X4 %s, %s, image[%d], %s", w.reg(inst),
			w.vec(inst.Arg(1)), info.DescriptorIndex, w.target(info))
	case ir.OpImageWrite:
		w.op("STOREIM.U32X4 image[%d], %s, %s, %s", info.DescriptorIndex,
			w.vec(inst.Arg(2)), w.vec(inst.Arg(1)), w.target(info))
	default:
		w.imageAtomic(inst, info)
	}
	return true
}

func (w *writer) sample(inst *ir.Inst, info ir.TextureInstInfo) {
	if info.HasBias {
		def := w.packExtra(inst.Arg(1), inst.Arg(2), 3)
		w.op("TXB.F %s, %s, texture[%d], %s", w.reg(inst), regName(def),
			info.DescriptorIndex, w.target(info))
		w.freeScratch(def)
		return
	}
	w.op("TEX.F %s, %s, texture[%d], %s", w.reg(inst), w.vec(inst.Arg(1)),
		info.DescriptorIndex, w.target(info))
}

func (w *writer) sampleLod(inst *ir.Inst, info ir.TextureInstInfo) {
	def := w.packExtra(inst.Arg(1), inst.Arg(2), 3)
	w.op("TXL.F %s, %s, texture[%d], %s", w.reg(inst), regName(def),
		info.DescriptorIndex, w.target(info))
	w.freeScratch(def)
}

func (w *writer) sampleDref(inst *ir.Inst, info ir.TextureInstInfo) {
	def := w.packDref(inst.Arg(1), inst.Arg(2))
	w.op("TEX.F %s.x, %s, texture[%d], %s", w.reg(inst), regName(def),
		info.DescriptorIndex, w.shadowTarget(info))
	w.freeScratch(def)
}

func (w *writer) sampleDrefLod(inst *ir.Inst, info ir.TextureInstInfo) {
	// The reference occupies the component an explicit lod would need on
	// arrayed and cube targets.
	if coordComponents(inst.Arg(1)) > 2 {
		w.failf("shadow sample with explicit lod on %v", info.Type)
		return
	}
	def := w.packDref(inst.Arg(1), inst.Arg(2))
	w.op("MOV.F %s.w, %s", regName(def), w.val(inst.Arg(3)))
	w.op("TXL.F %s.x, %s, texture[%d], %s", w.reg(inst), regName(def),
		info.DescriptorIndex, w.shadowTarget(info))
	w.freeScratch(def)
}

func (w *writer) fetch(inst *ir.Inst, info ir.TextureInstInfo) {
	target := w.target(info)
	extra := inst.Arg(3)
	if w.fetchIsMultisample(info) {
		target = "2DMS"
		extra = inst.Arg(4)
	}
	if info.Type == shader.TextureBuffer || info.Type == shader.TextureColor2DRect {
		w.op("TXF.F %s, %s, texture[%d], %s", w.reg(inst), w.vec(inst.Arg(1)),
			info.DescriptorIndex, target)
		return
	}
	def := w.packExtra(inst.Arg(1), extra, 3)
	w.op("TXF.F %s, %s, texture[%d], %s", w.reg(inst), regName(def),
		info.DescriptorIndex, target)
	w.freeScratch(def)
}

func (w *writer) fetchIsMultisample(info ir.TextureInstInfo) bool {
	if int(info.DescriptorIndex) >= len(w.p.Info.Textures) {
		return false
	}
	return w.p.Info.Textures[info.DescriptorIndex].IsMultisample
}

func (w *writer) imageAtomic(inst *ir.Inst, info ir.TextureInstInfo) {
	kind := strings.TrimPrefix(inst.Opcode().String(), "ImageAtomic")
	op, ok := atomicAsmOps[kind]
	if !ok {
		w.failf("image atomic %s", kind)
		return
	}
	w.op("ATOMIM.%s %s.x, %s, %s, image[%d], %s", op, w.reg(inst),
		w.val(inst.Arg(2)), w.vec(inst.Arg(1)), info.DescriptorIndex, w.target(info))
}

func coordComponents(v ir.Value) int {
	switch v.Resolve().Type() {
	case ir.TypeU32x2, ir.TypeF32x2:
		return 2
	case ir.TypeU32x3, ir.TypeF32x3:
		return 3
	case ir.TypeU32x4, ir.TypeF32x4:
		return 4
	}
	return 1
}

// packExtra copies the coordinates into a scratch register and places an
// extra operand, such as a bias or lod, in the given component.
func (w *writer) packExtra(coords, extra ir.Value, comp int) uint32 {
	def := w.alloc(false)
	w.op("MOV.U %s, %s", regName(def), w.vec(coords))
	w.op("MOV.U %s.%c, %s", regName(def), "xyzw"[comp], w.val(extra))
	return def
}

// packDref folds the depth reference into the coordinate component the
// shadow targets expect: .z for one and two coordinate lookups, .w above.
func (w *writer) packDref(coords, dref ir.Value) uint32 {
	comp := 2
	if coordComponents(coords) > 2 {
		comp = 3
	}
	return w.packExtra(coords, dref, comp)
}

func (w *writer) target(info ir.TextureInstInfo) string {
	switch info.Type {
	case shader.TextureColor1D:
		return "1D"
	case shader.TextureColorArray1D:
		return "ARRAY1D"
	case shader.TextureColor2D:
		return "2D"
	case shader.TextureColorArray2D:
		return "ARRAY2D"
	case shader.TextureColor3D:
		return "3D"
	case shader.TextureColorCube:
		return "CUBE"
	case shader.TextureColorArrayCube:
		return "ARRAYCUBE"
	case shader.TextureColor2DRect:
		return "RECT"
	case shader.TextureBuffer:
		return "BUFFER"
	}
	w.failf("texture target %v", info.Type)
	return "2D"
}

func (w *writer) shadowTarget(info ir.TextureInstInfo) string {
	switch info.Type {
	case shader.TextureColor1D:
		return "SHADOW1D"
	case shader.TextureColorArray1D:
		return "SHADOWARRAY1D"
	case shader.TextureColor2D:
		return "SHADOW2D"
	case shader.TextureColorArray2D:
		return "SHADOWARRAY2D"
	case shader.TextureColorCube:
		return "SHADOWCUBE"
	case shader.TextureColor2DRect:
		return "SHADOWRECT"
	}
	w.failf("shadow target %v", info.Type)
	return "SHADOW2D"
}
