// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"tlog.app/go/tlog"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

func (w *writer) writeExtensions(out *strings.Builder) {
	info := &w.p.Info
	ext := func(name string) { fmt.Fprintf(out, "#extension %s : enable\n", name) }

	if info.UsesFP16 {
		if w.profile.SupportGLNvGpuShader5 {
			ext("GL_NV_gpu_shader5")
		} else if w.profile.SupportGLAmdGpuShaderHalfFloat {
			ext("GL_AMD_gpu_shader_half_float")
		}
	}
	if info.UsesInt64 {
		ext("GL_ARB_gpu_shader_int64")
	}
	if info.UsesSubgroupVote {
		ext("GL_ARB_shader_group_vote")
	}
	if info.UsesSubgroupInvocationID || info.UsesSubgroupShuffles || info.UsesFswzadd {
		ext("GL_ARB_shader_ballot")
	}
	if info.UsesSubgroupShuffles || info.UsesFswzadd {
		ext("GL_NV_shader_thread_shuffle")
	}
	if info.UsesSubgroupMask {
		ext("GL_NV_shader_thread_group")
	}
	if info.UsesAtomicF32Add {
		ext("GL_NV_shader_atomic_float")
	}
	if info.UsesAtomicF16x2Add || info.UsesAtomicF16x2Min || info.UsesAtomicF16x2Max {
		ext("GL_NV_shader_atomic_fp16_vector")
	}
	if info.UsesInt64BitAtomics && w.profile.SupportInt64Atomics {
		ext("GL_NV_shader_atomic_int64")
	}
	if info.UsesSparseResidency && w.profile.SupportGLSparseTextures {
		ext("GL_ARB_sparse_texture2")
	}
	if info.UsesTypelessImageReads && w.profile.SupportTypelessImageLoads {
		ext("GL_EXT_shader_image_load_formatted")
	}
	if info.UsesShadowLod && w.profile.SupportGLTextureShadowLod {
		ext("GL_EXT_texture_shadow_lod")
	}
	if (info.UsesLayer || info.UsesViewportIndex) && w.p.Stage != shader.StageGeometry &&
		w.profile.SupportViewportIndexLayerNonGeometry {
		ext("GL_ARB_shader_viewport_layer_array")
	}
	if w.p.IsGeometryPassthrough && w.profile.SupportGeometryShaderPassthrough {
		ext("GL_NV_geometry_shader_passthrough")
	}
}

func (w *writer) emitDeclarations() {
	w.stageLayouts()
	w.inputDecls()
	w.outputDecls()
	w.patchDecls()
	w.bufferDecls()
	w.textureDecls()
	w.imageDecls()
	w.sharedDecl()
}

func (w *writer) stageLayouts() {
	h := &w.header
	switch w.p.Stage {
	case shader.StageCompute:
		ws := w.p.WorkgroupSize
		fmt.Fprintf(h, "layout(local_size_x=%d, local_size_y=%d, local_size_z=%d) in;\n",
			ws[0], ws[1], ws[2])
	case shader.StageGeometry:
		fmt.Fprintf(h, "layout(%s) in;\n", inputPrimitive(w.rt.InputTopology))
		if w.p.Invocations > 1 {
			fmt.Fprintf(h, "layout(invocations = %d) in;\n", w.p.Invocations)
		}
		fmt.Fprintf(h, "layout(%s, max_vertices = %d) out;\n",
			outputPrimitive(w.p.OutputTopology), w.p.OutputVertices)
	case shader.StageTessellationControl:
		fmt.Fprintf(h, "layout(vertices = %d) out;\n", w.p.OutputVertices)
	case shader.StageTessellationEval:
		fmt.Fprintf(h, "layout(%s, %s, %s) in;\n",
			tessPrimitive(w.rt.TessPrimitive), tessSpacing(w.rt.TessSpacing),
			tessWinding(w.rt.TessClockwise))
	case shader.StageFragment:
		if w.rt.ForceEarlyZ {
			h.WriteString("layout(early_fragment_tests) in;\n")
		}
	}
}

func inputPrimitive(t shader.InputTopology) string {
	switch t {
	case shader.InputLines:
		return "lines"
	case shader.InputLinesAdjacency:
		return "lines_adjacency"
	case shader.InputTriangles:
		return "triangles"
	case shader.InputTrianglesAdjacency:
		return "triangles_adjacency"
	default:
		return "points"
	}
}

func outputPrimitive(t shader.OutputTopology) string {
	switch t {
	case shader.TopologyLineStrip:
		return "line_strip"
	case shader.TopologyTriangleStrip:
		return "triangle_strip"
	default:
		return "points"
	}
}

func tessPrimitive(t shader.TessPrimitive) string {
	switch t {
	case shader.TessIsolines:
		return "isolines"
	case shader.TessQuads:
		return "quads"
	default:
		return "triangles"
	}
}

func tessSpacing(s shader.TessSpacing) string {
	switch s {
	case shader.SpacingFractionalOdd:
		return "fractional_odd_spacing"
	case shader.SpacingFractionalEven:
		return "fractional_even_spacing"
	default:
		return "equal_spacing"
	}
}

func tessWinding(clockwise bool) string {
	if clockwise {
		return "cw"
	}
	return "ccw"
}

// arrayedInputs reports whether generic inputs are per-vertex arrays.
func (w *writer) arrayedInputs() bool {
	switch w.p.Stage {
	case shader.StageGeometry, shader.StageTessellationControl, shader.StageTessellationEval:
		return true
	}
	return false
}

func (w *writer) inputDecls() {
	info := &w.p.Info
	suffix := ""
	if w.arrayedInputs() {
		suffix = "[]"
	}
	for i := uint32(0); i < 32; i++ {
		base := uint(ir.GenericAttribute(i))
		if !info.Loads.AnyComponent(base) {
			continue
		}
		typ := "vec4"
		qualifier := ""
		switch w.p.Stage {
		case shader.StageVertexA, shader.StageVertexB:
			switch w.rt.GenericInputTypes[i] {
			case shader.AttributeDisabled:
				continue
			case shader.AttributeSignedInt:
				typ = "ivec4"
			case shader.AttributeUnsignedInt:
				typ = "uvec4"
			}
		case shader.StageFragment:
			if sph := w.env.SPH(); sph != nil {
				switch sph.PsGenericInput(int(i), 0) {
				case shader.PixelImapConstant:
					qualifier = "flat "
				case shader.PixelImapScreenLinear:
					qualifier = "noperspective "
				}
			}
		default:
			if !w.rt.PreviousStageStores.AnyComponent(base) {
				continue
			}
		}
		passthrough := ""
		if w.p.IsGeometryPassthrough && w.p.Stage == shader.StageGeometry {
			passthrough = ", passthrough"
		}
		fmt.Fprintf(&w.header, "layout(location = %d%s) %sin %s in_attr%d%s;\n",
			i, passthrough, qualifier, typ, i, suffix)
	}
	if w.p.IsGeometryPassthrough && w.p.Stage == shader.StageGeometry {
		w.header.WriteString("layout(passthrough) in gl_PerVertex { vec4 gl_Position; };\n")
	}
}

func (w *writer) outputDecls() {
	info := &w.p.Info
	if w.p.Stage == shader.StageFragment {
		for rt := 0; rt < 8; rt++ {
			used := w.profile.NeedDeclaredFragColors
			if sph := w.env.SPH(); sph != nil && sph.PsOmapTarget(rt) != 0 {
				used = true
			}
			if used {
				fmt.Fprintf(&w.header, "layout(location = %d) out vec4 frag_color%d;\n", rt, rt)
			}
		}
		return
	}
	suffix := ""
	if w.p.Stage == shader.StageTessellationControl {
		suffix = "[]"
	}
	for i := uint32(0); i < 32; i++ {
		if !info.Stores.AnyComponent(uint(ir.GenericAttribute(i))) {
			continue
		}
		fmt.Fprintf(&w.header, "layout(location = %d%s) out vec4 out_attr%d%s;\n",
			i, w.xfbQualifier(i), i, suffix)
	}
}

// xfbQualifier renders transform feedback layout entries for generic output
// i, or empty when the varying is not captured.
func (w *writer) xfbQualifier(i uint32) string {
	for c := i * 4; c < i*4+4; c++ {
		if int(c) >= len(w.rt.XfbVaryings) {
			break
		}
		v := w.rt.XfbVaryings[c]
		if v.Components == 0 {
			continue
		}
		return fmt.Sprintf(", xfb_buffer = %d, xfb_offset = %d, xfb_stride = %d",
			v.Buffer, v.Offset, v.Stride)
	}
	return ""
}

// Patch words 0..3 are the outer tessellation levels and 4..5 the inner
// ones; generic per-patch vec4s start at word 8.
func (w *writer) patchDecls() {
	info := &w.p.Info
	switch w.p.Stage {
	case shader.StageTessellationControl:
		for word := 8; word < ir.NumPatches; word += 4 {
			if info.StoresPatches[word] || info.StoresPatches[word+1] ||
				info.StoresPatches[word+2] || info.StoresPatches[word+3] {
				fmt.Fprintf(&w.header, "patch out vec4 patch%d;\n", word/4)
			}
		}
	case shader.StageTessellationEval:
		for word := 8; word < ir.NumPatches; word += 4 {
			if info.LoadsPatches[word] || info.LoadsPatches[word+1] ||
				info.LoadsPatches[word+2] || info.LoadsPatches[word+3] {
				fmt.Fprintf(&w.header, "patch in vec4 patch%d;\n", word/4)
			}
		}
	}
}

// MaxCbufWords is the std140 vec4 count covering the 64 KiB constant
// buffer window.
const maxCbufVec4 = 0x10000 / 16

func (w *writer) bufferDecls() {
	info := &w.p.Info
	for _, d := range info.ConstantBuffers {
		fmt.Fprintf(&w.header,
			"layout(std140, binding = %d) uniform %s_cbuf_%d { vec4 %s_cbuf%d[%d]; };\n",
			d.Index, w.prefix, d.Index, w.prefix, d.Index, maxCbufVec4)
	}
	for i, d := range info.StorageBuffers {
		access := "readonly "
		if d.IsWritten {
			access = ""
		}
		fmt.Fprintf(&w.header,
			"layout(std430, binding = %d) %sbuffer %s_ssbo_%d { uint %s_ssbo%d[]; };\n",
			i, access, w.prefix, i, w.prefix, i)
	}
}

func (w *writer) textureDecls() {
	info := &w.p.Info
	binding := 0
	for i := range info.TextureBuffers {
		fmt.Fprintf(&w.header, "layout(binding = %d) uniform samplerBuffer texb%d;\n", binding, i)
		binding++
	}
	for i, d := range info.Textures {
		fmt.Fprintf(&w.header, "layout(binding = %d) uniform %s tex%d;\n",
			binding, samplerType(&d), i)
		binding++
	}
}

func samplerType(d *ir.TextureDescriptor) string {
	base := "sampler2D"
	switch d.Type {
	case shader.TextureColor1D:
		base = "sampler1D"
	case shader.TextureColorArray1D:
		base = "sampler1DArray"
	case shader.TextureColor2D:
		base = "sampler2D"
		if d.IsMultisample {
			base = "sampler2DMS"
		}
	case shader.TextureColorArray2D:
		base = "sampler2DArray"
		if d.IsMultisample {
			base = "sampler2DMSArray"
		}
	case shader.TextureColor3D:
		base = "sampler3D"
	case shader.TextureColorCube:
		base = "samplerCube"
	case shader.TextureColorArrayCube:
		base = "samplerCubeArray"
	case shader.TextureColor2DRect:
		base = "sampler2DRect"
	case shader.TextureBuffer:
		base = "samplerBuffer"
	}
	if d.IsDepth {
		base += "Shadow"
	}
	return base
}

func (w *writer) imageDecls() {
	info := &w.p.Info
	binding := 0
	for i, d := range info.ImageBuffers {
		fmt.Fprintf(&w.header, "layout(binding = %d%s) uniform uimageBuffer imgb%d;\n",
			binding, formatQualifier(d.Format), i)
		binding++
	}
	for i, d := range info.Images {
		fmt.Fprintf(&w.header, "layout(binding = %d%s) uniform %s img%d;\n",
			binding, formatQualifier(d.Format), imageType(d.Type), i)
		binding++
	}
}

func formatQualifier(f shader.ImageFormat) string {
	switch f {
	case shader.ImageFormatR8Uint:
		return ", r8ui"
	case shader.ImageFormatR8Sint:
		return ", r8i"
	case shader.ImageFormatR16Uint:
		return ", r16ui"
	case shader.ImageFormatR16Sint:
		return ", r16i"
	case shader.ImageFormatR32Uint:
		return ", r32ui"
	case shader.ImageFormatR32G32Uint:
		return ", rg32ui"
	case shader.ImageFormatR32G32B32A32Uint:
		return ", rgba32ui"
	default:
		// Typeless images rely on GL_EXT_shader_image_load_formatted.
		return ""
	}
}

func imageType(t shader.TextureType) string {
	switch t {
	case shader.TextureColor1D:
		return "uimage1D"
	case shader.TextureColorArray1D:
		return "uimage1DArray"
	case shader.TextureColorArray2D:
		return "uimage2DArray"
	case shader.TextureColor3D:
		return "uimage3D"
	case shader.TextureBuffer:
		return "uimageBuffer"
	default:
		return "uimage2D"
	}
}

func (w *writer) sharedDecl() {
	size := w.p.SharedMemorySize
	if size == 0 && !w.p.Info.UsesSharedMemory {
		return
	}
	if size == 0 {
		size = 4
	}
	if max := w.profile.GLMaxComputeSmemSize; max > 0 && size > max {
		tlog.Printw("shared memory clamped", "requested", size, "limit", max)
		size = max
	}
	fmt.Fprintf(&w.header, "shared uint smem[%d];\n", (size+3)/4)
}
