// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"fmt"
	"strings"

	"github.com/gogpu/maxwell/shader"
)

var stageHeaders = [...]string{"vp", "vp", "tcp", "tep", "gp", "fp", "cp"}

// assemble stitches the program header, declarations, and body together.
// Declarations come last in generation order because the temporary high
// water marks are only known after the body is rendered.
func (w *writer) assemble() string {
	var out strings.Builder
	fmt.Fprintf(&out, "!!NV%s5.0\n", stageHeaders[w.p.Stage])
	w.writeOptions(&out)
	w.writeLayouts(&out)
	w.writeBindings(&out)
	w.writeTemps(&out)
	out.WriteString("main:\n")
	out.WriteString(w.body.String())
	out.WriteString("END\n")
	return out.String()
}

func (w *writer) writeOptions(out *strings.Builder) {
	info := &w.p.Info
	option := func(name string) { fmt.Fprintf(out, "OPTION %s;\n", name) }

	option("NV_internal")
	if len(info.StorageBuffers) > 0 && w.rt.GlasmUseStorageBuffers {
		option("NV_shader_storage_buffer")
	}
	if info.UsesFP64 || info.UsesInt64 {
		option("NV_gpu_program_fp64")
	}
	if info.UsesSubgroupInvocationID || info.UsesSubgroupMask || info.UsesSubgroupVote {
		option("NV_shader_thread_group")
	}
	if info.UsesSubgroupShuffles || info.UsesFswzadd {
		option("NV_shader_thread_shuffle")
	}
	if info.UsesAtomicF32Add {
		option("NV_shader_atomic_float")
	}
	if info.UsesAtomicF16x2Add || info.UsesAtomicF16x2Min || info.UsesAtomicF16x2Max {
		option("NV_shader_atomic_fp16_vector")
	}
	if info.UsesInt64BitAtomics && w.profile.SupportInt64Atomics {
		option("NV_shader_atomic_int64")
	}
	if w.p.Stage == shader.StageFragment && w.rt.ForceEarlyZ {
		option("NV_early_fragment_tests")
	}
}

func (w *writer) writeLayouts(out *strings.Builder) {
	switch w.p.Stage {
	case shader.StageCompute:
		ws := w.p.WorkgroupSize
		fmt.Fprintf(out, "GROUP_SIZE %d %d %d;\n", ws[0], ws[1], ws[2])
	case shader.StageGeometry:
		fmt.Fprintf(out, "PRIMITIVE_IN %s;\n", asmInputPrimitive(w.rt.InputTopology))
		fmt.Fprintf(out, "PRIMITIVE_OUT %s;\n", asmOutputPrimitive(w.p.OutputTopology))
		fmt.Fprintf(out, "VERTICES_OUT %d;\n", w.p.OutputVertices)
	case shader.StageTessellationControl:
		fmt.Fprintf(out, "VERTICES_OUT %d;\n", w.p.OutputVertices)
	case shader.StageTessellationEval:
		fmt.Fprintf(out, "TESS_MODE %s;\n", asmTessMode(w.rt.TessPrimitive))
		fmt.Fprintf(out, "TESS_SPACING %s;\n", asmTessSpacing(w.rt.TessSpacing))
		if w.rt.TessClockwise {
			out.WriteString("TESS_VERTEX_ORDER CW;\n")
		} else {
			out.WriteString("TESS_VERTEX_ORDER CCW;\n")
		}
	}
}

func asmInputPrimitive(t shader.InputTopology) string {
	switch t {
	case shader.InputLines:
		return "LINES"
	case shader.InputLinesAdjacency:
		return "LINES_ADJACENCY"
	case shader.InputTriangles:
		return "TRIANGLES"
	case shader.InputTrianglesAdjacency:
		return "TRIANGLES_ADJACENCY"
	default:
		return "POINTS"
	}
}

func asmOutputPrimitive(t shader.OutputTopology) string {
	switch t {
	case shader.TopologyLineStrip:
		return "LINE_STRIP"
	case shader.TopologyTriangleStrip:
		return "TRIANGLE_STRIP"
	default:
		return "POINTS"
	}
}

func asmTessMode(t shader.TessPrimitive) string {
	switch t {
	case shader.TessIsolines:
		return "ISOLINES"
	case shader.TessQuads:
		return "QUADS"
	default:
		return "TRIANGLES"
	}
}

func asmTessSpacing(s shader.TessSpacing) string {
	switch s {
	case shader.SpacingFractionalOdd:
		return "FRACTIONAL_ODD"
	case shader.SpacingFractionalEven:
		return "FRACTIONAL_EVEN"
	default:
		return "EQUAL"
	}
}

func (w *writer) writeBindings(out *strings.Builder) {
	info := &w.p.Info
	for _, d := range info.ConstantBuffers {
		fmt.Fprintf(out, "CBUFFER cbuf%d[] = { program.buffer[%d] };\n", d.Index, d.Index)
	}
	if w.rt.GlasmUseStorageBuffers {
		for i := range info.StorageBuffers {
			fmt.Fprintf(out, "STORAGE ssbo%d[] = { program.storage[%d] };\n", i, i)
		}
	}
	if size := w.sharedSize(); size > 0 {
		fmt.Fprintf(out, "SHARED_MEMORY %d;\n", size)
		out.WriteString("SHARED shared_mem[] = { program.sharedmem };\n")
	}
}

func (w *writer) sharedSize() uint32 {
	size := w.p.SharedMemorySize
	if size == 0 && w.p.Info.UsesSharedMemory {
		size = 4
	}
	return size
}

func (w *writer) writeTemps(out *strings.Builder) {
	names := []string{"RC"}
	if w.posUsed {
		names = append(names, "RPOS")
	}
	if w.alphaUsed {
		names = append(names, "ATST")
	}
	for i := uint32(0); i < w.maxR; i++ {
		names = append(names, fmt.Sprintf("R%d", i))
	}
	fmt.Fprintf(out, "TEMP %s;\n", strings.Join(names, ", "))
	if w.p.LocalMemorySize > 0 {
		fmt.Fprintf(out, "TEMP lmem[%d];\n", (w.p.LocalMemorySize+3)/4)
	}
	if w.maxD > 0 {
		long := make([]string, 0, w.maxD)
		for i := uint32(0); i < w.maxD; i++ {
			long = append(long, fmt.Sprintf("D%d", i))
		}
		fmt.Fprintf(out, "LONG TEMP %s;\n", strings.Join(long, ", "))
	}
}
