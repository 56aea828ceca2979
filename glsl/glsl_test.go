// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

type testEnv struct{}

func (e *testEnv) ReadInstruction(addr uint32) uint64             { return 0 }
func (e *testEnv) ReadCbufValue(index, offset uint32) uint32      { return 0 }
func (e *testEnv) ReadTextureType(raw uint32) shader.TextureType  { return shader.TextureColor2D }
func (e *testEnv) TextureBoundBuffer() uint32                     { return 0 }
func (e *testEnv) LocalMemorySize() uint32                        { return 0 }
func (e *testEnv) SharedMemorySize() uint32                       { return 0 }
func (e *testEnv) WorkgroupSize() [3]uint32                       { return [3]uint32{8, 1, 1} }
func (e *testEnv) SPH() *shader.ProgramHeader                     { return &shader.ProgramHeader{} }
func (e *testEnv) GpPassthroughMask() *[8]uint32                  { return nil }
func (e *testEnv) ShaderStage() shader.Stage                      { return shader.StageCompute }
func (e *testEnv) StartAddress() uint32                           { return 0 }

func newProgram(stage shader.Stage) (*ir.Program, *ir.Block, *ir.Emitter) {
	p := ir.NewProgram(stage)
	b := p.CreateBlock()
	p.WorkgroupSize = [3]uint32{8, 1, 1}
	p.Syntax = []ir.SyntaxNode{
		{Kind: ir.SyntaxBlock, Block: b},
		{Kind: ir.SyntaxReturn},
	}
	return p, b, ir.NewEmitter(p, b)
}

func compile(t *testing.T, p *ir.Program) string {
	t.Helper()
	src, err := Compile(p, &testEnv{}, &shader.Profile{}, &shader.RuntimeInfo{})
	require.NoError(t, err)
	return src
}

func TestCompileEmptyCompute(t *testing.T) {
	p, _, _ := newProgram(shader.StageCompute)
	src := compile(t, p)

	assert.True(t, strings.HasPrefix(src, "#version 450\n"))
	assert.Contains(t, src, "layout(local_size_x=8, local_size_y=1, local_size_z=1) in;")
	assert.Contains(t, src, "void main() {")
	assert.True(t, strings.HasSuffix(src, "}\n"))
}

func TestCompileCbufArithmetic(t *testing.T) {
	p, _, e := newProgram(shader.StageCompute)
	p.Info.ConstantBuffers = []ir.ConstantBufferDescriptor{{Index: 0, Count: 1}}
	p.SharedMemorySize = 16

	v := e.Emit(ir.OpGetCbufU32, ir.MakeU32(0), ir.MakeU32(0x10))
	sum := e.IAdd32(v, ir.MakeU32(1))
	e.Emit(ir.OpWriteSharedU32, ir.MakeU32(0), sum)
	src := compile(t, p)

	assert.Contains(t, src, "layout(std140, binding = 0) uniform cs_cbuf_0")
	assert.Contains(t, src, "ftou(cs_cbuf0[1].x)")
	assert.Contains(t, src, "shared uint smem[4];")
	assert.Contains(t, src, "smem[0u >> 2u]")
}

func TestCompileIfSyntax(t *testing.T) {
	p, b, _ := newProgram(shader.StageCompute)
	body := p.CreateBlock()
	p.SharedMemorySize = 4
	ir.NewEmitter(p, body).Emit(ir.OpWriteSharedU32, ir.MakeU32(0), ir.MakeU32(7))
	p.Syntax = []ir.SyntaxNode{
		{Kind: ir.SyntaxBlock, Block: b},
		{Kind: ir.SyntaxIf, Cond: ir.MakeU1(true), Body: body},
		{Kind: ir.SyntaxBlock, Block: body},
		{Kind: ir.SyntaxEndIf},
		{Kind: ir.SyntaxReturn},
	}
	src := compile(t, p)

	assert.Contains(t, src, "if (true) {")
	assert.Contains(t, src, "}")
}

func TestCompileLoopSafetyCounter(t *testing.T) {
	p, b, _ := newProgram(shader.StageCompute)
	body := p.CreateBlock()
	p.Syntax = []ir.SyntaxNode{
		{Kind: ir.SyntaxBlock, Block: b},
		{Kind: ir.SyntaxLoop, Body: body},
		{Kind: ir.SyntaxBlock, Block: body},
		{Kind: ir.SyntaxRepeat, Cond: ir.MakeU1(true)},
		{Kind: ir.SyntaxReturn},
	}
	src := compile(t, p)

	assert.Contains(t, src, "int loop0 = 0x2000;")
	assert.Contains(t, src, "for (;;) {")
	assert.Contains(t, src, "if (--loop0 < 0 || !(true)) { break; }")
}

func TestCompileLoopSafetyDisabled(t *testing.T) {
	p, b, _ := newProgram(shader.StageCompute)
	body := p.CreateBlock()
	p.Syntax = []ir.SyntaxNode{
		{Kind: ir.SyntaxBlock, Block: b},
		{Kind: ir.SyntaxLoop, Body: body},
		{Kind: ir.SyntaxBlock, Block: body},
		{Kind: ir.SyntaxRepeat, Cond: ir.MakeU1(true)},
		{Kind: ir.SyntaxReturn},
	}
	profile := &shader.Profile{DisableLoopSafety: true}
	src, err := Compile(p, &testEnv{}, profile, &shader.RuntimeInfo{})
	require.NoError(t, err)

	assert.Contains(t, src, "for (;;) {")
	assert.Contains(t, src, "if (!(true)) { break; }")
	assert.NotContains(t, src, "loop0")
}

func TestCompilePhiMoves(t *testing.T) {
	p, b, e := newProgram(shader.StageCompute)
	left := p.CreateBlock()
	right := p.CreateBlock()
	merge := p.CreateBlock()
	p.SharedMemorySize = 4

	phi := e.Phi(merge)
	phi.AddPhiOperand(left, ir.MakeU32(1))
	phi.AddPhiOperand(right, ir.MakeU32(2))
	me := ir.NewEmitter(p, merge)
	me.Emit(ir.OpWriteSharedU32, ir.MakeU32(0), ir.MakeInst(phi))

	p.Syntax = []ir.SyntaxNode{
		{Kind: ir.SyntaxBlock, Block: b},
		{Kind: ir.SyntaxBlock, Block: left},
		{Kind: ir.SyntaxBlock, Block: right},
		{Kind: ir.SyntaxBlock, Block: merge},
		{Kind: ir.SyntaxReturn},
	}
	src := compile(t, p)

	// Each predecessor materializes the phi as a move into one temporary.
	assert.Contains(t, src, "= 1u;")
	assert.Contains(t, src, "= 2u;")
	assert.Equal(t, 1, strings.Count(src, "= 1u;"))
}

func TestCompileFragmentAlphaTest(t *testing.T) {
	p := ir.NewProgram(shader.StageFragment)
	b := p.CreateBlock()
	e := ir.NewEmitter(p, b)
	e.Emit(ir.OpSetFragColor, ir.MakeU32(0), ir.MakeU32(3), ir.MakeF32(1))
	e.Epilogue()
	p.Syntax = []ir.SyntaxNode{
		{Kind: ir.SyntaxBlock, Block: b},
		{Kind: ir.SyntaxReturn},
	}

	fn := shader.CompareGreater
	rt := &shader.RuntimeInfo{AlphaTestFunc: &fn, AlphaTestReference: 0.5}
	profile := &shader.Profile{NeedDeclaredFragColors: true}
	src, err := Compile(p, &testEnv{}, profile, rt)
	require.NoError(t, err)

	assert.Contains(t, src, "layout(location = 0) out vec4 frag_color0;")
	assert.Contains(t, src, "frag_color0.w = 1.0;")
	assert.Contains(t, src, "discard")
}

func TestCompileSharedAtomic(t *testing.T) {
	p, _, e := newProgram(shader.StageCompute)
	p.SharedMemorySize = 16
	e.Emit(ir.OpSharedAtomicIAdd32, ir.MakeU32(0), ir.MakeU32(1))
	e.Emit(ir.OpSharedAtomicInc32, ir.MakeU32(4), ir.MakeU32(8))
	src := compile(t, p)

	assert.Contains(t, src, "atomicAdd(smem[0u >> 2u], 1u)")
	// Inc has no builtin and loops on compare and swap.
	assert.Contains(t, src, "atomicCompSwap")
	assert.Contains(t, src, "old >= value ? 0u : old + 1u")
}

func TestCompileTextureSample(t *testing.T) {
	p, _, e := newProgram(shader.StageFragment)
	p.Info.Textures = []ir.TextureDescriptor{{Type: shader.TextureColor2D}}

	info := ir.TextureInstInfo{Type: shader.TextureColor2D}
	coords := e.Emit(ir.OpCompositeConstructF32x2, ir.MakeF32(0.5), ir.MakeF32(0.5))
	e.EmitWithFlags(ir.OpImageSampleImplicitLod, info.Pack(),
		ir.MakeU32(0), coords, ir.MakeF32(0), ir.MakeU32(0))
	src := compile(t, p)

	assert.Contains(t, src, "uniform sampler2D tex0;")
	assert.Contains(t, src, "texture(tex0, ")
}

func TestCompileShadowSampleFoldsDref(t *testing.T) {
	p, _, e := newProgram(shader.StageFragment)
	p.Info.Textures = []ir.TextureDescriptor{{Type: shader.TextureColor2D, IsDepth: true}}

	info := ir.TextureInstInfo{Type: shader.TextureColor2D, IsDepth: true}
	coords := e.Emit(ir.OpCompositeConstructF32x2, ir.MakeF32(0.5), ir.MakeF32(0.5))
	e.EmitWithFlags(ir.OpImageSampleDrefImplicitLod, info.Pack(),
		ir.MakeU32(0), coords, ir.MakeF32(0.25), ir.MakeU32(0), ir.MakeU32(0))
	src := compile(t, p)

	assert.Contains(t, src, "uniform sampler2DShadow tex0;")
	assert.Contains(t, src, "vec3(")
	assert.Contains(t, src, "0.25")
}

func TestCompileStorageBuffer(t *testing.T) {
	p, _, e := newProgram(shader.StageCompute)
	p.Info.StorageBuffers = []ir.StorageBufferDescriptor{
		{CbufIndex: 0, CbufOffset: 0x110, Count: 1, IsWritten: true},
	}
	v := e.Emit(ir.OpLoadStorage32, ir.MakeU32(0), ir.MakeU32(0))
	e.Emit(ir.OpWriteStorage32, ir.MakeU32(0), ir.MakeU32(4), v)
	src := compile(t, p)

	assert.Contains(t, src, "layout(std430, binding = 0) buffer cs_ssbo_0")
	assert.Contains(t, src, "cs_ssbo0[")
}

func TestCompileUnpromotedSampleFails(t *testing.T) {
	p, _, e := newProgram(shader.StageFragment)
	info := ir.TextureInstInfo{Type: shader.TextureColor2D}
	e.EmitWithFlags(ir.OpBoundImageSampleImplicitLod, info.Pack(),
		ir.MakeU32(0), ir.MakeF32(0), ir.MakeF32(0), ir.MakeU32(0))

	_, err := Compile(p, &testEnv{}, &shader.Profile{}, &shader.RuntimeInfo{})
	require.Error(t, err)
}

func TestCompileLegacyVaryingsSelectCompatibility(t *testing.T) {
	p := ir.NewProgram(shader.StageFragment)
	b := p.CreateBlock()
	e := ir.NewEmitter(p, b)
	p.Info.Loads.Set(uint(ir.AttributeFrontDiffuseR), true)
	e.Emit(ir.OpGetAttribute, ir.MakeAttribute(ir.AttributeFrontDiffuseR), ir.MakeU32(0))
	p.Syntax = []ir.SyntaxNode{
		{Kind: ir.SyntaxBlock, Block: b},
		{Kind: ir.SyntaxReturn},
	}
	src, err := Compile(p, &testEnv{}, &shader.Profile{}, &shader.RuntimeInfo{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(src, "#version 450 compatibility\n"))
	assert.Contains(t, src, "gl_Color")
}
