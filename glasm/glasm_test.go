// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

type testEnv struct{}

func (e *testEnv) ReadInstruction(addr uint32) uint64            { return 0 }
func (e *testEnv) ReadCbufValue(index, offset uint32) uint32     { return 0 }
func (e *testEnv) ReadTextureType(raw uint32) shader.TextureType { return shader.TextureColor2D }
func (e *testEnv) TextureBoundBuffer() uint32                    { return 0 }
func (e *testEnv) LocalMemorySize() uint32                       { return 0 }
func (e *testEnv) SharedMemorySize() uint32                      { return 0 }
func (e *testEnv) WorkgroupSize() [3]uint32                      { return [3]uint32{8, 1, 1} }
func (e *testEnv) SPH() *shader.ProgramHeader                    { return &shader.ProgramHeader{} }
func (e *testEnv) GpPassthroughMask() *[8]uint32                 { return nil }
func (e *testEnv) ShaderStage() shader.Stage                     { return shader.StageCompute }
func (e *testEnv) StartAddress() uint32                          { return 0 }

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

	assert.True(t, strings.HasPrefix(src, "!!NVcp5.0\n"))
	assert.Contains(t, src, "OPTION NV_internal;")
	assert.Contains(t, src, "GROUP_SIZE 8 1 1;")
	assert.Contains(t, src, "main:")
	assert.Contains(t, src, "RET;")
	assert.True(t, strings.HasSuffix(src, "END\n"))
}

func TestCompileCbufLoad(t *testing.T) {
	p, _, e := newProgram(shader.StageCompute)
	p.Info.ConstantBuffers = []ir.ConstantBufferDescriptor{{Index: 0, Count: 1}}
	p.SharedMemorySize = 16

	v := e.Emit(ir.OpGetCbufU32, ir.MakeU32(0), ir.MakeU32(0x10))
	e.Emit(ir.OpWriteSharedU32, ir.MakeU32(0), v)
	src := compile(t, p)

	assert.Contains(t, src, "CBUFFER cbuf0[] = { program.buffer[0] };")
	assert.Contains(t, src, "LDC.U32 R0.x, cbuf0[0x10];")
	assert.Contains(t, src, "SHARED_MEMORY 16;")
	assert.Contains(t, src, "SHARED shared_mem[] = { program.sharedmem };")
	assert.Contains(t, src, "STS.U32 R0.x, shared_mem[0];")
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

	assert.Contains(t, src, "MOV.S.CC RC.x, -1;")
	assert.Contains(t, src, "IF NE.x;")
	assert.Contains(t, src, "ENDIF;")
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

	assert.Contains(t, src, "MOV.S R0.x, 0x2000;")
	assert.Contains(t, src, "REP;")
	assert.Contains(t, src, "SUB.S.CC R0.x, R0.x, 1;")
	assert.Contains(t, src, "BRK (LT.x);")
	assert.Contains(t, src, "BRK (EQ.x);")
	assert.Contains(t, src, "ENDREP;")
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

	assert.Contains(t, src, "REP;")
	assert.Contains(t, src, "BRK (EQ.x);")
	assert.Contains(t, src, "ENDREP;")
	assert.NotContains(t, src, "0x2000")
	assert.NotContains(t, src, "BRK (LT.x);")
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

	// Both predecessors write the same pre-colored register.
	assert.Contains(t, src, "MOV.U R0.x, 1;")
	assert.Contains(t, src, "MOV.U R0.x, 2;")
	assert.Contains(t, src, "STS.U32 R0.x, shared_mem[0];")
}

func TestCompileRegisterRecycling(t *testing.T) {
	p, _, e := newProgram(shader.StageCompute)
	p.SharedMemorySize = 4

	a := e.Emit(ir.OpIAdd32, ir.MakeU32(1), ir.MakeU32(2))
	b := e.Emit(ir.OpIAdd32, a, ir.MakeU32(3))
	c := e.Emit(ir.OpIAdd32, b, ir.MakeU32(4))
	e.Emit(ir.OpWriteSharedU32, ir.MakeU32(0), c)
	src := compile(t, p)

	// The third sum reuses the register freed by the first; only two
	// temporaries are ever declared.
	assert.Contains(t, src, "ADD.U R0.x, 1, 2;")
	assert.Contains(t, src, "ADD.U R1.x, R0.x, 3;")
	assert.Contains(t, src, "ADD.U R0.x, R1.x, 4;")
	assert.NotContains(t, src, "R2")
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
	src, err := Compile(p, &testEnv{}, &shader.Profile{}, rt)
	require.NoError(t, err)

	assert.Contains(t, src, "TEMP RC, ATST;")
	assert.Contains(t, src, "MOV.F result.color[0].w, 1.0;")
	assert.Contains(t, src, "MOV.F ATST.x, 1.0;")
	assert.Contains(t, src, "SLE.F RC.x, ATST.x, 0.5;")
	assert.Contains(t, src, "KIL RC.x;")
}

func TestCompileStorageBound(t *testing.T) {
	p, _, e := newProgram(shader.StageCompute)
	p.Info.StorageBuffers = []ir.StorageBufferDescriptor{
		{CbufIndex: 0, CbufOffset: 0x110, Count: 1, IsWritten: true},
	}
	v := e.Emit(ir.OpLoadStorage32, ir.MakeU32(0), ir.MakeU32(0))
	e.Emit(ir.OpWriteStorage32, ir.MakeU32(0), ir.MakeU32(4), v)

	rt := &shader.RuntimeInfo{GlasmUseStorageBuffers: true}
	src, err := Compile(p, &testEnv{}, &shader.Profile{}, rt)
	require.NoError(t, err)

	assert.Contains(t, src, "OPTION NV_shader_storage_buffer;")
	assert.Contains(t, src, "STORAGE ssbo0[] = { program.storage[0] };")
	assert.Contains(t, src, "LDB.U32 R0.x, ssbo0[0];")
	assert.Contains(t, src, "STB.U32 R0.x, ssbo0[4];")
}

func TestCompileStorageThroughGlobalPointer(t *testing.T) {
	p, _, e := newProgram(shader.StageCompute)
	p.Info.StorageBuffers = []ir.StorageBufferDescriptor{
		{CbufIndex: 0, CbufOffset: 0x110, Count: 1, IsWritten: true},
	}
	v := e.Emit(ir.OpLoadStorage32, ir.MakeU32(0), ir.MakeU32(0))
	e.Emit(ir.OpWriteStorage32, ir.MakeU32(0), ir.MakeU32(4), v)
	src := compile(t, p)

	// Without bound storage buffers the access recomputes the guest
	// address from the descriptor and uses global memory.
	assert.NotContains(t, src, "STORAGE ssbo")
	assert.Contains(t, src, "LDC.U64 D0.x, cbuf0[272];")
	assert.Contains(t, src, "ADD.U64 D0.x, D0.x, D1.x;")
	assert.Contains(t, src, "LOAD.U32 R0.x, D0.x;")
	assert.Contains(t, src, "STORE.U32 R0.x, D0.x;")
	assert.Contains(t, src, "LONG TEMP D0, D1;")
}

func TestCompileTextureSample(t *testing.T) {
	p, _, e := newProgram(shader.StageFragment)
	p.Info.Textures = []ir.TextureDescriptor{{Type: shader.TextureColor2D}}

	info := ir.TextureInstInfo{Type: shader.TextureColor2D}
	coords := e.Emit(ir.OpCompositeConstructF32x2, ir.MakeF32(0.5), ir.MakeF32(0.5))
	e.EmitWithFlags(ir.OpImageSampleImplicitLod, info.Pack(),
		ir.MakeU32(0), coords, ir.MakeF32(0), ir.MakeU32(0))
	src := compile(t, p)

	assert.Contains(t, src, "TEX.F")
	assert.Contains(t, src, "texture[0], 2D;")
}

func TestCompileFP64CarriesOption(t *testing.T) {
	p, _, e := newProgram(shader.StageCompute)
	p.Info.UsesFP64 = true
	p.SharedMemorySize = 8

	sum := e.Emit(ir.OpFPAdd64, ir.MakeF64(1), ir.MakeF64(2))
	pair := e.Emit(ir.OpUnpackDouble2x32, sum)
	e.Emit(ir.OpWriteSharedU64, ir.MakeU32(0), pair)
	src := compile(t, p)

	assert.Contains(t, src, "OPTION NV_gpu_program_fp64;")
	assert.Contains(t, src, "ADD.F64")
	assert.Contains(t, src, "LONG TEMP")
}

func TestCompileUnpromotedSampleFails(t *testing.T) {
	p, _, e := newProgram(shader.StageFragment)
	info := ir.TextureInstInfo{Type: shader.TextureColor2D}
	e.EmitWithFlags(ir.OpBoundImageSampleImplicitLod, info.Pack(),
		ir.MakeU32(0), ir.MakeF32(0), ir.MakeF32(0), ir.MakeU32(0))

	_, err := Compile(p, &testEnv{}, &shader.Profile{}, &shader.RuntimeInfo{})
	require.Error(t, err)
}
