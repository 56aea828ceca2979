package opt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

type testEnv struct {
	cbuf map[[2]uint32]uint32
}

func (e *testEnv) ReadInstruction(addr uint32) uint64 { return 0 }
func (e *testEnv) ReadCbufValue(index, offset uint32) uint32 {
	return e.cbuf[[2]uint32{index, offset}]
}
func (e *testEnv) ReadTextureType(raw uint32) shader.TextureType { return shader.TextureColor2D }
func (e *testEnv) TextureBoundBuffer() uint32                    { return 1 }
func (e *testEnv) LocalMemorySize() uint32                       { return 0 }
func (e *testEnv) SharedMemorySize() uint32                      { return 0 }
func (e *testEnv) WorkgroupSize() [3]uint32                      { return [3]uint32{8, 1, 1} }
func (e *testEnv) SPH() *shader.ProgramHeader                    { return &shader.ProgramHeader{} }
func (e *testEnv) GpPassthroughMask() *[8]uint32                 { return nil }
func (e *testEnv) ShaderStage() shader.Stage                     { return shader.StageCompute }
func (e *testEnv) StartAddress() uint32                          { return 0 }

func newProgram() (*ir.Program, *ir.Block, *ir.Emitter) {
	p := ir.NewProgram(shader.StageCompute)
	b := p.CreateBlock()
	return p, b, ir.NewEmitter(p, b)
}

func opcodes(b *ir.Block) []ir.Opcode {
	var ops []ir.Opcode
	for inst := b.Head(); inst != nil; inst = inst.Next() {
		ops = append(ops, inst.Opcode())
	}
	return ops
}

func findOp(b *ir.Block, op ir.Opcode) *ir.Inst {
	for inst := b.Head(); inst != nil; inst = inst.Next() {
		if inst.Opcode() == op {
			return inst
		}
	}
	return nil
}

func TestSSAStraightLine(t *testing.T) {
	p, b, e := newProgram()
	e.SetReg(ir.Reg(1), ir.MakeU32(7))
	e.IAdd32(e.GetReg(ir.Reg(1)), ir.MakeU32(1))
	p.ComputePostOrder(b)

	Rewrite(p)

	require.Equal(t, []ir.Opcode{ir.OpIAdd32}, opcodes(b))
	add := b.Head()
	require.True(t, add.Arg(0).IsImmediate())
	assert.Equal(t, uint32(7), add.Arg(0).U32())
	require.NoError(t, Verify(p))
}

func TestSSADiamondPhi(t *testing.T) {
	p := ir.NewProgram(shader.StageCompute)
	entry := p.CreateBlock()
	left := p.CreateBlock()
	right := p.CreateBlock()
	merge := p.CreateBlock()
	entry.AddBranch(left)
	entry.AddBranch(right)
	left.AddBranch(merge)
	right.AddBranch(merge)

	ir.NewEmitter(p, left).SetReg(ir.Reg(1), ir.MakeU32(1))
	ir.NewEmitter(p, right).SetReg(ir.Reg(1), ir.MakeU32(2))
	me := ir.NewEmitter(p, merge)
	me.IAdd32(me.GetReg(ir.Reg(1)), ir.MakeU32(0))
	p.ComputePostOrder(entry)

	Rewrite(p)

	phi := merge.Head()
	require.Equal(t, ir.OpPhi, phi.Opcode())
	require.Equal(t, 2, phi.NumArgs())
	assert.Same(t, left, phi.PhiBlock(0))
	assert.Same(t, right, phi.PhiBlock(1))
	assert.Equal(t, uint32(1), phi.Arg(0).U32())
	assert.Equal(t, uint32(2), phi.Arg(1).U32())
	require.NoError(t, Verify(p))
}

func TestSSAUndefRead(t *testing.T) {
	p, b, e := newProgram()
	e.IAdd32(e.GetReg(ir.Reg(5)), ir.MakeU32(0))
	p.ComputePostOrder(b)

	Rewrite(p)

	require.NotNil(t, findOp(b, ir.OpUndefU32))
	require.NoError(t, Verify(p))
}

func TestConstantFold(t *testing.T) {
	p, b, e := newProgram()
	sum := e.IAdd32(ir.MakeU32(2), ir.MakeU32(3))
	e.Emit(ir.OpWriteSharedU32, ir.MakeU32(0), sum)
	p.ComputePostOrder(b)

	ConstantPropagation(p)
	DeadCodeElimination(p)

	require.Equal(t, []ir.Opcode{ir.OpWriteSharedU32}, opcodes(b))
	store := b.Head()
	require.True(t, store.Arg(1).IsImmediate())
	assert.Equal(t, uint32(5), store.Arg(1).U32())
}

func TestConstantFoldSelect(t *testing.T) {
	p, b, e := newProgram()
	v := e.Emit(ir.OpSelectU32, ir.MakeU1(true), ir.MakeU32(11), ir.MakeU32(22))
	e.Emit(ir.OpWriteSharedU32, ir.MakeU32(0), v)
	p.ComputePostOrder(b)

	ConstantPropagation(p)
	DeadCodeElimination(p)

	store := b.Head()
	require.Equal(t, ir.OpWriteSharedU32, store.Opcode())
	assert.Equal(t, uint32(11), store.Arg(1).U32())
}

func TestConstantFoldCompare(t *testing.T) {
	p, b, e := newProgram()
	c := e.Emit(ir.OpULessThan, ir.MakeU32(1), ir.MakeU32(2))
	e.Emit(ir.OpSetZFlag, c)
	p.ComputePostOrder(b)

	ConstantPropagation(p)

	set := findOp(b, ir.OpSetZFlag)
	require.True(t, set.Arg(0).IsImmediate())
	assert.True(t, set.Arg(0).U1())
}

func TestDeadCodeKeepsSideEffects(t *testing.T) {
	p, b, e := newProgram()
	e.IAdd32(ir.MakeU32(1), ir.MakeU32(2))
	e.Emit(ir.OpBarrier)
	p.ComputePostOrder(b)

	DeadCodeElimination(p)

	require.Equal(t, []ir.Opcode{ir.OpBarrier}, opcodes(b))
}

func TestLowerFP16(t *testing.T) {
	p, b, e := newProgram()
	sum := e.FP(ir.OpFPAdd16, ir.FpControl{}, ir.MakeF16(0x3C00), ir.MakeF16(0x3C00))
	e.Emit(ir.OpConvertF32F16, sum)
	p.ComputePostOrder(b)

	LowerFP16ToFP32(p)

	assert.Nil(t, findOp(b, ir.OpFPAdd16))
	assert.NotNil(t, findOp(b, ir.OpFPAdd32))
	assert.NotNil(t, findOp(b, ir.OpIdentity))
}

func TestLowerInt64Add(t *testing.T) {
	p, b, e := newProgram()
	addr := e.PackUint2x32(ir.MakeU32(0x100), ir.MakeU32(1))
	e.Emit(ir.OpIAdd64, addr, addr)
	p.ComputePostOrder(b)

	LowerInt64ToInt32(p)

	assert.Nil(t, findOp(b, ir.OpIAdd64))
	assert.Nil(t, findOp(b, ir.OpPackUint2x32))
	require.NotNil(t, findOp(b, ir.OpCompositeExtractU32x2))
	require.NotNil(t, findOp(b, ir.OpGetCarryFromOp))
}

func TestGlobalMemoryPromotion(t *testing.T) {
	p, b, e := newProgram()
	lo := e.Emit(ir.OpGetCbufU32, ir.MakeU32(0), ir.MakeU32(0x110))
	hi := e.Emit(ir.OpGetCbufU32, ir.MakeU32(0), ir.MakeU32(0x114))
	addr := e.PackUint2x32(lo, hi)
	val := e.Emit(ir.OpLoadGlobal32, addr)
	e.Emit(ir.OpWriteGlobal32, addr, val)
	p.ComputePostOrder(b)

	GlobalMemoryToStorageBuffer(p)

	require.Len(t, p.Info.StorageBuffers, 1)
	desc := p.Info.StorageBuffers[0]
	assert.Equal(t, uint32(0), desc.CbufIndex)
	assert.Equal(t, uint32(0x110), desc.CbufOffset)
	assert.True(t, desc.IsWritten)

	assert.Nil(t, findOp(b, ir.OpLoadGlobal32))
	assert.Nil(t, findOp(b, ir.OpWriteGlobal32))
	load := findOp(b, ir.OpLoadStorage32)
	require.NotNil(t, load)
	assert.Equal(t, uint32(0), load.Arg(0).U32())
	require.NotNil(t, findOp(b, ir.OpWriteStorage32))
}

func TestGlobalMemoryOffsetPeel(t *testing.T) {
	p, b, e := newProgram()
	lo := e.Emit(ir.OpGetCbufU32, ir.MakeU32(0), ir.MakeU32(0x120))
	hi := e.Emit(ir.OpGetCbufU32, ir.MakeU32(0), ir.MakeU32(0x124))
	addr := e.Emit(ir.OpIAdd64, e.PackUint2x32(lo, hi), ir.MakeU64(0x40))
	e.Emit(ir.OpLoadGlobal32, addr)
	p.ComputePostOrder(b)

	GlobalMemoryToStorageBuffer(p)

	require.Len(t, p.Info.StorageBuffers, 1)
	assert.Equal(t, uint32(0x120), p.Info.StorageBuffers[0].CbufOffset)
	assert.False(t, p.Info.StorageBuffers[0].IsWritten)
	require.NotNil(t, findOp(b, ir.OpLoadStorage32))
	// The immediate pointer offset folds into the buffer offset math.
	require.NotNil(t, findOp(b, ir.OpIAdd32))
}

func TestTexturePromotionBound(t *testing.T) {
	p, b, e := newProgram()
	info := ir.TextureInstInfo{Type: shader.TextureColor2D}
	coords := e.Emit(ir.OpCompositeConstructF32x2, ir.MakeF32(0), ir.MakeF32(0))
	e.EmitWithFlags(ir.OpBoundImageSampleImplicitLod, info.Pack(),
		ir.MakeU32(5), coords, ir.MakeF32(0), ir.MakeU32(0))
	p.ComputePostOrder(b)

	env := &testEnv{}
	require.NoError(t, TexturePromotion(p, env))

	sample := findOp(b, ir.OpImageSampleImplicitLod)
	require.NotNil(t, sample)
	assert.Equal(t, uint32(0), sample.Arg(0).U32())
	require.Len(t, p.Info.Textures, 1)
	desc := p.Info.Textures[0]
	assert.Equal(t, env.TextureBoundBuffer(), desc.CbufIndex)
	assert.Equal(t, uint32(5*4), desc.CbufOffset)
	assert.Equal(t, shader.TextureColor2D, desc.Type)
}

func TestTexturePromotionBindless(t *testing.T) {
	p, b, e := newProgram()
	info := ir.TextureInstInfo{Type: shader.TextureColor2D}
	handle := e.Emit(ir.OpGetCbufU32, ir.MakeU32(2), ir.MakeU32(0x30))
	coords := e.Emit(ir.OpCompositeConstructF32x2, ir.MakeF32(0), ir.MakeF32(0))
	e.EmitWithFlags(ir.OpBindlessImageSampleImplicitLod, info.Pack(),
		handle, coords, ir.MakeF32(0), ir.MakeU32(0))
	p.ComputePostOrder(b)

	require.NoError(t, TexturePromotion(p, &testEnv{}))

	require.Len(t, p.Info.Textures, 1)
	assert.Equal(t, uint32(2), p.Info.Textures[0].CbufIndex)
	assert.Equal(t, uint32(0x30), p.Info.Textures[0].CbufOffset)
	require.NotNil(t, findOp(b, ir.OpImageSampleImplicitLod))
}

func TestTexturePromotionUntraceable(t *testing.T) {
	p, b, e := newProgram()
	info := ir.TextureInstInfo{Type: shader.TextureColor2D}
	handle := e.Emit(ir.OpLoadGlobal32, e.PackUint2x32(ir.MakeU32(0), ir.MakeU32(0)))
	e.EmitWithFlags(ir.OpBindlessImageSampleImplicitLod, info.Pack(),
		handle, ir.MakeF32(0), ir.MakeF32(0), ir.MakeU32(0))
	p.ComputePostOrder(b)

	err := TexturePromotion(p, &testEnv{})
	require.Error(t, err)
}

func TestCollectFlags(t *testing.T) {
	p, b, e := newProgram()
	id := e.Emit(ir.OpLocalInvocationID)
	x := e.Emit(ir.OpCompositeExtractU32x3, id, ir.MakeU32(0))
	e.Emit(ir.OpWriteSharedU32, ir.MakeU32(0), x)
	e.Emit(ir.OpGetCbufU32, ir.MakeU32(0), ir.MakeU32(0x318))
	p.ComputePostOrder(b)

	CollectShaderInfo(p, &testEnv{})

	info := p.Info
	assert.True(t, info.UsesLocalInvocationID)
	assert.True(t, info.UsesSharedMemory)
	assert.Equal(t, uint32(0x320), info.ConstantBufferUsedSizes[0])
	require.Len(t, info.ConstantBuffers, 1)
	// Compute descriptors start at 0x310, so 0x318 is driver slot 0.
	assert.Equal(t, uint32(1), info.NvnBufferUsed)
}

func TestCollectDynamicCbufOffset(t *testing.T) {
	p, b, e := newProgram()
	idx := e.Emit(ir.OpLocalInvocationID)
	x := e.Emit(ir.OpCompositeExtractU32x3, idx, ir.MakeU32(0))
	e.Emit(ir.OpGetCbufU32, ir.MakeU32(0), x)
	p.ComputePostOrder(b)

	CollectShaderInfo(p, &testEnv{})

	assert.Equal(t, ir.MaxCbufByteOffset, int(p.Info.ConstantBufferUsedSizes[0]))
	assert.Equal(t, uint32(0xFFFF), p.Info.NvnBufferUsed)
}

func TestRunPipeline(t *testing.T) {
	p, b, e := newProgram()
	e.Prologue()
	e.SetReg(ir.Reg(1), e.Emit(ir.OpGetCbufU32, ir.MakeU32(0), ir.MakeU32(0x10)))
	e.SetReg(ir.Reg(2), e.IAdd32(e.GetReg(ir.Reg(1)), ir.MakeU32(1)))
	e.Emit(ir.OpWriteSharedU32, ir.MakeU32(0), e.GetReg(ir.Reg(2)))
	e.Epilogue()
	p.ComputePostOrder(b)

	host := shader.HostTranslateInfo{SupportFloat16: false, SupportInt64: false}
	err := Run(p, &testEnv{}, host, Options{CheckAfterEachPass: true})
	require.NoError(t, err)

	assert.Nil(t, findOp(b, ir.OpGetRegister))
	assert.Nil(t, findOp(b, ir.OpSetRegister))
	assert.Equal(t, uint32(0x20), p.Info.ConstantBufferUsedSizes[0])
}
