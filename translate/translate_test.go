package translate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

type testEnv struct {
	words map[uint32]uint64
	cbuf  map[[2]uint32]uint32
}

func (e *testEnv) ReadInstruction(addr uint32) uint64 { return e.words[addr] }
func (e *testEnv) ReadCbufValue(index, offset uint32) uint32 {
	return e.cbuf[[2]uint32{index, offset}]
}
func (e *testEnv) ReadTextureType(uint32) shader.TextureType { return shader.TextureColor2D }
func (e *testEnv) TextureBoundBuffer() uint32                { return 0 }
func (e *testEnv) LocalMemorySize() uint32                   { return 0 }
func (e *testEnv) SharedMemorySize() uint32                  { return 0 }
func (e *testEnv) WorkgroupSize() [3]uint32                  { return [3]uint32{1, 1, 1} }
func (e *testEnv) SPH() *shader.ProgramHeader                { return &shader.ProgramHeader{} }
func (e *testEnv) GpPassthroughMask() *[8]uint32             { return nil }
func (e *testEnv) ShaderStage() shader.Stage                 { return shader.StageCompute }
func (e *testEnv) StartAddress() uint32                      { return 8 }

// translateOne runs the translator over a single instruction at address 8
// and returns the resulting instruction list.
func translateOne(t *testing.T, word uint64) []*ir.Inst {
	t.Helper()
	p := ir.NewProgram(shader.StageCompute)
	block := p.CreateBlock()
	tr := New(p)
	env := &testEnv{words: map[uint32]uint64{8: word}}
	require.NoError(t, tr.Block(env, block, 8, 16))
	return block.Instructions()
}

func opcodes(insts []*ir.Inst) []ir.Opcode {
	out := make([]ir.Opcode, len(insts))
	for i, inst := range insts {
		out[i] = inst.Opcode()
	}
	return out
}

func findOp(insts []*ir.Inst, op ir.Opcode) *ir.Inst {
	for _, inst := range insts {
		if inst.Opcode() == op {
			return inst
		}
	}
	return nil
}

func TestTranslateIAdd(t *testing.T) {
	// IADD R3, R2, R1
	insts := translateOne(t, 0x5C10000000170203)
	require.Equal(t, []ir.Opcode{
		ir.OpGetRegister,
		ir.OpGetRegister,
		ir.OpIAdd32,
		ir.OpSetRegister,
	}, opcodes(insts))

	require.Equal(t, ir.Reg(1), insts[0].Arg(0).Reg())
	require.Equal(t, ir.Reg(2), insts[1].Arg(0).Reg())
	add := insts[2]
	require.Same(t, insts[1], add.Arg(0).Inst())
	require.Same(t, insts[0], add.Arg(1).Inst())
	set := insts[3]
	require.Equal(t, ir.Reg(3), set.Arg(0).Reg())
	require.Same(t, add, set.Arg(1).Inst())
}

func TestTranslateIAddDestRZ(t *testing.T) {
	// Writes to RZ are dropped, leaving only the operand reads.
	insts := translateOne(t, 0x5C100000001702FF)
	require.Nil(t, findOp(insts, ir.OpSetRegister))
}

func TestTranslateMov32Imm(t *testing.T) {
	// MOV32I R5, 0xDEADBEEF
	word := uint64(0x010)<<52 | uint64(0xDEADBEEF)<<20 | 0x7<<16 | 0x05
	insts := translateOne(t, word)
	require.Len(t, insts, 1)
	set := insts[0]
	require.Equal(t, ir.OpSetRegister, set.Opcode())
	require.Equal(t, ir.Reg(5), set.Arg(0).Reg())
	require.True(t, set.Arg(1).IsImmediate())
	require.Equal(t, uint32(0xDEADBEEF), set.Arg(1).U32())
}

func TestTranslateS2RThreadID(t *testing.T) {
	// S2R R2, SR_TID.X
	word := uint64(0x1E19)<<51 | uint64(srTIDX)<<20 | 0x7<<16 | 0x02
	insts := translateOne(t, word)
	require.Equal(t, []ir.Opcode{
		ir.OpLocalInvocationID,
		ir.OpCompositeExtractU32x3,
		ir.OpSetRegister,
	}, opcodes(insts))
	require.Equal(t, uint32(0), insts[1].Arg(1).U32())
}

func TestTranslateS2RWorkgroupIDComponent(t *testing.T) {
	// S2R R0, SR_CTAID.Z selects component 2.
	word := uint64(0x1E19)<<51 | uint64(srCTAIDZ)<<20 | 0x7<<16
	insts := translateOne(t, word)
	require.NotNil(t, findOp(insts, ir.OpWorkgroupID))
	ext := findOp(insts, ir.OpCompositeExtractU32x3)
	require.NotNil(t, ext)
	require.Equal(t, uint32(2), ext.Arg(1).U32())
}

func TestTranslateFMul(t *testing.T) {
	// FMUL R0, R1, R2
	word := uint64(0x0B8D)<<51 | uint64(2)<<20 | 0x7<<16 | uint64(1)<<8
	insts := translateOne(t, word)
	require.Equal(t, []ir.Opcode{
		ir.OpGetRegister,
		ir.OpBitCastF32U32,
		ir.OpGetRegister,
		ir.OpBitCastF32U32,
		ir.OpFPMul32,
		ir.OpBitCastU32F32,
		ir.OpSetRegister,
	}, opcodes(insts))

	mul := insts[4]
	ctl := mul.FpControl()
	require.Equal(t, ir.FpRoundNearest, ctl.Rounding)
	require.Equal(t, ir.FmzNone, ctl.Fmz)
	require.Equal(t, ir.Reg(0), insts[6].Arg(0).Reg())
}

func TestTranslateFMulFTZ(t *testing.T) {
	word := uint64(0x0B8D)<<51 | uint64(2)<<20 | 0x7<<16 | uint64(1)<<8 | 1<<44
	insts := translateOne(t, word)
	mul := findOp(insts, ir.OpFPMul32)
	require.NotNil(t, mul)
	require.Equal(t, ir.FmzFTZ, mul.FpControl().Fmz)
}

func TestTranslateFMulScale(t *testing.T) {
	// The scale field appends a second multiply by the table constant.
	word := uint64(0x0B8D)<<51 | uint64(2)<<20 | 0x7<<16 | uint64(1)<<8 | 1<<41
	insts := translateOne(t, word)
	var muls []*ir.Inst
	for _, inst := range insts {
		if inst.Opcode() == ir.OpFPMul32 {
			muls = append(muls, inst)
		}
	}
	require.Len(t, muls, 2)
	require.True(t, muls[1].Arg(1).IsImmediate())
	require.Equal(t, float32(0.5), muls[1].Arg(1).F32())
}

func TestTranslateLdg32(t *testing.T) {
	// LDG.E R4, [R6]
	word := uint64(0x1DDA)<<51 | uint64(sizeB32)<<48 | 0x7<<16 | uint64(6)<<8 | 0x04
	insts := translateOne(t, word)
	pack := findOp(insts, ir.OpPackUint2x32)
	require.NotNil(t, pack)
	require.Equal(t, ir.Reg(6), pack.Arg(0).InstRecursive().Arg(0).Reg())
	require.Equal(t, ir.Reg(7), pack.Arg(1).InstRecursive().Arg(0).Reg())

	load := findOp(insts, ir.OpLoadGlobal32)
	require.NotNil(t, load)
	require.Same(t, pack, load.Arg(0).InstRecursive())
	require.Nil(t, findOp(insts, ir.OpIAdd64))

	set := findOp(insts, ir.OpSetRegister)
	require.NotNil(t, set)
	require.Equal(t, ir.Reg(4), set.Arg(0).Reg())
}

func TestTranslateLdgOffset(t *testing.T) {
	// A nonzero immediate offset folds into a 64-bit add.
	word := uint64(0x1DDA)<<51 | uint64(sizeB32)<<48 | uint64(0x80)<<20 | 0x7<<16 | uint64(6)<<8 | 0x04
	insts := translateOne(t, word)
	add := findOp(insts, ir.OpIAdd64)
	require.NotNil(t, add)
	require.Equal(t, uint64(0x80), add.Arg(1).U64())
}

func TestTranslateTexs(t *testing.T) {
	// TEXS R0, RZ, R8, R9, 2D with an xy write mask.
	word := uint64(0x6C)<<57 |
		uint64(2)<<53 | // 2D
		uint64(3)<<50 | // mask
		uint64(8)<<36 | // bound handle
		uint64(0xFF)<<28 | // second destination RZ
		uint64(9)<<20 | 0x7<<16 | uint64(8)<<8
	insts := translateOne(t, word)

	sample := findOp(insts, ir.OpBoundImageSampleImplicitLod)
	require.NotNil(t, sample)
	require.Equal(t, shader.TextureColor2D, sample.TextureInfo().Type)
	require.False(t, sample.TextureInfo().IsDepth)
	require.Equal(t, uint32(8), sample.Arg(0).U32())

	var dests []ir.Reg
	for _, inst := range insts {
		if inst.Opcode() == ir.OpSetRegister {
			dests = append(dests, inst.Arg(0).Reg())
		}
	}
	require.Equal(t, []ir.Reg{0, 1}, dests)
}

func TestTranslateSchedWordSkipped(t *testing.T) {
	// Address 0 holds scheduling data, not an instruction.
	p := ir.NewProgram(shader.StageCompute)
	block := p.CreateBlock()
	tr := New(p)
	env := &testEnv{words: map[uint32]uint64{
		0: 0xDEADDEADDEADDEAD,
		8: 0x5C10000000170203,
	}}
	require.NoError(t, tr.Block(env, block, 0, 16))
	require.NotNil(t, findOp(block.Instructions(), ir.OpIAdd32))
}

func TestTranslateUnknownInstruction(t *testing.T) {
	p := ir.NewProgram(shader.StageCompute)
	block := p.CreateBlock()
	tr := New(p)
	env := &testEnv{words: map[uint32]uint64{8: 0xFFFFFFFFFFFFFFFF}}
	require.Error(t, tr.Block(env, block, 8, 16))
}
