package flow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

type testEnv struct {
	words map[uint32]uint64
	cbuf  map[[2]uint32]uint32
	stage shader.Stage
	start uint32
	sph   shader.ProgramHeader
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
func (e *testEnv) SPH() *shader.ProgramHeader                { return &e.sph }
func (e *testEnv) GpPassthroughMask() *[8]uint32             { return nil }
func (e *testEnv) ShaderStage() shader.Stage                 { return e.stage }
func (e *testEnv) StartAddress() uint32                      { return e.start }

const (
	wordExit = 0xE30000000007000F // EXIT with @PT
	wordIAdd = 0x5C10000000170203 // IADD R3, R2, R1
	wordSync = 0xF0F800000007000F // SYNC with @PT
)

func braWord(pred ir.Pred, negated bool, offset int32) uint64 {
	w := uint64(0xE24) << 52
	w |= uint64(uint32(offset)&0xFFFFFF) << 20
	w |= uint64(pred) << 16
	if negated {
		w |= 1 << 19
	}
	w |= 0xF
	return w
}

func ssyWord(offset int32) uint64 {
	return uint64(0xE29)<<52 | uint64(uint32(offset)&0xFFFFFF)<<20
}

func noTranslate(shader.Environment, *ir.Block, uint32, uint32) error { return nil }

func TestBuildLinear(t *testing.T) {
	env := &testEnv{words: map[uint32]uint64{8: wordExit}, start: 8}
	c, err := Build(env, 8, Config{})
	require.NoError(t, err)
	require.Len(t, c.Functions, 1)
	require.Len(t, c.Functions[0].Blocks, 1)
	b := c.Functions[0].Blocks[0]
	require.Equal(t, EndExit, b.EndClass)
	require.Equal(t, uint32(8), b.Begin)
	require.Equal(t, uint32(16), b.End)
}

func TestBuildConditionalBranch(t *testing.T) {
	// @P0 BRA 0x18 over one IADD, then EXIT.
	env := &testEnv{words: map[uint32]uint64{
		0x08: braWord(0, false, 0x08),
		0x10: wordIAdd,
		0x18: wordExit,
	}, start: 8}
	c, err := Build(env, 8, Config{})
	require.NoError(t, err)
	blocks := c.Functions[0].Blocks
	require.Len(t, blocks, 3)
	head := blocks[0]
	require.Equal(t, EndBranch, head.EndClass)
	require.False(t, head.Cond.AlwaysTrue())
	require.Equal(t, uint32(0x18), head.BranchTrue.Begin)
	require.Equal(t, uint32(0x10), head.BranchFalse.Begin)
	require.Equal(t, EndExit, blocks[2].EndClass)
}

func TestBuildPredicatedInstruction(t *testing.T) {
	// A predicated IADD becomes a virtual block on the true edge.
	iaddP0 := wordIAdd &^ uint64(0x7<<16)
	env := &testEnv{words: map[uint32]uint64{
		0x08: iaddP0,
		0x10: wordExit,
	}, start: 8}
	c, err := Build(env, 8, Config{})
	require.NoError(t, err)
	var virt *Block
	for _, b := range c.Functions[0].Blocks {
		if b.Virtual() {
			virt = b
		}
	}
	require.NotNil(t, virt)
	require.Equal(t, uint32(0x08), virt.Begin)
	require.Equal(t, uint32(0x10), virt.End)
	require.Equal(t, EndBranch, virt.EndClass)
	require.Equal(t, uint32(0x10), virt.BranchTrue.Begin)
}

func TestBuildBlockSplit(t *testing.T) {
	// A backward branch into the middle of the entry block splits it.
	env := &testEnv{words: map[uint32]uint64{
		0x08: wordIAdd,
		0x10: wordIAdd,
		0x18: braWord(0, false, -0x10), // @P0 BRA 0x10
		0x28: wordExit,
	}, start: 8}
	c, err := Build(env, 8, Config{})
	require.NoError(t, err)
	blocks := c.Functions[0].Blocks
	require.Len(t, blocks, 3)
	require.Equal(t, uint32(0x08), blocks[0].Begin)
	require.Equal(t, uint32(0x10), blocks[0].End)
	require.Equal(t, EndBranch, blocks[0].EndClass)
	require.True(t, blocks[0].Cond.AlwaysTrue())
	require.Same(t, blocks[1], blocks[0].BranchTrue)
	require.Equal(t, uint32(0x10), blocks[1].Begin)
	require.Same(t, blocks[1], blocks[1].BranchTrue)
	require.Equal(t, EndExit, blocks[2].EndClass)
}

func TestTokenStack(t *testing.T) {
	var s tokenStack
	s = s.Push(tokSSY, 0x100)
	s = s.Push(tokPBK, 0x200)
	s = s.Push(tokSSY, 0x300)

	addr, rest, ok := s.Pop(tokSSY)
	require.True(t, ok)
	require.Equal(t, uint32(0x300), addr)

	// Popping PBK skips over the outer SSY without disturbing it.
	addr, rest2, ok := rest.Pop(tokPBK)
	require.True(t, ok)
	require.Equal(t, uint32(0x200), addr)

	addr, _, ok = rest2.Pop(tokSSY)
	require.True(t, ok)
	require.Equal(t, uint32(0x100), addr)

	// The original stack is untouched.
	addr, _, ok = s.Pop(tokSSY)
	require.True(t, ok)
	require.Equal(t, uint32(0x300), addr)

	_, _, ok = rest2.Pop(tokPCNT)
	require.False(t, ok)
}

func TestBuildProgramLinear(t *testing.T) {
	env := &testEnv{words: map[uint32]uint64{8: wordExit}, start: 8, stage: shader.StageCompute}
	p := ir.NewProgram(shader.StageCompute)
	err := BuildProgram(p, env, 8, Config{}, noTranslate, shader.HostTranslateInfo{})
	require.NoError(t, err)
	require.Len(t, p.Syntax, 2)
	require.Equal(t, ir.SyntaxBlock, p.Syntax[0].Kind)
	require.Equal(t, ir.SyntaxReturn, p.Syntax[1].Kind)
	entry := p.Syntax[0].Block
	require.Equal(t, ir.OpPrologue, entry.Head().Opcode())
	require.Equal(t, ir.OpEpilogue, entry.Tail().Opcode())
}

func TestBuildProgramLoop(t *testing.T) {
	// do { r3 = r2 + r1 } while (P0), shaped as SSY/SYNC with a
	// conditional backward branch.
	env := &testEnv{words: map[uint32]uint64{
		0x08: ssyWord(0x20),            // push exit 0x30
		0x10: wordIAdd,                 // loop body
		0x18: braWord(0, false, -0x10), // @P0 BRA 0x10
		0x28: wordSync,                 // pop SSY, jump 0x30
		0x30: wordExit,
	}, start: 8, stage: shader.StageFragment}
	p := ir.NewProgram(shader.StageFragment)
	err := BuildProgram(p, env, 8, Config{}, noTranslate, shader.HostTranslateInfo{})
	require.NoError(t, err)

	loops, repeats := 0, 0
	for _, n := range p.Syntax {
		switch n.Kind {
		case ir.SyntaxLoop:
			loops++
		case ir.SyntaxRepeat:
			repeats++
			require.NotNil(t, n.Header)
			require.NotNil(t, n.Merge)
		}
	}
	require.Equal(t, 1, loops)
	require.Equal(t, 1, repeats)
	require.Equal(t, ir.SyntaxReturn, p.Syntax[len(p.Syntax)-1].Kind)
	require.NotEmpty(t, p.PostOrderBlocks)
}

func TestBuildProgramIf(t *testing.T) {
	// A forward conditional branch becomes a single If/EndIf pair.
	env := &testEnv{words: map[uint32]uint64{
		0x08: braWord(0, true, 0x08), // @!P0 BRA 0x18
		0x10: wordIAdd,
		0x18: wordExit,
	}, start: 8, stage: shader.StageCompute}
	p := ir.NewProgram(shader.StageCompute)
	err := BuildProgram(p, env, 8, Config{}, noTranslate, shader.HostTranslateInfo{})
	require.NoError(t, err)

	ifs, endifs, loops := 0, 0, 0
	for _, n := range p.Syntax {
		switch n.Kind {
		case ir.SyntaxIf:
			ifs++
		case ir.SyntaxEndIf:
			endifs++
		case ir.SyntaxLoop:
			loops++
		}
	}
	require.Equal(t, 1, ifs)
	require.Equal(t, 1, endifs)
	require.Equal(t, 0, loops)
}

func TestIndirectBranchPattern(t *testing.T) {
	// IMNMX/SHL/LDC feeding BRX with a two entry jump table in c0[0x40].
	imnmx := imnmxImmWord(5, 6, 1)
	shl := shlImmWord(5, 5, 2)
	ldc := uint64(0xEF9)<<52 | uint64(0x10)<<20 | 0x7<<16 | 5<<8 | 4 // LDC R4, c0[R5 + 0x40]
	brx := uint64(0xE25)<<52 | 0x7<<16 | uint64(4)<<8 | 0xF
	env := &testEnv{
		words: map[uint32]uint64{
			0x08: imnmx,
			0x10: shl,
			0x18: ldc,
			0x28: brx,
			0x38: wordExit,
			0x48: wordExit,
		},
		cbuf: map[[2]uint32]uint32{
			{0, 0x40}: 0x08,
			{0, 0x44}: 0x18,
		},
		start: 8,
	}
	c, err := Build(env, 8, Config{})
	require.NoError(t, err)
	var brxBlock *Block
	for _, b := range c.Functions[0].Blocks {
		if b.EndClass == EndIndirectBranch {
			brxBlock = b
		}
	}
	require.NotNil(t, brxBlock)
	require.Equal(t, ir.Reg(4), brxBlock.BranchReg)
	require.Len(t, brxBlock.IndirectBranches, 2)
	require.Equal(t, uint32(0x08), brxBlock.IndirectBranches[0].Compare)
	require.Equal(t, uint32(0x38), brxBlock.IndirectBranches[0].Block.Begin)
	require.Equal(t, uint32(0x18), brxBlock.IndirectBranches[1].Compare)
	require.Equal(t, uint32(0x48), brxBlock.IndirectBranches[1].Block.Begin)
}

func shlImmWord(dest, src ir.Reg, shift uint32) uint64 {
	return uint64(0x3848)<<48 | uint64(shift)<<20 | 0x7<<16 | uint64(src)<<8 | uint64(dest)
}

func imnmxImmWord(dest, src ir.Reg, imm uint32) uint64 {
	return uint64(0x3820)<<48 | uint64(imm)<<20 | 0x7<<16 | uint64(src)<<8 | uint64(dest)
}
