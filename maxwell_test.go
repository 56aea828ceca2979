package maxwell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

type testEnv struct {
	words  map[uint32]uint64
	cbuf   map[[2]uint32]uint32
	stage  shader.Stage
	bound  uint32
	shared uint32
}

func (e *testEnv) ReadInstruction(addr uint32) uint64 { return e.words[addr] }
func (e *testEnv) ReadCbufValue(index, offset uint32) uint32 {
	return e.cbuf[[2]uint32{index, offset}]
}
func (e *testEnv) ReadTextureType(uint32) shader.TextureType { return shader.TextureColor2D }
func (e *testEnv) TextureBoundBuffer() uint32                { return e.bound }
func (e *testEnv) LocalMemorySize() uint32                   { return 0 }
func (e *testEnv) SharedMemorySize() uint32                  { return e.shared }
func (e *testEnv) WorkgroupSize() [3]uint32                  { return [3]uint32{1, 1, 1} }
func (e *testEnv) SPH() *shader.ProgramHeader                { return &shader.ProgramHeader{} }
func (e *testEnv) GpPassthroughMask() *[8]uint32             { return nil }
func (e *testEnv) ShaderStage() shader.Stage                 { return e.stage }
func (e *testEnv) StartAddress() uint32                      { return 8 }

const (
	wordExit = 0xE30000000007000F // EXIT with @PT
	wordIAdd = 0x5C10000000170203 // IADD R3, R2, R1
	wordSync = 0xF0F800000007000F // SYNC with @PT
)

// stsWord stores a 32-bit register to shared memory at an RZ-based offset,
// which keeps otherwise dead results alive through the pipeline.
func stsWord(data ir.Reg, offset uint32) uint64 {
	return 0x1DEB<<51 | 4<<48 | uint64(offset)<<20 | 0x7<<16 | 0xFF<<8 | uint64(data)
}

// ldcWord loads a 32-bit word from a constant buffer with an absolute
// offset (RZ source).
func ldcWord(dest ir.Reg, index, byteOffset uint32) uint64 {
	return 0x1DF2<<51 | 2<<48 | uint64(index)<<34 |
		uint64(byteOffset/4)<<20 | 0x7<<16 | 0xFF<<8 | uint64(dest)
}

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

func translateGLSL(t *testing.T, env *testEnv, host shader.HostTranslateInfo) (*ir.Program, string) {
	t.Helper()
	p, err := TranslateProgramWithOptions(env, host, TranslateOptions{Validate: true})
	require.NoError(t, err)
	src, err := CompileGLSL(p, env, &shader.Profile{}, &shader.RuntimeInfo{})
	require.NoError(t, err)
	return p, src
}

func findOp(p *ir.Program, op ir.Opcode) *ir.Inst {
	for _, b := range p.Blocks {
		for inst := b.Head(); inst != nil; inst = inst.Next() {
			if inst.Opcode() == op {
				return inst
			}
		}
	}
	return nil
}

func TestEmptyComputeShader(t *testing.T) {
	env := &testEnv{
		words: map[uint32]uint64{8: wordExit},
		stage: shader.StageCompute,
	}
	p, src := translateGLSL(t, env, shader.HostTranslateInfo{})

	assert.Contains(t, src, "#version 450\n")
	assert.Contains(t, src, "layout(local_size_x=1, local_size_y=1, local_size_z=1) in;")
	assert.Contains(t, src, "void main() {")
	assert.Contains(t, src, "return;")
	assert.Empty(t, p.Info.Textures)
	assert.Empty(t, p.Info.StorageBuffers)
	assert.Empty(t, p.Info.ConstantBuffers)
}

func TestIAddSurvivesPipeline(t *testing.T) {
	env := &testEnv{
		words: map[uint32]uint64{
			0x08: wordIAdd,
			0x10: stsWord(3, 0),
			0x18: wordExit,
		},
		stage:  shader.StageCompute,
		shared: 16,
	}
	p, src := translateGLSL(t, env, shader.HostTranslateInfo{})

	add := findOp(p, ir.OpIAdd32)
	require.NotNil(t, add)
	// Register state ops are gone after SSA; the add reads SSA defs.
	assert.Nil(t, findOp(p, ir.OpGetRegister))
	assert.Nil(t, findOp(p, ir.OpSetRegister))
	assert.Contains(t, src, " + ")
}

func TestStorageBufferPromotion(t *testing.T) {
	env := &testEnv{
		words: map[uint32]uint64{
			0x08: ldcWord(2, 0, 0x110),
			0x10: ldcWord(3, 0, 0x114),
			0x18: 0x1DDA<<51 | 4<<48 | 0x7<<16 | 2<<8 | 0, // LDG.E R0, [R2]
			0x20: 0x1DDB<<51 | 4<<48 | 0x7<<16 | 2<<8 | 0, // STG.E [R2], R0
			0x28: wordExit,
		},
		stage: shader.StageCompute,
	}
	p, src := translateGLSL(t, env, shader.HostTranslateInfo{})

	require.Len(t, p.Info.StorageBuffers, 1)
	desc := p.Info.StorageBuffers[0]
	assert.Equal(t, uint32(0), desc.CbufIndex)
	assert.Equal(t, uint32(0x110), desc.CbufOffset)
	assert.Equal(t, uint32(1), desc.Count)
	assert.True(t, desc.IsWritten)

	assert.Nil(t, findOp(p, ir.OpLoadGlobal32))
	assert.Nil(t, findOp(p, ir.OpWriteGlobal32))
	load := findOp(p, ir.OpLoadStorage32)
	require.NotNil(t, load)
	assert.Equal(t, uint32(0), load.Arg(0).U32())
	require.NotNil(t, findOp(p, ir.OpWriteStorage32))

	assert.Contains(t, src, "cs_ssbo0[")
}

func TestBindlessTexturePromotion(t *testing.T) {
	// TEX.B samples through a handle loaded from c1[0x40].
	tex := uint64(0xC0)<<56 | 1<<54 | 8<<39 | 1<<31 | 2<<28 | 0x7<<16 | 0<<8 | 4
	env := &testEnv{
		words: map[uint32]uint64{
			0x08: ldcWord(8, 1, 0x40),
			0x10: tex,
			0x18: stsWord(4, 0),
			0x20: wordExit,
		},
		stage:  shader.StageCompute,
		shared: 16,
	}
	p, src := translateGLSL(t, env, shader.HostTranslateInfo{})

	require.Len(t, p.Info.Textures, 1)
	desc := p.Info.Textures[0]
	assert.Equal(t, uint32(1), desc.CbufIndex)
	assert.Equal(t, uint32(0x40), desc.CbufOffset)
	assert.Equal(t, uint32(1), desc.Count)
	assert.Equal(t, shader.TextureColor2D, desc.Type)

	sample := findOp(p, ir.OpImageSampleImplicitLod)
	require.NotNil(t, sample)
	assert.Equal(t, uint32(0), sample.Arg(0).U32())
	assert.Nil(t, findOp(p, ir.OpBindlessImageSampleImplicitLod))

	assert.Contains(t, src, "texture(")
}

func TestLoopFromTokenPair(t *testing.T) {
	// do { r3 = r2 + r1 } while (r3 < 10), shaped as SSY/SYNC around a
	// conditional backward branch.
	isetp := uint64(0x6CC)<<51 | 1<<49 | 7<<39 | 10<<20 | 0x7<<16 | 3<<8 | 7
	env := &testEnv{
		words: map[uint32]uint64{
			0x08: ssyWord(0x20), // push exit 0x30
			0x10: wordIAdd,
			0x18: isetp,                    // ISETP.LT.U32 P0, R3, 10
			0x20: braWord(0, false, -0x18), // @P0 BRA 0x10
			0x28: wordSync,
			0x30: wordExit,
		},
		stage: shader.StageCompute,
	}
	p, src := translateGLSL(t, env, shader.HostTranslateInfo{})

	loops, repeats := 0, 0
	for _, n := range p.Syntax {
		switch n.Kind {
		case ir.SyntaxLoop:
			loops++
		case ir.SyntaxRepeat:
			repeats++
		}
	}
	assert.Equal(t, 1, loops)
	assert.Equal(t, 1, repeats)

	assert.Contains(t, src, "for (;;) {")
	assert.Contains(t, src, "if (--loop0 < 0 || !(")
}

func TestHalfFmaLoweredWithoutFP16(t *testing.T) {
	// HFMA2 R0, R2, R3, R4 on a host without native half support.
	hfma2 := uint64(0x0BA0)<<51 | 4<<39 | 3<<20 | 0x7<<16 | 2<<8 | 0
	env := &testEnv{
		words: map[uint32]uint64{
			0x08: hfma2,
			0x10: stsWord(0, 0),
			0x18: wordExit,
		},
		stage:  shader.StageCompute,
		shared: 16,
	}
	p, src := translateGLSL(t, env, shader.HostTranslateInfo{SupportFloat16: false})

	assert.Nil(t, findOp(p, ir.OpFPFma16))
	require.NotNil(t, findOp(p, ir.OpFPFma32))
	for _, b := range p.Blocks {
		for inst := b.Head(); inst != nil; inst = inst.Next() {
			assert.NotEqual(t, ir.TypeF16, inst.ResultType())
			assert.NotEqual(t, ir.TypeF16x2, inst.ResultType())
		}
	}

	assert.Contains(t, src, "fma(")
	assert.Contains(t, src, "packHalf2x16(")
}
