// Command maxwellc recompiles a raw Maxwell shader blob from disk.
//
// The input is the guest binary as dumped from memory: a 0x50-byte program
// header followed by the machine code, or bare machine code for compute.
//
//	maxwellc glsl -stage fragment shader.bin
//	maxwellc glasm -stage compute -workgroup 8,8,1 kernel.bin
//	maxwellc glsl -stage vertex -dump-ir shader.bin
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/gogpu/maxwell"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

func main() {
	compileFlags := []*cli.Flag{
		cli.NewFlag("stage", "compute", "pipeline stage of the input blob (vertex, tess-control, tess-eval, geometry, fragment, compute)"),
		cli.NewFlag("workgroup", "1,1,1", "compute workgroup dimensions"),
		cli.NewFlag("shared-size", 0, "compute shared memory size in bytes"),
		cli.NewFlag("local-size", 0, "compute local memory size in bytes"),
		cli.NewFlag("tex-cbuf", 1, "constant buffer slot holding bound texture handles"),
		cli.NewFlag("dump-ir", false, "print the optimized program before emission"),
		cli.NewFlag("validate", false, "run the structural verifier after each pass"),
		cli.NewFlag("bound-ssbo", true, "assembly output uses bound storage buffers"),
		cli.NewFlag("no-loop-safety", false, "omit the per-loop iteration counters"),
	}

	app := &cli.Command{
		Name:        "maxwellc",
		Description: "maxwellc recompiles Maxwell shader binaries to host shader text",
		Commands: []*cli.Command{
			{
				Name:        "glsl",
				Description: "emit a GLSL translation unit",
				Flags:       compileFlags,
				Args:        cli.Args{},
				Action:      compileAct,
			},
			{
				Name:        "glasm",
				Description: "emit NV_gpu_program5 assembly",
				Flags:       compileFlags,
				Args:        cli.Args{},
				Action:      compileAct,
			},
		},
		Flags: []*cli.Flag{cli.HelpFlag},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func compileAct(c *cli.Command) error {
	if len(c.Args) == 0 {
		return errors.New("no input file")
	}

	stage, err := parseStage(c.String("stage"))
	if err != nil {
		return err
	}
	workgroup, err := parseWorkgroup(c.String("workgroup"))
	if err != nil {
		return err
	}

	for _, name := range c.Args {
		blob, err := os.ReadFile(name)
		if err != nil {
			return errors.Wrap(err, "read %v", name)
		}

		env, err := newFileEnv(blob, stage)
		if err != nil {
			return errors.Wrap(err, "%v", name)
		}
		env.workgroup = workgroup
		env.shared = uint32(c.Int("shared-size"))
		env.local = uint32(c.Int("local-size"))
		env.texCbuf = uint32(c.Int("tex-cbuf"))

		host := shader.HostTranslateInfo{}
		opts := maxwell.TranslateOptions{Validate: c.Bool("validate")}
		p, err := maxwell.TranslateProgramWithOptions(env, host, opts)
		if err != nil {
			return errors.Wrap(err, "translate %v", name)
		}

		if c.Bool("dump-ir") {
			dumpIR(p)
		}

		profile := &shader.Profile{DisableLoopSafety: c.Bool("no-loop-safety")}
		rt := &shader.RuntimeInfo{GlasmUseStorageBuffers: c.Bool("bound-ssbo")}
		var src string
		if c.Name == "glasm" {
			src, err = maxwell.CompileGLASM(p, env, profile, rt)
		} else {
			src, err = maxwell.CompileGLSL(p, env, profile, rt)
		}
		if err != nil {
			return errors.Wrap(err, "compile %v", name)
		}

		tlog.V("timing").Printw("compiled", "file", name, "stage", stage)
		fmt.Print(src)
	}

	return nil
}

func parseStage(s string) (shader.Stage, error) {
	switch s {
	case "vertex":
		return shader.StageVertexB, nil
	case "vertex-a":
		return shader.StageVertexA, nil
	case "tess-control":
		return shader.StageTessellationControl, nil
	case "tess-eval":
		return shader.StageTessellationEval, nil
	case "geometry":
		return shader.StageGeometry, nil
	case "fragment":
		return shader.StageFragment, nil
	case "compute":
		return shader.StageCompute, nil
	}
	return 0, errors.New("unknown stage %q", s)
}

func parseWorkgroup(s string) ([3]uint32, error) {
	var ws [3]uint32
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return ws, errors.New("workgroup must be x,y,z")
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return ws, errors.Wrap(err, "workgroup dimension %d", i)
		}
		ws[i] = uint32(v)
	}
	return ws, nil
}

// dumpIR prints the Abstract Syntax List with each block's instructions,
// then spews the collected shader info.
func dumpIR(p *ir.Program) {
	for _, n := range p.Syntax {
		switch n.Kind {
		case ir.SyntaxBlock:
			fmt.Fprintf(os.Stderr, "%v:\n", n.Kind)
			for inst := n.Block.Head(); inst != nil; inst = inst.Next() {
				fmt.Fprintf(os.Stderr, "    %v\n", inst)
			}
		case ir.SyntaxIf, ir.SyntaxRepeat, ir.SyntaxBreak:
			fmt.Fprintf(os.Stderr, "%v %v\n", n.Kind, n.Cond)
		default:
			fmt.Fprintf(os.Stderr, "%v\n", n.Kind)
		}
	}
	spew.Fdump(os.Stderr, p.Info)
}

// fileEnv backs the translation environment with a flat shader dump.
// Constant buffer contents are not part of the blob, so cbuf reads resolve
// to zero and texture handles classify as 2D color.
type fileEnv struct {
	stage     shader.Stage
	sph       *shader.ProgramHeader
	code      []byte
	workgroup [3]uint32
	shared    uint32
	local     uint32
	texCbuf   uint32
}

func newFileEnv(blob []byte, stage shader.Stage) (*fileEnv, error) {
	e := &fileEnv{stage: stage, sph: &shader.ProgramHeader{}}
	if stage == shader.StageCompute {
		e.code = blob
		return e, nil
	}
	if len(blob) < shader.ProgramHeaderSize {
		return nil, errors.New("blob smaller than the program header")
	}
	e.sph = shader.ProgramHeaderFromBytes(blob)
	e.code = blob[shader.ProgramHeaderSize:]
	return e, nil
}

func (e *fileEnv) ReadInstruction(addr uint32) uint64 {
	if int(addr)+8 > len(e.code) {
		return 0
	}
	return binary.LittleEndian.Uint64(e.code[addr:])
}

func (e *fileEnv) ReadCbufValue(index, offset uint32) uint32 { return 0 }

func (e *fileEnv) ReadTextureType(raw uint32) shader.TextureType {
	return shader.TextureColor2D
}

func (e *fileEnv) TextureBoundBuffer() uint32 { return e.texCbuf }
func (e *fileEnv) LocalMemorySize() uint32 {
	if e.stage == shader.StageCompute {
		return e.local
	}
	return e.sph.LocalMemorySize()
}
func (e *fileEnv) SharedMemorySize() uint32    { return e.shared }
func (e *fileEnv) WorkgroupSize() [3]uint32    { return e.workgroup }
func (e *fileEnv) SPH() *shader.ProgramHeader  { return e.sph }
func (e *fileEnv) GpPassthroughMask() *[8]uint32 { return nil }
func (e *fileEnv) ShaderStage() shader.Stage   { return e.stage }
func (e *fileEnv) StartAddress() uint32        { return 0 }
