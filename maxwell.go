// Package maxwell provides a Pure Go shader recompiler.
//
// maxwell lifts NVIDIA Maxwell shader machine code into a typed SSA
// intermediate representation and emits host shader text:
//   - GLSL — OpenGL Shading Language 4.5
//   - GLASM — the NV_gpu_program5 assembly family
//
// The package provides a simple, high-level API as well as lower-level
// access to the individual stages: control flow reconstruction (flow),
// instruction translation (translate), the optimization pipeline (opt),
// and the backends (glsl, glasm).
//
// Example usage:
//
//	prog, err := maxwell.TranslateProgram(env, host)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	src, err := maxwell.CompileGLSL(prog, env, profile, rt)
//
// The Environment abstracts guest memory: instruction fetch, constant
// buffer reads, and texture handle resolution all go through it, so a
// caller can back it with an emulator's address space or a flat file.
package maxwell

import (
	"tlog.app/go/errors"

	"github.com/gogpu/maxwell/flow"
	"github.com/gogpu/maxwell/glasm"
	"github.com/gogpu/maxwell/glsl"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/opt"
	"github.com/gogpu/maxwell/shader"
	"github.com/gogpu/maxwell/translate"
)

// TranslateOptions configures the recompilation pipeline.
type TranslateOptions struct {
	// Flow tunes control flow reconstruction, such as routing EXIT to a
	// shared dispatcher block for paired vertex programs.
	Flow flow.Config

	// Validate runs the structural verifier after every optimization
	// pass. Slow; meant for chasing pass bugs.
	Validate bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() TranslateOptions {
	return TranslateOptions{}
}

// TranslateProgram lifts the shader at env.StartAddress into an optimized
// program using default options.
func TranslateProgram(env shader.Environment, host shader.HostTranslateInfo) (*ir.Program, error) {
	return TranslateProgramWithOptions(env, host, DefaultOptions())
}

// TranslateProgramWithOptions lifts the shader at env.StartAddress into an
// optimized program.
//
// The pipeline is:
//  1. Reconstruct structured control flow from the machine code
//  2. Translate each instruction range into IR blocks
//  3. Run the optimization passes: SSA construction, storage buffer and
//     texture promotion, folding, host gated lowerings, cleanup, and the
//     ShaderInfo collection
func TranslateProgramWithOptions(env shader.Environment, host shader.HostTranslateInfo, opts TranslateOptions) (*ir.Program, error) {
	p := ir.NewProgram(env.ShaderStage())
	p.LocalMemorySize = env.LocalMemorySize()
	switch p.Stage {
	case shader.StageCompute:
		p.WorkgroupSize = env.WorkgroupSize()
		p.SharedMemorySize = env.SharedMemorySize()
	case shader.StageGeometry:
		sph := env.SPH()
		p.OutputTopology = sph.OutputTopology()
		p.OutputVertices = sph.MaxOutputVertices()
		p.Invocations = sph.ThreadsPerInputPrimitive()
		p.IsGeometryPassthrough = sph.GeometryPassthrough()
	case shader.StageTessellationControl:
		p.OutputVertices = env.SPH().ThreadsPerInputPrimitive()
	}

	tr := translate.New(p)
	if err := flow.BuildProgram(p, env, env.StartAddress(), opts.Flow, tr.Block, host); err != nil {
		return nil, errors.Wrap(err, "control flow")
	}
	if err := opt.Run(p, env, host, opt.Options{CheckAfterEachPass: opts.Validate}); err != nil {
		return nil, errors.Wrap(err, "optimize")
	}
	return p, nil
}

// CompileGLSL renders an optimized program as a GLSL translation unit.
func CompileGLSL(p *ir.Program, env shader.Environment, profile *shader.Profile, rt *shader.RuntimeInfo) (string, error) {
	return glsl.Compile(p, env, profile, rt)
}

// CompileGLASM renders an optimized program as NV_gpu_program5 assembly.
func CompileGLASM(p *ir.Program, env shader.Environment, profile *shader.Profile, rt *shader.RuntimeInfo) (string, error) {
	return glasm.Compile(p, env, profile, rt)
}
