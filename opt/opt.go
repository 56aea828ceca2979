package opt

import (
	"tlog.app/go/errors"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// Options tunes the pipeline. CheckAfterEachPass runs the structural
// verifier between passes; it is slow and meant for chasing pass bugs.
type Options struct {
	CheckAfterEachPass bool
}

type pass struct {
	name string
	run  func() error
}

// Run executes the optimization pipeline over a freshly translated program:
// SSA construction, resource promotion, folding, the host gated lowerings,
// cleanup, and the ShaderInfo collection.
func Run(p *ir.Program, env shader.Environment, host shader.HostTranslateInfo, o Options) error {
	passes := []pass{
		{"ssa", func() error { Rewrite(p); return nil }},
		{"global-memory", func() error { GlobalMemoryToStorageBuffer(p); return nil }},
		{"texture", func() error { return TexturePromotion(p, env) }},
		{"fold", func() error { ConstantPropagation(p); return nil }},
	}
	if !host.SupportFloat16 {
		passes = append(passes, pass{"lower-fp16", func() error { LowerFP16ToFP32(p); return nil }})
	}
	if !host.SupportInt64 {
		passes = append(passes, pass{"lower-int64", func() error { LowerInt64ToInt32(p); return nil }})
	}
	passes = append(passes,
		pass{"identity", func() error { RemoveIdentities(p); return nil }},
		pass{"fold", func() error { ConstantPropagation(p); return nil }},
		pass{"dce", func() error { DeadCodeElimination(p); return nil }},
		pass{"collect", func() error { CollectShaderInfo(p, env); return nil }},
	)

	for _, ps := range passes {
		if err := ps.run(); err != nil {
			return errors.Wrap(err, "%v pass", ps.name)
		}
		if o.CheckAfterEachPass {
			if err := Verify(p); err != nil {
				return errors.Wrap(err, "after %v pass", ps.name)
			}
		}
	}
	return nil
}
