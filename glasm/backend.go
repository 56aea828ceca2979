// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glasm emits NVIDIA assembly program text (the NV_gpu_program5
// family) from an optimized program. The walker follows the Abstract
// Syntax List; instruction results live in recycled vec4 temporaries, with
// 64-bit values in long temporaries.
package glasm

import (
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// Compile renders p as an assembly translation unit.
func Compile(p *ir.Program, env shader.Environment, profile *shader.Profile, rt *shader.RuntimeInfo) (string, error) {
	w := newWriter(p, env, profile, rt)
	w.precolorPhis()
	w.countUses()
	w.emitSyntax()
	if w.err != nil {
		return "", w.err
	}
	return w.assemble(), nil
}
