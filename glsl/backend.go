// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl emits OpenGL Shading Language 4.50 source from an optimized
// program. The walker follows the Abstract Syntax List; every instruction
// result is materialized into a typed temporary declared at function entry.
package glsl

import (
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// Compile renders p as a GLSL translation unit. The profile selects driver
// workarounds and the runtime info carries the guest pipeline state baked
// into the text.
func Compile(p *ir.Program, env shader.Environment, profile *shader.Profile, rt *shader.RuntimeInfo) (string, error) {
	w := newWriter(p, env, profile, rt)
	w.precolorPhis()
	w.emitDeclarations()
	w.emitSyntax()
	if w.err != nil {
		return "", w.err
	}
	return w.assemble(), nil
}
