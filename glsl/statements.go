// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"github.com/gogpu/maxwell/ir"
)

// loopSafetyLimit bounds every structured loop. A guest shader that spins
// past it exits instead of hanging the host GPU.
const loopSafetyLimit = 0x2000

// emitSyntax walks the Abstract Syntax List and renders the body.
func (w *writer) emitSyntax() {
	for i := range w.p.Syntax {
		if w.err != nil {
			return
		}
		node := &w.p.Syntax[i]
		switch node.Kind {
		case ir.SyntaxBlock:
			w.emitBlock(node.Block)
		case ir.SyntaxIf:
			w.line("if (%s) {", w.val(node.Cond))
			w.indent++
		case ir.SyntaxEndIf:
			w.indent--
			w.line("}")
		case ir.SyntaxLoop:
			id := w.loopID
			w.loopID++
			w.loopStack = append(w.loopStack, id)
			if !w.profile.DisableLoopSafety {
				w.line("int loop%d = %#x;", id, loopSafetyLimit)
			}
			w.line("for (;;) {")
			w.indent++
		case ir.SyntaxRepeat:
			id := w.loopStack[len(w.loopStack)-1]
			w.loopStack = w.loopStack[:len(w.loopStack)-1]
			if w.profile.DisableLoopSafety {
				w.line("if (!(%s)) { break; }", w.val(node.Cond))
			} else {
				w.line("if (--loop%d < 0 || !(%s)) { break; }", id, w.val(node.Cond))
			}
			w.indent--
			w.line("}")
		case ir.SyntaxBreak:
			w.line("if (%s) { break; }", w.val(node.Cond))
		case ir.SyntaxReturn:
			w.line("return;")
		case ir.SyntaxUnreachable:
			w.line("return;")
		}
	}
}

func (w *writer) emitBlock(b *ir.Block) {
	for inst := b.Head(); inst != nil; inst = inst.Next() {
		if w.err != nil {
			return
		}
		if w.done[inst] {
			continue
		}
		w.emitInst(inst)
	}
}
