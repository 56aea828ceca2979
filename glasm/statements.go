// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"github.com/gogpu/maxwell/ir"
)

// loopSafetyLimit bounds every structured loop. A guest shader that spins
// past it exits instead of hanging the host GPU.
const loopSafetyLimit = 0x2000

// emitSyntax walks the Abstract Syntax List and renders the body.
func (w *writer) emitSyntax() {
	var counters []uint32
	for i := range w.p.Syntax {
		if w.err != nil {
			return
		}
		node := &w.p.Syntax[i]
		switch node.Kind {
		case ir.SyntaxBlock:
			w.emitBlock(node.Block)
		case ir.SyntaxIf:
			w.op("MOV.S.CC RC.x, %s", w.val(node.Cond))
			w.flush()
			w.op("IF NE.x")
		case ir.SyntaxEndIf:
			w.op("ENDIF")
		case ir.SyntaxLoop:
			if !w.profile.DisableLoopSafety {
				def := w.alloc(false)
				counters = append(counters, def)
				w.op("MOV.S %s.x, 0x%x", regName(def), loopSafetyLimit)
			}
			w.op("REP")
		case ir.SyntaxRepeat:
			var def uint32
			if !w.profile.DisableLoopSafety {
				def = counters[len(counters)-1]
				counters = counters[:len(counters)-1]
				w.op("SUB.S.CC %s.x, %s.x, 1", regName(def), regName(def))
				w.op("BRK (LT.x)")
			}
			w.op("MOV.S.CC RC.x, %s", w.val(node.Cond))
			w.flush()
			w.op("BRK (EQ.x)")
			w.op("ENDREP")
			if def != 0 {
				w.freeScratch(def)
			}
		case ir.SyntaxBreak:
			w.op("MOV.S.CC RC.x, %s", w.val(node.Cond))
			w.flush()
			w.op("BRK (NE.x)")
		case ir.SyntaxReturn, ir.SyntaxUnreachable:
			w.op("RET")
		}
	}
}

func (w *writer) emitBlock(b *ir.Block) {
	for inst := b.Head(); inst != nil; inst = inst.Next() {
		if w.err != nil {
			return
		}
		if w.done[inst] {
			// Already rendered inline; still retire its operand reads.
			for n := 0; n < inst.NumArgs(); n++ {
				if arg := inst.Arg(n).Resolve().Inst(); arg != nil {
					w.consumed = append(w.consumed, arg)
				}
			}
			w.flush()
			continue
		}
		w.emitInst(inst)
		w.flush()
	}
}
