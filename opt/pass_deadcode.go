package opt

import "github.com/gogpu/maxwell/ir"

// DeadCodeElimination removes instructions with no uses and no side
// effects. Blocks are visited in post order and instructions in reverse, so
// one sweep catches chains of dead values.
func DeadCodeElimination(p *ir.Program) {
	ordered := make(map[*ir.Block]bool, len(p.PostOrderBlocks))
	for _, b := range p.PostOrderBlocks {
		ordered[b] = true
		removeDead(b)
	}
	for _, b := range p.Blocks {
		if !ordered[b] {
			removeDead(b)
		}
	}
}

func removeDead(b *ir.Block) {
	for inst := b.Tail(); inst != nil; {
		prev := inst.Prev()
		if inst.UseCount() == 0 && !inst.MayHaveSideEffects() {
			b.Remove(inst)
			inst.Invalidate()
		}
		inst = prev
	}
}
