package opt

import "github.com/gogpu/maxwell/ir"

// RemoveIdentities deletes Identity and Void instructions, forwarding their
// argument to every consumer. Run after any pass that introduces them.
func RemoveIdentities(p *ir.Program) {
	for _, b := range p.Blocks {
		for _, inst := range b.Instructions() {
			switch inst.Opcode() {
			case ir.OpIdentity:
				inst.ReplaceUsesWith(inst.Arg(0))
			case ir.OpVoid:
			default:
				continue
			}
			b.Remove(inst)
			inst.Invalidate()
		}
	}
}
