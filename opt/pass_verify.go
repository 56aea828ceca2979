package opt

import (
	"tlog.app/go/errors"

	"github.com/gogpu/maxwell/ir"
)

// Verify checks the structural invariants every pass must preserve: phis
// grouped at the block head, declared arities and argument types, and use
// counters matching the actual reference graph. A failure is a compiler
// bug, not a guest shader problem; run it between passes when chasing one.
func Verify(p *ir.Program) error {
	uses := map[*ir.Inst]int{}
	known := map[*ir.Inst]bool{}
	for _, b := range p.Blocks {
		for inst := b.Head(); inst != nil; inst = inst.Next() {
			known[inst] = true
		}
	}

	for _, b := range p.Blocks {
		inPhis := true
		for inst := b.Head(); inst != nil; inst = inst.Next() {
			if inst.Opcode() == ir.OpPhi {
				if !inPhis {
					return verifyError(inst, "phi below a non-phi instruction")
				}
			} else {
				inPhis = false
			}
			if err := verifyInst(inst, known, uses); err != nil {
				return err
			}
		}
	}

	for _, b := range p.Blocks {
		for inst := b.Head(); inst != nil; inst = inst.Next() {
			if inst.UseCount() != uses[inst] {
				return verifyError(inst, "use counter says %d, found %d references",
					inst.UseCount(), uses[inst])
			}
		}
	}
	return nil
}

func verifyInst(inst *ir.Inst, known map[*ir.Inst]bool, uses map[*ir.Inst]int) error {
	op := inst.Opcode()
	if op != ir.OpPhi && inst.NumArgs() != op.NumArgs() {
		return verifyError(inst, "%d arguments declared, %d present",
			op.NumArgs(), inst.NumArgs())
	}
	for n := 0; n < inst.NumArgs(); n++ {
		arg := inst.Arg(n)
		if def := arg.Inst(); def != nil {
			if !known[def] {
				return verifyError(inst, "argument %d defined outside the program", n)
			}
			uses[def]++
		}
		if op == ir.OpPhi {
			continue
		}
		if !arg.Type().Compatible(op.ArgTypeOf(n)) {
			return verifyError(inst, "argument %d is %v, slot wants %v",
				n, arg.Type(), op.ArgTypeOf(n))
		}
	}
	return nil
}

func verifyError(inst *ir.Inst, format string, args ...any) error {
	err := errors.New(format, args...)
	return errors.Wrap(err, "%v", inst.Opcode())
}
