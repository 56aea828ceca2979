package ir

import "fmt"

// MaxArgCount is the inline argument capacity. Phi nodes are the only
// variadic opcode and spill past it.
const MaxArgCount = 5

type use struct {
	inst *Inst
	slot int
}

// assocPseudo links an instruction to the pseudo result instructions
// attached to it (GetZeroFromOp and friends).
type assocPseudo struct {
	zero     *Inst
	sign     *Inst
	carry    *Inst
	overflow *Inst
	sparse   *Inst
	inBounds *Inst
}

// Inst is one IR instruction. Instructions live in exactly one Block,
// linked intrusively, and are allocated from the Program's pool.
type Inst struct {
	op    Opcode
	flags uint32

	// definition is backend scratch: a GLASM register id or a GLSL
	// temporary index.
	definition uint32

	args  []Value
	small [MaxArgCount]Value

	// users tracks every argument slot referencing this instruction;
	// useCount is kept in sync and checked by the verifier.
	users    []use
	useCount int

	assoc *assocPseudo

	prev, next *Inst
	block      *Block

	// phiBlocks runs parallel to args on Phi instructions.
	phiBlocks []*Block
}

func (i *Inst) init(op Opcode) {
	i.op = op
	if op != OpPhi {
		i.args = i.small[:op.NumArgs()]
	}
}

// Opcode returns the instruction's opcode.
func (i *Inst) Opcode() Opcode { return i.op }

// ResultType returns the type of the value the instruction produces.
func (i *Inst) ResultType() Type { return i.op.ResultType() }

// Flags returns the raw 32-bit flag payload.
func (i *Inst) Flags() uint32 { return i.flags }

// SetFlags stores the raw flag payload.
func (i *Inst) SetFlags(f uint32) { i.flags = f }

// FpControl decodes the floating point flag payload.
func (i *Inst) FpControl() FpControl { return FpControlFromFlags(i.flags) }

// TextureInfo decodes the texture flag payload.
func (i *Inst) TextureInfo() TextureInstInfo { return TextureInstInfoFromFlags(i.flags) }

// Definition returns the backend scratch word.
func (i *Inst) Definition() uint32 { return i.definition }

// SetDefinition stores the backend scratch word.
func (i *Inst) SetDefinition(d uint32) { i.definition = d }

// UseCount returns the number of non-immediate references to this
// instruction across all live instructions.
func (i *Inst) UseCount() int { return i.useCount }

// Block returns the block the instruction lives in.
func (i *Inst) Block() *Block { return i.block }

// Prev and Next iterate the containing block's instruction list.
func (i *Inst) Prev() *Inst { return i.prev }
func (i *Inst) Next() *Inst { return i.next }

// NumArgs returns the argument count, including phi operands.
func (i *Inst) NumArgs() int { return len(i.args) }

// Arg returns argument slot n.
func (i *Inst) Arg(n int) Value { return i.args[n] }

// SetArg stores value into argument slot n, maintaining use counts on both
// the old and the new referenced instructions.
func (i *Inst) SetArg(n int, v Value) {
	if old := i.args[n]; old.inst != nil {
		old.inst.removeUse(i, n)
	}
	i.args[n] = v
	if v.inst != nil {
		v.inst.addUse(i, n)
	}
}

func (i *Inst) addUse(by *Inst, slot int) {
	i.users = append(i.users, use{inst: by, slot: slot})
	i.useCount++
}

func (i *Inst) removeUse(by *Inst, slot int) {
	for n, u := range i.users {
		if u.inst == by && u.slot == slot {
			last := len(i.users) - 1
			i.users[n] = i.users[last]
			i.users = i.users[:last]
			i.useCount--
			return
		}
	}
	panic("ir: use count underflow")
}

// AddPhiOperand appends one (predecessor, value) pair to a phi node. The
// pair order must match the block's predecessor order.
func (i *Inst) AddPhiOperand(pred *Block, v Value) {
	if i.op != OpPhi {
		panic("ir: AddPhiOperand on non-phi")
	}
	i.args = append(i.args, Value{})
	i.phiBlocks = append(i.phiBlocks, pred)
	i.SetArg(len(i.args)-1, v)
}

// PhiBlock returns the predecessor block of phi operand n.
func (i *Inst) PhiBlock(n int) *Block { return i.phiBlocks[n] }

// AreAllArgsImmediates reports whether every argument resolves to an
// immediate.
func (i *Inst) AreAllArgsImmediates() bool {
	for _, a := range i.args {
		if a.IsEmpty() || !a.IsImmediate() {
			return false
		}
	}
	return true
}

// ReplaceUsesWith redirects every user argument slot pointing at this
// instruction to the replacement value.
func (i *Inst) ReplaceUsesWith(v Value) {
	for len(i.users) > 0 {
		u := i.users[len(i.users)-1]
		u.inst.SetArg(u.slot, v)
	}
}

// ReplaceOpcode retargets the instruction to another opcode, keeping
// arguments and flags. Used by the lowering passes to change a width or to
// collapse into Identity.
func (i *Inst) ReplaceOpcode(op Opcode) {
	if op == OpPhi || i.op == OpPhi {
		panic("ir: cannot replace phi opcode")
	}
	i.op = op
	// Keep only the arguments the new opcode declares.
	if n := op.NumArgs(); n < len(i.args) {
		for slot := n; slot < len(i.args); slot++ {
			i.SetArg(slot, Value{})
		}
		i.args = i.args[:n]
	}
}

// Invalidate releases all argument references so the pool can reclaim the
// instruction. The instruction must have no remaining uses.
func (i *Inst) Invalidate() {
	i.unlinkPseudo()
	for n := range i.args {
		i.SetArg(n, Value{})
	}
	i.args = nil
	i.phiBlocks = nil
	i.assoc = nil
	i.op = OpVoid
}

// Pseudo result plumbing. A pseudo instruction's first argument references
// the instruction it is attached to; the target holds the back link.

func pseudoSlot(a *assocPseudo, op Opcode) **Inst {
	switch op {
	case OpGetZeroFromOp:
		return &a.zero
	case OpGetSignFromOp:
		return &a.sign
	case OpGetCarryFromOp:
		return &a.carry
	case OpGetOverflowFromOp:
		return &a.overflow
	case OpGetSparseFromOp:
		return &a.sparse
	case OpGetInBoundsFromOp:
		return &a.inBounds
	default:
		panic(fmt.Sprintf("ir: %v is not a pseudo opcode", op))
	}
}

// IsPseudo reports whether op is one of the attached pseudo results.
func (o Opcode) IsPseudo() bool {
	switch o {
	case OpGetZeroFromOp, OpGetSignFromOp, OpGetCarryFromOp,
		OpGetOverflowFromOp, OpGetSparseFromOp, OpGetInBoundsFromOp:
		return true
	}
	return false
}

func (i *Inst) attachPseudo(pseudo *Inst) {
	if i.assoc == nil {
		i.assoc = new(assocPseudo)
	}
	slot := pseudoSlot(i.assoc, pseudo.op)
	if *slot != nil {
		panic(fmt.Sprintf("ir: duplicate %v attachment", pseudo.op))
	}
	*slot = pseudo
}

func (i *Inst) unlinkPseudo() {
	if !i.op.IsPseudo() || len(i.args) == 0 {
		return
	}
	if a := i.args[0]; a.inst != nil && a.inst.assoc != nil {
		if slot := pseudoSlot(a.inst.assoc, i.op); *slot == i {
			*slot = nil
		}
	}
}

// HasAssociatedPseudoOperation reports whether any pseudo result is
// attached to this instruction.
func (i *Inst) HasAssociatedPseudoOperation() bool {
	a := i.assoc
	return a != nil && (a.zero != nil || a.sign != nil || a.carry != nil ||
		a.overflow != nil || a.sparse != nil || a.inBounds != nil)
}

// AssociatedPseudoOperation returns the attached pseudo instruction of the
// given opcode, or nil.
func (i *Inst) AssociatedPseudoOperation(op Opcode) *Inst {
	if i.assoc == nil {
		return nil
	}
	return *pseudoSlot(i.assoc, op)
}

// MayHaveSideEffects reports whether DCE must keep the instruction.
func (i *Inst) MayHaveSideEffects() bool {
	return i.op.HasSideEffects() || i.HasAssociatedPseudoOperation()
}

func (i *Inst) String() string {
	s := i.op.String()
	for n := range i.args {
		if n == 0 {
			s += " "
		} else {
			s += ", "
		}
		s += i.args[n].String()
	}
	return s
}
