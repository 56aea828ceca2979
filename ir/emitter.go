package ir

import (
	"tlog.app/go/tlog"
)

// MaxCbufByteOffset bounds compile time constant buffer offsets. Loads past
// it fold to zero with a warning instead of failing the compilation.
const MaxCbufByteOffset = 0x10000

// Emitter appends instructions to a block and hands back typed values. All
// IR producing code (the translator, the structured control flow pass, the
// lowering passes) goes through one of these.
type Emitter struct {
	Program *Program
	Block   *Block

	// insertPoint, when non-nil, makes new instructions go before it
	// instead of at the block end.
	insertPoint *Inst
}

// NewEmitter returns an emitter appending to block.
func NewEmitter(p *Program, block *Block) *Emitter {
	return &Emitter{Program: p, Block: block}
}

// SetBlock retargets the emitter to append at the end of block.
func (e *Emitter) SetBlock(block *Block) {
	e.Block = block
	e.insertPoint = nil
}

// SetInsertPoint makes subsequent instructions insert before pos.
func (e *Emitter) SetInsertPoint(block *Block, pos *Inst) {
	e.Block = block
	e.insertPoint = pos
}

// Emit creates and links one instruction, returning its result value.
func (e *Emitter) Emit(op Opcode, args ...Value) Value {
	return e.EmitWithFlags(op, 0, args...)
}

// EmitWithFlags is Emit with an explicit flag payload.
func (e *Emitter) EmitWithFlags(op Opcode, flags uint32, args ...Value) Value {
	if len(args) != op.NumArgs() && op != OpPhi {
		panic("ir: argument count mismatch for " + op.String())
	}
	inst := e.Program.CreateInst(op)
	inst.flags = flags
	e.Block.InsertBefore(e.insertPoint, inst)
	for i, a := range args {
		inst.SetArg(i, a)
	}
	return MakeInst(inst)
}

// Phi creates an empty phi at the head of the phi prefix of block.
func (e *Emitter) Phi(block *Block) *Inst {
	inst := e.Program.CreateInst(OpPhi)
	block.PrependPhi(inst)
	return inst
}

// Guest context helpers.

// GetReg reads a general purpose register. RZ folds to zero.
func (e *Emitter) GetReg(r Reg) Value {
	if r == RegRZ {
		return MakeU32(0)
	}
	return e.Emit(OpGetRegister, MakeReg(r))
}

// SetReg writes a general purpose register. RZ writes are dropped.
func (e *Emitter) SetReg(r Reg, v Value) {
	if r == RegRZ {
		return
	}
	e.Emit(OpSetRegister, MakeReg(r), v)
}

// GetPred reads a predicate register. PT folds to true.
func (e *Emitter) GetPred(p Pred) Value {
	if p == PredPT {
		return MakeU1(true)
	}
	return e.Emit(OpGetPred, MakePred(p))
}

// SetPred writes a predicate register. PT writes are dropped.
func (e *Emitter) SetPred(p Pred, v Value) {
	if p == PredPT {
		return
	}
	e.Emit(OpSetPred, MakePred(p), v)
}

// GetGotoVariable reads the structured control flow variable idx.
func (e *Emitter) GetGotoVariable(idx uint32) Value {
	return e.Emit(OpGetGotoVariable, MakeU32(idx))
}

// SetGotoVariable writes the structured control flow variable idx.
func (e *Emitter) SetGotoVariable(idx uint32, v Value) {
	e.Emit(OpSetGotoVariable, MakeU32(idx), v)
}

// GetIndirectBranchVariable reads the indirect branch selector.
func (e *Emitter) GetIndirectBranchVariable() Value {
	return e.Emit(OpGetIndirectBranchVariable)
}

// SetIndirectBranchVariable writes the indirect branch selector.
func (e *Emitter) SetIndirectBranchVariable(v Value) {
	e.Emit(OpSetIndirectBranchVariable, v)
}

// GetCbuf reads one constant buffer element. Compile time offsets past
// MaxCbufByteOffset fold to zero with a warning.
func (e *Emitter) GetCbuf(op Opcode, binding, offset Value) Value {
	if offset.IsImmediate() && offset.U32() >= MaxCbufByteOffset {
		tlog.Printw("constant buffer offset out of bounds", "offset", offset.U32())
		return MakeU32(0)
	}
	return e.Emit(op, binding, offset)
}

// Condition lowers a flow condition into a single U1 value combining the
// predicate and the flow test.
func (e *Emitter) Condition(pred Pred, negate bool, test FlowTest) (Value, bool) {
	p := e.GetPred(pred)
	if negate {
		p = e.LogicalNot(p)
	}
	switch test {
	case FlowTestT:
		return p, true
	case FlowTestF:
		return MakeU1(false), true
	case FlowTestEQ:
		return e.LogicalAnd(p, e.Emit(OpGetZFlag)), true
	case FlowTestNE:
		return e.LogicalAnd(p, e.LogicalNot(e.Emit(OpGetZFlag))), true
	case FlowTestLT:
		return e.LogicalAnd(p, e.LogicalAnd(e.LogicalNot(e.Emit(OpGetZFlag)), e.Emit(OpGetSFlag))), true
	case FlowTestGE:
		return e.LogicalAnd(p, e.LogicalNot(e.Emit(OpGetSFlag))), true
	case FlowTestLE:
		return e.LogicalAnd(p, e.LogicalOr(e.Emit(OpGetZFlag), e.Emit(OpGetSFlag))), true
	case FlowTestGT:
		return e.LogicalAnd(p, e.LogicalAnd(e.LogicalNot(e.Emit(OpGetZFlag)), e.LogicalNot(e.Emit(OpGetSFlag)))), true
	default:
		return Value{}, false
	}
}

// Logical helpers fold immediate operands so trivial predicates do not
// reach the optimizer.

func (e *Emitter) LogicalNot(v Value) Value {
	if v.IsImmediate() {
		return MakeU1(!v.U1())
	}
	return e.Emit(OpLogicalNot, v)
}

func (e *Emitter) LogicalAnd(a, b Value) Value {
	if a.IsImmediate() {
		if a.U1() {
			return b
		}
		return MakeU1(false)
	}
	if b.IsImmediate() {
		if b.U1() {
			return a
		}
		return MakeU1(false)
	}
	return e.Emit(OpLogicalAnd, a, b)
}

func (e *Emitter) LogicalOr(a, b Value) Value {
	if a.IsImmediate() {
		if a.U1() {
			return MakeU1(true)
		}
		return b
	}
	if b.IsImmediate() {
		if b.U1() {
			return MakeU1(true)
		}
		return a
	}
	return e.Emit(OpLogicalOr, a, b)
}

// Arithmetic conveniences used across the translator.

func (e *Emitter) IAdd32(a, b Value) Value { return e.Emit(OpIAdd32, a, b) }
func (e *Emitter) IMul32(a, b Value) Value { return e.Emit(OpIMul32, a, b) }

func (e *Emitter) BitFieldUExtract(base, offset, count Value) Value {
	return e.Emit(OpBitFieldUExtract, base, offset, count)
}

func (e *Emitter) BitFieldSExtract(base, offset, count Value) Value {
	return e.Emit(OpBitFieldSExtract, base, offset, count)
}

// PackUint2x32 packs a (lo, hi) pair into a 64-bit value.
func (e *Emitter) PackUint2x32(lo, hi Value) Value {
	return e.Emit(OpPackUint2x32, e.Emit(OpCompositeConstructU32x2, lo, hi))
}

// FP emits a floating point opcode under an explicit control word.
func (e *Emitter) FP(op Opcode, ctl FpControl, args ...Value) Value {
	return e.EmitWithFlags(op, ctl.Pack(), args...)
}

// Pseudo results.

// PseudoResult attaches a pseudo result instruction (zero, sign, carry,
// overflow, sparse, in-bounds) to the instruction computing v.
func (e *Emitter) PseudoResult(op Opcode, v Value) Value {
	res := e.Emit(op, v)
	v.Inst().attachPseudo(res.Inst())
	return res
}

// Prologue and Epilogue mark the program entry and exit for the backends.
func (e *Emitter) Prologue() { e.Emit(OpPrologue) }
func (e *Emitter) Epilogue() { e.Emit(OpEpilogue) }

// DemoteToHelperInvocation demotes the fragment invocation.
func (e *Emitter) DemoteToHelperInvocation() { e.Emit(OpDemoteToHelperInvocation) }

// Reference keeps a value alive across block boundaries for the GLASM
// phi precoloring scheme.
func (e *Emitter) Reference(v Value) { e.Emit(OpReference, v) }

// PhiMove copies value into the alias register assigned to phi.
func (e *Emitter) PhiMove(phi, v Value) { e.Emit(OpPhiMove, phi, v) }
