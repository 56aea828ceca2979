// Package opt holds the IR passes that run between translation and code
// emission: SSA construction, constant propagation, dead code elimination,
// the host capability lowerings, resource promotion, and the shader info
// collector.
package opt

import (
	"github.com/gogpu/maxwell/ir"
)

// ssaVarKind separates the flat variable spaces the translator writes
// through placeholder instructions.
type ssaVarKind uint8

const (
	ssaVarReg ssaVarKind = iota
	ssaVarPred
	ssaVarGoto
	ssaVarIndirect
	ssaVarZFlag
	ssaVarSFlag
	ssaVarCFlag
	ssaVarOFlag
)

type ssaVar struct {
	kind  ssaVarKind
	index uint32
}

func (v ssaVar) isBool() bool {
	return v.kind != ssaVarReg && v.kind != ssaVarIndirect
}

type ssaPass struct {
	p    *ir.Program
	defs map[*ir.Block]map[ssaVar]ir.Value

	// phiVars remembers which variable a phi was inserted for, so operand
	// filling and trivial phi elimination can requery it.
	phiVars map[*ir.Inst]ssaVar
}

// Rewrite replaces the GetRegister/SetRegister family of placeholder
// instructions with SSA values, inserting phis at join points. After the
// pass no placeholder survives.
func Rewrite(p *ir.Program) {
	pass := &ssaPass{
		p:       p,
		defs:    make(map[*ir.Block]map[ssaVar]ir.Value, len(p.Blocks)),
		phiVars: map[*ir.Inst]ssaVar{},
	}
	for _, b := range p.Blocks {
		b.SsaSealed = true
	}
	// Reverse post order: definitions are usually seen before uses, keeping
	// the recursive lookups shallow.
	for i := len(p.PostOrderBlocks) - 1; i >= 0; i-- {
		pass.visit(p.PostOrderBlocks[i])
	}
	for _, b := range p.Blocks {
		if _, ok := pass.defs[b]; !ok {
			pass.visit(b)
		}
	}
}

func (s *ssaPass) visit(b *ir.Block) {
	if _, ok := s.defs[b]; !ok {
		s.defs[b] = map[ssaVar]ir.Value{}
	}
	for _, inst := range b.Instructions() {
		var (
			read  bool
			write bool
			v     ssaVar
		)
		switch inst.Opcode() {
		case ir.OpGetRegister:
			read, v = true, ssaVar{ssaVarReg, uint32(inst.Arg(0).Reg())}
		case ir.OpSetRegister:
			write, v = true, ssaVar{ssaVarReg, uint32(inst.Arg(0).Reg())}
		case ir.OpGetPred:
			read, v = true, ssaVar{ssaVarPred, uint32(inst.Arg(0).Pred())}
		case ir.OpSetPred:
			write, v = true, ssaVar{ssaVarPred, uint32(inst.Arg(0).Pred())}
		case ir.OpGetGotoVariable:
			read, v = true, ssaVar{ssaVarGoto, inst.Arg(0).U32()}
		case ir.OpSetGotoVariable:
			write, v = true, ssaVar{ssaVarGoto, inst.Arg(0).U32()}
		case ir.OpGetIndirectBranchVariable:
			read, v = true, ssaVar{kind: ssaVarIndirect}
		case ir.OpSetIndirectBranchVariable:
			write, v = true, ssaVar{kind: ssaVarIndirect}
		case ir.OpGetZFlag:
			read, v = true, ssaVar{kind: ssaVarZFlag}
		case ir.OpSetZFlag:
			write, v = true, ssaVar{kind: ssaVarZFlag}
		case ir.OpGetSFlag:
			read, v = true, ssaVar{kind: ssaVarSFlag}
		case ir.OpSetSFlag:
			write, v = true, ssaVar{kind: ssaVarSFlag}
		case ir.OpGetCFlag:
			read, v = true, ssaVar{kind: ssaVarCFlag}
		case ir.OpSetCFlag:
			write, v = true, ssaVar{kind: ssaVarCFlag}
		case ir.OpGetOFlag:
			read, v = true, ssaVar{kind: ssaVarOFlag}
		case ir.OpSetOFlag:
			write, v = true, ssaVar{kind: ssaVarOFlag}
		default:
			continue
		}
		switch {
		case read:
			inst.ReplaceUsesWith(s.readVariable(v, b))
		case write:
			// SetIndirectBranchVariable and the flag stores carry the
			// value in slot 0, the indexed forms in slot 1.
			val := inst.Arg(inst.NumArgs() - 1)
			s.writeVariable(v, b, val)
		}
		b.Remove(inst)
		inst.Invalidate()
	}
}

func (s *ssaPass) writeVariable(v ssaVar, b *ir.Block, val ir.Value) {
	if s.defs[b] == nil {
		s.defs[b] = map[ssaVar]ir.Value{}
	}
	s.defs[b][v] = val
}

func (s *ssaPass) readVariable(v ssaVar, b *ir.Block) ir.Value {
	if val, ok := s.defs[b]; ok {
		if def, ok := val[v]; ok {
			return def
		}
	}
	return s.readVariableRecursive(v, b)
}

func (s *ssaPass) readVariableRecursive(v ssaVar, b *ir.Block) ir.Value {
	var val ir.Value
	switch len(b.Predecessors) {
	case 0:
		val = s.undef(v, b)
	case 1:
		val = s.readVariable(v, b.Predecessors[0])
	default:
		// Write the phi before visiting the predecessors so loops
		// terminate.
		phi := ir.NewEmitter(s.p, nil).Phi(b)
		s.phiVars[phi] = v
		s.writeVariable(v, b, ir.MakeInst(phi))
		val = s.addPhiOperands(v, phi, b)
	}
	s.writeVariable(v, b, val)
	return val
}

func (s *ssaPass) addPhiOperands(v ssaVar, phi *ir.Inst, b *ir.Block) ir.Value {
	for _, pred := range b.Predecessors {
		phi.AddPhiOperand(pred, s.readVariable(v, pred))
	}
	return s.tryRemoveTrivialPhi(phi, b)
}

// tryRemoveTrivialPhi folds phis whose operands are all the same value or
// the phi itself.
func (s *ssaPass) tryRemoveTrivialPhi(phi *ir.Inst, b *ir.Block) ir.Value {
	var same ir.Value
	for n := 0; n < phi.NumArgs(); n++ {
		arg := phi.Arg(n)
		if arg.InstRecursive() == phi {
			continue
		}
		if !same.IsEmpty() && !sameValue(same, arg) {
			return ir.MakeInst(phi)
		}
		same = arg
	}
	if same.IsEmpty() {
		same = s.undef(s.phiVars[phi], b)
	}
	phi.ReplaceUsesWith(same)
	phi.Block().Remove(phi)
	phi.Invalidate()
	return same
}

func sameValue(a, b ir.Value) bool {
	a, b = a.Resolve(), b.Resolve()
	if a.Inst() != nil || b.Inst() != nil {
		return a.Inst() == b.Inst()
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Type() {
	case ir.TypeU1:
		return a.U1() == b.U1()
	case ir.TypeU32:
		return a.U32() == b.U32()
	default:
		return false
	}
}

// undef materializes a fresh undefined value at the head of block for a
// variable read before any write.
func (s *ssaPass) undef(v ssaVar, b *ir.Block) ir.Value {
	op := ir.OpUndefU32
	if v.isBool() {
		op = ir.OpUndefU1
	}
	inst := s.p.CreateInst(op)
	b.InsertBefore(b.Head(), inst)
	return ir.MakeInst(inst)
}
