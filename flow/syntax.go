package flow

import (
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// TranslateFunc lowers the instruction range [begin, end) into block. The
// translator package provides the real implementation; taking it as a
// callback keeps this package independent of the opcode handlers.
type TranslateFunc func(env shader.Environment, block *ir.Block, begin, end uint32) error

// BuildProgram reconstructs control flow starting at start, eliminates
// gotos, and emits the Abstract Syntax List plus the translated IR blocks
// into p.
func BuildProgram(p *ir.Program, env shader.Environment, start uint32, cfg Config, tr TranslateFunc, host shader.HostTranslateInfo) error {
	c, err := Build(env, start, cfg)
	if err != nil {
		return err
	}
	f := c.Functions[0]
	root, gotos, labelStmts, err := buildStatements(f)
	if err != nil {
		return err
	}
	if err := eliminateGotos(gotos, labelStmts); err != nil {
		return err
	}

	sb := &syntaxBuilder{p: p, env: env, translate: tr}
	entry := p.CreateBlock()
	sb.setCurrent(entry)
	ir.NewEmitter(p, entry).Prologue()
	if err := sb.visit(root, nil); err != nil {
		return err
	}
	if sb.current != nil {
		// A function must end on an explicit exit.
		ir.NewEmitter(p, sb.current).Epilogue()
		sb.node(ir.SyntaxNode{Kind: ir.SyntaxReturn})
	}

	if host.NeedsDemoteReorder && p.Stage == shader.StageFragment {
		sb.combineDemotes(entry, uint32(len(f.Blocks)+1))
	}

	p.ComputePostOrder(entry)
	return nil
}

type syntaxBuilder struct {
	p         *ir.Program
	env       shader.Environment
	translate TranslateFunc
	current   *ir.Block
}

func (sb *syntaxBuilder) node(n ir.SyntaxNode) {
	sb.p.Syntax = append(sb.p.Syntax, n)
}

// setCurrent opens b as the block receiving straight-line code and records
// it in the syntax list.
func (sb *syntaxBuilder) setCurrent(b *ir.Block) {
	sb.current = b
	sb.node(ir.SyntaxNode{Kind: ir.SyntaxBlock, Block: b})
}

func (sb *syntaxBuilder) ensure() *ir.Block {
	if sb.current == nil {
		sb.setCurrent(sb.p.CreateBlock())
	}
	return sb.current
}

func (sb *syntaxBuilder) eval(e *ir.Emitter, c *cnd) (ir.Value, error) {
	switch c.kind {
	case condKindTrue:
		return ir.MakeU1(true), nil
	case condFlow:
		v, ok := e.Condition(c.flow.Pred, c.flow.Negated, c.flow.Test)
		if !ok {
			return ir.Value{}, shader.InvalidArgument("flow test %v", c.flow.Test)
		}
		return v, nil
	case condVar:
		return e.GetGotoVariable(uint32(c.varID)), nil
	case condIndirect:
		return e.Emit(ir.OpIEqual, e.GetIndirectBranchVariable(), ir.MakeU32(c.compare)), nil
	case condNot:
		v, err := sb.eval(e, c.a)
		if err != nil {
			return ir.Value{}, err
		}
		return e.LogicalNot(v), nil
	case condOr:
		a, err := sb.eval(e, c.a)
		if err != nil {
			return ir.Value{}, err
		}
		b, err := sb.eval(e, c.b)
		if err != nil {
			return ir.Value{}, err
		}
		return e.LogicalOr(a, b), nil
	}
	return ir.Value{}, shader.Logic("unhandled condition kind %d", c.kind)
}

func (sb *syntaxBuilder) visit(s *stmt, breakBlock *ir.Block) error {
	for _, n := range s.children {
		switch n.kind {
		case stmtLabel:
			// Labels carry no code once gotos are gone.

		case stmtCode:
			b := sb.ensure()
			if err := sb.translate(sb.env, b, n.block.Begin, n.block.End); err != nil {
				return err
			}

		case stmtSetVariable:
			e := ir.NewEmitter(sb.p, sb.ensure())
			val := ir.MakeU1(false)
			if n.set {
				v, err := sb.eval(e, n.cond)
				if err != nil {
					return err
				}
				val = v
			}
			e.SetGotoVariable(uint32(n.label), val)

		case stmtSetIndirect:
			e := ir.NewEmitter(sb.p, sb.ensure())
			e.SetIndirectBranchVariable(e.GetReg(n.reg))

		case stmtKill:
			e := ir.NewEmitter(sb.p, sb.ensure())
			e.DemoteToHelperInvocation()

		case stmtReturn:
			e := ir.NewEmitter(sb.p, sb.ensure())
			e.Epilogue()
			sb.node(ir.SyntaxNode{Kind: ir.SyntaxReturn})
			sb.current = nil

		case stmtUnreachable:
			sb.ensure()
			sb.node(ir.SyntaxNode{Kind: ir.SyntaxUnreachable})
			sb.current = nil

		case stmtIf:
			cur := sb.ensure()
			e := ir.NewEmitter(sb.p, cur)
			cond, err := sb.eval(e, n.cond)
			if err != nil {
				return err
			}
			body := sb.p.CreateBlock()
			merge := sb.p.CreateBlock()
			cur.AddBranch(body)
			cur.AddBranch(merge)
			sb.node(ir.SyntaxNode{Kind: ir.SyntaxIf, Cond: cond, Body: body, Merge: merge})
			sb.setCurrent(body)
			if err := sb.visit(n, breakBlock); err != nil {
				return err
			}
			if sb.current != nil {
				sb.current.AddBranch(merge)
			}
			sb.node(ir.SyntaxNode{Kind: ir.SyntaxEndIf, Merge: merge})
			sb.setCurrent(merge)

		case stmtLoop:
			cur := sb.ensure()
			body := sb.p.CreateBlock()
			cont := sb.p.CreateBlock()
			merge := sb.p.CreateBlock()
			cur.AddBranch(body)
			sb.node(ir.SyntaxNode{Kind: ir.SyntaxLoop, Body: body, Continue: cont, Merge: merge})
			sb.setCurrent(body)
			if err := sb.visit(n, merge); err != nil {
				return err
			}
			if sb.current != nil {
				sb.current.AddBranch(cont)
			}
			sb.setCurrent(cont)
			e := ir.NewEmitter(sb.p, cont)
			cond, err := sb.eval(e, n.cond)
			if err != nil {
				return err
			}
			cont.AddBranch(body)
			cont.AddBranch(merge)
			sb.node(ir.SyntaxNode{Kind: ir.SyntaxRepeat, Cond: cond, Header: body, Merge: merge})
			sb.setCurrent(merge)

		case stmtBreak:
			cur := sb.ensure()
			e := ir.NewEmitter(sb.p, cur)
			cond, err := sb.eval(e, n.cond)
			if err != nil {
				return err
			}
			if breakBlock == nil {
				return shader.Logic("break outside of a loop")
			}
			skip := sb.p.CreateBlock()
			cur.AddBranch(breakBlock)
			cur.AddBranch(skip)
			sb.node(ir.SyntaxNode{Kind: ir.SyntaxBreak, Cond: cond, Merge: breakBlock, Skip: skip})
			sb.setCurrent(skip)

		default:
			return shader.Logic("statement kind %d survived goto elimination", n.kind)
		}
	}
	return nil
}

// combineDemotes rewrites every conditional demote into a flag assignment
// and performs one guarded demote right before each epilogue. Some drivers
// mis-optimize shaders with multiple partial demotes.
func (sb *syntaxBuilder) combineDemotes(entry *ir.Block, demoteVar uint32) {
	found := false
	for _, n := range sb.p.Syntax {
		if n.Kind != ir.SyntaxIf {
			continue
		}
		inst := n.Body.Head()
		if inst == nil || inst.Opcode() != ir.OpDemoteToHelperInvocation || inst.Next() != nil {
			continue
		}
		e := ir.NewEmitter(sb.p, n.Body)
		e.SetInsertPoint(n.Body, inst)
		e.SetGotoVariable(demoteVar, ir.MakeU1(true))
		n.Body.Remove(inst)
		inst.Invalidate()
		found = true
	}
	if !found {
		return
	}

	// Initialize the flag right after the prologue.
	init := ir.NewEmitter(sb.p, entry)
	init.SetInsertPoint(entry, entry.Head().Next())
	init.SetGotoVariable(demoteVar, ir.MakeU1(false))

	out := make([]ir.SyntaxNode, 0, len(sb.p.Syntax)+4)
	for i := 0; i < len(sb.p.Syntax); i++ {
		n := sb.p.Syntax[i]
		if n.Kind != ir.SyntaxReturn || i == 0 || sb.p.Syntax[i-1].Kind != ir.SyntaxBlock {
			out = append(out, n)
			continue
		}
		pre := sb.p.Syntax[i-1].Block
		epi := pre.Tail()
		if epi == nil || epi.Opcode() != ir.OpEpilogue {
			out = append(out, n)
			continue
		}
		pre.Remove(epi)
		e := ir.NewEmitter(sb.p, pre)
		cond := e.GetGotoVariable(demoteVar)
		body := sb.p.CreateBlock()
		merge := sb.p.CreateBlock()
		pre.AddBranch(body)
		pre.AddBranch(merge)
		ir.NewEmitter(sb.p, body).DemoteToHelperInvocation()
		body.AddBranch(merge)
		merge.AppendInst(epi)
		out = append(out,
			ir.SyntaxNode{Kind: ir.SyntaxIf, Cond: cond, Body: body, Merge: merge},
			ir.SyntaxNode{Kind: ir.SyntaxBlock, Block: body},
			ir.SyntaxNode{Kind: ir.SyntaxEndIf, Merge: merge},
			ir.SyntaxNode{Kind: ir.SyntaxBlock, Block: merge},
			n,
		)
	}
	sb.p.Syntax = out
}
