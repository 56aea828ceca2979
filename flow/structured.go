package flow

import (
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// The structured pass turns the CFG, which still has arbitrary gotos, into
// a goto-free statement tree using the Erosa-Hendren elimination rewrites.
// Gotos are processed in reverse discovery order; that ordering is load
// bearing for the lift and move transforms.

type stmtKind uint8

const (
	stmtFunc stmtKind = iota
	stmtCode
	stmtGoto
	stmtLabel
	stmtIf
	stmtLoop
	stmtBreak
	stmtReturn
	stmtKill
	stmtUnreachable
	stmtSetVariable
	stmtSetIndirect
)

type condKind uint8

const (
	condKindTrue condKind = iota
	condFlow
	condVar
	condIndirect
	condNot
	condOr
)

// cnd is a condition expression evaluated lazily during IR translation.
type cnd struct {
	kind    condKind
	flow    Condition
	varID   int
	compare uint32
	a, b    *cnd
}

func condTrueC() *cnd              { return &cnd{kind: condKindTrue} }
func condFlowC(c Condition) *cnd   { return &cnd{kind: condFlow, flow: c} }
func condVarC(id int) *cnd         { return &cnd{kind: condVar, varID: id} }
func condIndirectC(cmp uint32) *cnd { return &cnd{kind: condIndirect, compare: cmp} }
func condNotC(c *cnd) *cnd         { return &cnd{kind: condNot, a: c} }
func condOrC(a, b *cnd) *cnd       { return &cnd{kind: condOr, a: a, b: b} }

type stmt struct {
	kind     stmtKind
	parent   *stmt
	children []*stmt

	cond  *cnd
	block *Block
	label int
	reg   ir.Reg

	// set marks the value a SetVariable stores.
	set bool
}

func (s *stmt) index() int {
	for i, c := range s.parent.children {
		if c == s {
			return i
		}
	}
	panic("flow: statement detached from parent")
}

func (s *stmt) insertAt(i int, n *stmt) {
	n.parent = s
	s.children = append(s.children, nil)
	copy(s.children[i+1:], s.children[i:])
	s.children[i] = n
}

func (s *stmt) removeAt(i int) *stmt {
	n := s.children[i]
	s.children = append(s.children[:i], s.children[i+1:]...)
	n.parent = nil
	return n
}

// spliceOut removes children [lo, hi) and returns them.
func (s *stmt) spliceOut(lo, hi int) []*stmt {
	out := append([]*stmt(nil), s.children[lo:hi]...)
	s.children = append(s.children[:lo], s.children[hi:]...)
	for _, n := range out {
		n.parent = nil
	}
	return out
}

func (s *stmt) level() int {
	l := 0
	for p := s.parent; p != nil; p = p.parent {
		l++
	}
	return l
}

func isAncestor(anc, n *stmt) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == anc {
			return true
		}
	}
	return false
}

// buildStatements flattens the function into the initial tree: one label
// and one code statement per block, gotos for its branches.
func buildStatements(f *Function) (*stmt, []*stmt, map[int]*stmt, error) {
	root := &stmt{kind: stmtFunc}
	labels := map[*Block]int{}
	labelStmts := map[int]*stmt{}
	for i, b := range f.Blocks {
		labels[b] = i
	}
	var gotos []*stmt
	add := func(n *stmt) {
		n.parent = root
		root.children = append(root.children, n)
	}
	addGoto := func(c *cnd, target *Block) {
		g := &stmt{kind: stmtGoto, cond: c, label: labels[target]}
		add(g)
		gotos = append(gotos, g)
	}
	for i, b := range f.Blocks {
		lbl := &stmt{kind: stmtLabel, label: i}
		add(lbl)
		labelStmts[i] = lbl
		if b.End > b.Begin {
			add(&stmt{kind: stmtCode, block: b})
		}
		switch b.EndClass {
		case EndBranch:
			if b.BranchFalse == nil {
				addGoto(condTrueC(), b.BranchTrue)
			} else {
				addGoto(condFlowC(b.Cond), b.BranchTrue)
				addGoto(condTrueC(), b.BranchFalse)
			}
		case EndIndirectBranch:
			add(&stmt{kind: stmtSetIndirect, reg: b.BranchReg})
			for _, ib := range b.IndirectBranches {
				addGoto(condIndirectC(ib.Compare), ib.Block)
			}
			add(&stmt{kind: stmtUnreachable})
		case EndExit, EndReturn:
			add(&stmt{kind: stmtReturn})
		case EndKill:
			add(&stmt{kind: stmtKill})
			addGoto(condTrueC(), b.BranchTrue)
		case EndCall:
			return nil, nil, nil, shader.NotImplemented("subroutine call at %#x", b.End-instSize)
		}
	}
	return root, gotos, labelStmts, nil
}

// eliminateGotos removes every goto, most recently discovered first.
func eliminateGotos(gotos []*stmt, labelStmts map[int]*stmt) error {
	for i := len(gotos) - 1; i >= 0; i-- {
		if err := removeGoto(gotos[i], labelStmts); err != nil {
			return err
		}
	}
	return nil
}

func removeGoto(g *stmt, labelStmts map[int]*stmt) error {
	label := labelStmts[g.label]
	for g.parent != label.parent {
		if !isAncestor(g.parent, label) {
			g = moveOutward(g)
			continue
		}
		// The label lives inside a sibling construct.
		s := label
		for s.parent != g.parent {
			s = s.parent
		}
		if g.index() > s.index() {
			g = liftBackward(g, s)
			continue
		}
		g = moveInward(g, s)
	}
	gi, li := g.index(), label.index()
	if gi < li {
		removeForward(g, label)
	} else {
		removeBackward(g, label)
	}
	return nil
}

// removeForward eliminates a goto preceding its sibling label by guarding
// the statements in between with the negated condition.
func removeForward(g, label *stmt) {
	p := g.parent
	gi, li := g.index(), label.index()
	body := p.spliceOut(gi+1, li)
	p.removeAt(gi)
	if len(body) == 0 {
		return
	}
	ifStmt := &stmt{kind: stmtIf, cond: condNotC(g.cond)}
	for _, n := range body {
		n.parent = ifStmt
	}
	ifStmt.children = body
	p.insertAt(gi, ifStmt)
}

// removeBackward eliminates a goto following its sibling label by wrapping
// the range in a do-while loop on the goto condition.
func removeBackward(g, label *stmt) {
	p := g.parent
	gi, li := g.index(), label.index()
	body := p.spliceOut(li+1, gi)
	// g moved down by the splice.
	loop := &stmt{kind: stmtLoop, cond: g.cond}
	for _, n := range body {
		n.parent = loop
	}
	loop.children = body
	p.removeAt(g.index())
	p.insertAt(li+1, loop)
}

// moveOutward lifts a goto one level out of its enclosing If or Loop,
// leaving a goto variable behind.
func moveOutward(g *stmt) *stmt {
	p := g.parent
	grand := p.parent
	v := g.label
	gi := g.index()

	set := &stmt{kind: stmtSetVariable, label: v, cond: g.cond, set: true}
	p.children[gi] = set
	set.parent = p

	switch p.kind {
	case stmtIf:
		// Statements after the goto must not run when the goto fires.
		if rest := p.spliceOut(gi+1, len(p.children)); len(rest) > 0 {
			guard := &stmt{kind: stmtIf, cond: condNotC(condVarC(v))}
			for _, n := range rest {
				n.parent = guard
			}
			guard.children = rest
			p.insertAt(gi+1, guard)
		}
	case stmtLoop:
		p.insertAt(gi+1, &stmt{kind: stmtBreak, cond: condVarC(v)})
	default:
		panic("flow: goto nested in a non-structural statement")
	}

	pi := p.index()
	grand.insertAt(pi, &stmt{kind: stmtSetVariable, label: v, cond: condTrueC(), set: false})
	ng := &stmt{kind: stmtGoto, cond: condVarC(v), label: g.label}
	grand.insertAt(pi+2, ng)
	return ng
}

// liftBackward turns a goto placed after the construct holding its label
// into a forward goto by wrapping the range in a loop.
func liftBackward(g, s *stmt) *stmt {
	p := g.parent
	v := g.label
	si, gi := s.index(), g.index()

	set := &stmt{kind: stmtSetVariable, label: v, cond: g.cond, set: true}
	p.children[gi] = set
	set.parent = p

	body := p.spliceOut(si, gi+1)
	loop := &stmt{kind: stmtLoop, cond: condVarC(v)}
	ng := &stmt{kind: stmtGoto, cond: condVarC(v), label: g.label}
	loop.children = append([]*stmt{ng}, body...)
	for _, n := range loop.children {
		n.parent = loop
	}
	p.insertAt(si, loop)
	p.insertAt(si, &stmt{kind: stmtSetVariable, label: v, cond: condTrueC(), set: false})
	return ng
}

// moveInward pushes a goto into the sibling construct containing its label.
func moveInward(g, s *stmt) *stmt {
	p := g.parent
	v := g.label
	gi, si := g.index(), s.index()

	set := &stmt{kind: stmtSetVariable, label: v, cond: g.cond, set: true}
	p.children[gi] = set
	set.parent = p

	if between := p.spliceOut(gi+1, si); len(between) > 0 {
		guard := &stmt{kind: stmtIf, cond: condNotC(condVarC(v))}
		for _, n := range between {
			n.parent = guard
		}
		guard.children = between
		p.insertAt(gi+1, guard)
	}
	p.insertAt(gi, &stmt{kind: stmtSetVariable, label: v, cond: condTrueC(), set: false})

	ng := &stmt{kind: stmtGoto, cond: condVarC(v), label: g.label}
	switch s.kind {
	case stmtIf:
		s.cond = condOrC(condVarC(v), s.cond)
		s.insertAt(0, ng)
	case stmtLoop:
		s.insertAt(0, ng)
	default:
		panic("flow: label nested in a non-structural statement")
	}
	return ng
}
