// Package flow rebuilds structured control flow from raw Maxwell
// instruction streams. It produces the Abstract Syntax List and the IR
// blocks the translator fills in.
package flow

import (
	"sort"

	"github.com/oleiade/lane"

	"github.com/gogpu/maxwell/decode"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// EndClass says how a basic block terminates.
type EndClass uint8

const (
	EndBranch EndClass = iota
	EndIndirectBranch
	EndCall
	EndExit
	EndReturn
	EndKill
)

// Condition is a predicated flow condition: a predicate register, its
// negation bit, and a condition code test.
type Condition struct {
	Pred    ir.Pred
	Negated bool
	Test    ir.FlowTest
}

// AlwaysTrue reports whether the condition trivially passes.
func (c Condition) AlwaysTrue() bool {
	return c.Pred == ir.PredPT && !c.Negated && c.Test == ir.FlowTestT
}

// AlwaysFalse reports whether the condition trivially fails.
func (c Condition) AlwaysFalse() bool {
	return (c.Pred == ir.PredPT && c.Negated && c.Test == ir.FlowTestT) ||
		c.Test == ir.FlowTestF
}

var condTrue = Condition{Pred: ir.PredPT, Test: ir.FlowTestT}

type tokenKind uint8

const (
	tokSSY tokenKind = iota
	tokPBK
	tokPCNT
	tokPEXIT
	tokPLONGJMP
)

// tokenStack is a persistent stack of synchronization tokens. Push and Pop
// return new stacks sharing structure, so every block can hold its own view
// without copying.
type tokenStack struct {
	top *tokenNode
}

type tokenNode struct {
	kind tokenKind
	addr uint32
	prev *tokenNode
}

func (s tokenStack) Push(kind tokenKind, addr uint32) tokenStack {
	return tokenStack{top: &tokenNode{kind: kind, addr: addr, prev: s.top}}
}

// Pop removes the innermost token of the given kind and returns its address.
func (s tokenStack) Pop(kind tokenKind) (uint32, tokenStack, bool) {
	var keep []*tokenNode
	for n := s.top; n != nil; n = n.prev {
		if n.kind == kind {
			rest := n.prev
			for i := len(keep) - 1; i >= 0; i-- {
				rest = &tokenNode{kind: keep[i].kind, addr: keep[i].addr, prev: rest}
			}
			return n.addr, tokenStack{top: rest}, true
		}
		keep = append(keep, n)
	}
	return 0, s, false
}

// IndirectBranch is one enumerated target of a BRX dispatch. Compare is the
// raw table entry the branch register holds at runtime.
type IndirectBranch struct {
	Block   *Block
	Compare uint32
}

// Block is one CFG basic block covering instruction addresses [Begin, End).
type Block struct {
	Begin uint32
	End   uint32

	EndClass    EndClass
	Cond        Condition
	BranchTrue  *Block
	BranchFalse *Block

	IndirectBranches []IndirectBranch
	BranchReg        ir.Reg

	// CalleeEntry and ReturnBlock are set for EndCall blocks.
	CalleeEntry uint32
	ReturnBlock *Block

	stack tokenStack

	// virtual blocks hold a single predicated instruction lifted out of
	// its containing block; they are not addressable branch targets.
	virtual bool

	visited bool
}

// Virtual reports whether the block was synthesized for a predicated
// instruction rather than discovered at a branch target.
func (b *Block) Virtual() bool { return b.virtual }

// Function is one callable unit: an entry address and its blocks ordered by
// begin address, virtual blocks after the block they were carved from.
type Function struct {
	Entry  uint32
	Blocks []*Block

	byBegin map[uint32]*Block
}

// Config adjusts CFG construction.
type Config struct {
	// ExitsToDispatcher turns EXIT into a branch to DispatcherAddress,
	// letting paired vertex programs share an epilogue block.
	ExitsToDispatcher bool
	DispatcherAddress uint32
}

// CFG is the reconstructed control flow of a shader. Functions[0] is the
// entry function.
type CFG struct {
	Functions []*Function

	env shader.Environment
	cfg Config

	// visiting is the block owning the instruction under the cursor. A
	// split during target discovery retargets it to the tail half.
	visiting *Block
}

const instSize = 8

// schedWord reports whether addr holds a scheduling control word rather
// than an instruction. Maxwell packs one per three instructions.
func schedWord(addr uint32) bool { return addr%32 == 0 }

// Build reconstructs the CFG starting at the shader entry address.
func Build(env shader.Environment, start uint32, cfg Config) (*CFG, error) {
	c := &CFG{env: env, cfg: cfg}
	fnQueue := lane.NewQueue()
	fnSeen := map[uint32]*Function{}

	addFn := func(entry uint32) *Function {
		if f, ok := fnSeen[entry]; ok {
			return f
		}
		f := &Function{Entry: entry, byBegin: map[uint32]*Block{}}
		fnSeen[entry] = f
		c.Functions = append(c.Functions, f)
		fnQueue.Enqueue(f)
		return f
	}
	addFn(start)

	for !fnQueue.Empty() {
		f := fnQueue.Dequeue().(*Function)
		if err := c.buildFunction(f, addFn); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *CFG) buildFunction(f *Function, addFn func(uint32) *Function) error {
	work := lane.NewQueue()
	entry := c.block(f, f.Entry, tokenStack{})
	work.Enqueue(entry)
	for !work.Empty() {
		b := work.Dequeue().(*Block)
		if b.visited {
			continue
		}
		b.visited = true
		if err := c.visit(f, b, work, addFn); err != nil {
			return err
		}
	}
	sort.SliceStable(f.Blocks, func(i, j int) bool {
		if f.Blocks[i].Begin != f.Blocks[j].Begin {
			return f.Blocks[i].Begin < f.Blocks[j].Begin
		}
		return !f.Blocks[i].virtual && f.Blocks[j].virtual
	})
	return nil
}

// block returns the block starting at addr, creating or splitting as needed.
func (c *CFG) block(f *Function, addr uint32, stack tokenStack) *Block {
	if b, ok := f.byBegin[addr]; ok {
		return b
	}
	for _, b := range f.Blocks {
		if !b.virtual && b.visited && b.Begin < addr && addr < b.End {
			return c.split(f, b, addr)
		}
	}
	b := &Block{Begin: addr, stack: stack}
	f.byBegin[addr] = b
	f.Blocks = append(f.Blocks, b)
	return b
}

// split cuts a visited block at addr, moving its terminator to the new tail.
func (c *CFG) split(f *Function, b *Block, addr uint32) *Block {
	tail := &Block{
		Begin:            addr,
		End:              b.End,
		EndClass:         b.EndClass,
		Cond:             b.Cond,
		BranchTrue:       b.BranchTrue,
		BranchFalse:      b.BranchFalse,
		IndirectBranches: b.IndirectBranches,
		BranchReg:        b.BranchReg,
		CalleeEntry:      b.CalleeEntry,
		ReturnBlock:      b.ReturnBlock,
		stack:            b.stack,
		visited:          true,
	}
	b.End = addr
	b.EndClass = EndBranch
	b.Cond = condTrue
	b.BranchTrue = tail
	b.BranchFalse = nil
	b.IndirectBranches = nil
	f.byBegin[addr] = tail
	f.Blocks = append(f.Blocks, tail)
	if b == c.visiting {
		c.visiting = tail
	}
	return tail
}

func branchTarget(pc uint32, word uint64) uint32 {
	return uint32(int64(pc) + instSize + decode.BranchOffset(word))
}

func condOf(word uint64) (Condition, error) {
	test, ok := decode.FlowTest(word)
	if !ok {
		return Condition{}, shader.InvalidArgument("flow test %#x", decode.Field(word, 0, 5))
	}
	pred, neg := decode.ExecPred(word)
	return Condition{Pred: pred, Negated: neg, Test: test}, nil
}

func (c *CFG) visit(f *Function, b *Block, work *lane.Queue, addFn func(uint32) *Function) error {
	c.visiting = b
	enq := func(addr uint32, stack tokenStack) *Block {
		nb := c.block(f, addr, stack)
		if !nb.visited {
			work.Enqueue(nb)
		}
		return nb
	}
	stack := b.stack
	pc := b.Begin
	for {
		if schedWord(pc) {
			pc += instSize
			continue
		}
		if pc != b.Begin {
			if next, ok := f.byBegin[pc]; ok {
				c.visiting.End = pc
				tb := c.visiting
				tb.EndClass = EndBranch
				tb.Cond = condTrue
				tb.BranchTrue = next
				if !next.visited {
					work.Enqueue(next)
				}
				return nil
			}
		}
		word := c.env.ReadInstruction(pc)
		op, err := decode.Decode(word)
		if err != nil {
			return err
		}
		switch op {
		case decode.Ssy:
			stack = stack.Push(tokSSY, branchTarget(pc, word))
		case decode.Pbk:
			stack = stack.Push(tokPBK, branchTarget(pc, word))
		case decode.Pcnt:
			stack = stack.Push(tokPCNT, branchTarget(pc, word))
		case decode.Pexit:
			stack = stack.Push(tokPEXIT, branchTarget(pc, word))
		case decode.Plongjmp:
			stack = stack.Push(tokPLONGJMP, branchTarget(pc, word))

		case decode.Bra, decode.Jmp:
			cond, err := condOf(word)
			if err != nil {
				return err
			}
			target := branchTarget(pc, word)
			if cond.AlwaysFalse() {
				break
			}
			c.visiting.End = pc + instSize
			if cond.AlwaysTrue() {
				t := enq(target, stack)
				tb := c.visiting
				tb.EndClass = EndBranch
				tb.Cond = condTrue
				tb.BranchTrue = t
				return nil
			}
			t := enq(target, stack)
			ft := enq(pc+instSize, stack)
			tb := c.visiting
			tb.EndClass = EndBranch
			tb.Cond = cond
			tb.BranchTrue = t
			tb.BranchFalse = ft
			return nil

		case decode.Sync, decode.Brk, decode.Cont, decode.Longjmp:
			kind := map[decode.Op]tokenKind{
				decode.Sync: tokSSY, decode.Brk: tokPBK,
				decode.Cont: tokPCNT, decode.Longjmp: tokPLONGJMP,
			}[op]
			addr, rest, ok := stack.Pop(kind)
			if !ok {
				return shader.Logic("%v at %#x with an empty token stack", op, pc)
			}
			cond, err := condOf(word)
			if err != nil {
				return err
			}
			c.visiting.End = pc + instSize
			t := enq(addr, rest)
			tb := c.visiting
			tb.EndClass = EndBranch
			if cond.AlwaysTrue() {
				tb.Cond = condTrue
				tb.BranchTrue = t
			} else {
				tb.Cond = cond
				tb.BranchTrue = t
				tb.BranchFalse = enq(pc+instSize, stack)
			}
			return nil

		case decode.Brx, decode.Jmx:
			c.visiting.End = pc + instSize
			if err := c.trackIndirect(f, pc, word, stack, enq); err != nil {
				return err
			}
			c.visiting.EndClass = EndIndirectBranch
			return nil

		case decode.Exit:
			cond, err := condOf(word)
			if err != nil {
				return err
			}
			if cond.AlwaysFalse() {
				break
			}
			if addr, rest, ok := stack.Pop(tokPEXIT); ok {
				c.visiting.End = pc + instSize
				t := enq(addr, rest)
				tb := c.visiting
				tb.EndClass = EndBranch
				tb.Cond = cond
				tb.BranchTrue = t
				if !cond.AlwaysTrue() {
					tb.BranchFalse = enq(pc+instSize, stack)
				}
				return nil
			}
			if !cond.AlwaysTrue() {
				c.virtualize(f, pc, cond, EndExit, stack, enq)
				return nil
			}
			c.visiting.End = pc + instSize
			if c.cfg.ExitsToDispatcher {
				t := enq(c.cfg.DispatcherAddress, stack)
				tb := c.visiting
				tb.EndClass = EndBranch
				tb.Cond = condTrue
				tb.BranchTrue = t
			} else {
				c.visiting.EndClass = EndExit
			}
			return nil

		case decode.Ret:
			cond, err := condOf(word)
			if err != nil {
				return err
			}
			if cond.AlwaysFalse() {
				break
			}
			if !cond.AlwaysTrue() {
				c.virtualize(f, pc, cond, EndReturn, stack, enq)
				return nil
			}
			c.visiting.End = pc + instSize
			c.visiting.EndClass = EndReturn
			return nil

		case decode.Kil:
			cond, err := condOf(word)
			if err != nil {
				return err
			}
			if cond.AlwaysFalse() {
				break
			}
			if !cond.AlwaysTrue() {
				c.virtualize(f, pc, cond, EndKill, stack, enq)
				return nil
			}
			// Execution continues as a helper invocation after KIL.
			c.visiting.End = pc + instSize
			t := enq(pc+instSize, stack)
			tb := c.visiting
			tb.EndClass = EndKill
			tb.BranchTrue = t
			return nil

		case decode.Cal, decode.Jcal:
			target := branchTarget(pc, word)
			addFn(target)
			c.visiting.End = pc + instSize
			t := enq(pc+instSize, stack)
			tb := c.visiting
			tb.EndClass = EndCall
			tb.CalleeEntry = target
			tb.ReturnBlock = t
			return nil

		default:
			pred, neg := decode.ExecPred(word)
			if pred != ir.PredPT || neg {
				cond := Condition{Pred: pred, Negated: neg, Test: ir.FlowTestT}
				c.virtualize(f, pc, cond, EndBranch, stack, enq)
				return nil
			}
		}
		pc += instSize
	}
}

// virtualize ends the current block before the conditional instruction at
// pc and inserts a virtual block holding just that instruction on the true
// edge.
func (c *CFG) virtualize(f *Function, pc uint32, cond Condition, kind EndClass, stack tokenStack, enq func(uint32, tokenStack) *Block) {
	c.visiting.End = pc
	fall := enq(pc+instSize, stack)
	tb := c.visiting

	vb := &Block{Begin: pc, End: pc + instSize, stack: stack, virtual: true, visited: true}
	f.Blocks = append(f.Blocks, vb)
	switch kind {
	case EndBranch:
		// A plain predicated instruction falls through.
		vb.EndClass = EndBranch
		vb.Cond = condTrue
		vb.BranchTrue = fall
	case EndExit:
		vb.EndClass = EndExit
		if c.cfg.ExitsToDispatcher {
			vb.EndClass = EndBranch
			vb.Cond = condTrue
			vb.BranchTrue = enq(c.cfg.DispatcherAddress, stack)
		}
	case EndReturn:
		vb.EndClass = EndReturn
	case EndKill:
		vb.EndClass = EndKill
		vb.BranchTrue = fall
	}

	tb.EndClass = EndBranch
	tb.Cond = cond
	tb.BranchTrue = vb
	tb.BranchFalse = fall
}

// trackIndirect recovers the jump table feeding a BRX. The pattern is a
// constant buffer load indexed by a shifted, clamped register:
//
//	IMNMX.U32 Rt, Ri, entries-1
//	SHL       Rt, Rt, 2
//	LDC       Rb, c[idx][Rt + offset]
//	BRX       Rb, displacement
func (c *CFG) trackIndirect(f *Function, pc uint32, word uint64, stack tokenStack, enq func(uint32, tokenStack) *Block) error {
	tb := c.visiting
	tb.BranchReg = decode.SrcAReg(word)
	disp := decode.BranchOffset(word)

	reg := tb.BranchReg
	var count uint32
	var cbufIndex, cbufOffset uint32
	haveLdc := false
	haveShl := false
	for a := int64(pc) - instSize; a >= int64(tb.Begin); a -= instSize {
		addr := uint32(a)
		if schedWord(addr) {
			continue
		}
		w := c.env.ReadInstruction(addr)
		op, err := decode.Decode(w)
		if err != nil {
			return err
		}
		if decode.DestReg(w) != reg {
			continue
		}
		switch {
		case !haveLdc && op == decode.Ldc:
			cbufIndex = decode.CbufIndex(w)
			cbufOffset = decode.CbufOffset(w)
			reg = decode.SrcAReg(w)
			haveLdc = true
		case haveLdc && !haveShl && op == decode.ShlI:
			if decode.Imm20(w) != 2 {
				return shader.NotImplemented("indirect branch shift %d", decode.Imm20(w))
			}
			reg = decode.SrcAReg(w)
			haveShl = true
		case haveLdc && haveShl && op == decode.ImnmxI:
			count = decode.Imm20(w) + 1
		default:
			return shader.NotImplemented("indirect branch feeder %v at %#x", op, addr)
		}
		if count != 0 {
			break
		}
	}
	if !haveLdc || !haveShl || count == 0 {
		return shader.NotImplemented("unrecognized indirect branch pattern at %#x", pc)
	}

	seen := map[uint32]bool{}
	for i := uint32(0); i < count; i++ {
		entry := c.env.ReadCbufValue(cbufIndex, cbufOffset+i*4)
		if seen[entry] {
			continue
		}
		seen[entry] = true
		target := uint32(int64(pc) + instSize + int64(int32(entry)) + disp)
		ib := enq(target, stack)
		tb = c.visiting
		tb.IndirectBranches = append(tb.IndirectBranches, IndirectBranch{Block: ib, Compare: entry})
	}
	return nil
}
