package ir

import "github.com/gogpu/maxwell/shader"

// SyntaxKind tags an abstract syntax node.
type SyntaxKind uint8

const (
	SyntaxBlock SyntaxKind = iota
	SyntaxIf
	SyntaxEndIf
	SyntaxLoop
	SyntaxRepeat
	SyntaxBreak
	SyntaxReturn
	SyntaxUnreachable
)

func (k SyntaxKind) String() string {
	switch k {
	case SyntaxBlock:
		return "block"
	case SyntaxIf:
		return "if"
	case SyntaxEndIf:
		return "endif"
	case SyntaxLoop:
		return "loop"
	case SyntaxRepeat:
		return "repeat"
	case SyntaxBreak:
		return "break"
	case SyntaxReturn:
		return "return"
	case SyntaxUnreachable:
		return "unreachable"
	}
	return "invalid"
}

// SyntaxNode is one element of the Abstract Syntax List: the flat, ordered
// structured control flow representation the backends walk.
//
// Field use by kind:
//
//	Block       Block
//	If          Cond, Body, Merge
//	EndIf       Merge
//	Loop        Body, Continue, Merge
//	Repeat      Cond, Header, Merge
//	Break       Cond, Merge, Skip
//	Return      -
//	Unreachable -
type SyntaxNode struct {
	Kind     SyntaxKind
	Block    *Block
	Cond     Value
	Body     *Block
	Merge    *Block
	Continue *Block
	Header   *Block
	Skip     *Block
}

// Program is one fully translated shader. It owns the pools every Inst and
// Block lives in.
type Program struct {
	Syntax          []SyntaxNode
	Blocks          []*Block
	PostOrderBlocks []*Block

	Info ShaderInfo

	Stage                 shader.Stage
	WorkgroupSize         [3]uint32
	OutputTopology        shader.OutputTopology
	OutputVertices        uint32
	Invocations           uint32
	LocalMemorySize       uint32
	SharedMemorySize      uint32
	IsGeometryPassthrough bool

	instPool  Pool[Inst]
	blockPool Pool[Block]
}

// NewProgram returns an empty program with fresh pools.
func NewProgram(stage shader.Stage) *Program {
	return &Program{Stage: stage}
}

// CreateInst allocates an instruction of the given opcode from the
// program's pool. It is not linked into any block.
func (p *Program) CreateInst(op Opcode) *Inst {
	inst := p.instPool.Create()
	inst.init(op)
	return inst
}

// CreateBlock allocates a block from the program's pool and registers it in
// program order.
func (p *Program) CreateBlock() *Block {
	b := p.blockPool.Create()
	p.Blocks = append(p.Blocks, b)
	return b
}

// ReleaseContents drops every instruction and block at once, keeping the
// pool storage for the next compilation.
func (p *Program) ReleaseContents() {
	p.instPool.ReleaseContents()
	p.blockPool.ReleaseContents()
	p.Blocks = nil
	p.PostOrderBlocks = nil
	p.Syntax = nil
}

// ComputePostOrder fills PostOrderBlocks with a depth first post order
// starting from entry. Reverse iteration yields reverse post order, the
// visit order of the dataflow passes.
func (p *Program) ComputePostOrder(entry *Block) {
	p.PostOrderBlocks = p.PostOrderBlocks[:0]
	seen := map[*Block]bool{entry: true}
	type frame struct {
		block *Block
		next  int
	}
	stack := []frame{{block: entry}}
	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.next < len(f.block.Successors) {
			succ := f.block.Successors[f.next]
			f.next++
			if !seen[succ] {
				seen[succ] = true
				stack = append(stack, frame{block: succ})
			}
			continue
		}
		p.PostOrderBlocks = append(p.PostOrderBlocks, f.block)
		stack = stack[:len(stack)-1]
	}
	for i, b := range p.PostOrderBlocks {
		b.Order = len(p.PostOrderBlocks) - 1 - i
	}
}
