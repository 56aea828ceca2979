package ir

// Block is a basic block: an intrusive list of instructions plus immediate
// predecessor and successor edges. Block identity is pointer equality;
// blocks are allocated from the Program's pool.
type Block struct {
	head, tail *Inst

	Predecessors []*Block
	Successors   []*Block

	// SsaSealed marks that all predecessors are known, closing the
	// block for incomplete phi insertion.
	SsaSealed bool

	// Order is the block's index in the program's reverse post order.
	Order int
}

// Head returns the first instruction, or nil for an empty block.
func (b *Block) Head() *Inst { return b.head }

// Tail returns the last instruction, or nil for an empty block.
func (b *Block) Tail() *Inst { return b.tail }

// Empty reports whether the block holds no instructions.
func (b *Block) Empty() bool { return b.head == nil }

// AppendInst links inst at the end of the block.
func (b *Block) AppendInst(inst *Inst) {
	inst.block = b
	inst.prev = b.tail
	inst.next = nil
	if b.tail != nil {
		b.tail.next = inst
	} else {
		b.head = inst
	}
	b.tail = inst
}

// InsertBefore links inst immediately before pos. A nil pos appends.
func (b *Block) InsertBefore(pos, inst *Inst) {
	if pos == nil {
		b.AppendInst(inst)
		return
	}
	inst.block = b
	inst.next = pos
	inst.prev = pos.prev
	if pos.prev != nil {
		pos.prev.next = inst
	} else {
		b.head = inst
	}
	pos.prev = inst
}

// PrependPhi links a phi instruction after any existing phis but before
// every non-phi instruction, keeping the phi prefix invariant.
func (b *Block) PrependPhi(inst *Inst) {
	pos := b.head
	for pos != nil && pos.op == OpPhi {
		pos = pos.next
	}
	b.InsertBefore(pos, inst)
}

// Remove unlinks inst from the block without invalidating it.
func (b *Block) Remove(inst *Inst) {
	if inst.prev != nil {
		inst.prev.next = inst.next
	} else {
		b.head = inst.next
	}
	if inst.next != nil {
		inst.next.prev = inst.prev
	} else {
		b.tail = inst.prev
	}
	inst.prev = nil
	inst.next = nil
	inst.block = nil
}

// AddBranch records a control flow edge from b to succ, updating both
// adjacency lists.
func (b *Block) AddBranch(succ *Block) {
	b.Successors = append(b.Successors, succ)
	succ.Predecessors = append(succ.Predecessors, b)
}

// Instructions returns the block contents as a slice. Convenient for tests
// and passes that mutate the list while iterating.
func (b *Block) Instructions() []*Inst {
	var out []*Inst
	for i := b.head; i != nil; i = i.next {
		out = append(out, i)
	}
	return out
}
