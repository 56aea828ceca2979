package opt

import (
	"github.com/oleiade/lane"
	"tlog.app/go/tlog"

	"github.com/gogpu/maxwell/ir"
)

// nvnBias is the constant buffer range where the guest driver stores its
// storage buffer descriptors: 16 byte records in cbuf 0.
const (
	nvnBiasCbuf  = 0
	nvnBiasBegin = 0x110
	nvnBiasEnd   = 0x610
)

// storageOps maps each global memory opcode to its storage buffer form.
var storageOps = map[ir.Opcode]ir.Opcode{
	ir.OpLoadGlobalU8:    ir.OpLoadStorageU8,
	ir.OpLoadGlobalS8:    ir.OpLoadStorageS8,
	ir.OpLoadGlobalU16:   ir.OpLoadStorageU16,
	ir.OpLoadGlobalS16:   ir.OpLoadStorageS16,
	ir.OpLoadGlobal32:    ir.OpLoadStorage32,
	ir.OpLoadGlobal64:    ir.OpLoadStorage64,
	ir.OpLoadGlobal128:   ir.OpLoadStorage128,
	ir.OpWriteGlobalU8:   ir.OpWriteStorageU8,
	ir.OpWriteGlobalS8:   ir.OpWriteStorageS8,
	ir.OpWriteGlobalU16:  ir.OpWriteStorageU16,
	ir.OpWriteGlobalS16:  ir.OpWriteStorageS16,
	ir.OpWriteGlobal32:   ir.OpWriteStorage32,
	ir.OpWriteGlobal64:   ir.OpWriteStorage64,
	ir.OpWriteGlobal128:  ir.OpWriteStorage128,

	ir.OpGlobalAtomicIAdd32:     ir.OpStorageAtomicIAdd32,
	ir.OpGlobalAtomicSMin32:     ir.OpStorageAtomicSMin32,
	ir.OpGlobalAtomicUMin32:     ir.OpStorageAtomicUMin32,
	ir.OpGlobalAtomicSMax32:     ir.OpStorageAtomicSMax32,
	ir.OpGlobalAtomicUMax32:     ir.OpStorageAtomicUMax32,
	ir.OpGlobalAtomicInc32:      ir.OpStorageAtomicInc32,
	ir.OpGlobalAtomicDec32:      ir.OpStorageAtomicDec32,
	ir.OpGlobalAtomicAnd32:      ir.OpStorageAtomicAnd32,
	ir.OpGlobalAtomicOr32:       ir.OpStorageAtomicOr32,
	ir.OpGlobalAtomicXor32:      ir.OpStorageAtomicXor32,
	ir.OpGlobalAtomicExchange32: ir.OpStorageAtomicExchange32,
	ir.OpGlobalAtomicIAdd64:     ir.OpStorageAtomicIAdd64,
	ir.OpGlobalAtomicSMin64:     ir.OpStorageAtomicSMin64,
	ir.OpGlobalAtomicUMin64:     ir.OpStorageAtomicUMin64,
	ir.OpGlobalAtomicSMax64:     ir.OpStorageAtomicSMax64,
	ir.OpGlobalAtomicUMax64:     ir.OpStorageAtomicUMax64,
	ir.OpGlobalAtomicAnd64:      ir.OpStorageAtomicAnd64,
	ir.OpGlobalAtomicOr64:       ir.OpStorageAtomicOr64,
	ir.OpGlobalAtomicXor64:      ir.OpStorageAtomicXor64,
	ir.OpGlobalAtomicExchange64: ir.OpStorageAtomicExchange64,
	ir.OpGlobalAtomicAddF32:     ir.OpStorageAtomicAddF32,
	ir.OpGlobalAtomicAddF16x2:   ir.OpStorageAtomicAddF16x2,
	ir.OpGlobalAtomicMinF16x2:   ir.OpStorageAtomicMinF16x2,
	ir.OpGlobalAtomicMaxF16x2:   ir.OpStorageAtomicMaxF16x2,
}

func isGlobalWrite(op ir.Opcode) bool {
	switch op {
	case ir.OpWriteGlobalU8, ir.OpWriteGlobalS8, ir.OpWriteGlobalU16,
		ir.OpWriteGlobalS16, ir.OpWriteGlobal32, ir.OpWriteGlobal64,
		ir.OpWriteGlobal128:
		return true
	}
	return op >= ir.OpGlobalAtomicIAdd32 && op <= ir.OpGlobalAtomicMaxF16x2
}

// storageBufferKey identifies the cbuf words holding an SSBO descriptor.
type storageBufferKey struct {
	index  uint32
	offset uint32
}

type globalMemoryPass struct {
	p       *ir.Program
	buffers []storageBufferKey
	indexOf map[storageBufferKey]int
}

// GlobalMemoryToStorageBuffer recovers storage buffer accesses from raw
// 64-bit pointer arithmetic. Pointers that trace back to an SSBO descriptor
// in the guest driver's constant buffer are rewritten to the storage
// opcodes; everything else stays global and the backend falls back.
func GlobalMemoryToStorageBuffer(p *ir.Program) {
	pass := &globalMemoryPass{p: p, indexOf: map[storageBufferKey]int{}}
	for _, b := range p.Blocks {
		for _, inst := range b.Instructions() {
			if _, ok := storageOps[inst.Opcode()]; ok {
				pass.promote(b, inst)
			}
		}
	}
}

func (g *globalMemoryPass) promote(b *ir.Block, inst *ir.Inst) {
	addr := inst.Arg(0)
	base := addr
	var imm uint64

	// Step 1: peel a constant pointer offset.
	if a := base.InstRecursive(); a != nil && a.Opcode() == ir.OpIAdd64 {
		if off := a.Arg(1); off.IsImmediate() {
			imm = off.U64()
			base = a.Arg(0)
		}
	}

	// Step 2: the translator always forms pointers as Pack(Construct(lo, hi)).
	pack := base.InstRecursive()
	if pack == nil || pack.Opcode() != ir.OpPackUint2x32 {
		return
	}
	construct := pack.Arg(0).InstRecursive()
	if construct == nil || construct.Opcode() != ir.OpCompositeConstructU32x2 {
		return
	}
	lo := construct.Arg(0)

	// Step 3: search the low word's dataflow for the descriptor load,
	// preferring the NVN bias range.
	key, ok := findDescriptor(lo, true)
	if !ok {
		if key, ok = findDescriptor(lo, false); !ok {
			tlog.Printw("global memory access not traced to a storage buffer",
				"op", inst.Opcode().String())
			return
		}
	}

	idx, seen := g.indexOf[key]
	if !seen {
		idx = len(g.buffers)
		g.buffers = append(g.buffers, key)
		g.indexOf[key] = idx
		g.p.Info.StorageBuffers = append(g.p.Info.StorageBuffers, ir.StorageBufferDescriptor{
			CbufIndex:  key.index,
			CbufOffset: key.offset,
			Count:      1,
		})
	}
	if isGlobalWrite(inst.Opcode()) {
		g.p.Info.StorageBuffers[idx].IsWritten = true
	}

	// Rewrite: offset = addr_lo + imm - cbuf[descriptor].
	e := ir.NewEmitter(g.p, nil)
	e.SetInsertPoint(b, inst)
	loVal := lo
	if imm != 0 {
		loVal = e.IAdd32(loVal, ir.MakeU32(uint32(imm)))
	}
	bufBase := e.Emit(ir.OpGetCbufU32, ir.MakeU32(key.index), ir.MakeU32(key.offset))
	offset := e.Emit(ir.OpISub32, loVal, bufBase)

	args := []ir.Value{ir.MakeU32(uint32(idx)), offset}
	for n := 1; n < inst.NumArgs(); n++ {
		args = append(args, inst.Arg(n))
	}
	res := e.Emit(storageOps[inst.Opcode()], args...)
	inst.ReplaceUsesWith(res)
	b.Remove(inst)
	inst.Invalidate()
}

// findDescriptor breadth first searches a value's dataflow for an immediate
// GetCbufU32 load. With biased set, only the NVN descriptor window counts.
func findDescriptor(v ir.Value, biased bool) (storageBufferKey, bool) {
	visited := map[*ir.Inst]bool{}
	work := lane.NewQueue()
	work.Enqueue(v)
	for !work.Empty() {
		cur := work.Dequeue().(ir.Value).Resolve()
		inst := cur.Inst()
		if inst == nil || visited[inst] {
			continue
		}
		visited[inst] = true
		if inst.Opcode() == ir.OpGetCbufU32 &&
			inst.Arg(0).IsImmediate() && inst.Arg(1).IsImmediate() {
			key := storageBufferKey{index: inst.Arg(0).U32(), offset: inst.Arg(1).U32()}
			if key.offset%16 != 0 {
				continue
			}
			if biased && (key.index != nvnBiasCbuf ||
				key.offset < nvnBiasBegin || key.offset >= nvnBiasEnd) {
				continue
			}
			return key, true
		}
		for n := 0; n < inst.NumArgs(); n++ {
			work.Enqueue(inst.Arg(n))
		}
	}
	return storageBufferKey{}, false
}
