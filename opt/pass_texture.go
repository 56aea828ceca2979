package opt

import (
	"github.com/oleiade/lane"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// textureHandle is the traced origin of one texture or image handle.
type textureHandle struct {
	cbufIndex  uint32
	cbufOffset uint32

	// secondary is set for the OR-combined separate sampler pattern.
	hasSecondary    bool
	secondaryIndex  uint32
	secondaryOffset uint32

	// count > 1 marks a dynamically indexed descriptor array; dynamic
	// holds the runtime index expression.
	count   uint32
	dynamic ir.Value
}

type texturePass struct {
	p   *ir.Program
	env shader.Environment
}

// TexturePromotion rewrites the Bindless and Bound image opcodes into their
// canonical descriptor indexed forms, deduplicating descriptors in first
// occurrence order.
func TexturePromotion(p *ir.Program, env shader.Environment) error {
	pass := &texturePass{p: p, env: env}
	for _, b := range p.Blocks {
		for inst := b.Head(); inst != nil; inst = inst.Next() {
			op := inst.Opcode()
			if !op.IsImage() || op >= ir.OpImageSampleImplicitLod {
				continue
			}
			if err := pass.promote(inst); err != nil {
				return err
			}
		}
	}
	return nil
}

const bindlessBase = ir.OpBindlessImageSampleImplicitLod
const boundBase = ir.OpBoundImageSampleImplicitLod
const plainBase = ir.OpImageSampleImplicitLod

func (t *texturePass) promote(inst *ir.Inst) error {
	op := inst.Opcode()
	var (
		handle textureHandle
		plain  ir.Opcode
	)
	if op >= boundBase {
		plain = plainBase + (op - boundBase)
		slot := inst.Arg(0).U32()
		handle = textureHandle{
			cbufIndex:  t.env.TextureBoundBuffer(),
			cbufOffset: slot * 4,
			count:      1,
		}
	} else {
		plain = plainBase + (op - bindlessBase)
		traced, ok := traceHandle(inst.Arg(0))
		if !ok {
			return shader.NotImplemented("untraceable bindless texture handle")
		}
		handle = traced
	}

	info := inst.TextureInfo()
	if plain == ir.OpImageFetch && info.Type == shader.TextureColor1D {
		// Titles alias 1D fetches onto buffer textures; resolve against
		// the guest descriptor.
		raw := t.env.ReadCbufValue(handle.cbufIndex, handle.cbufOffset)
		if t.env.ReadTextureType(raw) == shader.TextureBuffer {
			info.Type = shader.TextureBuffer
		}
	}

	idx := t.descriptorIndex(plain, info, handle)
	info.DescriptorIndex = uint8(idx)
	inst.SetFlags(info.Pack())
	inst.ReplaceOpcode(plain)

	// The handle argument is dead once the descriptor index is attached;
	// dynamic arrays keep the runtime index in its place.
	if handle.dynamic.IsEmpty() {
		inst.SetArg(0, ir.MakeU32(0))
	} else {
		inst.SetArg(0, handle.dynamic)
	}
	return nil
}

func isImageAccess(op ir.Opcode) (read, written bool) {
	switch op {
	case ir.OpImageRead:
		return true, false
	case ir.OpImageWrite:
		return false, true
	case ir.OpImageQueryDimensions, ir.OpImageQueryLod:
		return false, false
	}
	if op >= ir.OpImageAtomicIAdd32 && op <= ir.OpImageAtomicExchange32 {
		return true, true
	}
	return false, false
}

func isStorageImageOp(op ir.Opcode) bool {
	return op == ir.OpImageRead || op == ir.OpImageWrite ||
		(op >= ir.OpImageAtomicIAdd32 && op <= ir.OpImageAtomicExchange32)
}

// descriptorIndex registers the descriptor for one promoted instruction,
// merging with an existing entry when the identity fields match.
func (t *texturePass) descriptorIndex(plain ir.Opcode, info ir.TextureInstInfo, h textureHandle) int {
	count := h.count
	if count == 0 {
		count = 1
	}
	inf := &t.p.Info
	switch {
	case isStorageImageOp(plain) && info.Type == shader.TextureBuffer:
		read, written := isImageAccess(plain)
		for i := range inf.ImageBuffers {
			d := &inf.ImageBuffers[i]
			if d.CbufIndex == h.cbufIndex && d.CbufOffset == h.cbufOffset &&
				d.Count == count && d.Format == info.Format {
				d.IsRead = d.IsRead || read
				d.IsWritten = d.IsWritten || written
				return i
			}
		}
		inf.ImageBuffers = append(inf.ImageBuffers, ir.ImageBufferDescriptor{
			Format: info.Format, IsRead: read, IsWritten: written,
			CbufIndex: h.cbufIndex, CbufOffset: h.cbufOffset, Count: count,
		})
		return len(inf.ImageBuffers) - 1

	case isStorageImageOp(plain):
		read, written := isImageAccess(plain)
		for i := range inf.Images {
			d := &inf.Images[i]
			if d.CbufIndex == h.cbufIndex && d.CbufOffset == h.cbufOffset &&
				d.Count == count && d.Type == info.Type && d.Format == info.Format {
				d.IsRead = d.IsRead || read
				d.IsWritten = d.IsWritten || written
				return i
			}
		}
		inf.Images = append(inf.Images, ir.ImageDescriptor{
			Type: info.Type, Format: info.Format, IsRead: read, IsWritten: written,
			CbufIndex: h.cbufIndex, CbufOffset: h.cbufOffset, Count: count,
		})
		return len(inf.Images) - 1

	case info.Type == shader.TextureBuffer:
		for i := range inf.TextureBuffers {
			d := &inf.TextureBuffers[i]
			if d.CbufIndex == h.cbufIndex && d.CbufOffset == h.cbufOffset &&
				d.Count == count && d.HasSecondary == h.hasSecondary {
				return i
			}
		}
		inf.TextureBuffers = append(inf.TextureBuffers, ir.TextureBufferDescriptor{
			HasSecondary: h.hasSecondary,
			CbufIndex:    h.cbufIndex, CbufOffset: h.cbufOffset,
			SecondaryCbufIndex: h.secondaryIndex, SecondaryCbufOffset: h.secondaryOffset,
			Count: count,
		})
		return len(inf.TextureBuffers) - 1

	default:
		for i := range inf.Textures {
			d := &inf.Textures[i]
			if d.CbufIndex == h.cbufIndex && d.CbufOffset == h.cbufOffset &&
				d.Count == count && d.Type == info.Type &&
				d.IsDepth == info.IsDepth && d.HasSecondary == h.hasSecondary {
				return i
			}
		}
		inf.Textures = append(inf.Textures, ir.TextureDescriptor{
			Type: info.Type, IsDepth: info.IsDepth,
			HasSecondary: h.hasSecondary,
			CbufIndex:    h.cbufIndex, CbufOffset: h.cbufOffset,
			SecondaryCbufIndex: h.secondaryIndex, SecondaryCbufOffset: h.secondaryOffset,
			Count: count,
		})
		return len(inf.Textures) - 1
	}
}

// traceHandle breadth first searches a bindless handle for its descriptor
// source. Terminal patterns: an immediate cbuf word, an immediate cbuf
// pair, an OR of two cbuf words (separate sampler), or a cbuf word plus a
// dynamic index (descriptor array).
func traceHandle(v ir.Value) (textureHandle, bool) {
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
		switch inst.Opcode() {
		case ir.OpGetCbufU32, ir.OpGetCbufU32x2:
			if inst.Arg(0).IsImmediate() && inst.Arg(1).IsImmediate() {
				return textureHandle{
					cbufIndex:  inst.Arg(0).U32(),
					cbufOffset: inst.Arg(1).U32(),
					count:      1,
				}, true
			}
			// Dynamic offset: cbuf word at base+index*stride.
			if h, ok := dynamicHandle(inst); ok {
				return h, true
			}
		case ir.OpBitwiseOr32:
			if h, ok := separateSampler(inst); ok {
				return h, true
			}
		}
		for n := 0; n < inst.NumArgs(); n++ {
			work.Enqueue(inst.Arg(n))
		}
	}
	return textureHandle{}, false
}

// separateSampler matches OR of two immediate cbuf loads: one word holds
// the texture handle, the other the sampler handle. The smaller location
// is canonicalized as the primary.
func separateSampler(or *ir.Inst) (textureHandle, bool) {
	a := or.Arg(0).InstRecursive()
	b := or.Arg(1).InstRecursive()
	if a == nil || b == nil {
		return textureHandle{}, false
	}
	immCbuf := func(i *ir.Inst) (uint32, uint32, bool) {
		if i.Opcode() != ir.OpGetCbufU32 || !i.Arg(0).IsImmediate() || !i.Arg(1).IsImmediate() {
			return 0, 0, false
		}
		return i.Arg(0).U32(), i.Arg(1).U32(), true
	}
	ai, ao, ok := immCbuf(a)
	if !ok {
		return textureHandle{}, false
	}
	bi, bo, ok := immCbuf(b)
	if !ok {
		return textureHandle{}, false
	}
	if bi < ai || (bi == ai && bo < ao) {
		ai, ao, bi, bo = bi, bo, ai, ao
	}
	return textureHandle{
		cbufIndex: ai, cbufOffset: ao,
		hasSecondary:   true,
		secondaryIndex: bi, secondaryOffset: bo,
		count: 1,
	}, true
}

// dynamicHandle matches a cbuf load whose offset is base+dynamic, the
// descriptor array pattern. The array size is capped at 8 entries.
func dynamicHandle(cbuf *ir.Inst) (textureHandle, bool) {
	if !cbuf.Arg(0).IsImmediate() {
		return textureHandle{}, false
	}
	add := cbuf.Arg(1).InstRecursive()
	if add == nil || add.Opcode() != ir.OpIAdd32 {
		return textureHandle{}, false
	}
	base, dyn := add.Arg(0), add.Arg(1)
	if !base.IsImmediate() {
		base, dyn = dyn, base
	}
	if !base.IsImmediate() || dyn.IsImmediate() {
		return textureHandle{}, false
	}
	return textureHandle{
		cbufIndex:  cbuf.Arg(0).U32(),
		cbufOffset: base.U32(),
		count:      8,
		dynamic:    dyn,
	}, true
}
