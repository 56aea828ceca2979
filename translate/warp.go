package translate

import (
	"github.com/gogpu/maxwell/decode"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

func (t *Translator) shfl(w uint64) error {
	value := t.gprA(w)
	var index, mask ir.Value
	if decode.Field(w, 28, 1) != 0 {
		index = ir.MakeU32(uint32(decode.Field(w, 20, 5)))
	} else {
		index = t.gprB(w)
	}
	if decode.Field(w, 29, 1) != 0 {
		mask = ir.MakeU32(uint32(decode.Field(w, 34, 13)))
	} else {
		mask = t.gprC(w)
	}
	clamp := t.e.BitFieldUExtract(mask, ir.MakeU32(0), ir.MakeU32(5))
	segMask := t.e.BitFieldUExtract(mask, ir.MakeU32(8), ir.MakeU32(5))

	var op ir.Opcode
	switch mode := decode.Field(w, 30, 2); mode {
	case 0:
		op = ir.OpShuffleIndex
	case 1:
		op = ir.OpShuffleUp
	case 2:
		op = ir.OpShuffleDown
	default:
		op = ir.OpShuffleButterfly
	}
	res := t.e.Emit(op, value, index, clamp, segMask)
	// The in bounds predicate reports whether the source lane was active.
	inBounds := t.e.PseudoResult(ir.OpGetInBoundsFromOp, res)
	t.e.SetPred(ir.Pred(decode.Field(w, 48, 3)), inBounds)
	t.e.SetReg(decode.DestReg(w), res)
	return nil
}

func (t *Translator) vote(w uint64) error {
	pred := t.predSrc(w)
	var op ir.Opcode
	switch mode := decode.Field(w, 48, 2); mode {
	case 0:
		op = ir.OpVoteAll
	case 1:
		op = ir.OpVoteAny
	case 2:
		op = ir.OpVoteEqual
	default:
		return shader.NotImplemented("VOTE mode %d", mode)
	}
	t.e.SetPred(ir.Pred(decode.Field(w, 45, 3)), t.e.Emit(op, pred))
	t.e.SetReg(decode.DestReg(w), t.e.Emit(ir.OpSubgroupBallot, pred))
	return nil
}

func (t *Translator) fswzadd(w uint64) error {
	a := t.gprAF32(w)
	b := t.gprBF32(w)
	mask := ir.MakeU32(uint32(decode.Field(w, 28, 8)))
	res := t.e.Emit(ir.OpFSwizzleAdd, a, b, mask)
	t.setRegF32(decode.DestReg(w), res)
	return nil
}
