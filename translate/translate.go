// Package translate lowers decoded Maxwell instructions into IR. One
// handler per instruction family; the control flow package drives it one
// basic block at a time.
package translate

import (
	"github.com/gogpu/maxwell/decode"
	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// Translator emits IR for one program. It is not safe for concurrent use.
type Translator struct {
	p   *ir.Program
	env shader.Environment
	e   *ir.Emitter
}

// New returns a translator emitting into p.
func New(p *ir.Program) *Translator {
	return &Translator{p: p, e: ir.NewEmitter(p, nil)}
}

const instSize = 8

func schedWord(addr uint32) bool { return addr%32 == 0 }

// Block translates the instruction range [begin, end) into block. It
// satisfies the flow package's translation callback.
func (t *Translator) Block(env shader.Environment, block *ir.Block, begin, end uint32) error {
	t.env = env
	t.e.SetBlock(block)
	for pc := begin; pc < end; pc += instSize {
		if schedWord(pc) {
			continue
		}
		word := env.ReadInstruction(pc)
		op, err := decode.Decode(word)
		if err != nil {
			return err
		}
		if err := t.inst(op, word); err != nil {
			return err
		}
	}
	return nil
}

func (t *Translator) inst(op decode.Op, w uint64) error {
	switch op {
	// Control flow is fully handled during CFG construction.
	case decode.Bra, decode.Brx, decode.Jmp, decode.Jmx, decode.Cal,
		decode.Jcal, decode.Ret, decode.Exit, decode.Kil, decode.Ssy,
		decode.Pbk, decode.Pcnt, decode.Pexit, decode.Plongjmp,
		decode.Longjmp, decode.Sync, decode.Brk, decode.Cont:
		return nil

	case decode.Nop, decode.Depbar:
		return nil
	case decode.Bar:
		t.e.Emit(ir.OpBarrier)
		return nil
	case decode.Membar:
		return t.membar(w)

	case decode.S2R:
		return t.s2r(w)
	case decode.MovR:
		return t.mov(w, t.gprB(w))
	case decode.MovC:
		return t.mov(w, t.cbufU32(w))
	case decode.MovI:
		return t.mov(w, t.immU32(w))
	case decode.Mov32I:
		return t.mov(w, ir.MakeU32(decode.Imm32(w)))

	case decode.IAddR:
		return t.iadd(w, t.gprB(w))
	case decode.IAddC:
		return t.iadd(w, t.cbufU32(w))
	case decode.IAddI:
		return t.iadd(w, t.immU32(w))
	case decode.IAdd32I:
		return t.iadd32i(w)
	case decode.IAdd3R:
		return t.iadd3(w)
	case decode.IScAddR:
		return t.iscadd(w, t.gprB(w))
	case decode.IScAddC:
		return t.iscadd(w, t.cbufU32(w))
	case decode.IScAddI:
		return t.iscadd(w, t.immU32(w))
	case decode.FloR:
		return t.flo(w)
	case decode.PopcR:
		return t.popc(w)
	case decode.ShlR:
		return t.shl(w, t.gprB(w))
	case decode.ShlC:
		return t.shl(w, t.cbufU32(w))
	case decode.ShlI:
		return t.shl(w, t.immU32(w))
	case decode.ShrR:
		return t.shr(w, t.gprB(w))
	case decode.ShrC:
		return t.shr(w, t.cbufU32(w))
	case decode.ShrI:
		return t.shr(w, t.immU32(w))
	case decode.ImnmxR:
		return t.imnmx(w, t.gprB(w))
	case decode.ImnmxC:
		return t.imnmx(w, t.cbufU32(w))
	case decode.ImnmxI:
		return t.imnmx(w, t.immU32(w))
	case decode.LopR:
		return t.lop(w, t.gprB(w))
	case decode.LopC:
		return t.lop(w, t.cbufU32(w))
	case decode.LopI:
		return t.lop(w, t.immU32(w))
	case decode.Lop32I:
		return t.lop32i(w)
	case decode.Lop3R:
		return t.lop3(w)
	case decode.BfeR:
		return t.bfe(w, t.gprB(w))
	case decode.BfeC:
		return t.bfe(w, t.cbufU32(w))
	case decode.BfeI:
		return t.bfe(w, t.immU32(w))
	case decode.BfiR:
		return t.bfi(w)
	case decode.SelR:
		return t.sel(w, t.gprB(w))
	case decode.SelC:
		return t.sel(w, t.cbufU32(w))
	case decode.SelI:
		return t.sel(w, t.immU32(w))
	case decode.IsetpR:
		return t.isetp(w, t.gprB(w))
	case decode.IsetpC:
		return t.isetp(w, t.cbufU32(w))
	case decode.IsetpI:
		return t.isetp(w, t.immU32(w))
	case decode.IsetR:
		return t.iset(w, t.gprB(w))
	case decode.XmadR:
		return t.xmad(w)
	case decode.PsetR:
		return t.pset(w)
	case decode.PsetpR:
		return t.psetp(w)

	case decode.FAddR:
		return t.fadd(w, t.gprBF32(w))
	case decode.FAddC:
		return t.fadd(w, t.cbufF32(w))
	case decode.FAddI:
		return t.fadd(w, t.immF32(w))
	case decode.FAdd32I:
		return t.fadd32i(w)
	case decode.FMulR:
		return t.fmul(w, t.gprBF32(w))
	case decode.FMulC:
		return t.fmul(w, t.cbufF32(w))
	case decode.FMulI:
		return t.fmul(w, t.immF32(w))
	case decode.FMul32I:
		return t.fmul32i(w)
	case decode.FFmaR:
		return t.ffma(w, t.gprBF32(w), t.gprCF32(w))
	case decode.FFmaC:
		return t.ffma(w, t.cbufF32(w), t.gprCF32(w))
	case decode.FFmaI:
		return t.ffma(w, t.immF32(w), t.gprCF32(w))
	case decode.FmnmxR:
		return t.fmnmx(w, t.gprBF32(w))
	case decode.FmnmxC:
		return t.fmnmx(w, t.cbufF32(w))
	case decode.FmnmxI:
		return t.fmnmx(w, t.immF32(w))
	case decode.Mufu:
		return t.mufu(w)
	case decode.FsetR:
		return t.fset(w, t.gprBF32(w))
	case decode.FsetpR:
		return t.fsetp(w, t.gprBF32(w))
	case decode.FsetpC:
		return t.fsetp(w, t.cbufF32(w))
	case decode.FsetpI:
		return t.fsetp(w, t.immF32(w))

	case decode.DAddR:
		return t.dadd(w)
	case decode.DMulR:
		return t.dmul(w)
	case decode.DFmaR:
		return t.dfma(w)

	case decode.Hadd2R:
		return t.hadd2(w)
	case decode.Hmul2R:
		return t.hmul2(w)
	case decode.Hfma2R:
		return t.hfma2(w)
	case decode.Hset2R:
		return t.hset2(w)
	case decode.Hsetp2R:
		return t.hsetp2(w)

	case decode.F2FR, decode.F2FC, decode.F2FI:
		return t.f2f(op, w)
	case decode.F2IR, decode.F2IC, decode.F2II:
		return t.f2i(op, w)
	case decode.I2FR, decode.I2FC, decode.I2FI:
		return t.i2f(op, w)
	case decode.I2IR, decode.I2IC, decode.I2II:
		return t.i2i(op, w)

	case decode.Ldg:
		return t.ldg(w)
	case decode.Stg:
		return t.stg(w)
	case decode.Ldl:
		return t.ldl(w)
	case decode.Stl:
		return t.stl(w)
	case decode.Lds:
		return t.lds(w)
	case decode.Sts:
		return t.sts(w)
	case decode.Ldc:
		return t.ldc(w)
	case decode.Atom:
		return t.atom(w)
	case decode.Atoms:
		return t.atoms(w)

	case decode.Ald:
		return t.ald(w)
	case decode.Ast:
		return t.ast(w)
	case decode.Ipa:
		return t.ipa(w)
	case decode.Out:
		return t.out(w)

	case decode.Tex:
		return t.tex(w)
	case decode.Texs:
		return t.texs(w)
	case decode.Tld:
		return t.tld(w)
	case decode.Tlds:
		return t.tlds(w)
	case decode.Tld4:
		return t.tld4(w)
	case decode.Tld4s:
		return t.tld4s(w)
	case decode.Tmml:
		return t.tmml(w)
	case decode.Txd:
		return t.txd(w)
	case decode.Txq:
		return t.txq(w)
	case decode.Suld:
		return t.suld(w)
	case decode.Sust:
		return t.sust(w)
	case decode.Suatom:
		return t.suatom(w)

	case decode.Shfl:
		return t.shfl(w)
	case decode.Vote:
		return t.vote(w)
	case decode.Fswzadd:
		return t.fswzadd(w)
	}
	return shader.NotImplemented("instruction %v", op)
}

func (t *Translator) membar(w uint64) error {
	// Level 0 is CTA scope, everything wider maps to device scope.
	if decode.Field(w, 8, 2) == 0 {
		t.e.Emit(ir.OpWorkgroupMemoryBarrier)
	} else {
		t.e.Emit(ir.OpDeviceMemoryBarrier)
	}
	return nil
}

func (t *Translator) mov(w uint64, src ir.Value) error {
	t.e.SetReg(decode.DestReg(w), src)
	return nil
}

// System register identifiers read by S2R.
const (
	srLaneID         = 0
	srInvocationID   = 2
	srYDirection     = 3
	srInvocationInfo = 29
	srTIDX           = 33
	srTIDY           = 34
	srTIDZ           = 35
	srCTAIDX         = 37
	srCTAIDY         = 38
	srCTAIDZ         = 39
	srEqMask         = 56
	srLtMask         = 57
	srLeMask         = 58
	srGtMask         = 59
	srGeMask         = 60
)

func (t *Translator) s2r(w uint64) error {
	dest := decode.DestReg(w)
	sys := decode.Field(w, 20, 8)
	var v ir.Value
	switch sys {
	case srLaneID:
		v = t.e.Emit(ir.OpLaneID)
	case srInvocationID:
		v = t.e.Emit(ir.OpInvocationID)
	case srYDirection:
		v = t.e.Emit(ir.OpBitCastU32F32, t.e.Emit(ir.OpYDirection))
	case srInvocationInfo:
		v = t.e.Emit(ir.OpInvocationInfo)
	case srTIDX, srTIDY, srTIDZ:
		tid := t.e.Emit(ir.OpLocalInvocationID)
		v = t.e.Emit(ir.OpCompositeExtractU32x3, tid, ir.MakeU32(uint32(sys-srTIDX)))
	case srCTAIDX, srCTAIDY, srCTAIDZ:
		cta := t.e.Emit(ir.OpWorkgroupID)
		v = t.e.Emit(ir.OpCompositeExtractU32x3, cta, ir.MakeU32(uint32(sys-srCTAIDX)))
	case srEqMask:
		v = t.e.Emit(ir.OpSubgroupEqMask)
	case srLtMask:
		v = t.e.Emit(ir.OpSubgroupLtMask)
	case srLeMask:
		v = t.e.Emit(ir.OpSubgroupLeMask)
	case srGtMask:
		v = t.e.Emit(ir.OpSubgroupGtMask)
	case srGeMask:
		v = t.e.Emit(ir.OpSubgroupGeMask)
	default:
		return shader.NotImplemented("system register %d", sys)
	}
	t.e.SetReg(dest, v)
	return nil
}
