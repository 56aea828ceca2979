// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glasm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/maxwell/ir"
	"github.com/gogpu/maxwell/shader"
)

// Register identifiers live in the Inst definition scratch word: zero means
// unallocated, otherwise index+1 with the long bit marking a 64-bit temp.
const longRegBit = 1 << 31

type writer struct {
	p       *ir.Program
	env     shader.Environment
	profile *shader.Profile
	rt      *shader.RuntimeInfo

	body strings.Builder

	// Temporaries are recycled through free lists; maxR and maxD track the
	// high water marks that size the TEMP declarations.
	freeR []uint32
	freeD []uint32
	maxR  uint32
	maxD  uint32

	// persistent marks registers that stay live across blocks, such as phi
	// destinations. They never return to the free list.
	persistent map[*ir.Inst]bool

	// uses counts remaining operand reads per instruction so registers can
	// be recycled after the last one.
	uses map[*ir.Inst]int

	// done marks instructions a consumer already rendered inline.
	done map[*ir.Inst]bool

	// consumed gathers the operands of the instruction being rendered; their
	// registers are released once the whole sequence is out. scratch holds
	// registers materializing immediates, released on the same schedule.
	consumed []*ir.Inst
	scratch  []uint32

	// posUsed tracks the RPOS staging temporary for result.position, which
	// keeps the components readable for the depth range epilogue. alphaUsed
	// tracks the ATST copy of the alpha output feeding the alpha test.
	posUsed   bool
	alphaUsed bool

	err error
}

func newWriter(p *ir.Program, env shader.Environment, profile *shader.Profile, rt *shader.RuntimeInfo) *writer {
	return &writer{
		p:          p,
		env:        env,
		profile:    profile,
		rt:         rt,
		persistent: map[*ir.Inst]bool{},
		uses:       map[*ir.Inst]int{},
		done:       map[*ir.Inst]bool{},
	}
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *writer) failf(format string, args ...any) {
	w.fail(shader.NotImplemented(format, args...))
}

// op appends one assembler statement.
func (w *writer) op(format string, args ...any) {
	fmt.Fprintf(&w.body, format, args...)
	w.body.WriteString(";\n")
}

// countUses seeds the remaining-read counters from every operand edge in
// the program, including the moves added by phi pre-coloring.
func (w *writer) countUses() {
	for _, b := range w.p.Blocks {
		for inst := b.Head(); inst != nil; inst = inst.Next() {
			for n := 0; n < inst.NumArgs(); n++ {
				if arg := inst.Arg(n).Resolve().Inst(); arg != nil {
					w.uses[arg]++
				}
			}
		}
	}
}

func isLongType(t ir.Type) bool {
	switch t {
	case ir.TypeU64, ir.TypeF64, ir.TypeF64x2:
		return true
	}
	return false
}

// reg returns the register holding the instruction result, allocating on
// first use.
func (w *writer) reg(inst *ir.Inst) string {
	def := inst.Definition()
	if def == 0 {
		def = w.alloc(isLongType(inst.ResultType()))
		inst.SetDefinition(def)
	}
	return regName(def)
}

func regName(def uint32) string {
	if def&longRegBit != 0 {
		return fmt.Sprintf("D%d", def&^uint32(longRegBit)-1)
	}
	return fmt.Sprintf("R%d", def-1)
}

func (w *writer) alloc(long bool) uint32 {
	if long {
		if n := len(w.freeD); n > 0 {
			id := w.freeD[n-1]
			w.freeD = w.freeD[:n-1]
			return id | longRegBit
		}
		w.maxD++
		return w.maxD | longRegBit
	}
	if n := len(w.freeR); n > 0 {
		id := w.freeR[n-1]
		w.freeR = w.freeR[:n-1]
		return id
	}
	w.maxR++
	return w.maxR
}

func (w *writer) release(inst *ir.Inst) {
	def := inst.Definition()
	if def == 0 || w.persistent[inst] {
		return
	}
	if def&longRegBit != 0 {
		w.freeD = append(w.freeD, def&^uint32(longRegBit))
	} else {
		w.freeR = append(w.freeR, def)
	}
	inst.SetDefinition(0)
}

// flush releases every operand whose last read was rendered, plus the
// immediate scratch registers of the statement.
func (w *writer) flush() {
	for _, inst := range w.consumed {
		w.uses[inst]--
		if w.uses[inst] <= 0 {
			w.release(inst)
		}
	}
	w.consumed = w.consumed[:0]
	for _, def := range w.scratch {
		w.freeScratch(def)
	}
	w.scratch = w.scratch[:0]
}

func scalarSuffix(t ir.Type) string {
	switch t {
	case ir.TypeU32x2, ir.TypeU32x3, ir.TypeU32x4,
		ir.TypeF32x2, ir.TypeF32x3, ir.TypeF32x4, ir.TypeF64x2:
		return ""
	}
	return ".x"
}

// val renders a value as a scalar operand: the .x component of its
// register, or an immediate literal.
func (w *writer) val(v ir.Value) string {
	v = v.Resolve()
	if inst := v.Inst(); inst != nil {
		w.consumed = append(w.consumed, inst)
		return w.reg(inst) + scalarSuffix(inst.ResultType())
	}
	switch v.Type() {
	case ir.TypeU1:
		// Booleans are signed words, true is all ones.
		if v.U1() {
			return "-1"
		}
		return "0"
	case ir.TypeU8:
		return immU32(uint32(v.U8()))
	case ir.TypeU16:
		return immU32(uint32(v.U16()))
	case ir.TypeU32:
		return immU32(v.U32())
	case ir.TypeF16:
		return immF32(f16ToF32(v.F16Bits()))
	case ir.TypeF32:
		return immF32(v.F32())
	case ir.TypeU64, ir.TypeF64:
		return w.longImm(v)
	default:
		w.fail(shader.Logic("%v value reached the backend", v))
		return "0"
	}
}

// vec renders a value as a whole register, materializing immediates.
func (w *writer) vec(v ir.Value) string {
	v = v.Resolve()
	if inst := v.Inst(); inst != nil {
		w.consumed = append(w.consumed, inst)
		return w.reg(inst)
	}
	def := w.alloc(false)
	w.op("MOV.U %s.x, %s", regName(def), w.val(v))
	w.scratch = append(w.scratch, def)
	return regName(def)
}

// freeScratch returns a register allocated outside an instruction result.
// The operand text stays valid until the next allocation, which is fine for
// single-statement uses.
func (w *writer) freeScratch(def uint32) {
	if def&longRegBit != 0 {
		w.freeD = append(w.freeD, def&^uint32(longRegBit))
	} else {
		w.freeR = append(w.freeR, def)
	}
}

// longImm materializes a 64-bit immediate through PK64.
func (w *writer) longImm(v ir.Value) string {
	var bits uint64
	if v.Type() == ir.TypeU64 {
		bits = v.U64()
	} else {
		bits = math.Float64bits(v.F64())
	}
	def := w.alloc(true)
	w.op("PK64.U %s.x, {0x%x, 0x%x, 0, 0}", regName(def), uint32(bits), uint32(bits>>32))
	w.scratch = append(w.scratch, def)
	return regName(def) + ".x"
}

func immU32(v uint32) string {
	if v < 16 {
		return strconv.FormatUint(uint64(v), 10)
	}
	return fmt.Sprintf("0x%x", v)
}

func immF32(f float32) string {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		// Odd encodings go through the integer view; registers are typeless.
		return fmt.Sprintf("0x%x", math.Float32bits(f))
	}
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func f16ToF32(bits uint16) float32 {
	sign := uint32(bits>>15) << 31
	exp := uint32(bits >> 10 & 0x1f)
	mant := uint32(bits & 0x3ff)
	switch {
	case exp == 0x1f:
		return math.Float32frombits(sign | 0xff<<23 | mant<<13)
	case exp == 0 && mant == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		return math.Float32frombits(sign | (exp+1+127-15)<<23 | (mant&0x3ff)<<13)
	default:
		return math.Float32frombits(sign | (exp+127-15)<<23 | mant<<13)
	}
}

// precolorPhis gives every phi a persistent register and appends a move to
// each predecessor block.
func (w *writer) precolorPhis() {
	e := ir.NewEmitter(w.p, nil)
	for _, b := range w.p.Blocks {
		for inst := b.Head(); inst != nil && inst.Opcode() == ir.OpPhi; inst = inst.Next() {
			w.persistent[inst] = true
			w.reg(inst)
			for n := 0; n < inst.NumArgs(); n++ {
				e.SetBlock(inst.PhiBlock(n))
				e.PhiMove(ir.MakeInst(inst), inst.Arg(n))
			}
		}
	}
}
