package ir

import (
	"fmt"
	"math"
)

// Value is an immediate, a guest context tag, or a reference to the
// instruction that computes it. The zero Value is Void.
type Value struct {
	typ  Type
	inst *Inst
	imm  uint64
}

// Immediate and tag constructors.

func MakeU1(v bool) Value {
	var imm uint64
	if v {
		imm = 1
	}
	return Value{typ: TypeU1, imm: imm}
}

func MakeU8(v uint8) Value   { return Value{typ: TypeU8, imm: uint64(v)} }
func MakeU16(v uint16) Value { return Value{typ: TypeU16, imm: uint64(v)} }
func MakeU32(v uint32) Value { return Value{typ: TypeU32, imm: uint64(v)} }
func MakeU64(v uint64) Value { return Value{typ: TypeU64, imm: v} }

func MakeF32(v float32) Value {
	return Value{typ: TypeF32, imm: uint64(math.Float32bits(v))}
}

func MakeF64(v float64) Value {
	return Value{typ: TypeF64, imm: math.Float64bits(v)}
}

// MakeF16 stores the raw half precision bit pattern.
func MakeF16(bits uint16) Value { return Value{typ: TypeF16, imm: uint64(bits)} }

func MakeReg(r Reg) Value            { return Value{typ: TypeReg, imm: uint64(r)} }
func MakePred(p Pred) Value          { return Value{typ: TypePred, imm: uint64(p)} }
func MakeAttribute(a Attribute) Value { return Value{typ: TypeAttribute, imm: uint64(a)} }
func MakePatch(p Patch) Value        { return Value{typ: TypePatch, imm: uint64(p)} }

// MakeInst references the result of an instruction.
func MakeInst(inst *Inst) Value { return Value{inst: inst} }

// IsEmpty reports whether v is the void value.
func (v Value) IsEmpty() bool { return v.typ == TypeVoid && v.inst == nil }

// IsImmediate reports whether v carries an inline constant, following
// Identity chains.
func (v Value) IsImmediate() bool {
	r := v.Resolve()
	return r.inst == nil && r.typ != TypeVoid && r.typ&(TypeReg|TypePred|TypeAttribute|TypePatch) == 0
}

// IsInst reports whether v references an instruction (without resolving).
func (v Value) IsInst() bool { return v.inst != nil }

// Type returns the type of the value. Instruction references take the
// opcode's declared result type.
func (v Value) Type() Type {
	if v.inst != nil {
		return v.inst.ResultType()
	}
	return v.typ
}

// Inst returns the defining instruction, or nil for immediates and tags.
func (v Value) Inst() *Inst { return v.inst }

// InstRecursive returns the defining instruction after following Identity
// chains, or nil when the chain resolves to an immediate.
func (v Value) InstRecursive() *Inst { return v.Resolve().Inst() }

// Resolve follows Identity instructions until reaching an immediate or a
// concrete defining instruction.
func (v Value) Resolve() Value {
	for v.inst != nil && v.inst.op == OpIdentity {
		v = v.inst.Arg(0)
	}
	return v
}

// Immediate accessors. They resolve Identity chains first and panic when
// the value is not an immediate of a compatible width.

func (v Value) U1() bool {
	r := v.Resolve()
	r.checkImm(TypeU1)
	return r.imm != 0
}

func (v Value) U8() uint8   { r := v.Resolve(); r.checkImm(TypeU8); return uint8(r.imm) }
func (v Value) U16() uint16 { r := v.Resolve(); r.checkImm(TypeU16); return uint16(r.imm) }

func (v Value) U32() uint32 {
	r := v.Resolve()
	r.checkImm(TypeU32)
	return uint32(r.imm)
}

func (v Value) U64() uint64 {
	r := v.Resolve()
	r.checkImm(TypeU64)
	return r.imm
}

func (v Value) F32() float32 {
	r := v.Resolve()
	r.checkImm(TypeF32)
	return math.Float32frombits(uint32(r.imm))
}

func (v Value) F64() float64 {
	r := v.Resolve()
	r.checkImm(TypeF64)
	return math.Float64frombits(r.imm)
}

// F16Bits returns the raw half precision pattern of an F16 immediate.
func (v Value) F16Bits() uint16 { r := v.Resolve(); r.checkImm(TypeF16); return uint16(r.imm) }

func (v Value) Reg() Reg             { v.checkImm(TypeReg); return Reg(v.imm) }
func (v Value) Pred() Pred           { v.checkImm(TypePred); return Pred(v.imm) }
func (v Value) Attribute() Attribute { v.checkImm(TypeAttribute); return Attribute(v.imm) }
func (v Value) Patch() Patch         { v.checkImm(TypePatch); return Patch(v.imm) }

func (v Value) checkImm(want Type) {
	if v.inst != nil || v.typ != want {
		panic(fmt.Sprintf("ir: expected %v immediate, have %v", want, v.Type()))
	}
}

// Same reports identity: same instruction reference or same immediate bits
// and type. It does not resolve Identity chains.
func (v Value) Same(o Value) bool {
	return v.inst == o.inst && v.typ == o.typ && v.imm == o.imm
}

func (v Value) String() string {
	switch {
	case v.inst != nil:
		return fmt.Sprintf("%%%p", v.inst)
	case v.typ == TypeVoid:
		return "void"
	case v.typ == TypeReg:
		return Reg(v.imm).String()
	case v.typ == TypePred:
		return Pred(v.imm).String()
	case v.typ == TypeAttribute:
		return Attribute(v.imm).String()
	case v.typ == TypePatch:
		return fmt.Sprintf("patch%d", v.imm)
	case v.typ == TypeF32:
		return fmt.Sprintf("%vf", math.Float32frombits(uint32(v.imm)))
	case v.typ == TypeF64:
		return fmt.Sprintf("%vlf", math.Float64frombits(v.imm))
	default:
		return fmt.Sprintf("%#x", v.imm)
	}
}
