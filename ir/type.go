package ir

import "strings"

// Type classifies a Value. Types are bit flags so the opcode table can
// declare an argument as accepting more than one type; TypeOpaque arguments
// accept anything.
type Type uint32

const (
	TypeVoid      Type = 0
	TypeOpaque    Type = 1 << iota
	TypeReg            // guest register placeholder, pre-SSA only
	TypePred           // guest predicate placeholder, pre-SSA only
	TypeAttribute      // attribute tag operand
	TypePatch          // patch tag operand
	TypeU1
	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeF16
	TypeF32
	TypeF64
	TypeU32x2
	TypeU32x3
	TypeU32x4
	TypeF16x2
	TypeF32x2
	TypeF32x3
	TypeF32x4
	TypeF64x2
)

var typeNames = map[Type]string{
	TypeVoid: "Void", TypeOpaque: "Opaque", TypeReg: "Reg", TypePred: "Pred",
	TypeAttribute: "Attribute", TypePatch: "Patch", TypeU1: "U1", TypeU8: "U8",
	TypeU16: "U16", TypeU32: "U32", TypeU64: "U64", TypeF16: "F16",
	TypeF32: "F32", TypeF64: "F64", TypeU32x2: "U32x2", TypeU32x3: "U32x3",
	TypeU32x4: "U32x4", TypeF16x2: "F16x2", TypeF32x2: "F32x2",
	TypeF32x3: "F32x3", TypeF32x4: "F32x4", TypeF64x2: "F64x2",
}

// String returns the name of the type, joining flag combinations with '|'.
func (t Type) String() string {
	if t == TypeVoid {
		return "Void"
	}
	if name, ok := typeNames[t]; ok {
		return name
	}
	var parts []string
	for bit := Type(1); bit != 0 && bit <= t; bit <<= 1 {
		if t&bit != 0 {
			parts = append(parts, typeNames[bit])
		}
	}
	return strings.Join(parts, "|")
}

// Compatible reports whether a value of type t satisfies a slot declared as
// declared. Opaque on either side matches everything.
func (t Type) Compatible(declared Type) bool {
	if t == declared {
		return true
	}
	if t == TypeOpaque || declared == TypeOpaque {
		return true
	}
	return t&declared != 0
}
