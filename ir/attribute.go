package ir

import "fmt"

// Attribute indexes one 32-bit word of the Maxwell attribute space. Values
// match the hardware attribute memory map in units of four bytes.
type Attribute uint16

const (
	AttributePrimitiveID   Attribute = 24
	AttributeLayer         Attribute = 25
	AttributeViewportIndex Attribute = 26
	AttributePointSize     Attribute = 27
	AttributePositionX     Attribute = 28
	AttributePositionY     Attribute = 29
	AttributePositionZ     Attribute = 30
	AttributePositionW     Attribute = 31
	AttributeGeneric0X     Attribute = 32
	// Generics run to 32 + 32*4 - 1 = 159.
	AttributeFrontDiffuseR  Attribute = 160
	AttributeFrontSpecularR Attribute = 164
	AttributeBackDiffuseR   Attribute = 168
	AttributeBackSpecularR  Attribute = 172
	AttributeClipDistance0  Attribute = 176
	AttributeClipDistance7  Attribute = 183
	AttributeFogCoordinate  Attribute = 184
	AttributeTessCoordU     Attribute = 186
	AttributeTessCoordV     Attribute = 187
	AttributeInstanceID     Attribute = 188
	AttributeVertexID       Attribute = 189
	AttributeFrontFace      Attribute = 190

	NumAttributes = 192
)

// GenericAttribute returns the X component of generic attribute index.
func GenericAttribute(index uint32) Attribute {
	return AttributeGeneric0X + Attribute(index*4)
}

// IsGeneric reports whether a lies in the generic attribute range.
func (a Attribute) IsGeneric() bool {
	return a >= AttributeGeneric0X && a < AttributeFrontDiffuseR
}

// GenericIndex returns which generic vec4 a belongs to. Only valid when
// IsGeneric reports true.
func (a Attribute) GenericIndex() uint32 {
	return uint32(a-AttributeGeneric0X) / 4
}

// Component returns the 0..3 component of a within its vec4.
func (a Attribute) Component() uint32 {
	return uint32(a) % 4
}

// IsLegacy reports whether a is one of the removed fixed function varyings
// that force the GLSL compatibility profile.
func (a Attribute) IsLegacy() bool {
	return (a >= AttributeFrontDiffuseR && a < AttributeClipDistance0) || a == AttributeFogCoordinate
}

func (a Attribute) String() string {
	switch {
	case a.IsGeneric():
		return fmt.Sprintf("generic%d.%c", a.GenericIndex(), "xyzw"[a.Component()])
	case a >= AttributePositionX && a <= AttributePositionW:
		return fmt.Sprintf("position.%c", "xyzw"[a-AttributePositionX])
	case a >= AttributeClipDistance0 && a <= AttributeClipDistance7:
		return fmt.Sprintf("clip_distance%d", a-AttributeClipDistance0)
	}
	switch a {
	case AttributePrimitiveID:
		return "primitive_id"
	case AttributeLayer:
		return "layer"
	case AttributeViewportIndex:
		return "viewport_index"
	case AttributePointSize:
		return "point_size"
	case AttributeFogCoordinate:
		return "fog_coordinate"
	case AttributeTessCoordU:
		return "tess_coord.u"
	case AttributeTessCoordV:
		return "tess_coord.v"
	case AttributeInstanceID:
		return "instance_id"
	case AttributeVertexID:
		return "vertex_id"
	case AttributeFrontFace:
		return "front_face"
	}
	return fmt.Sprintf("attribute%d", uint16(a))
}

// Patch indexes one 32-bit word of tessellation patch memory.
type Patch uint16

// NumPatches bounds per-patch attribute tags.
const NumPatches = 120

// GenericPatch returns the patch tag for word index.
func GenericPatch(index uint32) Patch { return Patch(index) }
