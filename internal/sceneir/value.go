package sceneir

import (
	"strconv"
	"strings"

	"sceneexport/internal/identity"
)

// ValueKind tags the closed set of script field values the exporter can
// carry. KindDropped marks a field that could not be represented.
type ValueKind int

const (
	KindDropped ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindVector2
	KindVector3
	KindVector4
	KindColor
	KindEnum
	KindResource
	KindArray
)

var kindPropertyTypes = map[ValueKind]string{
	KindBool:     "Boolean",
	KindInt:      "Integer",
	KindFloat:    "Float",
	KindString:   "String",
	KindVector2:  "Vector2",
	KindVector3:  "Vector3",
	KindVector4:  "Vector4",
	KindColor:    "Color",
	KindEnum:     "Enum",
	KindResource: "ObjectReference",
	KindArray:    "Generic",
}

// PropertyType is the host serialized-property category name for k.
func (k ValueKind) PropertyType() string {
	if s, ok := kindPropertyTypes[k]; ok {
		return s
	}
	return "Unsupported"
}

func (k ValueKind) String() string { return k.PropertyType() }

// Value is one script field value.
type Value struct {
	Kind   ValueKind
	Bool   bool
	Int    int64
	Float  float32
	Str    string
	Vec    [4]float32
	Elems  []Value
	Reason string
}

func BoolValue(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func IntValue(i int64) Value          { return Value{Kind: KindInt, Int: i} }
func EnumValue(index int64) Value     { return Value{Kind: KindEnum, Int: index} }
func FloatValue(f float32) Value      { return Value{Kind: KindFloat, Float: f} }
func StringValue(s string) Value      { return Value{Kind: KindString, Str: s} }
func ResourceValue(path string) Value { return Value{Kind: KindResource, Str: path} }
func ArrayValue(elems []Value) Value  { return Value{Kind: KindArray, Elems: elems} }

func VectorValue(kind ValueKind, c [4]float32) Value {
	return Value{Kind: kind, Vec: c}
}

// Dropped carries the reason a field could not be converted.
func Dropped(reason string) Value { return Value{Kind: KindDropped, Reason: reason} }

func (v Value) IsDropped() bool { return v.Kind == KindDropped }

// CppType is the C++ member type used in generated component structs.
func (v Value) CppType() string {
	switch v.Kind {
	case KindBool:
		return "bool"
	case KindInt, KindEnum:
		return "int"
	case KindFloat:
		return "float"
	case KindString, KindResource:
		return "std::string"
	case KindVector2:
		return "glm::vec2"
	case KindVector3:
		return "glm::vec3"
	case KindVector4, KindColor:
		return "glm::vec4"
	case KindArray:
		inner := "int"
		if len(v.Elems) > 0 {
			inner = v.Elems[len(v.Elems)-1].CppType()
		}
		return "std::vector<" + inner + ">"
	default:
		return ""
	}
}

// CppLiteral renders v as a C++ initializer.
func (v Value) CppLiteral() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt, KindEnum:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return CppFloat(v.Float)
	case KindString, KindResource:
		return `"` + identity.EscapeCppString(v.Str) + `"`
	case KindVector2:
		return V2(v.Vec[0], v.Vec[1]).Cpp()
	case KindVector3:
		return V3(v.Vec[0], v.Vec[1], v.Vec[2]).Cpp()
	case KindVector4, KindColor:
		return V4(v.Vec[0], v.Vec[1], v.Vec[2], v.Vec[3]).Cpp()
	case KindArray:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.CppLiteral()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}
