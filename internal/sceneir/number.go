package sceneir

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// maxFractionDigits is the decimal precision shared by every emitted float.
const maxFractionDigits = 7

// FormatDecimal renders v in fixed notation with at most seven fractional
// digits and at least one. NaN and infinities become 0.0, and negative zero
// (including values that round to it) is written without a sign.
func FormatDecimal(v float32) string {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0.0"
	}
	s := strconv.FormatFloat(f, 'f', maxFractionDigits, 32)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	if s == "-0.0" {
		return "0.0"
	}
	return s
}

// CppFloat renders v as a C++ float literal using the shared policy.
func CppFloat(v float32) string {
	return FormatDecimal(v) + "f"
}

// Float is a float32 whose JSON form follows FormatDecimal.
type Float float32

func (f Float) MarshalJSON() ([]byte, error) {
	return []byte(FormatDecimal(float32(f))), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 32)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

func (f Float) Cpp() string { return CppFloat(float32(f)) }

type Vec2 [2]Float

type Vec3 [3]Float

type Vec4 [4]Float

func V2(x, y float32) Vec2       { return Vec2{Float(x), Float(y)} }
func V3(x, y, z float32) Vec3    { return Vec3{Float(x), Float(y), Float(z)} }
func V4(x, y, z, w float32) Vec4 { return Vec4{Float(x), Float(y), Float(z), Float(w)} }

func (v Vec2) Cpp() string {
	return "glm::vec2(" + v[0].Cpp() + ", " + v[1].Cpp() + ")"
}

func (v Vec3) Cpp() string {
	return "glm::vec3(" + v[0].Cpp() + ", " + v[1].Cpp() + ", " + v[2].Cpp() + ")"
}

func (v Vec4) Cpp() string {
	return "glm::vec4(" + v[0].Cpp() + ", " + v[1].Cpp() + ", " + v[2].Cpp() + ", " + v[3].Cpp() + ")"
}

// RGB drops the alpha channel.
func (v Vec4) RGB() Vec3 { return Vec3{v[0], v[1], v[2]} }
