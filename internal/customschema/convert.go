package customschema

import (
	"fmt"
	"math"
	"strconv"

	"sceneexport/internal/producer"
	"sceneexport/internal/sceneir"
)

// Convert maps a serialized script field onto the closed value variant.
// Anything outside the variant comes back Dropped with a reason.
func Convert(f producer.Field) sceneir.Value {
	switch f.Type {
	case "Boolean":
		if b, ok := f.Value.(bool); ok {
			return sceneir.BoolValue(b)
		}
		if f.Value == nil {
			return sceneir.BoolValue(false)
		}
	case "Integer", "Enum":
		i, ok := toInt(f.Value)
		if !ok {
			break
		}
		if f.Type == "Enum" {
			return sceneir.EnumValue(i)
		}
		return sceneir.IntValue(i)
	case "Float":
		if v, ok := toFloat(f.Value); ok {
			return sceneir.FloatValue(v)
		}
	case "String":
		switch s := f.Value.(type) {
		case string:
			return sceneir.StringValue(s)
		case nil:
			return sceneir.StringValue("")
		}
	case "ObjectReference":
		switch s := f.Value.(type) {
		case string:
			return sceneir.ResourceValue(s)
		case nil:
			return sceneir.ResourceValue("")
		}
	case "Vector2":
		return vector(f.Value, sceneir.KindVector2, 2)
	case "Vector3":
		return vector(f.Value, sceneir.KindVector3, 3)
	case "Vector4":
		return vector(f.Value, sceneir.KindVector4, 4)
	case "Color":
		return vector(f.Value, sceneir.KindColor, 4)
	case "Generic":
		if f.Items != nil || f.Value == nil {
			return array(f.Items)
		}
		return sceneir.Dropped("generic value is not an array")
	default:
		return sceneir.Dropped("unsupported property type " + f.Type)
	}
	return sceneir.Dropped(fmt.Sprintf("%s value %v does not match its type", f.Type, f.Value))
}

// array drops the whole field when any element fails.
func array(items []producer.Field) sceneir.Value {
	elems := make([]sceneir.Value, 0, len(items))
	for i, item := range items {
		v := Convert(item)
		if v.IsDropped() {
			return sceneir.Dropped(fmt.Sprintf("element %d: %s", i, v.Reason))
		}
		elems = append(elems, v)
	}
	return sceneir.ArrayValue(elems)
}

func vector(raw any, kind sceneir.ValueKind, n int) sceneir.Value {
	list, ok := raw.([]any)
	if !ok || len(list) != n {
		return sceneir.Dropped(fmt.Sprintf("expected %d components", n))
	}
	var c [4]float32
	for i, item := range list {
		v, ok := toFloat(item)
		if !ok {
			return sceneir.Dropped(fmt.Sprintf("component %d is not numeric", i))
		}
		c[i] = v
	}
	return sceneir.VectorValue(kind, c)
}

func toFloat(raw any) (float32, bool) {
	switch v := raw.(type) {
	case float64:
		return float32(v), true
	case float32:
		return v, true
	case int:
		return float32(v), true
	case int64:
		return float32(v), true
	case string:
		f, err := strconv.ParseFloat(v, 32)
		return float32(f), err == nil
	}
	return 0, false
}

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		// -2^63 is exact in float64; 2^63 is the first value past MaxInt64.
		if v != math.Trunc(v) || v < math.MinInt64 || v >= -math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		return i, err == nil
	}
	return 0, false
}
