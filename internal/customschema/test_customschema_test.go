package customschema

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneexport/internal/producer"
	"sceneexport/internal/sceneir"
)

type warnings []string

func (w *warnings) Warn(msg string) { *w = append(*w, msg) }

type memBundle map[string]string

func (m memBundle) WriteFile(name string, content []byte) error {
	m[name] = string(content)
	return nil
}

func script(typeName string, fields ...producer.Field) *producer.Component {
	return &producer.Component{Type: typeName, MonoBehaviour: true, Fields: fields}
}

func fieldNames(s sceneir.CustomComponentSchema) []string {
	var out []string
	for _, f := range s.Fields {
		out = append(out, f.Name)
	}
	return out
}

func TestConvertVariants(t *testing.T) {
	cases := []struct {
		field producer.Field
		kind  sceneir.ValueKind
		cpp   string
	}{
		{producer.Field{Type: "Boolean", Value: true}, sceneir.KindBool, "true"},
		{producer.Field{Type: "Integer", Value: 7}, sceneir.KindInt, "7"},
		{producer.Field{Type: "Enum", Value: 2}, sceneir.KindEnum, "2"},
		{producer.Field{Type: "Float", Value: 2.5}, sceneir.KindFloat, "2.5f"},
		{producer.Field{Type: "String", Value: `say "hi"`}, sceneir.KindString, `"say \"hi\""`},
		{producer.Field{Type: "ObjectReference", Value: "Assets/A.prefab"}, sceneir.KindResource, `"Assets/A.prefab"`},
		{producer.Field{Type: "Vector3", Value: []any{1, 2.5, -0.0}}, sceneir.KindVector3, "glm::vec3(1.0f, 2.5f, 0.0f)"},
		{producer.Field{Type: "Color", Value: []any{1, 0, 0, 1}}, sceneir.KindColor, "glm::vec4(1.0f, 0.0f, 0.0f, 1.0f)"},
		{producer.Field{Type: "Generic", Items: []producer.Field{{Type: "Integer", Value: 1}, {Type: "Integer", Value: 2}}}, sceneir.KindArray, "{1, 2}"},
	}
	for _, tc := range cases {
		v := Convert(tc.field)
		require.False(t, v.IsDropped(), "%s: %s", tc.field.Type, v.Reason)
		assert.Equal(t, tc.kind, v.Kind)
		assert.Equal(t, tc.cpp, v.CppLiteral())
	}

	assert.True(t, Convert(producer.Field{Type: "AnimationCurve"}).IsDropped())
	assert.True(t, Convert(producer.Field{Type: "Vector2", Value: []any{1}}).IsDropped())
	assert.True(t, Convert(producer.Field{Type: "Integer", Value: 1.5}).IsDropped())
}

func TestIntegerOutsideInt64RangeIsDropped(t *testing.T) {
	for _, raw := range []any{1e19, -1e19, math.Inf(1), math.NaN(), float64(1 << 63)} {
		v := Convert(producer.Field{Type: "Integer", Value: raw})
		assert.True(t, v.IsDropped(), "%v", raw)
		assert.Contains(t, v.Reason, "does not match its type")
	}

	lowest := Convert(producer.Field{Type: "Integer", Value: float64(math.MinInt64)})
	require.False(t, lowest.IsDropped())
	assert.Equal(t, int64(math.MinInt64), lowest.Int)

	large := Convert(producer.Field{Type: "Enum", Value: float64(1 << 53)})
	require.False(t, large.IsDropped())
	assert.Equal(t, int64(1<<53), large.Int)
}

func TestArrayDroppedWhenAnyElementFails(t *testing.T) {
	v := Convert(producer.Field{Type: "Generic", Items: []producer.Field{
		{Type: "Float", Value: 1.0},
		{Type: "Gradient"},
	}})
	assert.True(t, v.IsDropped())

	empty := Convert(producer.Field{Type: "Generic"})
	require.False(t, empty.IsDropped())
	assert.Equal(t, "std::vector<int>", empty.CppType())
}

func TestSchemaMonotonicityIndependentOfOrder(t *testing.T) {
	ab := script("Game.Door",
		producer.Field{Name: "a", Type: "Integer", Value: 1},
		producer.Field{Name: "b", Type: "Float", Value: 1.0})
	ac := script("Game.Door",
		producer.Field{Name: "a", Type: "Integer", Value: 2},
		producer.Field{Name: "c", Type: "Boolean", Value: true})

	first := NewUnifier(nil)
	first.Collect(ab)
	first.Collect(ac)
	second := NewUnifier(nil)
	second.Collect(ac)
	second.Collect(ab)

	s1, s2 := first.Schemas(), second.Schemas()
	require.Len(t, s1, 1)
	require.Len(t, s2, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, fieldNames(s1[0]))
	assert.ElementsMatch(t, fieldNames(s1[0]), fieldNames(s2[0]))
	assert.Equal(t, "UnityDoorComponent", s1[0].GeneratedType)
	assert.Equal(t, "unity_door_component.hpp", s1[0].HeaderFileName)

	// Rendering sorts fields, so both orders produce the same struct body
	// apart from first-seen defaults.
	h1 := BuildHeader(s1[0])
	assert.True(t, strings.Index(h1, " a = ") < strings.Index(h1, " b = "))
	assert.True(t, strings.Index(h1, " b = ") < strings.Index(h1, " c = "))
}

func TestCollectSkipsUnsupportedAndScriptField(t *testing.T) {
	var w warnings
	u := NewUnifier(&w)
	inst, ok := u.Collect(script("Game.Spawner",
		producer.Field{Name: "m_Script", Type: "ObjectReference", Value: "Assets/Spawner.cs"},
		producer.Field{Name: "curve", Type: "AnimationCurve"},
		producer.Field{Name: "count", Type: "Integer", Value: 3},
	))
	require.True(t, ok)
	require.Len(t, inst.Fields, 1)
	assert.Equal(t, "count", inst.Fields[0].Name)
	assert.Equal(t, []string{"Custom component field skipped: Game.Spawner.curve (AnimationCurve)"}, []string(w))

	_, ok = u.Collect(script("Game.Empty"))
	assert.False(t, ok)
	assert.Equal(t, 2, u.Len(), "schema is declared even without fields")
}

func TestTypeMismatchKeepsFirstType(t *testing.T) {
	var w warnings
	u := NewUnifier(&w)
	u.Collect(script("Game.Health", producer.Field{Name: "hp", Type: "Integer", Value: 10}))
	inst, ok := u.Collect(script("Game.Health",
		producer.Field{Name: "hp", Type: "Float", Value: 9.5},
		producer.Field{Name: "regen", Type: "Boolean", Value: true}))
	require.True(t, ok)
	require.Len(t, inst.Fields, 1)
	assert.Equal(t, "regen", inst.Fields[0].Name)

	schema := u.Schemas()[0]
	hp, _ := schema.Field("hp")
	assert.Equal(t, "int", hp.CppType)
	assert.Equal(t, "10", hp.DefaultValueCpp)
	assert.Equal(t, []string{"Custom component field type mismatch: Game.Health.hp (seen float, schema int)"}, []string(w))
}

func TestWriteHeadersAndAggregator(t *testing.T) {
	u := NewUnifier(nil)
	u.Collect(script("Game.Rotator", producer.Field{Name: "speed", Type: "Float", Value: 2.5}))
	u.EnsureAudioStub(nil)

	bundle := memBundle{}
	written, err := u.WriteHeaders(bundle)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"game/components/generated/unity_audio_source_metadata_component.hpp",
		"game/components/generated/unity_rotator_component.hpp",
		"game/components/generated_components.hpp",
	}, written)

	assert.Equal(t, "#pragma once\n#include <glm/glm.hpp>\n#include <string>\n#include <vector>\n\n"+
		"struct UnityRotatorComponent\n{\n    float speed = 2.5f;\n};\n",
		bundle["game/components/generated/unity_rotator_component.hpp"])
	assert.Equal(t, "#pragma once\n"+
		"#include \"generated/unity_audio_source_metadata_component.hpp\"\n"+
		"#include \"generated/unity_rotator_component.hpp\"\n",
		bundle["game/components/generated_components.hpp"])
}

func TestEnsureAudioStubInstance(t *testing.T) {
	u := NewUnifier(nil)
	inst, ok := u.EnsureAudioStub(&sceneir.AudioSource{ClipPath: "assets/audio/a.wav", Volume: 0.5, Pitch: 1, Loop: true})
	require.True(t, ok)
	assert.Equal(t, AudioGeneratedType, inst.GeneratedType)
	assert.Equal(t, `"assets/audio/a.wav"`, inst.Fields[0].ValueCpp)
	assert.Equal(t, "0.5f", inst.Fields[1].ValueCpp)
	assert.Equal(t, "true", inst.Fields[3].ValueCpp)
	require.Len(t, u.Schemas(), 1)
	assert.Len(t, u.Schemas()[0].Fields, 6)
}
