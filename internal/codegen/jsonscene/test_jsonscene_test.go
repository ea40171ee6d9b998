package jsonscene

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneexport/internal/sceneir"
)

type memBundle map[string][]byte

func (m memBundle) WriteFile(name string, content []byte) error {
	m[name] = content
	return nil
}

func doc() *sceneir.SceneDocument {
	mat := sceneir.DefaultMaterial()
	return &sceneir.SceneDocument{
		SchemaVersion:  sceneir.SceneSchemaVersion,
		SceneName:      "Main",
		SceneAssetPath: "Assets/Scenes/Main.unity",
		Entities: []*sceneir.Entity{
			{StableID: "go_b", Name: "B <&>", LocalRotation: sceneir.IdentityQuat, LocalScale: sceneir.V3(1, 1, 1)},
			{
				StableID:       "go_a",
				ParentStableID: "go_b",
				Name:           "A",
				LocalPosition:  sceneir.V3(0.1, 2, -3),
				LocalRotation:  sceneir.QuatFromXYZW(0.1, 0.2, 0.3, 0.9),
				LocalScale:     sceneir.V3(1, 1, 1),
				Model:          &sceneir.Model{Enabled: true, MeshAssetRelativePath: "assets/models/a.obj", Material: mat},
			},
		},
	}
}

func TestRenderShapeAndOrder(t *testing.T) {
	in := doc()
	data, err := Render(in)
	require.NoError(t, err)
	assert.Equal(t, "go_b", in.Entities[0].StableID, "input must not be reordered")

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"schemaVersion", "sceneName", "renderSettings", "skybox", "entities", "warnings"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "null", string(raw["skybox"]))
	assert.Equal(t, "[]", string(raw["warnings"]))

	var entities []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["entities"], &entities))
	require.Len(t, entities, 2)
	assert.Equal(t, `"go_a"`, string(entities[0]["stableId"]))
	assert.Equal(t, `""`, string(entities[1]["parentStableId"]))
	for _, key := range []string{"model", "directionalLight", "pointLight", "spotLight", "camera", "rigidbody",
		"boxCollider", "sphereCollider", "capsuleCollider", "meshCollider", "terrain", "audioSource",
		"reflectionProbe", "customComponents"} {
		assert.Contains(t, entities[0], key)
	}

	text := string(data)
	assert.Contains(t, text, `"name": "B <&>"`)
	assert.NotContains(t, text, "e-", "floats never use exponents")
	assert.True(t, strings.HasSuffix(text, "}\n"))
}

func TestRenderDeterministic(t *testing.T) {
	a, err := Render(doc())
	require.NoError(t, err)
	swapped := doc()
	swapped.Entities[0], swapped.Entities[1] = swapped.Entities[1], swapped.Entities[0]
	b, err := Render(swapped)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestWriteAndDecode(t *testing.T) {
	bundle := memBundle{}
	require.NoError(t, Write(bundle, "assets/data/scenes/Main.scene.json", doc()))

	got, err := Decode(bundle["assets/data/scenes/Main.scene.json"])
	require.NoError(t, err)
	require.Len(t, got.Entities, 2)
	a := got.Entities[0]
	assert.Equal(t, "go_a", a.StableID)
	assert.Equal(t, sceneir.V3(0.1, 2, -3), a.LocalPosition)
	assert.Equal(t, sceneir.QuatFromXYZW(0.1, 0.2, 0.3, 0.9), a.LocalRotation)
	assert.Equal(t, sceneir.DefaultMaterialID, a.Model.Material.StableID)

	_, err = Decode([]byte(`{"sceneName":"x","bogus":1}`))
	assert.Error(t, err)
}
