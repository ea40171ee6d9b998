package producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapProject map[string]string

func (m mapProject) Exists(p string) bool {
	_, ok := m[p]
	return ok
}

func (m mapProject) ReadFile(p string) ([]byte, error) { return []byte(m[p]), nil }

const mainScene = `
renderSettings:
  ambientLight: [0.2, 0.2, 0.2]
  fogMode: Linear
roots:
  - name: Cube
    persistentId: "12345"
    rotation: [0, 0.7071068, 0, 0.7071068]
    components:
      - meshFilter:
          mesh: {path: Assets/Models/Cube.fbx, name: Cube}
      - meshRenderer:
          shadowCasting: "Off"
          materials:
            - name: Brick
              colors: {_BaseColor: [1, 0.5, 0.5, 1]}
              textures:
                _BaseMap: {texture: {path: Assets/Textures/Brick.tga, name: Brick}}
      - type: Game.Rotator
        monoBehaviour: true
        fields:
          - {name: speed, type: Float, value: 2.5}
    children:
      - name: Child
        active: false
`

func TestDecodeSceneDefaultsAndTraversal(t *testing.T) {
	project := mapProject{"Assets/Scenes/Main.scene.yaml": mainScene}
	src, err := NewYAMLOpener(project).Open("Assets/Scenes/Main.scene.yaml")
	require.NoError(t, err)

	header := src.Header()
	assert.Equal(t, "Main", header.Name)
	assert.Equal(t, "Assets/Scenes/Main.scene.yaml", header.AssetPath)
	assert.Equal(t, "Linear", header.RenderSettings.FogMode)

	var names []string
	var depths []int
	for root := range src.Roots() {
		Walk(root, func(n Node, depth int) bool {
			names = append(names, n.Identity().Name)
			depths = append(depths, depth)
			return true
		})
	}
	assert.Equal(t, []string{"Cube", "Child"}, names)
	assert.Equal(t, []int{0, 1}, depths)

	var cube Node
	for root := range src.Roots() {
		cube = root
	}
	require.NotNil(t, cube)
	assert.Equal(t, "12345", cube.Identity().PersistentID)
	assert.True(t, cube.Header().IsActive())
	assert.Equal(t, [3]float32{1, 1, 1}, cube.Header().LocalScale())

	comps := cube.Components()
	require.Len(t, comps, 3)
	assert.Equal(t, TypeMeshFilter, comps[0].TypeName())
	assert.False(t, comps[1].MeshRenderer.CastsShadows())
	assert.True(t, comps[1].MeshRenderer.ReceivesShadows())
	mat := comps[1].MeshRenderer.Materials[0]
	prop, slot := mat.TextureProperty("_MainTex", "_BaseMap")
	assert.Equal(t, "_BaseMap", prop)
	assert.Equal(t, "Assets/Textures/Brick.tga", slot.Texture.Path)
	assert.Equal(t, "Rotator", comps[2].ShortName())
	assert.Equal(t, "Game", comps[2].Namespace())

	for child := range cube.Children() {
		assert.False(t, child.Header().IsActive())
		assert.Equal(t, [4]float32{0, 0, 0, 1}, child.Header().RotationXYZW())
	}
}

func TestDecodeSceneRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeScene([]byte("roots:\n  - name: A\n    componnets: []\n"), "Assets/A.scene.yaml")
	assert.Error(t, err)
}

func TestBuildScenesSkipsDisabled(t *testing.T) {
	project := mapProject{BuildSettingsPath: `
scenes:
  - path: Assets/Scenes/Main.scene.yaml
  - path: Assets/Scenes/Debug.scene.yaml
    enabled: false
  - path: Assets\Scenes\Level1.scene.yaml
    enabled: true
`}
	scenes, err := BuildScenes(project)
	require.NoError(t, err)
	assert.Equal(t, []string{"Assets/Scenes/Main.scene.yaml", "Assets/Scenes/Level1.scene.yaml"}, scenes)

	none, err := BuildScenes(mapProject{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFixturesOpenCaseInsensitive(t *testing.T) {
	fx := Fixtures{"Assets/Scenes/Main.unity": {RootNodes: []*NodeData{{Ident: Identity{Name: "A"}}}}}
	assert.True(t, fx.Exists("assets/scenes/main.unity"))
	src, err := fx.Open("Assets/Scenes/Main.unity")
	require.NoError(t, err)
	assert.Equal(t, "Main", src.Header().Name)

	_, err = fx.Open("Assets/Missing.unity")
	assert.ErrorIs(t, err, ErrSceneNotFound)
}

func TestMeshResolvePrimitive(t *testing.T) {
	m := &Mesh{Asset: Asset{Name: "Box"}, Primitive: "Cube"}
	g := m.Resolve()
	require.NotNil(t, g)
	assert.Equal(t, 24, g.VertexCount())
	assert.Nil(t, (&Mesh{}).Resolve())
}
