package cpp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneexport/internal/codegen/jsonscene"
	"sceneexport/internal/sceneir"
)

type memBundle map[string][]byte

func (m memBundle) WriteFile(name string, content []byte) error {
	m[name] = append([]byte(nil), content...)
	return nil
}

func sampleDoc() *sceneir.SceneDocument {
	brick := &sceneir.Material{
		StableID:          "mat_brick",
		Name:              "Brick",
		BaseColor:         sceneir.V4(1, 0.5, 0.25, 1),
		EmissionIntensity: 0,
		Shininess:         128,
		SpecularStrength:  0.5,
		AlphaCutoff:       -1,
		ReceiveShadows:    true,
		UVScale:           sceneir.V2(2, 2),
		DiffuseTexture:    "assets/textures/Textures/Brick.png",
	}
	return &sceneir.SceneDocument{
		SchemaVersion: sceneir.SceneSchemaVersion,
		SceneName:     "Main",
		Skybox: &sceneir.Skybox{
			Enabled:          true,
			SourceType:       sceneir.SkyboxCubemap,
			CubemapFacePaths: []string{"e.png", "w.png", "u.png", "d.png", "n.png", "s.png"},
		},
		Entities: []*sceneir.Entity{
			{
				StableID:      "go_cube",
				Name:          "Cube",
				Tag:           "Untagged",
				IsActive:      true,
				LocalPosition: sceneir.V3(1, float32(negZero()), 2.5),
				LocalRotation: sceneir.QuatFromXYZW(0, 0.7071068, 0, 0.7071068),
				LocalScale:    sceneir.V3(1, 1, 1),
				Model: &sceneir.Model{
					Enabled:               true,
					ReceiveShadows:        true,
					MeshAssetRelativePath: "assets/models/generated/cube_mesh.obj",
					Material:              brick,
				},
				CustomComponents: []sceneir.CustomComponent{{
					SourceType:    "Game.Health",
					GeneratedType: "HealthComponent",
					Fields:        []sceneir.CustomField{sceneir.NewCustomField("hp", sceneir.IntValue(5))},
				}},
			},
			{
				StableID:       "go_cam",
				ParentStableID: "go_cube",
				Name:           "Main \"Camera\"",
				Tag:            "MainCamera",
				IsActive:       true,
				LocalRotation:  sceneir.IdentityQuat,
				LocalScale:     sceneir.V3(1, 1, 1),
				Camera:         &sceneir.Camera{Enabled: true, FOV: 60, NearPlane: 0.3, FarPlane: 1000, Aspect: 1.7777778, IsActive: true},
				Model:          &sceneir.Model{Enabled: true, Material: brick},
			},
		},
		Warnings: []string{},
	}
}

func negZero() float64 {
	z := 0.0
	return -z
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "MainScene", ClassName("Main", "Scene"))
	assert.Equal(t, "MyScene", ClassName("MyScene", "Scene"))
	assert.Equal(t, "SceneScene", ClassName("Scene", "Scene"))
	assert.Equal(t, "_1st_levelScene", ClassName("1st level", "Scene"))
	assert.Equal(t, "ExportedScene", ClassName("  ", "Scene"))
}

func TestBuildSourceResourcesAndEntities(t *testing.T) {
	src, err := BuildSource(sampleDoc(), "MainScene")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(src, "#include \"MainScene.hpp\"\n#include \"scene_export_runtime_helper.hpp\"\n"))
	assert.Contains(t, src, "#include \"../components/generated_components.hpp\"\n")
	assert.Contains(t, src, "    entityMap.reserve(2);\n")
	assert.Contains(t, src, "    const uint32_t tex_0 = SceneExportRuntime::LoadTexture(rm, m_exportRoot, \"assets/textures/Textures/Brick.png\");\n")
	assert.Contains(t, src, "    const uint32_t mesh_0 = SceneExportRuntime::LoadFirstMeshFromModel(rm, m_exportRoot, \"assets/models/generated/cube_mesh.obj\");\n")
	assert.Equal(t, 1, strings.Count(src, "Material material_"), "shared material must be emitted once")
	assert.Contains(t, src, "    material_0.baseColor = glm::vec4(1.0f, 0.5f, 0.25f, 1.0f);\n")
	assert.Contains(t, src, "    material_0.SetTiling(glm::vec2(2.0f, 2.0f));\n")
	assert.Contains(t, src, "    material_0.SetAlphaCutout(0.0f, false);\n")
	assert.Contains(t, src, "    material_0.SetDiffuseTexture(tex_0);\n")
	assert.Contains(t, src, "    material_0.SetNormalTexture(ResourceManager::INVALID_ID);\n")
	assert.Contains(t, src, "    material_0Flags |= MaterialFlags::ReceiveShadows;\n")

	// go_cam sorts before go_cube.
	camAt := strings.Index(src, "// ----- BEGIN ENTITY: go_cam | Main \\\"Camera\\\" -----")
	cubeAt := strings.Index(src, "// ----- BEGIN ENTITY: go_cube | Cube -----")
	require.True(t, camAt > 0 && cubeAt > camAt)
	assert.Contains(t, src, "        m_registry.emplace<TagComponent>(entity_0, TagComponent{\"MainCamera\"});\n")
	assert.NotContains(t, src, "TagComponent{\"Untagged\"}")

	assert.Contains(t, src, "        transform.position = glm::vec3(1.0f, 0.0f, 2.5f);\n")
	assert.Contains(t, src, "        transform.rotation = glm::quat(0.7071068f, 0.0f, 0.7071068f, 0.0f);\n")
	assert.Contains(t, src, "        model.meshId = mesh_0;\n")
	assert.Contains(t, src, "        model.meshId = ResourceManager::INVALID_ID;\n")
	assert.Equal(t, 2, strings.Count(src, "        model.materialId = materialId_0;\n"))
	assert.Contains(t, src, "        camera.nearPlane = 0.3f;\n")
	assert.Contains(t, src, "        HealthComponent custom_health_component_1{};\n        custom_health_component_1.hp = 5;\n")
	assert.Contains(t, src, "        auto childIt = entityMap.find(\"go_cam\");\n        auto parentIt = entityMap.find(\"go_cube\");\n")
	assert.Contains(t, src, "        \"e.png\",\n")
	assert.Contains(t, src, "        \"s.png\"\n    };\n")

	assert.Equal(t, 1, strings.Count(src, "ImGui::DragFloat(\"Radius\""))
	assert.Equal(t, 1, strings.Count(src, "ImGui::SliderFloat(\"Inner Angle\""))
	assert.Contains(t, src, "            ImGui::TextUnformatted(\"No spot lights in scene.\");\n    }\n\n    ImGui::End();\n}\n")
	assert.True(t, strings.HasSuffix(src, "    ImGui::End();\n}\n"))
}

func TestBuildSourceDeterministic(t *testing.T) {
	a, err := BuildSource(sampleDoc(), "MainScene")
	require.NoError(t, err)

	doc := sampleDoc()
	doc.Entities[0], doc.Entities[1] = doc.Entities[1], doc.Entities[0]
	b, err := BuildSource(doc, "MainScene")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTerrainStatements(t *testing.T) {
	doc := &sceneir.SceneDocument{SceneName: "T", Entities: []*sceneir.Entity{{
		StableID: "go_t",
		Name:     "Terrain",
		IsStatic: true,
		Terrain: &sceneir.Terrain{
			Enabled:          true,
			Size:             sceneir.V3(100, 20, 100),
			HeightmapTexture: "assets/terrains/generated/hm.png",
			SplatmapTexture:  "assets/terrains/generated/splat.png",
			Layers: []sceneir.TerrainLayer{
				{Smoothness: 0.5, Metallic: 0.4, SpecularColor: sceneir.V3(0.25, 0.5, 0.75), TileSize: sceneir.V2(15, 15), AlbedoTexture: "assets/textures/grass.png"},
				{AlbedoTexture: "assets/textures/rock.png"},
			},
		},
	}}}
	src, err := BuildSource(doc, "TScene")
	require.NoError(t, err)

	assert.Contains(t, src, "TryBuildHeightData(m_exportRoot, \"assets/terrains/generated/hm.png\", heights, hmWidth, hmHeight)")
	assert.Contains(t, src, "MeshFactory::CreateTerrain(terrainMesh, heights, hmWidth, hmHeight, glm::vec3(100.0f, 20.0f, 100.0f));")
	assert.Contains(t, src, "terrainMaterial.specularStrength = 0.5f;")
	assert.Contains(t, src, "terrainMaterial.shininess = 66.0f;")
	assert.Contains(t, src, "terrainMaterial.reflectivity = 0.1f;")
	assert.Contains(t, src, "terrainMaterial.layer1Start = 0.5f;")
	assert.NotContains(t, src, "layer2Start")
	assert.Contains(t, src, "terrainMaterial.layer1DiffuseMap = tex_2;")
	assert.Contains(t, src, "terrainMaterial.weightMap = tex_0;")
	assert.Contains(t, src, "terrainMaterial.uvTilingX = 15.0f;")
	assert.Contains(t, src, "terrainComp.isStatic = true;")
}

func TestWriteSceneAndRuntimeHelper(t *testing.T) {
	bundle := memBundle{}
	files, err := WriteScene(bundle, sampleDoc(), "")
	require.NoError(t, err)
	assert.Equal(t, SceneFiles{
		ClassName:  "MainScene",
		HeaderPath: "game/scenes/MainScene.hpp",
		CppPath:    "game/scenes/MainScene.cpp",
	}, files)

	header := string(bundle[files.HeaderPath])
	assert.Contains(t, header, "class MainScene : public Scene\n{\n  public:\n    explicit MainScene(std::string exportRoot = \".\");\n")
	assert.True(t, strings.HasSuffix(header, "    bool m_showLightingInspector = true;\n};\n"))

	h, c, err := WriteRuntimeHelper(bundle)
	require.NoError(t, err)
	assert.Equal(t, "game/scenes/scene_export_runtime_helper.hpp", h)
	assert.Equal(t, "game/scenes/scene_export_runtime_helper.cpp", c)
	assert.Contains(t, string(bundle[h]), "namespace SceneExportRuntime\n{\n")
	assert.Contains(t, string(bundle[c]), "outHeights[i] = static_cast<float>(pixels[i * 4]) / 255.0f;")
}

// Every material number the JSON backend writes must appear as the same
// literal in the generated constructor.
func TestBackendsAgreeOnMaterialValues(t *testing.T) {
	doc := sampleDoc()
	data, err := jsonscene.Render(doc)
	require.NoError(t, err)
	decoded, err := jsonscene.Decode(data)
	require.NoError(t, err)

	src, err := BuildSource(doc, "MainScene")
	require.NoError(t, err)

	var mat *sceneir.Material
	for _, e := range decoded.Entities {
		if e.Model != nil && e.Model.Material != nil {
			mat = e.Model.Material
			break
		}
	}
	require.NotNil(t, mat)
	assert.Contains(t, src, "material_0.baseColor = "+mat.BaseColor.Cpp()+";")
	assert.Contains(t, src, "material_0.shininess = "+mat.Shininess.Cpp()+";")
	assert.Contains(t, src, "material_0.specularStrength = "+mat.SpecularStrength.Cpp()+";")
	assert.Contains(t, src, "material_0.SetTiling("+mat.UVScale.Cpp()+");")

	for _, e := range decoded.Entities {
		assert.Contains(t, src, "transform.position = "+e.LocalPosition.Cpp()+";")
		assert.Contains(t, src, "transform.rotation = "+e.LocalRotation.Cpp()+";")
	}
}
