// Package cpp is the procedural backend: it renders a scene document as a
// C++ scene class whose Initialize rebuilds the same registry state the JSON
// loader would produce.
package cpp

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"sceneexport/internal/codegen"
	"sceneexport/internal/identity"
	"sceneexport/internal/sceneir"
)

const (
	ScenesDir = "game/scenes"

	// InvalidID is the sentinel for a resource that is absent at runtime.
	InvalidID = "ResourceManager::INVALID_ID"
)

// BundleWriter persists bundle-relative files.
type BundleWriter interface {
	WriteFile(name string, content []byte) error
}

var (
	//go:embed templates/scene.hpp.tmpl
	sceneHeaderText string

	//go:embed templates/scene_methods.cpp.tmpl
	sceneMethodsText string

	sceneHeaderTmpl  = template.Must(template.New("scene.hpp").Parse(sceneHeaderText))
	sceneMethodsTmpl = template.Must(template.New("scene_methods.cpp").Parse(sceneMethodsText))
)

type lightPanel struct {
	Kind      string
	Title     string
	Component string
	Label     string
	Empty     string
}

var lightPanels = []lightPanel{
	{Kind: "directional", Title: "Directional Lights", Component: "DirectionalLightComponent", Label: "Directional", Empty: "No directional lights in scene."},
	{Kind: "point", Title: "Point Lights", Component: "PointLightComponent", Label: "Point", Empty: "No point lights in scene."},
	{Kind: "spot", Title: "Spot Lights", Component: "SpotLightComponent", Label: "Spot", Empty: "No spot lights in scene."},
}

// ClassName derives the scene class from the scene name. The result always
// ends in "Scene" and never equals baseClass.
func ClassName(sceneName, baseClass string) string {
	name := identity.SanitizeIdentifier(sceneName, "Exported")
	if !strings.HasSuffix(name, "Scene") || name == baseClass {
		name += "Scene"
	}
	return name
}

// SceneFiles describes the translation unit written for one scene.
type SceneFiles struct {
	ClassName  string
	HeaderPath string
	CppPath    string
}

// WriteScene renders doc and writes game/scenes/<Class>.hpp and .cpp.
func WriteScene(bundle BundleWriter, doc *sceneir.SceneDocument, baseClass string) (SceneFiles, error) {
	if bundle == nil {
		return SceneFiles{}, fmt.Errorf("bundle is nil")
	}
	if doc == nil {
		return SceneFiles{}, fmt.Errorf("scene document is nil")
	}
	if strings.TrimSpace(baseClass) == "" {
		baseClass = "Scene"
	}
	className := ClassName(doc.SceneName, baseClass)
	header, err := BuildHeader(className, baseClass)
	if err != nil {
		return SceneFiles{}, err
	}
	source, err := BuildSource(doc, className)
	if err != nil {
		return SceneFiles{}, err
	}

	files := SceneFiles{
		ClassName:  className,
		HeaderPath: ScenesDir + "/" + className + ".hpp",
		CppPath:    ScenesDir + "/" + className + ".cpp",
	}
	if err := bundle.WriteFile(files.HeaderPath, []byte(header)); err != nil {
		return SceneFiles{}, fmt.Errorf("write %s: %w", files.HeaderPath, err)
	}
	if err := bundle.WriteFile(files.CppPath, []byte(source)); err != nil {
		return SceneFiles{}, fmt.Errorf("write %s: %w", files.CppPath, err)
	}
	return files, nil
}

func BuildHeader(className, baseClass string) (string, error) {
	var buf bytes.Buffer
	err := sceneHeaderTmpl.Execute(&buf, struct{ ClassName, BaseClass string }{className, baseClass})
	if err != nil {
		return "", fmt.Errorf("render scene header: %w", err)
	}
	return buf.String(), nil
}

// BuildSource renders the scene class implementation.
func BuildSource(doc *sceneir.SceneDocument, className string) (string, error) {
	b := &sceneBackend{className: className, buf: codegen.NewBuffer("    ")}
	if _, err := codegen.Emit(doc, b); err != nil {
		return "", err
	}
	return b.out, nil
}

func textureVar(i int) string    { return "tex_" + strconv.Itoa(i) }
func meshVar(i int) string       { return "mesh_" + strconv.Itoa(i) }
func materialVar(i int) string   { return "material_" + strconv.Itoa(i) }
func materialIDVar(i int) string { return "materialId_" + strconv.Itoa(i) }
func entityVar(i int) string     { return "entity_" + strconv.Itoa(i) }

func quote(s string) string { return "\"" + identity.EscapeCppString(s) + "\"" }

func boolLit(v bool) string { return strconv.FormatBool(v) }

type sceneBackend struct {
	className string
	buf       *codegen.Buffer
	doc       *sceneir.SceneDocument
	plan      *codegen.Plan
	out       string
}

func (s *sceneBackend) texture(path string) string {
	if i, ok := s.plan.TextureIndex(path); ok {
		return textureVar(i)
	}
	return InvalidID
}

func (s *sceneBackend) mesh(path string) string {
	if i, ok := s.plan.MeshIndex(path); ok {
		return meshVar(i)
	}
	return InvalidID
}

func (s *sceneBackend) Preamble(doc *sceneir.SceneDocument, plan *codegen.Plan) error {
	s.doc, s.plan = doc, plan
	b := s.buf
	b.Line("#include \"" + s.className + ".hpp\"")
	b.Line("#include \"" + RuntimeHelperHeader + "\"")
	for _, inc := range []string{
		"assets/mesh_factory.hpp",
		"assets/resource_manager.hpp",
		"SDL3/SDL.h",
		"graphics/material.hpp",
		"graphics/terrain_material.hpp",
		"imgui.h",
		"scene/components/audio_components.hpp",
		"scene/components/components.hpp",
		"scene/components/lighting_components.hpp",
		"scene/components/mesh_components.hpp",
		"scene/components/physics_components.hpp",
		"scene/hierarchy.hpp",
	} {
		b.Line("#include <" + inc + ">")
	}
	if plan.HasCustomComponents() {
		b.Line("#include \"../components/generated_components.hpp\"")
	}
	for _, inc := range []string{"array", "cmath", "unordered_map", "utility", "vector"} {
		b.Line("#include <" + inc + ">")
	}
	b.Blank()
	b.Linef("%s::%s(std::string exportRoot) : m_exportRoot(std::move(exportRoot)) {}", s.className, s.className)
	b.Blank()
	b.Open("void " + s.className + "::Initialize()")
	b.Line("auto& rm = ResourceManager::GetInstance();")
	b.Line("std::unordered_map<std::string, entt::entity> entityMap;")
	b.Linef("entityMap.reserve(%d);", len(plan.Entities))
	b.Blank()
	return nil
}

func (s *sceneBackend) SharedResources(plan *codegen.Plan) error {
	b := s.buf
	for _, t := range plan.Textures {
		b.Linef("const uint32_t %s = SceneExportRuntime::LoadTexture(rm, m_exportRoot, %s);", textureVar(t.Index), quote(t.Path))
	}
	if len(plan.Textures) > 0 {
		b.Blank()
	}
	for _, m := range plan.Meshes {
		b.Linef("const uint32_t %s = SceneExportRuntime::LoadFirstMeshFromModel(rm, m_exportRoot, %s);", meshVar(m.Index), quote(m.Path))
	}
	if len(plan.Meshes) > 0 {
		b.Blank()
	}
	for _, slot := range plan.Materials {
		s.material(slot)
	}
	s.renderSettings()
	s.skybox()
	return nil
}

func (s *sceneBackend) material(slot codegen.MaterialSlot) {
	b := s.buf
	mat := slot.Material
	v := materialVar(slot.Index)
	b.Linef("Material %s{};", v)
	b.Linef("%s.baseColor = %s;", v, mat.BaseColor.Cpp())
	b.Linef("%s.emissiveColor = %s;", v, mat.EmissionColor.Cpp())
	b.Linef("%s.emissiveColor.w = %s;", v, mat.EmissionIntensity.Cpp())
	b.Linef("%s.shininess = %s;", v, mat.Shininess.Cpp())
	b.Linef("%s.reflectivity = %s;", v, mat.Reflectivity.Cpp())
	b.Linef("%s.specularStrength = %s;", v, mat.SpecularStrength.Cpp())
	b.Linef("%s.SetTiling(%s);", v, mat.UVScale.Cpp())
	b.Linef("uint32_t %sFlags = 0;", v)
	if mat.ReceiveShadows {
		b.Linef("%sFlags |= MaterialFlags::ReceiveShadows;", v)
	}
	b.Linef("%s.SetDoubleSided(%s);", v, boolLit(mat.DoubleSided))
	b.Linef("%s.SetTransparent(%s);", v, boolLit(mat.Transparent))
	if mat.AlphaCutoutEnabled() {
		b.Linef("%s.SetAlphaCutout(%s, true);", v, mat.AlphaCutoff.Cpp())
	} else {
		b.Linef("%s.SetAlphaCutout(0.0f, false);", v)
	}
	b.Linef("%s.SetDiffuseTexture(%s);", v, s.texture(mat.DiffuseTexture))
	b.Linef("%s.SetNormalTexture(%s);", v, s.texture(mat.NormalTexture))
	b.Linef("%s.SetSpecularTexture(%s);", v, s.texture(mat.SpecularTexture))
	b.Linef("%s.SetEmissiveTexture(%s);", v, s.texture(mat.EmissiveTexture))
	b.Linef("%s.featureFlags |= %sFlags;", v, v)
	b.Linef("const uint32_t %s = rm.RegisterMaterial(std::move(%s));", materialIDVar(slot.Index), v)
	b.Blank()
}

func (s *sceneBackend) renderSettings() {
	b := s.buf
	rs := s.doc.RenderSettings
	b.Line("// RenderSettings (the runtime does not map these yet)")
	b.Line("// AmbientLight: " + rs.AmbientLight.Cpp())
	b.Line("// AmbientIntensity: " + rs.AmbientIntensity.Cpp())
	b.Line("// FogEnabled: " + boolLit(rs.FogEnabled))
	b.Line("// FogColor: " + rs.FogColor.Cpp())
	b.Line("// FogDensity: " + rs.FogDensity.Cpp())
	b.Blank()
}

func (s *sceneBackend) skybox() {
	sky := s.doc.Skybox
	if sky == nil || !sky.Enabled || !sky.HasAllFaces() {
		return
	}
	b := s.buf
	b.Line("const std::array<std::string, 6> skyboxFaces = {")
	b.Indent()
	for i, face := range sky.CubemapFacePaths {
		sep := ","
		if i == len(sky.CubemapFacePaths)-1 {
			sep = ""
		}
		b.Line(quote(face) + sep)
	}
	b.Dedent()
	b.Line("};")
	b.Line("const uint32_t skyboxCubemapId = SceneExportRuntime::LoadCubemap(rm, m_exportRoot, skyboxFaces);")
	b.Open("if (skyboxCubemapId != " + InvalidID + ")")
	b.Line("const entt::entity skyboxEntity = m_registry.create();")
	b.Line("m_registry.emplace<NameComponent>(skyboxEntity, NameComponent{\"Skybox\"});")
	b.Line("SkyboxComponent skybox{};")
	b.Line("skybox.cubemapTextureId = skyboxCubemapId;")
	b.Line("skybox.enabled = true;")
	b.Line("m_registry.emplace<SkyboxComponent>(skyboxEntity, skybox);")
	b.Close("")
	b.Blank()
}

func (s *sceneBackend) Entity(index int, e *sceneir.Entity) error {
	b := s.buf
	v := entityVar(index)
	id := identity.EscapeCppString(e.StableID)

	b.Linef("// ----- BEGIN ENTITY: %s | %s -----", id, identity.EscapeCppString(e.Name))
	b.Linef("const entt::entity %s = m_registry.create();", v)
	b.Linef("entityMap[%s] = %s;", quote(e.StableID), v)
	b.Open("")
	b.Linef("m_registry.emplace<NameComponent>(%s, NameComponent{%s});", v, quote(e.Name))
	if tag := strings.TrimSpace(e.Tag); tag != "" && tag != "Untagged" {
		b.Linef("m_registry.emplace<TagComponent>(%s, TagComponent{%s});", v, quote(e.Tag))
	}
	b.Line("TransformComponent transform{};")
	b.Linef("transform.position = %s;", e.LocalPosition.Cpp())
	b.Linef("transform.rotation = %s;", e.LocalRotation.Cpp())
	b.Linef("transform.scale = %s;", e.LocalScale.Cpp())
	b.Linef("m_registry.emplace<TransformComponent>(%s, transform);", v)

	s.model(v, e)
	s.lights(v, e)
	if p := e.ReflectionProbe; p != nil {
		b.Line("ReflectionProbeComponent probe{};")
		b.Linef("probe.cubemapTextureId = %s;", s.texture(p.CubemapPath))
		b.Linef("m_registry.emplace<ReflectionProbeComponent>(%s, probe);", v)
	}
	if c := e.Camera; c != nil {
		b.Line("CameraComponent camera{};")
		b.Linef("camera.fov = %s;", c.FOV.Cpp())
		b.Linef("camera.nearPlane = %s;", c.NearPlane.Cpp())
		b.Linef("camera.farPlane = %s;", c.FarPlane.Cpp())
		b.Linef("camera.aspectRatio = %s;", c.Aspect.Cpp())
		b.Linef("camera.isActive = %s;", boolLit(c.IsActive))
		b.Linef("m_registry.emplace<CameraComponent>(%s, camera);", v)
	}
	if r := e.Rigidbody; r != nil {
		b.Line("RigidbodyComponent rigidbody{};")
		b.Linef("rigidbody.isKinematic = %s;", boolLit(r.IsKinematic))
		b.Linef("rigidbody.useGravity = %s;", boolLit(r.UseGravity))
		b.Linef("rigidbody.maxLinearVelocity = %s;", r.MaxLinearVelocity.Cpp())
		b.Linef("rigidbody.maxAngularVelocity = %s;", r.MaxAngularVelocity.Cpp())
		b.Linef("rigidbody.centerOfMass = %s;", r.CenterOfMass.Cpp())
		b.Linef("rigidbody.linearVelocity = %s;", r.LinearVelocity.Cpp())
		b.Linef("rigidbody.angularVelocity = %s;", r.AngularVelocity.Cpp())
		b.Linef("m_registry.emplace<RigidbodyComponent>(%s, rigidbody);", v)
	}
	s.colliders(v, e)
	if e.Terrain != nil {
		s.terrain(v, e)
	}
	if a := e.AudioSource; a != nil {
		b.Line("AudioSourceComponent audio{};")
		b.Linef("audio.audioId = %s;", InvalidID)
		b.Linef("audio.volume = %s;", a.Volume.Cpp())
		b.Linef("audio.pitch = %s;", a.Pitch.Cpp())
		b.Linef("audio.loop = %s;", boolLit(a.Loop))
		b.Linef("m_registry.emplace<AudioSourceComponent>(%s, audio);", v)
	}
	s.custom(index, v, e)
	b.Close("")
	b.Linef("// ----- END ENTITY: %s -----", id)
	b.Blank()
	return nil
}

func (s *sceneBackend) model(v string, e *sceneir.Entity) {
	m := e.Model
	if m == nil {
		return
	}
	b := s.buf
	b.Line("ModelComponent model{};")
	b.Linef("model.meshId = %s;", s.mesh(m.MeshAssetRelativePath))
	if i, ok := s.plan.MaterialIndex(m.Material); ok {
		b.Linef("model.materialId = %s;", materialIDVar(i))
	} else {
		b.Linef("model.materialId = %s;", InvalidID)
	}
	b.Linef("model.visible = %s;", boolLit(m.Enabled && e.IsActive))
	b.Linef("model.castShadows = %s;", boolLit(m.CastShadows))
	b.Linef("model.receiveShadows = %s;", boolLit(m.ReceiveShadows))
	b.Linef("model.isStatic = %s;", boolLit(m.IsStatic))
	b.Linef("m_registry.emplace<ModelComponent>(%s, model);", v)
}

func (s *sceneBackend) lights(v string, e *sceneir.Entity) {
	b := s.buf
	if l := e.DirectionalLight; l != nil {
		b.Line("DirectionalLightComponent directionalLight{};")
		b.Linef("directionalLight.color = %s;", l.Color.Cpp())
		b.Linef("directionalLight.intensity = %s;", l.Intensity.Cpp())
		b.Linef("directionalLight.castShadows = %s;", boolLit(l.CastShadows))
		b.Linef("directionalLight.enabled = %s;", boolLit(l.Enabled))
		b.Linef("m_registry.emplace<DirectionalLightComponent>(%s, directionalLight);", v)
	}
	if l := e.PointLight; l != nil {
		b.Line("PointLightComponent pointLight{};")
		b.Linef("pointLight.color = %s;", l.Color.Cpp())
		b.Linef("pointLight.intensity = %s;", l.Intensity.Cpp())
		b.Linef("pointLight.radius = %s;", l.Radius.Cpp())
		b.Linef("pointLight.castShadows = %s;", boolLit(l.CastShadows))
		b.Linef("pointLight.enabled = %s;", boolLit(l.Enabled))
		b.Linef("m_registry.emplace<PointLightComponent>(%s, pointLight);", v)
	}
	if l := e.SpotLight; l != nil {
		b.Line("SpotLightComponent spotLight{};")
		b.Linef("spotLight.color = %s;", l.Color.Cpp())
		b.Linef("spotLight.intensity = %s;", l.Intensity.Cpp())
		b.Linef("spotLight.range = %s;", l.Range.Cpp())
		b.Linef("spotLight.innerConeAngle = glm::radians(%s);", l.InnerConeAngleDegrees.Cpp())
		b.Linef("spotLight.outerConeAngle = glm::radians(%s);", l.OuterConeAngleDegrees.Cpp())
		b.Linef("spotLight.castShadows = %s;", boolLit(l.CastShadows))
		b.Linef("spotLight.enabled = %s;", boolLit(l.Enabled))
		b.Linef("m_registry.emplace<SpotLightComponent>(%s, spotLight);", v)
	}
}

func (s *sceneBackend) colliders(v string, e *sceneir.Entity) {
	b := s.buf
	if c := e.BoxCollider; c != nil {
		b.Line("BoxColliderComponent boxCollider{};")
		b.Linef("boxCollider.size = %s;", c.Size.Cpp())
		b.Linef("boxCollider.offset = %s;", c.Offset.Cpp())
		b.Linef("boxCollider.isTrigger = %s;", boolLit(c.IsTrigger))
		b.Linef("m_registry.emplace<BoxColliderComponent>(%s, boxCollider);", v)
	}
	if c := e.SphereCollider; c != nil {
		b.Line("SphereColliderComponent sphereCollider{};")
		b.Linef("sphereCollider.radius = %s;", c.Radius.Cpp())
		b.Linef("sphereCollider.offset = %s;", c.Offset.Cpp())
		b.Linef("sphereCollider.isTrigger = %s;", boolLit(c.IsTrigger))
		b.Linef("m_registry.emplace<SphereColliderComponent>(%s, sphereCollider);", v)
	}
	if c := e.CapsuleCollider; c != nil {
		b.Line("CapsuleColliderComponent capsuleCollider{};")
		b.Linef("capsuleCollider.radius = %s;", c.Radius.Cpp())
		b.Linef("capsuleCollider.height = %s;", c.Height.Cpp())
		b.Linef("capsuleCollider.offset = %s;", c.Offset.Cpp())
		b.Linef("capsuleCollider.isTrigger = %s;", boolLit(c.IsTrigger))
		b.Linef("m_registry.emplace<CapsuleColliderComponent>(%s, capsuleCollider);", v)
	}
	if c := e.MeshCollider; c != nil {
		b.Line("MeshColliderComponent meshCollider{};")
		b.Linef("meshCollider.meshId = %s;", s.mesh(c.MeshAssetRelativePath))
		b.Linef("meshCollider.scale = %s;", c.Scale.Cpp())
		b.Linef("meshCollider.offset = %s;", c.Offset.Cpp())
		b.Linef("meshCollider.isTrigger = %s;", boolLit(c.IsTrigger))
		b.Linef("m_registry.emplace<MeshColliderComponent>(%s, meshCollider);", v)
	}
}

// terrainShading is the terrain material derived from the first layer. The
// JSON loader applies the same formulas at load time.
type terrainShading struct {
	SpecularStrength sceneir.Float
	Shininess        sceneir.Float
	Reflectivity     sceneir.Float
	LayerStarts      []sceneir.Float
}

func shadingFor(t *sceneir.Terrain) terrainShading {
	var out terrainShading
	if t == nil || len(t.Layers) == 0 {
		return out
	}
	used := len(t.Layers)
	if used > sceneir.MaxTerrainLayers {
		used = sceneir.MaxTerrainLayers
	}
	first := t.Layers[0]
	spec := first.SpecularColor
	out.SpecularStrength = (spec[0] + spec[1] + spec[2]) / 3
	out.Shininess = 4 + max(0, first.Smoothness)*124
	out.Reflectivity = max(0, first.Metallic) * 0.25
	for i := 1; i < used; i++ {
		out.LayerStarts = append(out.LayerStarts, sceneir.Float(float32(i)/float32(used)))
	}
	return out
}

func (s *sceneBackend) terrain(v string, e *sceneir.Entity) {
	b := s.buf
	t := e.Terrain
	b.Open("")
	b.Line("std::vector<float> heights;")
	b.Line("int hmWidth = 0;")
	b.Line("int hmHeight = 0;")
	b.Open(fmt.Sprintf("if (SceneExportRuntime::TryBuildHeightData(m_exportRoot, %s, heights, hmWidth, hmHeight))", quote(t.HeightmapTexture)))
	b.Line("Mesh terrainMesh{};")
	b.Linef("MeshFactory::CreateTerrain(terrainMesh, heights, hmWidth, hmHeight, %s);", t.Size.Cpp())
	b.Line("TerrainMaterial terrainMaterial{};")
	b.Line("terrainMaterial.featureFlags = TerrainMaterialFlags::ReceiveShadows;")

	if len(t.Layers) > 0 {
		shading := shadingFor(t)
		b.Linef("terrainMaterial.specularStrength = %s;", shading.SpecularStrength.Cpp())
		b.Linef("terrainMaterial.shininess = %s;", shading.Shininess.Cpp())
		b.Linef("terrainMaterial.reflectivity = %s;", shading.Reflectivity.Cpp())
		for i, start := range shading.LayerStarts {
			b.Linef("terrainMaterial.layer%dStart = %s;", i+1, start.Cpp())
		}
	}
	for l, layer := range t.Layers {
		if l >= sceneir.MaxTerrainLayers {
			break
		}
		albedo := s.texture(layer.AlbedoTexture)
		normal := s.texture(layer.NormalTexture)
		b.Open("if (" + albedo + " != " + InvalidID + ")")
		b.Linef("terrainMaterial.layer%dDiffuseMap = %s;", l, albedo)
		b.Linef("terrainMaterial.featureFlags |= TerrainMaterialFlags::UseLayer%dDiffuseMap;", l)
		b.Close("")
		b.Open("if (" + normal + " != " + InvalidID + ")")
		b.Linef("terrainMaterial.layer%dNormalMap = %s;", l, normal)
		b.Linef("terrainMaterial.featureFlags |= TerrainMaterialFlags::UseLayer%dNormalMap;", l)
		b.Close("")
		if l == 0 {
			b.Linef("terrainMaterial.uvTilingX = %s;", layer.TileSize[0].Cpp())
			b.Linef("terrainMaterial.uvTilingY = %s;", layer.TileSize[1].Cpp())
		}
	}

	weight := s.texture(t.BlendMap())
	b.Open("if (" + weight + " != " + InvalidID + ")")
	b.Linef("terrainMaterial.weightMap = %s;", weight)
	b.Line("terrainMaterial.featureFlags |= TerrainMaterialFlags::UseWeightMap;")
	b.Close("")
	b.Line("TerrainComponent terrainComp{};")
	b.Line("terrainComp.meshId = rm.RegisterMesh(std::move(terrainMesh));")
	b.Line("terrainComp.terrainMaterialId = rm.RegisterTerrainMaterial(std::move(terrainMaterial));")
	b.Linef("terrainComp.visible = %s;", boolLit(t.Enabled))
	b.Line("terrainComp.castShadows = true;")
	b.Line("terrainComp.receiveShadows = true;")
	b.Linef("terrainComp.isStatic = %s;", boolLit(e.IsStatic))
	b.Linef("m_registry.emplace<TerrainComponent>(%s, terrainComp);", v)
	b.Close("")
	b.Close("")
}

func (s *sceneBackend) custom(index int, v string, e *sceneir.Entity) {
	b := s.buf
	for _, c := range e.CustomComponents {
		if strings.TrimSpace(c.GeneratedType) == "" {
			continue
		}
		cv := "custom_" + identity.ToSnakeCase(c.GeneratedType, "component") + "_" + strconv.Itoa(index)
		b.Linef("%s %s{};", c.GeneratedType, cv)
		for _, f := range c.Fields {
			b.Linef("%s.%s = %s;", cv, identity.SanitizeIdentifier(f.Name, "field"), f.ValueCpp)
		}
		b.Linef("m_registry.emplace<%s>(%s, %s);", c.GeneratedType, v, cv)
	}
}

func (s *sceneBackend) HierarchyLinks(entities []*sceneir.Entity) error {
	b := s.buf
	for _, e := range entities {
		if e.ParentStableID == "" {
			continue
		}
		b.Open("")
		b.Linef("auto childIt = entityMap.find(%s);", quote(e.StableID))
		b.Linef("auto parentIt = entityMap.find(%s);", quote(e.ParentStableID))
		b.Line("if (childIt != entityMap.end() && parentIt != entityMap.end())")
		b.Indent()
		b.Line("Hierarchy::AttachChild(m_registry, parentIt->second, childIt->second);")
		b.Dedent()
		b.Close("")
	}
	b.Blank()
	b.Line("// Free camera controls follow the active camera, else the first camera.")
	b.Line("auto cameraView = m_registry.view<CameraComponent, TransformComponent>();")
	b.Open("for (auto cameraEntity : cameraView)")
	b.Line("auto& camera = cameraView.get<CameraComponent>(cameraEntity);")
	b.Line("if (!camera.isActive)")
	b.Indent()
	b.Line("continue;")
	b.Dedent()
	b.Line("m_runtimeCameraEntity = cameraEntity;")
	b.Line("break;")
	b.Close("")
	b.Open("if (m_runtimeCameraEntity == entt::null)")
	b.Open("for (auto cameraEntity : cameraView)")
	b.Line("m_runtimeCameraEntity = cameraEntity;")
	b.Line("cameraView.get<CameraComponent>(cameraEntity).isActive = true;")
	b.Line("break;")
	b.Close("")
	b.Close("")
	b.Open("if (m_runtimeCameraEntity != entt::null)")
	b.Line("const auto& cameraTransform = cameraView.get<TransformComponent>(m_runtimeCameraEntity);")
	b.Line("const glm::vec3 forward = glm::normalize(cameraTransform.Forward());")
	b.Line("m_freeCameraYaw = glm::degrees(std::atan2(forward.x, forward.z));")
	b.Line("m_freeCameraPitch = glm::degrees(-std::asin(glm::clamp(forward.y, -1.0f, 1.0f)));")
	b.Close("")
	b.Close("")
	b.Blank()
	return nil
}

func (s *sceneBackend) Epilogue() error {
	var methods bytes.Buffer
	data := struct {
		ClassName string
		Lights    []lightPanel
	}{s.className, lightPanels}
	if err := sceneMethodsTmpl.Execute(&methods, data); err != nil {
		return fmt.Errorf("render scene methods: %w", err)
	}
	s.out = s.buf.Render() + methods.String()
	return nil
}
