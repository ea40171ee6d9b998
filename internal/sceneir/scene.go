// Package sceneir holds the canonical scene document shared by the JSON and
// C++ backends. Entities reference each other only by stable id.
package sceneir

const SceneSchemaVersion = "1.0.0"

type SceneDocument struct {
	SchemaVersion  string         `json:"schemaVersion"`
	SceneName      string         `json:"sceneName"`
	SceneAssetPath string         `json:"sceneAssetPath"`
	RenderSettings RenderSettings `json:"renderSettings"`
	Skybox         *Skybox        `json:"skybox"`
	Entities       []*Entity      `json:"entities"`
	Warnings       []string       `json:"warnings"`
}

type RenderSettings struct {
	AmbientLight          Vec3   `json:"ambientLight"`
	AmbientIntensity      Float  `json:"ambientIntensity"`
	FogEnabled            bool   `json:"fogEnabled"`
	FogColor              Vec3   `json:"fogColor"`
	FogDensity            Float  `json:"fogDensity"`
	FogStartDistance      Float  `json:"fogStartDistance"`
	FogEndDistance        Float  `json:"fogEndDistance"`
	FogMode               string `json:"fogMode"`
	ReflectionIntensity   Float  `json:"reflectionIntensity"`
	ReflectionBounces     int    `json:"reflectionBounces"`
	DefaultReflectionMode string `json:"defaultReflectionMode"`
}

// Skybox source types.
const (
	SkyboxSixSided  = "six_sided"
	SkyboxCubemap   = "cubemap"
	SkyboxPanoramic = "panoramic"
	SkyboxUnknown   = "unknown"
)

// SkyboxFaces lists cubemap faces in the order CubemapFacePaths stores them.
var SkyboxFaces = [6]string{"east", "west", "up", "down", "north", "south"}

type Skybox struct {
	Enabled          bool     `json:"enabled"`
	SourceType       string   `json:"sourceType"`
	MaterialName     string   `json:"materialName"`
	ShaderName       string   `json:"shaderName"`
	PanoramicTexture string   `json:"panoramicTexture"`
	CubemapFacePaths []string `json:"cubemapFacePaths"`
}

// HasAllFaces reports whether every cubemap face resolved to a path.
func (s *Skybox) HasAllFaces() bool {
	if s == nil || len(s.CubemapFacePaths) != len(SkyboxFaces) {
		return false
	}
	for _, p := range s.CubemapFacePaths {
		if p == "" {
			return false
		}
	}
	return true
}

type Entity struct {
	StableID       string `json:"stableId"`
	ParentStableID string `json:"parentStableId"`
	Name           string `json:"name"`
	Tag            string `json:"tag"`
	IsStatic       bool   `json:"isStatic"`
	IsActive       bool   `json:"isActive"`
	LocalPosition  Vec3   `json:"localPosition"`
	LocalRotation  Quat   `json:"localRotation"`
	LocalScale     Vec3   `json:"localScale"`

	Model            *Model            `json:"model"`
	DirectionalLight *DirectionalLight `json:"directionalLight"`
	PointLight       *PointLight       `json:"pointLight"`
	SpotLight        *SpotLight        `json:"spotLight"`
	ReflectionProbe  *ReflectionProbe  `json:"reflectionProbe"`
	Camera           *Camera           `json:"camera"`
	Rigidbody        *Rigidbody        `json:"rigidbody"`
	BoxCollider      *BoxCollider      `json:"boxCollider"`
	SphereCollider   *SphereCollider   `json:"sphereCollider"`
	CapsuleCollider  *CapsuleCollider  `json:"capsuleCollider"`
	MeshCollider     *MeshCollider     `json:"meshCollider"`
	Terrain          *Terrain          `json:"terrain"`
	AudioSource      *AudioSource      `json:"audioSource"`

	CustomComponents []CustomComponent `json:"customComponents"`
}

type Model struct {
	Enabled               bool      `json:"enabled"`
	CastShadows           bool      `json:"castShadows"`
	ReceiveShadows        bool      `json:"receiveShadows"`
	IsStatic              bool      `json:"isStatic"`
	MeshAssetRelativePath string    `json:"meshAssetRelativePath"`
	MeshSource            string    `json:"meshSource"`
	MeshWasBaked          bool      `json:"meshWasBaked"`
	Material              *Material `json:"material"`
}

const (
	DefaultMaterialID   = "mat_default"
	DefaultMaterialName = "Default"
)

type Material struct {
	StableID          string `json:"stableId"`
	Name              string `json:"name"`
	BaseColor         Vec4   `json:"baseColor"`
	EmissionColor     Vec4   `json:"emissionColor"`
	EmissionIntensity Float  `json:"emissionIntensity"`
	Shininess         Float  `json:"shininess"`
	Reflectivity      Float  `json:"reflectivity"`
	SpecularStrength  Float  `json:"specularStrength"`
	AlphaCutoff       Float  `json:"alphaCutoff"`
	ReceiveShadows    bool   `json:"receiveShadows"`
	DoubleSided       bool   `json:"doubleSided"`
	Transparent       bool   `json:"transparent"`
	UVScale           Vec2   `json:"uvScale"`
	UVOffset          Vec2   `json:"uvOffset"`
	DiffuseTexture    string `json:"diffuseTexture"`
	NormalTexture     string `json:"normalTexture"`
	SpecularTexture   string `json:"specularTexture"`
	EmissiveTexture   string `json:"emissiveTexture"`
	AOTexture         string `json:"aoTexture"`
	MetallicTexture   string `json:"metallicTexture"`
}

// DefaultMaterial is used when a renderer has no material assigned.
func DefaultMaterial() *Material {
	return &Material{
		StableID:         DefaultMaterialID,
		Name:             DefaultMaterialName,
		BaseColor:        V4(1, 1, 1, 1),
		Shininess:        32,
		SpecularStrength: 0.5,
		AlphaCutoff:      -1,
		ReceiveShadows:   true,
		UVScale:          V2(1, 1),
	}
}

// DedupKey collapses semantically identical materials.
func (m *Material) DedupKey() string {
	switch {
	case m == nil:
		return "default"
	case m.StableID != "":
		return m.StableID
	case m.Name != "":
		return m.Name
	default:
		return "default"
	}
}

// AlphaCutoutEnabled reports whether AlphaCutoff carries a real threshold.
func (m *Material) AlphaCutoutEnabled() bool {
	return m != nil && m.AlphaCutoff >= 0
}

type DirectionalLight struct {
	Enabled     bool  `json:"enabled"`
	Color       Vec3  `json:"color"`
	Intensity   Float `json:"intensity"`
	CastShadows bool  `json:"castShadows"`
}

type PointLight struct {
	Enabled     bool  `json:"enabled"`
	Color       Vec3  `json:"color"`
	Intensity   Float `json:"intensity"`
	Radius      Float `json:"radius"`
	CastShadows bool  `json:"castShadows"`
}

type SpotLight struct {
	Enabled               bool  `json:"enabled"`
	Color                 Vec3  `json:"color"`
	Intensity             Float `json:"intensity"`
	Range                 Float `json:"range"`
	InnerConeAngleDegrees Float `json:"innerConeAngleDegrees"`
	OuterConeAngleDegrees Float `json:"outerConeAngleDegrees"`
	CastShadows           bool  `json:"castShadows"`
}

type ReflectionProbe struct {
	Enabled     bool   `json:"enabled"`
	IsBaked     bool   `json:"isBaked"`
	Intensity   Float  `json:"intensity"`
	Size        Vec3   `json:"size"`
	Center      Vec3   `json:"center"`
	CubemapPath string `json:"cubemapPath"`
}

// DefaultCameraAspect applies when the host reports no aspect ratio.
const DefaultCameraAspect = float32(16.0 / 9.0)

type Camera struct {
	Enabled   bool  `json:"enabled"`
	FOV       Float `json:"fov"`
	NearPlane Float `json:"nearPlane"`
	FarPlane  Float `json:"farPlane"`
	Aspect    Float `json:"aspect"`
	IsActive  bool  `json:"isActive"`
}

type Rigidbody struct {
	IsKinematic        bool  `json:"isKinematic"`
	UseGravity         bool  `json:"useGravity"`
	MaxLinearVelocity  Float `json:"maxLinearVelocity"`
	MaxAngularVelocity Float `json:"maxAngularVelocity"`
	CenterOfMass       Vec3  `json:"centerOfMass"`
	LinearVelocity     Vec3  `json:"linearVelocity"`
	AngularVelocity    Vec3  `json:"angularVelocity"`
}

type BoxCollider struct {
	Enabled   bool `json:"enabled"`
	IsTrigger bool `json:"isTrigger"`
	Size      Vec3 `json:"size"`
	Offset    Vec3 `json:"offset"`
}

type SphereCollider struct {
	Enabled   bool  `json:"enabled"`
	IsTrigger bool  `json:"isTrigger"`
	Radius    Float `json:"radius"`
	Offset    Vec3  `json:"offset"`
}

// CapsuleAxisY is the only capsule direction the runtime represents natively.
const CapsuleAxisY = 1

type CapsuleCollider struct {
	Enabled   bool  `json:"enabled"`
	IsTrigger bool  `json:"isTrigger"`
	Radius    Float `json:"radius"`
	Height    Float `json:"height"`
	Direction int   `json:"direction"`
	Offset    Vec3  `json:"offset"`
}

type MeshCollider struct {
	Enabled               bool   `json:"enabled"`
	IsTrigger             bool   `json:"isTrigger"`
	Scale                 Vec3   `json:"scale"`
	Offset                Vec3   `json:"offset"`
	MeshAssetRelativePath string `json:"meshAssetRelativePath"`
	MeshWasBaked          bool   `json:"meshWasBaked"`
	MeshSource            string `json:"meshSource"`
}

// MaxTerrainLayers is the number of blend layers the runtime terrain shader samples.
const MaxTerrainLayers = 4

type Terrain struct {
	Enabled          bool           `json:"enabled"`
	Size             Vec3           `json:"size"`
	HeightmapTexture string         `json:"heightmapTexture"`
	SplatmapTexture  string         `json:"splatmapTexture"`
	WeightmapTexture string         `json:"weightmapTexture"`
	Layers           []TerrainLayer `json:"layers"`
}

// BlendMap returns the splatmap, falling back to the weightmap.
func (t *Terrain) BlendMap() string {
	if t == nil {
		return ""
	}
	if t.SplatmapTexture != "" {
		return t.SplatmapTexture
	}
	return t.WeightmapTexture
}

type TerrainLayer struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	Metallic      Float  `json:"metallic"`
	Smoothness    Float  `json:"smoothness"`
	SpecularColor Vec3   `json:"specularColor"`
	TileOffset    Vec2   `json:"tileOffset"`
	TileSize      Vec2   `json:"tileSize"`
	AlbedoTexture string `json:"albedoTexture"`
	NormalTexture string `json:"normalTexture"`
}

type AudioSource struct {
	Enabled     bool   `json:"enabled"`
	ClipPath    string `json:"clipPath"`
	Volume      Float  `json:"volume"`
	Pitch       Float  `json:"pitch"`
	Loop        bool   `json:"loop"`
	PlayOnAwake bool   `json:"playOnAwake"`
	Spatialize  bool   `json:"spatialize"`
}
