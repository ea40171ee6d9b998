package producer

import (
	"strings"

	"sceneexport/internal/geometry"
)

// Host type names of the components the exporter maps natively.
const (
	TypeTransform       = "UnityEngine.Transform"
	TypeMeshFilter      = "UnityEngine.MeshFilter"
	TypeMeshRenderer    = "UnityEngine.MeshRenderer"
	TypeLight           = "UnityEngine.Light"
	TypeReflectionProbe = "UnityEngine.ReflectionProbe"
	TypeCamera          = "UnityEngine.Camera"
	TypeRigidbody       = "UnityEngine.Rigidbody"
	TypeBoxCollider     = "UnityEngine.BoxCollider"
	TypeSphereCollider  = "UnityEngine.SphereCollider"
	TypeCapsuleCollider = "UnityEngine.CapsuleCollider"
	TypeMeshCollider    = "UnityEngine.MeshCollider"
	TypeTerrain         = "UnityEngine.Terrain"
	TypeAudioSource     = "UnityEngine.AudioSource"
)

// Component is one host component. At most one payload pointer is set;
// script components carry Fields instead.
type Component struct {
	Type          string `yaml:"type"`
	Assembly      string `yaml:"assembly"`
	Missing       bool   `yaml:"missing"`
	MonoBehaviour bool   `yaml:"monoBehaviour"`
	Enabled       *bool  `yaml:"enabled"`

	MeshFilter      *MeshFilter      `yaml:"meshFilter"`
	MeshRenderer    *MeshRenderer    `yaml:"meshRenderer"`
	Light           *Light           `yaml:"light"`
	ReflectionProbe *ReflectionProbe `yaml:"reflectionProbe"`
	Camera          *Camera          `yaml:"camera"`
	Rigidbody       *Rigidbody       `yaml:"rigidbody"`
	BoxCollider     *BoxCollider     `yaml:"boxCollider"`
	SphereCollider  *SphereCollider  `yaml:"sphereCollider"`
	CapsuleCollider *CapsuleCollider `yaml:"capsuleCollider"`
	MeshCollider    *MeshCollider    `yaml:"meshCollider"`
	Terrain         *Terrain         `yaml:"terrain"`
	AudioSource     *AudioSource     `yaml:"audioSource"`

	Fields []Field `yaml:"fields"`
}

func (c *Component) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// TypeName is the full host type name, inferred from the payload when the
// dump leaves it out.
func (c *Component) TypeName() string {
	if c.Type != "" {
		return c.Type
	}
	switch {
	case c.MeshFilter != nil:
		return TypeMeshFilter
	case c.MeshRenderer != nil:
		return TypeMeshRenderer
	case c.Light != nil:
		return TypeLight
	case c.ReflectionProbe != nil:
		return TypeReflectionProbe
	case c.Camera != nil:
		return TypeCamera
	case c.Rigidbody != nil:
		return TypeRigidbody
	case c.BoxCollider != nil:
		return TypeBoxCollider
	case c.SphereCollider != nil:
		return TypeSphereCollider
	case c.CapsuleCollider != nil:
		return TypeCapsuleCollider
	case c.MeshCollider != nil:
		return TypeMeshCollider
	case c.Terrain != nil:
		return TypeTerrain
	case c.AudioSource != nil:
		return TypeAudioSource
	}
	return ""
}

// Namespace is the dotted prefix of TypeName.
func (c *Component) Namespace() string {
	name := c.TypeName()
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return ""
}

// ShortName is TypeName without its namespace.
func (c *Component) ShortName() string {
	name := c.TypeName()
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Asset is a handle to a host asset. Path is empty for runtime-only objects.
type Asset struct {
	Path       string `yaml:"path"`
	Name       string `yaml:"name"`
	InstanceID string `yaml:"instanceId"`
}

// Texture is a texture handle. Solid describes the pixels of runtime-only
// textures; Cubemap marks a packed cross or strip cubemap image.
type Texture struct {
	Asset   `yaml:",inline"`
	Cubemap bool   `yaml:"cubemap"`
	Solid   *Solid `yaml:"solid"`
}

type Solid struct {
	Width  int        `yaml:"width"`
	Height int        `yaml:"height"`
	Color  [4]float32 `yaml:"color"`
}

// Mesh is a mesh handle. SubAsset marks meshes that are not the main asset
// of their file; those are baked from Geometry or Primitive.
type Mesh struct {
	Asset     `yaml:",inline"`
	SubAsset  bool           `yaml:"subAsset"`
	Primitive string         `yaml:"primitive"`
	Geometry  *geometry.Mesh `yaml:"geometry"`
}

// Resolve returns the geometry to bake, if any.
func (m *Mesh) Resolve() *geometry.Mesh {
	if m == nil {
		return nil
	}
	if m.Geometry != nil {
		return m.Geometry
	}
	if strings.EqualFold(m.Primitive, "cube") {
		return geometry.Cube(m.Name)
	}
	return nil
}

// TextureSlot is a material texture property with its tiling.
type TextureSlot struct {
	Texture *Texture    `yaml:"texture"`
	Scale   *[2]float32 `yaml:"scale"`
	Offset  [2]float32  `yaml:"offset"`
}

// Material exposes shader properties by name, the way the host does.
type Material struct {
	Name              string                  `yaml:"name"`
	Shader            string                  `yaml:"shader"`
	RenderQueue       int                     `yaml:"renderQueue"`
	Colors            map[string][4]float32   `yaml:"colors"`
	Floats            map[string]float32      `yaml:"floats"`
	Textures          map[string]*TextureSlot `yaml:"textures"`
	MainTextureScale  *[2]float32             `yaml:"mainTextureScale"`
	MainTextureOffset [2]float32              `yaml:"mainTextureOffset"`
}

func (m *Material) HasProperty(name string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.Colors[name]; ok {
		return true
	}
	if _, ok := m.Floats[name]; ok {
		return true
	}
	_, ok := m.Textures[name]
	return ok
}

// Color returns the first of names present as a color property.
func (m *Material) Color(names ...string) ([4]float32, bool) {
	if m == nil {
		return [4]float32{}, false
	}
	for _, n := range names {
		if c, ok := m.Colors[n]; ok {
			return c, true
		}
	}
	return [4]float32{}, false
}

func (m *Material) Float(names ...string) (float32, bool) {
	if m == nil {
		return 0, false
	}
	for _, n := range names {
		if f, ok := m.Floats[n]; ok {
			return f, true
		}
	}
	return 0, false
}

// TextureProperty returns the first of names that holds a texture.
func (m *Material) TextureProperty(names ...string) (string, *TextureSlot) {
	if m == nil {
		return "", nil
	}
	for _, n := range names {
		if slot, ok := m.Textures[n]; ok && slot != nil && slot.Texture != nil {
			return n, slot
		}
	}
	return "", nil
}

func (m *Material) Texture(names ...string) *Texture {
	if _, slot := m.TextureProperty(names...); slot != nil {
		return slot.Texture
	}
	return nil
}

type MeshFilter struct {
	Mesh *Mesh `yaml:"mesh"`
}

type MeshRenderer struct {
	ShadowCasting  string      `yaml:"shadowCasting"`
	ReceiveShadows *bool       `yaml:"receiveShadows"`
	Materials      []*Material `yaml:"materials"`
}

func (r *MeshRenderer) CastsShadows() bool {
	return !strings.EqualFold(r.ShadowCasting, "off")
}

func (r *MeshRenderer) ReceivesShadows() bool {
	return r.ReceiveShadows == nil || *r.ReceiveShadows
}

type Light struct {
	Type           string     `yaml:"type"`
	Color          [3]float32 `yaml:"color"`
	Intensity      float32    `yaml:"intensity"`
	Range          float32    `yaml:"range"`
	SpotAngle      float32    `yaml:"spotAngle"`
	InnerSpotAngle float32    `yaml:"innerSpotAngle"`
	Shadows        string     `yaml:"shadows"`
}

func (l *Light) CastsShadows() bool {
	return l.Shadows != "" && !strings.EqualFold(l.Shadows, "none")
}

type ReflectionProbe struct {
	Intensity          float32    `yaml:"intensity"`
	Size               [3]float32 `yaml:"size"`
	Center             [3]float32 `yaml:"center"`
	RefreshMode        string     `yaml:"refreshMode"`
	CustomBakedTexture *Texture   `yaml:"customBakedTexture"`
	Texture            *Texture   `yaml:"texture"`
}

type Camera struct {
	FieldOfView float32 `yaml:"fieldOfView"`
	NearClip    float32 `yaml:"nearClip"`
	FarClip     float32 `yaml:"farClip"`
	Aspect      float32 `yaml:"aspect"`
}

type Rigidbody struct {
	IsKinematic        bool       `yaml:"isKinematic"`
	UseGravity         bool       `yaml:"useGravity"`
	MaxLinearVelocity  float32    `yaml:"maxLinearVelocity"`
	MaxAngularVelocity float32    `yaml:"maxAngularVelocity"`
	CenterOfMass       [3]float32 `yaml:"centerOfMass"`
	LinearVelocity     [3]float32 `yaml:"linearVelocity"`
	AngularVelocity    [3]float32 `yaml:"angularVelocity"`
}

type BoxCollider struct {
	IsTrigger bool       `yaml:"isTrigger"`
	Size      [3]float32 `yaml:"size"`
	Center    [3]float32 `yaml:"center"`
}

type SphereCollider struct {
	IsTrigger bool       `yaml:"isTrigger"`
	Radius    float32    `yaml:"radius"`
	Center    [3]float32 `yaml:"center"`
}

type CapsuleCollider struct {
	IsTrigger bool       `yaml:"isTrigger"`
	Radius    float32    `yaml:"radius"`
	Height    float32    `yaml:"height"`
	Direction int        `yaml:"direction"`
	Center    [3]float32 `yaml:"center"`
}

type MeshCollider struct {
	IsTrigger bool  `yaml:"isTrigger"`
	Mesh      *Mesh `yaml:"mesh"`
}

type Terrain struct {
	Size            [3]float32      `yaml:"size"`
	Heights         [][]float32     `yaml:"heights"`
	AlphamapTexture *Texture        `yaml:"alphamapTexture"`
	Alphamaps       [][][]float32   `yaml:"alphamaps"`
	Layers          []*TerrainLayer `yaml:"layers"`
}

type TerrainLayer struct {
	Name       string     `yaml:"name"`
	Metallic   float32    `yaml:"metallic"`
	Smoothness float32    `yaml:"smoothness"`
	Specular   [3]float32 `yaml:"specular"`
	TileOffset [2]float32 `yaml:"tileOffset"`
	TileSize   [2]float32 `yaml:"tileSize"`
	Diffuse    *Texture   `yaml:"diffuse"`
	Normal     *Texture   `yaml:"normal"`
}

type AudioSource struct {
	Clip        *Asset  `yaml:"clip"`
	Volume      float32 `yaml:"volume"`
	Pitch       float32 `yaml:"pitch"`
	Loop        bool    `yaml:"loop"`
	PlayOnAwake bool    `yaml:"playOnAwake"`
	Spatialize  bool    `yaml:"spatialize"`
}

type RenderSettings struct {
	AmbientLight          [3]float32 `yaml:"ambientLight"`
	AmbientIntensity      float32    `yaml:"ambientIntensity"`
	Fog                   bool       `yaml:"fog"`
	FogColor              [3]float32 `yaml:"fogColor"`
	FogDensity            float32    `yaml:"fogDensity"`
	FogStartDistance      float32    `yaml:"fogStartDistance"`
	FogEndDistance        float32    `yaml:"fogEndDistance"`
	FogMode               string     `yaml:"fogMode"`
	ReflectionIntensity   float32    `yaml:"reflectionIntensity"`
	ReflectionBounces     int        `yaml:"reflectionBounces"`
	DefaultReflectionMode string     `yaml:"defaultReflectionMode"`
}

// Field is one serialized script field. Value holds scalars and vectors as
// decoded from YAML; Items holds array elements.
type Field struct {
	Name  string  `yaml:"name"`
	Type  string  `yaml:"type"`
	Value any     `yaml:"value"`
	Items []Field `yaml:"items"`
}
