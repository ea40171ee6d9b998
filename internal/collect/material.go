package collect

import (
	"fmt"
	"image"
	"image/color"
	"path"
	"strings"

	"github.com/chewxy/math32"

	"sceneexport/internal/contentstore"
	"sceneexport/internal/geometry"
	"sceneexport/internal/identity"
	"sceneexport/internal/producer"
	"sceneexport/internal/sceneir"
)

// Shader property aliases, in lookup order.
var (
	propBaseColor    = []string{"_BaseColor", "_Color"}
	propMainTex      = []string{"_BaseMap", "_MainTex", "_BaseColorMap", "_AlbedoMap"}
	propGlossiness   = "_Glossiness"
	propSmoothness   = "_Smoothness"
	propCutoff       = []string{"_Cutoff", "_AlphaCutoff"}
	propEmission     = []string{"_EmissionColor", "_EmissiveColor"}
	propSpecular     = []string{"_SpecColor", "_SpecularColor"}
	propNormalTex    = []string{"_BumpMap", "_NormalMap", "_NormalTex"}
	propSpecularTex  = []string{"_SpecGlossMap", "_SpecularMap", "_SpecMap"}
	propEmissiveTex  = []string{"_EmissionMap", "_EmissiveMap"}
	propOcclusionTex = []string{"_OcclusionMap", "_AOTex"}
	propMetallicTex  = []string{"_MetallicGlossMap", "_MetallicMap", "_MaskMap"}
)

const (
	transparentRenderQueue = 3000
	defaultGlossiness      = float32(0.5)
	defaultSpecular        = float32(0.5)
	minShininess           = float32(4)
	maxShininess           = float32(128)
)

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func clamp01(v float32) float32 {
	if math32.IsNaN(v) {
		return 0
	}
	return math32.Max(0, math32.Min(1, v))
}

func approxZero(v float32) bool { return math32.Abs(v) < 1e-6 }

// buildMaterial derives the runtime material for the first renderer slot.
// Texture file names are owner-prefixed so that generated textures of
// different owners do not collide.
func (s *sceneRun) buildMaterial(m *producer.Material, owner string) (*sceneir.Material, error) {
	data := sceneir.DefaultMaterial()
	if m == nil {
		return data, nil
	}
	data.StableID = ""
	data.Name = m.Name

	if c, ok := m.Color(propBaseColor...); ok {
		data.BaseColor = vec4(c)
	}

	if _, slot := m.TextureProperty(propMainTex...); slot != nil {
		data.UVScale = scaleOrOne(slot.Scale)
		data.UVOffset = vec2(slot.Offset)
	} else {
		data.UVScale = scaleOrOne(m.MainTextureScale)
		data.UVOffset = vec2(m.MainTextureOffset)
	}

	gloss, ok := m.Float(propGlossiness, propSmoothness)
	if !ok || math32.IsNaN(gloss) {
		gloss = defaultGlossiness
	}
	data.Shininess = sceneir.Float(lerp(minShininess, maxShininess, clamp01(gloss)))

	data.AlphaCutoff = -1
	if cutoff, ok := m.Float(propCutoff...); ok {
		data.AlphaCutoff = sceneir.Float(cutoff)
	}

	surface, hasSurface := m.Float("_Surface")
	mode, hasMode := m.Float("_Mode")
	data.Transparent = m.RenderQueue >= transparentRenderQueue ||
		(hasSurface && surface > 0.5) ||
		(hasMode && mode >= 2)
	cull, hasCull := m.Float("_Cull")
	data.DoubleSided = hasCull && approxZero(cull)

	emission, _ := m.Color(propEmission...)
	data.EmissionColor = vec4(emission)
	data.EmissionIntensity = sceneir.Float(math32.Max(math32.Max(emission[0], math32.Max(emission[1], emission[2])), 0))

	spec, ok := m.Color(propSpecular...)
	if !ok {
		spec = [4]float32{defaultSpecular, defaultSpecular, defaultSpecular, 1}
	}
	data.SpecularStrength = sceneir.Float((spec[0] + spec[1] + spec[2]) / 3)

	slots := []struct {
		role  string
		props []string
		dst   *string
	}{
		{"diffuse", propMainTex, &data.DiffuseTexture},
		{"normal", propNormalTex, &data.NormalTexture},
		{"specular", propSpecularTex, &data.SpecularTexture},
		{"emissive", propEmissiveTex, &data.EmissiveTexture},
		{"ao", propOcclusionTex, &data.AOTexture},
		{"metallic", propMetallicTex, &data.MetallicTexture},
	}
	for _, slot := range slots {
		tex := m.Texture(slot.props...)
		if tex == nil {
			continue
		}
		rel, err := s.exportTexture(tex, contentstore.KindTexture, owner+"_"+slot.role)
		if err != nil {
			return nil, err
		}
		*slot.dst = rel
	}

	data.StableID = identity.MaterialID(data.Name, data.DiffuseTexture, data.NormalTexture, data.SpecularTexture, data.EmissiveTexture)
	return data, nil
}

func scaleOrOne(v *[2]float32) sceneir.Vec2 {
	if v == nil {
		return sceneir.V2(1, 1)
	}
	return vec2(*v)
}

// textureObject adapts a producer texture handle to the content store.
func textureObject(t *producer.Texture) *contentstore.Object {
	if t == nil {
		return nil
	}
	obj := &contentstore.Object{Path: t.Path, Name: t.Name, InstanceID: t.InstanceID}
	if t.Path == "" && t.Solid != nil {
		obj.Image = solidImage(t.Solid)
	}
	return obj
}

func assetObject(a *producer.Asset) *contentstore.Object {
	if a == nil {
		return nil
	}
	return &contentstore.Object{Path: a.Path, Name: a.Name, InstanceID: a.InstanceID}
}

func (s *sceneRun) exportTexture(t *producer.Texture, kind contentstore.Kind, fallbackName string) (string, error) {
	obj := textureObject(t)
	if obj == nil {
		return "", nil
	}
	return s.store.ExportObject(obj, kind, fallbackName)
}

func solidImage(sd *producer.Solid) image.Image {
	w, h := max(sd.Width, 1), max(sd.Height, 1)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	c := color.NRGBA{
		R: unitByte(sd.Color[0]),
		G: unitByte(sd.Color[1]),
		B: unitByte(sd.Color[2]),
		A: unitByte(sd.Color[3]),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func unitByte(v float32) uint8 {
	return uint8(math32.Round(clamp01(v) * 255))
}

// textureImage returns the pixels of t, decoding the project file when the
// texture is file backed.
func (s *sceneRun) textureImage(t *producer.Texture) (image.Image, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}
	if t.Path == "" {
		if t.Solid == nil {
			return nil, fmt.Errorf("texture %s has no pixels", t.Name)
		}
		return solidImage(t.Solid), nil
	}
	if s.source == nil {
		return nil, fmt.Errorf("no project reader for %s", t.Path)
	}
	raw, err := s.source.ReadFile(t.Path)
	if err != nil {
		return nil, err
	}
	return contentstore.DecodeImage(raw, strings.ToLower(path.Ext(t.Path)))
}

// sliceCubemap cuts a packed cubemap texture into its six faces.
func (s *sceneRun) sliceCubemap(t *producer.Texture) ([6]image.Image, error) {
	img, err := s.textureImage(t)
	if err != nil {
		return [6]image.Image{}, err
	}
	return geometry.SliceCubemap(img)
}
