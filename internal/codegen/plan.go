// Package codegen holds what the scene backends share: the resource plan that
// numbers deduplicated textures, meshes and materials, the stage sequence
// every backend walks, and a statement buffer for line-oriented source.
package codegen

import (
	"sort"
	"strings"

	"sceneexport/internal/sceneir"
)

// Resource is one distinct bundle path referenced by a scene.
type Resource struct {
	Path  string
	Index int
}

// MaterialSlot is one deduplicated material. Material is the first instance
// seen for Key in entity order.
type MaterialSlot struct {
	Key      string
	Index    int
	Material *sceneir.Material
}

// Plan is the per-scene resource table. Indices follow the lexicographic
// order of paths (and of dedup keys for materials), so an unchanged scene
// always yields the same numbering.
type Plan struct {
	Entities  []*sceneir.Entity
	Textures  []Resource
	Meshes    []Resource
	Materials []MaterialSlot

	textures  map[string]int
	meshes    map[string]int
	materials map[string]int
}

// NewPlan collects the resources of doc. The document is not modified;
// Entities is an id-sorted copy of doc.Entities.
func NewPlan(doc *sceneir.SceneDocument) *Plan {
	p := &Plan{
		textures:  map[string]int{},
		meshes:    map[string]int{},
		materials: map[string]int{},
	}
	if doc == nil {
		return p
	}
	p.Entities = append([]*sceneir.Entity(nil), doc.Entities...)
	sceneir.SortEntities(p.Entities)

	texturePaths := map[string]struct{}{}
	meshPaths := map[string]struct{}{}
	firstMaterial := map[string]*sceneir.Material{}
	addPath := func(set map[string]struct{}, path string) {
		if strings.TrimSpace(path) != "" {
			set[path] = struct{}{}
		}
	}

	for _, e := range p.Entities {
		if e.Model != nil {
			addPath(meshPaths, e.Model.MeshAssetRelativePath)
			if m := e.Model.Material; m != nil {
				key := m.DedupKey()
				if _, seen := firstMaterial[key]; !seen {
					firstMaterial[key] = m
				}
				addPath(texturePaths, m.DiffuseTexture)
				addPath(texturePaths, m.NormalTexture)
				addPath(texturePaths, m.SpecularTexture)
				addPath(texturePaths, m.EmissiveTexture)
			}
		}
		if e.MeshCollider != nil {
			addPath(meshPaths, e.MeshCollider.MeshAssetRelativePath)
		}
		if e.Terrain != nil {
			addPath(texturePaths, e.Terrain.BlendMap())
			for _, layer := range e.Terrain.Layers {
				addPath(texturePaths, layer.AlbedoTexture)
				addPath(texturePaths, layer.NormalTexture)
			}
		}
		if e.ReflectionProbe != nil {
			addPath(texturePaths, e.ReflectionProbe.CubemapPath)
		}
	}

	p.Textures = numberPaths(texturePaths, p.textures)
	p.Meshes = numberPaths(meshPaths, p.meshes)

	keys := make([]string, 0, len(firstMaterial))
	for k := range firstMaterial {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	p.Materials = make([]MaterialSlot, len(keys))
	for i, k := range keys {
		p.Materials[i] = MaterialSlot{Key: k, Index: i, Material: firstMaterial[k]}
		p.materials[k] = i
	}
	return p
}

func numberPaths(set map[string]struct{}, index map[string]int) []Resource {
	paths := make([]string, 0, len(set))
	for path := range set {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	out := make([]Resource, len(paths))
	for i, path := range paths {
		out[i] = Resource{Path: path, Index: i}
		index[path] = i
	}
	return out
}

// TextureIndex resolves a texture path. ok is false for empty or unknown
// paths, which backends render as the invalid-reference sentinel.
func (p *Plan) TextureIndex(path string) (int, bool) {
	if p == nil || path == "" {
		return 0, false
	}
	i, ok := p.textures[path]
	return i, ok
}

func (p *Plan) MeshIndex(path string) (int, bool) {
	if p == nil || path == "" {
		return 0, false
	}
	i, ok := p.meshes[path]
	return i, ok
}

// MaterialIndex resolves m through its dedup key.
func (p *Plan) MaterialIndex(m *sceneir.Material) (int, bool) {
	if p == nil || m == nil {
		return 0, false
	}
	i, ok := p.materials[m.DedupKey()]
	return i, ok
}

// HasCustomComponents reports whether any entity carries a script component.
func (p *Plan) HasCustomComponents() bool {
	if p == nil {
		return false
	}
	for _, e := range p.Entities {
		if len(e.CustomComponents) > 0 {
			return true
		}
	}
	return false
}
