// Package producer supplies host scene graphs to the collector. A producer
// only exposes semantic fields; nothing here knows about host object types.
package producer

import (
	"iter"
	"path"
	"strings"
)

// Identity is what a stable id is derived from.
type Identity struct {
	Name         string `yaml:"name"`
	PersistentID string `yaml:"persistentId"`
}

// Header carries the per-node GameObject and transform state.
type Header struct {
	Tag      string      `yaml:"tag"`
	Static   bool        `yaml:"static"`
	Active   *bool       `yaml:"active"`
	Position [3]float32  `yaml:"position"`
	Rotation *[4]float32 `yaml:"rotation"` // x, y, z, w
	Scale    *[3]float32 `yaml:"scale"`
}

func (h Header) IsActive() bool { return h.Active == nil || *h.Active }

// RotationXYZW returns the local rotation, identity when unset or all zero.
func (h Header) RotationXYZW() [4]float32 {
	if h.Rotation == nil || *h.Rotation == [4]float32{} {
		return [4]float32{0, 0, 0, 1}
	}
	return *h.Rotation
}

func (h Header) LocalScale() [3]float32 {
	if h.Scale == nil {
		return [3]float32{1, 1, 1}
	}
	return *h.Scale
}

// Node is one element of a depth-first host traversal.
type Node interface {
	Identity() Identity
	Header() Header
	Components() []*Component
	Children() iter.Seq[Node]
}

// NodeData is the plain-data Node used by YAML dumps and test fixtures.
type NodeData struct {
	Ident Identity     `yaml:",inline"`
	Head  Header       `yaml:",inline"`
	Comps []*Component `yaml:"components"`
	Kids  []*NodeData  `yaml:"children"`
}

func (n *NodeData) Identity() Identity       { return n.Ident }
func (n *NodeData) Header() Header           { return n.Head }
func (n *NodeData) Components() []*Component { return n.Comps }

func (n *NodeData) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, k := range n.Kids {
			if k == nil {
				continue
			}
			if !yield(k) {
				return
			}
		}
	}
}

// SceneHeader holds scene-wide settings.
type SceneHeader struct {
	Name           string         `yaml:"name"`
	AssetPath      string         `yaml:"assetPath"`
	RenderSettings RenderSettings `yaml:"renderSettings"`
	Skybox         *Material      `yaml:"skybox"`
}

// Source is one opened scene.
type Source interface {
	Header() SceneHeader
	Roots() iter.Seq[Node]
}

// Scene is the plain-data Source.
type Scene struct {
	SceneHeader `yaml:",inline"`
	RootNodes   []*NodeData `yaml:"roots"`
}

func (s *Scene) Header() SceneHeader { return s.SceneHeader }

func (s *Scene) Roots() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, r := range s.RootNodes {
			if r == nil {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// Opener resolves scene paths to sources.
type Opener interface {
	Exists(scenePath string) bool
	Open(scenePath string) (Source, error)
}

// SceneNameFromPath strips the directory and any .scene.yaml / .unity suffix.
func SceneNameFromPath(scenePath string) string {
	base := path.Base(strings.ReplaceAll(scenePath, "\\", "/"))
	for _, suffix := range []string{".scene.yaml", ".scene.yml", ".unity"} {
		if len(base) > len(suffix) && strings.EqualFold(base[len(base)-len(suffix):], suffix) {
			return base[:len(base)-len(suffix)]
		}
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
