package producer

import (
	"fmt"
	"strings"
)

// Fixtures is an in-memory Opener keyed by scene path.
type Fixtures map[string]*Scene

func (f Fixtures) Exists(scenePath string) bool {
	_, ok := f.lookup(scenePath)
	return ok
}

func (f Fixtures) Open(scenePath string) (Source, error) {
	scene, ok := f.lookup(scenePath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSceneNotFound, scenePath)
	}
	if scene.Name == "" {
		scene.Name = SceneNameFromPath(scenePath)
	}
	if scene.AssetPath == "" {
		scene.AssetPath = scenePath
	}
	return scene, nil
}

func (f Fixtures) lookup(scenePath string) (*Scene, bool) {
	for k, v := range f {
		if strings.EqualFold(k, scenePath) && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Walk visits n and its descendants depth-first, parents before children.
func Walk(n Node, visit func(node Node, depth int) bool) {
	walk(n, 0, visit)
}

func walk(n Node, depth int, visit func(Node, int) bool) bool {
	if n == nil || !visit(n, depth) {
		return false
	}
	for child := range n.Children() {
		if !walk(child, depth+1, visit) {
			return false
		}
	}
	return true
}

func Bool(v bool) *bool { return &v }
