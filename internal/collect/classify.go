package collect

import (
	"strings"

	"sceneexport/internal/audit"
	"sceneexport/internal/producer"
	"sceneexport/internal/sceneir"
)

// ExporterTypeName is the authoring component that drives exports from
// inside the host; it never becomes part of the scene.
const ExporterTypeName = "SceneExport.SceneExporter"

// nativeTypes are mapped onto IR payloads. Every host collider counts,
// including shapes that have no payload of their own.
var nativeTypes = map[string]struct{}{
	producer.TypeTransform:        {},
	producer.TypeMeshFilter:       {},
	producer.TypeMeshRenderer:     {},
	producer.TypeLight:            {},
	producer.TypeReflectionProbe:  {},
	producer.TypeCamera:           {},
	producer.TypeRigidbody:        {},
	producer.TypeBoxCollider:      {},
	producer.TypeSphereCollider:   {},
	producer.TypeCapsuleCollider:  {},
	producer.TypeMeshCollider:     {},
	producer.TypeTerrain:          {},
	producer.TypeAudioSource:      {},
	"UnityEngine.TerrainCollider": {},
	"UnityEngine.WheelCollider":   {},
}

func isNativeMapped(c *producer.Component) bool {
	_, ok := nativeTypes[c.TypeName()]
	return ok
}

func isBuiltin(c *producer.Component) bool {
	ns := c.Namespace()
	if strings.HasPrefix(ns, "UnityEngine") || strings.HasPrefix(ns, "UnityEditor") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(c.Assembly), "unity")
}

// isAuthoringOnly matches editor-side modelling components whose result is
// already exported through the mesh renderer.
func isAuthoringOnly(c *producer.Component) bool {
	if c.TypeName() == ExporterTypeName {
		return true
	}
	ns := c.Namespace()
	if strings.HasPrefix(ns, "UnityEngine.ProBuilder") || strings.HasPrefix(ns, "UnityEditor.ProBuilder") {
		return true
	}
	return strings.EqualFold(c.Assembly, "Unity.ProBuilder") || strings.EqualFold(c.Assembly, "UnityEditor.ProBuilder")
}

func classify(c *producer.Component) string {
	switch {
	case isNativeMapped(c):
		return audit.NativeMapped
	case isAuthoringOnly(c):
		return audit.IgnoredAuthoring
	case isBuiltin(c):
		return audit.UnsupportedBuiltin
	default:
		return audit.CustomStub
	}
}

// collectCustomComponents classifies every component for the audit and turns
// script components into custom component instances.
func (s *sceneRun) collectCustomComponents(n *nodeCtx, e *sceneir.Entity) error {
	for _, c := range n.node.Components() {
		if c == nil || c.Missing || c.TypeName() == "" {
			s.reportOnly("Missing script component on " + n.path)
			continue
		}
		typeName := c.TypeName()
		class := classify(c)
		s.audit.Record(audit.Usage{
			TypeName:        typeName,
			Classification:  class,
			IsBuiltin:       isBuiltin(c),
			IsMonoBehaviour: c.MonoBehaviour,
			SceneName:       s.doc.SceneName,
			TransformPath:   n.path,
		})

		switch class {
		case audit.UnsupportedBuiltin:
			if _, seen := s.unsupportedWarned[typeName]; !seen {
				s.unsupportedWarned[typeName] = struct{}{}
				s.warn("Unsupported built-in component: " + typeName + " on " + n.path)
			}
		case audit.CustomStub:
			if c.MonoBehaviour {
				if inst, ok := s.unifier.Collect(c); ok {
					e.CustomComponents = append(e.CustomComponents, inst)
				}
				continue
			}
			if _, seen := s.nonMonoWarned[typeName]; !seen {
				s.nonMonoWarned[typeName] = struct{}{}
				s.warn("Custom non-MonoBehaviour component skipped: " + typeName + " on " + n.path)
			}
		}
	}
	return nil
}
