package collect

import (
	"fmt"
	"strings"

	"sceneexport/internal/contentstore"
	"sceneexport/internal/producer"
	"sceneexport/internal/sceneir"
)

// first returns the first component of n for which pick yields a payload.
func first[T any](n producer.Node, pick func(*producer.Component) *T) (*producer.Component, *T) {
	for _, c := range n.Components() {
		if c == nil || c.Missing {
			continue
		}
		if p := pick(c); p != nil {
			return c, p
		}
	}
	return nil, nil
}

func (s *sceneRun) collectModel(n *nodeCtx, e *sceneir.Entity) error {
	rc, renderer := first(n.node, func(c *producer.Component) *producer.MeshRenderer { return c.MeshRenderer })
	_, filter := first(n.node, func(c *producer.Component) *producer.MeshFilter { return c.MeshFilter })
	if renderer == nil || filter == nil || filter.Mesh == nil {
		return nil
	}
	mesh := filter.Mesh
	model := &sceneir.Model{
		Enabled:        rc.IsEnabled(),
		CastShadows:    renderer.CastsShadows(),
		ReceiveShadows: renderer.ReceivesShadows(),
		IsStatic:       n.header.Static,
		MeshSource:     mesh.Path,
	}
	rel, baked, err := s.resolveMesh(mesh, n.stableID, n.name+"_mesh")
	if err != nil {
		return err
	}
	model.MeshAssetRelativePath = rel
	model.MeshWasBaked = baked

	var mat *producer.Material
	if len(renderer.Materials) > 0 {
		if len(renderer.Materials) > 1 {
			s.warn("MeshRenderer with multiple materials detected on " + n.path + ". Only first material is mapped to ModelComponent.")
		}
		mat = renderer.Materials[0]
	}
	if model.Material, err = s.buildMaterial(mat, n.name); err != nil {
		return err
	}
	e.Model = model
	return nil
}

// resolveMesh exports the mesh file when it is the main asset of a model
// file and bakes an OBJ otherwise.
func (s *sceneRun) resolveMesh(mesh *producer.Mesh, key, fallbackName string) (string, bool, error) {
	if mesh == nil {
		return "", false, nil
	}
	if strings.TrimSpace(mesh.Path) != "" {
		kind, ok := contentstore.ClassifyByPath(mesh.Path)
		if ok && kind == contentstore.KindModel && !mesh.SubAsset {
			rel, err := s.store.ExportAssetPath(mesh.Path, contentstore.KindModel)
			return rel, false, err
		}
		s.reportOnly("Mesh sub-asset fallback to baked OBJ for " + mesh.Name + " from " + mesh.Path)
	}
	rel, err := s.store.ExportBakedMesh(key, mesh.Resolve(), fallbackName)
	return rel, true, err
}

func (s *sceneRun) collectLight(n *nodeCtx, e *sceneir.Entity) error {
	lc, light := first(n.node, func(c *producer.Component) *producer.Light { return c.Light })
	if light == nil {
		return nil
	}
	color := vec3(light.Color)
	switch strings.ToLower(light.Type) {
	case "directional":
		e.DirectionalLight = &sceneir.DirectionalLight{
			Enabled:     lc.IsEnabled(),
			Color:       color,
			Intensity:   sceneir.Float(light.Intensity),
			CastShadows: light.CastsShadows(),
		}
	case "point":
		e.PointLight = &sceneir.PointLight{
			Enabled:     lc.IsEnabled(),
			Color:       color,
			Intensity:   sceneir.Float(light.Intensity),
			Radius:      sceneir.Float(light.Range),
			CastShadows: light.CastsShadows(),
		}
	case "spot":
		e.SpotLight = &sceneir.SpotLight{
			Enabled:               lc.IsEnabled(),
			Color:                 color,
			Intensity:             sceneir.Float(light.Intensity),
			Range:                 sceneir.Float(light.Range),
			InnerConeAngleDegrees: sceneir.Float(light.InnerSpotAngle),
			OuterConeAngleDegrees: sceneir.Float(light.SpotAngle),
			CastShadows:           light.CastsShadows(),
		}
	default:
		s.warn(fmt.Sprintf("Unsupported light type on %s: %s", n.path, light.Type))
	}
	return nil
}

func (s *sceneRun) collectReflectionProbe(n *nodeCtx, e *sceneir.Entity) error {
	pc, probe := first(n.node, func(c *producer.Component) *producer.ReflectionProbe { return c.ReflectionProbe })
	if probe == nil {
		return nil
	}
	tex := probe.CustomBakedTexture
	if tex == nil {
		tex = probe.Texture
	}
	var cubemapPath string
	if tex != nil && tex.Path != "" && !contentstore.IsBakedOrTransient(tex.Path) {
		rel, err := s.exportTexture(tex, contentstore.KindTexture, n.name+"_reflection_probe")
		if err != nil {
			return err
		}
		cubemapPath = rel
	}
	if cubemapPath != "" {
		s.warn("ReflectionProbe exported as texture path on " + n.path +
			". CyberEngine reflection probe import fallback may require custom cubemap handling.")
	}
	e.ReflectionProbe = &sceneir.ReflectionProbe{
		Enabled:     pc.IsEnabled(),
		IsBaked:     !strings.EqualFold(probe.RefreshMode, "EveryFrame"),
		Intensity:   sceneir.Float(probe.Intensity),
		Size:        vec3(probe.Size),
		Center:      vec3(probe.Center),
		CubemapPath: cubemapPath,
	}
	return nil
}

func (s *sceneRun) collectCamera(n *nodeCtx, e *sceneir.Entity) error {
	cc, cam := first(n.node, func(c *producer.Component) *producer.Camera { return c.Camera })
	if cam == nil {
		return nil
	}
	aspect := cam.Aspect
	if aspect <= 0 {
		aspect = sceneir.DefaultCameraAspect
	}
	e.Camera = &sceneir.Camera{
		Enabled:   cc.IsEnabled(),
		FOV:       sceneir.Float(cam.FieldOfView),
		NearPlane: sceneir.Float(cam.NearClip),
		FarPlane:  sceneir.Float(cam.FarClip),
		Aspect:    sceneir.Float(aspect),
		IsActive:  cc.IsEnabled() && n.active,
	}
	return nil
}

func (s *sceneRun) collectRigidbody(n *nodeCtx, e *sceneir.Entity) error {
	_, body := first(n.node, func(c *producer.Component) *producer.Rigidbody { return c.Rigidbody })
	if body == nil {
		return nil
	}
	e.Rigidbody = &sceneir.Rigidbody{
		IsKinematic:        body.IsKinematic,
		UseGravity:         body.UseGravity,
		MaxLinearVelocity:  sceneir.Float(body.MaxLinearVelocity),
		MaxAngularVelocity: sceneir.Float(body.MaxAngularVelocity),
		CenterOfMass:       vec3(body.CenterOfMass),
		LinearVelocity:     vec3(body.LinearVelocity),
		AngularVelocity:    vec3(body.AngularVelocity),
	}
	return nil
}

// collectColliders maps the first collider of each shape.
func (s *sceneRun) collectColliders(n *nodeCtx, e *sceneir.Entity) error {
	for _, c := range n.node.Components() {
		if c == nil || c.Missing {
			continue
		}
		switch {
		case c.BoxCollider != nil && e.BoxCollider == nil:
			e.BoxCollider = &sceneir.BoxCollider{
				Enabled:   c.IsEnabled(),
				IsTrigger: c.BoxCollider.IsTrigger,
				Size:      vec3(c.BoxCollider.Size),
				Offset:    vec3(c.BoxCollider.Center),
			}
		case c.SphereCollider != nil && e.SphereCollider == nil:
			e.SphereCollider = &sceneir.SphereCollider{
				Enabled:   c.IsEnabled(),
				IsTrigger: c.SphereCollider.IsTrigger,
				Radius:    sceneir.Float(c.SphereCollider.Radius),
				Offset:    vec3(c.SphereCollider.Center),
			}
		case c.CapsuleCollider != nil && e.CapsuleCollider == nil:
			capsule := c.CapsuleCollider
			if capsule.Direction != sceneir.CapsuleAxisY {
				s.warn("CapsuleCollider direction != Y fallback on " + n.path)
			}
			e.CapsuleCollider = &sceneir.CapsuleCollider{
				Enabled:   c.IsEnabled(),
				IsTrigger: capsule.IsTrigger,
				Radius:    sceneir.Float(capsule.Radius),
				Height:    sceneir.Float(capsule.Height),
				Direction: capsule.Direction,
				Offset:    vec3(capsule.Center),
			}
		case c.MeshCollider != nil && e.MeshCollider == nil:
			mc := c.MeshCollider
			rel, baked, err := s.resolveMesh(mc.Mesh, n.stableID+"_meshcol", n.name+"_mesh_collider")
			if err != nil {
				return err
			}
			var source string
			if mc.Mesh != nil {
				source = mc.Mesh.Path
			}
			e.MeshCollider = &sceneir.MeshCollider{
				Enabled:               c.IsEnabled(),
				IsTrigger:             mc.IsTrigger,
				Scale:                 sceneir.V3(1, 1, 1),
				Offset:                sceneir.V3(0, 0, 0),
				MeshAssetRelativePath: rel,
				MeshWasBaked:          baked,
				MeshSource:            source,
			}
		}
	}
	return nil
}

func (s *sceneRun) collectAudio(n *nodeCtx, e *sceneir.Entity) error {
	ac, src := first(n.node, func(c *producer.Component) *producer.AudioSource { return c.AudioSource })
	if src == nil {
		return nil
	}
	var clipPath string
	if obj := assetObject(src.Clip); obj != nil {
		rel, err := s.store.ExportObject(obj, contentstore.KindAudio, n.name+"_audio")
		if err != nil {
			return err
		}
		clipPath = rel
	}
	e.AudioSource = &sceneir.AudioSource{
		Enabled:     ac.IsEnabled(),
		ClipPath:    clipPath,
		Volume:      sceneir.Float(src.Volume),
		Pitch:       sceneir.Float(src.Pitch),
		Loop:        src.Loop,
		PlayOnAwake: src.PlayOnAwake,
		Spatialize:  src.Spatialize,
	}
	if stub, ok := s.unifier.EnsureAudioStub(e.AudioSource); ok {
		e.CustomComponents = append(e.CustomComponents, stub)
	}
	return nil
}
