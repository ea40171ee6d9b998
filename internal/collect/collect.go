// Package collect assembles scene documents from a producer traversal. One
// Collector lives for a whole export run so that warnings fire once per
// type and the component audit spans every scene.
package collect

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"sceneexport/internal/audit"
	"sceneexport/internal/contentstore"
	"sceneexport/internal/customschema"
	"sceneexport/internal/identity"
	"sceneexport/internal/producer"
	"sceneexport/internal/sceneir"
)

// WarningSink receives run-level warnings. It is expected to de-duplicate.
type WarningSink interface {
	Warn(msg string)
}

type Options struct {
	Store   *contentstore.Store
	Source  contentstore.SourceReader
	Unifier *customschema.Unifier
	Audit   *audit.Accumulator
	Report  WarningSink
	Logger  *slog.Logger
}

type Collector struct {
	store   *contentstore.Store
	source  contentstore.SourceReader
	unifier *customschema.Unifier
	audit   *audit.Accumulator
	report  WarningSink
	logger  *slog.Logger

	unsupportedWarned map[string]struct{}
	nonMonoWarned     map[string]struct{}
}

func New(opts Options) (*Collector, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("content store is nil")
	}
	if opts.Unifier == nil {
		return nil, fmt.Errorf("custom schema unifier is nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	acc := opts.Audit
	if acc == nil {
		acc = audit.NewAccumulator()
	}
	return &Collector{
		store:             opts.Store,
		source:            opts.Source,
		unifier:           opts.Unifier,
		audit:             acc,
		report:            opts.Report,
		logger:            logger.With("component", "collect"),
		unsupportedWarned: make(map[string]struct{}),
		nonMonoWarned:     make(map[string]struct{}),
	}, nil
}

// Audit exposes the usage accumulator shared by every collected scene.
func (c *Collector) Audit() *audit.Accumulator { return c.audit }

// reportOnly records a warning on the run report without attaching it to
// the scene document.
func (c *Collector) reportOnly(msg string) {
	c.logger.Warn(msg)
	if c.report != nil {
		c.report.Warn(msg)
	}
}

// sceneRun is the per-scene state of one CollectScene call.
type sceneRun struct {
	*Collector
	doc *sceneir.SceneDocument
	// ids maps every id handed out to the next sibling suffix to try.
	ids map[string]int
}

// warn attaches msg to the scene document and the run report.
func (s *sceneRun) warn(msg string) {
	s.doc.Warnings = append(s.doc.Warnings, msg)
	s.reportOnly(msg)
}

// nodeCtx is what the component collectors know about the current node.
// active is true when the node and all of its ancestors are active.
type nodeCtx struct {
	node     producer.Node
	header   producer.Header
	name     string
	path     string
	stableID string
	active   bool
}

// CollectScene builds the document for one opened scene. Entities come out
// sorted by stable id with parent links checked.
func (c *Collector) CollectScene(src producer.Source, scenePath string) (*sceneir.SceneDocument, error) {
	if src == nil {
		return nil, fmt.Errorf("scene source is nil")
	}
	header := src.Header()
	name := strings.TrimSpace(header.Name)
	if name == "" {
		name = producer.SceneNameFromPath(scenePath)
	}
	run := &sceneRun{
		Collector: c,
		doc: &sceneir.SceneDocument{
			SchemaVersion:  sceneir.SceneSchemaVersion,
			SceneName:      name,
			SceneAssetPath: scenePath,
			RenderSettings: renderSettings(header.RenderSettings),
			Entities:       []*sceneir.Entity{},
			Warnings:       []string{},
		},
		ids: make(map[string]int),
	}

	if err := run.collectSkybox(header.Skybox); err != nil {
		return nil, err
	}
	for root := range src.Roots() {
		if err := run.collectNode(root, "", nil, true); err != nil {
			return nil, err
		}
	}

	sceneir.SortEntities(run.doc.Entities)
	run.linkHierarchy()
	c.logger.Debug("scene collected", "scene", name, "entities", len(run.doc.Entities), "warnings", len(run.doc.Warnings))
	return run.doc, nil
}

// stableID derives the node id. A node whose id is already taken gets the id
// of path#n for the first n that is still free, so ids stay unique even when
// a sibling is literally named "Cube#1".
func (s *sceneRun) stableID(path, persistentID string) string {
	id := identity.StableID(path, persistentID)
	n, taken := s.ids[id]
	if !taken {
		s.ids[id] = 1
		return id
	}
	for ; ; n++ {
		candidate := identity.StableID(path+"#"+strconv.Itoa(n), persistentID)
		if _, used := s.ids[candidate]; !used {
			s.ids[id] = n + 1
			s.ids[candidate] = 1
			return candidate
		}
	}
}

func (s *sceneRun) collectNode(n producer.Node, parentID string, parentPath []string, parentActive bool) error {
	ident := n.Identity()
	header := n.Header()
	names := append(append([]string(nil), parentPath...), ident.Name)
	path := identity.HierarchyPath(names)

	ctx := &nodeCtx{
		node:     n,
		header:   header,
		name:     ident.Name,
		path:     path,
		stableID: s.stableID(path, ident.PersistentID),
		active:   parentActive && header.IsActive(),
	}
	rot := header.RotationXYZW()
	scale := header.LocalScale()
	entity := &sceneir.Entity{
		StableID:         ctx.stableID,
		ParentStableID:   parentID,
		Name:             ident.Name,
		Tag:              header.Tag,
		IsStatic:         header.Static,
		IsActive:         header.IsActive(),
		LocalPosition:    sceneir.V3(header.Position[0], header.Position[1], header.Position[2]),
		LocalRotation:    sceneir.QuatFromXYZW(rot[0], rot[1], rot[2], rot[3]),
		LocalScale:       sceneir.V3(scale[0], scale[1], scale[2]),
		CustomComponents: []sceneir.CustomComponent{},
	}

	steps := []func(*nodeCtx, *sceneir.Entity) error{
		s.collectModel,
		s.collectLight,
		s.collectReflectionProbe,
		s.collectCamera,
		s.collectRigidbody,
		s.collectColliders,
		s.collectTerrain,
		s.collectAudio,
		s.collectCustomComponents,
	}
	for _, step := range steps {
		if err := step(ctx, entity); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	s.doc.Entities = append(s.doc.Entities, entity)

	for child := range n.Children() {
		if child == nil {
			continue
		}
		if err := s.collectNode(child, ctx.stableID, names, ctx.active); err != nil {
			return err
		}
	}
	return nil
}

// linkHierarchy clears parent references that do not resolve and breaks
// cycles, warning for each.
func (s *sceneRun) linkHierarchy() {
	byID := make(map[string]*sceneir.Entity, len(s.doc.Entities))
	for _, e := range s.doc.Entities {
		byID[e.StableID] = e
	}
	for _, issue := range sceneir.ValidateHierarchy(s.doc.Entities) {
		e, ok := byID[issue.StableID]
		if !ok || e.ParentStableID == "" {
			continue
		}
		s.warn(fmt.Sprintf("Hierarchy link dropped on %s (%s): %s", e.Name, e.StableID, issue.Message))
		e.ParentStableID = ""
	}
}

func renderSettings(rs producer.RenderSettings) sceneir.RenderSettings {
	fogMode := rs.FogMode
	if fogMode == "" {
		fogMode = "ExponentialSquared"
	}
	reflectionMode := rs.DefaultReflectionMode
	if reflectionMode == "" {
		reflectionMode = "Skybox"
	}
	return sceneir.RenderSettings{
		AmbientLight:          vec3(rs.AmbientLight),
		AmbientIntensity:      sceneir.Float(rs.AmbientIntensity),
		FogEnabled:            rs.Fog,
		FogColor:              vec3(rs.FogColor),
		FogDensity:            sceneir.Float(rs.FogDensity),
		FogStartDistance:      sceneir.Float(rs.FogStartDistance),
		FogEndDistance:        sceneir.Float(rs.FogEndDistance),
		FogMode:               fogMode,
		ReflectionIntensity:   sceneir.Float(rs.ReflectionIntensity),
		ReflectionBounces:     rs.ReflectionBounces,
		DefaultReflectionMode: reflectionMode,
	}
}

func vec2(v [2]float32) sceneir.Vec2 { return sceneir.V2(v[0], v[1]) }
func vec3(v [3]float32) sceneir.Vec3 { return sceneir.V3(v[0], v[1], v[2]) }
func vec4(v [4]float32) sceneir.Vec4 { return sceneir.V4(v[0], v[1], v[2], v[3]) }
