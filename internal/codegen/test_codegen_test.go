package codegen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneexport/internal/sceneir"
)

func fixtureDoc() *sceneir.SceneDocument {
	brick := &sceneir.Material{StableID: "mat_1", Name: "Brick", DiffuseTexture: "assets/textures/a.png"}
	return &sceneir.SceneDocument{
		SceneName: "Main",
		Entities: []*sceneir.Entity{
			{StableID: "go_b", Name: "Cube", Model: &sceneir.Model{MeshAssetRelativePath: "assets/models/cube.obj", Material: brick}},
			{StableID: "go_a", Name: "Child", ParentStableID: "go_b", Model: &sceneir.Model{
				MeshAssetRelativePath: "assets/models/cube.obj",
				Material:              &sceneir.Material{StableID: "mat_1", Name: "Copy"},
			}},
			{
				StableID:        "go_c",
				Name:            "Probe",
				MeshCollider:    &sceneir.MeshCollider{MeshAssetRelativePath: "assets/models/col.obj"},
				ReflectionProbe: &sceneir.ReflectionProbe{CubemapPath: "assets/textures/probe.png"},
			},
		},
	}
}

func TestPlanNumbersSortedDistinctResources(t *testing.T) {
	doc := fixtureDoc()
	p := NewPlan(doc)

	ids := make([]string, 0, len(p.Entities))
	for _, e := range p.Entities {
		ids = append(ids, e.StableID)
	}
	assert.Equal(t, []string{"go_a", "go_b", "go_c"}, ids)
	assert.Equal(t, "go_b", doc.Entities[0].StableID, "document order must be untouched")

	assert.Equal(t, []Resource{{Path: "assets/textures/a.png", Index: 0}, {Path: "assets/textures/probe.png", Index: 1}}, p.Textures)
	assert.Equal(t, []Resource{{Path: "assets/models/col.obj", Index: 0}, {Path: "assets/models/cube.obj", Index: 1}}, p.Meshes)

	require.Len(t, p.Materials, 1)
	assert.Equal(t, "mat_1", p.Materials[0].Key)
	assert.Equal(t, "Copy", p.Materials[0].Material.Name, "first instance in id order wins")

	i, ok := p.MeshIndex("assets/models/cube.obj")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = p.TextureIndex("")
	assert.False(t, ok)
	_, ok = p.TextureIndex("assets/textures/missing.png")
	assert.False(t, ok)
	i, ok = p.MaterialIndex(&sceneir.Material{StableID: "mat_1"})
	assert.True(t, ok)
	assert.Equal(t, 0, i)
	assert.False(t, p.HasCustomComponents())
}

func TestPlanIsOrderIndependent(t *testing.T) {
	a := fixtureDoc()
	b := fixtureDoc()
	b.Entities[0], b.Entities[2] = b.Entities[2], b.Entities[0]

	pa, pb := NewPlan(a), NewPlan(b)
	assert.Equal(t, pa.Textures, pb.Textures)
	assert.Equal(t, pa.Meshes, pb.Meshes)
	assert.Equal(t, pa.Materials[0].Key, pb.Materials[0].Key)
}

func TestBufferRender(t *testing.T) {
	b := NewBuffer("    ")
	b.Line("#include <x>")
	b.Blank()
	b.Open("void f()")
	b.Line("if (a)")
	b.Indent()
	b.Line("g();")
	b.Dedent()
	b.Open("")
	b.Linef("int n = %d;", 3)
	b.Close("")
	b.Close(";")

	want := "#include <x>\n\nvoid f()\n{\n    if (a)\n        g();\n    {\n        int n = 3;\n    }\n};\n"
	assert.Equal(t, want, b.Render())
	assert.Equal(t, 10, b.Len())
	assert.Equal(t, Stmt{Depth: 2, Text: "int n = 3;"}, b.Statements()[7])
}

type recorder struct {
	calls  []string
	failAt Stage
}

func (r *recorder) step(s Stage, detail string) error {
	r.calls = append(r.calls, s.String()+detail)
	if r.failAt == s {
		return errors.New("boom")
	}
	return nil
}

func (r *recorder) Preamble(*sceneir.SceneDocument, *Plan) error { return r.step(StagePreamble, "") }
func (r *recorder) SharedResources(*Plan) error                  { return r.step(StageSharedResources, "") }
func (r *recorder) Entity(i int, e *sceneir.Entity) error {
	return r.step(StageEntities, fmt.Sprintf(" %d %s", i, e.StableID))
}
func (r *recorder) HierarchyLinks([]*sceneir.Entity) error { return r.step(StageHierarchyLinks, "") }
func (r *recorder) Epilogue() error                        { return r.step(StageEpilogue, "") }

func TestEmitStageOrder(t *testing.T) {
	r := &recorder{failAt: -1}
	plan, err := Emit(fixtureDoc(), r)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, []string{
		"preamble",
		"shared resources",
		"entities 0 go_a",
		"entities 1 go_b",
		"entities 2 go_c",
		"hierarchy links",
		"epilogue",
	}, r.calls)
}

func TestEmitStopsAtFailingStage(t *testing.T) {
	r := &recorder{failAt: StageHierarchyLinks}
	_, err := Emit(fixtureDoc(), r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Main hierarchy links")
	assert.NotContains(t, r.calls, "epilogue")

	_, err = Emit(nil, r)
	assert.Error(t, err)
}
