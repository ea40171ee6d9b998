package verify

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneexport/internal/config"
	"sceneexport/internal/manifest"
	"sceneexport/internal/pipeline"
)

const scene = `
roots:
  - name: Crate
    persistentId: "10"
    components:
      - meshFilter:
          mesh: {name: Cube, primitive: cube}
      - meshRenderer:
          materials:
            - name: Wood
    children:
      - name: Handle
        persistentId: "11"
  - name: Lamp
    persistentId: "20"
    components:
      - light: {type: Point, color: [1, 0.9, 0.8], intensity: 2, range: 5}
`

func exportBundle(t *testing.T) string {
	t.Helper()
	project := filepath.Join(t.TempDir(), "Verify Game")
	for name, content := range map[string]string{
		"Assets/Scenes/Main.scene.yaml": scene,
		"Assets/Audio/Click.wav":        "RIFF0000WAVEfmt ",
	} {
		full := filepath.Join(project, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	opts := config.DefaultOptions()
	opts.ProjectRoot = project
	opts.OutputRoot = t.TempDir()
	opts.SceneSelection = config.Explicit
	opts.ScenePaths = []string{"Assets/Scenes/Main.scene.yaml"}
	opts.AssetScope = config.AllAssets

	res, err := pipeline.Run(context.Background(), opts, pipeline.Deps{})
	require.NoError(t, err)
	require.Empty(t, res.Report.Errors)
	return res.BundleRoot
}

func editJSON(t *testing.T, root, name string, fn func(doc map[string]any)) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	fn(doc)
	raw, err = json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}

func messages(r *Result) []string {
	out := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		out = append(out, f.String())
	}
	return out
}

func TestBundlePassesAfterExport(t *testing.T) {
	root := exportBundle(t)
	res, err := Bundle(context.Background(), root, nil)
	require.NoError(t, err)
	assert.True(t, res.OK(), "findings: %v", messages(res))
	assert.Positive(t, res.CheckedAssets)
	assert.GreaterOrEqual(t, res.CheckedFiles, 4)
}

func TestBundleDetectsTamperedAsset(t *testing.T) {
	root := exportBundle(t)
	var m manifest.Manifest
	raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(manifest.ManifestPath)))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &m))
	require.NotEmpty(t, m.Assets)
	target := m.Assets[0].RelativePath
	require.NoError(t, os.WriteFile(filepath.Join(root, filepath.FromSlash(target)), []byte("x"), 0o644))

	res, err := Bundle(context.Background(), root, nil)
	require.NoError(t, err)
	require.Len(t, res.Findings, 2)
	assert.Equal(t, target, res.Findings[0].Path)
	assert.Contains(t, res.Findings[0].Message, "byteSize")
	assert.Contains(t, res.Findings[1].Message, "sha256")
}

func TestBundleDetectsSceneProblems(t *testing.T) {
	root := exportBundle(t)
	name := manifest.SceneJSONPath("Main")
	editJSON(t, root, name, func(doc map[string]any) {
		entities := doc["entities"].([]any)
		for i, j := 0, len(entities)-1; i < j; i, j = i+1, j-1 {
			entities[i], entities[j] = entities[j], entities[i]
		}
		entities[0].(map[string]any)["parentStableId"] = "ghost"
	})

	res, err := Bundle(context.Background(), root, nil)
	require.NoError(t, err)
	msgs := messages(res)
	assert.Contains(t, msgs, name+": entities are not ordered by stable id")
	found := false
	for _, f := range res.Findings {
		if f.Path == name && strings.Contains(f.Message, "parent ghost does not exist") {
			found = true
		}
	}
	assert.True(t, found, "findings: %v", msgs)
}

func TestBundleChecksSchemaVersions(t *testing.T) {
	root := exportBundle(t)
	editJSON(t, root, manifest.ManifestPath, func(doc map[string]any) { doc["schemaVersion"] = "2.0.0" })
	editJSON(t, root, manifest.ReportPath, func(doc map[string]any) { doc["schemaVersion"] = "1.0.0" })
	editJSON(t, root, manifest.GameDataPath, func(doc map[string]any) { doc["schemaVersion"] = "one" })

	res, err := Bundle(context.Background(), root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		manifest.ManifestPath + ": schemaVersion 2.0.0 does not satisfy ^1.2.0",
		manifest.ReportPath + ": schemaVersion 1.0.0 does not satisfy ^1.1.0",
		manifest.GameDataPath + `: schemaVersion "one" is not a semantic version`,
	}, messages(res))
}

func TestBundleWithoutManifest(t *testing.T) {
	_, err := Bundle(context.Background(), t.TempDir(), nil)
	assert.Error(t, err)
}

func TestCheckVersion(t *testing.T) {
	c := &checker{result: &Result{}}
	c.checkVersion("a", "1.4.2", ManifestConstraint)
	c.checkVersion("b", "1.1.9", ManifestConstraint)
	c.checkVersion("c", "", SceneConstraint)
	assert.Equal(t, []string{
		"b: schemaVersion 1.1.9 does not satisfy ^1.2.0",
		"c: missing schemaVersion",
	}, messages(c.result))
}
