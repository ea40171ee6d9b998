package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() Options {
	o := DefaultOptions()
	o.OutputRoot = "out"
	o.ScenePaths = []string{"Assets/Scenes/Main.scene.yaml"}
	return o
}

func TestValidateReportsFirstProblem(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
		want   string
	}{
		{"output root", func(o *Options) { o.OutputRoot = "  "; o.ScenePaths = nil }, "Output root is empty."},
		{"build settings", func(o *Options) { o.ScenePaths = nil }, "No scenes were selected for export. BuildSettings mode resolved zero enabled scenes."},
		{"explicit", func(o *Options) { o.ScenePaths = nil; o.SceneSelection = Explicit }, "No scenes were selected for export."},
		{"no output", func(o *Options) { o.GenerateCpp = false; o.GenerateJSON = false }, "At least one output mode must be enabled (C++ or JSON)."},
		{"json required", func(o *Options) { o.ConvertSceneToCpp = false; o.GenerateJSON = false }, "JSON output is required when convertSceneToCpp is disabled."},
		{"project needs cpp", func(o *Options) { o.GenerateCpp = false }, "C++ project generation requires generateCpp=true."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.mutate(&o)
			err := o.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	o := validOptions()
	o.BaseSceneClass = " "
	o.GeneratedProjectName = ""
	require.NoError(t, o.Validate())
	assert.Equal(t, "Scene", o.BaseSceneClass)
	assert.Equal(t, "UnityExportedProject", o.GeneratedProjectName)

	snap := o.Snapshot()
	assert.Equal(t, "DependenciesOnly", snap.AssetScope)
	assert.Equal(t, "BuildSettings", snap.SceneSelectionMode)
	assert.True(t, snap.CleanOutput)
}

func TestResolveScenePaths(t *testing.T) {
	build := []string{"Assets\\Scenes\\A.scene.yaml", "Assets/Scenes/B.scene.yaml"}
	explicit := []string{"assets/scenes/a.scene.yaml", " ", "Assets/Scenes/C.scene.yaml"}

	assert.Equal(t, []string{"Assets/Scenes/A.scene.yaml", "Assets/Scenes/B.scene.yaml", "Assets/Scenes/C.scene.yaml"},
		ResolveScenePaths(BuildSettings, build, explicit))
	assert.Equal(t, []string{"assets/scenes/a.scene.yaml", "Assets/Scenes/C.scene.yaml"},
		ResolveScenePaths(Explicit, build, explicit))
}

func TestResolveGeneratedProjectName(t *testing.T) {
	assert.Equal(t, "Custom", ResolveGeneratedProjectName("Custom", "Game"))
	assert.Equal(t, "My_GameExported", ResolveGeneratedProjectName("", "My Game"))
	assert.Equal(t, "UnityExportedExported", ResolveGeneratedProjectName("", ""))
}

func TestParseEnums(t *testing.T) {
	scope, err := ParseAssetScope("allassets")
	require.NoError(t, err)
	assert.Equal(t, AllAssets, scope)
	mode, err := ParseSceneSelection("ExplicitList")
	require.NoError(t, err)
	assert.Equal(t, Explicit, mode)

	_, err = ParseAssetScope("everything")
	assert.Error(t, err)
}

func TestParseArgsJSON(t *testing.T) {
	ov, err := ParseArgsJSON(`{"outputRoot":"dist","scenes":["Assets\\A.scene.yaml"],"generateCpp":false}`)
	require.NoError(t, err)
	o := DefaultOptions()
	require.NoError(t, ov.Apply(&o))
	assert.Equal(t, "dist", o.OutputRoot)
	assert.Equal(t, []string{"Assets/A.scene.yaml"}, o.ScenePaths)
	assert.Equal(t, BuildSettings, o.SceneSelection, "payload scenes keep the selection mode")
	assert.False(t, o.GenerateCpp)
	assert.True(t, o.GenerateJSON, "absent fields stay untouched")

	_, err = ParseArgsJSON(`{"outputRoot":"dist","unknown":1}`)
	assert.Error(t, err)

	ov, err = ParseArgsJSON(`{"assetScope":"bogus"}`)
	require.NoError(t, err)
	assert.Error(t, ov.Apply(&o))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SCENEEXPORT_CONFIG", "SCENEEXPORT_OUTPUT_ROOT", "SCENEEXPORT_SCENES", "SCENEEXPORT_LOG_LEVEL",
		"SCENEEXPORT_PUBLISH", "SCENEEXPORT_GENERATE_CPP", "SCENEEXPORT_PROJECT_ROOT", "SCENEEXPORT_PRODUCT_NAME",
		"ARTIFACT_S3_ENDPOINT", "ARTIFACT_S3_REGION", "ARTIFACT_S3_BUCKET", "ARTIFACT_S3_USE_SSL",
		"ARTIFACT_S3_ACCESS_KEY", "MINIO_ROOT_USER", "DATABASE_URL",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadLayersSources(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	project := filepath.Join(dir, "MyGame")
	require.NoError(t, os.MkdirAll(project, 0o755))
	path := filepath.Join(dir, "sceneexport.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
logLevel = "debug"

[export]
projectRoot = "`+filepath.ToSlash(project)+`"
outputRoot = "from-file"
assetScope = "AllAssets"
generateCpp = false
generateCppProject = false

[publish]
target = "s3"
bucket = "file-bucket"
endpoint = "localhost:9000"
useSSL = false
`), 0o644))

	t.Setenv("SCENEEXPORT_OUTPUT_ROOT", "from-env")
	t.Setenv("MINIO_ROOT_USER", "minio")
	t.Setenv("DATABASE_URL", "postgres://localhost/bundles")

	cfg, err := Load("export", []string{
		"-config", path,
		"-args-json", `{"baseSceneClass":"GameScene","generateJson":false,"scenes":["Assets/A.scene.yaml"]}`,
		"-scenes", "Assets/B.scene.yaml;assets/b.scene.yaml",
		"-generate-json=true",
		"-fail-on-error",
		"bundle",
	})
	require.NoError(t, err)

	o := cfg.Export
	assert.Equal(t, "from-env", o.OutputRoot)
	assert.Equal(t, AllAssets, o.AssetScope)
	assert.False(t, o.GenerateCpp)
	assert.False(t, o.GenerateCppProject)
	assert.True(t, o.GenerateJSON)
	assert.Equal(t, "GameScene", o.BaseSceneClass)
	assert.Equal(t, []string{"Assets/B.scene.yaml"}, o.ScenePaths)
	assert.Equal(t, Explicit, o.SceneSelection)
	assert.True(t, o.FailOnError)
	assert.True(t, o.CleanOutput)
	assert.Equal(t, "MyGame", o.ProductName)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, PublishS3, cfg.Publish)
	assert.Equal(t, "file-bucket", cfg.Artifact.Bucket)
	assert.Equal(t, "localhost:9000", cfg.Artifact.Endpoint)
	assert.Equal(t, "us-east-1", cfg.Artifact.Region)
	assert.Equal(t, "minio", cfg.Artifact.AccessKey)
	assert.False(t, cfg.Artifact.UseSSL)
	assert.Equal(t, "postgres://localhost/bundles", cfg.DatabaseURL)
	assert.Equal(t, []string{"bundle"}, cfg.Args)
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("export", nil)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, PublishNone, cfg.Publish)
	assert.Equal(t, BuildSettings, cfg.Export.SceneSelection)
	assert.True(t, cfg.Export.GenerateCpp)
	assert.Equal(t, "sceneexport-bundles", cfg.Artifact.Bucket)
	assert.True(t, cfg.Artifact.UseSSL)
	assert.NotEmpty(t, cfg.Export.ProductName)
}

func TestLoadEnvScenesSwitchSelection(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCENEEXPORT_SCENES", "Assets/A.scene.yaml; Assets/B.scene.yaml")
	t.Setenv("SCENEEXPORT_GENERATE_CPP", "false")
	cfg, err := Load("export", nil)
	require.NoError(t, err)
	assert.Equal(t, Explicit, cfg.Export.SceneSelection)
	assert.Equal(t, []string{"Assets/A.scene.yaml", "Assets/B.scene.yaml"}, cfg.Export.ScenePaths)
	assert.False(t, cfg.Export.GenerateCpp)
}

func TestLoadRejectsBadInput(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[export]\noutputDir = \"x\"\n"), 0o644))
	_, err := Load("export", []string{"-config", path})
	assert.Error(t, err, "unknown TOML keys are rejected")

	_, err = Load("export", []string{"-publish", "ftp"})
	assert.Error(t, err)

	t.Setenv("SCENEEXPORT_GENERATE_CPP", "maybe")
	_, err = Load("export", nil)
	assert.Error(t, err)
}
