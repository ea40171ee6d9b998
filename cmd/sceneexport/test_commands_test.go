package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneexport/internal/config"
)

func TestBundleRoot(t *testing.T) {
	cfg := &config.Config{Export: config.DefaultOptions(), Args: []string{"some/bundle"}}
	root, err := bundleRoot(cfg)
	require.NoError(t, err)
	assert.Equal(t, "some/bundle", root)

	out := t.TempDir()
	cfg = &config.Config{Export: config.DefaultOptions()}
	cfg.Export.OutputRoot = out
	cfg.Export.ProductName = "My Game"
	root, err = bundleRoot(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "My Game"), root)

	cfg.Export.OutputRoot = " "
	_, err = bundleRoot(cfg)
	assert.Error(t, err)
}

func TestOpenStoreRequiresTarget(t *testing.T) {
	_, _, err := openStore(context.Background(), &config.Config{})
	assert.Error(t, err)

	_, _, err = openStore(context.Background(), &config.Config{Publish: config.PublishPostgres})
	assert.Error(t, err)

	_, _, err = openStore(context.Background(), &config.Config{Publish: config.PublishS3})
	assert.Error(t, err, "s3 needs an endpoint")

	store, release, err := openStore(context.Background(), &config.Config{Publish: config.PublishMemory})
	require.NoError(t, err)
	release()
	assert.NotNil(t, store)
}

func TestExportThenVerifyAndPublish(t *testing.T) {
	project := filepath.Join(t.TempDir(), "Cli Game")
	scene := filepath.Join(project, "Assets", "Scenes", "Main.scene.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(scene), 0o755))
	require.NoError(t, os.WriteFile(scene, []byte("roots:\n  - name: Root\n    persistentId: \"1\"\n"), 0o644))

	cfg := &config.Config{Export: config.DefaultOptions(), Publish: config.PublishMemory}
	cfg.Export.ProjectRoot = project
	cfg.Export.ProductName = "Cli Game"
	cfg.Export.OutputRoot = t.TempDir()
	cfg.Export.SceneSelection = config.Explicit
	cfg.Export.ScenePaths = []string{"Assets/Scenes/Main.scene.yaml"}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	require.NoError(t, runExport(context.Background(), cfg, logger))
	require.NoError(t, runVerify(context.Background(), cfg, logger))
	require.NoError(t, runPublish(context.Background(), cfg, logger))
}
