package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneexport/internal/config"
	"sceneexport/internal/pipeline"
)

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Assets", "Scenes"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Library"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Assets", "Scenes", "Main.scene.yaml"), []byte("roots: []\n"), 0o644))
	return root
}

func countingRunner(calls chan<- config.Options) RunFunc {
	return func(_ context.Context, opts config.Options, deps pipeline.Deps) (*pipeline.Result, error) {
		calls <- opts
		return nil, nil
	}
}

func waitCall(t *testing.T, calls <-chan config.Options) {
	t.Helper()
	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("export did not run")
	}
}

func TestWatcherDebouncesChanges(t *testing.T) {
	root := newProject(t)
	opts := config.DefaultOptions()
	opts.ProjectRoot = root
	opts.OutputRoot = filepath.Join(root, "Export")

	calls := make(chan config.Options, 8)
	w, err := New(Options{Export: opts, Debounce: 100 * time.Millisecond, Runner: countingRunner(calls)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitCall(t, calls)

	scene := filepath.Join(root, "Assets", "Scenes", "Main.scene.yaml")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(scene, []byte("roots: []\n# edit\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}
	waitCall(t, calls)

	select {
	case <-calls:
		t.Fatal("burst of writes triggered more than one export")
	case <-time.After(400 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := newProject(t)
	opts := config.DefaultOptions()
	opts.ProjectRoot = root

	calls := make(chan config.Options, 8)
	w, err := New(Options{Export: opts, Debounce: 50 * time.Millisecond, Runner: countingRunner(calls)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	waitCall(t, calls)

	dir := filepath.Join(w.root, "Assets", "Levels")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	waitCall(t, calls)

	assert.Eventually(t, func() bool { return w.isWatched(dir) }, 2*time.Second, 20*time.Millisecond)
}

func TestRelevantFiltersNoise(t *testing.T) {
	root := newProject(t)
	opts := config.DefaultOptions()
	opts.ProjectRoot = root
	opts.OutputRoot = filepath.Join(root, "Export")
	w, err := New(Options{Export: opts, Runner: countingRunner(make(chan config.Options, 1))})
	require.NoError(t, err)
	defer w.Close()

	at := func(rel string, op fsnotify.Op) fsnotify.Event {
		return fsnotify.Event{Name: filepath.Join(w.root, filepath.FromSlash(rel)), Op: op}
	}
	assert.True(t, w.relevant(at("Assets/Scenes/Main.scene.yaml", fsnotify.Write)))
	assert.True(t, w.relevant(at("Assets/Tex/a.png", fsnotify.Create)))
	assert.False(t, w.relevant(at("Assets/Scenes/Main.scene.yaml", fsnotify.Chmod)))
	assert.False(t, w.relevant(at("Library/cache.bin", fsnotify.Write)))
	assert.False(t, w.relevant(at(".git/index", fsnotify.Write)))
	assert.False(t, w.relevant(at("Export/Game/manifest.json", fsnotify.Write)))
	assert.False(t, w.relevant(at("Assets/Scenes/Main.scene.yaml~", fsnotify.Write)))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(filepath.Dir(w.root), "elsewhere"), Op: fsnotify.Write}))
}
