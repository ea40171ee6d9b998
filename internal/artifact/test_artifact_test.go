package artifact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneexport/internal/bundlefs"
	"sceneexport/internal/manifest"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "run-1", "/b.txt", []byte("b")))
	require.NoError(t, s.Put(ctx, "run-1", "a.txt", []byte("a")))
	require.NoError(t, s.Put(ctx, "run-2", "a.txt", []byte("other")))

	got, err := s.Get(ctx, "run-1", "b.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)

	got[0] = 'x'
	again, err := s.Get(ctx, "run-1", "b.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), again, "stored bytes are copied")

	paths, err := s.List(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, paths)

	_, err = s.Get(ctx, "run-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, s.Put(ctx, " ", "a.txt", nil))
	assert.Error(t, s.Put(ctx, "run-1", " ", nil))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType("assets/data/manifest.json"))
	assert.Equal(t, "text/plain; charset=utf-8", contentType("game/scenes/MainScene.hpp"))
	assert.Equal(t, "image/png", contentType("assets/textures/a.png"))
	assert.Equal(t, "application/octet-stream", contentType("assets/audio/theme.wav"))
}

func TestPublishUploadsBundle(t *testing.T) {
	old := newRunID
	newRunID = func() string { return "run-fixed" }
	t.Cleanup(func() { newRunID = old })

	root := t.TempDir()
	bundle := bundlefs.New(root)
	require.NoError(t, bundle.WriteFile(manifest.ManifestPath, []byte(`{}`)))
	require.NoError(t, bundle.WriteFile("game/src/main.cpp", []byte("int main() {}")))

	store := NewMemoryStore()
	pub, err := Publish(context.Background(), store, root, nil)
	require.NoError(t, err)
	assert.Equal(t, "run-fixed", pub.RunID)
	assert.Equal(t, int64(15), pub.Bytes)

	paths, err := store.List(context.Background(), "run-fixed")
	require.NoError(t, err)
	assert.Equal(t, []string{manifest.ManifestPath, "game/src/main.cpp"}, paths)
	assert.Equal(t, pub.Files, paths)
}

func TestPublishRequiresManifest(t *testing.T) {
	_, err := Publish(context.Background(), NewMemoryStore(), t.TempDir(), nil)
	assert.Error(t, err)

	_, err = Publish(context.Background(), nil, t.TempDir(), nil)
	assert.Error(t, err)
}
