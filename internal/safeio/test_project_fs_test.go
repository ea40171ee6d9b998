package safeio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sceneexport/internal/cache/memory"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestProjectFSReadsAssetPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Assets", "Tex", "a.png"), "png")

	cache := memory.NewFileCache(8, 0)
	pfs, err := NewProjectFS(dir, cache)
	if err != nil {
		t.Fatalf("NewProjectFS: %v", err)
	}
	if !pfs.Exists("Assets/Tex/a.png") {
		t.Fatalf("expected asset to exist")
	}
	if !pfs.Exists(`Assets\Tex\a.png`) {
		t.Fatalf("backslash paths should resolve")
	}
	for i := 0; i < 2; i++ {
		got, err := pfs.ReadFile("Assets/Tex/a.png")
		if err != nil || string(got) != "png" {
			t.Fatalf("ReadFile: %q %v", got, err)
		}
	}
	if cache.Stats().Hits != 1 {
		t.Fatalf("expected second read to hit cache, stats=%+v", cache.Stats())
	}
	if pfs.Exists("Assets/Tex/missing.png") {
		t.Fatalf("missing file reported as existing")
	}
}

func TestProjectFSRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	pfs, err := NewProjectFS(dir, nil)
	if err != nil {
		t.Fatalf("NewProjectFS: %v", err)
	}
	if _, err := pfs.ReadFile("../outside.txt"); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("expected ErrOutsideRoot, got %v", err)
	}
	if _, err := pfs.ReadFile(""); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("expected ErrEmptyPath, got %v", err)
	}
}

func TestProjectFSRel(t *testing.T) {
	dir := t.TempDir()
	pfs, err := NewProjectFS(dir, nil)
	if err != nil {
		t.Fatalf("NewProjectFS: %v", err)
	}
	rel, err := pfs.Rel(filepath.Join(pfs.Root(), "Assets", "Scenes", "Main.scene.yaml"))
	if err != nil || rel != "Assets/Scenes/Main.scene.yaml" {
		t.Fatalf("Rel: %q %v", rel, err)
	}
}
