package bundlefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrepareCreatesLayoutAndCleans(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Game")
	b := New(root)
	if err := b.Prepare(false); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	for _, dir := range Layout {
		if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(dir))); err != nil || !info.IsDir() {
			t.Fatalf("missing layout dir %s: %v", dir, err)
		}
	}
	if err := b.WriteFile("assets/data/stale.txt", []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := b.Prepare(true); err != nil {
		t.Fatalf("Prepare clean: %v", err)
	}
	if b.Exists("assets/data/stale.txt") {
		t.Fatalf("clean prepare should remove previous files")
	}
}

func TestWriteListAndReject(t *testing.T) {
	b := New(t.TempDir())
	if err := b.WriteFile("assets/textures/a.png", []byte("a")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := b.WriteFile("game/src/main.cpp", []byte("b")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	files, err := b.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 2 || files[0] != "assets/textures/a.png" || files[1] != "game/src/main.cpp" {
		t.Fatalf("unexpected listing: %v", files)
	}
	if err := b.WriteFile("../escape.txt", []byte("x")); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	got, err := b.ReadFile("assets/textures/a.png")
	if err != nil || string(got) != "a" {
		t.Fatalf("ReadFile: %q %v", got, err)
	}
}
