// Package bundlefs writes the export bundle directory. All names are
// slash-separated paths relative to the bundle root.
package bundlefs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Layout lists the directories every bundle starts with.
var Layout = []string{
	"assets/data/scenes",
	"assets/models",
	"assets/textures",
	"assets/audio",
	"assets/terrains",
	"game/scenes",
	"game/components/generated",
	"game/src",
}

// Bundle is a local directory holding one export.
type Bundle struct {
	root string
}

func New(root string) *Bundle {
	return &Bundle{root: strings.TrimSpace(root)}
}

func (b *Bundle) Root() string {
	if b == nil {
		return ""
	}
	return b.root
}

// Prepare creates the bundle layout, removing any previous content first
// when clean is set.
func (b *Bundle) Prepare(clean bool) error {
	if b == nil || b.root == "" {
		return fmt.Errorf("bundle root is required")
	}
	if clean {
		if err := os.RemoveAll(b.root); err != nil {
			return fmt.Errorf("clean bundle: %w", err)
		}
	}
	for _, dir := range Layout {
		if err := os.MkdirAll(filepath.Join(b.root, filepath.FromSlash(dir)), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func (b *Bundle) WriteFile(name string, content []byte) error {
	path, err := b.pathFor(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

func (b *Bundle) ReadFile(name string) ([]byte, error) {
	path, err := b.pathFor(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (b *Bundle) Exists(name string) bool {
	path, err := b.pathFor(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// DirExists reports whether name resolves to a directory, following links.
func (b *Bundle) DirExists(name string) bool {
	path, err := b.pathFor(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (b *Bundle) Remove(name string) error {
	path, err := b.pathFor(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns every file in the bundle, sorted.
func (b *Bundle) List() ([]string, error) {
	if b == nil || b.root == "" {
		return nil, fmt.Errorf("bundle root is required")
	}
	var out []string
	err := filepath.WalkDir(b.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Symlink points name at target, used for the engine checkout link.
func (b *Bundle) Symlink(target, name string) error {
	path, err := b.pathFor(name)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(path); err == nil {
		return nil
	}
	return os.Symlink(target, path)
}

func (b *Bundle) pathFor(name string) (string, error) {
	if b == nil || b.root == "" {
		return "", fmt.Errorf("bundle root is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("bundle file name is required")
	}
	if strings.Contains(name, "..") || filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("invalid bundle file name: %s", name)
	}
	return filepath.Join(b.root, filepath.FromSlash(name)), nil
}
