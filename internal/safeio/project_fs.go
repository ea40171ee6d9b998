// Package safeio reads host project files through a root-locked view so that
// scene and asset references can never escape the project directory.
package safeio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"sceneexport/internal/cache/memory"
)

var (
	ErrOutsideRoot = errors.New("safeio: path resolves outside project root")
	ErrEmptyPath   = errors.New("safeio: empty path")
)

// ProjectFS resolves host asset paths ("Assets/Textures/a.png") against a
// fixed project root. Reads go through an optional content cache.
type ProjectFS struct {
	absRoot string
	cache   *memory.FileCache
}

// NewProjectFS locks all operations to root, resolved to an absolute,
// symlink-free directory.
func NewProjectFS(root string, cache *memory.FileCache) (*ProjectFS, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("safeio: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("safeio: root is not a directory")
	}
	return &ProjectFS{absRoot: abs, cache: cache}, nil
}

func (p *ProjectFS) Root() string {
	if p == nil {
		return ""
	}
	return p.absRoot
}

// Exists reports whether assetPath names a regular file under the root.
func (p *ProjectFS) Exists(assetPath string) bool {
	info, err := p.Stat(assetPath)
	return err == nil && !info.IsDir()
}

func (p *ProjectFS) Stat(assetPath string) (fs.FileInfo, error) {
	abs, err := p.resolve(assetPath)
	if err != nil {
		return nil, err
	}
	return os.Stat(abs)
}

// ReadFile returns the content of assetPath, serving unchanged files from the
// cache.
func (p *ProjectFS) ReadFile(assetPath string) ([]byte, error) {
	abs, err := p.resolve(assetPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("safeio: %s is a directory", assetPath)
	}
	stamp := memory.Stamp{Size: info.Size(), ModTime: info.ModTime()}
	if data, ok := p.cache.Get(abs, stamp); ok {
		return data, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	p.cache.Put(abs, stamp, data)
	return data, nil
}

// Abs returns the absolute location of assetPath without requiring it to exist.
func (p *ProjectFS) Abs(assetPath string) (string, error) {
	if p == nil {
		return "", errors.New("safeio: filesystem not configured")
	}
	joined, err := p.join(assetPath)
	if err != nil {
		return "", err
	}
	if !hasPathPrefix(joined, p.absRoot) {
		return "", ErrOutsideRoot
	}
	return joined, nil
}

// Rel converts an absolute path under the root into a slash-separated
// project path.
func (p *ProjectFS) Rel(abs string) (string, error) {
	if p == nil {
		return "", errors.New("safeio: filesystem not configured")
	}
	rel, err := filepath.Rel(p.absRoot, abs)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return filepath.ToSlash(rel), nil
}

func (p *ProjectFS) join(userPath string) (string, error) {
	if strings.TrimSpace(userPath) == "" {
		return "", ErrEmptyPath
	}
	clean := filepath.Clean(filepath.FromSlash(strings.ReplaceAll(userPath, "\\", "/")))
	if clean == "." {
		return p.absRoot, nil
	}
	isAbs := filepath.IsAbs(clean) || (runtime.GOOS == "windows" && filepath.VolumeName(clean) != "")
	if isAbs {
		return clean, nil
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return filepath.Join(p.absRoot, clean), nil
}

func (p *ProjectFS) resolve(userPath string) (string, error) {
	if p == nil {
		return "", errors.New("safeio: filesystem not configured")
	}
	joined, err := p.join(userPath)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", err
	}
	if !hasPathPrefix(resolved, p.absRoot) {
		return "", fmt.Errorf("%w (root=%s, path=%s)", ErrOutsideRoot, p.absRoot, resolved)
	}
	return resolved, nil
}

func hasPathPrefix(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(path+sep, root)
}
