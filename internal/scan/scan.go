// Package scan walks a host project tree. The exporter uses it to discover
// every asset under Assets/ when the whole project is exported and to find
// scene sources for watch mode.
package scan

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FileVisit carries per-entry metadata to user callbacks.
type FileVisit struct {
	// Root-relative path using forward slashes (e.g., "Assets/Tex/a.png").
	Path string
	// Absolute filesystem path.
	AbsPath string
	// True when the entry is a directory.
	IsDir bool
	// Lowercased extension (e.g., ".png"); empty for dirs or no-ext files.
	Ext string
	// File size in bytes; 0 for dirs or when stat fails.
	Size int64
}

// VisitFunc is invoked for every visited entry.
type VisitFunc func(f FileVisit)

type Options struct {
	// MaxDepth limits recursion; 0 means unlimited. Depth 1 is the root's
	// direct children.
	MaxDepth int
	// IgnoreDirs are directory base names that are never entered.
	IgnoreDirs []string
}

// DefaultIgnoreDirs are the host folders that never hold exportable assets.
var DefaultIgnoreDirs = []string{".git", "Library", "Temp", "Logs", "obj", "Build", "UserSettings"}

// ScanWithOptions walks root and calls cb for every entry below it. Walk
// errors on individual entries are skipped; only a failing root is reported.
func ScanWithOptions(root string, opts Options, cb VisitFunc) error {
	ignore := make(map[string]struct{}, len(opts.IgnoreDirs))
	for _, d := range opts.IgnoreDirs {
		if d = strings.TrimSpace(d); d != "" {
			ignore[d] = struct{}{}
		}
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		depth := strings.Count(rel, "/") + 1

		if d.IsDir() {
			if _, skip := ignore[d.Name()]; skip {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 && depth > opts.MaxDepth {
				return filepath.SkipDir
			}
		} else if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			return nil
		}

		fv := FileVisit{Path: rel, AbsPath: path, IsDir: d.IsDir()}
		if !d.IsDir() {
			fv.Ext = strings.ToLower(filepath.Ext(rel))
			if info, e := d.Info(); e == nil {
				fv.Size = info.Size()
			}
		}
		if cb != nil {
			cb(fv)
		}
		return nil
	})
}

// Stream walks the tree and streams FileVisit entries over a channel.
// If filesOnly is true, directory entries are omitted.
// errCh receives a single error (nil on success).
func Stream(root string, opts Options, filesOnly bool) (<-chan FileVisit, <-chan error) {
	out := make(chan FileVisit, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		err := ScanWithOptions(root, opts, func(fv FileVisit) {
			if filesOnly && fv.IsDir {
				return
			}
			out <- fv
		})
		errCh <- err
		close(errCh)
	}()

	return out, errCh
}
