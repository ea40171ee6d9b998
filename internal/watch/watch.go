// Package watch re-runs a full export whenever the host project changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"sceneexport/internal/cache/memory"
	"sceneexport/internal/config"
	"sceneexport/internal/pipeline"
	"sceneexport/internal/scan"
)

const (
	DefaultDebounce = 500 * time.Millisecond

	cacheEntries = 4096
	cacheBytes   = 256 << 20
)

// RunFunc performs one export.
type RunFunc func(ctx context.Context, opts config.Options, deps pipeline.Deps) (*pipeline.Result, error)

type Options struct {
	Export   config.Options
	Deps     pipeline.Deps
	Debounce time.Duration
	Logger   *slog.Logger

	// Runner defaults to pipeline.Run.
	Runner RunFunc

	// OnExport is called after every export, including the initial one.
	OnExport func(*pipeline.Result, error)
}

// Watcher exports once, then again after every quiet period that follows a
// change under the project root.
type Watcher struct {
	opts   Options
	root   string
	skip   []string
	fs     *fsnotify.Watcher
	logger *slog.Logger

	mu      sync.Mutex
	watched map[string]struct{}
}

func New(opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.Run
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Deps.Logger == nil {
		opts.Deps.Logger = opts.Logger
	}
	if opts.Deps.Cache == nil {
		opts.Deps.Cache = memory.NewFileCache(cacheEntries, cacheBytes)
	}

	root, err := resolve(opts.Export.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		opts:    opts,
		root:    root,
		fs:      fsw,
		logger:  opts.Logger.With("component", "watch"),
		watched: make(map[string]struct{}),
	}
	if strings.TrimSpace(opts.Export.OutputRoot) != "" {
		if out, err := resolve(opts.Export.OutputRoot); err == nil {
			w.skip = append(w.skip, out)
		}
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// resolve makes path absolute and follows symlinks when it exists.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs)), nil
	}
	return abs, nil
}

// addTree watches dir and every directory below it that may hold sources.
func (w *Watcher) addTree(dir string) error {
	if w.skipped(dir) {
		return nil
	}
	if err := w.add(dir); err != nil {
		return err
	}
	return scan.ScanWithOptions(dir, scan.Options{IgnoreDirs: scan.DefaultIgnoreDirs}, func(fv scan.FileVisit) {
		if !fv.IsDir || w.skipped(fv.AbsPath) {
			return
		}
		if err := w.add(fv.AbsPath); err != nil {
			w.logger.Warn("directory not watched", "path", fv.AbsPath, "error", err)
		}
	})
}

func (w *Watcher) add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watched[dir]; ok {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.watched[dir] = struct{}{}
	return nil
}

func (w *Watcher) isWatched(dir string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.watched[dir]
	return ok
}

func (w *Watcher) skipped(path string) bool {
	for _, s := range w.skip {
		if path == s || strings.HasPrefix(path, s+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// relevant reports whether ev may change the export.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if w.skipped(ev.Name) {
		return false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
		for _, ignored := range scan.DefaultIgnoreDirs {
			if part == ignored {
				return false
			}
		}
	}
	base := filepath.Base(ev.Name)
	return !strings.HasSuffix(base, "~") && !strings.HasSuffix(base, ".tmp")
}

// Run exports once and then after every debounced batch of changes until
// ctx ends.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	w.export(ctx, nil)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = make(map[string]struct{})
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("directory not watched", "path", ev.Name, "error", err)
					}
				}
			}
			pending[ev.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
			} else {
				timer.Reset(w.opts.Debounce)
			}
			fire = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("watch events overflowed; exporting")
				fire = time.After(0)
				continue
			}
			w.logger.Error("watch error", "error", err)
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
				w.opts.Deps.Cache.Invalidate(p)
			}
			clear(pending)
			w.export(ctx, changed)
		}
	}
}

func (w *Watcher) export(ctx context.Context, changed []string) {
	if len(changed) > 0 {
		w.logger.Info("changes detected", "files", len(changed))
	}
	res, err := w.opts.Runner(ctx, w.opts.Export, w.opts.Deps)
	switch {
	case err != nil:
		w.logger.Error("export failed", "error", err)
	case res != nil:
		w.logger.Info("export done", "bundle", res.BundleRoot, "errors", len(res.Report.Errors))
	}
	if w.opts.OnExport != nil {
		w.opts.OnExport(res, err)
	}
}

// Close stops watching without waiting for Run.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
