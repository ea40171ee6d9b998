package artifact

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"sceneexport/internal/bundlefs"
	"sceneexport/internal/manifest"
)

var newRunID = uuid.NewString

// Publication describes one upload of a bundle.
type Publication struct {
	RunID string
	Files []string
	Bytes int64
}

// Publish uploads every file of the bundle at bundleRoot to store under a
// fresh run id. The bundle must contain a manifest.
func Publish(ctx context.Context, store Store, bundleRoot string, logger *slog.Logger) (*Publication, error) {
	if store == nil {
		return nil, fmt.Errorf("artifact store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "artifact")

	bundle := bundlefs.New(bundleRoot)
	if !bundle.Exists(manifest.ManifestPath) {
		return nil, fmt.Errorf("%s has no %s; run export first", bundleRoot, manifest.ManifestPath)
	}
	files, err := bundle.List()
	if err != nil {
		return nil, fmt.Errorf("list bundle: %w", err)
	}

	pub := &Publication{RunID: newRunID()}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := bundle.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if err := store.Put(ctx, pub.RunID, name, data); err != nil {
			return nil, fmt.Errorf("put %s: %w", name, err)
		}
		pub.Files = append(pub.Files, name)
		pub.Bytes += int64(len(data))
	}
	logger.Info("bundle published", "run_id", pub.RunID, "files", len(pub.Files), "bytes", pub.Bytes)
	return pub, nil
}
