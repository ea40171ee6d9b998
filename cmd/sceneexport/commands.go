package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"strings"

	"sceneexport/internal/artifact"
	"sceneexport/internal/config"
	"sceneexport/internal/pipeline"
	"sceneexport/internal/verify"
	"sceneexport/internal/watch"
)

func runExport(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	res, err := pipeline.Run(ctx, cfg.Export, pipeline.Deps{Logger: logger})
	if res != nil {
		summarize(res)
	}
	if err != nil {
		return err
	}
	if cfg.Publish == config.PublishNone || res.HasErrors() {
		return nil
	}
	return publish(ctx, cfg, res.BundleRoot, logger)
}

func summarize(res *pipeline.Result) {
	stats := res.Report.Stats
	log.Printf("Bundle: %s", res.BundleRoot)
	log.Printf("Scenes: %d, entities: %d, materials: %d, textures: %d",
		stats.SceneCount, stats.EntityCount, stats.MaterialCount, stats.TextureCount)
	log.Printf("Warnings: %d, errors: %d", len(res.Report.Warnings), len(res.Report.Errors))
	for _, e := range res.Report.Errors {
		log.Printf("  error: %s", e)
	}
}

// bundleRoot is the first positional argument or the bundle the export
// options point at.
func bundleRoot(cfg *config.Config) (string, error) {
	if len(cfg.Args) > 0 && strings.TrimSpace(cfg.Args[0]) != "" {
		return cfg.Args[0], nil
	}
	if strings.TrimSpace(cfg.Export.OutputRoot) == "" {
		return "", errors.New("no bundle given and output root is empty")
	}
	return pipeline.BundleRoot(cfg.Export.OutputRoot, cfg.Export.ProductName)
}

func runVerify(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	root, err := bundleRoot(cfg)
	if err != nil {
		return err
	}
	res, err := verify.Bundle(ctx, root, logger)
	if err != nil {
		return err
	}
	log.Printf("Checked %d files and %d assets in %s", res.CheckedFiles, res.CheckedAssets, root)
	if res.OK() {
		log.Println("Bundle OK")
		return nil
	}
	for _, f := range res.Findings {
		log.Printf("  %s", f)
	}
	return fmt.Errorf("%d problems found", len(res.Findings))
}

func runWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	w, err := watch.New(watch.Options{
		Export: cfg.Export,
		Logger: logger,
		OnExport: func(res *pipeline.Result, err error) {
			if res != nil {
				summarize(res)
			}
			if err != nil {
				log.Printf("Export failed: %v", err)
			}
		},
	})
	if err != nil {
		return err
	}
	log.Printf("Watching %s (Ctrl+C to stop)", cfg.Export.ProjectRoot)
	return w.Run(ctx)
}

func runPublish(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	root, err := bundleRoot(cfg)
	if err != nil {
		return err
	}
	return publish(ctx, cfg, root, logger)
}

func publish(ctx context.Context, cfg *config.Config, root string, logger *slog.Logger) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	pub, err := artifact.Publish(ctx, store, root, logger)
	if err != nil {
		return err
	}
	log.Printf("Published %d files (%d bytes) as run %s to %s", len(pub.Files), pub.Bytes, pub.RunID, cfg.Publish)
	return nil
}
