// Package pipeline runs one complete export: option validation, bundle
// preparation, per-scene collection, the JSON and C++ backends, project
// generation, the component audit and the run outputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sceneexport/internal/bundlefs"
	"sceneexport/internal/cache/memory"
	"sceneexport/internal/config"
	"sceneexport/internal/identity"
	"sceneexport/internal/manifest"
	"sceneexport/internal/producer"
	"sceneexport/internal/safeio"
	"sceneexport/internal/sceneir"
)

const tracerName = "sceneexport"

var (
	// ErrValidation wraps the first option problem found before any output
	// is produced.
	ErrValidation = errors.New("invalid export options")
	// ErrCompletedWithErrors is returned in fail-fast mode when the run
	// finished but the report holds errors.
	ErrCompletedWithErrors = errors.New("Export completed with errors. See report.json.")
)

// Deps are the collaborators of a run. Every field is optional.
type Deps struct {
	// Opener resolves scene paths; the default reads .scene.yaml dumps from
	// the project root.
	Opener producer.Opener
	// Cache is shared with later runs, e.g. by watch mode.
	Cache  *memory.FileCache
	Logger *slog.Logger
	Tracer trace.Tracer
	Now    func() time.Time
}

// Result is what a run produced. Report and Manifest are always set.
type Result struct {
	BundleRoot string
	Manifest   *manifest.Manifest
	Report     *manifest.Report
	Scenes     []*sceneir.SceneDocument
}

func (r *Result) HasErrors() bool {
	return r != nil && r.Report.HasErrors()
}

// BundleRoot is where the bundle of productName lands under outputRoot.
func BundleRoot(outputRoot, productName string) (string, error) {
	abs, err := filepath.Abs(outputRoot)
	if err != nil {
		return "", fmt.Errorf("resolve output root: %w", err)
	}
	return filepath.Join(abs, identity.SafeDirName(productName, config.DefaultGeneratedProjectName)), nil
}

// Run exports the scenes selected by opts. Invalid options return an error
// wrapping ErrValidation. Other problems are recorded in the report; they
// are returned as errors only when opts.FailOnError is set or ctx ends.
// Whenever a bundle root is known, manifest.json and report.json are
// written, including on failure.
func Run(ctx context.Context, opts config.Options, deps Deps) (*Result, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer(tracerName)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	logger := deps.Logger.With("component", "pipeline")
	started := deps.Now()

	r := &run{
		opts:    opts,
		deps:    deps,
		logger:  logger,
		started: started,
		report:  manifest.NewReport(started),
	}
	r.result = &Result{Report: r.report}
	finish := func() {
		r.report.DurationSeconds = deps.Now().Sub(started).Seconds()
	}

	_, span := deps.Tracer.Start(ctx, "sceneexport.prepare")
	validationErr := r.resolve()
	r.manifest = manifest.New(r.opts.ProductName, started, r.opts.Snapshot())
	r.result.Manifest = r.manifest
	if validationErr == nil || strings.TrimSpace(r.opts.OutputRoot) == "" {
		if err := r.opts.Validate(); err != nil {
			validationErr = err
		}
	}
	if validationErr != nil {
		msg := "Invalid export options: " + validationErr.Error()
		r.report.Error(msg)
		span.RecordError(validationErr)
		span.SetStatus(codes.Error, msg)
		span.End()
		finish()
		r.writeFailure()
		logger.Error("export rejected", "error", validationErr)
		return r.result, fmt.Errorf("%w: %s", ErrValidation, validationErr.Error())
	}
	span.SetAttributes(
		attribute.String("bundle.root", r.result.BundleRoot),
		attribute.Int("scene.requested", len(r.opts.ScenePaths)),
	)

	err := r.prepare()
	span.End()
	if err == nil {
		err = r.export(ctx)
	}
	if err == nil && r.report.HasErrors() && r.opts.FailOnError {
		err = ErrCompletedWithErrors
	}
	if err == nil {
		logger.Info("export finished", "bundle", r.result.BundleRoot, "scenes", r.report.Stats.SceneCount,
			"warnings", len(r.report.Warnings), "errors", len(r.report.Errors))
		return r.result, nil
	}

	r.report.Error(err.Error())
	r.syncAssets()
	finish()
	r.writeFailure()
	logger.Error("export failed", "bundle", r.result.BundleRoot, "error", err)
	if r.opts.FailOnError || ctx.Err() != nil {
		return r.result, err
	}
	return r.result, nil
}

// resolve fills in the bundle location, the scene list and the names
// derived from the product.
func (r *run) resolve() error {
	if strings.TrimSpace(r.opts.ProductName) == "" {
		if abs, err := filepath.Abs(r.opts.ProjectRoot); err == nil {
			r.opts.ProductName = filepath.Base(abs)
		}
	}
	if strings.TrimSpace(r.opts.OutputRoot) != "" {
		root, err := BundleRoot(r.opts.OutputRoot, r.opts.ProductName)
		if err != nil {
			return err
		}
		r.result.BundleRoot = root
		r.bundle = bundlefs.New(root)
	}

	project, err := safeio.NewProjectFS(r.opts.ProjectRoot, r.deps.Cache)
	if err != nil {
		return fmt.Errorf("Project root is not readable: %s", r.opts.ProjectRoot)
	}
	r.project = project

	var build []string
	if r.opts.SceneSelection == config.BuildSettings {
		if build, err = producer.BuildScenes(project); err != nil {
			r.report.Warn("Build settings could not be read: " + err.Error())
		}
	}
	r.opts.ScenePaths = config.ResolveScenePaths(r.opts.SceneSelection, build, r.opts.ScenePaths)
	r.opts.GeneratedProjectName = config.ResolveGeneratedProjectName(r.opts.GeneratedProjectName, r.opts.ProductName)
	return nil
}

func (r *run) writeFailure() {
	if r.bundle == nil {
		return
	}
	if err := manifest.WriteFailureOutputs(r.bundle, r.report, r.manifest); err != nil {
		r.logger.Warn("failure outputs incomplete", "bundle", r.result.BundleRoot, "error", err)
	}
}
