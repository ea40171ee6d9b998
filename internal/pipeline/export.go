package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sceneexport/internal/audit"
	"sceneexport/internal/bundlefs"
	"sceneexport/internal/codegen/cpp"
	"sceneexport/internal/codegen/jsonscene"
	"sceneexport/internal/codegen/project"
	"sceneexport/internal/collect"
	"sceneexport/internal/config"
	"sceneexport/internal/contentstore"
	"sceneexport/internal/customschema"
	"sceneexport/internal/manifest"
	"sceneexport/internal/producer"
	"sceneexport/internal/safeio"
	"sceneexport/internal/scan"
	"sceneexport/internal/sceneir"
)

const (
	msgNoScenesExported = "No scenes were exported. Check Build Settings scene list and input scene paths."
	msgCppSceneDisabled = "Scene C++ generation disabled (convertSceneToCpp=false). Generated project will load scenes from JSON."
)

// run is the state of one export.
type run struct {
	opts    config.Options
	deps    Deps
	logger  *slog.Logger
	started time.Time

	project   *safeio.ProjectFS
	bundle    *bundlefs.Bundle
	store     *contentstore.Store
	unifier   *customschema.Unifier
	collector *collect.Collector

	report   *manifest.Report
	manifest *manifest.Manifest
	result   *Result
}

// prepare lays out the bundle directory and builds the run-scoped
// collaborators shared by every scene.
func (r *run) prepare() error {
	if err := r.bundle.Prepare(r.opts.CleanOutput); err != nil {
		return err
	}
	store, err := contentstore.New(contentstore.Options{
		Bundle:   r.bundle,
		Source:   r.project,
		Warnings: r.report,
		Logger:   r.deps.Logger,
	})
	if err != nil {
		return err
	}
	r.store = store
	r.unifier = customschema.NewUnifier(r.report)
	r.collector, err = collect.New(collect.Options{
		Store:   store,
		Source:  r.project,
		Unifier: r.unifier,
		Report:  r.report,
		Logger:  r.deps.Logger,
	})
	return err
}

// phase runs fn inside a span named sceneexport.<name>.
func (r *run) phase(ctx context.Context, name string, fn func(ctx context.Context, span trace.Span) error) error {
	ctx, span := r.deps.Tracer.Start(ctx, "sceneexport."+name)
	defer span.End()
	if err := fn(ctx, span); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *run) export(ctx context.Context) error {
	docs, err := r.exportScenes(ctx)
	if err != nil {
		return err
	}
	r.result.Scenes = docs

	if err := r.phase(ctx, "generate", func(ctx context.Context, span trace.Span) error {
		return r.generate(ctx, docs)
	}); err != nil {
		return err
	}

	if err := r.phase(ctx, "audit", func(context.Context, trace.Span) error {
		return r.writeAudit()
	}); err != nil {
		return err
	}

	return r.phase(ctx, "report", func(_ context.Context, span trace.Span) error {
		r.report.Stats.SceneCount = len(docs)
		r.report.Stats.MaterialCount = countMaterials(docs)
		r.syncAssets()
		if err := manifest.WriteGameData(r.bundle, r.manifest); err != nil {
			return err
		}
		r.report.DurationSeconds = r.deps.Now().Sub(r.started).Seconds()
		span.SetAttributes(
			attribute.Int("report.warnings", len(r.report.Warnings)),
			attribute.Int("report.errors", len(r.report.Errors)),
		)
		return manifest.WriteOutputs(r.bundle, r.report, r.manifest)
	})
}

// exportScenes collects every selected scene in case-insensitive path
// order. A missing or failing scene is reported and skipped.
func (r *run) exportScenes(ctx context.Context) ([]*sceneir.SceneDocument, error) {
	opener := r.deps.Opener
	if opener == nil {
		opener = producer.NewYAMLOpener(r.project)
	}

	var docs []*sceneir.SceneDocument
	for _, scenePath := range orderedScenes(r.opts.ScenePaths) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !opener.Exists(scenePath) {
			r.report.Error("Scene path not found: " + scenePath)
			continue
		}
		var doc *sceneir.SceneDocument
		err := r.phase(ctx, "scene", func(_ context.Context, span trace.Span) error {
			span.SetAttributes(attribute.String("scene.path", scenePath))
			src, err := opener.Open(scenePath)
			if err != nil {
				return err
			}
			doc, err = r.collector.CollectScene(src, scenePath)
			if err != nil {
				return err
			}
			span.SetAttributes(attribute.Int("scene.entities", len(doc.Entities)))
			return nil
		})
		if err != nil {
			r.report.Error(fmt.Sprintf("Scene export failed for %s: %s", scenePath, err))
			continue
		}
		docs = append(docs, doc)
		r.report.Stats.EntityCount += len(doc.Entities)
		r.logger.Info("scene exported", "scene", doc.SceneName, "path", scenePath, "entities", len(doc.Entities))
	}
	if len(docs) == 0 {
		r.report.Error(msgNoScenesExported)
	}

	if r.opts.AssetScope == config.AllAssets {
		discovered, err := scan.DiscoverAssets(r.project.Root())
		if err != nil {
			return nil, fmt.Errorf("discover assets: %w", err)
		}
		if err := r.store.ExportDiscovered(discovered); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// orderedScenes drops blanks and case-insensitive duplicates and sorts the
// rest without regard to case.
func orderedScenes(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

func sceneEntry(doc *sceneir.SceneDocument) manifest.SceneEntry {
	custom := 0
	for _, e := range doc.Entities {
		custom += len(e.CustomComponents)
	}
	return manifest.SceneEntry{
		SceneName:            doc.SceneName,
		SceneAssetPath:       doc.SceneAssetPath,
		EntityCount:          len(doc.Entities),
		CustomComponentCount: custom,
		WarningCount:         len(doc.Warnings),
	}
}

// generate runs the JSON backend, the C++ backend and the project
// generator over the collected documents.
func (r *run) generate(ctx context.Context, docs []*sceneir.SceneDocument) error {
	if r.opts.GenerateJSON {
		for _, doc := range docs {
			name := manifest.SceneJSONPath(doc.SceneName)
			if err := jsonscene.Write(r.bundle, name, doc); err != nil {
				return err
			}
			r.manifest.FindOrCreateScene(sceneEntry(doc)).SceneJSONPath = name
		}
	}

	if r.opts.GenerateCpp {
		if _, _, err := cpp.WriteRuntimeHelper(r.bundle); err != nil {
			return err
		}
		if r.opts.ConvertSceneToCpp {
			for _, doc := range docs {
				if err := ctx.Err(); err != nil {
					return err
				}
				files, err := cpp.WriteScene(r.bundle, doc, r.opts.BaseSceneClass)
				if err != nil {
					return err
				}
				fresh := sceneEntry(doc)
				entry := r.manifest.FindOrCreateScene(fresh)
				entry.SceneHeaderPath = files.HeaderPath
				entry.SceneCppPath = files.CppPath
				entry.EntityCount = fresh.EntityCount
				entry.CustomComponentCount = fresh.CustomComponentCount
				entry.WarningCount = fresh.WarningCount
			}
		} else {
			r.report.Warn(msgCppSceneDisabled)
		}

		headers, err := r.unifier.WriteHeaders(r.bundle)
		if err != nil {
			return err
		}
		r.manifest.GeneratedComponentHeaders = append(r.manifest.GeneratedComponentHeaders, headers...)
		r.report.Stats.GeneratedCustomComponentCount = r.unifier.Len()
	}

	if r.opts.GenerateCppProject {
		if !r.opts.GenerateCpp {
			r.report.Error("C++ project generation requires generateCpp=true.")
			return nil
		}
		generated, err := project.Write(r.bundle, r.manifest.Scenes, project.Options{
			ProjectName:       r.opts.GeneratedProjectName,
			ConvertSceneToCpp: r.opts.ConvertSceneToCpp,
			EngineRoot:        r.opts.CyberEngineRootPath,
		}, r.report)
		if err != nil {
			return err
		}
		r.manifest.GeneratedProject = generated
	}
	return nil
}

// writeAudit writes component_audit.json and .md and copies the summary
// into the manifest and the report stats.
func (r *run) writeAudit() error {
	rep := r.collector.Audit().Build(r.manifest.GeneratedAtUTC)
	r.manifest.ComponentAudit = &rep.Summary
	r.report.Stats.ApplyAudit(rep.Summary)
	if err := manifest.WriteJSON(r.bundle, manifest.AuditJSONPath, rep); err != nil {
		return err
	}
	if err := r.bundle.WriteFile(manifest.AuditMarkdownPath, []byte(audit.Markdown(rep))); err != nil {
		return fmt.Errorf("write %s: %w", manifest.AuditMarkdownPath, err)
	}
	return nil
}

// syncAssets copies the content store records and totals into the outputs.
func (r *run) syncAssets() {
	if r.store == nil {
		return
	}
	r.manifest.Assets = r.store.Records()
	r.report.Stats.ApplyCounters(r.store.Counters())
}

// countMaterials counts distinct material ids across every model.
func countMaterials(docs []*sceneir.SceneDocument) int {
	ids := make(map[string]struct{})
	for _, doc := range docs {
		for _, e := range doc.Entities {
			if e.Model != nil && e.Model.Material != nil {
				ids[e.Model.Material.StableID] = struct{}{}
			}
		}
	}
	return len(ids)
}
