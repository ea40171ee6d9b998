// Package verify checks a finished bundle offline: schema versions, asset
// hashes and the referential integrity of every scene document.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/semver/v3"

	"sceneexport/internal/audit"
	"sceneexport/internal/bundlefs"
	"sceneexport/internal/codegen/jsonscene"
	"sceneexport/internal/identity"
	"sceneexport/internal/manifest"
	"sceneexport/internal/sceneir"
	"sceneexport/internal/util/jsonutil"
)

// Supported schema ranges per bundle document.
const (
	ManifestConstraint = "^1.2.0"
	ReportConstraint   = "^1.1.0"
	SceneConstraint    = "^1.0.0"
	GameConstraint     = "^1.0.0"
	AuditConstraint    = "^1.0.0"
)

// Finding is one problem found in the bundle.
type Finding struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	return f.Path + ": " + f.Message
}

// Result lists every finding of one verification.
type Result struct {
	BundleRoot    string    `json:"bundleRoot"`
	CheckedFiles  int       `json:"checkedFiles"`
	CheckedAssets int       `json:"checkedAssets"`
	Findings      []Finding `json:"findings"`
}

func (r *Result) OK() bool {
	return r != nil && len(r.Findings) == 0
}

func (r *Result) add(path, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{Path: path, Message: fmt.Sprintf(format, args...)})
}

type checker struct {
	bundle *bundlefs.Bundle
	result *Result
	logger *slog.Logger
}

// Bundle verifies the bundle at root. An error is returned only when
// manifest.json cannot be read at all; everything else is a finding.
func Bundle(ctx context.Context, root string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &checker{
		bundle: bundlefs.New(root),
		result: &Result{BundleRoot: root, Findings: []Finding{}},
		logger: logger.With("component", "verify"),
	}

	raw, err := c.bundle.ReadFile(manifest.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", manifest.ManifestPath, err)
	}
	var m manifest.Manifest
	if err := jsonutil.UnmarshalStrict(raw, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", manifest.ManifestPath, err)
	}
	c.result.CheckedFiles++
	c.checkVersion(manifest.ManifestPath, m.SchemaVersion, ManifestConstraint)

	c.checkVersionedFile(manifest.ReportPath, ReportConstraint)
	if m.GameDataPath != "" {
		c.checkGameData(m.GameDataPath)
	}
	if m.ComponentAudit != nil {
		c.checkAudit(m.ComponentAudit)
	}

	for _, rec := range m.Assets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.checkAsset(rec.RelativePath, rec.SHA256, rec.ByteSize)
	}

	for _, entry := range m.Scenes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.SceneJSONPath != "" {
			c.checkScene(entry)
		}
		for _, p := range []string{entry.SceneHeaderPath, entry.SceneCppPath} {
			c.requireFile(p)
		}
	}
	for _, h := range m.GeneratedComponentHeaders {
		c.requireFile(h)
	}
	if gp := m.GeneratedProject; gp != nil {
		for _, p := range []string{gp.CMakePath, gp.MainPath, gp.SceneRegistryHeaderPath, gp.SceneRegistryCppPath} {
			c.requireFile(p)
		}
	}

	c.logger.Info("bundle verified", "bundle", root, "files", c.result.CheckedFiles,
		"assets", c.result.CheckedAssets, "findings", len(c.result.Findings))
	return c.result, nil
}

func (c *checker) checkVersion(path, version, constraint string) {
	want, err := semver.NewConstraint(constraint)
	if err != nil {
		c.result.add(path, "bad constraint %s: %v", constraint, err)
		return
	}
	if strings.TrimSpace(version) == "" {
		c.result.add(path, "missing schemaVersion")
		return
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		c.result.add(path, "schemaVersion %q is not a semantic version", version)
		return
	}
	if !want.Check(v) {
		c.result.add(path, "schemaVersion %s does not satisfy %s", version, constraint)
	}
}

type versioned struct {
	SchemaVersion string `json:"schemaVersion"`
}

func (c *checker) readJSON(path string, v any) bool {
	raw, err := c.bundle.ReadFile(path)
	if err != nil {
		c.result.add(path, "missing file")
		return false
	}
	c.result.CheckedFiles++
	if err := json.Unmarshal(raw, v); err != nil {
		c.result.add(path, "invalid json: %v", err)
		return false
	}
	return true
}

func (c *checker) checkVersionedFile(path, constraint string) {
	var doc versioned
	if c.readJSON(path, &doc) {
		c.checkVersion(path, doc.SchemaVersion, constraint)
	}
}

// checkAudit compares the audit file's totals with the manifest summary.
func (c *checker) checkAudit(sum *audit.Summary) {
	path := manifest.AuditJSONPath
	var rep audit.Report
	if !c.readJSON(path, &rep) {
		return
	}
	c.checkVersion(path, rep.SchemaVersion, AuditConstraint)
	if rep.Summary.TotalComponentTypeCount != sum.TotalComponentTypeCount ||
		rep.Summary.UnsupportedBuiltinInstanceCount != sum.UnsupportedBuiltinInstanceCount {
		c.result.add(path, "summary differs from manifest componentAudit")
	}
}

func (c *checker) checkGameData(path string) {
	var data manifest.GameData
	if !c.readJSON(path, &data) {
		return
	}
	c.checkVersion(path, data.SchemaVersion, GameConstraint)
	found := data.DefaultSceneName == ""
	for _, s := range data.Scenes {
		if s.SceneName == data.DefaultSceneName {
			found = true
		}
		c.requireFile(s.SceneJSONPath)
	}
	if !found {
		c.result.add(path, "default scene %s is not listed", data.DefaultSceneName)
	}
}

func (c *checker) checkAsset(path, sha string, size int64) {
	c.result.CheckedAssets++
	raw, err := c.bundle.ReadFile(path)
	if err != nil {
		c.result.add(path, "asset missing")
		return
	}
	if int64(len(raw)) != size {
		c.result.add(path, "byteSize %d, file has %d bytes", size, len(raw))
	}
	if got := identity.Sha256Hex(raw); !strings.EqualFold(got, sha) {
		c.result.add(path, "sha256 %s, file hashes to %s", sha, got)
	}
}

func (c *checker) checkScene(entry *manifest.SceneEntry) {
	path := entry.SceneJSONPath
	raw, err := c.bundle.ReadFile(path)
	if err != nil {
		c.result.add(path, "scene json missing")
		return
	}
	c.result.CheckedFiles++
	doc, err := jsonscene.Decode(raw)
	if err != nil {
		c.result.add(path, "%v", err)
		return
	}
	c.checkVersion(path, doc.SchemaVersion, SceneConstraint)
	if len(doc.Entities) != entry.EntityCount {
		c.result.add(path, "manifest lists %d entities, document has %d", entry.EntityCount, len(doc.Entities))
	}
	if !sceneir.IsSorted(doc.Entities) {
		c.result.add(path, "entities are not ordered by stable id")
	}
	for _, issue := range sceneir.ValidateHierarchy(doc.Entities) {
		c.result.add(path, "%s", issue.Error())
	}
}

func (c *checker) requireFile(path string) {
	if path == "" {
		return
	}
	if !c.bundle.Exists(path) {
		c.result.add(path, "referenced file is missing")
	}
}
