// Package contentstore is the content-addressed registry that places every
// exported asset in the bundle. The sha256 of the payload decides identity;
// the source key cache only short-circuits repeat lookups.
package contentstore

import (
	"fmt"
	"image"
	"log/slog"
	"path"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"sceneexport/internal/geometry"
	"sceneexport/internal/identity"
)

// DefaultSourceKeyCacheSize bounds the sourceKey -> path shortcut.
const DefaultSourceKeyCacheSize = 4096

// WarningSink receives user-facing export warnings.
type WarningSink interface {
	Warn(msg string)
}

// BundleWriter persists bundle-relative files.
type BundleWriter interface {
	WriteFile(name string, content []byte) error
}

// SourceReader reads host project files by project-relative path.
type SourceReader interface {
	Exists(assetPath string) bool
	ReadFile(assetPath string) ([]byte, error)
}

// Record is one manifest asset entry.
type Record struct {
	Kind         string `json:"kind"`
	Source       string `json:"source"`
	RelativePath string `json:"relativePath"`
	SHA256       string `json:"sha256"`
	ByteSize     int64  `json:"byteSize"`
}

// Counters tracks what the store has written so far.
type Counters struct {
	TextureCount      int   `json:"textureCount"`
	ModelAssetCount   int   `json:"modelAssetCount"`
	AudioAssetCount   int   `json:"audioAssetCount"`
	TerrainAssetCount int   `json:"terrainAssetCount"`
	TotalAssetBytes   int64 `json:"totalAssetBytes"`
}

// Object is a host asset handle. Path is set for assets backed by a project
// file; Image carries the pixels of runtime-only textures.
type Object struct {
	Path       string
	Name       string
	InstanceID string
	Image      image.Image
}

type Options struct {
	Bundle             BundleWriter
	Source             SourceReader
	Warnings           WarningSink
	Logger             *slog.Logger
	SourceKeyCacheSize int
}

// Store is scoped to one export run and shared by every scene in it.
type Store struct {
	bundle   BundleWriter
	source   SourceReader
	warnings WarningSink
	logger   *slog.Logger

	bySource *lru.Cache[string, string]
	byHash   map[string]string
	used     map[string]struct{}

	records  []Record
	counters Counters
}

func New(opts Options) (*Store, error) {
	if opts.Bundle == nil {
		return nil, fmt.Errorf("bundle writer is nil")
	}
	size := opts.SourceKeyCacheSize
	if size <= 0 {
		size = DefaultSourceKeyCacheSize
	}
	bySource, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("source key cache: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		bundle:   opts.Bundle,
		source:   opts.Source,
		warnings: opts.Warnings,
		logger:   logger.With("component", "contentstore"),
		bySource: bySource,
		byHash:   make(map[string]string),
		used:     make(map[string]struct{}),
	}, nil
}

func (s *Store) warn(msg string) {
	s.logger.Warn(msg)
	if s.warnings != nil {
		s.warnings.Warn(msg)
	}
}

// Records returns manifest entries in registration order.
func (s *Store) Records() []Record {
	if s == nil {
		return nil
	}
	return append([]Record(nil), s.records...)
}

func (s *Store) Counters() Counters {
	if s == nil {
		return Counters{}
	}
	return s.counters
}

// RegisterBytes stores content under assets/<kind folder>/<subPath> and
// returns the bundle-relative path. Empty content is warned about and yields
// "". The error is reserved for bundle write failures.
func (s *Store) RegisterBytes(sourceKey string, content []byte, kind Kind, suggestedSubPath string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("content store is nil")
	}
	if len(content) == 0 {
		s.warn("Empty asset payload: " + sourceKey)
		return "", nil
	}
	cacheKey := strings.ToLower(sourceKey)
	if sourceKey != "" {
		if rel, ok := s.bySource.Get(cacheKey); ok {
			return rel, nil
		}
	}

	hash := identity.Sha256Hex(content)
	if rel, ok := s.byHash[hash]; ok {
		if sourceKey != "" {
			s.bySource.Add(cacheKey, rel)
		}
		return rel, nil
	}

	rel := s.allocatePath(kind, suggestedSubPath, hash)
	if err := s.bundle.WriteFile(rel, content); err != nil {
		return "", fmt.Errorf("write %s: %w", rel, err)
	}
	s.used[strings.ToLower(rel)] = struct{}{}
	s.byHash[hash] = rel
	if sourceKey != "" {
		s.bySource.Add(cacheKey, rel)
	}

	s.records = append(s.records, Record{
		Kind:         kind.String(),
		Source:       sourceKey,
		RelativePath: rel,
		SHA256:       hash,
		ByteSize:     int64(len(content)),
	})
	switch kind {
	case KindTexture:
		s.counters.TextureCount++
	case KindModel:
		s.counters.ModelAssetCount++
	case KindAudio:
		s.counters.AudioAssetCount++
	case KindTerrain:
		s.counters.TerrainAssetCount++
	}
	s.counters.TotalAssetBytes += int64(len(content))
	s.logger.Debug("asset registered", "kind", kind.String(), "path", rel, "bytes", len(content))
	return rel, nil
}

func (s *Store) allocatePath(kind Kind, suggestedSubPath, hash string) string {
	sub := strings.TrimLeft(identity.NormalizeRelativePath(suggestedSubPath), "/")
	if sub == "" {
		sub = "generated/asset.bin"
	}
	sub = strings.ReplaceAll(sub, "..", "_")

	rel := "assets/" + kind.Folder() + "/" + sub
	if !s.isUsed(rel) {
		return rel
	}
	dir, file := path.Split(rel)
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	candidate := dir + stem + "_" + hash[:8] + ext
	if !s.isUsed(candidate) {
		return candidate
	}
	return dir + stem + "_" + hash + ext
}

func (s *Store) isUsed(rel string) bool {
	_, ok := s.used[strings.ToLower(rel)]
	return ok
}

// ExportAssetPath copies a project asset into the bundle. Formats without a
// portable decoder are transcoded to PNG first.
func (s *Store) ExportAssetPath(assetPath string, kind Kind) (string, error) {
	if s == nil {
		return "", fmt.Errorf("content store is nil")
	}
	assetPath = identity.NormalizeRelativePath(strings.TrimSpace(assetPath))
	if assetPath == "" {
		return "", nil
	}
	if rel, ok := s.bySource.Get(strings.ToLower(assetPath)); ok {
		return rel, nil
	}
	if s.source == nil || !s.source.Exists(assetPath) {
		s.warn("Missing asset file: " + assetPath)
		return "", nil
	}
	if !isRuntimeUsable(assetPath) {
		s.warn("Skipping non-runtime asset file: " + assetPath)
		return "", nil
	}
	content, err := s.source.ReadFile(assetPath)
	if err != nil {
		s.warn("Missing asset file: " + assetPath)
		s.logger.Debug("asset read failed", "path", assetPath, "error", err)
		return "", nil
	}

	sub := logicalSubPath(assetPath)
	if kind == KindTexture && shouldTranscode(assetPath) {
		converted, err := TranscodeToPNG(content, lowerExt(assetPath))
		if err != nil || len(converted) == 0 {
			s.warn("Failed to transcode texture to PNG, keeping original: " + assetPath)
		} else {
			content = converted
			sub = withExt(sub, ".png")
		}
	}
	return s.RegisterBytes(assetPath, content, kind, sub)
}

// ExportObject exports a host asset handle, falling back to encoding the
// pixels of runtime-only textures.
func (s *Store) ExportObject(obj *Object, kind Kind, fallbackName string) (string, error) {
	if obj == nil {
		return "", nil
	}
	if strings.TrimSpace(obj.Path) != "" {
		return s.ExportAssetPath(obj.Path, kind)
	}
	if obj.Image != nil {
		encoded, err := geometry.EncodePNG(obj.Image)
		if err != nil || len(encoded) == 0 {
			s.warn("Unable to encode texture to PNG: " + obj.Name)
			return "", nil
		}
		sub := "generated/" + identity.ToSnakeCase(fallbackName, "texture") + ".png"
		key := obj.InstanceID
		if key == "" {
			key = fallbackName
		}
		return s.RegisterBytes("generated:texture:"+key, encoded, KindTexture, sub)
	}
	s.warn("Asset object has no export path and unsupported fallback: " + obj.Name)
	return "", nil
}

// ExportGeneratedTexture registers PNG bytes synthesized during export.
func (s *Store) ExportGeneratedTexture(key string, png []byte, name string, kind Kind) (string, error) {
	sub := "generated/" + identity.ToSnakeCase(name, "generated_tex") + ".png"
	return s.RegisterBytes("generated:texture:"+key, png, kind, sub)
}

func (s *Store) ExportGeneratedImage(key string, img image.Image, name string, kind Kind) (string, error) {
	encoded, err := geometry.EncodePNG(img)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	return s.ExportGeneratedTexture(key, encoded, name, kind)
}

// ExportBakedMesh writes mesh as OBJ with the handedness conversions applied.
func (s *Store) ExportBakedMesh(key string, mesh *geometry.Mesh, name string) (string, error) {
	if mesh == nil || mesh.IsEmpty() {
		return "", nil
	}
	sub := "generated/" + identity.ToSnakeCase(name, "generated_mesh") + ".obj"
	return s.RegisterBytes("generated:mesh:"+key, geometry.BakeOBJ(mesh), KindModel, sub)
}

// ExportDiscovered exports every classifiable, non-baked project asset in
// case-insensitive path order.
func (s *Store) ExportDiscovered(assetPaths []string) error {
	sorted := append([]string(nil), assetPaths...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i]) < strings.ToLower(sorted[j])
	})
	for _, p := range sorted {
		if IsBakedOrTransient(p) {
			continue
		}
		kind, ok := ClassifyByPath(p)
		if !ok {
			continue
		}
		if _, err := s.ExportAssetPath(p, kind); err != nil {
			return err
		}
	}
	return nil
}
