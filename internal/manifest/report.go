package manifest

import (
	"time"

	"sceneexport/internal/audit"
	"sceneexport/internal/contentstore"
)

type Report struct {
	SchemaVersion   string   `json:"schemaVersion"`
	GeneratedAtUTC  string   `json:"generatedAtUtc"`
	DurationSeconds float64  `json:"durationSeconds"`
	Stats           Stats    `json:"stats"`
	Warnings        []string `json:"warnings"`
	Errors          []string `json:"errors"`

	seenWarnings map[string]struct{}
}

type Stats struct {
	SceneCount                      int   `json:"sceneCount"`
	EntityCount                     int   `json:"entityCount"`
	MaterialCount                   int   `json:"materialCount"`
	TextureCount                    int   `json:"textureCount"`
	ModelAssetCount                 int   `json:"modelAssetCount"`
	AudioAssetCount                 int   `json:"audioAssetCount"`
	TerrainAssetCount               int   `json:"terrainAssetCount"`
	GeneratedCustomComponentCount   int   `json:"generatedCustomComponentCount"`
	TotalComponentTypeCount         int   `json:"totalComponentTypeCount"`
	UnsupportedBuiltinTypeCount     int   `json:"unsupportedBuiltinTypeCount"`
	UnsupportedBuiltinInstanceCount int   `json:"unsupportedBuiltinInstanceCount"`
	TotalAssetBytes                 int64 `json:"totalAssetBytes"`
}

func NewReport(generatedAt time.Time) *Report {
	return &Report{
		SchemaVersion:  ReportSchemaVersion,
		GeneratedAtUTC: FormatTimestamp(generatedAt),
		Warnings:       []string{},
		Errors:         []string{},
		seenWarnings:   make(map[string]struct{}),
	}
}

// Warn records msg once, keeping first-seen order.
func (r *Report) Warn(msg string) {
	if r == nil || msg == "" {
		return
	}
	if r.seenWarnings == nil {
		r.seenWarnings = make(map[string]struct{}, len(r.Warnings))
		for _, w := range r.Warnings {
			r.seenWarnings[w] = struct{}{}
		}
	}
	if _, ok := r.seenWarnings[msg]; ok {
		return
	}
	r.seenWarnings[msg] = struct{}{}
	r.Warnings = append(r.Warnings, msg)
}

// Error records msg unless an identical error is already present.
func (r *Report) Error(msg string) {
	if r == nil || msg == "" {
		return
	}
	for _, e := range r.Errors {
		if e == msg {
			return
		}
	}
	r.Errors = append(r.Errors, msg)
}

func (r *Report) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// ApplyCounters copies the content store totals into the stats.
func (s *Stats) ApplyCounters(c contentstore.Counters) {
	s.TextureCount = c.TextureCount
	s.ModelAssetCount = c.ModelAssetCount
	s.AudioAssetCount = c.AudioAssetCount
	s.TerrainAssetCount = c.TerrainAssetCount
	s.TotalAssetBytes = c.TotalAssetBytes
}

// ApplyAudit copies the component audit totals into the stats.
func (s *Stats) ApplyAudit(sum audit.Summary) {
	s.TotalComponentTypeCount = sum.TotalComponentTypeCount
	s.UnsupportedBuiltinTypeCount = sum.UnsupportedBuiltinTypeCount
	s.UnsupportedBuiltinInstanceCount = sum.UnsupportedBuiltinInstanceCount
}
