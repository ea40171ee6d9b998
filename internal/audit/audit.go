// Package audit accumulates how often each host component type appears and
// how the exporter handled it, and ranks the unsupported ones by impact.
package audit

import (
	"sort"
	"strings"

	"sceneexport/internal/sceneir"
)

const SchemaVersion = "1.0.0"

// Classifications of a component type.
const (
	NativeMapped       = "native_mapped"
	CustomStub         = "custom_stub"
	IgnoredAuthoring   = "ignored_authoring"
	UnsupportedBuiltin = "unsupported_builtin"
)

const (
	maxExamples     = 5
	maxTopMissing   = 20
	maxRelatedTypes = 10
)

type Report struct {
	SchemaVersion  string          `json:"schemaVersion"`
	GeneratedAtUTC string          `json:"generatedAtUtc"`
	Summary        Summary         `json:"summary"`
	Components     []Entry         `json:"components"`
	StructuralGaps []StructuralGap `json:"structuralGaps"`
}

type Summary struct {
	TotalComponentTypeCount         int        `json:"totalComponentTypeCount"`
	UnsupportedBuiltinTypeCount     int        `json:"unsupportedBuiltinTypeCount"`
	UnsupportedBuiltinInstanceCount int        `json:"unsupportedBuiltinInstanceCount"`
	TopMissing                      []TopEntry `json:"topMissing"`
}

type TopEntry struct {
	TypeName     string        `json:"typeName"`
	UsageCount   int           `json:"usageCount"`
	ImpactWeight sceneir.Float `json:"impactWeight"`
	Score        sceneir.Float `json:"score"`
}

type Entry struct {
	TypeName        string        `json:"typeName"`
	Classification  string        `json:"classification"`
	IsBuiltin       bool          `json:"isBuiltin"`
	IsMonoBehaviour bool          `json:"isMonoBehaviour"`
	UsageCount      int           `json:"usageCount"`
	ImpactWeight    sceneir.Float `json:"impactWeight"`
	Score           sceneir.Float `json:"score"`
	Scenes          []SceneCount  `json:"scenes"`
	Examples        []string      `json:"examples"`
}

type SceneCount struct {
	SceneName string `json:"sceneName"`
	Count     int    `json:"count"`
}

type StructuralGap struct {
	Key                   string   `json:"key"`
	Title                 string   `json:"title"`
	Detected              bool     `json:"detected"`
	RelatedComponentCount int      `json:"relatedComponentCount"`
	RelatedTypes          []string `json:"relatedTypes"`
}

// Usage describes one observed component instance.
type Usage struct {
	TypeName        string
	Classification  string
	IsBuiltin       bool
	IsMonoBehaviour bool
	SceneName       string
	TransformPath   string
}

type accumulator struct {
	typeName        string
	classification  string
	isBuiltin       bool
	isMonoBehaviour bool
	usageCount      int
	sceneCounts     map[string]int // keyed by lowercased name
	sceneNames      map[string]string
	examples        []string
}

// Accumulator collects usages across every scene of one export.
type Accumulator struct {
	byType map[string]*accumulator
}

func NewAccumulator() *Accumulator {
	return &Accumulator{byType: make(map[string]*accumulator)}
}

// Record counts one usage. The latest classification for a type wins.
func (a *Accumulator) Record(u Usage) {
	if u.TypeName == "" {
		return
	}
	acc, ok := a.byType[u.TypeName]
	if !ok {
		acc = &accumulator{
			typeName:        u.TypeName,
			isBuiltin:       u.IsBuiltin,
			isMonoBehaviour: u.IsMonoBehaviour,
			sceneCounts:     make(map[string]int),
			sceneNames:      make(map[string]string),
		}
		a.byType[u.TypeName] = acc
	}
	acc.classification = u.Classification
	acc.usageCount++

	key := strings.ToLower(u.SceneName)
	if _, seen := acc.sceneNames[key]; !seen {
		acc.sceneNames[key] = u.SceneName
	}
	acc.sceneCounts[key]++

	if len(acc.examples) < maxExamples && !contains(acc.examples, u.TransformPath) {
		acc.examples = append(acc.examples, u.TransformPath)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Build ranks the accumulated usages.
func (a *Accumulator) Build(generatedAtUTC string) Report {
	report := Report{
		SchemaVersion:  SchemaVersion,
		GeneratedAtUTC: generatedAtUTC,
		Components:     []Entry{},
	}

	names := make([]string, 0, len(a.byType))
	for name := range a.byType {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		acc := a.byType[name]
		weight := ImpactWeight(acc.typeName, acc.classification)
		entry := Entry{
			TypeName:        acc.typeName,
			Classification:  acc.classification,
			IsBuiltin:       acc.isBuiltin,
			IsMonoBehaviour: acc.isMonoBehaviour,
			UsageCount:      acc.usageCount,
			ImpactWeight:    sceneir.Float(weight),
			Score:           sceneir.Float(float32(acc.usageCount) * weight),
			Examples:        append([]string{}, acc.examples...),
		}
		keys := make([]string, 0, len(acc.sceneCounts))
		for k := range acc.sceneCounts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entry.Scenes = append(entry.Scenes, SceneCount{SceneName: acc.sceneNames[k], Count: acc.sceneCounts[k]})
		}
		report.Components = append(report.Components, entry)
	}

	var missing []Entry
	for _, e := range report.Components {
		if e.Classification == UnsupportedBuiltin {
			missing = append(missing, e)
			report.Summary.UnsupportedBuiltinTypeCount++
			report.Summary.UnsupportedBuiltinInstanceCount += e.UsageCount
		}
	}
	report.Summary.TotalComponentTypeCount = len(report.Components)

	ranked := append([]Entry(nil), missing...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].UsageCount != ranked[j].UsageCount {
			return ranked[i].UsageCount > ranked[j].UsageCount
		}
		return ranked[i].TypeName < ranked[j].TypeName
	})
	report.Summary.TopMissing = []TopEntry{}
	for i, e := range ranked {
		if i == maxTopMissing {
			break
		}
		report.Summary.TopMissing = append(report.Summary.TopMissing, TopEntry{
			TypeName:     e.TypeName,
			UsageCount:   e.UsageCount,
			ImpactWeight: e.ImpactWeight,
			Score:        e.Score,
		})
	}

	report.StructuralGaps = structuralGaps(missing)
	return report
}

var weightTiers = []struct {
	weight   float32
	keywords []string
}{
	{10, []string{"Animator", "Animation", "SkinnedMeshRenderer", "BlendShape", "Avatar"}},
	{8, []string{"ParticleSystem", "VisualEffect", "VFX"}},
	{7, []string{"CharacterController", "NavMeshAgent", "NavMesh"}},
	{6, []string{"Canvas", "RectTransform", "TextMeshPro", "TMP_", "UnityEngine.UI", "Text"}},
	{5, []string{"Joint", "WheelCollider", "Cloth"}},
	{4, []string{"Sprite", "Tilemap"}},
}

// ImpactWeight estimates how much a missing type hurts the exported scene.
// Only unsupported built-ins carry weight.
func ImpactWeight(typeName, classification string) float32 {
	if classification != UnsupportedBuiltin || strings.TrimSpace(typeName) == "" {
		return 0
	}
	for _, tier := range weightTiers {
		if containsAny(typeName, tier.keywords...) {
			return tier.weight
		}
	}
	return 2
}

var gapDefinitions = []struct {
	key, title string
	keywords   []string
}{
	{"animation", "Animation (clips/state machine/skeleton/skinning/blend)",
		[]string{"Animator", "Animation", "SkinnedMeshRenderer", "BlendShape", "Avatar"}},
	{"vfx_particles", "VFX / Particles",
		[]string{"ParticleSystem", "VisualEffect", "VFX"}},
	{"ui_runtime", "UI runtime (Canvas/RectTransform/Text)",
		[]string{"Canvas", "RectTransform", "TextMeshPro", "TMP_", "UnityEngine.UI", "Text"}},
	{"navigation_agents", "Navigation / Agents",
		[]string{"NavMesh", "NavMeshAgent", "OffMeshLink"}},
	{"advanced_physics", "Advanced physics controllers (joints/character/wheel)",
		[]string{"Joint", "CharacterController", "WheelCollider", "Cloth"}},
	{"stack_2d", "2D stack (sprites/tilemaps)",
		[]string{"Sprite", "Tilemap", "CompositeCollider2D", "Rigidbody2D"}},
}

func structuralGaps(missing []Entry) []StructuralGap {
	gaps := make([]StructuralGap, 0, len(gapDefinitions))
	for _, def := range gapDefinitions {
		var related []Entry
		for _, e := range missing {
			if containsAny(e.TypeName, def.keywords...) {
				related = append(related, e)
			}
		}
		sort.SliceStable(related, func(i, j int) bool {
			if related[i].UsageCount != related[j].UsageCount {
				return related[i].UsageCount > related[j].UsageCount
			}
			return related[i].TypeName < related[j].TypeName
		})
		gap := StructuralGap{
			Key:          def.key,
			Title:        def.title,
			Detected:     len(related) > 0,
			RelatedTypes: []string{},
		}
		for i, e := range related {
			gap.RelatedComponentCount += e.UsageCount
			if i < maxRelatedTypes {
				gap.RelatedTypes = append(gap.RelatedTypes, e.TypeName)
			}
		}
		gaps = append(gaps, gap)
	}
	return gaps
}

func containsAny(value string, keywords ...string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	lower := strings.ToLower(value)
	for _, k := range keywords {
		if strings.TrimSpace(k) != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
