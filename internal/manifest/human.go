package manifest

import (
	"fmt"
	"strings"

	"sceneexport/internal/audit"
)

// maxHumanTopMissing caps the missing-component list in report.txt.
const maxHumanTopMissing = 10

// HumanReport renders the plain-text summary written to report.txt.
func HumanReport(r *Report, m *Manifest) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("Unity -> CyberEngine Export Report")
	line("Generated: %s", r.GeneratedAtUTC)
	line("Duration: %.2fs", r.DurationSeconds)
	line("")
	line("Stats:")
	line("- Scenes: %d", r.Stats.SceneCount)
	line("- Entities: %d", r.Stats.EntityCount)
	line("- Materials: %d", r.Stats.MaterialCount)
	line("- Texture assets: %d", r.Stats.TextureCount)
	line("- Model assets: %d", r.Stats.ModelAssetCount)
	line("- Audio assets: %d", r.Stats.AudioAssetCount)
	line("- Terrain assets: %d", r.Stats.TerrainAssetCount)
	line("- Generated custom components: %d", r.Stats.GeneratedCustomComponentCount)
	line("- Component types: %d", r.Stats.TotalComponentTypeCount)
	line("- Unsupported built-in component types: %d", r.Stats.UnsupportedBuiltinTypeCount)
	line("- Unsupported built-in component instances: %d", r.Stats.UnsupportedBuiltinInstanceCount)
	line("")

	if m != nil && len(m.Scenes) > 0 {
		line("Scenes:")
		for _, s := range m.Scenes {
			line("- %s (entities=%d, warnings=%d)", s.SceneName, s.EntityCount, s.WarningCount)
		}
		if strings.TrimSpace(m.GameDataPath) != "" {
			line("- Game data: %s", m.GameDataPath)
		}
		line("")
	}

	if m != nil && m.ComponentAudit != nil && len(m.ComponentAudit.TopMissing) > 0 {
		line("Top missing built-in components:")
		top := m.ComponentAudit.TopMissing
		if len(top) > maxHumanTopMissing {
			top = top[:maxHumanTopMissing]
		}
		for _, t := range top {
			line("- %s (usage=%d, score=%s)", t.TypeName, t.UsageCount, audit.Short(float32(t.Score)))
		}
		line("")
	}

	if m != nil && m.GeneratedProject != nil {
		p := m.GeneratedProject
		mode := p.SceneLoadingMode
		if strings.TrimSpace(mode) == "" {
			mode = "cpp"
		}
		line("Generated C++ project:")
		line("- Root: %s", p.RootPath)
		line("- Default scene: %s", p.DefaultSceneName)
		line("- Scene loading mode: %s", mode)
		line("- CyberEngine folder required: CyberEngine/")
		line("- Build: cmake -S . -B build")
		line("- Build: cmake --build build")
		line("- Run: build/game/<exe_name> --scene \"%s\"", p.DefaultSceneName)
		line("")
	}

	if len(r.Warnings) > 0 {
		line("Warnings:")
		for _, w := range r.Warnings {
			line("- %s", w)
		}
		line("")
	}

	if len(r.Errors) > 0 {
		line("Errors:")
		for _, e := range r.Errors {
			line("- %s", e)
		}
	} else {
		line("Errors: none")
	}
	return b.String()
}
