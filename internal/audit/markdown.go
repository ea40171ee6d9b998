package audit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Markdown renders the human-readable companion of component_audit.json.
func Markdown(r Report) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("# Component Audit")
	line("")
	line("Generated: %s", r.GeneratedAtUTC)
	line("")
	line("## Summary")
	line("- Total component types: %d", r.Summary.TotalComponentTypeCount)
	line("- Unsupported built-in types: %d", r.Summary.UnsupportedBuiltinTypeCount)
	line("- Unsupported built-in instances: %d", r.Summary.UnsupportedBuiltinInstanceCount)
	line("")

	line("## Top Missing Built-in Components")
	if len(r.Summary.TopMissing) == 0 {
		line("- None")
	}
	for _, top := range r.Summary.TopMissing {
		line("- `%s` usage=%d impactWeight=%s score=%s",
			top.TypeName, top.UsageCount, Short(float32(top.ImpactWeight)), Short(float32(top.Score)))
	}
	line("")

	line("## Structural Gaps")
	for _, gap := range r.StructuralGaps {
		state := "not detected"
		if gap.Detected {
			state = "DETECTED"
		}
		line("- %s: %s (count=%d)", gap.Title, state, gap.RelatedComponentCount)
		if len(gap.RelatedTypes) > 0 {
			line("  related: %s", strings.Join(gap.RelatedTypes, ", "))
		}
	}
	line("")

	line("## Components")
	ordered := append([]Entry(nil), r.Components...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].TypeName < ordered[j].TypeName
	})
	for _, c := range ordered {
		line("### `%s`", c.TypeName)
		line("- classification: `%s`", c.Classification)
		line("- usageCount: %d", c.UsageCount)
		line("- impactWeight: %s", Short(float32(c.ImpactWeight)))
		line("- score: %s", Short(float32(c.Score)))
		if len(c.Scenes) > 0 {
			line("- scenes:")
			for _, s := range c.Scenes {
				line("  - %s: %d", s.SceneName, s.Count)
			}
		}
		if len(c.Examples) > 0 {
			line("- examples:")
			for _, ex := range c.Examples {
				line("  - %s", ex)
			}
		}
		line("")
	}
	return b.String()
}

// Short formats f with at most two decimals and no trailing zeros.
func Short(f float32) string {
	s := strconv.FormatFloat(float64(f), 'f', 2, 32)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}
