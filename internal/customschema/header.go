package customschema

import (
	"fmt"
	"sort"
	"strings"

	"sceneexport/internal/identity"
	"sceneexport/internal/sceneir"
)

const (
	GeneratedDir       = "game/components/generated"
	AggregatorFileName = "game/components/generated_components.hpp"
)

// BundleWriter persists bundle-relative files.
type BundleWriter interface {
	WriteFile(name string, content []byte) error
}

// WriteHeaders writes one header per schema plus the aggregator and returns
// the bundle-relative paths written.
func (u *Unifier) WriteHeaders(bundle BundleWriter) ([]string, error) {
	schemas := u.Schemas()
	written := make([]string, 0, len(schemas)+1)
	for _, s := range schemas {
		rel := GeneratedDir + "/" + s.HeaderFileName
		if err := bundle.WriteFile(rel, []byte(BuildHeader(s))); err != nil {
			return written, fmt.Errorf("write %s: %w", rel, err)
		}
		written = append(written, rel)
	}
	if err := bundle.WriteFile(AggregatorFileName, []byte(BuildAggregator(schemas))); err != nil {
		return written, fmt.Errorf("write %s: %w", AggregatorFileName, err)
	}
	return append(written, AggregatorFileName), nil
}

// BuildHeader renders a struct with fields in name order.
func BuildHeader(schema sceneir.CustomComponentSchema) string {
	fields := append([]sceneir.CustomFieldSchema(nil), schema.Fields...)
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	var b strings.Builder
	b.WriteString("#pragma once\n")
	b.WriteString("#include <glm/glm.hpp>\n")
	b.WriteString("#include <string>\n")
	b.WriteString("#include <vector>\n\n")
	b.WriteString("struct " + schema.GeneratedType + "\n{\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "    %s %s = %s;\n", f.CppType, identity.SanitizeIdentifier(f.Name, ""), f.DefaultValueCpp)
	}
	b.WriteString("};\n")
	return b.String()
}

func BuildAggregator(schemas []sceneir.CustomComponentSchema) string {
	var b strings.Builder
	b.WriteString("#pragma once\n")
	for _, s := range schemas {
		b.WriteString("#include \"generated/" + s.HeaderFileName + "\"\n")
	}
	return b.String()
}
