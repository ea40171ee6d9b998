// Package customschema turns host script components into generated C++
// component structs. Schemas only ever grow: a field seen once for a type
// stays in its struct.
package customschema

import (
	"fmt"
	"sort"

	"sceneexport/internal/identity"
	"sceneexport/internal/producer"
	"sceneexport/internal/sceneir"
)

// WarningSink receives report-level warnings.
type WarningSink interface {
	Warn(msg string)
}

type Unifier struct {
	schemas  map[string]*sceneir.CustomComponentSchema
	warnings WarningSink
}

func NewUnifier(warnings WarningSink) *Unifier {
	return &Unifier{
		schemas:  make(map[string]*sceneir.CustomComponentSchema),
		warnings: warnings,
	}
}

func (u *Unifier) warn(msg string) {
	if u.warnings != nil {
		u.warnings.Warn(msg)
	}
}

// GeneratedTypeName is the C++ struct name for a script type.
func GeneratedTypeName(shortName string) string {
	return "Unity" + identity.SanitizeIdentifier(shortName, "") + "Component"
}

// HeaderFileName is the generated header for a script type.
func HeaderFileName(shortName string) string {
	return "unity_" + identity.ToSnakeCase(shortName, "") + "_component.hpp"
}

// EnsureSchema registers schema, or merges its missing fields into the one
// already known for the same source type.
func (u *Unifier) EnsureSchema(schema sceneir.CustomComponentSchema) {
	if schema.SourceType == "" {
		return
	}
	existing, ok := u.schemas[schema.SourceType]
	if !ok {
		copied := schema
		copied.Fields = append([]sceneir.CustomFieldSchema(nil), schema.Fields...)
		u.schemas[schema.SourceType] = &copied
		return
	}
	for _, f := range schema.Fields {
		if !existing.HasField(f.Name) {
			existing.Fields = append(existing.Fields, f)
		}
	}
}

// Observe folds one instance field into the schema of sourceType. It
// reports false when the field conflicts with the first-seen type; the
// caller then leaves the value out of the instance.
func (u *Unifier) Observe(schema *sceneir.CustomComponentSchema, field sceneir.CustomField) bool {
	if known, ok := schema.Field(field.Name); ok {
		if known.CppType != field.CppType {
			u.warn(fmt.Sprintf("Custom component field type mismatch: %s.%s (seen %s, schema %s)",
				schema.SourceType, field.Name, field.CppType, known.CppType))
			return false
		}
		return true
	}
	schema.Fields = append(schema.Fields, sceneir.CustomFieldSchema{
		Name:                   field.Name,
		CppType:                field.CppType,
		DefaultValueCpp:        field.ValueCpp,
		SerializedPropertyType: field.SerializedPropertyType,
	})
	return true
}

// Collect converts one script component. ok is false when no field
// survived, in which case the entity gets no instance.
func (u *Unifier) Collect(comp *producer.Component) (sceneir.CustomComponent, bool) {
	if comp == nil {
		return sceneir.CustomComponent{}, false
	}
	sourceType := comp.TypeName()
	short := comp.ShortName()
	schema, ok := u.schemas[sourceType]
	if !ok {
		schema = &sceneir.CustomComponentSchema{
			SourceType:     sourceType,
			GeneratedType:  GeneratedTypeName(short),
			HeaderFileName: HeaderFileName(short),
		}
		u.schemas[sourceType] = schema
	}

	instance := sceneir.CustomComponent{
		SourceType:    sourceType,
		GeneratedType: schema.GeneratedType,
	}
	for _, f := range comp.Fields {
		if f.Name == "m_Script" {
			continue
		}
		v := Convert(f)
		if v.IsDropped() {
			u.warn(fmt.Sprintf("Custom component field skipped: %s.%s (%s)", sourceType, f.Name, f.Type))
			continue
		}
		fallback := "field"
		if v.Kind == sceneir.KindArray {
			fallback = "array_field"
		}
		field := sceneir.NewCustomField(identity.SanitizeIdentifier(f.Name, fallback), v)
		if u.Observe(schema, field) {
			instance.Fields = append(instance.Fields, field)
		}
	}
	return instance, len(instance.Fields) > 0
}

// Schemas returns every schema ordered by generated type name.
func (u *Unifier) Schemas() []sceneir.CustomComponentSchema {
	out := make([]sceneir.CustomComponentSchema, 0, len(u.schemas))
	for _, s := range u.schemas {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedType < out[j].GeneratedType })
	return out
}

// Len is the number of generated component types.
func (u *Unifier) Len() int { return len(u.schemas) }
