package sceneir

// CustomComponent is one script component instance attached to an entity.
type CustomComponent struct {
	SourceType    string        `json:"sourceType"`
	GeneratedType string        `json:"generatedType"`
	Fields        []CustomField `json:"fields"`
}

type CustomField struct {
	Name                   string    `json:"name"`
	CppType                string    `json:"cppType"`
	ValueCpp               string    `json:"valueCpp"`
	SerializedPropertyType string    `json:"serializedPropertyType"`
	Kind                   ValueKind `json:"-"`
}

// NewCustomField renders v into its serialized field form.
func NewCustomField(name string, v Value) CustomField {
	return CustomField{
		Name:                   name,
		CppType:                v.CppType(),
		ValueCpp:               v.CppLiteral(),
		SerializedPropertyType: v.Kind.PropertyType(),
		Kind:                   v.Kind,
	}
}

// CustomComponentSchema is the superset of fields seen for one source type.
type CustomComponentSchema struct {
	SourceType     string              `json:"sourceType"`
	GeneratedType  string              `json:"generatedType"`
	HeaderFileName string              `json:"headerFileName"`
	Fields         []CustomFieldSchema `json:"fields"`
}

type CustomFieldSchema struct {
	Name                   string `json:"name"`
	CppType                string `json:"cppType"`
	DefaultValueCpp        string `json:"defaultValueCpp"`
	SerializedPropertyType string `json:"serializedPropertyType"`
}

// HasField reports whether the schema already declares name.
func (s *CustomComponentSchema) HasField(name string) bool {
	_, ok := s.Field(name)
	return ok
}

func (s *CustomComponentSchema) Field(name string) (CustomFieldSchema, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return CustomFieldSchema{}, false
}
