// Package jsonscene is the declarative backend: it writes a scene document as
// the JSON file read by the generated JSON runtime loader.
package jsonscene

import (
	"fmt"

	"sceneexport/internal/codegen"
	"sceneexport/internal/sceneir"
	"sceneexport/internal/util/jsonutil"
)

// BundleWriter persists bundle-relative files.
type BundleWriter interface {
	WriteFile(name string, content []byte) error
}

// backend rebuilds the document with entities in emitted order. Resources
// stay inline as bundle paths; the loader deduplicates them by path the same
// way the procedural backend's plan does.
type backend struct {
	out      sceneir.SceneDocument
	entities []*sceneir.Entity
	data     []byte
}

func (b *backend) Preamble(doc *sceneir.SceneDocument, plan *codegen.Plan) error {
	b.out = *doc
	b.entities = make([]*sceneir.Entity, 0, len(plan.Entities))
	return nil
}

func (b *backend) SharedResources(*codegen.Plan) error { return nil }

func (b *backend) Entity(_ int, e *sceneir.Entity) error {
	b.entities = append(b.entities, e)
	return nil
}

// HierarchyLinks has nothing to add: parentStableId is part of each entity.
func (b *backend) HierarchyLinks([]*sceneir.Entity) error { return nil }

func (b *backend) Epilogue() error {
	b.out.Entities = b.entities
	if b.out.Warnings == nil {
		b.out.Warnings = []string{}
	}
	if b.out.SchemaVersion == "" {
		b.out.SchemaVersion = sceneir.SceneSchemaVersion
	}
	data, err := jsonutil.MarshalNoEscapeIndent(b.out)
	if err != nil {
		return fmt.Errorf("encode scene json: %w", err)
	}
	b.data = data
	return nil
}

// Render encodes doc with entities in stable id order. doc is left as is.
func Render(doc *sceneir.SceneDocument) ([]byte, error) {
	b := &backend{}
	if _, err := codegen.Emit(doc, b); err != nil {
		return nil, err
	}
	return b.data, nil
}

// Write renders doc to name inside the bundle.
func Write(bundle BundleWriter, name string, doc *sceneir.SceneDocument) error {
	if bundle == nil {
		return fmt.Errorf("bundle is nil")
	}
	data, err := Render(doc)
	if err != nil {
		return err
	}
	if err := bundle.WriteFile(name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Decode reads a scene document written by Render.
func Decode(data []byte) (*sceneir.SceneDocument, error) {
	var doc sceneir.SceneDocument
	if err := jsonutil.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("decode scene json: %w", err)
	}
	return &doc, nil
}
