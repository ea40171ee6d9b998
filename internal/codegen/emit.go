package codegen

import (
	"fmt"

	"sceneexport/internal/sceneir"
)

// Stage names one step of a backend pass.
type Stage int

const (
	StagePreamble Stage = iota
	StageSharedResources
	StageEntities
	StageHierarchyLinks
	StageEpilogue
)

func (s Stage) String() string {
	switch s {
	case StagePreamble:
		return "preamble"
	case StageSharedResources:
		return "shared resources"
	case StageEntities:
		return "entities"
	case StageHierarchyLinks:
		return "hierarchy links"
	case StageEpilogue:
		return "epilogue"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Backend renders one scene. Emit calls the methods in stage order, entities
// in stable id order with their index in that order.
type Backend interface {
	Preamble(doc *sceneir.SceneDocument, plan *Plan) error
	SharedResources(plan *Plan) error
	Entity(index int, e *sceneir.Entity) error
	HierarchyLinks(entities []*sceneir.Entity) error
	Epilogue() error
}

// Emit walks doc through b once and returns the plan it was rendered with.
func Emit(doc *sceneir.SceneDocument, b Backend) (*Plan, error) {
	if doc == nil {
		return nil, fmt.Errorf("scene document is nil")
	}
	if b == nil {
		return nil, fmt.Errorf("backend is nil")
	}
	plan := NewPlan(doc)
	fail := func(stage Stage, err error) (*Plan, error) {
		return plan, fmt.Errorf("%s %s: %w", doc.SceneName, stage, err)
	}

	if err := b.Preamble(doc, plan); err != nil {
		return fail(StagePreamble, err)
	}
	if err := b.SharedResources(plan); err != nil {
		return fail(StageSharedResources, err)
	}
	for i, e := range plan.Entities {
		if err := b.Entity(i, e); err != nil {
			return fail(StageEntities, err)
		}
	}
	if err := b.HierarchyLinks(plan.Entities); err != nil {
		return fail(StageHierarchyLinks, err)
	}
	if err := b.Epilogue(); err != nil {
		return fail(StageEpilogue, err)
	}
	return plan, nil
}
