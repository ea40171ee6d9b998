package sceneir

import (
	"fmt"
	"sort"
)

// HierarchyIssue describes one broken parent link or cycle.
type HierarchyIssue struct {
	StableID string
	Message  string
}

func (i HierarchyIssue) Error() string {
	return fmt.Sprintf("entity %s: %s", i.StableID, i.Message)
}

// SortEntities orders entities by stable id.
func SortEntities(entities []*Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].StableID < entities[j].StableID
	})
}

// IsSorted reports whether entities are in stable id order.
func IsSorted(entities []*Entity) bool {
	return sort.SliceIsSorted(entities, func(i, j int) bool {
		return entities[i].StableID < entities[j].StableID
	})
}

// ValidateHierarchy checks that ids are unique, that every parent id names an
// entity of the same document and that parent links never form a cycle.
func ValidateHierarchy(entities []*Entity) []HierarchyIssue {
	var issues []HierarchyIssue
	byID := make(map[string]*Entity, len(entities))
	for _, e := range entities {
		if _, dup := byID[e.StableID]; dup {
			issues = append(issues, HierarchyIssue{StableID: e.StableID, Message: "duplicate stable id"})
			continue
		}
		byID[e.StableID] = e
	}

	for _, e := range entities {
		if e.ParentStableID == "" {
			continue
		}
		if _, ok := byID[e.ParentStableID]; !ok {
			issues = append(issues, HierarchyIssue{
				StableID: e.StableID,
				Message:  fmt.Sprintf("parent %s does not exist", e.ParentStableID),
			})
		}
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(byID))
	for _, e := range entities {
		path := make([]string, 0, 8)
		id := e.StableID
		for id != "" && color[id] == white {
			color[id] = gray
			path = append(path, id)
			parent, ok := byID[id]
			if !ok {
				id = ""
				break
			}
			id = parent.ParentStableID
		}
		if id != "" && color[id] == gray {
			issues = append(issues, HierarchyIssue{StableID: id, Message: "parent chain forms a cycle"})
		}
		for _, p := range path {
			color[p] = black
		}
	}
	return issues
}
