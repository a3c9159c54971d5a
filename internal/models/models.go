// Package models composes model definitions linked by containment references
// into an ordered forest for sequential code emission.
//
// Every model is placed exactly once: at the top level, or nested under a
// single container. Models shared by several top-level trees are promoted
// ahead of all of them, so a pre-order emitter never needs forward
// references.
package models

import "fmt"

// UsageReference records that Type is used as a nested value inside Parent.
// An empty Parent marks an unowned (top-level) usage.
type UsageReference struct {
	Type   string `json:"type" yaml:"type"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Owned reports whether the usage sits inside a container model.
func (u UsageReference) Owned() bool {
	return u.Parent != ""
}

// ModelDefinition is a model produced by upstream schema analysis.
type ModelDefinition struct {
	// Index is the unique key of the model across the whole set
	Index string
	// Usages lists every place the model is used as a nested value
	Usages []UsageReference
}

// ownedUsages returns the usages that have a container.
func (d *ModelDefinition) ownedUsages() []UsageReference {
	var owned []UsageReference
	for _, u := range d.Usages {
		if u.Owned() {
			owned = append(owned, u)
		}
	}
	return owned
}

// directParents returns the distinct container indexes of the owned usages,
// in first-seen order.
func (d *ModelDefinition) directParents() []string {
	seen := make(map[string]bool)
	var parents []string
	for _, u := range d.Usages {
		if !u.Owned() || seen[u.Parent] {
			continue
		}
		seen[u.Parent] = true
		parents = append(parents, u.Parent)
	}
	return parents
}

// ModelSet is an ordered mapping from Index to ModelDefinition.
// Iteration order is insertion order and drives composition.
type ModelSet struct {
	order []string
	byKey map[string]*ModelDefinition
}

// NewModelSet builds a set from defs, preserving their order.
func NewModelSet(defs ...*ModelDefinition) (*ModelSet, error) {
	s := &ModelSet{byKey: make(map[string]*ModelDefinition, len(defs))}
	for _, d := range defs {
		if err := s.Add(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends def to the set.
func (s *ModelSet) Add(def *ModelDefinition) error {
	if def == nil || def.Index == "" {
		return ErrEmptyIndex
	}
	if s.byKey == nil {
		s.byKey = make(map[string]*ModelDefinition)
	}
	if _, exists := s.byKey[def.Index]; exists {
		return &DuplicateIndexError{Index: def.Index}
	}
	s.byKey[def.Index] = def
	s.order = append(s.order, def.Index)
	return nil
}

// Get returns the definition stored under index.
func (s *ModelSet) Get(index string) (*ModelDefinition, bool) {
	d, ok := s.byKey[index]
	return d, ok
}

// Len returns the number of definitions.
func (s *ModelSet) Len() int {
	return len(s.order)
}

// Indexes returns the indexes in iteration order.
func (s *ModelSet) Indexes() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Definitions returns the definitions in iteration order.
func (s *ModelSet) Definitions() []*ModelDefinition {
	out := make([]*ModelDefinition, 0, len(s.order))
	for _, idx := range s.order {
		out = append(out, s.byKey[idx])
	}
	return out
}

// Validate checks that the set is a closed graph: every Type and Parent of
// every usage must be an Index of the set.
func Validate(s *ModelSet) error {
	for _, idx := range s.order {
		def := s.byKey[idx]
		for _, u := range def.Usages {
			if _, ok := s.byKey[u.Type]; !ok {
				return &DanglingReferenceError{Index: u.Type, Model: idx, Field: "type"}
			}
			if u.Owned() {
				if _, ok := s.byKey[u.Parent]; !ok {
					return &DanglingReferenceError{Index: u.Parent, Model: idx, Field: "parent"}
				}
			}
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (u UsageReference) String() string {
	if !u.Owned() {
		return fmt.Sprintf("%s <- (top level)", u.Type)
	}
	return fmt.Sprintf("%s <- %s", u.Type, u.Parent)
}
