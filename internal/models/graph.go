package models

import "github.com/leapstack-labs/modelforest/internal/dag"

// ContainmentGraph builds the definition-order graph of s: an edge runs from
// each used model to its container, so dependencies come first.
// s must already be closed (see Validate).
func ContainmentGraph(s *ModelSet) (*dag.Graph, error) {
	g := dag.NewGraph()
	for _, def := range s.Definitions() {
		g.AddNode(def.Index, def)
	}
	for _, def := range s.Definitions() {
		for _, u := range def.Usages {
			if !u.Owned() {
				continue
			}
			if u.Type == u.Parent {
				return nil, &CycleError{Path: []string{u.Type, u.Parent}}
			}
			if err := g.AddEdge(u.Type, u.Parent); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// CheckCycles returns a *CycleError if s contains itself through a chain of
// containers.
func CheckCycles(s *ModelSet) error {
	g, err := ContainmentGraph(s)
	if err != nil {
		return err
	}
	if hasCycle, path := g.HasCycle(); hasCycle {
		return &CycleError{Path: path}
	}
	return nil
}
