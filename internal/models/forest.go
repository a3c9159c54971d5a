package models

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// Placement records how composition positioned a node.
type Placement string

// Placements.
const (
	PlacementTopLevel      Placement = "top_level"      // no container
	PlacementNested        Placement = "nested"         // single container
	PlacementSharedInRoot  Placement = "shared_in_root" // several containers, one root
	PlacementPromoted      Placement = "promoted"       // before the earliest of its roots
	PlacementPromotedFront Placement = "promoted_front" // at the front cursor, no root placed yet
)

// StructureNode pairs a model with its nested children and the roots that
// reach it. Children are held by Index and resolved through the Forest.
type StructureNode struct {
	Model     *ModelDefinition
	Roots     []string
	Placement Placement
	nested    OrderedList[string]
}

// Index returns the Index of the wrapped model.
func (n *StructureNode) Index() string {
	return n.Model.Index
}

// Nested returns the indexes of the child nodes in emission order.
func (n *StructureNode) Nested() []string {
	return n.nested.Items()
}

// Forest is the ordered result of composition. Nodes live in an arena keyed
// by Index; the top-level list and nested lists refer to them by Index.
type Forest struct {
	top   OrderedList[string]
	nodes map[string]*StructureNode
}

func newForest(size int) *Forest {
	return &Forest{nodes: make(map[string]*StructureNode, size)}
}

// Node returns the node for index.
func (f *Forest) Node(index string) (*StructureNode, bool) {
	n, ok := f.nodes[index]
	return n, ok
}

// TopLevel returns the indexes of the top-level nodes in order.
func (f *Forest) TopLevel() []string {
	return f.top.Items()
}

// Nested returns the children of index, or nil if index is unknown.
func (f *Forest) Nested(index string) []string {
	if n, ok := f.nodes[index]; ok {
		return n.Nested()
	}
	return nil
}

// Len returns the number of nodes in the arena.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Walk visits every reachable node in pre-order, passing its depth (0 for
// top-level nodes). Returning an error stops the walk.
func (f *Forest) Walk(fn func(node *StructureNode, depth int) error) error {
	type frame struct {
		index string
		depth int
	}
	top := f.top.Items()
	stack := make([]frame, 0, len(top))
	for i := len(top) - 1; i >= 0; i-- {
		stack = append(stack, frame{index: top[i]})
	}
	seen := make(map[string]bool, len(f.nodes))
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[fr.index] {
			continue
		}
		seen[fr.index] = true
		node := f.nodes[fr.index]
		if err := fn(node, fr.depth); err != nil {
			return err
		}
		children := node.nested.items
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{index: children[i], depth: fr.depth + 1})
		}
	}
	return nil
}

// PreOrder flattens the forest: each node, then its nested children.
func (f *Forest) PreOrder() []string {
	out := make([]string, 0, len(f.nodes))
	_ = f.Walk(func(n *StructureNode, _ int) error {
		out = append(out, n.Index())
		return nil
	})
	return out
}

// EmissionOrder flattens the forest the way declarations are written out:
// nested children come before their container, and top-level order is kept.
func (f *Forest) EmissionOrder() []string {
	type frame struct {
		index    string
		expanded bool
	}
	out := make([]string, 0, len(f.nodes))
	seen := make(map[string]bool, len(f.nodes))
	for _, root := range f.top.items {
		stack := []frame{{index: root}}
		for len(stack) > 0 {
			fr := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if fr.expanded {
				out = append(out, fr.index)
				continue
			}
			if seen[fr.index] {
				continue
			}
			seen[fr.index] = true
			stack = append(stack, frame{index: fr.index, expanded: true})
			children := f.nodes[fr.index].nested.items
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, frame{index: children[i]})
			}
		}
	}
	return out
}

// TreeNode is a serializable view of one forest node.
type TreeNode struct {
	Index     string     `json:"index"`
	Placement Placement  `json:"placement"`
	Roots     []string   `json:"roots,omitempty"`
	Nested    []TreeNode `json:"nested,omitempty"`
}

// Tree returns the forest as nested values.
func (f *Forest) Tree() []TreeNode {
	seen := make(map[string]bool, len(f.nodes))
	var build func(index string) TreeNode
	build = func(index string) TreeNode {
		seen[index] = true
		node := f.nodes[index]
		tn := TreeNode{Index: index, Placement: node.Placement, Roots: node.Roots}
		for _, child := range node.nested.items {
			if seen[child] {
				continue
			}
			tn.Nested = append(tn.Nested, build(child))
		}
		return tn
	}
	out := make([]TreeNode, 0, f.top.Len())
	for _, idx := range f.top.items {
		if seen[idx] {
			continue
		}
		out = append(out, build(idx))
	}
	return out
}

// MarshalJSON encodes the forest as its Tree.
func (f *Forest) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Tree())
}

// Verify checks the forest built from s: every model appears exactly once,
// and for every owned usage the used model is emitted before its container.
// All findings are joined into one error.
func (f *Forest) Verify(s *ModelSet) error {
	var errs []error

	placements := make(map[string]int, len(f.nodes))
	for _, idx := range f.top.items {
		placements[idx]++
	}
	for _, n := range f.nodes {
		for _, idx := range n.nested.items {
			placements[idx]++
		}
	}
	reachable := make(map[string]bool, len(f.nodes))
	for _, idx := range f.PreOrder() {
		reachable[idx] = true
	}
	for _, idx := range s.order {
		switch n := placements[idx]; {
		case n > 1:
			errs = append(errs, &InvariantError{Index: idx, Reason: fmt.Sprintf("placed %d times", n)})
		case !reachable[idx]:
			errs = append(errs, &InvariantError{Index: idx, Reason: "missing from forest"})
		}
	}

	pos := make(map[string]int, len(f.nodes))
	for i, idx := range f.EmissionOrder() {
		pos[idx] = i
	}
	reported := make(map[UsageReference]bool)
	for _, idx := range s.order {
		for _, u := range s.byKey[idx].Usages {
			if !u.Owned() || u.Type == u.Parent || reported[u] {
				continue
			}
			tp, ok1 := pos[u.Type]
			pp, ok2 := pos[u.Parent]
			if ok1 && ok2 && tp > pp {
				reported[u] = true
				errs = append(errs, &InvariantError{
					Index:  u.Type,
					Reason: fmt.Sprintf("emitted after its container %q", u.Parent),
				})
			}
		}
	}
	return errors.Join(errs...)
}
