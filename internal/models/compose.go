package models

import (
	"errors"
	"fmt"
	"log/slog"
)

// Options configures a Composer.
type Options struct {
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// DetectCycles rejects cyclic containment before composing. Without it
	// cyclic input is undefined behaviour.
	DetectCycles bool
}

// Composer turns a ModelSet into a Forest.
type Composer struct {
	logger       *slog.Logger
	detectCycles bool
}

// NewComposer creates a composer.
func NewComposer(opts Options) *Composer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Composer{logger: logger, detectCycles: opts.DetectCycles}
}

// Compose composes s with default options.
func Compose(s *ModelSet) (*Forest, error) {
	return NewComposer(Options{}).Compose(s)
}

// Compose places every model of s exactly once, in s's iteration order:
//
//   - a model without owned usages goes to the top level;
//   - a model inside exactly one container is appended to its nested list;
//   - a model inside several containers under one root is inserted first in
//     that root's nested list;
//   - a model inside containers under several roots is promoted to the top
//     level, before the earliest of its roots, or at a front cursor when none
//     of them is placed yet.
func (c *Composer) Compose(s *ModelSet) (*Forest, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	if c.detectCycles {
		if err := CheckCycles(s); err != nil {
			return nil, err
		}
	}

	f := newForest(s.Len())
	for _, def := range s.Definitions() {
		roots, err := ExtractRoots(s, def)
		if err != nil {
			return nil, err
		}
		f.nodes[def.Index] = &StructureNode{Model: def, Roots: roots}
	}

	cursor := 0
	for _, idx := range s.order {
		node := f.nodes[idx]
		parents := node.Model.directParents()

		switch {
		case len(parents) == 0:
			f.top.Append(idx)
			node.Placement = PlacementTopLevel

		case len(parents) == 1:
			f.nodes[parents[0]].nested.Append(idx)
			node.Placement = PlacementNested

		case len(node.Roots) > 1:
			node.Placement = PlacementPromoted
			if err := f.top.InsertBefore(idx, node.Roots...); errors.Is(err, ErrNoAnchorFound) {
				f.top.Insert(cursor, idx)
				cursor++
				node.Placement = PlacementPromotedFront
			}

		case len(node.Roots) == 1:
			f.nodes[node.Roots[0]].nested.Insert(0, idx)
			node.Placement = PlacementSharedInRoot

		default:
			return nil, fmt.Errorf("%w: model %q is shared by %v but has no root ancestor", ErrCyclicContainment, idx, parents)
		}
		c.logger.Debug("placed model", "index", idx, "placement", node.Placement, "parents", parents, "roots", node.Roots)
	}

	c.logger.Info("composed forest", "models", s.Len(), "top_level", f.top.Len())
	return f, nil
}
