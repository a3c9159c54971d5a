package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyIndex is returned when a definition has no Index.
	ErrEmptyIndex = errors.New("model index is empty")
	// ErrCyclicContainment marks input that contains itself through a chain
	// of containers. Such input is outside the supported domain.
	ErrCyclicContainment = errors.New("cyclic containment")
)

// DanglingReferenceError reports a usage pointing at an Index missing from
// the model set.
type DanglingReferenceError struct {
	Index string // missing index
	Model string // model whose usage holds the reference
	Field string // "type" or "parent"
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: model %q has usage %s %q which is not defined", e.Model, e.Field, e.Index)
}

// DuplicateIndexError reports an Index defined twice.
type DuplicateIndexError struct {
	Index string
}

func (e *DuplicateIndexError) Error() string {
	return fmt.Sprintf("duplicate model index %q", e.Index)
}

// CycleError reports a containment cycle found in strict mode.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCyclicContainment, strings.Join(e.Path, " -> "))
}

// Unwrap lets errors.Is match ErrCyclicContainment.
func (e *CycleError) Unwrap() error {
	return ErrCyclicContainment
}

// InvariantError describes a forest that breaks a composition guarantee.
type InvariantError struct {
	Index  string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("model %q: %s", e.Index, e.Reason)
}
