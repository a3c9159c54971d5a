package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// model builds a definition used inside each of parents.
func model(index string, parents ...string) *ModelDefinition {
	d := &ModelDefinition{Index: index}
	for _, p := range parents {
		d.Usages = append(d.Usages, UsageReference{Type: index, Parent: p})
	}
	return d
}

func mustSet(t *testing.T, defs ...*ModelDefinition) *ModelSet {
	t.Helper()
	s, err := NewModelSet(defs...)
	require.NoError(t, err)
	return s
}
