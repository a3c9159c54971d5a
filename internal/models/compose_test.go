package models

import (
	"bytes"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/modelforest/internal/testutil"
)

func compose(t *testing.T, s *ModelSet) *Forest {
	t.Helper()
	f, err := NewComposer(Options{Logger: testutil.NewTestLogger(t)}).Compose(s)
	require.NoError(t, err)
	return f
}

func TestCompose_Scenario(t *testing.T) {
	orders := map[string][]*ModelDefinition{
		"roots first":  {model("A"), model("B", "A"), model("C", "A", "D"), model("D")},
		"shared first": {model("C", "A", "D"), model("A"), model("B", "A"), model("D")},
	}
	for name, defs := range orders {
		t.Run(name, func(t *testing.T) {
			f := compose(t, mustSet(t, defs...))

			assert.Equal(t, []string{"C", "A", "D"}, f.TopLevel())
			assert.Equal(t, []string{"B"}, f.Nested("A"))
			assert.Empty(t, f.Nested("C"))
			assert.Empty(t, f.Nested("D"))
		})
	}
}

func TestCompose_TopLevelInInputOrder(t *testing.T) {
	f := compose(t, mustSet(t, model("Zeta"), model("Alpha"), model("Mid")))

	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, f.TopLevel())
}

func TestCompose_SingleParentNesting(t *testing.T) {
	f := compose(t, mustSet(t,
		model("User"),
		model("Address", "User"),
		model("Street", "Address"),
		model("Phone", "User"),
		// the same container twice still counts as one parent
		model("Tag", "Phone", "Phone"),
	))

	assert.Equal(t, []string{"User"}, f.TopLevel())
	assert.Equal(t, []string{"Address", "Phone"}, f.Nested("User"))
	assert.Equal(t, []string{"Street"}, f.Nested("Address"))
	assert.Equal(t, []string{"Tag"}, f.Nested("Phone"))
}

func TestCompose_SharedWithinRoot(t *testing.T) {
	s := mustSet(t,
		model("Order"),
		model("Note", "Order"),
		model("Price", "Order"),
		model("Total", "Order"),
		model("Money", "Price", "Total"),
	)
	f := compose(t, s)

	assert.Equal(t, []string{"Order"}, f.TopLevel())
	assert.Equal(t, []string{"Money", "Note", "Price", "Total"}, f.Nested("Order"))
	node, _ := f.Node("Money")
	assert.Equal(t, PlacementSharedInRoot, node.Placement)
	assert.NoError(t, f.Verify(s))
}

func TestCompose_CrossRootBeforeEarliestRoot(t *testing.T) {
	s := mustSet(t,
		model("Audit"),
		model("Shop"),
		model("User"),
		model("Address", "User", "Shop"),
	)
	f := compose(t, s)

	assert.Equal(t, []string{"Audit", "Address", "Shop", "User"}, f.TopLevel())
	node, _ := f.Node("Address")
	assert.Equal(t, PlacementPromoted, node.Placement)
	assert.NoError(t, f.Verify(s))
}

func TestCompose_FallbackCursorKeepsDiscoveryOrder(t *testing.T) {
	s := mustSet(t,
		model("Audit"),
		model("Address", "User", "Shop"),
		model("Email", "User", "Shop"),
		model("User"),
		model("Shop"),
	)
	f := compose(t, s)

	assert.Equal(t, []string{"Address", "Email", "Audit", "User", "Shop"}, f.TopLevel())
	for _, idx := range []string{"Address", "Email"} {
		node, _ := f.Node(idx)
		assert.Equal(t, PlacementPromotedFront, node.Placement, idx)
	}
	assert.NoError(t, f.Verify(s))
}

func TestCompose_CrossRootThroughNestedContainers(t *testing.T) {
	// Money reaches two roots through Price (Order) and Balance (Account).
	s := mustSet(t,
		model("Order"),
		model("Account"),
		model("Price", "Order"),
		model("Balance", "Account"),
		model("Money", "Price", "Balance"),
	)
	f := compose(t, s)

	assert.Equal(t, []string{"Money", "Order", "Account"}, f.TopLevel())
	node, ok := f.Node("Money")
	require.True(t, ok)
	assert.Equal(t, []string{"Account", "Order"}, node.Roots)
	assert.NoError(t, f.Verify(s))
}

func TestCompose_UnownedUsages(t *testing.T) {
	s := mustSet(t,
		model("User"),
		// only used at the top level
		&ModelDefinition{Index: "Token", Usages: []UsageReference{{Type: "Token"}}},
		// used at the top level and inside User: placed by its container
		&ModelDefinition{Index: "Email", Usages: []UsageReference{{Type: "Email"}, {Type: "Email", Parent: "User"}}},
	)
	f := compose(t, s)

	assert.Equal(t, []string{"User", "Token"}, f.TopLevel())
	assert.Equal(t, []string{"Email"}, f.Nested("User"))
}

func TestCompose_DanglingReference(t *testing.T) {
	tests := []struct {
		name    string
		def     *ModelDefinition
		missing string
		field   string
	}{
		{"missing parent", model("Address", "Ghost"), "Ghost", "parent"},
		{"missing type", &ModelDefinition{Index: "Address", Usages: []UsageReference{{Type: "Phantom", Parent: "User"}}}, "Phantom", "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSet(t, model("User"), tt.def)

			f, err := Compose(s)

			assert.Nil(t, f)
			var dangling *DanglingReferenceError
			require.ErrorAs(t, err, &dangling)
			assert.Equal(t, tt.missing, dangling.Index)
			assert.Equal(t, tt.field, dangling.Field)
			assert.Equal(t, "Address", dangling.Model)
		})
	}
}

func TestCompose_CyclicContainment(t *testing.T) {
	s := mustSet(t,
		model("P", "Q"),
		model("Q", "P"),
		model("X", "P", "Q"),
	)

	t.Run("default", func(t *testing.T) {
		_, err := Compose(s)
		assert.ErrorIs(t, err, ErrCyclicContainment)
	})

	t.Run("strict", func(t *testing.T) {
		_, err := NewComposer(Options{DetectCycles: true}).Compose(s)
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.ErrorIs(t, err, ErrCyclicContainment)
		assert.Equal(t, cycle.Path[0], cycle.Path[len(cycle.Path)-1])
	})

	t.Run("strict self containment", func(t *testing.T) {
		_, err := NewComposer(Options{DetectCycles: true}).Compose(mustSet(t, model("Tree", "Tree")))
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"Tree", "Tree"}, cycle.Path)
	})
}

func TestCompose_Idempotent(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	s := randomSet(t, r, 30)

	first := compose(t, s)
	second := compose(t, s)

	assert.Equal(t, first.Tree(), second.Tree())
	assert.Equal(t, first.PreOrder(), second.PreOrder())
}

func TestCompose_Completeness(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for round := 0; round < 50; round++ {
		s := randomSet(t, r, 15)
		f := compose(t, s)

		order := f.PreOrder()
		assert.ElementsMatch(t, s.Indexes(), order, "round %d", round)
		assert.Equal(t, s.Len(), f.Len())
	}
}

func TestCompose_LogsSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := NewComposer(Options{Logger: logger}).Compose(mustSet(t, model("A"), model("B", "A")))
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "composed forest")
	assert.Contains(t, buf.String(), "models=2")
	assert.NotContains(t, buf.String(), "placed model", "debug records are below the default level")
}
