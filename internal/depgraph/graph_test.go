package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlang/weft/internal/ir"
	"github.com/weftlang/weft/internal/testutil"
)

func TestBuild_CollectsReferences(t *testing.T) {
	t.Parallel()

	program := testutil.Program(
		testutil.Bundle("a", "val", ir.Binary{Op: "+", L: testutil.Ref("b", "val"), R: testutil.Coord("x")}),
		testutil.Bundle("b", "val", ir.Call{Builtin: "sin", Args: []ir.Expr{testutil.Ref("c", "val")}}),
		testutil.Bundle("c", "val", ir.Literal{Value: 1}),
	)
	g := Build(program)

	assert.Equal(t, []string{"b"}, g.Dependencies("a"))
	assert.Equal(t, []string{"c"}, g.Dependencies("b"))
	assert.Empty(t, g.Dependencies("c"))
	assert.Equal(t, []string{"b"}, g.Dependents("c"))
}

func TestBuild_ExcludesCoordinatePseudoBundle(t *testing.T) {
	t.Parallel()

	program := testutil.Program(
		testutil.Bundle("a", "val", testutil.Coord("x")),
	)
	g := Build(program)

	assert.Empty(t, g.Dependencies("a"))
	assert.False(t, g.Contains(ir.CoordinateBundle))
}

func TestBuild_SelfReferenceIsNotAnEdge(t *testing.T) {
	t.Parallel()

	// Feedback through a cache: prev taps its own value one step back.
	program := testutil.Program(
		testutil.Bundle("prev", "val", ir.Call{Builtin: "cache", Args: []ir.Expr{
			ir.Binary{Op: "+", L: testutil.Ref("prev", "val"), R: ir.Literal{Value: 1}},
			ir.Literal{Value: 2},
			ir.Literal{Value: 1},
			testutil.Coord("t"),
		}}),
	)
	g := Build(program)

	assert.True(t, g.SelfReferential("prev"))
	assert.Empty(t, g.Dependencies("prev"))
	assert.False(t, g.HasCycles(), "self-reference must not count as a cycle")
}

func TestTopologicalSort_OrdersDependenciesFirst(t *testing.T) {
	t.Parallel()

	program := testutil.Program(
		testutil.Bundle("display", "r", testutil.Ref("mid", "val")),
		testutil.Bundle("mid", "val", testutil.Ref("leaf", "val")),
		testutil.Bundle("leaf", "val", ir.Literal{Value: 1}),
	)
	g := Build(program)

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Len(t, order, 3)

	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	assert.Less(t, pos["leaf"], pos["mid"])
	assert.Less(t, pos["mid"], pos["display"])
}

func TestTopologicalSort_DetectsCycle(t *testing.T) {
	t.Parallel()

	// a.val = b.val + 1; b.val = a.val + 1, with no cache in between.
	program := testutil.Program(
		testutil.Bundle("a", "val", ir.Binary{Op: "+", L: testutil.Ref("b", "val"), R: ir.Literal{Value: 1}}),
		testutil.Bundle("b", "val", ir.Binary{Op: "+", L: testutil.Ref("a", "val"), R: ir.Literal{Value: 1}}),
	)
	g := Build(program)

	_, err := g.TopologicalSort()
	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.ElementsMatch(t, []string{"a", "b"}, cycle.Members,
		"error carries each offending bundle exactly once")
	assert.True(t, g.HasCycles())
}

func TestTransitiveDependencies(t *testing.T) {
	t.Parallel()

	program := testutil.Program(
		testutil.Bundle("top", "val", ir.Binary{Op: "*", L: testutil.Ref("mid", "val"), R: testutil.Ref("other", "val")}),
		testutil.Bundle("mid", "val", testutil.Ref("leaf", "val")),
		testutil.Bundle("other", "val", ir.Literal{Value: 3}),
		testutil.Bundle("leaf", "val", ir.Literal{Value: 1}),
		testutil.Bundle("dead", "val", ir.Literal{Value: 0}),
	)
	g := Build(program)

	assert.Equal(t, []string{"leaf", "mid", "other"}, g.TransitiveDependencies("top"))
	assert.Empty(t, g.TransitiveDependencies("leaf"))
	assert.Nil(t, g.TransitiveDependencies("unknown"))
}

func TestBuild_DanglingReferenceStillProducesNode(t *testing.T) {
	t.Parallel()

	program := testutil.Program(
		testutil.Bundle("a", "val", testutil.Ref("ghost", "val")),
	)
	g := Build(program)

	assert.Equal(t, []string{"ghost"}, g.Dependencies("a"))
	assert.True(t, g.Contains("ghost"))
}
