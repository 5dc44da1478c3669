package purity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlang/weft/internal/depgraph"
	"github.com/weftlang/weft/internal/ir"
	"github.com/weftlang/weft/internal/testutil"
)

func analyze(t *testing.T, program *ir.Program) *Analysis {
	t.Helper()
	return Analyze(program, depgraph.Build(program), testutil.NewRegistry(t))
}

func TestLevel_Order(t *testing.T) {
	t.Parallel()

	assert.Less(t, Pure, Stateful)
	assert.Less(t, Stateful, External)
	assert.Equal(t, "pure", Pure.String())
	assert.Equal(t, "stateful", Stateful.String())
	assert.Equal(t, "external", External.String())
}

func TestAnalyze_DirectClassification(t *testing.T) {
	t.Parallel()

	program := testutil.Program(
		testutil.Bundle("plain", "val", ir.Call{Builtin: "sin", Args: []ir.Expr{testutil.Coord("x")}}),
		testutil.Bundle("mem", "val", ir.Call{Builtin: "cache", Args: []ir.Expr{
			ir.Literal{Value: 1}, ir.Literal{Value: 4}, ir.Literal{Value: 0}, testutil.Coord("t"),
		}}),
		testutil.Bundle("cam", "val", ir.Call{Builtin: "camera", Args: []ir.Expr{
			testutil.Coord("x"), testutil.Coord("y"), ir.Literal{Value: 0},
		}}),
	)
	a := analyze(t, program)

	assert.Equal(t, Pure, a.Purity("plain"))
	assert.True(t, a.IsPure("plain"))
	assert.Equal(t, Stateful, a.Purity("mem"))
	assert.Equal(t, External, a.Purity("cam"))
}

func TestAnalyze_SelfReferenceIsStateful(t *testing.T) {
	t.Parallel()

	program := testutil.Program(
		testutil.Bundle("fb", "val", ir.Binary{Op: "+", L: testutil.Ref("fb", "val"), R: ir.Literal{Value: 1}}),
	)
	a := analyze(t, program)

	assert.Equal(t, Stateful, a.Purity("fb"))
}

func TestAnalyze_PropagationIsMonotone(t *testing.T) {
	t.Parallel()

	// top -> mid -> cam: external must travel the whole chain.
	program := testutil.Program(
		testutil.Bundle("top", "val", testutil.Ref("mid", "val")),
		testutil.Bundle("mid", "val", testutil.Ref("cam", "val")),
		testutil.Bundle("cam", "val", ir.Call{Builtin: "camera", Args: []ir.Expr{
			testutil.Coord("x"), testutil.Coord("y"), ir.Literal{Value: 0},
		}}),
	)
	a := analyze(t, program)
	g := depgraph.Build(program)

	assert.Equal(t, External, a.Purity("top"))
	assert.Equal(t, External, a.Purity("mid"))

	// The ordering property itself: purity(B) >= purity(C) for B -> C.
	for _, name := range program.BundleNames() {
		for _, dep := range g.Dependencies(name) {
			assert.GreaterOrEqual(t, a.Purity(name), a.Purity(dep),
				"%s depends on %s but has lower purity", name, dep)
		}
	}
}

func TestAnalyze_StatefulDependencyEscalatesDependent(t *testing.T) {
	t.Parallel()

	program := testutil.Program(
		testutil.Bundle("user", "val", testutil.Ref("prev", "val")),
		testutil.Bundle("prev", "val", ir.Call{Builtin: "cache", Args: []ir.Expr{
			testutil.Ref("current", "val"), ir.Literal{Value: 2}, ir.Literal{Value: 1}, testutil.Coord("t"),
		}}),
		testutil.Bundle("current", "val", testutil.Coord("x")),
	)
	a := analyze(t, program)

	assert.GreaterOrEqual(t, a.Purity("prev"), Stateful)
	assert.Equal(t, Stateful, a.Purity("user"))
	assert.Equal(t, Pure, a.Purity("current"), "dependencies are never escalated by dependents")
}

func TestAnalyze_OwnershipAndSinks(t *testing.T) {
	t.Parallel()

	// cam.val = camera(...); display.r = cam.val
	program := testutil.Program(
		testutil.Bundle("cam", "val", ir.Call{Builtin: "camera", Args: []ir.Expr{
			testutil.Coord("x"), testutil.Coord("y"), ir.Literal{Value: 0},
		}}),
		testutil.Bundle("display", "r", testutil.Ref("cam", "val")),
	)
	a := analyze(t, program)

	owner, ok := a.Ownership("cam")
	require.True(t, ok)
	assert.Equal(t, "visual", owner)

	owner, ok = a.Ownership("display")
	require.True(t, ok)
	assert.Equal(t, "visual", owner)

	assert.Equal(t, External, a.Purity("cam"))
	assert.Equal(t, External, a.Purity("display"))

	sinks := a.Sinks()
	assert.Equal(t, map[string]string{"display": "visual"}, sinks)
}

func TestAnalyze_BundlesByLevel(t *testing.T) {
	t.Parallel()

	program := testutil.Program(
		testutil.Bundle("b1", "val", ir.Literal{Value: 1}),
		testutil.Bundle("a1", "val", ir.Literal{Value: 2}),
		testutil.Bundle("mem", "val", ir.CacheRead{Cache: "c0"}),
	)
	a := analyze(t, program)

	assert.Equal(t, []string{"a1", "b1"}, a.Bundles(Pure))
	assert.Equal(t, []string{"mem"}, a.Bundles(Stateful))
	assert.Empty(t, a.Bundles(External))
}
