package lower

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlang/weft/internal/ir"
)

func loadStrand(t *testing.T, src string) ir.Expr {
	t.Helper()
	program, err := LoadSource([]byte(src), "test.hcl")
	require.NoError(t, err)
	b, ok := program.Bundle("a")
	require.True(t, ok)
	require.Len(t, b.Strands, 1)
	return b.Strands[0].Expr
}

func strandSrc(expr string) string {
	return `
bundle "a" {
  strand "val" {
    expr = ` + expr + `
  }
}
`
}

func TestLoadSource_ExpressionForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want ir.Expr
	}{
		{"number literal", `3.5`, ir.Literal{Value: 3.5}},
		{"bool literal", `true`, ir.Literal{Value: 1}},
		{"coordinate read", `me.x`, ir.CoordRef{Name: "x"}},
		{"bundle reference", `foo.val`, ir.BundleRef{Bundle: "foo", Strand: "val"}},
		{"dynamic selector", `foo[me.t]`, ir.BundleRef{Bundle: "foo", Index: ir.CoordRef{Name: "t"}}},
		{"parentheses", `(me.x)`, ir.CoordRef{Name: "x"}},
		{"negation", `-me.x`, ir.Unary{Op: "-", X: ir.CoordRef{Name: "x"}}},
		{"arithmetic", `me.x + 1`, ir.Binary{Op: "+", L: ir.CoordRef{Name: "x"}, R: ir.Literal{Value: 1}}},
		{"comparison", `me.x < me.y`, ir.Binary{Op: "<", L: ir.CoordRef{Name: "x"}, R: ir.CoordRef{Name: "y"}}},
		{"builtin call", `sin(me.t)`, ir.Call{Builtin: "sin", Args: []ir.Expr{ir.CoordRef{Name: "t"}}}},
		{"extraction", `pick(minmax(foo.val), 1)`, ir.Extract{
			Call:  ir.Call{Builtin: "minmax", Args: []ir.Expr{ir.BundleRef{Bundle: "foo", Strand: "val"}}},
			Index: 1,
		}},
		{"remap", `remap(foo.val, { x = other.val, t = 0 })`, ir.Remap{
			Base: ir.BundleRef{Bundle: "foo", Strand: "val"},
			Subs: []ir.Sub{
				{Dim: "t", Repl: ir.Literal{Value: 0}},
				{Dim: "x", Repl: ir.BundleRef{Bundle: "other", Strand: "val"}},
			},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := loadStrand(t, strandSrc(tt.src))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("lowered expression mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadSource_SpindleCallsDistinguishedFromBuiltins(t *testing.T) {
	t.Parallel()

	program, err := LoadSource([]byte(`
spindle "osc" {
  params = ["f", "p"]

  local "w" {
    expr = f * 6.28318
  }

  returns = sin(w * me.t + p)
}

bundle "a" {
  strand "val" {
    expr = osc(440, 0) + cos(me.t)
  }
}
`), "test.hcl")
	require.NoError(t, err)

	sp, ok := program.Spindles["osc"]
	require.True(t, ok)
	assert.Equal(t, []string{"f", "p"}, sp.Params)
	require.Len(t, sp.Locals, 1)
	assert.True(t, ir.Equal(
		ir.Binary{Op: "*", L: ir.ParamRef{Name: "f"}, R: ir.Literal{Value: 6.28318}},
		sp.Locals[0].Expr,
	))
	require.Len(t, sp.Returns, 1)

	b, _ := program.Bundle("a")
	expr, ok := b.Strands[0].Expr.(ir.Binary)
	require.True(t, ok)
	call, ok := expr.L.(ir.SpindleCall)
	require.True(t, ok)
	assert.Equal(t, "osc", call.Spindle)
	_, ok = expr.R.(ir.Call)
	assert.True(t, ok, "cos is not a spindle, so it lowers to a builtin call")
}

func TestLoadSource_SpindleTupleReturns(t *testing.T) {
	t.Parallel()

	program, err := LoadSource([]byte(`
spindle "split" {
  params  = ["v"]
  returns = [v, -v]
}
`), "test.hcl")
	require.NoError(t, err)

	sp := program.Spindles["split"]
	require.Len(t, sp.Returns, 2)
	assert.True(t, ir.Equal(ir.ParamRef{Name: "v"}, sp.Returns[0]))
}

func TestLoadSource_MultiStrandBundle(t *testing.T) {
	t.Parallel()

	program, err := LoadSource([]byte(`
bundle "display" {
  strand "r" {
    expr = me.x
  }
  strand "g" {
    expr = me.y
  }
}
`), "test.hcl")
	require.NoError(t, err)

	b, _ := program.Bundle("display")
	require.Len(t, b.Strands, 2)
	s, ok := b.Strand("g")
	require.True(t, ok)
	assert.True(t, ir.Equal(ir.CoordRef{Name: "y"}, s.Expr))
}

func TestLoadSource_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"duplicate bundle", `
bundle "a" {
  strand "v" { expr = 1 }
}
bundle "a" {
  strand "v" { expr = 2 }
}
`, `bundle "a" defined twice`},
		{"duplicate strand", `
bundle "a" {
  strand "v" { expr = 1 }
  strand "v" { expr = 2 }
}
`, `strand "v" defined twice`},
		{"deep traversal", strandSrc(`foo.bar.baz`), "two levels deep"},
		{"dynamic pick index", strandSrc(`pick(minmax(me.x), me.t)`), "constant"},
		{"remap without object", strandSrc(`remap(me.x, 1)`), "object"},
		{"spindle without returns", `
spindle "osc" {
  params = ["f"]
}
`, "returns"},
		{"empty returns tuple", `
spindle "osc" {
  params  = ["f"]
  returns = []
}
`, "at least one return"},
		{"strand without expr", `
bundle "a" {
  strand "v" {
  }
}
`, `strand "v": an expr attribute is required`},
		{"local without expr", `
spindle "osc" {
  params = ["f"]

  local "w" {
  }

  returns = f
}
`, `local "w": an expr attribute is required`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSource([]byte(tt.src), "test.hcl")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
