// Package testutil provides shared fixtures for the analysis-pass tests: a
// canonical two-backend registry and small program builders.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weftlang/weft/internal/backend"
	"github.com/weftlang/weft/internal/ir"
)

// NewRegistry builds the canonical test registry: a "visual" backend owning
// gpu/camera hardware with sink "display", an "audio" backend owning
// mic/speaker hardware with sink "play", and the shared pure/stateful
// builtins every test program leans on.
func NewRegistry(t *testing.T) *backend.Registry {
	t.Helper()
	reg := backend.NewRegistry()

	require.NoError(t, reg.Register(&backend.Backend{
		ID:       "visual",
		Hardware: ir.NewHardware("gpu", "camera"),
		Sink:     "display",
		Coordinates: ir.NewDomain(
			ir.Dimension{Name: "x", Access: ir.Free},
			ir.Dimension{Name: "y", Access: ir.Free},
			ir.Dimension{Name: "t", Access: ir.Bound},
		),
		Builtins: map[string]backend.BuiltinSpec{
			"camera": {
				Name:     "camera",
				Hardware: ir.NewHardware("camera"),
				Domain: ir.NewDomain(
					ir.Dimension{Name: "x", Access: ir.Free},
					ir.Dimension{Name: "y", Access: ir.Free},
					ir.Dimension{Name: "t", Access: ir.Bound},
				),
			},
		},
	}))

	require.NoError(t, reg.Register(&backend.Backend{
		ID:       "audio",
		Hardware: ir.NewHardware("mic", "speaker"),
		Sink:     "play",
		Coordinates: ir.NewDomain(
			ir.Dimension{Name: "s", Access: ir.Free},
			ir.Dimension{Name: "t", Access: ir.Bound},
		),
		Builtins: map[string]backend.BuiltinSpec{
			"microphone": {
				Name:     "microphone",
				Hardware: ir.NewHardware("mic"),
				Domain: ir.NewDomain(
					ir.Dimension{Name: "s", Access: ir.Free},
					ir.Dimension{Name: "t", Access: ir.Bound},
				),
			},
		},
	}))

	for _, name := range []string{"sin", "cos", "abs", "min", "max"} {
		require.NoError(t, reg.RegisterBuiltin(backend.BuiltinSpec{Name: name}))
	}
	require.NoError(t, reg.RegisterBuiltin(backend.BuiltinSpec{Name: "cache", AddsState: true}))

	return reg
}

// Bundle builds a single-strand bundle.
func Bundle(name, strand string, expr ir.Expr) *ir.Bundle {
	return &ir.Bundle{Name: name, Strands: []ir.Strand{{Name: strand, Expr: expr}}}
}

// Program builds a program from bundles.
func Program(bundles ...*ir.Bundle) *ir.Program {
	p := ir.NewProgram()
	for _, b := range bundles {
		p.Bundles[b.Name] = b
	}
	return p
}

// Ref is shorthand for a static bundle reference.
func Ref(bundle, strand string) ir.Expr {
	return ir.BundleRef{Bundle: bundle, Strand: strand}
}

// Coord is shorthand for a coordinate read.
func Coord(name string) ir.Expr {
	return ir.CoordRef{Name: name}
}
