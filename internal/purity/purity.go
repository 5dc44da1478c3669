package purity

import (
	"sort"

	"github.com/weftlang/weft/internal/backend"
	"github.com/weftlang/weft/internal/depgraph"
	"github.com/weftlang/weft/internal/ir"
)

// Level is the purity category of a bundle. The order matters: propagation
// takes the maximum over dependencies.
type Level int

const (
	// Pure bundles have no side effects or memory; they may be duplicated
	// into any swatch that wants them.
	Pure Level = iota
	// Stateful bundles carry memory (a cache or feedback through one).
	Stateful
	// External bundles touch hardware and are pinned to the owning backend.
	External
)

func (l Level) String() string {
	switch l {
	case External:
		return "external"
	case Stateful:
		return "stateful"
	default:
		return "pure"
	}
}

// Analysis holds the converged classification of one program.
type Analysis struct {
	levels map[string]Level
	owners map[string]string
	sinks  map[string]string
}

// Analyze runs the direct classification pass and propagates levels and
// backend affinity along dependency edges until quiescent.
func Analyze(program *ir.Program, graph *depgraph.Graph, reg *backend.Registry) *Analysis {
	a := &Analysis{
		levels: make(map[string]Level, len(program.Bundles)),
		owners: make(map[string]string),
		sinks:  make(map[string]string),
	}

	builtins := reg.Builtins()
	sinks := reg.Sinks()
	names := program.BundleNames()

	// Direct pass: classify each bundle from its own expression trees, and
	// seed affinity from sinks and exclusively-owned builtins.
	for _, name := range names {
		bundle := program.Bundles[name]
		level := Pure
		if graph.SelfReferential(name) {
			level = Stateful
		}
		for _, strand := range bundle.Strands {
			ir.Walk(strand.Expr, func(e ir.Expr) {
				switch x := e.(type) {
				case ir.Call:
					spec, known := builtins[x.Builtin]
					if !known {
						return
					}
					if spec.External() {
						level = External
					} else if spec.AddsState && level < Stateful {
						level = Stateful
					}
					if owner, owned := reg.BuiltinOwner(x.Builtin); owned {
						a.claim(name, owner)
					}
				case ir.CacheRead:
					if level < Stateful {
						level = Stateful
					}
				}
			})
		}
		a.levels[name] = level

		if backendID, isSink := sinks[name]; isSink {
			a.sinks[name] = backendID
			a.claim(name, backendID)
		}
	}

	// Fixed point: inherit the maximum level and a candidate affinity from
	// dependencies. Each iteration can only escalate, so the loop is bounded
	// by the bundle count; the cap is a backstop, not a correctness need.
	for iter := 0; iter <= len(names); iter++ {
		changed := false
		for _, name := range names {
			for _, dep := range graph.Dependencies(name) {
				if depLevel, ok := a.levels[dep]; ok && depLevel > a.levels[name] {
					a.levels[name] = depLevel
					changed = true
				}
				if owner, ok := a.owners[dep]; ok {
					if a.claim(name, owner) {
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}

	return a
}

// claim records a backend affinity unless one is already held. First claim
// wins; conflicting hardware demands surface in the partitioner, which
// recomputes affinity from hardware sets.
func (a *Analysis) claim(bundle, backendID string) bool {
	if _, held := a.owners[bundle]; held {
		return false
	}
	a.owners[bundle] = backendID
	return true
}

// Purity returns the converged level of the named bundle. Unknown bundles
// are pure.
func (a *Analysis) Purity(name string) Level {
	return a.levels[name]
}

// IsPure reports whether the bundle converged at the pure level.
func (a *Analysis) IsPure(name string) bool {
	return a.levels[name] == Pure
}

// Bundles returns the names of all bundles at the given level, sorted.
func (a *Analysis) Bundles(level Level) []string {
	var out []string
	for name, l := range a.levels {
		if l == level {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Ownership returns the backend affinity of the bundle, if any.
func (a *Analysis) Ownership(name string) (string, bool) {
	owner, ok := a.owners[name]
	return owner, ok
}

// Sinks maps each sink bundle present in the program to its backend.
func (a *Analysis) Sinks() map[string]string {
	out := make(map[string]string, len(a.sinks))
	for name, id := range a.sinks {
		out[name] = id
	}
	return out
}
