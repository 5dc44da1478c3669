package partition

import (
	"sort"

	"github.com/weftlang/weft/internal/backend"
	"github.com/weftlang/weft/internal/depgraph"
	"github.com/weftlang/weft/internal/ir"
	"github.com/weftlang/weft/internal/purity"
)

// Swatch is one backend's compilation unit.
type Swatch struct {
	// Backend is the owning backend id; swatches are keyed by it.
	Backend string
	// Bundles are the member bundle names, sorted. Pure bundles may appear
	// in several swatches; everything else appears in exactly one.
	Bundles []string
	// Inputs are bundle names this swatch consumes from other swatches.
	Inputs []string
	// Outputs are bundle names this swatch produces for other swatches.
	Outputs []string
	// Sink marks the swatch containing its backend's sink bundle.
	Sink bool
}

// Contains reports bundle membership.
func (s *Swatch) Contains(bundle string) bool {
	i := sort.SearchStrings(s.Bundles, bundle)
	return i < len(s.Bundles) && s.Bundles[i] == bundle
}

// SwatchGraph is the partitioning result: swatches, their dependency DAG,
// and the unique placement of every non-duplicated bundle.
type SwatchGraph struct {
	// Swatches by backend id.
	Swatches map[string]*Swatch
	// Edges maps a swatch to the swatches it consumes buffers from, sorted.
	Edges map[string][]string
	// Owner maps each non-pure bundle to the single swatch holding it.
	Owner map[string]string
	// Order is a topological order of the swatches: producers first.
	Order []string
}

// Partition computes the swatch graph. It fails only on a cyclic swatch
// dependency graph; bundles unreachable from any swatch are dead code and
// silently omitted.
func Partition(program *ir.Program, graph *depgraph.Graph, analysis *purity.Analysis, reg *backend.Registry) (*SwatchGraph, error) {
	p := &partitioner{
		program:  program,
		graph:    graph,
		builtins: reg.Builtins(),
		analysis: analysis,
		registry: reg,
		members:  make(map[string]map[string]bool),
		owner:    make(map[string]string),
	}

	p.assignByHardware()
	p.seedSwatches()
	p.closeSwatches()
	return p.finish()
}

type partitioner struct {
	program  *ir.Program
	graph    *depgraph.Graph
	builtins map[string]backend.BuiltinSpec
	analysis *purity.Analysis
	registry *backend.Registry

	// members holds the bundle set per swatch (backend id) while it grows.
	members map[string]map[string]bool
	// owner records the unique placement of every non-pure bundle.
	owner map[string]string
	// seeded lists backend ids with a swatch, sorted once seeding is done.
	seeded []string
}

// bundleHardware is the bundle's own hardware demand: the tags required by
// builtins its strands call directly. Hardware reaching the bundle through a
// reference pins the referenced bundle instead; this one can read it through
// a buffer.
func (p *partitioner) bundleHardware(name string) ir.Hardware {
	bundle, ok := p.program.Bundle(name)
	if !ok {
		return nil
	}
	var hw ir.Hardware
	for _, strand := range bundle.Strands {
		ir.Walk(strand.Expr, func(e ir.Expr) {
			call, ok := e.(ir.Call)
			if !ok {
				return
			}
			if spec, known := p.builtins[call.Builtin]; known {
				hw = hw.Union(spec.Hardware)
			}
		})
	}
	return hw
}

// assignByHardware pins each hardware-requiring bundle to the backend owning
// its tags. A bundle demanding tags of two backends cannot happen under a
// well-formed registry (one owner per tag is enforced at registration); the
// sorted-first backend keeps the outcome deterministic regardless.
func (p *partitioner) assignByHardware() {
	backends := p.registry.Backends()
	for _, name := range p.program.BundleNames() {
		hw := p.bundleHardware(name)
		if hw.Empty() {
			continue
		}
		for _, b := range backends {
			if !hw.Intersect(b.Hardware).Empty() {
				p.owner[name] = b.ID
				break
			}
		}
	}
	// Bundles using a builtin some backend exclusively owns carry an affinity
	// from the classification pass even without a hardware demand. They are
	// pinned, not duplicated: other backends cannot compile that builtin.
	for _, name := range p.program.BundleNames() {
		if _, placed := p.owner[name]; placed {
			continue
		}
		if owner, ok := p.analysis.Ownership(name); ok {
			p.owner[name] = owner
		}
	}
}

// seedSwatches creates a swatch for every backend with at least one directly
// owned bundle or a sink bundle present in the program.
func (p *partitioner) seedSwatches() {
	want := make(map[string]bool)
	for bundleName, backendID := range p.owner {
		if _, exists := p.program.Bundle(bundleName); exists {
			want[backendID] = true
		}
	}
	for _, b := range p.registry.Backends() {
		if b.Sink == "" {
			continue
		}
		if _, present := p.program.Bundle(b.Sink); present {
			want[b.ID] = true
		}
	}

	for backendID := range want {
		p.members[backendID] = make(map[string]bool)
		p.seeded = append(p.seeded, backendID)
	}
	sort.Strings(p.seeded)

	for bundleName, backendID := range p.owner {
		if _, exists := p.program.Bundle(bundleName); !exists {
			continue
		}
		if set, ok := p.members[backendID]; ok {
			set[bundleName] = true
		}
	}
	for _, backendID := range p.seeded {
		b, _ := p.registry.Backend(backendID)
		if b.Sink == "" {
			continue
		}
		if _, present := p.program.Bundle(b.Sink); present {
			if p.claim(b.Sink, backendID) {
				p.members[backendID][b.Sink] = true
			}
		}
	}
}

// claim records unique placement for a non-pure bundle. First placement wins.
func (p *partitioner) claim(bundle, backendID string) bool {
	if held, ok := p.owner[bundle]; ok {
		return held == backendID
	}
	p.owner[bundle] = backendID
	return true
}

// closeSwatches walks transitive dependencies of every member bundle. Pure
// bundles are added to each swatch that reaches them; that duplication is
// intentional, pure bundles are cheap to recompute and backends may share no
// memory. A reachable stateful bundle with no placement yet is claimed by
// the first swatch to reach it; one placed elsewhere stays put and becomes a
// buffer in the finish step.
func (p *partitioner) closeSwatches() {
	for _, backendID := range p.seeded {
		set := p.members[backendID]

		roots := make([]string, 0, len(set))
		for bundleName := range set {
			roots = append(roots, bundleName)
		}
		sort.Strings(roots)

		visited := make(map[string]bool)
		var visit func(name string)
		visit = func(name string) {
			if visited[name] {
				return
			}
			visited[name] = true
			for _, dep := range p.graph.Dependencies(name) {
				if _, exists := p.program.Bundle(dep); !exists {
					// Dangling reference; the annotation pass already
					// degraded it, nothing to place.
					continue
				}
				if ownerID, placed := p.owner[dep]; placed {
					// Pinned bundles live in exactly one swatch. Reaching
					// someone else's becomes a cross-swatch buffer.
					if ownerID == backendID {
						set[dep] = true
						visit(dep)
					}
					continue
				}
				if p.analysis.IsPure(dep) {
					set[dep] = true
					visit(dep)
					continue
				}
				// First swatch to reach an unplaced stateful bundle keeps it.
				p.claim(dep, backendID)
				set[dep] = true
				visit(dep)
			}
		}
		for _, root := range roots {
			visit(root)
		}
	}
}

// finish computes buffers, edges and the topological order.
func (p *partitioner) finish() (*SwatchGraph, error) {
	sg := &SwatchGraph{
		Swatches: make(map[string]*Swatch, len(p.seeded)),
		Edges:    make(map[string][]string, len(p.seeded)),
		Owner:    make(map[string]string),
	}

	for _, backendID := range p.seeded {
		set := p.members[backendID]
		sw := &Swatch{Backend: backendID, Bundles: sortedSet(set)}
		b, _ := p.registry.Backend(backendID)
		if b.Sink != "" && set[b.Sink] {
			sw.Sink = true
		}
		sg.Swatches[backendID] = sw
	}

	for bundleName, backendID := range p.owner {
		if sw, ok := sg.Swatches[backendID]; ok && sw.Contains(bundleName) {
			sg.Owner[bundleName] = backendID
		}
	}

	inputs := make(map[string]map[string]bool)
	outputs := make(map[string]map[string]bool)
	edges := make(map[string]map[string]bool)

	for _, backendID := range p.seeded {
		set := p.members[backendID]
		for bundleName := range set {
			for _, dep := range p.graph.Dependencies(bundleName) {
				if set[dep] {
					continue
				}
				producer, placed := sg.Owner[dep]
				if !placed {
					continue
				}
				addTo(inputs, backendID, dep)
				addTo(outputs, producer, dep)
				addTo(edges, backendID, producer)
			}
		}
	}

	for _, backendID := range p.seeded {
		sw := sg.Swatches[backendID]
		sw.Inputs = sortedSet(inputs[backendID])
		sw.Outputs = sortedSet(outputs[backendID])
		sg.Edges[backendID] = sortedSet(edges[backendID])
	}

	order, err := sg.topologicalSort()
	if err != nil {
		return nil, err
	}
	sg.Order = order
	return sg, nil
}

// topologicalSort orders swatches producers-first. A cycle between swatches
// is a hard failure: cross-swatch feedback must go through a cache inside
// one swatch, never around the swatch graph.
func (sg *SwatchGraph) topologicalSort() ([]string, error) {
	ids := make([]string, 0, len(sg.Swatches))
	for id := range sg.Swatches {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	var order []string
	var path []string

	var visit func(id string) error
	visit = func(id string) error {
		visiting[id] = true
		path = append(path, id)
		for _, dep := range sg.Edges[id] {
			if visiting[dep] {
				return &depgraph.CycleError{Members: cycleFrom(path, dep)}
			}
			if !visited[dep] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		delete(visiting, id)
		path = path[:len(path)-1]
		visited[id] = true
		order = append(order, id)
		return nil
	}

	for _, id := range ids {
		if !visited[id] {
			if err := visit(id); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

func cycleFrom(path []string, start string) []string {
	for i, id := range path {
		if id == start {
			return append([]string(nil), path[i:]...)
		}
	}
	return []string{start}
}

func addTo(m map[string]map[string]bool, key, val string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]bool)
		m[key] = set
	}
	set[val] = true
}

func sortedSet(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
