package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/weftlang/weft/internal/ir"
)

// CycleError is returned when a hard reference cycle is found. Members holds
// the node ids on the detected cycle, in traversal order.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected involving %s", strings.Join(e.Members, " -> "))
}

// Graph is the bundle dependency graph of one program. An edge a -> b means
// bundle a references bundle b.
type Graph struct {
	nodes   map[string]*node
	selfRef map[string]bool
}

// node is un-exported to force interaction through bundle names, matching the
// resolve-by-name representation of the program itself.
type node struct {
	id         string
	deps       map[string]*node
	dependents map[string]*node
}

// Build walks every strand expression collecting referenced bundle names.
// References to the coordinate pseudo-bundle and to the enclosing bundle
// itself do not become edges; the latter is recorded as self-reference.
func Build(program *ir.Program) *Graph {
	g := &Graph{
		nodes:   make(map[string]*node, len(program.Bundles)),
		selfRef: make(map[string]bool),
	}
	for name := range program.Bundles {
		g.addNode(name)
	}
	for name, bundle := range program.Bundles {
		for _, strand := range bundle.Strands {
			ir.Walk(strand.Expr, func(e ir.Expr) {
				ref, ok := e.(ir.BundleRef)
				if !ok || ref.Bundle == ir.CoordinateBundle {
					return
				}
				if ref.Bundle == name {
					g.selfRef[name] = true
					return
				}
				g.addEdge(name, ref.Bundle)
			})
		}
	}
	return g
}

func (g *Graph) addNode(id string) *node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &node{
		id:         id,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.nodes[id] = n
	return n
}

func (g *Graph) addEdge(fromID, toID string) {
	from := g.addNode(fromID)
	to := g.addNode(toID)
	from.deps[toID] = to
	to.dependents[fromID] = from
}

// Contains reports whether the bundle is a node of the graph.
func (g *Graph) Contains(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// SelfReferential reports whether the bundle references itself.
func (g *Graph) SelfReferential(id string) bool {
	return g.selfRef[id]
}

// Dependencies returns the bundles the given bundle references, sorted.
func (g *Graph) Dependencies(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return sortedKeys(n.deps)
}

// Dependents returns the bundles referencing the given bundle, sorted.
func (g *Graph) Dependents(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return sortedKeys(n.dependents)
}

// TransitiveDependencies returns every bundle reachable from the given one
// through dependency edges, sorted. The bundle itself is not included.
func (g *Graph) TransitiveDependencies(id string) []string {
	start, ok := g.nodes[id]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	stack := []*node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for depID, dep := range n.deps {
			if !seen[depID] {
				seen[depID] = true
				stack = append(stack, dep)
			}
		}
	}
	delete(seen, id)
	out := make([]string, 0, len(seen))
	for depID := range seen {
		out = append(out, depID)
	}
	sort.Strings(out)
	return out
}

// HasCycles reports whether the graph contains a hard reference cycle.
func (g *Graph) HasCycles() bool {
	_, err := g.TopologicalSort()
	return err != nil
}

// TopologicalSort returns the bundle names ordered so that every bundle
// appears after all of its dependencies. A *CycleError is returned when no
// such order exists.
func (g *Graph) TopologicalSort() ([]string, error) {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	order := make([]string, 0, len(g.nodes))
	var path []string

	var visit func(n *node) error
	visit = func(n *node) error {
		visiting[n.id] = true
		path = append(path, n.id)
		for _, depID := range sortedKeys(n.deps) {
			if visiting[depID] {
				return &CycleError{Members: cycleFrom(path, depID)}
			}
			if !visited[depID] {
				if err := visit(n.deps[depID]); err != nil {
					return err
				}
			}
		}
		delete(visiting, n.id)
		path = path[:len(path)-1]
		visited[n.id] = true
		order = append(order, n.id)
		return nil
	}

	for _, id := range sortedKeys(g.nodes) {
		if !visited[id] {
			if err := visit(g.nodes[id]); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

// cycleFrom slices the DFS path from the first occurrence of start, yielding
// the cycle member set in traversal order. The closing edge back to start is
// implied, not repeated.
func cycleFrom(path []string, start string) []string {
	for i, id := range path {
		if id == start {
			return append([]string(nil), path[i:]...)
		}
	}
	return []string{start}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
