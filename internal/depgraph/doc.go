// Package depgraph extracts the bundle-to-bundle reference graph from a
// program and answers the ordering queries the later passes need: topological
// sort, cycle detection, and transitive dependency closure.
//
// Self-references are recorded as a per-bundle flag instead of an edge. A
// bundle feeding back into itself through a cache is legal and must not trip
// cycle detection; a genuine cycle between distinct bundles is a hard error.
package depgraph
