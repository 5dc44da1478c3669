// Package ir defines the program model consumed by the analysis pipeline:
// immutable expression trees, bundles of strands, spindle templates, and the
// domain/hardware vocabulary the annotation pass computes over.
//
// Inter-bundle references are held by name and resolved through the Program's
// bundle map, never by structural pointers. Self-reference through a name is
// therefore representable without introducing a cyclic data structure, which
// is what makes cache-mediated feedback legal.
package ir
