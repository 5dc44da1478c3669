// Package cache specifies the data contract of a stateful cache binding and
// provides the reference ring-buffer the backend runtimes are tested
// against. Storage for a cached value is the product of its free-dimension
// extents times the history size; commits advance a ring head, and a read at
// tap k returns the frame committed k steps before the most recent commit,
// with k clamped into the history window.
//
// Committed state is published as an immutable snapshot swapped in with one
// atomic store, so a reader never observes a torn frame and a writer is
// never blocked by a slow reader. Allocation policy beyond this reference
// behavior belongs to the backend runtimes.
package cache
