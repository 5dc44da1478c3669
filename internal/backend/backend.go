package backend

import (
	"sort"

	"github.com/weftlang/weft/internal/ir"
)

// BuiltinSpec describes one builtin signal function for the annotation pass.
type BuiltinSpec struct {
	Name string

	// Domain, when non-nil, is the builtin's fixed output domain. It replaces
	// the merged operand domains outright (camera() redefines x/y/t no matter
	// what it is fed). A nil Domain means the builtin is domain-transparent.
	Domain ir.Domain

	// Hardware lists the capability tags the builtin requires. A builtin with
	// any hardware requirement is external.
	Hardware ir.Hardware

	// AddsState marks builtins that carry memory (cache). A domain-transparent
	// AddsState builtin merges operand domains: memory changes what a signal
	// remembers, not what it varies over.
	AddsState bool
}

// External reports whether the builtin requires hardware.
func (s BuiltinSpec) External() bool { return !s.Hardware.Empty() }

// DeclaresDomain reports whether the builtin has a fixed output domain.
func (s BuiltinSpec) DeclaresDomain() bool { return s.Domain != nil }

// Backend is one registered execution target, described entirely by data.
type Backend struct {
	// ID identifies the backend in swatch assignments, e.g. "visual".
	ID string

	// Hardware is the set of capability tags this backend owns. A signal
	// requiring any of them can only run here.
	Hardware ir.Hardware

	// Coordinates declares the backend's coordinate space: dimension names
	// with their access level as seen by signals evaluated on this backend.
	Coordinates ir.Domain

	// Sink names the bundle anchoring evaluation for this backend. A program
	// bundle with this name is pre-assigned here and marks the swatch as sink.
	Sink string

	// Builtins are the specs this backend exclusively owns.
	Builtins map[string]BuiltinSpec
}

// OwnedBuiltins returns the names of all builtins the backend owns, sorted.
func (b *Backend) OwnedBuiltins() []string {
	return b.builtinNames(func(BuiltinSpec) bool { return true })
}

// ExternalBuiltins returns the backend's hardware-requiring builtins, sorted.
func (b *Backend) ExternalBuiltins() []string {
	return b.builtinNames(BuiltinSpec.External)
}

// StatefulBuiltins returns the backend's memory-carrying builtins, sorted.
func (b *Backend) StatefulBuiltins() []string {
	return b.builtinNames(func(s BuiltinSpec) bool { return s.AddsState })
}

func (b *Backend) builtinNames(keep func(BuiltinSpec) bool) []string {
	names := make([]string, 0, len(b.Builtins))
	for name, spec := range b.Builtins {
		if keep(spec) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
