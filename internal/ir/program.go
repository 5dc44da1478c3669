package ir

import "sort"

// CoordinateBundle is the reserved pseudo-bundle name for coordinate reads.
// References to it never produce dependency edges.
const CoordinateBundle = "me"

// Strand is one named signal within a bundle.
type Strand struct {
	Name string
	Expr Expr
}

// Bundle is a named group of strands sharing one identity.
type Bundle struct {
	Name    string
	Strands []Strand
}

// Strand returns the named strand, if present.
func (b *Bundle) Strand(name string) (Strand, bool) {
	for _, s := range b.Strands {
		if s.Name == name {
			return s, true
		}
	}
	return Strand{}, false
}

// Local is a named intermediate binding inside a spindle body.
type Local struct {
	Name string
	Expr Expr
}

// Spindle is a parametrized expression template, inlined at call sites by a
// later stage.
type Spindle struct {
	Name    string
	Params  []string
	Locals  []Local
	Returns []Expr
}

// Program is one immutable compilation input.
type Program struct {
	Bundles  map[string]*Bundle
	Spindles map[string]*Spindle
}

// NewProgram returns an empty program with initialized maps.
func NewProgram() *Program {
	return &Program{
		Bundles:  make(map[string]*Bundle),
		Spindles: make(map[string]*Spindle),
	}
}

// Bundle returns the named bundle, if present.
func (p *Program) Bundle(name string) (*Bundle, bool) {
	b, ok := p.Bundles[name]
	return b, ok
}

// BundleNames returns all bundle names in sorted order.
func (p *Program) BundleNames() []string {
	names := make([]string, 0, len(p.Bundles))
	for name := range p.Bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Key builds the canonical "bundle.strand" key used across the analysis maps.
func Key(bundle, strand string) string {
	return bundle + "." + strand
}
