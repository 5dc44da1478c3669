package annotate

import (
	"sort"

	"github.com/weftlang/weft/internal/backend"
	"github.com/weftlang/weft/internal/ir"
)

// Signal is the inferred annotation of one strand.
type Signal struct {
	Domain   ir.Domain
	Hardware ir.Hardware
	Stateful bool
}

// merge combines two annotations the way every transparent expression kind
// does: domain merge, hardware union, stateful OR.
func (s Signal) merge(other Signal) Signal {
	return Signal{
		Domain:   s.Domain.Merge(other.Domain),
		Hardware: s.Hardware.Union(other.Hardware),
		Stateful: s.Stateful || other.Stateful,
	}
}

// conservative is the placeholder returned while a strand's own annotation is
// still being computed, i.e. on a reference cycle. Empty domain, stateful.
var conservative = Signal{Stateful: true}

// Annotate infers an annotation for every strand of the program, keyed by
// "bundle.strand". coords declares the coordinate space the program is
// evaluated in; builtins supplies the primitive specs.
func Annotate(program *ir.Program, coords ir.Domain, builtins map[string]backend.BuiltinSpec) map[string]Signal {
	a := &annotator{
		program:    program,
		coords:     coords,
		builtins:   builtins,
		memo:       make(map[string]Signal),
		inProgress: make(map[string]bool),
	}
	// Deterministic traversal order, so memoization fills identically from
	// one run to the next.
	for _, bundleName := range program.BundleNames() {
		bundle := program.Bundles[bundleName]
		for _, strand := range bundle.Strands {
			a.strand(bundleName, strand.Name)
		}
	}
	return a.memo
}

type annotator struct {
	program    *ir.Program
	coords     ir.Domain
	builtins   map[string]backend.BuiltinSpec
	memo       map[string]Signal
	inProgress map[string]bool
}

// strand annotates one strand, memoized and cycle-guarded. A key revisited
// while still being computed returns the conservative placeholder; only the
// real result is cached.
func (a *annotator) strand(bundleName, strandName string) Signal {
	key := ir.Key(bundleName, strandName)
	if sig, ok := a.memo[key]; ok {
		return sig
	}
	if a.inProgress[key] {
		return conservative
	}

	bundle, ok := a.program.Bundle(bundleName)
	if !ok {
		return Signal{}
	}
	strand, ok := bundle.Strand(strandName)
	if !ok {
		return Signal{}
	}

	a.inProgress[key] = true
	sig := a.expr(strand.Expr)
	delete(a.inProgress, key)
	a.memo[key] = sig
	return sig
}

func (a *annotator) expr(e ir.Expr) Signal {
	switch x := e.(type) {
	case ir.Literal:
		return Signal{}

	case ir.CoordRef:
		access, ok := a.coords.Access(x.Name)
		if !ok {
			return Signal{}
		}
		return Signal{Domain: ir.NewDomain(ir.Dimension{Name: x.Name, Access: access})}

	case ir.BundleRef:
		if x.Dynamic() {
			// A computed strand selector cannot be resolved statically.
			return Signal{}
		}
		return a.strand(x.Bundle, x.Strand)

	case ir.Unary:
		return a.expr(x.X)

	case ir.Binary:
		return a.expr(x.L).merge(a.expr(x.R))

	case ir.Call:
		return a.call(x)

	case ir.SpindleCall:
		// Conservative over-approximation of the inlined template: the call
		// varies over whatever its arguments vary over.
		var sig Signal
		for _, arg := range x.Args {
			sig = sig.merge(a.expr(arg))
		}
		return sig

	case ir.Extract:
		return a.expr(x.Call)

	case ir.Remap:
		return a.remap(x)

	case ir.CacheRead:
		// The tap-index expression at the call site supplies any domain.
		return Signal{Stateful: true}
	}
	return Signal{}
}

func (a *annotator) call(x ir.Call) Signal {
	var args Signal
	for _, arg := range x.Args {
		args = args.merge(a.expr(arg))
	}

	spec, known := a.builtins[x.Builtin]
	if !known {
		// Unknown builtins are treated as domain-transparent and pure.
		return args
	}

	sig := Signal{
		Domain:   args.Domain,
		Hardware: args.Hardware.Union(spec.Hardware),
		Stateful: args.Stateful || spec.AddsState,
	}
	if spec.DeclaresDomain() {
		// The declared output domain replaces whatever the operands vary
		// over: camera() redefines x/y/t outright.
		sig.Domain = spec.Domain
	}
	return sig
}

// remap removes each substituted dimension from the base domain and merges
// in the replacement's domain, one substitution at a time.
func (a *annotator) remap(x ir.Remap) Signal {
	base := a.expr(x.Base)
	sig := Signal{Domain: base.Domain, Hardware: base.Hardware, Stateful: base.Stateful}

	subs := append([]ir.Sub(nil), x.Subs...)
	sort.Slice(subs, func(i, j int) bool { return subs[i].Dim < subs[j].Dim })

	for _, sub := range subs {
		repl := a.expr(sub.Repl)
		sig.Domain = sig.Domain.Without(sub.Dim).Merge(repl.Domain)
		sig.Hardware = sig.Hardware.Union(repl.Hardware)
		sig.Stateful = sig.Stateful || repl.Stateful
	}
	return sig
}
