package backend

import (
	"fmt"
	"sort"

	"github.com/weftlang/weft/internal/ir"
)

// Registry holds every registered backend plus the shared builtins owned by
// no backend in particular (arithmetic, cache). Populate it during startup;
// a compilation treats it as read-only.
type Registry struct {
	backends map[string]*Backend
	shared   map[string]BuiltinSpec

	// hardwareOwner enforces the one-owner-per-tag invariant at registration
	// time; nothing downstream re-checks it.
	hardwareOwner map[string]string
	builtinOwner  map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		backends:      make(map[string]*Backend),
		shared:        make(map[string]BuiltinSpec),
		hardwareOwner: make(map[string]string),
		builtinOwner:  make(map[string]string),
	}
}

// Register adds a backend. It fails if the id is taken, if any of the
// backend's hardware tags is already owned by another backend, or if one of
// its builtins is already claimed.
func (r *Registry) Register(b *Backend) error {
	if b.ID == "" {
		return fmt.Errorf("backend id must not be empty")
	}
	if _, exists := r.backends[b.ID]; exists {
		return fmt.Errorf("backend %q already registered", b.ID)
	}
	for _, tag := range b.Hardware.Tags() {
		if owner, owned := r.hardwareOwner[tag]; owned {
			return fmt.Errorf("hardware tag %q claimed by both %q and %q", tag, owner, b.ID)
		}
	}
	for name := range b.Builtins {
		if owner, owned := r.builtinOwner[name]; owned {
			return fmt.Errorf("builtin %q claimed by both %q and %q", name, owner, b.ID)
		}
		if _, isShared := r.shared[name]; isShared {
			return fmt.Errorf("builtin %q already registered as shared", name)
		}
	}

	r.backends[b.ID] = b
	for _, tag := range b.Hardware.Tags() {
		r.hardwareOwner[tag] = b.ID
	}
	for name := range b.Builtins {
		r.builtinOwner[name] = b.ID
	}
	return nil
}

// RegisterBuiltin adds a shared builtin spec owned by no backend.
func (r *Registry) RegisterBuiltin(spec BuiltinSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("builtin name must not be empty")
	}
	if owner, owned := r.builtinOwner[spec.Name]; owned {
		return fmt.Errorf("builtin %q already owned by backend %q", spec.Name, owner)
	}
	if _, exists := r.shared[spec.Name]; exists {
		return fmt.Errorf("builtin %q already registered", spec.Name)
	}
	r.shared[spec.Name] = spec
	return nil
}

// Backend returns the backend with the given id, if registered.
func (r *Registry) Backend(id string) (*Backend, bool) {
	b, ok := r.backends[id]
	return b, ok
}

// Backends returns every registered backend, sorted by id.
func (r *Registry) Backends() []*Backend {
	ids := make([]string, 0, len(r.backends))
	for id := range r.backends {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Backend, len(ids))
	for i, id := range ids {
		out[i] = r.backends[id]
	}
	return out
}

// Builtin resolves a builtin name against backend-owned and shared specs.
func (r *Registry) Builtin(name string) (BuiltinSpec, bool) {
	if owner, ok := r.builtinOwner[name]; ok {
		spec, ok := r.backends[owner].Builtins[name]
		return spec, ok
	}
	spec, ok := r.shared[name]
	return spec, ok
}

// Builtins returns the merged spec map keyed by builtin name.
func (r *Registry) Builtins() map[string]BuiltinSpec {
	out := make(map[string]BuiltinSpec, len(r.shared)+len(r.builtinOwner))
	for name, spec := range r.shared {
		out[name] = spec
	}
	for name, owner := range r.builtinOwner {
		out[name] = r.backends[owner].Builtins[name]
	}
	return out
}

// BuiltinOwner returns the backend exclusively owning the named builtin.
func (r *Registry) BuiltinOwner(name string) (string, bool) {
	owner, ok := r.builtinOwner[name]
	return owner, ok
}

// HardwareOwner returns the backend owning the given hardware tag.
func (r *Registry) HardwareOwner(tag string) (string, bool) {
	owner, ok := r.hardwareOwner[tag]
	return owner, ok
}

// Sinks maps sink bundle name to owning backend id.
func (r *Registry) Sinks() map[string]string {
	out := make(map[string]string, len(r.backends))
	for id, b := range r.backends {
		if b.Sink != "" {
			out[b.Sink] = id
		}
	}
	return out
}

// CoordinateSpace is the union of every backend's coordinate declarations,
// with bound dominating on access collisions. The annotation pass runs once
// per program against this merged space; dimension names carry their access
// with them, so the union is equivalent to annotating per backend.
func (r *Registry) CoordinateSpace() ir.Domain {
	var space ir.Domain
	for _, b := range r.Backends() {
		space = space.Merge(b.Coordinates)
	}
	return space
}
