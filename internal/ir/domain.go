package ir

import "sort"

// Access says who controls a dimension's position when a signal is sampled.
type Access int

const (
	// Free dimensions are caller-controlled and seekable to any value.
	Free Access = iota
	// Bound dimensions are producer-controlled; only "now" is observable.
	Bound
)

func (a Access) String() string {
	if a == Bound {
		return "bound"
	}
	return "free"
}

// MergeAccess is monotonic: bound dominates once any contributor binds.
func MergeAccess(a, b Access) Access {
	if a == Bound || b == Bound {
		return Bound
	}
	return Free
}

// Dimension is one axis of a signal's domain.
type Dimension struct {
	Name   string
	Access Access
}

// Domain is a signal's dimension list, unique by name and sorted by name.
type Domain []Dimension

// NewDomain builds a normalized domain from the given dimensions.
func NewDomain(dims ...Dimension) Domain {
	return Domain(nil).Merge(Domain(dims))
}

// Merge combines two domains. It is commutative, associative and idempotent;
// on a name collision the merged access is bound if either side is bound.
func (d Domain) Merge(other Domain) Domain {
	byName := make(map[string]Access, len(d)+len(other))
	for _, dim := range d {
		byName[dim.Name] = dim.Access
	}
	for _, dim := range other {
		if have, ok := byName[dim.Name]; ok {
			byName[dim.Name] = MergeAccess(have, dim.Access)
		} else {
			byName[dim.Name] = dim.Access
		}
	}
	return domainFromMap(byName)
}

// Without returns the domain with the named dimension removed.
func (d Domain) Without(name string) Domain {
	out := make(Domain, 0, len(d))
	for _, dim := range d {
		if dim.Name != name {
			out = append(out, dim)
		}
	}
	return out
}

// Access returns the access level of the named dimension, if present.
func (d Domain) Access(name string) (Access, bool) {
	for _, dim := range d {
		if dim.Name == name {
			return dim.Access, true
		}
	}
	return Free, false
}

// Names returns the dimension names in sorted order.
func (d Domain) Names() []string {
	names := make([]string, len(d))
	for i, dim := range d {
		names[i] = dim.Name
	}
	return names
}

// Equal reports whether two normalized domains are identical.
func (d Domain) Equal(other Domain) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}

func domainFromMap(byName map[string]Access) Domain {
	if len(byName) == 0 {
		return nil
	}
	out := make(Domain, 0, len(byName))
	for name, access := range byName {
		out = append(out, Dimension{Name: name, Access: access})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
