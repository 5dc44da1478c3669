package ir

import "sort"

// Hardware is a set of opaque capability tags. Tags are open to extension by
// new backends; the analysis never interprets them beyond set membership.
type Hardware map[string]struct{}

// NewHardware builds a set from the given tags.
func NewHardware(tags ...string) Hardware {
	if len(tags) == 0 {
		return nil
	}
	h := make(Hardware, len(tags))
	for _, t := range tags {
		h[t] = struct{}{}
	}
	return h
}

// Has reports tag membership.
func (h Hardware) Has(tag string) bool {
	_, ok := h[tag]
	return ok
}

// Empty reports whether the set has no tags.
func (h Hardware) Empty() bool { return len(h) == 0 }

// Union returns a new set containing the tags of both operands.
func (h Hardware) Union(other Hardware) Hardware {
	if len(other) == 0 {
		return h
	}
	if len(h) == 0 {
		return other
	}
	out := make(Hardware, len(h)+len(other))
	for t := range h {
		out[t] = struct{}{}
	}
	for t := range other {
		out[t] = struct{}{}
	}
	return out
}

// Intersect returns the tags present in both sets.
func (h Hardware) Intersect(other Hardware) Hardware {
	var out Hardware
	for t := range h {
		if other.Has(t) {
			if out == nil {
				out = make(Hardware)
			}
			out[t] = struct{}{}
		}
	}
	return out
}

// Tags returns the tags in sorted order.
func (h Hardware) Tags() []string {
	if len(h) == 0 {
		return nil
	}
	tags := make([]string, 0, len(h))
	for t := range h {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
