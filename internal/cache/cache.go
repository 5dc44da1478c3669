package cache

import (
	"fmt"

	"github.com/weftlang/weft/internal/ir"
)

// Spec is one cache binding as the partitioned program hands it to a backend
// runtime: what to store, how much history to keep, where to tap, and when
// to commit.
type Spec struct {
	// Name identifies the cache; CacheRead expressions refer to it.
	Name string
	// Value is the cached expression.
	Value ir.Expr
	// History is the ring length N. Stateful caches always have History > 0.
	History int
	// Tap is the read offset expression, static or dynamic.
	Tap ir.Expr
	// Trigger gates commits: a commit happens when the trigger indicates.
	Trigger ir.Expr
}

// Validate checks the invariants a backend may assume.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("cache name must not be empty")
	}
	if s.Value == nil {
		return fmt.Errorf("cache %q: value expression must not be nil", s.Name)
	}
	if s.History <= 0 {
		return fmt.Errorf("cache %q: history size must be positive, got %d", s.Name, s.History)
	}
	return nil
}

// Extent is the product of the given free-dimension extents. A value with no
// free dimensions is a scalar with extent 1.
func Extent(extents []int) int {
	n := 1
	for _, e := range extents {
		n *= e
	}
	return n
}

// Footprint is the total storage slot count: extent times history. A scalar
// value's cache is a plain length-N ring.
func Footprint(extents []int, history int) int {
	return Extent(extents) * history
}

// ClampTap clamps a tap index into the valid window [0, history-1].
func ClampTap(tap, history int) int {
	if tap < 0 {
		return 0
	}
	if tap >= history {
		return history - 1
	}
	return tap
}
