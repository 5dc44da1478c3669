package cache

import (
	"fmt"
	"sync/atomic"
)

// Ring is the reference cache storage: extent values per frame, history
// frames. Commit is meant for one producer (a render or audio callback);
// any number of readers may tap concurrently.
type Ring struct {
	extent  int
	history int
	state   atomic.Pointer[ringState]
}

// ringState is an immutable published snapshot. head indexes the frame that
// the NEXT commit will fill; commits counts total commits so far.
type ringState struct {
	frames  []float64
	head    int
	commits int
}

// NewRing allocates a ring for a value of the given extent and history size.
func NewRing(extent, history int) (*Ring, error) {
	if extent <= 0 {
		return nil, fmt.Errorf("ring extent must be positive, got %d", extent)
	}
	if history <= 0 {
		return nil, fmt.Errorf("ring history must be positive, got %d", history)
	}
	r := &Ring{extent: extent, history: history}
	r.state.Store(&ringState{frames: make([]float64, extent*history)})
	return r, nil
}

// Extent returns the per-frame value count.
func (r *Ring) Extent() int { return r.extent }

// History returns the frame count N.
func (r *Ring) History() int { return r.history }

// Footprint returns the total storage slot count.
func (r *Ring) Footprint() int { return r.extent * r.history }

// Commits returns the number of commits so far.
func (r *Ring) Commits() int { return r.state.Load().commits }

// Commit writes one frame at the head and advances it modulo the history
// size. The new state is published with a single atomic swap; in-flight
// readers keep seeing the previous snapshot untouched.
func (r *Ring) Commit(frame []float64) error {
	if len(frame) != r.extent {
		return fmt.Errorf("commit frame has %d values, ring extent is %d", len(frame), r.extent)
	}
	old := r.state.Load()
	next := &ringState{
		frames:  append([]float64(nil), old.frames...),
		head:    (old.head + 1) % r.history,
		commits: old.commits + 1,
	}
	copy(next.frames[old.head*r.extent:], frame)
	r.state.Store(next)
	return nil
}

// Read returns the frame committed tap steps before the most recent commit;
// tap 0 is the most recent. The tap is clamped to [0, history-1]. Frames
// older than the first commit read as zero.
func (r *Ring) Read(tap int) []float64 {
	state := r.state.Load()
	tap = ClampTap(tap, r.history)

	// head points at the next write slot; the most recent commit sits one
	// frame behind it.
	slot := state.head - 1 - tap
	slot = ((slot % r.history) + r.history) % r.history

	out := make([]float64, r.extent)
	copy(out, state.frames[slot*r.extent:(slot+1)*r.extent])
	return out
}

// ReadAt returns a single value of the tapped frame at the given position
// within the frame's extent.
func (r *Ring) ReadAt(pos, tap int) (float64, error) {
	if pos < 0 || pos >= r.extent {
		return 0, fmt.Errorf("position %d out of range for extent %d", pos, r.extent)
	}
	return r.Read(tap)[pos], nil
}
