package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlang/weft/internal/ir"
)

func TestFootprint(t *testing.T) {
	t.Parallel()

	// A WxH image cached over N frames costs W*H*N slots.
	assert.Equal(t, 640*480*4, Footprint([]int{640, 480}, 4))
	// A scalar cache is a plain length-N ring.
	assert.Equal(t, 8, Footprint(nil, 8))
	assert.Equal(t, 1, Extent(nil))
	assert.Equal(t, 12, Extent([]int{3, 4}))
}

func TestClampTap(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ClampTap(-3, 4))
	assert.Equal(t, 0, ClampTap(0, 4))
	assert.Equal(t, 3, ClampTap(3, 4))
	assert.Equal(t, 3, ClampTap(99, 4))
}

func TestSpec_Validate(t *testing.T) {
	t.Parallel()

	valid := Spec{Name: "c0", Value: ir.Literal{Value: 1}, History: 2}
	assert.NoError(t, valid.Validate())

	assert.Error(t, Spec{Value: ir.Literal{}, History: 2}.Validate())
	assert.Error(t, Spec{Name: "c0", History: 2}.Validate())
	assert.Error(t, Spec{Name: "c0", Value: ir.Literal{}, History: 0}.Validate())
}

func TestNewRing_RejectsNonPositiveSizes(t *testing.T) {
	t.Parallel()

	_, err := NewRing(0, 4)
	assert.Error(t, err)
	_, err = NewRing(4, 0)
	assert.Error(t, err)
}

func TestRing_CommitAndTap(t *testing.T) {
	t.Parallel()

	r, err := NewRing(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, r.Footprint())

	require.NoError(t, r.Commit([]float64{1, 10}))
	require.NoError(t, r.Commit([]float64{2, 20}))
	require.NoError(t, r.Commit([]float64{3, 30}))
	assert.Equal(t, 3, r.Commits())

	assert.Equal(t, []float64{3, 30}, r.Read(0))
	assert.Equal(t, []float64{2, 20}, r.Read(1))
	assert.Equal(t, []float64{1, 10}, r.Read(2))

	// A fourth commit wraps and evicts the oldest frame.
	require.NoError(t, r.Commit([]float64{4, 40}))
	assert.Equal(t, []float64{4, 40}, r.Read(0))
	assert.Equal(t, []float64{2, 20}, r.Read(2))
}

func TestRing_TapClampedToWindow(t *testing.T) {
	t.Parallel()

	r, err := NewRing(1, 2)
	require.NoError(t, err)
	require.NoError(t, r.Commit([]float64{7}))
	require.NoError(t, r.Commit([]float64{8}))

	assert.Equal(t, []float64{8}, r.Read(-5), "negative taps clamp to the newest frame")
	assert.Equal(t, []float64{7}, r.Read(100), "deep taps clamp to the oldest frame")
}

func TestRing_UncommittedFramesReadZero(t *testing.T) {
	t.Parallel()

	r, err := NewRing(1, 4)
	require.NoError(t, err)
	require.NoError(t, r.Commit([]float64{5}))

	assert.Equal(t, []float64{5}, r.Read(0))
	assert.Equal(t, []float64{0}, r.Read(3))
}

func TestRing_CommitRejectsWrongExtent(t *testing.T) {
	t.Parallel()

	r, err := NewRing(3, 2)
	require.NoError(t, err)
	assert.Error(t, r.Commit([]float64{1}))
}

func TestRing_ReadAt(t *testing.T) {
	t.Parallel()

	r, err := NewRing(2, 2)
	require.NoError(t, err)
	require.NoError(t, r.Commit([]float64{1, 2}))

	v, err := r.ReadAt(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = r.ReadAt(2, 0)
	assert.Error(t, err)
}

func TestRing_ReadersSeeConsistentSnapshots(t *testing.T) {
	t.Parallel()

	// Both values of a frame are committed together, so a reader must never
	// observe a frame mixing values from two commits.
	r, err := NewRing(2, 4)
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			v := float64(i)
			_ = r.Commit([]float64{v, -v})
		}
	}()

	for i := 0; i < 10000; i++ {
		frame := r.Read(0)
		require.Equal(t, -frame[0], frame[1], "torn frame: %v", frame)
	}
	close(done)
	wg.Wait()
}
