package lod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lasview/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

// makeBuffers returns n points whose X encodes the point index, so tests
// can verify which source points a decimation selected.
func makeBuffers(n int) (pos, col []float32) {
	pos = make([]float32, n*3)
	col = make([]float32, n*3)
	for i := 0; i < n; i++ {
		pos[i*3] = float32(i)
		col[i*3] = float32(i)
	}
	return pos, col
}

func testLadder() Ladder {
	return MustLadder([]Tier{
		{MaxDistance: 50, PointBudget: 10_000},
		{MaxDistance: math.Inf(1), PointBudget: 500},
	})
}

func TestResampler_AttachFullResolution(t *testing.T) {
	t.Parallel()
	var published []*DisplayBuffer
	r := NewResampler(ResamplerConfig{
		Ladder:  testLadder(),
		Publish: func(d *DisplayBuffer) { published = append(published, d) },
	})

	assert.False(t, r.Attached())
	assert.Nil(t, r.OnDistanceSample(10), "unattached resampler must no-op")

	pos, col := makeBuffers(1000)
	d := r.Attach(pos, col)
	require.NotNil(t, d)
	assert.Equal(t, 1000, d.Count())
	assert.Equal(t, 1, d.Stride)
	assert.Equal(t, -1, d.TierIndex, "full resolution until the first distance sample")
	assert.Equal(t, -1, r.CurrentTier())
	require.Len(t, published, 1)
	assert.Same(t, d, published[0])
}

func TestResampler_TierSelectionScenario(t *testing.T) {
	t.Parallel()
	r := NewResampler(ResamplerConfig{Ladder: testLadder()})
	pos, col := makeBuffers(100_000)
	r.Attach(pos, col)

	// Near distance: tier 0, budget 10k of 100k -> stride 10.
	d := r.OnDistanceSample(30)
	require.NotNil(t, d)
	assert.Equal(t, 0, d.TierIndex)
	assert.Equal(t, 10, d.Stride)
	assert.Equal(t, 10_000, d.Count())
	// Decimation preserves ordering: sample i is source point i*stride.
	assert.Equal(t, float32(0), d.Positions[0])
	assert.Equal(t, float32(10), d.Positions[3])
	assert.Equal(t, float32(99990), d.Positions[(d.Count()-1)*3])

	// Camera jumps far: tier 1, budget 500 -> stride 200.
	d = r.OnDistanceSample(800)
	require.NotNil(t, d)
	assert.Equal(t, 1, d.TierIndex)
	assert.Equal(t, 200, d.Stride)
	assert.Equal(t, 500, d.Count())
	assert.Equal(t, 1, r.CurrentTier())
}

func TestResampler_SameTierIsFree(t *testing.T) {
	t.Parallel()
	r := NewResampler(ResamplerConfig{Ladder: testLadder()})
	pos, col := makeBuffers(10_000)
	r.Attach(pos, col)

	require.NotNil(t, r.OnDistanceSample(30))
	// Same distance, and a different distance within the same tier: no
	// resample either way.
	assert.Nil(t, r.OnDistanceSample(30))
	assert.Nil(t, r.OnDistanceSample(45))
	assert.Equal(t, 0, r.CurrentTier())
}

func TestResampler_BudgetSmallerThanCount(t *testing.T) {
	t.Parallel()
	// Budget larger than the point count: stride clamps to 1 and the full
	// set is displayed.
	r := NewResampler(ResamplerConfig{Ladder: testLadder()})
	pos, col := makeBuffers(300)
	r.Attach(pos, col)

	d := r.OnDistanceSample(10) // tier 0 budget 10k > 300 points
	require.NotNil(t, d)
	assert.Equal(t, 1, d.Stride)
	assert.Equal(t, 300, d.Count())
}

func TestResampler_SampledCountBounds(t *testing.T) {
	t.Parallel()
	// sampledCount = floor(n / max(1, floor(n/budget))) stays within
	// (budget/2, 2*budget] for budget <= n.
	for _, n := range []int{1000, 4096, 99_999, 250_000} {
		for _, budget := range []int{1, 7, 100, 999, 1000} {
			ladder := MustLadder([]Tier{{MaxDistance: math.Inf(1), PointBudget: budget}})
			r := NewResampler(ResamplerConfig{Ladder: ladder})
			pos, col := makeBuffers(n)
			r.Attach(pos, col)

			d := r.OnDistanceSample(100)
			require.NotNil(t, d, "n=%d budget=%d", n, budget)
			stride := n / budget
			if stride < 1 {
				stride = 1
			}
			want := n / stride
			assert.Equal(t, want, d.Count(), "n=%d budget=%d", n, budget)
			assert.Greater(t, d.Count(), budget/2, "n=%d budget=%d", n, budget)
			assert.LessOrEqual(t, d.Count(), 2*budget, "n=%d budget=%d", n, budget)
		}
	}
}

func TestResampler_ChunkedCopyYields(t *testing.T) {
	t.Parallel()
	yields := 0
	r := NewResampler(ResamplerConfig{
		Ladder:      MustLadder([]Tier{{MaxDistance: math.Inf(1), PointBudget: 100_000}}),
		ChunkPoints: 100,
		Yield:       func() { yields++ },
	})
	pos, col := makeBuffers(1000)
	r.Attach(pos, col)

	d := r.OnDistanceSample(10)
	require.NotNil(t, d)
	assert.Equal(t, 1000, d.Count())
	// 1000 points in 100-point chunks: a yield between every pair of
	// chunks, none after the last.
	assert.Equal(t, 9, yields)
}

func TestResampler_ReentrantSampleQueued(t *testing.T) {
	t.Parallel()
	ladder := MustLadder([]Tier{
		{MaxDistance: 50, PointBudget: 1000},
		{MaxDistance: 200, PointBudget: 400},
		{MaxDistance: math.Inf(1), PointBudget: 100},
	})

	var r *Resampler
	reentered := false
	r = NewResampler(ResamplerConfig{
		Ladder:      ladder,
		ChunkPoints: 100,
		Yield: func() {
			if !reentered {
				reentered = true
				// The host render loop crossing another threshold
				// mid-resample: must be queued, not run concurrently.
				assert.Nil(t, r.OnDistanceSample(800))
			}
		},
	})
	pos, col := makeBuffers(2000)
	r.Attach(pos, col)

	d := r.OnDistanceSample(30)
	require.NotNil(t, d)
	assert.True(t, reentered)
	// The queued far-distance sample wins: the committed display is the
	// latest requested tier, not the one that started first.
	assert.Equal(t, 2, d.TierIndex)
	assert.Equal(t, 100, d.Count())
	assert.Equal(t, 2, r.CurrentTier())
}

func TestResampler_AttachCancelsInFlightResample(t *testing.T) {
	t.Parallel()
	var r *Resampler
	newPos, newCol := makeBuffers(50)
	cancelled := false
	r = NewResampler(ResamplerConfig{
		Ladder:      testLadder(),
		ChunkPoints: 100,
		Yield: func() {
			if !cancelled {
				cancelled = true
				r.Attach(newPos, newCol)
			}
		},
	})
	pos, col := makeBuffers(2000)
	r.Attach(pos, col)

	// The resample started against the old buffers must be abandoned at
	// the next chunk boundary, leaving the fresh attach's full-resolution
	// display in place.
	assert.Nil(t, r.OnDistanceSample(30))
	assert.Equal(t, -1, r.CurrentTier())
	d := r.Display()
	require.NotNil(t, d)
	assert.Equal(t, 50, d.Count())
	assert.Equal(t, -1, d.TierIndex)
}

func TestResampler_AttachPanicsOnMalformedBuffers(t *testing.T) {
	t.Parallel()
	r := NewResampler(ResamplerConfig{Ladder: testLadder()})
	assert.Panics(t, func() { r.Attach(make([]float32, 6), make([]float32, 3)) })
	assert.Panics(t, func() { r.Attach(make([]float32, 4), make([]float32, 4)) })
}
