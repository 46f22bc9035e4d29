package viewer

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/lasview/internal/las"
)

// CloudStats summarises the height distribution of a decoded point set.
// Heights are the interesting axis for sanity-checking a load: a cloud
// whose observed Z range disagrees wildly with the header bounds usually
// means a wrong scale/offset read.
type CloudStats struct {
	Count   int
	MinZ    float64
	MaxZ    float64
	MeanZ   float64
	StdDevZ float64
	MedianZ float64
	P95Z    float64
}

// ComputeCloudStats computes height statistics over the decoded positions.
// Returns zero stats for an empty set.
func ComputeCloudStats(ps *las.PointSet) *CloudStats {
	n := ps.Count()
	if n == 0 {
		return &CloudStats{}
	}

	heights := make([]float64, n)
	for i := 0; i < n; i++ {
		heights[i] = float64(ps.Positions[i*3+2])
	}
	sort.Float64s(heights)

	// stat.StdDev divides by n-1 and returns NaN for a single sample.
	stdDev := 0.0
	if n > 1 {
		stdDev = stat.StdDev(heights, nil)
	}

	return &CloudStats{
		Count:   n,
		MinZ:    heights[0],
		MaxZ:    heights[n-1],
		MeanZ:   stat.Mean(heights, nil),
		StdDevZ: stdDev,
		MedianZ: stat.Quantile(0.5, stat.Empirical, heights, nil),
		P95Z:    stat.Quantile(0.95, stat.Empirical, heights, nil),
	}
}
