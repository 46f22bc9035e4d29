// Package report renders offline summaries of a decoded point cloud: an
// HTML height histogram and a top-down preview image. Both exist to eyeball
// a decode without a 3D renderer attached.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/lasview/internal/las"
	"github.com/banshee-data/lasview/internal/viewer"
)

// HistogramBins is the number of height buckets in the report.
const HistogramBins = 64

// WriteHeightHistogram renders an HTML bar chart of the height distribution
// of ps into w. The title line carries the decode stats so the report is
// self-describing.
func WriteHeightHistogram(w io.Writer, name string, ps *las.PointSet, stats *viewer.CloudStats) error {
	if ps == nil || ps.Count() == 0 {
		return fmt.Errorf("report: no points to chart")
	}
	if stats == nil {
		stats = viewer.ComputeCloudStats(ps)
	}

	span := stats.MaxZ - stats.MinZ
	if span <= 0 {
		span = 1
	}
	counts := make([]int, HistogramBins)
	n := ps.Count()
	for i := 0; i < n; i++ {
		z := float64(ps.Positions[i*3+2])
		bin := int((z - stats.MinZ) / span * HistogramBins)
		if bin < 0 {
			bin = 0
		} else if bin >= HistogramBins {
			bin = HistogramBins - 1
		}
		counts[bin]++
	}

	labels := make([]string, HistogramBins)
	data := make([]opts.BarData, HistogramBins)
	for i := 0; i < HistogramBins; i++ {
		labels[i] = fmt.Sprintf("%.1f", stats.MinZ+(float64(i)+0.5)*span/HistogramBins)
		data[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Point Cloud Height Distribution", Theme: "dark", Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Height Distribution",
			Subtitle: fmt.Sprintf("file=%s points=%d meanZ=%.2f p95Z=%.2f", name, n, stats.MeanZ, stats.P95Z),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Z (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "points"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("points", data)

	return bar.Render(w)
}
