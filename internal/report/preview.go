package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/lasview/internal/las"
)

// previewMaxPoints bounds the scatter size; plot rendering gets slow well
// before the decode pass does.
const previewMaxPoints = 50000

// SavePreviewPNG renders a top-down (X/Y) scatter of ps and saves it as a
// PNG at path. The set is decimated by stride to previewMaxPoints, the same
// decimation the LOD resampler applies for display.
func SavePreviewPNG(path, name string, ps *las.PointSet) error {
	if ps == nil || ps.Count() == 0 {
		return fmt.Errorf("report: no points to plot")
	}

	n := ps.Count()
	stride := n / previewMaxPoints
	if stride < 1 {
		stride = 1
	}
	sampled := n / stride

	pts := make(plotter.XYs, sampled)
	for i := 0; i < sampled; i++ {
		src := i * stride * 3
		pts[i].X = float64(ps.Positions[src])
		pts[i].Y = float64(ps.Positions[src+1])
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (top-down, %d of %d points)", name, sampled, n)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("report: cannot build scatter: %w", err)
	}
	scatter.Radius = vg.Points(0.5)
	p.Add(scatter)

	if err := p.Save(10*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("report: cannot save preview: %w", err)
	}
	return nil
}
