// Package ply writes decoded point sets as ASCII PLY files, the exchange
// format most point-cloud tools (CloudCompare, MeshLab) open directly.
package ply

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/banshee-data/lasview/internal/las"
	"github.com/banshee-data/lasview/internal/monitoring"
)

// Write writes ps to w as ASCII PLY: a vertex element with float positions
// and uchar colours. Colours are rescaled from [0,1] to 0-255.
func Write(w io.Writer, ps *las.PointSet) error {
	if ps == nil || ps.Count() == 0 {
		return fmt.Errorf("ply: no points to export")
	}

	bw := bufio.NewWriter(w)
	n := ps.Count()

	fmt.Fprintf(bw, "ply\n")
	fmt.Fprintf(bw, "format ascii 1.0\n")
	fmt.Fprintf(bw, "element vertex %d\n", n)
	fmt.Fprintf(bw, "property float x\n")
	fmt.Fprintf(bw, "property float y\n")
	fmt.Fprintf(bw, "property float z\n")
	fmt.Fprintf(bw, "property uchar red\n")
	fmt.Fprintf(bw, "property uchar green\n")
	fmt.Fprintf(bw, "property uchar blue\n")
	fmt.Fprintf(bw, "end_header\n")

	for i := 0; i < n; i++ {
		p := ps.Positions[i*3 : i*3+3]
		c := ps.Colors[i*3 : i*3+3]
		fmt.Fprintf(bw, "%.6f %.6f %.6f %d %d %d\n",
			p[0], p[1], p[2],
			channelByte(c[0]), channelByte(c[1]), channelByte(c[2]))
	}

	return bw.Flush()
}

// WriteFile writes ps to a .ply file at path. The extension is enforced so
// a mistyped output flag cannot clobber an unrelated file.
func WriteFile(path string, ps *las.PointSet) error {
	if filepath.Ext(path) != ".ply" {
		return fmt.Errorf("ply: output path must have .ply extension, got %q", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ply: cannot create %s: %w", path, err)
	}

	if err := Write(f, ps); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("ply: close %s: %w", path, err)
	}

	monitoring.Logf("ply: exported %d points to %s", ps.Count(), path)
	return nil
}

// channelByte converts a [0,1] colour channel to 0-255, clamping out-of-range
// values instead of letting them wrap.
func channelByte(v float32) int {
	b := int(v * 255)
	if b < 0 {
		return 0
	}
	if b > 255 {
		return 255
	}
	return b
}
