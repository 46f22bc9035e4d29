// Command lasview loads a LAS point-cloud file, decodes it into renderer
// buffers, and optionally exports a PLY copy, an HTML height report, and a
// top-down preview PNG. Each successful load is recorded in the catalog
// database.
//
// Usage:
//
//	go run ./cmd/lasview -in cloud.las [flags]
//
// Flags:
//
//	-in         Input .las file (required)
//	-config     Tuning config JSON (optional)
//	-max-points Decode ceiling, overrides config (0 = config default)
//	-distance   Camera distance to sample for LOD selection (-1 = skip)
//	-ply        Write an ASCII PLY copy to this path
//	-report     Write an HTML height-distribution report to this path
//	-preview    Write a top-down preview PNG to this path
//	-db         Catalog database path ("" = config default, "none" = disable)
package main

import (
	"flag"
	"log"
	"os"

	"github.com/banshee-data/lasview/internal/catalog"
	"github.com/banshee-data/lasview/internal/config"
	"github.com/banshee-data/lasview/internal/ply"
	"github.com/banshee-data/lasview/internal/report"
	"github.com/banshee-data/lasview/internal/viewer"
)

// logRenderer is the stand-in for a real 3D renderer: it just reports what
// it was handed. The buffer shape is exactly what a GPU upload needs.
type logRenderer struct{}

func (logRenderer) SetPoints(positions, colors []float32) {
	log.Printf("renderer: received %d points", len(positions)/3)
}

func main() {
	in := flag.String("in", "", "Input .las file")
	configPath := flag.String("config", "", "Tuning config JSON")
	maxPoints := flag.Int("max-points", 0, "Decode ceiling (0 = config default)")
	distance := flag.Float64("distance", -1, "Camera distance to sample (-1 = skip)")
	plyOut := flag.String("ply", "", "Write ASCII PLY to this path")
	reportOut := flag.String("report", "", "Write HTML height report to this path")
	previewOut := flag.String("preview", "", "Write top-down preview PNG to this path")
	dbPath := flag.String("db", "", "Catalog database path (\"none\" = disable)")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *maxPoints > 0 {
		tuning.MaxDecodePoints = maxPoints
	}

	var cat *catalog.Catalog
	if *dbPath != "none" {
		path := *dbPath
		if path == "" {
			path = tuning.GetCatalogPath()
		}
		var err error
		cat, err = catalog.Open(path)
		if err != nil {
			log.Fatalf("Failed to open catalog: %v", err)
		}
		defer cat.Close()
	}

	buf, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *in, err)
	}

	session := viewer.NewSession(viewer.SessionConfig{
		Renderer: logRenderer{},
		Tuning:   tuning,
		Catalog:  cat,
	})

	result, err := session.Load(*in, buf)
	if err != nil {
		log.Fatalf("Load failed: %v", err)
	}

	h := result.Header
	log.Printf("Header: LAS %d.%d, format %d, record length %d, %d points declared",
		h.VersionMajor, h.VersionMinor, h.RecordFormat, h.RecordLength, h.EffectivePointCount())
	log.Printf("Decoded: %d points (stride %d), load %s", result.DecodedCount, result.DecodeStride, result.LoadID)
	log.Printf("Heights: min=%.2f max=%.2f mean=%.2f median=%.2f p95=%.2f",
		result.Stats.MinZ, result.Stats.MaxZ, result.Stats.MeanZ, result.Stats.MedianZ, result.Stats.P95Z)

	if *distance >= 0 {
		if d := session.OnDistance(*distance); d != nil {
			log.Printf("LOD: distance %.1f selects tier %d, stride %d, %d points displayed",
				*distance, d.TierIndex, d.Stride, d.Count())
		} else {
			log.Printf("LOD: distance %.1f leaves the display unchanged", *distance)
		}
	}

	points := session.Points()

	if *plyOut != "" {
		if err := ply.WriteFile(*plyOut, points); err != nil {
			log.Fatalf("PLY export failed: %v", err)
		}
	}

	if *reportOut != "" {
		f, err := os.Create(*reportOut)
		if err != nil {
			log.Fatalf("Failed to create report: %v", err)
		}
		if err := report.WriteHeightHistogram(f, *in, points, result.Stats); err != nil {
			f.Close()
			log.Fatalf("Report failed: %v", err)
		}
		if err := f.Close(); err != nil {
			log.Fatalf("Failed to close report: %v", err)
		}
		log.Printf("Report written to %s", *reportOut)
	}

	if *previewOut != "" {
		if err := report.SavePreviewPNG(*previewOut, *in, points); err != nil {
			log.Fatalf("Preview failed: %v", err)
		}
		log.Printf("Preview written to %s", *previewOut)
	}
}
