// Package viewer owns one decode/resample pipeline: it loads LAS byte
// buffers, hands the decoded buffers to the LOD resampler, and pushes
// display buffers to an external renderer.
package viewer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/lasview/internal/catalog"
	"github.com/banshee-data/lasview/internal/config"
	"github.com/banshee-data/lasview/internal/las"
	"github.com/banshee-data/lasview/internal/lod"
	"github.com/banshee-data/lasview/internal/monitoring"
)

// ErrLoadInFlight means Load was called while another load was still
// running. Concurrent loads of the same session are not supported; the
// caller should retry after the first load settles.
var ErrLoadInFlight = errors.New("viewer: another load is in flight")

// Renderer is the external collaborator that displays point buffers. The
// session hands buffers over and never touches them again; the renderer
// owns each buffer until the next SetPoints call replaces it.
type Renderer interface {
	SetPoints(positions, colors []float32)
}

// SessionConfig configures a viewer session.
type SessionConfig struct {
	Renderer Renderer             // required
	Tuning   *config.TuningConfig // nil means all defaults
	Catalog  *catalog.Catalog     // optional load history
	Yield    func()               // host scheduler hook passed to the resampler
}

// Session is one viewer pipeline. A session holds at most one decoded point
// set; loading a new file replaces it wholesale, and a failed load leaves
// the previous set untouched.
type Session struct {
	mu        sync.Mutex
	loading   bool
	renderer  Renderer
	tuning    *config.TuningConfig
	catalog   *catalog.Catalog
	resampler *lod.Resampler

	header *las.FileHeader
	points *las.PointSet
	stats  *CloudStats
	loadID uuid.UUID
}

// NewSession creates a session wired to the given renderer.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Renderer == nil {
		panic("viewer: SessionConfig.Renderer is required")
	}
	tuning := cfg.Tuning
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}

	s := &Session{
		renderer: cfg.Renderer,
		tuning:   tuning,
		catalog:  cfg.Catalog,
	}
	s.resampler = lod.NewResampler(lod.ResamplerConfig{
		Ladder:      tuning.GetLodLadder(),
		ChunkPoints: tuning.GetResampleChunkPoints(),
		Yield:       cfg.Yield,
		Publish: func(d *lod.DisplayBuffer) {
			cfg.Renderer.SetPoints(d.Positions, d.Colors)
		},
	})
	return s
}

// LoadResult summarises a successful load.
type LoadResult struct {
	LoadID       uuid.UUID
	Header       *las.FileHeader
	DecodedCount int
	DecodeStride int
	Stats        *CloudStats
}

// Load parses and decodes one LAS byte buffer and, on success, attaches the
// decoded set to the resampler and hands the full-resolution buffers to the
// renderer. On any failure the previously displayed point set stays valid.
// A second load while one is in flight is rejected, not merged.
func (s *Session) Load(name string, buf []byte) (*LoadResult, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, ErrLoadInFlight
	}
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	start := time.Now()

	header, err := las.ParseHeader(buf)
	if err != nil {
		return nil, fmt.Errorf("load %q failed: %w", name, err)
	}

	points, err := las.DecodeRecords(buf, header, s.tuning.GetMaxDecodePoints())
	if err != nil {
		return nil, fmt.Errorf("load %q failed: %w", name, err)
	}

	stats := ComputeCloudStats(points)
	decodeMillis := time.Since(start).Milliseconds()

	loadID := uuid.New()

	// Commit: only now does the new set replace the old one.
	s.mu.Lock()
	s.header = header
	s.points = points
	s.stats = stats
	s.loadID = loadID
	s.mu.Unlock()
	s.resampler.Attach(points.Positions, points.Colors)

	monitoring.Logf("viewer: loaded %q: LAS 1.%d format %d, %d of %d points (stride %d) in %dms",
		name, header.VersionMinor, header.RecordFormat,
		points.Count(), header.EffectivePointCount(), points.Stride, decodeMillis)

	if s.catalog != nil {
		_, hasColor := las.ColorOffset(header.RecordFormat)
		_, err := s.catalog.InsertLoad(&catalog.LoadRecord{
			LoadID:       loadID,
			SourceName:   name,
			LoadedAt:     start,
			VersionMajor: int(header.VersionMajor),
			VersionMinor: int(header.VersionMinor),
			RecordFormat: int(header.RecordFormat),
			RecordLength: int(header.RecordLength),
			PointCount:   int64(header.EffectivePointCount()),
			DecodedCount: int64(points.Count()),
			DecodeStride: points.Stride,
			MinZ:         header.Bounds.MinZ,
			MaxZ:         header.Bounds.MaxZ,
			HasColor:     hasColor,
			DecodeMillis: decodeMillis,
		})
		if err != nil {
			// Catalog trouble must not fail a load that already
			// swapped in; the viewer keeps working without history.
			monitoring.Logf("viewer: catalog insert failed for %q: %v", name, err)
		}
	}

	return &LoadResult{
		LoadID:       loadID,
		Header:       header,
		DecodedCount: points.Count(),
		DecodeStride: points.Stride,
		Stats:        stats,
	}, nil
}

// OnDistance feeds the per-frame camera-to-target distance into the
// resampler. Returns the new display buffer when the tier changed, nil
// otherwise.
func (s *Session) OnDistance(distance float64) *lod.DisplayBuffer {
	return s.resampler.OnDistanceSample(distance)
}

// Header returns the header of the currently loaded file, or nil.
func (s *Session) Header() *las.FileHeader {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header
}

// Points returns the currently loaded decoded set, or nil.
func (s *Session) Points() *las.PointSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.points
}

// Stats returns the summary statistics of the current set, or nil.
func (s *Session) Stats() *CloudStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Display returns the current display buffer, or nil before the first load.
func (s *Session) Display() *lod.DisplayBuffer {
	return s.resampler.Display()
}
