package lod

import (
	"fmt"
	"sync"

	"github.com/banshee-data/lasview/internal/monitoring"
)

// DefaultChunkPoints is the number of points copied between yield calls
// during a resample. Large enough to amortise the call overhead, small
// enough that one chunk never occupies a meaningful slice of a frame.
const DefaultChunkPoints = 65536

// DisplayBuffer is one resampled output: the buffers actually handed to the
// renderer, plus the sampling parameters that produced them. It is rebuilt
// on tier change and replaced wholesale; the renderer owns the previous
// buffer until it swaps.
type DisplayBuffer struct {
	Positions []float32
	Colors    []float32
	Stride    int // sampling interval over the original buffers
	TierIndex int // ladder entry that produced this buffer; -1 = full resolution
}

// Count returns the number of displayed points.
func (d *DisplayBuffer) Count() int { return len(d.Positions) / 3 }

// ResamplerConfig configures a Resampler.
type ResamplerConfig struct {
	// Ladder is the distance-to-budget ladder. Empty means DefaultLadder.
	Ladder Ladder

	// ChunkPoints is the number of points copied per chunk during a
	// resample (default DefaultChunkPoints).
	ChunkPoints int

	// Yield, when set, is called between chunks to hand control back to
	// the host scheduler so a large resample cannot stall frame pacing.
	Yield func()

	// Publish, when set, receives each committed display buffer. This is
	// the renderer handoff: after the call the receiver owns the buffer.
	Publish func(*DisplayBuffer)
}

// Resampler owns the full decoded buffers and produces distance-bounded
// display buffers from them. States: unattached, or attached with a current
// tier. The original buffers are exclusively owned by the Resampler once
// attached; nothing else may mutate them.
type Resampler struct {
	mu sync.Mutex

	ladder      Ladder
	chunkPoints int
	yield       func()
	publish     func(*DisplayBuffer)

	origPos []float32
	origCol []float32

	attached    bool
	currentTier int // -1 until the first resample commits
	display     *DisplayBuffer

	// busy serialises resampling: a tier change arriving while a resample
	// is in flight is queued in pendingTier (latest wins), never run
	// concurrently. generation invalidates an in-flight resample when the
	// buffers are replaced underneath it.
	busy        bool
	pendingTier int
	generation  uint64
}

// NewResampler creates a Resampler for the given ladder.
func NewResampler(cfg ResamplerConfig) *Resampler {
	if len(cfg.Ladder) == 0 {
		cfg.Ladder = DefaultLadder()
	}
	if cfg.ChunkPoints <= 0 {
		cfg.ChunkPoints = DefaultChunkPoints
	}
	return &Resampler{
		ladder:      cfg.Ladder,
		chunkPoints: cfg.ChunkPoints,
		yield:       cfg.Yield,
		publish:     cfg.Publish,
		currentTier: -1,
		pendingTier: -1,
	}
}

// Attach installs positions/colors as the original buffers and resets the
// tier state. The displayed buffer is the full-resolution set until the
// first distance sample arrives. Attaching again replaces the previous
// point set and invalidates any resample still in flight.
func (r *Resampler) Attach(positions, colors []float32) *DisplayBuffer {
	if len(positions) != len(colors) || len(positions)%3 != 0 {
		panic(fmt.Sprintf("lod: malformed point set: %d position floats, %d colour floats",
			len(positions), len(colors)))
	}

	r.mu.Lock()
	r.origPos = positions
	r.origCol = colors
	r.attached = true
	r.currentTier = -1
	r.pendingTier = -1
	r.generation++
	display := &DisplayBuffer{
		Positions: positions,
		Colors:    colors,
		Stride:    1,
		TierIndex: -1,
	}
	r.display = display
	publish := r.publish
	r.mu.Unlock()

	if publish != nil {
		publish(display)
	}
	return display
}

// Attached reports whether a point set is installed.
func (r *Resampler) Attached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attached
}

// CurrentTier returns the committed tier index, or -1 while the display is
// still full resolution.
func (r *Resampler) CurrentTier() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentTier
}

// Display returns the current display buffer, or nil when unattached.
func (r *Resampler) Display() *DisplayBuffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.display
}

// OnDistanceSample takes the per-frame camera-to-target distance and returns
// a new DisplayBuffer when the distance crossed into a different tier, nil
// otherwise. Repeated samples inside the same tier are free: no allocation,
// no copying. A sample arriving while a resample is in flight (the host
// re-entering through the yield hook) is queued, latest wins.
func (r *Resampler) OnDistanceSample(distance float64) *DisplayBuffer {
	r.mu.Lock()
	if !r.attached {
		r.mu.Unlock()
		return nil
	}
	tier := r.ladder.TierFor(distance)
	if tier == r.currentTier {
		r.mu.Unlock()
		return nil
	}
	if r.busy {
		r.pendingTier = tier
		r.mu.Unlock()
		return nil
	}
	r.busy = true
	gen := r.generation
	pos, col := r.origPos, r.origCol
	r.mu.Unlock()

	for {
		display, ok := r.applyLOD(pos, col, tier, gen)
		if !ok {
			// Buffers were replaced mid-copy; the new attach owns the
			// display slot now.
			r.mu.Lock()
			r.busy = false
			r.mu.Unlock()
			return nil
		}

		r.mu.Lock()
		if next := r.pendingTier; next >= 0 && next != tier {
			r.pendingTier = -1
			tier = next
			r.mu.Unlock()
			continue
		}
		r.pendingTier = -1
		r.currentTier = tier
		r.display = display
		r.busy = false
		publish := r.publish
		r.mu.Unlock()

		if publish != nil {
			publish(display)
		}
		return display
	}
}

// applyLOD decimates the original buffers to the tier's budget by strided
// copy, processing a bounded chunk of points between yield calls so a large
// resample never blocks the host for a full multi-million-point copy. The
// copy preserves record order; it is a decimation, not a spatial filter, so
// the budget is a soft bound on displayed density, not a uniform-in-space
// guarantee. Returns ok=false if the point set was replaced mid-copy.
func (r *Resampler) applyLOD(pos, col []float32, tier int, gen uint64) (*DisplayBuffer, bool) {
	n := len(pos) / 3
	budget := r.ladder[tier].PointBudget

	stride := n / budget
	if stride < 1 {
		stride = 1
	}
	sampled := n / stride
	if sampled == 0 && n > 0 {
		sampled = n
		stride = 1
	}

	display := &DisplayBuffer{
		Positions: make([]float32, sampled*3),
		Colors:    make([]float32, sampled*3),
		Stride:    stride,
		TierIndex: tier,
	}

	for start := 0; start < sampled; start += r.chunkPoints {
		end := start + r.chunkPoints
		if end > sampled {
			end = sampled
		}
		for i := start; i < end; i++ {
			src := i * stride * 3
			dst := i * 3
			display.Positions[dst] = pos[src]
			display.Positions[dst+1] = pos[src+1]
			display.Positions[dst+2] = pos[src+2]
			display.Colors[dst] = col[src]
			display.Colors[dst+1] = col[src+1]
			display.Colors[dst+2] = col[src+2]
		}

		if end < sampled {
			if r.yield != nil {
				r.yield()
			}
			// Cancellation check at the chunk boundary: a new attach
			// bumps the generation and this copy becomes stale.
			r.mu.Lock()
			stale := r.generation != gen
			r.mu.Unlock()
			if stale {
				monitoring.Logf("lod: abandoning stale resample to tier %d", tier)
				return nil, false
			}
		}
	}

	return display, true
}
