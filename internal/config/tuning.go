package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/lasview/internal/lod"
)

// TuningConfig represents the root configuration for viewer tuning
// parameters. All fields are optional pointers so a partial JSON file only
// overrides what it names; the Get* methods provide the defaults.
type TuningConfig struct {
	// Decode params
	MaxDecodePoints *int `json:"max_decode_points,omitempty"`

	// Resample params
	ResampleChunkPoints *int         `json:"resample_chunk_points,omitempty"`
	LodLadder           []TierConfig `json:"lod_ladder,omitempty"`

	// Catalog params
	CatalogPath *string `json:"catalog_path,omitempty"`
}

// TierConfig is one LOD ladder entry as it appears in the JSON file. A nil
// MaxDistance means unbounded (+Inf) and is only valid on the last entry.
type TierConfig struct {
	MaxDistance *float64 `json:"max_distance,omitempty"`
	PointBudget int      `json:"point_budget"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and be under the max file size. Fields omitted from the
// JSON retain their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.MaxDecodePoints != nil && *c.MaxDecodePoints <= 0 {
		return fmt.Errorf("max_decode_points must be positive, got %d", *c.MaxDecodePoints)
	}

	if c.ResampleChunkPoints != nil && *c.ResampleChunkPoints <= 0 {
		return fmt.Errorf("resample_chunk_points must be positive, got %d", *c.ResampleChunkPoints)
	}

	if len(c.LodLadder) > 0 {
		// NewLadder enforces ordering, budgets and the unbounded tail.
		if _, err := lod.NewLadder(c.ladderTiers()); err != nil {
			return fmt.Errorf("invalid lod_ladder: %w", err)
		}
	}

	return nil
}

// ladderTiers converts the JSON tier entries to lod.Tier values, mapping a
// nil max_distance to +Inf.
func (c *TuningConfig) ladderTiers() []lod.Tier {
	tiers := make([]lod.Tier, 0, len(c.LodLadder))
	for _, tc := range c.LodLadder {
		maxDist := math.Inf(1)
		if tc.MaxDistance != nil {
			maxDist = *tc.MaxDistance
		}
		tiers = append(tiers, lod.Tier{MaxDistance: maxDist, PointBudget: tc.PointBudget})
	}
	return tiers
}

// GetMaxDecodePoints returns the decode ceiling or the default. The ceiling
// bounds the initial decode pass, not the file size: decoding strides across
// the whole file to stay under it.
func (c *TuningConfig) GetMaxDecodePoints() int {
	if c.MaxDecodePoints == nil {
		return 5_000_000 // default: decodes in well under a second
	}
	return *c.MaxDecodePoints
}

// GetResampleChunkPoints returns the resample chunk size or the default.
func (c *TuningConfig) GetResampleChunkPoints() int {
	if c.ResampleChunkPoints == nil {
		return lod.DefaultChunkPoints
	}
	return *c.ResampleChunkPoints
}

// GetLodLadder returns the configured LOD ladder or the stock default.
func (c *TuningConfig) GetLodLadder() lod.Ladder {
	if len(c.LodLadder) == 0 {
		return lod.DefaultLadder()
	}
	ladder, err := lod.NewLadder(c.ladderTiers())
	if err != nil {
		// Validate rejects bad ladders at load time; an invalid ladder
		// here means the config was mutated after loading.
		return lod.DefaultLadder()
	}
	return ladder
}

// GetCatalogPath returns the catalog database path or the default.
func (c *TuningConfig) GetCatalogPath() string {
	if c.CatalogPath == nil || *c.CatalogPath == "" {
		return "lasview.db"
	}
	return *c.CatalogPath
}
