package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEmptyTuningConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg := EmptyTuningConfig()

	assert.Equal(t, 5_000_000, cfg.GetMaxDecodePoints())
	assert.Equal(t, 65536, cfg.GetResampleChunkPoints())
	assert.Equal(t, "lasview.db", cfg.GetCatalogPath())

	ladder := cfg.GetLodLadder()
	require.NotEmpty(t, ladder)
	assert.True(t, math.IsInf(ladder[len(ladder)-1].MaxDistance, 1))
}

func TestLoadTuningConfig_Partial(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "tuning.json", `{"max_decode_points": 2000000}`)

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2_000_000, cfg.GetMaxDecodePoints())
	// Omitted fields keep their defaults.
	assert.Equal(t, 65536, cfg.GetResampleChunkPoints())
}

func TestLoadTuningConfig_Ladder(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "tuning.json", `{
		"lod_ladder": [
			{"max_distance": 50, "point_budget": 1000000},
			{"point_budget": 50000}
		]
	}`)

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)

	ladder := cfg.GetLodLadder()
	require.Len(t, ladder, 2)
	assert.Equal(t, 50.0, ladder[0].MaxDistance)
	assert.Equal(t, 1_000_000, ladder[0].PointBudget)
	// A tier without max_distance is the unbounded tail.
	assert.True(t, math.IsInf(ladder[1].MaxDistance, 1))
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	t.Parallel()

	t.Run("wrong extension", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "tuning.yaml", `{}`)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("bad json", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "tuning.json", `{`)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("negative decode ceiling", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "tuning.json", `{"max_decode_points": -5}`)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("unsorted ladder", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "tuning.json", `{
			"lod_ladder": [
				{"max_distance": 100, "point_budget": 1000},
				{"max_distance": 50, "point_budget": 500},
				{"point_budget": 100}
			]
		}`)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("bounded final tier", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "tuning.json", `{
			"lod_ladder": [{"max_distance": 100, "point_budget": 1000}]
		}`)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})
}

func TestValidate_ChunkPoints(t *testing.T) {
	t.Parallel()
	zero := 0
	cfg := &TuningConfig{ResampleChunkPoints: &zero}
	assert.Error(t, cfg.Validate())
}
