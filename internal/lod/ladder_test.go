package lod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLadder_Validation(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		_, err := NewLadder(nil)
		assert.Error(t, err)
	})

	t.Run("zero budget", func(t *testing.T) {
		_, err := NewLadder([]Tier{{MaxDistance: math.Inf(1), PointBudget: 0}})
		assert.Error(t, err)
	})

	t.Run("not ascending", func(t *testing.T) {
		_, err := NewLadder([]Tier{
			{MaxDistance: 100, PointBudget: 1000},
			{MaxDistance: 50, PointBudget: 500},
			{MaxDistance: math.Inf(1), PointBudget: 100},
		})
		assert.Error(t, err)
	})

	t.Run("duplicate distance", func(t *testing.T) {
		_, err := NewLadder([]Tier{
			{MaxDistance: 50, PointBudget: 1000},
			{MaxDistance: 50, PointBudget: 500},
			{MaxDistance: math.Inf(1), PointBudget: 100},
		})
		assert.Error(t, err)
	})

	t.Run("bounded last tier", func(t *testing.T) {
		_, err := NewLadder([]Tier{{MaxDistance: 100, PointBudget: 1000}})
		assert.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		l, err := NewLadder([]Tier{
			{MaxDistance: 50, PointBudget: 1_000_000},
			{MaxDistance: math.Inf(1), PointBudget: 50_000},
		})
		require.NoError(t, err)
		assert.Len(t, l, 2)
	})
}

func TestMustLadder_PanicsOnInvalid(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { MustLadder(nil) })
}

func TestTierFor_FirstMatchWins(t *testing.T) {
	t.Parallel()
	l := MustLadder([]Tier{
		{MaxDistance: 50, PointBudget: 1_000_000},
		{MaxDistance: 200, PointBudget: 250_000},
		{MaxDistance: math.Inf(1), PointBudget: 50_000},
	})

	assert.Equal(t, 0, l.TierFor(0))
	assert.Equal(t, 0, l.TierFor(30))
	assert.Equal(t, 0, l.TierFor(50)) // boundary is inclusive
	assert.Equal(t, 1, l.TierFor(50.01))
	assert.Equal(t, 1, l.TierFor(200))
	assert.Equal(t, 2, l.TierFor(800))
	assert.Equal(t, 2, l.TierFor(math.MaxFloat64))
}

func TestDefaultLadder_Total(t *testing.T) {
	t.Parallel()
	l := DefaultLadder()
	require.NotEmpty(t, l)
	assert.True(t, math.IsInf(l[len(l)-1].MaxDistance, 1))
}
