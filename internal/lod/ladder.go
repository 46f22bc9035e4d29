package lod

import (
	"fmt"
	"math"
)

// Tier maps a camera distance range to a displayed point budget. MaxDistance
// is an inclusive upper bound; the final tier uses +Inf so the ladder covers
// [0, +Inf).
type Tier struct {
	MaxDistance float64
	PointBudget int
}

// Ladder is a fixed list of tiers sorted ascending by MaxDistance. A ladder
// is validated once at construction; an invalid ladder is a programming
// error, not a runtime failure path.
type Ladder []Tier

// NewLadder validates tiers and returns them as a Ladder. Tiers must be
// non-empty, strictly ascending by MaxDistance, have positive budgets, and
// the last tier must be unbounded (+Inf) so every distance selects a tier.
func NewLadder(tiers []Tier) (Ladder, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("lod: ladder must have at least one tier")
	}
	prev := math.Inf(-1)
	for i, tier := range tiers {
		if tier.PointBudget <= 0 {
			return nil, fmt.Errorf("lod: tier %d has non-positive budget %d", i, tier.PointBudget)
		}
		if tier.MaxDistance <= prev {
			return nil, fmt.Errorf("lod: tier %d max distance %g not ascending", i, tier.MaxDistance)
		}
		prev = tier.MaxDistance
	}
	if last := tiers[len(tiers)-1].MaxDistance; !math.IsInf(last, 1) {
		return nil, fmt.Errorf("lod: last tier must be unbounded, got max distance %g", last)
	}
	return Ladder(tiers), nil
}

// MustLadder is NewLadder for statically-known ladders; it panics on error.
func MustLadder(tiers []Tier) Ladder {
	l, err := NewLadder(tiers)
	if err != nil {
		panic(err)
	}
	return l
}

// DefaultLadder returns the stock distance/budget ladder used when no
// tuning config overrides it.
func DefaultLadder() Ladder {
	return MustLadder([]Tier{
		{MaxDistance: 50, PointBudget: 1_000_000},
		{MaxDistance: 200, PointBudget: 250_000},
		{MaxDistance: math.Inf(1), PointBudget: 50_000},
	})
}

// TierFor returns the index of the first tier whose MaxDistance >= distance.
// First match wins; the unbounded last tier guarantees a hit.
func (l Ladder) TierFor(distance float64) int {
	for i, tier := range l {
		if tier.MaxDistance >= distance {
			return i
		}
	}
	return len(l) - 1
}
