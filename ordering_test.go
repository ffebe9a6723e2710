package anvil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type plainCandidate struct{ name string }

type rankedCandidate struct {
	name string
	rank int
}

func (c *rankedCandidate) Order() int { return c.rank }

type priorityCandidate struct {
	rankedCandidate
}

func (c *priorityCandidate) PriorityOrdered() {}

func TestTierOf(t *testing.T) {
	assert.Equal(t, TierPriority, TierOf(&priorityCandidate{}))
	assert.Equal(t, TierOrdered, TierOf(&rankedCandidate{}))
	assert.Equal(t, TierUnordered, TierOf(&plainCandidate{}))
}

func TestRankOf(t *testing.T) {
	assert.Equal(t, 7, RankOf(&rankedCandidate{rank: 7}))
	assert.Equal(t, lowestRank, RankOf(&plainCandidate{}))
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "priority", TierPriority.String())
	assert.Equal(t, "ordered", TierOrdered.String())
	assert.Equal(t, "unordered", TierUnordered.String())
}

func TestDefaultComparator(t *testing.T) {
	pri := &priorityCandidate{}
	low := &rankedCandidate{rank: 1}
	high := &rankedCandidate{rank: 5}
	plain := &plainCandidate{}

	t.Run("TierPrecedence", func(t *testing.T) {
		assert.Negative(t, DefaultComparator(pri, low))
		assert.Negative(t, DefaultComparator(low, plain))
		assert.Negative(t, DefaultComparator(pri, plain))
		assert.Positive(t, DefaultComparator(plain, pri))
	})

	t.Run("RankWithinTier", func(t *testing.T) {
		assert.Negative(t, DefaultComparator(low, high))
		assert.Positive(t, DefaultComparator(high, low))
	})

	t.Run("EqualCandidates", func(t *testing.T) {
		assert.Zero(t, DefaultComparator(low, &rankedCandidate{rank: 1}))
		assert.Zero(t, DefaultComparator(plain, &plainCandidate{}))
	})
}

func TestSortCandidates(t *testing.T) {
	t.Run("TierThenRank", func(t *testing.T) {
		a := &priorityCandidate{rankedCandidate{name: "a"}}
		b := &rankedCandidate{name: "b", rank: 5}
		c := &rankedCandidate{name: "c", rank: 1}
		d := &plainCandidate{name: "d"}

		items := []any{d, b, c, a}
		sortCandidates(items, nil)

		assert.Equal(t, []any{a, c, b, d}, items)
	})

	t.Run("StableOnTies", func(t *testing.T) {
		// Equal ranks and absent ranks keep discovery order.
		x := &rankedCandidate{name: "x", rank: 3}
		y := &rankedCandidate{name: "y", rank: 3}
		u1 := &plainCandidate{name: "u1"}
		u2 := &plainCandidate{name: "u2"}

		items := []any{x, u1, y, u2}
		sortCandidates(items, nil)

		assert.Equal(t, []any{x, y, u1, u2}, items)
	})

	t.Run("CustomComparatorReplacesDefault", func(t *testing.T) {
		// The factory comparator substitutes the default entirely; here it
		// inverts rank order.
		f := NewStandardFactory(WithComparator(func(a, b any) int {
			return DefaultComparator(b, a)
		}))

		lo := &rankedCandidate{name: "lo", rank: 1}
		hi := &rankedCandidate{name: "hi", rank: 9}

		items := []any{lo, hi}
		sortCandidates(items, f)

		assert.Equal(t, []any{hi, lo}, items)
	})

	t.Run("SingleElementUntouched", func(t *testing.T) {
		items := []any{&plainCandidate{name: "only"}}
		sortCandidates(items, nil)

		assert.Len(t, items, 1)
	})
}
