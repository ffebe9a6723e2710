package anvil

import (
	"math"
	"slices"
)

// Tier controls invocation precedence between extension categories.
// Lower tiers are invoked first.
type Tier int

const (
	// TierPriority is the highest-precedence tier.
	TierPriority Tier = iota
	// TierOrdered follows the priority tier; members carry a numeric rank.
	TierOrdered
	// TierUnordered is the lowest tier; members keep discovery order.
	TierUnordered
)

func (t Tier) String() string {
	switch t {
	case TierPriority:
		return "priority"
	case TierOrdered:
		return "ordered"
	default:
		return "unordered"
	}
}

// Ordered assigns a rank to an extension or interceptor. Lower ranks run
// earlier within a tier.
type Ordered interface {
	Order() int
}

// Prioritized marks an extension or interceptor for the priority tier.
// Prioritized implementations are also Ordered; the rank orders them within
// the tier.
type Prioritized interface {
	Ordered
	PriorityOrdered()
}

// lowestRank is the default rank for candidates that are not Ordered.
const lowestRank = math.MaxInt

// TierOf classifies a candidate into its tier.
func TierOf(v any) Tier {
	switch v.(type) {
	case Prioritized:
		return TierPriority
	case Ordered:
		return TierOrdered
	default:
		return TierUnordered
	}
}

// RankOf returns a candidate's rank, or the lowest precedence when it is not
// Ordered.
func RankOf(v any) int {
	if o, ok := v.(Ordered); ok {
		return o.Order()
	}
	return lowestRank
}

// Comparator orders two candidates. Negative means a runs before b.
type Comparator func(a, b any) int

// DefaultComparator orders by tier, then by ascending rank. Equal candidates
// compare as equal so stable sorting preserves discovery order.
func DefaultComparator(a, b any) int {
	if ta, tb := TierOf(a), TierOf(b); ta != tb {
		if ta < tb {
			return -1
		}
		return 1
	}
	ra, rb := RankOf(a), RankOf(b)
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

// sortCandidates sorts in place using the factory's comparator when one is
// supplied, DefaultComparator otherwise. Zero- and one-element slices are
// returned untouched so no comparator is resolved for them.
func sortCandidates[T any](items []T, factory ComponentFactory) {
	if len(items) <= 1 {
		return
	}
	cmp := DefaultComparator
	if factory != nil {
		if c := factory.OrderingComparator(); c != nil {
			cmp = c
		}
	}
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp(a, b)
	})
}
