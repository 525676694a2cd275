// Package evaluator scores a hold'em hand on a 0..1 scale.
//
// The score is a fast heuristic rather than an exact ranking: the made-hand
// category sets a base strength and flush/straight draws add fixed bonuses on
// top, even when a stronger hand is already made.
package evaluator

import (
	"slices"

	"github.com/lox/pokeragent/internal/deck"
)

// Category strengths, strongest first.
const (
	FourOfAKindStrength  = 0.95
	FullHouseStrength    = 0.90
	FlushStrength        = 0.85
	StraightStrength     = 0.80
	ThreeOfAKindStrength = 0.70
	TwoPairStrength      = 0.60
	HighPairStrength     = 0.55
	LowPairStrength      = 0.45
	HighCardStrength     = 0.40
	NothingStrength      = 0.30

	// UnknownStrength is returned when fewer than two cards are visible.
	UnknownStrength = 0.30

	FlushDrawBonus    = 0.15
	StraightDrawBonus = 0.10
)

// A run is runSize distinct ranks spanning at most runSpan. Made straights
// and straight draws share the same check.
const (
	runSize = 4
	runSpan = 4
)

// Evaluate returns the strength of the visible cards among hole and community.
// Hidden cards are ignored. It is pure and safe for concurrent use.
func Evaluate(hole, community []deck.Card) float64 {
	return evaluate(hole, community).strength
}

// Category names the made-hand category Evaluate matched, for logging.
func Category(hole, community []deck.Card) string {
	return evaluate(hole, community).category
}

type result struct {
	strength float64
	category string
}

func evaluate(hole, community []deck.Card) result {
	all := make([]deck.Card, 0, len(hole)+len(community))
	all = append(all, hole...)
	all = append(all, community...)
	cards := deck.Visible(all)
	if len(cards) < 2 {
		return result{UnknownStrength, "unknown"}
	}

	rankCounts := make(map[deck.Rank]int, len(cards))
	suitCounts := make(map[deck.Suit]int, 4)
	for _, c := range cards {
		rankCounts[c.Rank]++
		suitCounts[c.Suit]++
	}

	ranks := make([]deck.Rank, 0, len(rankCounts))
	counts := make([]int, 0, len(rankCounts))
	for r, n := range rankCounts {
		ranks = append(ranks, r)
		counts = append(counts, n)
	}
	slices.Sort(ranks)
	slices.SortFunc(counts, func(a, b int) int { return b - a })

	res := madeHand(counts, ranks, rankCounts, suitCounts)

	if hasFlushDraw(suitCounts) {
		res.strength += FlushDrawBonus
	}
	if hasRun(ranks, runSize) {
		res.strength += StraightDrawBonus
	}
	res.strength = min(res.strength, 1.0)
	return res
}

// madeHand picks the first matching category in precedence order.
func madeHand(counts []int, ranks []deck.Rank, rankCounts map[deck.Rank]int, suitCounts map[deck.Suit]int) result {
	second := 0
	if len(counts) > 1 {
		second = counts[1]
	}

	switch {
	case counts[0] == 4:
		return result{FourOfAKindStrength, "four of a kind"}
	case counts[0] == 3 && second == 2:
		return result{FullHouseStrength, "full house"}
	case hasFlush(suitCounts):
		return result{FlushStrength, "flush"}
	case hasStraight(ranks):
		return result{StraightStrength, "straight"}
	case counts[0] == 3:
		return result{ThreeOfAKindStrength, "three of a kind"}
	case counts[0] == 2 && second == 2:
		return result{TwoPairStrength, "two pair"}
	case counts[0] == 2:
		if pairRank(rankCounts) >= deck.Ten {
			return result{HighPairStrength, "pair"}
		}
		return result{LowPairStrength, "pair"}
	}

	if ranks[len(ranks)-1] >= deck.Queen {
		return result{HighCardStrength, "high card"}
	}
	return result{NothingStrength, "high card"}
}

func hasFlush(suitCounts map[deck.Suit]int) bool {
	for _, n := range suitCounts {
		if n >= 5 {
			return true
		}
	}
	return false
}

// hasFlushDraw is exactly four of one suit; five or more is a made flush.
func hasFlushDraw(suitCounts map[deck.Suit]int) bool {
	for _, n := range suitCounts {
		if n == 4 {
			return true
		}
	}
	return false
}

func hasStraight(ranks []deck.Rank) bool {
	if hasRun(ranks, runSize) {
		return true
	}
	for _, r := range []deck.Rank{deck.Ace, deck.Two, deck.Three, deck.Four, deck.Five} {
		if _, ok := slices.BinarySearch(ranks, r); !ok {
			return false
		}
	}
	return true
}

// hasRun reports whether any window of size sorted distinct ranks spans at
// most runSpan ranks.
func hasRun(ranks []deck.Rank, size int) bool {
	for i := 0; i+size-1 < len(ranks); i++ {
		if int(ranks[i+size-1]-ranks[i]) <= runSpan {
			return true
		}
	}
	return false
}

func pairRank(rankCounts map[deck.Rank]int) deck.Rank {
	for r, n := range rankCounts {
		if n == 2 {
			return r
		}
	}
	return 0
}
