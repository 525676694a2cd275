package evaluator

import (
	"testing"

	"github.com/lox/pokeragent/internal/deck"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		hole     string
		board    string
		expected float64
		category string
	}{
		{"four of a kind", "AsAh", "AdAc2h", 0.95, "four of a kind"},
		{"full house", "KsKh", "Kd2c2h", 0.90, "full house"},
		{"flush", "AsJs", "8s5s2s", 0.85, "flush"},
		{"straight also counts as a draw", "9h8d", "7c6s5h", 0.90, "straight"},
		{"wheel straight", "Ah2d", "3c4s5h", 0.90, "straight"},
		{"three of a kind", "7h7d", "7cKs2h", 0.70, "three of a kind"},
		{"two sets stay three of a kind", "7h7d", "7cKsKhKd2s", 0.70, "three of a kind"},
		{"two pair", "KhKd", "4c4s9h", 0.60, "two pair"},
		{"high pocket pair", "KsKh", "", 0.55, "pair"},
		{"ten pair is high", "Ts2h", "Td7c4s", 0.55, "pair"},
		{"low pocket pair", "4s4h", "", 0.45, "pair"},
		{"ace high", "As7d", "", 0.40, "high card"},
		{"nine high", "9s7d", "", 0.30, "high card"},
		{"flush draw bonus", "AsKs", "7s2sQd", 0.55, "high card"},
		{"four to a straight scores as straight", "9h8d", "7c6s2h", 0.90, "straight"},
		{"gapped four to a straight scores as straight", "9h8d", "6c5s2h", 0.90, "straight"},
		{"three connected ranks are not a run", "9h8d", "7c2s3h", 0.30, "high card"},
		{"four ranks spanning five are not a run", "9h8d", "6c4s2h", 0.30, "high card"},
		{"straight flush is scored as flush plus draw", "9s8s", "7s6s5s", 0.95, "flush"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hole := deck.MustParseCards(tt.hole)
			board := deck.MustParseCards(tt.board)

			assert.InDelta(t, tt.expected, Evaluate(hole, board), 1e-9)
			assert.Equal(t, tt.category, Category(hole, board))
		})
	}
}

func TestEvaluateFewerThanTwoVisibleCards(t *testing.T) {
	cases := [][2][]deck.Card{
		{nil, nil},
		{deck.MustParseCards("As"), nil},
		{[]deck.Card{deck.Hidden, deck.Hidden}, nil},
		{[]deck.Card{deck.Hidden, deck.Hidden}, deck.MustParseCards("Kd")},
		{deck.MustParseCards("As??"), nil},
	}
	for _, c := range cases {
		assert.Equal(t, UnknownStrength, Evaluate(c[0], c[1]))
		assert.Equal(t, 0.3, Evaluate(c[0], c[1]))
	}
}

func TestEvaluateIgnoresHiddenCards(t *testing.T) {
	hole := []deck.Card{deck.Hidden, deck.Hidden}
	assert.InDelta(t, HighPairStrength, Evaluate(hole, deck.MustParseCards("AsAh")), 1e-9)
}

func TestFourOfAKindIsClamped(t *testing.T) {
	// quads with both draw bonuses would exceed 1.0 unclamped
	got := Evaluate(deck.MustParseCards("9s9h"), deck.MustParseCards("9d9c8s7s6s"))
	assert.GreaterOrEqual(t, got, FourOfAKindStrength)
	assert.LessOrEqual(t, got, 1.0)
	assert.Equal(t, 1.0, got)
}

func TestPairRankOrdering(t *testing.T) {
	kings := Evaluate(deck.MustParseCards("KsKh"), deck.MustParseCards("2c7d"))
	fours := Evaluate(deck.MustParseCards("4s4h"), deck.MustParseCards("2c7d"))
	assert.GreaterOrEqual(t, kings, fours)
}

func TestEvaluateDoesNotMutateInputs(t *testing.T) {
	hole := deck.MustParseCards("AsKs")
	board := deck.MustParseCards("QsJsTs")
	before := append([]deck.Card(nil), board...)

	Evaluate(hole, board)
	assert.Equal(t, before, board)
}

func BenchmarkEvaluate(b *testing.B) {
	hole := deck.MustParseCards("AsKs")
	board := deck.MustParseCards("QsJd7c2h3s")
	for b.Loop() {
		Evaluate(hole, board)
	}
}
