package sandbox

import (
	"fmt"

	"github.com/lox/pokeragent/internal/deck"
	"github.com/paulhankin/poker"
)

// toPoker converts a card to the evaluator library's representation. The
// library counts the ace as rank 1.
func toPoker(c deck.Card) (poker.Card, error) {
	var (
		s    poker.Suit
		zero poker.Card
	)
	switch c.Suit {
	case deck.Clubs:
		s = poker.Club
	case deck.Diamonds:
		s = poker.Diamond
	case deck.Hearts:
		s = poker.Heart
	case deck.Spades:
		s = poker.Spade
	default:
		return zero, fmt.Errorf("invalid suit in %s", c)
	}

	r := poker.Rank(c.Rank)
	if c.Rank == deck.Ace {
		r = poker.Rank(1)
	}
	return poker.MakeCard(s, r)
}

// scoreSeven ranks a seven-card hand; larger scores are better
func scoreSeven(hole, board []deck.Card) (int16, error) {
	if len(hole) != 2 || len(board) != 5 {
		return 0, fmt.Errorf("need 2 hole and 5 board cards, got %d and %d", len(hole), len(board))
	}

	var hand [7]poker.Card
	for i, c := range append(append(make([]deck.Card, 0, 7), hole...), board...) {
		pc, err := toPoker(c)
		if err != nil {
			return 0, err
		}
		hand[i] = pc
	}
	return poker.Eval7(&hand), nil
}

// describe names the best hand in the seven cards, e.g. "two pair, kings and fives"
func describe(hole, board []deck.Card) string {
	cards := make([]poker.Card, 0, 7)
	for _, c := range append(append(make([]deck.Card, 0, 7), hole...), board...) {
		pc, err := toPoker(c)
		if err != nil {
			return ""
		}
		cards = append(cards, pc)
	}
	desc, err := poker.Describe(cards)
	if err != nil {
		return ""
	}
	return desc
}
