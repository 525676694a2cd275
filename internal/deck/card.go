package deck

import "fmt"

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists every suit in deck order
var Suits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the single-letter form used on the wire
func (s Suit) String() string {
	switch s {
	case Spades:
		return "s"
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	default:
		return "?"
	}
}

// Symbol returns the unicode suit symbol
func (s Suit) Symbol() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Rank represents a card rank. The zero Rank marks a card the viewer cannot see.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the single-character form of the rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Nine:
		return string(rune('0' + int(r)))
	case r == Ten:
		return "T"
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// Hidden is the sentinel for a card dealt but not visible to this observer.
var Hidden = Card{}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// IsHidden reports whether the card is the hidden sentinel (or otherwise unknown)
func (c Card) IsHidden() bool {
	return c.Rank < Two || c.Rank > Ace
}

// String returns the text form of a card (e.g. "As"), or "??" when hidden
func (c Card) String() string {
	if c.IsHidden() {
		return "??"
	}
	return c.Rank.String() + c.Suit.String()
}

// Pretty returns the card with a suit symbol (e.g. "A♠")
func (c Card) Pretty() string {
	if c.IsHidden() {
		return "🂠"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit.Symbol())
}

// MarshalText encodes the card in its text form
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card from its text form
func (c *Card) UnmarshalText(text []byte) error {
	card, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// Visible returns the cards that are not hidden, preserving order
func Visible(cards []Card) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if !c.IsHidden() {
			out = append(out, c)
		}
	}
	return out
}

// AnyHidden reports whether any card is hidden
func AnyHidden(cards []Card) bool {
	for _, c := range cards {
		if c.IsHidden() {
			return true
		}
	}
	return false
}
