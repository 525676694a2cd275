package game

import "github.com/lox/pokeragent/internal/deck"

// Role is a participant's seat role for the current hand
type Role string

const (
	RoleNone       Role = "none"
	RoleDealer     Role = "dealer"
	RoleSmallBlind Role = "small_blind"
	RoleBigBlind   Role = "big_blind"
)

// Participant is one seated player as reported by the game authority.
// The agent only reads it.
type Participant struct {
	ID        string      `json:"id"`
	Chips     int         `json:"chips"`
	Bet       int         `json:"bet"`      // committed on the current street
	TotalBet  int         `json:"totalBet"` // committed this hand
	Folded    bool        `json:"folded"`
	AllIn     bool        `json:"allIn"`
	Role      Role        `json:"role"`
	Connected bool        `json:"connected"`
	Ready     bool        `json:"ready"`
	HoleCards []deck.Card `json:"holeCards,omitempty"`
}

// CanAct reports whether the participant may still take betting actions
func (p *Participant) CanAct() bool {
	return !p.Folded && !p.AllIn
}

// Winner is one share of a settled pot
type Winner struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
	Hand     string `json:"hand,omitempty"`
}

// SharedState is a full snapshot of one table
type SharedState struct {
	HandID         string                  `json:"handId,omitempty"`
	Phase          Phase                   `json:"phase"`
	Players        map[string]*Participant `json:"players"`
	SeatOrder      []string                `json:"seatOrder"`
	TurnIndex      int                     `json:"turnIndex"` // index into SeatOrder, -1 when nobody is to act
	Pot            int                     `json:"pot"`
	CommunityCards []deck.Card             `json:"communityCards"`
	CurrentBet     int                     `json:"currentBet"`
	MinRaise       int                     `json:"minRaise"`
	Winners        []Winner                `json:"winners,omitempty"`
}

// Player looks up a participant by id
func (s *SharedState) Player(id string) (*Participant, bool) {
	p, ok := s.Players[id]
	return p, ok && p != nil
}

// TurnPlayerID returns the id of the participant whose turn it is, or "" when
// nobody is to act
func (s *SharedState) TurnPlayerID() string {
	if s.TurnIndex < 0 || s.TurnIndex >= len(s.SeatOrder) {
		return ""
	}
	return s.SeatOrder[s.TurnIndex]
}

// IsTurn reports whether it is id's turn to act
func (s *SharedState) IsTurn(id string) bool {
	return id != "" && s.TurnPlayerID() == id
}

// CallAmount returns the chips p still owes to match the current bet
func (s *SharedState) CallAmount(p *Participant) int {
	return max(s.CurrentBet-p.Bet, 0)
}

// HasWinners reports whether the snapshot carries settled winner information
func (s *SharedState) HasWinners() bool {
	return len(s.Winners) > 0
}

// IsWinner reports whether id received a share of the pot
func (s *SharedState) IsWinner(id string) bool {
	for _, w := range s.Winners {
		if w.PlayerID == id {
			return true
		}
	}
	return false
}
