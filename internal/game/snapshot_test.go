package game

import (
	"encoding/json"
	"testing"

	"github.com/lox/pokeragent/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseOrdering(t *testing.T) {
	assert.False(t, Waiting.IsBettingStreet())
	assert.True(t, Preflop.IsBettingStreet())
	assert.True(t, River.IsBettingStreet())
	assert.False(t, Showdown.IsBettingStreet())

	p := Waiting
	for _, want := range []Phase{Preflop, Flop, Turn, River, Showdown, Waiting} {
		p = p.Next()
		assert.Equal(t, want, p)
	}
}

func TestParsePhase(t *testing.T) {
	p, err := ParsePhase("flop")
	require.NoError(t, err)
	assert.Equal(t, Flop, p)

	_, err = ParsePhase("dealing")
	assert.Error(t, err)
}

func TestSharedStateDecodesFromWire(t *testing.T) {
	raw := `{
		"handId": "h-7",
		"phase": "TURN",
		"players": {
			"me":  {"id": "me", "chips": 900, "bet": 20, "holeCards": ["As", "Kd"], "ready": true},
			"opp": {"id": "opp", "chips": 800, "bet": 60, "holeCards": ["??", "??"], "role": "big_blind"}
		},
		"seatOrder": ["opp", "me"],
		"turnIndex": 1,
		"pot": 200,
		"communityCards": ["Qh", "Jc", "2s", "9d"],
		"currentBet": 60,
		"minRaise": 40
	}`

	var s SharedState
	require.NoError(t, json.Unmarshal([]byte(raw), &s))

	assert.Equal(t, Turn, s.Phase)
	assert.Equal(t, "me", s.TurnPlayerID())
	assert.True(t, s.IsTurn("me"))
	assert.False(t, s.IsTurn("opp"))

	me, ok := s.Player("me")
	require.True(t, ok)
	assert.Equal(t, 40, s.CallAmount(me))
	assert.Equal(t, []deck.Card{deck.NewCard(deck.Ace, deck.Spades), deck.NewCard(deck.King, deck.Diamonds)}, me.HoleCards)

	opp, ok := s.Player("opp")
	require.True(t, ok)
	assert.True(t, deck.AnyHidden(opp.HoleCards))
	assert.Equal(t, RoleBigBlind, opp.Role)
	assert.Len(t, s.CommunityCards, 4)
}

func TestTurnPlayerIDOutOfRange(t *testing.T) {
	s := SharedState{SeatOrder: []string{"a", "b"}, TurnIndex: -1}
	assert.Equal(t, "", s.TurnPlayerID())
	assert.False(t, s.IsTurn(""))

	s.TurnIndex = 2
	assert.Equal(t, "", s.TurnPlayerID())
}

func TestWinners(t *testing.T) {
	s := SharedState{Phase: Showdown, Winners: []Winner{{PlayerID: "a", Amount: 100}}}
	assert.True(t, s.HasWinners())
	assert.True(t, s.IsWinner("a"))
	assert.False(t, s.IsWinner("b"))
}

func TestCallAmountNeverNegative(t *testing.T) {
	s := SharedState{CurrentBet: 10}
	assert.Equal(t, 0, s.CallAmount(&Participant{Bet: 30}))
}
