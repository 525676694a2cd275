package main

import (
	"testing"

	"github.com/lox/pokeragent/internal/config"
	"github.com/lox/pokeragent/internal/deck"
	"github.com/lox/pokeragent/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		cmd   EvalCmd
		error string
	}{
		{"one hole card", EvalCmd{Hole: []string{"As"}}, "exactly 2 hole cards"},
		{"bad card", EvalCmd{Hole: []string{"Zz9s"}}, "parsing hole cards"},
		{"long board", EvalCmd{Hole: []string{"AsKs"}, Board: "2c3c4c5c6c7c"}, "more than 5"},
		{"duplicate", EvalCmd{Hole: []string{"As", "Ks"}, Board: "As2c3d"}, "duplicate card"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.error)
		})
	}
}

func TestRenderEvalShowsCategory(t *testing.T) {
	out := renderEval(deck.MustParseCards("AsAh"), deck.MustParseCards("Ad7c2h"))
	assert.Contains(t, out, "three of a kind")
	assert.Contains(t, out, "Strength")
}

func TestRenderReport(t *testing.T) {
	out := renderReport("agent-1", strategy.Stats{Wins: 3, Losses: 2, TotalHands: 5, SuccessfulBluffs: 1})
	assert.Contains(t, out, "agent-1")
	assert.Contains(t, out, "60.0%")
	assert.Contains(t, out, "Bluffs won")
}

func TestAgentFlagsOverrideConfig(t *testing.T) {
	seed := int64(9)
	cmd := AgentCmd{Server: "http://table:9000", Game: "g7", Account: "me", Seed: &seed, Adaptive: true, LogLevel: "debug"}
	cfg := config.Default()
	cmd.apply(&cfg)

	assert.Equal(t, "http://table:9000", cfg.ServerURL)
	assert.Equal(t, "g7", cfg.GameID)
	assert.Equal(t, "me", cfg.AccountID)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.True(t, cfg.Strategy.AdaptiveLearning)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestPlayAgentConfigs(t *testing.T) {
	seed := int64(100)
	cmd := PlayCmd{Game: "g", Secret: "s", Seed: &seed, Interval: 1, LogLevel: "info"}

	a := cmd.agentConfig(0, "http://127.0.0.1:8080")
	b := cmd.agentConfig(1, "http://127.0.0.1:8080")
	assert.Equal(t, "agent-1", a.AccountID)
	assert.Equal(t, "agent-2", b.AccountID)
	assert.Equal(t, int64(100), a.Seed)
	assert.Equal(t, int64(101), b.Seed)
	require.NoError(t, a.Validate())
}

func TestPlayRejectsOverfullTable(t *testing.T) {
	cmd := PlayCmd{Agents: 6, Table: TableFlags{Seats: 6, HouseBots: 1}}
	require.ErrorContains(t, cmd.Run(), "do not fit")
}
