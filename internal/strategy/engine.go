// Package strategy turns a hand strength and the pot economics into a poker
// action, and keeps the lifetime results used to adapt its own tuning.
package strategy

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/lox/pokeragent/internal/game"
)

const (
	bluffBoost = 0.3

	// Adaptive learning bounds.
	loseRate          = 0.3
	winRate           = 0.7
	thresholdStep     = 0.05
	bluffStep         = 0.02
	aggressionStep    = 0.1
	maxRaiseThreshold = 0.8
	minRaiseThreshold = 0.4
	maxFoldThreshold  = 0.5
	minBluff          = 0.05
	maxAggression     = 1.0
)

// RandomSource supplies the bluff draws. *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Situation is everything Decide needs about the current turn.
type Situation struct {
	HandStrength float64
	CallAmount   int
	Pot          int
	Chips        int
	CurrentBet   int
	Phase        game.Phase
}

// Engine decides actions for one agent. It is not safe for concurrent use;
// the owning controller serialises Decide, RecordResult and Adapt.
type Engine struct {
	cfg    *Config
	stats  Stats
	rng    RandomSource
	logger *log.Logger

	// bluffed marks a hand where a bluff draw turned a non-raise into a raise.
	bluffed bool
}

// New creates an engine with its own copy of cfg.
func New(cfg Config, rng RandomSource, logger *log.Logger) *Engine {
	return &Engine{
		cfg:    &cfg,
		rng:    rng,
		logger: logger.WithPrefix("strategy"),
	}
}

// Config returns a copy of the current configuration.
func (e *Engine) Config() Config {
	return *e.cfg
}

// Stats returns a copy of the lifetime results.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Decide picks an action. Every call makes one fresh bluff draw.
func (e *Engine) Decide(s Situation) Action {
	var potOdds float64
	if s.CallAmount > 0 {
		potOdds = float64(s.CallAmount) / float64(s.Pot+s.CallAmount)
	}

	effective := s.HandStrength
	bluffing := e.rng.Float64() < e.cfg.BluffProbability
	if bluffing {
		effective = math.Min(s.HandStrength+bluffBoost, 1.0)
	}

	action := e.decide(s, effective, potOdds)

	if bluffing && action.Kind == Raise && s.HandStrength < e.cfg.RaiseThreshold {
		e.bluffed = true
	}

	e.logger.Debug("Decision",
		"phase", s.Phase,
		"strength", s.HandStrength,
		"effective", effective,
		"potOdds", potOdds,
		"call", s.CallAmount,
		"pot", s.Pot,
		"chips", s.Chips,
		"action", action)

	return action
}

func (e *Engine) decide(s Situation, effective, potOdds float64) Action {
	chips := float64(s.Chips)
	call := float64(s.CallAmount)

	switch {
	case s.CallAmount == 0:
		if effective >= e.cfg.RaiseThreshold {
			return e.raise(s)
		}
		return Action{Kind: Check}
	case effective >= e.cfg.RaiseThreshold:
		if call < 0.5*chips {
			return e.raise(s)
		}
		return Action{Kind: Call}
	case effective >= e.cfg.CallThreshold:
		if potOdds < 0.4 || call < 0.2*chips {
			return Action{Kind: Call}
		}
		return Action{Kind: Fold}
	case effective >= e.cfg.FoldThreshold:
		if potOdds < 0.2 && call < 0.1*chips {
			return Action{Kind: Call}
		}
		return Action{Kind: Fold}
	default:
		return Action{Kind: Fold}
	}
}

// raise sizes a raise from the raw strength and returns the total target bet.
func (e *Engine) raise(s Situation) Action {
	multiplier := 1 + e.cfg.Aggressiveness*s.HandStrength
	size := int(math.Floor(0.5 * float64(s.Pot) * multiplier))
	size = min(size, int(math.Floor(0.7*float64(s.Chips))))
	return Action{Kind: Raise, Amount: s.CurrentBet + size}
}

// RecordResult records the outcome of one showdown. Call it exactly once per
// hand.
func (e *Engine) RecordResult(won bool) {
	e.stats.TotalHands++
	if won {
		e.stats.Wins++
	} else {
		e.stats.Losses++
	}

	if e.bluffed {
		if won {
			e.stats.SuccessfulBluffs++
		} else {
			e.stats.FailedBluffs++
		}
		e.bluffed = false
	}
}

// Bluffed reports whether a bluff draw drove a raise in the current hand.
func (e *Engine) Bluffed() bool {
	return e.bluffed
}

// Adapt nudges the configuration toward tighter play when losing and looser
// play when winning. It reports whether anything changed.
func (e *Engine) Adapt() bool {
	if e.stats.TotalHands == 0 {
		return false
	}

	before := *e.cfg
	rate := e.stats.WinRate()

	switch {
	case rate < loseRate:
		e.cfg.RaiseThreshold = math.Min(e.cfg.RaiseThreshold+thresholdStep, maxRaiseThreshold)
		e.cfg.FoldThreshold = math.Min(e.cfg.FoldThreshold+thresholdStep, maxFoldThreshold)
		e.cfg.BluffProbability = math.Max(e.cfg.BluffProbability-bluffStep, minBluff)
	case rate > winRate:
		e.cfg.RaiseThreshold = math.Max(e.cfg.RaiseThreshold-thresholdStep, minRaiseThreshold)
		e.cfg.Aggressiveness = math.Min(e.cfg.Aggressiveness+aggressionStep, maxAggression)
	}

	changed := *e.cfg != before
	if changed {
		e.logger.Info("Adapted strategy",
			"winRate", e.stats.WinRatePercent(),
			"raise", e.cfg.RaiseThreshold,
			"fold", e.cfg.FoldThreshold,
			"bluff", e.cfg.BluffProbability,
			"aggressiveness", e.cfg.Aggressiveness)
	}
	return changed
}
