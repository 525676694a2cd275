// Package agent runs the polling loop that plays one seat: fetch the table
// snapshot, act when it is our turn, record showdowns, stay ready between
// hands.
package agent

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/pokeragent/internal/deck"
	"github.com/lox/pokeragent/internal/evaluator"
	"github.com/lox/pokeragent/internal/game"
	"github.com/lox/pokeragent/internal/journal"
	"github.com/lox/pokeragent/internal/strategy"
)

// DefaultInterval is the poll interval when none is configured
const DefaultInterval = 2 * time.Second

// StateSource returns the current table snapshot
type StateSource interface {
	FetchState(ctx context.Context) (*game.SharedState, error)
}

// ActionSink submits one action. amount is the total target bet for RAISE.
type ActionSink interface {
	SubmitAction(ctx context.Context, kind strategy.Kind, amount int) error
}

// ReadySink toggles the player's ready flag
type ReadySink interface {
	ToggleReady(ctx context.Context) error
}

// ResultRecorder persists recorded hands
type ResultRecorder interface {
	RecordHand(ctx context.Context, rec journal.Entry) error
}

// Options configures a Controller. Recorder, Clock, Interval and Logger are
// optional.
type Options struct {
	PlayerID string
	Source   StateSource
	Actions  ActionSink
	Ready    ReadySink
	Engine   *strategy.Engine
	Recorder ResultRecorder
	Clock    quartz.Clock
	Interval time.Duration
	Logger   *log.Logger
}

// Controller drives one agent. Tick is not safe for concurrent use; Run
// serialises ticks.
type Controller struct {
	opts   Options
	logger *log.Logger

	// showdown bookkeeping
	lastRecordedHand string
	showdownRecorded bool
}

// New creates a controller
func New(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Controller{
		opts:   opts,
		logger: opts.Logger.WithPrefix("agent").With("player", opts.PlayerID),
	}
}

// Stats returns the engine's lifetime results
func (c *Controller) Stats() strategy.Stats {
	return c.opts.Engine.Stats()
}

// Run ticks on the configured interval until ctx is cancelled. A tick in
// progress when ctx is cancelled runs to completion. Run always returns nil.
func (c *Controller) Run(ctx context.Context) error {
	ticker := c.opts.Clock.NewTicker(c.opts.Interval, "agent", "poll")
	defer ticker.Stop()

	c.logger.Info("Agent started", "interval", c.opts.Interval)
	for {
		select {
		case <-ctx.Done():
			stats := c.Stats()
			c.logger.Info("Agent stopped",
				"hands", stats.TotalHands,
				"wins", stats.Wins,
				"losses", stats.Losses,
				"winRate", stats.WinRatePercent())
			return nil
		case <-ticker.C:
			c.Tick(context.WithoutCancel(ctx))
		}
	}
}

// Tick performs one poll cycle
func (c *Controller) Tick(ctx context.Context) {
	state, err := c.opts.Source.FetchState(ctx)
	if err != nil || state == nil {
		c.logger.Debug("Skipping tick, state unavailable", "error", err)
		return
	}

	if state.Phase != game.Showdown {
		c.showdownRecorded = false
	}

	switch {
	case state.Phase == game.Waiting || state.Phase == game.Showdown:
		if state.Phase == game.Showdown {
			c.maybeRecordShowdown(ctx, state)
		}
		c.ensureReady(ctx, state)
	case state.Phase.IsBettingStreet():
		c.playTurn(ctx, state)
	}
}

func (c *Controller) maybeRecordShowdown(ctx context.Context, state *game.SharedState) {
	if !state.HasWinners() {
		return
	}
	if state.HandID != "" {
		if state.HandID == c.lastRecordedHand {
			return
		}
		c.lastRecordedHand = state.HandID
	} else if c.showdownRecorded {
		return
	}
	c.showdownRecorded = true

	engine := c.opts.Engine
	won := state.IsWinner(c.opts.PlayerID)
	bluffed := engine.Bluffed()
	engine.RecordResult(won)

	stats := engine.Stats()
	c.logger.Info("Hand complete",
		"hand", state.HandID,
		"won", won,
		"hands", stats.TotalHands,
		"wins", stats.Wins,
		"losses", stats.Losses,
		"winRate", stats.WinRatePercent(),
		"bluffs", stats.SuccessfulBluffs,
		"failedBluffs", stats.FailedBluffs)

	if c.opts.Recorder != nil {
		err := c.opts.Recorder.RecordHand(ctx, journal.Entry{
			HandID:     state.HandID,
			AccountID:  c.opts.PlayerID,
			Won:        won,
			Bluffed:    bluffed,
			Wins:       stats.Wins,
			Losses:     stats.Losses,
			TotalHands: stats.TotalHands,
			RecordedAt: c.opts.Clock.Now(),
		})
		if err != nil {
			c.logger.Warn("Failed to journal hand", "hand", state.HandID, "error", err)
		}
	}

	if engine.Config().AdaptiveLearning {
		engine.Adapt()
	}
}

func (c *Controller) ensureReady(ctx context.Context, state *game.SharedState) {
	me, ok := state.Player(c.opts.PlayerID)
	if !ok || me.Ready {
		return
	}

	if err := c.opts.Ready.ToggleReady(ctx); err != nil {
		c.logger.Warn("Failed to toggle ready", "error", err)
		return
	}
	refreshed, err := c.opts.Source.FetchState(ctx)
	if err != nil || refreshed == nil {
		c.logger.Debug("Toggled ready, refresh failed", "error", err)
		return
	}
	if p, ok := refreshed.Player(c.opts.PlayerID); ok && !p.Ready {
		c.logger.Warn("Still not ready after toggling", "phase", refreshed.Phase)
		return
	}
	c.logger.Debug("Toggled ready", "phase", refreshed.Phase)
}

func (c *Controller) playTurn(ctx context.Context, state *game.SharedState) {
	if !state.IsTurn(c.opts.PlayerID) {
		return
	}
	me, ok := state.Player(c.opts.PlayerID)
	if !ok {
		c.logger.Warn("Turn is ours but we are not seated", "hand", state.HandID)
		return
	}
	if !me.CanAct() {
		return
	}

	owed := state.CallAmount(me)

	if len(me.HoleCards) == 0 || deck.AnyHidden(me.HoleCards) {
		kind := strategy.Fold
		if owed == 0 {
			kind = strategy.Check
		}
		c.logger.Warn("Own hole cards not visible", "hand", state.HandID, "action", kind)
		c.submit(ctx, state, kind, 0)
		return
	}

	strength := evaluator.Evaluate(me.HoleCards, state.CommunityCards)
	action := c.opts.Engine.Decide(strategy.Situation{
		HandStrength: strength,
		CallAmount:   owed,
		Pot:          state.Pot,
		Chips:        me.Chips,
		CurrentBet:   state.CurrentBet,
		Phase:        state.Phase,
	})

	kind, amount := legalize(action, state, me)
	c.logger.Info("Acting",
		"hand", state.HandID,
		"phase", state.Phase,
		"cards", me.HoleCards,
		"board", state.CommunityCards,
		"strength", strength,
		"category", evaluator.Category(me.HoleCards, state.CommunityCards),
		"owed", owed,
		"action", kind,
		"amount", amount)
	c.submit(ctx, state, kind, amount)
}

func (c *Controller) submit(ctx context.Context, state *game.SharedState, kind strategy.Kind, amount int) {
	if err := c.opts.Actions.SubmitAction(ctx, kind, amount); err != nil {
		c.logger.Warn("Action rejected", "hand", state.HandID, "action", kind, "amount", amount, "error", err)
	}
}

// legalize maps a strategy action onto what the table will accept. A raise
// below the table minimum is lifted only while the minimum stays within
// CurrentBet + 70% of the stack and within the stack itself; otherwise the
// agent calls (or checks when nothing is owed). Nothing is ever escalated to
// ALL_IN.
func legalize(a strategy.Action, state *game.SharedState, me *game.Participant) (strategy.Kind, int) {
	if a.Kind != strategy.Raise {
		return a.Kind, 0
	}

	stack := me.Bet + me.Chips
	minTarget := state.CurrentBet + state.MinRaise
	limit := state.CurrentBet + int(math.Floor(0.7*float64(me.Chips)))

	target := a.Amount
	if target < minTarget && minTarget <= limit {
		target = minTarget
	}
	if target >= minTarget && target <= stack {
		return strategy.Raise, target
	}

	if state.CallAmount(me) == 0 {
		return strategy.Check, 0
	}
	return strategy.Call, 0
}
