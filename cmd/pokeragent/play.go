package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/lox/pokeragent/internal/config"
	"github.com/lox/pokeragent/internal/strategy"
	"golang.org/x/sync/errgroup"
)

// PlayCmd runs a sandbox and several agents against it
type PlayCmd struct {
	Addr     string        `default:"127.0.0.1:8080" help:"Sandbox address"`
	Agents   int           `short:"n" default:"2" help:"Number of agents to run"`
	Game     string        `short:"g" default:"default" help:"Game identifier"`
	Secret   string        `env:"POKERAGENT_SECRET" default:"play-secret" help:"Shared secret between sandbox and agents"`
	Seed     *int64        `help:"Base RNG seed for agent strategies; agent i uses seed+i"`
	Interval time.Duration `default:"500ms" help:"Agent poll interval"`
	Adaptive bool          `help:"Enable adaptive threshold learning"`
	Journal  string        `help:"SQLite hand journal shared by all agents (optional)"`
	Duration time.Duration `help:"Stop after this long (0 runs until interrupted)"`
	LogLevel string        `short:"l" name:"log-level" default:"info" help:"Log level"`

	Table TableFlags `embed:""`
}

func (c *PlayCmd) Run() error {
	if c.Agents < 1 {
		return errors.New("at least one agent is required")
	}
	if c.Agents+c.Table.HouseBots > c.Table.Seats {
		return fmt.Errorf("%d agents and %d house bots do not fit %d seats", c.Agents, c.Table.HouseBots, c.Table.Seats)
	}

	logger, err := newLogger(c.LogLevel)
	if err != nil {
		return err
	}
	srv, err := newSandbox(c.Table, c.Secret, config.Default().Issuer, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()
	if c.Duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.Duration)
		defer cancel()
	}

	host, port, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", c.Addr, err)
	}
	if host == "" {
		host = "127.0.0.1"
	}
	serverURL := "http://" + net.JoinHostPort(host, port)

	stats := make([]strategy.Stats, c.Agents)
	names := make([]string, c.Agents)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(gctx, c.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	for i := range c.Agents {
		cfg := c.agentConfig(i, serverURL)
		names[i] = cfg.AccountID
		g.Go(func() error {
			s, err := runAgent(gctx, cfg, logger.With("agent", cfg.AccountID))
			stats[i] = s
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	for i := range stats {
		fmt.Println(renderReport(names[i], stats[i]))
	}
	return nil
}

func (c *PlayCmd) agentConfig(i int, serverURL string) *config.Config {
	cfg := config.Default()
	cfg.ServerURL = serverURL
	cfg.GameID = c.Game
	cfg.AccountID = fmt.Sprintf("agent-%d", i+1)
	cfg.Secret = c.Secret
	cfg.PollInterval = c.Interval
	cfg.JournalPath = c.Journal
	cfg.LogLevel = c.LogLevel
	cfg.Strategy.AdaptiveLearning = c.Adaptive
	if c.Seed != nil {
		cfg.Seed = *c.Seed + int64(i)
	}
	return &cfg
}
