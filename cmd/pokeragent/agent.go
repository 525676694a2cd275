package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lox/pokeragent/internal/agent"
	"github.com/lox/pokeragent/internal/auth"
	"github.com/lox/pokeragent/internal/client"
	"github.com/lox/pokeragent/internal/config"
	"github.com/lox/pokeragent/internal/journal"
	"github.com/lox/pokeragent/internal/randutil"
	"github.com/lox/pokeragent/internal/strategy"
)

// AgentCmd runs a single agent until interrupted
type AgentCmd struct {
	Config   string   `short:"c" default:"pokeragent.hcl" help:"Path to HCL configuration file"`
	EnvFile  []string `name:"env-file" help:"Extra .env files to load (defaults to ./.env when present)"`
	Server   string   `short:"s" help:"Server URL (overrides config)"`
	Game     string   `short:"g" help:"Game identifier (overrides config)"`
	Account  string   `short:"a" help:"Account id (overrides config)"`
	Seed     *int64   `help:"Deterministic RNG seed for the strategy (overrides config)"`
	Journal  string   `help:"SQLite hand journal path (overrides config)"`
	Adaptive bool     `help:"Enable adaptive threshold learning"`
	LogLevel string   `short:"l" name:"log-level" help:"Log level (overrides config)"`
}

func (c *AgentCmd) Run() error {
	if err := config.LoadDotEnv(c.EnvFile...); err != nil {
		return err
	}
	cfg, err := config.Resolve(c.Config, os.Getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	stats, err := runAgent(ctx, cfg, logger)
	if err != nil {
		return err
	}
	fmt.Println(renderReport(cfg.AccountID, stats))
	return nil
}

func (c *AgentCmd) apply(cfg *config.Config) {
	if c.Server != "" {
		cfg.ServerURL = c.Server
	}
	if c.Game != "" {
		cfg.GameID = c.Game
	}
	if c.Account != "" {
		cfg.AccountID = c.Account
	}
	if c.Seed != nil {
		cfg.Seed = *c.Seed
	}
	if c.Journal != "" {
		cfg.JournalPath = c.Journal
	}
	if c.Adaptive {
		cfg.Strategy.AdaptiveLearning = true
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
}

// runAgent plays until ctx is cancelled and returns the final statistics
func runAgent(ctx context.Context, cfg *config.Config, logger *log.Logger) (strategy.Stats, error) {
	opts := client.Options{
		ServerURL:         cfg.ServerURL,
		GameID:            cfg.GameID,
		Identity:          auth.Identity{AccountID: cfg.AccountID},
		RequestTimeout:    cfg.RequestTimeout,
		ReconnectAttempts: cfg.ReconnectAttempts,
		ReconnectDelay:    cfg.ReconnectDelay,
		Logger:            logger,
	}
	if cfg.Secret != "" {
		signer, err := auth.NewSigner(cfg.Secret, cfg.Issuer, auth.DefaultTTL)
		if err != nil {
			return strategy.Stats{}, err
		}
		opts.Signer = signer
	}
	c := client.New(opts)
	defer func() { _ = c.Close() }()

	rng, seed := randutil.FromSeed(cfg.Seed)
	logger.Info("Starting agent",
		"server", cfg.ServerURL,
		"game", cfg.GameID,
		"account", cfg.AccountID,
		"seed", seed,
		"adaptive", cfg.Strategy.AdaptiveLearning)

	ctrlOpts := agent.Options{
		PlayerID: cfg.AccountID,
		Source:   c,
		Actions:  c,
		Ready:    c,
		Engine:   strategy.New(cfg.Strategy, rng, logger),
		Interval: cfg.PollInterval,
		Logger:   logger,
	}
	if cfg.JournalPath != "" {
		store, err := journal.Open(ctx, cfg.JournalPath)
		if err != nil {
			return strategy.Stats{}, err
		}
		defer func() { _ = store.Close() }()
		ctrlOpts.Recorder = store
	}

	ctrl := agent.New(ctrlOpts)
	if err := ctrl.Run(ctx); err != nil {
		return ctrl.Stats(), err
	}
	return ctrl.Stats(), nil
}
