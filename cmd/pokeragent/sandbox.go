package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/pokeragent/internal/auth"
	"github.com/lox/pokeragent/internal/sandbox"
)

// TableFlags configures the sandbox table
type TableFlags struct {
	Seats         int           `default:"6" help:"Seats per table"`
	HouseBots     int           `name:"house-bots" default:"1" help:"Check/call house bots seated at each table"`
	StartingStack int           `name:"starting-stack" default:"1000" help:"Chips each seat starts every hand with"`
	SmallBlind    int           `name:"small-blind" default:"5" help:"Small blind amount"`
	BigBlind      int           `name:"big-blind" default:"10" help:"Big blind amount"`
	ShowdownDelay time.Duration `name:"showdown-delay" default:"3s" help:"How long a finished hand stays visible"`
	ActionTimeout time.Duration `name:"action-timeout" default:"30s" help:"Time a player has to act before being checked or folded (0 disables)"`
	TableSeed     *int64        `name:"table-seed" help:"Deterministic RNG seed for dealing (optional)"`
}

func (f TableFlags) config() sandbox.TableConfig {
	cfg := sandbox.TableConfig{
		Seats:         f.Seats,
		HouseBots:     f.HouseBots,
		StartingStack: f.StartingStack,
		SmallBlind:    f.SmallBlind,
		BigBlind:      f.BigBlind,
		ShowdownDelay: f.ShowdownDelay,
		ActionTimeout: f.ActionTimeout,
	}
	if f.TableSeed != nil {
		cfg.Seed = *f.TableSeed
	}
	return cfg
}

// SandboxCmd runs the table server
type SandboxCmd struct {
	Addr     string `default:":8080" help:"Server address"`
	Secret   string `env:"POKERAGENT_SECRET" help:"Shared secret for verifying agent credentials (empty trusts claimed ids)"`
	Issuer   string `default:"pokeragent" help:"Required credential issuer"`
	LogLevel string `short:"l" name:"log-level" default:"info" help:"Log level"`

	Table TableFlags `embed:""`
}

func (c *SandboxCmd) Run() error {
	logger, err := newLogger(c.LogLevel)
	if err != nil {
		return err
	}

	srv, err := newSandbox(c.Table, c.Secret, c.Issuer, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	if err := srv.ListenAndServe(ctx, c.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newSandbox(flags TableFlags, secret, issuer string, logger *log.Logger) (*sandbox.Server, error) {
	opts := sandbox.ServerOptions{
		Table:  flags.config(),
		Logger: logger,
	}
	if secret != "" {
		opts.Verifier = auth.NewVerifier(secret, issuer)
	} else {
		logger.Warn("No secret configured, trusting claimed account ids")
	}
	return sandbox.NewServer(opts)
}
