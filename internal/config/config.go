// Package config loads agent configuration from an HCL file, .env files and
// the environment, in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/lox/pokeragent/internal/auth"
	"github.com/lox/pokeragent/internal/strategy"
)

// Environment variable names
const (
	EnvServer       = "POKERAGENT_SERVER"
	EnvGame         = "POKERAGENT_GAME"
	EnvAccount      = "POKERAGENT_ACCOUNT"
	EnvSecret       = "POKERAGENT_SECRET"
	EnvSeed         = "POKERAGENT_SEED"
	EnvPollInterval = "POKERAGENT_POLL_INTERVAL"
)

// DefaultFile is the config file read when none is given
const DefaultFile = "pokeragent.hcl"

// Config is the resolved agent configuration
type Config struct {
	ServerURL         string
	GameID            string
	RequestTimeout    time.Duration
	ReconnectAttempts int
	ReconnectDelay    time.Duration

	AccountID string
	Secret    string
	Issuer    string

	PollInterval time.Duration
	Seed         int64
	JournalPath  string
	LogLevel     string

	Strategy strategy.Config
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		ServerURL:         "http://localhost:8080",
		GameID:            "default",
		RequestTimeout:    10 * time.Second,
		ReconnectAttempts: 3,
		ReconnectDelay:    2 * time.Second,
		Issuer:            auth.DefaultIssuer,
		PollInterval:      2 * time.Second,
		LogLevel:          "info",
		Strategy:          strategy.DefaultConfig(),
	}
}

// file mirrors the HCL layout. Every block and attribute is optional.
type file struct {
	Server   *serverBlock   `hcl:"server,block"`
	Identity *identityBlock `hcl:"identity,block"`
	Agent    *agentBlock    `hcl:"agent,block"`
	Strategy *strategyBlock `hcl:"strategy,block"`
}

type serverBlock struct {
	URL               string `hcl:"url,optional"`
	Game              string `hcl:"game,optional"`
	RequestTimeout    string `hcl:"request_timeout,optional"`
	ReconnectAttempts *int   `hcl:"reconnect_attempts,optional"`
	ReconnectDelay    string `hcl:"reconnect_delay,optional"`
}

type identityBlock struct {
	AccountID string `hcl:"account_id,optional"`
	Secret    string `hcl:"secret,optional"`
	Issuer    string `hcl:"issuer,optional"`
}

type agentBlock struct {
	PollInterval     string `hcl:"poll_interval,optional"`
	Seed             int64  `hcl:"seed,optional"`
	Journal          string `hcl:"journal,optional"`
	LogLevel         string `hcl:"log_level,optional"`
	AdaptiveLearning *bool  `hcl:"adaptive_learning,optional"`
}

type strategyBlock struct {
	RaiseThreshold   *float64 `hcl:"raise_threshold,optional"`
	CallThreshold    *float64 `hcl:"call_threshold,optional"`
	FoldThreshold    *float64 `hcl:"fold_threshold,optional"`
	BluffProbability *float64 `hcl:"bluff_probability,optional"`
	Aggressiveness   *float64 `hcl:"aggressiveness,optional"`
}

// Load reads an HCL config file over the defaults. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return &cfg, nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if err := raw.apply(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &cfg, nil
}

func (f *file) apply(cfg *Config) error {
	if s := f.Server; s != nil {
		setString(&cfg.ServerURL, s.URL)
		setString(&cfg.GameID, s.Game)
		if err := setDuration(&cfg.RequestTimeout, "request_timeout", s.RequestTimeout); err != nil {
			return err
		}
		if err := setDuration(&cfg.ReconnectDelay, "reconnect_delay", s.ReconnectDelay); err != nil {
			return err
		}
		if s.ReconnectAttempts != nil {
			cfg.ReconnectAttempts = *s.ReconnectAttempts
		}
	}

	if id := f.Identity; id != nil {
		setString(&cfg.AccountID, id.AccountID)
		setString(&cfg.Secret, id.Secret)
		setString(&cfg.Issuer, id.Issuer)
	}

	if a := f.Agent; a != nil {
		if err := setDuration(&cfg.PollInterval, "poll_interval", a.PollInterval); err != nil {
			return err
		}
		if a.Seed != 0 {
			cfg.Seed = a.Seed
		}
		setString(&cfg.JournalPath, a.Journal)
		setString(&cfg.LogLevel, a.LogLevel)
		if a.AdaptiveLearning != nil {
			cfg.Strategy.AdaptiveLearning = *a.AdaptiveLearning
		}
	}

	if s := f.Strategy; s != nil {
		setFloat(&cfg.Strategy.RaiseThreshold, s.RaiseThreshold)
		setFloat(&cfg.Strategy.CallThreshold, s.CallThreshold)
		setFloat(&cfg.Strategy.FoldThreshold, s.FoldThreshold)
		setFloat(&cfg.Strategy.BluffProbability, s.BluffProbability)
		setFloat(&cfg.Strategy.Aggressiveness, s.Aggressiveness)
	}
	return nil
}

// LoadDotEnv loads the given .env files into the process environment without
// overriding variables that are already set. With no files it loads ./.env
// if present.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}
	return nil
}

// ApplyEnv overrides cfg from environment variables read through getenv
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString(&c.ServerURL, getenv(EnvServer))
	setString(&c.GameID, getenv(EnvGame))
	setString(&c.AccountID, getenv(EnvAccount))
	setString(&c.Secret, getenv(EnvSecret))

	if v := getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvSeed, err)
		}
		c.Seed = seed
	}
	if err := setDuration(&c.PollInterval, EnvPollInterval, getenv(EnvPollInterval)); err != nil {
		return err
	}
	return nil
}

// Resolve loads filename, applies the environment, fills in a generated
// account id when none is configured and validates the result
func Resolve(filename string, getenv func(string) string) (*Config, error) {
	cfg, err := Load(filename)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if cfg.AccountID == "" {
		cfg.AccountID = auth.DefaultAccountID()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration. Threshold ordering is not enforced;
// see Warnings.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.GameID == "" {
		return fmt.Errorf("game id is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.ReconnectAttempts < 0 {
		return fmt.Errorf("reconnect attempts cannot be negative")
	}
	if c.ReconnectDelay < 0 {
		return fmt.Errorf("reconnect delay cannot be negative")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if err := c.Strategy.Validate(); err != nil {
		return fmt.Errorf("invalid strategy: %w", err)
	}
	return nil
}

// Warnings lists configuration that is legal but probably unintended
func (c *Config) Warnings() []string {
	var warnings []string
	if !c.Strategy.Coherent() {
		warnings = append(warnings, fmt.Sprintf(
			"strategy thresholds are out of order (raise %.2f, call %.2f, fold %.2f)",
			c.Strategy.RaiseThreshold, c.Strategy.CallThreshold, c.Strategy.FoldThreshold))
	}
	if c.Secret == "" {
		warnings = append(warnings, "no identity secret configured, connecting unauthenticated")
	}
	return warnings
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}
