// Package config loads the YAML configuration file.
//
// Every field has a default, so a missing file is not an error at the
// default location. Values from the file override defaults; the CLI applies
// flags on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/elemental/internal/canvas"
	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/ledger"
)

// Oracle backend kinds.
const (
	OracleHTTP   = "http"
	OracleOpenAI = "openai"
	OracleTable  = "table"
)

// Config is the top-level configuration.
type Config struct {
	// Database is the SQLite file holding known elements and both caches.
	Database string `yaml:"database"`
	// LogFile receives logs while the terminal UI owns the screen.
	LogFile  string          `yaml:"log_file"`
	Oracle   OracleConfig    `yaml:"oracle"`
	Canvas   canvas.Geometry `yaml:"canvas"`
	Terminal canvas.Geometry `yaml:"terminal"`
	// Seed replaces the four base elements of a fresh database.
	Seed []SeedElement `yaml:"seed"`
}

// OracleConfig selects and tunes the oracle backend.
type OracleConfig struct {
	Kind string `yaml:"kind"`
	// BaseURL is the server of the http backend.
	BaseURL string `yaml:"base_url"`
	// APIBase points the openai backend at a compatible server. Empty uses
	// the OpenAI API.
	APIBase   string        `yaml:"api_base"`
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`
	// RatePerSecond caps outgoing requests. Zero disables limiting.
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	// Recipes is the YAML recipe table used by the table backend.
	Recipes string `yaml:"recipes"`
}

// SeedElement is one seed entry.
type SeedElement struct {
	Symbol string `yaml:"symbol"`
	Glyph  string `yaml:"glyph"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: DefaultDatabasePath(),
		Oracle: OracleConfig{
			Kind:          OracleHTTP,
			BaseURL:       "http://localhost:8000/",
			Model:         "gpt-4o-mini",
			APIKeyEnv:     "OPENAI_API_KEY",
			Timeout:       30 * time.Second,
			RatePerSecond: 4,
			Burst:         4,
		},
		Canvas:   canvas.DefaultGeometry(),
		Terminal: canvas.TerminalGeometry(),
	}
}

// DefaultPath is $XDG_CONFIG_HOME/elemental/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "elemental.yaml"
	}
	return filepath.Join(dir, "elemental", "config.yaml")
}

// DefaultDatabasePath is $XDG_DATA_HOME/elemental/elemental.db, falling back
// to ~/.local/share.
func DefaultDatabasePath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "elemental", "elemental.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "elemental.db"
	}
	return filepath.Join(home, ".local", "share", "elemental", "elemental.db")
}

// Load reads path over the defaults. The file must exist.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default().
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Database = ExpandHome(cfg.Database)
	cfg.LogFile = ExpandHome(cfg.LogFile)
	cfg.Oracle.Recipes = ExpandHome(cfg.Oracle.Recipes)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field and names the first offending one.
func (c Config) Validate() error {
	if c.Database == "" {
		return errors.New("database: required")
	}
	if err := c.Oracle.Validate(); err != nil {
		return fmt.Errorf("oracle.%w", err)
	}
	if err := validateGeometry(c.Canvas); err != nil {
		return fmt.Errorf("canvas.%w", err)
	}
	if err := validateGeometry(c.Terminal); err != nil {
		return fmt.Errorf("terminal.%w", err)
	}
	for i, s := range c.Seed {
		if s.Symbol == "" || s.Glyph == "" {
			return fmt.Errorf("seed[%d]: symbol and glyph are required", i)
		}
	}
	return nil
}

// Validate checks the oracle section.
func (o OracleConfig) Validate() error {
	switch o.Kind {
	case OracleHTTP:
		if o.BaseURL == "" {
			return errors.New("base_url: required for kind http")
		}
	case OracleOpenAI:
		if o.Model == "" {
			return errors.New("model: required for kind openai")
		}
	case OracleTable:
		if o.Recipes == "" {
			return errors.New("recipes: required for kind table")
		}
	default:
		return fmt.Errorf("kind: %q is not one of http, openai, table", o.Kind)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout: must be positive, got %s", o.Timeout)
	}
	if o.RatePerSecond < 0 {
		return fmt.Errorf("rate_per_second: must not be negative, got %g", o.RatePerSecond)
	}
	if o.RatePerSecond > 0 && o.Burst < 1 {
		return fmt.Errorf("burst: must be at least 1 when limiting, got %d", o.Burst)
	}
	return nil
}

func validateGeometry(g canvas.Geometry) error {
	switch {
	case g.SidebarWidth < 0:
		return fmt.Errorf("sidebar_width: must not be negative, got %d", g.SidebarWidth)
	case g.Padding < 0:
		return fmt.Errorf("padding: must not be negative, got %d", g.Padding)
	case g.SplitOffset < 0:
		return fmt.Errorf("split_offset: must not be negative, got %d", g.SplitOffset)
	}
	return nil
}

// SeedElements returns the configured seed, or the built-in one.
func (c Config) SeedElements() []ir.Element {
	if len(c.Seed) == 0 {
		return ledger.Seed()
	}
	out := make([]ir.Element, 0, len(c.Seed))
	for _, s := range c.Seed {
		out = append(out, ir.Element{Symbol: s.Symbol, Glyph: s.Glyph})
	}
	return out
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
