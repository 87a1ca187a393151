package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/elemental/internal/cache"
	"github.com/roach88/elemental/internal/config"
	"github.com/roach88/elemental/internal/ledger"
	"github.com/roach88/elemental/internal/store"
)

// session is the persistent state shared by every command that touches the
// database.
type session struct {
	cfg    config.Config
	store  *store.Store
	cache  *cache.Cache
	ledger *ledger.Ledger
}

// loadConfig reads --config when given, else the default location if it
// exists. --db overrides the configured database.
func loadConfig(opts *RootOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.Config != "" {
		cfg, err = config.Load(config.ExpandHome(opts.Config))
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultPath())
	}
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.DB != "" {
		cfg.Database = config.ExpandHome(opts.DB)
	}
	return cfg, nil
}

// configureLogging installs the default slog handler writing to w.
func configureLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})))
}

// openSession opens the database and loads the cache and ledger from it.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	if cfg.Database != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to create data directory", err)
		}
	}

	slog.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	s := &session{
		cfg:    cfg,
		store:  st,
		cache:  cache.New(st),
		ledger: ledger.New(st),
	}
	if err := s.cache.Load(ctx, st); err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load cache", err)
	}
	if err := s.ledger.Load(ctx, st, cfg.SeedElements()); err != nil {
		s.Close()
		return nil, WrapExitError(ExitCommandError, "failed to load known elements", err)
	}

	combos, splits := s.cache.Len()
	slog.Debug("session ready",
		"elements", s.ledger.Len(),
		"combos", combos,
		"splits", splits,
	)
	return s, nil
}

// Close closes the database, logging any error.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// commandContext returns cmd's context, or Background when it has none.
func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// oracleError maps an oracle setup failure to an exit error.
func oracleError(err error) error {
	return WrapExitError(ExitCommandError, "failed to set up oracle", err)
}
