package cli

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/roach88/elemental/internal/canvas"
	"github.com/roach88/elemental/internal/engine"
	"github.com/roach88/elemental/internal/sound"
	"github.com/roach88/elemental/internal/tui"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	LogFile string
	Quiet   bool
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Open the interactive canvas",
		Long: `Open the interactive canvas in the terminal.

Pick an element from the sidebar with the left button and drop it on the
canvas. Drop one element onto another to combine them, right-click an
element to split it, and double-click to duplicate it. Dragging an element
back over the sidebar removes it. Esc cancels a drag or clears the search,
ctrl+s cycles the sort order and ctrl+o reverses it.

Logs go to the configured log file while the canvas owns the screen.

Example:
  elemental play
  elemental play --db /tmp/elemental.db --log-file /tmp/elemental.log`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LogFile, "log-file", "", "write logs to this file (overrides the config file)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "do not ring the terminal bell")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logFile := cfg.LogFile
	if opts.LogFile != "" {
		logFile = opts.LogFile
	}
	logs, closeLogs, err := openLog(logFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open log file", err)
	}
	defer closeLogs()
	configureLogging(logs, opts.Verbose)

	sess, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	orc, err := sess.cfg.Oracle.Build()
	if err != nil {
		return oracleError(err)
	}

	var sink sound.Sink = sound.Log{}
	if !opts.Quiet {
		sink = sound.Tee{sound.Bell{W: cmd.ErrOrStderr()}, sound.Log{}}
	}

	eng := engine.New(engine.Config{
		Geometry: sess.cfg.Terminal,
		Metrics:  canvas.CellMetrics(),
	}, engine.Deps{
		Cache:  sess.cache,
		Ledger: sess.ledger,
		Oracle: orc,
		Player: sound.NewSequencer(sink),
	})

	slog.Info("play session starting", "db", sess.cfg.Database, "elements", sess.ledger.Len())
	model := tui.New(tui.Options{
		Engine:  eng,
		Ledger:  sess.ledger,
		Cache:   sess.cache,
		Context: ctx,
	})
	if err := tui.Run(ctx, model, teaIO(cmd)...); err != nil && ctx.Err() == nil {
		return WrapExitError(ExitFailure, "play session failed", err)
	}
	slog.Info("play session ended")
	return nil
}

// openLog opens path for appending, or discards logs when path is empty.
func openLog(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// teaIO routes the program through cmd's streams.
func teaIO(cmd *cobra.Command) []tea.ProgramOption {
	return []tea.ProgramOption{
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	}
}
