package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/elemental/internal/canvas"
	"github.com/roach88/elemental/internal/engine"
	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/sound"
)

// ElementOutput is one element of a command result.
type ElementOutput struct {
	Symbol    string `json:"symbol"`
	Glyph     string `json:"emoji"`
	Discovery bool   `json:"discovery"`
	Cue       string `json:"cue"`
}

// ResolveOutput is the result of combine and split.
type ResolveOutput struct {
	Op       string          `json:"op"`
	Inputs   []string        `json:"inputs"`
	Elements []ElementOutput `json:"elements"`
	Cached   bool            `json:"cached"`
}

// Text renders the result as "Earth + Water = 🟫 Mud (discovery)".
func (o ResolveOutput) Text() string {
	var b strings.Builder
	b.WriteString(strings.Join(o.Inputs, " + "))
	b.WriteString(" = ")
	if len(o.Elements) == 0 {
		b.WriteString("nothing")
	}
	for i, e := range o.Elements {
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(e.Glyph + " " + e.Symbol)
		if e.Cue == sound.Discovery.String() || e.Cue == sound.New.String() {
			b.WriteString(" (" + e.Cue + ")")
		}
	}
	if o.Cached {
		b.WriteString(" [cached]")
	}
	return b.String()
}

// NewCombineCommand creates the combine command.
func NewCombineCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "combine <a> <b>",
		Short: "Combine two elements without the canvas",
		Long: `Ask what two elements make.

The answer comes from the cache when the pair has been tried before, and
from the oracle otherwise. New results are cached and recorded as known
elements exactly as a drop on the canvas would.

Exit codes:
  0 - The pair makes something
  1 - The pair makes nothing
  2 - Command error (bad config, unreachable oracle, etc.)

Example:
  elemental combine Earth Water
  elemental combine Fire Water --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, cmd, ir.CombineKey(args[0], args[1]))
		},
	}
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "split <element>",
		Short: "Split an element into two without the canvas",
		Long: `Ask what an element splits into.

Exit codes:
  0 - The element splits into two
  1 - The element cannot be split
  2 - Command error

Example:
  elemental split Steam`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, cmd, ir.SplitKey(args[0]))
		},
	}
}

func runResolve(opts *RootOptions, cmd *cobra.Command, key ir.Key) error {
	ctx := commandContext(cmd.Context())
	configureLogging(cmd.ErrOrStderr(), opts.Verbose)
	out := newFormatter(opts, cmd)

	sess, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	orc, err := sess.cfg.Oracle.Build()
	if err != nil {
		return oracleError(err)
	}
	eng := engine.New(engine.Config{
		Geometry: sess.cfg.Canvas,
		Metrics:  canvas.PixelMetrics(),
	}, engine.Deps{
		Cache:  sess.cache,
		Ledger: sess.ledger,
		Oracle: orc,
	})

	var res engine.Result
	if key.Kind == ir.KindSplit {
		out.VerboseLog("splitting %s", key.A)
		res, err = eng.Split(ctx, key.A)
	} else {
		out.VerboseLog("combining %s", key)
		res, err = eng.Combine(ctx, key.A, key.B)
	}
	if err != nil && !(res.Failed() && tombstoned(err)) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s failed", key.Kind), err)
	}

	result := ResolveOutput{
		Op:       key.Kind.String(),
		Inputs:   key.Symbols(),
		Elements: make([]ElementOutput, 0, len(res.Elements)),
		Cached:   res.Cached,
	}
	for i, e := range res.Elements {
		result.Elements = append(result.Elements, ElementOutput{
			Symbol:    e.Symbol,
			Glyph:     e.Glyph,
			Discovery: e.IsDiscovery,
			Cue:       res.Cues[i].String(),
		})
	}

	if res.Failed() {
		msg := fmt.Sprintf("%s makes nothing", strings.Join(key.Symbols(), " + "))
		var details any
		if err != nil {
			details = err.Error()
		}
		if outErr := out.Error("E_NO_RESULT", msg, details); outErr != nil {
			return outErr
		}
		return reported(NewExitError(ExitFailure, msg))
	}
	return out.Success(result)
}

// tombstoned reports whether err is the oracle cause of a fresh tombstone.
func tombstoned(err error) bool {
	return engine.IsOracleFailure(err) || engine.IsMalformedResult(err)
}
