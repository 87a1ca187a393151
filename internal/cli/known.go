package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/elemental/internal/ir"
	"github.com/roach88/elemental/internal/sidebar"
)

// KnownOptions holds flags for the known command.
type KnownOptions struct {
	*RootOptions
	Query      string
	Sort       string
	Descending bool
}

// KnownOutput is the element list printed by known.
type KnownOutput struct {
	Elements []KnownEntry `json:"elements"`
	Total    int          `json:"total"`
}

// KnownEntry is one row of the element list.
type KnownEntry struct {
	Symbol    string `json:"symbol"`
	Glyph     string `json:"emoji"`
	Discovery bool   `json:"discovery"`
	CreatedAt int64  `json:"timestamp,omitempty"`
}

// Text renders one element per line with discoveries starred.
func (o KnownOutput) Text() string {
	if len(o.Elements) == 0 {
		return "No elements match."
	}
	lines := make([]string, 0, len(o.Elements)+1)
	for _, e := range o.Elements {
		mark := " "
		if e.Discovery {
			mark = "*"
		}
		line := fmt.Sprintf("%s %s %s", mark, e.Glyph, e.Symbol)
		if e.CreatedAt != 0 {
			line += "  " + time.UnixMilli(e.CreatedAt).Format(time.DateTime)
		}
		lines = append(lines, line)
	}
	lines = append(lines, fmt.Sprintf("%d elements", o.Total))
	return strings.Join(lines, "\n")
}

// NewKnownCommand creates the known command.
func NewKnownCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &KnownOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "known",
		Short: "List known elements",
		Long: `List every known element, filtered and sorted like the sidebar.

Elements whose symbol starts with the query come first, then those that
merely contain it. Discoveries are marked with *.

Example:
  elemental known
  elemental known --query wat --sort discovery --desc`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKnown(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "case-insensitive symbol filter")
	cmd.Flags().StringVar(&opts.Sort, "sort", "time", "sort by time, discovery, glyph or symbol")
	cmd.Flags().BoolVar(&opts.Descending, "desc", false, "reverse the sort order")

	return cmd
}

func runKnown(opts *KnownOptions, cmd *cobra.Command) error {
	sortBy, err := sidebar.ParseSortBy(opts.Sort)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --sort", err)
	}

	ctx := commandContext(cmd.Context())
	configureLogging(cmd.ErrOrStderr(), opts.Verbose)
	sess, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer sess.Close()

	entries := sidebar.List(sess.ledger.Elements(), nil, sidebar.Options{
		Query:      opts.Query,
		Sort:       sortBy,
		Descending: opts.Descending,
	})
	result := KnownOutput{
		Elements: make([]KnownEntry, 0, len(entries)),
		Total:    len(entries),
	}
	for _, e := range entries {
		result.Elements = append(result.Elements, KnownEntry{
			Symbol:    e.Symbol,
			Glyph:     e.Glyph,
			Discovery: e.IsDiscovery,
			CreatedAt: e.CreatedAt,
		})
	}
	return newFormatter(opts.RootOptions, cmd).Success(result)
}

// RecipesOutput describes how an element is made.
type RecipesOutput struct {
	Symbol     string   `json:"symbol"`
	MadeFrom   []string `json:"made_from"`
	SplitFrom  []string `json:"split_from"`
	SplitsInto []string `json:"splits_into,omitempty"`
	hover      string
}

// Text renders the sidebar hover text.
func (o RecipesOutput) Text() string {
	if o.hover == "" {
		return "No known recipes for " + o.Symbol + "."
	}
	return o.hover
}

// NewRecipesCommand creates the recipes command.
func NewRecipesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes <element>",
		Short: "Show how an element is made",
		Long: `Show every cached combination that makes an element, and every
split that yields it. Asking about an element that has never been seen
fails with exit code 1.

Example:
  elemental recipes Steam`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecipes(rootOpts, cmd, args[0])
		},
	}
}

func runRecipes(opts *RootOptions, cmd *cobra.Command, symbol string) error {
	ctx := commandContext(cmd.Context())
	configureLogging(cmd.ErrOrStderr(), opts.Verbose)
	sess, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	symbol = ir.Normalize(symbol)
	if !sess.ledger.Known(symbol) {
		msg := fmt.Sprintf("%s is not a known element", symbol)
		if err := newFormatter(opts, cmd).Error("E_UNKNOWN_ELEMENT", msg, nil); err != nil {
			return err
		}
		return reported(NewExitError(ExitFailure, msg))
	}
	r := sess.cache.Recipes(symbol)
	result := RecipesOutput{
		Symbol:    symbol,
		MadeFrom:  make([]string, 0, len(r.MadeFrom)),
		SplitFrom: make([]string, 0, len(r.SplitFrom)),
		hover:     sidebar.HoverText(symbol, sess.cache, sess.ledger),
	}
	for _, k := range r.MadeFrom {
		result.MadeFrom = append(result.MadeFrom, k.A+" + "+k.B)
	}
	for _, k := range r.SplitFrom {
		result.SplitFrom = append(result.SplitFrom, k.A)
	}
	if r.SplitsInto != nil {
		result.SplitsInto = []string{r.SplitsInto[0].Symbol, r.SplitsInto[1].Symbol}
	}
	return newFormatter(opts, cmd).Success(result)
}

// ForgetOutput reports a removed cache entry.
type ForgetOutput struct {
	Key string `json:"key"`
	Op  string `json:"op"`
}

// Text renders the confirmation.
func (o ForgetOutput) Text() string {
	return fmt.Sprintf("Forgot %s %s; the oracle will be asked again.", o.Op, o.Key)
}

// NewForgetCommand creates the forget command.
func NewForgetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <a> [b]",
		Short: "Drop a cached result",
		Long: `Drop the cached result of a combination (two elements) or a split
(one element), so the next attempt asks the oracle again. This is how a
result that made nothing gets another chance.

Example:
  elemental forget Fire Water
  elemental forget Steam`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ir.SplitKey(args[0])
			if len(args) == 2 {
				key = ir.CombineKey(args[0], args[1])
			}
			return runForget(rootOpts, cmd, key)
		},
	}
}

func runForget(opts *RootOptions, cmd *cobra.Command, key ir.Key) error {
	ctx := commandContext(cmd.Context())
	configureLogging(cmd.ErrOrStderr(), opts.Verbose)
	out := newFormatter(opts, cmd)
	sess, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	resident := sess.cache.HasCombine(key)
	if key.Kind == ir.KindSplit {
		_, resident = sess.cache.LookupSplit(key)
	}
	if !resident {
		msg := fmt.Sprintf("no cached %s for %s", key.Kind, strings.Join(key.Symbols(), " + "))
		if err := out.Error("E_NOT_CACHED", msg, nil); err != nil {
			return err
		}
		return reported(NewExitError(ExitFailure, msg))
	}

	if err := sess.cache.Forget(ctx, key); err != nil {
		return WrapExitError(ExitCommandError, "failed to forget", err)
	}
	return out.Success(ForgetOutput{Key: strings.Join(key.Symbols(), " + "), Op: key.Kind.String()})
}
