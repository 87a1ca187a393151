package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/elemental/internal/transfer"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write known elements and cached results to a save file",
		Long: `Write every known element and every cached combination and split to
a JSON save file. Use - for standard output.

Example:
  elemental export progress.json
  elemental export - > progress.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, cmd, args[0])
		},
	}
}

func runExport(opts *RootOptions, cmd *cobra.Command, path string) error {
	ctx := commandContext(cmd.Context())
	configureLogging(cmd.ErrOrStderr(), opts.Verbose)
	out := newFormatter(opts, cmd)

	sess, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	f := transfer.Collect(sess.ledger.Elements(), sess.cache.Combos(), sess.cache.Splits())

	if path == "-" {
		if err := transfer.Export(cmd.OutOrStdout(), f); err != nil {
			return WrapExitError(ExitCommandError, "failed to export", err)
		}
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create save file", err)
	}
	if err := transfer.Export(file, f); err != nil {
		_ = file.Close()
		return WrapExitError(ExitCommandError, "failed to export", err)
	}
	if err := file.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to export", err)
	}

	return out.Success(ExportOutput{
		Path:     path,
		Elements: len(f.Elements),
		Combos:   len(f.SymbolCombos),
		Splits:   len(f.InverseSymbolCombos),
	})
}

// ExportOutput summarizes a written save file.
type ExportOutput struct {
	Path     string `json:"path"`
	Elements int    `json:"elements"`
	Combos   int    `json:"combos"`
	Splits   int    `json:"splits"`
}

// Text renders the summary.
func (o ExportOutput) Text() string {
	return fmt.Sprintf("Exported %d elements, %d combinations and %d splits to %s",
		o.Elements, o.Combos, o.Splits, o.Path)
}

// CountsOutput is a per-record tally.
type CountsOutput struct {
	Elements int `json:"elements"`
	Combos   int `json:"combos"`
	Splits   int `json:"splits"`
}

func countsOutput(c transfer.Counts) CountsOutput {
	return CountsOutput{Elements: c.Elements, Combos: c.Combos, Splits: c.Splits}
}

// ImportOutput summarizes an import.
type ImportOutput struct {
	Read  CountsOutput `json:"read"`
	Valid CountsOutput `json:"valid"`
	Added CountsOutput `json:"added"`
	// Total is what the database holds after the merge.
	Total   CountsOutput `json:"total"`
	Invalid []string     `json:"invalid,omitempty"`
	Warning string       `json:"warning,omitempty"`
}

// Text renders the summary and, for each rejected entry, where it was.
func (o ImportOutput) Text() string {
	lines := []string{fmt.Sprintf(
		"Imported %d new elements, %d combinations and %d splits (%d/%d/%d in file)",
		o.Added.Elements, o.Added.Combos, o.Added.Splits,
		o.Read.Elements, o.Read.Combos, o.Read.Splits,
	)}
	lines = append(lines, fmt.Sprintf("Database now holds %d elements, %d combinations and %d splits",
		o.Total.Elements, o.Total.Combos, o.Total.Splits))
	for _, e := range o.Invalid {
		lines = append(lines, "  skipped "+e)
	}
	return strings.Join(lines, "\n")
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a save file into the database",
		Long: `Merge a JSON save file into the database. Use - for standard input.

Entries already present are kept; only new elements and new cache entries
are added. Invalid entries are skipped and listed, and a warning is printed
when any element was rejected.

Exit codes:
  0 - The file was merged
  2 - The file could not be read or is not a save file

Example:
  elemental import progress.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, cmd, args[0])
		},
	}
}

func runImport(opts *RootOptions, cmd *cobra.Command, path string) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read save file", err)
	}

	schema, err := transfer.NewSchema()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build save file schema", err)
	}

	ctx := commandContext(cmd.Context())
	configureLogging(cmd.ErrOrStderr(), opts.Verbose)
	out := newFormatter(opts, cmd)

	sess, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	report, err := transfer.Import(ctx, schema, data, sess.ledger, sess.cache)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to import", err)
	}
	elements, combos, splits, err := sess.store.Counts(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count records", err)
	}

	result := ImportOutput{
		Read:    countsOutput(report.Read),
		Valid:   countsOutput(report.Valid),
		Added:   countsOutput(report.Added),
		Total:   CountsOutput{Elements: elements, Combos: combos, Splits: splits},
		Warning: report.Warning(),
	}
	for _, v := range report.Invalid {
		result.Invalid = append(result.Invalid, v.Error())
	}
	if result.Warning != "" {
		out.Warn("%s", result.Warning)
	}
	return out.Success(result)
}
