package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/elemental/internal/config"
	"github.com/roach88/elemental/internal/oracle"
)

// shutdownTimeout bounds the drain of in-flight requests.
const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr    string
	Recipes string

	// ready, when set, receives the bound address once listening (for testing).
	ready chan<- string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an oracle over HTTP",
		Long: `Serve the configured oracle backend over the HTTP oracle protocol:

  GET /add?symbols=A&symbols=B  -> {"symbol": ..., "emoji": ...}
  GET /split?symbol=S           -> [{...}, {...}]
  GET /healthz
  GET /metrics                  (Prometheus)

A failed request answers 200 with an empty symbol, so clients cache it.
With --recipes the server answers from a YAML recipe table instead.

Example:
  elemental serve --recipes recipes.yaml
  elemental serve --addr 127.0.0.1:9000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8000", "listen address")
	cmd.Flags().StringVar(&opts.Recipes, "recipes", "", "answer from this YAML recipe table")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()
	configureLogging(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	oc := cfg.Oracle
	if opts.Recipes != "" {
		oc.Kind = config.OracleTable
		oc.Recipes = config.ExpandHome(opts.Recipes)
	}
	if oc.Kind == config.OracleHTTP {
		return NewExitError(ExitCommandError,
			"serve needs an openai or table backend; set oracle.kind or pass --recipes")
	}
	orc, err := oc.Build()
	if err != nil {
		return oracleError(err)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	srv := &http.Server{
		Handler:           oracle.NewHandler(orc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	addr := ln.Addr().String()
	slog.Info("oracle server listening", "addr", addr, "backend", oc.Kind)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s oracle on %s. Press Ctrl-C to stop.\n", oc.Kind, addr)
	if opts.ready != nil {
		opts.ready <- addr
	}

	select {
	case err := <-errCh:
		return WrapExitError(ExitFailure, "server error", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return WrapExitError(ExitFailure, "server error", err)
	}
	slog.Info("oracle server stopped")
	return nil
}
