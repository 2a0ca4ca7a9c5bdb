package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KeMezz/taskdown/internal/mcp"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var vaultPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the data boundary over MCP on stdio",
		Long: `Serve the data boundary over MCP on stdio.

Logs go to stderr; stdout carries the protocol. With --vault (or
TASKDOWN_VAULT) the vault is opened before the first request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if vaultPath != "" {
				rootOpts.Config.Vault.Path = vaultPath
			}
			return serve(commandContext(cmd), rootOpts)
		},
	}

	cmd.Flags().StringVar(&vaultPath, "vault", "", "vault to open at startup")

	return cmd
}

func serve(ctx context.Context, opts *RootOptions) error {
	log := opts.Logger
	log.Info("taskdown starting", "version", opts.Version)

	server, err := mcp.NewServer(opts.Config, opts.ConfigPath, log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create MCP server", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())
		cancel()
		return server.Close()
	case err := <-errChan:
		if err != nil {
			return WrapExitError(ExitFailure, "server error", err)
		}
	}

	log.Info("server stopped")
	return nil
}
