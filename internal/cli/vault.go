package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/KeMezz/taskdown/internal/bridge"
	"github.com/KeMezz/taskdown/internal/config"
	"github.com/KeMezz/taskdown/internal/storage"
	"github.com/KeMezz/taskdown/internal/vault"
)

// NewVaultCommand creates the vault command group.
func NewVaultCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Manage taskdown vaults",
	}

	cmd.AddCommand(newVaultInitCommand(rootOpts))
	cmd.AddCommand(newVaultStatusCommand(rootOpts))

	return cmd
}

func newVaultInitCommand(rootOpts *RootOptions) *cobra.Command {
	var remember bool

	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Create or upgrade a vault and apply migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, result, closeFn, err := openVault(cmd, rootOpts, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			if remember && !result.ReadOnly {
				if err := config.RememberVault(rootOpts.ConfigPath, result.Path); err != nil {
					rootOpts.Logger.Warn("failed to remember vault", "error", err)
				}
			}
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if result.Err != nil {
				return WrapExitError(ExitFailure, "vault opened read-only", result.Err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remember, "remember", false, "store the vault as the last opened vault in the config")

	return cmd
}

func newVaultStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <path>",
		Short: "Show schema migration status of a vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !vault.IsValid(args[0]) {
				return &ExitError{Code: ExitFailure, Message: "not a taskdown vault: " + args[0]}
			}

			manager, _, closeFn, err := openVault(cmd, rootOpts, args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			status, err := manager.Status(commandContext(cmd))
			if err != nil {
				return WrapExitError(ExitFailure, "reading migration status", err)
			}
			return writeJSON(cmd.OutOrStdout(), status)
		},
	}
}

// openVault opens the vault at root on a private registry. The returned
// function closes the registry.
func openVault(cmd *cobra.Command, opts *RootOptions, root string) (*vault.Manager, *vault.OpenResult, func(), error) {
	registry := storage.NewRegistry(opts.storageOptions())
	registry.SetLogger(opts.Logger)
	closeFn := func() {
		if err := registry.Close(); err != nil {
			opts.Logger.Warn("failed to close database", "error", err)
		}
	}

	manager := vault.NewManager(registry, bridge.New(registry, opts.Logger), opts.Logger)
	result, err := manager.Open(commandContext(cmd), root)
	if err != nil {
		closeFn()
		return nil, nil, nil, WrapExitError(ExitFailure, "opening vault", err)
	}
	return manager, result, closeFn, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
