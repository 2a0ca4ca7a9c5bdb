package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KeMezz/taskdown/internal/config"
	"github.com/KeMezz/taskdown/internal/logging"
	"github.com/KeMezz/taskdown/internal/storage"
)

// RootOptions holds global flags and the state every command shares.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Engine     string

	Version   string
	BuildTime string

	// Set by PersistentPreRunE
	Config *config.Config
	Logger *logging.Logger
}

// NewRootCommand creates the root command for the taskdown CLI.
func NewRootCommand(version, buildTime string) *cobra.Command {
	opts := &RootOptions{Version: version, BuildTime: buildTime}

	cmd := &cobra.Command{
		Use:   "taskdown",
		Short: "taskdown local data service",
		Long: `taskdown serves the local database and asset storage of a taskdown vault.

Run "taskdown serve" to expose it over MCP on stdio, or use the exec, asset
and vault commands directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $TASKDOWN_CONFIG or ~/.taskdown/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Engine, "engine", "", "database engine override (native|sql)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewAssetCommand(opts))
	cmd.AddCommand(NewVaultCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// load reads the configuration and applies flag overrides.
func (o *RootOptions) load() error {
	if o.ConfigPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return WrapExitError(ExitCommandError, "locating config", err)
		}
		o.ConfigPath = path
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.Engine != "" {
		cfg.Database.Engine = o.Engine
		if err := cfg.Validate(); err != nil {
			return WrapExitError(ExitCommandError, "invalid --engine", err)
		}
	}

	o.Config = cfg
	o.Logger = logging.New(cfg.Logging, o.Version)
	return nil
}

// storageOptions converts the database config into registry options.
func (o *RootOptions) storageOptions() storage.Options {
	return storage.Options{
		Engine:        o.Config.Database.Engine,
		WALMode:       o.Config.Database.WALMode,
		BusyTimeoutMS: o.Config.Database.BusyTimeout,
	}
}

func versionString(o *RootOptions) string {
	return fmt.Sprintf("taskdown %s (built %s, %s, driver %s)", o.Version, o.BuildTime, storage.BuildMode, storage.DriverName)
}
