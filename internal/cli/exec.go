package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KeMezz/taskdown/internal/bridge"
	"github.com/KeMezz/taskdown/internal/storage"
	"github.com/KeMezz/taskdown/internal/vault"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	DBPath    string
	VaultPath string
	Method    string
	Params    string
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Execute one SQL statement and print the result as JSON",
		Long: `Execute one SQL statement and print the result as JSON.

Methods:
  run   print {"changes": n}
  get   print the first row, fail if there is none
  all   print every row as an array

Parameters are a JSON array bound positionally to ? placeholders.`,
		Example: `  taskdown exec --db notes.db --method all "SELECT * FROM tasks WHERE status = ?" --params '["todo"]'
  taskdown exec --vault ~/notes "DELETE FROM tasks WHERE id = ?" --params '["t1"]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "database file")
	cmd.Flags().StringVar(&opts.VaultPath, "vault", "", "vault whose database to use")
	cmd.Flags().StringVarP(&opts.Method, "method", "m", "run", "execution mode (run|get|all)")
	cmd.Flags().StringVarP(&opts.Params, "params", "p", "", "JSON array of positional parameters")
	cmd.MarkFlagsMutuallyExclusive("db", "vault")

	return cmd
}

func runExec(cmd *cobra.Command, opts *ExecOptions, sql string) error {
	dbPath := opts.DBPath
	if opts.VaultPath != "" {
		dbPath = vault.DBPath(opts.VaultPath)
	}
	if dbPath == "" {
		return &ExitError{Code: ExitCommandError, Message: "one of --db or --vault is required"}
	}

	params, err := parseParams(opts.Params)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --params", err)
	}

	ctx := commandContext(cmd)

	registry := storage.NewRegistry(opts.storageOptions())
	registry.SetLogger(opts.Logger)
	defer registry.Close()

	if err := registry.Initialize(ctx, dbPath); err != nil {
		return WrapExitError(ExitFailure, "opening database", err)
	}

	b := bridge.New(registry, opts.Logger)
	result, err := b.Execute(ctx, sql, params, opts.Method)
	if err != nil {
		return WrapExitError(ExitFailure, "exec failed", err)
	}

	return writeJSON(cmd.OutOrStdout(), result)
}

// parseParams decodes a JSON array, keeping numbers as json.Number so
// integers bind as integers.
func parseParams(raw string) ([]any, error) {
	if raw == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var params []any
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("expected a JSON array: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the JSON array")
	}
	return params, nil
}
