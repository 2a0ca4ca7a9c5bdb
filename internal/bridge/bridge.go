package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KeMezz/taskdown/internal/logging"
	"github.com/KeMezz/taskdown/internal/storage"
	"github.com/KeMezz/taskdown/pkg/types"
)

// Bridge executes SQL statements on behalf of the presentation layer against
// the registry's current connection.
type Bridge struct {
	registry *storage.Registry
	log      *logging.Logger
}

// New creates a Bridge. A nil logger discards output.
func New(registry *storage.Registry, log *logging.Logger) *Bridge {
	if log == nil {
		log = logging.Discard()
	}
	return &Bridge{
		registry: registry,
		log:      log.With("component", "bridge"),
	}
}

// Execute classifies params and runs sql in the given mode ("run", "get" or
// "all"). An unknown mode fails with types.ErrInvalidMode before the database
// is touched.
func (b *Bridge) Execute(ctx context.Context, sql string, params []any, mode string) (*types.Result, error) {
	m, err := types.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	return b.ExecuteValues(ctx, sql, types.FromAnySlice(params), m)
}

// ExecuteValues runs sql with already-classified parameters.
func (b *Bridge) ExecuteValues(ctx context.Context, sql string, params []types.Value, mode types.Mode) (*types.Result, error) {
	if _, err := types.ParseMode(string(mode)); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := storage.With(b.registry, func(c storage.Conn) (*types.Result, error) {
		switch mode {
		case types.ModeRun:
			return run(ctx, c, sql, params)
		case types.ModeGet:
			return get(ctx, c, sql, params)
		default:
			return all(ctx, c, sql, params)
		}
	})

	elapsed := time.Since(start)
	if err != nil {
		b.log.Debug("statement failed",
			"mode", string(mode),
			"sql", sql,
			"params", len(params),
			"duration", elapsed,
			"error", err,
		)
		return nil, err
	}

	b.log.Debug("statement executed",
		"mode", string(mode),
		"sql", sql,
		"params", len(params),
		"duration", elapsed,
		"changes", result.Changes,
		"rows", len(result.Rows),
	)
	return result, nil
}

func run(ctx context.Context, c storage.Conn, sql string, params []types.Value) (*types.Result, error) {
	changes, err := c.Exec(ctx, sql, params)
	if err != nil {
		return nil, sqlError(err)
	}
	return &types.Result{Mode: types.ModeRun, Changes: changes}, nil
}

func get(ctx context.Context, c storage.Conn, sql string, params []types.Value) (*types.Result, error) {
	columns, rows, err := c.Query(ctx, sql, params, 1)
	if err != nil {
		return nil, sqlError(err)
	}
	if len(rows) == 0 {
		return nil, types.ErrNoRowFound
	}
	return &types.Result{
		Mode: types.ModeGet,
		Row:  types.DocumentFromRow(columns, rows[0]),
	}, nil
}

func all(ctx context.Context, c storage.Conn, sql string, params []types.Value) (*types.Result, error) {
	columns, rows, err := c.Query(ctx, sql, params, 0)
	if err != nil {
		return nil, sqlError(err)
	}

	docs := make([]*types.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, types.DocumentFromRow(columns, row))
	}
	return &types.Result{Mode: types.ModeAll, Rows: docs}, nil
}

// sqlError tags an engine failure with types.ErrSQL, keeping its message.
// Context cancellation passes through untouched.
func sqlError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", types.ErrSQL, err)
}
