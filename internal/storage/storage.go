package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KeMezz/taskdown/pkg/types"
)

// Engine names accepted in Options.Engine.
const (
	// EngineNative uses the ncruces low-level API, which reports the exact
	// storage class of every cell
	EngineNative = "native"
	// EngineSQL uses database/sql with the driver selected at build time.
	// Drivers convert cells of DATE/DATETIME/TIMESTAMP and BOOLEAN columns.
	EngineSQL = "sql"
)

// Defaults applied when Options fields are zero.
const (
	DefaultBusyTimeoutMS = 5000
	dirPermissions       = 0750
)

// Conn is one open database connection.
//
// Implementations are not safe for concurrent use; the Registry serializes
// every call.
type Conn interface {
	// Exec prepares and executes sql, which must hold exactly one statement,
	// and returns the number of rows the engine reports as changed. Statement
	// and argument counts are checked before anything runs.
	Exec(ctx context.Context, sql string, args []types.Value) (int64, error)

	// Query prepares sql (one statement), captures its column names, executes it and fetches
	// at most limit rows (limit <= 0 fetches all). Cells are classified by
	// storage class: integer, float, text or null; blobs become null.
	Query(ctx context.Context, sql string, args []types.Value, limit int) (columns []string, rows [][]types.Value, err error)

	// Ping verifies the connection is usable.
	Ping(ctx context.Context) error

	// Path returns the path the connection was opened with.
	Path() string

	// Close releases the connection.
	Close() error
}

// Options configures how connections are opened.
type Options struct {
	// Engine is EngineNative (default) or EngineSQL
	Engine string

	// WALMode enables write-ahead logging
	WALMode bool

	// BusyTimeoutMS is how long a statement waits for a lock
	BusyTimeoutMS int
}

func (o Options) withDefaults() Options {
	if o.Engine == "" {
		o.Engine = EngineNative
	}
	o.Engine = strings.ToLower(o.Engine)
	if o.BusyTimeoutMS <= 0 {
		o.BusyTimeoutMS = DefaultBusyTimeoutMS
	}
	return o
}

// Validate reports whether the options name a known engine.
func (o Options) Validate() error {
	switch o.withDefaults().Engine {
	case EngineNative, EngineSQL:
		return nil
	default:
		return fmt.Errorf("unknown engine %q (want %q or %q)", o.Engine, EngineNative, EngineSQL)
	}
}

// Open opens a connection to the database at path with the configured engine.
// Failures are reported as types.ErrConnection.
func Open(ctx context.Context, path string, opts Options) (Conn, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrConnection, err)
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: database path is empty", types.ErrConnection)
	}

	// Ensure directory exists
	if !isMemory(path) && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
			return nil, fmt.Errorf("%w: creating database directory: %w", types.ErrConnection, err)
		}
	}

	var (
		conn Conn
		err  error
	)
	switch opts.Engine {
	case EngineSQL:
		conn, err = openSQL(ctx, path, opts)
	default:
		conn, err = openNative(path, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrConnection, err)
	}
	return conn, nil
}

// pragmas returns the per-connection settings applied right after open.
func pragmas(opts Options) []string {
	list := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", opts.BusyTimeoutMS),
		"PRAGMA foreign_keys = ON",
	}
	if opts.WALMode {
		list = append(list, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	return list
}

// isMemory reports whether path names an in-memory database.
func isMemory(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// checkArgCount matches the database/sql diagnostic for parameter mismatches.
func checkArgCount(want, got int) error {
	if want != got {
		return fmt.Errorf("sql: expected %d arguments, got %d", want, got)
	}
	return nil
}
