package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/KeMezz/taskdown/pkg/types"
)

// timeLayout is the layout used to turn driver-parsed timestamps back into
// the text SQLite stored.
const timeLayout = "2006-01-02 15:04:05.999999999-07:00"

// sqlConn implements Conn on top of database/sql.
type sqlConn struct {
	db   *sql.DB
	path string
}

// openSQL opens a SQLite database with appropriate settings
func openSQL(ctx context.Context, path string, opts Options) (*sqlConn, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, err
	}

	// A single pooled connection keeps pragmas and :memory: databases alive
	// and gives the registry one handle to guard.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	for _, pragma := range pragmas(opts) {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return &sqlConn{db: db, path: path}, nil
}

// Exec implements Conn. Drivers run every statement of a multi-statement
// string and ignore surplus arguments, so the shape is checked up front.
func (c *sqlConn) Exec(ctx context.Context, query string, args []types.Value) (int64, error) {
	if err := checkStatement(query, len(args)); err != nil {
		return 0, err
	}

	result, err := c.db.ExecContext(ctx, query, types.BindAll(args)...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Query implements Conn.
func (c *sqlConn) Query(ctx context.Context, query string, args []types.Value, limit int) ([]string, [][]types.Value, error) {
	if err := checkStatement(query, len(args)); err != nil {
		return nil, nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, types.BindAll(args)...)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	// Column metadata is read before the first Next
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var result [][]types.Value
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}

		row := make([]types.Value, len(cells))
		for i, cell := range cells {
			row[i] = fromDriverValue(cell)
		}
		result = append(result, row)

		if limit > 0 && len(result) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return columns, result, nil
}

// Ping implements Conn.
func (c *sqlConn) Ping(ctx context.Context) error {
	var one int
	if err := c.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Path implements Conn.
func (c *sqlConn) Path() string {
	return c.path
}

// Close implements Conn.
func (c *sqlConn) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// fromDriverValue maps a value produced by the database/sql driver to a
// storage class.
//
// Drivers convert some declared column types before the value gets here:
// mattn/go-sqlite3 returns bool for BOOLEAN columns and time.Time for
// DATE/DATETIME/TIMESTAMP columns, and modernc.org/sqlite returns time.Time
// for text in date columns. The stored value cannot be recovered, so bools
// become 0/1 and timestamps are re-formatted as text. The native engine has
// no such conversions.
func fromDriverValue(v any) types.Value {
	switch val := v.(type) {
	case nil:
		return types.Null{}
	case int64:
		return types.Integer(val)
	case float64:
		return types.Float(val)
	case string:
		return types.Text(lossyText(val))
	case []byte:
		// Blob storage is not surfaced to the caller.
		return types.Null{}
	case bool:
		if val {
			return types.Integer(1)
		}
		return types.Integer(0)
	case time.Time:
		return types.Text(val.Format(timeLayout))
	default:
		return types.Text(lossyText(fmt.Sprint(val)))
	}
}

// lossyText replaces invalid UTF-8 with U+FFFD.
func lossyText(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}
