package storage

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/embed" // SQLite WASM build

	"github.com/KeMezz/taskdown/pkg/types"
)

// nativeConn implements Conn with the ncruces low-level statement API.
// Unlike database/sql it exposes the storage class of every cell, so no
// declared-type conversions happen.
type nativeConn struct {
	conn *sqlite3.Conn
	path string
}

func openNative(path string, opts Options) (*nativeConn, error) {
	conn, err := sqlite3.Open(path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range pragmas(opts) {
		if err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return &nativeConn{conn: conn, path: path}, nil
}

// prepare compiles query, which must hold exactly one statement. A tail of
// comments or empty statements is allowed.
func (c *nativeConn) prepare(query string) (*sqlite3.Stmt, error) {
	stmt, tail, err := c.conn.Prepare(query)
	if err != nil {
		return nil, err
	}
	if stmt == nil {
		return nil, errEmptyStatement
	}

	if strings.TrimSpace(tail) != "" {
		next, _, err := c.conn.Prepare(tail)
		if next != nil {
			_ = next.Close()
		}
		if next != nil || err != nil {
			_ = stmt.Close()
			return nil, errMultipleStatements
		}
	}
	return stmt, nil
}

// Exec implements Conn.
func (c *nativeConn) Exec(ctx context.Context, query string, args []types.Value) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	stmt, err := c.prepare(query)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	if err := checkArgCount(stmt.BindCount(), len(args)); err != nil {
		return 0, err
	}
	if err := bindNative(stmt, args); err != nil {
		return 0, err
	}
	if err := stmt.Exec(); err != nil {
		return 0, err
	}
	return c.conn.Changes(), nil
}

// Query implements Conn.
func (c *nativeConn) Query(ctx context.Context, query string, args []types.Value, limit int) ([]string, [][]types.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	stmt, err := c.prepare(query)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = stmt.Close() }()

	// Column names come from the prepared statement, before stepping
	columns := make([]string, stmt.ColumnCount())
	for i := range columns {
		columns[i] = stmt.ColumnName(i)
	}

	if err := checkArgCount(stmt.BindCount(), len(args)); err != nil {
		return nil, nil, err
	}
	if err := bindNative(stmt, args); err != nil {
		return nil, nil, err
	}

	var rows [][]types.Value
	for stmt.Step() {
		row := make([]types.Value, len(columns))
		for i := range row {
			row[i] = nativeCell(stmt, i)
		}
		rows = append(rows, row)

		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	if err := stmt.Err(); err != nil {
		return nil, nil, err
	}

	return columns, rows, nil
}

// Ping implements Conn.
func (c *nativeConn) Ping(ctx context.Context) error {
	if _, _, err := c.Query(ctx, "SELECT 1", nil, 1); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Path implements Conn.
func (c *nativeConn) Path() string {
	return c.path
}

// Close implements Conn.
func (c *nativeConn) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// bindNative binds values to stmt; parameter indexes are 1-based.
func bindNative(stmt *sqlite3.Stmt, values []types.Value) error {
	for i, v := range values {
		param := i + 1
		var err error
		switch val := v.(type) {
		case nil, types.Null:
			err = stmt.BindNull(param)
		case types.Bool:
			err = stmt.BindBool(param, bool(val))
		case types.Integer:
			err = stmt.BindInt64(param, int64(val))
		case types.Float:
			err = stmt.BindFloat(param, float64(val))
		case types.Text:
			err = stmt.BindText(param, string(val))
		case types.Other:
			err = stmt.BindText(param, string(val))
		default:
			err = stmt.BindText(param, fmt.Sprint(val.Bind()))
		}
		if err != nil {
			return fmt.Errorf("binding parameter %d: %w", param, err)
		}
	}
	return nil
}

// nativeCell classifies one cell by its storage class.
func nativeCell(stmt *sqlite3.Stmt, col int) types.Value {
	switch stmt.ColumnType(col) {
	case sqlite3.INTEGER:
		return types.Integer(stmt.ColumnInt64(col))
	case sqlite3.FLOAT:
		return types.Float(stmt.ColumnFloat(col))
	case sqlite3.TEXT:
		raw := stmt.ColumnRawText(col)
		if utf8.Valid(raw) {
			return types.Text(string(raw))
		}
		return types.Text(strings.ToValidUTF8(string(raw), string(utf8.RuneError)))
	default:
		// NULL, and BLOB which is not surfaced to the caller
		return types.Null{}
	}
}
