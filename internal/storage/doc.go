// Package storage owns the single SQLite connection behind the taskdown
// data-access boundary.
//
// The package manages:
//   - A Registry holding at most one live connection
//   - Exclusive, momentary access to that connection (WithConnection)
//   - Two engines that open connections and classify cells by storage class
//
// # Engines
//
// The "native" engine (default) uses the github.com/ncruces/go-sqlite3
// statement API, which reports the storage class of each cell directly.
//
// The "sql" engine uses database/sql. The driver is chosen at build time:
//
//	go build ./...                        # modernc.org/sqlite, pure Go
//	CGO_ENABLED=1 go build -tags sqlite_cgo ./...   # github.com/mattn/go-sqlite3
//
// Both drivers convert cells of DATE/DATETIME/TIMESTAMP columns to time.Time
// (mattn also BOOLEAN columns to bool), so those cells come back re-formatted
// rather than as stored.
//
// Each call takes exactly one statement. Empty SQL, a second statement or a
// parameter count that differs from the arguments fails before anything is
// executed.
//
// # Basic Usage
//
//	reg := storage.NewRegistry(storage.Options{Engine: storage.EngineNative})
//	if err := reg.Initialize(ctx, "/vault/.taskdown/data.db"); err != nil {
//	    return err
//	}
//	defer reg.Close()
//
//	n, err := storage.With(reg, func(c storage.Conn) (int64, error) {
//	    return c.Exec(ctx, "DELETE FROM tasks WHERE id = ?", []types.Value{types.Text("t1")})
//	})
//
// Calling Initialize again replaces the connection; the previous one is
// closed. Using the registry before Initialize fails with
// types.ErrNotInitialized.
//
// # Cell Classification
//
// Cells map to types.Integer, types.Float, types.Text (invalid UTF-8 replaced
// with U+FFFD) or types.Null. Blob cells are returned as types.Null.
package storage
