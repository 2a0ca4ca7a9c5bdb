package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/KeMezz/taskdown/internal/logging"
	"github.com/KeMezz/taskdown/pkg/types"
)

// Registry owns at most one live connection and serializes access to it.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Callers of WithConnection
//     block until the connection is free; no ordering is guaranteed.
type Registry struct {
	mu   sync.Mutex
	conn Conn
	opts Options
	log  *logging.Logger
}

// NewRegistry creates an empty registry. No connection exists until
// Initialize succeeds.
func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts.withDefaults(), log: logging.Discard()}
}

// SetLogger sets the logger used for connection lifecycle events.
// A nil logger discards output.
func (r *Registry) SetLogger(log *logging.Logger) {
	if log == nil {
		log = logging.Discard()
	}
	r.mu.Lock()
	r.log = log.With("component", "registry")
	r.mu.Unlock()
}

// Options returns the options used for new connections.
func (r *Registry) Options() Options {
	return r.opts
}

// Initialize opens the database at path and installs it as the current
// connection, closing any previous one. If opening fails the previous
// connection stays installed. Once the new connection is installed the call
// succeeds; a failure closing the previous one is only logged.
func (r *Registry) Initialize(ctx context.Context, path string) error {
	conn, err := Open(ctx, path, r.opts)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.conn
	r.conn = conn
	if old != nil {
		// Nobody can hold old: every user goes through mu.
		if err := old.Close(); err != nil {
			r.log.Warn("failed to close previous connection", "path", old.Path(), "error", err)
		}
	}
	r.log.Debug("connection installed", "path", path, "engine", r.opts.Engine)
	return nil
}

// WithConnection runs fn with exclusive access to the current connection.
// It fails with types.ErrNotInitialized if no connection exists.
func (r *Registry) WithConnection(fn func(Conn) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return types.ErrNotInitialized
	}
	return fn(r.conn)
}

// With is the value-returning form of Registry.WithConnection.
func With[T any](r *Registry, fn func(Conn) (T, error)) (T, error) {
	var result T
	err := r.WithConnection(func(c Conn) error {
		var err error
		result, err = fn(c)
		return err
	})
	return result, err
}

// Current returns the path of the installed connection, if any.
func (r *Registry) Current() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return "", false
	}
	return r.conn.Path(), true
}

// Close closes and removes the current connection. It is a no-op when no
// connection exists.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
