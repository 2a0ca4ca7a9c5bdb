package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/KeMezz/taskdown/internal/bridge"
	"github.com/KeMezz/taskdown/internal/logging"
	"github.com/KeMezz/taskdown/internal/storage"
)

// ErrOpenInProgress is returned when another Open is still running.
var ErrOpenInProgress = errors.New("vault open already in progress")

// OpenResult describes an opened vault.
//
// A vault whose schema could not be migrated, or whose format is newer than
// this build, is still opened; ReadOnly is set and Err says why.
type OpenResult struct {
	Path     string  `json:"path"`
	ReadOnly bool    `json:"read_only"`
	Applied  []int64 `json:"applied_migrations"`
	Config   *Config `json:"config"`
	Err      error   `json:"-"`
}

// Manager opens vaults into the shared connection registry.
type Manager struct {
	registry *storage.Registry
	migrator *Migrator
	log      *logging.Logger
	opening  openLock

	mu      sync.Mutex
	current *OpenResult
}

// NewManager creates a Manager. A nil logger discards output.
func NewManager(reg *storage.Registry, b *bridge.Bridge, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{
		registry: reg,
		migrator: NewMigrator(b),
		log:      log.With("component", "vault"),
	}
}

// Open initializes the vault layout at root, connects its database and
// applies pending migrations.
//
// Errors creating the layout or opening the database fail the call. A
// migration failure or an unsupported vault version returns a read-only
// result instead.
func (m *Manager) Open(ctx context.Context, root string) (*OpenResult, error) {
	if !m.opening.TryAcquire() {
		return nil, ErrOpenInProgress
	}
	defer m.opening.Release()

	if err := Init(root); err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		return nil, err
	}

	if err := m.registry.Initialize(ctx, DBPath(root)); err != nil {
		return nil, fmt.Errorf("opening vault database: %w", err)
	}

	result := &OpenResult{Path: root, Config: cfg, Applied: []int64{}}

	if err := CheckVersion(cfg); err != nil {
		m.log.Warn("vault opened read-only", "path", root, "error", err)
		result.ReadOnly = true
		result.Err = err
		m.setCurrent(result)
		return result, nil
	}

	applied, err := m.migrator.Migrate(ctx)
	result.Applied = applied
	if err != nil {
		m.log.Error("migration failed, vault opened read-only", "path", root, "error", err)
		result.ReadOnly = true
		result.Err = err
	} else {
		for _, v := range applied {
			m.log.Info("migration applied", "version", v)
		}
	}

	m.log.Info("vault opened", "path", root, "read_only", result.ReadOnly)
	m.setCurrent(result)
	return result, nil
}

// Current returns the most recently opened vault.
func (m *Manager) Current() (*OpenResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.current != nil
}

// Status reports the migration state of the open database.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	return m.migrator.Status(ctx)
}

func (m *Manager) setCurrent(r *OpenResult) {
	m.mu.Lock()
	m.current = r
	m.mu.Unlock()
}
