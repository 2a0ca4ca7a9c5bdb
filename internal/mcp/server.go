package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/KeMezz/taskdown/internal/assets"
	"github.com/KeMezz/taskdown/internal/bridge"
	"github.com/KeMezz/taskdown/internal/config"
	"github.com/KeMezz/taskdown/internal/logging"
	"github.com/KeMezz/taskdown/internal/storage"
	"github.com/KeMezz/taskdown/internal/vault"
)

const (
	// ServerName is the MCP server name
	ServerName = "taskdown"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	registry *storage.Registry
	bridge   *bridge.Bridge
	writer   *assets.Writer
	uploader *assets.Uploader
	vaults   *vault.Manager
	log      *logging.Logger

	cfg        *config.Config
	configPath string
}

// NewServer creates a new MCP server instance. configPath is where the last
// opened vault is remembered; empty disables it.
func NewServer(cfg *config.Config, configPath string, log *logging.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = logging.Discard()
	}

	registry := storage.NewRegistry(storage.Options{
		Engine:        cfg.Database.Engine,
		WALMode:       cfg.Database.WALMode,
		BusyTimeoutMS: cfg.Database.BusyTimeout,
	})
	registry.SetLogger(log)
	br := bridge.New(registry, log)
	writer := assets.NewWriter(log)

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		registry: registry,
		bridge:   br,
		writer:   writer,
		uploader: assets.NewUploader(writer,
			assets.WithMaxBytes(cfg.Assets.MaxImageBytes),
			assets.WithConcurrency(cfg.Assets.Concurrency),
		),
		vaults:     vault.NewManager(registry, br, log),
		log:        log.With("component", "mcp"),
		cfg:        cfg,
		configPath: configPath,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve opens the configured vault, if any, then serves MCP on stdio and
// blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()

	if path := s.cfg.Vault.Path; path != "" {
		if _, err := s.openVault(ctx, path); err != nil {
			// The client can still open another vault
			s.log.Error("failed to open configured vault", "path", path, "error", err)
		}
	}

	s.log.Info("serving MCP on stdio", "engine", s.registry.Options().Engine, "build", storage.BuildMode)
	return server.ServeStdio(s.mcp)
}

// Close releases the database connection.
func (s *Server) Close() error {
	return s.registry.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(initDatabaseTool(), s.handleInitDatabase)
	s.mcp.AddTool(runSQLTool(), s.handleRunSQL)
	s.mcp.AddTool(saveAssetTool(), s.handleSaveAsset)
	s.mcp.AddTool(openVaultTool(), s.handleOpenVault)
	s.mcp.AddTool(uploadImageTool(), s.handleUploadImage)
	s.mcp.AddTool(migrationStatusTool(), s.handleMigrationStatus)

	return nil
}

// openVault opens path and remembers it when it is writable.
func (s *Server) openVault(ctx context.Context, path string) (*vault.OpenResult, error) {
	res, err := s.vaults.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if !res.ReadOnly && s.configPath != "" {
		if err := config.RememberVault(s.configPath, path); err != nil {
			s.log.Warn("failed to remember vault", "path", path, "error", err)
		}
	}
	return res, nil
}
