package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"crdashboard/internal/cache"
	"crdashboard/internal/config"
	"crdashboard/internal/dashboard"
	"crdashboard/internal/database"
	"crdashboard/internal/mcptools"
	"crdashboard/internal/remote"
	"crdashboard/internal/server"
	"crdashboard/internal/settings"
)

var (
	// Version will be set during build
	Version = "dev"

	// Command line flags
	port         = flag.Int("port", 0, "Port to run the server on (default: 8080 or CRDASH_PORT)")
	dbPath       = flag.String("db", "", "Path to database file (default: data/crdashboard.db or CRDASH_DB_PATH)")
	settingsFile = flag.String("settings", "", "YAML file with repository settings, re-imported on change (default: CRDASH_SETTINGS_FILE)")
	version      = flag.Bool("version", false, "Print version information")
	prodMode     = flag.Bool("prod", false, "Enable production mode (secure cookies, quiet request logs)")
	cacheBackend = flag.String("cache", "", "Cache backend: sqlite (persists across restarts) or memory (default: sqlite or CRDASH_CACHE)")
	mcpStdio     = flag.Bool("mcp-stdio", false, "Serve the MCP tools on stdin/stdout instead of starting the HTTP server")
)

func main() {
	// Parse command line flags
	flag.Parse()

	// Check if version flag is set
	if *version {
		fmt.Printf("crdashboard version %s\n", Version)
		return
	}

	// Setup logging. stdout carries the protocol in MCP stdio mode.
	var logOut io.Writer = os.Stdout
	if *mcpStdio {
		logOut = os.Stderr
	}
	logger := log.New(logOut, "crdashboard: ", log.LstdFlags|log.Lshortfile)

	// Get base configuration from environment
	cfg := config.GetConfig()

	// Override with command line flags if provided
	if *port > 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *settingsFile != "" {
		cfg.SettingsFile = *settingsFile
	}
	if *prodMode {
		cfg.ProductionMode = true
	}
	if *cacheBackend != "" {
		cfg.CacheBackend = *cacheBackend
	}

	// Log startup configuration
	logger.Printf("Starting crdashboard v%s", Version)
	logger.Printf("Port: %d", cfg.Port)
	logger.Printf("Database: %s", cfg.DBPath)
	logger.Printf("Cache: %s", cfg.CacheBackend)
	logger.Printf("Mode: %s", map[bool]string{true: "production", false: "development"}[cfg.ProductionMode])

	// Create necessary directories
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Fatalf("Failed to create database directory: %v", err)
	}

	// Initialize database with optimized configuration
	db, err := database.NewDB(cfg.DBPath, database.DefaultConfig())
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := settings.NewStore(db)

	// Remote data pipeline
	cacheStore, err := newCacheStore(ctx, cfg.CacheBackend, db, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}
	if cfg.SettingsFile != "" {
		if st, err := importSettingsFile(ctx, store, cacheStore, cfg.SettingsFile); err != nil {
			logger.Printf("Settings file import failed: %v", err)
		} else {
			logger.Printf("Settings imported from %s (%s)", cfg.SettingsFile, st.Target())
		}
	}
	client := remote.NewClient(remote.ClientConfig{
		RawBaseURL: cfg.RawBaseURL,
		APIBaseURL: cfg.APIBaseURL,
		UserAgent:  "crdashboard/" + Version,
		Timeout:    15 * time.Second,
	}, logger)
	dash := dashboard.NewService(remote.NewSource(client, cacheStore, logger), store, logger)

	mcpServer := mcptools.NewServer(dash, Version, logger)
	if *mcpStdio {
		logger.Printf("Serving MCP tools on stdio")
		if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			logger.Fatalf("MCP server error: %v", err)
		}
		return
	}

	// Initialize server with configuration
	srv := server.NewServer(db, logger, dash, store, mcptools.Handler(mcpServer), server.Config{
		UseHTTPS:       cfg.ProductionMode,
		ProductionMode: cfg.ProductionMode,
		SiteURL:        cfg.SiteURL,
	})

	if cfg.SettingsFile != "" {
		err := settings.Watch(ctx, cfg.SettingsFile, settings.DefaultDebounce, logger, func() {
			if _, err := store.ImportFile(ctx, cfg.SettingsFile); err != nil {
				logger.Printf("Settings file re-import failed: %v", err)
				return
			}
			logger.Printf("Settings file changed, reloading")
			if err := srv.Invalidate(ctx, "settings_file"); err != nil {
				logger.Printf("Error clearing cache: %v", err)
			}
		})
		if err != nil {
			logger.Printf("Settings file watch disabled: %v", err)
		}
	}

	// Start server
	if err := srv.Start(ctx, cfg.GetAddress()); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
	logger.Printf("Server stopped")
}

// importSettingsFile applies the YAML settings file and empties the cache.
// Cached snapshots are keyed by path only and may belong to the repository
// configured before the import.
func importSettingsFile(ctx context.Context, store *settings.Store, cacheStore cache.Store, path string) (settings.Settings, error) {
	st, err := store.ImportFile(ctx, path)
	if err != nil {
		return settings.Settings{}, err
	}
	if err := cacheStore.Clear(ctx); err != nil {
		return st, fmt.Errorf("clearing cache after import: %w", err)
	}
	return st, nil
}

// newCacheStore returns the cache for backend. The sqlite cache is pruned of
// expired entries left by earlier runs.
func newCacheStore(ctx context.Context, backend string, db *database.DB, logger *log.Logger) (cache.Store, error) {
	switch backend {
	case config.CacheMemory:
		return cache.NewMemoryStore(), nil
	case config.CacheSQLite, "":
		store := cache.NewSQLiteStore(db.DB, logger)
		if n, err := store.Prune(ctx); err != nil {
			logger.Printf("Cache prune failed: %v", err)
		} else if n > 0 {
			logger.Printf("Pruned %d expired cache entries", n)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}
