package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/engine"
	"github.com/claude/ironlog/internal/mcp"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/tracker"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Serves MCP over stdio. Two modes: -url points at a running IronLog server
// (remote data), otherwise -config opens the local store directly.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remoteURL := flag.String("url", "", "base URL of a running IronLog server (remote mode)")
	flag.Parse()

	// Logs go to stderr; stdout is the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var ds mcp.DataSource

	if *remoteURL != "" {
		ds = mcp.NewHTTPClient(*remoteURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}

		ctx := context.Background()
		var store storage.Store
		switch cfg.Storage.Backend {
		case "postgres":
			store, err = storage.NewPostgres(ctx, cfg.Storage.Database.DSN())
		default:
			store, err = storage.OpenSQLite(cfg.Storage.Path)
		}
		if err != nil {
			log.Error("failed to open storage", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		svc, err := tracker.New(ctx, store, engine.RampAdvisor{}, log)
		if err != nil {
			log.Error("failed to initialize tracker", "error", err)
			os.Exit(1)
		}
		ds = mcp.NewLocalSource(svc)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
