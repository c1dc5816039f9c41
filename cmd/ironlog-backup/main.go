package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/claude/ironlog/internal/backup"
	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/engine"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/tracker"
)

// Exports or imports a backup file against the local store, for use when
// the server is not running.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("export", "", "write a backup to this file (empty = ironlog_backup_DATE.json)")
	importPath := flag.String("import", "", "restore from this backup file")
	doExport := flag.Bool("do-export", false, "run an export")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if !*doExport && *importPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: ironlog-backup -config config.yaml [-do-export [-export FILE] | -import FILE]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var store storage.Store
	switch cfg.Storage.Backend {
	case "postgres":
		dsn := cfg.Storage.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		store, err = storage.NewPostgres(ctx, dsn)
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

	switch {
	case *importPath != "":
		data, err := os.ReadFile(*importPath)
		if err != nil {
			log.Error("reading backup file failed", "error", err)
			os.Exit(1)
		}
		doc, err := svc.ImportBackup(ctx, data)
		if err != nil {
			log.Error("import failed", "error", err)
			os.Exit(1)
		}
		log.Info("import complete",
			"sessions", len(doc.Sessions),
			"templates", len(doc.Templates),
			"prs", len(doc.SavedPRs),
		)

	case *doExport:
		data, err := svc.ExportBackup()
		if err != nil {
			log.Error("export failed", "error", err)
			os.Exit(1)
		}
		path := *exportPath
		if path == "" {
			path = backup.Filename(time.Now())
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Error("writing backup file failed", "error", err)
			os.Exit(1)
		}
		log.Info("export complete", "path", path, "bytes", len(data))
	}
}
