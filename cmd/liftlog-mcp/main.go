package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/summary"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	remote := flag.String("server", "", "liftlog server URL; when set, data is read over HTTP instead of from the database")
	flag.Parse()

	// stdout carries the MCP protocol
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *remote != "" {
		ds = mcp.NewHTTPClient(*remote)
		log.Info("using remote data source", "server", *remote)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		if err := storage.RunMigrations(cfg.Database.Driver, cfg.Database.MigrateURL()); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.Driver, cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		cat := catalog.New(db, cfg.Catalog.CacheMB, log)
		reader := history.NewReader(db, cat, cfg.Session.HistoryLimit)
		ds = mcp.NewLocal(db, reader, summary.NewAnalyzer(db, reader, cat))
	}

	if err := server.ServeStdio(mcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
