package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/server"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/summary"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	level := new(slog.LevelVar)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	log.Info("LiftLog starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel())

	// Run migrations
	if err := storage.RunMigrations(cfg.Database.Driver, cfg.Database.MigrateURL()); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied", "driver", cfg.Database.Driver)

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	if cfg.Catalog.Seed {
		if _, err := db.Seed(ctx, log); err != nil {
			log.Error("seeding catalog failed", "error", err)
			os.Exit(1)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewManager("liftlog", "server", reg)

	cat := catalog.New(db, cfg.Catalog.CacheMB, log)
	reader := history.NewReader(db, cat, cfg.Session.HistoryLimit)
	engine := session.New(db, cat, session.Options{
		DefaultWeight:    cfg.Session.DefaultWeight,
		DefaultReps:      cfg.Session.DefaultReps,
		MatchByRoutineID: cfg.Session.MatchByRoutineID,
		Metrics:          m,
	}, log)

	srv := server.New(server.Deps{
		DB:       db,
		Engine:   engine,
		Catalog:  cat,
		History:  reader,
		Analyzer: summary.NewAnalyzer(db, reader, cat),
		Alpha:    alpha.NewProvider(db, log),
		Metrics:  m,
		Gatherer: reg,

		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen failed", "addr", addr, "error", err)
		os.Exit(1)
	}
	log.Info("server starting", "addr", addr)

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	if engine.Running() {
		log.Warn("discarding unfinished workout session", "session", engine.Current().ID)
	}
	log.Info("server stopped")
}
