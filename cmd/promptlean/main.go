// Package main provides the promptlean entry point.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/logger"

	"github.com/promptlean/promptlean/internal/api"
	"github.com/promptlean/promptlean/internal/config"
	db "github.com/promptlean/promptlean/internal/db/gorm"
	"github.com/promptlean/promptlean/internal/generation"
	"github.com/promptlean/promptlean/internal/report"
	"github.com/promptlean/promptlean/internal/session"
	"github.com/promptlean/promptlean/internal/watcher"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	dataDir := flag.String("data-dir", "", "Data directory (default: ~/.promptlean)")
	listen := flag.String("listen", "", "HTTP listen address (overrides settings)")
	export := flag.String("export", "", "Write a CSV usage report to the given path (- for stdout) and exit")
	windowFlag := flag.String("window", "all", "Report window: day, week, month, year, all")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	if err := config.EnsureDataDir(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure data directory")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load settings, using defaults")
		cfg = config.Default()
	}

	dbPath := config.DBPath()
	if *dataDir != "" {
		dbPath = filepath.Join(*dataDir, "promptlean.db")
	}

	store, err := db.NewStore(db.Config{
		Path:     dbPath,
		MaxConns: cfg.MaxConns,
		LogLevel: logger.Silent,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer store.Close()

	client := generation.NewHTTPClient(generation.Config{
		BaseURL: cfg.APIBaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	sess := session.New(store, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sess.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load session state")
	}

	if *export != "" {
		window, err := report.ParseWindow(*windowFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid report window")
		}
		runExport(sess, window, *export)
		return
	}

	addr := cfg.ListenAddr
	if *listen != "" {
		addr = *listen
	}

	startSettingsWatcher()

	server := &http.Server{
		Addr:    addr,
		Handler: api.NewServer(sess, Version).Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Str("version", Version).Msg("Starting promptlean API")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-gctx.Done():
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("Shutting down")
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}

// runExport writes a one-shot CSV report. An empty report produces no file
// at all; the buffer is only flushed after a successful export.
func runExport(sess *session.Session, window report.Window, path string) {
	var buf bytes.Buffer
	err := sess.WriteReportCSV(&buf, window, time.Now())
	if errors.Is(err, report.ErrEmptyReport) {
		log.Info().Str("window", string(window)).Msg("No usage to export")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build report")
	}

	if path == "-" {
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			log.Fatal().Err(err).Msg("Failed to write report")
		}
		return
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report file")
	}
	log.Info().Str("path", path).Str("window", string(window)).Msg("Report exported")
}

// startSettingsWatcher exits the process when the settings file changes;
// a supervisor restarts it with the new configuration.
func startSettingsWatcher() {
	settingsPath := config.SettingsPath()
	w, err := watcher.New(settingsPath, func() {
		log.Warn().Str("path", settingsPath).Msg("Settings changed, exiting for restart")
		time.Sleep(100 * time.Millisecond) // Give logs time to flush
		os.Exit(0)
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create settings watcher")
		return
	}
	if err := w.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start settings watcher")
	}
}
