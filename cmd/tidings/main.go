package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/glabrego/tidings/internal/app"
	"github.com/glabrego/tidings/internal/config"
	"github.com/glabrego/tidings/internal/content"
	"github.com/glabrego/tidings/internal/feed"
	"github.com/glabrego/tidings/internal/logging"
	"github.com/glabrego/tidings/internal/storage"
	"github.com/glabrego/tidings/internal/tui"
)

func main() {
	var configPath, dbPath, logPath string
	var maxEntryAgeDays int

	flags := pflag.NewFlagSet("tidings", pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to config.toml (default: <user config dir>/tidings/config.toml)")
	flags.StringVar(&dbPath, "db", "", "path to the SQLite database (overrides config)")
	flags.StringVar(&logPath, "log", "", "path to the log file (overrides config)")
	flags.IntVar(&maxEntryAgeDays, "max-entry-age", -1, "delete entries older than this many days at startup; 0 keeps everything (overrides config)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatalf("flag error: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logPath != "" {
		cfg.LogPath = logPath
	}
	if maxEntryAgeDays >= 0 {
		cfg.MaxEntryAgeDays = maxEntryAgeDays
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, logCloser, err := logging.Open(cfg.LogPath, slog.LevelInfo)
	if err != nil {
		log.Fatalf("logging init error: %v", err)
	}
	defer logCloser.Close()

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("cannot create data dir %s: %v", dir, err)
		}
	}
	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Init writes the schema, so it doubles as the writability check.
	if err := repo.Init(ctx); err != nil {
		log.Fatalf("storage schema error (%v). Verify %s is writable", err, cfg.DBPath)
	}

	service := app.NewService(
		feed.NewFetcher(nil),
		content.NewResolver(nil),
		repo,
		app.Options{
			SyncTimeout:    cfg.SyncTimeout,
			ResolveTimeout: cfg.ResolveTimeout,
			MaxParallel:    cfg.MaxParallel,
			MaxEntryAge:    cfg.MaxEntryAge(),
			Logger:         logger,
		},
	)

	if _, err := service.ExpireOldEntries(ctx); err != nil {
		logger.Warn("startup expiry failed", "error", err)
	}

	feeds, err := service.Load(ctx)
	if err != nil {
		log.Fatalf("cannot load stored feeds: %v", err)
	}

	logger.Info("starting", "db", cfg.DBPath, "feeds", len(feeds))
	model := tui.NewModel(service, feeds)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}
