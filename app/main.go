package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lysyi3m/pod-dl/app/cfg"
	"github.com/lysyi3m/pod-dl/app/database"
	"github.com/lysyi3m/pod-dl/app/download"
	"github.com/lysyi3m/pod-dl/app/feed"
	"github.com/lysyi3m/pod-dl/app/logging"
	"github.com/lysyi3m/pod-dl/app/tasks"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	appCfg, err := cfg.Load(args)
	if err != nil {
		var usageErr *cfg.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "%v\n\n%s", usageErr.Err, usageErr.Usage)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		}
		return 1
	}
	if appCfg == nil {
		// Help was shown
		return 0
	}

	catalog, err := feed.LoadCatalog(appCfg.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load podcast configuration: %v\n", err)
		return 1
	}

	logger, logCloser, err := logging.Setup(logging.Options{
		Debug:     appCfg.Debug,
		LogFolder: catalog.LogFolder,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	slog.Info("Starting podcast downloader", "version", appCfg.Version, "config", appCfg.ConfigFile, "podcasts", len(catalog.Podcasts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var history database.HistoryRecorder
	if appCfg.HistoryDB != "" {
		db, err := database.NewConnection(appCfg.HistoryDB)
		if err != nil {
			slog.Error("Failed to open history database", "path", appCfg.HistoryDB, "error", err)
			return 1
		}
		defer db.Close()

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			slog.Error("Failed to migrate history database", "path", appCfg.HistoryDB, "error", err)
			return 1
		}
		slog.Debug("History database ready", "path", appCfg.HistoryDB, "version", version, "dirty", dirty)

		history = database.NewHistoryRepository(db)
	}

	httpClient := &http.Client{}
	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent, appCfg.FeedTimeout)
	downloader := download.NewDownloader(httpClient, appCfg.UserAgent, appCfg.DownloadTimeout)

	scheduler := tasks.NewScheduler(catalog, fetcher, downloader, database.NewMarkerStore(), history, appCfg.DryRun)
	scheduler.RunCycle(ctx, catalog.Podcasts)

	return 0
}
