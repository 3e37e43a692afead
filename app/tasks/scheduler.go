package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/pod-dl/app/database"
	"github.com/lysyi3m/pod-dl/app/feed"
)

// Scheduler runs one SyncFeedTask per podcast concurrently and waits for all
// of them. Results are only logged; a failed feed never affects the others.
type Scheduler struct {
	catalog    *feed.Catalog
	fetcher    FeedFetcher
	downloader MediaDownloader
	markers    database.MarkerRepository
	history    database.HistoryRecorder
	dryRun     bool
}

func NewScheduler(catalog *feed.Catalog, fetcher FeedFetcher, downloader MediaDownloader,
	markers database.MarkerRepository, history database.HistoryRecorder, dryRun bool) *Scheduler {
	return &Scheduler{
		catalog:    catalog,
		fetcher:    fetcher,
		downloader: downloader,
		markers:    markers,
		history:    history,
		dryRun:     dryRun,
	}
}

// RunCycle checks every podcast exactly once. It returns after every task has
// reached a terminal state; results are in the order of podcasts.
func (s *Scheduler) RunCycle(ctx context.Context, podcasts []feed.Podcast) []Result {
	started := time.Now()
	slog.Info("Checking for new podcasts", "feeds", len(podcasts), "dry_run", s.dryRun)

	results := make([]Result, len(podcasts))

	var wg sync.WaitGroup
	for i, podcast := range podcasts {
		task := NewSyncFeedTask(podcast, s.catalog, s.fetcher, s.downloader, s.markers, s.history, s.dryRun)

		wg.Add(1)
		go func(i int, task TaskInterface) {
			defer wg.Done()
			results[i] = s.executeTask(ctx, task)
		}(i, task)
	}

	slog.Debug("Waiting for podcasts to finish")
	wg.Wait()

	downloaded, pending, skipped, failed := 0, 0, 0, 0
	for _, result := range results {
		switch result.Outcome {
		case OutcomeDownloaded:
			downloaded++
		case OutcomeWouldDownload:
			pending++
		case OutcomeSkipped:
			skipped++
		case OutcomeFailed:
			failed++
		}
	}

	slog.Info("Done checking podcasts",
		"duration", time.Since(started),
		"downloaded", downloaded,
		"would_download", pending,
		"skipped", skipped,
		"failed", failed)

	return results
}

func (s *Scheduler) executeTask(ctx context.Context, task TaskInterface) Result {
	task.Start()
	result := task.Execute(ctx)

	switch result.Outcome {
	case OutcomeFailed:
		slog.Error("Task failed",
			"type", string(task.GetType()),
			"id", task.GetID(),
			"feed", result.PodcastID,
			"url", result.FeedURL,
			"stage", string(result.Stage),
			"error", result.Err)
	case OutcomeSkipped:
		slog.Info("Task completed",
			"type", string(task.GetType()),
			"feed", result.PodcastID,
			"outcome", string(result.Outcome),
			"title", result.Title,
			"duration", result.Duration)
	default:
		slog.Info("Task completed",
			"type", string(task.GetType()),
			"feed", result.PodcastID,
			"outcome", string(result.Outcome),
			"title", result.Title,
			"previous", result.PrevTitle,
			"enclosure", result.EnclosureURL,
			"file", result.FilePath,
			"bytes", result.Bytes,
			"duration", result.Duration)
	}

	return result
}
