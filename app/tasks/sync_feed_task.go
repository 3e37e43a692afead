package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lysyi3m/pod-dl/app/database"
	"github.com/lysyi3m/pod-dl/app/feed"
)

// SyncFeedTask checks one podcast: fetch the newest item, compare it with the
// marker, download the enclosure and record the new title. Every failure ends
// the task with a failed Result; nothing is returned as an error or retried.
type SyncFeedTask struct {
	Task
	Podcast    feed.Podcast
	catalog    *feed.Catalog
	fetcher    FeedFetcher
	downloader MediaDownloader
	markers    database.MarkerRepository
	history    database.HistoryRecorder // optional
	dryRun     bool
}

func NewSyncFeedTask(podcast feed.Podcast, catalog *feed.Catalog, fetcher FeedFetcher, downloader MediaDownloader, markers database.MarkerRepository, history database.HistoryRecorder, dryRun bool) *SyncFeedTask {
	return &SyncFeedTask{
		Task:       NewTask(TaskTypeSyncFeed, podcast.ID.String()),
		Podcast:    podcast,
		catalog:    catalog,
		fetcher:    fetcher,
		downloader: downloader,
		markers:    markers,
		history:    history,
		dryRun:     dryRun,
	}
}

func (t *SyncFeedTask) Execute(ctx context.Context) (result Result) {
	result = Result{
		PodcastID: t.FeedName,
		FeedURL:   t.Podcast.RssURL,
		Stage:     StageFetch,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("panic during %s: %v", result.Stage, r)
		}
		result.Duration = t.GetDuration()
	}()

	select {
	case <-ctx.Done():
		return t.fail(result, fmt.Errorf("cancelled before start: %w", ctx.Err()))
	default:
	}

	item, err := t.fetcher.FetchNewest(ctx, t.Podcast.RssURL)
	if err != nil {
		return t.fail(result, fmt.Errorf("could not find newest item for podcast %s: %w", t.Podcast.RssURL, err))
	}
	result.Title = item.Title

	result.Stage = StageEnclosure
	enclosureURL, err := item.EnclosureURL()
	if err != nil {
		return t.fail(result, fmt.Errorf("could not find newest item enclosure for podcast %s: %w", t.Podcast.RssURL, err))
	}
	result.EnclosureURL = enclosureURL

	result.Stage = StageCompare
	markerPath := t.catalog.MarkerPath(t.Podcast)
	lastTitle, found, err := t.markers.ReadLast(markerPath)
	if err != nil {
		return t.fail(result, fmt.Errorf("could not read last downloaded title: %w", err))
	}
	if found && lastTitle == item.Title {
		slog.Debug("No new episode", "feed", t.FeedName, "title", item.Title)
		result.Outcome = OutcomeSkipped
		result.Stage = StageDone
		return result
	}

	result.PrevTitle = t.previousDownload()

	if t.dryRun {
		result.Outcome = OutcomeWouldDownload
		result.Stage = StageDone
		return result
	}

	result.Stage = StageDownload
	downloadDir := t.catalog.DownloadDir(t.Podcast)
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return t.fail(result, fmt.Errorf("%w: failed to create download folder: %w", database.ErrStorage, err))
	}

	slog.Info("Downloading podcast", "feed", t.FeedName, "url", enclosureURL, "folder", downloadDir)

	downloaded, err := t.downloader.Fetch(ctx, enclosureURL, downloadDir)
	if err != nil {
		return t.fail(result, fmt.Errorf("error downloading newest podcast for %s: %w", t.Podcast.RssURL, err))
	}
	result.FilePath = downloaded.FilePath
	result.Bytes = downloaded.Bytes

	result.Stage = StageRecord
	if err := t.markers.WriteLast(markerPath, item.Title); err != nil {
		return t.fail(result, fmt.Errorf("could not record downloaded title: %w", err))
	}

	if t.history != nil {
		err := t.history.Record(database.Download{
			PodcastID:    t.FeedName,
			Title:        item.Title,
			EnclosureURL: enclosureURL,
			FilePath:     downloaded.FilePath,
			Bytes:        downloaded.Bytes,
			DownloadedAt: time.Now().UTC(),
		})
		if err != nil {
			slog.Warn("Failed to record download history", "feed", t.FeedName, "error", err)
		}
	}

	result.Outcome = OutcomeDownloaded
	result.Stage = StageDone
	return result
}

// previousDownload returns the title of the last recorded download, or an
// empty string when there is no history. Lookup failures are only logged.
func (t *SyncFeedTask) previousDownload() string {
	if t.history == nil {
		return ""
	}

	last, err := t.history.GetLastDownload(t.FeedName)
	if err != nil {
		slog.Warn("Failed to read download history", "feed", t.FeedName, "error", err)
		return ""
	}
	if last == nil {
		slog.Debug("No previous download recorded", "feed", t.FeedName)
		return ""
	}

	count, err := t.history.GetDownloadCount(t.FeedName)
	if err != nil {
		slog.Warn("Failed to count download history", "feed", t.FeedName, "error", err)
	}
	slog.Debug("Previous download", "feed", t.FeedName, "title", last.Title,
		"downloaded_at", last.DownloadedAt, "downloads", count)

	return last.Title
}

func (t *SyncFeedTask) fail(result Result, err error) Result {
	result.Outcome = OutcomeFailed
	result.Err = err
	return result
}
