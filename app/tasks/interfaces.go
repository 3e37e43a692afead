package tasks

import (
	"context"

	"github.com/lysyi3m/pod-dl/app/download"
	"github.com/lysyi3m/pod-dl/app/feed"
)

// FeedFetcher returns the first item of a feed in document order.
type FeedFetcher interface {
	FetchNewest(ctx context.Context, feedURL string) (*feed.Item, error)
}

// MediaDownloader streams a resource into a destination folder.
type MediaDownloader interface {
	Fetch(ctx context.Context, resourceURL, destDir string) (*download.Result, error)
}

// CycleRunner checks every podcast once and waits for all of them.
// Example usage:
//
//	scheduler := NewScheduler(catalog, fetcher, downloader, markers, history, false)
//	results := scheduler.RunCycle(ctx, catalog.Podcasts)
type CycleRunner interface {
	RunCycle(ctx context.Context, podcasts []feed.Podcast) []Result
}

var (
	_ FeedFetcher     = (*feed.Fetcher)(nil)
	_ MediaDownloader = (*download.Downloader)(nil)
	_ CycleRunner     = (*Scheduler)(nil)
	_ TaskInterface   = (*SyncFeedTask)(nil)
)
