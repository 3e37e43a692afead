package database

import (
	"time"
)

// Download is one completed episode download.
type Download struct {
	ID           int64
	PodcastID    string
	Title        string
	EnclosureURL string
	FilePath     string
	Bytes        int64
	DownloadedAt time.Time
}
