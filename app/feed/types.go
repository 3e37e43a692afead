package feed

import (
	"path/filepath"

	"github.com/google/uuid"
)

// Feed processing types

const (
	RelEnclosure = "enclosure"
	RelAlternate = "alternate"
)

// Item is the newest entry of a feed, reduced to what a sync needs.
type Item struct {
	Title string // dedup key, compared exactly
	Links []Link
}

type Link struct {
	Rel       string
	URL       string
	MediaType string
	Length    int64 // bytes, zero when unknown
}

// EnclosureURL returns the location of the first link whose relationship is "enclosure".
func (i *Item) EnclosureURL() (string, error) {
	for _, link := range i.Links {
		if link.Rel == RelEnclosure && link.URL != "" {
			return link.URL, nil
		}
	}
	return "", ErrNoEnclosureFound
}

// Configuration types

type Catalog struct {
	DownloadFolder         string    `yaml:"DownloadFolder"`
	LogFolder              string    `yaml:"LogFolder"`
	LastDownloadedFileName string    `yaml:"LastDownloadedFileName"`
	Podcasts               []Podcast `yaml:"Podcasts"`
}

type Podcast struct {
	ID                uuid.UUID `yaml:"Id"` // derived from RssURL when absent
	RssURL            string    `yaml:"RssUrl"`
	DownloadSubFolder string    `yaml:"DownloadSubFolder"`
}

// DownloadDir is the folder receiving the podcast's episodes and marker file.
func (c *Catalog) DownloadDir(p Podcast) string {
	return filepath.Join(c.DownloadFolder, p.DownloadSubFolder)
}

// MarkerPath is the location of the podcast's last-downloaded marker file.
func (c *Catalog) MarkerPath(p Podcast) string {
	return filepath.Join(c.DownloadDir(p), c.LastDownloadedFileName)
}
