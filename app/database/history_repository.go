package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// HistoryRepository handles database operations for completed downloads
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record appends a completed download
func (r *HistoryRepository) Record(download Download) error {
	downloadedAt := download.DownloadedAt
	if downloadedAt.IsZero() {
		downloadedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO downloads (podcast_id, title, enclosure_url, file_path, bytes, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, download.PodcastID, download.Title, download.EnclosureURL, download.FilePath, download.Bytes, downloadedAt.UTC().UnixNano())

	if err != nil {
		return fmt.Errorf("%w: failed to record download: %w", ErrStorage, err)
	}

	return nil
}

// GetLastDownload returns the most recent download of a podcast, or nil if there is none
func (r *HistoryRepository) GetLastDownload(podcastID string) (*Download, error) {
	var download Download
	var downloadedAt int64

	err := r.db.QueryRow(`
		SELECT id, podcast_id, title, enclosure_url, file_path, bytes, downloaded_at
		FROM downloads
		WHERE podcast_id = ?
		ORDER BY downloaded_at DESC, id DESC
		LIMIT 1
	`, podcastID).Scan(&download.ID, &download.PodcastID, &download.Title, &download.EnclosureURL,
		&download.FilePath, &download.Bytes, &downloadedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get last download: %w", ErrStorage, err)
	}

	download.DownloadedAt = time.Unix(0, downloadedAt).UTC()
	return &download, nil
}

// GetDownloadCount returns how many downloads were recorded for a podcast
func (r *HistoryRepository) GetDownloadCount(podcastID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM downloads WHERE podcast_id = ?`, podcastID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count downloads: %w", ErrStorage, err)
	}
	return count, nil
}
