package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const DefaultMarkerFileName = "last_downloaded.txt"

// LoadCatalog reads the podcast configuration file. The file is JSON, which
// the YAML decoder accepts as flow syntax.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	catalog, err := parseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := validateCatalog(catalog); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	slog.Debug("Configuration loaded", "file", path, "podcasts", len(catalog.Podcasts))
	return catalog, nil
}

func parseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, err
	}

	if catalog.LastDownloadedFileName == "" {
		catalog.LastDownloadedFileName = DefaultMarkerFileName
	}

	for i := range catalog.Podcasts {
		podcast := &catalog.Podcasts[i]
		if podcast.ID == uuid.Nil && podcast.RssURL != "" {
			podcast.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(podcast.RssURL))
		}
	}

	return &catalog, nil
}

func validateCatalog(catalog *Catalog) error {
	if catalog.DownloadFolder == "" {
		return fmt.Errorf("download folder is required")
	}

	if filepath.Base(catalog.LastDownloadedFileName) != catalog.LastDownloadedFileName {
		return fmt.Errorf("last downloaded file name must not contain a path: %s", catalog.LastDownloadedFileName)
	}

	subFolders := make(map[string]int, len(catalog.Podcasts))
	for i, podcast := range catalog.Podcasts {
		if podcast.RssURL == "" {
			return fmt.Errorf("podcast at index %d: feed URL is required", i)
		}
		if podcast.DownloadSubFolder == "" {
			return fmt.Errorf("podcast at index %d: download sub-folder is required", i)
		}

		key := filepath.Clean(podcast.DownloadSubFolder)
		if prev, ok := subFolders[key]; ok {
			return fmt.Errorf("podcast at index %d: download sub-folder %q already used by podcast at index %d", i, podcast.DownloadSubFolder, prev)
		}
		subFolders[key] = i
	}

	return nil
}
