package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

var ErrTransfer = errors.New("transfer error")

// StatusError reports a media request answered with a status other than 200.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status: %s", e.Status)
}

// Result describes a completed transfer.
type Result struct {
	FilePath string
	Bytes    int64
}

// Downloader streams episode media into a destination folder.
type Downloader struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewDownloader(httpClient *http.Client, userAgent string, timeout time.Duration) *Downloader {
	return &Downloader{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// FileName returns the last path segment of resourceURL.
func FileName(resourceURL string) (string, error) {
	u, err := url.Parse(resourceURL)
	if err != nil {
		return "", fmt.Errorf("invalid resource URL: %w", err)
	}

	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("resource URL has no file name: %s", resourceURL)
	}

	return name, nil
}

// Fetch downloads resourceURL into destDir, replacing any file of the same
// name. A failed transfer may leave a partial file behind.
func (d *Downloader) Fetch(ctx context.Context, resourceURL, destDir string) (*Result, error) {
	name, err := FileName(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransfer, err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create destination folder: %w", ErrTransfer, err)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", resourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrTransfer, err)
	}

	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch resource: %w", ErrTransfer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w", ErrTransfer, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status})
	}

	filePath := filepath.Join(destDir, name)
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create file: %w", ErrTransfer, err)
	}

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: failed to write %s: %w", ErrTransfer, filePath, err)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("%w: failed to close %s: %w", ErrTransfer, filePath, err)
	}

	return &Result{FilePath: filePath, Bytes: written}, nil
}
