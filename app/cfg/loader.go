package cfg

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Network configuration
	UserAgent       string `long:"user-agent" env:"USER_AGENT" default:"PodDL/1.0" description:"User agent string for HTTP requests"`
	FeedTimeout     int    `long:"feed-timeout" env:"FEED_TIMEOUT" default:"30" description:"Feed request timeout in seconds (0 disables the timeout)"`
	DownloadTimeout int    `long:"download-timeout" env:"DOWNLOAD_TIMEOUT" default:"0" description:"Episode download timeout in seconds (0 disables the timeout)"`

	// Application configuration
	HistoryDB string `long:"history-db" env:"HISTORY_DB" description:"SQLite file recording every completed download (optional)"`
	DryRun    bool   `long:"dry-run" env:"DRY_RUN" description:"Check feeds and report new episodes without downloading them"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Args struct {
		ConfigFile string `positional-arg-name:"CONFIG" description:"Path to the podcast configuration file" required:"yes"`
	} `positional-args:"yes"`
}

// UsageError reports malformed invocation arguments together with the usage text.
type UsageError struct {
	Err   error
	Usage string
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// Load parses command-line arguments and environment variables. It returns
// (nil, nil) when help was requested and printed.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "pod-dl"

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(flagsErr.Message)
			return nil, nil
		}
		return nil, usageError(parser, err)
	}

	if raw.FeedTimeout < 0 {
		return nil, usageError(parser, fmt.Errorf("feed timeout must be non-negative, got %d", raw.FeedTimeout))
	}
	if raw.DownloadTimeout < 0 {
		return nil, usageError(parser, fmt.Errorf("download timeout must be non-negative, got %d", raw.DownloadTimeout))
	}

	return &Cfg{
		ConfigFile:      raw.Args.ConfigFile,
		UserAgent:       raw.UserAgent,
		FeedTimeout:     time.Duration(raw.FeedTimeout) * time.Second,
		DownloadTimeout: time.Duration(raw.DownloadTimeout) * time.Second,
		HistoryDB:       raw.HistoryDB,
		DryRun:          raw.DryRun,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}, nil
}

func usageError(parser *flags.Parser, err error) error {
	var usage bytes.Buffer
	parser.WriteHelp(&usage)
	return &UsageError{Err: err, Usage: usage.String()}
}
