package cfg

import "time"

type Cfg struct {
	// Podcast configuration file (positional argument)
	ConfigFile string

	// Network configuration
	UserAgent       string
	FeedTimeout     time.Duration // zero means unbounded
	DownloadTimeout time.Duration // zero means unbounded

	// Application configuration
	HistoryDB string
	DryRun    bool
	Debug     bool
	Version   string
}
