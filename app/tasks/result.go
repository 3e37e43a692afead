package tasks

import "time"

type Outcome string

const (
	OutcomeDownloaded    Outcome = "downloaded"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeWouldDownload Outcome = "would_download" // dry run
	OutcomeFailed        Outcome = "failed"
)

// Stage is the step of a feed sync that was running when it terminated.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageEnclosure Stage = "enclosure"
	StageCompare   Stage = "compare"
	StageDownload  Stage = "download"
	StageRecord    Stage = "record"
	StageDone      Stage = "done"
)

// Result is the terminal state of one feed sync. Err is set only when
// Outcome is OutcomeFailed.
type Result struct {
	PodcastID    string
	FeedURL      string
	Outcome      Outcome
	Stage        Stage
	Title        string
	EnclosureURL string
	PrevTitle    string // last recorded download, only with a history database
	FilePath     string
	Bytes        int64
	Duration     time.Duration
	Err          error
}

func (r Result) Failed() bool {
	return r.Outcome == OutcomeFailed
}
