package database

// MarkerRepository reads and replaces per-podcast last-downloaded markers.
type MarkerRepository interface {
	ReadLast(path string) (string, bool, error)
	WriteLast(path, title string) error
}

// HistoryRecorder appends completed downloads to the history database and
// looks up what was downloaded before.
type HistoryRecorder interface {
	Record(download Download) error
	GetLastDownload(podcastID string) (*Download, error)
	GetDownloadCount(podcastID string) (int, error)
}

var (
	_ MarkerRepository = (*MarkerStore)(nil)
	_ HistoryRecorder  = (*HistoryRepository)(nil)
)
