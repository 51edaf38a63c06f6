package progress

import "time"

// Status is the acquisition phase reported to subscribers
type Status string

const (
	StatusIdle        Status = "idle"
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusLoading     Status = "loading"
	StatusComplete    Status = "complete"
	StatusFailed      Status = "failed"
)

// Event is one progress update for a model acquisition
type Event struct {
	Model           string    `json:"model"`
	Status          Status    `json:"status"`
	ProgressPercent float64   `json:"progress_percent"`
	BytesDownloaded int64     `json:"bytes_downloaded"`
	TotalBytes      int64     `json:"total_bytes"`
	Error           string    `json:"error,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// IsTerminal reports whether no further events follow
func (e Event) IsTerminal() bool {
	return e.Status == StatusComplete || e.Status == StatusFailed
}

// Reporter receives progress from a model loader while it acquires a model
type Reporter interface {
	// Downloading reports bytes written so far; total is 0 when unknown
	Downloading(downloaded, total int64)
	// Loading reports that the model file is present and being loaded
	Loading()
}

// NopReporter discards progress
type NopReporter struct{}

func (NopReporter) Downloading(int64, int64) {}
func (NopReporter) Loading()                 {}
