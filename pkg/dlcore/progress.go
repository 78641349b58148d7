package dlcore

import "github.com/zhachao2010/one-step-aws/pkg/dlog"

// FileProgressEvent reports the current transfer state of one object.
type FileProgressEvent struct {
	FileKey    string
	Downloaded int64
	Total      int64
	SpeedBps   int64
}

// OverallProgressEvent reports the aggregate state of a download run.
type OverallProgressEvent struct {
	TotalFiles      int
	CompletedFiles  int
	TotalBytes      int64
	DownloadedBytes int64
	SpeedBps        int64
	Phase           string
}

const (
	PhaseListing     = "listing"
	PhaseDownloading = "downloading"
	PhaseVerifying   = "verifying"
	PhaseDone        = "done"
)

// Handlers is the set of optional callbacks the orchestrator invokes to
// report progress. Nil fields are no-ops. Handlers are invoked
// synchronously from the orchestrator and its workers, so a slow handler
// slows the download that emitted the event.
type Handlers struct {
	OnFileProgress    func(FileProgressEvent)
	OnOverallProgress func(OverallProgressEvent)

	// Logger receives best-effort diagnostics (checkpoint write failures,
	// manifest key collisions) that must never fail a download. Defaults
	// to a no-op logger when unset.
	Logger dlog.Logger
}

func (h *Handlers) setDefaults() {
	if h.OnFileProgress == nil {
		h.OnFileProgress = func(FileProgressEvent) {}
	}
	if h.OnOverallProgress == nil {
		h.OnOverallProgress = func(OverallProgressEvent) {}
	}
	if h.Logger == nil {
		h.Logger = dlog.NopLogger{}
	}
}
