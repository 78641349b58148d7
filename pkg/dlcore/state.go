package dlcore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
)

// FileStatus is the lifecycle state of one object's download.
type FileStatus string

const (
	StatusPending     FileStatus = "pending"
	StatusDownloading FileStatus = "downloading"
	StatusDownloaded  FileStatus = "downloaded"
	StatusVerified    FileStatus = "verified"
	StatusFailed      FileStatus = "failed"
)

// FileRecord is the mutable per-object progress entry in a DownloadState.
type FileRecord struct {
	Size          int64      `json:"size"`
	Downloaded    int64      `json:"downloaded"`
	Md5Expected   *string    `json:"md5_expected"`
	Md5Calculated *string    `json:"md5_calculated"`
	Status        FileStatus `json:"status"`
}

// DownloadState is the checkpoint document for one project's download run,
// keyed on disk by Project. Files maps a rel-key (project-prefix-stripped
// object key) to its FileRecord.
type DownloadState struct {
	Project  string                 `json:"project"`
	Bucket   string                 `json:"bucket"`
	Region   string                 `json:"region"`
	SavePath string                 `json:"save_path"`
	Files    map[string]*FileRecord `json:"files"`
}

// NewDownloadState returns an empty state document for project/bucket/
// region/savePath.
func NewDownloadState(project, bucket, region, savePath string) *DownloadState {
	return &DownloadState{
		Project:  project,
		Bucket:   bucket,
		Region:   region,
		SavePath: savePath,
		Files:    make(map[string]*FileRecord),
	}
}

// StateStore persists and reloads a DownloadState, serializing every
// access behind a single mutex. Callers must go through the With helper
// for any read-modify-write of the in-memory state so that concurrent
// workers never observe a torn update.
type StateStore struct {
	mu    sync.Mutex
	state *DownloadState
}

// NewStateStore wraps an initial state for exclusive access.
func NewStateStore(state *DownloadState) *StateStore {
	return &StateStore{state: state}
}

// With runs fn with the store's lock held and the current state passed in.
// fn must not perform network or file I/O, to keep critical sections
// short, and must not call Save, which takes the same lock.
func (s *StateStore) With(fn func(*DownloadState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Snapshot returns a shallow copy of the current state for read-only use
// (e.g. producing a final report) without holding the lock afterward.
func (s *StateStore) Snapshot() DownloadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.state
	return cp
}

func stateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".onestep-aws", "tasks")
}

func statePath(project string) string {
	return filepath.Join(stateDir(), project+".json")
}

// Save serializes the current state to its well-known path, writing via
// a temp-file-plus-rename so an on-disk state file either parses
// successfully or does not exist.
func (s *StateStore) Save() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.state, "", "  ")
	project := s.state.Project
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStateIo, err)
	}

	dir := stateDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: cannot create state dir: %v", ErrStateIo, err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.json.tmp.%d", project, os.Getpid()))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: cannot write temp state file: %v", ErrStateIo, err)
	}

	final := statePath(project)
	if err := moveFile(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: cannot commit state file: %v", ErrStateIo, err)
	}
	return nil
}

// LoadState returns the stored state for project if it exists and parses.
// A missing file returns (nil, nil). A file that exists but fails to parse
// is treated as absent, per the implementation choice recorded for
// StateFormatError on load.
func LoadState(project string) (*DownloadState, error) {
	path := statePath(project)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStateIo, err)
	}

	var state DownloadState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, nil
	}
	if state.Files == nil {
		state.Files = make(map[string]*FileRecord)
	}
	return &state, nil
}
