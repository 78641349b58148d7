package dlcore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func withTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return dir
}

func TestStateSaveLoadRoundTrip(t *testing.T) {
	withTempHome(t)

	state := NewDownloadState("PROJ1", "bucket", "ap-northeast-1", "/tmp/dl")
	digest := "abc123"
	state.Files["file1.gz"] = &FileRecord{
		Size:        1000,
		Downloaded:  500,
		Md5Expected: &digest,
		Status:      StatusDownloading,
	}

	store := NewStateStore(state)
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadState("PROJ1")
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadState returned nil for saved project")
	}
	if loaded.Project != "PROJ1" {
		t.Errorf("Project = %q, want PROJ1", loaded.Project)
	}
	rec, ok := loaded.Files["file1.gz"]
	if !ok {
		t.Fatal("missing file1.gz record")
	}
	if rec.Downloaded != 500 || rec.Status != StatusDownloading {
		t.Errorf("record mismatch: %+v", rec)
	}
}

func TestLoadStateAbsentReturnsNil(t *testing.T) {
	withTempHome(t)
	state, err := LoadState("does-not-exist")
	if err != nil {
		t.Fatalf("expected no error for absent state, got %v", err)
	}
	if state != nil {
		t.Fatalf("expected nil state, got %+v", state)
	}
}

func TestLoadStateCorruptTreatedAsAbsent(t *testing.T) {
	withTempHome(t)
	dir := stateDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "BROKEN.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	state, err := LoadState("BROKEN")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if state != nil {
		t.Fatalf("expected nil state for corrupt file, got %+v", state)
	}
}

func TestSaveNeverLeavesPartialFile(t *testing.T) {
	withTempHome(t)
	state := NewDownloadState("ATOMIC", "b", "r", "/tmp")
	store := NewStateStore(state)
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(statePath("ATOMIC"))
	if err != nil {
		t.Fatalf("read saved state: %v", err)
	}
	var decoded DownloadState
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("saved state does not parse: %v", err)
	}

	entries, err := os.ReadDir(stateDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp.") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}
