package dlcore

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// checkpointThreshold is the byte interval at which an in-flight worker
// persists its downloaded count to the state file. Implemented as an
// accumulator reset on each save rather than a modulo test against total
// bytes downloaded, which can both double-fire and skip the boundary for
// small or large chunk sizes.
const checkpointThreshold = 10 * 1024 * 1024

// chunkSize is the read buffer size used while streaming object bodies.
const chunkSize = 256 * 1024

// VerifyResult is the outcome of one data object's download-and-verify
// cycle, as returned by RunDownload.
type VerifyResult struct {
	FileKey    string
	Status     string // "match" | "mismatch" | "no_md5" | "error: ..."
	Expected   *string
	Calculated *string
}

type workerOutcome struct {
	rel    string
	digest string
	err    error
}

// RunDownload executes the five-phase plan→stream→verify pipeline for
// every data object under bucket/project, writing files under savePath
// and checkpointing progress to the on-disk state file for project.
// concurrency bounds the number of simultaneously active workers; zero or
// negative values fall back to the default of 3.
func RunDownload(
	ctx context.Context,
	listing *ListingAdapter,
	fetch *ObjectFetchAdapter,
	bucket, region, project, savePath string,
	concurrency int,
	handlers Handlers,
) ([]VerifyResult, error) {
	handlers.setDefaults()
	if concurrency <= 0 {
		concurrency = 3
	}

	// Phase L — Listing.
	handlers.OnOverallProgress(OverallProgressEvent{Phase: PhaseListing})
	descriptors, err := listing.List(ctx, bucket, project)
	if err != nil {
		return nil, err
	}

	var manifests, data []ObjectDescriptor
	for _, d := range descriptors {
		if d.IsManifest {
			manifests = append(manifests, d)
		} else {
			data = append(data, d)
		}
	}

	// Phase M — Manifest ingestion.
	checksums := make(ChecksumMap)
	for _, m := range manifests {
		body, err := fetch.FetchAll(ctx, bucket, m.Key)
		if err != nil {
			return nil, err
		}
		for k, v := range Parse(bytes.NewReader(body)) {
			if prev, dup := checksums[k]; dup && prev != v {
				handlers.Logger.Warning("manifest %s overrides checksum for %s (%s -> %s)", m.Key, k, prev, v)
			}
			checksums[k] = v
		}
	}

	// Phase P — Plan reconciliation.
	prefix := project
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	existing, err := LoadState(project)
	if err != nil {
		return nil, err
	}
	var state *DownloadState
	if existing != nil && existing.SavePath == savePath {
		state = existing
	} else {
		state = NewDownloadState(project, bucket, region, savePath)
	}

	store := NewStateStore(state)
	store.With(func(s *DownloadState) {
		for _, d := range data {
			rel := strings.TrimPrefix(d.Key, prefix)
			if rel == "" {
				rel = d.Key
			}
			bn := Basename(d.Key)

			rec, ok := s.Files[rel]
			if !ok || rec.Status == StatusFailed {
				var expected *string
				if digest, found := checksums[bn]; found {
					expected = &digest
				}
				s.Files[rel] = &FileRecord{
					Size:        d.Size,
					Downloaded:  0,
					Md5Expected: expected,
					Status:      StatusPending,
				}
			}
		}
	})
	if err := store.Save(); err != nil {
		return nil, err
	}

	var totalBytes int64
	for _, d := range data {
		totalBytes += d.Size
	}
	handlers.OnOverallProgress(OverallProgressEvent{
		Phase:      PhaseDownloading,
		TotalFiles: len(data),
		TotalBytes: totalBytes,
	})

	// Phase D — Concurrent streaming.
	type workItem struct {
		rel string
		obj ObjectDescriptor
	}
	var work []workItem
	store.With(func(s *DownloadState) {
		for _, d := range data {
			rel := strings.TrimPrefix(d.Key, prefix)
			if rel == "" {
				rel = d.Key
			}
			rec := s.Files[rel]
			if rec != nil && (rec.Status == StatusVerified || rec.Status == StatusDownloaded) {
				continue
			}
			work = append(work, workItem{rel: rel, obj: d})
		}
	})

	sem := make(chan struct{}, concurrency)
	outcomes := make([]workerOutcome, 0, len(work))
	var outcomesMu sync.Mutex
	var wg sync.WaitGroup

	for _, item := range work {
		wg.Add(1)
		go func(item workItem) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				outcomesMu.Lock()
				outcomes = append(outcomes, workerOutcome{rel: item.rel, err: ctx.Err()})
				outcomesMu.Unlock()
				return
			}
			defer func() { <-sem }()

			digest, err := runWorker(ctx, fetch, store, handlers, bucket, savePath, item.rel, item.obj)
			outcomesMu.Lock()
			outcomes = append(outcomes, workerOutcome{rel: item.rel, digest: digest, err: err})
			outcomesMu.Unlock()
		}(item)
	}
	wg.Wait()

	// Phase V — Verification and final report.
	results := make([]VerifyResult, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			results = append(results, VerifyResult{
				FileKey: o.rel,
				Status:  "error: " + o.err.Error(),
			})
			continue
		}

		var result VerifyResult
		digest := o.digest
		store.With(func(s *DownloadState) {
			rec, ok := s.Files[o.rel]
			if !ok {
				result = VerifyResult{FileKey: o.rel, Status: "no_md5", Calculated: &digest}
				return
			}
			if rec.Md5Expected != nil {
				if *rec.Md5Expected == digest {
					rec.Status = StatusVerified
					result = VerifyResult{FileKey: o.rel, Status: "match", Expected: rec.Md5Expected, Calculated: &digest}
				} else {
					rec.Status = StatusFailed
					result = VerifyResult{FileKey: o.rel, Status: "mismatch", Expected: rec.Md5Expected, Calculated: &digest}
				}
			} else {
				result = VerifyResult{FileKey: o.rel, Status: "no_md5", Calculated: &digest}
			}
		})
		results = append(results, result)
	}

	handlers.OnOverallProgress(OverallProgressEvent{
		Phase:           PhaseDone,
		TotalFiles:      len(data),
		CompletedFiles:  len(results),
		TotalBytes:      totalBytes,
		DownloadedBytes: totalBytes,
	})
	if err := store.Save(); err != nil {
		handlers.Logger.Warning("final checkpoint save failed for project %s: %v", project, err)
	}

	return results, nil
}

// runWorker downloads and hashes a single data object end to end,
// returning its final lowercase hex MD5 digest.
func runWorker(
	ctx context.Context,
	fetch *ObjectFetchAdapter,
	store *StateStore,
	handlers Handlers,
	bucket, savePath, rel string,
	obj ObjectDescriptor,
) (string, error) {
	store.With(func(s *DownloadState) {
		if rec, ok := s.Files[rel]; ok {
			rec.Status = StatusDownloading
		}
	})

	filePath := filepath.Join(savePath, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFs, err)
	}

	var start int64
	if info, err := os.Stat(filePath); err == nil {
		existing := info.Size()
		if existing > 0 && existing < obj.Size {
			start = existing
		}
	}

	hasher := md5.New()
	if start > 0 {
		if err := hashExistingPrefix(hasher, filePath, start); err != nil {
			return "", fmt.Errorf("%w: %v", ErrFs, err)
		}
	}

	rangeHeader := ""
	if start > 0 {
		rangeHeader = fmt.Sprintf("bytes=%d-", start)
	}
	body, err := fetch.Get(ctx, bucket, obj.Key, rangeHeader)
	if err != nil {
		return "", err
	}
	defer body.Close()

	flags := os.O_WRONLY | os.O_CREATE
	if start > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(filePath, flags, 0o644)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFs, err)
	}
	defer f.Close()

	downloaded := start
	var bytesSinceCheckpoint int64
	startTime := time.Now()

	reader := newCountingReader(body, func(n int) {
		downloaded += int64(n)
		bytesSinceCheckpoint += int64(n)

		elapsed := time.Since(startTime).Seconds()
		var speed int64
		if elapsed > 0 {
			speed = int64(float64(downloaded-start) / elapsed)
		}
		handlers.OnFileProgress(FileProgressEvent{
			FileKey:    rel,
			Downloaded: downloaded,
			Total:      obj.Size,
			SpeedBps:   speed,
		})

		if bytesSinceCheckpoint >= checkpointThreshold {
			store.With(func(s *DownloadState) {
				if rec, ok := s.Files[rel]; ok {
					rec.Downloaded = downloaded
				}
			})
			if err := store.Save(); err != nil {
				handlers.Logger.Warning("checkpoint save failed for %s: %v", rel, err)
			}
			bytesSinceCheckpoint = 0
		}
	})

	buf := make([]byte, chunkSize)
	for {
		n, rerr := reader.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return "", fmt.Errorf("%w: %v", ErrWrite, werr)
			}
			hasher.Write(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", fmt.Errorf("%w: %v", ErrStream, rerr)
		}
	}

	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	digest := hex.EncodeToString(hasher.Sum(nil))

	store.With(func(s *DownloadState) {
		if rec, ok := s.Files[rel]; ok {
			rec.Downloaded = downloaded
			rec.Md5Calculated = &digest
			rec.Status = StatusDownloaded
		}
	})
	if err := store.Save(); err != nil {
		handlers.Logger.Warning("final checkpoint save failed for %s: %v", rel, err)
	}

	return digest, nil
}

// hashExistingPrefix feeds the first n bytes of the file at path into
// hasher, preserving the invariant that the final digest corresponds to
// the entire file content when a download resumes mid-stream.
func hashExistingPrefix(hasher io.Writer, path string, n int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.CopyN(hasher, f, n)
	return err
}
