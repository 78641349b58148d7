package dlcore

import "errors"

var (
	// ErrUrlParse is returned when a deep-link URL is malformed or missing a
	// required query parameter.
	ErrUrlParse = errors.New("invalid or incomplete download url")

	// ErrListing is returned when object enumeration under a project prefix
	// fails (credentials, permissions, transport, or a missing bucket).
	ErrListing = errors.New("failed to list project objects")

	// ErrManifestFetch is returned when a checksum manifest object cannot be
	// retrieved from the object store.
	ErrManifestFetch = errors.New("failed to fetch checksum manifest")

	// ErrStateIo is returned when the on-disk download state cannot be
	// written or read.
	ErrStateIo = errors.New("failed to read or write download state")

	// ErrStateFormat names the case of an on-disk download state that exists
	// but does not parse as valid state. LoadState treats such a file as
	// absent and does not return this error.
	ErrStateFormat = errors.New("download state file is corrupt")

	// ErrStream is returned when the network body of an object cannot be
	// read to completion.
	ErrStream = errors.New("download stream error")

	// ErrWrite is returned when bytes cannot be written to the destination
	// file on disk.
	ErrWrite = errors.New("failed to write downloaded bytes")

	// ErrFs is returned when a filesystem operation (directory creation,
	// file open) needed before streaming fails.
	ErrFs = errors.New("filesystem error")

	// ErrChecksumMismatch is returned when a downloaded object's computed
	// MD5 digest does not match the manifest's expected digest.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrSaveDirInvalid is returned when save_path does not exist, is not a
	// directory, or is not writable.
	ErrSaveDirInvalid = errors.New("save path is not a writable directory")
)
