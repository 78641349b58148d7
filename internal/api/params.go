// Package api implements the three host-facing operations named in the
// deep-link and RPC surface: parsing a download URL, summarizing a
// project's objects, and running a download to completion.
package api

import "github.com/zhachao2010/one-step-aws/pkg/dlcore"

// DownloadParams is the credential and target bag carried by a deep-link
// URL and passed through to every subsequent operation.
type DownloadParams struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Project   string
	Expires   *string
}

// FileInfo is one object's entry in a ProjectInfo summary.
type FileInfo struct {
	Name       string
	Size       int64
	IsMd5File  bool
}

// ProjectInfo summarizes the objects under a project prefix before a
// download is started.
type ProjectInfo struct {
	Project           string
	Bucket            string
	Region            string
	Expires           *string
	Files             []FileInfo
	TotalSize         int64
	HasExistingState  bool
}

// VerifyResult re-exports the orchestrator's per-file outcome type under
// this package's name.
type VerifyResult = dlcore.VerifyResult
