package api

import (
	"context"
	"os"

	"github.com/zhachao2010/one-step-aws/pkg/dlcore"
)

// FetchProjectInfo lists the objects under params.Project and summarizes
// them: every object's name and size, the total size of data objects
// (manifests excluded), and whether a prior download state exists for
// this project.
func FetchProjectInfo(ctx context.Context, client dlcore.S3API, params DownloadParams) (ProjectInfo, error) {
	listing := &dlcore.ListingAdapter{Client: client}
	descriptors, err := listing.List(ctx, params.Bucket, params.Project)
	if err != nil {
		return ProjectInfo{}, err
	}

	info := ProjectInfo{
		Project: params.Project,
		Bucket:  params.Bucket,
		Region:  params.Region,
		Expires: params.Expires,
	}
	for _, d := range descriptors {
		info.Files = append(info.Files, FileInfo{
			Name:      dlcore.Basename(d.Key),
			Size:      d.Size,
			IsMd5File: d.IsManifest,
		})
		if !d.IsManifest {
			info.TotalSize += d.Size
		}
	}

	state, err := dlcore.LoadState(params.Project)
	if err != nil {
		return ProjectInfo{}, err
	}
	info.HasExistingState = state != nil

	return info, nil
}

// StartDownload expands a leading "~/" in savePath, creates it if
// missing, validates it is a writable directory, and runs the download
// orchestrator to completion.
func StartDownload(
	ctx context.Context,
	client dlcore.S3API,
	params DownloadParams,
	savePath string,
	concurrency int,
	handlers dlcore.Handlers,
) ([]dlcore.VerifyResult, error) {
	savePath = dlcore.ExpandTilde(savePath)

	if err := os.MkdirAll(savePath, 0o755); err != nil {
		return nil, err
	}
	if err := dlcore.ValidateSaveDir(savePath); err != nil {
		return nil, err
	}

	listing := &dlcore.ListingAdapter{Client: client}
	fetch := &dlcore.ObjectFetchAdapter{Client: client}

	return dlcore.RunDownload(ctx, listing, fetch, params.Bucket, params.Region, params.Project, savePath, concurrency, handlers)
}
