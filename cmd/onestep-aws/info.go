package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/zhachao2010/one-step-aws/internal/api"
	"github.com/zhachao2010/one-step-aws/pkg/dlcore"
)

func infoAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return errors.New("expected a download url argument")
	}
	return runInfo(ctx.Args().First())
}

func runInfo(rawURL string) error {
	params, err := api.ParseDownloadURL(rawURL)
	if err != nil {
		return err
	}

	client := dlcore.NewS3Client(params.AccessKey, params.SecretKey, params.Region)
	info, err := api.FetchProjectInfo(context.Background(), client, params)
	if err != nil {
		return err
	}

	fmt.Printf("project: %s  bucket: %s  region: %s\n", info.Project, info.Bucket, info.Region)
	if info.HasExistingState {
		fmt.Println("a prior download state exists for this project")
	}
	for _, f := range info.Files {
		tag := ""
		if f.IsMd5File {
			tag = " (manifest)"
		}
		fmt.Printf("  %-60s %10s%s\n", f.Name, humanize.Bytes(uint64(f.Size)), tag)
	}
	fmt.Printf("total data size: %s\n", humanize.Bytes(uint64(info.TotalSize)))
	return nil
}
