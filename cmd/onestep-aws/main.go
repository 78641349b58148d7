// Command onestep-aws downloads a project-scoped object hierarchy from an
// S3-compatible store, resuming partial downloads and verifying each
// object against an optional checksum manifest.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.App{
		Name:      "onestep-aws",
		HelpName:  "onestep-aws",
		Usage:     "resumable, checksum-verified downloads of S3 project prefixes",
		UsageText: "onestep-aws <command> [arguments...]",
		Commands: []cli.Command{
			{
				Name:      "info",
				Usage:     "list a project's objects and their sizes",
				ArgsUsage: "<download-url>",
				Action:    infoAction,
			},
			{
				Name:      "download",
				Usage:     "download a project's data objects and verify them against its manifest",
				ArgsUsage: "<download-url>",
				Flags:     downloadFlags,
				Action:    downloadAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
