package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/zhachao2010/one-step-aws/internal/api"
	"github.com/zhachao2010/one-step-aws/pkg/dlcore"
	"github.com/zhachao2010/one-step-aws/pkg/dlog"
)

var (
	savePath    string
	concurrency int
)

var downloadFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "save-path, o",
		Usage:       "local directory to download into",
		Destination: &savePath,
	},
	cli.IntFlag{
		Name:        "concurrency, c",
		Usage:       "maximum simultaneous downloads",
		Value:       3,
		Destination: &concurrency,
	},
}

func downloadAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return errors.New("expected a download url argument")
	}
	if savePath == "" {
		return errors.New("--save-path is required")
	}
	return runDownload(ctx.Args().First(), savePath, concurrency)
}

// barSet lazily creates one mpb.Bar per file on its first progress event
// and drives it from subsequent events, guarded by a mutex since workers
// report progress concurrently.
type barSet struct {
	mu   sync.Mutex
	p    *mpb.Progress
	bars map[string]*mpb.Bar
}

func newBarSet() *barSet {
	return &barSet{p: mpb.New(mpb.WithWidth(64)), bars: make(map[string]*mpb.Bar)}
}

func (b *barSet) onFileProgress(e dlcore.FileProgressEvent) {
	b.mu.Lock()
	bar, ok := b.bars[e.FileKey]
	if !ok {
		name := e.FileKey
		bar = b.p.New(e.Total,
			mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟"),
			mpb.PrependDecorators(
				decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DidentRight}),
				decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 4}), "done"),
			),
			mpb.AppendDecorators(
				decor.AverageSpeed(decor.SizeB1024(0), "% .2f"),
			),
		)
		b.bars[e.FileKey] = bar
	}
	b.mu.Unlock()
	bar.SetCurrent(e.Downloaded)
}

func (b *barSet) wait() {
	b.p.Wait()
}

func runDownload(rawURL, savePath string, concurrency int) error {
	params, err := api.ParseDownloadURL(rawURL)
	if err != nil {
		return err
	}

	client := dlcore.NewS3Client(params.AccessKey, params.SecretKey, params.Region)

	bars := newBarSet()
	handlers := dlcore.Handlers{
		OnFileProgress: bars.onFileProgress,
		OnOverallProgress: func(e dlcore.OverallProgressEvent) {
			if e.Phase == dlcore.PhaseListing {
				fmt.Println(">> listing project objects <<")
			}
		},
		Logger: dlog.NewStandardLogger(log.New(os.Stderr, "", log.LstdFlags)),
	}

	results, err := api.StartDownload(context.Background(), client, params, savePath, concurrency, handlers)
	bars.wait()
	if err != nil {
		return err
	}

	fmt.Println()
	for _, r := range results {
		expected := "-"
		if r.Expected != nil {
			expected = *r.Expected
		}
		calculated := "-"
		if r.Calculated != nil {
			calculated = *r.Calculated
		}
		fmt.Printf("%-50s %-9s expected=%s calculated=%s\n", r.FileKey, r.Status, expected, calculated)
	}

	var matched, mismatched, errored int
	for _, r := range results {
		switch r.Status {
		case "match":
			matched++
		case "mismatch":
			mismatched++
		default:
			if len(r.Status) >= 6 && r.Status[:6] == "error:" {
				errored++
			}
		}
	}
	fmt.Printf("\n%d verified, %d mismatched, %d errored (%d total)\n",
		matched, mismatched, errored, len(results))
	return nil
}
