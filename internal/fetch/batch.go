// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/paper-miner/internal/dispatch"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// BatchResult holds the outcome of a fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Documents  map[int]types.Document
}

// Total returns the number of indices processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any index failed with a transport or write error.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Batch fetches every index in the Fetcher's range. The papers directory is
// created once before the first request. Failed indices are reported to
// opts.Progress and counted; they never stop the batch.
func Batch(ctx context.Context, f *Fetcher, opts dispatch.Options, isolated dispatch.ChunkFunc[int, types.Document]) (BatchResult, error) {
	if err := Validate(f.cfg); err != nil {
		return BatchResult{}, err
	}

	w := opts.Progress
	if w == nil {
		w = io.Discard
	}

	created, err := PrepareDir(f.cfg.PapersDir)
	if err != nil {
		return BatchResult{}, err
	}
	if created {
		fmt.Fprintln(w, "Creating papers directory")
	}

	docs, summary, err := dispatch.RunWithSummary(ctx, Range(f.cfg.Start, f.cfg.End), f.Task(isolated), opts)
	return BatchResult{
		Downloaded: summary.Processed,
		Skipped:    summary.Skipped,
		Failed:     summary.Failed,
		Documents:  docs,
	}, err
}
