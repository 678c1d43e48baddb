// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads documents addressed by a numeric article index
// from a fixed-pattern endpoint and writes each one to <papers-dir>/<index>.pdf.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/paper-miner/internal/dispatch"
	"github.com/pdiddy/paper-miner/internal/httputil"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// TaskName labels fetch progress lines and metrics.
const TaskName = "fetch"

// URL returns the request URL for index:
// <base-url>?article=<index>&context=<context>.
func URL(cfg types.FetchConfig, index int) string {
	q := url.Values{}
	q.Set("article", strconv.Itoa(index))
	q.Set("context", cfg.Context)
	return cfg.BaseURL + "?" + q.Encode()
}

// Path returns the file a document with the given index is written to.
func Path(papersDir string, index int) string {
	return filepath.Join(papersDir, strconv.Itoa(index)+".pdf")
}

// Validate checks that the configuration describes a usable range and endpoint.
func Validate(cfg types.FetchConfig) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL %q must be http or https", cfg.BaseURL)
	}
	if cfg.Start < 1 {
		return fmt.Errorf("start index must be positive, got %d", cfg.Start)
	}
	if cfg.Start > cfg.End {
		return fmt.Errorf("start index %d is after end index %d", cfg.Start, cfg.End)
	}
	if cfg.PapersDir == "" {
		return fmt.Errorf("papers directory is required")
	}
	return nil
}

// Range returns the indices start through end inclusive.
func Range(start, end int) []int {
	if start > end {
		return []int{}
	}
	indices := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		indices = append(indices, i)
	}
	return indices
}

// PrepareDir creates dir if it does not exist. It reports whether it
// created the directory.
func PrepareDir(dir string) (bool, error) {
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", dir)
		}
		return false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return true, nil
}

// Fetcher downloads single documents. It is safe for concurrent use.
type Fetcher struct {
	client *http.Client
	cfg    types.FetchConfig
}

// New returns a Fetcher using client for every request.
func New(client *http.Client, cfg types.FetchConfig) *Fetcher {
	return &Fetcher{client: client, cfg: cfg}
}

// Fetch requests one index. A 200 response is written to
// <papers-dir>/<index>.pdf, replacing any existing file. Any other status
// returns an error wrapping dispatch.ErrSkip. Indices outside the configured
// range are rejected without a request.
func (f *Fetcher) Fetch(ctx context.Context, index int) (types.Document, error) {
	if index < f.cfg.Start || index > f.cfg.End {
		return types.Document{}, fmt.Errorf("index %d outside range [%d, %d]", index, f.cfg.Start, f.cfg.End)
	}

	src := URL(f.cfg, index)
	resp, err := httputil.Get(ctx, f.client, src, f.cfg.UserAgent)
	if err != nil {
		return types.Document{}, fmt.Errorf("fetching index %d: %w", index, err)
	}
	if resp.StatusCode != http.StatusOK {
		httputil.Discard(resp)
		return types.Document{}, fmt.Errorf("HTTP %d: %w", resp.StatusCode, dispatch.ErrSkip)
	}
	defer resp.Body.Close()

	dest := Path(f.cfg.PapersDir, index)
	n, err := writeFile(dest, resp.Body)
	if err != nil {
		return types.Document{}, fmt.Errorf("writing index %d: %w", index, err)
	}

	return types.Document{Index: index, SourceURL: src, Path: dest, Bytes: n}, nil
}

// Task wraps the Fetcher for the dispatcher. isolated may be nil when the
// batch never runs in worker processes.
func (f *Fetcher) Task(isolated dispatch.ChunkFunc[int, types.Document]) dispatch.Task[int, types.Document] {
	return dispatch.Task[int, types.Document]{
		Name:     TaskName,
		Do:       f.Fetch,
		Isolated: isolated,
		Describe: func(index int, _ types.Document) string {
			return fmt.Sprintf("Downloading paper at index %d", index)
		},
	}
}

// writeFile copies body to destPath through a temporary file in the same
// directory and renames it into place.
func writeFile(destPath string, body io.Reader) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}
