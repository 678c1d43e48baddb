// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mine extracts text from downloaded PDFs and counts how often a
// keyword occurs in each one.
package mine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-miner/internal/dispatch"
)

// TaskName labels mine progress lines and metrics.
const TaskName = "mine"

// CountKeyword counts the tokens of text equal to keyword, ignoring case.
// Tokens come from splitting on the space character alone, so newlines, tabs
// and punctuation stay attached: "machine." and "machine\n" do not match
// "machine".
func CountKeyword(text, keyword string) int {
	want := strings.ToLower(keyword)
	n := 0
	for _, tok := range strings.Split(text, " ") {
		if strings.ToLower(tok) == want {
			n++
		}
	}
	return n
}

// ListPapers returns every entry of dir as dir/<name>, in directory order.
// Nothing is filtered out; entries that are not PDFs fail extraction later.
func ListPapers(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading papers directory: %w", err)
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// Miner counts one keyword across files using an Extractor.
type Miner struct {
	extractor Extractor
	keyword   string
}

// NewMiner returns a Miner for keyword. A keyword containing a space could
// never equal a space-split token, so it is rejected.
func NewMiner(e Extractor, keyword string) (*Miner, error) {
	if keyword == "" {
		return nil, fmt.Errorf("keyword is required")
	}
	if strings.Contains(keyword, " ") {
		return nil, fmt.Errorf("keyword %q must be a single token", keyword)
	}
	return &Miner{extractor: e, keyword: keyword}, nil
}

// Keyword returns the configured keyword.
func (m *Miner) Keyword() string { return m.keyword }

// Count extracts the text of the file at path and counts the keyword.
func (m *Miner) Count(ctx context.Context, path string) (int, error) {
	text, err := m.extractor.Extract(ctx, path)
	if err != nil {
		return 0, err
	}
	return CountKeyword(text, m.keyword), nil
}

// Task wraps the Miner for the dispatcher. With verbose set every counted
// file gets a progress line.
func (m *Miner) Task(isolated dispatch.ChunkFunc[string, int], verbose bool) dispatch.Task[string, int] {
	t := dispatch.Task[string, int]{
		Name:     TaskName,
		Do:       m.Count,
		Isolated: isolated,
	}
	if verbose {
		t.Describe = func(path string, count int) string {
			return fmt.Sprintf("%s: %d", path, count)
		}
	}
	return t
}

// Batch counts the keyword in every entry of dir. Files whose extraction
// fails are reported to opts.Progress and left out of the returned map.
func Batch(ctx context.Context, m *Miner, dir string, opts dispatch.Options, isolated dispatch.ChunkFunc[string, int]) (map[string]int, dispatch.Summary, error) {
	paths, err := ListPapers(dir)
	if err != nil {
		return nil, dispatch.Summary{}, err
	}
	return dispatch.RunWithSummary(ctx, paths, m.Task(isolated, opts.Verbose), opts)
}
