// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report ranks keyword counts and renders them as a table, JSON,
// or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-miner/pkg/types"
)

// Entry is one ranked file.
type Entry struct {
	Path  string `json:"path" yaml:"path"`
	Count int    `json:"count" yaml:"count"`
}

// Report is the result of a mine run.
type Report struct {
	RunID          string  `json:"run_id" yaml:"run_id"`
	Keyword        string  `json:"keyword" yaml:"keyword"`
	Strategy       string  `json:"strategy" yaml:"strategy"`
	Workers        int     `json:"workers" yaml:"workers"`
	ElapsedSeconds float64 `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	Entries        []Entry `json:"entries" yaml:"entries"`
}

// Sort orders counts by count descending. Equal counts are ordered by path
// so the output is deterministic.
func Sort(counts map[string]int) []Entry {
	entries := make([]Entry, 0, len(counts))
	for path, n := range counts {
		entries = append(entries, Entry{Path: path, Count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Path < entries[j].Path
	})
	return entries
}

// Write renders r to w in the given format. An empty format means text.
func Write(w io.Writer, r Report, format types.OutputFormat) error {
	if r.Entries == nil {
		r.Entries = []Entry{}
	}
	switch format {
	case "", types.OutputText:
		return writeText(w, r.Entries)
	case types.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case types.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding yaml report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want text, json, or yaml)", format)
	}
}

func writeText(w io.Writer, entries []Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No matches found.")
		return err
	}

	fmt.Fprintf(w, "%-4s  %-6s  %s\n", "Rank", "Count", "Path")
	fmt.Fprintln(w, strings.Repeat("-", 60))

	total := 0
	for i, e := range entries {
		fmt.Fprintf(w, "%-4d  %-6d  %s\n", i+1, e.Count, e.Path)
		total += e.Count
	}

	_, err := fmt.Fprintf(w, "\n%d files, %d occurrences\n", len(entries), total)
	return err
}
