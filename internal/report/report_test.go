// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-miner/pkg/types"
)

func TestSort(t *testing.T) {
	got := Sort(map[string]int{"a": 3, "b": 7, "c": 1})
	want := []Entry{{"b", 7}, {"a", 3}, {"c", 1}}
	assert.Equal(t, want, got)
}

func TestSort_TiesByPath(t *testing.T) {
	got := Sort(map[string]int{"papers/1003.pdf": 2, "papers/1001.pdf": 2, "papers/1002.pdf": 5, "papers/1000.pdf": 0})
	want := []Entry{
		{"papers/1002.pdf", 5},
		{"papers/1001.pdf", 2},
		{"papers/1003.pdf", 2},
		{"papers/1000.pdf", 0},
	}
	assert.Equal(t, want, got)
}

func TestSort_Empty(t *testing.T) {
	got := Sort(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func sample() Report {
	return Report{
		RunID:          "5f0c6b1e-1111-4c3a-9d7e-2d5b3a9f0c11",
		Keyword:        "machine",
		Strategy:       "threads",
		Workers:        17,
		ElapsedSeconds: 1.5,
		Entries:        Sort(map[string]int{"a": 3, "b": 7, "c": 1}),
	}
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), types.OutputText))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.True(t, strings.HasPrefix(lines[0], "Rank"))
	assert.Equal(t, "1     7       b", lines[2])
	assert.Equal(t, "2     3       a", lines[3])
	assert.Equal(t, "3     1       c", lines[4])
	assert.Equal(t, "3 files, 11 occurrences", lines[len(lines)-1])
}

func TestWrite_TextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Report{}, ""))
	assert.Equal(t, "No matches found.\n", buf.String())
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), types.OutputJSON))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
	assert.Contains(t, buf.String(), `"run_id"`)
}

func TestWrite_EmptyEntriesAreAList(t *testing.T) {
	var js bytes.Buffer
	require.NoError(t, Write(&js, Report{Keyword: "machine"}, types.OutputJSON))
	assert.Contains(t, js.String(), `"entries": []`)

	var ym bytes.Buffer
	require.NoError(t, Write(&ym, Report{Keyword: "machine"}, types.OutputYAML))
	assert.Contains(t, ym.String(), "entries: []")
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), types.OutputYAML))

	var got Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sample(), got)
	assert.Contains(t, buf.String(), "keyword: machine")
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, sample(), "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}
