// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-miner/internal/pdftest"
)

func TestNativeExtractor_Layout(t *testing.T) {
	tests := []struct {
		name      string
		pages     []string
		wantText  string
		wantCount int
	}{
		{
			name:      "literal spaces",
			pages:     []string{pdftest.Line("(Machine learning machine here) Tj")},
			wantText:  "Machine learning machine here",
			wantCount: 2,
		},
		{
			name:      "words separated by kerning",
			pages:     []string{pdftest.Line("[(Machine)-333(learning)-333(machine)-333(here)] TJ")},
			wantText:  "Machine learning machine here",
			wantCount: 2,
		},
		{
			name:      "small kerning stays inside a word",
			pages:     []string{pdftest.Line("[(mach)-20(ine)-333(learning)] TJ")},
			wantText:  "machine learning",
			wantCount: 1,
		},
		{
			name:      "consecutive TJ on one line",
			pages:     []string{pdftest.Line("[(a)-333(machine)] TJ", "[( machine)] TJ")},
			wantText:  "a machine machine",
			wantCount: 2,
		},
		{
			name:      "newline stays attached across lines",
			pages:     []string{pdftest.Line("(machine learning) Tj", "T*", "(machine) Tj")},
			wantText:  "machine learning\nmachine",
			wantCount: 1,
		},
		{
			name:      "pages joined by newline",
			pages:     []string{pdftest.Line("(machine) Tj"), pdftest.Line("(Machine) Tj")},
			wantText:  "machine\nMachine",
			wantCount: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := pdftest.Write(t, t.TempDir(), "1001.pdf", tt.pages...)

			text, err := NativeExtractor{}.Extract(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantCount, CountKeyword(text, "machine"))
		})
	}
}

func TestMiner_CountKernedPDF(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "1001.pdf",
		pdftest.Line("[(Deep)-333(machine)-333(learning)] TJ", "T*", "[(machine)-333(translation)] TJ"))

	m, err := NewMiner(NativeExtractor{}, "machine")
	require.NoError(t, err)

	n, err := m.Count(context.Background(), path)
	require.NoError(t, err)
	// "learning\nmachine" is one token, so only the first line's match counts.
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}
