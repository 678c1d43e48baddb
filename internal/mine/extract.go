// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mine

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/paper-miner/internal/execx"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// Extractor returns the plain text of a PDF file. Different backends
// (the pure-Go parser, pdftotext) implement this interface.
type Extractor interface {
	// Extract reads the PDF at path and returns its text.
	Extract(ctx context.Context, path string) (string, error)
}

// NewExtractor returns the backend named by b. An empty backend selects
// the native parser.
func NewExtractor(b types.ExtractBackend, ex execx.Executor) (Extractor, error) {
	switch b {
	case "", types.BackendNative:
		return NativeExtractor{}, nil
	case types.BackendPdftotext:
		return NewPdftotextExtractor(ex)
	default:
		return nil, fmt.Errorf("unknown extraction backend %q (want native or pdftotext)", b)
	}
}

// NativeExtractor parses PDFs in-process with github.com/ledongthuc/pdf.
type NativeExtractor struct{}

// Extract opens the PDF and returns the text of every page, one page after
// another. Word and line breaks are rebuilt from glyph positions, since many
// PDFs separate words by kerning rather than space characters. Malformed
// files make the parser panic; those panics come back as errors.
func (NativeExtractor) Extract(_ context.Context, path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		layoutText(&b, p.Content().Text)
	}
	return b.String(), nil
}

const (
	// wordGap is the horizontal gap, in em, that separates two words.
	wordGap = 0.1
	// lineShift is the vertical move, in em, that starts a new line.
	lineShift = 0.5
)

// layoutText writes glyphs in drawing order, inserting a space where the gap
// to the previous glyph exceeds wordGap and a newline where the baseline
// moves or the pen jumps back to the left. The parser's own "\n" markers
// after each TJ operation carry no position and are dropped.
func layoutText(b *strings.Builder, glyphs []pdf.Text) {
	var prev *pdf.Text
	for i := range glyphs {
		g := &glyphs[i]
		if g.S == "" || g.S == "\n" {
			continue
		}
		if prev != nil {
			em := math.Max(prev.FontSize, 1)
			gap := g.X - (prev.X + prev.W)
			last := prev.S[len(prev.S)-1]
			switch {
			case math.Abs(g.Y-prev.Y) > lineShift*em || gap < -em:
				b.WriteByte('\n')
			case gap > wordGap*em && last != ' ' && g.S != " ":
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
		prev = g
	}
}

const pdftotextBin = "pdftotext"

// PdftotextExtractor runs the poppler pdftotext binary and reads the text
// from its stdout.
type PdftotextExtractor struct {
	exec execx.Executor
	bin  string
}

// NewPdftotextExtractor resolves pdftotext on PATH before returning.
func NewPdftotextExtractor(ex execx.Executor) (*PdftotextExtractor, error) {
	if ex == nil {
		ex = execx.Default
	}
	bin, err := ex.LookPath(pdftotextBin)
	if err != nil {
		return nil, fmt.Errorf("%s not available: %w", pdftotextBin, err)
	}
	return &PdftotextExtractor{exec: ex, bin: bin}, nil
}

func (p *PdftotextExtractor) Extract(ctx context.Context, path string) (string, error) {
	var out bytes.Buffer
	args := []string{"-enc", "UTF-8", path, "-"}
	if err := p.exec.RunPiped(ctx, p.bin, args, nil, &out); err != nil {
		return "", fmt.Errorf("extracting %s with pdftotext: %w", path, err)
	}
	return out.String(), nil
}
