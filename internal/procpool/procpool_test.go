// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package procpool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-miner/internal/dispatch"
)

// serveExecutor runs Serve in-process in place of a child binary and records
// the argv each "process" was started with.
type serveExecutor struct {
	do func(context.Context, string) (int, error)

	mu    sync.Mutex
	calls [][]string
	fail  error
}

func (s *serveExecutor) LookPath(file string) (string, error) { return file, nil }

func (s *serveExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string{name}, args...))
	s.mu.Unlock()

	if err := Serve(ctx, stdin, stdout, s.do); err != nil {
		return err
	}
	return s.fail
}

func wordLen(_ context.Context, path string) (int, error) {
	switch {
	case strings.HasSuffix(path, ".txt"):
		return 0, errors.New("not a PDF file: invalid header")
	case path == "":
		return 0, fmt.Errorf("empty path: %w", dispatch.ErrSkip)
	}
	return len(path), nil
}

func TestChunk_RoundTrip(t *testing.T) {
	ex := &serveExecutor{do: wordLen}
	r := &Runner{Bin: "/usr/bin/paper-miner", Args: []string{"worker", "mine", "--keyword", "machine"}, Exec: ex}

	outs, err := Chunk[string, int](context.Background(), r, []string{"papers/1001.pdf", "papers/notes.txt", ""})
	require.NoError(t, err)
	require.Len(t, outs, 3)

	assert.Equal(t, "papers/1001.pdf", outs[0].Item)
	assert.Equal(t, 15, outs[0].Result)
	assert.True(t, outs[0].OK())

	assert.Equal(t, "not a PDF file: invalid header", outs[1].Err)
	assert.True(t, outs[2].Skipped)

	require.Len(t, ex.calls, 1)
	assert.Equal(t, []string{"/usr/bin/paper-miner", "worker", "mine", "--keyword", "machine"}, ex.calls[0])
}

func TestChunk_ProcessFailureKeepsPartialOutput(t *testing.T) {
	ex := &serveExecutor{do: wordLen, fail: errors.New("exit status 2")}
	r := &Runner{Bin: "paper-miner", Exec: ex}

	outs, err := Chunk[string, int](context.Background(), r, []string{"a.pdf", "bb.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker process: exit status 2")
	assert.Len(t, outs, 2)
}

func TestIsolated_WithDispatcher(t *testing.T) {
	items := []string{"papers/1.pdf", "papers/22.pdf", "papers/x.txt", "papers/333.pdf", "papers/4444.pdf"}
	ex := &serveExecutor{do: wordLen}
	r := &Runner{Bin: "paper-miner", Args: []string{"worker", "mine"}, Exec: ex}

	task := dispatch.Task[string, int]{Name: "mine", Do: wordLen, Isolated: Isolated[string, int](r)}

	want, err := dispatch.Run(context.Background(), items, task, dispatch.Options{Strategy: dispatch.Sequential, Workers: 1})
	require.NoError(t, err)

	got, summary, err := dispatch.RunWithSummary(context.Background(), items, task, dispatch.Options{Strategy: dispatch.IsolatedPool, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, 1, summary.Failed)
	// Five items over two workers gives chunks of two: three child processes.
	assert.Len(t, ex.calls, 3)
}

func TestServe_BadInput(t *testing.T) {
	var out bytes.Buffer
	err := Serve(context.Background(), strings.NewReader(`"ok.pdf"`+"\n{not json"), &out, wordLen)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding item")
	// The item before the bad line was still answered.
	assert.Contains(t, out.String(), `"item":"ok.pdf"`)
}

func TestNewRunner(t *testing.T) {
	r, err := NewRunner("worker", "fetch")
	require.NoError(t, err)
	assert.NotEmpty(t, r.Bin)
	assert.Equal(t, []string{"worker", "fetch"}, r.Args)
	assert.NotNil(t, r.Exec)
}
