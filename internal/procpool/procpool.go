// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package procpool runs chunks of work items in child processes. The parent
// writes items to the child's stdin as JSON lines; the child answers with one
// dispatch.Outcome per line on stdout. Children receive their configuration
// through argv only.
package procpool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/paper-miner/internal/dispatch"
	"github.com/pdiddy/paper-miner/internal/execx"
)

// Runner starts one child process per chunk.
type Runner struct {
	// Bin is the executable to start.
	Bin string

	// Args are passed to every child, e.g. ["worker", "mine", "--keyword", "machine"].
	Args []string

	// Exec runs the child. Tests substitute a fake.
	Exec execx.Executor
}

// NewRunner returns a Runner that re-executes the current binary with args.
func NewRunner(args ...string) (*Runner, error) {
	bin, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating own executable: %w", err)
	}
	return &Runner{Bin: bin, Args: args, Exec: execx.Default}, nil
}

// Chunk runs items in one child process. Outcomes the child wrote before a
// failure are returned together with the error.
func Chunk[I comparable, R any](ctx context.Context, r *Runner, items []I) ([]dispatch.Outcome[I, R], error) {
	var in bytes.Buffer
	enc := json.NewEncoder(&in)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return nil, fmt.Errorf("encoding item %v: %w", item, err)
		}
	}

	var out bytes.Buffer
	runErr := r.Exec.RunPiped(ctx, r.Bin, r.Args, &in, &out)

	outcomes, decodeErr := decode[I, R](&out)
	if runErr != nil {
		return outcomes, fmt.Errorf("worker process: %w", runErr)
	}
	if decodeErr != nil {
		return outcomes, decodeErr
	}
	return outcomes, nil
}

// Isolated adapts a Runner to a dispatch.ChunkFunc.
func Isolated[I comparable, R any](r *Runner) dispatch.ChunkFunc[I, R] {
	return func(ctx context.Context, chunk []I) ([]dispatch.Outcome[I, R], error) {
		return Chunk[I, R](ctx, r, chunk)
	}
}

func decode[I comparable, R any](rd io.Reader) ([]dispatch.Outcome[I, R], error) {
	var outcomes []dispatch.Outcome[I, R]
	dec := json.NewDecoder(rd)
	for {
		var o dispatch.Outcome[I, R]
		err := dec.Decode(&o)
		if errors.Is(err, io.EOF) {
			return outcomes, nil
		}
		if err != nil {
			return outcomes, fmt.Errorf("decoding worker output: %w", err)
		}
		outcomes = append(outcomes, o)
	}
}

// Serve is the child side of Chunk. It reads items from in until EOF, runs
// each through do in order, and writes one outcome per item to out.
func Serve[I comparable, R any](ctx context.Context, in io.Reader, out io.Writer, do func(context.Context, I) (R, error)) error {
	dec := json.NewDecoder(in)
	enc := json.NewEncoder(out)
	for {
		var item I
		err := dec.Decode(&item)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decoding item: %w", err)
		}

		if err := enc.Encode(dispatch.Apply(ctx, do, item)); err != nil {
			return fmt.Errorf("encoding outcome for %v: %w", item, err)
		}
	}
}
