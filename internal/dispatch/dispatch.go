// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dispatch runs one function over a batch of work items and collects
// the per-item results into a map. The same batch can run sequentially, on a
// pool of goroutines, or on a pool of child processes; the resulting map is
// the same in every case.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrSkip marks an item that has no result by design (for example, a
// document the remote reports as absent). Skipped items are dropped from
// the result map and counted separately from failures.
var ErrSkip = errors.New("skipped")

// Strategy selects how items are executed.
type Strategy int

const (
	// Sequential runs every item on the calling goroutine.
	Sequential Strategy = iota
	// SharedPool runs items on a fixed set of goroutines in this process.
	SharedPool
	// IsolatedPool runs chunks of items in separate worker processes.
	IsolatedPool
)

func (s Strategy) String() string {
	switch s {
	case Sequential:
		return "sequential"
	case SharedPool:
		return "threads"
	case IsolatedPool:
		return "processes"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a configuration string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential", "serial":
		return Sequential, nil
	case "threads", "shared":
		return SharedPool, nil
	case "processes", "isolated":
		return IsolatedPool, nil
	default:
		return Sequential, fmt.Errorf("unknown strategy %q: use sequential, threads, or processes", s)
	}
}

// StrategyFromFlags maps the parallel and multiprocessing toggles onto a
// Strategy. multiprocessing is ignored when parallel is false.
func StrategyFromFlags(parallel, multiprocessing bool) Strategy {
	switch {
	case !parallel:
		return Sequential
	case multiprocessing:
		return IsolatedPool
	default:
		return SharedPool
	}
}

// Outcome is the result of running one item. Exactly one of Result (when
// Err is empty), Skipped, or Err describes what happened. Outcomes cross
// process boundaries as JSON, so errors travel as strings.
type Outcome[I comparable, R any] struct {
	Item    I             `json:"item"`
	Result  R             `json:"result"`
	Skipped bool          `json:"skipped,omitempty"`
	Err     string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
}

// OK reports whether the outcome carries a result.
func (o Outcome[I, R]) OK() bool {
	return !o.Skipped && o.Err == ""
}

// ChunkFunc runs a contiguous chunk of items somewhere other than this
// process and returns one Outcome per item it managed to run. Items with no
// returned Outcome are counted as failed.
type ChunkFunc[I comparable, R any] func(ctx context.Context, chunk []I) ([]Outcome[I, R], error)

// Task is the unit of work a batch applies to every item.
type Task[I comparable, R any] struct {
	// Name labels progress lines and metrics.
	Name string

	// Do processes one item. Returning an error wrapping ErrSkip marks the
	// item skipped; any other error marks it failed.
	Do func(ctx context.Context, item I) (R, error)

	// Isolated runs a chunk in a worker process. Required by IsolatedPool.
	Isolated ChunkFunc[I, R]

	// Describe, when set, renders one progress line per successful item.
	Describe func(item I, result R) string
}

// Options configures a batch run.
type Options struct {
	Strategy Strategy

	// Workers is the pool size. It must be positive; Sequential uses a
	// single worker regardless.
	Workers int

	// ChunkSize overrides the contiguous chunk length handed to each worker.
	// Zero derives it from len(items)/Workers.
	ChunkSize int

	// Progress receives per-item and summary lines. Nil discards them.
	Progress io.Writer

	// Verbose adds a line for every skipped item.
	Verbose bool

	// Metrics records item counts and durations. Nil disables metrics.
	Metrics *Metrics
}

// Summary counts what happened to the items of a batch.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the number of items accounted for.
func (s Summary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// HasFailures reports whether any item failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Run applies task to every item and returns the results keyed by item.
// Skipped and failed items are absent from the map. Per-item failures never
// abort the batch; Run only returns an error for invalid options or a
// cancelled context, in which case the map holds what finished.
func Run[I comparable, R any](ctx context.Context, items []I, task Task[I, R], opts Options) (map[I]R, error) {
	results, _, err := RunWithSummary(ctx, items, task, opts)
	return results, err
}

// RunWithSummary is Run plus the per-outcome counts.
func RunWithSummary[I comparable, R any](ctx context.Context, items []I, task Task[I, R], opts Options) (map[I]R, Summary, error) {
	if err := validate(task, opts); err != nil {
		return nil, Summary{}, err
	}

	c := &collector[I, R]{
		task:     task,
		results:  make(map[I]R, len(items)),
		progress: opts.Progress,
		verbose:  opts.Verbose,
		metrics:  opts.Metrics,
	}
	if c.progress == nil {
		c.progress = io.Discard
	}

	size := ChunkSize(len(items), opts.Workers, opts.ChunkSize)
	switch opts.Strategy {
	case Sequential:
		runSequential(ctx, items, task, c)
	case SharedPool:
		runShared(ctx, Chunks(items, size), opts.Workers, task, c)
	case IsolatedPool:
		runIsolated(ctx, Chunks(items, size), opts.Workers, task, c)
	}

	fmt.Fprintf(c.progress, "\nBatch summary: %d processed, %d skipped, %d failed (total: %d)\n",
		c.summary.Processed, c.summary.Skipped, c.summary.Failed, c.summary.Total())

	return c.results, c.summary, ctx.Err()
}

func validate[I comparable, R any](task Task[I, R], opts Options) error {
	if opts.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", opts.Workers)
	}
	switch opts.Strategy {
	case Sequential, SharedPool:
		if task.Do == nil {
			return fmt.Errorf("task %q has no item function", task.Name)
		}
	case IsolatedPool:
		if task.Isolated == nil {
			return fmt.Errorf("task %q cannot run in worker processes", task.Name)
		}
	default:
		return fmt.Errorf("unsupported strategy %v", opts.Strategy)
	}
	return nil
}

// Apply runs do on one item and converts its return values into an
// Outcome. A panic inside do becomes a failed outcome.
func Apply[I comparable, R any](ctx context.Context, do func(context.Context, I) (R, error), item I) (o Outcome[I, R]) {
	start := time.Now()
	o.Item = item
	defer func() {
		if p := recover(); p != nil {
			var zero R
			o.Result = zero
			o.Skipped = false
			o.Err = fmt.Sprintf("panic: %v", p)
		}
		o.Elapsed = time.Since(start)
	}()

	r, err := do(ctx, item)
	switch {
	case err == nil:
		o.Result = r
	case errors.Is(err, ErrSkip):
		o.Skipped = true
		o.Err = err.Error()
	default:
		o.Err = err.Error()
	}
	return o
}

func runSequential[I comparable, R any](ctx context.Context, items []I, task Task[I, R], c *collector[I, R]) {
	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		c.metrics.begin(task.Name, 1)
		o := Apply(ctx, task.Do, item)
		c.metrics.end(task.Name, 1)
		c.add(o)
	}
}

// runShared feeds chunks to a fixed set of goroutines. Only the calling
// goroutine touches the collector.
func runShared[I comparable, R any](ctx context.Context, chunks [][]I, workers int, task Task[I, R], c *collector[I, R]) {
	jobs := make(chan []I)
	out := make(chan Outcome[I, R], workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for chunk := range jobs {
				for _, item := range chunk {
					c.metrics.begin(task.Name, 1)
					o := Apply(ctx, task.Do, item)
					c.metrics.end(task.Name, 1)
					out <- o
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			case jobs <- chunk:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	for o := range out {
		c.add(o)
	}
}

// runIsolated hands each chunk to task.Isolated with at most workers chunks
// in flight. Items a chunk did not report on are counted as failed.
func runIsolated[I comparable, R any](ctx context.Context, chunks [][]I, workers int, task Task[I, R], c *collector[I, R]) {
	out := make(chan Outcome[I, R], workers)

	var g errgroup.Group
	g.SetLimit(workers)

	go func() {
		defer close(out)
		for _, chunk := range chunks {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				c.metrics.begin(task.Name, len(chunk))
				outcomes, err := task.Isolated(ctx, chunk)
				c.metrics.end(task.Name, len(chunk))
				for _, o := range reconcile(chunk, outcomes, err) {
					out <- o
				}
				return nil
			})
		}
		g.Wait()
	}()

	for o := range out {
		c.add(o)
	}
}

// reconcile keeps exactly one outcome per chunk item. Outcomes for items
// outside the chunk and duplicates are discarded; missing items fail with
// the chunk error.
func reconcile[I comparable, R any](chunk []I, outcomes []Outcome[I, R], chunkErr error) []Outcome[I, R] {
	pending := make(map[I]bool, len(chunk))
	for _, item := range chunk {
		pending[item] = true
	}

	kept := make([]Outcome[I, R], 0, len(chunk))
	for _, o := range outcomes {
		if !pending[o.Item] {
			continue
		}
		pending[o.Item] = false
		kept = append(kept, o)
	}

	reason := "worker process returned no outcome"
	if chunkErr != nil {
		reason = chunkErr.Error()
	}
	for _, item := range chunk {
		if pending[item] {
			kept = append(kept, Outcome[I, R]{Item: item, Err: reason})
		}
	}
	return kept
}

// ChunkSize returns the contiguous chunk length for n items over workers.
// An override above zero wins; otherwise it is n/workers, at least 1.
func ChunkSize(n, workers, override int) int {
	if override > 0 {
		return override
	}
	if workers < 1 {
		workers = 1
	}
	size := n / workers
	if size < 1 {
		size = 1
	}
	return size
}

// Chunks splits items into contiguous slices of at most size elements.
func Chunks[I any](items []I, size int) [][]I {
	if size < 1 {
		size = 1
	}
	chunks := make([][]I, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// collector owns the result map. It is only used from one goroutine.
type collector[I comparable, R any] struct {
	task     Task[I, R]
	results  map[I]R
	summary  Summary
	progress io.Writer
	verbose  bool
	metrics  *Metrics
}

func (c *collector[I, R]) add(o Outcome[I, R]) {
	switch {
	case o.Skipped:
		c.summary.Skipped++
		c.metrics.observe(c.task.Name, outcomeSkipped, o.Elapsed)
		if c.verbose {
			fmt.Fprintf(c.progress, "skipped: %v (%s)\n", o.Item, o.Err)
		}
	case o.Err != "":
		c.summary.Failed++
		c.metrics.observe(c.task.Name, outcomeFailed, o.Elapsed)
		fmt.Fprintf(c.progress, "failed:  %v (%s)\n", o.Item, o.Err)
	default:
		c.results[o.Item] = o.Result
		c.summary.Processed++
		c.metrics.observe(c.task.Name, outcomeProcessed, o.Elapsed)
		if c.task.Describe != nil {
			fmt.Fprintln(c.progress, c.task.Describe(o.Item, o.Result))
		}
	}
}
