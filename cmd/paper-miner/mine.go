// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-miner/internal/dispatch"
	"github.com/pdiddy/paper-miner/internal/execx"
	"github.com/pdiddy/paper-miner/internal/mine"
	"github.com/pdiddy/paper-miner/internal/procpool"
	"github.com/pdiddy/paper-miner/internal/report"
	"github.com/pdiddy/paper-miner/pkg/types"
)

const defaultKeyword = "machine"

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Count a keyword in every downloaded paper",
	Long: `Mine extracts the text of every entry in the papers directory and counts
the space-separated tokens equal to --keyword, ignoring case. Files whose text
cannot be extracted are reported on stderr and left out of the report.

The report is printed to stdout, sorted by count descending.`,
	Args: cobra.NoArgs,
	RunE: runMine,
}

// addMineFlags registers the flags shared by mine and its worker.
func addMineFlags(fs *pflag.FlagSet) {
	fs.String("keyword", defaultKeyword, "keyword to count")
	fs.String("backend", string(types.BackendNative), "text extraction backend: native or pdftotext")
}

func init() {
	addMineFlags(mineCmd.Flags())
	mineCmd.Flags().String("format", string(types.OutputText), "report format: text, json, or yaml")
	for _, name := range []string{"keyword", "backend", "format"} {
		_ = viper.BindPFlag("mine."+name, mineCmd.Flags().Lookup(name))
	}

	rootCmd.AddCommand(mineCmd)
}

func mineConfig(v *viper.Viper) types.MineConfig {
	return types.MineConfig{
		Keyword:   v.GetString("mine.keyword"),
		Backend:   types.ExtractBackend(v.GetString("mine.backend")),
		PapersDir: v.GetString("papers-dir"),
		Format:    types.OutputFormat(v.GetString("mine.format")),
	}
}

// mineWorkerArgs is the argv a worker process needs to mine with cfg.
func mineWorkerArgs(cfg types.MineConfig) []string {
	return []string{
		"worker", "mine",
		"--keyword", cfg.Keyword,
		"--backend", string(cfg.Backend),
	}
}

// newMiner builds the extractor for cfg.Backend and a Miner around it.
func newMiner(cfg types.MineConfig) (*mine.Miner, error) {
	e, err := mine.NewExtractor(cfg.Backend, execx.Default)
	if err != nil {
		return nil, err
	}
	return mine.NewMiner(e, cfg.Keyword)
}

func runMine(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	cfg := mineConfig(v)
	switch cfg.Format {
	case "", types.OutputText, types.OutputJSON, types.OutputYAML:
	default:
		return fmt.Errorf("unknown output format %q (want text, json, or yaml)", cfg.Format)
	}

	m, err := newMiner(cfg)
	if err != nil {
		return err
	}

	dcfg, err := dispatchConfig(v)
	if err != nil {
		return err
	}
	rm := newRunMetrics(v.GetString("metrics-file"))
	defer rm.flush()

	w := os.Stderr
	opts, err := dispatchOptions(dcfg, w, v.GetBool("debug"), rm.metrics)
	if err != nil {
		return err
	}

	var isolated dispatch.ChunkFunc[string, int]
	switch opts.Strategy {
	case dispatch.IsolatedPool:
		r, err := procpool.NewRunner(mineWorkerArgs(cfg)...)
		if err != nil {
			return err
		}
		isolated = procpool.Isolated[string, int](r)
		fmt.Fprintln(w, "Searching papers using multiprocessing")
	case dispatch.SharedPool:
		fmt.Fprintln(w, "Searching papers using multithreading")
	default:
		fmt.Fprintln(w, "Searching papers sequentially")
	}

	var counts map[string]int
	elapsed, err := dispatch.Timed(w, "", func() error {
		var err error
		counts, _, err = mine.Batch(cmd.Context(), m, cfg.PapersDir, opts, isolated)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	return report.Write(os.Stdout, report.Report{
		RunID:          uuid.NewString(),
		Keyword:        cfg.Keyword,
		Strategy:       dcfg.Strategy,
		Workers:        dcfg.Workers,
		ElapsedSeconds: elapsed.Seconds(),
		Entries:        report.Sort(counts),
	}, cfg.Format)
}
