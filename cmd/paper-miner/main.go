// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-miner CLI.
// fetch downloads a numeric range of papers; mine counts a keyword across
// the downloaded corpus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the paper-miner CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-miner",
	Short: "Bulk-download papers and count keyword occurrences",
	Long: `paper-miner downloads papers from a repository endpoint that addresses
documents by a numeric article index, then scans the downloaded corpus for a
keyword and reports per-file counts sorted by frequency.

Both stages spread their work sequentially, over a pool of goroutines
(--multiprocessing=false), or over a pool of worker processes
(the default).`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-miner.yaml or ~/.config/paper-miner/paper-miner.yaml)")
	pf.Bool("debug", false, "print a line for every item, including skipped ones")
	pf.Bool("parallel", true, "spread work over a worker pool")
	pf.Bool("multiprocessing", true, "use worker processes instead of goroutines when parallel")
	pf.Int("threads", defaultThreads, "pool size when using goroutines")
	pf.Int("processes", defaultProcesses, "pool size when using worker processes")
	pf.String("strategy", "", "sequential, threads, or processes (overrides --parallel and --multiprocessing)")
	pf.Int("chunk-size", 0, "items handed to a worker at once (default: items/workers)")
	pf.String("papers-dir", "papers", "directory holding downloaded papers")
	pf.String("metrics-file", "", "write Prometheus metrics for the run to this file")

	for _, name := range []string{
		"debug", "parallel", "multiprocessing", "threads", "processes",
		"strategy", "chunk-size", "papers-dir", "metrics-file",
	} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-miner")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-miner"))
		}
	}

	viper.SetEnvPrefix("PAPER_MINER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
