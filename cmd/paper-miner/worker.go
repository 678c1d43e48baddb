// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-miner/internal/fetch"
	"github.com/pdiddy/paper-miner/internal/httputil"
	"github.com/pdiddy/paper-miner/internal/procpool"
	"github.com/pdiddy/paper-miner/pkg/types"
)

// workerCmd hosts the child side of the process pool. Workers read items as
// JSON lines on stdin and write outcomes on stdout. They take their settings
// from their own flags only, never from config files or the environment.
var workerCmd = &cobra.Command{
	Use:    "worker",
	Short:  "Run one chunk of a batch (started by fetch and mine)",
	Hidden: true,
}

var workerFetchCmd = &cobra.Command{
	Use:  "fetch",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := cmd.Flags()
		start, _ := fs.GetInt("start")
		end, _ := fs.GetInt("end")
		baseURL, _ := fs.GetString("base-url")
		collection, _ := fs.GetString("context")
		userAgent, _ := fs.GetString("user-agent")
		papersDir, _ := fs.GetString("papers-dir")

		cfg := types.FetchConfig{
			HTTPConfig: types.HTTPConfig{UserAgent: userAgent},
			BaseURL:    baseURL,
			Context:    collection,
			Start:      start,
			End:        end,
			PapersDir:  papersDir,
		}
		if err := fetch.Validate(cfg); err != nil {
			return fmt.Errorf("worker fetch: %w", err)
		}

		f := fetch.New(httputil.NewClient(), cfg)
		return procpool.Serve(cmd.Context(), os.Stdin, os.Stdout, f.Fetch)
	},
}

var workerMineCmd = &cobra.Command{
	Use:  "mine",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword, _ := cmd.Flags().GetString("keyword")
		backend, _ := cmd.Flags().GetString("backend")

		m, err := newMiner(types.MineConfig{Keyword: keyword, Backend: types.ExtractBackend(backend)})
		if err != nil {
			return fmt.Errorf("worker mine: %w", err)
		}
		return procpool.Serve(cmd.Context(), os.Stdin, os.Stdout, m.Count)
	},
}

func init() {
	addFetchFlags(workerFetchCmd.Flags())
	addMineFlags(workerMineCmd.Flags())

	workerCmd.AddCommand(workerFetchCmd, workerMineCmd)
	rootCmd.AddCommand(workerCmd)
}
