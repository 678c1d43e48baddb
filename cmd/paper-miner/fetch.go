// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-miner/internal/dispatch"
	"github.com/pdiddy/paper-miner/internal/fetch"
	"github.com/pdiddy/paper-miner/internal/httputil"
	"github.com/pdiddy/paper-miner/internal/procpool"
	"github.com/pdiddy/paper-miner/pkg/types"
)

const (
	defaultBaseURL = "https://scholarworks.sjsu.edu/cgi/viewcontent.cgi"
	defaultContext = "etd_projects"
	defaultStart   = 1000
	defaultEnd     = 2060
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download every paper in an index range",
	Long: `Fetch requests <base-url>?article=<index>&context=<context> for every index
from --start to --end inclusive and writes each 200 response to
<papers-dir>/<index>.pdf, replacing any existing file. Other statuses are
skipped. A failed request is reported and does not stop the run.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

// addFetchFlags registers the flags shared by fetch and its worker.
func addFetchFlags(fs *pflag.FlagSet) {
	fs.Int("start", defaultStart, "first article index")
	fs.Int("end", defaultEnd, "last article index (inclusive)")
	fs.String("base-url", defaultBaseURL, "endpoint queried for each index")
	fs.String("context", defaultContext, "collection name sent with each request")
	fs.String("user-agent", httputil.DefaultUserAgent, "User-Agent header")
}

func init() {
	addFetchFlags(fetchCmd.Flags())
	for _, name := range []string{"start", "end", "base-url", "context", "user-agent"} {
		_ = viper.BindPFlag("fetch."+name, fetchCmd.Flags().Lookup(name))
	}

	rootCmd.AddCommand(fetchCmd)
}

func fetchConfig(v *viper.Viper) types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: v.GetString("fetch.user-agent")},
		BaseURL:    v.GetString("fetch.base-url"),
		Context:    v.GetString("fetch.context"),
		Start:      v.GetInt("fetch.start"),
		End:        v.GetInt("fetch.end"),
		PapersDir:  v.GetString("papers-dir"),
	}
}

// fetchWorkerArgs is the argv a worker process needs to fetch with cfg.
func fetchWorkerArgs(cfg types.FetchConfig) []string {
	return []string{
		"worker", "fetch",
		"--start", strconv.Itoa(cfg.Start),
		"--end", strconv.Itoa(cfg.End),
		"--base-url", cfg.BaseURL,
		"--context", cfg.Context,
		"--user-agent", cfg.UserAgent,
		"--papers-dir", cfg.PapersDir,
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	cfg := fetchConfig(v)
	if err := fetch.Validate(cfg); err != nil {
		return err
	}

	dcfg, err := dispatchConfig(v)
	if err != nil {
		return err
	}
	rm := newRunMetrics(v.GetString("metrics-file"))
	defer rm.flush()

	w := os.Stdout
	opts, err := dispatchOptions(dcfg, w, v.GetBool("debug"), rm.metrics)
	if err != nil {
		return err
	}

	var isolated dispatch.ChunkFunc[int, types.Document]
	if opts.Strategy == dispatch.IsolatedPool {
		r, err := procpool.NewRunner(fetchWorkerArgs(cfg)...)
		if err != nil {
			return err
		}
		isolated = procpool.Isolated[int, types.Document](r)
	}

	fmt.Fprintln(w, "Paper fetcher is starting...")
	fmt.Fprintf(w, "run %s: indices %d-%d, %s with %d worker(s)\n\n",
		uuid.NewString(), cfg.Start, cfg.End, dcfg.Strategy, dcfg.Workers)

	f := fetch.New(httputil.NewClient(), cfg)
	_, err = dispatch.Timed(w, "", func() error {
		_, err := fetch.Batch(cmd.Context(), f, opts, isolated)
		fmt.Fprintln(w, "\nPaper fetcher is done!")
		return err
	})
	return err
}
