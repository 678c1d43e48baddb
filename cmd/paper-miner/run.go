// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-miner/internal/dispatch"
	"github.com/pdiddy/paper-miner/pkg/types"
)

const (
	defaultThreads   = 17
	defaultProcesses = 8
)

// dispatchConfig resolves the strategy and pool size from v. An explicit
// strategy wins over the parallel and multiprocessing toggles.
func dispatchConfig(v *viper.Viper) (types.DispatchConfig, error) {
	strategy := dispatch.StrategyFromFlags(v.GetBool("parallel"), v.GetBool("multiprocessing"))
	if name := v.GetString("strategy"); name != "" {
		s, err := dispatch.ParseStrategy(name)
		if err != nil {
			return types.DispatchConfig{}, err
		}
		strategy = s
	}

	cfg := types.DispatchConfig{Strategy: strategy.String(), ChunkSize: v.GetInt("chunk-size")}
	switch strategy {
	case dispatch.Sequential:
		cfg.Workers = 1
	case dispatch.SharedPool:
		cfg.Workers = v.GetInt("threads")
	case dispatch.IsolatedPool:
		cfg.Workers = v.GetInt("processes")
	}
	if cfg.Workers < 1 {
		return types.DispatchConfig{}, fmt.Errorf("%s needs a positive worker count, got %d", cfg.Strategy, cfg.Workers)
	}
	if cfg.ChunkSize < 0 {
		return types.DispatchConfig{}, fmt.Errorf("chunk size must not be negative, got %d", cfg.ChunkSize)
	}
	return cfg, nil
}

// dispatchOptions turns cfg into dispatcher options that write progress to w.
func dispatchOptions(cfg types.DispatchConfig, w io.Writer, debug bool, m *dispatch.Metrics) (dispatch.Options, error) {
	s, err := dispatch.ParseStrategy(cfg.Strategy)
	if err != nil {
		return dispatch.Options{}, err
	}
	return dispatch.Options{
		Strategy:  s,
		Workers:   cfg.Workers,
		ChunkSize: cfg.ChunkSize,
		Progress:  w,
		Verbose:   debug,
		Metrics:   m,
	}, nil
}

// runMetrics holds the collectors for one command invocation.
type runMetrics struct {
	reg     *prometheus.Registry
	metrics *dispatch.Metrics
	path    string
}

func newRunMetrics(path string) *runMetrics {
	reg := prometheus.NewRegistry()
	return &runMetrics{reg: reg, metrics: dispatch.NewMetrics(reg), path: path}
}

// flush writes the metrics text file when a path was configured. Failures
// are reported as warnings.
func (r *runMetrics) flush() {
	if r.path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(r.path, r.reg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: writing metrics to %s: %v\n", r.path, err)
	}
}
