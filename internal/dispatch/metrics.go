// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeProcessed = "processed"
	outcomeSkipped   = "skipped"
	outcomeFailed    = "failed"
)

// Metrics records batch activity as Prometheus collectors. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	items    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

// NewMetrics creates the batch collectors and registers them with reg.
// Registration panics on duplicate names, so use one registry per run.
//
//   - paper_miner_items_total{task,outcome}
//   - paper_miner_item_duration_seconds{task}
//   - paper_miner_in_flight{task}
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paper_miner_items_total",
				Help: "Work items handled, by task and outcome.",
			},
			[]string{"task", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paper_miner_item_duration_seconds",
				Help:    "Time spent on one work item.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "paper_miner_in_flight",
				Help: "Work items currently running.",
			},
			[]string{"task"},
		),
	}
	reg.MustRegister(m.items, m.duration, m.inFlight)
	return m
}

func (m *Metrics) observe(task, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.items.WithLabelValues(task, outcome).Inc()
	if elapsed > 0 {
		m.duration.WithLabelValues(task).Observe(elapsed.Seconds())
	}
}

// begin and end track n items entering and leaving work. A worker process
// running a chunk counts every item of the chunk.
func (m *Metrics) begin(task string, n int) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(task).Add(float64(n))
}

func (m *Metrics) end(task string, n int) {
	if m == nil {
		return
	}
	m.inFlight.WithLabelValues(task).Sub(float64(n))
}
