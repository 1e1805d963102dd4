// Package metrics counts what a sync run did and can persist the counters
// for a node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Feed outcomes.
const (
	OutcomeSynced      = "synced"
	OutcomeNotModified = "not_modified"
	OutcomeGone        = "gone"
	OutcomeFailed      = "failed"
)

// Item skip reasons.
const (
	SkipIncomplete     = "incomplete"
	SkipTooOld         = "too_old"
	SkipObserved       = "observed"
	SkipSeen           = "seen"
	SkipDownloadFailed = "download_failed"
)

// Recorder is what the sync engine reports into.
type Recorder interface {
	RecordFeedOutcome(outcome string)
	RecordFeedMoved()
	RecordFetchLatency(d time.Duration)
	RecordItemSkipped(reason string)
	RecordItemCataloged()
	RecordBytesDownloaded(n int64)
}

var _ Recorder = (*Collector)(nil)

type Collector struct {
	registry        *prometheus.Registry
	feedOutcomes    *prometheus.CounterVec
	feedMoves       prometheus.Counter
	fetchLatency    prometheus.Histogram
	itemsSkipped    *prometheus.CounterVec
	itemsCataloged  prometheus.Counter
	bytesDownloaded prometheus.Counter
	lastRun         prometheus.Gauge
}

// NewCollector registers the run metrics on reg.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		registry: reg,
		feedOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "howler_feeds_total",
			Help: "Feeds processed, by outcome.",
		}, []string{"outcome"}),
		feedMoves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howler_feed_moves_total",
			Help: "Permanent feed redirects applied to the store.",
		}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "howler_feed_fetch_seconds",
			Help:    "Feed document fetch latency.",
			Buckets: prometheus.DefBuckets,
		}),
		itemsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "howler_items_skipped_total",
			Help: "Feed items not recorded, by reason.",
		}, []string{"reason"}),
		itemsCataloged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howler_items_cataloged_total",
			Help: "Items recorded as seen.",
		}),
		bytesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howler_downloaded_bytes_total",
			Help: "Enclosure bytes written to disk.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "howler_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}

	reg.MustRegister(
		c.feedOutcomes,
		c.feedMoves,
		c.fetchLatency,
		c.itemsSkipped,
		c.itemsCataloged,
		c.bytesDownloaded,
		c.lastRun,
	)

	return c
}

func (c *Collector) RecordFeedOutcome(outcome string) {
	c.feedOutcomes.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordFeedMoved() {
	c.feedMoves.Inc()
}

func (c *Collector) RecordFetchLatency(d time.Duration) {
	c.fetchLatency.Observe(d.Seconds())
}

func (c *Collector) RecordItemSkipped(reason string) {
	c.itemsSkipped.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordItemCataloged() {
	c.itemsCataloged.Inc()
}

func (c *Collector) RecordBytesDownloaded(n int64) {
	if n > 0 {
		c.bytesDownloaded.Add(float64(n))
	}
}

// WriteTextfile stamps the run completion time and writes every registered
// metric to path atomically.
func (c *Collector) WriteTextfile(path string, finished time.Time) error {
	c.lastRun.Set(float64(finished.Unix()))

	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
