package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordFeedOutcome(OutcomeSynced)
	c.RecordFeedOutcome(OutcomeSynced)
	c.RecordFeedOutcome(OutcomeGone)
	c.RecordFeedMoved()
	c.RecordItemSkipped(SkipSeen)
	c.RecordItemCataloged()
	c.RecordBytesDownloaded(2048)
	c.RecordBytesDownloaded(-1)

	if got := testutil.ToFloat64(c.feedOutcomes.WithLabelValues(OutcomeSynced)); got != 2 {
		t.Errorf("Expected 2 synced feeds, got %v", got)
	}
	if got := testutil.ToFloat64(c.feedOutcomes.WithLabelValues(OutcomeGone)); got != 1 {
		t.Errorf("Expected 1 gone feed, got %v", got)
	}
	if got := testutil.ToFloat64(c.feedMoves); got != 1 {
		t.Errorf("Expected 1 feed move, got %v", got)
	}
	if got := testutil.ToFloat64(c.itemsSkipped.WithLabelValues(SkipSeen)); got != 1 {
		t.Errorf("Expected 1 seen skip, got %v", got)
	}
	if got := testutil.ToFloat64(c.itemsCataloged); got != 1 {
		t.Errorf("Expected 1 cataloged item, got %v", got)
	}
	if got := testutil.ToFloat64(c.bytesDownloaded); got != 2048 {
		t.Errorf("Expected 2048 bytes, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.RecordFeedOutcome(OutcomeNotModified)
	c.RecordFetchLatency(150 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "howler.prom")
	if err := c.WriteTextfile(path, time.Unix(1700000000, 0)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		`howler_feeds_total{outcome="not_modified"} 1`,
		"howler_feed_fetch_seconds_count 1",
		"howler_last_run_timestamp_seconds 1.7e+09",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected metrics file to contain %q, got:\n%s", want, out)
		}
	}
}
