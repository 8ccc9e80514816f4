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

func TestRegisterIsIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}
}

func TestObserveReportNormalisesOutcome(t *testing.T) {
	before := testutil.ToFloat64(reportsTotal.WithLabelValues(OutcomeSuccess))
	ObserveReport(time.Millisecond, "anything")
	ObserveReport(-time.Second, OutcomeSuccess)
	if got := testutil.ToFloat64(reportsTotal.WithLabelValues(OutcomeSuccess)) - before; got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	SetAggregateRows("failure_delta", 42)
	ObserveDegenerateStatistic("detect_time_stdev")

	path := filepath.Join(t.TempDir(), "gsfd.prom")
	if err := WriteTextfile(path, reg); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `gsfd_analysis_aggregate_rows{layout="failure_delta"} 42`) {
		t.Fatalf("aggregate gauge missing from textfile:\n%s", text)
	}
	if !strings.Contains(text, `gsfd_analysis_degenerate_statistics_total{statistic="detect_time_stdev"}`) {
		t.Fatalf("degenerate counter missing from textfile:\n%s", text)
	}
}
