package metrics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)
	end := time.Date(2025, 11, 28, 10, 0, 0, 0, time.UTC)

	m.ObserveRun("cache-warm", 250*time.Millisecond, end, nil)
	m.ObserveRun("cache-warm", time.Second, end.Add(time.Minute), errors.New("redis down"))
	m.ObserveRun("", time.Millisecond, end, nil)
	m.IncSkipped()
	m.IncSkipped()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	runs := []struct {
		labels map[string]string
		want   float64
	}{
		{map[string]string{"job": "cache-warm", "outcome": OutcomeSuccess}, 1},
		{map[string]string{"job": "cache-warm", "outcome": OutcomeFailure}, 1},
		{map[string]string{"job": "unknown", "outcome": OutcomeSuccess}, 1},
	}
	for _, tc := range runs {
		if got := counterValue(t, mfs, "catalog_cron_job_runs_total", tc.labels); got != tc.want {
			t.Fatalf("runs%v = %v, want %v", tc.labels, got, tc.want)
		}
	}
	if got := counterValue(t, mfs, "catalog_cron_cycles_skipped_total", nil); got != 2 {
		t.Fatalf("expected 2 skipped cycles, got %v", got)
	}

	// a failure does not move the last success gauge
	gauge := findMetric(t, mfs, "catalog_cron_job_last_success_timestamp_seconds", map[string]string{"job": "cache-warm"})
	if got := gauge.GetGauge().GetValue(); got != float64(end.Unix()) {
		t.Fatalf("last success = %v, want %v", got, end.Unix())
	}

	hist := findMetric(t, mfs, "catalog_cron_job_duration_seconds", map[string]string{"job": "cache-warm"}).GetHistogram()
	if hist.GetSampleCount() != 2 || math.Abs(hist.GetSampleSum()-1.25) > 1e-9 {
		t.Fatalf("unexpected histogram count=%d sum=%v", hist.GetSampleCount(), hist.GetSampleSum())
	}
}

func TestCronJobMetricsNilSafe(t *testing.T) {
	var m *CronJobMetrics
	m.ObserveRun("x", time.Second, time.Now(), nil)
	m.IncSkipped()
	NewCronJobMetrics(nil).ObserveRun("", time.Second, time.Now(), errors.New("x"))
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	return findMetric(t, mfs, name, labels).GetCounter().GetValue()
}

func findMetric(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabels(metric.GetLabel(), labels) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func hasLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
