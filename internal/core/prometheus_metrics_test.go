package core

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	rec.Observe(context.Background(), "save_source", true, 20*time.Millisecond)
	rec.Observe(context.Background(), "save_source", true, 5*time.Millisecond)
	rec.Observe(context.Background(), "save_source", false, time.Millisecond)
	rec.Observe(context.Background(), "", true, time.Millisecond)

	if got := testutil.ToFloat64(rec.operations.WithLabelValues("save_source", "success")); got != 2 {
		t.Fatalf("success counter: %v", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("save_source", "error")); got != 1 {
		t.Fatalf("error counter: %v", got)
	}
	if count := testutil.CollectAndCount(rec.durations); count == 0 {
		t.Fatalf("expected histogram samples")
	}
}

func TestPrometheusMetricsRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetricsRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
