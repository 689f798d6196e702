package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/vehicles", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/vehicles", "GET", 200, 30*time.Millisecond)
	m.RecordError("/vehicles/:id/approve", "PATCH", "CONFLICT")

	snap := m.Snapshot()
	if got := snap.Requests["/vehicles|GET|200"]; got != 2 {
		t.Fatalf("requests=%d", got)
	}
	if got := snap.AverageLatency["/vehicles|GET|200"]; got != "20ms" {
		t.Fatalf("average latency=%q", got)
	}
	if got := snap.Errors["/vehicles/:id/approve|PATCH|CONFLICT"]; got != 1 {
		t.Fatalf("errors=%d", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	if snap := m.Snapshot(); len(snap.Requests) != 0 {
		t.Fatal("expected empty snapshot")
	}
}
