package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecordFeed(t *testing.T) {
	m := New()
	m.RecordFeed(true)
	m.RecordFeed(true)
	m.RecordFeed(false)

	s := m.Snapshot()
	if s["feeds_fetched"].(int64) != 2 || s["feed_failures"].(int64) != 1 {
		t.Errorf("feed counters wrong: %v", s)
	}
}

func TestRecordLLMRequest(t *testing.T) {
	m := New()
	m.RecordLLMRequest(1000, 200, 0.006, nil)
	m.RecordLLMRequest(0, 0, 0, errors.New("timeout"))

	s := m.Snapshot()
	if s["llm_requests"].(int64) != 2 {
		t.Errorf("expected 2 requests, got %v", s["llm_requests"])
	}
	if s["llm_failures"].(int64) != 1 {
		t.Errorf("expected 1 failure, got %v", s["llm_failures"])
	}
	// Failed requests must not count tokens or cost.
	if s["input_tokens"].(int64) != 1000 || s["output_tokens"].(int64) != 200 {
		t.Errorf("token counters wrong: %v", s)
	}
	if s["estimated_usd"].(float64) != 0.006 {
		t.Errorf("cost wrong: %v", s["estimated_usd"])
	}
}

func TestIngestTimeAverage(t *testing.T) {
	m := New()
	m.RecordIngestTime(100 * time.Millisecond)
	m.RecordIngestTime(300 * time.Millisecond)

	if m.AverageIngestTime != 200*time.Millisecond {
		t.Errorf("expected 200ms average, got %v", m.AverageIngestTime)
	}
	if m.LastIngestTime != 300*time.Millisecond {
		t.Errorf("expected last 300ms, got %v", m.LastIngestTime)
	}
}

func TestHealthTransitions(t *testing.T) {
	m := New()
	if !m.Healthy() {
		t.Error("new metrics should start healthy")
	}

	m.SetError("feed storm")
	if m.Healthy() {
		t.Error("SetError must mark unhealthy")
	}
	if m.Snapshot()["last_error"].(string) != "feed storm" {
		t.Error("last error not recorded")
	}

	m.SetLastRun()
	if !m.Healthy() {
		t.Error("successful run must restore health")
	}
}
