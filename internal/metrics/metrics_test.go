package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}
}

func TestRegistry_HTTPMetrics(t *testing.T) {
	reg := NewRegistry()

	// Verify HTTP metrics are registered
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	// Should have go runtime metrics at minimum
	if len(mfs) == 0 {
		t.Error("expected some metrics to be registered")
	}
}

func TestRegistry_RecordRequest(t *testing.T) {
	reg := NewRegistry()

	reg.RecordRequest("GET", "/api/v1/portfolio", 200, 0.05)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := false
	for _, mf := range mfs {
		if mf.GetName() == "http_requests_total" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected http_requests_total metric")
	}
}

func TestRegistry_RecordRequest_StatusCodes(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			reg := NewRegistry()
			reg.RecordRequest("GET", "/test", tt.status, 0.01)

			mfs, err := reg.Gather()
			if err != nil {
				t.Fatalf("gather failed: %v", err)
			}

			found := false
			for _, mf := range mfs {
				if mf.GetName() == "http_requests_total" {
					for _, m := range mf.GetMetric() {
						for _, label := range m.GetLabel() {
							if label.GetName() == "status" && label.GetValue() == tt.expected {
								found = true
							}
						}
					}
				}
			}
			if !found {
				t.Errorf("expected status label %s for status code %d", tt.expected, tt.status)
			}
		})
	}
}

func TestRegistry_InFlight(t *testing.T) {
	reg := NewRegistry()

	reg.InFlightInc()
	reg.InFlightInc()
	reg.InFlightDec()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := false
	for _, mf := range mfs {
		if mf.GetName() == "http_requests_in_flight" {
			found = true
			for _, m := range mf.GetMetric() {
				if m.GetGauge().GetValue() != 1 {
					t.Errorf("expected in-flight gauge to be 1, got %v", m.GetGauge().GetValue())
				}
			}
		}
	}
	if !found {
		t.Error("expected http_requests_in_flight metric")
	}
}

func TestRegistry_DurationHistogram(t *testing.T) {
	reg := NewRegistry()

	reg.RecordRequest("POST", "/api/v1/narratives", 200, 0.123)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	found := false
	for _, mf := range mfs {
		if mf.GetName() == "http_request_duration_seconds" {
			found = true
			for _, m := range mf.GetMetric() {
				hist := m.GetHistogram()
				if hist.GetSampleCount() != 1 {
					t.Errorf("expected sample count 1, got %d", hist.GetSampleCount())
				}
				if hist.GetSampleSum() < 0.12 || hist.GetSampleSum() > 0.13 {
					t.Errorf("expected sample sum ~0.123, got %v", hist.GetSampleSum())
				}
			}
		}
	}
	if !found {
		t.Error("expected http_request_duration_seconds metric")
	}
}

// Ensure the registry implements prometheus.Gatherer interface
func TestRegistry_ImplementsGatherer(t *testing.T) {
	reg := NewRegistry()
	var _ prometheus.Gatherer = reg
}

func counterValue(t *testing.T, reg *Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, label := range m.GetLabel() {
				if want, ok := labels[label.GetName()]; ok && want == label.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestRegistry_PipelineMetrics(t *testing.T) {
	reg := NewRegistry()

	reg.RecordLedgerLoad(StatusOK, 12)
	reg.RecordLedgerLoad(StatusError, 0)
	reg.RecordQuoteFetch("yahoo", StatusOK)
	reg.RecordQuoteFetch("yahoo", StatusOK)
	reg.RecordNewsFetch("finnhub", StatusError)
	reg.RecordNarrative(StatusError)
	reg.RecordBatch(StatusOK)
	reg.RecordRender("portfolio", 0.2)

	observe := reg.CacheObserver("quotes")
	observe(true)
	observe(false)
	observe(false)

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"folio_ledger_loads_total", map[string]string{"status": "ok"}, 1},
		{"folio_ledger_loads_total", map[string]string{"status": "error"}, 1},
		{"folio_quote_fetches_total", map[string]string{"source": "yahoo", "status": "ok"}, 2},
		{"folio_news_fetches_total", map[string]string{"source": "finnhub", "status": "error"}, 1},
		{"folio_narratives_total", map[string]string{"status": "error"}, 1},
		{"folio_narrative_batches_total", map[string]string{"status": "ok"}, 1},
		{"folio_cache_lookups_total", map[string]string{"cache": "quotes", "result": "hit"}, 1},
		{"folio_cache_lookups_total", map[string]string{"cache": "quotes", "result": "miss"}, 2},
	}
	for _, tt := range tests {
		if got := counterValue(t, reg, tt.name, tt.labels); got != tt.want {
			t.Errorf("%s%v = %v, want %v", tt.name, tt.labels, got, tt.want)
		}
	}

	mfs, _ := reg.Gather()
	for _, mf := range mfs {
		if mf.GetName() == "folio_ledger_positions" {
			if v := mf.GetMetric()[0].GetGauge().GetValue(); v != 12 {
				t.Errorf("expected positions gauge 12, got %v", v)
			}
		}
	}
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var reg *Registry
	reg.RecordRequest("GET", "/", 200, 0.1)
	reg.InFlightInc()
	reg.InFlightDec()
	reg.RecordLedgerLoad(StatusOK, 1)
	reg.RecordQuoteFetch("yahoo", StatusOK)
	reg.RecordNewsFetch("finnhub", StatusOK)
	reg.RecordNarrative(StatusOK)
	reg.RecordBatch(StatusOK)
	reg.RecordRender("portfolio", 0.1)
	reg.CacheObserver("quotes")(true)
}
