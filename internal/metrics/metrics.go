package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
// A nil *Registry is valid and records nothing.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Pipeline metrics
	ledgerLoads    *prometheus.CounterVec
	quoteFetches   *prometheus.CounterVec
	newsFetches    *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	narratives     *prometheus.CounterVec
	batchRuns      *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	positions      prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.ledgerLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_ledger_loads_total",
			Help: "Total number of ledger loads",
		},
		[]string{"status"},
	)
	r.quoteFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_quote_fetches_total",
			Help: "Total number of upstream quote fetches",
		},
		[]string{"source", "status"},
	)
	r.newsFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_news_fetches_total",
			Help: "Total number of upstream news fetches",
		},
		[]string{"source", "status"},
	)
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"cache", "result"},
	)
	r.narratives = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_narratives_total",
			Help: "Total number of narrative generations",
		},
		[]string{"status"},
	)
	r.batchRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_narrative_batches_total",
			Help: "Total number of narrative batch runs",
		},
		[]string{"status"},
	)
	r.renderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_render_duration_seconds",
			Help:    "Time to assemble a view in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"view"},
	)
	r.positions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_ledger_positions",
			Help: "Number of positions in the last loaded ledger",
		},
	)

	reg.MustRegister(r.ledgerLoads)
	reg.MustRegister(r.quoteFetches)
	reg.MustRegister(r.newsFetches)
	reg.MustRegister(r.cacheLookups)
	reg.MustRegister(r.narratives)
	reg.MustRegister(r.batchRuns)
	reg.MustRegister(r.renderDuration)
	reg.MustRegister(r.positions)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	if r == nil {
		return
	}
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Dec()
}

// RecordLedgerLoad records a ledger load and, on success, its size.
func (r *Registry) RecordLedgerLoad(status string, positions int) {
	if r == nil {
		return
	}
	r.ledgerLoads.WithLabelValues(status).Inc()
	if status == StatusOK {
		r.positions.Set(float64(positions))
	}
}

// RecordQuoteFetch records one upstream quote request.
func (r *Registry) RecordQuoteFetch(source, status string) {
	if r == nil {
		return
	}
	r.quoteFetches.WithLabelValues(source, status).Inc()
}

// RecordNewsFetch records one upstream news request.
func (r *Registry) RecordNewsFetch(source, status string) {
	if r == nil {
		return
	}
	r.newsFetches.WithLabelValues(source, status).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (r *Registry) RecordCacheLookup(cache string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(cache, result).Inc()
}

// CacheObserver returns a callback suitable for cache.Store.OnLookup.
func (r *Registry) CacheObserver(cache string) func(hit bool) {
	return func(hit bool) {
		r.RecordCacheLookup(cache, hit)
	}
}

// RecordNarrative records the outcome of one narrative generation.
func (r *Registry) RecordNarrative(status string) {
	if r == nil {
		return
	}
	r.narratives.WithLabelValues(status).Inc()
}

// RecordBatch records a completed narrative batch run.
func (r *Registry) RecordBatch(status string) {
	if r == nil {
		return
	}
	r.batchRuns.WithLabelValues(status).Inc()
}

// RecordRender records how long a view took to assemble.
func (r *Registry) RecordRender(view string, duration float64) {
	if r == nil {
		return
	}
	r.renderDuration.WithLabelValues(view).Observe(duration)
}

// Status label values shared by pipeline metrics.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
