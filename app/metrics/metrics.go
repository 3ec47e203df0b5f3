package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ims_sessions"

// Lookup and fetch outcomes used as label values.
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheStale   = "stale"
	CacheCorrupt = "corrupt"
	CacheError   = "error"

	FetchSuccess    = "success"
	FetchError      = "error"
	FetchParseError = "parse_error"

	RequestOK          = "ok"
	RequestInvalid     = "invalid_ref"
	RequestUnavailable = "unavailable"
	RequestFailed      = "failed"
)

type Metrics struct {
	registry *prometheus.Registry

	SessionRequests *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	UpstreamFetches *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	SessionsServed  prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Session lookups by outcome.",
		}, []string{"result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Feed snapshot lookups by result.",
		}, []string{"result"}),
		UpstreamFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "Upstream IMS feed fetches by result.",
		}, []string{"result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Duration of upstream IMS feed fetches.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SessionsServed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sessions_per_response",
			Help:      "Number of sessions returned per successful response.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 24},
		}),
	}

	m.registry.MustRegister(
		m.SessionRequests,
		m.CacheLookups,
		m.UpstreamFetches,
		m.FetchDuration,
		m.SessionsServed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) CacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) UpstreamFetch(result string) {
	m.UpstreamFetches.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionRequest(result string) {
	m.SessionRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionsReturned(count int) {
	m.SessionsServed.Observe(float64(count))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
