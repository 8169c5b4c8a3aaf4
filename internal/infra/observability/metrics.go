package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/sanchaya/pigmy-bfa-go/internal/domain"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration     *prometheus.HistogramVec
	externalErrors      *prometheus.CounterVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	collectionsRecorded *prometheus.CounterVec
	snapshotsComputed   prometheus.Counter
	missedDeposits      prometheus.Counter
	requestsTotal       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pigmy_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pigmy_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pigmy_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pigmy_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		collectionsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pigmy_collections_recorded_total",
				Help: "Total deposit collections recorded, by payment method.",
			},
			[]string{"method"},
		),
		snapshotsComputed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pigmy_ledger_snapshots_total",
				Help: "Total ledger snapshots computed.",
			},
		),
		missedDeposits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pigmy_missed_deposits_observed_total",
				Help: "Missed deposits observed across computed snapshots.",
			},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pigmy_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrCollectionRecorded increments the collections counter for a payment method.
func (m *Metrics) IncrCollectionRecorded(method string) {
	m.collectionsRecorded.WithLabelValues(method).Inc()
}

// IncrSnapshotComputed increments the ledger snapshot counter.
func (m *Metrics) IncrSnapshotComputed() {
	m.snapshotsComputed.Inc()
}

// ObserveMissedDeposits adds a snapshot's missed-deposit count to the
// running total.
func (m *Metrics) ObserveMissedDeposits(n int) {
	if n > 0 {
		m.missedDeposits.Add(float64(n))
	}
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetCollectionSnapshot returns a snapshot of collection-related metrics
// suitable for the GET /v1/metrics/collections endpoint.
func (m *Metrics) GetCollectionSnapshot() *domain.CollectionMetrics {
	// Gather current values from Prometheus counters.
	// Note: Prometheus counters expose cumulative values.
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")
	collections := getCounterValue(m.collectionsRecorded, "cash") +
		getCounterValue(m.collectionsRecorded, "upi") +
		getCounterValue(m.collectionsRecorded, "cheque")
	cacheHits := getCounterValue(m.cacheHits, "account")
	cacheMisses := getCounterValue(m.cacheMisses, "account")

	errorRate := float64(0)
	cacheHitRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.CollectionMetrics{
		TotalRequests:       int64(totalRequests),
		ErrorRate:           errorRate,
		CollectionsRecorded: int64(collections),
		SnapshotsComputed:   int64(getCounter(m.snapshotsComputed)),
		CacheHitRate:        cacheHitRate,
		Period:              "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// getCounter extracts the current float64 value from a plain Counter.
func getCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
