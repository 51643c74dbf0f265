package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yardimli/learn-with-ai-sub000/internal/calendar"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
)

// durationTally keeps a count and a nanosecond sum so snapshots can report averages
// without reading Prometheus collectors back.
type durationTally struct {
	count uint64
	nanos uint64
}

func (t *durationTally) add(d time.Duration) {
	atomic.AddUint64(&t.count, 1)
	atomic.AddUint64(&t.nanos, uint64(d.Nanoseconds()))
}

func (t *durationTally) load() (uint64, float64) {
	count := atomic.LoadUint64(&t.count)
	if count == 0 {
		return 0, 0
	}
	nanos := atomic.LoadUint64(&t.nanos)
	return count, float64(nanos) / float64(count) / float64(time.Millisecond)
}

// MetricsService owns the Prometheus registry for the calendar API and keeps
// running tallies for the JSON system snapshot.
type MetricsService struct {
	handler http.Handler

	httpDuration *prometheus.HistogramVec
	httpTotal    *prometheus.CounterVec

	cacheLookups  *prometheus.CounterVec
	cacheLatency  prometheus.Histogram
	cacheWrites   prometheus.Histogram
	cacheHitRatio prometheus.Gauge

	queryDuration *prometheus.HistogramVec

	allocations        *prometheus.CounterVec
	allocationDuration prometheus.Histogram
	cells              *prometheus.CounterVec

	requests  durationTally
	queries   durationTally
	allocRuns durationTally
	hits      uint64
	misses    uint64
}

// NewMetricsService builds a private registry with HTTP, cache, query and allocator collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route template",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route template and status",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plan_cache_lookups_total",
			Help: "Plan cache lookups by result",
		}, []string{"result"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plan_cache_lookup_seconds",
			Help:    "Plan cache read latency",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrites: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plan_cache_write_seconds",
			Help:    "Plan cache write latency",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plan_cache_hit_ratio",
			Help: "Share of plan cache lookups served from Redis",
		}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency by label",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calendar_allocations_total",
			Help: "Calendar allocation runs by outcome",
		}, []string{"outcome"}),
		allocationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "calendar_allocation_duration_seconds",
			Help:    "Calendar allocation latency",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		cells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "calendar_cells_total",
			Help: "Calendar cells produced by content kind",
		}, []string{"kind"}),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		m.httpDuration, m.httpTotal,
		m.cacheLookups, m.cacheLatency, m.cacheWrites, m.cacheHitRatio,
		m.queryDuration,
		m.allocations, m.allocationDuration, m.cells,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "goroutines_total",
			Help: "Live goroutines",
		}, func() float64 { return float64(runtime.NumGoroutine()) }),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.httpTotal.WithLabelValues(method, path, code).Inc()
	m.requests.add(duration)
}

// RecordCacheOperation records a plan cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.hits, 1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.misses, 1)
	}
	m.cacheHitRatio.Set(m.hitRatio())
}

// ObserveCacheWrite records a plan cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrites.Observe(duration.Seconds())
}

// ObserveDBQuery records query timing under label.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.queries.add(duration)
}

// ObserveAllocation records one calendar allocation run. Failed runs only bump
// the error counter.
func (m *MetricsService) ObserveAllocation(stats *calendar.Stats, duration time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.allocations.WithLabelValues("error").Inc()
		return
	}
	m.allocations.WithLabelValues("ok").Inc()
	m.allocationDuration.Observe(duration.Seconds())
	m.allocRuns.add(duration)
	if stats == nil {
		return
	}
	for kind, n := range map[calendar.ContentKind]int{
		calendar.KindLesson:          stats.Lessons,
		calendar.KindMissing:         stats.Missing,
		calendar.KindSpecialActivity: stats.SpecialActivities,
		calendar.KindEmpty:           stats.Empty,
	} {
		m.cells.WithLabelValues(string(kind)).Add(float64(n))
	}
}

// Snapshot returns aggregated counters for the system metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests, avgRequest := m.requests.load()
	queries, avgQuery := m.queries.load()
	runs, avgRun := m.allocRuns.load()

	return models.SystemMetrics{
		CacheHitRatio:               m.hitRatio(),
		CacheHits:                   atomic.LoadUint64(&m.hits),
		CacheMisses:                 atomic.LoadUint64(&m.misses),
		RequestsTotal:               requests,
		AverageRequestDurationMs:    avgRequest,
		DBQueryCount:                queries,
		AverageDBQueryDurationMs:    avgQuery,
		CalendarAllocations:         runs,
		AverageAllocationDurationMs: avgRun,
		Goroutines:                  runtime.NumGoroutine(),
		GeneratedAt:                 time.Now().UTC(),
	}
}

func (m *MetricsService) hitRatio() float64 {
	hits := atomic.LoadUint64(&m.hits)
	total := hits + atomic.LoadUint64(&m.misses)
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
