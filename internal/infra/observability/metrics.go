package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	classified       *prometheus.CounterVec
	writesTotal      *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. A private registry lets tests build as many as
// they like.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "licenciamento_upstream_duration_seconds",
				Help:    "Duration of licensing backend calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licenciamento_upstream_errors_total",
				Help: "Failed licensing backend calls by operation.",
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licenciamento_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licenciamento_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		classified: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licenciamento_condicionantes_classified_total",
				Help: "Compliance items classified, by urgency tier.",
			},
			[]string{"tier"},
		),
		writesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "licenciamento_writes_total",
				Help: "Writes forwarded to the backend, by entity and refetch outcome.",
			},
			[]string{"entity", "refetch"},
		),
	}
}

// RecordUpstream records one backend call.
func (m *Metrics) RecordUpstream(operation string, d time.Duration, err error) {
	m.upstreamDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.upstreamErrors.WithLabelValues(operation).Inc()
	}
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordClassified adds n items to the counter of the given tier.
func (m *Metrics) RecordClassified(tier string, n int) {
	if n <= 0 {
		return
	}
	m.classified.WithLabelValues(tier).Add(float64(n))
}

// RecordWrite counts a write and whether its refetch succeeded.
func (m *Metrics) RecordWrite(entity string, refetchOK bool) {
	outcome := "ok"
	if !refetchOK {
		outcome = "stale"
	}
	m.writesTotal.WithLabelValues(entity, outcome).Inc()
}

// Snapshot is a JSON-friendly summary of the counters.
type Snapshot struct {
	UpstreamErrors  float64            `json:"upstream_errors"`
	CacheHitRate    float64            `json:"cache_hit_rate"`
	Classified      map[string]float64 `json:"classificadas"`
	StaleRefetches  float64            `json:"refetch_falhos"`
	CollectedAtUnix int64              `json:"collected_at"`
}

// Snapshot gathers the current counter values.
func (m *Metrics) Snapshot(tiers []string) Snapshot {
	hits := sumCounterVec(m.cacheHits)
	misses := sumCounterVec(m.cacheMisses)

	s := Snapshot{
		UpstreamErrors:  sumCounterVec(m.upstreamErrors),
		Classified:      make(map[string]float64, len(tiers)),
		CollectedAtUnix: time.Now().Unix(),
	}
	if hits+misses > 0 {
		s.CacheHitRate = hits / (hits + misses)
	}
	for _, t := range tiers {
		s.Classified[t] = getCounterValue(m.classified, t)
	}
	for _, entity := range []string{"empresa", "licenca", "condicionante"} {
		s.StaleRefetches += getCounterValue(m.writesTotal, entity, "stale")
	}
	return s
}

// getCounterValue extracts the current value of one child of a CounterVec.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	m := &dto.Metric{}
	if err := counter.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounterVec adds up every child of a CounterVec.
func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 64)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	total := 0.0
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}
