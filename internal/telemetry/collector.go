// Package telemetry exports the client and dashboard metrics to Prometheus.
package telemetry

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdziat/robodash"
)

const namespace = "robodash"

// Collector implements robodash.Metrics on a private Prometheus registry.
// Metric names such as "viz.fetch.lengths" become the name label of a
// shared vector.
type Collector struct {
	registry *prometheus.Registry

	// Counters
	events   *prometheus.CounterVec
	requests *prometheus.CounterVec

	// Histograms
	durations *prometheus.HistogramVec
	latency   *prometheus.HistogramVec

	// Gauges
	gauges *prometheus.GaugeVec

	// Internal tracking for summary
	mu        sync.Mutex
	startTime time.Time
	counts    map[string]int64
}

var _ robodash.Metrics = (*Collector)(nil)

// NewCollector creates a collector with Go runtime and process metrics
// registered.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	c := &Collector{
		registry:  reg,
		startTime: time.Now(),
		counts:    make(map[string]int64),
	}

	c.events = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Client and pipeline events by name",
	}, []string{"name"})

	c.durations = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "duration_seconds",
		Help:      "Durations of requests and fetchers by name",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"name"})

	c.gauges = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gauge",
		Help:      "Last reported values by name",
	}, []string{"name"})

	c.requests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Dashboard HTTP requests by route and status code",
	}, []string{"route", "code", "method"})

	c.latency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Dashboard HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "code", "method"})

	return c
}

// IncrementCounter implements robodash.Metrics.
func (c *Collector) IncrementCounter(name string, value int64) {
	if value < 0 {
		return
	}
	c.events.WithLabelValues(name).Add(float64(value))

	c.mu.Lock()
	c.counts[name] += value
	c.mu.Unlock()
}

// RecordDuration implements robodash.Metrics.
func (c *Collector) RecordDuration(name string, duration time.Duration) {
	c.durations.WithLabelValues(name).Observe(duration.Seconds())
}

// SetGauge implements robodash.Metrics.
func (c *Collector) SetGauge(name string, value float64) {
	c.gauges.WithLabelValues(name).Set(value)
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Instrument wraps h with request count and latency metrics labeled route.
func (c *Collector) Instrument(route string, h http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	h = promhttp.InstrumentHandlerDuration(c.latency.MustCurryWith(labels), h)
	return promhttp.InstrumentHandlerCounter(c.requests.MustCurryWith(labels), h)
}

// Count is one entry of Summary.
type Count struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Summary returns the counter totals since the collector was created,
// sorted by name.
func (c *Collector) Summary() (uptime time.Duration, counts []Count) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counts = make([]Count, 0, len(c.counts))
	for name, v := range c.counts {
		counts = append(counts, Count{Name: name, Value: v})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Name < counts[j].Name })
	return time.Since(c.startTime), counts
}
