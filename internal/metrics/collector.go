// Package metrics exposes pipeline and delivery counters on a private
// Prometheus registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements the pipeline's metrics hooks. It owns its
// registry so the /metrics endpoint never leaks default Go collectors
// registered by dependencies.
type Collector struct {
	registry *prometheus.Registry

	cycleDuration prometheus.Histogram
	cyclesTotal   prometheus.Counter

	detected   *prometheus.CounterVec
	sent       *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	failed     *prometheus.CounterVec

	upstreamUp  *prometheus.GaugeVec
	dedupWindow prometheus.GaugeFunc
}

func NewCollector(windowLen func() int) *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{registry: reg}

	c.cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "enviro_cycle_duration_seconds",
		Help:    "Duration of full alert pipeline cycles",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})
	reg.MustRegister(c.cycleDuration)

	c.cyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enviro_cycles_total",
		Help: "Completed alert pipeline cycles",
	})
	reg.MustRegister(c.cyclesTotal)

	c.detected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enviro_alerts_detected_total",
		Help: "Alerts produced by the rule engine",
	}, []string{"hazard"})
	reg.MustRegister(c.detected)

	c.sent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enviro_alerts_sent_total",
		Help: "Alerts delivered to the push transport",
	}, []string{"hazard"})
	reg.MustRegister(c.sent)

	c.suppressed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enviro_alerts_suppressed_total",
		Help: "Alerts suppressed by the dedup window",
	}, []string{"hazard"})
	reg.MustRegister(c.suppressed)

	c.failed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enviro_alerts_dispatch_failed_total",
		Help: "Alerts that failed persistence or delivery",
	}, []string{"hazard"})
	reg.MustRegister(c.failed)

	c.upstreamUp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "enviro_upstream_up",
		Help: "Upstream data source status (1=real data, 0=simulated)",
	}, []string{"source"})
	reg.MustRegister(c.upstreamUp)

	if windowLen != nil {
		c.dedupWindow = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "enviro_dedup_window_entries",
			Help: "Entries currently held by the dedup window",
		}, func() float64 { return float64(windowLen()) })
		reg.MustRegister(c.dedupWindow)
	}

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveCycleDuration(d time.Duration) {
	c.cycleDuration.Observe(d.Seconds())
	c.cyclesTotal.Inc()
}

func (c *Collector) IncDetected(hazard string)       { c.detected.WithLabelValues(hazard).Inc() }
func (c *Collector) IncSent(hazard string)           { c.sent.WithLabelValues(hazard).Inc() }
func (c *Collector) IncSuppressed(hazard string)     { c.suppressed.WithLabelValues(hazard).Inc() }
func (c *Collector) IncDispatchFailed(hazard string) { c.failed.WithLabelValues(hazard).Inc() }

// SetUpstreamUp flags whether a source delivered real data this cycle.
func (c *Collector) SetUpstreamUp(source string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	c.upstreamUp.WithLabelValues(source).Set(v)
}
