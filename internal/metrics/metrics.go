// Package metrics exports IME dialog activity as Prometheus metrics.
//
// A Collector owns its own registry. Each dialog gets a fresh observer from
// Collector.Observer, which is installed with imedialog.WithObserver.
package metrics

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muurk/orbis-ime/internal/imedialog"
)

const namespace = "orbis_ime"

// Collector holds the dialog metrics
type Collector struct {
	registry *prometheus.Registry

	opened     prometheus.Counter
	active     prometheus.Gauge
	finished   *prometheus.CounterVec
	keys       *prometheus.CounterVec
	rejections *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   prometheus.Histogram
}

// New creates a Collector with the Go runtime and process collectors
// registered alongside the dialog metrics.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		opened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialogs_opened_total",
			Help:      "Total number of dialogs that rendered their first frame",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dialogs_active",
			Help:      "Dialogs opened and not yet finished",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialogs_finished_total",
			Help:      "Total number of finished dialogs by end status",
		}, []string{"end"}),
		keys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_total",
			Help:      "Key events by keyboard filter status",
		}, []string{"status"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_rejections_total",
			Help:      "Commits refused by a filter",
		}, []string{"filter"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversion_failures_total",
			Help:      "Failed text conversions by error kind",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dialog_duration_seconds",
			Help:      "Time from first frame to dialog end",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
	}

	c.registry.MustRegister(
		c.opened, c.active, c.finished, c.keys, c.rejections, c.failures, c.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the registry the collector writes to
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Observer returns an observer for one dialog
func (c *Collector) Observer() imedialog.Observer {
	return &dialogObserver{c: c, now: time.Now}
}

type dialogObserver struct {
	c   *Collector
	now func() time.Time

	mu      sync.Mutex
	started time.Time
	open    bool
}

func (o *dialogObserver) DialogOpened() {
	o.mu.Lock()
	o.started, o.open = o.now(), true
	o.mu.Unlock()

	o.c.opened.Inc()
	o.c.active.Inc()
}

func (o *dialogObserver) KeyProcessed(status imedialog.KeyStatus) {
	o.c.keys.WithLabelValues(status.String()).Inc()
}

func (o *dialogObserver) FilterRejected(filter string) {
	o.c.rejections.WithLabelValues(filter).Inc()
}

func (o *dialogObserver) ConversionFailed(err error) {
	o.c.failures.WithLabelValues(kindLabel(imedialog.KindOf(err))).Inc()
}

func (o *dialogObserver) DialogFinished(end imedialog.EndStatus) {
	o.c.finished.WithLabelValues(end.String()).Inc()

	o.mu.Lock()
	wasOpen := o.open
	o.open = false
	elapsed := o.now().Sub(o.started)
	o.mu.Unlock()

	// Dialogs aborted before their first frame never counted as active
	if wasOpen {
		o.c.active.Dec()
		o.c.duration.Observe(elapsed.Seconds())
	}
}

func kindLabel(k imedialog.ErrorKind) string {
	if k == 0 {
		return "unknown"
	}
	return strings.ReplaceAll(strings.ToLower(k.String()), " ", "_")
}
