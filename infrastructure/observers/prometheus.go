package observers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/PedroGaya/sandl/internal/ports"
)

var _ ports.Observer = (*Metrics)(nil)

// Metrics exports execution counters and latency histograms to Prometheus.
// Register it as an observer to monitor slice throughput, per-method
// failure rates, and duration distributions in real time.
type Metrics struct {
	slicesCompleted prometheus.Counter
	sliceDuration   prometheus.Histogram
	methodsTotal    *prometheus.CounterVec
	methodDuration  *prometheus.HistogramVec
}

// NewMetrics creates a metrics observer registered against reg. Passing
// nil uses the default Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		slicesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sandl_slices_completed_total",
			Help: "Total number of slices that finished executing.",
		}),
		sliceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sandl_slice_duration_seconds",
			Help:    "Wall-clock duration of slice execution.",
			Buckets: prometheus.DefBuckets,
		}),
		methodsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sandl_methods_total",
				Help: "Method invocations by layer, method, and outcome.",
			},
			[]string{"layer", "method", "status"},
		),
		methodDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sandl_method_duration_seconds",
				Help:    "Wall-clock duration of successful method invocations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"layer", "method"},
		),
	}
}

// OnSliceStart implements ports.Observer.
func (m *Metrics) OnSliceStart(string) {}

// OnSliceComplete implements ports.Observer.
func (m *Metrics) OnSliceComplete(_ string, d time.Duration) {
	m.slicesCompleted.Inc()
	m.sliceDuration.Observe(d.Seconds())
}

// OnMethodStart implements ports.Observer.
func (m *Metrics) OnMethodStart(string, string, string) {}

// OnMethodComplete implements ports.Observer.
func (m *Metrics) OnMethodComplete(_, layer, method string, d time.Duration) {
	m.methodsTotal.WithLabelValues(layer, method, "ok").Inc()
	m.methodDuration.WithLabelValues(layer, method).Observe(d.Seconds())
}

// OnMethodFailed implements ports.Observer.
func (m *Metrics) OnMethodFailed(_, layer, method string, err error) {
	m.methodsTotal.WithLabelValues(layer, method, "failed").Inc()
}
