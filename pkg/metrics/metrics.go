// Package metrics exposes document activity as prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/chazu/paracad/pkg/document"
)

const metricsNamespace = "paracad"

// Outcome labels.
const (
	OutcomeRecomputed = "recomputed"
	OutcomeSkipped    = "skipped"
	OutcomeErrored    = "errored"
	OutcomeAborted    = "aborted"
)

// Object event labels.
const (
	EventCreated = "created"
	EventDeleted = "deleted"
)

// Collector is a prometheus.Collector that collects metrics about the
// documents it observes. Subscribe it to a document with
// Document.Subscribe or document.WithObserver.
type Collector struct {
	passes          prometheus.Counter
	outcomes        *prometheus.CounterVec
	objects         *prometheus.CounterVec
	propertyChanges prometheus.Counter
	failing         prometheus.Gauge
	passDuration    prometheus.Histogram
}

var _ document.Observer = (*Collector)(nil)

// NewMetricsCollector returns a new Collector.
func NewMetricsCollector() *Collector {
	return &Collector{
		passes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "recompute_passes_total",
				Help:      "The number of recompute passes run.",
			},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "recompute_objects_total",
				Help:      "The number of objects visited by recompute passes, by outcome.",
			}, []string{"outcome"},
		),
		objects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "objects_total",
				Help:      "The number of objects created and deleted.",
			}, []string{"event"},
		),
		propertyChanges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "property_changes_total",
				Help:      "The number of property changes.",
			},
		),
		failing: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "failing_objects",
				Help:      "The number of objects left in error or aborted by the last pass.",
			},
		),
		passDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "recompute_duration_seconds",
				Help:      "The time taken by a recompute pass.",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
			},
		),
	}
}

// ObjectCreated is part of the document.Observer interface.
func (c *Collector) ObjectCreated(*document.Object) {
	c.objects.WithLabelValues(EventCreated).Inc()
}

// ObjectAboutToBeDeleted is part of the document.Observer interface.
func (c *Collector) ObjectAboutToBeDeleted(*document.Object) {
	c.objects.WithLabelValues(EventDeleted).Inc()
}

// PropertyChanged is part of the document.Observer interface.
func (c *Collector) PropertyChanged(*document.Object, string) {
	c.propertyChanges.Inc()
}

// Recomputed is part of the document.Observer interface.
func (c *Collector) Recomputed(r *document.Report) {
	c.passes.Inc()
	c.outcomes.WithLabelValues(OutcomeRecomputed).Add(float64(r.Recomputed))
	c.outcomes.WithLabelValues(OutcomeSkipped).Add(float64(r.Skipped))
	c.outcomes.WithLabelValues(OutcomeErrored).Add(float64(r.Errored))
	c.outcomes.WithLabelValues(OutcomeAborted).Add(float64(r.Aborted))
	c.failing.Set(float64(len(r.Failures)))
	c.passDuration.Observe(r.Duration.Seconds())
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.passes.Describe(ch)
	c.outcomes.Describe(ch)
	c.objects.Describe(ch)
	c.propertyChanges.Describe(ch)
	c.failing.Describe(ch)
	c.passDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.passes.Collect(ch)
	c.outcomes.Collect(ch)
	c.objects.Collect(ch)
	c.propertyChanges.Collect(ch)
	c.failing.Collect(ch)
	c.passDuration.Collect(ch)
}

// Totals is a point-in-time reading of the counters of a Collector.
type Totals struct {
	Passes          float64
	Outcomes        map[string]float64
	Created         float64
	Deleted         float64
	PropertyChanges float64
	Failing         float64
}

// Totals reads the current counter values.
func (c *Collector) Totals() Totals {
	t := Totals{
		Passes:          value(c.passes),
		Outcomes:        make(map[string]float64, 4),
		Created:         value(c.objects.WithLabelValues(EventCreated)),
		Deleted:         value(c.objects.WithLabelValues(EventDeleted)),
		PropertyChanges: value(c.propertyChanges),
		Failing:         value(c.failing),
	}
	for _, o := range []string{OutcomeRecomputed, OutcomeSkipped, OutcomeErrored, OutcomeAborted} {
		t.Outcomes[o] = value(c.outcomes.WithLabelValues(o))
	}
	return t
}

func value(m prometheus.Metric) float64 {
	var pb dto.Metric
	if err := m.Write(&pb); err != nil {
		return 0
	}
	switch {
	case pb.Counter != nil:
		return pb.Counter.GetValue()
	case pb.Gauge != nil:
		return pb.Gauge.GetValue()
	}
	return 0
}
