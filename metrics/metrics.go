// Package metrics exposes the stats of a generation run in the
// node-exporter textfile format, the way batch jobs report to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/TaihuLight/partecl-codegen/codegen"
	"github.com/TaihuLight/partecl-codegen/declaration"
)

// Section label values
const (
	SectionInputs  = "inputs"
	SectionResults = "results"
)

// Collector holds the generation metrics in a private registry
type Collector struct {
	registry       *prometheus.Registry
	fields         *prometheus.CounterVec
	advisories     prometheus.Counter
	duration       prometheus.Gauge
	completionTime prometheus.Gauge
}

// NewCollector returns a collector with all metrics registered
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		fields: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harnessgen_fields_total",
				Help: "The number of fields handled by the generated code. Result fields count as Int for the exact int type only, other types as Unknown.",
			},
			[]string{"section", "kind"},
		),
		advisories: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "harnessgen_advisories_total",
			Help: "The number of fields of unrecognized type handled as int.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "harnessgen_generation_seconds",
			Help: "The duration of the last generation in seconds.",
		}),
		completionTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "harnessgen_last_completion_timestamp_seconds",
			Help: "The timestamp of the last completion of a generation.",
		}),
	}
	c.registry.MustRegister(c.fields, c.advisories, c.duration, c.completionTime)
	/* export zero series for every kind */
	for _, kind := range declaration.Kinds {
		c.fields.WithLabelValues(SectionInputs, kind.String())
		c.fields.WithLabelValues(SectionResults, kind.String())
	}
	return c
}

// Registry returns the private registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe adds the counters of one generation pass
func (c *Collector) Observe(s codegen.Summary, d time.Duration) {
	for kind, n := range s.Populated {
		c.fields.WithLabelValues(SectionInputs, kind.String()).Add(float64(n))
	}
	for kind, n := range s.Reported {
		c.fields.WithLabelValues(SectionResults, kind.String()).Add(float64(n))
	}
	c.advisories.Add(float64(s.Advisories))
	c.duration.Set(d.Seconds())
	c.completionTime.SetToCurrentTime()
}

// WriteTextfile writes all metrics into the file for
// the node-exporter textfile collector
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
