package dns

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records probe metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	probesTotal      *prometheus.CounterVec
	probeDuration    *prometheus.HistogramVec
	checksTotal      *prometheus.CounterVec
	checkPropagation *prometheus.GaugeVec
}

// NewCollector creates the probe metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnsprop_probes_total",
				Help: "Total number of vantage point lookups by outcome",
			},
			[]string{"location", "region", "record_type", "status"},
		),
		probeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dnsprop_probe_duration_seconds",
				Help:    "Duration of vantage point lookups in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"location", "region"},
		),
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dnsprop_checks_total",
				Help: "Total number of completed propagation checks",
			},
			[]string{"record_type", "label"},
		),
		checkPropagation: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dnsprop_check_propagation_percent",
				Help: "Propagation percentage of the last check per record type",
			},
			[]string{"record_type"},
		),
	}
	if reg != nil {
		reg.MustRegister(c.probesTotal, c.probeDuration, c.checksTotal, c.checkPropagation)
	}
	return c
}

func (c *Collector) ObserveProbe(point VantagePoint, rt RecordType, status ProbeStatus, d time.Duration) {
	if c == nil {
		return
	}
	c.probesTotal.WithLabelValues(point.Name, string(point.Region), string(rt), string(status)).Inc()
	if status != StatusError {
		c.probeDuration.WithLabelValues(point.Name, string(point.Region)).Observe(d.Seconds())
	}
}

func (c *Collector) ObserveSummary(s *CheckSummary) {
	if c == nil || s == nil {
		return
	}
	c.checksTotal.WithLabelValues(string(s.RecordType), s.StatusLabel()).Inc()
	c.checkPropagation.WithLabelValues(string(s.RecordType)).Set(float64(s.PercentPropagated))
}
