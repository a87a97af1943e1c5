package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	tokengate "github.com/veslind/tokengate"
	internalmetrics "github.com/veslind/tokengate/internal/metrics"
)

// Source is anything that can produce a metrics snapshot. *tokengate.Engine
// satisfies it.
type Source interface {
	MetricsSnapshot() tokengate.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter collects tokengate counters on every Prometheus scrape.
type Exporter struct {
	source  Source
	descs   map[internalmetrics.MetricID]*prometheus.Desc
	dropped *prometheus.Desc
}

var _ prometheus.Collector = (*Exporter)(nil)

// NewExporter builds a collector reading from source.
func NewExporter(source Source) *Exporter {
	descs := make(map[internalmetrics.MetricID]*prometheus.Desc, len(internalmetrics.CounterDefs))
	for _, def := range internalmetrics.CounterDefs {
		descs[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}

	return &Exporter{
		source: source,
		descs:  descs,
		dropped: prometheus.NewDesc(
			"tokengate_audit_dropped_total",
			"Audit events dropped under dispatcher backpressure.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range e.descs {
		ch <- desc
	}
	ch <- e.dropped
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e == nil || e.source == nil {
		return
	}

	snap := e.source.MetricsSnapshot()
	for _, def := range internalmetrics.CounterDefs {
		ch <- prometheus.MustNewConstMetric(
			e.descs[def.ID],
			prometheus.CounterValue,
			float64(snap.Counters[def.ID]),
		)
	}
	ch <- prometheus.MustNewConstMetric(
		e.dropped,
		prometheus.CounterValue,
		float64(e.source.AuditDropped()),
	)
}

// Handler returns a scrape endpoint backed by a registry containing only
// this exporter.
func (e *Exporter) Handler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(e)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
