// Package metrics defines the Prometheus collectors for table activity and
// exposes them over HTTP or as a node-exporter textfile.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. Each instance owns its registry
// so tests and repeated runs never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	InsertsTotal      *prometheus.CounterVec
	InsertCollisions  prometheus.Histogram
	SearchesTotal     *prometheus.CounterVec
	TableKeys         prometheus.Gauge
	TableCapacity     prometheus.Gauge
	TableLoadFactor   prometheus.Gauge
	UnknownWordsTotal prometheus.Counter
	PhaseDuration     *prometheus.GaugeVec
	ExportsTotal      *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		InsertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordfreq_inserts_total",
				Help: "Insert calls by outcome (placed, incremented, rejected).",
			},
			[]string{"outcome"},
		),
		InsertCollisions: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wordfreq_insert_collisions",
				Help:    "Probe steps taken before a new key found a free slot.",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
			},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordfreq_searches_total",
				Help: "Search calls by result (hit, miss).",
			},
			[]string{"result"},
		),
		TableKeys: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordfreq_table_keys",
				Help: "Distinct keys stored in the table.",
			},
		),
		TableCapacity: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordfreq_table_capacity",
				Help: "Fixed slot count of the table.",
			},
		),
		TableLoadFactor: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "wordfreq_table_load_factor",
				Help: "Keys divided by capacity.",
			},
		),
		UnknownWordsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wordfreq_unknown_words_total",
				Help: "Words reported as unknown by the spell checker.",
			},
		),
		PhaseDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "wordfreq_phase_duration_seconds",
				Help: "Wall time of the last run of each phase (fill, search, export).",
			},
			[]string{"phase"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordfreq_exports_total",
				Help: "Report exports by sink and status.",
			},
			[]string{"sink", "status"},
		),
	}

	m.registry.MustRegister(
		m.InsertsTotal,
		m.InsertCollisions,
		m.SearchesTotal,
		m.TableKeys,
		m.TableCapacity,
		m.TableLoadFactor,
		m.UnknownWordsTotal,
		m.PhaseDuration,
		m.ExportsTotal,
	)

	return m
}

// RecordInsert counts one insert. Collisions are only observed for keys that
// were actually placed.
func (m *Metrics) RecordInsert(outcome string, collisions int) {
	m.InsertsTotal.WithLabelValues(outcome).Inc()
	if outcome == "placed" {
		m.InsertCollisions.Observe(float64(collisions))
	}
}

func (m *Metrics) RecordSearch(found bool) {
	if found {
		m.SearchesTotal.WithLabelValues("hit").Inc()
		return
	}
	m.SearchesTotal.WithLabelValues("miss").Inc()
}

// SetTableState publishes the current size of a table.
func (m *Metrics) SetTableState(keys, capacity int) {
	m.TableKeys.Set(float64(keys))
	m.TableCapacity.Set(float64(capacity))
	if capacity > 0 {
		m.TableLoadFactor.Set(float64(keys) / float64(capacity))
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format,
// replacing path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Handler returns the Prometheus scrape HTTP handler for this instance.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
