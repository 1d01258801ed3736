// Package metrics exposes Prometheus counters for exports, mutations and sessions.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/go-contacts/internal/config"
	"github.com/tartampluch/go-contacts/internal/engine"
)

// Metrics groups every collector of the application.
type Metrics struct {
	registry *prometheus.Registry

	Exports       prometheus.Counter
	ExportedCards prometheus.Counter
	EmptyExports  prometheus.Counter
	Mutations     *prometheus.CounterVec
	StoreErrors   *prometheus.CounterVec
	ImportedCards prometheus.Counter
	Sessions      prometheus.Gauge
}

// New registers all collectors on a private registry, alongside the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Exports: f.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricExports,
			Help:      "vCard documents produced",
		}),
		ExportedCards: f.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricExportCards,
			Help:      "vCard blocks written across all exports",
		}),
		EmptyExports: f.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricEmptyExports,
			Help:      "Export requests refused because nothing was selected",
		}),
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricMutations,
			Help:      "Admin mutations by operation and outcome",
		}, []string{config.LabelOp, config.LabelResult}),
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricStoreErrors,
			Help:      "Store failures by operation",
		}, []string{config.LabelOp}),
		ImportedCards: f.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricImported,
			Help:      "Contacts written by vCard imports",
		}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: config.MetricsNamespace,
			Name:      config.MetricSessions,
			Help:      "Live page sessions",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveExport records a successful export of n cards.
func (m *Metrics) ObserveExport(n int) {
	m.Exports.Inc()
	m.ExportedCards.Add(float64(n))
}

// ObserveMutation classifies err and bumps the matching counters.
func (m *Metrics) ObserveMutation(op string, err error) {
	result := Classify(err)
	m.Mutations.WithLabelValues(op, result).Inc()
	if result == config.ResultFailed || result == config.ResultPartial {
		m.StoreErrors.WithLabelValues(op).Inc()
	}
}

// ObserveStoreError counts a failed read.
func (m *Metrics) ObserveStoreError(op string) {
	m.StoreErrors.WithLabelValues(op).Inc()
}

// Classify maps an editor error to a result label.
func Classify(err error) string {
	switch {
	case err == nil:
		return config.ResultOK
	case errors.Is(err, engine.ErrInvalidPhone), errors.Is(err, engine.ErrInvalidName):
		return config.ResultInvalid
	case errors.Is(err, engine.ErrPartialRename):
		return config.ResultPartial
	default:
		return config.ResultFailed
	}
}
